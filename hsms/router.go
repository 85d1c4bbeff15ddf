package hsms

import (
	"sync/atomic"

	"github.com/puzpuzpuz/xsync/v3"
)

// MessageRouter fans decoded messages out to handlers registered by message
// identity: data message handlers by (stream, function) pair, control message
// handlers by message type. Messages with no matching handler fall through to
// an optional default handler and are otherwise dropped.
//
// Its HandleDataMessage and HandleControlMessage methods match the decoder
// upcall signatures, so a router can be passed directly to NewStreamDecoder:
//
//	router := hsms.NewMessageRouter()
//	router.RegisterDataHandler(1, 1, onS1F1)
//	decoder := hsms.NewStreamDecoder(4096, router.HandleControlMessage, router.HandleDataMessage)
//
// Registration is safe concurrently with dispatch.
type MessageRouter struct {
	dataHandlers    *xsync.MapOf[uint16, DataMessageHandler]
	controlHandlers *xsync.MapOf[int, ControlMessageHandler]
	defaultData     atomic.Pointer[DataMessageHandler]
	defaultControl  atomic.Pointer[ControlMessageHandler]
}

// NewMessageRouter creates an empty message router.
func NewMessageRouter() *MessageRouter {
	return &MessageRouter{
		dataHandlers:    xsync.NewMapOf[uint16, DataMessageHandler](),
		controlHandlers: xsync.NewMapOf[int, ControlMessageHandler](),
	}
}

// sfKey packs a stream/function pair into a single map key.
func sfKey(stream byte, function byte) uint16 {
	return uint16(stream)<<8 | uint16(function)
}

// RegisterDataHandler registers a handler for data messages with the given
// stream and function codes, replacing any previous registration.
func (r *MessageRouter) RegisterDataHandler(stream byte, function byte, handler DataMessageHandler) {
	r.dataHandlers.Store(sfKey(stream, function), handler)
}

// UnregisterDataHandler removes the handler for the given stream and function
// codes.
func (r *MessageRouter) UnregisterDataHandler(stream byte, function byte) {
	r.dataHandlers.Delete(sfKey(stream, function))
}

// RegisterControlHandler registers a handler for control messages of the given
// type, replacing any previous registration.
func (r *MessageRouter) RegisterControlHandler(msgType int, handler ControlMessageHandler) {
	r.controlHandlers.Store(msgType, handler)
}

// UnregisterControlHandler removes the handler for the given control message type.
func (r *MessageRouter) UnregisterControlHandler(msgType int) {
	r.controlHandlers.Delete(msgType)
}

// SetDefaultDataHandler sets the handler invoked for data messages with no
// (stream, function) registration. A nil handler drops such messages.
func (r *MessageRouter) SetDefaultDataHandler(handler DataMessageHandler) {
	if handler == nil {
		r.defaultData.Store(nil)
		return
	}
	r.defaultData.Store(&handler)
}

// SetDefaultControlHandler sets the handler invoked for control messages with
// no type registration. A nil handler drops such messages.
func (r *MessageRouter) SetDefaultControlHandler(handler ControlMessageHandler) {
	if handler == nil {
		r.defaultControl.Store(nil)
		return
	}
	r.defaultControl.Store(&handler)
}

// HandleDataMessage dispatches a data message to the handler registered for
// its stream and function codes, falling back to the default data handler.
//
// It matches the DataMessageHandler signature.
func (r *MessageRouter) HandleDataMessage(msg *DataMessage) {
	if handler, ok := r.dataHandlers.Load(sfKey(msg.StreamCode(), msg.FunctionCode())); ok {
		handler(msg)
		return
	}

	if handler := r.defaultData.Load(); handler != nil {
		(*handler)(msg)
	}
}

// HandleControlMessage dispatches a control message to the handler registered
// for its message type, falling back to the default control handler.
//
// It matches the ControlMessageHandler signature.
func (r *MessageRouter) HandleControlMessage(msg *ControlMessage) {
	if handler, ok := r.controlHandlers.Load(msg.Type()); ok {
		handler(msg)
		return
	}

	if handler := r.defaultControl.Load(); handler != nil {
		(*handler)(msg)
	}
}
