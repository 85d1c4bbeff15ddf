package hsms

import (
	"errors"

	"github.com/nexcim/secswire/secs2"
)

// ControlMessage represents an HSMS control message. Control messages manage
// the HSMS connection itself and carry no SECS-II body.
//
// It implements the HSMSMessage and secs2.SECS2Message interfaces.
type ControlMessage struct {
	header        MessageHeader
	replyExpected bool
}

// ensure ControlMessage implements hsms.HSMSMessage and secs2.SECS2Message interfaces.
var (
	_ HSMSMessage        = (*ControlMessage)(nil)
	_ secs2.SECS2Message = (*ControlMessage)(nil)
)

// NewControlMessage creates an HSMS control message from a decoded header.
// The header should have appropriate values as specified in the HSMS
// specification.
func NewControlMessage(header MessageHeader, replyExpected bool) *ControlMessage {
	return &ControlMessage{header: header, replyExpected: replyExpected}
}

// Type returns the message type of the HSMS control message, derived from the
// SType header byte. It returns UndefinedMsgType for SType values outside the
// defined set.
//
// This method implements the HSMSMessage.Type() interface.
func (msg *ControlMessage) Type() int {
	stype := int(msg.header.SType)
	if _, ok := hsmsMsgTypeMap[stype]; !ok {
		return UndefinedMsgType
	}

	return stype
}

// ID returns a numeric representation of the system bytes (message ID).
//
// This method implements the HSMSMessage.ID() interface.
func (msg *ControlMessage) ID() uint32 {
	return msg.header.SystemBytes
}

// SessionID returns the session id of the control message.
//
// This method implements the HSMSMessage.SessionID() interface.
func (msg *ControlMessage) SessionID() uint16 {
	return msg.header.SessionID
}

// SystemBytes returns the 4-byte system bytes (message ID).
//
// This method implements the HSMSMessage.SystemBytes() interface.
func (msg *ControlMessage) SystemBytes() []byte {
	return ToSystemBytes(msg.header.SystemBytes)
}

// Header returns the decoded 10-byte HSMS message header.
//
// This method implements the HSMSMessage.Header() interface.
func (msg *ControlMessage) Header() MessageHeader {
	return msg.header
}

// ToBytes returns the HSMS byte representation of the control message.
//
// This method implements the HSMSMessage.ToBytes() interface.
func (msg *ControlMessage) ToBytes() []byte {
	result := make([]byte, MinHSMSSize)
	result[3] = HeaderSize // message length, MSB first
	_ = msg.header.EncodeTo(result[4:14])

	return result
}

// StreamCode returns the stream code bits of header byte 2. For control
// messages this byte carries type-specific values such as select status.
//
// This method implements the secs2.SECS2Message.StreamCode() interface.
func (msg *ControlMessage) StreamCode() uint8 {
	return msg.header.Stream
}

// FunctionCode returns header byte 3; its meaning is defined by the control
// message type.
//
// This method implements the secs2.SECS2Message.FunctionCode() interface.
func (msg *ControlMessage) FunctionCode() uint8 {
	return msg.header.Function
}

// WaitBit reports whether the control message expects a reply. It returns the
// replyExpected flag given at construction (true for the request factories
// that have a response counterpart, false for decoded messages); the flag is
// not encoded into header byte 2 by ToBytes.
//
// This method implements the secs2.SECS2Message.WaitBit() interface.
func (msg *ControlMessage) WaitBit() bool {
	return msg.replyExpected
}

// Item returns an empty SECS-II data item; control messages carry no body.
//
// This method implements the secs2.SECS2Message.Item() interface.
func (msg *ControlMessage) Item() secs2.Item {
	return secs2.NewEmptyItem()
}

// IsControlMessage returns true, indicating that a ControlMessage is a control message.
func (msg *ControlMessage) IsControlMessage() bool {
	return true
}

// ToControlMessage converts the message to an HSMS control message.
// Since the message is already a ControlMessage, it returns a pointer to itself and true.
func (msg *ControlMessage) ToControlMessage() (*ControlMessage, bool) {
	return msg, true
}

// IsDataMessage returns false, indicating that a ControlMessage is not a data message.
func (msg *ControlMessage) IsDataMessage() bool {
	return false
}

// ToDataMessage attempts to convert the message to an HSMS data message.
// Since a ControlMessage cannot be converted to a DataMessage, it always returns nil and false.
func (msg *ControlMessage) ToDataMessage() (*DataMessage, bool) {
	return nil, false
}

// Clone creates a deep copy of the message.
//
// This method implements the HSMSMessage.Clone() interface.
func (msg *ControlMessage) Clone() HSMSMessage {
	cloned := *msg
	return &cloned
}

// NewSelectReq creates an HSMS Select.req control message.
// systemBytes should have length of 4.
func NewSelectReq(sessionID uint16, systemBytes []byte) *ControlMessage {
	return &ControlMessage{
		header: MessageHeader{
			SessionID:   sessionID,
			SType:       SelectReqType,
			SystemBytes: systemBytesToUint32(systemBytes),
		},
		replyExpected: true,
	}
}

const (
	// SelectStatusSuccess indicates that communication is successfully established.
	SelectStatusSuccess = 0
	// SelectStatusActived indicates that communication is already actived.
	SelectStatusActived = 1
	// SelectStatusNotReady indicates that communication is not ready.
	SelectStatusNotReady = 2
	// SelectStatusAlreadyUsed indicates that the TCP/IP port is exhausted,
	// another connection is already established.
	SelectStatusAlreadyUsed = 3
)

// NewSelectRsp creates an HSMS Select.rsp control message from a Select.req message.
// selectStatus 0 means that communication is successfully established,
// 1 means that communication is already actived,
// 2 means that communication is not ready,
// 3 means that the TCP/IP port is exhausted,
// 4-255 are reserved failure reason codes.
func NewSelectRsp(selectReq HSMSMessage, selectStatus byte) (*ControlMessage, error) {
	if selectReq.Type() != SelectReqType {
		return nil, errors.New("expected select.req message")
	}

	reqHeader := selectReq.Header()

	return &ControlMessage{
		header: MessageHeader{
			SessionID:   reqHeader.SessionID,
			Function:    selectStatus,
			SType:       SelectRspType,
			SystemBytes: reqHeader.SystemBytes,
		},
	}, nil
}

// NewDeselectReq creates an HSMS Deselect.req control message.
// systemBytes should have length of 4.
func NewDeselectReq(sessionID uint16, systemBytes []byte) *ControlMessage {
	return &ControlMessage{
		header: MessageHeader{
			SessionID:   sessionID,
			SType:       DeselectReqType,
			SystemBytes: systemBytesToUint32(systemBytes),
		},
		replyExpected: true,
	}
}

// NewDeselectRsp creates an HSMS Deselect.rsp control message from a Deselect.req message.
// deselectStatus 0 means that the connection is successfully ended,
// 1 means that communication is not yet established,
// 2 means that communication is busy and cannot yet be relinquished,
// 3-255 are reserved failure reason codes.
func NewDeselectRsp(deselectReq HSMSMessage, deselectStatus byte) (*ControlMessage, error) {
	if deselectReq.Type() != DeselectReqType {
		return nil, errors.New("expected deselect.req message")
	}

	reqHeader := deselectReq.Header()

	return &ControlMessage{
		header: MessageHeader{
			SessionID:   reqHeader.SessionID,
			Function:    deselectStatus,
			SType:       DeselectRspType,
			SystemBytes: reqHeader.SystemBytes,
		},
	}, nil
}

// NewLinktestReq creates an HSMS Linktest.req control message.
// systemBytes should have length of 4.
func NewLinktestReq(systemBytes []byte) *ControlMessage {
	return &ControlMessage{
		header: MessageHeader{
			SessionID:   0xFFFF,
			SType:       LinkTestReqType,
			SystemBytes: systemBytesToUint32(systemBytes),
		},
		replyExpected: true,
	}
}

// NewLinktestRsp creates an HSMS Linktest.rsp control message from a Linktest.req message.
func NewLinktestRsp(linktestReq HSMSMessage) (*ControlMessage, error) {
	if linktestReq.Type() != LinkTestReqType {
		return nil, errors.New("expected linktest.req message")
	}

	return &ControlMessage{
		header: MessageHeader{
			SessionID:   0xFFFF,
			SType:       LinkTestRspType,
			SystemBytes: linktestReq.Header().SystemBytes,
		},
	}, nil
}

// Reject code constants defining reason codes of the Reject.req control message.
const (
	RejectSTypeNotSupported  = 1 // received message's SType is not supported
	RejectPTypeNotSupported  = 2 // received message's PType is not supported
	RejectTransactionNotOpen = 3 // transaction is not open, i.e. response received without request
	RejectNotSelected        = 4 // data message received in non-selected state
)

// NewRejectReq creates an HSMS Reject.req control message.
//
// recvMsg should be the HSMS message being rejected.
//
// reasonCode should be non-zero,
//   - 1 means that the received message's SType is not supported,
//   - 2 means that the received message's PType is not supported,
//   - 3 means that the transaction is not open, i.e. a response message was received without request,
//   - 4 means that a data message was received in non-selected state,
//   - 5-255 are reserved reason codes.
func NewRejectReq(recvMsg HSMSMessage, reasonCode byte) *ControlMessage {
	recvHeader := recvMsg.Header()

	header := MessageHeader{
		SessionID:   recvHeader.SessionID,
		Function:    reasonCode,
		SType:       RejectReqType,
		SystemBytes: recvHeader.SystemBytes,
	}

	if recvMsg.Type() != DataMsgType {
		// byte 2 echoes the offending PType or SType of the rejected message
		if reasonCode == RejectPTypeNotSupported {
			header.Stream = recvHeader.PType
		} else {
			header.Stream = recvHeader.SType
		}
	}

	return &ControlMessage{header: header}
}

// NewSeparateReq creates an HSMS Separate.req control message.
// systemBytes should have length of 4.
func NewSeparateReq(sessionID uint16, systemBytes []byte) *ControlMessage {
	return &ControlMessage{
		header: MessageHeader{
			SessionID:   sessionID,
			SType:       SeparateReqType,
			SystemBytes: systemBytesToUint32(systemBytes),
		},
	}
}
