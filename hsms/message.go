package hsms

import (
	"github.com/nexcim/secswire/secs2"
)

// Type constants representing the different types of HSMS messages.
// These values appear in the SType byte (byte 5) of the message header.
const (
	UndefinedMsgType = -1 // undefined message type
	DataMsgType      = 0  // data message containing SECS-II data
	SelectReqType    = 1  // Select request control message
	SelectRspType    = 2  // Select response control message
	DeselectReqType  = 3  // Deselect request control message
	DeselectRspType  = 4  // Deselect response control message
	LinkTestReqType  = 5  // Linktest request control message
	LinkTestRspType  = 6  // Linktest response control message
	RejectReqType    = 7  // Reject request control message
	SeparateReqType  = 9  // Separate request control message
)

var hsmsMsgTypeMap = map[int]string{
	DataMsgType:      "data.msg",
	SelectReqType:    "select.req",
	SelectRspType:    "select.rsp",
	DeselectReqType:  "deselect.req",
	DeselectRspType:  "deselect.rsp",
	LinkTestReqType:  "linktest.req",
	LinkTestRspType:  "linktest.rsp",
	RejectReqType:    "reject.req",
	SeparateReqType:  "separate.req",
	UndefinedMsgType: "undefined",
}

// MsgTypeName returns the symbolic name of an HSMS message type, e.g.
// "select.req", or "undefined" for unknown types.
func MsgTypeName(msgType int) string {
	name, ok := hsmsMsgTypeMap[msgType]
	if !ok {
		return hsmsMsgTypeMap[UndefinedMsgType]
	}
	return name
}

// HSMSMessage represents a message in the HSMS (High-Speed SECS Message
// Services) protocol. It extends the secs2.SECS2Message interface with
// HSMS-specific attributes.
//
// HSMS messages are categorized into:
//   - Data messages: used for exchanging SECS-II data between host and equipment.
//   - Control messages: used for managing the HSMS connection itself
//     (session control, link testing).
type HSMSMessage interface {
	secs2.SECS2Message

	// Type returns the HSMS message type, one of the *Type constants.
	Type() int

	// SessionID returns the session (device) ID of the HSMS message.
	SessionID() uint16

	// ID returns a numeric representation of the system bytes (message ID).
	ID() uint32

	// SystemBytes returns the 4-byte system bytes (message ID).
	SystemBytes() []byte

	// Header returns the decoded 10-byte HSMS message header.
	Header() MessageHeader

	// ToBytes serializes the HSMS message into its byte representation for
	// transmission, including the 4-byte length prefix.
	ToBytes() []byte

	// IsControlMessage returns true if the message is a control message.
	IsControlMessage() bool
	// ToControlMessage converts the message to an HSMS control message if applicable.
	// It returns a pointer to the ControlMessage and a boolean indicating if the
	// conversion was successful.
	ToControlMessage() (*ControlMessage, bool)

	// IsDataMessage returns true if the message is a data message.
	IsDataMessage() bool
	// ToDataMessage converts the message to an HSMS data message if applicable.
	// It returns a pointer to the DataMessage and a boolean indicating if the
	// conversion was successful.
	ToDataMessage() (*DataMessage, bool)

	// Clone creates a deep copy of the message, allowing modifications to the
	// clone without affecting the original message.
	Clone() HSMSMessage
}

// MsgInfo returns structured message information suitable for passing to a
// structured logger.
func MsgInfo(msg HSMSMessage, keyValues ...any) []any {
	info := []any{
		"id", msg.ID(),
		"type", MsgTypeName(msg.Type()),
		"s", msg.StreamCode(),
		"f", msg.FunctionCode(),
	}

	result := make([]any, 0, len(keyValues)+len(info))
	result = append(result, keyValues...)
	result = append(result, info...)

	return result
}
