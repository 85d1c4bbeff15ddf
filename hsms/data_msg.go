package hsms

import (
	"encoding/binary"

	"github.com/nexcim/secswire/secs2"
)

// DataMessage represents an HSMS data message.
//
// It implements the HSMSMessage and secs2.SECS2Message interfaces.
type DataMessage struct {
	dataItem      secs2.Item
	systemBytes   uint32
	sessionID     uint16
	stream        byte
	function      byte
	replyExpected bool
}

// ensure DataMessage implements hsms.HSMSMessage and secs2.SECS2Message interfaces.
var (
	_ HSMSMessage        = (*DataMessage)(nil)
	_ secs2.SECS2Message = (*DataMessage)(nil)
)

// NewDataMessage creates a new HSMS data message.
//
// # Input argument specifications
//
// stream is the stream code of this message and should be in range of [0, 127].
//
// function is the function code of this message and should be in range of [0, 255].
//
// replyExpected specifies if the primary message expects a reply message.
// It sets the W-bit to 1 if true. replyExpected cannot be true when the
// function code is an even number (reply message).
//
// sessionID is the session (device) ID in the HSMS message.
//
// systemBytes should have 4 bytes.
//
// dataItem is the content of this message; a nil dataItem is stored as an
// empty item.
func NewDataMessage(stream byte, function byte, replyExpected bool, sessionID uint16, systemBytes []byte, dataItem secs2.Item) (*DataMessage, error) {
	if dataItem == nil {
		dataItem = secs2.NewEmptyItem()
	}

	msg := &DataMessage{
		dataItem:      dataItem,
		sessionID:     sessionID,
		stream:        stream,
		function:      function,
		replyExpected: replyExpected,
	}

	if len(systemBytes) != 4 {
		return nil, ErrInvalidSystemBytes
	}
	msg.systemBytes = binary.BigEndian.Uint32(systemBytes)

	if err := msg.sanityCheck(); err != nil {
		return nil, err
	}

	return msg, nil
}

// NewDataMessageFromHeader creates a data message from a decoded message
// header and a data item. It is the constructor used by the decode paths.
func NewDataMessageFromHeader(header MessageHeader, dataItem secs2.Item) (*DataMessage, error) {
	if dataItem == nil {
		dataItem = secs2.NewEmptyItem()
	}

	msg := &DataMessage{
		dataItem:      dataItem,
		systemBytes:   header.SystemBytes,
		sessionID:     header.SessionID,
		stream:        header.Stream,
		function:      header.Function,
		replyExpected: header.ReplyExpected,
	}

	if err := msg.sanityCheck(); err != nil {
		return nil, err
	}

	return msg, nil
}

// Type returns the HSMS message type.
//
// This method implements the HSMSMessage.Type() interface.
func (msg *DataMessage) Type() int {
	return DataMsgType
}

// SessionID returns the session id of the data message.
//
// This method implements the HSMSMessage.SessionID() interface.
func (msg *DataMessage) SessionID() uint16 {
	return msg.sessionID
}

// ID returns a numeric representation of the system bytes (message ID).
//
// This method implements the HSMSMessage.ID() interface.
func (msg *DataMessage) ID() uint32 {
	return msg.systemBytes
}

// SystemBytes returns the system bytes of the data message as a 4-byte slice.
//
// This method implements the HSMSMessage.SystemBytes() interface.
func (msg *DataMessage) SystemBytes() []byte {
	return ToSystemBytes(msg.systemBytes)
}

// Header returns the decoded 10-byte HSMS message header.
//
// This method implements the HSMSMessage.Header() interface.
func (msg *DataMessage) Header() MessageHeader {
	return MessageHeader{
		SessionID:     msg.sessionID,
		ReplyExpected: msg.replyExpected,
		Stream:        msg.stream,
		Function:      msg.function,
		SType:         DataMsgType,
		SystemBytes:   msg.systemBytes,
	}
}

// StreamCode returns the stream code of the data message.
//
// This method implements the secs2.SECS2Message.StreamCode() interface.
func (msg *DataMessage) StreamCode() uint8 {
	return msg.stream
}

// FunctionCode returns the function code of the data message.
//
// This method implements the secs2.SECS2Message.FunctionCode() interface.
func (msg *DataMessage) FunctionCode() uint8 {
	return msg.function
}

// WaitBit returns the boolean representation indicating the W-bit is set.
//
// This method implements the secs2.SECS2Message.WaitBit() interface.
func (msg *DataMessage) WaitBit() bool {
	return msg.replyExpected
}

// Item returns the SECS-II data item of the data message.
//
// This method implements the secs2.SECS2Message.Item() interface.
func (msg *DataMessage) Item() secs2.Item {
	return msg.dataItem
}

// ToBytes returns the HSMS byte representation of the data message, including
// the 4-byte length prefix.
//
// This method implements the HSMSMessage.ToBytes() interface.
func (msg *DataMessage) ToBytes() []byte {
	var itemBytes []byte
	if msg.dataItem != nil {
		itemBytes = msg.dataItem.ToBytes()
	}
	totalBytes := LengthFieldSize + HeaderSize + len(itemBytes)

	result := make([]byte, MinHSMSSize, totalBytes)
	// message length = header + body, excluding the length field itself
	binary.BigEndian.PutUint32(result[:4], uint32(totalBytes-LengthFieldSize)) //nolint:gosec
	_ = msg.Header().EncodeTo(result[4:14])
	result = append(result, itemBytes...)

	return result
}

// IsControlMessage returns false, indicating that a DataMessage is not a control message.
func (msg *DataMessage) IsControlMessage() bool {
	return false
}

// ToControlMessage attempts to convert the message to an HSMS control message.
// Since a DataMessage cannot be converted to a ControlMessage, it always returns nil and false.
func (msg *DataMessage) ToControlMessage() (*ControlMessage, bool) {
	return nil, false
}

// IsDataMessage returns true, indicating that a DataMessage is a data message.
func (msg *DataMessage) IsDataMessage() bool {
	return true
}

// ToDataMessage converts the message to an HSMS data message.
// Since the message is already a DataMessage, it returns a pointer to itself and true.
func (msg *DataMessage) ToDataMessage() (*DataMessage, bool) {
	return msg, true
}

// Clone returns a duplicated message.
func (msg *DataMessage) Clone() HSMSMessage {
	cloned := *msg

	if msg.dataItem == nil {
		cloned.dataItem = secs2.NewEmptyItem()
	} else {
		cloned.dataItem = msg.dataItem.Clone()
	}

	return &cloned
}

func (msg *DataMessage) sanityCheck() error {
	if err := msg.dataItem.Error(); err != nil {
		return err
	}

	if msg.stream >= 128 {
		return ErrInvalidStreamCode
	}

	if msg.replyExpected && msg.function%2 == 0 {
		return ErrInvalidRspMsg
	}

	return nil
}
