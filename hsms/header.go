package hsms

import (
	"encoding/binary"

	"github.com/nexcim/secswire/secs2"
)

const (
	// HeaderSize is the size of the HSMS message header in bytes.
	HeaderSize = 10
	// LengthFieldSize is the size of the message length field in bytes.
	LengthFieldSize = 4
	// MinHSMSSize is the minimum size of an HSMS message (length field + header).
	MinHSMSSize = LengthFieldSize + HeaderSize
	// MaxMessageSize is the maximum accepted total message length (header +
	// body). It admits a message carrying one item of the maximum SECS-II
	// payload size including the item header overhead.
	MaxMessageSize = MinHSMSSize + secs2.MaxByteSize
)

// WaitBit byte constants representing if wait-bit is set.
const (
	WaitBitFalse = uint8(0)
	WaitBitTrue  = uint8(1)
)

// MessageHeader is the decoded form of the fixed 10-byte HSMS message header.
//
// Wire layout (big-endian):
//
//	byte 0-1: session (device) ID
//	byte 2:   bit 7 = W-bit (reply expected), bits 6-0 = stream code
//	byte 3:   function code
//	byte 4:   PType, reserved, zero for SECS-II
//	byte 5:   SType (message type)
//	byte 6-9: system bytes (correlation ID)
type MessageHeader struct {
	SessionID     uint16
	ReplyExpected bool
	Stream        byte
	Function      byte
	PType         byte
	SType         byte
	SystemBytes   uint32
}

// DecodeMessageHeader decodes a 10-byte HSMS message header.
func DecodeMessageHeader(src []byte) (MessageHeader, error) {
	if len(src) < HeaderSize {
		return MessageHeader{}, ErrInvalidHeaderLength
	}

	return MessageHeader{
		SessionID:     binary.BigEndian.Uint16(src[:2]),
		ReplyExpected: src[2]>>7 != WaitBitFalse,
		Stream:        src[2] & 0x7F,
		Function:      src[3],
		PType:         src[4],
		SType:         src[5],
		SystemBytes:   binary.BigEndian.Uint32(src[6:10]),
	}, nil
}

// EncodeTo writes the 10-byte wire representation of the header into dst.
// Byte 4 (PType) is always written as zero.
func (h MessageHeader) EncodeTo(dst []byte) error {
	if len(dst) < HeaderSize {
		return ErrInvalidHeaderLength
	}

	binary.BigEndian.PutUint16(dst[:2], h.SessionID)
	dst[2] = h.Stream
	if h.ReplyExpected {
		dst[2] |= 0b_1000_0000
	}
	dst[3] = h.Function
	dst[4] = 0
	dst[5] = h.SType
	binary.BigEndian.PutUint32(dst[6:10], h.SystemBytes)

	return nil
}

// Bytes returns the 10-byte wire representation of the header.
func (h MessageHeader) Bytes() []byte {
	result := make([]byte, HeaderSize)
	_ = h.EncodeTo(result)
	return result
}

// IsDataMessage returns true if the header describes a data message
// (SType zero).
func (h MessageHeader) IsDataMessage() bool {
	return h.SType == DataMsgType
}

// SystemBytesSlice returns the system bytes as a 4-byte big-endian slice.
func (h MessageHeader) SystemBytesSlice() []byte {
	return ToSystemBytes(h.SystemBytes)
}
