package hsms

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"sync"

	"github.com/nexcim/secswire/internal/util"
	"github.com/nexcim/secswire/secs2"
)

// MaxListDepth is the maximum allowed nesting depth for SECS-II list items.
const MaxListDepth = 64

// item decoder pool, reused across DecodeMessage calls
var decoderPool = sync.Pool{New: func() any { return new(itemDecoder) }}

// DecodeHSMSMessage decodes an HSMS message from the given byte slice.
//
// data is the byte array containing the encoded HSMS message including the
// message length, header, and body.
//
// It returns the decoded HSMSMessage and an error if any occurred during decoding.
func DecodeHSMSMessage(data []byte) (HSMSMessage, error) {
	if len(data) < MinHSMSSize {
		return nil, fmt.Errorf("invalid hsms message length: %d", len(data))
	}

	msgLen := binary.BigEndian.Uint32(data)
	if msgLen > MaxMessageSize {
		return nil, fmt.Errorf("hsms message length exceeds maximum allowed size: %d", msgLen)
	}

	return DecodeMessage(msgLen, data[LengthFieldSize:])
}

// DecodeMessage decodes an HSMS message from the given byte slice.
//
// msgLen specifies the total length of the message in bytes, including the
// header and body. input is the byte array containing the encoded message
// without the 4-byte length prefix.
//
// It returns the decoded HSMSMessage and an error if any occurred during decoding.
func DecodeMessage(msgLen uint32, input []byte) (HSMSMessage, error) {
	if len(input) != int(msgLen) {
		return nil, fmt.Errorf("hsms message length mismatch, expected: %d, actual: %d", int(msgLen), len(input))
	}

	if msgLen < HeaderSize {
		return nil, fmt.Errorf("hsms message length %d below header size", msgLen)
	}

	header, err := DecodeMessageHeader(input)
	if err != nil {
		return nil, err
	}

	if header.PType != 0 { // PType is not a SECS-II message
		return nil, fmt.Errorf("invalid PType: %d", header.PType)
	}

	body := input[HeaderSize:]

	switch header.SType {
	case DataMsgType:
		var dataItem secs2.Item
		if len(body) == 0 {
			dataItem = secs2.NewEmptyItem()
		} else {
			dataItem, err = decodeItemBytes(body)
			if err != nil {
				return nil, err
			}
		}

		return NewDataMessageFromHeader(header, dataItem)

	case SelectReqType, DeselectReqType, LinkTestReqType,
		SelectRspType, DeselectRspType, LinkTestRspType, RejectReqType, SeparateReqType:
		if len(body) != 0 {
			return nil, fmt.Errorf("control message %s carries %d body bytes", MsgTypeName(int(header.SType)), len(body))
		}

		return NewControlMessage(header, false), nil

	default:
		// undefined SType
		return nil, fmt.Errorf("undefined SType: %d", header.SType)
	}
}

// DecodeSECS2Item decodes a SECS-II item from the given byte slice.
//
// data is the byte array containing the encoded SECS-II item. An empty slice
// decodes to an empty item.
//
// It returns the decoded SECS-II item and an error if any occurred during decoding.
func DecodeSECS2Item(data []byte) (secs2.Item, error) {
	if len(data) == 0 {
		return secs2.NewEmptyItem(), nil
	}

	return decodeItemBytes(data)
}

// decodeItemBytes decodes one complete SECS-II item tree from data.
// All of data must be consumed, trailing bytes are a framing error.
func decodeItemBytes(data []byte) (secs2.Item, error) {
	decoder, _ := decoderPool.Get().(*itemDecoder)
	decoder.input = data
	decoder.pos = 0
	decoder.depth = 0

	item, err := decoder.decodeItem()
	if err == nil && decoder.pos != len(data) {
		err = fmt.Errorf("item tree ends at byte %d, %d trailing bytes", decoder.pos, len(data)-decoder.pos)
	}

	decoder.input = nil
	decoderPool.Put(decoder)

	return item, err
}

// itemDecoder is a helper struct for decoding SECS-II item trees from a fully
// buffered message body. It maintains the current position in the input byte
// array and guards the list nesting depth.
type itemDecoder struct {
	input []byte
	pos   int
	depth int
}

// remaining returns the number of bytes remaining in the input buffer.
func (d *itemDecoder) remaining() int {
	return len(d.input) - d.pos
}

// read reads a specified number of bytes from the input and advances the
// current position. Returns an error if there are not enough bytes remaining.
func (d *itemDecoder) read(length int) ([]byte, error) {
	if d.pos+length > len(d.input) {
		return nil, fmt.Errorf("unexpected end of message: need %d bytes, have %d", length, d.remaining())
	}
	result := d.input[d.pos : d.pos+length]
	d.pos += length

	return result, nil
}

// readByte reads a single byte from the input and advances the current position.
func (d *itemDecoder) readByte() (byte, error) {
	if d.pos >= len(d.input) {
		return 0, errors.New("unexpected end of message: need 1 byte")
	}
	result := d.input[d.pos]
	d.pos++

	return result, nil
}

// decodeItem decodes the SECS-II data item at the current position.
// It handles all leaf types and recursively decodes nested list items.
func (d *itemDecoder) decodeItem() (secs2.Item, error) {
	// decode format code and number of length bytes
	formatByte, err := d.readByte()
	if err != nil {
		return nil, err
	}
	formatCode := secs2.FormatCode(formatByte >> 2)

	lenByteCount := int(formatByte & 0x3)
	if lenByteCount == 0 {
		return nil, errors.New("length byte count is zero")
	}

	lenBytes, err := d.read(lenByteCount)
	if err != nil {
		return nil, err
	}
	length := decodeItemLength(lenBytes)

	if formatCode == secs2.ListFormatCode {
		d.depth++
		if d.depth > MaxListDepth {
			return nil, fmt.Errorf("list nesting depth exceeds maximum allowed: %d", MaxListDepth)
		}

		// each child item needs at least 2 bytes (1 format byte + 1 length byte)
		if d.remaining() < length {
			return nil, fmt.Errorf("list claims %d items but only %d bytes remaining", length, d.remaining())
		}

		values := make([]secs2.Item, length) // the length indicates the number of items in the list
		for i := 0; i < length; i++ {
			var err error
			values[i], err = d.decodeItem()
			if err != nil {
				return nil, err
			}
		}
		d.depth--

		return secs2.NewListItem(values...), nil
	}

	data, err := d.read(length)
	if err != nil {
		return nil, err
	}

	return decodeLeafItem(formatCode, data)
}

// decodeItemLength assembles a big-endian item length from 1-3 length bytes.
func decodeItemLength(lenBytes []byte) int {
	length := 0
	for _, b := range lenBytes {
		length = length<<8 | int(b)
	}

	return length
}

// decodeLeafItem decodes a non-list item payload into its typed Item.
//
// The payload bytes are copied, the resulting item does not alias data.
// Both the whole-buffer and the streaming decode paths build their leaf items
// through this function, so the two paths produce identical trees.
func decodeLeafItem(formatCode secs2.FormatCode, data []byte) (secs2.Item, error) { //nolint:cyclop
	switch formatCode {
	case secs2.ASCIIFormatCode:
		return secs2.NewASCIIItem(string(data)), nil

	case secs2.JIS8FormatCode:
		return secs2.NewJIS8Item(string(data)), nil

	case secs2.BinaryFormatCode:
		return secs2.NewBinaryItem(util.CloneSlice(data, 0)), nil

	case secs2.BooleanFormatCode:
		values := make([]bool, len(data))
		for i, v := range data {
			values[i] = v != 0
		}

		return secs2.NewBooleanItem(values), nil

	case secs2.Int8FormatCode:
		return decodeIntItem(1, data)
	case secs2.Int16FormatCode:
		return decodeIntItem(2, data)
	case secs2.Int32FormatCode:
		return decodeIntItem(4, data)
	case secs2.Int64FormatCode:
		return decodeIntItem(8, data)

	case secs2.Uint8FormatCode:
		return decodeUintItem(1, data)
	case secs2.Uint16FormatCode:
		return decodeUintItem(2, data)
	case secs2.Uint32FormatCode:
		return decodeUintItem(4, data)
	case secs2.Uint64FormatCode:
		return decodeUintItem(8, data)

	case secs2.Float32FormatCode:
		return decodeFloatItem(4, data)
	case secs2.Float64FormatCode:
		return decodeFloatItem(8, data)

	default:
		return nil, fmt.Errorf("invalid format code: 0o%o", formatCode)
	}
}

func decodeIntItem(byteSize int, data []byte) (secs2.Item, error) {
	if len(data)%byteSize != 0 {
		return nil, fmt.Errorf("invalid item length %d for I%d item", len(data), byteSize)
	}

	count := len(data) / byteSize
	values := make([]int64, count)

	for i := 0; i < count; i++ {
		start := byteSize * i
		switch byteSize {
		case 1:
			values[i] = int64(int8(data[start]))
		case 2:
			values[i] = int64(int16(binary.BigEndian.Uint16(data[start:]))) //nolint:gosec
		case 4:
			values[i] = int64(int32(binary.BigEndian.Uint32(data[start:]))) //nolint:gosec
		case 8:
			values[i] = int64(binary.BigEndian.Uint64(data[start:])) //nolint:gosec
		}
	}

	return secs2.NewIntItem(byteSize, values), nil
}

func decodeUintItem(byteSize int, data []byte) (secs2.Item, error) {
	if len(data)%byteSize != 0 {
		return nil, fmt.Errorf("invalid item length %d for U%d item", len(data), byteSize)
	}

	count := len(data) / byteSize
	values := make([]uint64, count)

	for i := 0; i < count; i++ {
		start := byteSize * i
		switch byteSize {
		case 1:
			values[i] = uint64(data[start])
		case 2:
			values[i] = uint64(binary.BigEndian.Uint16(data[start:]))
		case 4:
			values[i] = uint64(binary.BigEndian.Uint32(data[start:]))
		case 8:
			values[i] = binary.BigEndian.Uint64(data[start:])
		}
	}

	return secs2.NewUintItem(byteSize, values), nil
}

func decodeFloatItem(byteSize int, data []byte) (secs2.Item, error) {
	if len(data)%byteSize != 0 {
		return nil, fmt.Errorf("invalid item length %d for F%d item", len(data), byteSize)
	}

	count := len(data) / byteSize
	values := make([]float64, count)

	for i := 0; i < count; i++ {
		start := byteSize * i
		if byteSize == 4 {
			values[i] = float64(math.Float32frombits(binary.BigEndian.Uint32(data[start:])))
		} else {
			values[i] = math.Float64frombits(binary.BigEndian.Uint64(data[start:]))
		}
	}

	return secs2.NewFloatItem(byteSize, values), nil
}
