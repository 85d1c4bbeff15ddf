package secs2

import (
	"encoding/binary"
	"fmt"

	"github.com/nexcim/secswire/internal/util"
)

// UintItem represents a list of unsigned integers in a SECS-II message.
//
// It implements the Item interface. Values are stored as uint64 regardless of
// the wire element size; byteSize determines the on-wire representation and
// the representable range.
type UintItem struct {
	baseItem
	byteSize int
	values   []uint64
}

var _ Item = (*UintItem)(nil)

// NewUintItem creates a new UintItem representing unsigned integer data.
//
// byteSize is the size of each integer value in bytes (1, 2, 4, or 8).
// The item takes ownership of values; the caller must not modify the slice
// afterwards.
//
// If the byteSize is invalid, a value is outside the representable range for
// the given byteSize, or the total data size exceeds the maximum allowed byte
// size, an error is set on the item.
func NewUintItem(byteSize int, values []uint64) Item {
	item := &UintItem{}

	if byteSize != 1 && byteSize != 2 && byteSize != 4 && byteSize != 8 {
		item.setErrorMsg("invalid byte size")
		return item
	}
	item.byteSize = byteSize

	if len(values)*byteSize > MaxByteSize {
		item.setErrorMsg("item size limit exceeded")
		return item
	}

	if byteSize != 8 {
		maxVal := uint64(1)<<(byteSize*8) - 1
		for _, v := range values {
			if v > maxVal {
				item.setError(fmt.Errorf("value %d overflows %d-byte unsigned integer", v, byteSize))
				return item
			}
		}
	}

	item.values = values

	return item
}

// Get implements Item.Get().
//
// It does not accept any index arguments as UintItem represents a single item,
// not a list.
func (item *UintItem) Get(indices ...int) (Item, error) {
	if len(indices) != 0 {
		err := fmt.Errorf("item is not a list, item type is %s, indices is %v", item.Type(), indices)
		item.setError(err)
		return nil, err
	}

	return item, nil
}

// ToUint retrieves the unsigned integer data stored within the item.
func (item *UintItem) ToUint() ([]uint64, error) {
	return item.values, nil
}

// Values retrieves the unsigned integer values stored in the item as a uint64 slice.
//
// The returned value can be type-asserted to a `[]uint64`.
func (item *UintItem) Values() any {
	return item.values
}

// Size implements Item.Size().
func (item *UintItem) Size() int {
	return len(item.values)
}

// ToBytes serializes the UintItem into a byte slice conforming to the SECS-II
// data format, with big-endian elements.
func (item *UintItem) ToBytes() []byte {
	byteLen := len(item.values) * item.byteSize
	result, err := encodeItemHeader(item.formatCode(), byteLen, byteLen)
	if err != nil {
		item.setError(err)
		return []byte{}
	}

	for _, v := range item.values {
		switch item.byteSize {
		case 1:
			result = append(result, byte(v))
		case 2:
			result = binary.BigEndian.AppendUint16(result, uint16(v)) //nolint:gosec
		case 4:
			result = binary.BigEndian.AppendUint32(result, uint32(v)) //nolint:gosec
		case 8:
			result = binary.BigEndian.AppendUint64(result, v)
		}
	}

	return result
}

// Clone creates a deep copy of the UintItem.
func (item *UintItem) Clone() Item {
	return &UintItem{byteSize: item.byteSize, values: util.CloneSlice(item.values, 0)}
}

// Type returns the item type name corresponding to the byte size.
func (item *UintItem) Type() string {
	switch item.byteSize {
	case 1:
		return Uint8Type
	case 2:
		return Uint16Type
	case 4:
		return Uint32Type
	case 8:
		return Uint64Type
	default:
		return EmptyType
	}
}

func (item *UintItem) IsUint8() bool  { return item.byteSize == 1 }
func (item *UintItem) IsUint16() bool { return item.byteSize == 2 }
func (item *UintItem) IsUint32() bool { return item.byteSize == 4 }
func (item *UintItem) IsUint64() bool { return item.byteSize == 8 }

func (item *UintItem) formatCode() FormatCode {
	switch item.byteSize {
	case 1:
		return Uint8FormatCode
	case 2:
		return Uint16FormatCode
	case 4:
		return Uint32FormatCode
	default:
		return Uint64FormatCode
	}
}
