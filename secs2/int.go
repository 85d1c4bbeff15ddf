package secs2

import (
	"encoding/binary"
	"fmt"

	"github.com/nexcim/secswire/internal/util"
)

// IntItem represents a list of signed integers in a SECS-II message.
//
// It implements the Item interface. Values are stored as int64 regardless of
// the wire element size; byteSize determines the on-wire representation and
// the representable range.
type IntItem struct {
	baseItem
	byteSize int
	values   []int64
}

var _ Item = (*IntItem)(nil)

// NewIntItem creates a new IntItem representing signed integer data.
//
// byteSize is the size of each integer value in bytes (1, 2, 4, or 8).
// The item takes ownership of values; the caller must not modify the slice
// afterwards.
//
// If the byteSize is invalid, a value is outside the representable range for
// the given byteSize, or the total data size exceeds the maximum allowed byte
// size, an error is set on the item.
func NewIntItem(byteSize int, values []int64) Item {
	item := &IntItem{}

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
		maxVal := int64(1)<<(byteSize*8-1) - 1
		minVal := -int64(1) << (byteSize*8 - 1)
		for _, v := range values {
			if v < minVal || v > maxVal {
				item.setError(fmt.Errorf("value %d overflows %d-byte signed integer", v, byteSize))
				return item
			}
		}
	}

	item.values = values

	return item
}

// Get implements Item.Get().
//
// It does not accept any index arguments as IntItem represents a single item,
// not a list.
func (item *IntItem) Get(indices ...int) (Item, error) {
	if len(indices) != 0 {
		err := fmt.Errorf("item is not a list, item type is %s, indices is %v", item.Type(), indices)
		item.setError(err)
		return nil, err
	}

	return item, nil
}

// ToInt retrieves the signed integer data stored within the item.
func (item *IntItem) ToInt() ([]int64, error) {
	return item.values, nil
}

// Values retrieves the signed integer values stored in the item as an int64 slice.
//
// The returned value can be type-asserted to a `[]int64`.
func (item *IntItem) Values() any {
	return item.values
}

// Size implements Item.Size().
func (item *IntItem) Size() int {
	return len(item.values)
}

// ToBytes serializes the IntItem into a byte slice conforming to the SECS-II
// data format, with big-endian elements.
func (item *IntItem) ToBytes() []byte {
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
			result = binary.BigEndian.AppendUint64(result, uint64(v)) //nolint:gosec
		}
	}

	return result
}

// Clone creates a deep copy of the IntItem.
func (item *IntItem) Clone() Item {
	return &IntItem{byteSize: item.byteSize, values: util.CloneSlice(item.values, 0)}
}

// Type returns the item type name corresponding to the byte size.
func (item *IntItem) Type() string {
	switch item.byteSize {
	case 1:
		return Int8Type
	case 2:
		return Int16Type
	case 4:
		return Int32Type
	case 8:
		return Int64Type
	default:
		return EmptyType
	}
}

func (item *IntItem) IsInt8() bool  { return item.byteSize == 1 }
func (item *IntItem) IsInt16() bool { return item.byteSize == 2 }
func (item *IntItem) IsInt32() bool { return item.byteSize == 4 }
func (item *IntItem) IsInt64() bool { return item.byteSize == 8 }

func (item *IntItem) formatCode() FormatCode {
	switch item.byteSize {
	case 1:
		return Int8FormatCode
	case 2:
		return Int16FormatCode
	case 4:
		return Int32FormatCode
	default:
		return Int64FormatCode
	}
}
