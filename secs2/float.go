package secs2

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/nexcim/secswire/internal/util"
)

// FloatItem represents a list of IEEE-754 floating point values in a SECS-II
// message.
//
// It implements the Item interface. Values are stored as float64 regardless of
// the wire element size; byteSize determines the on-wire representation
// (4 for single precision, 8 for double precision).
type FloatItem struct {
	baseItem
	byteSize int
	values   []float64
}

var _ Item = (*FloatItem)(nil)

// NewFloatItem creates a new FloatItem representing floating point data.
//
// byteSize is the size of each value in bytes (4 or 8).
// The item takes ownership of values; the caller must not modify the slice
// afterwards.
//
// If the byteSize is invalid or the total data size exceeds the maximum allowed
// byte size, an error is set on the item.
func NewFloatItem(byteSize int, values []float64) Item {
	item := &FloatItem{}

	if byteSize != 4 && byteSize != 8 {
		item.setErrorMsg("invalid byte size")
		return item
	}
	item.byteSize = byteSize

	if len(values)*byteSize > MaxByteSize {
		item.setErrorMsg("item size limit exceeded")
		return item
	}

	item.values = values

	return item
}

// Get implements Item.Get().
//
// It does not accept any index arguments as FloatItem represents a single item,
// not a list.
func (item *FloatItem) Get(indices ...int) (Item, error) {
	if len(indices) != 0 {
		err := fmt.Errorf("item is not a list, item type is %s, indices is %v", item.Type(), indices)
		item.setError(err)
		return nil, err
	}

	return item, nil
}

// ToFloat retrieves the floating point data stored within the item.
func (item *FloatItem) ToFloat() ([]float64, error) {
	return item.values, nil
}

// Values retrieves the floating point values stored in the item as a float64 slice.
//
// The returned value can be type-asserted to a `[]float64`.
func (item *FloatItem) Values() any {
	return item.values
}

// Size implements Item.Size().
func (item *FloatItem) Size() int {
	return len(item.values)
}

// ToBytes serializes the FloatItem into a byte slice conforming to the SECS-II
// data format, with big-endian IEEE-754 elements.
//
// Note that 4-byte serialization truncates float64 values to float32 precision.
func (item *FloatItem) ToBytes() []byte {
	byteLen := len(item.values) * item.byteSize
	result, err := encodeItemHeader(item.formatCode(), byteLen, byteLen)
	if err != nil {
		item.setError(err)
		return []byte{}
	}

	for _, v := range item.values {
		if item.byteSize == 4 {
			result = binary.BigEndian.AppendUint32(result, math.Float32bits(float32(v)))
		} else {
			result = binary.BigEndian.AppendUint64(result, math.Float64bits(v))
		}
	}

	return result
}

// Clone creates a deep copy of the FloatItem.
func (item *FloatItem) Clone() Item {
	return &FloatItem{byteSize: item.byteSize, values: util.CloneSlice(item.values, 0)}
}

// Type returns the item type name corresponding to the byte size.
func (item *FloatItem) Type() string {
	if item.byteSize == 4 {
		return Float32Type
	}
	return Float64Type
}

func (item *FloatItem) IsFloat32() bool { return item.byteSize == 4 }
func (item *FloatItem) IsFloat64() bool { return item.byteSize == 8 }

func (item *FloatItem) formatCode() FormatCode {
	if item.byteSize == 4 {
		return Float32FormatCode
	}
	return Float64FormatCode
}
