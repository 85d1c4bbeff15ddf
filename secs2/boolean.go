package secs2

import (
	"fmt"

	"github.com/nexcim/secswire/internal/util"
)

// BooleanItem represents a list of boolean values in a SECS-II message.
//
// It implements the Item interface. On the wire each boolean occupies one byte;
// zero decodes to false, any non-zero value decodes to true.
type BooleanItem struct {
	baseItem
	values []bool
}

var _ Item = (*BooleanItem)(nil)

// NewBooleanItem creates a new BooleanItem holding the given boolean values.
//
// The item takes ownership of values; the caller must not modify the slice
// afterwards. If the data exceeds the maximum allowed byte size, an error is
// set on the item.
func NewBooleanItem(values []bool) Item {
	item := &BooleanItem{}

	if len(values) > MaxByteSize {
		item.setErrorMsg("item size limit exceeded")
		return item
	}

	item.values = values

	return item
}

// Get implements Item.Get().
//
// It does not accept any index arguments as BooleanItem represents a single item,
// not a list.
func (item *BooleanItem) Get(indices ...int) (Item, error) {
	if len(indices) != 0 {
		err := fmt.Errorf("item is not a list, item type is %s, indices is %v", item.Type(), indices)
		item.setError(err)
		return nil, err
	}

	return item, nil
}

// ToBoolean retrieves the boolean data stored within the item.
func (item *BooleanItem) ToBoolean() ([]bool, error) {
	return item.values, nil
}

// Values retrieves the boolean values stored in the item as a bool slice.
//
// The returned value can be type-asserted to a `[]bool`.
func (item *BooleanItem) Values() any {
	return item.values
}

// Size implements Item.Size().
func (item *BooleanItem) Size() int {
	return len(item.values)
}

// ToBytes serializes the BooleanItem into a byte slice conforming to the SECS-II
// data format.
func (item *BooleanItem) ToBytes() []byte {
	result, err := encodeItemHeader(BooleanFormatCode, len(item.values), len(item.values))
	if err != nil {
		item.setError(err)
		return []byte{}
	}

	for _, v := range item.values {
		if v {
			result = append(result, 1)
		} else {
			result = append(result, 0)
		}
	}

	return result
}

// Clone creates a deep copy of the BooleanItem.
func (item *BooleanItem) Clone() Item {
	return &BooleanItem{values: util.CloneSlice(item.values, 0)}
}

// Type returns "boolean" string.
func (item *BooleanItem) Type() string { return BooleanType }

// IsBoolean returns true, indicating that BooleanItem is a boolean data item.
func (item *BooleanItem) IsBoolean() bool { return true }
