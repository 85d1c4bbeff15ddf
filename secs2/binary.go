package secs2

import (
	"fmt"

	"github.com/nexcim/secswire/internal/util"
)

// BinaryItem represents raw binary data in a SECS-II message.
//
// It implements the Item interface. The item takes ownership of the byte slice
// passed to its constructor; use Clone for an independent copy.
type BinaryItem struct {
	baseItem
	values []byte
}

var _ Item = (*BinaryItem)(nil)

// NewBinaryItem creates a new BinaryItem holding the given bytes.
//
// The item takes ownership of values; the caller must not modify the slice
// afterwards. If the data exceeds the maximum allowed byte size, an error is
// set on the item.
func NewBinaryItem(values []byte) Item {
	item := &BinaryItem{}

	if len(values) > MaxByteSize {
		item.setErrorMsg("item size limit exceeded")
		return item
	}

	item.values = values

	return item
}

// Get implements Item.Get().
//
// It does not accept any index arguments as BinaryItem represents a single item,
// not a list.
func (item *BinaryItem) Get(indices ...int) (Item, error) {
	if len(indices) != 0 {
		err := fmt.Errorf("item is not a list, item type is %s, indices is %v", item.Type(), indices)
		item.setError(err)
		return nil, err
	}

	return item, nil
}

// ToBinary retrieves the binary data stored within the item.
func (item *BinaryItem) ToBinary() ([]byte, error) {
	return item.values, nil
}

// Values retrieves the binary value stored in the item as a byte slice.
//
// It returns a direct reference to the underlying byte slice; modifying the
// returned slice will directly affect the data within the item.
//
// The returned value can be type-asserted to a `[]byte`.
func (item *BinaryItem) Values() any {
	return item.values
}

// Size implements Item.Size().
func (item *BinaryItem) Size() int {
	return len(item.values)
}

// ToBytes serializes the BinaryItem into a byte slice conforming to the SECS-II
// data format.
func (item *BinaryItem) ToBytes() []byte {
	result, err := encodeItemHeader(BinaryFormatCode, len(item.values), len(item.values))
	if err != nil {
		item.setError(err)
		return []byte{}
	}
	return append(result, item.values...)
}

// Clone creates a deep copy of the BinaryItem.
func (item *BinaryItem) Clone() Item {
	return &BinaryItem{values: util.CloneSlice(item.values, 0)}
}

// Type returns "binary" string.
func (item *BinaryItem) Type() string { return BinaryType }

// IsBinary returns true, indicating that BinaryItem is a binary data item.
func (item *BinaryItem) IsBinary() bool { return true }
