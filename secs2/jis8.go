package secs2

import "fmt"

// JIS8Item represents a JIS-8 encoded string in a SECS-II message.
//
// It implements the Item interface. The item stores the raw JIS-8 byte sequence
// as a Go string; no transcoding is performed, the bytes are carried through
// as they appear on the wire.
type JIS8Item struct {
	baseItem
	value string
}

var _ Item = (*JIS8Item)(nil)

// NewJIS8Item creates a new JIS8Item containing the given JIS-8 string.
//
// If the string length exceeds the maximum allowed size, an error is set on the item.
func NewJIS8Item(value string) Item {
	item := &JIS8Item{}

	if len(value) > MaxByteSize {
		item.setErrorMsg("string length limit exceeded")
		return item
	}

	item.value = value

	return item
}

// Get implements Item.Get().
//
// It does not accept any index arguments as JIS8Item represents a single item,
// not a list.
func (item *JIS8Item) Get(indices ...int) (Item, error) {
	if len(indices) != 0 {
		err := fmt.Errorf("item is not a list, item type is %s, indices is %v", item.Type(), indices)
		item.setError(err)
		return nil, err
	}

	return item, nil
}

// ToJIS8 retrieves the JIS-8 string stored within the item.
func (item *JIS8Item) ToJIS8() (string, error) {
	return item.value, nil
}

// Values retrieves the JIS-8 string value stored in the item.
//
// The returned value can be type-asserted to a `string`.
func (item *JIS8Item) Values() any {
	return item.value
}

// Size implements Item.Size().
func (item *JIS8Item) Size() int {
	return len(item.value)
}

// ToBytes serializes the JIS8Item into a byte slice conforming to the SECS-II
// data format.
func (item *JIS8Item) ToBytes() []byte {
	result, err := encodeItemHeader(JIS8FormatCode, len(item.value), len(item.value))
	if err != nil {
		item.setError(err)
		return []byte{}
	}
	return append(result, item.value...)
}

// Clone creates a deep copy of the JIS8Item.
func (item *JIS8Item) Clone() Item {
	return &JIS8Item{value: item.value}
}

// Type returns "jis8" string.
func (item *JIS8Item) Type() string { return JIS8Type }

// IsJIS8 returns true, indicating that JIS8Item is a JIS-8 data item.
func (item *JIS8Item) IsJIS8() bool { return true }
