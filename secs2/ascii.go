package secs2

import (
	"fmt"
	"unicode"
)

// ASCIIItem represents an ASCII string in a SECS-II message.
//
// It implements the Item interface. The size of an ASCIIItem is the length of
// the string itself; an ASCIIItem stores a single string value.
type ASCIIItem struct {
	baseItem
	value string
}

var _ Item = (*ASCIIItem)(nil)

// NewASCIIItem creates a new ASCIIItem containing the given ASCII string.
//
// The input value must consist solely of ASCII characters (code points 0-127).
// If the string length exceeds the maximum allowed size, or the string contains
// any non-ASCII character, an error is set on the item.
func NewASCIIItem(value string) Item {
	item := &ASCIIItem{}

	if len(value) > MaxByteSize {
		item.setErrorMsg("string length limit exceeded")
		return item
	}

	for _, ch := range value {
		if ch > unicode.MaxASCII {
			item.setErrorMsg("encountered non-ASCII character")
			return item
		}
	}

	item.value = value

	return item
}

// Get implements Item.Get().
//
// It does not accept any index arguments as ASCIIItem represents a single item,
// not a list.
func (item *ASCIIItem) Get(indices ...int) (Item, error) {
	if len(indices) != 0 {
		err := fmt.Errorf("item is not a list, item type is %s, indices is %v", item.Type(), indices)
		item.setError(err)
		return nil, err
	}

	return item, nil
}

// ToASCII retrieves the ASCII string stored within the item.
func (item *ASCIIItem) ToASCII() (string, error) {
	return item.value, nil
}

// Values retrieves the ASCII string value stored in the item.
//
// The returned value can be type-asserted to a `string`.
func (item *ASCIIItem) Values() any {
	return item.value
}

// Size implements Item.Size().
func (item *ASCIIItem) Size() int {
	return len(item.value)
}

// ToBytes serializes the ASCIIItem into a byte slice conforming to the SECS-II
// data format.
func (item *ASCIIItem) ToBytes() []byte {
	result, err := encodeItemHeader(ASCIIFormatCode, len(item.value), len(item.value))
	if err != nil {
		item.setError(err)
		return []byte{}
	}
	return append(result, item.value...)
}

// Clone creates a deep copy of the ASCIIItem. Since strings are immutable in Go,
// copying the value field is sufficient.
func (item *ASCIIItem) Clone() Item {
	return &ASCIIItem{value: item.value}
}

// Type returns "ascii" string.
func (item *ASCIIItem) Type() string { return ASCIIType }

// IsASCII returns true, indicating that ASCIIItem is an ASCII data item.
func (item *ASCIIItem) IsASCII() bool { return true }
