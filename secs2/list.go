package secs2

import (
	"errors"
)

// ListItem is an immutable data type that represents a list item in a SECS-II
// message.
//
// It contains other items, and the size of a ListItem is equal to the number of
// items it contains, counted non-recursively.
type ListItem struct {
	baseItem
	values []Item
}

var _ Item = (*ListItem)(nil)

// NewListItem creates a new ListItem representing an ordered sequence of items
// in a SECS-II message. Nil values are skipped.
func NewListItem(values ...Item) Item {
	item := &ListItem{}

	if len(values) > MaxByteSize {
		item.setErrorMsg("item size limit exceeded")
		return item
	}

	item.values = make([]Item, 0, len(values))
	for _, value := range values {
		if value == nil {
			continue
		}
		item.values = append(item.values, value)
	}

	return item
}

// Get retrieves a nested item at the specified indices, or the ListItem itself
// when no index is given.
func (item *ListItem) Get(indices ...int) (Item, error) {
	if len(indices) == 0 {
		return item, nil
	}

	var dataItem Item = item
	for _, idx := range indices {
		listItem, ok := dataItem.(*ListItem)
		if !ok {
			return nil, errors.New("failed to get nested item")
		}

		if idx < 0 || idx >= listItem.Size() {
			return nil, errors.New("failed to get nested item")
		}
		dataItem = listItem.values[idx]
	}

	return dataItem, nil
}

// ToList retrieves the list of items stored within the item.
func (item *ListItem) ToList() ([]Item, error) {
	return item.values, nil
}

// Size implements Item.Size().
func (item *ListItem) Size() int {
	return len(item.values)
}

// Values retrieves the items stored in the item as an Item slice.
//
// The returned value can be type-asserted to a `[]Item`.
func (item *ListItem) Values() any {
	return item.values
}

// ToBytes serializes the ListItem into a byte slice conforming to the SECS-II
// data format. The length field of a list counts child items, not bytes.
func (item *ListItem) ToBytes() []byte {
	result, err := encodeItemHeader(ListFormatCode, len(item.values), 0)
	if err != nil {
		item.setError(err)
		return []byte{}
	}

	for _, value := range item.values {
		if value == nil {
			continue
		}
		nestedResult := value.ToBytes()
		if len(nestedResult) == 0 {
			return []byte{}
		}

		result = append(result, nestedResult...)
	}

	return result
}

// Clone creates a deep copy of the ListItem and all of its children.
func (item *ListItem) Clone() Item {
	values := make([]Item, 0, len(item.values))
	for _, v := range item.values {
		values = append(values, v.Clone())
	}
	return &ListItem{values: values}
}

// Error returns the errors of the list item and all of its children.
func (item *ListItem) Error() error {
	var errs error
	if item.baseItem.itemErr != nil {
		errs = errors.Join(errs, item.baseItem.itemErr)
	}

	for _, v := range item.values {
		if v != nil {
			errs = errors.Join(errs, v.Error())
		}
	}

	return errs
}

// Type returns "list" string.
func (item *ListItem) Type() string { return ListType }

// IsList returns true, indicating that ListItem is a list data item.
func (item *ListItem) IsList() bool { return true }
