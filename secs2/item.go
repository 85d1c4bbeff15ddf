package secs2

import (
	"errors"
	"fmt"
)

// MaxByteSize defines the maximum allowed size (in bytes) for an Item's data.
// The SECS-II length field is at most 3 bytes wide.
const MaxByteSize = 1<<24 - 1

// Item type name constants, returned by Item.Type().
const (
	EmptyType   = "empty"
	ListType    = "list"
	BinaryType  = "binary"
	BooleanType = "boolean"
	ASCIIType   = "ascii"
	JIS8Type    = "jis8"
	Int8Type    = "i1"
	Int16Type   = "i2"
	Int32Type   = "i4"
	Int64Type   = "i8"
	Uint8Type   = "u1"
	Uint16Type  = "u2"
	Uint32Type  = "u4"
	Uint64Type  = "u8"
	Float32Type = "f4"
	Float64Type = "f8"
)

// FormatCode is the 6-bit SECS-II item format code, the top 6 bits of an
// item's format byte.
type FormatCode = int

// SECS-II format codes as defined by SEMI E5, in octal.
const (
	ListFormatCode    FormatCode = 0o00
	BinaryFormatCode  FormatCode = 0o10
	BooleanFormatCode FormatCode = 0o11
	ASCIIFormatCode   FormatCode = 0o20
	JIS8FormatCode    FormatCode = 0o21
	Int64FormatCode   FormatCode = 0o30
	Int8FormatCode    FormatCode = 0o31
	Int16FormatCode   FormatCode = 0o32
	Int32FormatCode   FormatCode = 0o34
	Float64FormatCode FormatCode = 0o40
	Float32FormatCode FormatCode = 0o44
	Uint64FormatCode  FormatCode = 0o50
	Uint8FormatCode   FormatCode = 0o51
	Uint16FormatCode  FormatCode = 0o52
	Uint32FormatCode  FormatCode = 0o54
)

// Item represents an immutable data item in a SECS-II message.
//
// Items can hold various data types (e.g., binary, boolean, ASCII, integers,
// floats) and can be nested to form complex structures.
//
// There's a limit on the total size of data an Item can contain, as defined by
// the SEMI standard:
//
//	n * b <= 16,777,215 (3 bytes)
//	- n: number of data values within the Item
//	- b: byte size to represent each individual data value (varies by Item type)
type Item interface {
	// Get retrieves a nested Item at the specified indices.
	// An error is returned if the item doesn't represent a list or if the indices are invalid.
	Get(indices ...int) (Item, error)

	// ToList retrieves the list of items stored within the item.
	// Only available for ListItem.
	ToList() ([]Item, error)

	// ToBinary retrieves binary data as a byte slice stored within the item.
	// Only available for BinaryItem.
	ToBinary() ([]byte, error)

	// ToBoolean retrieves a list of boolean data stored within the item.
	// Only available for BooleanItem.
	ToBoolean() ([]bool, error)

	// ToASCII retrieves the ASCII string data stored within the item.
	// Only available for ASCIIItem.
	ToASCII() (string, error)

	// ToJIS8 retrieves the JIS-8 string data stored within the item.
	// Only available for JIS8Item.
	ToJIS8() (string, error)

	// ToInt retrieves a list of signed 64-bit integer data stored within the item.
	// Only available for IntItem.
	ToInt() ([]int64, error)

	// ToUint retrieves a list of unsigned 64-bit integer data stored within the item.
	// Only available for UintItem.
	ToUint() ([]uint64, error)

	// ToFloat retrieves a list of 64-bit float data stored within the item.
	// Only available for FloatItem.
	ToFloat() ([]float64, error)

	// Values returns the value(s) held by the Item.
	// The return type is `any`, and the actual type depends on the specific Item
	// implementation. Please refer to the documentation of the specific item type
	// for details on the returned value's type.
	Values() any

	// Size returns the list size of the data item, aka. the number of data values.
	Size() int

	// ToBytes serializes the Item into its byte representation for SECS-II message
	// transmission: format byte, length bytes, payload (children in order for lists).
	ToBytes() []byte

	// Clone creates a deep copy of the Item, allowing for safe modification
	// without affecting the original.
	Clone() Item

	// Error returns any error recorded on the Item: errors from its creation,
	// and errors from failed accessor calls on it (a To* method of another
	// item type, or Get with indices on a non-list item).
	Error() error

	// Type returns the item type name, one of the *Type constants.
	Type() string

	IsEmpty() bool
	IsList() bool
	IsBinary() bool
	IsBoolean() bool
	IsASCII() bool
	IsJIS8() bool
	IsInt8() bool
	IsInt16() bool
	IsInt32() bool
	IsInt64() bool
	IsUint8() bool
	IsUint16() bool
	IsUint32() bool
	IsUint64() bool
	IsFloat32() bool
	IsFloat64() bool
}

// An ItemError records a failed item creation.
type ItemError struct {
	err error
}

// NewItemError wraps err into an ItemError, unwrapping an existing ItemError first.
func NewItemError(err error) *ItemError {
	itemErr := &ItemError{}

	if errors.As(err, &itemErr) {
		return &ItemError{err: errors.Unwrap(err)}
	}

	return &ItemError{err: err}
}

func newItemErrorWithMsg(errMsg string) *ItemError {
	return &ItemError{err: errors.New(errMsg)}
}

func (e *ItemError) Error() string {
	return e.err.Error()
}

func (e *ItemError) Unwrap() error {
	return e.err
}

// EmptyItem is an immutable data type that represents an empty data item.
// A data message with a zero-length body carries an EmptyItem.
type EmptyItem struct {
	baseItem
}

// NewEmptyItem creates a new empty data item.
func NewEmptyItem() Item {
	return &EmptyItem{}
}

func (item *EmptyItem) Get(indices ...int) (Item, error) {
	if len(indices) != 0 {
		err := NewItemError(fmt.Errorf("item is not a list, item type is %s, indices is %v", item.Type(), indices))
		item.setError(err)
		return nil, err
	}

	return item, nil
}

func (item *EmptyItem) Size() int {
	return 0
}

func (item *EmptyItem) Values() any {
	return []string{}
}

func (item *EmptyItem) ToBytes() []byte {
	return []byte{}
}

func (item *EmptyItem) Clone() Item {
	return &EmptyItem{}
}

func (item *EmptyItem) Type() string {
	return EmptyType
}

func (item *EmptyItem) IsEmpty() bool { return true }

// baseItem provides a partial implementation of the Item interface,
// focusing on optional methods and error handling.
//
// Concrete implementations must provide their own logic for the remaining methods.
type baseItem struct {
	itemErr error
}

func (item *baseItem) ToList() ([]Item, error) {
	err := newItemErrorWithMsg("method ToList not implemented")
	item.setError(err)

	return nil, err
}

func (item *baseItem) ToBinary() ([]byte, error) {
	err := newItemErrorWithMsg("method ToBinary not implemented")
	item.setError(err)

	return nil, err
}

func (item *baseItem) ToBoolean() ([]bool, error) {
	err := newItemErrorWithMsg("method ToBoolean not implemented")
	item.setError(err)

	return nil, err
}

func (item *baseItem) ToASCII() (string, error) {
	err := newItemErrorWithMsg("method ToASCII not implemented")
	item.setError(err)

	return "", err
}

func (item *baseItem) ToJIS8() (string, error) {
	err := newItemErrorWithMsg("method ToJIS8 not implemented")
	item.setError(err)

	return "", err
}

func (item *baseItem) ToInt() ([]int64, error) {
	err := newItemErrorWithMsg("method ToInt not implemented")
	item.setError(err)

	return nil, err
}

func (item *baseItem) ToUint() ([]uint64, error) {
	err := newItemErrorWithMsg("method ToUint not implemented")
	item.setError(err)

	return nil, err
}

func (item *baseItem) ToFloat() ([]float64, error) {
	err := newItemErrorWithMsg("method ToFloat not implemented")
	item.setError(err)

	return nil, err
}

func (item *baseItem) Error() error {
	return item.itemErr
}

func (item *baseItem) IsEmpty() bool   { return false }
func (item *baseItem) IsList() bool    { return false }
func (item *baseItem) IsBinary() bool  { return false }
func (item *baseItem) IsBoolean() bool { return false }
func (item *baseItem) IsASCII() bool   { return false }
func (item *baseItem) IsJIS8() bool    { return false }
func (item *baseItem) IsInt8() bool    { return false }
func (item *baseItem) IsInt16() bool   { return false }
func (item *baseItem) IsInt32() bool   { return false }
func (item *baseItem) IsInt64() bool   { return false }
func (item *baseItem) IsUint8() bool   { return false }
func (item *baseItem) IsUint16() bool  { return false }
func (item *baseItem) IsUint32() bool  { return false }
func (item *baseItem) IsUint64() bool  { return false }
func (item *baseItem) IsFloat32() bool { return false }
func (item *baseItem) IsFloat64() bool { return false }

func (item *baseItem) setError(err error) {
	item.itemErr = errors.Join(item.itemErr, NewItemError(err))
}

func (item *baseItem) setErrorMsg(errMsg string) {
	item.itemErr = errors.Join(item.itemErr, newItemErrorWithMsg(errMsg))
}

// encodeItemHeader returns the header bytes, which consist of the format byte
// and the length bytes, of a SECS-II data item.
//
// dataByteLength is the payload length in bytes (or the child count for lists).
// preAlloc extra capacity is reserved for the payload so callers can append
// into the returned slice without reallocating.
func encodeItemHeader(formatCode FormatCode, dataByteLength int, preAlloc int) ([]byte, error) {
	if dataByteLength > MaxByteSize {
		return []byte{}, fmt.Errorf("item size %d exceeds maximum %d", dataByteLength, MaxByteSize)
	}

	lenBytes := []byte{
		byte(dataByteLength >> 16),
		byte(dataByteLength >> 8),
		byte(dataByteLength),
	}

	// determine the number of length bytes needed
	lenByteCount := 3
	if lenBytes[0] == 0 {
		lenByteCount--
		if lenBytes[1] == 0 {
			lenByteCount--
		}
	}

	result := make([]byte, 0, 1+lenByteCount+preAlloc)
	result = append(result, byte(formatCode<<2+lenByteCount))
	result = append(result, lenBytes[3-lenByteCount:]...)

	return result, nil
}
