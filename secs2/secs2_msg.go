package secs2

// SECS2Message represents a SECS-II message with its stream code, function
// code, wait bit and data item.
type SECS2Message interface {
	// StreamCode returns the stream code of the SECS-II message.
	StreamCode() uint8
	// FunctionCode returns the function code of the SECS-II message.
	FunctionCode() uint8
	// WaitBit returns true if the wait bit of the SECS-II message is set,
	// indicating a reply is expected.
	WaitBit() bool
	// Item returns the SECS-II data item of the message body.
	Item() Item
}
