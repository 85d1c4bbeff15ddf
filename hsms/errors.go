package hsms

import "errors"

var (
	// ErrInvalidStreamCode indicates that an invalid stream code was provided.
	// Valid stream codes are in the range of 0 to 127.
	ErrInvalidStreamCode = errors.New("invalid stream code, should be in range of [0, 127]")

	// ErrInvalidSystemBytes indicates that invalid system bytes were provided.
	// System bytes should be a 4-byte slice.
	ErrInvalidSystemBytes = errors.New("invalid system bytes, length is not 4")

	// ErrInvalidHeaderLength indicates that a header slice does not have the
	// required 10-byte length.
	ErrInvalidHeaderLength = errors.New("invalid header, length is not 10")

	// ErrInvalidReqMsg indicates that the message is not a valid request/primary message.
	ErrInvalidReqMsg = errors.New("message is not a valid request/primary message")

	// ErrInvalidRspMsg indicates that the message is not a valid response/secondary message.
	ErrInvalidRspMsg = errors.New("message is not a valid response/secondary message")

	// ErrNotDataMsg indicates that the message is not a data message.
	ErrNotDataMsg = errors.New("message is not a data message")

	// ErrNotControlMsg indicates that the message is not a control message.
	ErrNotControlMsg = errors.New("message is not a control message")
)

var (
	// ErrProtocol indicates a fatal framing or semantic anomaly in the byte
	// stream: an unknown format code, a zero length-byte count, an item length
	// overflowing the declared message length, or similar. SECS has no framing
	// sync marker, so the decoder makes no attempt to resynchronise; the
	// transport above is expected to tear the connection down.
	ErrProtocol = errors.New("hsms protocol error")

	// ErrInvalidDecodeLength indicates that Decode was called with a
	// non-positive byte count.
	ErrInvalidDecodeLength = errors.New("decode byte count must be positive")

	// ErrDecodeOverflow indicates that Decode was called with a byte count
	// larger than the writable tail of the receive buffer.
	ErrDecodeOverflow = errors.New("decode byte count exceeds writable tail")

	// ErrDecoderFailed indicates that the decoder previously hit a protocol
	// error and requires Reset before it can decode again.
	ErrDecoderFailed = errors.New("decoder is in failed state, reset required")
)
