package hsms

import (
	"encoding/binary"
	"fmt"
	"sync"

	"github.com/nexcim/secswire/logger"
	"github.com/nexcim/secswire/secs2"
)

// DefaultStreamBufferSize is the receive buffer capacity used when the caller
// does not request a specific initial size.
const DefaultStreamBufferSize = 4096

// DataMessageHandler is the upcall invoked once per completed data message.
type DataMessageHandler func(msg *DataMessage)

// ControlMessageHandler is the upcall invoked once per completed control message.
type ControlMessageHandler func(msg *ControlMessage)

// decodeStep identifies the state of the framing state machine. Each step
// consumes a fixed or known-dynamic number of bytes at the decode cursor.
type decodeStep int

const (
	stepLength     decodeStep = iota // 4-byte message length prefix
	stepHeader                       // 10-byte message header
	stepItemHeader                   // 1-byte item format byte
	stepItemLength                   // 1-3 big-endian item length bytes
	stepItemBody                     // list push or leaf payload
)

// listFrame tracks one unclosed list ancestor of the item currently being
// parsed: its declared arity and the children accumulated so far.
type listFrame struct {
	children []secs2.Item
	arity    int
}

// StreamDecoder reassembles HSMS messages from a byte stream delivered in
// arbitrary-sized chunks.
//
// The decoder owns a contiguous receive buffer with two cursors: a write
// offset marking where the transport appends, and a decode offset marking the
// next unread byte for the framing state machine. A transport obtains the
// writable region with WritableTail, reads from its socket directly into it,
// and calls Decode with the number of bytes written. Completed messages are
// delivered synchronously through the handlers supplied at construction.
//
// A single message may be split across any number of reads, and a single read
// may contain fragments of many messages; the state machine makes forward
// progress on whatever bytes are available and records where to resume.
// Nested lists are reassembled iteratively with an explicit stack of
// (arity, children) frames, so parse state never depends on the call stack and
// a list may be interrupted by a chunk boundary at any byte.
//
// StreamDecoder is a single-writer object: Decode and Reset serialize on an
// internal lock, and handlers run under that lock. Handlers must not call back
// into the decoder.
type StreamDecoder struct {
	onControlMessage ControlMessageHandler
	onDataMessage    DataMessageHandler
	logger           logger.Logger
	metrics          *DecoderMetrics

	mu sync.Mutex

	buf       []byte
	writeOff  int // next position the transport may write into
	decodeOff int // next unread byte for the state machine

	step decodeStep
	need int // shortfall of the stalled step, 0 while progressing

	msgTotal  int // declared total length of the current message, header + body
	msgRemain int // bytes of the current message not yet consumed from the wire
	header    MessageHeader

	// scratch fields for the item currently being parsed
	itemFormat   secs2.FormatCode
	itemLenCount int
	itemLength   int

	stack []listFrame

	failErr error
}

// StreamDecoderOption configures a StreamDecoder.
type StreamDecoderOption func(*StreamDecoder)

// WithDecoderLogger sets the logger used for buffer management and protocol
// error logging. The package default logger is used otherwise.
func WithDecoderLogger(l logger.Logger) StreamDecoderOption {
	return func(d *StreamDecoder) {
		d.logger = l
	}
}

// WithDecoderMetrics sets the metrics collector updated by the decoder,
// allowing several decoders to share one collector.
func WithDecoderMetrics(m *DecoderMetrics) StreamDecoderOption {
	return func(d *StreamDecoder) {
		d.metrics = m
	}
}

// NewStreamDecoder creates a streaming HSMS decoder with the given initial
// receive buffer capacity and message handlers.
//
// initialSize is clamped to hold at least one message length prefix and
// header; a non-positive value selects DefaultStreamBufferSize. The buffer
// grows on demand and its capacity is retained across Reset.
func NewStreamDecoder(initialSize int, onControl ControlMessageHandler, onData DataMessageHandler, opts ...StreamDecoderOption) *StreamDecoder {
	if initialSize <= 0 {
		initialSize = DefaultStreamBufferSize
	}
	if initialSize < MinHSMSSize {
		initialSize = MinHSMSSize
	}

	d := &StreamDecoder{
		onControlMessage: onControl,
		onDataMessage:    onData,
		buf:              make([]byte, initialSize),
		step:             stepLength,
	}

	for _, opt := range opts {
		opt(d)
	}

	if d.logger == nil {
		d.logger = logger.GetLogger()
	}
	if d.metrics == nil {
		d.metrics = &DecoderMetrics{}
	}

	return d
}

// WritableTail returns the region of the receive buffer the transport may
// write into, from the write offset to the buffer capacity.
//
// The returned slice is only valid until the next Decode or Reset call.
func (d *StreamDecoder) WritableTail() []byte {
	d.mu.Lock()
	defer d.mu.Unlock()

	return d.buf[d.writeOff:]
}

// WritableTailLen returns the remaining writable tail capacity.
func (d *StreamDecoder) WritableTailLen() int {
	d.mu.Lock()
	defer d.mu.Unlock()

	return len(d.buf) - d.writeOff
}

// Metrics returns the metrics collector updated by this decoder.
func (d *StreamDecoder) Metrics() *DecoderMetrics {
	return d.metrics
}

// Decode advances the framing state machine over n newly written bytes.
//
// The caller must have appended exactly n bytes to the writable tail before
// the call. Zero or more completed messages are dispatched synchronously to
// the handlers; afterwards the receive buffer is grown or compacted as needed
// so the next read always has room for the bytes the decoder is waiting for.
//
// It returns true if the decoder has consumed a length prefix and is
// mid-message, false when it sits at a message boundary.
//
// A non-positive n fails with ErrInvalidDecodeLength and an n exceeding the
// writable tail fails with ErrDecodeOverflow, both leaving state untouched.
// Framing anomalies fail with an error wrapping ErrProtocol and latch the
// decoder: further Decode calls return ErrDecoderFailed until Reset.
func (d *StreamDecoder) Decode(n int) (bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.failErr != nil {
		return false, ErrDecoderFailed
	}

	if n <= 0 {
		return d.step != stepLength, ErrInvalidDecodeLength
	}

	if d.writeOff+n > len(d.buf) {
		return d.step != stepLength, ErrDecodeOverflow
	}

	d.writeOff += n
	d.metrics.addBytesRecv(uint64(n)) //nolint:gosec

	if err := d.run(); err != nil {
		d.failErr = err
		d.metrics.incProtocolErrCount()
		d.logger.Error("hsms stream framing error", "error", err)

		return false, err
	}

	d.manageBuffer()

	return d.step != stepLength, nil
}

// Reset abandons any partially parsed message and returns the decoder to its
// initial state: the frame stack is emptied, both cursors return to zero, the
// state machine returns to the length step, and a latched protocol error is
// cleared. Buffer capacity is retained, so a decoder instance is reusable
// across reconnections.
func (d *StreamDecoder) Reset() {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.writeOff = 0
	d.decodeOff = 0
	d.step = stepLength
	d.need = 0
	d.msgTotal = 0
	d.msgRemain = 0
	d.header = MessageHeader{}
	d.itemFormat = 0
	d.itemLenCount = 0
	d.itemLength = 0
	d.stack = d.stack[:0]
	d.failErr = nil
}

// available returns the number of buffered bytes not yet consumed.
func (d *StreamDecoder) available() int {
	return d.writeOff - d.decodeOff
}

// run drives the state machine until a step stalls for more bytes.
// A step that stalls records its shortfall in need and returns its own index;
// a step that consumes its bytes returns the next step, which runs in the
// same call.
func (d *StreamDecoder) run() error {
	for {
		prev := d.step
		d.need = 0

		next, err := d.runStep()
		if err != nil {
			return err
		}

		d.step = next
		if next == prev && d.need > 0 {
			return nil
		}
	}
}

func (d *StreamDecoder) runStep() (decodeStep, error) {
	switch d.step {
	case stepLength:
		return d.stepLength()
	case stepHeader:
		return d.stepHeader()
	case stepItemHeader:
		return d.stepItemHeader()
	case stepItemLength:
		return d.stepItemLength()
	case stepItemBody:
		return d.stepItemBody()
	default:
		return d.step, fmt.Errorf("%w: unknown decode step %d", ErrProtocol, d.step)
	}
}

// stepLength reads the 4-byte big-endian total message length.
func (d *StreamDecoder) stepLength() (decodeStep, error) {
	if avail := d.available(); avail < LengthFieldSize {
		d.need = LengthFieldSize - avail
		return stepLength, nil
	}

	msgLen := binary.BigEndian.Uint32(d.buf[d.decodeOff:])
	if msgLen < HeaderSize {
		return stepLength, fmt.Errorf("%w: message length %d below header size", ErrProtocol, msgLen)
	}
	if msgLen > MaxMessageSize {
		return stepLength, fmt.Errorf("%w: message length %d exceeds maximum allowed size", ErrProtocol, msgLen)
	}

	d.decodeOff += LengthFieldSize
	d.msgTotal = int(msgLen)
	d.msgRemain = d.msgTotal

	return stepHeader, nil
}

// stepHeader reads and decodes the 10-byte message header. Messages with an
// empty body are dispatched immediately; otherwise the item steps take over,
// or the whole remaining body is decoded at once when it is already buffered.
func (d *StreamDecoder) stepHeader() (decodeStep, error) {
	if avail := d.available(); avail < HeaderSize {
		d.need = HeaderSize - avail
		return stepHeader, nil
	}

	header, err := DecodeMessageHeader(d.buf[d.decodeOff : d.decodeOff+HeaderSize])
	if err != nil {
		return stepHeader, fmt.Errorf("%w: %w", ErrProtocol, err)
	}

	if header.PType != 0 {
		return stepHeader, fmt.Errorf("%w: invalid PType: %d", ErrProtocol, header.PType)
	}

	if _, ok := hsmsMsgTypeMap[int(header.SType)]; !ok {
		return stepHeader, fmt.Errorf("%w: undefined SType: %d", ErrProtocol, header.SType)
	}

	d.decodeOff += HeaderSize
	d.msgRemain -= HeaderSize
	d.header = header

	if d.msgRemain == 0 {
		if header.IsDataMessage() {
			return d.dispatchDataMessage(secs2.NewEmptyItem())
		}

		d.dispatchControlMessage()

		return stepLength, nil
	}

	// HSMS control messages are header-only; a declared body is a framing error
	if !header.IsDataMessage() {
		return stepHeader, fmt.Errorf("%w: control message %s carries %d body bytes",
			ErrProtocol, MsgTypeName(int(header.SType)), d.msgRemain)
	}

	// fast path: the whole body is already buffered, decode it in one pass
	// without entering the resumable item steps
	if d.available() >= d.msgRemain {
		item, err := decodeItemBytes(d.buf[d.decodeOff : d.decodeOff+d.msgRemain])
		if err != nil {
			return stepHeader, fmt.Errorf("%w: %w", ErrProtocol, err)
		}

		d.decodeOff += d.msgRemain
		d.msgRemain = 0
		d.metrics.incFastPathCount()

		return d.dispatchDataMessage(item)
	}

	return stepItemHeader, nil
}

// stepItemHeader reads the item format byte: 6-bit format code and 2-bit
// length byte count.
func (d *StreamDecoder) stepItemHeader() (decodeStep, error) {
	if d.msgRemain < 1 {
		return stepItemHeader, fmt.Errorf("%w: item header overflows declared message length", ErrProtocol)
	}

	if d.available() < 1 {
		d.need = 1
		return stepItemHeader, nil
	}

	formatByte := d.buf[d.decodeOff]
	d.itemFormat = secs2.FormatCode(formatByte >> 2)
	d.itemLenCount = int(formatByte & 0x3)

	if d.itemLenCount == 0 {
		return stepItemHeader, fmt.Errorf("%w: length byte count is zero", ErrProtocol)
	}

	d.decodeOff++
	d.msgRemain--

	return stepItemLength, nil
}

// stepItemLength reads the 1-3 big-endian item length bytes.
func (d *StreamDecoder) stepItemLength() (decodeStep, error) {
	if d.msgRemain < d.itemLenCount {
		return stepItemLength, fmt.Errorf("%w: item length bytes overflow declared message length", ErrProtocol)
	}

	if avail := d.available(); avail < d.itemLenCount {
		d.need = d.itemLenCount - avail
		return stepItemLength, nil
	}

	d.itemLength = decodeItemLength(d.buf[d.decodeOff : d.decodeOff+d.itemLenCount])
	d.decodeOff += d.itemLenCount
	d.msgRemain -= d.itemLenCount

	return stepItemBody, nil
}

// stepItemBody opens a list frame, produces an empty list, or decodes a leaf
// payload, then rolls completed items up the frame stack.
func (d *StreamDecoder) stepItemBody() (decodeStep, error) {
	if d.itemFormat == secs2.ListFormatCode {
		if d.itemLength == 0 {
			return d.completeItem(secs2.NewListItem())
		}

		if len(d.stack) >= MaxListDepth {
			return stepItemBody, fmt.Errorf("%w: list nesting depth exceeds maximum allowed: %d", ErrProtocol, MaxListDepth)
		}

		// each child item needs at least 2 bytes (1 format byte + 1 length
		// byte); an arity beyond the declared message length must fail here,
		// before it sizes the children slice
		if d.itemLength > d.msgRemain {
			return stepItemBody, fmt.Errorf("%w: list claims %d items but only %d message bytes remain", ErrProtocol, d.itemLength, d.msgRemain)
		}

		// a list header is immediately followed by its first child's header
		d.stack = append(d.stack, listFrame{
			children: make([]secs2.Item, 0, d.itemLength),
			arity:    d.itemLength,
		})

		return stepItemHeader, nil
	}

	if d.itemLength > d.msgRemain {
		return stepItemBody, fmt.Errorf("%w: item payload of %d bytes overflows declared message length", ErrProtocol, d.itemLength)
	}

	if avail := d.available(); avail < d.itemLength {
		d.need = d.itemLength - avail
		return stepItemBody, nil
	}

	item, err := decodeLeafItem(d.itemFormat, d.buf[d.decodeOff:d.decodeOff+d.itemLength])
	if err != nil {
		return stepItemBody, fmt.Errorf("%w: %w", ErrProtocol, err)
	}

	d.decodeOff += d.itemLength
	d.msgRemain -= d.itemLength

	return d.completeItem(item)
}

// completeItem appends a just-produced item to its parent frame, wrapping and
// popping frames whose arity is met. When no frame remains the item is the
// message root and the message is dispatched.
func (d *StreamDecoder) completeItem(item secs2.Item) (decodeStep, error) {
	for {
		if len(d.stack) == 0 {
			if d.msgRemain != 0 {
				return stepItemBody, fmt.Errorf("%w: %d bytes remain after message root item", ErrProtocol, d.msgRemain)
			}

			return d.dispatchDataMessage(item)
		}

		top := &d.stack[len(d.stack)-1]
		top.children = append(top.children, item)
		if len(top.children) < top.arity {
			// next sibling follows
			return stepItemHeader, nil
		}

		item = secs2.NewListItem(top.children...)
		d.stack = d.stack[:len(d.stack)-1]
	}
}

func (d *StreamDecoder) dispatchDataMessage(item secs2.Item) (decodeStep, error) {
	msg, err := NewDataMessageFromHeader(d.header, item)
	if err != nil {
		return d.step, fmt.Errorf("%w: %w", ErrProtocol, err)
	}

	d.metrics.incDataMsgRecvCount()
	if d.onDataMessage != nil {
		d.onDataMessage(msg)
	}

	return stepLength, nil
}

func (d *StreamDecoder) dispatchControlMessage() {
	d.metrics.incControlMsgRecvCount()
	if d.onControlMessage != nil {
		d.onControlMessage(NewControlMessage(d.header, false))
	}
}

// manageBuffer grows or compacts the receive buffer after a decode pass so the
// writable tail can hold at least the bytes the stalled step is waiting for.
//
// Growth doubles the required size to amortise reallocation; when residue must
// be relocated, the new size is floored at half the declared message length to
// bias sizing toward whole-message residency after a large message arrives.
// Capacity never shrinks.
func (d *StreamDecoder) manageBuffer() {
	remain := d.available()

	if remain == 0 {
		if d.need > len(d.buf) {
			d.buf = make([]byte, d.need<<1)
			d.metrics.incBufferGrowCount()
			d.logger.Debug("receive buffer grown", "capacity", len(d.buf))
		}
		d.writeOff = 0
		d.decodeOff = 0

		return
	}

	required := remain + d.need

	if required > len(d.buf) {
		newSize := max(d.msgTotal/2, required) << 1
		newBuf := make([]byte, newSize)
		copy(newBuf, d.buf[d.decodeOff:d.writeOff])
		d.buf = newBuf
		d.writeOff = remain
		d.decodeOff = 0
		d.metrics.incBufferGrowCount()
		d.logger.Debug("receive buffer grown", "capacity", len(d.buf), "residue", remain)

		return
	}

	if required > len(d.buf)-d.writeOff {
		copy(d.buf, d.buf[d.decodeOff:d.writeOff])
		d.writeOff = remain
		d.decodeOff = 0
		d.metrics.incBufferCompactCount()
		d.logger.Debug("receive buffer compacted", "capacity", len(d.buf), "residue", remain)
	}
}
