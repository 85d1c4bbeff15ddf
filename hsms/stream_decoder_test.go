package hsms

import (
	"testing"

	"github.com/nexcim/secswire/secs2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// msgCollector accumulates dispatched messages in arrival order.
type msgCollector struct {
	dataMsgs []*DataMessage
	ctrlMsgs []*ControlMessage
	order    []int
}

func (c *msgCollector) onData(msg *DataMessage) {
	c.dataMsgs = append(c.dataMsgs, msg)
	c.order = append(c.order, DataMsgType)
}

func (c *msgCollector) onControl(msg *ControlMessage) {
	c.ctrlMsgs = append(c.ctrlMsgs, msg)
	c.order = append(c.order, msg.Type())
}

func newTestDecoder(bufSize int) (*StreamDecoder, *msgCollector) {
	collector := &msgCollector{}
	decoder := NewStreamDecoder(bufSize, collector.onControl, collector.onData)
	return decoder, collector
}

// feedBytes writes data into the decoder's writable tail, invoking Decode as
// many times as the tail capacity requires, and returns the last in-message
// indication.
func feedBytes(t *testing.T, d *StreamDecoder, data []byte) bool {
	t.Helper()

	inMsg := false
	for len(data) > 0 {
		n := copy(d.WritableTail(), data)
		require.Positive(t, n)

		var err error
		inMsg, err = d.Decode(n)
		require.NoError(t, err)
		data = data[n:]
	}

	return inMsg
}

// feedChunks writes data chunk by chunk with one Decode call per chunk.
// The chunk sizes must sum to len(data) and each chunk must fit the tail.
func feedChunks(t *testing.T, d *StreamDecoder, data []byte, sizes []int) bool {
	t.Helper()

	inMsg := false
	for _, size := range sizes {
		require.GreaterOrEqual(t, d.WritableTailLen(), size)
		copy(d.WritableTail(), data[:size])

		var err error
		inMsg, err = d.Decode(size)
		require.NoError(t, err)
		data = data[size:]
	}
	require.Empty(t, data)

	return inMsg
}

var selectReqBytes = []byte{
	0x00, 0x00, 0x00, 0x0A,
	0x00, 0x01, 0x00, 0x00, 0x00, 0x01, 0x00, 0x00, 0x00, 0x02,
}

var emptyDataMsgBytes = []byte{
	0x00, 0x00, 0x00, 0x0A,
	0x00, 0x01, 0x81, 0x01, 0x00, 0x00, 0x00, 0x00, 0x00, 0x03,
}

var asciiDataMsgBytes = []byte{
	0x00, 0x00, 0x00, 0x11,
	0x00, 0x01, 0x81, 0x0D, 0x00, 0x00, 0x00, 0x00, 0x00, 0x04,
	0x41, 0x05, 0x48, 0x65, 0x6C, 0x6C, 0x6F,
}

func TestStreamDecoder_SelectReq(t *testing.T) {
	require := require.New(t)
	assert := assert.New(t)

	decoder, collector := newTestDecoder(64)

	inMsg := feedBytes(t, decoder, selectReqBytes)
	assert.False(inMsg)

	require.Len(collector.ctrlMsgs, 1)
	require.Empty(collector.dataMsgs)

	msg := collector.ctrlMsgs[0]
	assert.Equal(SelectReqType, msg.Type())
	assert.Equal(uint16(1), msg.SessionID())
	assert.Equal(uint8(0), msg.StreamCode())
	assert.Equal(uint8(0), msg.FunctionCode())
	assert.False(msg.WaitBit())
	assert.Equal(uint32(2), msg.ID())
}

func TestStreamDecoder_EmptyBodyDataMessage(t *testing.T) {
	require := require.New(t)
	assert := assert.New(t)

	decoder, collector := newTestDecoder(64)

	inMsg := feedBytes(t, decoder, emptyDataMsgBytes)
	assert.False(inMsg)

	require.Len(collector.dataMsgs, 1)
	require.Empty(collector.ctrlMsgs)

	msg := collector.dataMsgs[0]
	assert.Equal(uint8(1), msg.StreamCode())
	assert.Equal(uint8(1), msg.FunctionCode())
	assert.True(msg.WaitBit())
	assert.Equal(uint32(3), msg.ID())
	assert.True(msg.Item().IsEmpty())
}

func TestStreamDecoder_ASCIIItem(t *testing.T) {
	require := require.New(t)
	assert := assert.New(t)

	decoder, collector := newTestDecoder(64)

	inMsg := feedBytes(t, decoder, asciiDataMsgBytes)
	assert.False(inMsg)

	require.Len(collector.dataMsgs, 1)
	msg := collector.dataMsgs[0]
	assert.Equal(uint8(1), msg.StreamCode())
	assert.Equal(uint8(13), msg.FunctionCode())

	str, err := msg.Item().ToASCII()
	require.NoError(err)
	assert.Equal("Hello", str)
}

func TestStreamDecoder_NestedList(t *testing.T) {
	require := require.New(t)
	assert := assert.New(t)

	// L[ U1[1], L[ A["a"] ] ]
	src, err := NewDataMessage(6, 11, false, 1, GenerateMsgSystemBytes(),
		secs2.L(
			secs2.U1(1),
			secs2.L(secs2.A("a")),
		),
	)
	require.NoError(err)
	encoded := src.ToBytes()

	decoder, collector := newTestDecoder(64)
	inMsg := feedBytes(t, decoder, encoded)
	assert.False(inMsg)

	require.Len(collector.dataMsgs, 1)
	msg := collector.dataMsgs[0]
	assert.Equal(encoded, msg.ToBytes())

	root := msg.Item()
	require.True(root.IsList())
	require.Equal(2, root.Size())

	u1, err := root.Get(0)
	require.NoError(err)
	values, err := u1.ToUint()
	require.NoError(err)
	assert.Equal([]uint64{1}, values)

	inner, err := root.Get(1, 0)
	require.NoError(err)
	str, err := inner.ToASCII()
	require.NoError(err)
	assert.Equal("a", str)
}

func TestStreamDecoder_FragmentedDelivery(t *testing.T) {
	require := require.New(t)
	assert := assert.New(t)

	decoder, collector := newTestDecoder(64)

	// four calls of 4, 6, 4 and 7 bytes
	inMsg := feedChunks(t, decoder, asciiDataMsgBytes, []int{4, 6, 4, 7})
	assert.False(inMsg)

	require.Len(collector.dataMsgs, 1)
	str, err := collector.dataMsgs[0].Item().ToASCII()
	require.NoError(err)
	assert.Equal("Hello", str)
}

func TestStreamDecoder_InMessageIndication(t *testing.T) {
	assert := assert.New(t)

	decoder, _ := newTestDecoder(64)

	// two bytes of the length prefix: no length consumed yet
	inMsg := feedChunks(t, decoder, asciiDataMsgBytes[:2], []int{2})
	assert.False(inMsg)

	// two more: the length prefix is complete, decoder is mid-message
	inMsg = feedChunks(t, decoder, asciiDataMsgBytes[2:4], []int{2})
	assert.True(inMsg)

	// mid-header
	inMsg = feedChunks(t, decoder, asciiDataMsgBytes[4:9], []int{5})
	assert.True(inMsg)

	// rest of the message
	inMsg = feedChunks(t, decoder, asciiDataMsgBytes[9:], []int{12})
	assert.False(inMsg)
}

func TestStreamDecoder_ConcatenatedMessages(t *testing.T) {
	require := require.New(t)
	assert := assert.New(t)

	decoder, collector := newTestDecoder(64)

	input := make([]byte, 0, len(selectReqBytes)+len(emptyDataMsgBytes))
	input = append(input, selectReqBytes...)
	input = append(input, emptyDataMsgBytes...)

	inMsg := feedChunks(t, decoder, input, []int{len(input)})
	assert.False(inMsg)

	require.Len(collector.ctrlMsgs, 1)
	require.Len(collector.dataMsgs, 1)
	require.Equal([]int{SelectReqType, DataMsgType}, collector.order)
}

func TestStreamDecoder_FragmentationInvariance(t *testing.T) {
	require := require.New(t)

	// binary payload of 256 bytes forces a two-byte item length field, so the
	// two-chunk sweep below lands on every interesting boundary: after the
	// length prefix, mid-header, after the header, mid-item-length and
	// mid-payload
	payload := make([]byte, 256)
	for i := range payload {
		payload[i] = byte(i)
	}
	src, err := NewDataMessage(2, 1, false, 10, GenerateMsgSystemBytes(), secs2.B(payload...))
	require.NoError(err)
	encoded := src.ToBytes()

	for split := 1; split < len(encoded); split++ {
		decoder, collector := newTestDecoder(32)
		feedBytes(t, decoder, encoded[:split])
		inMsg := feedBytes(t, decoder, encoded[split:])

		require.False(inMsg, "split at %d", split)
		require.Len(collector.dataMsgs, 1, "split at %d", split)
		require.Equal(encoded, collector.dataMsgs[0].ToBytes(), "split at %d", split)
	}
}

func TestStreamDecoder_ByteAtATimeDeepNesting(t *testing.T) {
	require := require.New(t)
	assert := assert.New(t)

	// ten levels of nesting around a single ASCII leaf
	item := secs2.A("deep")
	for i := 0; i < 10; i++ {
		item = secs2.L(item)
	}
	src, err := NewDataMessage(1, 1, false, 1, GenerateMsgSystemBytes(), item)
	require.NoError(err)
	encoded := src.ToBytes()

	decoder, collector := newTestDecoder(16)
	for i := range encoded {
		copy(decoder.WritableTail(), encoded[i:i+1])
		_, err := decoder.Decode(1)
		require.NoError(err)
	}

	require.Len(collector.dataMsgs, 1)
	assert.Equal(encoded, collector.dataMsgs[0].ToBytes())

	leaf, err := collector.dataMsgs[0].Item().Get(0, 0, 0, 0, 0, 0, 0, 0, 0, 0)
	require.NoError(err)
	str, err := leaf.ToASCII()
	require.NoError(err)
	assert.Equal("deep", str)
}

func TestStreamDecoder_ConcatenationInvariance(t *testing.T) {
	require := require.New(t)

	first, err := NewDataMessage(1, 1, true, 1, ToSystemBytes(100), secs2.A("first"))
	require.NoError(err)
	second, err := NewDataMessage(2, 3, true, 1, ToSystemBytes(200), secs2.L(secs2.I4(-7), secs2.BOOLEAN(true)))
	require.NoError(err)

	input := append(first.ToBytes(), second.ToBytes()...) //nolint:gocritic

	for split := 1; split < len(input); split++ {
		decoder, collector := newTestDecoder(32)
		feedBytes(t, decoder, input[:split])
		inMsg := feedBytes(t, decoder, input[split:])

		require.False(inMsg, "split at %d", split)
		require.Len(collector.dataMsgs, 2, "split at %d", split)
		require.Equal(uint32(100), collector.dataMsgs[0].ID(), "split at %d", split)
		require.Equal(uint32(200), collector.dataMsgs[1].ID(), "split at %d", split)
	}
}

func TestStreamDecoder_ResetIsIdempotent(t *testing.T) {
	require := require.New(t)
	assert := assert.New(t)

	decoder, collector := newTestDecoder(64)

	// abandon a half-delivered message
	feedChunks(t, decoder, asciiDataMsgBytes[:9], []int{9})
	decoder.Reset()

	inMsg := feedBytes(t, decoder, asciiDataMsgBytes)
	assert.False(inMsg)
	require.Len(collector.dataMsgs, 1)

	str, err := collector.dataMsgs[0].Item().ToASCII()
	require.NoError(err)
	assert.Equal("Hello", str)
}

func TestStreamDecoder_InvalidDecodeArguments(t *testing.T) {
	assert := assert.New(t)

	decoder, _ := newTestDecoder(64)

	_, err := decoder.Decode(0)
	assert.ErrorIs(err, ErrInvalidDecodeLength)

	_, err = decoder.Decode(-3)
	assert.ErrorIs(err, ErrInvalidDecodeLength)

	_, err = decoder.Decode(decoder.WritableTailLen() + 1)
	assert.ErrorIs(err, ErrDecodeOverflow)

	// the contract violations left state untouched
	inMsg := feedBytes(t, decoder, selectReqBytes)
	assert.False(inMsg)
}

func TestStreamDecoder_ControlMessageWithBody(t *testing.T) {
	require := require.New(t)
	assert := assert.New(t)

	decoder, collector := newTestDecoder(64)

	// linktest.req declaring a 2-byte body
	input := []byte{
		0x00, 0x00, 0x00, 0x0C,
		0xFF, 0xFF, 0x00, 0x00, 0x00, 0x05, 0x00, 0x00, 0x00, 0x01,
		0x21, 0x00,
	}
	copy(decoder.WritableTail(), input)
	_, err := decoder.Decode(len(input))
	require.ErrorIs(err, ErrProtocol)
	assert.Empty(collector.ctrlMsgs)

	// the decoder is latched until Reset
	copy(decoder.WritableTail(), selectReqBytes)
	_, err = decoder.Decode(len(selectReqBytes))
	assert.ErrorIs(err, ErrDecoderFailed)

	decoder.Reset()
	inMsg := feedBytes(t, decoder, selectReqBytes)
	assert.False(inMsg)
	assert.Len(collector.ctrlMsgs, 1)
}

func TestStreamDecoder_ProtocolErrors(t *testing.T) {
	tests := []struct {
		description string
		input       []byte
	}{
		{
			description: "message length below header size",
			input:       []byte{0x00, 0x00, 0x00, 0x05, 0, 0, 0, 0, 0},
		},
		{
			description: "invalid PType",
			input:       []byte{0x00, 0x00, 0x00, 0x0A, 0, 1, 0, 0, 7, 0, 0, 0, 0, 1},
		},
		{
			description: "undefined SType",
			input:       []byte{0x00, 0x00, 0x00, 0x0A, 0, 1, 0, 0, 0, 8, 0, 0, 0, 1},
		},
		{
			description: "zero length byte count",
			input:       []byte{0x00, 0x00, 0x00, 0x0B, 0, 1, 1, 1, 0, 0, 0, 0, 0, 1, 0x40},
		},
		{
			description: "unknown format code",
			input:       []byte{0x00, 0x00, 0x00, 0x0D, 0, 1, 1, 1, 0, 0, 0, 0, 0, 1, 0xFD, 1, 0xAA},
		},
		{
			description: "item payload overflows declared message length",
			input:       []byte{0x00, 0x00, 0x00, 0x0D, 0, 1, 1, 1, 0, 0, 0, 0, 0, 1, 0x41, 200, 'h'},
		},
		{
			description: "trailing bytes after root item",
			input:       []byte{0x00, 0x00, 0x00, 0x0E, 0, 1, 1, 1, 0, 0, 0, 0, 0, 1, 0x41, 1, 'h', 'x'},
		},
		{
			description: "list arity overflows declared message length",
			input:       []byte{0x00, 0x00, 0x00, 0x0E, 0, 1, 1, 1, 0, 0, 0, 0, 0, 1, 0x03, 0xFF, 0xFF, 0xFF},
		},
	}

	for i, test := range tests {
		t.Logf("Test #%d: %s", i, test.description)

		decoder, _ := newTestDecoder(64)
		copy(decoder.WritableTail(), test.input)
		_, err := decoder.Decode(len(test.input))
		require.ErrorIs(t, err, ErrProtocol)
		require.EqualValues(t, 1, decoder.Metrics().ProtocolErrCount.Load())
	}
}

func TestStreamDecoder_SlowPathProtocolError(t *testing.T) {
	require := require.New(t)

	// the anomaly sits behind a chunk boundary, so the resumable item steps,
	// not the fast path, must detect it
	input := []byte{
		0x00, 0x00, 0x00, 0x0D, 0, 1, 1, 1, 0, 0, 0, 0, 0, 1,
		0x40, // zero length byte count
		1, 0xAA,
	}

	decoder, _ := newTestDecoder(64)
	copy(decoder.WritableTail(), input[:14])
	_, err := decoder.Decode(14)
	require.NoError(err)

	copy(decoder.WritableTail(), input[14:])
	_, err = decoder.Decode(len(input) - 14)
	require.ErrorIs(err, ErrProtocol)
}

func TestStreamDecoder_OversizedListArity(t *testing.T) {
	require := require.New(t)

	// list item header claiming 2^24-1 children inside a 4-byte body; the
	// body arrives after the header boundary, so the resumable item steps
	// must reject the arity before sizing the children slice
	input := []byte{
		0x00, 0x00, 0x00, 0x0E, 0, 1, 1, 1, 0, 0, 0, 0, 0, 1,
		0x03, 0xFF, 0xFF, 0xFF,
	}

	decoder, collector := newTestDecoder(64)
	copy(decoder.WritableTail(), input[:14])
	_, err := decoder.Decode(14)
	require.NoError(err)

	copy(decoder.WritableTail(), input[14:])
	_, err = decoder.Decode(len(input) - 14)
	require.ErrorIs(err, ErrProtocol)
	require.Empty(collector.dataMsgs)
}

func TestStreamDecoder_MaxLengthItem(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping 16MiB payload test in short mode")
	}

	require := require.New(t)
	assert := assert.New(t)

	// binary item with a three-byte length field carrying 2^24-1 payload bytes
	payloadLen := secs2.MaxByteSize
	bodyLen := 1 + 3 + payloadLen

	input := make([]byte, 0, LengthFieldSize+HeaderSize+bodyLen)
	input = append(input, byte((HeaderSize+bodyLen)>>24), byte((HeaderSize+bodyLen)>>16), byte((HeaderSize+bodyLen)>>8), byte(HeaderSize+bodyLen))
	input = append(input, 0, 1, 2, 1, 0, 0, 0, 0, 0, 42) // S2F1 header
	input = append(input, 0x23, 0xFF, 0xFF, 0xFF)        // binary, 3 length bytes
	input = append(input, make([]byte, payloadLen)...)

	decoder, collector := newTestDecoder(4096)
	inMsg := feedBytes(t, decoder, input)
	assert.False(inMsg)

	require.Len(collector.dataMsgs, 1)
	item := collector.dataMsgs[0].Item()
	require.True(item.IsBinary())
	assert.Equal(payloadLen, item.Size())

	// growth bound: capacity stays within four times the message size
	assert.LessOrEqual(decoder.WritableTailLen(), 4*(HeaderSize+bodyLen))
}

func TestStreamDecoder_GrowthMonotonic(t *testing.T) {
	require := require.New(t)

	decoder, collector := newTestDecoder(16)

	prevCap := decoder.WritableTailLen()
	sizes := []int{10, 100, 1000, 10000, 1000, 10}
	for _, size := range sizes {
		payload := make([]byte, size)
		msg, err := NewDataMessage(9, 1, false, 1, GenerateMsgSystemBytes(), secs2.B(payload...))
		require.NoError(err)

		inMsg := feedBytes(t, decoder, msg.ToBytes())
		require.False(inMsg)

		// at a message boundary with no residue, the cursors sit at zero and
		// the writable tail spans the full capacity
		capacity := decoder.WritableTailLen()
		require.GreaterOrEqual(capacity, prevCap)
		prevCap = capacity
	}

	require.Len(collector.dataMsgs, len(sizes))
}

func TestStreamDecoder_BufferCompaction(t *testing.T) {
	require := require.New(t)

	// a buffer barely larger than one message forces residue relocation when
	// messages straddle reads
	msg, err := NewDataMessage(5, 1, false, 1, GenerateMsgSystemBytes(), secs2.A("0123456789"))
	require.NoError(err)
	encoded := msg.ToBytes()

	input := make([]byte, 0, 4*len(encoded))
	for i := 0; i < 4; i++ {
		input = append(input, encoded...)
	}

	decoder, collector := newTestDecoder(len(encoded) + 3)
	inMsg := feedBytes(t, decoder, input)
	require.False(inMsg)
	require.Len(collector.dataMsgs, 4)
}

func TestStreamDecoder_Metrics(t *testing.T) {
	require := require.New(t)
	assert := assert.New(t)

	decoder, _ := newTestDecoder(64)

	feedBytes(t, decoder, selectReqBytes)
	feedBytes(t, decoder, asciiDataMsgBytes)

	metrics := decoder.Metrics()
	assert.EqualValues(1, metrics.ControlMsgRecvCount.Load())
	assert.EqualValues(1, metrics.DataMsgRecvCount.Load())
	assert.EqualValues(1, metrics.FastPathCount.Load())
	assert.EqualValues(len(selectReqBytes)+len(asciiDataMsgBytes), metrics.BytesRecvCount.Load())

	// slow path: body delivered after the header boundary
	feedChunks(t, decoder, asciiDataMsgBytes, []int{14, 7})
	require.EqualValues(2, metrics.DataMsgRecvCount.Load())
	assert.EqualValues(1, metrics.FastPathCount.Load())
}

func TestStreamDecoder_SharedMetrics(t *testing.T) {
	metrics := &DecoderMetrics{}

	first := NewStreamDecoder(64, nil, nil, WithDecoderMetrics(metrics))
	second := NewStreamDecoder(64, nil, nil, WithDecoderMetrics(metrics))

	feedBytes(t, first, selectReqBytes)
	feedBytes(t, second, selectReqBytes)

	assert.EqualValues(t, 2, metrics.ControlMsgRecvCount.Load())
}

func TestStreamDecoder_NilHandlers(t *testing.T) {
	decoder := NewStreamDecoder(64, nil, nil)

	inMsg := feedBytes(t, decoder, selectReqBytes)
	assert.False(t, inMsg)

	inMsg = feedBytes(t, decoder, asciiDataMsgBytes)
	assert.False(t, inMsg)
}
