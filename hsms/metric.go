package hsms

import (
	"sync/atomic"
)

// DecoderMetrics contains atomic metrics for a streaming decoder.
// Metrics can be used as the value of a prometheus CounterFunc or GaugeFunc.
//
// A single DecoderMetrics instance may be shared by several decoders via
// WithDecoderMetrics to aggregate counts across connections.
type DecoderMetrics struct {
	// DataMsgRecvCount indicates the number of data messages decoded.
	DataMsgRecvCount atomic.Uint64
	// ControlMsgRecvCount indicates the number of control messages decoded.
	ControlMsgRecvCount atomic.Uint64
	// BytesRecvCount indicates the number of bytes handed to the decoder.
	BytesRecvCount atomic.Uint64
	// FastPathCount indicates the number of message bodies decoded through the
	// whole-buffer fast path rather than the resumable item steps.
	FastPathCount atomic.Uint64
	// BufferGrowCount indicates the number of receive buffer reallocations.
	BufferGrowCount atomic.Uint64
	// BufferCompactCount indicates the number of in-place residue compactions.
	BufferCompactCount atomic.Uint64
	// ProtocolErrCount indicates the number of fatal framing errors.
	ProtocolErrCount atomic.Uint64
}

func (m *DecoderMetrics) incDataMsgRecvCount() {
	m.DataMsgRecvCount.Add(1)
}

func (m *DecoderMetrics) incControlMsgRecvCount() {
	m.ControlMsgRecvCount.Add(1)
}

func (m *DecoderMetrics) addBytesRecv(n uint64) {
	m.BytesRecvCount.Add(n)
}

func (m *DecoderMetrics) incFastPathCount() {
	m.FastPathCount.Add(1)
}

func (m *DecoderMetrics) incBufferGrowCount() {
	m.BufferGrowCount.Add(1)
}

func (m *DecoderMetrics) incBufferCompactCount() {
	m.BufferCompactCount.Add(1)
}

func (m *DecoderMetrics) incProtocolErrCount() {
	m.ProtocolErrCount.Add(1)
}
