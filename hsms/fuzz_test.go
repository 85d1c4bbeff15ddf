package hsms

import (
	"testing"
)

// FuzzDecodeMessage fuzzes the whole-buffer HSMS message decoder with
// arbitrary payloads.
//
// This exercises the full SECS-II parsing path: header validation, format code
// decoding, recursive list unpacking, and all numeric/string/boolean item
// types. The invariant is: DecodeMessage must never panic.
func FuzzDecodeMessage(f *testing.F) {
	// Seed: valid linktest.req (10-byte control message, SType=5)
	f.Add(uint32(10), []byte{
		0xFF, 0xFF, 0x00, 0x00, 0x00, LinkTestReqType, 0x00, 0x00, 0x00, 0x01,
	})

	// Seed: valid S1F1 data message with ASCII item <A[5] "hello">
	s1f1 := []byte{
		0x00, 0x01, 0x81, 0x01, 0x00, 0x00, 0x00, 0x00, 0x00, 0x03,
		0x41, 0x05, 'h', 'e', 'l', 'l', 'o',
	}
	f.Add(uint32(len(s1f1)), s1f1)

	// Seed: header-only data message
	f.Add(uint32(10), []byte{
		0x00, 0x01, 0x81, 0x01, 0x00, 0x00, 0x00, 0x00, 0x00, 0x04,
	})

	// Seed: length/input mismatch
	f.Add(uint32(10), []byte{0x01, 0x02, 0x03, 0x04, 0x05})

	// Seed: undefined SType (0xFF)
	f.Add(uint32(10), []byte{
		0xFF, 0xFF, 0x00, 0x00, 0x00, 0xFF, 0x00, 0x00, 0x00, 0x01,
	})

	// Seed: nested list L[2] with truncated children
	f.Add(uint32(12), []byte{
		0x00, 0x01, 0x81, 0x01, 0x00, 0x00, 0x00, 0x00, 0x00, 0x05,
		0x01, 0x02,
	})

	f.Fuzz(func(t *testing.T, msgLen uint32, input []byte) {
		msg, err := DecodeMessage(msgLen, input)
		if err != nil {
			return
		}

		// a successfully decoded message must re-encode without panicking
		encoded := msg.ToBytes()
		if len(encoded) < MinHSMSSize {
			t.Errorf("re-encoded message is %d bytes, want at least %d", len(encoded), MinHSMSSize)
		}
	})
}

// FuzzStreamDecoder feeds the streaming decoder arbitrary bytes in arbitrary
// chunk sizes. The decoder must never panic, and whenever the input is a
// well-formed message the chunked decode must agree with the whole-buffer
// decoder.
func FuzzStreamDecoder(f *testing.F) {
	selectReq := []byte{
		0x00, 0x00, 0x00, 0x0A,
		0x00, 0x01, 0x00, 0x00, 0x00, 0x01, 0x00, 0x00, 0x00, 0x02,
	}
	f.Add(selectReq, uint8(1))
	f.Add(selectReq, uint8(5))

	s1f13 := []byte{
		0x00, 0x00, 0x00, 0x11,
		0x00, 0x01, 0x81, 0x0D, 0x00, 0x00, 0x00, 0x00, 0x00, 0x04,
		0x41, 0x05, 0x48, 0x65, 0x6C, 0x6C, 0x6F,
	}
	f.Add(s1f13, uint8(1))
	f.Add(s1f13, uint8(3))
	f.Add(s1f13, uint8(255))

	// malformed: control message with declared body
	f.Add([]byte{
		0x00, 0x00, 0x00, 0x0C,
		0xFF, 0xFF, 0x00, 0x00, 0x00, 0x05, 0x00, 0x00, 0x00, 0x01,
		0x21, 0x00,
	}, uint8(4))

	f.Fuzz(func(t *testing.T, input []byte, chunkSize uint8) {
		if chunkSize == 0 {
			chunkSize = 1
		}

		var streamed [][]byte
		decoder := NewStreamDecoder(16, nil, func(msg *DataMessage) {
			streamed = append(streamed, msg.ToBytes())
		})

		data := input
		for len(data) > 0 {
			n := min(int(chunkSize), len(data))
			n = min(n, decoder.WritableTailLen())
			if n == 0 {
				t.Fatal("writable tail is empty")
			}

			copy(decoder.WritableTail(), data[:n])
			if _, err := decoder.Decode(n); err != nil {
				return
			}
			data = data[n:]
		}

		// cross-check the first streamed message against the whole-buffer path
		if len(streamed) > 0 {
			whole, err := DecodeHSMSMessage(streamed[0])
			if err != nil {
				t.Fatalf("whole-buffer decoder rejected a streamed message: %v", err)
			}
			if got := whole.ToBytes(); string(got) != string(streamed[0]) {
				t.Errorf("stream and whole-buffer decode disagree:\nstream: %x\nwhole:  %x", streamed[0], got)
			}
		}
	})
}
