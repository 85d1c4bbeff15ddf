package hsms

import (
	"crypto/rand"
	"encoding/binary"
	"io"
	"sync"
	"sync/atomic"
)

// msgIDGenerator generates unique message IDs and their corresponding system
// bytes for HSMS messages.
//
// It uses a cryptographically secure random number generator to initialize the
// starting ID and atomically increments the ID to ensure uniqueness in
// concurrent environments.
type msgIDGenerator struct {
	id atomic.Uint32
}

func newMsgIDGenerator() *msgIDGenerator {
	inst := &msgIDGenerator{}
	var buf [4]byte
	if _, err := io.ReadFull(rand.Reader, buf[:]); err != nil {
		return inst
	}
	inst.id.Store(binary.LittleEndian.Uint32(buf[:]))
	return inst
}

var (
	genInst = &msgIDGenerator{}
	genOnce sync.Once
)

func getMsgIDGenerator() *msgIDGenerator {
	genOnce.Do(func() {
		genInst = newMsgIDGenerator()
	})
	return genInst
}

// GenerateMsgID returns a unique message ID as a uint32.
func GenerateMsgID() uint32 {
	return getMsgIDGenerator().id.Add(1)
}

// GenerateMsgSystemBytes returns a unique 4-byte slice representing the system
// bytes for a message.
func GenerateMsgSystemBytes() []byte {
	return ToSystemBytes(GenerateMsgID())
}

// ToSystemBytes converts id to a 4-byte big-endian system bytes slice.
func ToSystemBytes(id uint32) []byte {
	systemBytes := make([]byte, 4)
	binary.BigEndian.PutUint32(systemBytes, id)
	return systemBytes
}

// systemBytesToUint32 converts a 4-byte system bytes slice to its numeric
// representation. Short slices yield zero.
func systemBytesToUint32(systemBytes []byte) uint32 {
	if len(systemBytes) < 4 {
		return 0
	}
	return binary.BigEndian.Uint32(systemBytes)
}
