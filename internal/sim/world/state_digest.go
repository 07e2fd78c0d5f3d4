package world

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
)

// Digest returns the SHA-256 state digest of the world as it is now.
func (w *World) Digest() string { return w.stateDigest() }

func (w *World) stateDigest() string {
	h := sha256.New()
	var tmp [8]byte

	digestWriteU64(h, &tmp, w.tick)
	digestWriteI64(h, &tmp, int64(w.storedFood))
	digestWriteI64(h, &tmp, int64(w.seededUnits))

	digestWriteU64(h, &tmp, uint64(len(w.bots)))
	for _, b := range w.bots {
		digestWritePos(h, &tmp, b.Pos)
		h.Write([]byte{boolByte(b.CarryingFood), boolByte(b.LeaveMark), boolByte(b.TrackingOn)})
	}

	digestWriteCells(h, &tmp, w.resources.cells)
	digestWriteCells(h, &tmp, w.trails.cells)

	if state, err := w.rng.State(); err == nil {
		h.Write(state)
	}
	return hex.EncodeToString(h.Sum(nil))
}

// digestWriteCells emits a length prefix and then cells in row-major order.
func digestWriteCells(h hashWriter, tmp *[8]byte, m map[Pos]int) {
	digestWriteU64(h, tmp, uint64(len(m)))
	for _, p := range sortedKeys(m) {
		digestWritePos(h, tmp, p)
		digestWriteI64(h, tmp, int64(m[p]))
	}
}

func digestWritePos(h hashWriter, tmp *[8]byte, p Pos) {
	digestWriteI64(h, tmp, int64(p.X))
	digestWriteI64(h, tmp, int64(p.Y))
}

func digestWriteU64(h hashWriter, tmp *[8]byte, v uint64) {
	binary.LittleEndian.PutUint64(tmp[:], v)
	h.Write(tmp[:])
}

func digestWriteI64(h hashWriter, tmp *[8]byte, v int64) {
	digestWriteU64(h, tmp, uint64(v))
}

func boolByte(b bool) byte {
	if b {
		return 1
	}
	return 0
}

type hashWriter interface {
	Write(p []byte) (n int, err error)
}
