// File: pool/bytepool.go
// Author: momentics <momentics@gmail.com>
//
// Read-buffer pooling for the stream allocation hook. Buffers are grouped
// into power-of-two size classes backed by sync.Pool; Get rounds the
// engine's suggestion up to the nearest class so reads of similar sizes
// reuse the same storage.

package pool

import (
	"math/bits"
	"sync"
)

const (
	minClassBits = 12 // 4 KiB
	maxClassBits = 16 // 64 KiB
)

// BytePool is a size-classed buffer pool.
type BytePool struct {
	classes [maxClassBits - minClassBits + 1]sync.Pool
}

var defaultPool = newBytePool()

// Default returns the process-wide byte pool.
func Default() *BytePool { return defaultPool }

func newBytePool() *BytePool {
	bp := &BytePool{}
	for i := range bp.classes {
		size := 1 << (minClassBits + i)
		bp.classes[i].New = func() any {
			return make([]byte, size)
		}
	}
	return bp
}

// NewBytePool creates an independent pool, useful when per-loop locality
// matters more than process-wide reuse.
func NewBytePool() *BytePool { return newBytePool() }

// Get returns a buffer of at least size bytes. Oversized requests fall
// through to a plain allocation and are not pooled on return.
func (bp *BytePool) Get(size int) []byte {
	if size <= 0 {
		size = 1 << minClassBits
	}
	idx, ok := classIndex(size)
	if !ok {
		return make([]byte, size)
	}
	return bp.classes[idx].Get().([]byte)
}

// Put returns a buffer to its size class. Buffers that do not match a
// class capacity exactly are dropped for the GC to reclaim.
func (bp *BytePool) Put(buf []byte) {
	c := cap(buf)
	if c == 0 || c&(c-1) != 0 {
		return
	}
	idx, ok := classIndex(c)
	if !ok || 1<<(minClassBits+idx) != c {
		return
	}
	bp.classes[idx].Put(buf[:c])
}

// classIndex maps a byte count to the smallest class that fits it.
func classIndex(size int) (int, bool) {
	b := bits.Len(uint(size - 1))
	if b < minClassBits {
		b = minClassBits
	}
	if b > maxClassBits {
		return 0, false
	}
	return b - minClassBits, true
}
