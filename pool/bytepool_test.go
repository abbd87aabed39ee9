// File: pool/bytepool_test.go
// Author: momentics <momentics@gmail.com>

package pool_test

import (
	"testing"

	"github.com/momentics/hioload-stream/pool"
)

func TestGetRoundsUpToClass(t *testing.T) {
	bp := pool.NewBytePool()
	b := bp.Get(5000)
	if len(b) < 5000 {
		t.Fatalf("len = %d, want >= 5000", len(b))
	}
	if len(b) != 8192 {
		t.Errorf("len = %d, want 8192 class", len(b))
	}
}

func TestGetOversizedFallsThrough(t *testing.T) {
	bp := pool.NewBytePool()
	b := bp.Get(1 << 20)
	if len(b) != 1<<20 {
		t.Fatalf("len = %d, want exact oversized allocation", len(b))
	}
}

func TestPutGetReuse(t *testing.T) {
	bp := pool.NewBytePool()
	b1 := bp.Get(4096)
	bp.Put(b1)
	b2 := bp.Get(4096)
	if cap(b2) < 4096 {
		t.Error("buffer capacity too small; reuse failed")
	}
}

func TestGetZeroSuggestion(t *testing.T) {
	b := pool.Default().Get(0)
	if len(b) == 0 {
		t.Fatal("zero suggestion must still yield a buffer")
	}
}
