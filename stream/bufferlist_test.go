// File: stream/bufferlist_test.go
// Author: momentics <momentics@gmail.com>

package stream_test

import (
	"bytes"
	"testing"

	"github.com/momentics/hioload-stream/stream"
)

func spanBytes(l stream.BufferList) []byte {
	var out []byte
	for _, s := range l.Spans() {
		out = append(out, s...)
	}
	return out
}

func seq(n int, base byte) []byte {
	b := make([]byte, n)
	for i := range b {
		b[i] = base + byte(i)
	}
	return b
}

// TestSliceOffPartialSecondSpan covers the canonical partial write: two
// buffers of 10 and 20 bytes with 15 written leaves the last 15 bytes of
// the second buffer.
func TestSliceOffPartialSecondSpan(t *testing.T) {
	a := seq(10, 0)
	b := seq(20, 100)
	l := stream.NewBufferList(a, b)

	rem := l.SliceOff(15)
	if rem.Len() != 15 {
		t.Fatalf("Len = %d, want 15", rem.Len())
	}
	if rem.Count() != 1 {
		t.Fatalf("Count = %d, want 1", rem.Count())
	}
	if got := spanBytes(rem); !bytes.Equal(got, b[5:]) {
		t.Fatalf("remainder = %v, want tail of second buffer %v", got, b[5:])
	}
}

func TestSliceOffExactSpanBoundary(t *testing.T) {
	l := stream.NewBufferList(seq(10, 0), seq(20, 100))
	rem := l.SliceOff(10)
	if rem.Count() != 1 || rem.Len() != 20 {
		t.Fatalf("Count=%d Len=%d, want 1/20", rem.Count(), rem.Len())
	}
	rem = rem.SliceOff(20)
	if !rem.Empty() || rem.Len() != 0 {
		t.Fatalf("expected empty remainder, got Len=%d", rem.Len())
	}
}

// TestSliceOffAssociative checks that slicing by w1 then w2 equals one
// slice by w1+w2 for every split within bounds.
func TestSliceOffAssociative(t *testing.T) {
	l := stream.NewBufferList(seq(3, 0), seq(7, 10), seq(5, 50))
	total := l.Len()
	whole := spanBytes(l)

	for w1 := 0; w1 <= total; w1++ {
		for w2 := 0; w1+w2 <= total; w2++ {
			step := l.SliceOff(w1).SliceOff(w2)
			combined := l.SliceOff(w1 + w2)
			if step.Len() != total-w1-w2 {
				t.Fatalf("w1=%d w2=%d: Len=%d, want %d", w1, w2, step.Len(), total-w1-w2)
			}
			if !bytes.Equal(spanBytes(step), spanBytes(combined)) {
				t.Fatalf("w1=%d w2=%d: stepwise and combined remainders differ", w1, w2)
			}
			if !bytes.Equal(spanBytes(combined), whole[w1+w2:]) {
				t.Fatalf("w1=%d w2=%d: remainder lost identity with original bytes", w1, w2)
			}
		}
	}
}

func TestSliceOffZeroIsIdentity(t *testing.T) {
	l := stream.NewBufferList(seq(4, 0))
	rem := l.SliceOff(0)
	if rem.Len() != 4 || !bytes.Equal(spanBytes(rem), spanBytes(l)) {
		t.Fatal("SliceOff(0) must not change the view")
	}
}

func TestSliceOffBeyondRemainingPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic for slice beyond remaining bytes")
		}
	}()
	stream.NewBufferList(seq(4, 0)).SliceOff(5)
}

func TestNewBufferListDropsEmptySpans(t *testing.T) {
	l := stream.NewBufferList(nil, seq(3, 0), []byte{})
	if l.Count() != 1 || l.Len() != 3 {
		t.Fatalf("Count=%d Len=%d, want 1/3", l.Count(), l.Len())
	}
}

func TestSliceOffDoesNotMutateOriginal(t *testing.T) {
	a := seq(10, 0)
	l := stream.NewBufferList(a)
	_ = l.SliceOff(6)
	if l.Len() != 10 {
		t.Fatalf("original view changed: Len=%d", l.Len())
	}
	if !bytes.Equal(a, seq(10, 0)) {
		t.Fatal("caller's buffer was mutated")
	}
}
