// File: stream/bufferlist.go
// Author: momentics <momentics@gmail.com>
//
// BufferList is an ordered sequence of immutable byte spans plus a cursor
// of bytes already consumed. Partial-write progress is represented by
// returning a new remainder view instead of mutating the caller's slices;
// views are cheap values sharing one backing spans slice.

package stream

// BufferList is an immutable view over a write's data. The zero value is
// an empty list.
type BufferList struct {
	spans [][]byte
	first int // index of first unconsumed span
	skip  int // bytes consumed within spans[first]
}

// NewBufferList builds a list over bufs. Empty spans are dropped; the
// spans themselves are referenced, not copied.
func NewBufferList(bufs ...[]byte) BufferList {
	spans := make([][]byte, 0, len(bufs))
	for _, b := range bufs {
		if len(b) > 0 {
			spans = append(spans, b)
		}
	}
	return BufferList{spans: spans}
}

// Len returns the total number of unconsumed bytes.
func (l BufferList) Len() int {
	n := -l.skip
	for i := l.first; i < len(l.spans); i++ {
		n += len(l.spans[i])
	}
	if n < 0 {
		return 0
	}
	return n
}

// Count returns the number of remaining spans.
func (l BufferList) Count() int {
	return len(l.spans) - l.first
}

// Empty reports whether no bytes remain.
func (l BufferList) Empty() bool {
	return l.first >= len(l.spans)
}

// Spans materializes the remainder as a fresh slice of views. The views
// alias the original storage; the slice itself is safe to hand to the
// engine.
func (l BufferList) Spans() [][]byte {
	if l.Empty() {
		return nil
	}
	out := make([][]byte, 0, len(l.spans)-l.first)
	out = append(out, l.spans[l.first][l.skip:])
	out = append(out, l.spans[l.first+1:]...)
	return out
}

// SliceOff returns the view remaining after w bytes have been written:
// fully written spans are discarded and the first partially written span
// is advanced. Slicing is associative: SliceOff(a).SliceOff(b) equals
// SliceOff(a+b). Panics if w is negative or exceeds Len.
func (l BufferList) SliceOff(w int) BufferList {
	if w < 0 {
		panic("stream: negative slice amount")
	}
	first, skip := l.first, l.skip
	for w > 0 {
		if first >= len(l.spans) {
			panic("stream: slice beyond remaining bytes")
		}
		rem := len(l.spans[first]) - skip
		if rem > w {
			skip += w
			w = 0
			break
		}
		w -= rem
		first++
		skip = 0
	}
	return BufferList{spans: l.spans, first: first, skip: skip}
}
