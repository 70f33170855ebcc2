package cursor

import (
	"fmt"

	"firestige.xyz/wirecap/internal/core"
)

// Writer builds a buffer append-only. Unused bits of a partial trailing byte
// are zero.
type Writer struct {
	buf []byte
	bit uint // bits used in the last byte, 0 when aligned
}

// NewWriter returns a writer with room for size bytes before reallocating.
func NewWriter(size int) *Writer {
	return &Writer{buf: make([]byte, 0, size)}
}

// Bytes returns the written buffer, including a zero-padded partial byte.
func (w *Writer) Bytes() []byte { return w.buf }

// Len returns the number of bytes started so far.
func (w *Writer) Len() int { return len(w.buf) }

// Align closes a partial trailing byte.
func (w *Writer) Align() { w.bit = 0 }

// WriteBytes appends b starting at the next byte boundary.
func (w *Writer) WriteBytes(b []byte) {
	w.Align()
	w.buf = append(w.buf, b...)
}

// WriteBits appends the low width bits of value. Nothing is written when
// width is outside 1-64 or value does not fit.
func (w *Writer) WriteBits(value uint64, width int, order Order) error {
	if width < 1 || width > MaxWordBits {
		return fmt.Errorf("%w: width %d outside 1-%d", core.ErrFieldOverflow, width, MaxWordBits)
	}
	if width < MaxWordBits && value>>uint(width) != 0 {
		return fmt.Errorf("%w: value %d does not fit in %d bits", core.ErrFieldOverflow, value, width)
	}

	if w.bit == 0 && width%8 == 0 {
		n := width / 8
		for i := 0; i < n; i++ {
			shift := 8 * i
			if order == BigEndian {
				shift = 8 * (n - 1 - i)
			}
			w.buf = append(w.buf, byte(value>>uint(shift)))
		}
		return nil
	}

	for i := 0; i < width; i++ {
		var x byte
		if order == LittleEndian {
			x = byte(value>>uint(i)) & 1
		} else {
			x = byte(value>>uint(width-1-i)) & 1
		}
		if w.bit == 0 {
			w.buf = append(w.buf, 0)
		}
		last := len(w.buf) - 1
		if order == LittleEndian {
			w.buf[last] |= x << w.bit
		} else {
			w.buf[last] |= x << (7 - w.bit)
		}
		w.bit = (w.bit + 1) % 8
	}
	return nil
}

// WriteFlag appends a single bit.
func (w *Writer) WriteFlag(set bool, order Order) {
	var v uint64
	if set {
		v = 1
	}
	_ = w.WriteBits(v, 1, order)
}

func (w *Writer) WriteUint8(v uint8) {
	_ = w.WriteBits(uint64(v), 8, BigEndian)
}

func (w *Writer) WriteUint16(v uint16, order Order) {
	_ = w.WriteBits(uint64(v), 16, order)
}

func (w *Writer) WriteUint32(v uint32, order Order) {
	_ = w.WriteBits(uint64(v), 32, order)
}

func (w *Writer) WriteUint64(v uint64, order Order) {
	_ = w.WriteBits(v, 64, order)
}
