// Package cursor implements a positional reader and an append-only writer
// over byte buffers, supporting byte-aligned and arbitrary-width bit-field
// access in either byte order.
//
// BigEndian consumes each byte from its most significant bit and assembles
// values MSB-first, so a byte-aligned 32-bit read equals
// binary.BigEndian.Uint32. LittleEndian consumes each byte from its least
// significant bit and places the first bit read at bit 0 of the result, so a
// byte-aligned 32-bit read equals binary.LittleEndian.Uint32.
package cursor

import (
	"fmt"

	"firestige.xyz/wirecap/internal/core"
)

// Order selects how bytes are interpreted before bits are extracted.
type Order uint8

const (
	BigEndian Order = iota
	LittleEndian
)

func (o Order) String() string {
	if o == LittleEndian {
		return "little-endian"
	}
	return "big-endian"
}

const (
	// MaxReadBits is the widest field ReadBits128 can extract.
	MaxReadBits = 128
	// MaxWordBits is the widest field ReadBits and WriteBits accept.
	MaxWordBits = 64
)

// Cursor reads fields from a borrowed buffer. The buffer is never modified;
// slices returned by ReadBytes alias it.
//
// The byte offset never exceeds the buffer length. A read that would run past
// the end fails with core.ErrTruncated and leaves the position unchanged.
type Cursor struct {
	buf []byte
	off int  // current byte
	bit uint // bits already consumed from buf[off], 0-7
}

// New returns a cursor positioned at the start of buf.
func New(buf []byte) *Cursor {
	return &Cursor{buf: buf}
}

// Len returns the buffer length in bytes.
func (c *Cursor) Len() int { return len(c.buf) }

// Offset returns the current byte offset.
func (c *Cursor) Offset() int { return c.off }

// BitOffset returns the number of bits consumed from the current byte.
func (c *Cursor) BitOffset() uint { return c.bit }

// Remaining returns the number of whole bytes left after the current,
// possibly partially consumed, byte.
func (c *Cursor) Remaining() int {
	n := len(c.buf) - c.off
	if c.bit > 0 {
		n--
	}
	return n
}

// AtEnd reports whether every bit of the buffer has been consumed.
func (c *Cursor) AtEnd() bool { return c.remainingBits() == 0 }

// Reset rewinds the cursor to the start of the buffer.
func (c *Cursor) Reset() { c.off, c.bit = 0, 0 }

// Align skips the unread bits of a partially consumed byte.
func (c *Cursor) Align() {
	if c.bit > 0 {
		c.off++
		c.bit = 0
	}
}

func (c *Cursor) remainingBits() int {
	return (len(c.buf)-c.off)*8 - int(c.bit)
}

// ReadBytes returns the next n bytes. A partially consumed byte is skipped
// first.
func (c *Cursor) ReadBytes(n int) ([]byte, error) {
	if n < 0 {
		return nil, fmt.Errorf("%w: negative length %d", core.ErrFieldOverflow, n)
	}
	start := c.off
	if c.bit > 0 {
		start++
	}
	if avail := len(c.buf) - start; avail < n {
		return nil, fmt.Errorf("%w: need %d bytes at offset %d, have %d", core.ErrTruncated, n, start, avail)
	}
	c.off, c.bit = start+n, 0
	return c.buf[start : start+n : start+n], nil
}

// Skip advances past n bytes.
func (c *Cursor) Skip(n int) error {
	_, err := c.ReadBytes(n)
	return err
}

// ReadBits extracts a field of 1-64 bits.
func (c *Cursor) ReadBits(width int, order Order) (uint64, error) {
	if width < 1 || width > MaxWordBits {
		return 0, fmt.Errorf("%w: width %d outside 1-%d", core.ErrFieldOverflow, width, MaxWordBits)
	}
	if c.bit == 0 && width%8 == 0 {
		b, err := c.ReadBytes(width / 8)
		if err != nil {
			return 0, err
		}
		return assemble(b, order), nil
	}
	v, err := c.ReadBits128(width, order)
	return v.Lo, err
}

// ReadBits128 extracts a field of 1-128 bits.
func (c *Cursor) ReadBits128(width int, order Order) (Uint128, error) {
	if width < 1 || width > MaxReadBits {
		return Uint128{}, fmt.Errorf("%w: width %d outside 1-%d", core.ErrFieldOverflow, width, MaxReadBits)
	}
	if avail := c.remainingBits(); width > avail {
		return Uint128{}, fmt.Errorf("%w: need %d bits at offset %d.%d, have %d", core.ErrTruncated, width, c.off, c.bit, avail)
	}

	var v Uint128
	off, bit := c.off, c.bit
	for i := 0; i < width; i++ {
		b := c.buf[off]
		if order == LittleEndian {
			if (b>>bit)&1 != 0 {
				v = v.setBit(uint(i))
			}
		} else {
			v = v.shiftIn(uint64(b>>(7-bit)) & 1)
		}
		bit++
		if bit == 8 {
			off, bit = off+1, 0
		}
	}
	c.off, c.bit = off, bit
	return v, nil
}

// ReadFlag reads a single bit.
func (c *Cursor) ReadFlag(order Order) (bool, error) {
	v, err := c.ReadBits(1, order)
	return v == 1, err
}

func (c *Cursor) ReadUint8() (uint8, error) {
	v, err := c.ReadBits(8, BigEndian)
	return uint8(v), err
}

func (c *Cursor) ReadUint16(order Order) (uint16, error) {
	v, err := c.ReadBits(16, order)
	return uint16(v), err
}

func (c *Cursor) ReadUint32(order Order) (uint32, error) {
	v, err := c.ReadBits(32, order)
	return uint32(v), err
}

func (c *Cursor) ReadUint64(order Order) (uint64, error) {
	return c.ReadBits(64, order)
}

// assemble folds whole bytes into a word.
func assemble(b []byte, order Order) uint64 {
	var v uint64
	for i, x := range b {
		if order == LittleEndian {
			v |= uint64(x) << (8 * i)
		} else {
			v = v<<8 | uint64(x)
		}
	}
	return v
}
