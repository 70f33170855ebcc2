// Package blob encodes the stamped payload file written by `wirecap blob`.
//
// Layout:
//
//	byte 0     bits 0-6 one-hot weekday (bit 0 = Monday), bit 7 after noon
//	byte 1     payload length, 1-255
//	n bytes    payload
//	1 byte     second of the minute
//	8 bytes    seconds elapsed in the day, little-endian signed
package blob

import (
	"fmt"
	"math/bits"
	"time"

	"firestige.xyz/wirecap/internal/core"
	"firestige.xyz/wirecap/internal/core/cursor"
)

const (
	MaxPayloadLen = 255
	// overhead is every byte that is not payload.
	overhead = 2 + 1 + 8

	le = cursor.LittleEndian
)

// Blob is the decoded form of a stamped payload.
type Blob struct {
	Weekday      int // 0 = Monday ... 6 = Sunday
	AfterNoon    bool
	Payload      []byte
	MinuteSecond uint8
	DaySeconds   int64
}

// Len returns the encoded size.
func (b Blob) Len() int { return overhead + len(b.Payload) }

// FromTime stamps payload with t in t's own location.
func FromTime(t time.Time, payload []byte) Blob {
	return Blob{
		Weekday:      (int(t.Weekday()) + 6) % 7,
		AfterNoon:    t.Hour() >= 12,
		Payload:      payload,
		MinuteSecond: uint8(t.Second()),
		DaySeconds:   int64(t.Hour()*3600 + t.Minute()*60 + t.Second()),
	}
}

func Encode(b Blob) ([]byte, error) {
	if b.Weekday < 0 || b.Weekday > 6 {
		return nil, fmt.Errorf("%w: weekday %d", core.ErrFieldOverflow, b.Weekday)
	}
	if len(b.Payload) == 0 || len(b.Payload) > MaxPayloadLen {
		return nil, fmt.Errorf("%w: payload of %d bytes, want 1-%d", core.ErrFieldOverflow, len(b.Payload), MaxPayloadLen)
	}
	if b.MinuteSecond > 59 {
		return nil, fmt.Errorf("%w: second of minute %d", core.ErrFieldOverflow, b.MinuteSecond)
	}

	w := cursor.NewWriter(b.Len())
	if err := w.WriteBits(1<<uint(b.Weekday), 7, le); err != nil {
		return nil, err
	}
	w.WriteFlag(b.AfterNoon, le)
	w.WriteUint8(uint8(len(b.Payload)))
	w.WriteBytes(b.Payload)
	w.WriteUint8(b.MinuteSecond)
	w.WriteUint64(uint64(b.DaySeconds), le)
	return w.Bytes(), nil
}

// Decode parses a blob occupying all of buf. The payload aliases buf.
func Decode(buf []byte) (Blob, error) {
	var b Blob
	c := cursor.New(buf)

	days, err := c.ReadBits(7, le)
	if err != nil {
		return b, fmt.Errorf("flags: %w", err)
	}
	if bits.OnesCount64(days) != 1 {
		return b, fmt.Errorf("%w: weekday bits %07b", core.ErrUnrecognizedField, days)
	}
	b.Weekday = bits.TrailingZeros64(days)
	if b.AfterNoon, err = c.ReadFlag(le); err != nil {
		return b, fmt.Errorf("flags: %w", err)
	}

	n, err := c.ReadUint8()
	if err != nil {
		return b, fmt.Errorf("length: %w", err)
	}
	if n == 0 {
		return b, fmt.Errorf("%w: empty payload", core.ErrFieldOverflow)
	}
	if b.Payload, err = c.ReadBytes(int(n)); err != nil {
		return b, fmt.Errorf("payload: %w", err)
	}
	if b.MinuteSecond, err = c.ReadUint8(); err != nil {
		return b, fmt.Errorf("footer: %w", err)
	}
	secs, err := c.ReadUint64(le)
	if err != nil {
		return b, fmt.Errorf("footer: %w", err)
	}
	b.DaySeconds = int64(secs)

	if !c.AtEnd() {
		return b, fmt.Errorf("%w: %d trailing bytes", core.ErrLengthMismatch, c.Remaining())
	}
	return b, nil
}
