// Package codec defines the schema-driven decode/encode pair every wire
// format in wirecap implements on top of the bit cursor.
package codec

import "firestige.xyz/wirecap/internal/core/cursor"

// Decoder reads one T from the cursor's current position.
type Decoder[T any] interface {
	Decode(c *cursor.Cursor) (T, error)
}

// Encoder appends one T to the writer.
type Encoder[T any] interface {
	Encode(w *cursor.Writer, v T) error
}

// Codec is a matched Decoder/Encoder pair. Decode(Encode(v)) must return v.
type Codec[T any] interface {
	Decoder[T]
	Encoder[T]
}

// DecodeBytes decodes a T from the start of buf.
func DecodeBytes[T any](d Decoder[T], buf []byte) (T, error) {
	return d.Decode(cursor.New(buf))
}

// EncodeBytes encodes v into a fresh buffer.
func EncodeBytes[T any](e Encoder[T], v T, sizeHint int) ([]byte, error) {
	w := cursor.NewWriter(sizeHint)
	if err := e.Encode(w, v); err != nil {
		return nil, err
	}
	return w.Bytes(), nil
}
