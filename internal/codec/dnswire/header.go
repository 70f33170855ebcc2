// Package dnswire builds name-resolution query messages and parses their
// responses on top of the bit cursor.
//
// The header uses the RFC 1035 section 4.1.1 layout for both directions:
//
//	+--+--+--+--+--+--+--+--+--+--+--+--+--+--+--+--+
//	|                      ID                       |
//	+--+--+--+--+--+--+--+--+--+--+--+--+--+--+--+--+
//	|QR|   Opcode  |AA|TC|RD|RA|   Z    |   RCODE   |
//	+--+--+--+--+--+--+--+--+--+--+--+--+--+--+--+--+
//	|            QDCOUNT / ANCOUNT / NSCOUNT / ARCOUNT
//	+--+--+--+--+--+--+--+--+--+--+--+--+--+--+--+--+
//
// All fields are big-endian and bit fields are packed MSB first.
package dnswire

import (
	"fmt"

	"firestige.xyz/wirecap/internal/core"
	"firestige.xyz/wirecap/internal/core/cursor"
	"firestige.xyz/wirecap/pkg/codec"
)

const be = cursor.BigEndian

var _ codec.Codec[core.QueryHeader] = QueryHeaderCodec{}

// QueryHeaderCodec decodes and encodes the 12-byte message header.
type QueryHeaderCodec struct{}

func (QueryHeaderCodec) Decode(c *cursor.Cursor) (core.QueryHeader, error) {
	var h core.QueryHeader
	if c.Remaining() < core.QueryHeaderLen {
		return h, fmt.Errorf("%w: header needs %d bytes, have %d", core.ErrTruncated, core.QueryHeaderLen, c.Remaining())
	}

	// Length was checked above; the reads below cannot fail.
	h.ID, _ = c.ReadUint16(be)
	qr, _ := c.ReadFlag(be)
	op, _ := c.ReadBits(4, be)
	h.Authoritative, _ = c.ReadFlag(be)
	h.Truncated, _ = c.ReadFlag(be)
	h.RecursionDesired, _ = c.ReadFlag(be)
	h.RecursionAvailable, _ = c.ReadFlag(be)
	_, _ = c.ReadBits(3, be) // Z
	rc, _ := c.ReadBits(4, be)
	h.QDCount, _ = c.ReadUint16(be)
	h.ANCount, _ = c.ReadUint16(be)
	h.NSCount, _ = c.ReadUint16(be)
	h.ARCount, _ = c.ReadUint16(be)

	if qr {
		h.Type = core.MessageResponse
	}
	h.Opcode = core.Opcode(op)
	if !h.Opcode.Valid() {
		return h, fmt.Errorf("%w: opcode %d", core.ErrUnrecognizedField, op)
	}
	h.Rcode = core.ResponseCode(rc)
	if !h.Rcode.Valid() {
		return h, fmt.Errorf("%w: response code %d", core.ErrUnrecognizedField, rc)
	}
	return h, nil
}

func (QueryHeaderCodec) Encode(w *cursor.Writer, h core.QueryHeader) error {
	if h.Type > core.MessageResponse {
		return fmt.Errorf("%w: message type %d", core.ErrUnrecognizedField, h.Type)
	}
	if !h.Opcode.Valid() {
		return fmt.Errorf("%w: opcode %d", core.ErrUnrecognizedField, h.Opcode)
	}
	if !h.Rcode.Valid() {
		return fmt.Errorf("%w: response code %d", core.ErrUnrecognizedField, h.Rcode)
	}

	w.WriteUint16(h.ID, be)
	w.WriteFlag(h.Type == core.MessageResponse, be)
	_ = w.WriteBits(uint64(h.Opcode), 4, be)
	w.WriteFlag(h.Authoritative, be)
	w.WriteFlag(h.Truncated, be)
	w.WriteFlag(h.RecursionDesired, be)
	w.WriteFlag(h.RecursionAvailable, be)
	_ = w.WriteBits(0, 3, be)
	_ = w.WriteBits(uint64(h.Rcode), 4, be)
	w.WriteUint16(h.QDCount, be)
	w.WriteUint16(h.ANCount, be)
	w.WriteUint16(h.NSCount, be)
	w.WriteUint16(h.ARCount, be)
	return nil
}

// EncodeQuery returns the header of an outbound query: message type Query,
// AA/TC/RA clear and every count but the question count zero.
func EncodeQuery(txID uint16, opcode core.Opcode, recursionDesired bool, questions uint16) ([]byte, error) {
	w := cursor.NewWriter(core.QueryHeaderLen)
	err := QueryHeaderCodec{}.Encode(w, core.QueryHeader{
		ID:               txID,
		Type:             core.MessageQuery,
		Opcode:           opcode,
		RecursionDesired: recursionDesired,
		QDCount:          questions,
	})
	if err != nil {
		return nil, err
	}
	return w.Bytes(), nil
}

// DecodeHeader decodes the header found in the first 12 bytes of b.
func DecodeHeader(b []byte) (core.QueryHeader, error) {
	return QueryHeaderCodec{}.Decode(cursor.New(b))
}
