package dnswire

import (
	"fmt"
	"strings"

	"firestige.xyz/wirecap/internal/core"
	"firestige.xyz/wirecap/internal/core/cursor"
)

const (
	// MaxLabelLen is the capacity of a one-byte length prefix.
	MaxLabelLen = 255
	// MaxWireLabelLen and MaxWireNameLen are the limits servers enforce.
	MaxWireLabelLen = 63
	MaxWireNameLen  = 255

	pointerMask = 0xC0
	maxPointers = 16
)

// EncodeLabels writes each dot-separated segment of name as a length byte
// followed by its bytes. No root label is appended: "example.com" encodes to
// 13 bytes. A single trailing dot is ignored.
func EncodeLabels(name string) ([]byte, error) {
	name = strings.TrimSuffix(name, ".")
	if name == "" {
		return nil, nil
	}
	labels := strings.Split(name, ".")
	for _, label := range labels {
		if label == "" {
			return nil, fmt.Errorf("%w: %q", core.ErrEmptyLabel, name)
		}
		if len(label) > MaxLabelLen {
			return nil, fmt.Errorf("%w: label of %d bytes exceeds %d", core.ErrFieldOverflow, len(label), MaxLabelLen)
		}
	}

	w := cursor.NewWriter(len(name) + 1)
	for _, label := range labels {
		w.WriteUint8(uint8(len(label)))
		w.WriteBytes([]byte(label))
	}
	return w.Bytes(), nil
}

// EncodeName is EncodeLabels terminated by the zero-length root label, with
// the label and name limits real servers enforce.
func EncodeName(name string) ([]byte, error) {
	for _, label := range strings.Split(strings.TrimSuffix(name, "."), ".") {
		if len(label) > MaxWireLabelLen {
			return nil, fmt.Errorf("%w: label of %d bytes exceeds %d", core.ErrFieldOverflow, len(label), MaxWireLabelLen)
		}
	}
	b, err := EncodeLabels(name)
	if err != nil {
		return nil, err
	}
	b = append(b, 0)
	if len(b) > MaxWireNameLen {
		return nil, fmt.Errorf("%w: name of %d bytes exceeds %d", core.ErrFieldOverflow, len(b), MaxWireNameLen)
	}
	return b, nil
}

// readName decodes a possibly compressed name at the cursor. Pointers are
// resolved against msg; the cursor ends up just past the name's in-place
// bytes.
func readName(c *cursor.Cursor, msg []byte) (string, error) {
	var sb strings.Builder
	cur := c
	for jumps := 0; ; {
		n, err := cur.ReadUint8()
		if err != nil {
			return "", err
		}
		switch {
		case n == 0:
			return sb.String(), nil
		case n&pointerMask == pointerMask:
			lo, err := cur.ReadUint8()
			if err != nil {
				return "", err
			}
			if jumps++; jumps > maxPointers {
				return "", fmt.Errorf("%w: more than %d compression pointers", core.ErrUnrecognizedField, maxPointers)
			}
			target := int(n&^pointerMask)<<8 | int(lo)
			cur = cursor.New(msg)
			if err := cur.Skip(target); err != nil {
				return "", err
			}
		case n&pointerMask != 0:
			return "", fmt.Errorf("%w: label type 0x%02x", core.ErrUnrecognizedField, n&pointerMask)
		default:
			label, err := cur.ReadBytes(int(n))
			if err != nil {
				return "", err
			}
			if sb.Len() > 0 {
				sb.WriteByte('.')
			}
			sb.Write(label)
		}
	}
}
