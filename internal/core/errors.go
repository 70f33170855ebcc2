// Package core defines sentinel errors.
package core

import "errors"

// Codec errors. Every decode/encode failure wraps exactly one of these.
var (
	// ErrTruncated means the buffer is shorter than a field or record requires.
	ErrTruncated = errors.New("wirecap: truncated")

	// ErrLengthMismatch means a capture record's captured and original lengths differ.
	ErrLengthMismatch = errors.New("wirecap: length mismatch")

	// ErrUnrecognizedField means an enum-coded field holds an undefined value.
	ErrUnrecognizedField = errors.New("wirecap: unrecognized field")

	// ErrFieldOverflow means a value does not fit its field's bit or byte capacity.
	ErrFieldOverflow = errors.New("wirecap: field overflow")
)

// Collaborator errors.
var (
	// ErrBadMagic is returned by the magic-number policy check, not by the codec.
	ErrBadMagic = errors.New("wirecap: unknown capture magic number")

	// ErrEmptyLabel means a domain name contains an empty interior label.
	ErrEmptyLabel = errors.New("wirecap: empty domain label")

	// ErrInvalidResponse means a response does not answer the query that was sent.
	ErrInvalidResponse = errors.New("wirecap: invalid response")

	// ErrConfigInvalid wraps configuration validation failures.
	ErrConfigInvalid = errors.New("wirecap: invalid configuration")
)
