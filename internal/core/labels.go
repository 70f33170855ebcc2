// Package core defines core types.
package core

// Fields represents key-value output attached to a decoded record by reporters.
type Fields map[string]any

// Field naming constants following {layer}.{field} convention.
const (
	FieldIndex     = "record.index"
	FieldTimestamp = "record.timestamp"
	FieldCapLen    = "record.caplen"
	FieldOrigLen   = "record.origlen"

	FieldEthDst     = "eth.dst"
	FieldEthSrc     = "eth.src"
	FieldEthType    = "eth.type"
	FieldEthPayload = "eth.payload_len"
	FieldEthFCS     = "eth.fcs"
	FieldLayers     = "eth.layers" // gopacket layer summary of the payload
)
