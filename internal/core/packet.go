// Package core defines core data structures with zero external dependencies.
package core

// Record is one decoded capture record.
type Record struct {
	Index  int // 0-based position in the capture
	Header RecordHeader
	Frame  EthernetFrame
}
