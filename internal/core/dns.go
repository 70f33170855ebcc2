package core

import "fmt"

// QueryHeaderLen is the size of the fixed message header.
const QueryHeaderLen = 12

// MessageType is the QR bit.
type MessageType uint8

const (
	MessageQuery MessageType = iota
	MessageResponse
)

func (t MessageType) String() string {
	if t == MessageResponse {
		return "response"
	}
	return "query"
}

// Opcode is the 4-bit operation code. Values above OpcodeFuture are undefined.
type Opcode uint8

const (
	OpcodeQuery Opcode = iota
	OpcodeIQuery
	OpcodeStatus
	OpcodeFuture
)

var opcodeNames = [...]string{"QUERY", "IQUERY", "STATUS", "FUTURE"}

// Valid reports whether o is one of the defined opcodes.
func (o Opcode) Valid() bool { return int(o) < len(opcodeNames) }

func (o Opcode) String() string {
	if o.Valid() {
		return opcodeNames[o]
	}
	return fmt.Sprintf("OPCODE%d", uint8(o))
}

// ResponseCode is the 4-bit RCODE. Values above RcodeFuture are undefined.
type ResponseCode uint8

const (
	RcodeNoError ResponseCode = iota
	RcodeFormatError
	RcodeServerFailure
	RcodeNameError
	RcodeNotImplemented
	RcodeRefused
	RcodeFuture
)

var rcodeNames = [...]string{"NOERROR", "FORMERR", "SERVFAIL", "NXDOMAIN", "NOTIMP", "REFUSED", "FUTURE"}

// Valid reports whether r is one of the defined response codes.
func (r ResponseCode) Valid() bool { return int(r) < len(rcodeNames) }

func (r ResponseCode) String() string {
	if r.Valid() {
		return rcodeNames[r]
	}
	return fmt.Sprintf("RCODE%d", uint8(r))
}

// QueryHeader is the fixed header of a name-resolution message.
type QueryHeader struct {
	ID                 uint16
	Type               MessageType
	Opcode             Opcode
	Authoritative      bool
	Truncated          bool
	RecursionDesired   bool
	RecursionAvailable bool
	Rcode              ResponseCode

	QDCount uint16
	ANCount uint16
	NSCount uint16
	ARCount uint16
}
