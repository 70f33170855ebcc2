package dnswire

import (
	"fmt"
	"net/netip"
	"strings"

	"github.com/miekg/dns"
	"golang.org/x/net/idna"

	"firestige.xyz/wirecap/internal/core"
	"firestige.xyz/wirecap/internal/core/cursor"
)

// Query is an outbound single-question message.
type Query struct {
	Header core.QueryHeader
	Name   string // ASCII form, no trailing dot
	Type   uint16
	Class  uint16
	Raw    []byte
}

type queryOptions struct {
	id               uint16
	opcode           core.Opcode
	recursionDesired bool
	class            uint16
}

// QueryOption customises BuildQuery.
type QueryOption func(*queryOptions)

// WithID sets the transaction ID instead of a random one.
func WithID(id uint16) QueryOption {
	return func(o *queryOptions) { o.id = id }
}

func WithOpcode(op core.Opcode) QueryOption {
	return func(o *queryOptions) { o.opcode = op }
}

func WithRecursionDesired(rd bool) QueryOption {
	return func(o *queryOptions) { o.recursionDesired = rd }
}

func WithClass(class uint16) QueryOption {
	return func(o *queryOptions) { o.class = class }
}

// lookupProfile is idna.Lookup without the STD3 hostname rules, so service
// labels such as "_sip" and "_dmarc" pass through unchanged.
var lookupProfile = idna.New(
	idna.MapForLookup(),
	idna.Transitional(false),
	idna.StrictDomainName(false),
)

// BuildQuery assembles header, question name, type and class into one
// buffer. By default the query has a random ID, asks for recursion and uses
// class IN. The domain is converted to its IDNA ASCII form first.
func BuildQuery(domain string, qtype uint16, opts ...QueryOption) (*Query, error) {
	o := queryOptions{
		id:               dns.Id(),
		opcode:           core.OpcodeQuery,
		recursionDesired: true,
		class:            dns.ClassINET,
	}
	for _, opt := range opts {
		opt(&o)
	}

	ascii, err := lookupProfile.ToASCII(strings.TrimSuffix(domain, "."))
	if err != nil {
		return nil, fmt.Errorf("invalid domain %q: %w", domain, err)
	}
	name, err := EncodeName(ascii)
	if err != nil {
		return nil, err
	}

	q := &Query{
		Header: core.QueryHeader{
			ID:               o.id,
			Opcode:           o.opcode,
			RecursionDesired: o.recursionDesired,
			QDCount:          1,
		},
		Name:  ascii,
		Type:  qtype,
		Class: o.class,
	}
	w := cursor.NewWriter(core.QueryHeaderLen + len(name) + 4)
	if err := (QueryHeaderCodec{}).Encode(w, q.Header); err != nil {
		return nil, err
	}
	w.WriteBytes(name)
	w.WriteUint16(qtype, be)
	w.WriteUint16(o.class, be)
	q.Raw = w.Bytes()
	return q, nil
}

// Validate checks that resp answers q: it must be a response carrying the
// same ID and, when it echoes a question, the same name and type.
func (q *Query) Validate(resp *Response) error {
	if resp.Header.Type != core.MessageResponse {
		return fmt.Errorf("%w: message is a query", core.ErrInvalidResponse)
	}
	if resp.Header.ID != q.Header.ID {
		return fmt.Errorf("%w: id %d, want %d", core.ErrInvalidResponse, resp.Header.ID, q.Header.ID)
	}
	if len(resp.Questions) > 0 {
		q0 := resp.Questions[0]
		if !strings.EqualFold(q0.Name, q.Name) || q0.Type != q.Type {
			return fmt.Errorf("%w: question %s/%d, want %s/%d", core.ErrInvalidResponse, q0.Name, q0.Type, q.Name, q.Type)
		}
	}
	return nil
}

// Question is one entry of the question section.
type Question struct {
	Name  string
	Type  uint16
	Class uint16
}

// Answer is one resource record of the answer section. Data is the raw,
// uninterpreted RDATA and aliases the response buffer.
type Answer struct {
	Name  string
	Type  uint16
	Class uint16
	TTL   uint32
	Data  []byte
}

// Addr returns the address carried by an A or AAAA record.
func (a Answer) Addr() (netip.Addr, bool) {
	switch {
	case a.Type == dns.TypeA && len(a.Data) == 4:
		return netip.AddrFrom4([4]byte(a.Data)), true
	case a.Type == dns.TypeAAAA && len(a.Data) == 16:
		return netip.AddrFrom16([16]byte(a.Data)), true
	}
	return netip.Addr{}, false
}

// Response is a decoded inbound message. Authority and additional sections
// are not walked.
type Response struct {
	Header    core.QueryHeader
	Questions []Question
	Answers   []Answer
}

// ParseResponse decodes the header at the start of buf and then walks the
// question and answer sections using the header's counts.
func ParseResponse(buf []byte) (*Response, error) {
	c := cursor.New(buf)
	h, err := QueryHeaderCodec{}.Decode(c)
	if err != nil {
		return nil, fmt.Errorf("header: %w", err)
	}

	resp := &Response{Header: h}
	for i := 0; i < int(h.QDCount); i++ {
		q, err := readQuestion(c, buf)
		if err != nil {
			return nil, fmt.Errorf("question %d: %w", i, err)
		}
		resp.Questions = append(resp.Questions, q)
	}
	for i := 0; i < int(h.ANCount); i++ {
		a, err := readAnswer(c, buf)
		if err != nil {
			return nil, fmt.Errorf("answer %d: %w", i, err)
		}
		resp.Answers = append(resp.Answers, a)
	}
	return resp, nil
}

// Addresses returns the A and AAAA addresses of the answer section in order.
func (r *Response) Addresses() []netip.Addr {
	var out []netip.Addr
	for _, a := range r.Answers {
		if addr, ok := a.Addr(); ok {
			out = append(out, addr)
		}
	}
	return out
}

func readQuestion(c *cursor.Cursor, msg []byte) (Question, error) {
	var q Question
	name, err := readName(c, msg)
	if err != nil {
		return q, err
	}
	q.Name = name
	if q.Type, err = c.ReadUint16(be); err != nil {
		return q, err
	}
	if q.Class, err = c.ReadUint16(be); err != nil {
		return q, err
	}
	return q, nil
}

func readAnswer(c *cursor.Cursor, msg []byte) (Answer, error) {
	var a Answer
	name, err := readName(c, msg)
	if err != nil {
		return a, err
	}
	a.Name = name
	if a.Type, err = c.ReadUint16(be); err != nil {
		return a, err
	}
	if a.Class, err = c.ReadUint16(be); err != nil {
		return a, err
	}
	if a.TTL, err = c.ReadUint32(be); err != nil {
		return a, err
	}
	rdlen, err := c.ReadUint16(be)
	if err != nil {
		return a, err
	}
	if a.Data, err = c.ReadBytes(int(rdlen)); err != nil {
		return a, err
	}
	return a, nil
}
