package protocol

import (
	"bytes"
	"fmt"

	"github.com/google/uuid"

	"github.com/nohros/nohrosruby/protocol/rubypb"
)

// MessageType identifies the payload carried by a Message.
type MessageType int32

const (
	TypeServiceControl = MessageType(rubypb.MessageType_SERVICE_CONTROL)
	TypeNodeAnnounce   = MessageType(rubypb.MessageType_NODE_ANNOUNCE)
	TypeNodeQuery      = MessageType(rubypb.MessageType_NODE_QUERY)
	// TypeNodeError carries an ExceptionMessage back to the requester.
	TypeNodeError = MessageType(rubypb.MessageType_NODE_ERROR)
)

func (t MessageType) String() string {
	switch t {
	case TypeServiceControl:
		return "service_control"
	case TypeNodeAnnounce:
		return "node_announce"
	case TypeNodeQuery:
		return "node_query"
	case TypeNodeError:
		return "node_error"
	}
	return fmt.Sprintf("type(%d)", int32(t))
}

// Header carries the facts used to route a packet.
type Header struct {
	Facts FactSet
}

// Message is the inner message of a packet.
type Message struct {
	ID   []byte
	Type MessageType
	// Sender is the reply address. HasSender distinguishes a stamped empty
	// sender from one that was never set.
	Sender    []byte
	HasSender bool
	Payload   []byte
}

// SetSender stamps the reply address.
func (m *Message) SetSender(sender []byte) {
	m.Sender = append([]byte(nil), sender...)
	m.HasSender = true
}

// ClearSender removes the reply address.
func (m *Message) ClearSender() {
	m.Sender = nil
	m.HasSender = false
}

// Packet is the unit carried in the payload frame of an envelope.
type Packet struct {
	Header  Header
	Message *Message
}

// NewPacket builds an unstamped packet with a random message id.
func NewPacket(typ MessageType, facts FactSet, payload []byte) *Packet {
	id := uuid.New()
	return &Packet{
		Header: Header{Facts: facts},
		Message: &Message{
			ID:      id[:],
			Type:    typ,
			Payload: payload,
		},
	}
}

// NewReply builds a packet addressed back to sender, correlated with id.
func NewReply(typ MessageType, id, sender, payload []byte) *Packet {
	p := &Packet{
		Message: &Message{
			ID:      append([]byte(nil), id...),
			Type:    typ,
			Payload: payload,
		},
	}
	p.Message.SetSender(sender)
	return p
}

// HasSender reports whether the inner message carries a reply address.
func (p *Packet) HasSender() bool {
	return p.Message != nil && p.Message.HasSender
}

// Sender returns the reply address, or nil.
func (p *Packet) Sender() []byte {
	if p.Message == nil {
		return nil
	}
	return p.Message.Sender
}

// Equal compares two packets field by field.
func (p *Packet) Equal(o *Packet) bool {
	if p == nil || o == nil {
		return p == o
	}
	if len(p.Header.Facts) != len(o.Header.Facts) {
		return false
	}
	for i := range p.Header.Facts {
		if p.Header.Facts[i] != o.Header.Facts[i] {
			return false
		}
	}
	if (p.Message == nil) != (o.Message == nil) {
		return false
	}
	if p.Message == nil {
		return true
	}
	a, b := p.Message, o.Message
	return a.Type == b.Type &&
		a.HasSender == b.HasSender &&
		bytes.Equal(a.ID, b.ID) &&
		bytes.Equal(a.Sender, b.Sender) &&
		bytes.Equal(a.Payload, b.Payload)
}
