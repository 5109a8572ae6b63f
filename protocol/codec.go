package protocol

import (
	"errors"
	"fmt"

	"google.golang.org/protobuf/proto"

	"github.com/nohros/nohrosruby/protocol/rubypb"
)

// Common errors for packet decoding
var (
	ErrMalformed = errors.New("malformed packet")
	ErrNoMessage = errors.New("packet has no inner message")
)

// MaxPacketSize bounds a single encoded packet.
const MaxPacketSize = 16 * 1024 * 1024

var (
	marshalOptions   = proto.MarshalOptions{Deterministic: true}
	unmarshalOptions = proto.UnmarshalOptions{}
)

// Marshal encodes a packet in protobuf wire format.
func Marshal(p *Packet) ([]byte, error) {
	if p == nil {
		return nil, fmt.Errorf("%w: nil packet", ErrMalformed)
	}

	b, err := marshalOptions.Marshal(p.proto())
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if len(b) > MaxPacketSize {
		return nil, fmt.Errorf("%w: %d bytes exceeds %d", ErrMalformed, len(b), MaxPacketSize)
	}
	return b, nil
}

// Unmarshal decodes a packet. Unknown fields are skipped. A packet without
// an inner message decodes successfully; callers that need one check
// RequireMessage.
func Unmarshal(b []byte) (*Packet, error) {
	if len(b) > MaxPacketSize {
		return nil, fmt.Errorf("%w: %d bytes exceeds %d", ErrMalformed, len(b), MaxPacketSize)
	}

	var pb rubypb.Packet
	if err := unmarshalOptions.Unmarshal(b, &pb); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	return packetFromProto(&pb), nil
}

// RequireMessage decodes a packet and rejects one without an inner message.
func RequireMessage(b []byte) (*Packet, error) {
	p, err := Unmarshal(b)
	if err != nil {
		return nil, err
	}
	if p.Message == nil {
		return nil, ErrNoMessage
	}
	return p, nil
}

func (p *Packet) proto() *rubypb.Packet {
	pb := &rubypb.Packet{
		Header: &rubypb.Header{Facts: factsToProto(p.Header.Facts)},
	}
	if m := p.Message; m != nil {
		pb.Message = &rubypb.Message{
			Id:      m.ID,
			Type:    rubypb.MessageType(m.Type),
			Payload: m.Payload,
		}
		if m.HasSender {
			// A non-nil slice marks the sender present even when empty.
			pb.Message.Sender = append([]byte{}, m.Sender...)
		}
	}
	return pb
}

func packetFromProto(pb *rubypb.Packet) *Packet {
	p := &Packet{
		Header: Header{Facts: factsFromProto(pb.GetHeader().GetFacts())},
	}
	if m := pb.GetMessage(); m != nil {
		p.Message = &Message{
			ID:        m.GetId(),
			Type:      MessageType(m.GetType()),
			Sender:    m.GetSender(),
			HasSender: m.Sender != nil,
			Payload:   m.GetPayload(),
		}
	}
	return p
}

func factsToProto(facts FactSet) []*rubypb.KeyValuePair {
	if len(facts) == 0 {
		return nil
	}
	out := make([]*rubypb.KeyValuePair, len(facts))
	for i, f := range facts {
		out[i] = &rubypb.KeyValuePair{Key: f.Key, Value: f.Value}
	}
	return out
}

func factsFromProto(kvs []*rubypb.KeyValuePair) FactSet {
	if len(kvs) == 0 {
		return nil
	}
	out := make(FactSet, len(kvs))
	for i, kv := range kvs {
		out[i] = Fact{Key: kv.GetKey(), Value: kv.GetValue()}
	}
	return out
}

// marshalPayload encodes a control payload message.
func marshalPayload(m proto.Message) ([]byte, error) {
	b, err := marshalOptions.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	return b, nil
}

func unmarshalPayload(b []byte, m proto.Message) error {
	if err := unmarshalOptions.Unmarshal(b, m); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	return nil
}
