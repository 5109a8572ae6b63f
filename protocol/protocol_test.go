package protocol

import (
	"bytes"
	"errors"
	"testing"

	"google.golang.org/protobuf/encoding/protowire"
	"google.golang.org/protobuf/proto"

	"github.com/nohros/nohrosruby/protocol/rubypb"
)

func samplePacket() *Packet {
	p := NewPacket(TypeNodeQuery, FactSet{
		{Key: "service", Value: "weblog"},
		{Key: "env", Value: "prod"},
	}, []byte("payload"))
	p.Message.SetSender([]byte("client-1"))
	return p
}

func TestEnvelopeRoundTrip(t *testing.T) {
	p := samplePacket()

	frames, err := EncodeEnvelope([]byte("peer-7"), p)
	if err != nil {
		t.Fatalf("EncodeEnvelope failed: %v", err)
	}
	if len(frames) != FramesPerEnvelope {
		t.Fatalf("Expected %d frames, got %d", FramesPerEnvelope, len(frames))
	}
	if len(frames[1]) != 0 {
		t.Errorf("Expected empty delimiter, got %q", frames[1])
	}

	addr, decoded, err := DecodeEnvelope(frames)
	if err != nil {
		t.Fatalf("DecodeEnvelope failed: %v", err)
	}
	if string(addr) != "peer-7" {
		t.Errorf("Expected address 'peer-7', got %q", addr)
	}
	if !decoded.Equal(p) {
		t.Errorf("Decoded packet differs: %+v vs %+v", decoded.Message, p.Message)
	}

	// Re-encoding the decoded packet yields the same bytes.
	again, err := Marshal(decoded)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	if !bytes.Equal(again, frames[2]) {
		t.Error("Re-encoded payload is not bit-identical")
	}
}

func TestUnstampedSenderSurvivesRoundTrip(t *testing.T) {
	p := NewPacket(TypeNodeAnnounce, nil, nil)

	b, err := Marshal(p)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	decoded, err := Unmarshal(b)
	if err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	if decoded.HasSender() {
		t.Error("Unstamped packet should decode without sender")
	}

	// An explicitly stamped empty sender is still a sender.
	p.Message.SetSender(nil)
	b, _ = Marshal(p)
	decoded, err = Unmarshal(b)
	if err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	if !decoded.HasSender() {
		t.Error("Stamped empty sender should be preserved")
	}
}

func TestSplitEnvelopesRejectsBadFrameCount(t *testing.T) {
	for _, n := range []int{0, 1, 2, 4, 5, 7} {
		frames := make([][]byte, n)
		_, err := SplitEnvelopes(frames)
		if !errors.Is(err, ErrInvalidFrameCount) {
			t.Errorf("Expected ErrInvalidFrameCount for %d frames, got %v", n, err)
		}
	}
}

func TestSplitEnvelopesMultiple(t *testing.T) {
	frames := [][]byte{
		[]byte("a"), {}, []byte("one"),
		[]byte("b"), {}, []byte("two"),
	}
	envs, err := SplitEnvelopes(frames)
	if err != nil {
		t.Fatalf("SplitEnvelopes failed: %v", err)
	}
	if len(envs) != 2 {
		t.Fatalf("Expected 2 envelopes, got %d", len(envs))
	}
	if string(envs[1].Address) != "b" || string(envs[1].Payload) != "two" {
		t.Errorf("Unexpected second envelope: %q %q", envs[1].Address, envs[1].Payload)
	}

	frames[4] = []byte("x")
	if _, err := SplitEnvelopes(frames); !errors.Is(err, ErrInvalidDelimiter) {
		t.Errorf("Expected ErrInvalidDelimiter, got %v", err)
	}
}

func TestRequireMessage(t *testing.T) {
	b, err := Marshal(&Packet{Header: Header{Facts: NodeFacts()}})
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	if _, err := RequireMessage(b); !errors.Is(err, ErrNoMessage) {
		t.Errorf("Expected ErrNoMessage, got %v", err)
	}
}

func TestUnmarshalMalformed(t *testing.T) {
	// Field 2, bytes, length 10 with only 2 bytes of data.
	b := protowire.AppendTag(nil, 2, protowire.BytesType)
	b = append(b, 10, 1, 2)

	if _, err := Unmarshal(b); !errors.Is(err, ErrMalformed) {
		t.Errorf("Expected ErrMalformed, got %v", err)
	}
}

func TestUnmarshalSkipsUnknownFields(t *testing.T) {
	b, err := Marshal(samplePacket())
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	b = protowire.AppendTag(b, 15, protowire.VarintType)
	b = protowire.AppendVarint(b, 42)

	p, err := Unmarshal(b)
	if err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	if len(p.Header.Facts) != 2 {
		t.Errorf("Expected 2 facts, got %d", len(p.Header.Facts))
	}
}

func TestDealerFrames(t *testing.T) {
	p := NewPacket(TypeNodeAnnounce, nil, nil)
	frames, err := DealerFrames(p)
	if err != nil {
		t.Fatalf("DealerFrames failed: %v", err)
	}
	decoded, err := ParseDealerFrames(frames)
	if err != nil {
		t.Fatalf("ParseDealerFrames failed: %v", err)
	}
	if decoded.Message.Type != TypeNodeAnnounce {
		t.Errorf("Expected node_announce, got %s", decoded.Message.Type)
	}

	if _, err := ParseDealerFrames(frames[:1]); !errors.Is(err, ErrInvalidFrameCount) {
		t.Errorf("Expected ErrInvalidFrameCount, got %v", err)
	}
}

func TestParseFact(t *testing.T) {
	f, err := ParseFact("service=weblog")
	if err != nil {
		t.Fatalf("ParseFact failed: %v", err)
	}
	if f.Key != "service" || f.Value != "weblog" {
		t.Errorf("Expected service=weblog, got %s", f)
	}

	f, err = ParseFact("version=")
	if err != nil || f.Value != "" {
		t.Errorf("Expected empty value, got %q (%v)", f.Value, err)
	}

	for _, bad := range []string{"", "novalue", "=x"} {
		if _, err := ParseFact(bad); !errors.Is(err, ErrInvalidFact) {
			t.Errorf("Expected ErrInvalidFact for %q, got %v", bad, err)
		}
	}
}

func TestFactSetContainsAll(t *testing.T) {
	service := FactSet{{"env", "prod"}, {"tier", "web"}}

	if !service.ContainsAll(FactSet{{"env", "prod"}}) {
		t.Error("Superset should contain subset")
	}
	if service.ContainsAll(FactSet{{"env", "prod"}, {"tier", "db"}}) {
		t.Error("Set should not contain mismatched fact")
	}

	dup := FactSet{{"a", "1"}, {"a", "1"}, {"b", "2"}}
	if len(dup.Distinct()) != 2 {
		t.Errorf("Expected 2 distinct facts, got %d", len(dup.Distinct()))
	}
}

func TestQueryReplyRoundTrip(t *testing.T) {
	reply := &QueryReply{Services: []ServiceInfo{
		{ID: 3, Name: "weblog", Runtime: 1, Facts: FactSet{{"service", "weblog"}}, Address: "peer-3"},
		{ID: 9, Name: "offline", WorkingDir: "/srv", Arguments: "-v"},
	}}

	b, err := reply.Marshal()
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	decoded, err := UnmarshalQueryReply(b)
	if err != nil {
		t.Fatalf("UnmarshalQueryReply failed: %v", err)
	}
	if len(decoded.Services) != 2 {
		t.Fatalf("Expected 2 services, got %d", len(decoded.Services))
	}
	if decoded.Services[0].Address != "peer-3" || decoded.Services[0].Facts[0].Value != "weblog" {
		t.Errorf("Unexpected first service: %+v", decoded.Services[0])
	}
	if decoded.Services[1].Address != "" || decoded.Services[1].WorkingDir != "/srv" {
		t.Errorf("Unexpected second service: %+v", decoded.Services[1])
	}
}

func TestServiceControlRoundTrip(t *testing.T) {
	msg := &ServiceControlMessage{Command: CommandPause, ServiceID: 12}
	b, err := msg.Marshal()
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	decoded, err := UnmarshalServiceControl(b)
	if err != nil {
		t.Fatalf("UnmarshalServiceControl failed: %v", err)
	}
	if *decoded != *msg {
		t.Errorf("Expected %+v, got %+v", msg, decoded)
	}
}

func TestPacketMatchesGeneratedSchema(t *testing.T) {
	b, err := Marshal(samplePacket())
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}

	var pb rubypb.Packet
	if err := proto.Unmarshal(b, &pb); err != nil {
		t.Fatalf("proto.Unmarshal failed: %v", err)
	}
	if pb.GetMessage().GetType() != rubypb.MessageType_NODE_QUERY {
		t.Errorf("Expected NODE_QUERY, got %s", pb.GetMessage().GetType())
	}
	if string(pb.GetMessage().GetSender()) != "client-1" {
		t.Errorf("Expected sender client-1, got %q", pb.GetMessage().GetSender())
	}
	if len(pb.GetHeader().GetFacts()) != 2 || pb.GetHeader().GetFacts()[1].GetValue() != "prod" {
		t.Errorf("Unexpected header: %v", pb.GetHeader())
	}
}

func TestMarshalRejectsInvalidUTF8Fact(t *testing.T) {
	p := NewPacket(TypeNodeQuery, FactSet{{Key: "service", Value: "\xff"}}, nil)
	if _, err := Marshal(p); !errors.Is(err, ErrMalformed) {
		t.Errorf("Expected ErrMalformed, got %v", err)
	}
}

func TestExceptionRoundTrip(t *testing.T) {
	msg := &ExceptionMessage{Code: ExceptionNoServices, Message: "no service matches facts", Source: NodeServiceName}
	b, err := msg.Marshal()
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	decoded, err := UnmarshalException(b)
	if err != nil {
		t.Fatalf("UnmarshalException failed: %v", err)
	}
	if *decoded != *msg {
		t.Errorf("Expected %+v, got %+v", msg, decoded)
	}
}
