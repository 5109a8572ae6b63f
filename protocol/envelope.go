package protocol

import (
	"errors"
	"fmt"
)

// FramesPerEnvelope is the size of one [address][empty][payload] group.
const FramesPerEnvelope = 3

// Envelope errors
var (
	ErrInvalidFrameCount = errors.New("invalid envelope frame count")
	ErrInvalidDelimiter  = errors.New("envelope delimiter frame is not empty")
)

// Envelope is one routed payload: the peer address and the encoded packet.
type Envelope struct {
	Address []byte
	Payload []byte
}

// Frames returns the three wire frames of the envelope.
func (e Envelope) Frames() [][]byte {
	return [][]byte{e.Address, {}, e.Payload}
}

// SplitEnvelopes is the strict way to group received frames into envelopes:
// the whole message is rejected when the frame count is not a multiple of
// three or any delimiter frame is not empty. The node receiver does not use
// it; after the frame count check it validates each triple on its own and
// drops only the triples with a bad delimiter.
func SplitEnvelopes(frames [][]byte) ([]Envelope, error) {
	if len(frames) == 0 || len(frames)%FramesPerEnvelope != 0 {
		return nil, fmt.Errorf("%w: %d is not a multiple of %d", ErrInvalidFrameCount, len(frames), FramesPerEnvelope)
	}

	envs := make([]Envelope, 0, len(frames)/FramesPerEnvelope)
	for i := 0; i < len(frames); i += FramesPerEnvelope {
		if len(frames[i+1]) != 0 {
			return nil, fmt.Errorf("%w: envelope %d", ErrInvalidDelimiter, i/FramesPerEnvelope)
		}
		envs = append(envs, Envelope{Address: frames[i], Payload: frames[i+2]})
	}
	return envs, nil
}

// EncodeEnvelope serializes p into a fresh envelope addressed to address.
func EncodeEnvelope(address []byte, p *Packet) ([][]byte, error) {
	payload, err := Marshal(p)
	if err != nil {
		return nil, err
	}
	return Envelope{Address: address, Payload: payload}.Frames(), nil
}

// DecodeEnvelope decodes a single envelope into its address and packet.
func DecodeEnvelope(frames [][]byte) ([]byte, *Packet, error) {
	envs, err := SplitEnvelopes(frames)
	if err != nil {
		return nil, nil, err
	}
	if len(envs) != 1 {
		return nil, nil, fmt.Errorf("%w: expected one envelope, got %d", ErrInvalidFrameCount, len(envs))
	}
	p, err := RequireMessage(envs[0].Payload)
	if err != nil {
		return nil, nil, err
	}
	return envs[0].Address, p, nil
}

// DealerFrames returns the [empty][payload] frames a dealer socket sends to
// reach the router, which prepends the dealer's identity.
func DealerFrames(p *Packet) ([][]byte, error) {
	payload, err := Marshal(p)
	if err != nil {
		return nil, err
	}
	return [][]byte{{}, payload}, nil
}

// ParseDealerFrames decodes the [empty][payload] pair a dealer receives.
func ParseDealerFrames(frames [][]byte) (*Packet, error) {
	if len(frames) != 2 {
		return nil, fmt.Errorf("%w: expected 2 frames, got %d", ErrInvalidFrameCount, len(frames))
	}
	if len(frames[0]) != 0 {
		return nil, ErrInvalidDelimiter
	}
	return RequireMessage(frames[1])
}
