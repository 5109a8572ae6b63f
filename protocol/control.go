package protocol

import (
	"fmt"

	"github.com/nohros/nohrosruby/protocol/rubypb"
)

// AnnounceMessage is sent by a service to publish its facts to the node.
type AnnounceMessage struct {
	Facts FactSet
}

// Marshal encodes the announce payload.
func (a *AnnounceMessage) Marshal() ([]byte, error) {
	return marshalPayload(&rubypb.AnnounceMessage{Facts: factsToProto(a.Facts)})
}

// UnmarshalAnnounce decodes an announce payload.
func UnmarshalAnnounce(b []byte) (*AnnounceMessage, error) {
	var pb rubypb.AnnounceMessage
	if err := unmarshalPayload(b, &pb); err != nil {
		return nil, err
	}
	return &AnnounceMessage{Facts: factsFromProto(pb.GetFacts())}, nil
}

// QueryMessage asks the node which services match a fact set.
type QueryMessage struct {
	Facts FactSet
}

// Marshal encodes the query payload.
func (q *QueryMessage) Marshal() ([]byte, error) {
	return marshalPayload(&rubypb.QueryMessage{Facts: factsToProto(q.Facts)})
}

// UnmarshalQuery decodes a query payload.
func UnmarshalQuery(b []byte) (*QueryMessage, error) {
	var pb rubypb.QueryMessage
	if err := unmarshalPayload(b, &pb); err != nil {
		return nil, err
	}
	return &QueryMessage{Facts: factsFromProto(pb.GetFacts())}, nil
}

// ServiceInfo describes one registered service in a query reply.
type ServiceInfo struct {
	ID         int64
	Name       string
	Runtime    int32
	WorkingDir string
	Arguments  string
	Facts      FactSet
	// Address is the live route, empty when the service is not connected.
	Address string
}

// QueryReply lists the services matching a query.
type QueryReply struct {
	Services []ServiceInfo
}

// Marshal encodes the query reply.
func (r *QueryReply) Marshal() ([]byte, error) {
	pb := &rubypb.QueryReply{Services: make([]*rubypb.ServiceInfo, len(r.Services))}
	for i, s := range r.Services {
		pb.Services[i] = &rubypb.ServiceInfo{
			Id:              s.ID,
			Name:            s.Name,
			LanguageRuntime: s.Runtime,
			WorkingDir:      s.WorkingDir,
			Arguments:       s.Arguments,
			Facts:           factsToProto(s.Facts),
			Address:         s.Address,
		}
	}
	return marshalPayload(pb)
}

// UnmarshalQueryReply decodes a query reply.
func UnmarshalQueryReply(b []byte) (*QueryReply, error) {
	var pb rubypb.QueryReply
	if err := unmarshalPayload(b, &pb); err != nil {
		return nil, err
	}
	r := &QueryReply{Services: make([]ServiceInfo, 0, len(pb.GetServices()))}
	for _, s := range pb.GetServices() {
		r.Services = append(r.Services, ServiceInfo{
			ID:         s.GetId(),
			Name:       s.GetName(),
			Runtime:    s.GetLanguageRuntime(),
			WorkingDir: s.GetWorkingDir(),
			Arguments:  s.GetArguments(),
			Facts:      factsFromProto(s.GetFacts()),
			Address:    s.GetAddress(),
		})
	}
	return r, nil
}

// ControlCommand is an action requested of a hosted service.
type ControlCommand int32

const (
	CommandStart    = ControlCommand(rubypb.ControlCommand_START)
	CommandStop     = ControlCommand(rubypb.ControlCommand_STOP)
	CommandPause    = ControlCommand(rubypb.ControlCommand_PAUSE)
	CommandContinue = ControlCommand(rubypb.ControlCommand_CONTINUE)
)

func (c ControlCommand) String() string {
	switch c {
	case CommandStart:
		return "start"
	case CommandStop:
		return "stop"
	case CommandPause:
		return "pause"
	case CommandContinue:
		return "continue"
	}
	return fmt.Sprintf("command(%d)", int32(c))
}

// ServiceControlMessage asks the node to act on a registered service.
type ServiceControlMessage struct {
	Command   ControlCommand
	ServiceID int64
}

// Marshal encodes the control payload.
func (c *ServiceControlMessage) Marshal() ([]byte, error) {
	return marshalPayload(&rubypb.ServiceControlMessage{
		Command:   rubypb.ControlCommand(c.Command),
		ServiceId: c.ServiceID,
	})
}

// UnmarshalServiceControl decodes a control payload.
func UnmarshalServiceControl(b []byte) (*ServiceControlMessage, error) {
	var pb rubypb.ServiceControlMessage
	if err := unmarshalPayload(b, &pb); err != nil {
		return nil, err
	}
	return &ServiceControlMessage{
		Command:   ControlCommand(pb.GetCommand()),
		ServiceID: pb.GetServiceId(),
	}, nil
}

// ExceptionCode classifies an ExceptionMessage.
type ExceptionCode int32

const (
	ExceptionInvalidMessage = ExceptionCode(rubypb.ExceptionCode_INVALID_MESSAGE)
	ExceptionNoServices     = ExceptionCode(rubypb.ExceptionCode_NO_SERVICES)
	ExceptionInternal       = ExceptionCode(rubypb.ExceptionCode_INTERNAL)
)

// ExceptionMessage reports a failure back to the sender of a request.
type ExceptionMessage struct {
	Code    ExceptionCode
	Message string
	Source  string
}

// Marshal encodes the exception payload.
func (e *ExceptionMessage) Marshal() ([]byte, error) {
	return marshalPayload(&rubypb.ExceptionMessage{
		Code:    rubypb.ExceptionCode(e.Code),
		Message: e.Message,
		Source:  e.Source,
	})
}

// UnmarshalException decodes an exception payload.
func UnmarshalException(b []byte) (*ExceptionMessage, error) {
	var pb rubypb.ExceptionMessage
	if err := unmarshalPayload(b, &pb); err != nil {
		return nil, err
	}
	return &ExceptionMessage{
		Code:    ExceptionCode(pb.GetCode()),
		Message: pb.GetMessage(),
		Source:  pb.GetSource(),
	}, nil
}
