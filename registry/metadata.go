// Package registry stores services and the facts that describe them.
//
// The registry is persisted in SQLite. Every fact a service is registered
// with is indexed by a 32-bit hash of "key=value", and queries resolve a fact
// set to the services whose own fact set contains it.
package registry

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/nohros/nohrosruby/protocol"
)

// LanguageRuntimeType is the runtime a service is hosted on.
type LanguageRuntimeType int32

const (
	RuntimeUnknown     LanguageRuntimeType = 0
	RuntimeNet         LanguageRuntimeType = 1
	RuntimeJava        LanguageRuntimeType = 2
	RuntimeMachineCode LanguageRuntimeType = 3
	RuntimePython      LanguageRuntimeType = 4
)

func (r LanguageRuntimeType) String() string {
	switch r {
	case RuntimeNet:
		return "net"
	case RuntimeJava:
		return "java"
	case RuntimeMachineCode:
		return "machine_code"
	case RuntimePython:
		return "python"
	}
	return "unknown"
}

// ParseLanguageRuntime parses a runtime name as written in manifests.
func ParseLanguageRuntime(s string) (LanguageRuntimeType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "net", ".net", "dotnet":
		return RuntimeNet, nil
	case "java":
		return RuntimeJava, nil
	case "machine_code", "native", "":
		return RuntimeMachineCode, nil
	case "python":
		return RuntimePython, nil
	}
	return RuntimeUnknown, fmt.Errorf("unknown language runtime %q", s)
}

// ServiceMetadata describes a registered service. Values are immutable and
// safe to share between goroutines.
type ServiceMetadata struct {
	id         int64
	name       string
	runtime    LanguageRuntimeType
	workingDir string
	arguments  string
	facts      protocol.FactSet
}

// NewServiceMetadata describes a service that is not registered yet.
func NewServiceMetadata(name string, runtime LanguageRuntimeType, workingDir, arguments string) *ServiceMetadata {
	return &ServiceMetadata{
		name:       name,
		runtime:    runtime,
		workingDir: workingDir,
		arguments:  arguments,
	}
}

// ID returns the registry id, zero for unregistered metadata.
func (m *ServiceMetadata) ID() int64 { return m.id }

// Name returns the service name.
func (m *ServiceMetadata) Name() string { return m.name }

// Runtime returns the language runtime.
func (m *ServiceMetadata) Runtime() LanguageRuntimeType { return m.runtime }

// WorkingDir returns the service working directory.
func (m *ServiceMetadata) WorkingDir() string { return m.workingDir }

// Arguments returns the service command line arguments.
func (m *ServiceMetadata) Arguments() string { return m.arguments }

// Facts returns a copy of the facts the service was registered with.
func (m *ServiceMetadata) Facts() protocol.FactSet {
	return append(protocol.FactSet(nil), m.facts...)
}

// withID returns a registered copy.
func (m *ServiceMetadata) withID(id int64, facts protocol.FactSet) *ServiceMetadata {
	c := *m
	c.id = id
	c.facts = append(protocol.FactSet(nil), facts...)
	return &c
}

// ServiceInfo converts the metadata to its wire form.
func (m *ServiceMetadata) ServiceInfo(address string) protocol.ServiceInfo {
	return protocol.ServiceInfo{
		ID:         m.id,
		Name:       m.name,
		Runtime:    int32(m.runtime),
		WorkingDir: m.workingDir,
		Arguments:  m.arguments,
		Facts:      m.Facts(),
		Address:    address,
	}
}

type metadataJSON struct {
	ID         int64            `json:"id"`
	Name       string           `json:"name"`
	Runtime    string           `json:"language_runtime_type"`
	WorkingDir string           `json:"working_dir"`
	Arguments  string           `json:"arguments"`
	Facts      protocol.FactSet `json:"facts"`
}

// MarshalJSON implements json.Marshaler.
func (m *ServiceMetadata) MarshalJSON() ([]byte, error) {
	return json.Marshal(metadataJSON{
		ID:         m.id,
		Name:       m.name,
		Runtime:    m.runtime.String(),
		WorkingDir: m.workingDir,
		Arguments:  m.arguments,
		Facts:      m.facts,
	})
}
