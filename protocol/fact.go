// Package protocol defines the ruby message packet and its wire encoding.
package protocol

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// ErrInvalidFact is returned when a fact string is not key=value.
var ErrInvalidFact = errors.New("invalid fact")

// Well-known facts.
const (
	// ServiceFactKey names the fact carrying a service name.
	ServiceFactKey = "service"

	// NodeServiceName is the reserved service representing the node itself.
	NodeServiceName = "ruby"

	// ControlServiceName is the reserved service receiving control messages.
	ControlServiceName = "ruby-control"
)

// Fact is a single key/value attribute of a service.
type Fact struct {
	Key   string `json:"key" yaml:"key"`
	Value string `json:"value" yaml:"value"`
}

// String returns the fact as key=value, the form that is hashed for the
// registry index.
func (f Fact) String() string {
	return f.Key + "=" + f.Value
}

// ParseFact parses a key=value string.
func ParseFact(s string) (Fact, error) {
	key, value, ok := strings.Cut(s, "=")
	key = strings.TrimSpace(key)
	if !ok || key == "" {
		return Fact{}, fmt.Errorf("%w: %q", ErrInvalidFact, s)
	}
	return Fact{Key: key, Value: strings.TrimSpace(value)}, nil
}

// FactSet is an unordered collection of facts.
type FactSet []Fact

// NodeFacts addresses the node service.
func NodeFacts() FactSet {
	return FactSet{{Key: ServiceFactKey, Value: NodeServiceName}}
}

// ControlFacts addresses the control service.
func ControlFacts() FactSet {
	return FactSet{{Key: ServiceFactKey, Value: ControlServiceName}}
}

// ParseFacts parses a list of key=value strings.
func ParseFacts(values []string) (FactSet, error) {
	facts := make(FactSet, 0, len(values))
	for _, v := range values {
		f, err := ParseFact(v)
		if err != nil {
			return nil, err
		}
		facts = append(facts, f)
	}
	return facts, nil
}

// Contains reports whether f is in the set.
func (fs FactSet) Contains(f Fact) bool {
	for _, x := range fs {
		if x == f {
			return true
		}
	}
	return false
}

// ContainsAll reports whether every fact of other is in the set.
func (fs FactSet) ContainsAll(other FactSet) bool {
	for _, f := range other {
		if !fs.Contains(f) {
			return false
		}
	}
	return true
}

// Distinct returns the set without duplicates, keeping first occurrences.
func (fs FactSet) Distinct() FactSet {
	seen := make(map[Fact]struct{}, len(fs))
	out := make(FactSet, 0, len(fs))
	for _, f := range fs {
		if _, ok := seen[f]; ok {
			continue
		}
		seen[f] = struct{}{}
		out = append(out, f)
	}
	return out
}

// Sorted returns a copy ordered by key then value.
func (fs FactSet) Sorted() FactSet {
	out := append(FactSet(nil), fs...)
	sort.Slice(out, func(i, j int) bool {
		if out[i].Key != out[j].Key {
			return out[i].Key < out[j].Key
		}
		return out[i].Value < out[j].Value
	})
	return out
}

// Strings returns the facts as key=value strings.
func (fs FactSet) Strings() []string {
	out := make([]string, len(fs))
	for i, f := range fs {
		out[i] = f.String()
	}
	return out
}

func (fs FactSet) String() string {
	return "{" + strings.Join(fs.Strings(), ",") + "}"
}
