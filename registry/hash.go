package registry

import (
	"github.com/cespare/xxhash/v2"

	"github.com/nohros/nohrosruby/protocol"
)

// FactHash returns the index hash of a fact: the low 32 bits of the xxhash64
// of "key=value". The value is persisted and must not change between
// releases.
func FactHash(f protocol.Fact) int32 {
	return int32(uint32(xxhash.Sum64String(f.String())))
}
