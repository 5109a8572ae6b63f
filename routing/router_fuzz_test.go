package routing

import (
	"context"
	"testing"

	"github.com/nohros/nohrosruby/protocol"
)

// FuzzGetRoutes decodes arbitrary payloads and checks the router always
// produces a destination.
// Run with: go test -fuzz=FuzzGetRoutes -fuzztime=30s ./routing/
func FuzzGetRoutes(f *testing.F) {
	seed, _ := protocol.Marshal(protocol.NewPacket(protocol.TypeNodeQuery, protocol.NodeFacts(), []byte("x")))
	f.Add([]byte("sender"), seed)
	f.Add([]byte{}, []byte{})
	f.Add([]byte("s"), []byte{0x12, 0x00})

	db := newRegistry(f)
	table := NewTable()
	router := NewRouter(db, table, nil)
	ctx := context.Background()

	f.Fuzz(func(t *testing.T, sender, payload []byte) {
		p, err := protocol.Unmarshal(payload)
		if err != nil {
			return
		}
		if len(router.GetRoutes(ctx, sender, p)) == 0 {
			t.Fatal("empty route set")
		}
	})
}
