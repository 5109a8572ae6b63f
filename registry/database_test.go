package registry

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nohros/nohrosruby/protocol"
)

func openMemory(t *testing.T) *Database {
	t.Helper()
	db, err := Open(MemoryPath, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func facts(kv ...string) protocol.FactSet {
	fs, err := protocol.ParseFacts(kv)
	if err != nil {
		panic(err)
	}
	return fs
}

func ids(services []*ServiceMetadata) []int64 {
	out := make([]int64, len(services))
	for i, s := range services {
		out[i] = s.ID()
	}
	return out
}

func TestAddAssignsStableIDs(t *testing.T) {
	ctx := context.Background()
	db := openMemory(t)

	first, err := db.Add(ctx, facts("service=ruby"), NewServiceMetadata("ruby", RuntimeMachineCode, "", ""))
	require.NoError(t, err)
	second, err := db.Add(ctx, facts("service=weblog"), NewServiceMetadata("weblog", RuntimeNet, "/srv", "-v"))
	require.NoError(t, err)

	assert.Equal(t, int64(1), first.ID())
	assert.Equal(t, int64(2), second.ID())

	got, err := db.Get(ctx, second.ID())
	require.NoError(t, err)
	assert.Equal(t, "weblog", got.Name())
	assert.Equal(t, RuntimeNet, got.Runtime())
	assert.Equal(t, "/srv", got.WorkingDir())
	assert.Equal(t, "-v", got.Arguments())
	assert.Equal(t, facts("service=weblog"), got.Facts())
}

func TestAddRejectsEmptyFacts(t *testing.T) {
	db := openMemory(t)

	_, err := db.Add(context.Background(), nil, NewServiceMetadata("x", RuntimeNet, "", ""))
	require.ErrorIs(t, err, ErrNoFacts)
}

func TestAddDedupesFacts(t *testing.T) {
	ctx := context.Background()
	db := openMemory(t)

	m, err := db.Add(ctx, facts("service=a", "service=a", "env=dev"), NewServiceMetadata("a", RuntimeJava, "", ""))
	require.NoError(t, err)
	assert.Len(t, m.Facts(), 2)

	got, err := db.Get(ctx, m.ID())
	require.NoError(t, err)
	assert.Len(t, got.Facts(), 2)
}

func TestGetServicesMetadataNoMatch(t *testing.T) {
	ctx := context.Background()
	db := openMemory(t)

	_, err := db.Add(ctx, facts("service=ruby"), NewServiceMetadata("ruby", RuntimeMachineCode, "", ""))
	require.NoError(t, err)

	for _, q := range []protocol.FactSet{
		facts("service=unknown"),
		facts("service=ruby", "env=prod"),
		{},
		nil,
	} {
		matches, err := db.GetServicesMetadata(ctx, q)
		require.NoError(t, err)
		assert.Empty(t, matches, "query %s", q)

		exists, err := db.Exists(ctx, q)
		require.NoError(t, err)
		assert.False(t, exists, "query %s", q)
	}
}

// A query matches every service whose fact set is a superset of the query.
func TestGetServicesMetadataSupersetRule(t *testing.T) {
	ctx := context.Background()
	db := openMemory(t)

	prod, err := db.Add(ctx, facts("env=prod"), NewServiceMetadata("prod", RuntimeNet, "", ""))
	require.NoError(t, err)
	web, err := db.Add(ctx, facts("env=prod", "tier=web"), NewServiceMetadata("web", RuntimeNet, "", ""))
	require.NoError(t, err)
	_, err = db.Add(ctx, facts("env=dev", "tier=web"), NewServiceMetadata("dev", RuntimeNet, "", ""))
	require.NoError(t, err)

	matches, err := db.GetServicesMetadata(ctx, facts("env=prod"))
	require.NoError(t, err)
	assert.Equal(t, []int64{prod.ID(), web.ID()}, ids(matches))

	matches, err = db.GetServicesMetadata(ctx, facts("env=prod", "tier=web"))
	require.NoError(t, err)
	assert.Equal(t, []int64{web.ID()}, ids(matches))

	// Fact order does not matter.
	matches, err = db.GetServicesMetadata(ctx, facts("tier=web", "env=prod"))
	require.NoError(t, err)
	assert.Equal(t, []int64{web.ID()}, ids(matches))
}

func TestGetServicesMetadataIgnoresHashCollisions(t *testing.T) {
	ctx := context.Background()
	db := openMemory(t)

	m, err := db.Add(ctx, facts("service=real"), NewServiceMetadata("real", RuntimeNet, "", ""))
	require.NoError(t, err)

	// Forge an index row whose hash matches a fact the service never had.
	forged := protocol.Fact{Key: "service", Value: "forged"}
	_, err = db.db.Exec(`UPDATE facts SET hash_code = ? WHERE service_id = ?`, FactHash(forged), m.ID())
	require.NoError(t, err)

	matches, err := db.GetServicesMetadata(ctx, protocol.FactSet{forged})
	require.NoError(t, err)
	assert.Empty(t, matches)
}

func TestRemoveAndList(t *testing.T) {
	ctx := context.Background()
	db := openMemory(t)

	a, err := db.Add(ctx, facts("service=a"), NewServiceMetadata("a", RuntimeNet, "", ""))
	require.NoError(t, err)
	b, err := db.Add(ctx, facts("service=b"), NewServiceMetadata("b", RuntimePython, "", ""))
	require.NoError(t, err)

	require.NoError(t, db.Remove(ctx, a.ID()))
	require.ErrorIs(t, db.Remove(ctx, a.ID()), ErrNotFound)

	all, err := db.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []int64{b.ID()}, ids(all))

	exists, err := db.Exists(ctx, facts("service=a"))
	require.NoError(t, err)
	assert.False(t, exists)

	_, err = db.Get(ctx, a.ID())
	require.ErrorIs(t, err, ErrNotFound)
}

func TestOpenPersistsAcrossReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), DefaultFileName)

	db, err := Open(path, nil)
	require.NoError(t, err)
	m, err := db.Add(ctx, facts("service=weblog"), NewServiceMetadata("weblog", RuntimeNet, "", ""))
	require.NoError(t, err)
	require.NoError(t, db.Close())

	db, err = Open(path, nil)
	require.NoError(t, err)
	defer db.Close()

	matches, err := db.GetServicesMetadata(ctx, facts("service=weblog"))
	require.NoError(t, err)
	assert.Equal(t, []int64{m.ID()}, ids(matches))
}

func TestOpenDiscardsUnversionedStore(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), DefaultFileName)

	raw, err := sql.Open("sqlite", path)
	require.NoError(t, err)
	_, err = raw.Exec(`CREATE TABLE services (id INTEGER PRIMARY KEY, name TEXT)`)
	require.NoError(t, err)
	_, err = raw.Exec(`INSERT INTO services(name) VALUES('stale')`)
	require.NoError(t, err)
	require.NoError(t, raw.Close())

	db, err := Open(path, nil)
	require.NoError(t, err)
	defer db.Close()

	all, err := db.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestOpenDiscardsGarbageFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), DefaultFileName)
	require.NoError(t, os.WriteFile(path, []byte("not a database"), 0o644))

	db, err := Open(path, nil)
	require.NoError(t, err)
	require.NoError(t, db.Close())
}

func TestOpenDiscardsNewerStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), DefaultFileName)

	db, err := Open(path, nil)
	require.NoError(t, err)
	_, err = db.Add(context.Background(), facts("service=a"), NewServiceMetadata("a", RuntimeNet, "", ""))
	require.NoError(t, err)
	_, err = db.db.Exec(`UPDATE meta SET value = '99' WHERE key = 'last_compatible_version'`)
	require.NoError(t, err)
	require.NoError(t, db.Close())

	db, err = Open(path, nil)
	require.NoError(t, err)
	defer db.Close()

	all, err := db.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestFactHashStable(t *testing.T) {
	f := protocol.Fact{Key: "service", Value: "ruby"}
	assert.Equal(t, FactHash(f), FactHash(protocol.Fact{Key: "service", Value: "ruby"}))
	assert.NotEqual(t, FactHash(f), FactHash(protocol.Fact{Key: "service", Value: "rubx"}))
}
