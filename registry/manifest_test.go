package registry

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleManifest = `
services:
  - name: weblog
    runtime: net
    working_dir: /srv/weblog
    arguments: "-v"
    facts: ["service=weblog", "env=prod"]
  - name: tracker
    runtime: java
    facts: ["service=tracker"]
`

func TestLoadManifestAndSeed(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "services.yaml")
	require.NoError(t, os.WriteFile(path, []byte(sampleManifest), 0o644))

	m, err := LoadManifest(path)
	require.NoError(t, err)
	require.Len(t, m.Services, 2)

	db := openMemory(t)
	added, err := db.Seed(ctx, m)
	require.NoError(t, err)
	assert.Equal(t, 2, added)

	// Seeding again registers nothing new.
	added, err = db.Seed(ctx, m)
	require.NoError(t, err)
	assert.Equal(t, 0, added)

	matches, err := db.GetServicesMetadata(ctx, facts("service=weblog"))
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, RuntimeNet, matches[0].Runtime())
	assert.Equal(t, "/srv/weblog", matches[0].WorkingDir())
}

func TestParseManifestValidation(t *testing.T) {
	tests := map[string]string{
		"missing name":  "services:\n  - facts: [\"a=b\"]\n",
		"missing facts": "services:\n  - name: x\n",
		"bad fact":      "services:\n  - name: x\n    facts: [\"nokey\"]\n",
		"bad runtime":   "services:\n  - name: x\n    runtime: cobol\n    facts: [\"a=b\"]\n",
	}
	for name, doc := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := ParseManifest([]byte(doc))
			assert.Error(t, err)
		})
	}
}
