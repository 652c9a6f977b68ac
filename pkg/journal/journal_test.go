package journal

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"indexfund-api/pkg/registry"
)

func TestWriter_WriteBatch(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "journal")
	w, err := NewWriter(dir)
	require.NoError(t, err)
	w.nowFn = func() time.Time { return time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC) }

	rec := &BatchRecord{
		RegistryID: "fund.near",
		Caller:     "curator.near",
		Updates:    []registry.AssetWeight{{AssetID: "a", Weight: 6000}, {AssetID: "b", Weight: 4000}},
		Weights:    []registry.AssetWeight{{AssetID: "a", Weight: 6000}, {AssetID: "b", Weight: 4000}},
	}
	path, err := w.WriteBatch(rec)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "batch_20240501_120000_00001.json"), path)

	got, err := ReadBatch(path)
	require.NoError(t, err)
	assert.Equal(t, 1, got.Sequence)
	assert.Equal(t, rec.Updates, got.Updates)
	assert.Equal(t, registry.Identity("curator.near"), got.Caller)

	second, err := w.WriteBatch(&BatchRecord{RegistryID: "fund.near"})
	require.NoError(t, err)
	assert.NotEqual(t, path, second)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 2)
}

func TestWriter_NilRecord(t *testing.T) {
	w, err := NewWriter(t.TempDir())
	require.NoError(t, err)
	_, err = w.WriteBatch(nil)
	assert.Error(t, err)
}
