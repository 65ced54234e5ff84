package metadata

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBolt_PersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "meta.bolt")
	ctx := context.Background()

	r, err := OpenBoltRepository(path)
	require.NoError(t, err)
	require.NoError(t, r.Set(ctx, "auto_backup_last_check:u1", []byte("2024-05-31")))
	require.NoError(t, r.Close())

	r, err = OpenBoltRepository(path)
	require.NoError(t, err)
	defer r.Close()

	v, err := r.Get(ctx, "auto_backup_last_check:u1")
	require.NoError(t, err)
	assert.Equal(t, []byte("2024-05-31"), v)
}

func TestBolt_OpenInvalidPath(t *testing.T) {
	_, err := OpenBoltRepository(filepath.Join(t.TempDir(), "missing-dir", "meta.bolt"))
	require.ErrorContains(t, err, "failed to open boltdb")
}

func TestBolt_CloseTwiceSafeOnZeroValue(t *testing.T) {
	var r BoltRepository
	assert.NoError(t, r.Close())
}
