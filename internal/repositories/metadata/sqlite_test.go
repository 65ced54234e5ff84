package metadata

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSQLite_DBErrorsWrapped(t *testing.T) {
	db := setupDB(t)
	r := NewSQLiteRepository(db)
	ctx := context.Background()

	require.NoError(t, db.Close())

	v, err := r.Get(ctx, "k")
	require.Nil(t, v)
	require.ErrorContains(t, err, "failed to get metadata[k]")

	require.ErrorContains(t, r.Set(ctx, "k", []byte("v")), "failed to set metadata[k]")
	require.ErrorContains(t, r.Delete(ctx, "k"), "failed to delete metadata[k]")
	require.ErrorContains(t, r.DeleteMany(ctx, []string{"a", "b"}), "failed to delete 2 metadata keys")
	require.ErrorContains(t, r.Clear(ctx), "failed to clear metadata")

	_, err = r.Keys(ctx, "p")
	require.ErrorContains(t, err, "failed to list metadata keys")

	_, err = r.List(ctx)
	require.ErrorContains(t, err, "failed to list metadata")
}
