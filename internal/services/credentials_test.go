package services

import (
	"context"
	"testing"
	"time"

	"github.com/dmitrijs2005/budgetkeeper/internal/common"
	"github.com/dmitrijs2005/budgetkeeper/internal/localstore"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type credFixture struct {
	store *localstore.Store
	enc   *EncryptionService
	now   time.Time
	svc   *CredentialService
}

func newCredFixture(t *testing.T) *credFixture {
	t.Helper()
	f := &credFixture{
		store: newLocalStore(t),
		now:   time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC),
	}
	f.enc = NewEncryptionService(f.store, discard()).WithRandom(fixedKeySource())
	f.svc = NewCredentialService(f.store, f.enc, discard()).WithClock(func() time.Time { return f.now })
	return f
}

func TestCredentials_StoreAndGet(t *testing.T) {
	ctx := context.Background()
	f := newCredFixture(t)
	require.NoError(t, f.enc.EnableEncryption(ctx))

	require.NoError(t, f.svc.StoreCredentials(ctx, "sari@example.com", "rahasia", "u1"))

	c, err := f.svc.GetStoredCredentials(ctx)
	require.NoError(t, err)
	require.NotNil(t, c)
	assert.Equal(t, "sari@example.com", c.Email)
	assert.Equal(t, "u1", c.UserID)
	assert.NotEqual(t, "rahasia", c.EncryptedPassword)
	assert.True(t, c.LastLoginTime.Equal(f.now))
}

func TestCredentials_InvalidEmail(t *testing.T) {
	f := newCredFixture(t)
	err := f.svc.StoreCredentials(context.Background(), "not-an-email", "pw", "u1")
	assert.ErrorIs(t, err, common.ErrInvalidEmail)
}

func TestCredentials_ExpireAfterThirtyDays(t *testing.T) {
	ctx := context.Background()
	f := newCredFixture(t)
	require.NoError(t, f.svc.StoreCredentials(ctx, "sari@example.com", "rahasia", "u1"))

	f.now = f.now.Add(30 * 24 * time.Hour)
	c, err := f.svc.GetStoredCredentials(ctx)
	require.NoError(t, err)
	require.NotNil(t, c, "exactly 30 days is still valid")

	f.now = f.now.Add(24 * time.Hour)
	c, err = f.svc.GetStoredCredentials(ctx)
	require.NoError(t, err)
	assert.Nil(t, c)

	raw, err := f.store.Get(ctx, common.StoredCredentialsKey)
	require.NoError(t, err)
	assert.Nil(t, raw, "expired credentials are purged")
}

func TestCredentials_UnreadableRecordIsDropped(t *testing.T) {
	ctx := context.Background()
	f := newCredFixture(t)
	require.NoError(t, f.store.Set(ctx, common.StoredCredentialsKey, []byte("{broken")))

	c, err := f.svc.GetStoredCredentials(ctx)
	require.NoError(t, err)
	assert.Nil(t, c)

	raw, err := f.store.Get(ctx, common.StoredCredentialsKey)
	require.NoError(t, err)
	assert.Nil(t, raw)
}

func TestCredentials_EnableBiometricRequiresStoredCredentials(t *testing.T) {
	ctx := context.Background()
	f := newCredFixture(t)

	err := f.svc.EnableBiometricLogin(ctx)
	assert.ErrorIs(t, err, common.ErrNoStoredCredentials)
	assert.False(t, f.svc.IsBiometricLoginEnabled(ctx))

	require.NoError(t, f.svc.StoreCredentials(ctx, "sari@example.com", "rahasia", "u1"))
	require.NoError(t, f.svc.EnableBiometricLogin(ctx))
	assert.True(t, f.svc.IsBiometricLoginEnabled(ctx))

	require.NoError(t, f.svc.DisableBiometricLogin(ctx))
	assert.False(t, f.svc.IsBiometricLoginEnabled(ctx))
}

func TestCredentials_BiometricLoginGate(t *testing.T) {
	ctx := context.Background()

	t.Run("all conditions hold", func(t *testing.T) {
		f := newCredFixture(t)
		require.NoError(t, f.enc.EnableEncryption(ctx))
		require.NoError(t, f.svc.StoreCredentials(ctx, "sari@example.com", "rahasia", "u1"))
		require.NoError(t, f.svc.EnableBiometricLogin(ctx))

		c, ok := f.svc.GetBiometricLoginCredentials(ctx)
		require.True(t, ok)
		assert.Equal(t, "sari@example.com", c.Email)
		assert.Equal(t, "rahasia", c.Password)
	})

	t.Run("flag disabled", func(t *testing.T) {
		f := newCredFixture(t)
		require.NoError(t, f.svc.StoreCredentials(ctx, "sari@example.com", "rahasia", "u1"))

		_, ok := f.svc.GetBiometricLoginCredentials(ctx)
		assert.False(t, ok)
	})

	t.Run("credentials expired", func(t *testing.T) {
		f := newCredFixture(t)
		require.NoError(t, f.svc.StoreCredentials(ctx, "sari@example.com", "rahasia", "u1"))
		require.NoError(t, f.svc.EnableBiometricLogin(ctx))
		f.now = f.now.Add(31 * 24 * time.Hour)

		_, ok := f.svc.GetBiometricLoginCredentials(ctx)
		assert.False(t, ok)
	})

	t.Run("key lost", func(t *testing.T) {
		f := newCredFixture(t)
		require.NoError(t, f.enc.EnableEncryption(ctx))
		require.NoError(t, f.svc.StoreCredentials(ctx, "sari@example.com", "rahasia", "u1"))
		require.NoError(t, f.svc.EnableBiometricLogin(ctx))
		require.NoError(t, f.store.Delete(ctx, common.EncryptionKeyKey))

		_, ok := f.svc.GetBiometricLoginCredentials(ctx)
		assert.False(t, ok)
	})
	t.Run("plaintext password kept while encryption stays off", func(t *testing.T) {
		f := newCredFixture(t)
		require.NoError(t, f.svc.StoreCredentials(ctx, "sari@example.com", "rahasia", "u1"))
		require.NoError(t, f.svc.EnableBiometricLogin(ctx))

		c, ok := f.svc.GetBiometricLoginCredentials(ctx)
		require.True(t, ok)
		assert.Equal(t, "rahasia", c.Password)
	})

	t.Run("encryption disabled after storing", func(t *testing.T) {
		f := newCredFixture(t)
		require.NoError(t, f.enc.EnableEncryption(ctx))
		require.NoError(t, f.svc.StoreCredentials(ctx, "sari@example.com", "rahasia", "u1"))
		require.NoError(t, f.svc.EnableBiometricLogin(ctx))
		require.NoError(t, f.enc.DisableEncryption(ctx))

		c, ok := f.svc.GetBiometricLoginCredentials(ctx)
		assert.False(t, ok)
		assert.Nil(t, c)
	})

	t.Run("encryption enabled after storing", func(t *testing.T) {
		f := newCredFixture(t)
		require.NoError(t, f.svc.StoreCredentials(ctx, "sari@example.com", "abcd1234", "u1"))
		require.NoError(t, f.svc.EnableBiometricLogin(ctx))
		require.NoError(t, f.enc.EnableEncryption(ctx))

		c, ok := f.svc.GetBiometricLoginCredentials(ctx)
		assert.False(t, ok)
		assert.Nil(t, c)
	})

	t.Run("stored again after toggling", func(t *testing.T) {
		f := newCredFixture(t)
		require.NoError(t, f.svc.StoreCredentials(ctx, "sari@example.com", "rahasia", "u1"))
		require.NoError(t, f.svc.EnableBiometricLogin(ctx))
		require.NoError(t, f.enc.EnableEncryption(ctx))
		require.NoError(t, f.svc.StoreCredentials(ctx, "sari@example.com", "rahasia", "u1"))

		stored, err := f.svc.GetStoredCredentials(ctx)
		require.NoError(t, err)
		assert.True(t, stored.PasswordEncrypted)

		c, ok := f.svc.GetBiometricLoginCredentials(ctx)
		require.True(t, ok)
		assert.Equal(t, "rahasia", c.Password)
	})
}
