package blacklist

import (
	"context"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/ekrsw/knowledge/internal/models"
)

func initTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.BlacklistedToken{}))
	return db
}

func TestRevokeAndIsRevoked(t *testing.T) {
	store := &Store{DB: initTestDB(t), Enabled: true}
	ctx := context.Background()

	revoked, err := store.IsRevoked(ctx, "jti-1")
	require.NoError(t, err)
	require.False(t, revoked)

	exp := time.Now().Add(time.Hour)
	require.NoError(t, store.Revoke(ctx, "jti-1", exp))

	revoked, err = store.IsRevoked(ctx, "jti-1")
	require.NoError(t, err)
	require.True(t, revoked)

	// Revoking again must not fail.
	require.NoError(t, store.Revoke(ctx, "jti-1", exp))
}

func TestDisabledStore(t *testing.T) {
	store := &Store{DB: initTestDB(t), Enabled: false}
	ctx := context.Background()

	require.NoError(t, store.Revoke(ctx, "jti-1", time.Now().Add(time.Hour)))

	revoked, err := store.IsRevoked(ctx, "jti-1")
	require.NoError(t, err)
	require.False(t, revoked)
}

func TestPurgeExpired(t *testing.T) {
	store := &Store{DB: initTestDB(t), Enabled: true}
	ctx := context.Background()

	require.NoError(t, store.Revoke(ctx, "old", time.Now().Add(-time.Hour)))
	require.NoError(t, store.Revoke(ctx, "fresh", time.Now().Add(time.Hour)))

	n, err := store.PurgeExpired(ctx)
	require.NoError(t, err)
	require.EqualValues(t, 1, n)

	revoked, err := store.IsRevoked(ctx, "fresh")
	require.NoError(t, err)
	require.True(t, revoked)
}
