package sqlite

import (
	"context"
	"crypto/sha256"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/closetpanel/closetpanel/internal/domain/port/driven"
)

func testKey() []byte {
	sum := sha256.Sum256([]byte("test-secret"))
	return sum[:]
}

func TestCredentialRepo_SetAndGet(t *testing.T) {
	db := setupTestDB(t)
	repo := NewCredentialRepo(db, testKey())
	ctx := context.Background()

	err := repo.Set(ctx, "stylist", "token", "tok_abc123")
	require.NoError(t, err)

	val, err := repo.Get(ctx, "stylist", "token")
	require.NoError(t, err)
	assert.Equal(t, "tok_abc123", val)
}

func TestCredentialRepo_GetMissing(t *testing.T) {
	db := setupTestDB(t)
	repo := NewCredentialRepo(db, testKey())
	ctx := context.Background()

	val, err := repo.Get(ctx, "stylist", "nonexistent")
	require.NoError(t, err)
	assert.Equal(t, "", val)
}

func TestCredentialRepo_UpsertOverwrites(t *testing.T) {
	db := setupTestDB(t)
	repo := NewCredentialRepo(db, testKey())
	ctx := context.Background()

	err := repo.Set(ctx, "stylist", "token", "old-value")
	require.NoError(t, err)

	err = repo.Set(ctx, "stylist", "token", "new-value")
	require.NoError(t, err)

	val, err := repo.Get(ctx, "stylist", "token")
	require.NoError(t, err)
	assert.Equal(t, "new-value", val)
}

func TestCredentialRepo_List(t *testing.T) {
	db := setupTestDB(t)
	repo := NewCredentialRepo(db, testKey())
	ctx := context.Background()

	require.NoError(t, repo.Set(ctx, "stylist", "token", "tok_abc"))
	require.NoError(t, repo.Set(ctx, "stylist", "user", `{"id":"u1"}`))

	creds, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, creds, 2)
	byKey := map[string]string{}
	for _, cred := range creds {
		byKey[cred.Key] = cred.Value
	}
	assert.Equal(t, "tok_abc", byKey["token"])
	assert.Equal(t, `{"id":"u1"}`, byKey["user"])
}

func TestCredentialRepo_Delete(t *testing.T) {
	db := setupTestDB(t)
	repo := NewCredentialRepo(db, testKey())
	ctx := context.Background()

	require.NoError(t, repo.Set(ctx, "stylist", "token", "tok_abc"))
	require.NoError(t, repo.Delete(ctx, "stylist", "token"))

	val, err := repo.Get(ctx, "stylist", "token")
	require.NoError(t, err)
	assert.Equal(t, "", val)

	// Deleting an absent credential is not an error.
	require.NoError(t, repo.Delete(ctx, "stylist", "token"))
}

func TestCredentialRepo_ValuesEncryptedAtRest(t *testing.T) {
	db := setupTestDB(t)
	repo := NewCredentialRepo(db, testKey())
	ctx := context.Background()

	require.NoError(t, repo.Set(ctx, "stylist", "token", "super-secret-token"))

	var stored string
	err := db.Reader.QueryRowContext(ctx,
		`SELECT value FROM credentials WHERE service = 'stylist' AND key = 'token'`,
	).Scan(&stored)
	require.NoError(t, err)
	assert.NotContains(t, stored, "super-secret-token")
}

func TestCredentialRepo_NilKeyRejectsUse(t *testing.T) {
	db := setupTestDB(t)
	repo := NewCredentialRepo(db, nil)
	ctx := context.Background()

	err := repo.Set(ctx, "stylist", "token", "tok")
	assert.ErrorIs(t, err, driven.ErrEncryptionKeyNotSet)

	_, err = repo.Get(ctx, "stylist", "token")
	assert.ErrorIs(t, err, driven.ErrEncryptionKeyNotSet)

	_, err = repo.List(ctx)
	assert.ErrorIs(t, err, driven.ErrEncryptionKeyNotSet)
}

func TestCredentialRepo_WrongKeyFailsDecrypt(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	require.NoError(t, NewCredentialRepo(db, testKey()).Set(ctx, "stylist", "token", "tok"))

	other := sha256.Sum256([]byte("different-secret"))
	_, err := NewCredentialRepo(db, other[:]).Get(ctx, "stylist", "token")
	assert.Error(t, err)
}
