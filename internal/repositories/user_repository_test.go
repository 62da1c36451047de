package repositories

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jestfly/community-backend/internal/apperrors"
	"github.com/jestfly/community-backend/internal/models"
)

func TestDuplicateUsernameIsConflict(t *testing.T) {
	db := newTestDB(t)
	repo := NewPostgresUserRepository(db)

	require.NoError(t, repo.CreateUser(&models.User{
		Username: "alice", Email: "alice@example.com", Password: "hash",
	}))

	err := repo.CreateUser(&models.User{
		Username: "alice", Email: "other@example.com", Password: "hash",
	})
	require.Error(t, err)
	assert.Equal(t, apperrors.KindConflict, apperrors.KindOf(err))
}

func TestCreateUserAssignsIDAndTimestamps(t *testing.T) {
	db := newTestDB(t)
	repo := NewPostgresUserRepository(db)

	user := &models.User{Username: "alice", Email: "alice@example.com", Password: "hash"}
	require.NoError(t, repo.CreateUser(user))
	require.NotZero(t, user.ID)

	got, err := repo.GetUserByID(user.ID)
	require.NoError(t, err)
	assert.Equal(t, user.ID, got.ID)
	assert.False(t, got.CreatedAt.IsZero())
	assert.False(t, got.UpdatedAt.IsZero())
}

func TestGetMissingUserIsNotFound(t *testing.T) {
	db := newTestDB(t)
	repo := NewPostgresUserRepository(db)

	_, err := repo.GetUserByID(999)
	require.Error(t, err)
	assert.Equal(t, apperrors.KindNotFound, apperrors.KindOf(err))

	_, err = repo.GetUserByEmail("nobody@example.com")
	assert.Equal(t, apperrors.KindNotFound, apperrors.KindOf(err))
}

func TestGetUsersByIDsBatch(t *testing.T) {
	db := newTestDB(t)
	repo := NewPostgresUserRepository(db)
	alice := createTestUser(t, db, "alice")
	bob := createTestUser(t, db, "bob")

	users, err := repo.GetUsersByIDs([]uint{alice.ID, bob.ID, 999})
	require.NoError(t, err)
	require.Len(t, users, 2)
	assert.Equal(t, "alice", users[alice.ID].Username)
	assert.Equal(t, "bob", users[bob.ID].Username)

	users, err = repo.GetUsersByIDs(nil)
	require.NoError(t, err)
	assert.Empty(t, users)
}

func TestFollowCountersNeverGoNegative(t *testing.T) {
	db := newTestDB(t)
	repo := NewPostgresUserRepository(db)
	alice := createTestUser(t, db, "alice")

	require.NoError(t, repo.DecrementFollowersCount(alice.ID))
	require.NoError(t, repo.DecrementFollowingCount(alice.ID))

	got, err := repo.GetUserByID(alice.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(0), got.FollowersCount)
	assert.Equal(t, int64(0), got.FollowingCount)

	require.NoError(t, repo.IncrementFollowersCount(alice.ID))
	require.NoError(t, repo.IncrementFollowersCount(alice.ID))
	require.NoError(t, repo.DecrementFollowersCount(alice.ID))

	got, err = repo.GetUserByID(alice.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), got.FollowersCount)
}

func TestSetDeviceToken(t *testing.T) {
	db := newTestDB(t)
	repo := NewPostgresUserRepository(db)
	alice := createTestUser(t, db, "alice")

	require.NoError(t, repo.SetDeviceToken(alice.ID, "fcm-token-1"))

	got, err := repo.GetUserByID(alice.ID)
	require.NoError(t, err)
	assert.Equal(t, "fcm-token-1", got.DeviceToken)
}
