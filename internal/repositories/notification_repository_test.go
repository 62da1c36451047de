package repositories

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jestfly/community-backend/internal/apperrors"
	"github.com/jestfly/community-backend/internal/models"
)

func createTestNotification(t *testing.T, repo NotificationRepository, actorID, recipientID uint) *models.Notification {
	t.Helper()
	n := &models.Notification{
		Type:        models.NotificationLike,
		ActorID:     actorID,
		RecipientID: recipientID,
		Message:     "liked your post",
	}
	require.NoError(t, repo.CreateNotification(n))
	return n
}

func TestUnreadCountOutlivesPageBoundary(t *testing.T) {
	db := newTestDB(t)
	repo := NewPostgresNotificationRepository(db)
	alice := createTestUser(t, db, "alice")
	bob := createTestUser(t, db, "bob")

	for i := 0; i < 5; i++ {
		createTestNotification(t, repo, bob.ID, alice.ID)
	}

	// a page smaller than the set must not shrink the unread count
	page, total, err := repo.GetByRecipientID(alice.ID, 1, 2)
	require.NoError(t, err)
	assert.Len(t, page, 2)
	assert.Equal(t, int64(5), total)

	unread, err := repo.GetUnreadCount(alice.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(5), unread)
}

func TestMarkAsReadIsScopedToRecipient(t *testing.T) {
	db := newTestDB(t)
	repo := NewPostgresNotificationRepository(db)
	alice := createTestUser(t, db, "alice")
	bob := createTestUser(t, db, "bob")

	n := createTestNotification(t, repo, bob.ID, alice.ID)

	// another user cannot mark it
	err := repo.MarkAsRead(n.ID, bob.ID)
	require.Error(t, err)
	assert.Equal(t, apperrors.KindNotFound, apperrors.KindOf(err))

	require.NoError(t, repo.MarkAsRead(n.ID, alice.ID))

	unread, err := repo.GetUnreadCount(alice.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(0), unread)

	// marking again is a no-op, not an error
	require.NoError(t, repo.MarkAsRead(n.ID, alice.ID))
}

func TestMarkAllAsRead(t *testing.T) {
	db := newTestDB(t)
	repo := NewPostgresNotificationRepository(db)
	alice := createTestUser(t, db, "alice")
	bob := createTestUser(t, db, "bob")

	for i := 0; i < 3; i++ {
		createTestNotification(t, repo, bob.ID, alice.ID)
	}
	other := createTestNotification(t, repo, alice.ID, bob.ID)

	require.NoError(t, repo.MarkAllAsRead(alice.ID))

	unread, err := repo.GetUnreadCount(alice.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(0), unread)

	// other recipients are untouched
	unread, err = repo.GetUnreadCount(other.RecipientID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), unread)
}

func TestDeleteNotificationScopedToRecipient(t *testing.T) {
	db := newTestDB(t)
	repo := NewPostgresNotificationRepository(db)
	alice := createTestUser(t, db, "alice")
	bob := createTestUser(t, db, "bob")

	n := createTestNotification(t, repo, bob.ID, alice.ID)

	err := repo.DeleteNotification(n.ID, bob.ID)
	require.Error(t, err)
	assert.Equal(t, apperrors.KindNotFound, apperrors.KindOf(err))

	require.NoError(t, repo.DeleteNotification(n.ID, alice.ID))

	_, total, err := repo.GetByRecipientID(alice.ID, 1, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(0), total)
}

func TestDeleteAffectsUnreadCountOnlyForUnread(t *testing.T) {
	db := newTestDB(t)
	repo := NewPostgresNotificationRepository(db)
	alice := createTestUser(t, db, "alice")
	bob := createTestUser(t, db, "bob")

	read := createTestNotification(t, repo, bob.ID, alice.ID)
	unread := createTestNotification(t, repo, bob.ID, alice.ID)
	require.NoError(t, repo.MarkAsRead(read.ID, alice.ID))

	// deleting an already-read notification leaves the unread count alone
	require.NoError(t, repo.DeleteNotification(read.ID, alice.ID))
	count, err := repo.GetUnreadCount(alice.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	// deleting the unread one lowers it to zero, never below
	require.NoError(t, repo.DeleteNotification(unread.ID, alice.ID))
	count, err = repo.GetUnreadCount(alice.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(0), count)
}

func TestMarkAsReadMissingNotification(t *testing.T) {
	db := newTestDB(t)
	repo := NewPostgresNotificationRepository(db)
	alice := createTestUser(t, db, "alice")

	err := repo.MarkAsRead(999, alice.ID)
	require.Error(t, err)
	assert.Equal(t, apperrors.KindNotFound, apperrors.KindOf(err))
}
