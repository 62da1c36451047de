package repositories

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jestfly/community-backend/internal/apperrors"
)

func TestPostLikeToggleRestoresCount(t *testing.T) {
	db := newTestDB(t)
	repo := NewPostgresLikeRepository(db)
	user := createTestUser(t, db, "alice")
	postID := "65f000000000000000000001"

	before, err := repo.CountForPost(postID)
	require.NoError(t, err)

	_, err = repo.CreatePostLike(postID, user.ID)
	require.NoError(t, err)

	count, err := repo.CountForPost(postID)
	require.NoError(t, err)
	assert.Equal(t, before+1, count)

	require.NoError(t, repo.DeletePostLike(postID, user.ID))

	count, err = repo.CountForPost(postID)
	require.NoError(t, err)
	assert.Equal(t, before, count)
}

func TestDuplicatePostLikeIsConflict(t *testing.T) {
	db := newTestDB(t)
	repo := NewPostgresLikeRepository(db)
	user := createTestUser(t, db, "alice")
	postID := "65f000000000000000000001"

	_, err := repo.CreatePostLike(postID, user.ID)
	require.NoError(t, err)

	_, err = repo.CreatePostLike(postID, user.ID)
	require.Error(t, err)
	assert.Equal(t, apperrors.KindConflict, apperrors.KindOf(err))

	// the duplicate attempt must not inflate the row count
	count, err := repo.CountForPost(postID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

func TestDeleteMissingLikeIsNotFound(t *testing.T) {
	db := newTestDB(t)
	repo := NewPostgresLikeRepository(db)
	user := createTestUser(t, db, "alice")

	err := repo.DeletePostLike("65f000000000000000000001", user.ID)
	require.Error(t, err)
	assert.Equal(t, apperrors.KindNotFound, apperrors.KindOf(err))
}

func TestDuplicateCommentLikeIsConflict(t *testing.T) {
	db := newTestDB(t)
	repo := NewPostgresLikeRepository(db)
	user := createTestUser(t, db, "alice")

	_, err := repo.CreateCommentLike(42, user.ID)
	require.NoError(t, err)

	_, err = repo.CreateCommentLike(42, user.ID)
	require.Error(t, err)
	assert.Equal(t, apperrors.KindConflict, apperrors.KindOf(err))
}

func TestLikedPostIDsBatch(t *testing.T) {
	db := newTestDB(t)
	repo := NewPostgresLikeRepository(db)
	alice := createTestUser(t, db, "alice")
	bob := createTestUser(t, db, "bob")

	posts := []string{
		"65f000000000000000000001",
		"65f000000000000000000002",
		"65f000000000000000000003",
	}
	_, err := repo.CreatePostLike(posts[0], alice.ID)
	require.NoError(t, err)
	_, err = repo.CreatePostLike(posts[2], alice.ID)
	require.NoError(t, err)
	_, err = repo.CreatePostLike(posts[1], bob.ID)
	require.NoError(t, err)

	liked, err := repo.LikedPostIDs(alice.ID, posts)
	require.NoError(t, err)
	assert.True(t, liked[posts[0]])
	assert.False(t, liked[posts[1]])
	assert.True(t, liked[posts[2]])

	// a viewer with no likes on the page gets an all-false map
	liked, err = repo.LikedPostIDs(bob.ID, []string{posts[0], posts[2]})
	require.NoError(t, err)
	assert.Empty(t, liked)

	liked, err = repo.LikedPostIDs(alice.ID, nil)
	require.NoError(t, err)
	assert.Empty(t, liked)
}

func TestLikedCommentIDsBatch(t *testing.T) {
	db := newTestDB(t)
	repo := NewPostgresLikeRepository(db)
	alice := createTestUser(t, db, "alice")

	_, err := repo.CreateCommentLike(1, alice.ID)
	require.NoError(t, err)
	_, err = repo.CreateCommentLike(3, alice.ID)
	require.NoError(t, err)

	liked, err := repo.LikedCommentIDs(alice.ID, []uint{1, 2, 3})
	require.NoError(t, err)
	assert.True(t, liked[1])
	assert.False(t, liked[2])
	assert.True(t, liked[3])
}

func TestPostAndCommentLikesAreIndependent(t *testing.T) {
	db := newTestDB(t)
	repo := NewPostgresLikeRepository(db)
	alice := createTestUser(t, db, "alice")

	// the same user liking a post and two comments must not collide on
	// either unique index
	_, err := repo.CreatePostLike("65f000000000000000000001", alice.ID)
	require.NoError(t, err)
	_, err = repo.CreateCommentLike(1, alice.ID)
	require.NoError(t, err)
	_, err = repo.CreateCommentLike(2, alice.ID)
	require.NoError(t, err)

	count, err := repo.CountForComment(1)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}
