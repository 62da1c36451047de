package repositories

import (
	"errors"

	"gorm.io/gorm"

	"github.com/jestfly/community-backend/internal/apperrors"
	"github.com/jestfly/community-backend/internal/models"
)

// LikeRepository defines the interface for like data operations. A like
// targets exactly one of a post or a comment; duplicates surface as typed
// conflict errors rather than raw constraint messages.
type LikeRepository interface {
	CreatePostLike(postID string, userID uint) (*models.Like, error)
	DeletePostLike(postID string, userID uint) error
	CreateCommentLike(commentID, userID uint) (*models.Like, error)
	DeleteCommentLike(commentID, userID uint) error
	CountForPost(postID string) (int64, error)
	CountForComment(commentID uint) (int64, error)
	HasUserLikedPost(postID string, userID uint) (bool, error)
	LikedPostIDs(userID uint, postIDs []string) (map[string]bool, error)
	LikedCommentIDs(userID uint, commentIDs []uint) (map[uint]bool, error)
}

// PostgresLikeRepository implements LikeRepository for PostgreSQL
type PostgresLikeRepository struct {
	db *gorm.DB
}

// NewPostgresLikeRepository creates a new PostgresLikeRepository
func NewPostgresLikeRepository(db *gorm.DB) *PostgresLikeRepository {
	return &PostgresLikeRepository{db: db}
}

// CreatePostLike inserts a like for a post. The unique index on
// (user_id, post_id) makes a second insert a conflict.
func (r *PostgresLikeRepository) CreatePostLike(postID string, userID uint) (*models.Like, error) {
	like := &models.Like{UserID: userID, PostID: &postID}
	if err := r.db.Create(like).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apperrors.Conflict("post already liked")
		}
		return nil, err
	}
	return like, nil
}

func (r *PostgresLikeRepository) DeletePostLike(postID string, userID uint) error {
	res := r.db.Where("post_id = ? AND user_id = ?", postID, userID).Delete(&models.Like{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return apperrors.NotFound("like")
	}
	return nil
}

// CreateCommentLike inserts a like for a comment
func (r *PostgresLikeRepository) CreateCommentLike(commentID, userID uint) (*models.Like, error) {
	like := &models.Like{UserID: userID, CommentID: &commentID}
	if err := r.db.Create(like).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apperrors.Conflict("comment already liked")
		}
		return nil, err
	}
	return like, nil
}

func (r *PostgresLikeRepository) DeleteCommentLike(commentID, userID uint) error {
	res := r.db.Where("comment_id = ? AND user_id = ?", commentID, userID).Delete(&models.Like{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return apperrors.NotFound("like")
	}
	return nil
}

// CountForPost recomputes the authoritative like count from rows
func (r *PostgresLikeRepository) CountForPost(postID string) (int64, error) {
	var count int64
	err := r.db.Model(&models.Like{}).Where("post_id = ?", postID).Count(&count).Error
	return count, err
}

// CountForComment recomputes the authoritative like count from rows
func (r *PostgresLikeRepository) CountForComment(commentID uint) (int64, error) {
	var count int64
	err := r.db.Model(&models.Like{}).Where("comment_id = ?", commentID).Count(&count).Error
	return count, err
}

func (r *PostgresLikeRepository) HasUserLikedPost(postID string, userID uint) (bool, error) {
	var count int64
	err := r.db.Model(&models.Like{}).Where("post_id = ? AND user_id = ?", postID, userID).Count(&count).Error
	return count > 0, err
}

// LikedPostIDs returns the viewer's like status for a whole page of posts in
// a single query, keyed by post id.
func (r *PostgresLikeRepository) LikedPostIDs(userID uint, postIDs []string) (map[string]bool, error) {
	liked := make(map[string]bool, len(postIDs))
	if len(postIDs) == 0 {
		return liked, nil
	}
	var ids []string
	err := r.db.Model(&models.Like{}).
		Where("user_id = ? AND post_id IN ?", userID, postIDs).
		Pluck("post_id", &ids).Error
	if err != nil {
		return nil, err
	}
	for _, id := range ids {
		liked[id] = true
	}
	return liked, nil
}

// LikedCommentIDs returns the viewer's like status for a set of comments in
// a single query, keyed by comment id.
func (r *PostgresLikeRepository) LikedCommentIDs(userID uint, commentIDs []uint) (map[uint]bool, error) {
	liked := make(map[uint]bool, len(commentIDs))
	if len(commentIDs) == 0 {
		return liked, nil
	}
	var ids []uint
	err := r.db.Model(&models.Like{}).
		Where("user_id = ? AND comment_id IN ?", userID, commentIDs).
		Pluck("comment_id", &ids).Error
	if err != nil {
		return nil, err
	}
	for _, id := range ids {
		liked[id] = true
	}
	return liked, nil
}
