package repositories

import (
	"errors"

	"gorm.io/gorm"

	"github.com/jestfly/community-backend/internal/apperrors"
	"github.com/jestfly/community-backend/internal/models"
)

// CommentRepository defines the interface for comment data operations
type CommentRepository interface {
	CreateComment(comment *models.Comment) error
	GetCommentByID(id uint) (*models.Comment, error)
	GetTopLevelByPostID(postID string, offset, limit int) ([]models.Comment, int64, error)
	GetRepliesByParentIDs(parentIDs []uint) (map[uint][]models.Comment, error)
	UpdateComment(comment *models.Comment) error
	DeleteCommentTree(id uint) (int64, error)
	IncrementLikesCount(id uint) error
	DecrementLikesCount(id uint) error
	IncrementRepliesCount(id uint) error
	DecrementRepliesCount(id uint) error
}

// PostgresCommentRepository implements CommentRepository for PostgreSQL
type PostgresCommentRepository struct {
	db *gorm.DB
}

// NewPostgresCommentRepository creates a new PostgresCommentRepository
func NewPostgresCommentRepository(db *gorm.DB) *PostgresCommentRepository {
	return &PostgresCommentRepository{db: db}
}

func (r *PostgresCommentRepository) CreateComment(comment *models.Comment) error {
	return r.db.Create(comment).Error
}

func (r *PostgresCommentRepository) GetCommentByID(id uint) (*models.Comment, error) {
	var comment models.Comment
	if err := r.db.First(&comment, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("comment")
		}
		return nil, err
	}
	return &comment, nil
}

// GetTopLevelByPostID returns a page of top-level comments for a post,
// newest first, plus the total top-level count.
func (r *PostgresCommentRepository) GetTopLevelByPostID(postID string, offset, limit int) ([]models.Comment, int64, error) {
	var comments []models.Comment
	var total int64

	base := r.db.Model(&models.Comment{}).Where("post_id = ? AND parent_id IS NULL", postID)
	if err := base.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	err := r.db.Where("post_id = ? AND parent_id IS NULL", postID).
		Order("created_at DESC").
		Offset(offset).Limit(limit).
		Find(&comments).Error
	return comments, total, err
}

// GetRepliesByParentIDs loads replies for a whole page of top-level comments
// in one query, grouped by parent id, oldest first within each thread.
func (r *PostgresCommentRepository) GetRepliesByParentIDs(parentIDs []uint) (map[uint][]models.Comment, error) {
	grouped := make(map[uint][]models.Comment, len(parentIDs))
	if len(parentIDs) == 0 {
		return grouped, nil
	}
	var replies []models.Comment
	err := r.db.Where("parent_id IN ?", parentIDs).
		Order("created_at ASC").
		Find(&replies).Error
	if err != nil {
		return nil, err
	}
	for _, reply := range replies {
		grouped[*reply.ParentID] = append(grouped[*reply.ParentID], reply)
	}
	return grouped, nil
}

func (r *PostgresCommentRepository) UpdateComment(comment *models.Comment) error {
	return r.db.Save(comment).Error
}

// DeleteCommentTree deletes a comment together with its replies and returns
// the number of rows removed, so the post counter can be fixed by the same
// amount.
func (r *PostgresCommentRepository) DeleteCommentTree(id uint) (int64, error) {
	var removed int64
	err := r.db.Transaction(func(tx *gorm.DB) error {
		res := tx.Where("parent_id = ?", id).Delete(&models.Comment{})
		if res.Error != nil {
			return res.Error
		}
		removed = res.RowsAffected

		res = tx.Delete(&models.Comment{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return apperrors.NotFound("comment")
		}
		removed += res.RowsAffected
		return nil
	})
	if err != nil {
		return 0, err
	}
	return removed, nil
}

func (r *PostgresCommentRepository) IncrementLikesCount(id uint) error {
	return r.db.Model(&models.Comment{}).Where("id = ?", id).
		Update("likes_count", gorm.Expr("likes_count + 1")).Error
}

// DecrementLikesCount lowers the counter, never below zero
func (r *PostgresCommentRepository) DecrementLikesCount(id uint) error {
	return r.db.Model(&models.Comment{}).Where("id = ? AND likes_count > 0", id).
		Update("likes_count", gorm.Expr("likes_count - 1")).Error
}

func (r *PostgresCommentRepository) IncrementRepliesCount(id uint) error {
	return r.db.Model(&models.Comment{}).Where("id = ?", id).
		Update("replies_count", gorm.Expr("replies_count + 1")).Error
}

func (r *PostgresCommentRepository) DecrementRepliesCount(id uint) error {
	return r.db.Model(&models.Comment{}).Where("id = ? AND replies_count > 0", id).
		Update("replies_count", gorm.Expr("replies_count - 1")).Error
}
