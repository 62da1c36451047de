package models

import "gorm.io/gorm"

// Comment represents a comment on a post. Nesting is exactly one level deep:
// a reply to a reply is stored as a reply to the original top-level comment.
type Comment struct {
	gorm.Model
	PostID           string `json:"post_id" gorm:"index"` // MongoDB ObjectID as string
	UserID           uint   `json:"user_id" gorm:"index"`
	ParentID         *uint  `json:"parent_id,omitempty" gorm:"index"` // nil for top-level comments
	Content          string `json:"content"`
	LikesCount       int64  `json:"likes_count" gorm:"default:0"`
	RepliesCount     int64  `json:"replies_count" gorm:"default:0"`
	IsEdited         bool   `json:"is_edited" gorm:"default:false"`
	ModerationStatus string `json:"moderation_status" gorm:"size:20;default:'approved'"`
}

// CreateCommentRequest defines the request body for creating a new comment
type CreateCommentRequest struct {
	Content  string `json:"content" validate:"required,min=1,max=500"`
	ParentID *uint  `json:"parent_id,omitempty"`
}

// UpdateCommentRequest defines the request body for updating an existing comment
type UpdateCommentRequest struct {
	Content string `json:"content" validate:"required,min=1,max=500"`
}
