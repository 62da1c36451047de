package models

import "time"

// Like represents a like on exactly one of a post or a comment.
// The partial unique indexes keep each (user, target) pair to a single row.
type Like struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	UserID    uint      `json:"user_id" gorm:"index;uniqueIndex:idx_user_post_like;uniqueIndex:idx_user_comment_like"`
	PostID    *string   `json:"post_id,omitempty" gorm:"index;uniqueIndex:idx_user_post_like"`
	CommentID *uint     `json:"comment_id,omitempty" gorm:"index;uniqueIndex:idx_user_comment_like"`
	CreatedAt time.Time `json:"created_at"`
}
