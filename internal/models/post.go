package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Post visibility levels
const (
	VisibilityPublic    = "public"
	VisibilityFollowers = "followers"
	VisibilityPrivate   = "private"
)

// Moderation statuses shared by posts and comments
const (
	ModerationApproved = "approved"
	ModerationPending  = "pending"
	ModerationRejected = "rejected"
)

// Post represents a community post stored in MongoDB
type Post struct {
	ID               primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	UserID           uint               `json:"user_id" bson:"user_id"`
	Content          string             `json:"content" bson:"content"`
	MediaURLs        []string           `json:"media_urls,omitempty" bson:"media_urls,omitempty"`
	MediaType        string             `json:"media_type,omitempty" bson:"media_type,omitempty"` // "image" or "video"
	Visibility       string             `json:"visibility" bson:"visibility"`
	Hashtags         []string           `json:"hashtags,omitempty" bson:"hashtags,omitempty"`
	Mentions         []string           `json:"mentions,omitempty" bson:"mentions,omitempty"`
	LikesCount       int64              `json:"likes_count" bson:"likes_count"`
	CommentsCount    int64              `json:"comments_count" bson:"comments_count"`
	SharesCount      int64              `json:"shares_count" bson:"shares_count"`
	ViewsCount       int64              `json:"views_count" bson:"views_count"`
	ModerationStatus string             `json:"moderation_status" bson:"moderation_status"`
	IsPublished      bool               `json:"is_published" bson:"is_published"`
	IsPinned         bool               `json:"is_pinned" bson:"is_pinned"`
	CreatedAt        time.Time          `json:"created_at" bson:"created_at"`
	UpdatedAt        time.Time          `json:"updated_at" bson:"updated_at"`
}

// VisibleTo reports whether the post may be shown to viewerID, given whether
// the viewer follows the author.
func (p *Post) VisibleTo(viewerID uint, viewerFollowsAuthor bool) bool {
	if p.UserID == viewerID {
		return true
	}
	switch p.Visibility {
	case VisibilityPublic:
		return true
	case VisibilityFollowers:
		return viewerFollowsAuthor
	default:
		return false
	}
}

// CreatePostRequest defines the request body for creating a new post
type CreatePostRequest struct {
	Content    string   `json:"content" validate:"required,min=1,max=2200"`
	MediaURLs  []string `json:"media_urls,omitempty" validate:"omitempty,dive,url"`
	MediaType  string   `json:"media_type,omitempty" validate:"omitempty,oneof=image video"`
	Visibility string   `json:"visibility,omitempty" validate:"omitempty,oneof=public followers private"`
	Publish    *bool    `json:"publish,omitempty"`
}

// UpdatePostRequest defines the request body for updating an existing post
type UpdatePostRequest struct {
	Content    string   `json:"content,omitempty" validate:"omitempty,min=1,max=2200"`
	MediaURLs  []string `json:"media_urls,omitempty" validate:"omitempty,dive,url"`
	MediaType  string   `json:"media_type,omitempty" validate:"omitempty,oneof=image video"`
	Visibility string   `json:"visibility,omitempty" validate:"omitempty,oneof=public followers private"`
}
