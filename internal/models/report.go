package models

import "gorm.io/gorm"

// Report statuses
const (
	ReportPending   = "pending"
	ReportReviewed  = "reviewed"
	ReportDismissed = "dismissed"
)

// Report represents a user report against exactly one of a post or a comment
type Report struct {
	gorm.Model
	ReporterID uint    `json:"reporter_id" gorm:"index;uniqueIndex:idx_reporter_post;uniqueIndex:idx_reporter_comment"`
	PostID     *string `json:"post_id,omitempty" gorm:"index;uniqueIndex:idx_reporter_post"`
	CommentID  *uint   `json:"comment_id,omitempty" gorm:"index;uniqueIndex:idx_reporter_comment"`
	Reason     string  `json:"reason"`
	Status     string  `json:"status" gorm:"size:20;default:'pending';index"`
}

// CreateReportRequest defines the request body for filing a report
type CreateReportRequest struct {
	PostID    *string `json:"post_id,omitempty"`
	CommentID *uint   `json:"comment_id,omitempty"`
	Reason    string  `json:"reason" validate:"required,min=3,max=500"`
}

// UpdateReportRequest defines the request body for resolving a report
type UpdateReportRequest struct {
	Status string `json:"status" validate:"required,oneof=reviewed dismissed"`
}
