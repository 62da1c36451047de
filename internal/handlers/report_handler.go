package handlers

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/jestfly/community-backend/internal/models"
	"github.com/jestfly/community-backend/internal/repositories"
)

// ReportHandler handles moderation report HTTP requests
type ReportHandler struct {
	reportRepository  repositories.ReportRepository
	postRepository    repositories.PostRepository
	commentRepository repositories.CommentRepository
}

// NewReportHandler creates a new ReportHandler
func NewReportHandler(
	reportRepo repositories.ReportRepository,
	postRepo repositories.PostRepository,
	commentRepo repositories.CommentRepository,
) *ReportHandler {
	return &ReportHandler{
		reportRepository:  reportRepo,
		postRepository:    postRepo,
		commentRepository: commentRepo,
	}
}

// RegisterReportRoutes registers report-related routes
func (h *ReportHandler) RegisterReportRoutes(g *echo.Group) {
	g.POST("/reports", h.CreateReport)
	g.GET("/reports/pending", h.GetPendingReports)
	g.PUT("/reports/:id", h.UpdateReport)
}

// CreateReport files a report against exactly one of a post or a comment
func (h *ReportHandler) CreateReport(c echo.Context) error {
	currentUserID := getUserIDFromContext(c)
	if currentUserID == 0 {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	var req models.CreateReportRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}
	if (req.PostID == nil) == (req.CommentID == nil) {
		return echo.NewHTTPError(http.StatusBadRequest, "Report exactly one of post_id or comment_id")
	}

	if req.PostID != nil {
		if _, err := h.postRepository.GetPostByID(c.Request().Context(), *req.PostID); err != nil {
			return httpError(err)
		}
	} else {
		if _, err := h.commentRepository.GetCommentByID(*req.CommentID); err != nil {
			return httpError(err)
		}
	}

	report := &models.Report{
		ReporterID: currentUserID,
		PostID:     req.PostID,
		CommentID:  req.CommentID,
		Reason:     req.Reason,
		Status:     models.ReportPending,
	}
	if err := h.reportRepository.CreateReport(report); err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusCreated, report)
}

// GetPendingReports lists unresolved reports, oldest first
func (h *ReportHandler) GetPendingReports(c echo.Context) error {
	page, limit := pageParams(c, 20)
	offset := (page - 1) * limit

	reports, total, err := h.reportRepository.GetPendingReports(offset, limit)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, echo.Map{
		"success": true,
		"data":    echo.Map{"reports": reports},
		"meta":    paginationMeta(page, limit, total),
	})
}

// UpdateReport resolves a report as reviewed or dismissed
func (h *ReportHandler) UpdateReport(c echo.Context) error {
	reportID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid report ID")
	}

	var req models.UpdateReportRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	if err := h.reportRepository.UpdateStatus(uint(reportID), req.Status); err != nil {
		return httpError(err)
	}

	report, err := h.reportRepository.GetReportByID(uint(reportID))
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, report)
}
