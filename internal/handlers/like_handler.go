package handlers

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/jestfly/community-backend/internal/models"
	"github.com/jestfly/community-backend/internal/repositories"
)

// LikeHandler handles HTTP requests related to likes on posts and comments.
// Counter updates only happen after the like row mutation succeeds, and the
// live /count endpoints recompute from rows when a client wants the
// authoritative number.
type LikeHandler struct {
	likeRepository    repositories.LikeRepository
	postRepository    repositories.PostRepository
	commentRepository repositories.CommentRepository
	dispatcher        *NotificationDispatcher
	logger            *zap.Logger
}

// NewLikeHandler creates a new LikeHandler
func NewLikeHandler(
	likeRepo repositories.LikeRepository,
	postRepo repositories.PostRepository,
	commentRepo repositories.CommentRepository,
	dispatcher *NotificationDispatcher,
	logger *zap.Logger,
) *LikeHandler {
	return &LikeHandler{
		likeRepository:    likeRepo,
		postRepository:    postRepo,
		commentRepository: commentRepo,
		dispatcher:        dispatcher,
		logger:            logger,
	}
}

// RegisterLikeRoutes registers like-related routes
func (h *LikeHandler) RegisterLikeRoutes(g *echo.Group) {
	g.POST("/posts/:post_id/likes", h.LikePost)
	g.DELETE("/posts/:post_id/likes", h.UnlikePost)
	g.GET("/posts/:post_id/likes/count", h.GetLikesCountForPost)
	g.GET("/posts/:post_id/likes/status", h.GetUserLikeStatusForPost)
	g.POST("/comments/:comment_id/likes", h.LikeComment)
	g.DELETE("/comments/:comment_id/likes", h.UnlikeComment)
	g.GET("/comments/:comment_id/likes/count", h.GetLikesCountForComment)
}

// LikePost handles liking a post
func (h *LikeHandler) LikePost(c echo.Context) error {
	currentUserID := getUserIDFromContext(c)
	if currentUserID == 0 {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}
	postID := c.Param("post_id")

	post, err := h.postRepository.GetPostByID(c.Request().Context(), postID)
	if err != nil {
		return httpError(err)
	}

	like, err := h.likeRepository.CreatePostLike(postID, currentUserID)
	if err != nil {
		// a duplicate like comes back as a typed conflict from the unique index
		return httpError(err)
	}

	if err := h.postRepository.IncrementLikesCount(c.Request().Context(), postID); err != nil {
		h.logger.Error("incrementing post likes counter", zap.String("post_id", postID), zap.Error(err))
	}

	h.dispatcher.Dispatch(c.Request().Context(), &models.Notification{
		Type:        models.NotificationLike,
		ActorID:     currentUserID,
		RecipientID: post.UserID,
		PostID:      &postID,
		Message:     "liked your post",
	})

	return c.JSON(http.StatusCreated, like)
}

// UnlikePost handles unliking a post
func (h *LikeHandler) UnlikePost(c echo.Context) error {
	currentUserID := getUserIDFromContext(c)
	if currentUserID == 0 {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}
	postID := c.Param("post_id")

	if _, err := h.postRepository.GetPostByID(c.Request().Context(), postID); err != nil {
		return httpError(err)
	}

	if err := h.likeRepository.DeletePostLike(postID, currentUserID); err != nil {
		return httpError(err)
	}

	if err := h.postRepository.DecrementLikesCount(c.Request().Context(), postID); err != nil {
		h.logger.Error("decrementing post likes counter", zap.String("post_id", postID), zap.Error(err))
	}

	return c.NoContent(http.StatusNoContent)
}

// GetLikesCountForPost returns the authoritative like count computed from rows
func (h *LikeHandler) GetLikesCountForPost(c echo.Context) error {
	postID := c.Param("post_id")

	if _, err := h.postRepository.GetPostByID(c.Request().Context(), postID); err != nil {
		return httpError(err)
	}

	count, err := h.likeRepository.CountForPost(postID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, echo.Map{"post_id": postID, "likes_count": count})
}

// GetUserLikeStatusForPost checks if the viewer has liked a specific post
func (h *LikeHandler) GetUserLikeStatusForPost(c echo.Context) error {
	currentUserID := getUserIDFromContext(c)
	if currentUserID == 0 {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}
	postID := c.Param("post_id")

	hasLiked, err := h.likeRepository.HasUserLikedPost(postID, currentUserID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, echo.Map{"post_id": postID, "user_id": currentUserID, "has_liked": hasLiked})
}

// LikeComment handles liking a comment
func (h *LikeHandler) LikeComment(c echo.Context) error {
	currentUserID := getUserIDFromContext(c)
	if currentUserID == 0 {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}
	commentID, err := strconv.ParseUint(c.Param("comment_id"), 10, 32)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid comment ID")
	}

	comment, err := h.commentRepository.GetCommentByID(uint(commentID))
	if err != nil {
		return httpError(err)
	}

	like, err := h.likeRepository.CreateCommentLike(uint(commentID), currentUserID)
	if err != nil {
		return httpError(err)
	}

	if err := h.commentRepository.IncrementLikesCount(uint(commentID)); err != nil {
		h.logger.Error("incrementing comment likes counter", zap.Uint("comment_id", uint(commentID)), zap.Error(err))
	}

	h.dispatcher.Dispatch(c.Request().Context(), &models.Notification{
		Type:        models.NotificationLike,
		ActorID:     currentUserID,
		RecipientID: comment.UserID,
		PostID:      &comment.PostID,
		CommentID:   &comment.ID,
		Message:     "liked your comment",
	})

	return c.JSON(http.StatusCreated, like)
}

// UnlikeComment handles unliking a comment
func (h *LikeHandler) UnlikeComment(c echo.Context) error {
	currentUserID := getUserIDFromContext(c)
	if currentUserID == 0 {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}
	commentID, err := strconv.ParseUint(c.Param("comment_id"), 10, 32)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid comment ID")
	}

	if err := h.likeRepository.DeleteCommentLike(uint(commentID), currentUserID); err != nil {
		return httpError(err)
	}

	if err := h.commentRepository.DecrementLikesCount(uint(commentID)); err != nil {
		h.logger.Error("decrementing comment likes counter", zap.Uint("comment_id", uint(commentID)), zap.Error(err))
	}

	return c.NoContent(http.StatusNoContent)
}

// GetLikesCountForComment returns the authoritative like count for a comment
func (h *LikeHandler) GetLikesCountForComment(c echo.Context) error {
	commentID, err := strconv.ParseUint(c.Param("comment_id"), 10, 32)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid comment ID")
	}

	count, err := h.likeRepository.CountForComment(uint(commentID))
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, echo.Map{"comment_id": commentID, "likes_count": count})
}
