package handlers

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/jestfly/community-backend/internal/models"
	"github.com/jestfly/community-backend/internal/repositories"
)

// CommentHandler handles HTTP requests related to comments
type CommentHandler struct {
	commentRepository repositories.CommentRepository
	postRepository    repositories.PostRepository
	userRepository    repositories.UserRepository
	likeRepository    repositories.LikeRepository
	dispatcher        *NotificationDispatcher
	logger            *zap.Logger
}

// NewCommentHandler creates a new CommentHandler
func NewCommentHandler(
	commentRepo repositories.CommentRepository,
	postRepo repositories.PostRepository,
	userRepo repositories.UserRepository,
	likeRepo repositories.LikeRepository,
	dispatcher *NotificationDispatcher,
	logger *zap.Logger,
) *CommentHandler {
	return &CommentHandler{
		commentRepository: commentRepo,
		postRepository:    postRepo,
		userRepository:    userRepo,
		likeRepository:    likeRepo,
		dispatcher:        dispatcher,
		logger:            logger,
	}
}

// RegisterCommentRoutes registers comment-related routes
func (h *CommentHandler) RegisterCommentRoutes(g *echo.Group) {
	g.POST("/posts/:post_id/comments", h.CreateComment)
	g.GET("/posts/:post_id/comments", h.GetCommentsByPostID)
	g.PUT("/comments/:id", h.UpdateComment)
	g.DELETE("/comments/:id", h.DeleteComment)
}

// EnrichedComment is a comment with author info, the viewer's like flag and,
// for top-level comments, its replies.
type EnrichedComment struct {
	models.Comment
	Author  models.UserCompact `json:"author"`
	IsLiked bool               `json:"is_liked"`
	Replies []EnrichedComment  `json:"replies,omitempty"`
}

// CreateComment creates a comment or a reply. Nesting is one level deep: a
// reply targeting another reply is re-parented onto the original top-level
// comment.
func (h *CommentHandler) CreateComment(c echo.Context) error {
	currentUserID := getUserIDFromContext(c)
	if currentUserID == 0 {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}
	postID := c.Param("post_id")

	var req models.CreateCommentRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	post, err := h.postRepository.GetPostByID(c.Request().Context(), postID)
	if err != nil {
		return httpError(err)
	}

	var parent *models.Comment
	if req.ParentID != nil {
		parent, err = h.commentRepository.GetCommentByID(*req.ParentID)
		if err != nil {
			return httpError(err)
		}
		if parent.PostID != postID {
			return echo.NewHTTPError(http.StatusBadRequest, "Parent comment belongs to a different post")
		}
		if parent.ParentID != nil {
			// flatten: re-parent onto the top-level comment
			topLevelID := *parent.ParentID
			parent, err = h.commentRepository.GetCommentByID(topLevelID)
			if err != nil {
				return httpError(err)
			}
		}
	}

	comment := &models.Comment{
		PostID:           postID,
		UserID:           currentUserID,
		Content:          req.Content,
		ModerationStatus: models.ModerationApproved,
	}
	if parent != nil {
		parentID := parent.ID
		comment.ParentID = &parentID
	}

	if err := h.commentRepository.CreateComment(comment); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	if err := h.postRepository.IncrementCommentsCount(c.Request().Context(), postID); err != nil {
		h.logger.Error("incrementing post comments counter", zap.String("post_id", postID), zap.Error(err))
	}

	if parent != nil {
		if err := h.commentRepository.IncrementRepliesCount(parent.ID); err != nil {
			h.logger.Error("incrementing replies counter", zap.Uint("comment_id", parent.ID), zap.Error(err))
		}
		h.dispatcher.Dispatch(c.Request().Context(), &models.Notification{
			Type:        models.NotificationReply,
			ActorID:     currentUserID,
			RecipientID: parent.UserID,
			PostID:      &postID,
			CommentID:   &comment.ID,
			Message:     "replied to your comment",
		})
	} else {
		h.dispatcher.Dispatch(c.Request().Context(), &models.Notification{
			Type:        models.NotificationComment,
			ActorID:     currentUserID,
			RecipientID: post.UserID,
			PostID:      &postID,
			CommentID:   &comment.ID,
			Message:     "commented on your post",
		})
	}
	h.notifyMentions(c, comment)

	return c.JSON(http.StatusCreated, comment)
}

// notifyMentions fans a mention notification out to users named in the comment
func (h *CommentHandler) notifyMentions(c echo.Context, comment *models.Comment) {
	_, mentions := extractTags(comment.Content)
	if len(mentions) == 0 {
		return
	}
	users, err := h.userRepository.GetUsersByUsernames(mentions)
	if err != nil {
		h.logger.Warn("resolving mentioned users", zap.Error(err))
		return
	}
	for _, mentioned := range users {
		h.dispatcher.Dispatch(c.Request().Context(), &models.Notification{
			Type:        models.NotificationMention,
			ActorID:     comment.UserID,
			RecipientID: mentioned.ID,
			PostID:      &comment.PostID,
			CommentID:   &comment.ID,
			Message:     "mentioned you in a comment",
		})
	}
}

// GetCommentsByPostID returns a page of top-level comments with one level of
// replies. The viewer's like status for every comment and reply on the page
// is resolved with a single batched query over the full id set.
func (h *CommentHandler) GetCommentsByPostID(c echo.Context) error {
	currentUserID := getUserIDFromContext(c)
	postID := c.Param("post_id")

	if _, err := h.postRepository.GetPostByID(c.Request().Context(), postID); err != nil {
		return httpError(err)
	}

	page, limit := pageParams(c, 20)
	offset := (page - 1) * limit

	topLevel, total, err := h.commentRepository.GetTopLevelByPostID(postID, offset, limit)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	parentIDs := make([]uint, len(topLevel))
	for i, tc := range topLevel {
		parentIDs[i] = tc.ID
	}
	replyMap, err := h.commentRepository.GetRepliesByParentIDs(parentIDs)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	// collect every comment id and author id on the page
	allIDs := make([]uint, 0, len(topLevel)*2)
	authorIDs := make([]uint, 0, len(topLevel)*2)
	seenAuthors := make(map[uint]bool)
	collect := func(cm models.Comment) {
		allIDs = append(allIDs, cm.ID)
		if !seenAuthors[cm.UserID] {
			seenAuthors[cm.UserID] = true
			authorIDs = append(authorIDs, cm.UserID)
		}
	}
	for _, tc := range topLevel {
		collect(tc)
		for _, reply := range replyMap[tc.ID] {
			collect(reply)
		}
	}

	likedMap := make(map[uint]bool)
	if currentUserID > 0 {
		likedMap, err = h.likeRepository.LikedCommentIDs(currentUserID, allIDs)
		if err != nil {
			return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
		}
	}
	userMap, err := h.userRepository.GetUsersByIDs(authorIDs)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	enrich := func(cm models.Comment) EnrichedComment {
		author := userMap[cm.UserID]
		return EnrichedComment{
			Comment: cm,
			Author:  author.ToCompact(),
			IsLiked: likedMap[cm.ID],
		}
	}

	enriched := make([]EnrichedComment, len(topLevel))
	for i, tc := range topLevel {
		ec := enrich(tc)
		for _, reply := range replyMap[tc.ID] {
			ec.Replies = append(ec.Replies, enrich(reply))
		}
		enriched[i] = ec
	}

	return c.JSON(http.StatusOK, echo.Map{
		"success": true,
		"data": echo.Map{
			"comments": enriched,
		},
		"meta": paginationMeta(page, limit, total),
	})
}

// UpdateComment updates a comment owned by the viewer and marks it edited
func (h *CommentHandler) UpdateComment(c echo.Context) error {
	currentUserID := getUserIDFromContext(c)
	if currentUserID == 0 {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}
	commentID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid comment ID")
	}

	var req models.UpdateCommentRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	comment, err := h.commentRepository.GetCommentByID(uint(commentID))
	if err != nil {
		return httpError(err)
	}
	if comment.UserID != currentUserID {
		return echo.NewHTTPError(http.StatusForbidden, "You are not authorized to update this comment")
	}

	comment.Content = req.Content
	comment.IsEdited = true

	if err := h.commentRepository.UpdateComment(comment); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, comment)
}

// DeleteComment deletes a comment owned by the viewer along with its
// replies, and lowers the post's comment counter by the number removed.
func (h *CommentHandler) DeleteComment(c echo.Context) error {
	currentUserID := getUserIDFromContext(c)
	if currentUserID == 0 {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}
	commentID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid comment ID")
	}

	comment, err := h.commentRepository.GetCommentByID(uint(commentID))
	if err != nil {
		return httpError(err)
	}
	if comment.UserID != currentUserID {
		return echo.NewHTTPError(http.StatusForbidden, "You are not authorized to delete this comment")
	}

	removed, err := h.commentRepository.DeleteCommentTree(uint(commentID))
	if err != nil {
		return httpError(err)
	}

	if comment.ParentID != nil {
		if err := h.commentRepository.DecrementRepliesCount(*comment.ParentID); err != nil {
			h.logger.Error("decrementing replies counter", zap.Uint("comment_id", *comment.ParentID), zap.Error(err))
		}
	}
	if err := h.postRepository.AddToCommentsCount(c.Request().Context(), comment.PostID, -removed); err != nil {
		h.logger.Error("adjusting post comments counter", zap.String("post_id", comment.PostID), zap.Error(err))
	}

	return c.NoContent(http.StatusNoContent)
}
