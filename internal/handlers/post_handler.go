package handlers

import (
	"net/http"
	"regexp"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/jestfly/community-backend/internal/models"
	"github.com/jestfly/community-backend/internal/realtime"
	"github.com/jestfly/community-backend/internal/repositories"
)

var (
	hashtagPattern = regexp.MustCompile(`#(\w+)`)
	mentionPattern = regexp.MustCompile(`@(\w+)`)
)

// extractTags pulls lowercased hashtags and mentioned usernames out of post content
func extractTags(content string) (hashtags, mentions []string) {
	seen := make(map[string]bool)
	for _, m := range hashtagPattern.FindAllStringSubmatch(content, -1) {
		tag := strings.ToLower(m[1])
		if !seen["#"+tag] {
			seen["#"+tag] = true
			hashtags = append(hashtags, tag)
		}
	}
	for _, m := range mentionPattern.FindAllStringSubmatch(content, -1) {
		if !seen["@"+m[1]] {
			seen["@"+m[1]] = true
			mentions = append(mentions, m[1])
		}
	}
	return hashtags, mentions
}

// PostHandler handles HTTP requests related to posts
type PostHandler struct {
	postRepository repositories.PostRepository
	userRepository repositories.UserRepository
	dispatcher     *NotificationDispatcher
	notifier       *realtime.Notifier
	logger         *zap.Logger
}

// NewPostHandler creates a new PostHandler
func NewPostHandler(
	postRepo repositories.PostRepository,
	userRepo repositories.UserRepository,
	dispatcher *NotificationDispatcher,
	notifier *realtime.Notifier,
	logger *zap.Logger,
) *PostHandler {
	return &PostHandler{
		postRepository: postRepo,
		userRepository: userRepo,
		dispatcher:     dispatcher,
		notifier:       notifier,
		logger:         logger,
	}
}

// RegisterPostRoutes registers post-related routes
func (h *PostHandler) RegisterPostRoutes(g *echo.Group) {
	g.POST("/posts", h.CreatePost)
	g.GET("/posts/:id", h.GetPost)
	g.PUT("/posts/:id", h.UpdatePost)
	g.DELETE("/posts/:id", h.DeletePost)
	g.PUT("/posts/:id/pin", h.PinPost)
	g.DELETE("/posts/:id/pin", h.UnpinPost)
	g.POST("/posts/:id/views", h.RecordView)
	g.POST("/posts/:id/shares", h.RecordShare)
	g.GET("/users/:id/posts", h.GetPostsByUser)
}

// CreatePost creates a new post, extracts hashtags and mentions, notifies
// mentioned users, and announces the post on the realtime bridge when it is
// immediately published.
func (h *PostHandler) CreatePost(c echo.Context) error {
	currentUserID := getUserIDFromContext(c)
	if currentUserID == 0 {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	var req models.CreatePostRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	hashtags, mentions := extractTags(req.Content)

	visibility := req.Visibility
	if visibility == "" {
		visibility = models.VisibilityPublic
	}
	published := true
	if req.Publish != nil {
		published = *req.Publish
	}

	post := &models.Post{
		UserID:           currentUserID,
		Content:          req.Content,
		MediaURLs:        req.MediaURLs,
		MediaType:        req.MediaType,
		Visibility:       visibility,
		Hashtags:         hashtags,
		Mentions:         mentions,
		ModerationStatus: models.ModerationApproved,
		IsPublished:      published,
	}
	if err := h.postRepository.CreatePost(c.Request().Context(), post); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	h.notifyMentions(c, post)
	h.announce(c, post)

	return c.JSON(http.StatusCreated, post)
}

// notifyMentions fans a mention notification out to each mentioned user
func (h *PostHandler) notifyMentions(c echo.Context, post *models.Post) {
	if len(post.Mentions) == 0 {
		return
	}
	users, err := h.userRepository.GetUsersByUsernames(post.Mentions)
	if err != nil {
		h.logger.Warn("resolving mentioned users", zap.Error(err))
		return
	}
	postID := post.ID.Hex()
	for _, mentioned := range users {
		h.dispatcher.Dispatch(c.Request().Context(), &models.Notification{
			Type:        models.NotificationMention,
			ActorID:     post.UserID,
			RecipientID: mentioned.ID,
			PostID:      &postID,
			Message:     "mentioned you in a post",
		})
	}
}

// announce publishes a post.created event for feeds. Only published,
// approved, public posts are broadcast: the bridge re-checks the flags the
// feed query would apply rather than trusting the write path.
func (h *PostHandler) announce(c echo.Context, post *models.Post) {
	if !post.IsPublished || post.ModerationStatus != models.ModerationApproved || post.Visibility != models.VisibilityPublic {
		return
	}
	event, err := realtime.NewEvent(realtime.EventPostCreated, post)
	if err != nil {
		h.logger.Error("encoding post event", zap.Error(err))
		return
	}
	if err := h.notifier.PublishFeed(c.Request().Context(), event); err != nil {
		h.logger.Warn("publishing post event", zap.Error(err))
	}
}

// GetPost retrieves a single post, subject to visibility
func (h *PostHandler) GetPost(c echo.Context) error {
	currentUserID := getUserIDFromContext(c)

	post, err := h.postRepository.GetPostByID(c.Request().Context(), c.Param("id"))
	if err != nil {
		return httpError(err)
	}
	if !post.VisibleTo(currentUserID, false) && post.Visibility == models.VisibilityPrivate {
		return echo.NewHTTPError(http.StatusNotFound, "post not found")
	}
	return c.JSON(http.StatusOK, post)
}

// UpdatePost updates an existing post owned by the viewer
func (h *PostHandler) UpdatePost(c echo.Context) error {
	currentUserID := getUserIDFromContext(c)
	if currentUserID == 0 {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}
	postID := c.Param("id")

	var req models.UpdatePostRequest
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
	if post.UserID != currentUserID {
		return echo.NewHTTPError(http.StatusForbidden, "You are not authorized to update this post")
	}

	if req.Content != "" {
		post.Content = req.Content
		post.Hashtags, post.Mentions = extractTags(req.Content)
	}
	if req.MediaURLs != nil {
		post.MediaURLs = req.MediaURLs
	}
	if req.MediaType != "" {
		post.MediaType = req.MediaType
	}
	if req.Visibility != "" {
		post.Visibility = req.Visibility
	}

	if err := h.postRepository.UpdatePost(c.Request().Context(), postID, post); err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, post)
}

// DeletePost deletes a post owned by the viewer
func (h *PostHandler) DeletePost(c echo.Context) error {
	currentUserID := getUserIDFromContext(c)
	if currentUserID == 0 {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}
	postID := c.Param("id")

	post, err := h.postRepository.GetPostByID(c.Request().Context(), postID)
	if err != nil {
		return httpError(err)
	}
	if post.UserID != currentUserID {
		return echo.NewHTTPError(http.StatusForbidden, "You are not authorized to delete this post")
	}

	if err := h.postRepository.DeletePost(c.Request().Context(), postID); err != nil {
		return httpError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *PostHandler) setPinned(c echo.Context, pinned bool) error {
	currentUserID := getUserIDFromContext(c)
	if currentUserID == 0 {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}
	postID := c.Param("id")

	post, err := h.postRepository.GetPostByID(c.Request().Context(), postID)
	if err != nil {
		return httpError(err)
	}
	if post.UserID != currentUserID {
		return echo.NewHTTPError(http.StatusForbidden, "You can only pin your own posts")
	}

	if err := h.postRepository.SetPinned(c.Request().Context(), postID, pinned); err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "data": echo.Map{"pinned": pinned}})
}

// PinPost pins a post to the viewer's profile
func (h *PostHandler) PinPost(c echo.Context) error {
	return h.setPinned(c, true)
}

// UnpinPost removes the pin flag
func (h *PostHandler) UnpinPost(c echo.Context) error {
	return h.setPinned(c, false)
}

// RecordView bumps the views counter
func (h *PostHandler) RecordView(c echo.Context) error {
	if err := h.postRepository.IncrementViewsCount(c.Request().Context(), c.Param("id")); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.NoContent(http.StatusNoContent)
}

// RecordShare bumps the shares counter
func (h *PostHandler) RecordShare(c echo.Context) error {
	if err := h.postRepository.IncrementSharesCount(c.Request().Context(), c.Param("id")); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.NoContent(http.StatusNoContent)
}

// GetPostsByUser lists a user's posts, newest first
func (h *PostHandler) GetPostsByUser(c echo.Context) error {
	userID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid user ID")
	}

	page, limit := pageParams(c, 10)
	skip := int64((page - 1) * limit)

	posts, err := h.postRepository.GetPostsByUserID(c.Request().Context(), uint(userID), skip, int64(limit))
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "data": echo.Map{"posts": posts}})
}
