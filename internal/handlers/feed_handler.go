package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/jestfly/community-backend/internal/cache"
	"github.com/jestfly/community-backend/internal/models"
	"github.com/jestfly/community-backend/internal/repositories"
)

// FeedHandler handles feed-related HTTP requests
type FeedHandler struct {
	postRepository repositories.PostRepository
	userRepository repositories.UserRepository
	likeRepository repositories.LikeRepository
	followingCache *cache.FollowingCache
	logger         *zap.Logger
}

// NewFeedHandler creates a new FeedHandler
func NewFeedHandler(
	postRepo repositories.PostRepository,
	userRepo repositories.UserRepository,
	likeRepo repositories.LikeRepository,
	followingCache *cache.FollowingCache,
	logger *zap.Logger,
) *FeedHandler {
	return &FeedHandler{
		postRepository: postRepo,
		userRepository: userRepo,
		likeRepository: likeRepo,
		followingCache: followingCache,
		logger:         logger,
	}
}

// RegisterFeedRoutes registers feed-related routes
func (h *FeedHandler) RegisterFeedRoutes(g *echo.Group) {
	g.GET("/feed", h.GetFeed)
}

// EnrichedPost is a post with author info and the viewer's like flag
type EnrichedPost struct {
	models.Post
	Author  models.UserCompact `json:"author"`
	IsLiked bool               `json:"is_liked"`
}

// GetFeed returns a page of feed posts, newest first. Filters: author
// (?author=id), hashtag (?hashtag=tag), following-only (?following=true).
// The viewer's like status is resolved with a single batched query over the
// page's post ids.
func (h *FeedHandler) GetFeed(c echo.Context) error {
	currentUserID := getUserIDFromContext(c)

	page, limit := pageParams(c, 10)
	skip := int64((page - 1) * limit)

	filter := repositories.FeedFilter{ViewerID: currentUserID}
	if author, err := strconv.ParseUint(c.QueryParam("author"), 10, 32); err == nil {
		filter.AuthorID = uint(author)
	}
	// hashtags are stored lowercased, so the filter must match
	filter.Hashtag = strings.ToLower(c.QueryParam("hashtag"))
	filter.FollowingOnly = c.QueryParam("following") == "true"

	if currentUserID > 0 {
		ids, err := h.followingCache.FollowingIDs(c.Request().Context(), currentUserID)
		if err != nil {
			// the general feed only loses followers-only posts without the
			// set; a following-only feed would silently come back empty
			if filter.FollowingOnly {
				return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
			}
			h.logger.Warn("loading following ids", zap.Error(err))
		}
		filter.FollowingIDs = ids
	} else if filter.FollowingOnly {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	posts, total, err := h.postRepository.GetFeed(c.Request().Context(), filter, skip, int64(limit))
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	// Collect author ids and post ids for batched enrichment
	authorIDs := make([]uint, 0, len(posts))
	seenAuthors := make(map[uint]bool, len(posts))
	postIDs := make([]string, len(posts))
	for i, p := range posts {
		postIDs[i] = p.ID.Hex()
		if !seenAuthors[p.UserID] {
			seenAuthors[p.UserID] = true
			authorIDs = append(authorIDs, p.UserID)
		}
	}

	userMap, err := h.userRepository.GetUsersByIDs(authorIDs)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	likedMap := make(map[string]bool)
	if currentUserID > 0 {
		likedMap, err = h.likeRepository.LikedPostIDs(currentUserID, postIDs)
		if err != nil {
			return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
		}
	}

	enrichedPosts := make([]EnrichedPost, len(posts))
	for i, p := range posts {
		author := userMap[p.UserID]
		enrichedPosts[i] = EnrichedPost{
			Post:    p,
			Author:  author.ToCompact(),
			IsLiked: likedMap[postIDs[i]],
		}
	}

	return c.JSON(http.StatusOK, echo.Map{
		"success": true,
		"data": echo.Map{
			"posts": enrichedPosts,
		},
		"meta": paginationMeta(page, limit, total),
	})
}
