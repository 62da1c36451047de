package handlers

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/jestfly/community-backend/internal/cache"
	"github.com/jestfly/community-backend/internal/models"
	"github.com/jestfly/community-backend/internal/repositories"
)

// capturingPostRepo records the filter GetFeed was called with
type capturingPostRepo struct {
	repositories.PostRepository
	gotFilter repositories.FeedFilter
}

func (s *capturingPostRepo) GetFeed(ctx context.Context, filter repositories.FeedFilter, skip, limit int64) ([]models.Post, int64, error) {
	s.gotFilter = filter
	return nil, 0, nil
}

type stubUserRepo struct {
	repositories.UserRepository
}

func (s *stubUserRepo) GetUsersByIDs(ids []uint) (map[uint]models.User, error) {
	return map[uint]models.User{}, nil
}

type stubLikeRepo struct {
	repositories.LikeRepository
}

func (s *stubLikeRepo) LikedPostIDs(userID uint, postIDs []string) (map[string]bool, error) {
	return map[string]bool{}, nil
}

type stubFollowSource struct {
	repositories.FollowRepository
	ids []uint
	err error
}

func (s *stubFollowSource) GetFollowingIDs(userID uint) ([]uint, error) {
	return s.ids, s.err
}

func newFeedHandlerForTest(follows *stubFollowSource) (*FeedHandler, *capturingPostRepo) {
	posts := &capturingPostRepo{}
	followingCache := cache.NewFollowingCache(nil, follows, time.Minute)
	h := NewFeedHandler(posts, &stubUserRepo{}, &stubLikeRepo{}, followingCache, zap.NewNop())
	return h, posts
}

func newFeedContext(target string, userID uint) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if userID > 0 {
		c.Set("user", &models.JwtCustomClaims{UserID: userID})
	}
	return c, rec
}

func TestFeedHashtagFilterIsLowercased(t *testing.T) {
	h, posts := newFeedHandlerForTest(&stubFollowSource{})
	c, rec := newFeedContext("/api/v1/feed?hashtag=NewMusic", 0)

	require.NoError(t, h.GetFeed(c))
	assert.Equal(t, http.StatusOK, rec.Code)
	// hashtags are stored lowercased, so a mixed-case query must still match
	assert.Equal(t, "newmusic", posts.gotFilter.Hashtag)
}

func TestFollowingFeedFailsWhenFollowSetUnavailable(t *testing.T) {
	h, _ := newFeedHandlerForTest(&stubFollowSource{err: errors.New("connection refused")})
	c, _ := newFeedContext("/api/v1/feed?following=true", 7)

	err := h.GetFeed(c)
	require.Error(t, err)
	var httpErr *echo.HTTPError
	require.ErrorAs(t, err, &httpErr)
	// an empty 200 would silently hide every followed author
	assert.Equal(t, http.StatusInternalServerError, httpErr.Code)
}

func TestGeneralFeedToleratesFollowSetFailure(t *testing.T) {
	h, posts := newFeedHandlerForTest(&stubFollowSource{err: errors.New("connection refused")})
	c, rec := newFeedContext("/api/v1/feed", 7)

	require.NoError(t, h.GetFeed(c))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, posts.gotFilter.FollowingIDs)
}

func TestFollowingFeedRequiresAuth(t *testing.T) {
	h, _ := newFeedHandlerForTest(&stubFollowSource{})
	c, _ := newFeedContext("/api/v1/feed?following=true", 0)

	err := h.GetFeed(c)
	require.Error(t, err)
	var httpErr *echo.HTTPError
	require.ErrorAs(t, err, &httpErr)
	assert.Equal(t, http.StatusUnauthorized, httpErr.Code)
}

func TestFollowingFeedCarriesFollowedIDs(t *testing.T) {
	h, posts := newFeedHandlerForTest(&stubFollowSource{ids: []uint{2, 3}})
	c, rec := newFeedContext("/api/v1/feed?following=true", 7)

	require.NoError(t, h.GetFeed(c))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, posts.gotFilter.FollowingOnly)
	assert.Equal(t, []uint{2, 3}, posts.gotFilter.FollowingIDs)
}
