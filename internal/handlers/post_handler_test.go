package handlers

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractTags(t *testing.T) {
	hashtags, mentions := extractTags("New drop with @dj_nova and @luna! #NewMusic #live #newmusic")

	assert.Equal(t, []string{"newmusic", "live"}, hashtags)
	assert.Equal(t, []string{"dj_nova", "luna"}, mentions)
}

func TestExtractTagsEmptyContent(t *testing.T) {
	hashtags, mentions := extractTags("no tags here")
	assert.Empty(t, hashtags)
	assert.Empty(t, mentions)
}

func TestPaginationMeta(t *testing.T) {
	meta := paginationMeta(2, 10, 25)
	assert.Equal(t, 2, meta["currentPage"])
	assert.Equal(t, 3, meta["totalPages"])
	assert.Equal(t, true, meta["hasNextPage"])
	assert.Equal(t, true, meta["hasPreviousPage"])

	meta = paginationMeta(1, 10, 5)
	assert.Equal(t, 1, meta["totalPages"])
	assert.Equal(t, false, meta["hasNextPage"])
	assert.Equal(t, false, meta["hasPreviousPage"])
}
