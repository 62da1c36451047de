package apperrors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindOfUnwrapsNestedErrors(t *testing.T) {
	base := NotFound("post")
	wrapped := fmt.Errorf("loading feed: %w", base)

	assert.Equal(t, KindNotFound, KindOf(wrapped))
	assert.Equal(t, KindInternal, KindOf(errors.New("plain")))
	assert.Equal(t, KindInternal, KindOf(nil))
}

func TestWrapKeepsCause(t *testing.T) {
	cause := errors.New("connection refused")
	err := Wrap(KindInternal, "saving notification", cause)

	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "saving notification")
	assert.Contains(t, err.Error(), "connection refused")
}

func TestHTTPStatusMapping(t *testing.T) {
	assert.Equal(t, http.StatusNotFound, HTTPStatus(NotFound("user")))
	assert.Equal(t, http.StatusConflict, HTTPStatus(Conflict("already liked")))
	assert.Equal(t, http.StatusBadRequest, HTTPStatus(Validation("bad id")))
	assert.Equal(t, http.StatusUnauthorized, HTTPStatus(Unauthorized("no token")))
	assert.Equal(t, http.StatusForbidden, HTTPStatus(New(KindForbidden, "not yours")))
	assert.Equal(t, http.StatusInternalServerError, HTTPStatus(errors.New("boom")))
}
