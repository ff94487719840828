package errors

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCloneKeepsIdentity(t *testing.T) {
	clone := Clone(ErrNotFound, "timetable has not been published")
	assert.Equal(t, "timetable has not been published", clone.Message)
	assert.Equal(t, "resource not found", ErrNotFound.Message)
	assert.ErrorIs(t, clone, ErrNotFound)
	assert.NotErrorIs(t, clone, ErrConflict)
	assert.ErrorIs(t, fmt.Errorf("publish: %w", clone), ErrNotFound)
}

func TestFromError(t *testing.T) {
	assert.Nil(t, FromError(nil))

	wrapped := Wrap(errors.New("db down"), ErrPersistence.Code, ErrPersistence.Status, "failed to save")
	assert.Same(t, wrapped, FromError(fmt.Errorf("save: %w", wrapped)))
	assert.Equal(t, "failed to save: db down", wrapped.Error())

	timeout := FromError(fmt.Errorf("query: %w", context.DeadlineExceeded))
	assert.Equal(t, http.StatusGatewayTimeout, timeout.Status)

	internal := FromError(errors.New("boom"))
	assert.Equal(t, ErrInternal.Code, internal.Code)
	assert.Equal(t, http.StatusInternalServerError, internal.Status)
}
