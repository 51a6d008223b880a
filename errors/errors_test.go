package errors

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	err := New("test error")
	require.NotNil(t, err)
	assert.Equal(t, "test error", err.Error())
}

func TestWrap(t *testing.T) {
	original := New("original")
	wrapped := Wrap(original, "wrapped")

	assert.Contains(t, wrapped.Error(), "wrapped")
	assert.Contains(t, wrapped.Error(), "original")
	assert.True(t, Is(wrapped, original))
}

func TestMarkPersistence(t *testing.T) {
	cause := New("disk full")
	err := MarkPersistence(cause, "insert assertion")

	require.Error(t, err)
	assert.True(t, IsPersistenceError(err))
	assert.True(t, Is(err, cause))
	assert.Contains(t, err.Error(), "insert assertion")
	assert.Contains(t, err.Error(), "disk full")

	assert.NoError(t, MarkPersistence(nil, "ignored"))
}

func TestMarkSurvivesWrapping(t *testing.T) {
	err := Wrap(MarkPersistence(New("locked"), "commit"), "handle message 42")
	assert.True(t, IsPersistenceError(err))
	assert.False(t, IsHandlingError(err))

	err = Mark(err, ErrHandling)
	assert.True(t, IsHandlingError(err))
	assert.True(t, IsPersistenceError(err))
}

func TestWithDetail(t *testing.T) {
	err := WithDetail(New("boom"), "Message ID: 42")
	details := GetAllDetails(err)
	require.Len(t, details, 1)
	assert.Equal(t, "Message ID: 42", details[0])
}

func TestNotFound(t *testing.T) {
	assert.True(t, IsNotFoundError(Wrap(ErrNotFound, "message 7")))
	assert.False(t, IsNotFoundError(nil))
	assert.False(t, IsNotFoundError(New("other")))
}

func TestNewInvalidRequestError(t *testing.T) {
	err := NewInvalidRequestError("capacity must be positive, got %d", 0)
	assert.True(t, Is(err, ErrInvalidRequest))
	assert.Equal(t, "capacity must be positive, got 0", err.Error())
}
