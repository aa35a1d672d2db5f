package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConstructorsCarryCodeAndRetryable(t *testing.T) {
	assert.Equal(t, ErrCodeValidationFailed, NewValidationError("bad input").Code)
	assert.False(t, NewValidationError("bad input").Retryable)

	notFound := NewSessionNotFoundError("sess-1")
	assert.Equal(t, ErrCodeSessionNotFound, notFound.Code)
	assert.Contains(t, notFound.Details, "sess-1")

	assert.True(t, NewPersistenceFailedError(errors.New("x")).Retryable)
	// Model failures are not retried; the caller resubmits the prompt.
	assert.False(t, NewGenerationTimeoutError().Retryable)
	assert.False(t, NewGenerationFailedError(errors.New("x")).Retryable)
}

func TestAsStandard(t *testing.T) {
	se := NewGenerationFailedError(errors.New("boom"))

	assert.Equal(t, se, AsStandard(se))
	assert.Equal(t, se, AsStandard(fmt.Errorf("wrapped: %w", se)))
	assert.Nil(t, AsStandard(errors.New("plain")))
	assert.Nil(t, AsStandard(nil))
}

func TestCode(t *testing.T) {
	assert.Equal(t, ErrCodeValidationFailed, Code(NewValidationError("x")))
	assert.Equal(t, ErrorCode(""), Code(errors.New("plain")))
}

func TestHTTPStatus(t *testing.T) {
	assert.Equal(t, http.StatusBadRequest, HTTPStatus(NewValidationError("x")))
	assert.Equal(t, http.StatusNotFound, HTTPStatus(NewSessionNotFoundError("s")))
	assert.Equal(t, http.StatusBadGateway, HTTPStatus(NewGenerationFailedError(errors.New("x"))))
	assert.Equal(t, http.StatusBadGateway, HTTPStatus(NewGenerationTimeoutError()))
	assert.Equal(t, http.StatusInternalServerError, HTTPStatus(NewPersistenceFailedError(errors.New("x"))))
	assert.Equal(t, http.StatusInternalServerError, HTTPStatus(errors.New("plain")))
}
