package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAppError(t *testing.T) {
	t.Run("Error returns message", func(t *testing.T) {
		err := &AppError{
			Code:    "TEST_ERROR",
			Message: "test error message",
		}
		assert.Equal(t, "test error message", err.Error())
	})

	t.Run("Error includes wrapped error", func(t *testing.T) {
		err := &AppError{
			Code:    "TEST_ERROR",
			Message: "test error message",
			Err:     errors.New("wrapped error"),
		}
		assert.Equal(t, "test error message: wrapped error", err.Error())
	})

	t.Run("Error does not repeat identical wrapped text", func(t *testing.T) {
		cause := errors.New("connection refused")
		err := Upstream(cause.Error(), cause)
		assert.Equal(t, "connection refused", err.Error())
	})

	t.Run("Unwrap returns wrapped error", func(t *testing.T) {
		wrapped := errors.New("wrapped error")
		err := Upstream("boom", wrapped)
		assert.Equal(t, wrapped, err.Unwrap())
		assert.True(t, errors.Is(err, wrapped))
	})
}

func TestNewAppError(t *testing.T) {
	wrapped := errors.New("original")
	err := NewAppError("CUSTOM_ERROR", "custom message", 418, wrapped)

	assert.Equal(t, "CUSTOM_ERROR", err.Code)
	assert.Equal(t, "custom message", err.Message)
	assert.Equal(t, 418, err.StatusCode)
	assert.Equal(t, wrapped, err.Err)
}

func TestConstructors(t *testing.T) {
	tests := []struct {
		name     string
		err      *AppError
		code     string
		status   int
		sentinel error
	}{
		{"client input", ClientInput("Invalid model specified"), CodeClientInput, http.StatusBadRequest, ErrClientInput},
		{"upstream", Upstream("Video generation failed", nil), CodeUpstream, http.StatusInternalServerError, ErrUpstream},
		{"timeout", Timeout("Video generation timed out"), CodeTimeout, http.StatusGatewayTimeout, ErrTimeout},
		{"internal", Internal("oops", nil), CodeInternal, http.StatusInternalServerError, ErrInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.code, tt.err.Code)
			assert.Equal(t, tt.status, tt.err.StatusCode)
			assert.True(t, errors.Is(tt.err, tt.sentinel))
			assert.Equal(t, tt.status, GetStatusCode(fmt.Errorf("wrapped: %w", tt.err)))
		})
	}
}

func TestTimeoutDefaultMessage(t *testing.T) {
	assert.Equal(t, "request timeout", Timeout("").Message)
}

func TestIs_MatchesByCode(t *testing.T) {
	a := Upstream("one", nil)
	b := Upstream("two", nil)
	assert.True(t, errors.Is(a, b))
	assert.False(t, errors.Is(a, Timeout("")))
	assert.False(t, errors.Is(a, ErrTimeout))
}

func TestGetStatusCode(t *testing.T) {
	assert.Equal(t, http.StatusBadRequest, GetStatusCode(fmt.Errorf("x: %w", ErrClientInput)))
	assert.Equal(t, http.StatusGatewayTimeout, GetStatusCode(ErrTimeout))
	assert.Equal(t, http.StatusInternalServerError, GetStatusCode(errors.New("plain")))
}

func TestMessage(t *testing.T) {
	assert.Equal(t, "No task ID returned from video generation API",
		Message(fmt.Errorf("submit: %w", Upstream("No task ID returned from video generation API", nil))))
	assert.Equal(t, "plain", Message(errors.New("plain")))
}

func TestToResponse(t *testing.T) {
	resp := ClientInput("Invalid model specified").ToResponse()
	assert.Equal(t, ErrorResponse{Detail: "Invalid model specified"}, resp)
}

func TestHelpers(t *testing.T) {
	assert.True(t, IsTimeout(Timeout("")))
	assert.False(t, IsTimeout(Upstream("x", nil)))
}
