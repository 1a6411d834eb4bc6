package errors

import (
	"errors"
	"testing"
)

func TestAppError_Error(t *testing.T) {
	tests := []struct {
		name     string
		err      *AppError
		expected string
	}{
		{
			name:     "without wrapped error",
			err:      NewError(20001, "room not found"),
			expected: "[20001] room not found",
		},
		{
			name:     "with wrapped error",
			err:      NewError(20001, "room not found").Wrap(errors.New("missing")),
			expected: "[20001] room not found: missing",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.expected {
				t.Errorf("Expected '%s', got '%s'", tt.expected, got)
			}
		})
	}
}

func TestAppError_WrapAndUnwrap(t *testing.T) {
	originalErr := errors.New("original error")
	appErr := ErrRoomFull.Wrap(originalErr)

	if appErr.Code != CodeRoomFull || appErr.Message != ErrRoomFull.Message {
		t.Errorf("Wrap should keep code and message, got %+v", appErr)
	}
	if errors.Unwrap(appErr) != originalErr {
		t.Error("Expected unwrapped error to be the original error")
	}
	if ErrRoomFull.Err != nil {
		t.Error("Wrap must not modify the predefined error")
	}
}

func TestAppError_WithReason(t *testing.T) {
	err := ErrIllegalAction.WithReason("NOT_YOUR_TURN", "还没轮到你")

	if err.Code != CodeIllegalAction || err.Reason != "NOT_YOUR_TURN" || err.Message != "还没轮到你" {
		t.Errorf("unexpected error: %+v", err)
	}
	if ErrIllegalAction.Reason != "" {
		t.Error("WithReason must not modify the predefined error")
	}
	if got := GetReason(err.Wrap(errors.New("x"))); got != "NOT_YOUR_TURN" {
		t.Errorf("Expected reason to survive Wrap, got '%s'", got)
	}
}

func TestIs(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		target   *AppError
		expected bool
	}{
		{"same error", ErrRoomNotFound, ErrRoomNotFound, true},
		{"wrapped same error", ErrRoomNotFound.Wrap(errors.New("wrapped")), ErrRoomNotFound, true},
		{"different error", ErrRoomFull, ErrRoomNotFound, false},
		{"non-app error", errors.New("standard error"), ErrRoomNotFound, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Is(tt.err, tt.target); got != tt.expected {
				t.Errorf("Expected %v, got %v", tt.expected, got)
			}
		})
	}
}

func TestGetCodeAndMessage(t *testing.T) {
	if got := GetCode(ErrNotRoomHost); got != CodeNotRoomHost {
		t.Errorf("Expected %d, got %d", CodeNotRoomHost, got)
	}
	if got := GetCode(errors.New("standard error")); got != CodeServerError {
		t.Errorf("Expected %d, got %d", CodeServerError, got)
	}
	if got := GetMessage(ErrRankTooLow); got != "段位不足" {
		t.Errorf("Expected '段位不足', got '%s'", got)
	}
	if got := GetMessage(errors.New("standard error")); got != "服务器内部错误" {
		t.Errorf("Expected '服务器内部错误', got '%s'", got)
	}
}
