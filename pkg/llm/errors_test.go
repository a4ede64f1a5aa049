package llm

import (
	"errors"
	"testing"
)

func TestClassifyError(t *testing.T) {
	tests := []struct {
		name          string
		err           error
		wantType      ErrorType
		wantRetryable bool
	}{
		{"nil", nil, "", false},
		{"401 status", errors.New("status code 401"), ErrorTypeAuth, false},
		{"invalid api key", errors.New("Invalid API key provided"), ErrorTypeAuth, false},
		{"model missing", errors.New("model gpt-99 does not exist"), ErrorTypeModel, false},
		{"rate limit", errors.New("429 rate limit exceeded"), ErrorTypeRateLimit, true},
		{"timeout", errors.New("context deadline exceeded"), ErrorTypeEndpoint, true},
		{"connection refused", errors.New("dial tcp: connection refused"), ErrorTypeEndpoint, true},
		{"server error", errors.New("unexpected status 503"), ErrorTypeEndpoint, true},
		{"unknown", errors.New("something odd"), ErrorTypeUnknown, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ClassifyError(tt.err)
			if tt.err == nil {
				if got != nil {
					t.Errorf("ClassifyError(nil) = %v, want nil", got)
				}
				return
			}
			if got.Type != tt.wantType {
				t.Errorf("type = %q, want %q", got.Type, tt.wantType)
			}
			if got.Retryable != tt.wantRetryable {
				t.Errorf("retryable = %v, want %v", got.Retryable, tt.wantRetryable)
			}
			if !errors.Is(got, tt.err) {
				t.Error("classified error must wrap the cause")
			}
		})
	}
}

func TestClassifyError_PassesThroughStructured(t *testing.T) {
	original := NewError(ErrorTypeRateLimit, "rate limited", true, errors.New("429"))

	got := ClassifyError(original)
	if got != original {
		t.Error("already-classified errors must pass through unchanged")
	}
}

func TestGetErrorType(t *testing.T) {
	err := NewError(ErrorTypeAuth, "authentication failed", false, nil)
	if got := GetErrorType(err); got != ErrorTypeAuth {
		t.Errorf("GetErrorType = %q, want auth", got)
	}

	if got := GetErrorType(errors.New("plain")); got != ErrorTypeUnknown {
		t.Errorf("GetErrorType = %q, want unknown", got)
	}
}
