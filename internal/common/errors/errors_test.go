package errors

import (
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStandardError_IsAndUnwrap(t *testing.T) {
	cause := stderrors.New("dial tcp: connection refused")
	err := fmt.Errorf("get or create: %w", NewStoreUnavailableError("getOrCreate", cause))

	assert.True(t, stderrors.Is(err, ErrStoreUnavailable))
	assert.False(t, stderrors.Is(err, ErrGenerationUnavailable))
	assert.True(t, stderrors.Is(err, cause))

	code, ok := CodeOf(err)
	require.True(t, ok)
	assert.Equal(t, ErrCodeStoreUnavailable, code)

	_, ok = CodeOf(stderrors.New("plain"))
	assert.False(t, ok)
}

func TestConvertToBPMNError(t *testing.T) {
	tests := []struct {
		name        string
		err         *StandardError
		wantCode    string
		wantRetries int
	}{
		{
			name:        "retryable store failure",
			err:         NewStoreUnavailableError("merge", stderrors.New("timeout")),
			wantCode:    "STORE_UNAVAILABLE",
			wantRetries: 3,
		},
		{
			name:        "photo analysis retries twice",
			err:         NewPhotoAnalysisFailedError(stderrors.New("503")),
			wantCode:    "PHOTO_ANALYSIS_FAILED",
			wantRetries: 2,
		},
		{
			name:        "non retryable session lookup",
			err:         NewSessionNotFoundError("abc"),
			wantCode:    "SESSION_NOT_FOUND",
			wantRetries: 0,
		},
		{
			name:        "unmapped code passes through",
			err:         NewBusinessRuleError("bad", "details"),
			wantCode:    "BUSINESS_RULE_VIOLATION",
			wantRetries: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bpmn := ConvertToBPMNError(tt.err)
			assert.Equal(t, tt.wantCode, bpmn.Code)
			assert.Equal(t, tt.wantRetries, bpmn.Retries)

			vars := bpmn.ToErrorVariables()
			assert.Equal(t, tt.wantCode, vars["errorCode"])
			assert.Equal(t, string(tt.err.Code), vars["originalErrorCode"])
		})
	}
}

func TestNormalize(t *testing.T) {
	wrapped := fmt.Errorf("ctx: %w", NewIndexingFailedError("claims", stderrors.New("500")))
	assert.Equal(t, ErrCodeIndexingFailed, Normalize(wrapped).Code)

	plain := Normalize(stderrors.New("oops"))
	assert.Equal(t, ErrCodeInternal, plain.Code)
	assert.Equal(t, "oops", plain.Details)
	assert.False(t, plain.Retryable)
}

func TestGetErrorCategory(t *testing.T) {
	assert.Equal(t, "DATABASE", GetErrorCategory(ErrCodeStoreUnavailable))
	assert.Equal(t, "SEARCH", GetErrorCategory(ErrCodeIndexingFailed))
	assert.Equal(t, "AI", GetErrorCategory(ErrCodeGenerationUnavailable))
	assert.Equal(t, "VALIDATION", GetErrorCategory(ErrCodeMalformedEvent))
	assert.Equal(t, "NOTIFICATION", GetErrorCategory(ErrCodeNotificationSendFailed))
	assert.Equal(t, "OTHER", GetErrorCategory(ErrCodeInternal))
}
