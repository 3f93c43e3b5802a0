package errors

import (
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTypeForStatus(t *testing.T) {
	tests := []struct {
		code int
		want ErrorType
	}{
		{400, ErrorTypeParsing},
		{401, ErrorTypeAuth},
		{403, ErrorTypeAuth},
		{404, ErrorTypeNotFound},
		{429, ErrorTypeRateLimit},
		{500, ErrorTypeServerError},
		{503, ErrorTypeServerError},
		{418, ErrorTypeUnknown},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprint(tt.code), func(t *testing.T) {
			assert.Equal(t, tt.want, TypeForStatus(tt.code))
		})
	}
}

func TestErrorMessage(t *testing.T) {
	assert.Equal(t, "auth error (code 401): invalid identifier or password",
		FromStatus(401, "invalid identifier or password").Error())

	cause := stderrors.New("dial tcp: connection refused")
	wrapped := Wrap(ErrorTypeNetwork, "request failed", cause)
	assert.Equal(t, "network error: request failed: dial tcp: connection refused", wrapped.Error())
	assert.ErrorIs(t, wrapped, cause)
}

func TestIs(t *testing.T) {
	err := fmt.Errorf("loading template: %w", New(ErrorTypeConfig, "template missing"))

	assert.True(t, Is(err, ErrorTypeConfig))
	assert.False(t, Is(err, ErrorTypeNetwork))
	assert.False(t, Is(stderrors.New("plain"), ErrorTypeConfig))
	assert.False(t, Is(nil, ErrorTypeConfig))
}
