package clierr

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassifyError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"nil", nil, ""},
		{"validation", Validation(errors.New("name is required")), TypeValidation},
		{"auth", errors.New(`pq: password authentication failed for user "tdg"`), TypeAuth},
		{"missing database", errors.New(`pq: database "shop" does not exist`), TypeNotFound},
		{"network", errors.New("dial tcp 127.0.0.1:5432: connect: connection refused"), TypeNetwork},
		{"wrapped network", fmt.Errorf("failed to ping database: %w", errors.New("i/o timeout")), TypeNetwork},
		{"other", errors.New("boom"), TypeInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ClassifyError(tt.err))
		})
	}
}

func TestIsPermanent(t *testing.T) {
	assert.True(t, IsPermanent(errors.New("password authentication failed")))
	assert.True(t, IsPermanent(Validation(errors.New("bad port"))))
	assert.False(t, IsPermanent(errors.New("connection refused")))
	assert.False(t, IsPermanent(nil))
}

func TestPretty(t *testing.T) {
	assert.Equal(t, "", Pretty(nil))
	assert.Equal(t, "Invalid input: port must be a number", Pretty(Validation(errors.New("port must be a number"))))
	assert.True(t, strings.HasPrefix(Pretty(errors.New("connection refused")), "Connection error:"))
	assert.Contains(t, Pretty(errors.New("password authentication failed")), "Hint:")
	assert.Equal(t, "Error: boom", Pretty(errors.New("boom")))
}

func TestWrapWithHint(t *testing.T) {
	assert.Nil(t, WrapWithHint(nil, "hint"))

	base := errors.New("base")
	wrapped := WrapWithHint(base, "try again")
	assert.ErrorIs(t, wrapped, base)
	assert.Contains(t, wrapped.Error(), "Hint: try again")
}
