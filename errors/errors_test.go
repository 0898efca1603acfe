package errors

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWrapKeepsCause(t *testing.T) {
	original := New("original")
	wrapped := Wrapf(original, "resolve handle %d", 7)

	assert.Contains(t, wrapped.Error(), "resolve handle 7")
	assert.Contains(t, wrapped.Error(), "original")
	assert.True(t, Is(wrapped, original))
}

func TestWithHint(t *testing.T) {
	err := WithHint(New("no such table: atoms"), "run 'atomspace db migrate' first")

	hints := GetAllHints(err)
	require.Len(t, hints, 1)
	assert.Equal(t, "run 'atomspace db migrate' first", hints[0])
}

func TestSentinels(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		notFound   bool
		invalid    bool
		conflict   bool
		wantInText string
	}{
		{
			name:       "not found",
			err:        NewNotFoundError("handle %d", 42),
			notFound:   true,
			wantInText: "handle 42",
		},
		{
			name:       "invalid request",
			err:        NewInvalidRequestError("unknown type %q", "FooLink"),
			invalid:    true,
			wantInText: `unknown type "FooLink"`,
		},
		{
			name:       "conflict",
			err:        NewConflictError("atom %d has %d incoming links", 3, 2),
			conflict:   true,
			wantInText: "atom 3 has 2 incoming links",
		},
		{
			name:       "wrapped twice still matches",
			err:        Wrap(Wrap(NewNotFoundError("node %q", "cat"), "lookup"), "chase"),
			notFound:   true,
			wantInText: `node "cat"`,
		},
		{
			name: "plain error matches nothing",
			err:  fmt.Errorf("boom"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.notFound, IsNotFoundError(tt.err))
			assert.Equal(t, tt.invalid, IsInvalidRequestError(tt.err))
			assert.Equal(t, tt.conflict, IsConflictError(tt.err))
			if tt.wantInText != "" {
				assert.Contains(t, tt.err.Error(), tt.wantInText)
			}
		})
	}
}

func TestSentinelHelpersNil(t *testing.T) {
	assert.False(t, IsNotFoundError(nil))
	assert.False(t, IsInvalidRequestError(nil))
	assert.False(t, IsConflictError(nil))
}

func TestStackTrace(t *testing.T) {
	err := Wrap(New("inner"), "outer")
	assert.NotNil(t, GetStack(err))
}
