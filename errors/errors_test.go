package errors

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errSentinel = New(CodeContentDrift, "content drift")

func TestWrapWithContext(t *testing.T) {
	err := WrapWithContext(errSentinel, CodeContentDrift, "timestamp 30", map[string]interface{}{
		"timestamp": int64(30),
	})
	require.Error(t, err)

	assert.True(t, Is(err, errSentinel))
	assert.Equal(t, "timestamp 30: content drift", err.Error())
	assert.Equal(t, CodeContentDrift, CodeOf(err))
	assert.Equal(t, int64(30), ContextOf(err)["timestamp"])
}

func TestWrapNil(t *testing.T) {
	assert.NoError(t, Wrap(nil, CodeIO, "nothing"))
	assert.NoError(t, WrapWithContext(nil, CodeIO, "nothing", map[string]interface{}{"a": 1}))
}

func TestCodeOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want ErrorCode
	}{
		{
			name: "nil",
			err:  nil,
			want: "",
		},
		{
			name: "sentinel",
			err:  errSentinel,
			want: CodeContentDrift,
		},
		{
			name: "sentinel behind fmt wrap",
			err:  fmt.Errorf("export: %w", errSentinel),
			want: CodeContentDrift,
		},
		{
			name: "outer code wins",
			err:  Wrap(errSentinel, CodeIO, "io"),
			want: CodeIO,
		},
		{
			name: "canceled context",
			err:  fmt.Errorf("run: %w", context.Canceled),
			want: CodeCanceled,
		},
		{
			name: "plain error",
			err:  fmt.Errorf("boom"),
			want: CodeUnknown,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CodeOf(tt.err))
		})
	}
}

func TestContextOfOuterWins(t *testing.T) {
	inner := WrapWithContext(errSentinel, CodeContentDrift, "inner", map[string]interface{}{
		"timestamp": 1,
		"position":  2,
	})
	outer := WrapWithContext(inner, CodeContentDrift, "outer", map[string]interface{}{
		"timestamp": 3,
	})

	ctx := ContextOf(outer)
	assert.Equal(t, 3, ctx["timestamp"])
	assert.Equal(t, 2, ctx["position"])
}
