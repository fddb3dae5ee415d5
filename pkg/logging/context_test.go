package logging

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWithLoggerAndFromContext(t *testing.T) {
	var buf bytes.Buffer
	logger := NewJSON(&buf)

	ctx := WithLogger(context.Background(), &logger)
	got := FromContext(ctx)
	require.NotNil(t, got)

	got.Info().Msg("hello")
	assert.Contains(t, buf.String(), "hello")
}

func TestFromContextFallsBackToDefault(t *testing.T) {
	assert.Equal(t, Default(), FromContext(context.Background()))
	assert.Equal(t, Default(), FromContext(nil)) //nolint:staticcheck // nil context fallback is the point
}

func TestWithBatchID(t *testing.T) {
	var buf bytes.Buffer
	logger := NewJSON(&buf)

	ctx := WithLogger(context.Background(), &logger)
	ctx = WithBatchID(ctx, "b-123")

	assert.Equal(t, "b-123", BatchID(ctx))
	assert.Equal(t, "", BatchID(context.Background()))

	FromContext(ctx).Info().Msg("pass started")
	assert.Contains(t, buf.String(), `"batch_id":"b-123"`)
}
