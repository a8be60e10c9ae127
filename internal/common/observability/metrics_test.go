package observability

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObservability_RecordAndSpan(t *testing.T) {
	obs, err := New("claim-intake-test")
	require.NoError(t, err)
	defer obs.Shutdown()

	ctx, span := obs.StartSpan(context.Background(), "intake.handle")
	require.NotNil(t, span)
	assert.NotNil(t, ctx)

	assert.NotPanics(t, func() {
		obs.RecordEventProcessed(ctx, "provide_name", "awaiting_input")
		obs.RecordEventDuration(ctx, 120*time.Millisecond, "awaiting_input")
	})
	span.End()
}

func TestObservability_NilSafe(t *testing.T) {
	var obs *Observability

	ctx, span := obs.StartSpan(context.Background(), "noop")
	assert.NotNil(t, ctx)
	assert.False(t, span.SpanContext().IsValid())

	assert.NotPanics(t, func() {
		obs.RecordEventProcessed(ctx, "x", "y")
		obs.RecordEventDuration(ctx, time.Second, "y")
		obs.Shutdown()
	})
}
