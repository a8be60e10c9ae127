package responder

import (
	"context"
	stderrors "errors"
	"testing"
	"time"

	"claim-intake/internal/common/metrics"
	"claim-intake/internal/models"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

// ==========================
// Mock Implementations
// ==========================

type MockGenerator struct {
	mock.Mock
}

func (m *MockGenerator) NextPrompt(ctx context.Context, utterance string, progress models.Progress) (string, error) {
	args := m.Called(ctx, utterance, progress)
	return args.String(0), args.Error(1)
}

type slowGenerator struct{}

func (slowGenerator) NextPrompt(ctx context.Context, _ string, _ models.Progress) (string, error) {
	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case <-time.After(5 * time.Second):
		return "too late", nil
	}
}

func completeSession() *models.Session {
	return &models.Session{
		SessionID:           "abc123",
		PolicyNumber:        "PN-1",
		IncidentDateTime:    "2024-05-01T10:00:00Z",
		VehicleInfo:         "Blue Civic",
		IncidentDescription: "Rear-ended",
		ClaimantName:        "Jane Doe",
	}
}

// ==========================
// Tests
// ==========================

func TestRespond_Completion(t *testing.T) {
	gen := new(MockGenerator)
	r := New(Config{PublicBaseURL: "https://claims.example.com/"}, gen, nil)

	reply := r.Respond(context.Background(), completeSession(), "Jane Doe")

	assert.Equal(t,
		"Thank you, Jane Doe. I have all your details. Please finish by uploading photos here: https://claims.example.com/upload-image/abc123. Goodbye!",
		reply.FulfillmentText)
	assert.True(t, reply.EndInteraction)
	gen.AssertNotCalled(t, "NextPrompt", mock.Anything, mock.Anything, mock.Anything)
}

func TestRespond_GeneratedQuestion(t *testing.T) {
	sess := &models.Session{SessionID: "s1", PolicyNumber: "PN-1"}
	gen := new(MockGenerator)
	gen.On("NextPrompt", mock.Anything, "PN-1", sess.Progress()).Return("  Got it. When did it happen?  ", nil)

	reply := New(Config{PublicBaseURL: "http://localhost:8000"}, gen, nil).Respond(context.Background(), sess, "PN-1")

	assert.Equal(t, "Got it. When did it happen?", reply.FulfillmentText)
	assert.False(t, reply.EndInteraction)
	gen.AssertExpectations(t)
}

func TestRespond_Fallbacks(t *testing.T) {
	tests := []struct {
		name      string
		generator PromptGenerator
		reason    string
	}{
		{"error", func() PromptGenerator {
			g := new(MockGenerator)
			g.On("NextPrompt", mock.Anything, mock.Anything, mock.Anything).Return("", stderrors.New("boom"))
			return g
		}(), "error"},
		{"empty", func() PromptGenerator {
			g := new(MockGenerator)
			g.On("NextPrompt", mock.Anything, mock.Anything, mock.Anything).Return("   ", nil)
			return g
		}(), "empty"},
		{"timeout", slowGenerator{}, "timeout"},
		{"disabled", nil, "disabled"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			before := testutil.ToFloat64(metrics.GenerationFallbacks.WithLabelValues(tt.reason))
			r := New(Config{GenerationTimeout: 30 * time.Millisecond}, tt.generator, nil)

			start := time.Now()
			reply := r.Respond(context.Background(), &models.Session{SessionID: "s1"}, "hello")

			assert.Equal(t, DefaultFallbackPrompt, reply.FulfillmentText)
			assert.False(t, reply.EndInteraction)
			assert.Less(t, time.Since(start), 2*time.Second)
			assert.Equal(t, before+1, testutil.ToFloat64(metrics.GenerationFallbacks.WithLabelValues(tt.reason)))
		})
	}
}

func TestTechnicalIssue(t *testing.T) {
	reply := New(Config{}, nil, nil).TechnicalIssue()
	assert.Equal(t, "I'm having a technical issue. Can we try that again?", reply.FulfillmentText)
	assert.False(t, reply.EndInteraction)
}

func TestStateOf(t *testing.T) {
	assert.Equal(t, StateDone, StateOf(completeSession()))
	assert.Equal(t, StateAwaitingInput, StateOf(&models.Session{}))
}
