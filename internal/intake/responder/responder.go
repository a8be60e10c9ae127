// Package responder turns a session snapshot into the reply text.
package responder

import (
	"context"
	stderrors "errors"
	"fmt"
	"strings"
	"time"

	"claim-intake/internal/common/logger"
	"claim-intake/internal/common/metrics"
	"claim-intake/internal/models"
)

const (
	DefaultFallbackPrompt    = "I've noted that. Could you please provide your policy number?"
	TechnicalIssueText       = "I'm having a technical issue. Can we try that again?"
	DefaultGenerationTimeout = 4 * time.Second
)

// State of the conversation after an event.
type State string

const (
	StateAwaitingInput State = "AWAITING_INPUT"
	StateDone          State = "DONE"
)

// PromptGenerator phrases the next question.
type PromptGenerator interface {
	NextPrompt(ctx context.Context, utterance string, progress models.Progress) (string, error)
}

type Config struct {
	PublicBaseURL     string
	GenerationTimeout time.Duration
	FallbackPrompt    string
}

type Responder struct {
	config    Config
	generator PromptGenerator
	logger    logger.Logger
}

func New(cfg Config, generator PromptGenerator, log logger.Logger) *Responder {
	if cfg.GenerationTimeout <= 0 {
		cfg.GenerationTimeout = DefaultGenerationTimeout
	}
	if cfg.FallbackPrompt == "" {
		cfg.FallbackPrompt = DefaultFallbackPrompt
	}
	cfg.PublicBaseURL = strings.TrimRight(cfg.PublicBaseURL, "/")
	if log == nil {
		log = logger.NewNoOpLogger()
	}
	return &Responder{config: cfg, generator: generator, logger: log}
}

// StateOf maps a session to its conversation state.
func StateOf(sess *models.Session) State {
	if sess.IsComplete() {
		return StateDone
	}
	return StateAwaitingInput
}

// UploadURL is where the claimant finishes by uploading photos.
func (r *Responder) UploadURL(sessionID string) string {
	return fmt.Sprintf("%s/upload-image/%s", r.config.PublicBaseURL, sessionID)
}

// Respond builds the reply for the session as it stands after the merge.
func (r *Responder) Respond(ctx context.Context, sess *models.Session, utterance string) models.Reply {
	if StateOf(sess) == StateDone {
		return r.Completion(sess)
	}
	return models.Reply{FulfillmentText: r.ask(ctx, sess, utterance)}
}

// Completion is the terminal message. It is the same on every redelivery.
func (r *Responder) Completion(sess *models.Session) models.Reply {
	return models.Reply{
		FulfillmentText: fmt.Sprintf(
			"Thank you, %s. I have all your details. Please finish by uploading photos here: %s. Goodbye!",
			sess.ClaimantName, r.UploadURL(sess.SessionID),
		),
		EndInteraction: true,
	}
}

func (r *Responder) TechnicalIssue() models.Reply {
	return models.Reply{FulfillmentText: TechnicalIssueText}
}

func (r *Responder) ask(ctx context.Context, sess *models.Session, utterance string) string {
	if r.generator == nil {
		return r.fallback(sess.SessionID, "disabled", nil)
	}

	genCtx, cancel := context.WithTimeout(ctx, r.config.GenerationTimeout)
	defer cancel()

	text, err := r.generator.NextPrompt(genCtx, utterance, sess.Progress())
	switch {
	case err != nil && (stderrors.Is(err, context.DeadlineExceeded) || genCtx.Err() == context.DeadlineExceeded):
		return r.fallback(sess.SessionID, "timeout", err)
	case err != nil:
		return r.fallback(sess.SessionID, "error", err)
	case strings.TrimSpace(text) == "":
		return r.fallback(sess.SessionID, "empty", nil)
	}
	return strings.TrimSpace(text)
}

func (r *Responder) fallback(sessionID, reason string, err error) string {
	metrics.GenerationFallbacks.WithLabelValues(reason).Inc()

	fields := map[string]interface{}{
		"sessionId": sessionID,
		"reason":    reason,
	}
	if err != nil {
		fields["error"] = err.Error()
	}
	r.logger.Warn("Using fallback prompt", fields)
	return r.config.FallbackPrompt
}
