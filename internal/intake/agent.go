// Package intake runs one NLU turn against a claim session.
package intake

import (
	"context"
	"time"

	"claim-intake/internal/common/logger"
	"claim-intake/internal/common/metrics"
	"claim-intake/internal/common/observability"
	"claim-intake/internal/intake/responder"
	"claim-intake/internal/intake/slots"
	"claim-intake/internal/intake/store"
	"claim-intake/internal/models"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// Workflow processes started by the agent.
const (
	ProcessClaimCompleted   = "claim-intake-completed"
	ProcessClaimPhotoReview = "claim-photo-review"
)

// Outcomes recorded per event.
const (
	OutcomeAwaitingInput    = "awaiting_input"
	OutcomeCompleted        = "completed"
	OutcomeStoreUnavailable = "store_unavailable"
)

// WorkflowStarter starts a BPMN process instance.
type WorkflowStarter interface {
	StartProcess(ctx context.Context, bpmnProcessID string, variables map[string]interface{}) (int64, error)
}

type Agent struct {
	store     store.SessionStore
	responder *responder.Responder
	workflows WorkflowStarter
	obs       *observability.Observability
	logger    logger.Logger
}

// NewAgent wires the agent. workflows and obs may be nil.
func NewAgent(s store.SessionStore, r *responder.Responder, workflows WorkflowStarter, obs *observability.Observability, log logger.Logger) *Agent {
	if log == nil {
		log = logger.NewNoOpLogger()
	}
	return &Agent{store: s, responder: r, workflows: workflows, obs: obs, logger: log}
}

// Handle processes one event. On a store failure it returns the
// technical-issue reply together with the error; the reply is always usable.
func (a *Agent) Handle(ctx context.Context, ev models.Event) (models.Reply, error) {
	start := time.Now()
	ctx, span := a.obs.StartSpan(ctx, "intake.handle",
		attribute.String("session.id", ev.SessionID),
		attribute.String("intent", ev.Intent),
	)
	defer span.End()

	reply, outcome, err := a.handle(ctx, ev)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}

	metrics.IntakeEvents.WithLabelValues(ev.Intent, outcome).Inc()
	metrics.IntakeEventDuration.WithLabelValues(outcome).Observe(time.Since(start).Seconds())
	a.obs.RecordEventProcessed(ctx, ev.Intent, outcome)
	a.obs.RecordEventDuration(ctx, time.Since(start), outcome)

	return reply, err
}

func (a *Agent) handle(ctx context.Context, ev models.Event) (models.Reply, string, error) {
	if _, err := a.store.GetOrCreate(ctx, ev.SessionID); err != nil {
		return a.storeFailure(ev, "get or create", err)
	}

	values := slots.Extract(ev.Intent, ev.Parameters, ev.Utterance)
	if len(values) > 0 {
		if err := a.store.MergeFields(ctx, ev.SessionID, values); err != nil {
			return a.storeFailure(ev, "merge fields", err)
		}
	}

	sess, err := a.store.Fetch(ctx, ev.SessionID)
	if err != nil {
		return a.storeFailure(ev, "fetch", err)
	}

	a.logger.Info("Event processed", map[string]interface{}{
		"sessionId": ev.SessionID,
		"intent":    ev.Intent,
		"written":   len(values),
		"missing":   len(sess.Progress().Missing),
	})

	if !sess.IsComplete() {
		return a.responder.Respond(ctx, sess, ev.Utterance), OutcomeAwaitingInput, nil
	}

	first, err := a.store.MarkComplete(ctx, ev.SessionID)
	if err != nil {
		return a.storeFailure(ev, "mark complete", err)
	}
	if first {
		metrics.ClaimsCompleted.Inc()
		a.startCompletion(ctx, sess)
	}
	return a.responder.Completion(sess), OutcomeCompleted, nil
}

func (a *Agent) storeFailure(ev models.Event, op string, err error) (models.Reply, string, error) {
	a.logger.Error("Session store failed", map[string]interface{}{
		"sessionId": ev.SessionID,
		"operation": op,
		"error":     err.Error(),
	})
	return a.responder.TechnicalIssue(), OutcomeStoreUnavailable, err
}

// startCompletion hands the finished claim to the workflow engine. Failures
// are logged; the claimant still gets the completion reply.
func (a *Agent) startCompletion(ctx context.Context, sess *models.Session) {
	if a.workflows == nil {
		return
	}

	key, err := a.workflows.StartProcess(ctx, ProcessClaimCompleted, map[string]interface{}{
		"sessionId":           sess.SessionID,
		"claimantName":        sess.ClaimantName,
		"policyNumber":        sess.PolicyNumber,
		"incidentDateTime":    sess.IncidentDateTime,
		"vehicleInfo":         sess.VehicleInfo,
		"incidentDescription": sess.IncidentDescription,
		"uploadUrl":           a.responder.UploadURL(sess.SessionID),
	})
	if err != nil {
		a.logger.Error("Failed to start completion workflow", map[string]interface{}{
			"sessionId": sess.SessionID,
			"error":     err.Error(),
		})
		return
	}

	a.logger.Info("Completion workflow started", map[string]interface{}{
		"sessionId":          sess.SessionID,
		"processInstanceKey": key,
	})
}
