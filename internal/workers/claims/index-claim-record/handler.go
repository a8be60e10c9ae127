// internal/workers/claims/index-claim-record/handler.go
package indexclaimrecord

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"claim-intake/internal/common/errors"
	"claim-intake/internal/common/logger"
	"claim-intake/internal/common/metrics"
	"claim-intake/internal/intake/store"
	"claim-intake/internal/models"
	"claim-intake/internal/vision"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/elastic/go-elasticsearch/v8"
)

const (
	TaskType = "index-claim-record"
)

type Handler struct {
	config       *Config
	client       *elasticsearch.Client
	store        store.SessionStore
	logger       logger.Logger
	errorHandler *errors.ErrorHandler
}

func NewHandler(config *Config, client *elasticsearch.Client, s store.SessionStore, log logger.Logger) *Handler {
	log = log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:       config,
		client:       client,
		store:        s,
		logger:       log,
		errorHandler: errors.NewErrorHandler(log),
	}
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) {
	start := time.Now()
	h.logger.Info("processing job", map[string]interface{}{
		"jobKey":      job.Key,
		"workflowKey": job.ProcessInstanceKey,
	})

	ctx, cancel := context.WithTimeout(context.Background(), h.config.Timeout)
	defer cancel()

	var input Input
	if err := json.Unmarshal([]byte(job.Variables), &input); err != nil {
		h.failJob(ctx, client, job, errors.NewBusinessRuleError("Invalid job variables", err.Error()))
		return
	}

	output, err := h.execute(ctx, &input)
	if err != nil {
		h.failJob(ctx, client, job, err)
		return
	}

	metrics.WorkerJobDuration.WithLabelValues(TaskType).Observe(time.Since(start).Seconds())
	h.completeJob(ctx, client, job, output)
}

func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	if strings.TrimSpace(input.SessionID) == "" {
		return nil, errors.NewBusinessRuleError("Invalid job variables", "sessionId is required")
	}

	sess, err := h.store.Fetch(ctx, input.SessionID)
	if err != nil {
		return nil, err
	}

	body, err := json.Marshal(buildDocument(sess, input.Severity))
	if err != nil {
		return nil, errors.NewIndexingFailedError(h.config.IndexName, err)
	}

	res, err := h.client.Index(
		h.config.IndexName,
		bytes.NewReader(body),
		h.client.Index.WithContext(ctx),
		h.client.Index.WithDocumentID(sess.SessionID),
	)
	if err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return nil, errors.NewSearchTimeoutError(h.config.IndexName)
		}
		return nil, errors.NewIndexingFailedError(h.config.IndexName, err)
	}
	defer res.Body.Close()

	if res.IsError() {
		snippet, _ := io.ReadAll(io.LimitReader(res.Body, 512))
		return nil, errors.NewIndexingFailedError(h.config.IndexName,
			fmt.Errorf("%s: %s", res.Status(), strings.TrimSpace(string(snippet))))
	}

	h.logger.Info("claim indexed", map[string]interface{}{
		"sessionId": sess.SessionID,
		"index":     h.config.IndexName,
	})

	return &Output{
		Indexed:    true,
		Index:      h.config.IndexName,
		DocumentID: sess.SessionID,
	}, nil
}

func buildDocument(sess *models.Session, severity string) ClaimDocument {
	doc := ClaimDocument{
		SessionID:           sess.SessionID,
		Status:              string(sess.Status()),
		ClaimantName:        sess.ClaimantName,
		PolicyNumber:        sess.PolicyNumber,
		IncidentDateTime:    sess.IncidentDateTime,
		VehicleInfo:         sess.VehicleInfo,
		IncidentDescription: sess.IncidentDescription,
		PhotoUploaded:       sess.PhotoUploaded,
		DamageReport:        sess.DamageReport,
		CreatedAt:           sess.CreatedAt,
		IndexedAt:           time.Now().UTC(),
	}
	if severity != "" {
		doc.Severity = vision.NormalizeSeverity(severity)
	}
	return doc
}

func (h *Handler) completeJob(ctx context.Context, client worker.JobClient, job entities.Job, output *Output) {
	cmd, err := client.NewCompleteJobCommand().
		JobKey(job.Key).
		VariablesFromObject(output)
	if err != nil {
		h.logger.Error("failed to create complete job command", map[string]interface{}{
			"error": err,
		})
		return
	}
	if _, err := cmd.Send(ctx); err != nil {
		h.logger.Error("failed to send complete job command", map[string]interface{}{
			"error": err,
		})
		return
	}
	metrics.WorkerJobsCompleted.WithLabelValues(TaskType).Inc()
}

func (h *Handler) failJob(ctx context.Context, client worker.JobClient, job entities.Job, err error) {
	metrics.WorkerJobsFailed.WithLabelValues(TaskType, string(errors.Normalize(err).Code)).Inc()
	h.errorHandler.HandleJobError(ctx, client, job, err)
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}
