// internal/workers/claims/analyze-damage-photo/handler.go
package analyzedamagephoto

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"claim-intake/internal/common/errors"
	"claim-intake/internal/common/logger"
	"claim-intake/internal/common/metrics"
	"claim-intake/internal/intake/store"
	"claim-intake/internal/vision"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const (
	TaskType = "analyze-damage-photo"
)

// PhotoAnalyzer is satisfied by *vision.Client.
type PhotoAnalyzer interface {
	Analyze(ctx context.Context, path string) (*vision.Report, error)
}

type Handler struct {
	config       *Config
	analyzer     PhotoAnalyzer
	store        store.SessionStore
	logger       logger.Logger
	errorHandler *errors.ErrorHandler
}

func NewHandler(config *Config, analyzer PhotoAnalyzer, s store.SessionStore, log logger.Logger) *Handler {
	log = log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:       config,
		analyzer:     analyzer,
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
	if strings.TrimSpace(input.SessionID) == "" || strings.TrimSpace(input.PhotoPath) == "" {
		return nil, errors.NewBusinessRuleError("Invalid job variables", "sessionId and photoPath are required")
	}

	report, err := h.analyzer.Analyze(ctx, input.PhotoPath)
	if err != nil {
		return nil, err
	}

	if err := h.store.MarkPhotoUploaded(ctx, input.SessionID, report.Text); err != nil {
		return nil, err
	}

	h.logger.Info("damage photo recorded", map[string]interface{}{
		"sessionId": input.SessionID,
		"severity":  report.Severity,
	})

	return &Output{
		DamageReport: report.Text,
		Severity:     report.Severity,
	}, nil
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
