// internal/common/camunda/worker.go
package camunda

import (
	"context"
	"encoding/json"
	"time"

	"claim-intake/internal/common/config"
	"claim-intake/internal/common/errors"
	"claim-intake/internal/common/logger"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/camunda/zeebe/clients/go/v8/pkg/zbc"
)

// JobHandler is implemented by every claim workflow worker.
type JobHandler interface {
	Handle(client worker.JobClient, job entities.Job)
}

// StartWorker opens a job worker for taskType. Disabled workers return nil.
func StartWorker(client zbc.Client, taskType string, wcfg config.WorkerConfig, handler JobHandler, log logger.Logger) worker.JobWorker {
	if !wcfg.Enabled {
		log.Info("worker disabled", map[string]interface{}{"taskType": taskType})
		return nil
	}

	jw := client.NewJobWorker().
		JobType(taskType).
		Handler(handler.Handle).
		MaxJobsActive(wcfg.MaxJobsActive).
		Timeout(time.Duration(wcfg.Timeout) * time.Millisecond).
		Open()

	log.Info("worker started", map[string]interface{}{
		"taskType":      taskType,
		"maxJobsActive": wcfg.MaxJobsActive,
		"timeout_ms":    wcfg.Timeout,
	})
	return jw
}

// InputValidator checks job variables before a handler sees them.
type InputValidator interface {
	ValidateInput(variables map[string]interface{}) error
}

type validatingHandler struct {
	next       JobHandler
	validator  InputValidator
	errHandler *errors.ErrorHandler
}

// WithInputValidation rejects jobs whose variables fail validation with a
// BUSINESS_RULE_VIOLATION incident instead of invoking next.
func WithInputValidation(next JobHandler, validator InputValidator, log logger.Logger) JobHandler {
	return &validatingHandler{next: next, validator: validator, errHandler: errors.NewErrorHandler(log)}
}

func (h *validatingHandler) Handle(client worker.JobClient, job entities.Job) {
	var vars map[string]interface{}
	err := json.Unmarshal([]byte(job.Variables), &vars)
	if err == nil {
		err = h.validator.ValidateInput(vars)
	}
	if err != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		h.errHandler.HandleJobError(ctx, client, job, errors.NewBusinessRuleError("Invalid job variables", err.Error()))
		return
	}
	h.next.Handle(client, job)
}
