// internal/workers/claims/send-claim-summary/handler.go
package sendclaimsummary

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"claim-intake/internal/common/errors"
	"claim-intake/internal/common/logger"
	"claim-intake/internal/common/metrics"
	"claim-intake/internal/intake/store"
	"claim-intake/internal/models"
	"claim-intake/internal/vision"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/ses/types"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/google/uuid"
)

const (
	TaskType = "send-claim-summary"
)

// Define interfaces for mocking
type SESService interface {
	SendEmail(ctx context.Context, params *ses.SendEmailInput, optFns ...func(*ses.Options)) (*ses.SendEmailOutput, error)
}

type SNSService interface {
	Publish(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error)
}

type Handler struct {
	config       *Config
	store        store.SessionStore
	logger       logger.Logger
	sesClient    SESService
	snsClient    SNSService
	errorHandler *errors.ErrorHandler
}

func NewHandler(config *Config, s store.SessionStore, sesClient SESService, snsClient SNSService, log logger.Logger) *Handler {
	log = log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:       config,
		store:        s,
		logger:       log,
		sesClient:    sesClient,
		snsClient:    snsClient,
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

	output := &Output{
		NotificationID: uuid.New().String(),
		Status:         StatusDisabled,
		SentAt:         time.Now().UTC().Format(time.RFC3339),
	}

	emailOn := h.config.EmailEnabled && h.sesClient != nil && len(h.config.ToEmails) > 0
	smsOn := h.config.SMSEnabled && h.snsClient != nil && vision.AtLeast(input.Severity, h.config.SeverityThreshold)
	if !emailOn && !smsOn {
		h.logger.Info("notifications disabled", map[string]interface{}{"sessionId": sess.SessionID})
		return output, nil
	}

	damageReport := input.DamageReport
	if damageReport == "" {
		damageReport = sess.DamageReport
	}
	subject := fmt.Sprintf("Claim intake complete: %s (%s)", sess.PolicyNumber, sess.ClaimantName)
	body := renderSummary(sess, damageReport, input.Severity)

	if emailOn {
		if err := h.sendEmail(ctx, subject, body); err != nil {
			return nil, errors.NewNotificationSendFailedError("email", err)
		}
	}

	if smsOn {
		msg := fmt.Sprintf("%s severity claim %s for policy %s. %s",
			vision.NormalizeSeverity(input.Severity), sess.SessionID, sess.PolicyNumber, sess.VehicleInfo)
		if err := h.sendSMS(ctx, msg); err != nil {
			if !emailOn {
				return nil, errors.NewNotificationSendFailedError("sms", err)
			}
			// the email already went out; a retry would send it twice
			h.logger.Error("SMS send failed", map[string]interface{}{
				"sessionId": sess.SessionID,
				"error":     err,
			})
			output.Status = StatusFailed
			return output, nil
		}
	}

	output.Status = StatusSent
	return output, nil
}

func renderSummary(sess *models.Session, damageReport, severity string) string {
	var b strings.Builder
	b.WriteString("CLAIM SUMMARY\n\n")
	fmt.Fprintf(&b, "Session: %s\n", sess.SessionID)
	for _, f := range sess.Progress().Filled {
		fmt.Fprintf(&b, "%s: %s\n", f.Field.Label(), f.Value)
	}
	if damageReport != "" {
		fmt.Fprintf(&b, "\nDamage severity: %s\n", vision.NormalizeSeverity(severity))
		fmt.Fprintf(&b, "AI damage report:\n%s\n", damageReport)
	}
	return b.String()
}

func (h *Handler) sendEmail(ctx context.Context, subject, body string) error {
	_, err := h.sesClient.SendEmail(ctx, &ses.SendEmailInput{
		Destination: &types.Destination{
			ToAddresses: h.config.ToEmails,
		},
		Message: &types.Message{
			Subject: &types.Content{Data: aws.String(subject)},
			Body: &types.Body{
				Text: &types.Content{Data: aws.String(body)},
			},
		},
		Source: aws.String(h.config.FromEmail),
	})
	return err
}

func (h *Handler) sendSMS(ctx context.Context, message string) error {
	_, err := h.snsClient.Publish(ctx, &sns.PublishInput{
		TopicArn: aws.String(h.config.TopicARN),
		Message:  aws.String(message),
	})
	return err
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
