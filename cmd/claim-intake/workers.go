// cmd/claim-intake/workers.go
package main

import (
	"context"
	"errors"
	"os/signal"
	"syscall"

	commonaws "claim-intake/internal/common/aws"
	"claim-intake/internal/common/camunda"
	"claim-intake/internal/common/config"
	"claim-intake/internal/vision"
	analyzedamagephoto "claim-intake/internal/workers/claims/analyze-damage-photo"
	indexclaimrecord "claim-intake/internal/workers/claims/index-claim-record"
	sendclaimsummary "claim-intake/internal/workers/claims/send-claim-summary"
	"claim-intake/pkg/registry"

	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var workersCmd = &cobra.Command{
	Use:   "workers",
	Short: "Run the claim workflow job workers",
	RunE:  runWorkers,
}

func runWorkers(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	rt, err := bootstrap(ctx, bootstrapOptions{elasticsearch: true, camunda: true})
	if err != nil {
		return err
	}
	defer rt.close()

	if rt.camunda == nil {
		return errors.New("workers require camunda.enabled")
	}

	jobWorkers, err := startClaimWorkers(ctx, rt)
	if err != nil {
		return err
	}
	rt.zapLog.Info("All workers started successfully", zap.Int("count", len(jobWorkers)))

	<-ctx.Done()
	rt.zapLog.Info("Shutdown signal received, closing workers...")
	closeWorkers(jobWorkers, rt.zapLog)
	rt.zapLog.Info("All workers stopped gracefully")
	return nil
}

// startClaimWorkers opens the analyze-damage-photo, send-claim-summary and
// index-claim-record workers. Workers whose backend is not configured are skipped.
func startClaimWorkers(ctx context.Context, rt *runtime) ([]worker.JobWorker, error) {
	cfg := rt.cfg
	zbClient := rt.camunda.GetClient()
	var started []worker.JobWorker

	reg, err := registry.LoadRegistry("")
	if err != nil {
		return nil, err
	}

	add := func(taskType string, handler camunda.JobHandler) {
		if activity, ok := reg.Find(taskType); ok {
			handler = camunda.WithInputValidation(handler, activity, rt.log)
		} else {
			rt.zapLog.Warn("task type missing from activity registry", zap.String("taskType", taskType))
		}
		if jw := camunda.StartWorker(zbClient, taskType, config.GetWorkerConfig(cfg, taskType), handler, rt.log); jw != nil {
			started = append(started, jw)
		}
	}

	summaryCfg := sendclaimsummary.LoadConfig()
	summaryCfg.EmailEnabled = cfg.Notifications.Email.Enabled
	summaryCfg.FromEmail = cfg.Notifications.Email.FromEmail
	summaryCfg.ToEmails = cfg.Notifications.Email.To
	summaryCfg.SMSEnabled = cfg.Notifications.SMS.Enabled
	summaryCfg.TopicARN = cfg.Notifications.SMS.TopicARN
	summaryCfg.SeverityThreshold = cfg.Notifications.SMS.SeverityThreshold
	summaryCfg.AWSRegion = cfg.Notifications.AWS.Region

	var sesClient sendclaimsummary.SESService
	if summaryCfg.EmailEnabled {
		c, err := commonaws.NewSESClient(ctx, summaryCfg.AWSRegion)
		if err != nil {
			return nil, err
		}
		sesClient = c
	}
	var snsClient sendclaimsummary.SNSService
	if summaryCfg.SMSEnabled {
		c, err := commonaws.NewSNSClient(ctx, summaryCfg.AWSRegion)
		if err != nil {
			return nil, err
		}
		snsClient = c
	}

	if cfg.APIs.Vision.BaseURL != "" {
		analyzer := vision.NewClient(&vision.Config{
			BaseURL: cfg.APIs.Vision.BaseURL,
			APIKey:  cfg.APIs.Vision.APIKey,
			Timeout: config.GetDuration(cfg.APIs.Vision.Timeout),
		}, rt.log)
		photoCfg := analyzedamagephoto.LoadConfig()
		photoCfg.Timeout = config.GetDuration(config.GetWorkerConfig(cfg, analyzedamagephoto.TaskType).Timeout)
		add(analyzedamagephoto.TaskType, analyzedamagephoto.NewHandler(photoCfg, analyzer, rt.store, rt.log))
	} else {
		rt.zapLog.Warn("vision.base_url not set, skipping worker", zap.String("taskType", analyzedamagephoto.TaskType))
	}

	add(sendclaimsummary.TaskType, sendclaimsummary.NewHandler(summaryCfg, rt.store, sesClient, snsClient, rt.log))

	if rt.es != nil {
		indexCfg := indexclaimrecord.LoadConfig()
		indexCfg.IndexName = cfg.Database.Elasticsearch.ClaimsIndex
		created, err := rt.es.EnsureIndex(ctx, indexCfg.IndexName, indexclaimrecord.IndexMapping)
		if err != nil {
			closeWorkers(started, rt.zapLog)
			return nil, err
		}
		if created {
			rt.zapLog.Info("claims index created", zap.String("index", indexCfg.IndexName))
		}
		add(indexclaimrecord.TaskType, indexclaimrecord.NewHandler(indexCfg, rt.es.Client, rt.store, rt.log))
	} else {
		rt.zapLog.Warn("elasticsearch not configured, skipping worker", zap.String("taskType", indexclaimrecord.TaskType))
	}

	return started, nil
}

func closeWorkers(jobWorkers []worker.JobWorker, log *zap.Logger) {
	for _, jw := range jobWorkers {
		jw.Close()
		jw.AwaitClose()
	}
	if len(jobWorkers) > 0 {
		log.Info("workers closed", zap.Int("count", len(jobWorkers)))
	}
}
