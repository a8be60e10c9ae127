// cmd/claim-intake/serve.go
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"claim-intake/internal/common/config"
	"claim-intake/internal/genai"
	"claim-intake/internal/intake"
	"claim-intake/internal/intake/replay"
	"claim-intake/internal/intake/responder"
	"claim-intake/internal/intake/webhook"

	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var withWorkers bool

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the NLU webhook, photo upload and status endpoints",
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().BoolVar(&withWorkers, "with-workers", false, "Also run the claim workflow workers in this process")
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	rt, err := bootstrap(ctx, bootstrapOptions{
		redis:         true,
		elasticsearch: withWorkers,
		camunda:       true,
	})
	if err != nil {
		return err
	}
	defer rt.close()
	cfg := rt.cfg

	if err := os.MkdirAll(cfg.Server.UploadDir, 0o755); err != nil {
		return err
	}

	var generator responder.PromptGenerator
	if cfg.APIs.GenAI.BaseURL != "" {
		generator = genai.NewClient(&genai.Config{
			BaseURL:     cfg.APIs.GenAI.BaseURL,
			APIKey:      cfg.APIs.GenAI.APIKey,
			Timeout:     config.GetDuration(cfg.APIs.GenAI.Timeout),
			MaxTokens:   cfg.APIs.GenAI.MaxTokens,
			Temperature: cfg.APIs.GenAI.Temperature,
		}, rt.log)
	} else {
		rt.zapLog.Warn("genai.base_url not set, follow-up questions use the fallback prompt")
	}

	resp := responder.New(responder.Config{
		PublicBaseURL:     cfg.Server.PublicBaseURL,
		GenerationTimeout: config.GetDuration(cfg.Intake.GenerationTimeout),
		FallbackPrompt:    cfg.Intake.FallbackPrompt,
	}, generator, rt.log)

	var workflows intake.WorkflowStarter
	if rt.camunda != nil {
		workflows = rt.camunda
	} else {
		rt.zapLog.Warn("camunda disabled, completed claims and uploads will not start workflows")
	}

	var replayCache *replay.Cache
	if rt.redis != nil {
		replayCache = replay.New(rt.redis.Client, config.GetDuration(cfg.Intake.ReplayTTL), rt.log)
	}

	agent := intake.NewAgent(rt.store, resp, workflows, rt.obs, rt.log)
	server := webhook.NewServer(webhook.Config{
		UploadDir:      cfg.Server.UploadDir,
		MaxUploadBytes: cfg.Server.MaxUploadBytes,
	}, webhook.Dependencies{
		Agent:     agent,
		Store:     rt.store,
		Replay:    replayCache,
		Workflows: workflows,
		Pingers:   readinessPingers(rt),
		Logger:    rt.log,
	})

	var jobWorkers []worker.JobWorker
	if withWorkers {
		if rt.camunda == nil {
			return errors.New("--with-workers requires camunda.enabled")
		}
		jobWorkers, err = startClaimWorkers(ctx, rt)
		if err != nil {
			return err
		}
	}

	httpServer := &http.Server{
		Addr:         cfg.Server.Address,
		Handler:      server.Router(),
		ReadTimeout:  config.GetDuration(cfg.Server.ReadTimeout),
		WriteTimeout: config.GetDuration(cfg.Server.WriteTimeout),
	}

	errCh := make(chan error, 1)
	go func() {
		rt.zapLog.Info("webhook server listening",
			zap.String("address", cfg.Server.Address),
			zap.String("publicBaseURL", cfg.Server.PublicBaseURL),
		)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
		rt.zapLog.Info("Shutdown signal received")
	case err := <-errCh:
		if err != nil {
			return err
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		rt.zapLog.Error("HTTP server shutdown failed", zap.Error(err))
	}
	closeWorkers(jobWorkers, rt.zapLog)

	rt.zapLog.Info("Shutdown complete")
	return nil
}

// readinessPingers lists the backends /ready checks. Optional ones are
// included only when connected.
func readinessPingers(rt *runtime) map[string]webhook.Pinger {
	pingers := map[string]webhook.Pinger{"postgres": rt.store}
	if rt.redis != nil {
		pingers["redis"] = rt.redis
	}
	if rt.camunda != nil {
		pingers["camunda"] = rt.camunda
	}
	return pingers
}
