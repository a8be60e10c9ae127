// cmd/claim-intake/runtime.go
package main

import (
	"context"
	"fmt"
	"time"

	"claim-intake/internal/common/camunda"
	"claim-intake/internal/common/config"
	"claim-intake/internal/common/database"
	"claim-intake/internal/common/logger"
	"claim-intake/internal/common/observability"
	"claim-intake/internal/intake/store"

	"go.uber.org/zap"
)

// runtime holds the shared clients of every command.
type runtime struct {
	cfg    *config.Config
	zapLog *zap.Logger
	log    logger.Logger
	obs    *observability.Observability

	pg      *database.PostgresClient
	store   *store.PostgresStore
	redis   *database.RedisClient
	es      *database.ElasticsearchClient
	camunda *camunda.Client
}

// retryWithBackoff attempts to execute a function with exponential backoff
func retryWithBackoff(operation func() error, maxRetries int, initialDelay time.Duration, log *zap.Logger, operationName string) error {
	var err error
	delay := initialDelay

	for i := 0; i < maxRetries; i++ {
		err = operation()
		if err == nil {
			return nil
		}

		if i < maxRetries-1 {
			log.Warn(fmt.Sprintf("%s failed, retrying...", operationName),
				zap.Error(err),
				zap.Int("attempt", i+1),
				zap.Int("maxRetries", maxRetries),
				zap.Duration("nextRetryIn", delay),
			)
			time.Sleep(delay)
			delay *= 2
		}
	}

	return fmt.Errorf("%s failed after %d attempts: %w", operationName, maxRetries, err)
}

type bootstrapOptions struct {
	redis         bool
	elasticsearch bool
	camunda       bool
}

// bootstrap loads config and connects to Postgres plus whatever opts asks for.
// Optional backends that are not configured are skipped.
func bootstrap(ctx context.Context, opts bootstrapOptions) (*runtime, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, fmt.Errorf("config load failed: %w", err)
	}

	zapLog := logger.NewWithOutput(cfg.Logging.Level, cfg.Logging.Format, cfg.Logging.Output)
	rt := &runtime{
		cfg:    cfg,
		zapLog: zapLog,
		log:    logger.NewZapAdapter(zapLog).WithFields(map[string]interface{}{"service": cfg.App.Name}),
	}

	rt.obs, err = observability.New(cfg.App.Name)
	if err != nil {
		zapLog.Warn("observability disabled", zap.Error(err))
	}

	err = retryWithBackoff(func() error {
		pg, err := database.NewPostgres(cfg.Database.Postgres)
		if err != nil {
			return err
		}
		if err := pg.Ping(ctx); err != nil {
			pg.Close()
			return err
		}
		rt.pg = pg
		return nil
	}, 15, 2*time.Second, zapLog, "PostgreSQL connection")
	if err != nil {
		rt.close()
		return nil, err
	}
	rt.store = store.NewPostgresStore(rt.pg.DB, rt.log)
	zapLog.Info("PostgreSQL connected successfully")

	if opts.redis && cfg.Database.Redis.Enabled() {
		err = retryWithBackoff(func() error {
			r, err := database.NewRedis(cfg.Database.Redis)
			if err != nil {
				return err
			}
			if err := r.Ping(ctx); err != nil {
				r.Close()
				return err
			}
			rt.redis = r
			return nil
		}, 10, 2*time.Second, zapLog, "Redis connection")
		if err != nil {
			rt.close()
			return nil, err
		}
		zapLog.Info("Redis connected successfully")
	}

	if opts.elasticsearch && cfg.Database.Elasticsearch.Enabled() {
		err = retryWithBackoff(func() error {
			es, err := database.NewElasticsearch(cfg.Database.Elasticsearch)
			if err != nil {
				return err
			}
			if err := es.Ping(ctx); err != nil {
				return err
			}
			rt.es = es
			return nil
		}, 15, 2*time.Second, zapLog, "Elasticsearch connection")
		if err != nil {
			rt.close()
			return nil, err
		}
		zapLog.Info("Elasticsearch connected successfully")
	}

	if opts.camunda && cfg.Camunda.Enabled {
		err = retryWithBackoff(func() error {
			c, err := camunda.NewClientWithConfig(&camunda.ClientConfig{
				GatewayAddress:         cfg.Camunda.BrokerAddress,
				UsePlaintextConnection: cfg.Camunda.UsePlaintext,
				RequestTimeout:         config.GetDuration(cfg.Camunda.RequestTimeout),
			})
			if err != nil {
				return err
			}
			rt.camunda = c
			return nil
		}, 10, 2*time.Second, zapLog, "Zeebe client initialization")
		if err != nil {
			rt.close()
			return nil, err
		}
		zapLog.Info("Zeebe client connected successfully")
	}

	return rt, nil
}

func (rt *runtime) close() {
	if rt.camunda != nil {
		rt.camunda.Close()
	}
	if rt.redis != nil {
		rt.redis.Close()
	}
	if rt.pg != nil {
		rt.pg.Close()
	}
	rt.obs.Shutdown()
	_ = rt.zapLog.Sync()
}
