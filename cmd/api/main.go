package main

import (
	"context"
	"errors"
	"net"
	"net/http"

	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"

	"example.com/activitysignup/internal/api"
	"example.com/activitysignup/internal/config"
	"example.com/activitysignup/internal/directory"
	"example.com/activitysignup/internal/domain"
	"example.com/activitysignup/internal/observability"
	"example.com/activitysignup/internal/outbox"
	httptransport "example.com/activitysignup/internal/transport/http"
)

func main() {
	fx.New(appOptions()).Run()
}

// appOptions is the full dependency graph of the service.
func appOptions() fx.Option {
	return fx.Options(
		fx.Provide(
			config.Load,
			newLogger,
			newDirectory,
			newPublisher,
			newService,
			newHandler,
			newRouter,
			newServer,
		),
		fx.WithLogger(func(logger *zap.Logger) fxevent.Logger {
			return &fxevent.ZapLogger{Logger: logger.Named("fx")}
		}),
		fx.Invoke(registerHooks),
	)
}

func newLogger(lc fx.Lifecycle, cfg config.Config) (*zap.Logger, error) {
	logger, err := observability.NewLogger(observability.LoggerConfig{
		Level:  cfg.LogLevel,
		Format: cfg.LogFormat,
		File:   cfg.LogFile,
	})
	if err != nil {
		return nil, err
	}
	lc.Append(fx.StopHook(func() { _ = logger.Sync() }))
	return logger, nil
}

func newDirectory(cfg config.Config, logger *zap.Logger) (domain.Directory, error) {
	seed, err := directory.LoadSeed(cfg.SeedFile)
	if err != nil {
		return nil, err
	}
	dir, err := directory.NewInMemoryDirectory(seed)
	if err != nil {
		return nil, err
	}
	source := cfg.SeedFile
	if source == "" {
		source = "embedded"
	}
	logger.Info("activity directory seeded", zap.String("source", source), zap.Int("activities", len(seed)))
	return dir, nil
}

// newPublisher returns the Kafka-backed outbox when brokers are configured and a
// discarding publisher otherwise.
func newPublisher(lc fx.Lifecycle, cfg config.Config, logger *zap.Logger) domain.EventPublisher {
	if !cfg.KafkaEnabled() {
		logger.Info("KAFKA_BROKERS not set, enrollment events are discarded")
		return outbox.Discard{}
	}

	queue := outbox.NewQueue(cfg.EnrollmentTopic, cfg.OutboxBufferSize)
	producer := outbox.NewKafkaProducer(outbox.ProducerConfig{
		Brokers:          cfg.KafkaBrokers,
		BatchTimeout:     cfg.KafkaBatchTimeout,
		WriteTimeout:     cfg.KafkaWriteTimeout,
		AutoCreateTopics: cfg.KafkaAutoCreateTopics,
	})
	dispatcher := outbox.NewDispatcher(queue, producer, cfg.OutboxBatchSize, cfg.OutboxFlushInterval, logger.Named("outbox"))

	ctx, cancel := context.WithCancel(context.Background())
	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			logger.Info("outbox dispatcher starting",
				zap.Strings("brokers", cfg.KafkaBrokers),
				zap.String("topic", cfg.EnrollmentTopic),
			)
			go dispatcher.Start(ctx)
			return nil
		},
		OnStop: func(context.Context) error {
			cancel()
			dispatcher.Wait()
			return producer.Close()
		},
	})
	return queue
}

func newService(lc fx.Lifecycle, dir domain.Directory, publisher domain.EventPublisher, logger *zap.Logger) *domain.Service {
	service := domain.NewService(dir, publisher, domain.WithLogger(logger.Named("domain")))
	lc.Append(fx.StartHook(service.SyncMetrics))
	return service
}

func newHandler(service *domain.Service, logger *zap.Logger) *api.Handler {
	return api.NewHandler(service, logger.Named("api"))
}

func newRouter(h *api.Handler, cfg config.Config, logger *zap.Logger) http.Handler {
	return api.NewRouter(h, api.RouterOptions{
		Logger:        logger.Named("access"),
		AllowedOrigin: cfg.CORSAllowedOrigin,
		StaticDir:     cfg.StaticDir,
	})
}

func newServer(cfg config.Config, handler http.Handler, logger *zap.Logger) *http.Server {
	return httptransport.NewServer(httptransport.DefaultServerConfig(cfg.HTTPAddress), handler, logger)
}

func registerHooks(lc fx.Lifecycle, cfg config.Config, srv *http.Server, logger *zap.Logger) {
	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			ln, err := net.Listen("tcp", srv.Addr)
			if err != nil {
				return err
			}
			logger.Info("activity-signup-service listening", zap.String("addr", ln.Addr().String()))
			go func() {
				if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
					logger.Fatal("server error", zap.Error(err))
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			logger.Info("server stopping")
			shutdownCtx, cancel := context.WithTimeout(ctx, cfg.ShutdownTimeout)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	})
}
