package app

import (
	"context"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Astemirdum/circulation-service/circulation/config"
	"github.com/Astemirdum/circulation-service/circulation/internal/handler"
	"github.com/Astemirdum/circulation-service/circulation/internal/repository"
	"github.com/Astemirdum/circulation-service/circulation/internal/server"
	"github.com/Astemirdum/circulation-service/circulation/internal/service"
	"github.com/Astemirdum/circulation-service/circulation/internal/sweeper"
	"github.com/Astemirdum/circulation-service/circulation/migrations"
	"github.com/Astemirdum/circulation-service/pkg/circuit_breaker"
	"github.com/Astemirdum/circulation-service/pkg/kafka"
	"github.com/Astemirdum/circulation-service/pkg/logger"
	"github.com/Astemirdum/circulation-service/pkg/postgres"
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const (
	cbRecordLength     = 100
	cbTimeout          = 30 * time.Second
	cbPercentile       = 0.5
	cbRecoveryRequests = 5

	shutdownTimeout = 5 * time.Second
)

func Run(cfg *config.Config) {
	log := logger.NewLogger(cfg.Log, "circulation")
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	seed, err := config.LoadSeed(cfg.SeedFile)
	if err != nil {
		log.Fatal("seed", zap.Error(err))
	}
	repo, closeRepo, err := newRepository(ctx, cfg, seed, log)
	if err != nil {
		log.Fatal("repo", zap.Error(err))
	}
	defer closeRepo()

	g, gCtx := errgroup.WithContext(ctx)
	opts := []service.Option{service.WithRetry(cfg.Retry.Attempts, cfg.Retry.BaseDelay)}
	if cfg.Kafka.Enabled() {
		producer, err := kafka.NewProducer(cfg.Kafka)
		if err != nil {
			log.Fatal("kafka.NewProducer", zap.Error(err))
		}
		cb := circuit_breaker.New(cbRecordLength, cbTimeout, cbPercentile, cbRecoveryRequests)
		publisher := kafka.NewPublisher(producer, cfg.Kafka.EventsTopic, cb, log)
		defer func() {
			if err := publisher.Close(); err != nil {
				log.Warn("publisher.Close", zap.Error(err))
			}
		}()
		g.Go(func() error { return publisher.Run(gCtx) })
		opts = append(opts, service.WithPublisher(publisher))
	}

	svc := service.NewService(repo, log, opts...)
	if err = svc.SeedPolicies(ctx, seed.Policies); err != nil {
		log.Fatal("seed policies", zap.Error(err))
	}

	if cfg.Kafka.Enabled() {
		group, err := kafka.NewConsumer(cfg.Kafka, cfg.Kafka.ConsumerGroup)
		if err != nil {
			log.Fatal("kafka.NewConsumer", zap.Error(err))
		}
		defer group.Close()
		g.Go(func() error {
			return kafka.Consume(gCtx, group, handler.NewConsumer(svc.Checkin, log), log, cfg.Kafka.ReturnsTopic)
		})
	}

	g.Go(func() error { return sweeper.NewRunner(svc, cfg.Sweeper.Interval, log).Run(gCtx) })

	h := handler.New(svc, log, handler.WithJWTSecret(cfg.Auth.JWTSecret))
	srv := server.NewServer(cfg.Server, h.NewRouter())
	log.Info("http server start ON: ",
		zap.String("addr",
			net.JoinHostPort(cfg.Server.Host, cfg.Server.Port)))
	g.Go(func() error {
		if err := srv.Run(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return errors.Wrap(err, "server run")
		}
		return nil
	})
	g.Go(func() error {
		<-gCtx.Done()
		log.Debug("Graceful shutdown")
		closeCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Stop(closeCtx)
	})

	if err = g.Wait(); err != nil {
		log.Error("app stopped", zap.Error(err))
	}
	log.Info("Graceful shutdown finished")
}

func newRepository(ctx context.Context, cfg *config.Config, seed config.Seed, log *zap.Logger) (repository.Repository, func(), error) {
	switch cfg.Storage.Driver {
	case config.DriverMemory:
		repo := repository.NewMemoryRepository(log)
		for _, item := range seed.Items {
			repo.PutItem(item)
		}
		return repo, func() {}, nil
	case config.DriverPostgres:
		db, err := postgres.NewPostgresDB(ctx, &cfg.Database, migrations.MigrationFiles)
		if err != nil {
			return nil, nil, errors.Wrap(err, "db init")
		}
		repo, err := repository.NewRepository(db, log)
		if err != nil {
			db.Close()
			return nil, nil, err
		}
		return repo, db.Close, nil
	}
	return nil, nil, errors.Errorf("unknown storage driver %q", cfg.Storage.Driver)
}
