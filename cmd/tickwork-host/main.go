// Tickwork Host — процесс с воркерами и планировщиком пробуждений.
//
// Host:
//   - Запускает координатор планировщика
//   - Создаёт воркеры из WORKERS_FILE и через HTTP API
//   - Пишет журнал запусков в PostgreSQL (если задан DB_URL)
//   - Принимает входы из RabbitMQ и публикует события завершения (если задан RABBITMQ_URL)
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"github.com/shaiso/Tickwork/internal/api"
	"github.com/shaiso/Tickwork/internal/config"
	"github.com/shaiso/Tickwork/internal/host"
	"github.com/shaiso/Tickwork/internal/mq"
	"github.com/shaiso/Tickwork/internal/processor"
	"github.com/shaiso/Tickwork/internal/processors"
	"github.com/shaiso/Tickwork/internal/repo"
	"github.com/shaiso/Tickwork/internal/scheduler"
	"github.com/shaiso/Tickwork/internal/telemetry"
)

var startTime = time.Now()

func main() {
	// Инициализируем structured logging
	logger := telemetry.SetupLogger()
	logger.Info("starting tickwork-host")

	if err := run(logger); err != nil {
		logger.Error("tickwork-host failed", "error", err)
		os.Exit(1)
	}
	logger.Info("tickwork-host stopped")
}

func run(logger *slog.Logger) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	// graceful shutdown
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	clk := clock.New()
	timeProvider := processor.NewClockTime(clk)

	var listeners []processor.Listener

	// PostgreSQL: журнал запусков
	var journal *repo.WorkerRepo
	var journalListener *repo.JournalListener
	if cfg.DatabaseURL != "" {
		pool, err := repo.NewPool(ctx, cfg.DatabaseURL)
		if err != nil {
			return fmt.Errorf("connect to database: %w", err)
		}
		defer pool.Close()

		if err := repo.EnsureSchema(ctx, pool); err != nil {
			return err
		}
		logger.Info("database connected")

		journal = repo.NewWorkerRepo(pool)
		journalListener = repo.NewJournalListener(repo.JournalConfig{
			Journal: journal,
			Clock:   clk,
			Logger:  logger,
		})
		listeners = append(listeners, journalListener)
	} else {
		logger.Info("DB_URL is not set, journal disabled")
	}

	// RabbitMQ: входы и события завершения
	var mqConn *mq.Connection
	var events *mq.EventListener
	if cfg.RabbitMQURL != "" {
		mqConn, err = mq.NewConnection(mq.ConnectionConfig{URL: cfg.RabbitMQURL, Logger: logger})
		if err != nil {
			logger.Warn("RabbitMQ not available, running without messaging", "error", err)
		} else {
			defer mqConn.Close()
			logger.Info("RabbitMQ connected")

			if err := mq.SetupTopology(ctx, mqConn); err != nil {
				return err
			}
			logger.Debug("topology ready", "topology", mq.TopologyInfo())

			events = mq.NewEventListener(mq.EventListenerConfig{
				Publisher: mq.NewPublisher(mqConn, logger),
				Clock:     clk,
				Logger:    logger,
			})
			listeners = append(listeners, events)
		}
	}

	// Планировщик и host
	sched := scheduler.New(scheduler.Config{
		Time:        timeProvider,
		Logger:      logger,
		LogTimeline: cfg.LogTimeline,
	})
	sched.Start(context.Background())
	defer sched.Stop()

	registry := host.NewRegistry()
	processors.Register(registry)

	h := host.New(host.Config{
		Scheduler: sched,
		Time:      timeProvider,
		Registry:  registry,
		Listeners: listeners,
		Logger:    logger,
	})

	// Воркеры завершаются до остановки планировщика (defer sched.Stop).
	stopWorkers := func() {
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer shutdownCancel()
		if err := h.Shutdown(shutdownCtx); err != nil {
			logger.Error("workers did not stop in time", "error", err)
		}

		if journalListener != nil {
			journalListener.Close()
		}
		if events != nil {
			events.Close()
		}
	}

	if cfg.WorkersFile != "" {
		if err := bootWorkers(ctx, h, cfg.WorkersFile, logger); err != nil {
			stopWorkers()
			return err
		}
	}

	// HTTP: API + /healthz + /metrics
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		if mqConn != nil && !mqConn.IsConnected() {
			w.WriteHeader(http.StatusServiceUnavailable)
			fmt.Fprint(w, "rabbitmq disconnected")
			return
		}
		w.WriteHeader(http.StatusOK)
		fmt.Fprintf(w, "ok %s", time.Since(startTime))
	})
	mux.Handle("/metrics", promhttp.Handler())

	handlerCfg := api.Config{Host: h, Logger: logger}
	if journal != nil {
		handlerCfg.Journal = journal
	}
	api.NewHandler(handlerCfg).RegisterRoutes(mux)

	server := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("listening", "addr", cfg.HTTPAddr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer shutdownCancel()
		return server.Shutdown(shutdownCtx)
	})

	if mqConn != nil {
		bridge := mq.NewInputBridge(h, logger)
		consumer := mq.NewConsumer(mqConn, logger, mq.ConsumerConfig{
			Queue:    string(mq.QueueProcessorInputs),
			Handler:  bridge.Handle,
			Prefetch: 16,
		})

		g.Go(func() error {
			if err := consumer.Run(gctx); err != nil && !errors.Is(err, context.Canceled) {
				return fmt.Errorf("input consumer: %w", err)
			}
			return nil
		})
	}

	err = g.Wait()
	logger.Info("shutting down")
	stopWorkers()

	return err
}

// bootWorkers создаёт воркеры из YAML-файла.
func bootWorkers(ctx context.Context, h *host.Host, path string, logger *slog.Logger) error {
	specs, err := config.LoadWorkers(path)
	if err != nil {
		return err
	}

	hostSpecs := make([]host.Spec, len(specs))
	for i, spec := range specs {
		hostSpecs[i] = api.ToSpec(spec)
	}

	infos, err := h.Boot(ctx, hostSpecs)
	if err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}

	logger.Info("workers loaded", "path", path, "count", len(infos))
	return nil
}
