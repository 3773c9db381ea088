// Presence Worker — выполняет задания в браузерных сессиях.
//
// Worker:
//   - Забирает jobs из Job Store (claim атомарен, очередь — подсказка)
//   - Держит по одной сессии на пару (аккаунт, платформа)
//   - Выполняет действие через executor нужного типа
//   - Публикует результат в jobs.completed
//
// Workers масштабируются горизонтально, но один профиль (аккаунт,
// платформа) держит ровно один процесс — lock-файл профиля.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/shaiso/Presence/internal/mq"
	"github.com/shaiso/Presence/internal/repo"
	"github.com/shaiso/Presence/internal/session"
	"github.com/shaiso/Presence/internal/telemetry"
	"github.com/shaiso/Presence/internal/worker"
)

func main() {
	// Инициализируем structured logging
	logger := telemetry.SetupLogger()
	logger.Info("starting presence-worker")

	// graceful shutdown
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// DB pool
	pool, err := repo.NewPool(ctx)
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer pool.Close()
	logger.Info("database connected")

	// RabbitMQ
	var publisher *mq.Publisher
	var mqConn *mq.Connection
	mqConn, err = mq.NewConnection(mq.URLFromEnv(), logger)
	if err != nil {
		logger.Warn("RabbitMQ not available, running in polling-only mode", "error", err)
		mqConn = nil
	} else {
		defer mqConn.Close()
		logger.Info("RabbitMQ connected")

		if err := mq.SetupTopology(ctx, mqConn); err != nil {
			logger.Warn("failed to setup topology", "error", err)
		}

		publisher = mq.NewPublisher(mqConn, logger)
	}

	profilesRoot := os.Getenv("PROFILES_DIR")
	if profilesRoot == "" {
		profilesRoot = "./profiles"
	}

	minInterval := 2 * time.Second
	if v := os.Getenv("MIN_ACTION_INTERVAL"); v != "" {
		if parsed, err := time.ParseDuration(v); err == nil && parsed >= 0 {
			minInterval = parsed
		} else {
			logger.Warn("invalid MIN_ACTION_INTERVAL, using default", "value", v)
		}
	}

	sessions := session.NewManager(session.Config{
		ProfilesRoot:      profilesRoot,
		Driver:            &session.LocalDriver{},
		Store:             repo.NewSessionRepo(pool),
		MinActionInterval: minInterval,
		Logger:            logger,
	})

	size := 0
	if v := os.Getenv("WORKER_CONCURRENCY"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			size = n
		} else {
			logger.Warn("invalid WORKER_CONCURRENCY, using default", "value", v)
		}
	}

	pollInterval := time.Duration(0)
	if v := os.Getenv("POLL_INTERVAL"); v != "" {
		if parsed, err := time.ParseDuration(v); err == nil && parsed > 0 {
			pollInterval = parsed
		} else {
			logger.Warn("invalid POLL_INTERVAL, using default", "value", v)
		}
	}

	// Создаём пул воркеров
	p := worker.New(worker.Config{
		Jobs:         repo.NewJobRepo(pool),
		Sessions:     sessions,
		Publisher:    publisher,
		Conn:         mqConn,
		Size:         size,
		PollInterval: pollInterval,
		Logger:       logger,
	})

	// Запускаем пул
	if err := p.Start(ctx); err != nil {
		logger.Error("failed to start worker pool", "error", err)
		os.Exit(1)
	}

	// HTTP mux: /healthz + /metrics
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	mux.Handle("/metrics", promhttp.Handler())

	port := ":8082"
	if v := os.Getenv("WORKER_PORT"); v != "" {
		port = ":" + v
	}

	go func() {
		logger.Info("listening", "addr", port)
		if err := http.ListenAndServe(port, mux); err != nil {
			logger.Error("http server error", "error", err)
			cancel()
		}
	}()

	// Ожидаем сигнал завершения
	<-ctx.Done()

	// Останавливаем пул: дожидаемся текущих заданий и закрываем сессии
	p.Stop()
	logger.Info("presence-worker stopped")
}
