// Presence Dispatcher — превращает расписание в задания.
//
// Dispatcher:
//   - Генерирует суточное расписание (и полностью пересобирает его в полночь)
//   - Каждый тик ставит наступившие слоты в очередь заданий
//   - Возвращает зависшие processing jobs обратно в pending
//   - Слушает control-команды из RabbitMQ (pause/resume/tick/regenerate)
//
// Запускать можно несколько копий: лидер выбирается через
// pg_try_advisory_lock, остальные простаивают до его падения.
package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/robfig/cron/v3"

	"github.com/shaiso/Presence/internal/dispatcher"
	"github.com/shaiso/Presence/internal/domain"
	"github.com/shaiso/Presence/internal/mq"
	"github.com/shaiso/Presence/internal/repo"
	"github.com/shaiso/Presence/internal/telemetry"
)

const dispatchLockKey int64 = 515151

func main() {
	// Инициализируем structured logging
	logger := telemetry.SetupLogger()
	logger.Info("starting presence-dispatcher")

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
		logger.Warn("RabbitMQ not available, running without control queue", "error", err)
		mqConn = nil
	} else {
		defer mqConn.Close()
		logger.Info("RabbitMQ connected")

		if err := mq.SetupTopology(ctx, mqConn); err != nil {
			logger.Warn("failed to setup topology", "error", err)
		}

		publisher = mq.NewPublisher(mqConn, logger)
	}

	staleAfter := time.Duration(0)
	if v := os.Getenv("STALE_AFTER"); v != "" {
		if parsed, err := time.ParseDuration(v); err == nil && parsed > 0 {
			staleAfter = parsed
		} else {
			logger.Warn("invalid STALE_AFTER, using default", "value", v)
		}
	}

	d := dispatcher.New(dispatcher.Config{
		Jobs:       repo.NewJobRepo(pool),
		Schedules:  repo.NewScheduleRepo(pool),
		Settings:   repo.NewSettingsRepo(pool),
		Publisher:  publisher,
		Conn:       mqConn,
		Accounts:   accountsFromEnv(logger),
		StaleAfter: staleAfter,
		Logger:     logger,
	})

	interval := 60 * time.Second
	if v := os.Getenv("DISPATCH_INTERVAL"); v != "" {
		if parsed, err := time.ParseDuration(v); err == nil && parsed > 0 {
			interval = parsed
		} else {
			logger.Warn("invalid DISPATCH_INTERVAL, using default", "value", v)
		}
	}

	// Полуночный cron полностью пересобирает расписание на новый день.
	midnight := cron.New()
	if _, err := midnight.AddFunc("@midnight", func() {
		if err := d.Regenerate(ctx, true); err != nil {
			logger.Error("midnight regenerate failed", "error", err)
		}
	}); err != nil {
		logger.Error("failed to register midnight job", "error", err)
		os.Exit(1)
	}

	// Control и jobs.completed консьюмеры работают у всех копий:
	// обработчики идемпотентны, а очередь раздаёт сообщения по одной.
	go d.StartConsumers(ctx)

	// dispatch loop
	go func() {
		tk := time.NewTicker(interval)
		defer tk.Stop()

		var hasLock bool
		defer func() {
			midnight.Stop()
			if hasLock {
				_, _ = pool.Exec(context.Background(), "select pg_advisory_unlock($1)", dispatchLockKey)
			}
		}()

		for {
			select {
			case <-tk.C:
				// пытаемся стать лидером (или подтвердить лидерство)
				if !hasLock {
					var ok bool
					if err := pool.QueryRow(ctx, "select pg_try_advisory_lock($1)", dispatchLockKey).Scan(&ok); err != nil {
						logger.Error("leader lock failed", "error", err)
						continue
					}
					hasLock = ok
					if ok {
						logger.Info("became dispatch leader")
						midnight.Start()
					}
				}

				if !hasLock {
					// не лидер — пропускаем тик
					continue
				}

				if err := d.Tick(ctx); err != nil {
					logger.Error("tick failed", "error", err)
				}

			case <-ctx.Done():
				return
			}
		}
	}()

	// HTTP mux: /healthz + /metrics
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	mux.Handle("/metrics", promhttp.Handler())

	port := ":8081"
	if v := os.Getenv("DISPATCHER_PORT"); v != "" {
		port = ":" + v
	}

	go func() {
		logger.Info("listening", "addr", port)
		if err := http.ListenAndServe(port, mux); err != nil {
			logger.Error("http server error", "error", err)
			cancel()
		}
	}()

	<-ctx.Done()
	logger.Info("presence-dispatcher stopped")
}

// accountsFromEnv собирает карту аккаунтов из ACCOUNT_TWITTER и
// ACCOUNT_LINKEDIN. Платформа без аккаунта выпадает из раздачи,
// её слоты будут помечены skipped.
func accountsFromEnv(logger *slog.Logger) map[domain.Platform]string {
	accounts := make(map[domain.Platform]string)
	if v := os.Getenv("ACCOUNT_TWITTER"); v != "" {
		accounts[domain.PlatformTwitter] = v
	}
	if v := os.Getenv("ACCOUNT_LINKEDIN"); v != "" {
		accounts[domain.PlatformLinkedIn] = v
	}
	if len(accounts) == 0 {
		logger.Warn("no accounts configured, all slots will be skipped")
	}
	return accounts
}
