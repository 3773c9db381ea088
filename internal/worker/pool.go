package worker

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/shaiso/Presence/internal/domain"
	"github.com/shaiso/Presence/internal/mq"
	"github.com/shaiso/Presence/internal/repo"
	"github.com/shaiso/Presence/internal/session"
	"github.com/shaiso/Presence/internal/telemetry"
)

// Default configuration values.
const (
	defaultPollInterval = 5 * time.Second
	defaultConcurrency  = 2
	defaultPrefetch     = 5
)

// Pool — пул воркеров, выполняющих задания.
//
// Источник истины — Job Store: воркеры периодически опрашивают его
// и атомарно захватывают задания. Сообщения jobs.enqueued из RabbitMQ
// лишь будят пул раньше тика — их потеря ничего не ломает.
type Pool struct {
	jobs     repo.JobStore
	sessions *session.Manager
	registry *Registry

	// MQ (опционально: без соединения пул работает только на polling)
	publisher *mq.Publisher
	conn      *mq.Connection

	jobConsumer     *mq.Consumer
	controlConsumer *mq.Consumer

	size         int
	pollInterval time.Duration

	// nudge будит воркеров при появлении нового задания.
	nudge chan struct{}

	logger     *slog.Logger
	cancelFunc context.CancelFunc
	wg         sync.WaitGroup
	stopped    bool
	stoppedMu  sync.RWMutex
}

// Config — конфигурация пула.
type Config struct {
	// Jobs — хранилище заданий.
	Jobs repo.JobStore

	// Sessions — менеджер браузерных сессий.
	Sessions *session.Manager

	// Registry — реестр executor'ов (nil — NewRegistry()).
	Registry *Registry

	// Publisher и Conn — RabbitMQ. Оба могут быть nil:
	// пул тогда живёт только на опросе Job Store.
	Publisher *mq.Publisher
	Conn      *mq.Connection

	// Size — количество воркеров (default: 2).
	Size int

	// PollInterval — интервал опроса очереди (default: 5s).
	PollInterval time.Duration

	// Logger для событий пула.
	Logger *slog.Logger
}

// New создаёт пул воркеров.
func New(cfg Config) *Pool {
	size := cfg.Size
	if size <= 0 {
		size = defaultConcurrency
	}

	pollInterval := cfg.PollInterval
	if pollInterval <= 0 {
		pollInterval = defaultPollInterval
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	registry := cfg.Registry
	if registry == nil {
		registry = NewRegistry()
	}

	return &Pool{
		jobs:         cfg.Jobs,
		sessions:     cfg.Sessions,
		registry:     registry,
		publisher:    cfg.Publisher,
		conn:         cfg.Conn,
		size:         size,
		pollInterval: pollInterval,
		nudge:        make(chan struct{}, 1),
		logger:       logger,
	}
}

// Start запускает пул: size воркеров и consumers RabbitMQ.
func (p *Pool) Start(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	p.cancelFunc = cancel

	p.logger.Info("starting worker pool",
		"size", p.size,
		"poll_interval", p.pollInterval,
	)

	if p.conn != nil {
		p.jobConsumer = mq.NewConsumer(p.conn, p.logger, mq.ConsumerConfig{
			Queue:    mq.QueueJobsEnqueued,
			Handler:  p.handleJobEnqueued,
			Prefetch: defaultPrefetch,
		})

		p.controlConsumer = mq.NewConsumer(p.conn, p.logger, mq.ConsumerConfig{
			Queue:   mq.QueueControlWorker,
			Handler: p.handleControl,
		})

		for _, consumer := range []*mq.Consumer{p.jobConsumer, p.controlConsumer} {
			consumer := consumer
			p.wg.Add(1)
			go func() {
				defer p.wg.Done()
				if err := consumer.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
					p.logger.Error("consumer error", "error", err)
				}
			}()
		}
	}

	for i := 0; i < p.size; i++ {
		p.wg.Add(1)
		go func(id int) {
			defer p.wg.Done()
			p.workerLoop(ctx, id)
		}(i)
	}

	p.logger.Info("worker pool started")
	return nil
}

// Stop останавливает пул и закрывает все сессии.
func (p *Pool) Stop() {
	p.stoppedMu.Lock()
	p.stopped = true
	p.stoppedMu.Unlock()

	p.logger.Info("stopping worker pool...")

	if p.cancelFunc != nil {
		p.cancelFunc()
	}

	if p.jobConsumer != nil {
		p.jobConsumer.Stop()
	}
	if p.controlConsumer != nil {
		p.controlConsumer.Stop()
	}

	p.wg.Wait()

	if p.sessions != nil {
		if err := p.sessions.Close(context.Background()); err != nil {
			p.logger.Warn("failed to close sessions", "error", err)
		}
	}

	p.logger.Info("worker pool stopped")
}

// IsStopped проверяет, остановлен ли пул.
func (p *Pool) IsStopped() bool {
	p.stoppedMu.RLock()
	defer p.stoppedMu.RUnlock()
	return p.stopped
}

// workerLoop — цикл одного воркера.
func (p *Pool) workerLoop(ctx context.Context, id int) {
	logger := p.logger.With("worker", id)

	ticker := time.NewTicker(p.pollInterval)
	defer ticker.Stop()

	// Сразу при старте подхватываем задания, накопившиеся пока были выключены.
	p.drain(ctx, logger)

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.drain(ctx, logger)
		case <-p.nudge:
			p.drain(ctx, logger)
		}
	}
}

// drain захватывает и выполняет задания, пока очередь не опустеет.
func (p *Pool) drain(ctx context.Context, logger *slog.Logger) {
	for {
		if ctx.Err() != nil {
			return
		}

		job, err := p.jobs.ClaimNext(ctx)
		if err != nil {
			if !errors.Is(err, repo.ErrNotFound) {
				logger.Error("failed to claim job", "error", err)
			}
			return
		}

		telemetry.JobsClaimed.Inc()
		p.process(ctx, logger, job)
	}
}

// process выполняет одно захваченное задание.
func (p *Pool) process(ctx context.Context, logger *slog.Logger, job *domain.Job) {
	logger = telemetry.WithJobID(logger, job.ID.String()).With("job_type", job.Type)

	account := job.Account()
	platform := job.Platform()
	if account == "" || platform == "" {
		p.fail(ctx, logger, job, ErrMissingAccount.Error())
		return
	}

	executor, err := p.registry.Get(platform, job.Type)
	if err != nil {
		p.fail(ctx, logger, job, err.Error())
		return
	}

	sess, err := p.sessions.Get(ctx, session.Key{Account: account, Platform: platform})
	if err != nil {
		p.fail(ctx, logger, job, err.Error())
		return
	}

	logger.Info("executing job", "account", account, "platform", platform)

	start := time.Now()
	var result map[string]any
	doErr := sess.Do(ctx, func(drv session.Context) error {
		var execErr error
		result, execErr = executor.Execute(ctx, drv, job)
		return execErr
	})
	telemetry.JobDuration.WithLabelValues(string(job.Type)).Observe(time.Since(start).Seconds())

	if doErr != nil {
		p.fail(ctx, logger, job, doErr.Error())
		return
	}

	if err := p.jobs.Complete(ctx, job.ID, result); err != nil {
		logger.Error("failed to mark job completed", "error", err)
		return
	}

	job.MarkCompleted(result)
	telemetry.JobsCompleted.WithLabelValues(string(job.Type)).Inc()
	logger.Info("job completed", "duration", time.Since(start))

	p.publishCompleted(ctx, logger, job)
}

// fail фиксирует провал задания. Провал постоянен: retry нет,
// повторение активности обеспечат слоты следующего дня.
func (p *Pool) fail(ctx context.Context, logger *slog.Logger, job *domain.Job, errMsg string) {
	logger.Warn("job failed", "error", errMsg)

	if err := p.jobs.Fail(ctx, job.ID, errMsg); err != nil {
		logger.Error("failed to mark job failed", "error", err)
		return
	}

	job.MarkFailed(errMsg)
	telemetry.JobsFailed.WithLabelValues(string(job.Type)).Inc()

	p.publishCompleted(ctx, logger, job)
}

// publishCompleted публикует событие завершения (если есть MQ).
func (p *Pool) publishCompleted(ctx context.Context, logger *slog.Logger, job *domain.Job) {
	if p.publisher == nil {
		return
	}

	if err := p.publisher.PublishJobCompleted(ctx, job); err != nil {
		// Событие вспомогательное: диспетчер подтянет статус на тике.
		logger.Warn("failed to publish job completion", "error", err)
	}
}
