package daemon

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync/atomic"
	"time"

	"github.com/gofrs/flock"

	"talentd/internal/config"
	"talentd/internal/hiring"
	"talentd/internal/logging"
	"talentd/internal/notify"
	"talentd/internal/server"
	"talentd/internal/store"
)

// Daemon coordinates the background services and enforces single-instance
// execution.
type Daemon struct {
	cfg    *config.Config
	logger *slog.Logger
	store  *store.Store
	queue  *notify.Queue
	worker *notify.Worker
	server *server.Server

	lockPath string
	lock     *flock.Flock

	running atomic.Bool
	cancel  context.CancelFunc
}

// Status represents daemon runtime information.
type Status struct {
	Running         bool
	Worker          notify.WorkerStats
	QueueLength     int
	DeadLetterCount int
	DatabasePath    string
	LockFilePath    string
	APIAddress      string
}

// New opens the store and wires the notification pipeline and API server.
// The caller owns Close.
func New(cfg *config.Config, logger *slog.Logger) (*Daemon, error) {
	if cfg == nil || logger == nil {
		return nil, errors.New("daemon requires config and logger")
	}

	st, err := store.Open(cfg)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}

	queue := notify.NewQueue(cfg.Notifications.QueueCapacity)
	sender := notify.NewSender(cfg)
	worker := notify.NewWorker(queue, sender, st, logger,
		notify.WithPollInterval(time.Duration(cfg.Worker.PollInterval)*time.Second),
		notify.WithSendTimeout(time.Duration(cfg.Worker.SendTimeout)*time.Second),
		notify.WithMaxAttempts(cfg.Worker.MaxAttempts),
		notify.WithBackoff(
			time.Duration(cfg.Worker.RetryBackoff)*time.Second,
			time.Duration(cfg.Worker.RetryBackoffMax)*time.Second,
		),
	)
	svc := hiring.NewService(st, queue, logger)
	srv := server.New(cfg, svc, st, logger)

	lockPath := filepath.Join(cfg.Paths.LogDir, "talentd.lock")
	return &Daemon{
		cfg:      cfg,
		logger:   logging.WithComponent(logger, "daemon"),
		store:    st,
		queue:    queue,
		worker:   worker,
		server:   srv,
		lockPath: lockPath,
		lock:     flock.New(lockPath),
	}, nil
}

// Start acquires the daemon lock and launches the worker and API server.
func (d *Daemon) Start(ctx context.Context) error {
	if d.running.Load() {
		return errors.New("daemon already running")
	}

	ok, err := d.lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return errors.New("another talentd instance is already running")
	}

	runCtx, cancel := context.WithCancel(ctx)
	if err := d.worker.Start(runCtx); err != nil {
		_ = d.lock.Unlock()
		cancel()
		return fmt.Errorf("start worker: %w", err)
	}
	if err := d.server.Start(runCtx); err != nil {
		d.worker.Stop()
		_ = d.lock.Unlock()
		cancel()
		return fmt.Errorf("start api server: %w", err)
	}

	d.cancel = cancel
	d.running.Store(true)
	d.logger.Info("talentd daemon started",
		logging.String("lock", d.lockPath),
		logging.String("database", d.store.Path()))
	return nil
}

// Stop shuts down the API server and worker and releases the daemon lock.
// Undelivered queued notifications are discarded; dead letters already
// persisted survive in the store.
func (d *Daemon) Stop() {
	if !d.running.Load() {
		return
	}

	d.server.Stop()
	d.worker.Stop()
	if d.cancel != nil {
		d.cancel()
		d.cancel = nil
	}
	if err := d.lock.Unlock(); err != nil {
		d.logger.Warn("failed to release daemon lock", logging.Error(err))
	}
	d.running.Store(false)
	d.logger.Info("talentd daemon stopped")
}

// Close releases resources held by the daemon.
func (d *Daemon) Close() error {
	d.Stop()
	if d.store != nil {
		return d.store.Close()
	}
	return nil
}

// Store exposes the underlying store for maintenance commands.
func (d *Daemon) Store() *store.Store {
	return d.store
}

// Queue exposes the in-memory notification queue.
func (d *Daemon) Queue() *notify.Queue {
	return d.queue
}

// Status returns the current daemon status.
func (d *Daemon) Status(ctx context.Context) Status {
	deadLetters, err := d.store.DeadLetterCount(ctx)
	if err != nil {
		d.logger.Warn("count dead letters", logging.Error(err))
	}
	return Status{
		Running:         d.running.Load(),
		Worker:          d.worker.Stats(),
		QueueLength:     d.queue.Len(),
		DeadLetterCount: deadLetters,
		DatabasePath:    d.store.Path(),
		LockFilePath:    d.lockPath,
		APIAddress:      d.server.Addr(),
	}
}
