package notify

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"talentd/internal/logging"
)

// Worker defaults. The poll interval matches the cadence the pipeline was
// tuned for; wake-on-enqueue usually delivers well before a tick fires.
const (
	DefaultPollInterval = 3 * time.Second
	DefaultSendTimeout  = 10 * time.Second
	DefaultMaxAttempts  = 3
	defaultBackoffBase  = 2 * time.Second
	defaultBackoffMax   = 30 * time.Second
)

// DeadLetterSink receives jobs that exhausted their retry budget. Entries are
// kept for inspection rather than silently discarded.
type DeadLetterSink interface {
	InsertDeadLetter(ctx context.Context, job *Job) error
}

// WorkerStats is a point-in-time snapshot of delivery outcomes.
type WorkerStats struct {
	Sent         int64
	DeadLettered int64
	Retrying     bool
}

// Worker drains the notification queue one job at a time. It is the queue's
// only consumer and never overlaps its own delivery attempts, so a job can
// never be sent twice. Failed attempts are retried with bounded exponential
// backoff; jobs that exhaust the budget move to the dead-letter sink.
type Worker struct {
	queue        *Queue
	sender       Sender
	deadLetters  DeadLetterSink
	logger       *slog.Logger
	pollInterval time.Duration
	sendTimeout  time.Duration
	maxAttempts  int
	backoffBase  time.Duration
	backoffMax   time.Duration

	mu      sync.Mutex
	running bool
	cancel  context.CancelFunc
	wg      sync.WaitGroup

	held        *Job
	nextAttempt time.Time

	sent         int64
	deadLettered int64
}

// WorkerOption configures optional worker behavior.
type WorkerOption func(*Worker)

// WithPollInterval overrides the fallback sweep cadence.
func WithPollInterval(interval time.Duration) WorkerOption {
	return func(w *Worker) {
		if interval > 0 {
			w.pollInterval = interval
		}
	}
}

// WithSendTimeout bounds each delivery attempt. Timing out counts as a failure.
func WithSendTimeout(timeout time.Duration) WorkerOption {
	return func(w *Worker) {
		if timeout > 0 {
			w.sendTimeout = timeout
		}
	}
}

// WithMaxAttempts sets the retry budget before a job is dead-lettered.
func WithMaxAttempts(attempts int) WorkerOption {
	return func(w *Worker) {
		if attempts > 0 {
			w.maxAttempts = attempts
		}
	}
}

// WithBackoff overrides the retry backoff base and cap.
func WithBackoff(base, max time.Duration) WorkerOption {
	return func(w *Worker) {
		if base > 0 {
			w.backoffBase = base
		}
		if max > 0 {
			w.backoffMax = max
		}
	}
}

// NewWorker constructs a worker bound to a queue, sender, and dead-letter sink.
func NewWorker(queue *Queue, sender Sender, deadLetters DeadLetterSink, logger *slog.Logger, opts ...WorkerOption) *Worker {
	if logger == nil {
		logger = logging.NewNop()
	}
	w := &Worker{
		queue:        queue,
		sender:       sender,
		deadLetters:  deadLetters,
		logger:       logging.WithComponent(logger, "notify-worker"),
		pollInterval: DefaultPollInterval,
		sendTimeout:  DefaultSendTimeout,
		maxAttempts:  DefaultMaxAttempts,
		backoffBase:  defaultBackoffBase,
		backoffMax:   defaultBackoffMax,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Start begins background processing.
func (w *Worker) Start(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.running {
		return errors.New("notification worker already running")
	}
	runCtx, cancel := context.WithCancel(ctx)
	w.cancel = cancel
	w.running = true
	w.wg.Add(1)
	go w.run(runCtx)
	return nil
}

// Stop terminates background processing and waits for any in-flight attempt.
func (w *Worker) Stop() {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return
	}
	cancel := w.cancel
	w.running = false
	w.cancel = nil
	w.mu.Unlock()

	cancel()
	w.wg.Wait()
}

// Stats reports delivery counters.
func (w *Worker) Stats() WorkerStats {
	w.mu.Lock()
	defer w.mu.Unlock()
	return WorkerStats{
		Sent:         w.sent,
		DeadLettered: w.deadLettered,
		Retrying:     w.held != nil,
	}
}

func (w *Worker) run(ctx context.Context) {
	defer w.wg.Done()
	for {
		w.processOne(ctx)
		if ctx.Err() != nil {
			return
		}
		select {
		case <-ctx.Done():
			return
		case <-w.queue.Wake():
		case <-time.After(w.nextWait()):
		}
	}
}

// nextWait returns how long the worker may sleep: until the held job's next
// attempt is due, otherwise a full poll interval.
func (w *Worker) nextWait() time.Duration {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.held == nil {
		return w.pollInterval
	}
	wait := time.Until(w.nextAttempt)
	if wait < 0 {
		return 0
	}
	if wait > w.pollInterval {
		return w.pollInterval
	}
	return wait
}

// processOne performs at most one delivery attempt. A held job waiting out
// its backoff blocks new claims; the queue stays FIFO behind it.
func (w *Worker) processOne(ctx context.Context) {
	w.mu.Lock()
	job := w.held
	if job != nil && time.Now().Before(w.nextAttempt) {
		w.mu.Unlock()
		return
	}
	w.mu.Unlock()

	if job == nil {
		var ok bool
		job, ok = w.queue.Dequeue()
		if !ok {
			return
		}
	}

	w.attempt(ctx, job)
}

func (w *Worker) attempt(ctx context.Context, job *Job) {
	job.Attempts++

	sendCtx, cancel := context.WithTimeout(ctx, w.sendTimeout)
	err := w.sender.Send(sendCtx, job)
	cancel()

	if err == nil {
		job.Status = JobSent
		job.LastError = ""
		w.mu.Lock()
		w.held = nil
		w.sent++
		w.mu.Unlock()
		w.logger.Info("notification sent",
			logging.String("job_id", job.ID),
			logging.String("recipient", job.Recipient),
			logging.Int("attempts", job.Attempts),
		)
		return
	}

	job.LastError = err.Error()
	if ctx.Err() != nil && job.Attempts < w.maxAttempts {
		// Shutdown interrupted the attempt; keep the job held so a restart
		// of the loop does not double-count the budget.
		w.mu.Lock()
		w.held = job
		w.nextAttempt = time.Now()
		w.mu.Unlock()
		return
	}

	if job.Attempts >= w.maxAttempts {
		job.Status = JobFailed
		w.mu.Lock()
		w.held = nil
		w.deadLettered++
		w.mu.Unlock()
		w.logger.Error("notification failed permanently",
			logging.Error(err),
			logging.String("job_id", job.ID),
			logging.String("recipient", job.Recipient),
			logging.Int("attempts", job.Attempts),
		)
		if w.deadLetters != nil {
			// Detached context: the insert must survive shutdown cancellation.
			dlCtx, dlCancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer dlCancel()
			if dlErr := w.deadLetters.InsertDeadLetter(dlCtx, job); dlErr != nil {
				w.logger.Error("dead-letter insert failed; job lost",
					logging.Error(dlErr),
					logging.String("job_id", job.ID),
				)
			}
		}
		return
	}

	delay := w.backoff(job.Attempts)
	w.mu.Lock()
	w.held = job
	w.nextAttempt = time.Now().Add(delay)
	w.mu.Unlock()
	w.logger.Warn("notification attempt failed; will retry",
		logging.Error(err),
		logging.String("job_id", job.ID),
		logging.String("recipient", job.Recipient),
		logging.Int("attempts", job.Attempts),
		logging.Duration("retry_in", delay),
	)
}

func (w *Worker) backoff(attempts int) time.Duration {
	delay := w.backoffBase
	for i := 1; i < attempts; i++ {
		delay *= 2
		if delay >= w.backoffMax {
			return w.backoffMax
		}
	}
	if delay > w.backoffMax {
		return w.backoffMax
	}
	return delay
}
