package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/sellerhub/backend/internal/infrastructure/broadcast"
)

// ---------------------------------------------------------------------------
// Queue Config
// ---------------------------------------------------------------------------

// Config holds the sync job queue configuration
type Config struct {
	// Workers is the number of concurrent job workers
	Workers int
	// QueueSize is the job channel capacity
	QueueSize int
	// MaxRetries is the number of retries after a failed first attempt
	MaxRetries int
	// BackoffBase is the first retry delay, doubled on each further retry
	BackoffBase time.Duration
	// JobTimeout bounds a single execution attempt
	JobTimeout time.Duration
	// HistorySize is how many finished jobs are kept for inspection
	HistorySize int
}

// DefaultConfig returns the default queue configuration
func DefaultConfig() Config {
	return Config{
		Workers:     3,
		QueueSize:   100,
		MaxRetries:  3,
		BackoffBase: 10 * time.Second,
		JobTimeout:  10 * time.Minute,
		HistorySize: 100,
	}
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Workers <= 0 {
		return ErrInvalidConfig
	}
	if c.QueueSize <= 0 {
		return ErrInvalidConfig
	}
	if c.MaxRetries < 0 {
		return ErrInvalidConfig
	}
	if c.BackoffBase <= 0 {
		return ErrInvalidConfig
	}
	if c.JobTimeout <= 0 {
		return ErrInvalidConfig
	}
	return nil
}

// ---------------------------------------------------------------------------
// Executor
// ---------------------------------------------------------------------------

// Executor runs one sync job attempt and records its results on the job
type Executor interface {
	Execute(ctx context.Context, job *SyncJob) error
}

// Enqueuer accepts jobs for execution after an optional delay. The store
// scheduler depends on this instead of the concrete queue.
type Enqueuer interface {
	Enqueue(job *SyncJob, delay time.Duration) error
}

// ---------------------------------------------------------------------------
// Queue
// ---------------------------------------------------------------------------

// Queue is the in-process sync job queue. Jobs wait on a buffered channel
// served by a fixed worker pool; failed jobs are re-enqueued with
// exponential backoff until retries run out. Every job produces exactly one
// terminal broadcast event.
type Queue struct {
	config   Config
	executor Executor
	events   *broadcast.Broadcaster
	logger   *zap.Logger

	jobs      chan *SyncJob
	cancel    context.CancelFunc
	wg        sync.WaitGroup
	mu        sync.Mutex
	isRunning bool

	// Finished job history for monitoring (in-memory, bounded)
	historyMu sync.RWMutex
	history   []*SyncJob
}

var _ Enqueuer = (*Queue)(nil)

// NewQueue creates a new sync job queue
func NewQueue(config Config, executor Executor, events *broadcast.Broadcaster, logger *zap.Logger) (*Queue, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &Queue{
		config:   config,
		executor: executor,
		events:   events,
		logger:   logger,
		jobs:     make(chan *SyncJob, config.QueueSize),
		history:  make([]*SyncJob, 0, config.HistorySize),
	}, nil
}

// Start starts the worker pool
func (q *Queue) Start(ctx context.Context) error {
	q.mu.Lock()
	if q.isRunning {
		q.mu.Unlock()
		return nil
	}
	q.isRunning = true
	q.mu.Unlock()

	ctx, cancel := context.WithCancel(ctx)
	q.cancel = cancel

	for i := 0; i < q.config.Workers; i++ {
		q.wg.Add(1)
		go q.worker(ctx, i)
	}

	q.logger.Info("sync queue started",
		zap.Int("workers", q.config.Workers),
		zap.Duration("job_timeout", q.config.JobTimeout),
	)
	return nil
}

// Stop gracefully stops the queue. Jobs waiting on a retry timer when the
// queue stops are dropped.
func (q *Queue) Stop(ctx context.Context) error {
	q.mu.Lock()
	if !q.isRunning {
		q.mu.Unlock()
		return nil
	}
	q.isRunning = false
	// Closing under the mutex keeps a delayed submission from racing the
	// close and sending on a closed channel.
	close(q.jobs)
	q.mu.Unlock()

	if q.cancel != nil {
		q.cancel()
	}

	done := make(chan struct{})
	go func() {
		q.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		q.logger.Info("sync queue stopped gracefully")
		return nil
	case <-ctx.Done():
		q.logger.Warn("sync queue stop timed out")
		return ctx.Err()
	}
}

// Enqueue submits a job for execution after the given delay. A zero delay
// submits immediately; the scheduler uses positive delays to stagger store
// launches, the retry path uses them for backoff.
func (q *Queue) Enqueue(job *SyncJob, delay time.Duration) error {
	if delay <= 0 {
		return q.submit(job)
	}
	time.AfterFunc(delay, func() {
		if err := q.submit(job); err != nil {
			q.logger.Warn("delayed job submission failed",
				zap.String("job_id", job.ID.String()),
				zap.String("store_id", job.StoreID.String()),
				zap.Error(err),
			)
		}
	})
	return nil
}

// submit places the job on the channel without blocking. The send stays
// under the mutex so Stop cannot close the channel between the running
// check and the send.
func (q *Queue) submit(job *SyncJob) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if !q.isRunning {
		return ErrQueueNotRunning
	}

	select {
	case q.jobs <- job:
		q.logger.Debug("sync job submitted",
			zap.String("job_id", job.ID.String()),
			zap.String("kind", string(job.Kind)),
			zap.String("store_id", job.StoreID.String()),
		)
		return nil
	default:
		return ErrQueueFull
	}
}

// worker processes jobs from the queue
func (q *Queue) worker(ctx context.Context, workerID int) {
	defer q.wg.Done()

	for {
		select {
		case <-ctx.Done():
			return
		case job, ok := <-q.jobs:
			if !ok {
				return
			}
			q.processJob(ctx, job, workerID)
		}
	}
}

// processJob executes one attempt and handles retry or terminal reporting
func (q *Queue) processJob(ctx context.Context, job *SyncJob, workerID int) {
	job.Start()
	q.logger.Info("processing sync job",
		zap.Int("worker_id", workerID),
		zap.String("job_id", job.ID.String()),
		zap.String("kind", string(job.Kind)),
		zap.String("store_id", job.StoreID.String()),
		zap.Int("retry_count", job.RetryCount),
	)

	jobCtx, cancel := context.WithTimeout(ctx, q.config.JobTimeout)
	defer cancel()

	err := q.executor.Execute(jobCtx, job)
	if err != nil {
		job.Fail(err.Error())
		q.logger.Error("sync job failed",
			zap.Int("worker_id", workerID),
			zap.String("job_id", job.ID.String()),
			zap.String("kind", string(job.Kind)),
			zap.String("store_id", job.StoreID.String()),
			zap.Error(err),
		)

		if job.ShouldRetry() {
			job.ScheduleRetry(q.config.BackoffBase)
			delay := time.Until(*job.NextRetryAt)
			q.events.Info(fmt.Sprintf("retrying %s sync for %s in %s (attempt %d of %d)",
				kindLabel(job.Kind), job.StoreName, delay.Round(time.Second), job.RetryCount+1, job.MaxRetries+1))
			q.logger.Info("sync job scheduled for retry",
				zap.String("job_id", job.ID.String()),
				zap.Int("retry_count", job.RetryCount),
				zap.Int("max_retries", job.MaxRetries),
				zap.Time("next_retry_at", *job.NextRetryAt),
			)
			if err := q.Enqueue(job, delay); err != nil {
				q.logger.Warn("failed to re-queue sync job",
					zap.String("job_id", job.ID.String()),
					zap.Error(err),
				)
			}
			return
		}

		// Retries exhausted
		q.events.Error(fmt.Sprintf("%s sync failed for %s: %s",
			kindLabel(job.Kind), job.StoreName, job.Error))
		q.addToHistory(job)
		return
	}

	job.Succeed()
	q.events.Success(q.successMessage(job))
	q.logger.Info("sync job completed",
		zap.Int("worker_id", workerID),
		zap.String("job_id", job.ID.String()),
		zap.String("kind", string(job.Kind)),
		zap.String("store_id", job.StoreID.String()),
	)
	q.addToHistory(job)
}

func (q *Queue) successMessage(job *SyncJob) string {
	switch job.Kind {
	case JobKindProducts:
		return fmt.Sprintf("catalog refresh finished for %s: %d listings, %d created, %d updated",
			job.StoreName, job.ListingsFetched, job.ProductsCreated, job.ProductsUpdated)
	default:
		return fmt.Sprintf("order sync finished for %s: %d fetched, %d created, %d skipped, %d failed, %d stock alerts",
			job.StoreName, job.OrdersFetched, job.OrdersCreated, job.OrdersSkipped, job.OrdersFailed, job.StockAlerts)
	}
}

func kindLabel(kind JobKind) string {
	if kind == JobKindProducts {
		return "catalog"
	}
	return "order"
}

// addToHistory adds a finished job to the bounded history, newest first
func (q *Queue) addToHistory(job *SyncJob) {
	q.historyMu.Lock()
	defer q.historyMu.Unlock()

	q.history = append([]*SyncJob{job}, q.history...)
	if len(q.history) > q.config.HistorySize {
		q.history = q.history[:q.config.HistorySize]
	}
}

// History returns the most recent finished jobs
func (q *Queue) History(limit int) []*SyncJob {
	q.historyMu.RLock()
	defer q.historyMu.RUnlock()

	if limit <= 0 || limit > len(q.history) {
		limit = len(q.history)
	}
	result := make([]*SyncJob, limit)
	copy(result, q.history[:limit])
	return result
}

// Depth returns the number of jobs currently waiting on the channel
func (q *Queue) Depth() int {
	return len(q.jobs)
}
