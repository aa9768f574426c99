package scheduler

import (
	"time"

	"github.com/google/uuid"
)

// maxRetryDelay caps the exponential backoff
const maxRetryDelay = 30 * time.Minute

// ---------------------------------------------------------------------------
// Sync Job Types
// ---------------------------------------------------------------------------

// JobKind distinguishes order sync jobs from catalog refresh jobs
type JobKind string

const (
	JobKindOrders   JobKind = "ORDERS"
	JobKindProducts JobKind = "PRODUCTS"
)

// JobStatus represents the status of a sync job
type JobStatus string

const (
	JobStatusPending JobStatus = "PENDING"
	JobStatusRunning JobStatus = "RUNNING"
	JobStatusSuccess JobStatus = "SUCCESS"
	JobStatusFailed  JobStatus = "FAILED"
)

// SyncJob is one scheduled unit of work: a full sync pass of one store.
// A job that fails is retried with exponential backoff until it either
// succeeds or exhausts its retries; both ends are terminal.
type SyncJob struct {
	ID          uuid.UUID
	Kind        JobKind
	StoreID     uuid.UUID
	StoreName   string
	Status      JobStatus
	Error       string
	EnqueuedAt  time.Time
	StartedAt   *time.Time
	CompletedAt *time.Time
	RetryCount  int
	MaxRetries  int
	NextRetryAt *time.Time

	// Order sync results
	OrdersFetched  int
	OrdersCreated  int
	OrdersSkipped  int
	OrdersFailed   int
	StockAlerts    int
	ChannelsFailed int

	// Catalog refresh results
	ListingsFetched int
	ProductsCreated int
	ProductsUpdated int
}

// NewSyncJob creates a new pending sync job for a store
func NewSyncJob(kind JobKind, storeID uuid.UUID, storeName string, maxRetries int) *SyncJob {
	return &SyncJob{
		ID:         uuid.New(),
		Kind:       kind,
		StoreID:    storeID,
		StoreName:  storeName,
		Status:     JobStatusPending,
		EnqueuedAt: time.Now(),
		MaxRetries: maxRetries,
	}
}

// Start marks the job as running
func (j *SyncJob) Start() {
	now := time.Now()
	j.Status = JobStatusRunning
	j.StartedAt = &now
	j.Error = ""
}

// Succeed marks the job as successful
func (j *SyncJob) Succeed() {
	now := time.Now()
	j.Status = JobStatusSuccess
	j.CompletedAt = &now
}

// Fail marks the job as failed
func (j *SyncJob) Fail(err string) {
	now := time.Now()
	j.Status = JobStatusFailed
	j.CompletedAt = &now
	j.Error = err
}

// ShouldRetry returns true if the job has retries left
func (j *SyncJob) ShouldRetry() bool {
	return j.Status == JobStatusFailed && j.RetryCount < j.MaxRetries
}

// ScheduleRetry schedules the job for retry with exponential backoff:
// baseDelay * 2^(retryCount-1), so a 10s base yields 10s, 20s, 40s.
func (j *SyncJob) ScheduleRetry(baseDelay time.Duration) {
	j.RetryCount++
	j.Status = JobStatusPending
	delay := baseDelay * time.Duration(1<<(j.RetryCount-1))
	if delay > maxRetryDelay {
		delay = maxRetryDelay
	}
	nextRetry := time.Now().Add(delay)
	j.NextRetryAt = &nextRetry
	j.CompletedAt = nil
	j.Error = ""
}

// IsTerminal reports whether the job reached a final state
func (j *SyncJob) IsTerminal() bool {
	return j.Status == JobStatusSuccess ||
		(j.Status == JobStatusFailed && j.RetryCount >= j.MaxRetries)
}
