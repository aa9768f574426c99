package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/sellerhub/backend/internal/infrastructure/persistence"
	"github.com/sellerhub/backend/internal/infrastructure/scheduler"
	"github.com/sellerhub/backend/internal/interfaces/http/dto"
)

// recentJobsLimit bounds the job history slice in the health body
const recentJobsLimit = 20

// DatabaseChecker reports database connectivity and pool usage
type DatabaseChecker interface {
	Ping() error
	Stats() (persistence.ConnectionStats, error)
}

// QueueInspector reports the sync queue's backlog and recent jobs
type QueueInspector interface {
	Depth() int
	History(limit int) []*scheduler.SyncJob
}

// HealthHandler serves the health endpoint
type HealthHandler struct {
	BaseHandler
	db     DatabaseChecker
	queue  QueueInspector
	logger *zap.Logger
}

// NewHealthHandler creates a new HealthHandler
func NewHealthHandler(db DatabaseChecker, queue QueueInspector, logger *zap.Logger) *HealthHandler {
	return &HealthHandler{db: db, queue: queue, logger: logger}
}

// RegisterRoutes registers the health route
func (h *HealthHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/health", h.Health)
}

// DatabaseHealth reports database connectivity in the health body
type DatabaseHealth struct {
	Status          string `json:"status"`
	OpenConnections int    `json:"openConnections"`
	InUse           int    `json:"inUse"`
	Idle            int    `json:"idle"`
}

// QueueHealth reports the sync queue state in the health body
type QueueHealth struct {
	Depth      int          `json:"depth"`
	RecentJobs []JobSummary `json:"recentJobs"`
}

// JobSummary is one finished job in the health body
type JobSummary struct {
	ID          string     `json:"id"`
	Kind        string     `json:"kind"`
	StoreName   string     `json:"storeName"`
	Status      string     `json:"status"`
	Error       string     `json:"error,omitempty"`
	RetryCount  int        `json:"retryCount"`
	CompletedAt *time.Time `json:"completedAt,omitempty"`
}

// HealthResponse is the health endpoint body
type HealthResponse struct {
	Status   string         `json:"status"`
	Database DatabaseHealth `json:"database"`
	Queue    QueueHealth    `json:"queue"`
}

// Health reports process health: database connectivity plus the sync
// queue's backlog and recent job outcomes. A failed database ping degrades
// the overall status and the endpoint answers 503.
func (h *HealthHandler) Health(c *gin.Context) {
	resp := HealthResponse{Status: "ok"}

	if err := h.db.Ping(); err != nil {
		h.logger.Warn("health check database ping failed", zap.Error(err))
		resp.Status = "degraded"
		resp.Database.Status = "unreachable"
	} else {
		resp.Database.Status = "ok"
		if stats, err := h.db.Stats(); err == nil {
			resp.Database.OpenConnections = stats.OpenConnections
			resp.Database.InUse = stats.InUse
			resp.Database.Idle = stats.Idle
		}
	}

	resp.Queue.Depth = h.queue.Depth()
	jobs := h.queue.History(recentJobsLimit)
	resp.Queue.RecentJobs = make([]JobSummary, 0, len(jobs))
	for _, job := range jobs {
		resp.Queue.RecentJobs = append(resp.Queue.RecentJobs, JobSummary{
			ID:          job.ID.String(),
			Kind:        string(job.Kind),
			StoreName:   job.StoreName,
			Status:      string(job.Status),
			Error:       job.Error,
			RetryCount:  job.RetryCount,
			CompletedAt: job.CompletedAt,
		})
	}

	status := http.StatusOK
	if resp.Status != "ok" {
		status = http.StatusServiceUnavailable
	}
	c.JSON(status, dto.NewSuccessResponse(resp))
}
