package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/sellerhub/backend/internal/infrastructure/persistence"
	"github.com/sellerhub/backend/internal/infrastructure/scheduler"
)

type fakeDatabaseChecker struct {
	pingErr error
	stats   persistence.ConnectionStats
}

func (f *fakeDatabaseChecker) Ping() error {
	return f.pingErr
}

func (f *fakeDatabaseChecker) Stats() (persistence.ConnectionStats, error) {
	return f.stats, nil
}

type fakeQueueInspector struct {
	depth   int
	history []*scheduler.SyncJob
}

func (f *fakeQueueInspector) Depth() int {
	return f.depth
}

func (f *fakeQueueInspector) History(limit int) []*scheduler.SyncJob {
	if limit > len(f.history) {
		limit = len(f.history)
	}
	return f.history[:limit]
}

func setupHealthRouter(t *testing.T, db DatabaseChecker, queue QueueInspector) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	engine := gin.New()
	h := NewHealthHandler(db, queue, zap.NewNop())
	h.RegisterRoutes(engine.Group("/api/v1"))
	return engine
}

func TestHealthHandler_Healthy(t *testing.T) {
	completed := time.Now()
	job := scheduler.NewSyncJob(scheduler.JobKindOrders, uuid.New(), "Alpha", 3)
	job.Status = scheduler.JobStatusSuccess
	job.CompletedAt = &completed

	db := &fakeDatabaseChecker{stats: persistence.ConnectionStats{OpenConnections: 4, InUse: 1, Idle: 3}}
	queue := &fakeQueueInspector{depth: 2, history: []*scheduler.SyncJob{job}}
	engine := setupHealthRouter(t, db, queue)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/health", nil)
	engine.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Data HealthResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "ok", resp.Data.Status)
	assert.Equal(t, "ok", resp.Data.Database.Status)
	assert.Equal(t, 4, resp.Data.Database.OpenConnections)
	assert.Equal(t, 2, resp.Data.Queue.Depth)
	require.Len(t, resp.Data.Queue.RecentJobs, 1)
	assert.Equal(t, "Alpha", resp.Data.Queue.RecentJobs[0].StoreName)
	assert.Equal(t, string(scheduler.JobStatusSuccess), resp.Data.Queue.RecentJobs[0].Status)
}

func TestHealthHandler_DatabaseDown(t *testing.T) {
	db := &fakeDatabaseChecker{pingErr: assert.AnError}
	engine := setupHealthRouter(t, db, &fakeQueueInspector{})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/health", nil)
	engine.ServeHTTP(w, req)

	require.Equal(t, http.StatusServiceUnavailable, w.Code)

	var resp struct {
		Data HealthResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "degraded", resp.Data.Status)
	assert.Equal(t, "unreachable", resp.Data.Database.Status)
}

func TestHealthHandler_HistoryLimit(t *testing.T) {
	history := make([]*scheduler.SyncJob, 0, 30)
	for i := 0; i < 30; i++ {
		history = append(history, scheduler.NewSyncJob(scheduler.JobKindProducts, uuid.New(), "Alpha", 0))
	}
	engine := setupHealthRouter(t, &fakeDatabaseChecker{}, &fakeQueueInspector{history: history})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/health", nil)
	engine.ServeHTTP(w, req)

	var resp struct {
		Data HealthResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Len(t, resp.Data.Queue.RecentJobs, recentJobsLimit)
}
