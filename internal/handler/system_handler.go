package handler

import (
	"net/http"
	"time"

	"github.com/edumark/examly-backend/internal/config"
	"github.com/edumark/examly-backend/internal/response"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
)

// SystemHandler serves health and operational status endpoints.
type SystemHandler struct {
	pool      *pgxpool.Pool
	rdb       *redis.Client
	startTime time.Time
}

// NewSystemHandler creates a new SystemHandler.
func NewSystemHandler(pool *pgxpool.Pool, rdb *redis.Client) *SystemHandler {
	return &SystemHandler{
		pool:      pool,
		rdb:       rdb,
		startTime: time.Now(),
	}
}

// Health godoc
// GET /healthz
// Reports connectivity to Postgres and Redis.
func (h *SystemHandler) Health(c *gin.Context) {
	ctx := c.Request.Context()

	dbOK := h.pool.Ping(ctx) == nil
	redisOK := h.rdb.Ping(ctx).Err() == nil

	status := http.StatusOK
	if !dbOK || !redisOK {
		status = http.StatusServiceUnavailable
	}

	c.JSON(status, gin.H{
		"database": dbOK,
		"redis":    redisOK,
		"uptime":   time.Since(h.startTime).Round(time.Second).String(),
	})
}

// QueueStats godoc
// GET /api/v1/staff/system/queues
// Reports the reconcile queue depth.
func (h *SystemHandler) QueueStats(c *gin.Context) {
	depth, err := h.rdb.LLen(c.Request.Context(), config.WorkerKey.ReconcileResultsQueue).Result()
	if err != nil {
		response.Fail(c, http.StatusServiceUnavailable, response.ErrStorageUnavailable)
		return
	}
	response.Success(c, http.StatusOK, gin.H{
		"reconcile_results_queue": depth,
	})
}
