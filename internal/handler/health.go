package handler

import (
	"context"
	"net/http"
	"time"

	"cobranza/internal/apierror"
	"cobranza/internal/infra"
	"cobranza/internal/worker"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"github.com/sony/gobreaker"
	"gorm.io/gorm"
)

// Health returns a JSON health check response.
// Checks DB and Redis connectivity; never exposes credentials or internals.
// Redis being down degrades async recomputation only, so it does not fail
// the check; the breaker state and DLQ size are reported for operators.
func Health(db *gorm.DB, rdb *redis.Client, cb *gobreaker.CircuitBreaker) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
		defer cancel()

		dbStatus := "connected"
		sqlDB, err := db.DB()
		if err != nil || sqlDB.PingContext(ctx) != nil {
			dbStatus = "error"
		}

		body := gin.H{"db": dbStatus}

		if rdb != nil {
			redisStatus := "connected"
			if rdb.Ping(ctx).Err() != nil {
				redisStatus = "error"
			} else if n, err := worker.DLQLength(ctx, rdb, worker.QueueRecuperacion); err == nil {
				body["dlq"] = n
			}
			body["redis"] = redisStatus
		}
		if cb != nil {
			body["breaker"] = cb.State().String()
		}

		status := http.StatusOK
		if dbStatus != "connected" {
			status = http.StatusServiceUnavailable
		}
		body["ok"] = status == http.StatusOK
		c.JSON(status, body)
	}
}

// Metrics serves the private Prometheus registry.
func Metrics(m *infra.Metrics) gin.HandlerFunc {
	h := promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{})
	return gin.WrapH(h)
}

// ReplayDLQ requeues parked recovery jobs. ?n bounds the batch (default 100).
func ReplayDLQ(rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		n, ok := queryInt(c, "n", 100)
		if !ok {
			return
		}
		if n == 0 {
			c.JSON(http.StatusBadRequest, apierror.New("n debe ser mayor a cero"))
			return
		}
		moved, err := worker.ReplayDLQ(c.Request.Context(), rdb, worker.QueueRecuperacion, n)
		if err != nil {
			log.Error().Err(err).Int("movidos", moved).Msg("replay dlq")
			c.JSON(http.StatusServiceUnavailable, apierror.New("Cola de trabajos no disponible"))
			return
		}
		c.JSON(http.StatusOK, gin.H{"reencolados": moved})
	}
}
