package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"cobranza/internal/infra"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"github.com/sony/gobreaker"
)

const (
	QueueRecuperacion = "jobs:recuperacion_prestamo"

	JobRecuperacion = "recuperacion_prestamo"
)

// Job is the generic envelope for all async tasks.
type Job struct {
	Type     string          `json:"type"`
	Payload  json.RawMessage `json:"payload"`
	Intentos int             `json:"intentos"`
}

// Dispatcher enqueues async jobs into Redis lists.
// The worker pool dequeues them via BRPOP.
type Dispatcher struct {
	rdb *redis.Client
	cb  *gobreaker.CircuitBreaker
}

func NewDispatcher(rdb *redis.Client, cb *gobreaker.CircuitBreaker) *Dispatcher {
	return &Dispatcher{rdb: rdb, cb: cb}
}

// EncolarRecuperacion schedules a recomputation of the loan's recovery
// statistics. Implements service.Encolador.
func (d *Dispatcher) EncolarRecuperacion(ctx context.Context, prestamoID uuid.UUID) error {
	return d.enqueue(ctx, QueueRecuperacion, JobRecuperacion, RecuperacionPayload{PrestamoID: prestamoID.String()})
}

func (d *Dispatcher) enqueue(ctx context.Context, queue, jobType string, payload interface{}) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	encoded, err := json.Marshal(Job{Type: jobType, Payload: data})
	if err != nil {
		return err
	}
	push := func() (interface{}, error) {
		return nil, d.rdb.LPush(ctx, queue, encoded).Err()
	}
	if d.cb == nil {
		_, err = push()
		return err
	}
	_, err = d.cb.Execute(push)
	return err
}

// Handler processes the payload of one job type.
type Handler interface {
	Process(ctx context.Context, payload json.RawMessage) error
}

// PoolConfig wires the handlers and retry policy of the pool.
type PoolConfig struct {
	Handlers    map[string]Handler
	Workers     int
	MaxIntentos int // attempts before a job goes to the DLQ
	Metrics     *infra.Metrics
}

var queues = []string{QueueRecuperacion}

// StartWorkerPool launches cfg.Workers goroutines consuming the job queues.
// Each goroutine blocks on BRPOP, zero CPU when idle.
func StartWorkerPool(ctx context.Context, rdb *redis.Client, cfg PoolConfig) {
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}
	if cfg.MaxIntentos <= 0 {
		cfg.MaxIntentos = 3
	}
	for i := 0; i < cfg.Workers; i++ {
		go runWorker(ctx, rdb, cfg, i)
	}
	log.Info().Msgf("worker pool started with %d workers", cfg.Workers)
}

func runWorker(ctx context.Context, rdb *redis.Client, cfg PoolConfig, id int) {
	for {
		select {
		case <-ctx.Done():
			log.Info().Msgf("worker %d shutting down", id)
			return
		default:
			// Blocking pop, waits up to 5s then loops to check ctx
			result, err := rdb.BRPop(ctx, 5*time.Second, queues...).Result()
			if err != nil {
				continue // timeout or context cancelled
			}
			if len(result) < 2 {
				continue
			}
			processJob(ctx, rdb, cfg, result[0], result[1])
		}
	}
}

// processJob runs one job. A failed job is pushed back with its attempt
// count incremented until MaxIntentos, then moved to the DLQ.
func processJob(ctx context.Context, rdb *redis.Client, cfg PoolConfig, queue, raw string) {
	var job Job
	if err := json.Unmarshal([]byte(raw), &job); err != nil {
		log.Error().Str("queue", queue).Err(err).Msg("failed to unmarshal job")
		SendToDLQ(ctx, rdb, queue, "desconocido", json.RawMessage(raw), "payload ilegible: "+err.Error(), 0)
		return
	}

	err := ejecutar(ctx, cfg.Handlers, job)
	cfg.Metrics.Job(job.Type, err)
	if err == nil {
		return
	}

	job.Intentos++
	if errors.Is(err, errJobInvalido) || job.Intentos >= cfg.MaxIntentos {
		SendToDLQ(ctx, rdb, queue, job.Type, job.Payload, err.Error(), job.Intentos)
		return
	}
	log.Warn().Err(err).Str("type", job.Type).Int("intentos", job.Intentos).Msg("job falló, reintentando")
	encoded, mErr := json.Marshal(job)
	if mErr != nil {
		log.Error().Err(mErr).Str("type", job.Type).Msg("no se pudo reencolar el job")
		return
	}
	if pErr := rdb.LPush(ctx, queue, encoded).Err(); pErr != nil {
		log.Error().Err(pErr).Str("queue", queue).Msg("no se pudo reencolar el job")
	}
}

// errJobInvalido marks failures that retrying cannot fix.
var errJobInvalido = errors.New("job inválido")

func ejecutar(ctx context.Context, handlers map[string]Handler, job Job) error {
	h, ok := handlers[job.Type]
	if !ok {
		return fmt.Errorf("%w: tipo %q sin handler", errJobInvalido, job.Type)
	}
	return h.Process(ctx, job.Payload)
}
