package worker

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/edumark/examly-backend/internal/config"
	"github.com/edumark/examly-backend/internal/model"
	"github.com/edumark/examly-backend/internal/service"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// AttemptSource resolves the sitting a reconcile job should score from.
type AttemptSource interface {
	BestCompletedByExamAndStudent(ctx context.Context, examID uuid.UUID, studentID int) (*model.Attempt, error)
}

// ResultSink persists reconciled results.
type ResultSink interface {
	BulkUpsert(ctx context.Context, results []model.Result) error
	Upsert(ctx context.Context, res *model.Result) error
}

const (
	// BatchSize caps how many reconcile jobs one bulk upsert carries.
	BatchSize = 50
	// BatchTimeout flushes a partial batch after this long.
	BatchTimeout = 2 * time.Second
	// PollTimeout is the BLPop block interval. Must be >= 1s for Redis.
	PollTimeout = 1 * time.Second
)

// ResultWorker drains the reconcile queue and upserts durable results. Each
// job is scored from the best completed sitting of its (exam, student) pair,
// so replaying a stale job never downgrades a better attempt. Jobs are
// idempotent and crash-and-requeue is always safe.
type ResultWorker struct {
	attempts AttemptSource
	results  ResultSink
	rdb      *redis.Client
	log      zerolog.Logger
}

// NewResultWorker creates a new ResultWorker.
func NewResultWorker(attempts AttemptSource, results ResultSink, rdb *redis.Client, log zerolog.Logger) *ResultWorker {
	return &ResultWorker{
		attempts: attempts,
		results:  results,
		rdb:      rdb,
		log:      log.With().Str("component", "result_worker").Logger(),
	}
}

// Start begins the infinite worker loop. Call in a goroutine.
func (w *ResultWorker) Start(ctx context.Context) {
	w.log.Info().Msg("Worker started")

	for {
		select {
		case <-ctx.Done():
			w.log.Info().Msg("Worker stopping...")
			// Drain remaining items before exit.
			w.drain(context.Background())
			w.log.Info().Msg("Worker stopped")
			return
		default:
			w.processBatch(ctx)
		}
	}
}

// processBatch collects up to BatchSize jobs (waiting at most BatchTimeout
// for stragglers) and reconciles them in one round trip.
func (w *ResultWorker) processBatch(ctx context.Context) {
	var raws []string
	deadline := time.Now().Add(BatchTimeout)

	for len(raws) < BatchSize && time.Now().Before(deadline) {
		result, err := w.rdb.BLPop(ctx, PollTimeout, config.WorkerKey.ReconcileResultsQueue).Result()
		if err != nil {
			if !errors.Is(err, redis.Nil) && ctx.Err() == nil {
				w.log.Error().Err(err).Msg("BLPop error")
			}
			if len(raws) == 0 {
				return
			}
			break
		}
		if len(result) < 2 {
			continue
		}
		raws = append(raws, result[1])
	}

	if len(raws) == 0 {
		return
	}
	w.reconcile(ctx, raws)
}

// reconcile resolves the best completed sitting behind each job and
// bulk-upserts the results. A failed bulk write falls back to per-item
// upserts so one bad row never poisons the batch; rows that still fail are
// pushed back for retry.
func (w *ResultWorker) reconcile(ctx context.Context, raws []string) {
	results := make([]model.Result, 0, len(raws))
	sources := make([]string, 0, len(raws))

	for _, raw := range raws {
		var job service.ReconcileJob
		if err := json.Unmarshal([]byte(raw), &job); err != nil {
			w.log.Error().Err(err).Msg("Unmarshal error, dropping job")
			continue
		}

		attempt, err := w.attempts.BestCompletedByExamAndStudent(ctx, job.ExamID, job.StudentID)
		if errors.Is(err, pgx.ErrNoRows) {
			// The sitting was abandoned after enqueue; nothing to record.
			w.log.Warn().
				Str("attempt_id", job.AttemptID.String()).
				Msg("No completed attempt for job, dropping")
			continue
		}
		if err != nil {
			w.log.Error().Err(err).
				Str("attempt_id", job.AttemptID.String()).
				Msg("Attempt load failed, requeueing")
			w.rdb.RPush(ctx, config.WorkerKey.ReconcileResultsQueue, raw)
			continue
		}

		results = append(results, model.Result{
			ExamID:    attempt.ExamID,
			StudentID: attempt.StudentID,
			Marks:     attempt.Score,
			Grade:     model.GradeFor(attempt.Percentage),
			GradedBy:  service.SystemGrader,
		})
		sources = append(sources, raw)
	}

	if len(results) == 0 {
		return
	}

	err := w.results.BulkUpsert(ctx, results)
	if err == nil {
		w.log.Info().Int("count", len(results)).Msg("Results reconciled")
		return
	}
	w.log.Error().Err(err).Int("count", len(results)).Msg("Bulk upsert failed, falling back to per-item")

	for i := range results {
		if err := w.results.Upsert(ctx, &results[i]); err != nil {
			w.log.Error().Err(err).
				Str("exam_id", results[i].ExamID.String()).
				Int("student_id", results[i].StudentID).
				Msg("Upsert failed, requeueing")
			w.rdb.RPush(ctx, config.WorkerKey.ReconcileResultsQueue, sources[i])
		}
	}
}

// drain processes all remaining queued jobs before shutdown.
func (w *ResultWorker) drain(ctx context.Context) {
	var raws []string
	for {
		raw, err := w.rdb.LPop(ctx, config.WorkerKey.ReconcileResultsQueue).Result()
		if err != nil {
			break
		}
		raws = append(raws, raw)
		if len(raws) == BatchSize {
			w.reconcile(ctx, raws)
			raws = raws[:0]
		}
	}
	if len(raws) > 0 {
		w.reconcile(ctx, raws)
	}
}
