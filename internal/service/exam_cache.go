package service

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/edumark/examly-backend/internal/config"
	"github.com/edumark/examly-backend/internal/model"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// ReconcileJob is one queued result-reconciliation task. The worker drains
// these from the reconcile queue and upserts durable results.
type ReconcileJob struct {
	AttemptID uuid.UUID `json:"attempt_id"`
	ExamID    uuid.UUID `json:"exam_id"`
	StudentID int       `json:"student_id"`
}

// RedisExamCache is the fast lane for the submission path: exam payloads and
// answer keys live in Redis so grading never waits on Postgres. It also
// carries the monitor pub/sub stream and the reconcile queue.
type RedisExamCache struct {
	rdb *redis.Client
	log zerolog.Logger
}

// NewRedisExamCache creates a new RedisExamCache.
func NewRedisExamCache(rdb *redis.Client, log zerolog.Logger) *RedisExamCache {
	return &RedisExamCache{
		rdb: rdb,
		log: log.With().Str("component", "exam_cache").Logger(),
	}
}

// SetPayload caches the student-facing exam payload until expiry.
func (c *RedisExamCache) SetPayload(ctx context.Context, payload *model.ExamPayload, ttl time.Duration) error {
	raw, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	return c.rdb.Set(ctx, config.CacheKey.ExamPayloadKey(payload.ExamID.String()), raw, ttl).Err()
}

// GetPayload returns the cached exam payload, or (nil, nil) on a miss so the
// caller falls back to storage.
func (c *RedisExamCache) GetPayload(ctx context.Context, examID uuid.UUID) (*model.ExamPayload, error) {
	raw, err := c.rdb.Get(ctx, config.CacheKey.ExamPayloadKey(examID.String())).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	payload := &model.ExamPayload{}
	if err := json.Unmarshal(raw, payload); err != nil {
		return nil, err
	}
	return payload, nil
}

// SetAnswerKey caches an exam's grading key until expiry.
func (c *RedisExamCache) SetAnswerKey(ctx context.Context, examID uuid.UUID, key map[uuid.UUID]model.AnswerKeyEntry, ttl time.Duration) error {
	raw, err := json.Marshal(key)
	if err != nil {
		return err
	}
	return c.rdb.Set(ctx, config.CacheKey.ExamAnswerKey(examID.String()), raw, ttl).Err()
}

// GetAnswerKey returns the cached grading key, or (nil, nil) on a miss.
func (c *RedisExamCache) GetAnswerKey(ctx context.Context, examID uuid.UUID) (map[uuid.UUID]model.AnswerKeyEntry, error) {
	raw, err := c.rdb.Get(ctx, config.CacheKey.ExamAnswerKey(examID.String())).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	key := map[uuid.UUID]model.AnswerKeyEntry{}
	if err := json.Unmarshal(raw, &key); err != nil {
		return nil, err
	}
	return key, nil
}

// Invalidate drops an exam's cached payload and answer key.
func (c *RedisExamCache) Invalidate(ctx context.Context, examID uuid.UUID) error {
	return c.rdb.Del(ctx,
		config.CacheKey.ExamPayloadKey(examID.String()),
		config.CacheKey.ExamAnswerKey(examID.String()),
	).Err()
}

// PublishMonitorEvent fans an event out to the exam's monitor channel.
// Publish failures are logged and swallowed: the monitor is advisory and
// must never fail a student's submission.
func (c *RedisExamCache) PublishMonitorEvent(ctx context.Context, event model.MonitorEvent) {
	raw, err := json.Marshal(event)
	if err != nil {
		c.log.Error().Err(err).Msg("marshal monitor event")
		return
	}
	if err := c.rdb.Publish(ctx, config.CacheKey.ExamMonitorChannel(event.ExamID.String()), raw).Err(); err != nil {
		c.log.Warn().Err(err).
			Str("exam_id", event.ExamID.String()).
			Str("type", string(event.Type)).
			Msg("publish monitor event failed")
	}
}

// EnqueueReconcile appends a result-reconciliation job to the tail of the
// worker queue. The worker pops from the head, so jobs drain in submission
// order.
func (c *RedisExamCache) EnqueueReconcile(ctx context.Context, job ReconcileJob) error {
	raw, err := json.Marshal(job)
	if err != nil {
		return err
	}
	return c.rdb.RPush(ctx, config.WorkerKey.ReconcileResultsQueue, raw).Err()
}
