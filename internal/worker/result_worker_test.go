package worker

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"testing"

	"github.com/edumark/examly-backend/internal/model"
	"github.com/edumark/examly-backend/internal/service"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeAttemptSource serves canned best-completed attempts per (exam, student)
// pair, returning pgx.ErrNoRows when the pair has none.
type fakeAttemptSource struct {
	best map[string]*model.Attempt
	err  error
}

func pairKey(examID uuid.UUID, studentID int) string {
	return examID.String() + ":" + strconv.Itoa(studentID)
}

func (s *fakeAttemptSource) BestCompletedByExamAndStudent(_ context.Context, examID uuid.UUID, studentID int) (*model.Attempt, error) {
	if s.err != nil {
		return nil, s.err
	}
	a, ok := s.best[pairKey(examID, studentID)]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	cp := *a
	return &cp, nil
}

type fakeResultSink struct {
	bulk     [][]model.Result
	upserts  []model.Result
	bulkErr  error
	itemErrs map[int]error
}

func (s *fakeResultSink) BulkUpsert(_ context.Context, results []model.Result) error {
	if s.bulkErr != nil {
		return s.bulkErr
	}
	s.bulk = append(s.bulk, results)
	return nil
}

func (s *fakeResultSink) Upsert(_ context.Context, res *model.Result) error {
	if err := s.itemErrs[res.StudentID]; err != nil {
		return err
	}
	s.upserts = append(s.upserts, *res)
	return nil
}

func rawJob(t *testing.T, examID uuid.UUID, studentID int) string {
	t.Helper()
	raw, err := json.Marshal(service.ReconcileJob{
		AttemptID: uuid.New(),
		ExamID:    examID,
		StudentID: studentID,
	})
	require.NoError(t, err)
	return string(raw)
}

func TestReconcileRecordsBestCompletedSitting(t *testing.T) {
	examID := uuid.New()
	source := &fakeAttemptSource{best: map[string]*model.Attempt{
		pairKey(examID, 1): {ExamID: examID, StudentID: 1, Score: 9, MaxScore: 10, Percentage: 90, Status: model.AttemptStatusCompleted},
	}}
	sink := &fakeResultSink{}
	w := NewResultWorker(source, sink, nil, zerolog.Nop())

	// The job references a retake; the recorded result still carries the
	// pair's best sitting.
	w.reconcile(context.Background(), []string{rawJob(t, examID, 1)})

	require.Len(t, sink.bulk, 1)
	require.Len(t, sink.bulk[0], 1)
	res := sink.bulk[0][0]
	assert.Equal(t, 9, res.Marks)
	assert.Equal(t, model.GradeAPlus, res.Grade)
	assert.Equal(t, service.SystemGrader, res.GradedBy)
}

func TestReconcileDropsPairWithoutCompletedAttempt(t *testing.T) {
	sink := &fakeResultSink{}
	w := NewResultWorker(&fakeAttemptSource{}, sink, nil, zerolog.Nop())

	w.reconcile(context.Background(), []string{rawJob(t, uuid.New(), 1)})

	assert.Empty(t, sink.bulk, "abandoned-after-enqueue jobs never write")
	assert.Empty(t, sink.upserts)
}

func TestReconcileDropsMalformedJob(t *testing.T) {
	sink := &fakeResultSink{}
	w := NewResultWorker(&fakeAttemptSource{}, sink, nil, zerolog.Nop())

	w.reconcile(context.Background(), []string{"{not json"})

	assert.Empty(t, sink.bulk)
}

func TestReconcileFallsBackToPerItemUpserts(t *testing.T) {
	examID := uuid.New()
	source := &fakeAttemptSource{best: map[string]*model.Attempt{
		pairKey(examID, 1): {ExamID: examID, StudentID: 1, Score: 4, MaxScore: 10, Percentage: 40, Status: model.AttemptStatusCompleted},
		pairKey(examID, 2): {ExamID: examID, StudentID: 2, Score: 8, MaxScore: 10, Percentage: 80, Status: model.AttemptStatusCompleted},
	}}
	sink := &fakeResultSink{bulkErr: errors.New("bulk write refused")}
	w := NewResultWorker(source, sink, nil, zerolog.Nop())

	w.reconcile(context.Background(), []string{rawJob(t, examID, 1), rawJob(t, examID, 2)})

	require.Len(t, sink.upserts, 2, "every row lands individually when the bulk path fails")
	assert.Equal(t, model.GradeD, sink.upserts[0].Grade)
	assert.Equal(t, model.GradeA, sink.upserts[1].Grade)
}
