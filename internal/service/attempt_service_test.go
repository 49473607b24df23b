package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/edumark/examly-backend/internal/model"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	testStart = time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	testEnd   = testStart.Add(2 * time.Hour)
)

func activeExam() *model.Exam {
	return &model.Exam{
		ID:           uuid.New(),
		OwnerID:      7,
		ClassID:      1,
		AttemptQuota: 2,
		TotalMarks:   10,
		StartAt:      testStart,
		EndAt:        testEnd,
		Status:       model.ExamStatusActive,
	}
}

// gradedQuestions is a two-question set: a single choice worth 4 and a multi
// choice worth 6.
func gradedQuestions() (q1, q2 model.Question) {
	q1 = model.Question{
		ID:             uuid.New(),
		Type:           model.QuestionTypeSingleChoice,
		Options:        []string{"a", "b", "c"},
		CorrectOptions: []string{"b"},
		Points:         4,
	}
	q2 = model.Question{
		ID:             uuid.New(),
		Type:           model.QuestionTypeMultiChoice,
		Options:        []string{"a", "b", "c", "d"},
		CorrectOptions: []string{"a", "c"},
		Points:         6,
	}
	return q1, q2
}

func newTestAttemptService(exams *fakeExamStore, attempts *fakeAttemptStore, questions *fakeQuestionStore, at time.Time) (*AttemptService, *fakeQueue, *fakeMonitor) {
	queue := &fakeQueue{}
	monitor := &fakeMonitor{}
	svc := NewAttemptService(exams, attempts, questions, &fakeKeyCache{}, queue, &fakeRecorder{}, monitor, zerolog.Nop())
	svc.now = func() time.Time { return at }
	return svc, queue, monitor
}

func TestBeginInsideWindow(t *testing.T) {
	exam := activeExam()
	exams := newFakeExamStore(exam)
	attempts := newFakeAttemptStore()
	svc, _, monitor := newTestAttemptService(exams, attempts, &fakeQuestionStore{}, testStart.Add(time.Minute))

	attempt, err := svc.Begin(context.Background(), exam.ID, 42)
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, attempt.ID)
	assert.Equal(t, model.AttemptStatusInProgress, attempt.Status)
	assert.Equal(t, exam.TotalMarks, attempt.MaxScore, "max score snapshots total marks")
	assert.Equal(t, []model.MonitorEventType{model.MonitorAttemptStarted}, monitor.eventTypes())
}

func TestBeginRejectsScheduledExam(t *testing.T) {
	exam := activeExam()
	exam.Status = model.ExamStatusScheduled
	svc, _, _ := newTestAttemptService(newFakeExamStore(exam), newFakeAttemptStore(), &fakeQuestionStore{}, testStart.Add(time.Minute))

	_, err := svc.Begin(context.Background(), exam.ID, 42)
	assert.ErrorIs(t, err, ErrExamNotOpen)
}

func TestBeginAfterWindowPersistsCompletion(t *testing.T) {
	exam := activeExam()
	exams := newFakeExamStore(exam)
	svc, _, _ := newTestAttemptService(exams, newFakeAttemptStore(), &fakeQuestionStore{}, testEnd.Add(time.Minute))

	_, err := svc.Begin(context.Background(), exam.ID, 42)
	assert.ErrorIs(t, err, ErrExamNotOpen)
	assert.Equal(t, model.ExamStatusCompleted, exams.status(exam.ID), "lazy catch-up writes the stored row")
}

func TestBeginQuotaExceeded(t *testing.T) {
	exam := activeExam()
	exam.AttemptQuota = 1
	prior := &model.Attempt{ID: uuid.New(), ExamID: exam.ID, StudentID: 42, Status: model.AttemptStatusCompleted}
	svc, _, _ := newTestAttemptService(newFakeExamStore(exam), newFakeAttemptStore(prior), &fakeQuestionStore{}, testStart.Add(time.Minute))

	_, err := svc.Begin(context.Background(), exam.ID, 42)
	assert.ErrorIs(t, err, ErrQuotaExceeded)
}

func TestBeginAbandonedAttemptsDoNotCountAgainstQuota(t *testing.T) {
	exam := activeExam()
	exam.AttemptQuota = 1
	prior := &model.Attempt{ID: uuid.New(), ExamID: exam.ID, StudentID: 42, Status: model.AttemptStatusAbandoned}
	svc, _, _ := newTestAttemptService(newFakeExamStore(exam), newFakeAttemptStore(prior), &fakeQuestionStore{}, testStart.Add(time.Minute))

	_, err := svc.Begin(context.Background(), exam.ID, 42)
	assert.NoError(t, err)
}

func TestBeginAllowsParallelSittingsUnderQuota(t *testing.T) {
	exam := activeExam()
	exam.AttemptQuota = 2
	svc, _, _ := newTestAttemptService(newFakeExamStore(exam), newFakeAttemptStore(), &fakeQuestionStore{}, testStart.Add(time.Minute))

	first, err := svc.Begin(context.Background(), exam.ID, 42)
	require.NoError(t, err)

	// The first sitting is still open; quota, not open-sitting count, is
	// what gates the second begin.
	second, err := svc.Begin(context.Background(), exam.ID, 42)
	require.NoError(t, err)
	assert.NotEqual(t, first.ID, second.ID)
	assert.Equal(t, model.AttemptStatusInProgress, second.Status)

	_, err = svc.Begin(context.Background(), exam.ID, 42)
	assert.ErrorIs(t, err, ErrQuotaExceeded)
}

func TestBeginConcurrentNeverOvershootsQuota(t *testing.T) {
	exam := activeExam()
	exam.AttemptQuota = 2
	svc, _, _ := newTestAttemptService(newFakeExamStore(exam), newFakeAttemptStore(), &fakeQuestionStore{}, testStart.Add(time.Minute))

	const racers = 10
	var wg sync.WaitGroup
	errs := make([]error, racers)
	for i := 0; i < racers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = svc.Begin(context.Background(), exam.ID, 42)
		}(i)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
		} else {
			assert.ErrorIs(t, err, ErrQuotaExceeded)
		}
	}
	assert.Equal(t, 2, succeeded)
}

func TestSubmitGradesAnswers(t *testing.T) {
	exam := activeExam()
	q1, q2 := gradedQuestions()
	exams := newFakeExamStore(exam)
	exams.refs[exam.ID] = []model.ExamQuestionRef{
		{QuestionID: q1.ID, Position: 1},
		{QuestionID: q2.ID, Position: 2},
	}
	attempt := &model.Attempt{ID: uuid.New(), ExamID: exam.ID, StudentID: 42, MaxScore: 10, Status: model.AttemptStatusInProgress}
	attempts := newFakeAttemptStore(attempt)
	svc, queue, monitor := newTestAttemptService(exams, attempts, &fakeQuestionStore{questions: []model.Question{q1, q2}}, testStart.Add(time.Hour))

	got, err := svc.Submit(context.Background(), attempt.ID, 42, []model.SubmittedAnswer{
		{QuestionID: q1.ID, Selected: []string{"b"}},
		{QuestionID: q2.ID, Selected: []string{"c", "a"}},
	})
	require.NoError(t, err)
	assert.Equal(t, model.AttemptStatusCompleted, got.Status)
	assert.Equal(t, 10, got.Score)
	assert.Equal(t, 100.0, got.Percentage)
	assert.Equal(t, model.RatingExcellent, got.Rating)
	assert.False(t, got.Late)
	require.Len(t, got.Answers, 2)
	assert.True(t, got.Answers[0].Correct)
	assert.True(t, got.Answers[1].Correct, "multi choice compares as a set")
	require.Len(t, queue.jobs, 1)
	assert.Equal(t, got.ID, queue.jobs[0].AttemptID)
	assert.Equal(t, []model.MonitorEventType{model.MonitorAttemptSubmitted}, monitor.eventTypes())
}

func TestSubmitAfterWindowIsAcceptedLate(t *testing.T) {
	exam := activeExam()
	q1, q2 := gradedQuestions()
	exams := newFakeExamStore(exam)
	exams.refs[exam.ID] = []model.ExamQuestionRef{{QuestionID: q1.ID, Position: 1}, {QuestionID: q2.ID, Position: 2}}
	attempt := &model.Attempt{ID: uuid.New(), ExamID: exam.ID, StudentID: 42, MaxScore: 10, Status: model.AttemptStatusInProgress}
	svc, _, _ := newTestAttemptService(exams, newFakeAttemptStore(attempt), &fakeQuestionStore{questions: []model.Question{q1, q2}}, testEnd.Add(5*time.Minute))

	got, err := svc.Submit(context.Background(), attempt.ID, 42, []model.SubmittedAnswer{{QuestionID: q1.ID, Selected: []string{"b"}}})
	require.NoError(t, err)
	assert.True(t, got.Late)
	assert.Equal(t, model.AttemptStatusCompleted, got.Status)
	assert.Equal(t, 4, got.Score)
}

func TestSubmitTwiceFails(t *testing.T) {
	exam := activeExam()
	q1, q2 := gradedQuestions()
	exams := newFakeExamStore(exam)
	exams.refs[exam.ID] = []model.ExamQuestionRef{{QuestionID: q1.ID, Position: 1}, {QuestionID: q2.ID, Position: 2}}
	attempt := &model.Attempt{ID: uuid.New(), ExamID: exam.ID, StudentID: 42, MaxScore: 10, Status: model.AttemptStatusInProgress}
	svc, _, _ := newTestAttemptService(exams, newFakeAttemptStore(attempt), &fakeQuestionStore{questions: []model.Question{q1, q2}}, testStart.Add(time.Hour))

	_, err := svc.Submit(context.Background(), attempt.ID, 42, nil)
	require.NoError(t, err)

	_, err = svc.Submit(context.Background(), attempt.ID, 42, nil)
	assert.ErrorIs(t, err, ErrAlreadyFinalized)
}

func TestSubmitHidesForeignAttempt(t *testing.T) {
	exam := activeExam()
	attempt := &model.Attempt{ID: uuid.New(), ExamID: exam.ID, StudentID: 42, Status: model.AttemptStatusInProgress}
	svc, _, _ := newTestAttemptService(newFakeExamStore(exam), newFakeAttemptStore(attempt), &fakeQuestionStore{}, testStart.Add(time.Hour))

	_, err := svc.Submit(context.Background(), attempt.ID, 99, nil)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSubmitFallsBackToDirectRecordingWhenQueueDown(t *testing.T) {
	exam := activeExam()
	q1, q2 := gradedQuestions()
	exams := newFakeExamStore(exam)
	exams.refs[exam.ID] = []model.ExamQuestionRef{{QuestionID: q1.ID, Position: 1}, {QuestionID: q2.ID, Position: 2}}
	attempt := &model.Attempt{ID: uuid.New(), ExamID: exam.ID, StudentID: 42, MaxScore: 10, Status: model.AttemptStatusInProgress}

	queue := &fakeQueue{err: context.DeadlineExceeded}
	recorder := &fakeRecorder{}
	svc := NewAttemptService(exams, newFakeAttemptStore(attempt), &fakeQuestionStore{questions: []model.Question{q1, q2}}, &fakeKeyCache{}, queue, recorder, &fakeMonitor{}, zerolog.Nop())
	svc.now = func() time.Time { return testStart.Add(time.Hour) }

	got, err := svc.Submit(context.Background(), attempt.ID, 42, []model.SubmittedAnswer{{QuestionID: q1.ID, Selected: []string{"b"}}})
	require.NoError(t, err, "a broken queue never fails the submission")
	require.Len(t, recorder.recorded, 1)
	assert.Equal(t, got.ID, recorder.recorded[0].ID)
}

func TestSubmitUsesCachedAnswerKey(t *testing.T) {
	exam := activeExam()
	q1, q2 := gradedQuestions()
	exams := newFakeExamStore(exam)
	exams.refs[exam.ID] = []model.ExamQuestionRef{{QuestionID: q1.ID, Position: 1}, {QuestionID: q2.ID, Position: 2}}
	attempt := &model.Attempt{ID: uuid.New(), ExamID: exam.ID, StudentID: 42, MaxScore: 10, Status: model.AttemptStatusInProgress}

	// No questions in storage: grading must come from the cached key.
	cache := &fakeKeyCache{key: buildAnswerKey([]model.Question{q1, q2})}
	svc := NewAttemptService(exams, newFakeAttemptStore(attempt), &fakeQuestionStore{}, cache, &fakeQueue{}, &fakeRecorder{}, &fakeMonitor{}, zerolog.Nop())
	svc.now = func() time.Time { return testStart.Add(time.Hour) }

	got, err := svc.Submit(context.Background(), attempt.ID, 42, []model.SubmittedAnswer{{QuestionID: q2.ID, Selected: []string{"a", "c"}}})
	require.NoError(t, err)
	assert.Equal(t, 6, got.Score)
}

func TestAbandonVoidsAttempt(t *testing.T) {
	exam := activeExam()
	attempt := &model.Attempt{ID: uuid.New(), ExamID: exam.ID, StudentID: 42, Status: model.AttemptStatusInProgress}
	attempts := newFakeAttemptStore(attempt)
	svc, queue, monitor := newTestAttemptService(newFakeExamStore(exam), attempts, &fakeQuestionStore{}, testStart.Add(time.Hour))

	got, err := svc.Abandon(context.Background(), attempt.ID, 42)
	require.NoError(t, err)
	assert.Equal(t, model.AttemptStatusAbandoned, got.Status)
	assert.Empty(t, queue.jobs, "abandoned attempts never reach the result pipeline")
	assert.Equal(t, []model.MonitorEventType{model.MonitorAttemptAbandoned}, monitor.eventTypes())
}

func TestCurrentReturnsOpenSitting(t *testing.T) {
	exam := activeExam()
	attempts := newFakeAttemptStore()
	svc, _, _ := newTestAttemptService(newFakeExamStore(exam), attempts, &fakeQuestionStore{}, testStart.Add(time.Minute))

	_, err := svc.Current(context.Background(), exam.ID, 42)
	assert.ErrorIs(t, err, ErrNotFound, "no sitting open yet")

	begun, err := svc.Begin(context.Background(), exam.ID, 42)
	require.NoError(t, err)

	current, err := svc.Current(context.Background(), exam.ID, 42)
	require.NoError(t, err)
	assert.Equal(t, begun.ID, current.ID)

	_, err = svc.Current(context.Background(), exam.ID, 99)
	assert.ErrorIs(t, err, ErrNotFound, "another student sees nothing")
}

func TestQuotaRemaining(t *testing.T) {
	exam := activeExam()
	exam.AttemptQuota = 3
	a1 := &model.Attempt{ID: uuid.New(), ExamID: exam.ID, StudentID: 42, Status: model.AttemptStatusCompleted}
	a2 := &model.Attempt{ID: uuid.New(), ExamID: exam.ID, StudentID: 42, Status: model.AttemptStatusAbandoned}
	svc, _, _ := newTestAttemptService(newFakeExamStore(exam), newFakeAttemptStore(a1, a2), &fakeQuestionStore{}, testStart)

	remaining, err := svc.QuotaRemaining(context.Background(), exam, 42)
	require.NoError(t, err)
	assert.Equal(t, 2, remaining)
}

func TestGradeAnswers(t *testing.T) {
	q1, q2 := gradedQuestions()
	refs := []model.ExamQuestionRef{{QuestionID: q1.ID, Position: 1}, {QuestionID: q2.ID, Position: 2}}
	key := buildAnswerKey([]model.Question{q1, q2})

	t.Run("unanswered questions score zero", func(t *testing.T) {
		graded, score := gradeAnswers(refs, key, nil)
		require.Len(t, graded, 2)
		assert.Equal(t, 0, score)
		assert.False(t, graded[0].Correct)
	})

	t.Run("unknown question ids are ignored", func(t *testing.T) {
		graded, score := gradeAnswers(refs, key, []model.SubmittedAnswer{
			{QuestionID: uuid.New(), Selected: []string{"b"}},
			{QuestionID: q1.ID, Selected: []string{"b"}},
		})
		require.Len(t, graded, 2)
		assert.Equal(t, 4, score)
	})

	t.Run("last occurrence of a repeated id wins", func(t *testing.T) {
		_, score := gradeAnswers(refs, key, []model.SubmittedAnswer{
			{QuestionID: q1.ID, Selected: []string{"b"}},
			{QuestionID: q1.ID, Selected: []string{"a"}},
		})
		assert.Equal(t, 0, score)
	})

	t.Run("partial multi choice selection scores zero", func(t *testing.T) {
		_, score := gradeAnswers(refs, key, []model.SubmittedAnswer{
			{QuestionID: q2.ID, Selected: []string{"a"}},
		})
		assert.Equal(t, 0, score)
	})

	t.Run("graded answers follow exam order", func(t *testing.T) {
		graded, _ := gradeAnswers(refs, key, []model.SubmittedAnswer{
			{QuestionID: q2.ID, Selected: []string{"a", "c"}},
			{QuestionID: q1.ID, Selected: []string{"b"}},
		})
		require.Len(t, graded, 2)
		assert.Equal(t, q1.ID, graded[0].QuestionID)
		assert.Equal(t, q2.ID, graded[1].QuestionID)
	})
}

func TestSameOptionSet(t *testing.T) {
	assert.True(t, sameOptionSet([]string{"a", "b"}, []string{"b", "a"}))
	assert.True(t, sameOptionSet([]string{"a", "a", "b"}, []string{"b", "a"}), "duplicates collapse")
	assert.True(t, sameOptionSet(nil, nil))
	assert.False(t, sameOptionSet([]string{"a"}, []string{"a", "b"}))
	assert.False(t, sameOptionSet([]string{"a", "c"}, []string{"a", "b"}))
	assert.False(t, sameOptionSet([]string{"a"}, nil))
}
