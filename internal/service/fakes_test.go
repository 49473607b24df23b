package service

import (
	"context"
	"strconv"
	"sync"
	"time"

	"github.com/edumark/examly-backend/internal/model"
	"github.com/edumark/examly-backend/internal/repository"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// fakeExamStore keeps exams in memory and mimics the repository's guarded
// status update, including returning pgx.ErrNoRows on a lost guard.
type fakeExamStore struct {
	mu        sync.Mutex
	exams     map[uuid.UUID]*model.Exam
	refs      map[uuid.UUID][]model.ExamQuestionRef
	updateErr error
}

func newFakeExamStore(exams ...*model.Exam) *fakeExamStore {
	s := &fakeExamStore{
		exams: make(map[uuid.UUID]*model.Exam),
		refs:  make(map[uuid.UUID][]model.ExamQuestionRef),
	}
	for _, e := range exams {
		cp := *e
		s.exams[e.ID] = &cp
	}
	return s
}

func (s *fakeExamStore) GetByID(_ context.Context, id uuid.UUID) (*model.Exam, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.exams[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	cp := *e
	return &cp, nil
}

func (s *fakeExamStore) UpdateStatusIf(_ context.Context, id uuid.UUID, expect, to model.ExamStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.updateErr != nil {
		return s.updateErr
	}
	e, ok := s.exams[id]
	if !ok || e.Status != expect {
		return pgx.ErrNoRows
	}
	e.Status = to
	return nil
}

func (s *fakeExamStore) ListQuestionRefs(_ context.Context, examID uuid.UUID) ([]model.ExamQuestionRef, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.refs[examID], nil
}

func (s *fakeExamStore) status(id uuid.UUID) model.ExamStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.exams[id].Status
}

// fakeAttemptStore enforces quota and the IN_PROGRESS finalize guard under a
// mutex, the in-memory analogue of the advisory lock path.
type fakeAttemptStore struct {
	mu          sync.Mutex
	attempts    map[uuid.UUID]*model.Attempt
	finalizeErr error
}

func newFakeAttemptStore(attempts ...*model.Attempt) *fakeAttemptStore {
	s := &fakeAttemptStore{attempts: make(map[uuid.UUID]*model.Attempt)}
	for _, a := range attempts {
		cp := *a
		s.attempts[a.ID] = &cp
	}
	return s
}

func (s *fakeAttemptStore) CreateIfUnderQuota(_ context.Context, a *model.Attempt, quota int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	used := 0
	for _, ex := range s.attempts {
		if ex.ExamID == a.ExamID && ex.StudentID == a.StudentID && ex.Status != model.AttemptStatusAbandoned {
			used++
		}
	}
	if used >= quota {
		return repository.ErrQuotaFull
	}
	a.ID = uuid.New()
	a.StartedAt = time.Now()
	cp := *a
	s.attempts[a.ID] = &cp
	return nil
}

func (s *fakeAttemptStore) Finalize(_ context.Context, a *model.Attempt) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.finalizeErr != nil {
		return s.finalizeErr
	}
	current, ok := s.attempts[a.ID]
	if !ok || current.Status != model.AttemptStatusInProgress {
		return pgx.ErrNoRows
	}
	cp := *a
	s.attempts[a.ID] = &cp
	return nil
}

func (s *fakeAttemptStore) GetByID(_ context.Context, id uuid.UUID) (*model.Attempt, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.attempts[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	cp := *a
	return &cp, nil
}

func (s *fakeAttemptStore) GetInProgress(_ context.Context, examID uuid.UUID, studentID int) (*model.Attempt, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, a := range s.attempts {
		if a.ExamID == examID && a.StudentID == studentID && a.Status == model.AttemptStatusInProgress {
			cp := *a
			return &cp, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (s *fakeAttemptStore) CountForQuota(_ context.Context, examID uuid.UUID, studentID int) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, a := range s.attempts {
		if a.ExamID == examID && a.StudentID == studentID && a.Status != model.AttemptStatusAbandoned {
			n++
		}
	}
	return n, nil
}

func (s *fakeAttemptStore) ListByExamAndStudent(_ context.Context, examID uuid.UUID, studentID int) ([]model.Attempt, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []model.Attempt
	for _, a := range s.attempts {
		if a.ExamID == examID && a.StudentID == studentID {
			out = append(out, *a)
		}
	}
	return out, nil
}

func (s *fakeAttemptStore) ListByExam(_ context.Context, examID uuid.UUID) ([]model.Attempt, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []model.Attempt
	for _, a := range s.attempts {
		if a.ExamID == examID {
			out = append(out, *a)
		}
	}
	return out, nil
}

type fakeQuestionStore struct {
	questions []model.Question
}

func (s *fakeQuestionStore) ListByExam(context.Context, uuid.UUID) ([]model.Question, error) {
	return s.questions, nil
}

type fakeKeyCache struct {
	key map[uuid.UUID]model.AnswerKeyEntry
	err error
}

func (c *fakeKeyCache) GetAnswerKey(context.Context, uuid.UUID) (map[uuid.UUID]model.AnswerKeyEntry, error) {
	return c.key, c.err
}

type fakeQueue struct {
	mu   sync.Mutex
	jobs []ReconcileJob
	err  error
}

func (q *fakeQueue) EnqueueReconcile(_ context.Context, job ReconcileJob) error {
	if q.err != nil {
		return q.err
	}
	q.mu.Lock()
	defer q.mu.Unlock()
	q.jobs = append(q.jobs, job)
	return nil
}

type fakeRecorder struct {
	recorded []*model.Attempt
	err      error
}

func (r *fakeRecorder) RecordFromAttempt(_ context.Context, attempt *model.Attempt) error {
	if r.err != nil {
		return r.err
	}
	r.recorded = append(r.recorded, attempt)
	return nil
}

type fakeMonitor struct {
	mu     sync.Mutex
	events []model.MonitorEvent
}

func (m *fakeMonitor) PublishMonitorEvent(_ context.Context, event model.MonitorEvent) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, event)
}

func (m *fakeMonitor) eventTypes() []model.MonitorEventType {
	m.mu.Lock()
	defer m.mu.Unlock()
	types := make([]model.MonitorEventType, len(m.events))
	for i, e := range m.events {
		types[i] = e.Type
	}
	return types
}

type fakeWarmer struct {
	warmed []uuid.UUID
	err    error
}

func (w *fakeWarmer) WarmExamCache(_ context.Context, examID uuid.UUID) error {
	if w.err != nil {
		return w.err
	}
	w.warmed = append(w.warmed, examID)
	return nil
}

// fakeResultStore upserts on the (exam, student) pair, matching the unique
// constraint the real store relies on.
type fakeResultStore struct {
	mu      sync.Mutex
	results map[string]*model.Result
	err     error
}

func newFakeResultStore() *fakeResultStore {
	return &fakeResultStore{results: make(map[string]*model.Result)}
}

func resultKey(examID uuid.UUID, studentID int) string {
	return examID.String() + ":" + strconv.Itoa(studentID)
}

func (s *fakeResultStore) Upsert(_ context.Context, res *model.Result) error {
	if s.err != nil {
		return s.err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	k := resultKey(res.ExamID, res.StudentID)
	if existing, ok := s.results[k]; ok {
		res.ID = existing.ID
		res.CreatedAt = existing.CreatedAt
	} else {
		res.ID = uuid.New()
		res.CreatedAt = time.Now()
	}
	res.UpdatedAt = time.Now()
	cp := *res
	s.results[k] = &cp
	return nil
}

func (s *fakeResultStore) GetByExamAndStudent(_ context.Context, examID uuid.UUID, studentID int) (*model.Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	res, ok := s.results[resultKey(examID, studentID)]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	cp := *res
	return &cp, nil
}

func (s *fakeResultStore) ListByExam(_ context.Context, examID uuid.UUID) ([]model.Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []model.Result
	for _, r := range s.results {
		if r.ExamID == examID {
			out = append(out, *r)
		}
	}
	return out, nil
}

func (s *fakeResultStore) ListByStudent(_ context.Context, studentID int) ([]model.Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []model.Result
	for _, r := range s.results {
		if r.StudentID == studentID {
			out = append(out, *r)
		}
	}
	return out, nil
}

func (s *fakeResultStore) GradeDistribution(_ context.Context, examID uuid.UUID) (map[model.Grade]int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	counts := make(map[model.Grade]int)
	for _, r := range s.results {
		if r.ExamID == examID {
			counts[r.Grade]++
		}
	}
	return counts, nil
}

type fakeStudentStore struct {
	students map[string]*model.Student
}

func (s *fakeStudentStore) GetByStudentNo(_ context.Context, studentNo string) (*model.Student, error) {
	st, ok := s.students[studentNo]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return st, nil
}

func (s *fakeStudentStore) GetByID(_ context.Context, id int) (*model.Student, error) {
	for _, st := range s.students {
		if st.ID == id {
			return st, nil
		}
	}
	return nil, pgx.ErrNoRows
}

type fakeStaffStore struct {
	staff map[string]*model.Staff
}

func (s *fakeStaffStore) GetByEmail(_ context.Context, email string) (*model.Staff, error) {
	st, ok := s.staff[email]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return st, nil
}

func (s *fakeStaffStore) GetByID(_ context.Context, id int) (*model.Staff, error) {
	for _, st := range s.staff {
		if st.ID == id {
			return st, nil
		}
	}
	return nil, pgx.ErrNoRows
}

type fakeSessionRegistry struct {
	mu       sync.Mutex
	sessions map[int]string
	putErr   error
	getErr   error
}

func newFakeSessionRegistry() *fakeSessionRegistry {
	return &fakeSessionRegistry{sessions: make(map[int]string)}
}

func (r *fakeSessionRegistry) Put(_ context.Context, studentID int, sessionID string, _ time.Duration) error {
	if r.putErr != nil {
		return r.putErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[studentID] = sessionID
	return nil
}

func (r *fakeSessionRegistry) Get(_ context.Context, studentID int) (string, error) {
	if r.getErr != nil {
		return "", r.getErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.sessions[studentID], nil
}

func (r *fakeSessionRegistry) Delete(_ context.Context, studentID int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, studentID)
	return nil
}
