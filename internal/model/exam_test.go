package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCanTransition(t *testing.T) {
	legal := []struct{ from, to ExamStatus }{
		{ExamStatusDraft, ExamStatusScheduled},
		{ExamStatusDraft, ExamStatusArchived},
		{ExamStatusScheduled, ExamStatusActive},
		{ExamStatusActive, ExamStatusCompleted},
		{ExamStatusCompleted, ExamStatusArchived},
	}
	for _, tc := range legal {
		assert.True(t, CanTransition(tc.from, tc.to), "%s -> %s should be legal", tc.from, tc.to)
	}

	illegal := []struct{ from, to ExamStatus }{
		{ExamStatusDraft, ExamStatusActive},
		{ExamStatusDraft, ExamStatusCompleted},
		{ExamStatusScheduled, ExamStatusDraft},
		{ExamStatusScheduled, ExamStatusCompleted},
		{ExamStatusScheduled, ExamStatusArchived},
		{ExamStatusActive, ExamStatusDraft},
		{ExamStatusActive, ExamStatusArchived},
		{ExamStatusCompleted, ExamStatusActive},
		{ExamStatusArchived, ExamStatusDraft},
		{ExamStatusArchived, ExamStatusCompleted},
		{ExamStatusActive, ExamStatusActive},
	}
	for _, tc := range illegal {
		assert.False(t, CanTransition(tc.from, tc.to), "%s -> %s should be illegal", tc.from, tc.to)
	}
}

func TestEffectiveStatus(t *testing.T) {
	start := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	end := start.Add(2 * time.Hour)

	tests := []struct {
		name   string
		status ExamStatus
		now    time.Time
		want   ExamStatus
	}{
		{"scheduled before end", ExamStatusScheduled, end.Add(-time.Minute), ExamStatusScheduled},
		{"scheduled at end", ExamStatusScheduled, end, ExamStatusCompleted},
		{"scheduled after end", ExamStatusScheduled, end.Add(time.Hour), ExamStatusCompleted},
		{"active before end", ExamStatusActive, end.Add(-time.Second), ExamStatusActive},
		{"active at end", ExamStatusActive, end, ExamStatusCompleted},
		{"draft never derives", ExamStatusDraft, end.Add(time.Hour), ExamStatusDraft},
		{"completed stays", ExamStatusCompleted, end.Add(time.Hour), ExamStatusCompleted},
		{"archived stays", ExamStatusArchived, end.Add(time.Hour), ExamStatusArchived},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			exam := &Exam{Status: tc.status, StartAt: start, EndAt: end}
			assert.Equal(t, tc.want, exam.EffectiveStatus(tc.now))
		})
	}
}

func TestIsAcceptingAttempts(t *testing.T) {
	start := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	end := start.Add(2 * time.Hour)

	tests := []struct {
		name   string
		status ExamStatus
		now    time.Time
		want   bool
	}{
		{"active inside window", ExamStatusActive, start.Add(time.Minute), true},
		{"active at start boundary", ExamStatusActive, start, true},
		{"active at end boundary", ExamStatusActive, end, false},
		{"active after end", ExamStatusActive, end.Add(time.Minute), false},
		{"scheduled inside window", ExamStatusScheduled, start.Add(time.Minute), false},
		{"draft inside window", ExamStatusDraft, start.Add(time.Minute), false},
		{"completed inside window", ExamStatusCompleted, start.Add(time.Minute), false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			exam := &Exam{Status: tc.status, StartAt: start, EndAt: end}
			assert.Equal(t, tc.want, exam.IsAcceptingAttempts(tc.now))
		})
	}
}
