package model

import (
	"time"

	"github.com/google/uuid"
)

// MonitorEventType enumerates the live monitor stream event kinds.
type MonitorEventType string

const (
	MonitorAttemptStarted   MonitorEventType = "ATTEMPT_STARTED"
	MonitorAttemptSubmitted MonitorEventType = "ATTEMPT_SUBMITTED"
	MonitorAttemptAbandoned MonitorEventType = "ATTEMPT_ABANDONED"
	MonitorExamTransitioned MonitorEventType = "EXAM_TRANSITIONED"
)

// MonitorEvent is one entry on an exam's live monitor stream, fanned out to
// connected staff over Redis pub/sub.
type MonitorEvent struct {
	Type      MonitorEventType `json:"type"`
	ExamID    uuid.UUID        `json:"exam_id"`
	StudentID int              `json:"student_id,omitempty"`
	AttemptID uuid.UUID        `json:"attempt_id,omitempty"`
	Status    string           `json:"status,omitempty"`
	Score     int              `json:"score,omitempty"`
	Late      bool             `json:"late,omitempty"`
	At        time.Time        `json:"at"`
}
