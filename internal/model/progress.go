package model

import "time"

type TaskStatus string

const (
	StatusLocked     TaskStatus = "locked"
	StatusAvailable  TaskStatus = "available"
	StatusInProgress TaskStatus = "in_progress"
	StatusReview     TaskStatus = "review"
	StatusCompleted  TaskStatus = "completed"
)

// ProgressRecord is owned by the portal API; the front-end only reflects it.
type ProgressRecord struct {
	ID          string     `json:"id"`
	TaskID      string     `json:"task_id"`
	Status      TaskStatus `json:"status"`
	UserAnswer  *string    `json:"user_answer"`
	CompletedAt *time.Time `json:"completed_at"`
	Task        *Task      `json:"task,omitempty"`
}

type StageState string

const (
	StageLocked    StageState = "locked"
	StageCurrent   StageState = "current"
	StageCompleted StageState = "completed"
)

type ProgressMap map[string]TaskStatus

func NewProgressMap(records []ProgressRecord) ProgressMap {
	m := make(ProgressMap, len(records))
	for _, p := range records {
		m[p.TaskID] = p.Status
	}
	return m
}

// Status falls back to locked for tasks the feed does not mention.
func (m ProgressMap) Status(taskID string) TaskStatus {
	if s, ok := m[taskID]; ok {
		return s
	}
	return StatusLocked
}
