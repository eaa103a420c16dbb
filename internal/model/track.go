package model

import "time"

type TaskType string

const (
	TaskReading TaskType = "reading"
	TaskQuiz    TaskType = "quiz"
	TaskAction  TaskType = "action"
)

func (t TaskType) Valid() bool {
	switch t {
	case TaskReading, TaskQuiz, TaskAction:
		return true
	}
	return false
}

type Track struct {
	ID             string          `json:"id"`
	Name           string          `json:"name"`
	Description    string          `json:"description"`
	OrganizationID string          `json:"organization_id,omitempty"`
	CreatedAt      *time.Time      `json:"created_at,omitempty"`
	Stages         []Stage         `json:"stages"`
	Files          []KnowledgeFile `json:"files"`
}

type Stage struct {
	ID          string          `json:"id"`
	Title       string          `json:"title"`
	Description string          `json:"description"`
	Order       int             `json:"order"`
	RewardXP    int             `json:"reward_xp"`
	Tasks       []Task          `json:"tasks"`
	Files       []KnowledgeFile `json:"files"`
}

type Task struct {
	ID          string          `json:"id"`
	StageID     string          `json:"stage_id,omitempty"`
	Title       string          `json:"title"`
	Description string          `json:"description"`
	Type        TaskType        `json:"type"`
	Order       int             `json:"order"`
	RewardXP    int             `json:"reward_xp"`
	QuizID      *int            `json:"quiz_id"`
	Files       []KnowledgeFile `json:"files"`
}

// TrackPayload is the body of a track create or update call. Orders are always
// recomputed from slice position before it is built.
type TrackPayload struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	FileIDs     []string       `json:"file_ids"`
	Stages      []StagePayload `json:"stages"`
}

type StagePayload struct {
	ID          string        `json:"id,omitempty"`
	Title       string        `json:"title"`
	Description string        `json:"description"`
	Order       int           `json:"order"`
	RewardXP    int           `json:"reward_xp"`
	FileIDs     []string      `json:"file_ids"`
	Tasks       []TaskPayload `json:"tasks"`
}

type TaskPayload struct {
	ID          string   `json:"id,omitempty"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Type        TaskType `json:"type"`
	Order       int      `json:"order"`
	RewardXP    int      `json:"reward_xp"`
	QuizID      *int     `json:"quiz_id"`
	FileIDs     []string `json:"file_ids"`
}

func FileIDs(files []KnowledgeFile) []string {
	ids := make([]string, 0, len(files))
	for _, f := range files {
		ids = append(ids, f.ID)
	}
	return ids
}
