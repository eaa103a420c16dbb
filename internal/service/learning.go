package service

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"sort"

	"onboarding_portal/internal/model"
	"onboarding_portal/internal/portal"
	"onboarding_portal/pkg/logger"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

type LearningServiceI interface {
	TrackMap(ctx context.Context) (*TrackMap, error)
	StageDetail(ctx context.Context, stageID string) (*StageDetail, error)
	OpenTask(ctx context.Context, taskID string) (*TaskOutcome, error)
	TaskList(ctx context.Context) TaskList
}

type LearningService struct {
	api LearningAPI
}

func NewLearningService(api LearningAPI) *LearningService {
	return &LearningService{api: api}
}

type StageCard struct {
	Stage     model.Stage      `json:"stage"`
	State     model.StageState `json:"state"`
	Completed int              `json:"completed"`
	Total     int              `json:"total"`
}

type TrackMap struct {
	TrackID     string      `json:"track_id"`
	Name        string      `json:"name"`
	Description string      `json:"description"`
	Stages      []StageCard `json:"stages"`
}

// StageStateOf derives a stage's state from its tasks: completed when every
// task is completed, locked when every task is locked, current otherwise.
// A stage without tasks counts as completed.
func StageStateOf(stage model.Stage, progress model.ProgressMap) model.StageState {
	completed, locked := 0, 0
	for _, t := range stage.Tasks {
		switch progress.Status(t.ID) {
		case model.StatusCompleted:
			completed++
		case model.StatusLocked:
			locked++
		}
	}

	switch {
	case completed == len(stage.Tasks):
		return model.StageCompleted
	case locked == len(stage.Tasks):
		return model.StageLocked
	default:
		return model.StageCurrent
	}
}

func (s *LearningService) load(ctx context.Context) (*model.Track, model.ProgressMap, error) {
	var track *model.Track
	var records []model.ProgressRecord

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		track, err = s.api.MyTrack(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		records, err = s.api.Progress(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		if portal.StatusOf(err) == http.StatusNotFound {
			return nil, nil, ErrNoTrackAssigned
		}
		return nil, nil, fmt.Errorf("failed to load track: %w", err)
	}
	if track == nil {
		return nil, nil, ErrNoTrackAssigned
	}

	return track, model.NewProgressMap(records), nil
}

// TrackMap lists the assigned track's stages in order with their state.
func (s *LearningService) TrackMap(ctx context.Context) (*TrackMap, error) {
	track, progress, err := s.load(ctx)
	if err != nil {
		return nil, err
	}

	stages := append([]model.Stage{}, track.Stages...)
	sort.SliceStable(stages, func(i, j int) bool {
		return stages[i].Order < stages[j].Order
	})

	m := &TrackMap{
		TrackID:     track.ID,
		Name:        track.Name,
		Description: track.Description,
		Stages:      make([]StageCard, 0, len(stages)),
	}
	for _, st := range stages {
		card := StageCard{Stage: st, State: StageStateOf(st, progress), Total: len(st.Tasks)}
		for _, t := range st.Tasks {
			if progress.Status(t.ID) == model.StatusCompleted {
				card.Completed++
			}
		}
		m.Stages = append(m.Stages, card)
	}
	return m, nil
}

type TaskCard struct {
	Task   model.Task       `json:"task"`
	Status model.TaskStatus `json:"status"`
}

type StageDetail struct {
	Stage model.Stage `json:"stage"`
	Tasks []TaskCard  `json:"tasks"`
}

func (s *LearningService) StageDetail(ctx context.Context, stageID string) (*StageDetail, error) {
	track, progress, err := s.load(ctx)
	if err != nil {
		return nil, err
	}

	for _, st := range track.Stages {
		if st.ID != stageID {
			continue
		}
		detail := &StageDetail{Stage: st, Tasks: make([]TaskCard, 0, len(st.Tasks))}
		for _, t := range st.Tasks {
			detail.Tasks = append(detail.Tasks, TaskCard{Task: t, Status: progress.Status(t.ID)})
		}
		return detail, nil
	}
	return nil, ErrStageNotFound
}

type TaskOutcome struct {
	TaskID   string           `json:"task_id"`
	Status   model.TaskStatus `json:"status"`
	Redirect string           `json:"redirect,omitempty"`
}

// OpenTask acts on a task the way its type demands: a quiz sends the user to
// the quiz, reading completes on the spot, action waits for the mentor.
func (s *LearningService) OpenTask(ctx context.Context, taskID string) (*TaskOutcome, error) {
	track, progress, err := s.load(ctx)
	if err != nil {
		return nil, err
	}

	task := findTask(track, taskID)
	if task == nil {
		return nil, ErrTaskNotFound
	}

	status := progress.Status(task.ID)
	if status == model.StatusLocked {
		return nil, ErrTaskLocked
	}

	switch task.Type {
	case model.TaskQuiz:
		if task.QuizID == nil {
			return nil, ErrQuizMissing
		}
		return &TaskOutcome{
			TaskID:   task.ID,
			Status:   status,
			Redirect: fmt.Sprintf("/app/quiz/%d?taskId=%s", *task.QuizID, url.QueryEscape(task.ID)),
		}, nil
	case model.TaskReading:
		if _, err := s.api.SubmitTask(ctx, task.ID, nil); err != nil {
			return nil, fmt.Errorf("failed to complete task: %w", err)
		}
		return &TaskOutcome{TaskID: task.ID, Status: model.StatusCompleted}, nil
	case model.TaskAction:
		return nil, ErrReviewRequired
	}
	return nil, fmt.Errorf("%w: task type %q", ErrInvalidValue, task.Type)
}

func findTask(track *model.Track, taskID string) *model.Task {
	for si := range track.Stages {
		for ti := range track.Stages[si].Tasks {
			if track.Stages[si].Tasks[ti].ID == taskID {
				return &track.Stages[si].Tasks[ti]
			}
		}
	}
	return nil
}

type TaskList struct {
	Records []model.ProgressRecord `json:"records"`
	Waiting int                    `json:"waiting"`
	Done    int                    `json:"done"`
	Locked  int                    `json:"locked"`
}

// TaskList degrades to an empty list when progress cannot be loaded.
func (s *LearningService) TaskList(ctx context.Context) TaskList {
	records, err := s.api.Progress(ctx)
	if err != nil {
		logger.Component("learning").Warn("failed to load progress", zap.Error(err))
		records = nil
	}

	list := TaskList{Records: append([]model.ProgressRecord{}, records...)}
	for _, p := range records {
		switch p.Status {
		case model.StatusAvailable, model.StatusInProgress:
			list.Waiting++
		case model.StatusCompleted:
			list.Done++
		case model.StatusLocked:
			list.Locked++
		case model.StatusReview:
		}
	}
	return list
}
