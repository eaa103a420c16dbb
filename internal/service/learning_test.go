package service

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"onboarding_portal/internal/model"
	"onboarding_portal/internal/portal"
	"onboarding_portal/internal/service/mocks"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func learningTrack() *model.Track {
	quiz := 7
	return &model.Track{
		ID:   "t1",
		Name: "Onboarding",
		Stages: []model.Stage{
			{ID: "s2", Order: 2, Tasks: []model.Task{
				{ID: "k3", Type: model.TaskQuiz, QuizID: &quiz},
				{ID: "k4", Type: model.TaskAction},
			}},
			{ID: "s1", Order: 1, Tasks: []model.Task{
				{ID: "k1", Type: model.TaskReading},
				{ID: "k2", Type: model.TaskQuiz},
			}},
			{ID: "s3", Order: 3, Tasks: []model.Task{
				{ID: "k5", Type: model.TaskReading},
			}},
		},
	}
}

func learningProgress() []model.ProgressRecord {
	return []model.ProgressRecord{
		{TaskID: "k1", Status: model.StatusCompleted},
		{TaskID: "k2", Status: model.StatusCompleted},
		{TaskID: "k3", Status: model.StatusAvailable},
		{TaskID: "k4", Status: model.StatusLocked},
	}
}

func TestStageStateOf(t *testing.T) {
	progress := model.ProgressMap{
		"done": model.StatusCompleted,
		"open": model.StatusAvailable,
		"wait": model.StatusReview,
	}
	stage := func(ids ...string) model.Stage {
		s := model.Stage{}
		for _, id := range ids {
			s.Tasks = append(s.Tasks, model.Task{ID: id})
		}
		return s
	}

	tests := []struct {
		name     string
		stage    model.Stage
		expected model.StageState
	}{
		{name: "All completed", stage: stage("done", "done"), expected: model.StageCompleted},
		{name: "All locked", stage: stage("x", "y"), expected: model.StageLocked},
		{name: "Mixed", stage: stage("done", "x"), expected: model.StageCurrent},
		{name: "Open task", stage: stage("open"), expected: model.StageCurrent},
		{name: "In review", stage: stage("wait"), expected: model.StageCurrent},
		{name: "No tasks", stage: stage(), expected: model.StageCompleted},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, StageStateOf(tt.stage, progress))
		})
	}
}

func TestLearningService_TrackMap(t *testing.T) {
	api := &mocks.MockPortalAPI{}
	api.On("MyTrack", mock.Anything).Return(learningTrack(), nil)
	api.On("Progress", mock.Anything).Return(learningProgress(), nil)

	m, err := NewLearningService(api).TrackMap(context.Background())
	require.NoError(t, err)

	require.Len(t, m.Stages, 3)
	assert.Equal(t, "s1", m.Stages[0].Stage.ID)
	assert.Equal(t, model.StageCompleted, m.Stages[0].State)
	assert.Equal(t, 2, m.Stages[0].Completed)
	assert.Equal(t, "s2", m.Stages[1].Stage.ID)
	assert.Equal(t, model.StageCurrent, m.Stages[1].State)
	assert.Equal(t, "s3", m.Stages[2].Stage.ID)
	assert.Equal(t, model.StageLocked, m.Stages[2].State)
}

func TestLearningService_TrackMapFailure(t *testing.T) {
	api := &mocks.MockPortalAPI{}
	api.On("MyTrack", mock.Anything).Return(learningTrack(), nil)
	api.On("Progress", mock.Anything).Return(nil, errors.New("Error 500"))

	_, err := NewLearningService(api).TrackMap(context.Background())
	assert.Error(t, err)
}

func TestLearningService_StageDetail(t *testing.T) {
	api := &mocks.MockPortalAPI{}
	api.On("MyTrack", mock.Anything).Return(learningTrack(), nil)
	api.On("Progress", mock.Anything).Return(learningProgress(), nil)
	s := NewLearningService(api)

	detail, err := s.StageDetail(context.Background(), "s2")
	require.NoError(t, err)
	require.Len(t, detail.Tasks, 2)
	assert.Equal(t, model.StatusAvailable, detail.Tasks[0].Status)
	assert.Equal(t, model.StatusLocked, detail.Tasks[1].Status)

	_, err = s.StageDetail(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrStageNotFound)
}

func TestLearningService_OpenTask(t *testing.T) {
	progress := append(learningProgress(),
		model.ProgressRecord{TaskID: "k5", Status: model.StatusAvailable},
		model.ProgressRecord{TaskID: "k4", Status: model.StatusInProgress},
	)

	tests := []struct {
		name          string
		taskID        string
		progress      []model.ProgressRecord
		submit        bool
		expected      *TaskOutcome
		expectedError error
	}{
		{
			name:     "Quiz goes to the quiz",
			taskID:   "k3",
			progress: learningProgress(),
			expected: &TaskOutcome{TaskID: "k3", Status: model.StatusAvailable, Redirect: "/app/quiz/7?taskId=k3"},
		},
		{
			name:          "Locked task",
			taskID:        "k5",
			progress:      learningProgress(),
			expectedError: ErrTaskLocked,
		},
		{
			name:          "Quiz without reference",
			taskID:        "k2",
			progress:      learningProgress(),
			expectedError: ErrQuizMissing,
		},
		{
			name:     "Reading completes",
			taskID:   "k5",
			progress: progress,
			submit:   true,
			expected: &TaskOutcome{TaskID: "k5", Status: model.StatusCompleted},
		},
		{
			name:          "Action waits for review",
			taskID:        "k4",
			progress:      progress,
			expectedError: ErrReviewRequired,
		},
		{
			name:          "Unknown task",
			taskID:        "nope",
			progress:      progress,
			expectedError: ErrTaskNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			api := &mocks.MockPortalAPI{}
			api.On("MyTrack", mock.Anything).Return(learningTrack(), nil)
			api.On("Progress", mock.Anything).Return(tt.progress, nil)
			if tt.submit {
				api.On("SubmitTask", mock.Anything, tt.taskID, (*string)(nil)).
					Return(&model.ProgressRecord{TaskID: tt.taskID, Status: model.StatusCompleted}, nil).Once()
			}

			outcome, err := NewLearningService(api).OpenTask(context.Background(), tt.taskID)
			if tt.expectedError != nil {
				assert.ErrorIs(t, err, tt.expectedError)
				api.AssertNotCalled(t, "SubmitTask", mock.Anything, mock.Anything, mock.Anything)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, outcome)
			api.AssertExpectations(t)
		})
	}
}

func TestLearningService_TaskList(t *testing.T) {
	api := &mocks.MockPortalAPI{}
	api.On("Progress", mock.Anything).Return(append(learningProgress(),
		model.ProgressRecord{TaskID: "k5", Status: model.StatusInProgress},
		model.ProgressRecord{TaskID: "k6", Status: model.StatusReview},
	), nil).Once()
	api.On("Progress", mock.Anything).Return(nil, errors.New("Error 500")).Once()
	s := NewLearningService(api)

	list := s.TaskList(context.Background())
	assert.Len(t, list.Records, 6)
	assert.Equal(t, 2, list.Waiting)
	assert.Equal(t, 2, list.Done)
	assert.Equal(t, 1, list.Locked)

	list = s.TaskList(context.Background())
	assert.Empty(t, list.Records)
	assert.NotNil(t, list.Records)
}

func TestLearningService_NoTrackAssigned(t *testing.T) {
	tests := []struct {
		name      string
		mockSetup func(api *mocks.MockPortalAPI)
	}{
		{
			name: "Portal answers 404",
			mockSetup: func(api *mocks.MockPortalAPI) {
				api.On("MyTrack", mock.Anything).Return(nil, &portal.APIError{Status: 404, Message: "No track assigned"})
			},
		},
		{
			name: "Portal answers null",
			mockSetup: func(api *mocks.MockPortalAPI) {
				api.On("MyTrack", mock.Anything).Return(nil, nil)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			api := &mocks.MockPortalAPI{}
			tt.mockSetup(api)
			api.On("Progress", mock.Anything).Return([]model.ProgressRecord{}, nil)

			_, err := NewLearningService(api).TrackMap(context.Background())
			assert.ErrorIs(t, err, ErrNoTrackAssigned)
		})
	}
}

func TestLearningService_NullTrackFromPortal(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/api/v1/quests/my-track":
			_, _ = w.Write([]byte("null"))
		case "/api/v1/quests/progress":
			_, _ = w.Write([]byte("[]"))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	ctx := portal.WithSession(context.Background(), &model.Session{ID: "s1", Token: "tok"})
	learning := NewLearningService(portal.NewClient(srv.URL))

	trackMap, err := learning.TrackMap(ctx)
	assert.ErrorIs(t, err, ErrNoTrackAssigned)
	assert.Nil(t, trackMap)
}
