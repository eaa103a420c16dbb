package service

import (
	"context"
	"errors"
	"math"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"onboarding_portal/internal/model"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingSave struct {
	mu       sync.Mutex
	calls    int
	ids      []model.NodeID
	payloads []model.TrackPayload
	result   *model.Track
	err      error
}

func (r *recordingSave) save(ctx context.Context, id model.NodeID, payload model.TrackPayload) (*model.Track, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls++
	r.ids = append(r.ids, id)
	r.payloads = append(r.payloads, payload)
	return r.result, r.err
}

func fixedClock() EditorOption {
	at := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)
	return WithClock(func() time.Time { return at })
}

func orders(p model.TrackPayload) ([]int, [][]int) {
	stages := make([]int, 0, len(p.Stages))
	tasks := make([][]int, 0, len(p.Stages))
	for _, s := range p.Stages {
		stages = append(stages, s.Order)
		var ts []int
		for _, t := range s.Tasks {
			ts = append(ts, t.Order)
		}
		tasks = append(tasks, ts)
	}
	return stages, tasks
}

func TestEditor_NewTrackStartsWithOneStage(t *testing.T) {
	e := NewEditor(nil, nil, nil, fixedClock())
	state := e.State()

	require.Len(t, state.Stages, 1)
	assert.True(t, state.ID.IsDraft())
	assert.Equal(t, "Новый этап 1", state.Stages[0].Title)
	assert.Equal(t, 100, state.Stages[0].RewardXP)
	assert.True(t, state.Stages[0].Expanded)
	assert.Empty(t, state.Stages[0].Tasks)
	assert.Equal(t, []string{}, state.Stages[0].FileIDs)
}

func TestEditor_OnboardingScenario(t *testing.T) {
	rec := &recordingSave{result: &model.Track{ID: "t1", Name: "Onboarding"}}
	e := NewEditor(&model.Track{}, nil, rec.save, fixedClock())

	require.NoError(t, e.UpdateTrack("name", "Onboarding"))
	e.AddStage()
	e.AddStage()

	_, err := e.AddTask(0)
	require.NoError(t, err)
	_, err = e.AddTask(1)
	require.NoError(t, err)
	require.NoError(t, e.UpdateTask(1, 0, "type", "quiz"))
	require.NoError(t, e.UpdateTask(1, 0, "quiz_id", "7"))

	_, err = e.Save(context.Background())
	require.NoError(t, err)
	require.Equal(t, 1, rec.calls)

	p := rec.payloads[0]
	assert.Equal(t, "Onboarding", p.Name)
	require.Len(t, p.Stages, 2)
	assert.Equal(t, 1, p.Stages[0].Order)
	assert.Equal(t, 2, p.Stages[1].Order)
	require.Len(t, p.Stages[0].Tasks, 1)
	require.Len(t, p.Stages[1].Tasks, 1)
	assert.Equal(t, 1, p.Stages[0].Tasks[0].Order)
	assert.Equal(t, model.TaskReading, p.Stages[0].Tasks[0].Type)
	assert.Nil(t, p.Stages[0].Tasks[0].QuizID)
	assert.Equal(t, 1, p.Stages[1].Tasks[0].Order)
	require.NotNil(t, p.Stages[1].Tasks[0].QuizID)
	assert.Equal(t, 7, *p.Stages[1].Tasks[0].QuizID)

	data, err := json.Marshal(p)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"quiz_id":null`)
	assert.Contains(t, string(data), `"quiz_id":7`)
	assert.NotContains(t, string(data), "temp_")
}

func TestEditor_OrdersStayDense(t *testing.T) {
	e := NewEditor(nil, nil, nil, fixedClock())

	e.AddStage()
	e.AddStage()
	e.AddStage()
	for s := 0; s < 4; s++ {
		for i := 0; i < 3; i++ {
			_, err := e.AddTask(s)
			require.NoError(t, err)
		}
	}

	require.NoError(t, e.RemoveTask(0, 1))
	require.NoError(t, e.RemoveStage(2, true))
	require.NoError(t, e.RemoveTask(2, 0))
	require.NoError(t, e.RemoveTask(2, 1))
	e.AddStage()
	_, err := e.AddTask(3)
	require.NoError(t, err)
	require.NoError(t, e.RemoveStage(0, true))

	stages, tasks := orders(e.Snapshot())
	assert.Equal(t, []int{1, 2, 3}, stages)
	assert.Equal(t, [][]int{{1, 2, 3}, {1}, {1}}, tasks)
}

func TestEditor_RemoveFirstOfThreeStages(t *testing.T) {
	rec := &recordingSave{result: &model.Track{ID: "t1"}}
	e := NewEditor(nil, nil, rec.save, fixedClock())
	require.NoError(t, e.UpdateTrack("name", "Track"))
	e.AddStage()
	e.AddStage()

	require.NoError(t, e.RemoveStage(0, true))
	_, err := e.Save(context.Background())
	require.NoError(t, err)

	p := rec.payloads[0]
	require.Len(t, p.Stages, 2)
	assert.Equal(t, "Новый этап 2", p.Stages[0].Title)
	assert.Equal(t, 1, p.Stages[0].Order)
	assert.Equal(t, "Новый этап 3", p.Stages[1].Title)
	assert.Equal(t, 2, p.Stages[1].Order)
}

func TestEditor_RemoveStageNeedsConfirmation(t *testing.T) {
	e := NewEditor(nil, nil, nil, fixedClock())

	assert.ErrorIs(t, e.RemoveStage(0, false), ErrConfirmationRequired)
	assert.Len(t, e.State().Stages, 1)

	assert.ErrorIs(t, e.RemoveStage(3, true), ErrIndexOutOfRange)
	assert.NoError(t, e.RemoveStage(0, true))
	assert.Empty(t, e.State().Stages)
}

func TestEditor_SaveValidation(t *testing.T) {
	t.Run("Empty name never reaches the portal", func(t *testing.T) {
		rec := &recordingSave{}
		e := NewEditor(nil, nil, rec.save, fixedClock())

		_, err := e.Save(context.Background())
		assert.ErrorIs(t, err, ErrTrackNameRequired)

		require.NoError(t, e.UpdateTrack("name", "   "))
		_, err = e.Save(context.Background())
		assert.ErrorIs(t, err, ErrTrackNameRequired)
		assert.Zero(t, rec.calls)
	})

	t.Run("No save operation", func(t *testing.T) {
		e := NewEditor(nil, nil, nil, fixedClock())
		require.NoError(t, e.UpdateTrack("name", "Track"))

		_, err := e.Save(context.Background())
		assert.ErrorIs(t, err, ErrNoSaveOperation)
	})
}

func TestEditor_QuizReferenceRule(t *testing.T) {
	seven := 7
	twelve := 12

	tests := []struct {
		name     string
		typ      string
		ref      any
		expected *int
	}{
		{name: "Quiz with numeric text", typ: "quiz", ref: "7", expected: &seven},
		{name: "Quiz with JSON number", typ: "quiz", ref: float64(7), expected: &seven},
		{name: "Quiz with leading digits", typ: "quiz", ref: " 12abc", expected: &twelve},
		{name: "Quiz without reference", typ: "quiz", ref: "", expected: nil},
		{name: "Quiz with garbage", typ: "quiz", ref: "abc", expected: nil},
		{name: "Reading keeps no reference", typ: "reading", ref: "7", expected: nil},
		{name: "Action keeps no reference", typ: "action", ref: "7", expected: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := NewEditor(nil, nil, nil, fixedClock())
			_, err := e.AddTask(0)
			require.NoError(t, err)
			require.NoError(t, e.UpdateTask(0, 0, "type", tt.typ))
			require.NoError(t, e.UpdateTask(0, 0, "quiz_id", tt.ref))

			got := e.Snapshot().Stages[0].Tasks[0].QuizID
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestEditor_InitFromExistingTrack(t *testing.T) {
	quiz := 3
	track := &model.Track{
		ID:    "t1",
		Name:  "Existing",
		Files: []model.KnowledgeFile{{ID: "f1"}, {ID: "f2"}},
		Stages: []model.Stage{
			{
				ID: "s1", Title: "First", RewardXP: 50,
				Files: []model.KnowledgeFile{{ID: "f1"}},
				Tasks: []model.Task{
					{ID: "k1", Title: "Quiz", Type: model.TaskQuiz, QuizID: &quiz, Files: []model.KnowledgeFile{{ID: "f2"}}},
				},
			},
			{ID: "s2", Title: "Second"},
		},
	}

	e := NewEditor(track, nil, nil, fixedClock())
	state := e.State()

	id, ok := state.ID.ServerID()
	assert.True(t, ok)
	assert.Equal(t, "t1", id)
	assert.Equal(t, []string{"f1", "f2"}, state.FileIDs)
	require.Len(t, state.Stages, 2)
	assert.True(t, state.Stages[0].Expanded)
	assert.False(t, state.Stages[1].Expanded)
	assert.Equal(t, []string{"f1"}, state.Stages[0].FileIDs)
	assert.Equal(t, "3", state.Stages[0].Tasks[0].QuizRef)
	assert.Equal(t, []string{"f2"}, state.Stages[0].Tasks[0].FileIDs)

	p := e.Snapshot()
	assert.Equal(t, "s1", p.Stages[0].ID)
	assert.Equal(t, "k1", p.Stages[0].Tasks[0].ID)

	track.Stages[0].Title = "mutated"
	assert.Equal(t, "First", e.State().Stages[0].Title)
}

func TestEditor_SaveAdoptsServerTrack(t *testing.T) {
	saved := &model.Track{
		ID:   "t9",
		Name: "Server name",
		Stages: []model.Stage{
			{ID: "s1", Title: "A", Order: 1},
			{ID: "s2", Title: "B", Order: 2},
		},
	}
	rec := &recordingSave{result: saved}
	e := NewEditor(nil, nil, rec.save, fixedClock())
	require.NoError(t, e.UpdateTrack("name", "Local name"))
	e.AddStage()
	require.NoError(t, e.ToggleStage(1))

	draftID := e.State().ID
	got, err := e.Save(context.Background())
	require.NoError(t, err)
	assert.Same(t, saved, got)
	assert.True(t, rec.ids[0].IsDraft())
	assert.Equal(t, draftID, rec.ids[0])

	state := e.State()
	assert.Equal(t, "Server name", state.Name)
	serverID, ok := state.ID.ServerID()
	assert.True(t, ok)
	assert.Equal(t, "t9", serverID)
	assert.True(t, state.Stages[0].Expanded)
	assert.False(t, state.Stages[1].Expanded)

	_, err = e.Save(context.Background())
	require.NoError(t, err)
	assert.False(t, rec.ids[1].IsDraft())
}

func TestEditor_FailedSaveKeepsState(t *testing.T) {
	rec := &recordingSave{err: errors.New("Error 500")}
	e := NewEditor(nil, nil, rec.save, fixedClock())
	require.NoError(t, e.UpdateTrack("name", "Track"))
	_, err := e.AddTask(0)
	require.NoError(t, err)

	before := e.State()
	_, err = e.Save(context.Background())
	assert.EqualError(t, err, "Error 500")
	assert.Equal(t, before, e.State())
	assert.False(t, e.Saving())
}

func TestEditor_OneSaveInFlight(t *testing.T) {
	release := make(chan struct{})
	started := make(chan struct{})
	var calls int32

	save := func(ctx context.Context, id model.NodeID, payload model.TrackPayload) (*model.Track, error) {
		if atomic.AddInt32(&calls, 1) == 1 {
			close(started)
		}
		<-release
		return &model.Track{ID: "t1", Name: payload.Name}, nil
	}

	e := NewEditor(nil, nil, save, fixedClock())
	require.NoError(t, e.UpdateTrack("name", "Track"))

	done := make(chan error, 1)
	go func() {
		_, err := e.Save(context.Background())
		done <- err
	}()
	<-started

	var wg sync.WaitGroup
	var rejected int32
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := e.Save(context.Background()); errors.Is(err, ErrSaveInProgress) {
				atomic.AddInt32(&rejected, 1)
			}
		}()
	}
	wg.Wait()
	assert.True(t, e.Saving())

	close(release)
	require.NoError(t, <-done)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
	assert.Equal(t, int32(5), atomic.LoadInt32(&rejected))
	assert.False(t, e.Saving())
}

func TestEditor_FieldUpdates(t *testing.T) {
	e := NewEditor(nil, nil, nil, fixedClock())
	_, err := e.AddTask(0)
	require.NoError(t, err)

	tests := []struct {
		name     string
		apply    func() error
		expected error
	}{
		{name: "Stage reward text", apply: func() error { return e.UpdateStage(0, "reward_xp", "25") }},
		{name: "Unknown stage field", apply: func() error { return e.UpdateStage(0, "color", "red") }, expected: ErrUnknownField},
		{name: "Unknown track field", apply: func() error { return e.UpdateTrack("order", 3) }, expected: ErrUnknownField},
		{name: "Stage out of range", apply: func() error { return e.UpdateStage(5, "title", "x") }, expected: ErrIndexOutOfRange},
		{name: "Task out of range", apply: func() error { return e.UpdateTask(0, 4, "title", "x") }, expected: ErrIndexOutOfRange},
		{name: "Bad task type", apply: func() error { return e.UpdateTask(0, 0, "type", "essay") }, expected: ErrInvalidValue},
		{name: "Title must be text", apply: func() error { return e.UpdateTask(0, 0, "title", 12.0) }, expected: ErrInvalidValue},
		{name: "Negative task id", apply: func() error { return e.RemoveTask(0, -1) }, expected: ErrIndexOutOfRange},
		{name: "Add task to missing stage", apply: func() error { _, err := e.AddTask(9); return err }, expected: ErrIndexOutOfRange},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.apply()
			if tt.expected == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.expected)
		})
	}

	assert.Equal(t, 25, e.State().Stages[0].RewardXP)
}

func TestEditor_RewardCoercion(t *testing.T) {
	tests := []struct {
		value    any
		expected int
	}{
		{value: "40", expected: 40},
		{value: "15xp", expected: 15},
		{value: "abc", expected: 0},
		{value: "", expected: 0},
		{value: float64(12.9), expected: 12},
		{value: -5, expected: 0},
		{value: nil, expected: 0},
		{value: true, expected: 0},
		{value: float64(1e300), expected: math.MaxInt},
		{value: math.Inf(1), expected: math.MaxInt},
		{value: "99999999999999999999999", expected: math.MaxInt},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, asReward(tt.value), "value %v", tt.value)
	}
}

func TestParseLeadingInt(t *testing.T) {
	tests := []struct {
		in       string
		expected int
		ok       bool
	}{
		{in: "42", expected: 42, ok: true},
		{in: "  -7px", expected: -7, ok: true},
		{in: "+3", expected: 3, ok: true},
		{in: "-", ok: false},
		{in: "x1", ok: false},
		{in: "123456789012345678901234567890", expected: math.MaxInt, ok: true},
		{in: "-123456789012345678901234567890", expected: math.MinInt, ok: true},
	}

	for _, tt := range tests {
		n, ok := parseLeadingInt(tt.in)
		assert.Equal(t, tt.ok, ok, "input %q", tt.in)
		assert.Equal(t, tt.expected, n, "input %q", tt.in)
	}
}

func TestEditor_DraftTokensAreDistinct(t *testing.T) {
	e := NewEditor(nil, nil, nil, fixedClock())
	e.AddStage()
	_, _ = e.AddTask(0)
	_, _ = e.AddTask(0)

	state := e.State()
	seen := map[string]bool{state.ID.String(): true}
	for _, s := range state.Stages {
		assert.True(t, s.ID.IsDraft())
		assert.Contains(t, s.ID.String(), "temp_stage_")
		assert.False(t, seen[s.ID.String()])
		seen[s.ID.String()] = true
		for _, task := range s.Tasks {
			assert.Contains(t, task.ID.String(), "temp_task_")
			assert.False(t, seen[task.ID.String()])
			seen[task.ID.String()] = true
		}
	}
}

func TestEditor_PickersWriteNodeFiles(t *testing.T) {
	catalog := &stubCatalog{files: []model.KnowledgeFile{{ID: "f1", Name: "Rules"}, {ID: "f2", Name: "Map"}}}
	e := NewEditor(nil, catalog, nil, fixedClock())
	_, err := e.AddTask(0)
	require.NoError(t, err)

	e.TrackPicker().ToggleFile("f1")

	stagePicker, err := e.StagePicker(0)
	require.NoError(t, err)
	stagePicker.ToggleFile("f1")
	stagePicker.ToggleFile("f2")

	taskPicker, err := e.TaskPicker(0, 0)
	require.NoError(t, err)
	taskPicker.ToggleFile("f1")

	p := e.Snapshot()
	assert.Equal(t, []string{"f1"}, p.FileIDs)
	assert.Equal(t, []string{"f1", "f2"}, p.Stages[0].FileIDs)
	assert.Equal(t, []string{"f1"}, p.Stages[0].Tasks[0].FileIDs)

	same, err := e.StagePicker(0)
	require.NoError(t, err)
	assert.Same(t, stagePicker, same)

	_, err = e.TaskPicker(0, 3)
	assert.ErrorIs(t, err, ErrIndexOutOfRange)
}
