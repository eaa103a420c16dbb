package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"sync"
	"time"

	"onboarding_portal/internal/model"
)

const (
	newStageReward = 100
	newTaskReward  = 10
	newTaskTitle   = "Новая задача"
)

// SaveFunc persists a whole track. id is a draft for tracks never saved before.
type SaveFunc func(ctx context.Context, id model.NodeID, payload model.TrackPayload) (*model.Track, error)

type draftTask struct {
	id          model.NodeID
	title       string
	description string
	typ         model.TaskType
	rewardXP    int
	quizRef     string
	fileIDs     []string
	picker      *Picker
}

type draftStage struct {
	id          model.NodeID
	title       string
	description string
	rewardXP    int
	fileIDs     []string
	tasks       []*draftTask
	expanded    bool
	picker      *Picker
}

// Editor holds one track and all of its stages and tasks while they are being
// edited. Nothing reaches the portal until Save.
//
// Edits made while a save is in flight are replaced by the saved track once the
// portal answers.
type Editor struct {
	mu          sync.Mutex
	id          model.NodeID
	name        string
	description string
	fileIDs     []string
	stages      []*draftStage
	picker      *Picker

	catalog FileCatalog
	save    SaveFunc
	saving  bool
	seq     int
	now     func() time.Time
}

type EditorOption func(*Editor)

func WithClock(now func() time.Time) EditorOption {
	return func(e *Editor) {
		e.now = now
	}
}

// NewEditor starts from track, or from a single fresh stage when track is nil.
func NewEditor(track *model.Track, catalog FileCatalog, save SaveFunc, opts ...EditorOption) *Editor {
	e := &Editor{
		catalog: catalog,
		save:    save,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}

	if track != nil {
		e.load(track)
	} else {
		e.id = model.Draft(e.token("track"))
		e.fileIDs = []string{}
		e.addStage()
	}

	return e
}

func (e *Editor) token(kind string) string {
	e.seq++
	return fmt.Sprintf("temp_%s_%d_%d", kind, e.now().UnixMilli(), e.seq)
}

// load replaces the whole tree with a copy of track. Only the first stage is
// expanded.
func (e *Editor) load(track *model.Track) {
	e.id = model.Persisted(track.ID)
	if track.ID == "" {
		e.id = model.Draft(e.token("track"))
	}
	e.name = track.Name
	e.description = track.Description
	e.fileIDs = model.FileIDs(track.Files)
	e.picker = nil

	e.stages = make([]*draftStage, 0, len(track.Stages))
	for i, st := range track.Stages {
		stage := &draftStage{
			id:          model.Persisted(st.ID),
			title:       st.Title,
			description: st.Description,
			rewardXP:    st.RewardXP,
			fileIDs:     model.FileIDs(st.Files),
			tasks:       make([]*draftTask, 0, len(st.Tasks)),
			expanded:    i == 0,
		}
		for _, t := range st.Tasks {
			task := &draftTask{
				id:          model.Persisted(t.ID),
				title:       t.Title,
				description: t.Description,
				typ:         t.Type,
				rewardXP:    t.RewardXP,
				fileIDs:     model.FileIDs(t.Files),
			}
			if t.QuizID != nil {
				task.quizRef = strconv.Itoa(*t.QuizID)
			}
			stage.tasks = append(stage.tasks, task)
		}
		e.stages = append(e.stages, stage)
	}
}

func (e *Editor) UpdateTrack(field string, value any) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	switch field {
	case "name":
		s, err := asString(value)
		if err != nil {
			return err
		}
		e.name = s
	case "description":
		s, err := asString(value)
		if err != nil {
			return err
		}
		e.description = s
	case "file_ids":
		ids, err := asStrings(value)
		if err != nil {
			return err
		}
		e.fileIDs = ids
	default:
		return fmt.Errorf("%w: track.%s", ErrUnknownField, field)
	}
	return nil
}

// AddStage appends a stage and returns its index.
func (e *Editor) AddStage() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.addStage()
}

func (e *Editor) addStage() int {
	e.stages = append(e.stages, &draftStage{
		id:       model.Draft(e.token("stage")),
		title:    fmt.Sprintf("Новый этап %d", len(e.stages)+1),
		rewardXP: newStageReward,
		fileIDs:  []string{},
		tasks:    []*draftTask{},
		expanded: true,
	})
	return len(e.stages) - 1
}

// RemoveStage deletes a stage with all of its tasks. It refuses to act
// unless confirmed is set.
func (e *Editor) RemoveStage(index int, confirmed bool) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if _, err := e.stage(index); err != nil {
		return err
	}
	if !confirmed {
		return ErrConfirmationRequired
	}

	e.stages = append(e.stages[:index], e.stages[index+1:]...)
	return nil
}

func (e *Editor) UpdateStage(index int, field string, value any) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	stage, err := e.stage(index)
	if err != nil {
		return err
	}

	switch field {
	case "title":
		s, err := asString(value)
		if err != nil {
			return err
		}
		stage.title = s
	case "description":
		s, err := asString(value)
		if err != nil {
			return err
		}
		stage.description = s
	case "reward_xp":
		stage.rewardXP = asReward(value)
	case "file_ids":
		ids, err := asStrings(value)
		if err != nil {
			return err
		}
		stage.fileIDs = ids
	default:
		return fmt.Errorf("%w: stage.%s", ErrUnknownField, field)
	}
	return nil
}

func (e *Editor) ToggleStage(index int) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	stage, err := e.stage(index)
	if err != nil {
		return err
	}
	stage.expanded = !stage.expanded
	return nil
}

// AddTask appends a reading task to the stage and returns its index.
func (e *Editor) AddTask(stageIndex int) (int, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	stage, err := e.stage(stageIndex)
	if err != nil {
		return 0, err
	}

	stage.tasks = append(stage.tasks, &draftTask{
		id:       model.Draft(e.token("task")),
		title:    newTaskTitle,
		typ:      model.TaskReading,
		rewardXP: newTaskReward,
		fileIDs:  []string{},
	})
	return len(stage.tasks) - 1, nil
}

func (e *Editor) RemoveTask(stageIndex, taskIndex int) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	stage, err := e.stage(stageIndex)
	if err != nil {
		return err
	}
	if taskIndex < 0 || taskIndex >= len(stage.tasks) {
		return fmt.Errorf("%w: task %d", ErrIndexOutOfRange, taskIndex)
	}

	stage.tasks = append(stage.tasks[:taskIndex], stage.tasks[taskIndex+1:]...)
	return nil
}

func (e *Editor) UpdateTask(stageIndex, taskIndex int, field string, value any) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	task, err := e.task(stageIndex, taskIndex)
	if err != nil {
		return err
	}

	switch field {
	case "title":
		s, err := asString(value)
		if err != nil {
			return err
		}
		task.title = s
	case "description":
		s, err := asString(value)
		if err != nil {
			return err
		}
		task.description = s
	case "type":
		s, err := asString(value)
		if err != nil {
			return err
		}
		typ := model.TaskType(s)
		if !typ.Valid() {
			return fmt.Errorf("%w: task type %q", ErrInvalidValue, s)
		}
		task.typ = typ
	case "reward_xp":
		task.rewardXP = asReward(value)
	case "quiz_id":
		task.quizRef = asRef(value)
	case "file_ids":
		ids, err := asStrings(value)
		if err != nil {
			return err
		}
		task.fileIDs = ids
	default:
		return fmt.Errorf("%w: task.%s", ErrUnknownField, field)
	}
	return nil
}

func (e *Editor) stage(index int) (*draftStage, error) {
	if index < 0 || index >= len(e.stages) {
		return nil, fmt.Errorf("%w: stage %d", ErrIndexOutOfRange, index)
	}
	return e.stages[index], nil
}

func (e *Editor) task(stageIndex, taskIndex int) (*draftTask, error) {
	stage, err := e.stage(stageIndex)
	if err != nil {
		return nil, err
	}
	if taskIndex < 0 || taskIndex >= len(stage.tasks) {
		return nil, fmt.Errorf("%w: task %d", ErrIndexOutOfRange, taskIndex)
	}
	return stage.tasks[taskIndex], nil
}

// Snapshot is the payload Save would send right now.
func (e *Editor) Snapshot() model.TrackPayload {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.payload()
}

// payload numbers stages and tasks 1..n by position and applies the quiz
// reference rule.
func (e *Editor) payload() model.TrackPayload {
	p := model.TrackPayload{
		Name:        e.name,
		Description: e.description,
		FileIDs:     copyIDs(e.fileIDs),
		Stages:      make([]model.StagePayload, 0, len(e.stages)),
	}

	for si, st := range e.stages {
		sp := model.StagePayload{
			Title:       st.title,
			Description: st.description,
			Order:       si + 1,
			RewardXP:    st.rewardXP,
			FileIDs:     copyIDs(st.fileIDs),
			Tasks:       make([]model.TaskPayload, 0, len(st.tasks)),
		}
		if id, ok := st.id.ServerID(); ok {
			sp.ID = id
		}

		for ti, t := range st.tasks {
			tp := model.TaskPayload{
				Title:       t.title,
				Description: t.description,
				Type:        t.typ,
				Order:       ti + 1,
				RewardXP:    t.rewardXP,
				QuizID:      quizID(t.typ, t.quizRef),
				FileIDs:     copyIDs(t.fileIDs),
			}
			if id, ok := t.id.ServerID(); ok {
				tp.ID = id
			}
			sp.Tasks = append(sp.Tasks, tp)
		}
		p.Stages = append(p.Stages, sp)
	}
	return p
}

// quizID keeps a reference only on quiz tasks, reading it the way a lenient
// integer parser would: leading digits count, anything unparsable is dropped.
func quizID(typ model.TaskType, ref string) *int {
	if typ != model.TaskQuiz || ref == "" {
		return nil
	}
	n, ok := parseLeadingInt(ref)
	if !ok {
		return nil
	}
	return &n
}

// Save validates the track, sends it and adopts the portal's answer.
// On error nothing local changes.
func (e *Editor) Save(ctx context.Context) (*model.Track, error) {
	e.mu.Lock()
	if strings.TrimSpace(e.name) == "" {
		e.mu.Unlock()
		return nil, ErrTrackNameRequired
	}
	if e.save == nil {
		e.mu.Unlock()
		return nil, ErrNoSaveOperation
	}
	if e.saving {
		e.mu.Unlock()
		return nil, ErrSaveInProgress
	}
	e.saving = true
	id := e.id
	payload := e.payload()
	e.mu.Unlock()

	track, err := e.save(ctx, id, payload)

	e.mu.Lock()
	defer e.mu.Unlock()
	e.saving = false
	if err != nil {
		return nil, err
	}
	if track == nil {
		return nil, errors.New("save returned no track")
	}
	e.load(track)
	return track, nil
}

func (e *Editor) Saving() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.saving
}

// TrackPicker returns the picker bound to the track's own attachments.
func (e *Editor) TrackPicker() *Picker {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.picker == nil {
		e.picker = NewPicker(e.catalog,
			func() []string {
				e.mu.Lock()
				defer e.mu.Unlock()
				return copyIDs(e.fileIDs)
			},
			func(ids []string) {
				e.mu.Lock()
				e.fileIDs = ids
				e.mu.Unlock()
			},
		)
	}
	return e.picker
}

func (e *Editor) StagePicker(index int) (*Picker, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	stage, err := e.stage(index)
	if err != nil {
		return nil, err
	}
	if stage.picker == nil {
		stage.picker = NewPicker(e.catalog,
			func() []string {
				e.mu.Lock()
				defer e.mu.Unlock()
				return copyIDs(stage.fileIDs)
			},
			func(ids []string) {
				e.mu.Lock()
				stage.fileIDs = ids
				e.mu.Unlock()
			},
		)
	}
	return stage.picker, nil
}

func (e *Editor) TaskPicker(stageIndex, taskIndex int) (*Picker, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	task, err := e.task(stageIndex, taskIndex)
	if err != nil {
		return nil, err
	}
	if task.picker == nil {
		task.picker = NewPicker(e.catalog,
			func() []string {
				e.mu.Lock()
				defer e.mu.Unlock()
				return copyIDs(task.fileIDs)
			},
			func(ids []string) {
				e.mu.Lock()
				task.fileIDs = ids
				e.mu.Unlock()
			},
		)
	}
	return task.picker, nil
}

type EditorState struct {
	ID          model.NodeID `json:"id"`
	Name        string       `json:"name"`
	Description string       `json:"description"`
	FileIDs     []string     `json:"file_ids"`
	Stages      []StageView  `json:"stages"`
	Saving      bool         `json:"saving"`
}

type StageView struct {
	ID          model.NodeID `json:"id"`
	Title       string       `json:"title"`
	Description string       `json:"description"`
	RewardXP    int          `json:"reward_xp"`
	FileIDs     []string     `json:"file_ids"`
	Expanded    bool         `json:"expanded"`
	Tasks       []TaskView   `json:"tasks"`
}

type TaskView struct {
	ID          model.NodeID   `json:"id"`
	Title       string         `json:"title"`
	Description string         `json:"description"`
	Type        model.TaskType `json:"type"`
	RewardXP    int            `json:"reward_xp"`
	QuizRef     string         `json:"quiz_ref"`
	FileIDs     []string       `json:"file_ids"`
}

func (e *Editor) State() EditorState {
	e.mu.Lock()
	defer e.mu.Unlock()

	state := EditorState{
		ID:          e.id,
		Name:        e.name,
		Description: e.description,
		FileIDs:     copyIDs(e.fileIDs),
		Stages:      make([]StageView, 0, len(e.stages)),
		Saving:      e.saving,
	}
	for _, st := range e.stages {
		sv := StageView{
			ID:          st.id,
			Title:       st.title,
			Description: st.description,
			RewardXP:    st.rewardXP,
			FileIDs:     copyIDs(st.fileIDs),
			Expanded:    st.expanded,
			Tasks:       make([]TaskView, 0, len(st.tasks)),
		}
		for _, t := range st.tasks {
			sv.Tasks = append(sv.Tasks, TaskView{
				ID:          t.id,
				Title:       t.title,
				Description: t.description,
				Type:        t.typ,
				RewardXP:    t.rewardXP,
				QuizRef:     t.quizRef,
				FileIDs:     copyIDs(t.fileIDs),
			})
		}
		state.Stages = append(state.Stages, sv)
	}
	return state
}

func copyIDs(ids []string) []string {
	out := make([]string, len(ids))
	copy(out, ids)
	return out
}

func asString(value any) (string, error) {
	switch v := value.(type) {
	case string:
		return v, nil
	case nil:
		return "", nil
	default:
		return "", fmt.Errorf("%w: expected text, got %T", ErrInvalidValue, value)
	}
}

func asStrings(value any) ([]string, error) {
	switch v := value.(type) {
	case nil:
		return []string{}, nil
	case []string:
		return copyIDs(v), nil
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			s, ok := item.(string)
			if !ok {
				return nil, fmt.Errorf("%w: expected a list of ids", ErrInvalidValue)
			}
			out = append(out, s)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("%w: expected a list of ids, got %T", ErrInvalidValue, value)
	}
}

// asReward reads a non-negative integer. Anything that does not start with a
// number reads as 0.
func asReward(value any) int {
	var n int
	switch v := value.(type) {
	case int:
		n = v
	case int64:
		n = int(v)
	case float64:
		switch {
		case math.IsNaN(v) || v <= 0:
			return 0
		case v >= math.MaxInt:
			return math.MaxInt
		}
		n = int(v)
	case string:
		n, _ = parseLeadingInt(v)
	}
	if n < 0 {
		return 0
	}
	return n
}

// asRef keeps the raw reference text; it is only interpreted at save time.
func asRef(value any) string {
	switch v := value.(type) {
	case string:
		return v
	case int:
		return strconv.Itoa(v)
	case int64:
		return strconv.FormatInt(v, 10)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	}
	return ""
}

// parseLeadingInt skips leading whitespace, accepts one sign and then as many
// decimal digits as follow. It fails when no digit is found.
func parseLeadingInt(s string) (int, bool) {
	s = strings.TrimLeft(s, " \t\n\r\v\f")
	neg := false
	if s != "" && (s[0] == '+' || s[0] == '-') {
		neg = s[0] == '-'
		s = s[1:]
	}

	end := 0
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == 0 {
		return 0, false
	}

	// Digit runs beyond the int range clamp to its bounds.
	digits := s[:end]
	if neg {
		digits = "-" + digits
	}
	n, err := strconv.Atoi(digits)
	if err != nil && !errors.Is(err, strconv.ErrRange) {
		return 0, false
	}
	return n, true
}
