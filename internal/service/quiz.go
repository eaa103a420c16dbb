package service

import (
	"context"
	"fmt"
	"sync"

	"onboarding_portal/internal/model"
)

type QuizServiceI interface {
	StartQuiz(ctx context.Context, quizID int) (*QuizRunner, error)
}

type QuizService struct {
	api QuizAPI
}

func NewQuizService(api QuizAPI) *QuizService {
	return &QuizService{api: api}
}

func (s *QuizService) StartQuiz(ctx context.Context, quizID int) (*QuizRunner, error) {
	quiz, err := s.api.GetQuiz(ctx, quizID)
	if err != nil {
		return nil, fmt.Errorf("failed to load quiz: %w", err)
	}
	return NewQuizRunner(quiz, s.api)
}

// QuizRunner walks forward through a quiz one question at a time and submits
// every answer in one batch after the last question.
type QuizRunner struct {
	mu         sync.Mutex
	api        QuizAPI
	quiz       *model.Quiz
	index      int
	selected   *int
	answers    []model.QuizAnswer
	result     *model.QuizResult
	submitting bool
}

func NewQuizRunner(quiz *model.Quiz, api QuizAPI) (*QuizRunner, error) {
	if quiz == nil || len(quiz.Questions) == 0 {
		return nil, ErrEmptyQuiz
	}
	return &QuizRunner{
		api:     api,
		quiz:    quiz,
		answers: make([]model.QuizAnswer, 0, len(quiz.Questions)),
	}, nil
}

// Select records the option picked for the current question, replacing any
// earlier pick.
func (r *QuizRunner) Select(optionID int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.result != nil {
		return ErrQuizFinished
	}
	if r.submitting {
		return ErrSubmitPending
	}
	if !r.quiz.Questions[r.index].HasOption(optionID) {
		return ErrUnknownOption
	}
	r.selected = &optionID
	return nil
}

// Next moves to the following question, or submits on the last one. A failed
// submission leaves the runner on the last question with its pick intact.
func (r *QuizRunner) Next(ctx context.Context) (QuizView, error) {
	r.mu.Lock()
	if r.result != nil {
		r.mu.Unlock()
		return r.View(), ErrQuizFinished
	}
	if r.submitting {
		r.mu.Unlock()
		return r.View(), ErrSubmitPending
	}
	if r.selected == nil {
		r.mu.Unlock()
		return r.View(), ErrNoSelection
	}

	answer := model.QuizAnswer{
		QuestionID:       r.quiz.Questions[r.index].ID,
		SelectedOptionID: *r.selected,
	}

	if r.index < len(r.quiz.Questions)-1 {
		r.answers = append(r.answers, answer)
		r.index++
		r.selected = nil
		r.mu.Unlock()
		return r.View(), nil
	}

	submission := model.QuizSubmission{
		Answers: append(append([]model.QuizAnswer{}, r.answers...), answer),
	}
	r.submitting = true
	quizID := r.quiz.ID
	r.mu.Unlock()

	result, err := r.api.SubmitQuiz(ctx, quizID, submission)
	if err == nil && result == nil {
		err = ErrNoQuizResult
	}

	r.mu.Lock()
	r.submitting = false
	if err == nil {
		r.answers = submission.Answers
		r.result = result
	}
	r.mu.Unlock()

	if err != nil {
		return r.View(), fmt.Errorf("failed to submit quiz: %w", err)
	}
	return r.View(), nil
}

// Progress reports the 1-based position of the current question.
func (r *QuizRunner) Progress() (current, total int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.index + 1, len(r.quiz.Questions)
}

type QuizView struct {
	QuizID   int                `json:"quiz_id"`
	Title    string             `json:"title"`
	Current  int                `json:"current"`
	Total    int                `json:"total"`
	Question *model.Question    `json:"question,omitempty"`
	Selected *int               `json:"selected"`
	Finished bool               `json:"finished"`
	Result   *model.QuizResult  `json:"result,omitempty"`
	Answers  []model.QuizAnswer `json:"-"`
}

func (r *QuizRunner) View() QuizView {
	r.mu.Lock()
	defer r.mu.Unlock()

	v := QuizView{
		QuizID:   r.quiz.ID,
		Title:    r.quiz.Title,
		Current:  r.index + 1,
		Total:    len(r.quiz.Questions),
		Finished: r.result != nil,
		Result:   r.result,
		Answers:  append([]model.QuizAnswer{}, r.answers...),
	}
	if r.selected != nil {
		sel := *r.selected
		v.Selected = &sel
	}
	if r.result == nil {
		q := r.quiz.Questions[r.index]
		v.Question = &q
	}
	return v
}
