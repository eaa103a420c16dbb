package portal

import (
	"context"
	"net/http"
	"strconv"

	"onboarding_portal/internal/model"
)

func (c *Client) GetQuiz(ctx context.Context, id int) (*model.Quiz, error) {
	var quiz model.Quiz
	if err := c.Do(ctx, Request{Path: "/quizzes/" + strconv.Itoa(id)}, &quiz); err != nil {
		return nil, err
	}
	return &quiz, nil
}

func (c *Client) SubmitQuiz(ctx context.Context, id int, submission model.QuizSubmission) (*model.QuizResult, error) {
	var result model.QuizResult
	req := Request{
		Method: http.MethodPost,
		Path:   "/quizzes/" + strconv.Itoa(id) + "/submit",
		Body:   submission,
	}
	if err := c.Do(ctx, req, &result); err != nil {
		return nil, err
	}
	return &result, nil
}
