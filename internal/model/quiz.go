package model

type Quiz struct {
	ID            int        `json:"id"`
	Title         string     `json:"title"`
	Description   string     `json:"description"`
	PassThreshold float64    `json:"pass_threshold"`
	Questions     []Question `json:"questions"`
}

type Question struct {
	ID      string   `json:"id"`
	Text    string   `json:"text"`
	Order   int      `json:"order"`
	Options []Option `json:"options"`
}

func (q Question) HasOption(id int) bool {
	for _, o := range q.Options {
		if o.ID == id {
			return true
		}
	}
	return false
}

type Option struct {
	ID   int    `json:"id"`
	Text string `json:"text"`
}

type QuizAnswer struct {
	QuestionID       string `json:"question_id"`
	SelectedOptionID int    `json:"selected_option_id"`
}

type QuizSubmission struct {
	Answers []QuizAnswer `json:"answers"`
}

type QuizResult struct {
	AttemptID string  `json:"attempt_id"`
	Score     float64 `json:"score"`
	Passed    bool    `json:"passed"`
	XPEarned  int     `json:"xp_earned"`
	Message   string  `json:"message"`
}
