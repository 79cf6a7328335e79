package httpapi

import (
	"time"

	"little-toeic/internal/problems"
	"little-toeic/internal/progress"
)

type errorResponse struct {
	Error string `json:"error"`
}

type healthResponse struct {
	Status    string    `json:"status"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
}

type statsResponse struct {
	progress.Stats
	Accuracy float64 `json:"accuracy"`
}

type historyResponse struct {
	Filter  string                  `json:"filter"`
	Count   int                     `json:"count"`
	History []progress.AnswerRecord `json:"history"`
}

type problemResponse struct {
	Date           string                 `json:"date,omitempty"`
	Problem        problems.Problem       `json:"problem"`
	PreviousAnswer *progress.AnswerRecord `json:"previous_answer,omitempty"`
}

type historyProblemResponse struct {
	Problem problems.Problem      `json:"problem"`
	Answer  progress.AnswerRecord `json:"answer"`
}

type answerRequest struct {
	ProblemID      int    `json:"problem_id"`
	Date           string `json:"date,omitempty"`
	SelectedAnswer string `json:"selected_answer"`
}

type answerResponse struct {
	ProblemID     int           `json:"problem_id"`
	Date          string        `json:"date,omitempty"`
	Selected      string        `json:"selected_answer"`
	CorrectAnswer string        `json:"correct_answer"`
	IsCorrect     bool          `json:"is_correct"`
	Explanation   string        `json:"explanation,omitempty"`
	Stats         statsResponse `json:"stats"`
}

func toStatsResponse(stats progress.Stats) statsResponse {
	return statsResponse{Stats: stats, Accuracy: stats.Accuracy()}
}
