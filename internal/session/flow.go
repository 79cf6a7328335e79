// Package session drives a single problem from fetch to answered.
package session

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"little-toeic/internal/problems"
	"little-toeic/internal/progress"
)

type State string

const (
	StateLoading  State = "loading"
	StateReady    State = "ready"
	StateAnswered State = "answered"
	StateError    State = "error"
)

// Keying decides how a previously recorded answer is looked up.
type Keying int

const (
	KeyByID Keying = iota
	KeyByDate
)

var (
	ErrNotReady        = errors.New("problem is not ready for answers")
	ErrNoSelection     = errors.New("select a choice before submitting")
	ErrUnknownChoice   = errors.New("unknown choice")
	ErrAlreadyAnswered = errors.New("problem already answered")
)

// Recorder is the part of the progress tracker a flow needs.
type Recorder interface {
	FindAnswer(ctx context.Context, problemID int) (progress.AnswerRecord, bool)
	FindAnswerByDate(ctx context.Context, date string) (progress.AnswerRecord, bool)
	RecordAnswer(ctx context.Context, record progress.AnswerRecord) (progress.Stats, error)
}

type Fetcher func(ctx context.Context) (problems.ProblemResponse, error)

// Result describes an answered problem.
type Result struct {
	ProblemID     int
	Date          string
	Selected      string
	CorrectAnswer string
	IsCorrect     bool
	Explanation   string
	// Previous is true when the answer came from history rather than this
	// flow's submit.
	Previous bool
}

type Flow struct {
	recorder Recorder
	keying   Keying

	state    State
	response problems.ProblemResponse
	selected string
	result   Result
	previous *progress.AnswerRecord
	err      error
}

func NewFlow(recorder Recorder, keying Keying) *Flow {
	return &Flow{
		recorder: recorder,
		keying:   keying,
		state:    StateLoading,
	}
}

// Load fetches a problem and positions the flow in ready, or in answered
// when the tracker already holds an answer for it.
func (f *Flow) Load(ctx context.Context, fetch Fetcher) error {
	f.state = StateLoading
	f.response = problems.ProblemResponse{}
	f.selected = ""
	f.result = Result{}
	f.previous = nil
	f.err = nil

	response, err := fetch(ctx)
	if err != nil {
		f.state = StateError
		f.err = err
		return err
	}
	f.response = response

	if previous, ok := f.lookup(ctx); ok {
		f.previous = &previous
		f.selected = previous.SelectedAnswer
		f.result = f.resultFor(previous.SelectedAnswer, true)
		f.state = StateAnswered
		return nil
	}

	f.state = StateReady
	return nil
}

func (f *Flow) State() State {
	return f.state
}

func (f *Flow) Response() problems.ProblemResponse {
	return f.response
}

func (f *Flow) Selected() string {
	return f.selected
}

// Previous is the stored record Load found for this problem, if any.
func (f *Flow) Previous() (progress.AnswerRecord, bool) {
	if f.previous == nil {
		return progress.AnswerRecord{}, false
	}
	return *f.previous, true
}

func (f *Flow) Err() error {
	return f.err
}

// ErrorMessage is the text shown to the user when loading failed.
func (f *Flow) ErrorMessage() string {
	if f.state != StateError || f.err == nil {
		return ""
	}
	switch {
	case errors.Is(f.err, problems.ErrNotFound):
		return "problem not found"
	case errors.Is(f.err, problems.ErrServiceUnavailable):
		return "failed to load problem: problem service unavailable"
	default:
		return fmt.Sprintf("failed to load problem: %v", f.err)
	}
}

func (f *Flow) Select(choiceID string) error {
	if f.state != StateReady {
		if f.state == StateAnswered {
			return ErrAlreadyAnswered
		}
		return ErrNotReady
	}

	choice, ok := f.response.Problem.Choice(choiceID)
	if !ok {
		return fmt.Errorf("%w %q", ErrUnknownChoice, strings.TrimSpace(choiceID))
	}
	f.selected = choice.ID
	return nil
}

func (f *Flow) CanSubmit() bool {
	return f.state == StateReady && f.selected != ""
}

// Submit records the selection exactly once and moves to answered. On a
// storage failure the flow stays ready so the user can retry.
func (f *Flow) Submit(ctx context.Context) (Result, error) {
	switch f.state {
	case StateAnswered:
		return f.result, ErrAlreadyAnswered
	case StateReady:
	default:
		return Result{}, ErrNotReady
	}
	if f.selected == "" {
		return Result{}, ErrNoSelection
	}

	result := f.resultFor(f.selected, false)
	_, err := f.recorder.RecordAnswer(ctx, progress.AnswerRecord{
		Date:           f.response.Date,
		ProblemID:      f.response.Problem.ID,
		SelectedAnswer: f.selected,
		IsCorrect:      result.IsCorrect,
	})
	if err != nil {
		return Result{}, err
	}

	f.result = result
	f.state = StateAnswered
	return result, nil
}

// Result returns the outcome once the flow is answered.
func (f *Flow) Result() (Result, bool) {
	if f.state != StateAnswered {
		return Result{}, false
	}
	return f.result, true
}

func (f *Flow) lookup(ctx context.Context) (progress.AnswerRecord, bool) {
	if f.keying == KeyByDate && f.response.Date != "" {
		return f.recorder.FindAnswerByDate(ctx, f.response.Date)
	}
	return f.recorder.FindAnswer(ctx, f.response.Problem.ID)
}

func (f *Flow) resultFor(selected string, previous bool) Result {
	problem := f.response.Problem
	return Result{
		ProblemID:     problem.ID,
		Date:          f.response.Date,
		Selected:      selected,
		CorrectAnswer: problem.CorrectAnswer,
		IsCorrect:     problem.IsCorrect(selected),
		Explanation:   problem.Explanation,
		Previous:      previous,
	}
}
