package session

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"little-toeic/internal/problems"
	"little-toeic/internal/progress"
	"little-toeic/internal/storage"
)

type countingRecorder struct {
	*progress.Tracker
	calls int
	err   error
}

func (r *countingRecorder) RecordAnswer(ctx context.Context, record progress.AnswerRecord) (progress.Stats, error) {
	r.calls++
	if r.err != nil {
		return progress.Stats{}, r.err
	}
	return r.Tracker.RecordAnswer(ctx, record)
}

func newRecorder() *countingRecorder {
	clock := progress.ClockFunc(func() time.Time {
		return time.Date(2026, 10, 18, 12, 0, 0, 0, time.UTC)
	})
	tracker := progress.NewTracker(storage.NewMemoryStore(), progress.WithClock(clock), progress.WithLocation(time.UTC))
	return &countingRecorder{Tracker: tracker}
}

func sampleResponse(date string) problems.ProblemResponse {
	return problems.ProblemResponse{
		Date: date,
		Problem: problems.Problem{
			ID:       3,
			Type:     "vocabulary",
			Question: "Please _____ the attached form.",
			Choices: []problems.Choice{
				{ID: "A", Text: "review"},
				{ID: "B", Text: "reviewer"},
				{ID: "C", Text: "reviewing"},
				{ID: "D", Text: "reviewed"},
			},
			CorrectAnswer: "A",
			Explanation:   "Imperative takes the base form.",
		},
	}
}

func fetchOK(response problems.ProblemResponse) Fetcher {
	return func(context.Context) (problems.ProblemResponse, error) {
		return response, nil
	}
}

func TestNewFlowStartsLoading(t *testing.T) {
	flow := NewFlow(newRecorder(), KeyByID)
	if flow.State() != StateLoading {
		t.Fatalf("state = %q, want loading", flow.State())
	}
}

func TestLoadFailureEntersError(t *testing.T) {
	flow := NewFlow(newRecorder(), KeyByID)
	fetchErr := fmt.Errorf("%w: dial tcp", problems.ErrServiceUnavailable)

	err := flow.Load(context.Background(), func(context.Context) (problems.ProblemResponse, error) {
		return problems.ProblemResponse{}, fetchErr
	})
	if !errors.Is(err, problems.ErrServiceUnavailable) {
		t.Fatalf("Load error = %v", err)
	}
	if flow.State() != StateError {
		t.Fatalf("state = %q, want error", flow.State())
	}
	if flow.ErrorMessage() != "failed to load problem: problem service unavailable" {
		t.Fatalf("message = %q", flow.ErrorMessage())
	}
	if _, err := flow.Submit(context.Background()); !errors.Is(err, ErrNotReady) {
		t.Fatalf("Submit in error state = %v, want ErrNotReady", err)
	}
}

func TestSubmitRequiresSelection(t *testing.T) {
	recorder := newRecorder()
	flow := NewFlow(recorder, KeyByID)
	if err := flow.Load(context.Background(), fetchOK(sampleResponse(""))); err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if flow.State() != StateReady {
		t.Fatalf("state = %q, want ready", flow.State())
	}
	if flow.CanSubmit() {
		t.Fatalf("CanSubmit must be false without a selection")
	}
	if _, err := flow.Submit(context.Background()); !errors.Is(err, ErrNoSelection) {
		t.Fatalf("Submit without selection = %v", err)
	}
	if recorder.calls != 0 {
		t.Fatalf("RecordAnswer called %d times, want 0", recorder.calls)
	}
}

func TestSelectRejectsUnknownChoice(t *testing.T) {
	flow := NewFlow(newRecorder(), KeyByID)
	_ = flow.Load(context.Background(), fetchOK(sampleResponse("")))

	if err := flow.Select("E"); !errors.Is(err, ErrUnknownChoice) {
		t.Fatalf("Select(E) = %v, want ErrUnknownChoice", err)
	}
	if err := flow.Select(" c "); err != nil || flow.Selected() != "C" {
		t.Fatalf("Select(c) = %v, selected %q", err, flow.Selected())
	}
}

func TestSubmitRecordsExactlyOnce(t *testing.T) {
	recorder := newRecorder()
	flow := NewFlow(recorder, KeyByID)
	ctx := context.Background()
	_ = flow.Load(ctx, fetchOK(sampleResponse("")))
	_ = flow.Select("B")

	result, err := flow.Submit(ctx)
	if err != nil {
		t.Fatalf("Submit failed: %v", err)
	}
	if result.IsCorrect || result.CorrectAnswer != "A" || result.Selected != "B" || result.Previous {
		t.Fatalf("unexpected result: %+v", result)
	}
	if flow.State() != StateAnswered {
		t.Fatalf("state = %q, want answered", flow.State())
	}

	if _, err := flow.Submit(ctx); !errors.Is(err, ErrAlreadyAnswered) {
		t.Fatalf("second Submit = %v, want ErrAlreadyAnswered", err)
	}
	if err := flow.Select("A"); !errors.Is(err, ErrAlreadyAnswered) {
		t.Fatalf("Select after answer = %v", err)
	}
	if recorder.calls != 1 {
		t.Fatalf("RecordAnswer called %d times, want 1", recorder.calls)
	}

	stats := recorder.Load(ctx)
	if stats.TotalAttempts != 1 || stats.CorrectAnswers != 0 || !stats.IsSolved(3) {
		t.Fatalf("unexpected stats: %+v", stats)
	}
}

func TestLoadStartsAnsweredWhenAlreadyRecorded(t *testing.T) {
	recorder := newRecorder()
	ctx := context.Background()

	first := NewFlow(recorder, KeyByID)
	_ = first.Load(ctx, fetchOK(sampleResponse("")))
	_ = first.Select("A")
	if _, err := first.Submit(ctx); err != nil {
		t.Fatalf("Submit failed: %v", err)
	}

	second := NewFlow(recorder, KeyByID)
	if err := second.Load(ctx, fetchOK(sampleResponse(""))); err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if second.State() != StateAnswered || second.Selected() != "A" {
		t.Fatalf("state = %q selected = %q, want answered with prior selection", second.State(), second.Selected())
	}
	result, ok := second.Result()
	if !ok || !result.IsCorrect || !result.Previous || result.Explanation == "" {
		t.Fatalf("unexpected prior result: %+v", result)
	}
	if recorder.calls != 1 {
		t.Fatalf("RecordAnswer called %d times, want 1", recorder.calls)
	}
	if previous, ok := second.Previous(); !ok || previous.ProblemID != 3 || previous.Timestamp.IsZero() {
		t.Fatalf("Previous = (%+v, %t)", previous, ok)
	}
	if _, ok := first.Previous(); ok {
		t.Fatalf("a flow that submitted itself has no previous record")
	}
}

func TestDateKeyedLookupUsesProblemDate(t *testing.T) {
	recorder := newRecorder()
	ctx := context.Background()

	flow := NewFlow(recorder, KeyByDate)
	_ = flow.Load(ctx, fetchOK(sampleResponse("2026-10-10")))
	_ = flow.Select("D")
	if _, err := flow.Submit(ctx); err != nil {
		t.Fatalf("Submit failed: %v", err)
	}
	if stats := recorder.Load(ctx); stats.History[0].Date != "2026-10-10" {
		t.Fatalf("record date = %q", stats.History[0].Date)
	}

	other := sampleResponse("2026-10-11")
	next := NewFlow(recorder, KeyByDate)
	_ = next.Load(ctx, fetchOK(other))
	if next.State() != StateReady {
		t.Fatalf("same problem id on another date should be ready, got %q", next.State())
	}

	again := NewFlow(recorder, KeyByDate)
	_ = again.Load(ctx, fetchOK(sampleResponse("2026-10-10")))
	if again.State() != StateAnswered || again.Selected() != "D" {
		t.Fatalf("expected answered for recorded date, got %q", again.State())
	}
}

func TestSubmitStorageFailureStaysReady(t *testing.T) {
	recorder := newRecorder()
	recorder.err = errors.New("disk full")
	flow := NewFlow(recorder, KeyByID)
	ctx := context.Background()
	_ = flow.Load(ctx, fetchOK(sampleResponse("")))
	_ = flow.Select("A")

	if _, err := flow.Submit(ctx); err == nil {
		t.Fatalf("expected storage error")
	}
	if flow.State() != StateReady || !flow.CanSubmit() {
		t.Fatalf("flow should remain submittable, state = %q", flow.State())
	}
}

func TestErrorMessageForNotFound(t *testing.T) {
	flow := NewFlow(newRecorder(), KeyByID)
	_ = flow.Load(context.Background(), func(context.Context) (problems.ProblemResponse, error) {
		return problems.ProblemResponse{}, &problems.APIError{StatusCode: 404, Message: "nope"}
	})
	if flow.ErrorMessage() != "problem not found" {
		t.Fatalf("message = %q", flow.ErrorMessage())
	}
}
