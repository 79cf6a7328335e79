package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"little-toeic/internal/problems"
	"little-toeic/internal/progress"
	"little-toeic/internal/session"
)

const defaultHistoryLimit = 20

func (a *API) HandleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, healthResponse{
		Status:    "ok",
		Message:   "Little TOEIC progress API is running",
		Timestamp: a.now().UTC(),
	})
}

func (a *API) HandleStats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, toStatsResponse(a.tracker.Load(r.Context())))
}

func (a *API) HandleResetStats(w http.ResponseWriter, r *http.Request) {
	if !parseBoolParam(r, "confirm") {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "reset requires confirm=true"})
		return
	}
	if err := a.tracker.Reset(r.Context()); err != nil {
		a.logger.Error("reset failed", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "failed to reset progress"})
		return
	}
	writeJSON(w, http.StatusOK, toStatsResponse(progress.ZeroStats()))
}

func (a *API) HandleHistory(w http.ResponseWriter, r *http.Request) {
	filter, err := progress.ParseHistoryFilter(r.URL.Query().Get("filter"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}
	limit, err := parseIntParam(r, "limit", defaultHistoryLimit)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}

	records := a.tracker.Load(r.Context()).Filter(filter, limit)
	writeJSON(w, http.StatusOK, historyResponse{
		Filter:  string(filter),
		Count:   len(records),
		History: records,
	})
}

func (a *API) HandleHistoryProblem(w http.ResponseWriter, r *http.Request) {
	problemID, err := strconv.Atoi(mux.Vars(r)["problemId"])
	if err != nil || problemID <= 0 {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "problemId must be a positive integer"})
		return
	}

	record, ok := a.tracker.FindAnswer(r.Context(), problemID)
	if !ok {
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "no answer recorded for problem"})
		return
	}

	response, err := a.source.ByID(r.Context(), problemID)
	if err != nil {
		a.logger.Warn("problem detail fetch failed", zap.Int("problem_id", problemID), zap.Error(err))
		writeSourceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, historyProblemResponse{
		Problem: response.Problem,
		Answer:  record,
	})
}

func (a *API) HandleProblem(w http.ResponseWriter, r *http.Request) {
	fetch, keying, err := a.fetcherFor(mux.Vars(r)["key"])
	if err != nil {
		writeSourceError(w, err)
		return
	}

	flow := session.NewFlow(a.tracker, keying)
	if err := flow.Load(r.Context(), fetch); err != nil {
		a.logger.Warn("problem fetch failed", zap.Error(err))
		writeSourceError(w, err)
		return
	}

	response := flow.Response()
	payload := problemResponse{
		Date:    response.Date,
		Problem: response.Problem,
	}
	if previous, ok := flow.Previous(); ok {
		payload.PreviousAnswer = &previous
	}
	writeJSON(w, http.StatusOK, payload)
}

func (a *API) HandleAnswer(w http.ResponseWriter, r *http.Request) {
	var request answerRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid JSON body"})
		return
	}

	selected := problems.NormalizeChoice(request.SelectedAnswer)
	if selected == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: session.ErrNoSelection.Error()})
		return
	}
	date := strings.TrimSpace(request.Date)
	if date == "" && request.ProblemID <= 0 {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "problem_id must be a positive integer"})
		return
	}

	keying := session.KeyByID
	fetch := func(ctx context.Context) (problems.ProblemResponse, error) {
		return a.source.ByID(ctx, request.ProblemID)
	}
	if date != "" {
		today := a.tracker.Today()
		requested, err := session.ParseDate(date, today.Location())
		if err != nil {
			writeSourceError(w, err)
			return
		}
		date = session.FormatDate(session.ClampDate(requested, today))
		keying = session.KeyByDate
		fetch = func(ctx context.Context) (problems.ProblemResponse, error) {
			return a.source.ByDate(ctx, date)
		}
	}

	flow := session.NewFlow(a.tracker, keying)
	if err := flow.Load(r.Context(), fetch); err != nil {
		a.logger.Warn("problem fetch failed", zap.Error(err))
		writeSourceError(w, err)
		return
	}
	if request.ProblemID > 0 && flow.Response().Problem.ID != request.ProblemID {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "problem_id does not match the problem for date"})
		return
	}

	if err := flow.Select(selected); err != nil {
		writeFlowError(w, err)
		return
	}
	result, err := flow.Submit(r.Context())
	if err != nil {
		a.logger.Error("answer not saved", zap.Int("problem_id", flow.Response().Problem.ID), zap.Error(err))
		writeFlowError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, answerResponse{
		ProblemID:     result.ProblemID,
		Date:          result.Date,
		Selected:      result.Selected,
		CorrectAnswer: result.CorrectAnswer,
		IsCorrect:     result.IsCorrect,
		Explanation:   result.Explanation,
		Stats:         toStatsResponse(a.tracker.Load(r.Context())),
	})
}

// fetcherFor resolves a problem key: today, random, a numeric id or a date.
// Dates after today resolve to today.
func (a *API) fetcherFor(key string) (session.Fetcher, session.Keying, error) {
	key = strings.TrimSpace(key)
	switch key {
	case "today":
		return a.source.Today, session.KeyByDate, nil
	case "random":
		return a.source.Random, session.KeyByID, nil
	}

	if id, err := strconv.Atoi(key); err == nil && id > 0 {
		return func(ctx context.Context) (problems.ProblemResponse, error) {
			return a.source.ByID(ctx, id)
		}, session.KeyByID, nil
	}

	today := a.tracker.Today()
	requested, err := session.ParseDate(key, today.Location())
	if err != nil {
		return nil, session.KeyByID, err
	}
	date := session.FormatDate(session.ClampDate(requested, today))
	return func(ctx context.Context) (problems.ProblemResponse, error) {
		return a.source.ByDate(ctx, date)
	}, session.KeyByDate, nil
}
