package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"little-toeic/internal/problems"
	"little-toeic/internal/progress"
	"little-toeic/internal/session"
)

const (
	defaultMaxInvalidAnswers = 3
	defaultHistoryLimit      = 10
)

// ProblemSource is the remote API the client reads problems from.
type ProblemSource interface {
	Health(ctx context.Context) (problems.HealthResponse, error)
	Random(ctx context.Context) (problems.ProblemResponse, error)
	Today(ctx context.Context) (problems.ProblemResponse, error)
	ByID(ctx context.Context, id int) (problems.ProblemResponse, error)
	ByDate(ctx context.Context, date string) (problems.ProblemResponse, error)
}

type Config struct {
	MaxInvalidAnswers int
	HistoryLimit      int
	Logger            *zap.Logger
}

type app struct {
	source  ProblemSource
	tracker *progress.Tracker
	logger  *zap.Logger
	reader  lineReader
	out     io.Writer

	maxInvalidAnswers int
	historyLimit      int

	// current is the calendar day date navigation moves from.
	current time.Time
	// shown is the last history listing, so detail <n> can refer to it.
	shown []progress.AnswerRecord
}

func Run(ctx context.Context, in io.Reader, out io.Writer, source ProblemSource, tracker *progress.Tracker, cfg Config) error {
	if source == nil || tracker == nil {
		return errors.New("problem source and tracker are required")
	}

	a := &app{
		source:            source,
		tracker:           tracker,
		logger:            cfg.Logger,
		reader:            newContextReader(ctx, in),
		out:               out,
		maxInvalidAnswers: cfg.MaxInvalidAnswers,
		historyLimit:      cfg.HistoryLimit,
		current:           tracker.Today(),
	}
	if a.logger == nil {
		a.logger = zap.NewNop()
	}
	if a.maxInvalidAnswers <= 0 {
		a.maxInvalidAnswers = defaultMaxInvalidAnswers
	}
	if a.historyLimit <= 0 {
		a.historyLimit = defaultHistoryLimit
	}

	fmt.Fprintln(out, "Little TOEIC")
	printHelp(out)

	for {
		fmt.Fprint(out, "\n> ")
		line, err := a.reader.ReadString('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			if ctx.Err() != nil {
				fmt.Fprintln(out)
			}
			return err
		}

		args := strings.Fields(line)
		if len(args) > 0 && a.dispatch(ctx, strings.ToLower(args[0]), args) {
			return nil
		}
		if err != nil {
			fmt.Fprintln(out)
			return nil
		}
	}
}

// dispatch runs one command and reports whether the loop should stop.
func (a *app) dispatch(ctx context.Context, command string, args []string) bool {
	switch command {
	case "help":
		printHelp(a.out)
	case "exit", "quit":
		return true
	case "health":
		a.runHealth(ctx)
	case "today":
		a.current = a.tracker.Today()
		a.runProblem(ctx, session.KeyByDate, a.source.Today)
	case "random":
		a.runProblem(ctx, session.KeyByID, a.source.Random)
	case "problem":
		if len(args) != 2 {
			fmt.Fprintln(a.out, "usage: problem <id>")
			return false
		}
		id, err := strconv.Atoi(args[1])
		if err != nil || id <= 0 {
			fmt.Fprintln(a.out, "problem id must be a positive integer")
			return false
		}
		a.runProblem(ctx, session.KeyByID, func(ctx context.Context) (problems.ProblemResponse, error) {
			return a.source.ByID(ctx, id)
		})
	case "date":
		if len(args) != 2 {
			fmt.Fprintln(a.out, "usage: date <YYYY-MM-DD>")
			return false
		}
		requested, err := session.ParseDate(args[1], a.tracker.Today().Location())
		if err != nil {
			fmt.Fprintf(a.out, "invalid date: %v\n", err)
			return false
		}
		a.runDate(ctx, requested)
	case "prev":
		a.runDate(ctx, session.ShiftDate(a.current, -1, a.tracker.Today()))
	case "next":
		next := session.ShiftDate(a.current, 1, a.tracker.Today())
		if next.Equal(a.current) {
			fmt.Fprintln(a.out, "Already at today's problem.")
			return false
		}
		a.runDate(ctx, next)
	case "stats":
		a.runStats(ctx)
	case "history":
		a.runHistory(ctx, args[1:])
	case "detail":
		a.runDetail(ctx, args[1:])
	case "reset":
		a.runReset(ctx)
	default:
		fmt.Fprintln(a.out, "unknown command. type 'help' for usage.")
	}
	return false
}

func (a *app) runHealth(ctx context.Context) {
	health, err := a.source.Health(ctx)
	if err != nil {
		fmt.Fprintf(a.out, "error: %v\n", err)
		return
	}
	fmt.Fprintf(a.out, "%s: %s (%s)\n", health.Status, health.Message, health.Timestamp.Format(time.RFC3339))
}

func (a *app) runDate(ctx context.Context, requested time.Time) {
	today := a.tracker.Today()
	clamped := session.ClampDate(requested, today)
	if !clamped.Equal(requested) {
		fmt.Fprintln(a.out, "Future dates are not available; showing today.")
	}
	a.current = clamped

	date := session.FormatDate(clamped)
	a.runProblem(ctx, session.KeyByDate, func(ctx context.Context) (problems.ProblemResponse, error) {
		return a.source.ByDate(ctx, date)
	})
}

func (a *app) runProblem(ctx context.Context, keying session.Keying, fetch session.Fetcher) {
	flow := session.NewFlow(a.tracker, keying)
	fmt.Fprintln(a.out, "Loading problem...")
	if err := flow.Load(ctx, fetch); err != nil {
		a.logger.Warn("problem fetch failed", zap.Error(err))
		fmt.Fprintf(a.out, "error: %s\n", flow.ErrorMessage())
		return
	}

	response := flow.Response()
	printProblem(a.out, response)

	if flow.State() == session.StateAnswered {
		result, _ := flow.Result()
		fmt.Fprintln(a.out, "You already answered this problem.")
		printResult(a.out, result)
		a.printSolvedCount(ctx)
		return
	}

	invalidCount := 0
	for {
		choice, ok := promptAnswer(a.reader, a.out, response.Problem)
		if ctx.Err() != nil {
			return
		}
		if ok {
			if err := flow.Select(choice); err == nil {
				break
			}
		}

		invalidCount++
		if invalidCount >= a.maxInvalidAnswers {
			fmt.Fprintln(a.out, "Skipping problem after multiple invalid responses.")
			return
		}
		fmt.Fprintf(a.out, "Invalid input. Attempts remaining: %d\n", a.maxInvalidAnswers-invalidCount)
	}

	result, err := flow.Submit(ctx)
	if err != nil {
		a.logger.Error("answer not saved", zap.Int("problem_id", response.Problem.ID), zap.Error(err))
		fmt.Fprintf(a.out, "error: answer not saved: %v\n", err)
		return
	}
	printResult(a.out, result)
	a.printSolvedCount(ctx)
}

func (a *app) printSolvedCount(ctx context.Context) {
	stats := a.tracker.Load(ctx)
	fmt.Fprintf(a.out, "Solved problems: %d\n", len(stats.SolvedProblems))
}

func (a *app) runStats(ctx context.Context) {
	stats := a.tracker.Load(ctx)
	fmt.Fprintf(a.out, "Total attempts:  %d\n", stats.TotalAttempts)
	fmt.Fprintf(a.out, "Correct answers: %d\n", stats.CorrectAnswers)
	fmt.Fprintf(a.out, "Accuracy:        %s%%\n", stats.AccuracyLabel())
	fmt.Fprintf(a.out, "Streak:          %d day(s)\n", stats.Streak)
	fmt.Fprintf(a.out, "Solved problems: %d\n", len(stats.SolvedProblems))
	if stats.LastAttemptDate != "" {
		fmt.Fprintf(a.out, "Last attempt:    %s\n", stats.LastAttemptDate)
	}
}

func (a *app) runHistory(ctx context.Context, args []string) {
	filter := progress.FilterAll
	limit := a.historyLimit

	for _, arg := range args {
		if n, err := strconv.Atoi(arg); err == nil {
			if n <= 0 {
				fmt.Fprintln(a.out, "invalid history limit: must be a positive integer")
				return
			}
			limit = n
			continue
		}
		parsed, err := progress.ParseHistoryFilter(arg)
		if err != nil {
			fmt.Fprintf(a.out, "invalid history filter: %v\n", err)
			return
		}
		filter = parsed
	}

	records := a.tracker.Load(ctx).Filter(filter, limit)
	a.shown = records
	if len(records) == 0 {
		fmt.Fprintln(a.out, "No history yet.")
		return
	}

	loc := a.tracker.Today().Location()
	for idx, record := range records {
		fmt.Fprintf(a.out, "%d. %s\n", idx+1, formatRecord(record, loc))
	}
}

func (a *app) runDetail(ctx context.Context, args []string) {
	if len(args) != 1 {
		fmt.Fprintln(a.out, "usage: detail <n>  (n from the last history listing)")
		return
	}
	n, err := strconv.Atoi(args[0])
	if err != nil || n < 1 || n > len(a.shown) {
		fmt.Fprintln(a.out, "no such history entry. run 'history' first.")
		return
	}

	record := a.shown[n-1]
	response, err := a.source.ByID(ctx, record.ProblemID)
	if err != nil {
		fmt.Fprintf(a.out, "error: %v\n", describeFetchError(err))
		return
	}

	printProblem(a.out, response)
	printResult(a.out, session.Result{
		ProblemID:     record.ProblemID,
		Date:          record.Date,
		Selected:      record.SelectedAnswer,
		CorrectAnswer: response.Problem.CorrectAnswer,
		IsCorrect:     record.IsCorrect,
		Explanation:   response.Problem.Explanation,
		Previous:      true,
	})
}

func (a *app) runReset(ctx context.Context) {
	confirmed, err := promptYesNo(a.reader, a.out, "Delete all study history? (yes/no): ")
	if err != nil || !confirmed {
		fmt.Fprintln(a.out, "Reset cancelled.")
		return
	}
	if err := a.tracker.Reset(ctx); err != nil {
		fmt.Fprintf(a.out, "error: %v\n", err)
		return
	}
	a.shown = nil
	fmt.Fprintln(a.out, "History cleared.")
}
