package cli

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"little-toeic/internal/problems"
	"little-toeic/internal/progress"
	"little-toeic/internal/session"
)

func printHelp(out io.Writer) {
	fmt.Fprintln(out, "Commands:")
	fmt.Fprintln(out, "  today                      today's problem")
	fmt.Fprintln(out, "  random                     a random problem")
	fmt.Fprintln(out, "  problem <id>               a problem by id")
	fmt.Fprintln(out, "  date <YYYY-MM-DD>          the problem of a past day")
	fmt.Fprintln(out, "  prev | next                move one day from the current date")
	fmt.Fprintln(out, "  stats                      totals, accuracy and streak")
	fmt.Fprintln(out, "  history [filter] [limit]   recent answers (all|correct|incorrect)")
	fmt.Fprintln(out, "  detail <n>                 full problem for a history entry")
	fmt.Fprintln(out, "  reset                      delete all history")
	fmt.Fprintln(out, "  health                     check the problem service")
	fmt.Fprintln(out, "  exit")
}

func printProblem(out io.Writer, response problems.ProblemResponse) {
	problem := response.Problem
	fmt.Fprintln(out)
	header := fmt.Sprintf("Problem #%d [%s]", problem.ID, problem.Type)
	if response.Date != "" {
		header += " " + response.Date
	}
	fmt.Fprintln(out, header)
	fmt.Fprintf(out, "\n%s\n\n", problem.Question)
	for _, choice := range problem.Choices {
		fmt.Fprintf(out, "%s. %s\n", choice.ID, choice.Text)
	}
	fmt.Fprintln(out)
}

func printResult(out io.Writer, result session.Result) {
	if result.IsCorrect {
		fmt.Fprintln(out, "Correct!")
	} else {
		fmt.Fprintf(out, "Wrong. You chose %s.\n", result.Selected)
	}
	fmt.Fprintf(out, "Answer: %s\n", result.CorrectAnswer)
	if strings.TrimSpace(result.Explanation) != "" {
		fmt.Fprintf(out, "Explanation: %s\n", result.Explanation)
	}
}

func formatRecord(record progress.AnswerRecord, loc *time.Location) string {
	mark := "x"
	if record.IsCorrect {
		mark = "o"
	}
	when := record.Date
	if when == "" && !record.Timestamp.IsZero() {
		when = record.Timestamp.In(loc).Format(progress.DateLayout)
	}
	return fmt.Sprintf("[%s] %s problem #%d selected %s", mark, when, record.ProblemID, record.SelectedAnswer)
}

// promptAnswer reads one choice id. ok is false for input that names no
// choice of the problem.
func promptAnswer(reader lineReader, out io.Writer, problem problems.Problem) (string, bool) {
	if len(problem.Choices) == 0 {
		return "", false
	}

	ids := make([]string, 0, len(problem.Choices))
	for _, choice := range problem.Choices {
		ids = append(ids, choice.ID)
	}
	fmt.Fprintf(out, "Your answer (%s): ", strings.Join(ids, "/"))

	line, err := reader.ReadString('\n')
	if err != nil && strings.TrimSpace(line) == "" {
		return "", false
	}

	answer := problems.NormalizeChoice(line)
	if answer == "" || !problem.HasChoice(answer) {
		return "", false
	}
	return answer, true
}

func promptYesNo(reader lineReader, out io.Writer, prompt string) (bool, error) {
	for {
		fmt.Fprint(out, prompt)
		line, err := reader.ReadString('\n')
		if err != nil && strings.TrimSpace(line) == "" {
			return false, err
		}
		answer := strings.ToLower(strings.TrimSpace(line))
		switch answer {
		case "y", "yes":
			return true, nil
		case "n", "no":
			return false, nil
		default:
			if err != nil {
				return false, err
			}
			fmt.Fprintln(out, "Please answer yes or no.")
		}
	}
}

func describeFetchError(err error) error {
	switch {
	case errors.Is(err, problems.ErrNotFound):
		return errors.New("problem not found")
	case errors.Is(err, problems.ErrServiceUnavailable):
		return errors.New("problem service unavailable")
	default:
		return err
	}
}
