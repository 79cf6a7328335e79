package progress

import (
	"fmt"
	"strings"
	"time"
)

// DateLayout is the calendar-day format of AnswerRecord.Date and
// Stats.LastAttemptDate.
const DateLayout = "2006-01-02"

// AnswerRecord is one submission. Records are appended to the history and
// never edited.
type AnswerRecord struct {
	Date           string    `json:"date,omitempty"`
	ProblemID      int       `json:"problemId"`
	SelectedAnswer string    `json:"selectedAnswer"`
	IsCorrect      bool      `json:"isCorrect"`
	Timestamp      time.Time `json:"timestamp"`
}

// Stats is the aggregate the tracker persists. History is in append order.
type Stats struct {
	TotalAttempts   int            `json:"totalAttempts"`
	CorrectAnswers  int            `json:"correctAnswers"`
	Streak          int            `json:"streak"`
	LastAttemptDate string         `json:"lastAttemptDate"`
	History         []AnswerRecord `json:"history"`
	SolvedProblems  []int          `json:"solvedProblems"`
}

// ZeroStats is the state before any answer is recorded. Slices are empty,
// never nil, so they serialize as [].
func ZeroStats() Stats {
	return Stats{
		History:        []AnswerRecord{},
		SolvedProblems: []int{},
	}
}

// Accuracy returns the percentage of correct answers, 0 when nothing was
// attempted.
func (s Stats) Accuracy() float64 {
	if s.TotalAttempts <= 0 {
		return 0
	}
	return float64(s.CorrectAnswers) / float64(s.TotalAttempts) * 100
}

// AccuracyLabel formats Accuracy with one decimal, e.g. "66.7".
func (s Stats) AccuracyLabel() string {
	return fmt.Sprintf("%.1f", s.Accuracy())
}

// IsSolved reports whether problemID has ever been answered.
func (s Stats) IsSolved(problemID int) bool {
	for _, id := range s.SolvedProblems {
		if id == problemID {
			return true
		}
	}
	return false
}

// FindAnswer returns the first recorded answer for problemID.
func (s Stats) FindAnswer(problemID int) (AnswerRecord, bool) {
	for _, record := range s.History {
		if record.ProblemID == problemID {
			return record, true
		}
	}
	return AnswerRecord{}, false
}

// FindAnswerByDate returns the first recorded answer whose Date matches.
func (s Stats) FindAnswerByDate(date string) (AnswerRecord, bool) {
	date = strings.TrimSpace(date)
	if date == "" {
		return AnswerRecord{}, false
	}
	for _, record := range s.History {
		if record.Date == date {
			return record, true
		}
	}
	return AnswerRecord{}, false
}

// Recent returns up to n history entries, newest first. n <= 0 returns all.
func (s Stats) Recent(n int) []AnswerRecord {
	return s.Filter(FilterAll, n)
}

// Filter returns entries matching f, newest first, capped at limit when
// limit > 0.
func (s Stats) Filter(f HistoryFilter, limit int) []AnswerRecord {
	out := make([]AnswerRecord, 0, len(s.History))
	for idx := len(s.History) - 1; idx >= 0; idx-- {
		record := s.History[idx]
		if !f.matches(record) {
			continue
		}
		out = append(out, record)
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out
}

// HistoryFilter selects history entries by outcome.
type HistoryFilter string

const (
	FilterAll       HistoryFilter = "all"
	FilterCorrect   HistoryFilter = "correct"
	FilterIncorrect HistoryFilter = "incorrect"
)

// ParseHistoryFilter accepts all, correct, incorrect or its alias wrong,
// case-insensitively. An empty value means all.
func ParseHistoryFilter(value string) (HistoryFilter, error) {
	switch HistoryFilter(strings.ToLower(strings.TrimSpace(value))) {
	case "", FilterAll:
		return FilterAll, nil
	case FilterCorrect:
		return FilterCorrect, nil
	case FilterIncorrect, "wrong":
		return FilterIncorrect, nil
	default:
		return "", fmt.Errorf("unknown history filter %q", value)
	}
}

func (f HistoryFilter) matches(record AnswerRecord) bool {
	switch f {
	case FilterCorrect:
		return record.IsCorrect
	case FilterIncorrect:
		return !record.IsCorrect
	default:
		return true
	}
}

// apply folds one answer into the aggregate. today and yesterday are
// calendar days derived from the current instant, not from the record.
func (s *Stats) apply(record AnswerRecord, today, yesterday string) {
	s.TotalAttempts++
	if record.IsCorrect {
		s.CorrectAnswers++
	}

	switch s.LastAttemptDate {
	case yesterday:
		s.Streak++
	case today:
		// Same day: streak neither extends nor resets.
	default:
		s.Streak = 1
	}
	s.LastAttemptDate = today

	s.History = append(s.History, record)

	if !s.IsSolved(record.ProblemID) {
		s.SolvedProblems = append(s.SolvedProblems, record.ProblemID)
	}
}
