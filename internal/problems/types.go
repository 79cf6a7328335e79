package problems

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// DateLayout is the calendar-day format used by the problem source and the
// progress tracker.
const DateLayout = "2006-01-02"

type Choice struct {
	ID   string `json:"id"`
	Text string `json:"text"`
}

// Problem is a single multiple-choice item. CorrectAnswer holds the id of the
// authoritative choice.
type Problem struct {
	ID            int      `json:"id"`
	Type          string   `json:"type"`
	Question      string   `json:"question"`
	Choices       []Choice `json:"choices"`
	CorrectAnswer string   `json:"correct_answer"`
	Explanation   string   `json:"explanation,omitempty"`
}

// ProblemResponse wraps a problem. Date is only set by date-oriented
// endpoints.
type ProblemResponse struct {
	Date    string  `json:"date,omitempty"`
	Problem Problem `json:"problem"`
}

type HealthResponse struct {
	Status    string    `json:"status"`
	Message   string    `json:"message"`
	Timestamp Timestamp `json:"timestamp"`
}

// Timestamp accepts RFC 3339 instants as well as the zone-less ISO-8601
// form some servers emit for UTC.
type Timestamp struct {
	time.Time
}

func (t *Timestamp) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if strings.TrimSpace(raw) == "" {
		t.Time = time.Time{}
		return nil
	}
	parsed, err := parseTime(raw)
	if err != nil {
		return err
	}
	t.Time = parsed
	return nil
}

func (t Timestamp) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.Time.UTC().Format(time.RFC3339Nano))
}

func parseTime(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if parsed, err := time.Parse(time.RFC3339Nano, value); err == nil {
		return parsed, nil
	}
	parsed, err := time.ParseInLocation("2006-01-02T15:04:05.999999999", value, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid timestamp %q", value)
	}
	return parsed, nil
}

func (p Problem) HasChoice(choiceID string) bool {
	choiceID = normalizeChoice(choiceID)
	for _, choice := range p.Choices {
		if normalizeChoice(choice.ID) == choiceID {
			return true
		}
	}
	return false
}

func (p Problem) IsCorrect(choiceID string) bool {
	choiceID = normalizeChoice(choiceID)
	return choiceID != "" && choiceID == normalizeChoice(p.CorrectAnswer)
}

// Choice returns the choice with the given id.
func (p Problem) Choice(choiceID string) (Choice, bool) {
	choiceID = normalizeChoice(choiceID)
	for _, choice := range p.Choices {
		if normalizeChoice(choice.ID) == choiceID {
			return choice, true
		}
	}
	return Choice{}, false
}

// NormalizeChoice trims and upper-cases a choice id so "b " matches "B".
func NormalizeChoice(choiceID string) string {
	return normalizeChoice(choiceID)
}

func normalizeChoice(choiceID string) string {
	return strings.ToUpper(strings.TrimSpace(choiceID))
}
