package progress

import "testing"

func historyStats() Stats {
	stats := ZeroStats()
	for idx, correct := range []bool{true, false, true, false, false} {
		stats.History = append(stats.History, AnswerRecord{ProblemID: idx + 1, IsCorrect: correct})
	}
	stats.TotalAttempts = 5
	stats.CorrectAnswers = 2
	return stats
}

func TestAccuracy(t *testing.T) {
	if got := ZeroStats().AccuracyLabel(); got != "0.0" {
		t.Fatalf("zero accuracy label = %q, want 0.0", got)
	}

	stats := Stats{TotalAttempts: 3, CorrectAnswers: 2}
	if got := stats.AccuracyLabel(); got != "66.7" {
		t.Fatalf("accuracy label = %q, want 66.7", got)
	}
	if got := historyStats().Accuracy(); got != 40 {
		t.Fatalf("accuracy = %v, want 40", got)
	}
}

func TestRecentIsNewestFirstAndLimited(t *testing.T) {
	recent := historyStats().Recent(3)
	if len(recent) != 3 {
		t.Fatalf("len = %d, want 3", len(recent))
	}
	if recent[0].ProblemID != 5 || recent[2].ProblemID != 3 {
		t.Fatalf("unexpected order: %+v", recent)
	}
	if all := historyStats().Recent(0); len(all) != 5 {
		t.Fatalf("Recent(0) len = %d, want all 5", len(all))
	}
}

func TestFilterByCorrectness(t *testing.T) {
	stats := historyStats()

	correct := stats.Filter(FilterCorrect, 0)
	if len(correct) != 2 || correct[0].ProblemID != 3 || correct[1].ProblemID != 1 {
		t.Fatalf("correct = %+v", correct)
	}

	incorrect := stats.Filter(FilterIncorrect, 2)
	if len(incorrect) != 2 || incorrect[0].ProblemID != 5 || incorrect[1].ProblemID != 4 {
		t.Fatalf("incorrect = %+v", incorrect)
	}
}

func TestParseHistoryFilter(t *testing.T) {
	tests := map[string]HistoryFilter{
		"":          FilterAll,
		"ALL":       FilterAll,
		"correct":   FilterCorrect,
		"incorrect": FilterIncorrect,
		" wrong ":   FilterIncorrect,
	}
	for input, want := range tests {
		got, err := ParseHistoryFilter(input)
		if err != nil || got != want {
			t.Fatalf("ParseHistoryFilter(%q) = (%q, %v), want %q", input, got, err, want)
		}
	}

	if _, err := ParseHistoryFilter("sometimes"); err == nil {
		t.Fatalf("expected error for unknown filter")
	}
}
