package progress

import (
	"encoding/json"
)

// SchemaVersion is written with every snapshot. Snapshots without a version
// predate it: the date-keyed layout had no solvedProblems, the id-keyed
// layout had them but no version.
const SchemaVersion = 2

type snapshot struct {
	Version int `json:"version"`
	Stats
}

func encodeSnapshot(stats Stats) ([]byte, error) {
	return json.Marshal(snapshot{
		Version: SchemaVersion,
		Stats:   normalize(stats),
	})
}

// decodeSnapshot parses a stored snapshot and upgrades legacy layouts.
// migrated reports whether the caller should write the result back.
func decodeSnapshot(data []byte) (stats Stats, migrated bool, err error) {
	var raw snapshot
	if err := json.Unmarshal(data, &raw); err != nil {
		return Stats{}, false, err
	}

	if raw.Version < SchemaVersion {
		migrated = true
	}
	return normalize(raw.Stats), migrated, nil
}

// normalize backfills absent collections and repairs impossible values so
// every field of a loaded Stats is usable.
func normalize(stats Stats) Stats {
	if stats.History == nil {
		stats.History = []AnswerRecord{}
	}
	if stats.SolvedProblems == nil {
		stats.SolvedProblems = []int{}
	} else {
		stats.SolvedProblems = dedupe(stats.SolvedProblems)
	}
	if stats.TotalAttempts < 0 {
		stats.TotalAttempts = 0
	}
	if stats.CorrectAnswers < 0 {
		stats.CorrectAnswers = 0
	}
	if stats.Streak < 0 {
		stats.Streak = 0
	}
	return stats
}

func dedupe(ids []int) []int {
	seen := make(map[int]struct{}, len(ids))
	out := make([]int, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
