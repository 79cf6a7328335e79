// Package progress owns the locally persisted quiz progress: answer history,
// aggregate counters and the daily streak.
package progress

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"little-toeic/internal/storage"
)

const DefaultKey = "little_toeic_stats"

// Tracker is the single writer of the progress snapshot. Every operation is
// a whole-snapshot read, and RecordAnswer a whole-snapshot read-modify-write.
type Tracker struct {
	store    storage.Store
	key      string
	clock    Clock
	location *time.Location
	logger   *zap.Logger

	mu sync.Mutex
}

// Option configures a Tracker.
type Option func(*Tracker)

// WithClock replaces the wall clock used for timestamps and streak days.
func WithClock(clock Clock) Option {
	return func(t *Tracker) {
		if clock != nil {
			t.clock = clock
		}
	}
}

// WithLocation sets the timezone calendar days are computed in.
func WithLocation(location *time.Location) Option {
	return func(t *Tracker) {
		if location != nil {
			t.location = location
		}
	}
}

// WithKey stores the snapshot under key instead of DefaultKey.
func WithKey(key string) Option {
	return func(t *Tracker) {
		if strings.TrimSpace(key) != "" {
			t.key = key
		}
	}
}

// WithLogger receives warnings about unreadable or migrated snapshots.
func WithLogger(logger *zap.Logger) Option {
	return func(t *Tracker) {
		if logger != nil {
			t.logger = logger
		}
	}
}

// NewTracker returns a Tracker over store, defaulting to SystemClock and
// time.Local.
func NewTracker(store storage.Store, opts ...Option) *Tracker {
	tracker := &Tracker{
		store:    store,
		key:      DefaultKey,
		clock:    SystemClock,
		location: time.Local,
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(tracker)
	}
	return tracker
}

// Load returns the current aggregate. It never fails: a missing, unreadable
// or malformed snapshot yields ZeroStats.
func (t *Tracker) Load(ctx context.Context) Stats {
	t.mu.Lock()
	defer t.mu.Unlock()

	return t.loadLocked(ctx)
}

// RecordAnswer folds record into the aggregate and persists the whole
// snapshot. The returned Stats is what was written. An error means the
// write failed and the stored snapshot is unchanged.
func (t *Tracker) RecordAnswer(ctx context.Context, record AnswerRecord) (Stats, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	now := t.clock.Now()
	if record.Timestamp.IsZero() {
		record.Timestamp = now.UTC()
	}
	record.SelectedAnswer = strings.TrimSpace(record.SelectedAnswer)

	stats := t.loadLocked(ctx)
	today, yesterday := t.calendarDays(now)
	stats.apply(record, today, yesterday)

	if err := t.saveLocked(ctx, stats); err != nil {
		return Stats{}, err
	}

	t.logger.Debug("answer recorded",
		zap.Int("problem_id", record.ProblemID),
		zap.Bool("correct", record.IsCorrect),
		zap.Int("total_attempts", stats.TotalAttempts),
		zap.Int("streak", stats.Streak),
	)
	return stats, nil
}

func (t *Tracker) IsSolved(ctx context.Context, problemID int) bool {
	return t.Load(ctx).IsSolved(problemID)
}

func (t *Tracker) FindAnswer(ctx context.Context, problemID int) (AnswerRecord, bool) {
	return t.Load(ctx).FindAnswer(problemID)
}

func (t *Tracker) FindAnswerByDate(ctx context.Context, date string) (AnswerRecord, bool) {
	return t.Load(ctx).FindAnswerByDate(date)
}

// Reset erases all persisted progress.
func (t *Tracker) Reset(ctx context.Context) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if err := t.store.Delete(ctx, t.key); err != nil {
		return fmt.Errorf("reset progress: %w", err)
	}
	t.logger.Info("progress reset", zap.String("key", t.key))
	return nil
}

// Today returns midnight of the current calendar day in the tracker's
// location.
func (t *Tracker) Today() time.Time {
	now := t.clock.Now().In(t.location)
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, t.location)
}

func (t *Tracker) calendarDays(now time.Time) (today, yesterday string) {
	local := now.In(t.location)
	return local.Format(DateLayout), local.AddDate(0, 0, -1).Format(DateLayout)
}

func (t *Tracker) loadLocked(ctx context.Context) Stats {
	data, err := t.store.Get(ctx, t.key)
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			t.logger.Warn("progress snapshot unreadable, starting from zero", zap.String("key", t.key), zap.Error(err))
		}
		return ZeroStats()
	}

	stats, migrated, err := decodeSnapshot(data)
	if err != nil {
		t.logger.Warn("progress snapshot malformed, starting from zero", zap.String("key", t.key), zap.Error(err))
		return ZeroStats()
	}

	if migrated {
		if err := t.saveLocked(ctx, stats); err != nil {
			t.logger.Warn("progress snapshot migration not persisted", zap.String("key", t.key), zap.Error(err))
		} else {
			t.logger.Info("progress snapshot upgraded", zap.String("key", t.key), zap.Int("version", SchemaVersion))
		}
	}
	return stats
}

func (t *Tracker) saveLocked(ctx context.Context, stats Stats) error {
	data, err := encodeSnapshot(stats)
	if err != nil {
		return fmt.Errorf("encode progress: %w", err)
	}
	if err := t.store.Put(ctx, t.key, data); err != nil {
		return fmt.Errorf("save progress: %w", err)
	}
	return nil
}
