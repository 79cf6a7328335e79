package httpapi

import (
	"context"
	"time"

	"go.uber.org/zap"

	"little-toeic/internal/problems"
	"little-toeic/internal/progress"
)

// ProblemSource is the upstream problem API. *problems.Client satisfies it.
type ProblemSource interface {
	Random(ctx context.Context) (problems.ProblemResponse, error)
	Today(ctx context.Context) (problems.ProblemResponse, error)
	ByID(ctx context.Context, id int) (problems.ProblemResponse, error)
	ByDate(ctx context.Context, date string) (problems.ProblemResponse, error)
}

type API struct {
	source  ProblemSource
	tracker *progress.Tracker
	logger  *zap.Logger
	now     func() time.Time
}

func NewAPI(source ProblemSource, tracker *progress.Tracker, logger *zap.Logger) *API {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &API{
		source:  source,
		tracker: tracker,
		logger:  logger,
		now:     time.Now,
	}
}
