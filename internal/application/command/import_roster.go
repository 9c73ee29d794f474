package command

import (
	"context"
	"fmt"
	"time"

	"github.com/alem-hub/campus-records/internal/domain/shared"
	"github.com/alem-hub/campus-records/internal/domain/university"
	"github.com/alem-hub/campus-records/pkg/logger"
	"github.com/alem-hub/campus-records/pkg/retry"
)

// RosterApplier loads roster data into a registrar.
type RosterApplier interface {
	Apply(data *university.RosterData) (university.ApplyStats, error)
}

// ImportRosterResult summarises an import.
type ImportRosterResult struct {
	Source   string
	Stats    university.ApplyStats
	Attempts int
	Duration time.Duration
}

// ImportRosterHandler seeds a registrar from a roster source.
type ImportRosterHandler struct {
	registrar RosterApplier
	publisher shared.EventPublisher
	policy    retry.Policy
	log       *logger.Logger
}

// NewImportRosterHandler creates a new ImportRosterHandler.
func NewImportRosterHandler(registrar RosterApplier, publisher shared.EventPublisher, log *logger.Logger) *ImportRosterHandler {
	if publisher == nil {
		publisher = shared.NopPublisher{}
	}
	if log == nil {
		log = logger.Nop()
	}
	return &ImportRosterHandler{
		registrar: registrar,
		publisher: publisher,
		log:       log.With(logger.Component("command"), logger.Operation("import_roster")),
	}
}

// WithRetry makes Handle retry loads under p. Only transient failures
// (ErrRosterUnavailable) are retried; a malformed roster fails at once
// whatever p.Retry says.
func (h *ImportRosterHandler) WithRetry(p retry.Policy) *ImportRosterHandler {
	h.policy = p
	return h
}

// Handle loads the source and applies it. On an apply error the entities
// added before the failure stay in the registrar and the partial counts are
// returned with the error.
func (h *ImportRosterHandler) Handle(ctx context.Context, source university.RosterSource) (*ImportRosterResult, error) {
	if source == nil {
		return nil, fmt.Errorf("%w: import_roster: source is required", shared.ErrInvalidInput)
	}

	start := time.Now()
	log := h.log.With(logger.String("source", source.Name()))

	policy := h.policy
	policy.Retry = shared.IsTransient
	policy.OnRetry = func(attempt int, err error, wait time.Duration) {
		log.Warn("roster load attempt failed",
			logger.Int("attempt", attempt), logger.Duration("retry_in", wait), logger.Err(err))
	}

	data, attempts, err := retry.Value(ctx, policy, source.Load)
	if err != nil {
		log.Error("roster load failed", logger.Int("attempts", attempts), logger.Err(err))
		return nil, fmt.Errorf("import_roster: %w", err)
	}

	stats, err := h.registrar.Apply(data)
	result := &ImportRosterResult{Source: source.Name(), Stats: stats, Attempts: attempts, Duration: time.Since(start)}
	if err != nil {
		log.Error("roster apply failed",
			logger.Int("students", stats.Students),
			logger.Int("courses", stats.Courses),
			logger.Err(err),
		)
		return result, fmt.Errorf("import_roster: %w", err)
	}

	publish(h.publisher, h.log, shared.NewRosterImportedEvent(
		source.Name(), stats.Students, stats.Courses, stats.Lecturers, stats.Enrollments,
	))

	log.Info("roster imported",
		logger.Int("lecturers", stats.Lecturers),
		logger.Int("courses", stats.Courses),
		logger.Int("students", stats.Students),
		logger.Int("enrollments", stats.Enrollments),
		logger.Int("grades", stats.Grades),
		logger.Int("marks", stats.Marks),
		logger.Latency(result.Duration),
	)
	return result, nil
}
