package leaderboard

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/onnwee/leaderboard/internal/tracing"
)

// SnapshotSource supplies the read-only entry list a query runs against.
// Implementations must return a slice the caller may keep; the engine never
// mutates it.
type SnapshotSource interface {
	Snapshot(ctx context.Context) ([]Entry, error)
}

// Service loads snapshots from a SnapshotSource and evaluates queries on them
// with an Engine, recording metrics and spans along the way.
type Service struct {
	source  SnapshotSource
	engine  *Engine
	metrics *Metrics
	logger  *slog.Logger
}

// ServiceConfig configures a Service. Source is required; the rest default.
type ServiceConfig struct {
	Source  SnapshotSource
	Engine  *Engine
	Metrics *Metrics
	Logger  *slog.Logger
}

// NewService creates a Service.
func NewService(cfg ServiceConfig) (*Service, error) {
	if cfg.Source == nil {
		return nil, errors.New("snapshot source is required")
	}
	if cfg.Engine == nil {
		cfg.Engine = NewEngine()
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &Service{
		source:  cfg.Source,
		engine:  cfg.Engine,
		metrics: cfg.Metrics,
		logger:  cfg.Logger,
	}, nil
}

// Engine returns the engine used by the service.
func (s *Service) Engine() *Engine {
	return s.engine
}

func (s *Service) snapshot(ctx context.Context) ([]Entry, error) {
	entries, err := s.source.Snapshot(ctx)
	if err != nil {
		if s.metrics != nil {
			s.metrics.IncSnapshotErrors()
		}
		return nil, fmt.Errorf("%w: failed to load snapshot: %w", ErrSnapshotUnavailable, err)
	}
	if s.metrics != nil {
		s.metrics.SetSnapshotEntries(len(entries))
	}
	tracing.SetAttributes(ctx, attribute.Int("leaderboard.snapshot_size", len(entries)))
	return entries, nil
}

func (s *Service) observe(mode string, start time.Time) {
	if s.metrics != nil {
		s.metrics.ObserveQuery(mode, time.Since(start).Seconds())
	}
}

// Leaderboard evaluates an offset-mode query.
func (s *Service) Leaderboard(ctx context.Context, q Query) (result *Result, err error) {
	ctx, endSpan := tracing.StartSpan(ctx, "leaderboard.offset")
	defer func() { endSpan(err) }()

	entries, err := s.snapshot(ctx)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	result = s.engine.GetPaginatedLeaderboard(entries, q)
	s.observe(ModeOffset, start)

	tracing.SetAttributes(ctx,
		attribute.Int("leaderboard.page", result.Meta.Page),
		attribute.Int("leaderboard.total", result.Meta.Total),
	)
	return result, nil
}

// Cursor evaluates a cursor-mode request. A malformed cursor returns an
// error wrapping ErrInvalidCursor.
func (s *Service) Cursor(ctx context.Context, req CursorRequest) (page *CursorPage, err error) {
	ctx, endSpan := tracing.StartSpan(ctx, "leaderboard.cursor")
	defer func() { endSpan(err) }()

	entries, err := s.snapshot(ctx)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	page, err = s.engine.PaginateByCursor(entries, req)
	s.observe(ModeCursor, start)
	if err != nil {
		if errors.Is(err, ErrInvalidCursor) && s.metrics != nil {
			s.metrics.IncInvalidCursor()
		}
		return nil, err
	}

	if page.CursorReset {
		s.logger.InfoContext(ctx, "cursor entry no longer in snapshot, restarting from beginning")
		if s.metrics != nil {
			s.metrics.IncCursorReset()
		}
	}
	return page, nil
}

// Search runs the scored search over the current snapshot.
func (s *Service) Search(ctx context.Context, term string, limit int) (hits []SearchHit, err error) {
	ctx, endSpan := tracing.StartSpan(ctx, "leaderboard.search")
	defer func() { endSpan(err) }()

	entries, err := s.snapshot(ctx)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	hits = s.engine.Search(entries, term, limit)
	s.observe(ModeSearch, start)
	return hits, nil
}

// FilterOptions summarizes the current snapshot into facets.
func (s *Service) FilterOptions(ctx context.Context) (opts FilterOptions, err error) {
	ctx, endSpan := tracing.StartSpan(ctx, "leaderboard.facets")
	defer func() { endSpan(err) }()

	entries, err := s.snapshot(ctx)
	if err != nil {
		return FilterOptions{}, err
	}

	start := time.Now()
	opts = s.engine.Summarize(entries)
	s.observe(ModeFacets, start)
	return opts, nil
}

// Standing locates a user in the view q would produce.
func (s *Service) Standing(ctx context.Context, userID string, q Query) (standing Standing, err error) {
	ctx, endSpan := tracing.StartSpan(ctx, "leaderboard.standing")
	defer func() {
		// A missing user is an expected outcome, not a span error.
		if errors.Is(err, ErrUserNotFound) {
			endSpan(nil)
			return
		}
		endSpan(err)
	}()

	entries, err := s.snapshot(ctx)
	if err != nil {
		return Standing{}, err
	}

	start := time.Now()
	standing, err = s.engine.Standing(entries, userID, q)
	s.observe(ModeStanding, start)
	return standing, err
}
