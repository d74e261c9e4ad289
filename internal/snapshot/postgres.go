package snapshot

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	_ "github.com/lib/pq" // PostgreSQL driver

	"github.com/onnwee/leaderboard/internal/leaderboard"
	"github.com/onnwee/leaderboard/internal/tracing"
)

// selectEntriesQuery reads every row of leaderboard_entries.
// Ordering is left to the engine.
const selectEntriesQuery = `
	SELECT
		user_id,
		username,
		COALESCE(display_name, ''),
		score,
		total_puzzles_completed,
		total_modules_completed,
		average_score,
		completion_percentage,
		last_active_at,
		COALESCE(country, ''),
		COALESCE(region, '')
	FROM leaderboard_entries`

// OpenPostgres opens and pings a Postgres connection pool.
func OpenPostgres(ctx context.Context, databaseURL string) (*sql.DB, error) {
	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	return db, nil
}

// PostgresSource implements leaderboard.SnapshotSource using the
// leaderboard_entries table.
type PostgresSource struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewPostgresSource creates a new PostgresSource.
func NewPostgresSource(db *sql.DB, logger *slog.Logger) *PostgresSource {
	if logger == nil {
		logger = slog.Default()
	}
	return &PostgresSource{
		db:     db,
		logger: logger,
	}
}

// Snapshot reads all entries.
func (s *PostgresSource) Snapshot(ctx context.Context) (entries []leaderboard.Entry, err error) {
	ctx, endSpan := tracing.StartSourceSpan(ctx, "postgresql", "query")
	defer func() { endSpan(err) }()

	rows, err := s.db.QueryContext(ctx, selectEntriesQuery)
	if err != nil {
		return nil, fmt.Errorf("failed to query leaderboard entries: %w", err)
	}
	defer rows.Close()

	entries = []leaderboard.Entry{}
	for rows.Next() {
		var e leaderboard.Entry
		if err := rows.Scan(
			&e.UserID,
			&e.Username,
			&e.DisplayName,
			&e.Score,
			&e.TotalPuzzlesCompleted,
			&e.TotalModulesCompleted,
			&e.AverageScore,
			&e.CompletionPercentage,
			&e.LastActiveAt,
			&e.Country,
			&e.Region,
		); err != nil {
			return nil, fmt.Errorf("failed to scan leaderboard entry: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate leaderboard entries: %w", err)
	}

	s.logger.DebugContext(ctx, "loaded snapshot from postgres", "entries", len(entries))
	return entries, nil
}

// HealthCheck pings the database.
func (s *PostgresSource) HealthCheck(ctx context.Context) error {
	return s.db.PingContext(ctx)
}
