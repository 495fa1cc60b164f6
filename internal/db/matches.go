package db

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/XavierBriggs/fortuna/services/match-feed-service/pkg/models"
	"github.com/lib/pq"
)

// MatchStore defines the interface for match store operations
type MatchStore interface {
	GetMatches(ctx context.Context, filters MatchFilters) ([]models.Match, error)
	GetMatch(ctx context.Context, eventID string) (*models.Match, error)
	UpdateLiveStatus(ctx context.Context, eventID string, status models.LiveStatus) error
	CountMatches(ctx context.Context) (int, error)
	CountStaleMatches(ctx context.Context, olderThan time.Time) (int, error)
	CountFailedJobs(ctx context.Context, since time.Time) (int, error)
	Close() error
	Ping(ctx context.Context) error
}

// MatchFilters contains filters for querying matches
type MatchFilters struct {
	SportID   int
	LeagueIDs []int
	FromTime  *time.Time // start_time >= FromTime (TBD matches kept)
	ToTime    *time.Time // start_time <= ToTime
	Limit     int
}

// Client implements MatchStore on Postgres
type Client struct {
	db *sql.DB
}

// NewClient creates a new match store client
func NewClient(dsn string) (*Client, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Configure connection pool
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	// Test connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &Client{db: db}, nil
}

const matchColumns = `event_id, sport_id, league_id, home_team, away_team,
	       home_team_id, away_team_id, start_time, live_status,
	       home_score, away_score, has_open_markets, last_updated`

// GetMatches retrieves matches with optional filtering
func (c *Client) GetMatches(ctx context.Context, filters MatchFilters) ([]models.Match, error) {
	query := `
		SELECT ` + matchColumns + `
		FROM matches
		WHERE 1=1
	`
	args := []interface{}{}
	argIdx := 1

	if filters.SportID != 0 {
		query += fmt.Sprintf(" AND sport_id = $%d", argIdx)
		args = append(args, filters.SportID)
		argIdx++
	}

	if len(filters.LeagueIDs) > 0 {
		query += fmt.Sprintf(" AND league_id = ANY($%d)", argIdx)
		args = append(args, pq.Array(filters.LeagueIDs))
		argIdx++
	}

	if filters.FromTime != nil {
		query += fmt.Sprintf(" AND (start_time IS NULL OR start_time >= $%d)", argIdx)
		args = append(args, *filters.FromTime)
		argIdx++
	}

	if filters.ToTime != nil {
		query += fmt.Sprintf(" AND (start_time IS NULL OR start_time <= $%d)", argIdx)
		args = append(args, *filters.ToTime)
		argIdx++
	}

	query += " ORDER BY start_time ASC NULLS LAST"

	if filters.Limit > 0 {
		query += fmt.Sprintf(" LIMIT $%d", argIdx)
		args = append(args, filters.Limit)
	}

	rows, err := c.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query matches: %w", err)
	}
	defer rows.Close()

	var matches []models.Match
	for rows.Next() {
		m, err := scanMatch(rows)
		if err != nil {
			return nil, err
		}
		matches = append(matches, m)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate matches: %w", err)
	}

	return matches, nil
}

// GetMatch retrieves a single match by event ID
func (c *Client) GetMatch(ctx context.Context, eventID string) (*models.Match, error) {
	query := `
		SELECT ` + matchColumns + `
		FROM matches
		WHERE event_id = $1
	`

	row := c.db.QueryRowContext(ctx, query, eventID)
	m, err := scanMatch(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query match: %w", err)
	}

	return &m, nil
}

// UpdateLiveStatus sets a match's live status. The write is idempotent:
// setting the same status twice is a no-op at the row level.
func (c *Client) UpdateLiveStatus(ctx context.Context, eventID string, status models.LiveStatus) error {
	query := `
		UPDATE matches
		SET live_status = $1, last_updated = NOW()
		WHERE event_id = $2 AND live_status != $1
	`

	if _, err := c.db.ExecContext(ctx, query, int(status), eventID); err != nil {
		return fmt.Errorf("update live status: %w", err)
	}
	return nil
}

// CountMatches returns the total number of matches
func (c *Client) CountMatches(ctx context.Context) (int, error) {
	var count int
	err := c.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM matches`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count matches: %w", err)
	}
	return count, nil
}

// CountStaleMatches returns the number of matches not updated since olderThan
func (c *Client) CountStaleMatches(ctx context.Context, olderThan time.Time) (int, error) {
	var count int
	err := c.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM matches WHERE last_updated < $1`, olderThan).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count stale matches: %w", err)
	}
	return count, nil
}

// CountFailedJobs returns the number of failed background jobs since the
// given time
func (c *Client) CountFailedJobs(ctx context.Context, since time.Time) (int, error) {
	var count int
	err := c.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM job_runs WHERE status = 'failed' AND finished_at >= $1`,
		since).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count failed jobs: %w", err)
	}
	return count, nil
}

// Close closes the database connection
func (c *Client) Close() error {
	return c.db.Close()
}

// Ping checks database connectivity
func (c *Client) Ping(ctx context.Context) error {
	return c.db.PingContext(ctx)
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanMatch(row rowScanner) (models.Match, error) {
	var (
		m          models.Match
		startTime  sql.NullTime
		homeTeamID sql.NullInt64
		awayTeamID sql.NullInt64
		status     int
	)

	err := row.Scan(
		&m.EventID, &m.SportID, &m.LeagueID, &m.HomeTeam, &m.AwayTeam,
		&homeTeamID, &awayTeamID, &startTime, &status,
		&m.HomeScore, &m.AwayScore, &m.HasOpenMarkets, &m.LastUpdated,
	)
	if err == sql.ErrNoRows {
		return m, err
	}
	if err != nil {
		return m, fmt.Errorf("scan match: %w", err)
	}

	if startTime.Valid {
		t := startTime.Time.UTC()
		m.StartTime = &t
	}
	if homeTeamID.Valid {
		m.HomeTeamID = &homeTeamID.Int64
	}
	if awayTeamID.Valid {
		m.AwayTeamID = &awayTeamID.Int64
	}
	m.LiveStatus = models.LiveStatus(status)

	return m, nil
}
