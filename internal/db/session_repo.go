package db

import (
	"context"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"

	"mayadmin/internal/istime"
	"mayadmin/internal/types"
)

// sessionColumns defines the standard set of columns selected for session
// queries.
const sessionColumns = `id, session_id, device_id, recording_s3_key, transcription_s3_key, generations,
	total_generations, duration_seconds, status, started_at, ended_at, created_at, is_listened`

// sessionSortColumns is the allow-list of sortable session columns.
var sessionSortColumns = []string{"session_id", "device_id", "created_at", "total_generations", "duration_seconds", "status"}

// SessionRepo provides data access for the sessions table.
type SessionRepo struct {
	db    DBTX
	nowFn func() time.Time
}

// NewSessionRepo creates a new SessionRepo backed by the given database
// connection (pool or transaction).
func NewSessionRepo(db DBTX) *SessionRepo {
	return &SessionRepo{db: db, nowFn: time.Now}
}

func scanSession(row pgx.Row) (types.Session, error) {
	var s types.Session
	err := row.Scan(
		&s.ID,
		&s.SessionID,
		&s.DeviceID,
		&s.RecordingS3Key,
		&s.TranscriptionS3Key,
		&s.Generations,
		&s.TotalGenerations,
		&s.DurationSeconds,
		&s.Status,
		&s.StartedAt,
		&s.EndedAt,
		&s.CreatedAt,
		&s.IsListened,
	)
	return s, err
}

// sessionListQueries builds the count and page queries for a session listing.
// Search matches device_id or session_id; a status value other than "all"
// adds an exact status predicate.
func sessionListQueries(params types.ListParams, now time.Time) (sq.SelectBuilder, sq.SelectBuilder) {
	conds := sq.And{}
	if pattern := substring(params.Search); pattern != "" {
		conds = append(conds, sq.Or{
			sq.Like{"device_id": pattern},
			sq.Like{"session_id": pattern},
		})
	}
	if from := istime.RangeStart(now, params.DateRange); from != nil {
		conds = append(conds, sq.GtOrEq{"created_at": *from})
	}
	if params.Status != "" && params.Status != "all" {
		conds = append(conds, sq.Eq{"status": params.Status})
	}

	sort := sortColumn(sessionSortColumns, params.Sort, "created_at")
	return pagedQueries("sessions", sessionColumns, conds, sort, params.Order, params)
}

// List returns one page of sessions matching the given parameters, together
// with the total matching row count computed under the same predicate.
func (r *SessionRepo) List(ctx context.Context, params types.ListParams) (types.Page[types.Session], error) {
	params = params.Normalize()
	var zero types.Page[types.Session]

	countQ, pageQ := sessionListQueries(params, r.nowFn())

	countSQL, countArgs, err := countQ.ToSql()
	if err != nil {
		return zero, types.NewAppError(types.ErrCodeInternalDB, "failed to build session count query", err)
	}
	var total int
	if err := r.db.QueryRow(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return zero, types.NewAppError(types.ErrCodeInternalDB, "failed to count sessions", err)
	}

	pageSQL, pageArgs, err := pageQ.ToSql()
	if err != nil {
		return zero, types.NewAppError(types.ErrCodeInternalDB, "failed to build session list query", err)
	}
	rows, err := r.db.Query(ctx, pageSQL, pageArgs...)
	if err != nil {
		return zero, types.NewAppError(types.ErrCodeInternalDB, "failed to list sessions", err)
	}
	defer rows.Close()

	var sessions []types.Session
	for rows.Next() {
		s, err := scanSession(rows)
		if err != nil {
			return zero, types.NewAppError(types.ErrCodeInternalDB, "failed to scan session row", err)
		}
		sessions = append(sessions, s)
	}
	if err := rows.Err(); err != nil {
		return zero, types.NewAppError(types.ErrCodeInternalDB, "error iterating session rows", err)
	}

	return types.NewPage(sessions, total, params.Page, params.PageSize), nil
}

// Count returns the total number of sessions.
func (r *SessionRepo) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM sessions`).Scan(&n); err != nil {
		return 0, types.NewAppError(types.ErrCodeInternalDB, "failed to count sessions", err)
	}
	return n, nil
}

// CountCreatedSince returns the number of sessions created at or after ts.
func (r *SessionRepo) CountCreatedSince(ctx context.Context, ts int64) (int, error) {
	var n int
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM sessions WHERE created_at >= $1`, ts).Scan(&n); err != nil {
		return 0, types.NewAppError(types.ErrCodeInternalDB, "failed to count new sessions", err)
	}
	return n, nil
}

// CountCreatedBetween returns the number of sessions created in [start, end).
func (r *SessionRepo) CountCreatedBetween(ctx context.Context, start, end int64) (int, error) {
	var n int
	if err := r.db.QueryRow(ctx,
		`SELECT COUNT(*) FROM sessions WHERE created_at >= $1 AND created_at < $2`,
		start, end,
	).Scan(&n); err != nil {
		return 0, types.NewAppError(types.ErrCodeInternalDB, "failed to count sessions in window", err)
	}
	return n, nil
}

// SumGenerations returns the sum of total_generations across all sessions.
// A NULL sum (no rows) is treated as zero.
func (r *SessionRepo) SumGenerations(ctx context.Context) (int, error) {
	var n int
	if err := r.db.QueryRow(ctx,
		`SELECT COALESCE(SUM(total_generations), 0) FROM sessions`,
	).Scan(&n); err != nil {
		return 0, types.NewAppError(types.ErrCodeInternalDB, "failed to sum generations", err)
	}
	return n, nil
}

// SumGenerationsSince returns the sum of total_generations for sessions
// created at or after ts. A NULL sum is treated as zero.
func (r *SessionRepo) SumGenerationsSince(ctx context.Context, ts int64) (int, error) {
	var n int
	if err := r.db.QueryRow(ctx,
		`SELECT COALESCE(SUM(total_generations), 0) FROM sessions WHERE created_at >= $1`,
		ts,
	).Scan(&n); err != nil {
		return 0, types.NewAppError(types.ErrCodeInternalDB, "failed to sum recent generations", err)
	}
	return n, nil
}

// SumGenerationsBetween returns the sum of total_generations for sessions
// created in [start, end). A NULL sum is treated as zero.
func (r *SessionRepo) SumGenerationsBetween(ctx context.Context, start, end int64) (int, error) {
	var n int
	if err := r.db.QueryRow(ctx,
		`SELECT COALESCE(SUM(total_generations), 0) FROM sessions WHERE created_at >= $1 AND created_at < $2`,
		start, end,
	).Scan(&n); err != nil {
		return 0, types.NewAppError(types.ErrCodeInternalDB, "failed to sum generations in window", err)
	}
	return n, nil
}
