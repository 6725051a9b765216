package db

import (
	"context"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"

	"mayadmin/internal/istime"
	"mayadmin/internal/types"
)

const supportColumns = `id, device_id, category, message, status, created_at, updated_at`

// supportSortColumns is the allow-list of sortable support request columns.
var supportSortColumns = []string{"id", "device_id", "category", "status", "created_at"}

// SupportRepo provides data access for the support_requests table.
type SupportRepo struct {
	db    DBTX
	nowFn func() time.Time
}

// NewSupportRepo creates a new SupportRepo backed by the given database
// connection (pool or transaction).
func NewSupportRepo(db DBTX) *SupportRepo {
	return &SupportRepo{db: db, nowFn: time.Now}
}

func scanSupportRequest(row pgx.Row) (types.SupportRequest, error) {
	var sr types.SupportRequest
	err := row.Scan(
		&sr.ID,
		&sr.DeviceID,
		&sr.Category,
		&sr.Message,
		&sr.Status,
		&sr.CreatedAt,
		&sr.UpdatedAt,
	)
	return sr, err
}

// supportListQueries builds the count and page queries for a support request
// listing. Search matches device_id, message, or category.
func supportListQueries(params types.ListParams, now time.Time) (sq.SelectBuilder, sq.SelectBuilder) {
	conds := sq.And{}
	if pattern := substring(params.Search); pattern != "" {
		conds = append(conds, sq.Or{
			sq.Like{"device_id": pattern},
			sq.Like{"message": pattern},
			sq.Like{"category": pattern},
		})
	}
	if from := istime.RangeStart(now, params.DateRange); from != nil {
		conds = append(conds, sq.GtOrEq{"created_at": *from})
	}

	sort := sortColumn(supportSortColumns, params.Sort, "created_at")
	return pagedQueries("support_requests", supportColumns, conds, sort, params.Order, params)
}

// List returns one page of support requests matching the given parameters,
// together with the total matching row count computed under the same
// predicate.
func (r *SupportRepo) List(ctx context.Context, params types.ListParams) (types.Page[types.SupportRequest], error) {
	params = params.Normalize()
	var zero types.Page[types.SupportRequest]

	countQ, pageQ := supportListQueries(params, r.nowFn())

	countSQL, countArgs, err := countQ.ToSql()
	if err != nil {
		return zero, types.NewAppError(types.ErrCodeInternalDB, "failed to build support request count query", err)
	}
	var total int
	if err := r.db.QueryRow(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return zero, types.NewAppError(types.ErrCodeInternalDB, "failed to count support requests", err)
	}

	pageSQL, pageArgs, err := pageQ.ToSql()
	if err != nil {
		return zero, types.NewAppError(types.ErrCodeInternalDB, "failed to build support request list query", err)
	}
	rows, err := r.db.Query(ctx, pageSQL, pageArgs...)
	if err != nil {
		return zero, types.NewAppError(types.ErrCodeInternalDB, "failed to list support requests", err)
	}
	defer rows.Close()

	var requests []types.SupportRequest
	for rows.Next() {
		sr, err := scanSupportRequest(rows)
		if err != nil {
			return zero, types.NewAppError(types.ErrCodeInternalDB, "failed to scan support request row", err)
		}
		requests = append(requests, sr)
	}
	if err := rows.Err(); err != nil {
		return zero, types.NewAppError(types.ErrCodeInternalDB, "error iterating support request rows", err)
	}

	return types.NewPage(requests, total, params.Page, params.PageSize), nil
}
