package db

import (
	"context"
	"errors"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"

	"mayadmin/internal/istime"
	"mayadmin/internal/types"
)

// deviceColumns defines the standard set of columns selected for device
// queries. Used consistently across all query methods to avoid column drift.
const deviceColumns = `id, device_id, expo_notification_id, created_at, updated_at, images_limit, user_type`

// deviceSortColumns is the allow-list of sortable device columns.
var deviceSortColumns = []string{"device_id", "created_at", "updated_at", "images_limit", "user_type"}

// DeviceRepo provides data access for the devices table.
type DeviceRepo struct {
	db    DBTX
	nowFn func() time.Time
}

// NewDeviceRepo creates a new DeviceRepo backed by the given database
// connection (pool or transaction).
func NewDeviceRepo(db DBTX) *DeviceRepo {
	return &DeviceRepo{db: db, nowFn: time.Now}
}

// scanDevice scans a single device row. The columns must match the order
// defined in deviceColumns.
func scanDevice(row pgx.Row) (types.Device, error) {
	var d types.Device
	err := row.Scan(
		&d.ID,
		&d.DeviceID,
		&d.ExpoNotificationID,
		&d.CreatedAt,
		&d.UpdatedAt,
		&d.ImagesLimit,
		&d.UserType,
	)
	return d, err
}

// deviceListQueries builds the count and page queries for a device listing.
// Search matches device_id as a case-sensitive substring.
func deviceListQueries(params types.ListParams, now time.Time) (sq.SelectBuilder, sq.SelectBuilder) {
	conds := sq.And{}
	if pattern := substring(params.Search); pattern != "" {
		conds = append(conds, sq.Like{"device_id": pattern})
	}
	if from := istime.RangeStart(now, params.DateRange); from != nil {
		conds = append(conds, sq.GtOrEq{"created_at": *from})
	}

	sort := sortColumn(deviceSortColumns, params.Sort, "created_at")
	return pagedQueries("devices", deviceColumns, conds, sort, params.Order, params)
}

// List returns one page of devices matching the given parameters, together
// with the total matching row count computed under the same predicate.
func (r *DeviceRepo) List(ctx context.Context, params types.ListParams) (types.Page[types.Device], error) {
	params = params.Normalize()
	var zero types.Page[types.Device]

	countQ, pageQ := deviceListQueries(params, r.nowFn())

	countSQL, countArgs, err := countQ.ToSql()
	if err != nil {
		return zero, types.NewAppError(types.ErrCodeInternalDB, "failed to build device count query", err)
	}
	var total int
	if err := r.db.QueryRow(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return zero, types.NewAppError(types.ErrCodeInternalDB, "failed to count devices", err)
	}

	pageSQL, pageArgs, err := pageQ.ToSql()
	if err != nil {
		return zero, types.NewAppError(types.ErrCodeInternalDB, "failed to build device list query", err)
	}
	rows, err := r.db.Query(ctx, pageSQL, pageArgs...)
	if err != nil {
		return zero, types.NewAppError(types.ErrCodeInternalDB, "failed to list devices", err)
	}
	defer rows.Close()

	var devices []types.Device
	for rows.Next() {
		d, err := scanDevice(rows)
		if err != nil {
			return zero, types.NewAppError(types.ErrCodeInternalDB, "failed to scan device row", err)
		}
		devices = append(devices, d)
	}
	if err := rows.Err(); err != nil {
		return zero, types.NewAppError(types.ErrCodeInternalDB, "error iterating device rows", err)
	}

	return types.NewPage(devices, total, params.Page, params.PageSize), nil
}

// GetByID retrieves a device by its device identifier.
// Returns a not_found_device AppError if no such device exists.
func (r *DeviceRepo) GetByID(ctx context.Context, deviceID string) (*types.Device, error) {
	row := r.db.QueryRow(ctx,
		`SELECT `+deviceColumns+` FROM devices WHERE device_id = $1`,
		deviceID,
	)

	d, err := scanDevice(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, types.NewAppError(types.ErrCodeNotFoundDevice, "device not found", nil)
		}
		return nil, types.NewAppError(types.ErrCodeInternalDB, "failed to retrieve device", err)
	}
	return &d, nil
}

// UserTypes returns the full device_id -> user_type lookup map, used to join
// provider payments against local device tiers.
func (r *DeviceRepo) UserTypes(ctx context.Context) (map[string]string, error) {
	rows, err := r.db.Query(ctx, `SELECT device_id, user_type FROM devices`)
	if err != nil {
		return nil, types.NewAppError(types.ErrCodeInternalDB, "failed to query device user types", err)
	}
	defer rows.Close()

	result := make(map[string]string)
	for rows.Next() {
		var deviceID, userType string
		if err := rows.Scan(&deviceID, &userType); err != nil {
			return nil, types.NewAppError(types.ErrCodeInternalDB, "failed to scan device user type row", err)
		}
		result[deviceID] = userType
	}
	if err := rows.Err(); err != nil {
		return nil, types.NewAppError(types.ErrCodeInternalDB, "error iterating device user type rows", err)
	}
	return result, nil
}

// Promote sets a device's user_type to premium and stamps updated_at.
// Returns a not_found_device AppError when the device does not exist.
// The transition is one-way; this system never reverts it.
func (r *DeviceRepo) Promote(ctx context.Context, deviceID string) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE devices SET user_type = $1, updated_at = $2 WHERE device_id = $3`,
		types.UserTypePremium,
		r.nowFn().Unix(),
		deviceID,
	)
	if err != nil {
		return types.NewAppError(types.ErrCodeInternalDB, "failed to promote device", err)
	}
	if tag.RowsAffected() == 0 {
		return types.NewAppError(types.ErrCodeNotFoundDevice, "device not found", nil)
	}
	return nil
}

// Count returns the total number of devices.
func (r *DeviceRepo) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM devices`).Scan(&n); err != nil {
		return 0, types.NewAppError(types.ErrCodeInternalDB, "failed to count devices", err)
	}
	return n, nil
}

// CountCreatedSince returns the number of devices created at or after ts.
func (r *DeviceRepo) CountCreatedSince(ctx context.Context, ts int64) (int, error) {
	var n int
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM devices WHERE created_at >= $1`, ts).Scan(&n); err != nil {
		return 0, types.NewAppError(types.ErrCodeInternalDB, "failed to count new devices", err)
	}
	return n, nil
}

// CountCreatedBetween returns the number of devices created in [start, end).
func (r *DeviceRepo) CountCreatedBetween(ctx context.Context, start, end int64) (int, error) {
	var n int
	if err := r.db.QueryRow(ctx,
		`SELECT COUNT(*) FROM devices WHERE created_at >= $1 AND created_at < $2`,
		start, end,
	).Scan(&n); err != nil {
		return 0, types.NewAppError(types.ErrCodeInternalDB, "failed to count devices in window", err)
	}
	return n, nil
}

// CountPremium returns the number of devices tagged premium.
func (r *DeviceRepo) CountPremium(ctx context.Context) (int, error) {
	var n int
	if err := r.db.QueryRow(ctx,
		`SELECT COUNT(*) FROM devices WHERE user_type = $1`,
		types.UserTypePremium,
	).Scan(&n); err != nil {
		return 0, types.NewAppError(types.ErrCodeInternalDB, "failed to count premium devices", err)
	}
	return n, nil
}
