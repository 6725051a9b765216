package db

import (
	"context"

	"mayadmin/internal/types"
)

// AliasRepo provides read-only access to the device_map table of
// human-readable device names.
type AliasRepo struct {
	db DBTX
}

// NewAliasRepo creates a new AliasRepo backed by the given database
// connection.
func NewAliasRepo(db DBTX) *AliasRepo {
	return &AliasRepo{db: db}
}

// List returns all device aliases, newest first.
func (r *AliasRepo) List(ctx context.Context) ([]types.DeviceAlias, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id, device_id, device_name, created_at, updated_at
		 FROM device_map ORDER BY created_at DESC`,
	)
	if err != nil {
		return nil, types.NewAppError(types.ErrCodeInternalDB, "failed to list device aliases", err)
	}
	defer rows.Close()

	aliases := []types.DeviceAlias{}
	for rows.Next() {
		var a types.DeviceAlias
		if err := rows.Scan(&a.ID, &a.DeviceID, &a.DeviceName, &a.CreatedAt, &a.UpdatedAt); err != nil {
			return nil, types.NewAppError(types.ErrCodeInternalDB, "failed to scan device alias row", err)
		}
		aliases = append(aliases, a)
	}
	if err := rows.Err(); err != nil {
		return nil, types.NewAppError(types.ErrCodeInternalDB, "error iterating device alias rows", err)
	}
	return aliases, nil
}
