package settings

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/teDdyMucho/flowe-ledger/internal/repos/settings"
)

var _ settings.Settings = (*settingsRepo)(nil)

type settingsRepo struct{ db *sql.DB }

func New(db *sql.DB) *settingsRepo {
	return &settingsRepo{db: db}
}

func (r *settingsRepo) Get(ctx context.Context) (*settings.Global, error) {
	var g settings.Global

	err := r.db.QueryRowContext(ctx, `
		SELECT allow_direct_transfer, version
		FROM settings
		WHERE id = 1
	`).Scan(&g.AllowDirectTransfer, &g.Version)
	if err != nil {
		return nil, fmt.Errorf("get settings: %w", err)
	}

	return &g, nil
}

func (r *settingsRepo) Update(ctx context.Context, allowDirectTransfer bool, fromVersion int64) (*settings.Global, error) {
	var g settings.Global

	err := r.db.QueryRowContext(ctx, `
		UPDATE settings
		SET allow_direct_transfer = $1, version = version + 1
		WHERE id = 1
		  AND version = $2
		RETURNING allow_direct_transfer, version
	`, allowDirectTransfer, fromVersion).Scan(&g.AllowDirectTransfer, &g.Version)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, settings.ErrVersionConflict
		}

		return nil, fmt.Errorf("update settings: %w", err)
	}

	return &g, nil
}
