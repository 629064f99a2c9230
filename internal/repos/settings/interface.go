package settings

import (
	"context"
	"errors"
)

var ErrVersionConflict = errors.New("settings version conflict")

// Global is the singleton service configuration row. Version increases
// by one on every successful update and is checked compare-and-set
// style, so racing admin updates surface as ErrVersionConflict instead
// of silently overwriting each other.
type Global struct {
	AllowDirectTransfer bool
	Version             int64
}

type Settings interface {
	Get(ctx context.Context) (*Global, error)
	Update(ctx context.Context, allowDirectTransfer bool, fromVersion int64) (*Global, error)
}
