package repository

import "context"

type RelayOffsetRepository interface {
	Load(ctx context.Context, name string) (int64, error)
	Save(ctx context.Context, name string, lastID int64) error
}
