package journal

import (
	"context"

	"github.com/starford/headsync/internal/models"
)

// Journal defines the rename log operations.
// Consumers should depend on this interface rather than the concrete *DB type
// to facilitate testing with mocks.
type Journal interface {
	RecordRename(ctx context.Context, r models.Rename) (int64, error)
	Recent(ctx context.Context, limit int) ([]models.Rename, error)
	History(ctx context.Context, path string) ([]models.Rename, error)
	Close() error
}

// Verify *DB satisfies Journal at compile time.
var _ Journal = (*DB)(nil)
