package store

import (
	"context"
	"time"

	"PairSentinel/internal/model"
)

// Store persists analysis cycles and notification history.
type Store interface {
	SaveCycle(ctx context.Context, result *model.CycleResult) error
	SaveNotification(ctx context.Context, kind, title, message string) error
	Cleanup(ctx context.Context, olderThan time.Duration) error
	Close() error
}
