package store

import (
	"context"
	"time"

	"PairSentinel/internal/model"
)

// Noop is a no-op implementation used when persistence is not configured.
type Noop struct{}

func NewNoop() *Noop { return &Noop{} }

func (n *Noop) SaveCycle(_ context.Context, _ *model.CycleResult) error  { return nil }
func (n *Noop) SaveNotification(_ context.Context, _, _, _ string) error { return nil }
func (n *Noop) Cleanup(_ context.Context, _ time.Duration) error         { return nil }
func (n *Noop) Close() error                                             { return nil }
