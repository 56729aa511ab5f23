package repository

import (
	"context"
	"time"

	"token-platform/domain/model"
)

type IEventPublisher interface {
	Publish(ctx context.Context, event model.Event) error
}

type ILeaderboardCache interface {
	Get(ctx context.Context, weekStart time.Time) (*model.Leaderboard, error)
	Set(ctx context.Context, board model.Leaderboard, ttl time.Duration) error
}

// ILocker guards work that must not run concurrently across instances.
type ILocker interface {
	TryLock(ctx context.Context, key string, ttl time.Duration) (release func(), ok bool, err error)
}
