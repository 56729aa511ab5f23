package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"token-platform/domain/model"
	"token-platform/domain/repository"

	"github.com/redis/go-redis/v9"
)

type LeaderboardCache struct {
	client *redis.Client
}

func NewLeaderboardCache(client *redis.Client) repository.ILeaderboardCache {
	return &LeaderboardCache{client: client}
}

func leaderboardKey(weekStart time.Time) string {
	return fmt.Sprintf("referral:leaderboard:%d", weekStart.Unix())
}

// Get returns nil without error on a miss or when redis is not configured.
func (c *LeaderboardCache) Get(ctx context.Context, weekStart time.Time) (*model.Leaderboard, error) {
	if c.client == nil {
		return nil, nil
	}
	raw, err := c.client.Get(ctx, leaderboardKey(weekStart)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var board model.Leaderboard
	if err := json.Unmarshal(raw, &board); err != nil {
		return nil, err
	}
	return &board, nil
}

func (c *LeaderboardCache) Set(ctx context.Context, board model.Leaderboard, ttl time.Duration) error {
	if c.client == nil {
		return nil
	}
	data, err := json.Marshal(board)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, leaderboardKey(board.WeekStart), data, ttl).Err()
}
