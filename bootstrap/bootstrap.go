// Package bootstrap holds the wiring shared by the API server and tokenctl.
package bootstrap

import (
	"context"

	"token-platform/domain/repository"
	"token-platform/infrastructure/cache"
	"token-platform/infrastructure/configuration"
	"token-platform/infrastructure/events"
	"token-platform/infrastructure/logger"
	"token-platform/infrastructure/pubsub"
	"token-platform/infrastructure/servicebus"
	"token-platform/usecase"

	"github.com/redis/go-redis/v9"
)

// InitiateEvents fans events out to sinks plus whichever brokers are
// configured. The returned func closes the broker clients.
func InitiateEvents(ctx context.Context, cfg configuration.Config, sinks ...repository.IEventPublisher) (repository.IEventPublisher, func()) {
	publishers := append([]repository.IEventPublisher{}, sinks...)
	closers := []func(){}

	pubSubClient, err := pubsub.NewPubSub(ctx, cfg.Pubsub.ProjectID)
	if err != nil {
		logger.GetLogger().WithField("error", err).Warn("PubSub not available - events stay in process")
	} else {
		p := pubsub.NewEventPublisher(pubSubClient, cfg.Pubsub.Topic)
		publishers = append(publishers, p)
		closers = append(closers, func() {
			p.Close()
			_ = pubSubClient.Close()
		})
	}

	sbClient, err := servicebus.NewServiceBus(ctx, cfg.ServiceBus.Namespace, cfg.ServiceBus.ConnectionString)
	if err != nil {
		logger.GetLogger().WithField("error", err).Warn("Azure Service Bus not available - continuing without Service Bus features")
	} else {
		publishers = append(publishers, servicebus.NewEventSender(sbClient, cfg.ServiceBus.Queue))
		closers = append(closers, func() { _ = sbClient.Close(context.Background()) })
	}

	return events.NewFanout(publishers...), func() {
		for _, c := range closers {
			c()
		}
	}
}

func PayoutPolicy(cfg configuration.Referral) usecase.TieredPayoutPolicy {
	bonus := make([]usecase.VolumeBonus, 0, len(cfg.VolumeBonus))
	for _, b := range cfg.VolumeBonus {
		bonus = append(bonus, usecase.VolumeBonus{MinReferrals: b.MinReferrals, Percent: b.Percent})
	}
	return usecase.TieredPayoutPolicy{
		PositionPercents: cfg.PositionPercents,
		DefaultPercent:   cfg.DefaultPercent,
		VolumeBonus:      bonus,
		MaxPercent:       cfg.MaxPercent,
	}
}

// LeaderboardCache and Locker return nil interfaces when redis is absent.
func LeaderboardCache(client *redis.Client) repository.ILeaderboardCache {
	if client == nil {
		return nil
	}
	return cache.NewLeaderboardCache(client)
}

func Locker(client *redis.Client) repository.ILocker {
	if client == nil {
		return nil
	}
	return cache.NewRedisLocker(client)
}
