package persistence

import (
	"context"
	"database/sql"
	"time"

	"token-platform/domain/model"
	"token-platform/domain/repository"
	"token-platform/infrastructure/logger"

	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/v2/mongo"
)

const healthTimeout = 2 * time.Second

type HealthRepository struct {
	postgresDB *sql.DB
	mongoDb    *mongo.Client
	redis      *redis.Client
}

// NewHealthRepository accepts nil for the optional mongo and redis clients.
func NewHealthRepository(postgresDB *sql.DB, mongoDb *mongo.Client, redisClient *redis.Client) repository.IHealth {
	return &HealthRepository{postgresDB: postgresDB, mongoDb: mongoDb, redis: redisClient}
}

func (h *HealthRepository) Check(ctx context.Context) model.Health {
	ctx, cancel := context.WithTimeout(ctx, healthTimeout)
	defer cancel()

	health := model.Health{Status: model.HealthOK, Components: map[string]string{}}

	if h.postgresDB == nil {
		health.Components["postgres"] = "not configured"
		health.Status = model.HealthDown
	} else if err := h.postgresDB.PingContext(ctx); err != nil {
		logger.GetLogger().WithField("error", err).Error("postgres ping failed")
		health.Components["postgres"] = model.HealthDown
		health.Status = model.HealthDown
	} else {
		health.Components["postgres"] = model.HealthOK
	}

	optional := func(name string, configured bool, ping func() error) {
		if !configured {
			health.Components[name] = "not configured"
			return
		}
		if err := ping(); err != nil {
			logger.GetLogger().WithField("error", err).Warnf("%s ping failed", name)
			health.Components[name] = model.HealthDown
			if health.Status == model.HealthOK {
				health.Status = model.HealthDegraded
			}
			return
		}
		health.Components[name] = model.HealthOK
	}
	optional("mongo", h.mongoDb != nil, func() error { return h.mongoDb.Ping(ctx, nil) })
	optional("redis", h.redis != nil, func() error { return h.redis.Ping(ctx).Err() })

	return health
}
