package persistence

import (
	"context"

	"token-platform/domain/model"
	"token-platform/domain/repository"
	"token-platform/infrastructure/logger"

	"go.mongodb.org/mongo-driver/v2/mongo"
)

const defaultMongoDatabase = "token_platform"

// PayoutReportRepository archives one document per payout run.
type PayoutReportRepository struct {
	client   *mongo.Client
	database string
}

func NewPayoutReportRepository(client *mongo.Client, database string) repository.IPayoutReport {
	if database == "" {
		database = defaultMongoDatabase
	}
	return &PayoutReportRepository{client: client, database: database}
}

func (r *PayoutReportRepository) Save(ctx context.Context, report model.PayoutResult) error {
	if r.client == nil {
		logger.GetLogger().Info("MongoDB client is nil - payout report not archived")
		return nil
	}
	_, err := r.client.Database(r.database).Collection("payout_reports").InsertOne(ctx, report)
	if err != nil {
		logger.GetLogger().WithField("error", err).Error("Error while archiving payout report")
	}
	return err
}
