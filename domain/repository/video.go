package repository

import (
	"context"

	"token-platform/domain/model"
)

type IVideo interface {
	GetByID(ctx context.Context, id int64) (model.Video, error)
	ListByOwner(ctx context.Context, userID int64) ([]model.Video, error)
	ListPublic(ctx context.Context) ([]model.Video, error)
	// CreateCharged inserts video and applies charge in one transaction.
	CreateCharged(ctx context.Context, video model.Video, charge model.LedgerEntry) (model.Video, int64, error)
	SetPublic(ctx context.Context, id int64, public bool) (model.Video, error)
	SetStatus(ctx context.Context, id int64, status model.VideoStatus) (model.Video, error)
}
