package repository

import (
	"context"

	"token-platform/domain/model"
)

type IHealth interface {
	Check(ctx context.Context) model.Health
}
