package http_test

import (
	"context"
	"time"

	"token-platform/domain/dto"
	"token-platform/domain/model"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/mock"
)

type MockFeaturedUsecase struct{ mock.Mock }

func (m *MockFeaturedUsecase) PlaceBid(ctx context.Context, videoID, bidderID, amount int64) (model.BidResult, error) {
	args := m.Called(ctx, videoID, bidderID, amount)
	return args.Get(0).(model.BidResult), args.Error(1)
}

func (m *MockFeaturedUsecase) Unpublish(ctx context.Context, videoID, ownerID int64) (model.Video, error) {
	args := m.Called(ctx, videoID, ownerID)
	return args.Get(0).(model.Video), args.Error(1)
}

func (m *MockFeaturedUsecase) State(ctx context.Context) (model.FeaturedState, error) {
	args := m.Called(ctx)
	return args.Get(0).(model.FeaturedState), args.Error(1)
}

type MockUserUsecase struct{ mock.Mock }

func (m *MockUserUsecase) Login(ctx context.Context, req model.ReqLogin) (string, error) {
	args := m.Called(ctx, req)
	return args.String(0), args.Error(1)
}

func (m *MockUserUsecase) Register(ctx context.Context, req model.ReqRegister) (model.User, model.Account, error) {
	args := m.Called(ctx, req)
	return args.Get(0).(model.User), args.Get(1).(model.Account), args.Error(2)
}

func (m *MockUserUsecase) AttachReferrer(ctx context.Context, userID int64, referrerUserName string) (model.ReferralEdge, error) {
	args := m.Called(ctx, userID, referrerUserName)
	return args.Get(0).(model.ReferralEdge), args.Error(1)
}

type MockLedgerUsecase struct{ mock.Mock }

func (m *MockLedgerUsecase) GetAccount(ctx context.Context, accountID int64) (model.Account, error) {
	args := m.Called(ctx, accountID)
	return args.Get(0).(model.Account), args.Error(1)
}

func (m *MockLedgerUsecase) ListEntries(ctx context.Context, accountID int64, limit int) ([]model.LedgerEntry, error) {
	args := m.Called(ctx, accountID, limit)
	return args.Get(0).([]model.LedgerEntry), args.Error(1)
}

func (m *MockLedgerUsecase) ApplyEntry(ctx context.Context, entry model.LedgerEntry) (int64, error) {
	args := m.Called(ctx, entry)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockLedgerUsecase) UserEntry(ctx context.Context, accountID int64, req dto.EntryRequest) (int64, error) {
	args := m.Called(ctx, accountID, req)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockLedgerUsecase) Reconcile(ctx context.Context, accountID int64) (model.Reconciliation, error) {
	args := m.Called(ctx, accountID)
	return args.Get(0).(model.Reconciliation), args.Error(1)
}

type MockReferralUsecase struct{ mock.Mock }

func (m *MockReferralUsecase) RegisterReferral(ctx context.Context, referrerID, referredID int64) (model.ReferralEdge, error) {
	args := m.Called(ctx, referrerID, referredID)
	return args.Get(0).(model.ReferralEdge), args.Error(1)
}

func (m *MockReferralUsecase) RecordSpend(ctx context.Context, referredID, amount int64) error {
	return m.Called(ctx, referredID, amount).Error(0)
}

func (m *MockReferralUsecase) RunWeeklyPayout(ctx context.Context, asOf time.Time) (model.PayoutResult, error) {
	args := m.Called(ctx, asOf)
	return args.Get(0).(model.PayoutResult), args.Error(1)
}

func (m *MockReferralUsecase) ListReferred(ctx context.Context, referrerID int64) ([]model.ReferralEdge, error) {
	args := m.Called(ctx, referrerID)
	return args.Get(0).([]model.ReferralEdge), args.Error(1)
}

func (m *MockReferralUsecase) PayoutHistory(ctx context.Context, referrerID int64) (model.PayoutHistory, error) {
	args := m.Called(ctx, referrerID)
	return args.Get(0).(model.PayoutHistory), args.Error(1)
}

func (m *MockReferralUsecase) Leaderboard(ctx context.Context) (model.Leaderboard, error) {
	args := m.Called(ctx)
	return args.Get(0).(model.Leaderboard), args.Error(1)
}

type MockVideoUsecase struct{ mock.Mock }

func (m *MockVideoUsecase) Generate(ctx context.Context, ownerID int64, req dto.GenerateVideoRequest) (model.Video, int64, error) {
	args := m.Called(ctx, ownerID, req)
	return args.Get(0).(model.Video), args.Get(1).(int64), args.Error(2)
}

func (m *MockVideoUsecase) ListMine(ctx context.Context, ownerID int64) ([]model.Video, error) {
	args := m.Called(ctx, ownerID)
	return args.Get(0).([]model.Video), args.Error(1)
}

func (m *MockVideoUsecase) ListPublic(ctx context.Context) ([]dto.PublicVideo, error) {
	args := m.Called(ctx)
	return args.Get(0).([]dto.PublicVideo), args.Error(1)
}

func (m *MockVideoUsecase) MarkStatus(ctx context.Context, videoID int64, status string) (model.Video, error) {
	args := m.Called(ctx, videoID, status)
	return args.Get(0).(model.Video), args.Error(1)
}

type staticHealth struct{ report model.Health }

func (s staticHealth) Check(context.Context) model.Health { return s.report }

// asUser stands in for the auth middleware.
func asUser(id int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set("user_id", id)
		c.Next()
	}
}
