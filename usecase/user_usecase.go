package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"token-platform/domain/model"
	"token-platform/domain/repository"
	"token-platform/infrastructure/logger"
	"token-platform/infrastructure/utils"

	"golang.org/x/crypto/bcrypt"
)

type IUserUsecase interface {
	Login(ctx context.Context, req model.ReqLogin) (string, error)
	// Register creates the user, opens their account with the welcome bonus
	// and links the referrer when one is named.
	Register(ctx context.Context, req model.ReqRegister) (model.User, model.Account, error)
	// AttachReferrer links userID to the named referrer. It is part of sign up:
	// once the account is older than the sign-up window the referrer is fixed.
	AttachReferrer(ctx context.Context, userID int64, referrerUserName string) (model.ReferralEdge, error)
}

const referrerLinkWindow = 15 * time.Minute

type UserUsecase struct {
	userRepository repository.IUser
	ledger         repository.ILedger
	referrals      IReferralUsecase
	initialBonus   int64
	secretKey      string
	now            func() time.Time
}

func NewUserUsecase(
	userRepository repository.IUser,
	ledger repository.ILedger,
	referrals IReferralUsecase,
	initialBonus int64,
	secretKey string,
	now func() time.Time,
) IUserUsecase {
	return &UserUsecase{
		userRepository: userRepository,
		ledger:         ledger,
		referrals:      referrals,
		initialBonus:   initialBonus,
		secretKey:      secretKey,
		now:            now,
	}
}

func (u *UserUsecase) Login(ctx context.Context, req model.ReqLogin) (string, error) {
	user, err := u.userRepository.GetByUserName(ctx, strings.TrimSpace(req.UserName))
	if errors.Is(err, model.ErrNotFound) {
		logger.WithRequest(ctx).WithField("user_name", req.UserName).Warn("login for unknown user")
		return "", model.ErrInvalidCredentials
	}
	if err != nil {
		return "", err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		logger.WithRequest(ctx).WithField("user_id", user.ID).Warn("login with wrong password")
		return "", model.ErrInvalidCredentials
	}
	return utils.GenerateToken(user, u.secretKey, u.now())
}

func (u *UserUsecase) Register(ctx context.Context, req model.ReqRegister) (model.User, model.Account, error) {
	userName := strings.TrimSpace(req.UserName)
	if userName == "" || strings.TrimSpace(req.Name) == "" {
		return model.User{}, model.Account{}, model.NewValidationError("name and user_name are required")
	}
	if len(req.Password) < 6 {
		return model.User{}, model.Account{}, model.NewValidationError("password must be at least 6 characters")
	}

	_, err := u.userRepository.GetByUserName(ctx, userName)
	if err == nil {
		return model.User{}, model.Account{}, model.ErrConflict
	}
	if !errors.Is(err, model.ErrNotFound) {
		return model.User{}, model.Account{}, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return model.User{}, model.Account{}, err
	}
	now := u.now()
	user := model.User{
		Name:      strings.TrimSpace(req.Name),
		UserName:  userName,
		Password:  string(hash),
		CreatedAt: now,
		UpdatedAt: now,
	}
	id, err := u.userRepository.CreateUser(ctx, user)
	if err != nil {
		return model.User{}, model.Account{}, err
	}
	user.ID = id

	var opening *model.LedgerEntry
	if u.initialBonus > 0 {
		opening = &model.LedgerEntry{
			AccountID:   id,
			Amount:      u.initialBonus,
			Kind:        model.EntryDeposit,
			Description: "welcome bonus",
			CreatedAt:   now,
		}
	}
	account, err := u.ledger.OpenAccount(ctx, id, opening)
	if err != nil {
		log := logger.WithRequest(ctx).WithField("user_id", id)
		log.WithField("error", err).Error("open account failed")
		// User and account are written by separate repositories (and may sit in
		// different databases), so the user row is removed by hand.
		if delErr := u.userRepository.DeleteUser(context.WithoutCancel(ctx), id); delErr != nil {
			log.WithField("error", delErr).Error("rollback of user without account failed")
		}
		return model.User{}, model.Account{}, err
	}

	log := logger.WithRequest(ctx).WithField("user_id", id)
	if referrer := strings.TrimSpace(req.ReferrerUserName); referrer != "" {
		if _, err := u.AttachReferrer(ctx, id, referrer); err != nil {
			log.WithField("referrer_user_name", referrer).WithField("error", err).Warn("referrer not linked")
		}
	}
	log.Info("user registered")
	return user, account, nil
}

func (u *UserUsecase) AttachReferrer(ctx context.Context, userID int64, referrerUserName string) (model.ReferralEdge, error) {
	user, err := u.userRepository.GetById(ctx, userID)
	if err != nil {
		return model.ReferralEdge{}, err
	}
	if u.now().Sub(user.CreatedAt) > referrerLinkWindow {
		logger.WithRequest(ctx).WithField("user_id", userID).Warn("referrer link attempted after sign up")
		return model.ReferralEdge{}, fmt.Errorf("referrer can only be set at sign up: %w", model.ErrConflict)
	}
	referrer, err := u.userRepository.GetByUserName(ctx, strings.TrimSpace(referrerUserName))
	if err != nil {
		return model.ReferralEdge{}, err
	}
	return u.referrals.RegisterReferral(ctx, referrer.ID, userID)
}
