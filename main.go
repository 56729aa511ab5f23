package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"token-platform/bootstrap"
	"token-platform/domain/model"
	"token-platform/domain/repository"
	"token-platform/infrastructure/cache"
	"token-platform/infrastructure/configuration"
	"token-platform/infrastructure/logger"
	"token-platform/infrastructure/persistence"
	"token-platform/infrastructure/realtime"
	"token-platform/infrastructure/utils"
	httpHandler "token-platform/interfaces/http"
	"token-platform/server"
	"token-platform/usecase"

	"golang.org/x/sync/errgroup"
)

var httpServer *http.Server

func recoverPanic() {
	if err := recover(); err != nil {
		logger.GetLogger().WithField("error", err).Error("Application panic recovered")
	}
}

func main() {
	defer recoverPanic()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(interrupt)

	g, ctx := errgroup.WithContext(ctx)
	cfg := configuration.C

	psqlDb, err := persistence.NewPostgreSQLDB()
	if err != nil {
		logger.GetLogger().WithField("error", err).Error("Cannot connect to PostgreSQL")
		os.Exit(1)
	}
	defer psqlDb.Close()
	if err := persistence.EnsureSchema(psqlDb); err != nil {
		logger.GetLogger().WithField("error", err).Error("Failed ensuring schema")
		os.Exit(1)
	}
	gormDb, err := persistence.NewGormDB(psqlDb)
	if err != nil {
		logger.GetLogger().WithField("error", err).Error("Failed wrapping PostgreSQL with gorm")
		os.Exit(1)
	}

	userRepository, err := InitiateUserRepository(psqlDb)
	if err != nil {
		logger.GetLogger().WithField("error", err).Error("User store initialization failed")
		os.Exit(1)
	}

	mongoDb, err := persistence.NewMongoDB(ctx)
	if err != nil {
		logger.GetLogger().WithField("error", err).Warn("MongoDB not available - payout reports will not be archived")
		mongoDb = nil
	} else {
		logger.GetLogger().Info("MongoDB connected successfully")
	}

	redisClient, err := cache.NewCache(
		ctx,
		fmt.Sprintf("%s:%s", cfg.RedisClient.Host, cfg.RedisClient.Port),
		cfg.RedisClient.Username,
		cfg.RedisClient.Password,
	)
	if err != nil {
		logger.GetLogger().WithField("error", err).Warn("Redis not available - leaderboard cache and payout lock disabled")
		redisClient = nil
	} else {
		logger.GetLogger().Info("Redis client initialized successfully.")
	}

	hub := realtime.NewFeaturedHub()
	publisher, closeEvents := bootstrap.InitiateEvents(ctx, cfg, hub)
	defer closeEvents()

	now := utils.GetCurrentTime
	ledgerRepository := persistence.NewLedgerRepository(psqlDb)
	videoRepository := persistence.NewVideoRepository(psqlDb, gormDb)
	referralUsecase := usecase.NewReferralUsecase(
		persistence.NewReferralRepository(psqlDb),
		ledgerRepository,
		bootstrap.PayoutPolicy(cfg.Referral),
		persistence.NewPayoutReportRepository(mongoDb, cfg.Database.Mongo.Name),
		bootstrap.LeaderboardCache(redisClient),
		bootstrap.Locker(redisClient),
		publisher,
		usecase.ReferralConfig{
			Location:       cfg.Referral.Location(),
			LeaderboardTTL: cfg.Referral.LeaderboardTTL,
		},
		now,
	)
	ledgerUsecase := usecase.NewLedgerUsecase(ledgerRepository, cfg.Economy.MinWithdrawal)
	featuredUsecase := usecase.NewFeaturedUsecase(
		persistence.NewFeaturedSlotRepository(psqlDb),
		videoRepository,
		ledgerRepository,
		publisher,
		usecase.FeaturedConfig{
			MinBid:      cfg.Featured.MinBid,
			Duration:    cfg.Featured.Duration(),
			MaxAttempts: cfg.Featured.MaxAttempts,
		},
		now,
	)
	videoUsecase := usecase.NewVideoUsecase(videoRepository, referralUsecase, publisher, cfg.Economy.TokensPerVideo, now)
	userUsecase := usecase.NewUserUsecase(userRepository, ledgerRepository, referralUsecase, cfg.Economy.InitialBonus, cfg.App.SecretKey, now)

	router := server.InitiateRouter(server.Handlers{
		User:     httpHandler.NewUserHandler(userUsecase),
		Ledger:   httpHandler.NewLedgerHandler(ledgerUsecase),
		Video:    httpHandler.NewVideoHandler(videoUsecase),
		Featured: httpHandler.NewFeaturedHandler(featuredUsecase),
		Referral: httpHandler.NewReferralHandler(referralUsecase, now),
		Health:   httpHandler.NewHealthHandler(persistence.NewHealthRepository(psqlDb, mongoDb, redisClient)),
		Stream:   hub.Serve,
	}, server.Security{
		UserRepository: userRepository,
		SecretKey:      cfg.App.SecretKey,
		AdminKey:       cfg.App.AdminKey,
		AllowOrigins:   cfg.App.AllowOrigins,
	})

	if interval := cfg.Referral.PayoutInterval; interval > 0 {
		g.Go(func() error {
			RunPayoutTicker(ctx, referralUsecase, interval, now)
			return nil
		})
	}

	app := cfg.App
	logger.GetLogger().WithFields(map[string]interface{}{"port": app.Port, "tls": app.TLSEnabled}).Info("Starting application")
	g.Go(func() error {
		httpServer = &http.Server{
			Addr:              fmt.Sprintf(":%d", app.Port),
			Handler:           router,
			ReadHeaderTimeout: 10 * time.Second,
		}
		if app.TLSEnabled && app.TLSCertFile != "" && app.TLSKeyFile != "" {
			logger.GetLogger().WithFields(map[string]interface{}{"cert": app.TLSCertFile, "key": app.TLSKeyFile}).Info("Serving HTTPS")
			if err := httpServer.ListenAndServeTLS(app.TLSCertFile, app.TLSKeyFile); !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		}
		if app.TLSEnabled {
			logger.GetLogger().Error("TLS enabled but cert or key path empty; falling back to HTTP")
		}
		if err := httpServer.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	select {
	case <-interrupt:
		logger.GetLogger().Info("Application shutdown requested")
	case <-ctx.Done():
	}

	cancel()
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if httpServer != nil {
		_ = httpServer.Shutdown(shutdownCtx)
	}

	if err := g.Wait(); err != nil {
		logger.GetLogger().WithField("error", err).Error("Server returned an error")
		os.Exit(2)
	}
}

// InitiateUserRepository picks the identity store. DB_VENDOR=mssql keeps users
// in SQL Server; everything else lives in PostgreSQL.
func InitiateUserRepository(psqlDb *sql.DB) (repository.IUser, error) {
	if os.Getenv("DB_VENDOR") != "mssql" {
		return persistence.NewUserRepository(psqlDb), nil
	}
	mssqlDb, err := persistence.NewMSSQLDB()
	if err != nil {
		return nil, err
	}
	if err := persistence.EnsureUserSchemaMSSQL(mssqlDb); err != nil {
		return nil, err
	}
	logger.GetLogger().Info("Using MSSQL user store")
	return persistence.NewUserRepositoryMSSQL(mssqlDb), nil
}

// RunPayoutTicker settles the last completed week on every tick. Runs are
// idempotent, so ticking more often than weekly only costs a query.
func RunPayoutTicker(ctx context.Context, referrals usecase.IReferralUsecase, interval time.Duration, now func() time.Time) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			runCtx, cancelRun := context.WithTimeout(ctx, interval)
			res, err := referrals.RunWeeklyPayout(runCtx, now())
			cancelRun()
			switch {
			case errors.Is(err, model.ErrConflict):
				logger.GetLogger().Info("Weekly payout running elsewhere, skipping tick")
			case err != nil:
				logger.GetLogger().WithField("error", err).Error("Weekly payout failed")
			case res.PaidCount > 0:
				logger.GetLogger().WithField("paid", res.PaidCount).WithField("week_start", res.WeekStart).Info("Weekly payout settled")
			}
		}
	}
}
