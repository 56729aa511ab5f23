package main

import (
	"context"
	"fmt"
	"io"
	"time"

	"token-platform/bootstrap"
	"token-platform/domain/model"
	"token-platform/infrastructure/cache"
	"token-platform/infrastructure/filecsv"
	"token-platform/infrastructure/logger"
	"token-platform/infrastructure/persistence"
	"token-platform/infrastructure/utils"
	"token-platform/usecase"

	"github.com/spf13/cobra"
)

var (
	payoutAsOf string
	payoutCSV  string
)

var payoutCmd = &cobra.Command{
	Use:   "payout",
	Short: "Weekly referral payouts",
}

var payoutRunCmd = &cobra.Command{
	Use:   "run",
	Short: "Settle the last completed week",
	Long: `Settle every unpaid weekly referral row of the last week completed
before --as-of (default: now). Safe to repeat: paid rows are skipped.

Examples:
  tokenctl payout run
  tokenctl payout run --as-of 2025-03-17T00:00:00Z --csv payouts.csv`,
	RunE: func(cmd *cobra.Command, args []string) error {
		asOf := utils.GetCurrentTime()
		if payoutAsOf != "" {
			parsed, err := time.Parse(time.RFC3339, payoutAsOf)
			if err != nil {
				return fmt.Errorf("--as-of must be RFC3339: %w", err)
			}
			asOf = parsed
		}

		ctx := cmd.Context()
		referrals, closeDeps := newReferralUsecase(ctx)
		defer closeDeps()
		result, err := referrals.RunWeeklyPayout(ctx, asOf)
		if err != nil {
			return err
		}

		if payoutCSV != "" {
			f, err := filecsv.NewFile(payoutCSV)
			if err != nil {
				return err
			}
			if err := filecsv.WritePayoutReport(f, result); err != nil {
				_ = f.Close()
				return err
			}
			if err := f.Close(); err != nil {
				return err
			}
		}
		return render(cmd.OutOrStdout(), globalFlags.OutputFormat, result, func(w io.Writer) error {
			return printPayoutSummary(w, result)
		})
	},
}

func init() {
	payoutRunCmd.Flags().StringVar(&payoutAsOf, "as-of", "", "reference time (RFC3339); the week before it is settled")
	payoutRunCmd.Flags().StringVar(&payoutCSV, "csv", "", "also write the report to this CSV file")
	payoutCmd.AddCommand(payoutRunCmd)
}

func printPayoutSummary(w io.Writer, result model.PayoutResult) error {
	_, err := fmt.Fprintf(w, "week %s - %s: paid %d, skipped %d, failed %d\n",
		result.WeekStart.Format("2006-01-02"), result.WeekEnd.Format("2006-01-02"),
		result.PaidCount, result.SkippedCount, len(result.Failures))
	if err != nil {
		return err
	}
	for _, p := range result.Payouts {
		if _, err := fmt.Fprintf(w, "  #%d referrer %d: %d%% of %d = %d\n",
			p.Position, p.ReferrerID, p.Percent, p.TotalSpending, p.PayoutAmount); err != nil {
			return err
		}
	}
	for _, f := range result.Failures {
		if _, err := fmt.Fprintf(w, "  failed referrer %d: %s\n", f.ReferrerID, f.Error); err != nil {
			return err
		}
	}
	return nil
}

// newReferralUsecase builds the payout path with the same event brokers as
// the server. Redis and Mongo are optional: without them the run is unlocked
// and the report is not archived. The returned func closes the brokers.
func newReferralUsecase(ctx context.Context) (usecase.IReferralUsecase, func()) {
	cfg := economy()

	redisClient, err := cache.NewCache(ctx, fmt.Sprintf("%s:%s", cfg.RedisClient.Host, cfg.RedisClient.Port),
		cfg.RedisClient.Username, cfg.RedisClient.Password)
	if err != nil {
		logger.GetLogger().WithField("error", err).Warn("Redis not available - payout runs without lock")
		redisClient = nil
	}

	mongoDb, err := persistence.NewMongoDB(ctx)
	if err != nil {
		logger.GetLogger().WithField("error", err).Warn("MongoDB not available - report not archived")
		mongoDb = nil
	}

	publisher, closeEvents := bootstrap.InitiateEvents(ctx, cfg)

	referrals := usecase.NewReferralUsecase(
		persistence.NewReferralRepository(psqlDb),
		persistence.NewLedgerRepository(psqlDb),
		bootstrap.PayoutPolicy(cfg.Referral),
		persistence.NewPayoutReportRepository(mongoDb, cfg.Database.Mongo.Name),
		nil,
		bootstrap.Locker(redisClient),
		publisher,
		usecase.ReferralConfig{Location: cfg.Referral.Location()},
		utils.GetCurrentTime,
	)
	return referrals, func() {
		closeEvents()
		if redisClient != nil {
			_ = redisClient.Close()
		}
	}
}
