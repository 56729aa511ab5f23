package filecsv

import (
	"encoding/csv"
	"io"
	"os"
	"strconv"

	"token-platform/domain/model"
	"token-platform/infrastructure/logger"
)

var payoutHeader = []string{
	"week_start", "week_end", "referrer_id", "position", "new_referrals",
	"total_spending", "percent", "payout_amount", "new_balance", "error",
}

// NewFile creates or truncates path for writing.
func NewFile(path string) (*os.File, error) {
	file, err := os.OpenFile(path, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
	if err != nil {
		logger.GetLogger().WithField("error", err).Error("Error while open file")
		return nil, err
	}
	return file, nil
}

// WritePayoutReport writes one row per payout and one per failure.
func WritePayoutReport(w io.Writer, report model.PayoutResult) error {
	weekStart := report.WeekStart.Format("2006-01-02")
	weekEnd := report.WeekEnd.Format("2006-01-02")

	cw := csv.NewWriter(w)
	if err := cw.Write(payoutHeader); err != nil {
		return err
	}
	for _, p := range report.Payouts {
		if err := cw.Write([]string{
			weekStart, weekEnd,
			strconv.FormatInt(p.ReferrerID, 10),
			strconv.Itoa(p.Position),
			strconv.Itoa(p.NewReferrals),
			strconv.FormatInt(p.TotalSpending, 10),
			strconv.Itoa(p.Percent),
			strconv.FormatInt(p.PayoutAmount, 10),
			strconv.FormatInt(p.NewBalance, 10),
			"",
		}); err != nil {
			return err
		}
	}
	for _, f := range report.Failures {
		if err := cw.Write([]string{
			weekStart, weekEnd,
			strconv.FormatInt(f.ReferrerID, 10),
			"", "", "", "", "", "",
			f.Error,
		}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
