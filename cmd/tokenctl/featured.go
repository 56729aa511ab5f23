package main

import (
	"fmt"
	"io"

	"token-platform/domain/model"
	"token-platform/infrastructure/persistence"
	"token-platform/infrastructure/utils"
	"token-platform/usecase"

	"github.com/spf13/cobra"
)

var featuredCmd = &cobra.Command{
	Use:   "featured",
	Short: "Featured slot inspection",
}

var featuredShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the current holder and the minimum next bid",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := economy()
		gormDb, err := persistence.NewGormDB(psqlDb)
		if err != nil {
			return err
		}
		featured := usecase.NewFeaturedUsecase(
			persistence.NewFeaturedSlotRepository(psqlDb),
			persistence.NewVideoRepository(psqlDb, gormDb),
			persistence.NewLedgerRepository(psqlDb),
			nil,
			usecase.FeaturedConfig{MinBid: cfg.Featured.MinBid, Duration: cfg.Featured.Duration(), MaxAttempts: cfg.Featured.MaxAttempts},
			utils.GetCurrentTime,
		)
		state, err := featured.State(cmd.Context())
		if err != nil {
			return err
		}
		return render(cmd.OutOrStdout(), globalFlags.OutputFormat, state, func(w io.Writer) error {
			return printFeatured(w, state)
		})
	},
}

func init() {
	featuredCmd.AddCommand(featuredShowCmd)
}

func printFeatured(w io.Writer, state model.FeaturedState) error {
	if !state.HasFeatured || state.FeaturedVideo == nil {
		_, err := fmt.Fprintf(w, "slot empty, minimum bid %d\n", state.MinBid)
		return err
	}
	v := state.FeaturedVideo
	until := "-"
	if v.FeaturedUntil != nil {
		until = v.FeaturedUntil.Format("2006-01-02 15:04:05 MST")
	}
	_, err := fmt.Fprintf(w, "video %d %q by user %d, bid %d until %s, minimum next bid %d\n",
		v.ID, v.Title, v.UserID, v.CurrentBid, until, state.MinBid)
	return err
}
