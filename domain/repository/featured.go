package repository

import (
	"context"

	"token-platform/domain/model"
)

type IFeaturedSlot interface {
	// Current returns the persisted slot row with its holder, expired or not.
	Current(ctx context.Context) (model.FeaturedSlot, error)
	// Swap atomically installs swap.VideoID as holder when the slot version is
	// still swap.ExpectedVersion, clears the flags of any previous holder and
	// debits the bidder through the ledger. A stale version fails with
	// model.ErrSlotChanged and nothing is written.
	Swap(ctx context.Context, swap model.SlotSwap) (newBalance int64, err error)
}
