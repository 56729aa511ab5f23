package usecase_test

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"token-platform/domain/model"
)

// memStore keeps every repository port in memory with the same atomicity the
// SQL repositories give: a failing operation leaves no partial state behind.
type memStore struct {
	mu sync.Mutex

	accounts  map[int64]*model.Account
	entries   []model.LedgerEntry
	videos    map[int64]*model.Video
	nextVideo int64
	slot      model.FeaturedSlot
	users     map[int64]model.User
	nextUser  int64
	edges     []model.ReferralEdge
	stats     map[string]*model.WeeklyReferralStat
	nextStat  int64

	// beforeSwap runs once inside the next Swap, before the version check.
	beforeSwap func(s *memStore)
	settleErr  map[int64]error
	openErr    error
}

func newMemStore() *memStore {
	return &memStore{
		accounts:  map[int64]*model.Account{},
		videos:    map[int64]*model.Video{},
		users:     map[int64]model.User{},
		stats:     map[string]*model.WeeklyReferralStat{},
		settleErr: map[int64]error{},
	}
}

func (s *memStore) seedAccount(id, balance int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.accounts[id] = &model.Account{UserID: id}
	if balance != 0 {
		_, _ = s.applyLocked(model.LedgerEntry{AccountID: id, Amount: balance, Kind: model.EntryDeposit, Description: "seed"})
	}
}

func (s *memStore) seedVideo(ownerID int64, public bool) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextVideo++
	s.videos[s.nextVideo] = &model.Video{ID: s.nextVideo, UserID: ownerID, Title: fmt.Sprintf("video %d", s.nextVideo), Status: model.VideoCompleted, IsPublic: public}
	return s.nextVideo
}

// seedHolder puts videoID in the slot directly, bypassing the ledger.
func (s *memStore) seedHolder(videoID, bid int64, until time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v := s.videos[videoID]
	v.IsFeatured, v.IsPublic, v.CurrentBid = true, true, bid
	u := until
	v.FeaturedUntil = &u
	id := videoID
	s.slot = model.FeaturedSlot{Version: s.slot.Version + 1, VideoID: &id, CurrentBid: bid, FeaturedUntil: &u}
}

func (s *memStore) seedStat(referrerID int64, week model.Week, newReferrals int, spending int64, paid bool) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	st := s.statLocked(referrerID, week)
	st.NewReferrals = newReferrals
	st.TotalSpending = spending
	st.IsPaid = paid
	return st.ID
}

func (s *memStore) video(id int64) model.Video {
	s.mu.Lock()
	defer s.mu.Unlock()
	return *s.videos[id]
}

func (s *memStore) balance(id int64) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.accounts[id].Balance
}

func (s *memStore) entriesOf(id int64) []model.LedgerEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []model.LedgerEntry
	for _, e := range s.entries {
		if e.AccountID == id {
			out = append(out, e)
		}
	}
	return out
}

func (s *memStore) featuredCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, v := range s.videos {
		if v.IsFeatured {
			n++
		}
	}
	return n
}

func (s *memStore) stat(id int64) model.WeeklyReferralStat {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, st := range s.stats {
		if st.ID == id {
			return *st
		}
	}
	return model.WeeklyReferralStat{}
}

func (s *memStore) applyLocked(entry model.LedgerEntry) (int64, error) {
	acc, ok := s.accounts[entry.AccountID]
	if !ok {
		return 0, model.ErrAccountNotFound
	}
	if acc.Balance+entry.Amount < 0 {
		return 0, &model.InsufficientFundsError{Balance: acc.Balance, Required: -entry.Amount}
	}
	acc.Balance += entry.Amount
	entry.ID = int64(len(s.entries) + 1)
	s.entries = append(s.entries, entry)
	return acc.Balance, nil
}

// ledger

func (s *memStore) GetAccount(_ context.Context, id int64) (model.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	acc, ok := s.accounts[id]
	if !ok {
		return model.Account{}, model.ErrAccountNotFound
	}
	return *acc, nil
}

func (s *memStore) OpenAccount(_ context.Context, id int64, opening *model.LedgerEntry) (model.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.openErr != nil {
		return model.Account{}, s.openErr
	}
	if _, ok := s.accounts[id]; ok {
		return model.Account{}, model.ErrConflict
	}
	s.accounts[id] = &model.Account{UserID: id}
	if opening != nil {
		if _, err := s.applyLocked(*opening); err != nil {
			delete(s.accounts, id)
			return model.Account{}, err
		}
	}
	return *s.accounts[id], nil
}

func (s *memStore) ApplyEntry(_ context.Context, entry model.LedgerEntry) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.applyLocked(entry)
}

func (s *memStore) ListEntries(_ context.Context, id int64, limit int) ([]model.LedgerEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.LedgerEntry, 0)
	for i := len(s.entries) - 1; i >= 0 && len(out) < limit; i-- {
		if s.entries[i].AccountID == id {
			out = append(out, s.entries[i])
		}
	}
	return out, nil
}

func (s *memStore) Reconcile(_ context.Context, id int64) (model.Reconciliation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	acc, ok := s.accounts[id]
	if !ok {
		return model.Reconciliation{}, model.ErrAccountNotFound
	}
	var sum int64
	for _, e := range s.entries {
		if e.AccountID == id {
			sum += e.Amount
		}
	}
	return model.Reconciliation{AccountID: id, Balance: acc.Balance, LedgerSum: sum, Consistent: sum == acc.Balance}, nil
}

// featured slot

func (s *memStore) Current(_ context.Context) (model.FeaturedSlot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	slot := s.slot
	if slot.VideoID != nil {
		if v, ok := s.videos[*slot.VideoID]; ok {
			cp := *v
			slot.Video = &cp
		}
	}
	return slot, nil
}

func (s *memStore) Swap(_ context.Context, swap model.SlotSwap) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if hook := s.beforeSwap; hook != nil {
		s.beforeSwap = nil
		hook(s)
	}
	if s.slot.Version != swap.ExpectedVersion {
		return 0, model.ErrSlotChanged
	}
	target, ok := s.videos[swap.VideoID]
	if !ok {
		return 0, model.ErrVideoNotFound
	}
	balance, err := s.applyLocked(model.LedgerEntry{
		AccountID:   swap.BidderID,
		Amount:      -swap.Bid,
		Kind:        model.EntryVideoGeneration,
		Description: swap.Description,
		CreatedAt:   swap.At,
	})
	if err != nil {
		return 0, err
	}
	for id, v := range s.videos {
		if v.IsFeatured && id != swap.VideoID {
			v.IsFeatured, v.IsPublic = false, false
		}
	}
	until := swap.FeaturedUntil
	target.IsFeatured, target.IsPublic, target.CurrentBid, target.FeaturedUntil = true, true, swap.Bid, &until
	id := swap.VideoID
	s.slot = model.FeaturedSlot{Version: s.slot.Version + 1, VideoID: &id, CurrentBid: swap.Bid, FeaturedUntil: &until}
	return balance, nil
}

// videos

func (s *memStore) GetByID(_ context.Context, id int64) (model.Video, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.videos[id]
	if !ok {
		return model.Video{}, model.ErrVideoNotFound
	}
	return *v, nil
}

func (s *memStore) ListByOwner(_ context.Context, ownerID int64) ([]model.Video, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.Video, 0)
	for _, v := range s.videos {
		if v.UserID == ownerID {
			out = append(out, *v)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (s *memStore) ListPublic(_ context.Context) ([]model.Video, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.Video, 0)
	for _, v := range s.videos {
		if v.IsPublic && v.Status == model.VideoCompleted {
			out = append(out, *v)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].VotesCount != out[j].VotesCount {
			return out[i].VotesCount > out[j].VotesCount
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (s *memStore) CreateCharged(_ context.Context, video model.Video, charge model.LedgerEntry) (model.Video, int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	balance, err := s.applyLocked(charge)
	if err != nil {
		return model.Video{}, 0, err
	}
	s.nextVideo++
	video.ID = s.nextVideo
	s.videos[video.ID] = &video
	return video, balance, nil
}

func (s *memStore) SetPublic(_ context.Context, id int64, public bool) (model.Video, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.videos[id]
	if !ok {
		return model.Video{}, model.ErrVideoNotFound
	}
	v.IsPublic = public
	return *v, nil
}

func (s *memStore) SetStatus(_ context.Context, id int64, status model.VideoStatus) (model.Video, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.videos[id]
	if !ok {
		return model.Video{}, model.ErrVideoNotFound
	}
	v.Status = status
	return *v, nil
}

// users

func (s *memStore) GetById(_ context.Context, id int64) (model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return model.User{}, model.ErrUserNotFound
	}
	return u, nil
}

func (s *memStore) GetByUserName(_ context.Context, userName string) (model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.UserName == userName {
			return u, nil
		}
	}
	return model.User{}, model.ErrUserNotFound
}

func (s *memStore) CreateUser(_ context.Context, user model.User) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.UserName == user.UserName {
			return 0, model.ErrConflict
		}
	}
	s.nextUser++
	user.ID = s.nextUser
	s.users[user.ID] = user
	return user.ID, nil
}

func (s *memStore) DeleteUser(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.users, id)
	return nil
}

// referrals

func statKey(referrerID int64, weekStart time.Time) string {
	return fmt.Sprintf("%d|%d", referrerID, weekStart.Unix())
}

func (s *memStore) statLocked(referrerID int64, week model.Week) *model.WeeklyReferralStat {
	key := statKey(referrerID, week.Start)
	st, ok := s.stats[key]
	if !ok {
		s.nextStat++
		st = &model.WeeklyReferralStat{ID: s.nextStat, ReferrerID: referrerID, WeekStart: week.Start, WeekEnd: week.End}
		s.stats[key] = st
	}
	return st
}

func (s *memStore) CreateReferral(_ context.Context, edge model.ReferralEdge, week model.Week) (model.ReferralEdge, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, e := range s.edges {
		if e.ReferredID == edge.ReferredID {
			return model.ReferralEdge{}, model.ErrAlreadyReferred
		}
	}
	edge.ID = int64(len(s.edges) + 1)
	s.edges = append(s.edges, edge)
	s.statLocked(edge.ReferrerID, week).NewReferrals++
	return edge, nil
}

func (s *memStore) ReferrerOf(_ context.Context, referredID int64) (int64, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, e := range s.edges {
		if e.ReferredID == referredID {
			return e.ReferrerID, true, nil
		}
	}
	return 0, false, nil
}

func (s *memStore) ListReferred(_ context.Context, referrerID int64) ([]model.ReferralEdge, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.ReferralEdge, 0)
	for _, e := range s.edges {
		if e.ReferrerID == referrerID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (s *memStore) AddSpending(_ context.Context, referrerID int64, week model.Week, amount int64, _ time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.statLocked(referrerID, week).TotalSpending += amount
	return nil
}

func (s *memStore) WeekStats(_ context.Context, weekStart time.Time) ([]model.WeeklyReferralStat, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.WeeklyReferralStat, 0)
	for _, st := range s.stats {
		if st.WeekStart.Equal(weekStart) && st.NewReferrals > 0 {
			out = append(out, *st)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *memStore) GetStat(_ context.Context, referrerID int64, weekStart time.Time) (*model.WeeklyReferralStat, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	st, ok := s.stats[statKey(referrerID, weekStart)]
	if !ok {
		return nil, nil
	}
	cp := *st
	return &cp, nil
}

func (s *memStore) PaidHistory(_ context.Context, referrerID int64) ([]model.WeeklyReferralStat, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.WeeklyReferralStat, 0)
	for _, st := range s.stats {
		if st.ReferrerID == referrerID && st.IsPaid {
			out = append(out, *st)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].WeekStart.After(out[j].WeekStart) })
	return out, nil
}

func (s *memStore) Settle(_ context.Context, settlement model.Settlement) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.settleErr[settlement.StatID]; err != nil {
		return 0, err
	}
	var st *model.WeeklyReferralStat
	for _, candidate := range s.stats {
		if candidate.ID == settlement.StatID {
			st = candidate
		}
	}
	if st == nil || st.IsPaid {
		return 0, model.ErrAlreadySettled
	}
	var balance int64
	if settlement.Amount > 0 {
		b, err := s.applyLocked(model.LedgerEntry{
			AccountID:   settlement.ReferrerID,
			Amount:      settlement.Amount,
			Kind:        model.EntryReferralBonus,
			Description: settlement.Description,
			CreatedAt:   settlement.At,
		})
		if err != nil {
			return 0, err
		}
		balance = b
	} else {
		acc, ok := s.accounts[settlement.ReferrerID]
		if !ok {
			return 0, model.ErrAccountNotFound
		}
		balance = acc.Balance
	}
	position, percent, amount := settlement.Position, settlement.Percent, settlement.Amount
	st.LeaderboardPosition, st.PayoutPercent, st.PayoutAmount = &position, &percent, &amount
	st.IsPaid = true
	return balance, nil
}

// recordingPublisher keeps every event it is handed.
type recordingPublisher struct {
	mu     sync.Mutex
	events []model.Event
}

func (p *recordingPublisher) Publish(_ context.Context, event model.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return nil
}

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.events))
	for _, e := range p.events {
		out = append(out, e.Type)
	}
	return out
}

type clock struct{ t time.Time }

func (c *clock) Now() time.Time          { return c.t }
func (c *clock) Advance(d time.Duration) { c.t = c.t.Add(d) }
