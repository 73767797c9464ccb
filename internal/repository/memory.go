package repository

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"gigflow/internal/gigerrors"
	"gigflow/internal/models"
)

// MemoryRepo is a concurrency-safe in-memory implementation of Store
type MemoryRepo struct {
	mu      sync.RWMutex
	users   map[string]models.User // key: userID -> value: user
	emails  map[string]string      // key: lower-cased email -> value: userID
	gigs    map[string]models.Gig  // key: gigID -> value: gig
	bids    map[string]models.Bid  // key: bidID -> value: bid
	gigBids map[string][]string    // key: gigID -> value: bidIDs in insertion order
}

// NewMemoryRepo creates a new in-memory repository instance
func NewMemoryRepo() *MemoryRepo {
	r := &MemoryRepo{}
	r.reset()
	return r
}

func (r *MemoryRepo) reset() {
	r.users = make(map[string]models.User)
	r.emails = make(map[string]string)
	r.gigs = make(map[string]models.Gig)
	r.bids = make(map[string]models.Bid)
	r.gigBids = make(map[string][]string)
}

// CreateUser stores a new user, rejecting duplicate emails
func (r *MemoryRepo) CreateUser(_ context.Context, user models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := strings.ToLower(user.Email)
	if _, taken := r.emails[key]; taken {
		return fmt.Errorf("create user %s: %w", user.Email, gigerrors.ErrEmailTaken)
	}
	r.users[user.ID] = user
	r.emails[key] = user.ID
	return nil
}

// GetUser returns a user by id
func (r *MemoryRepo) GetUser(_ context.Context, userID string) (models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	user, ok := r.users[userID]
	if !ok {
		return models.User{}, fmt.Errorf("get user %s: %w", userID, gigerrors.ErrUserNotFound)
	}
	return user, nil
}

// GetUserByEmail returns a user by email, case-insensitively
func (r *MemoryRepo) GetUserByEmail(_ context.Context, email string) (models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.emails[strings.ToLower(email)]
	if !ok {
		return models.User{}, fmt.Errorf("get user by email %s: %w", email, gigerrors.ErrUserNotFound)
	}
	return r.users[id], nil
}

// CreateGig stores a new gig
func (r *MemoryRepo) CreateGig(_ context.Context, gig models.Gig) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.gigs[gig.ID] = gig
	return nil
}

// GetGig returns a gig by id
func (r *MemoryRepo) GetGig(_ context.Context, gigID string) (models.Gig, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.getGigLocked(gigID)
}

func (r *MemoryRepo) getGigLocked(gigID string) (models.Gig, error) {
	gig, ok := r.gigs[gigID]
	if !ok {
		return models.Gig{}, fmt.Errorf("get gig %s: %w", gigID, gigerrors.ErrGigNotFound)
	}
	return gig, nil
}

// ListOpenGigs returns open gigs newest first, optionally filtered by a
// case-insensitive title substring
func (r *MemoryRepo) ListOpenGigs(_ context.Context, search string) ([]models.Gig, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	needle := strings.ToLower(strings.TrimSpace(search))
	gigs := make([]models.Gig, 0, len(r.gigs))
	for _, g := range r.gigs {
		if g.Status != models.GigOpen {
			continue
		}
		if needle != "" && !strings.Contains(strings.ToLower(g.Title), needle) {
			continue
		}
		gigs = append(gigs, g)
	}
	sort.SliceStable(gigs, func(i, j int) bool { return gigs[i].CreatedAt.After(gigs[j].CreatedAt) })
	return gigs, nil
}

// CreateBid records a pending bid after checking the gig invariants under the write lock
func (r *MemoryRepo) CreateBid(_ context.Context, bid models.Bid) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	gig, err := r.getGigLocked(bid.GigID)
	if err != nil {
		return fmt.Errorf("create bid: %w", err)
	}
	if gig.Status != models.GigOpen {
		return fmt.Errorf("create bid on gig %s: %w", gig.ID, gigerrors.ErrGigNotOpen)
	}
	if gig.OwnerID == bid.FreelancerID {
		return fmt.Errorf("create bid on gig %s: %w - bidder owns the gig", gig.ID, gigerrors.ErrForbidden)
	}

	r.bids[bid.ID] = bid
	r.gigBids[bid.GigID] = append(r.gigBids[bid.GigID], bid.ID)
	return nil
}

// GetBid returns a bid by id
func (r *MemoryRepo) GetBid(_ context.Context, bidID string) (models.Bid, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	bid, ok := r.bids[bidID]
	if !ok {
		return models.Bid{}, fmt.Errorf("get bid %s: %w", bidID, gigerrors.ErrBidNotFound)
	}
	return bid, nil
}

// GetBidsByGig returns all bids for a gig, newest first
func (r *MemoryRepo) GetBidsByGig(_ context.Context, gigID string) ([]models.Bid, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ids := r.gigBids[gigID]
	bids := make([]models.Bid, 0, len(ids))
	for i := len(ids) - 1; i >= 0; i-- {
		bids = append(bids, r.bids[ids[i]])
	}
	sort.SliceStable(bids, func(i, j int) bool { return bids[i].CreatedAt.After(bids[j].CreatedAt) })
	return bids, nil
}

// WithinTx stages the writes made through the HireTx and applies them all at
// commit, or none of them if fn fails or a staged precondition no longer holds.
func (r *MemoryRepo) WithinTx(ctx context.Context, fn func(tx HireTx) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	tx := &memoryTx{
		repo:   r,
		assign: make(map[string]struct{}),
		hire:   make(map[string]struct{}),
	}
	if err := fn(tx); err != nil {
		return err
	}
	return tx.commit()
}

// Migrate is a no-op for the in-memory store.
func (r *MemoryRepo) Migrate(context.Context) error { return nil }

// Wipe removes every record.
func (r *MemoryRepo) Wipe(context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.reset()
	return nil
}

// Close is a no-op for the in-memory store.
func (r *MemoryRepo) Close(context.Context) error { return nil }

// AddGig adds a gig directly, bypassing validation. This method is intended for tests and seeding only.
func (r *MemoryRepo) AddGig(gig models.Gig) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.gigs[gig.ID] = gig
}

// AddBid adds a bid directly, bypassing validation. This method is intended for tests only.
func (r *MemoryRepo) AddBid(bid models.Bid) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.bids[bid.ID] = bid
	r.gigBids[bid.GigID] = append(r.gigBids[bid.GigID], bid.ID)
}

type rejectScope struct {
	gigID       string
	exceptBidID string
}

// memoryTx buffers the hire writes. Reads see committed state with the
// staged writes laid over it.
type memoryTx struct {
	repo    *MemoryRepo
	assign  map[string]struct{}
	hire    map[string]struct{}
	rejects []rejectScope
}

func (t *memoryTx) GetGig(ctx context.Context, gigID string) (models.Gig, error) {
	gig, err := t.repo.GetGig(ctx, gigID)
	if err != nil {
		return models.Gig{}, err
	}
	if _, ok := t.assign[gigID]; ok {
		gig.Status = models.GigAssigned
	}
	return gig, nil
}

func (t *memoryTx) GetBid(ctx context.Context, bidID string) (models.Bid, error) {
	bid, err := t.repo.GetBid(ctx, bidID)
	if err != nil {
		return models.Bid{}, err
	}
	bid.Status = t.overlayBidStatus(bid)
	return bid, nil
}

func (t *memoryTx) GetUser(ctx context.Context, userID string) (models.User, error) {
	return t.repo.GetUser(ctx, userID)
}

func (t *memoryTx) overlayBidStatus(bid models.Bid) models.BidStatus {
	if _, ok := t.hire[bid.ID]; ok {
		return models.BidHired
	}
	if bid.Status == models.BidPending {
		for _, s := range t.rejects {
			if s.gigID == bid.GigID && s.exceptBidID != bid.ID {
				return models.BidRejected
			}
		}
	}
	return bid.Status
}

func (t *memoryTx) AssignGig(ctx context.Context, gigID string) error {
	gig, err := t.GetGig(ctx, gigID)
	if err != nil {
		return fmt.Errorf("assign gig: %w", err)
	}
	if gig.Status != models.GigOpen {
		return fmt.Errorf("assign gig %s: %w", gigID, gigerrors.ErrGigNotOpen)
	}
	t.assign[gigID] = struct{}{}
	return nil
}

func (t *memoryTx) MarkBidHired(ctx context.Context, bidID string) error {
	bid, err := t.GetBid(ctx, bidID)
	if err != nil {
		return fmt.Errorf("mark bid hired: %w", err)
	}
	if bid.Status != models.BidPending {
		return fmt.Errorf("mark bid %s hired: %w", bidID, gigerrors.ErrBidNotPending)
	}
	t.hire[bidID] = struct{}{}
	return nil
}

func (t *memoryTx) RejectPendingBids(_ context.Context, gigID, exceptBidID string) (int64, error) {
	t.repo.mu.RLock()
	var n int64
	for _, id := range t.repo.gigBids[gigID] {
		if id == exceptBidID {
			continue
		}
		if t.overlayBidStatus(t.repo.bids[id]) == models.BidPending {
			n++
		}
	}
	t.repo.mu.RUnlock()

	t.rejects = append(t.rejects, rejectScope{gigID: gigID, exceptBidID: exceptBidID})
	return n, nil
}

// commit re-checks every staged precondition against the committed state and
// applies all writes under one write lock.
func (t *memoryTx) commit() error {
	r := t.repo
	r.mu.Lock()
	defer r.mu.Unlock()

	for gigID := range t.assign {
		if g, ok := r.gigs[gigID]; !ok || g.Status != models.GigOpen {
			return fmt.Errorf("commit: assign gig %s: %w", gigID, gigerrors.ErrGigNotOpen)
		}
	}
	for bidID := range t.hire {
		if b, ok := r.bids[bidID]; !ok || b.Status != models.BidPending {
			return fmt.Errorf("commit: mark bid %s hired: %w", bidID, gigerrors.ErrBidNotPending)
		}
	}

	now := time.Now().UTC()
	for gigID := range t.assign {
		g := r.gigs[gigID]
		g.Status = models.GigAssigned
		g.UpdatedAt = now
		r.gigs[gigID] = g
	}
	for bidID := range t.hire {
		b := r.bids[bidID]
		b.Status = models.BidHired
		r.bids[bidID] = b
	}
	for _, s := range t.rejects {
		for _, id := range r.gigBids[s.gigID] {
			b := r.bids[id]
			if id == s.exceptBidID || b.Status != models.BidPending {
				continue
			}
			b.Status = models.BidRejected
			r.bids[id] = b
		}
	}
	return nil
}
