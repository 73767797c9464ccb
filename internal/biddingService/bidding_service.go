package bidding

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gigflow/internal/gigerrors"
	"gigflow/internal/models"
	"gigflow/internal/repository"
	"gigflow/utils"
)

// BiddingService defines the business logic for posting gigs and bidding on them
type BiddingService struct {
	repo repository.GigDB
}

// NewBiddingService creates a new BiddingService instance
func NewBiddingService(repo repository.GigDB) *BiddingService {
	return &BiddingService{
		repo: repo,
	}
}

// CreateGig posts a new open gig owned by ownerID
func (s *BiddingService) CreateGig(ctx context.Context, ownerID, title, description string, budget float64) (models.Gig, error) {
	title = strings.TrimSpace(title)
	description = strings.TrimSpace(description)

	if ownerID == "" {
		return models.Gig{}, fmt.Errorf("service: %w - missing owner", gigerrors.ErrInvalidArgument)
	}
	if title == "" {
		return models.Gig{}, fmt.Errorf("service: %w - title is required", gigerrors.ErrInvalidArgument)
	}
	if description == "" {
		return models.Gig{}, fmt.Errorf("service: %w - description is required", gigerrors.ErrInvalidArgument)
	}
	if budget <= 0 {
		return models.Gig{}, fmt.Errorf("service: %w - budget must be a positive number", gigerrors.ErrInvalidArgument)
	}

	now := time.Now().UTC()
	gig := models.Gig{
		ID:          utils.GenerateID(),
		Title:       title,
		Description: description,
		Budget:      budget,
		OwnerID:     ownerID,
		Status:      models.GigOpen,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.repo.CreateGig(ctx, gig); err != nil {
		return models.Gig{}, fmt.Errorf("service: failed to create gig for user %s: %w", ownerID, err)
	}

	return gig, nil
}

// ListOpenGigs returns open gigs newest first with their owners, optionally
// filtered by a case-insensitive title substring
func (s *BiddingService) ListOpenGigs(ctx context.Context, search string) ([]models.GigWithOwner, error) {
	gigs, err := s.repo.ListOpenGigs(ctx, strings.TrimSpace(search))
	if err != nil {
		return nil, fmt.Errorf("service: failed to list open gigs: %w", err)
	}

	owners := newSummaryCache(s.repo)
	out := make([]models.GigWithOwner, 0, len(gigs))
	for _, g := range gigs {
		owner, err := owners.get(ctx, g.OwnerID)
		if err != nil {
			return nil, err
		}
		out = append(out, models.GigWithOwner{Gig: g, Owner: owner})
	}
	return out, nil
}

// PlaceBid validates and records a freelancer's bid on an open gig
func (s *BiddingService) PlaceBid(ctx context.Context, freelancerID, gigID, message string, price float64) (models.Bid, error) {
	if err := s.validateBid(ctx, freelancerID, gigID, price); err != nil {
		return models.Bid{}, err
	}

	bid := models.Bid{
		ID:           utils.GenerateID(),
		GigID:        gigID,
		FreelancerID: freelancerID,
		Message:      strings.TrimSpace(message),
		Price:        price,
		Status:       models.BidPending,
		CreatedAt:    time.Now().UTC(),
	}

	// the repository repeats the open and owner checks atomically with the insert
	if err := s.repo.CreateBid(ctx, bid); err != nil {
		if errors.Is(err, gigerrors.ErrGigNotOpen) {
			return models.Bid{}, fmt.Errorf("service: %w - gig %s is not open: %w", gigerrors.ErrInvalidState, gigID, err)
		}
		return models.Bid{}, fmt.Errorf("service: failed to record bid on gig %s by user %s: %w", gigID, freelancerID, err)
	}

	return bid, nil
}

// validateBid checks input validity and business rules for bidding
func (s *BiddingService) validateBid(ctx context.Context, freelancerID, gigID string, price float64) error {
	if freelancerID == "" {
		return fmt.Errorf("service: %w - missing freelancer", gigerrors.ErrInvalidArgument)
	}
	if !utils.ValidID(gigID) {
		return fmt.Errorf("service: %w - malformed gig id %q", gigerrors.ErrInvalidArgument, gigID)
	}
	if price <= 0 {
		return fmt.Errorf("service: %w - price must be a positive number", gigerrors.ErrInvalidArgument)
	}

	gig, err := s.repo.GetGig(ctx, gigID)
	if err != nil {
		return fmt.Errorf("service: failed to load gig %s: %w", gigID, err)
	}
	if gig.Status != models.GigOpen {
		return fmt.Errorf("service: %w - cannot bid on a gig that is not open", gigerrors.ErrInvalidState)
	}
	if gig.OwnerID == freelancerID {
		return fmt.Errorf("service: %w - cannot bid on your own gig", gigerrors.ErrForbidden)
	}

	return nil
}

// GetBidsForGig returns every bid on the gig, newest first, with the bidder's
// identity. Only the gig owner may list them.
func (s *BiddingService) GetBidsForGig(ctx context.Context, gigID, actingUserID string) ([]models.BidWithFreelancer, error) {
	if !utils.ValidID(gigID) {
		return nil, fmt.Errorf("service: %w - malformed gig id %q", gigerrors.ErrInvalidArgument, gigID)
	}

	gig, err := s.repo.GetGig(ctx, gigID)
	if err != nil {
		return nil, fmt.Errorf("service: failed to load gig %s: %w", gigID, err)
	}
	if gig.OwnerID != actingUserID {
		return nil, fmt.Errorf("service: %w - not authorized to view bids for gig %s", gigerrors.ErrForbidden, gigID)
	}

	bids, err := s.repo.GetBidsByGig(ctx, gigID)
	if err != nil {
		return nil, fmt.Errorf("service: failed to get bids for gig %s: %w", gigID, err)
	}

	freelancers := newSummaryCache(s.repo)
	out := make([]models.BidWithFreelancer, 0, len(bids))
	for _, b := range bids {
		freelancer, err := freelancers.get(ctx, b.FreelancerID)
		if err != nil {
			return nil, err
		}
		out = append(out, models.BidWithFreelancer{Bid: b, Freelancer: freelancer})
	}
	return out, nil
}

type userGetter interface {
	GetUser(ctx context.Context, userID string) (models.User, error)
}

// summaryCache resolves user ids to public summaries once per request.
type summaryCache struct {
	users userGetter
	seen  map[string]models.UserSummary
}

func newSummaryCache(users userGetter) *summaryCache {
	return &summaryCache{users: users, seen: make(map[string]models.UserSummary)}
}

// get returns the summary for userID. A user that no longer exists is
// reported by id only.
func (c *summaryCache) get(ctx context.Context, userID string) (models.UserSummary, error) {
	if s, ok := c.seen[userID]; ok {
		return s, nil
	}
	user, err := c.users.GetUser(ctx, userID)
	switch {
	case errors.Is(err, gigerrors.ErrUserNotFound):
		c.seen[userID] = models.UserSummary{ID: userID}
	case err != nil:
		return models.UserSummary{}, fmt.Errorf("service: failed to load user %s: %w", userID, err)
	default:
		c.seen[userID] = user.Summary()
	}
	return c.seen[userID], nil
}
