package hiring

import (
	"context"
	"errors"
	"fmt"

	"gigflow/internal/gigerrors"
	"gigflow/internal/metrics"
	"gigflow/internal/models"
	"gigflow/internal/notify"
	"gigflow/internal/repository"
	"gigflow/utils"
)

// HiringService performs the hire transaction: it closes a gig, hires the
// chosen bid, rejects every other pending bid on the gig and then tells the
// hired freelancer.
type HiringService struct {
	uow       repository.UnitOfWork
	publisher notify.Publisher
}

// NewHiringService creates a new HiringService instance
func NewHiringService(uow repository.UnitOfWork, publisher notify.Publisher) *HiringService {
	return &HiringService{
		uow:       uow,
		publisher: publisher,
	}
}

// Hire makes the bid the winner of its gig on behalf of actingUserID, who
// must own the gig. The three writes commit together or not at all. The hired
// event is published only after commit and its failure never fails the hire.
func (s *HiringService) Hire(ctx context.Context, bidID, actingUserID string) (models.HiredResult, error) {
	result, err := s.hire(ctx, bidID, actingUserID)
	metrics.ObserveHire(outcome(err))
	if err != nil {
		return models.HiredResult{}, err
	}

	s.publishHired(ctx, result)
	return result, nil
}

func (s *HiringService) hire(ctx context.Context, bidID, actingUserID string) (models.HiredResult, error) {
	if !utils.ValidID(bidID) {
		return models.HiredResult{}, fmt.Errorf("service: %w - malformed bid id %q", gigerrors.ErrInvalidArgument, bidID)
	}

	var result models.HiredResult
	err := s.uow.WithinTx(ctx, func(tx repository.HireTx) error {
		// the unit of work may run fn more than once
		result = models.HiredResult{}

		bid, err := tx.GetBid(ctx, bidID)
		if err != nil {
			return fmt.Errorf("service: failed to load bid %s: %w", bidID, err)
		}
		gig, err := tx.GetGig(ctx, bid.GigID)
		if err != nil {
			return fmt.Errorf("service: failed to load gig %s of bid %s: %w", bid.GigID, bidID, err)
		}
		if gig.OwnerID != actingUserID {
			return fmt.Errorf("service: %w - user %s does not own gig %s", gigerrors.ErrForbidden, actingUserID, gig.ID)
		}
		if gig.Status != models.GigOpen {
			return fmt.Errorf("service: %w - gig %s is already assigned", gigerrors.ErrInvalidState, gig.ID)
		}

		if err := tx.AssignGig(ctx, gig.ID); err != nil {
			return fmt.Errorf("service: failed to assign gig %s: %w", gig.ID, err)
		}
		if err := tx.MarkBidHired(ctx, bid.ID); err != nil {
			return fmt.Errorf("service: failed to hire bid %s: %w", bid.ID, err)
		}
		rejected, err := tx.RejectPendingBids(ctx, gig.ID, bid.ID)
		if err != nil {
			return fmt.Errorf("service: failed to reject competing bids on gig %s: %w", gig.ID, err)
		}

		// read back inside the unit so the response reflects exactly what commits
		hired, err := tx.GetBid(ctx, bid.ID)
		if err != nil {
			return fmt.Errorf("service: failed to reload bid %s: %w", bid.ID, err)
		}
		assigned, err := tx.GetGig(ctx, gig.ID)
		if err != nil {
			return fmt.Errorf("service: failed to reload gig %s: %w", gig.ID, err)
		}
		freelancer, err := freelancerSummary(ctx, tx, bid.FreelancerID)
		if err != nil {
			return err
		}

		result = models.HiredResult{
			Bid:        hired,
			Gig:        assigned,
			Freelancer: freelancer,
			Rejected:   rejected,
		}
		return nil
	})
	if err != nil {
		return models.HiredResult{}, lostRace(err)
	}
	return result, nil
}

// publishHired hands the hired event to the notification boundary. It never
// blocks on delivery and only logs when the event could not be queued.
func (s *HiringService) publishHired(ctx context.Context, result models.HiredResult) {
	ev := notify.Event{
		UserID: result.Bid.FreelancerID,
		Name:   models.EventHired,
		Payload: models.HiredPayload{
			GigID:    result.Gig.ID,
			GigTitle: result.Gig.Title,
			Message:  fmt.Sprintf("You have been hired for %s", result.Gig.Title),
		},
	}
	if err := s.publisher.Publish(ctx, ev); err != nil {
		utils.Warn("HiringService: hired event not queued", map[string]any{
			"bid_id":        result.Bid.ID,
			"gig_id":        result.Gig.ID,
			"freelancer_id": result.Bid.FreelancerID,
			"error":         err.Error(),
		})
	}
}

// lostRace turns a conditional update that matched nothing into InvalidState:
// another hire committed first. The miss can surface from inside the unit or,
// for stores that validate at commit, from the commit itself.
func lostRace(err error) error {
	if errors.Is(err, gigerrors.ErrInvalidState) {
		return err
	}
	if errors.Is(err, gigerrors.ErrGigNotOpen) || errors.Is(err, gigerrors.ErrBidNotPending) {
		return fmt.Errorf("service: %w - %w", gigerrors.ErrInvalidState, err)
	}
	return err
}

// freelancerSummary loads the public identity of the bidder. A bidder whose
// account is gone is reported by id only.
func freelancerSummary(ctx context.Context, tx repository.HireTx, userID string) (models.UserSummary, error) {
	user, err := tx.GetUser(ctx, userID)
	if errors.Is(err, gigerrors.ErrUserNotFound) {
		return models.UserSummary{ID: userID}, nil
	}
	if err != nil {
		return models.UserSummary{}, fmt.Errorf("service: failed to load freelancer %s: %w", userID, err)
	}
	return user.Summary(), nil
}

func outcome(err error) string {
	switch {
	case err == nil:
		return metrics.HireSuccess
	case errors.Is(err, gigerrors.ErrInvalidArgument):
		return metrics.HireInvalid
	case gigerrors.IsNotFound(err):
		return metrics.HireNotFound
	case errors.Is(err, gigerrors.ErrForbidden):
		return metrics.HireForbidden
	case errors.Is(err, gigerrors.ErrInvalidState):
		return metrics.HireInvalidState
	default:
		return metrics.HireError
	}
}
