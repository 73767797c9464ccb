package repository

import (
	"context"

	"gigflow/internal/models"
)

//go:generate mockgen -source=repository.go -destination=mock_repository.go -package=repository

// GigDB defines the user, gig and bid storage interface for the marketplace
type GigDB interface {
	CreateUser(ctx context.Context, user models.User) error
	GetUser(ctx context.Context, userID string) (models.User, error)
	GetUserByEmail(ctx context.Context, email string) (models.User, error)

	CreateGig(ctx context.Context, gig models.Gig) error
	GetGig(ctx context.Context, gigID string) (models.Gig, error)
	ListOpenGigs(ctx context.Context, search string) ([]models.Gig, error)

	// CreateBid inserts a pending bid. The referenced gig must exist, be open and
	// not be owned by the bidder; the open check and the insert are atomic with
	// respect to a concurrent hire on the same gig.
	CreateBid(ctx context.Context, bid models.Bid) error
	GetBid(ctx context.Context, bidID string) (models.Bid, error)
	GetBidsByGig(ctx context.Context, gigID string) ([]models.Bid, error)

	UnitOfWork
}

// UnitOfWork runs fn inside one atomic unit. If fn returns an error every
// write staged through tx is discarded, otherwise all of them are committed.
type UnitOfWork interface {
	WithinTx(ctx context.Context, fn func(tx HireTx) error) error
}

// HireTx is the set of reads and conditional writes available inside a unit of work.
type HireTx interface {
	GetGig(ctx context.Context, gigID string) (models.Gig, error)
	GetBid(ctx context.Context, bidID string) (models.Bid, error)
	GetUser(ctx context.Context, userID string) (models.User, error)

	// AssignGig moves the gig from open to assigned. It fails with
	// gigerrors.ErrGigNotOpen when no open gig matched.
	AssignGig(ctx context.Context, gigID string) error
	// MarkBidHired moves the bid from pending to hired. It fails with
	// gigerrors.ErrBidNotPending when no pending bid matched.
	MarkBidHired(ctx context.Context, bidID string) error
	// RejectPendingBids rejects every pending bid of gigID except exceptBidID
	// as one bulk update and returns how many bids changed.
	RejectPendingBids(ctx context.Context, gigID, exceptBidID string) (int64, error)
}

// Store is a GigDB with lifecycle and maintenance operations used by the CLI.
type Store interface {
	GigDB
	Migrate(ctx context.Context) error
	Wipe(ctx context.Context) error
	Close(ctx context.Context) error
}
