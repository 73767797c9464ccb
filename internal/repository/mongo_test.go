package repository

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"gigflow/internal/gigerrors"
	"gigflow/internal/models"
)

// openTestMongo connects to the replica set named by MONGO_URI, using a
// throwaway database. Tests are skipped when MONGO_URI is unset.
func openTestMongo(t *testing.T) *MongoRepo {
	t.Helper()

	uri := os.Getenv("MONGO_URI")
	if uri == "" {
		t.Skip("MONGO_URI not set; skipping MongoDB tests")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	repo, err := OpenMongo(ctx, uri, "gigflow_test_"+uuid.NewString()[:8])
	require.NoError(t, err)
	require.NoError(t, repo.Migrate(ctx))

	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = repo.db.Drop(ctx)
		_ = repo.Close(ctx)
	})
	return repo
}

func TestMongoRepo_Hire(t *testing.T) {
	store := openTestMongo(t)
	ctx := context.Background()
	m := seedMarketplace(t, store, 3)

	rejected, err := hireInTx(ctx, store, m.gig.ID, m.bids[0].ID)
	require.NoError(t, err)
	require.EqualValues(t, 2, rejected)

	statuses := statusesOf(t, store, m.gig.ID)
	require.Equal(t, models.BidHired, statuses[m.bids[0].ID])
	require.Equal(t, models.BidRejected, statuses[m.bids[1].ID])

	_, err = hireInTx(ctx, store, m.gig.ID, m.bids[1].ID)
	require.ErrorIs(t, err, gigerrors.ErrGigNotOpen)

	err = store.CreateBid(ctx, newBid(m.gig.ID, m.freelancers[1].ID, 50, time.Now().UTC()))
	require.ErrorIs(t, err, gigerrors.ErrGigNotOpen)
}

func TestMongoRepo_RollsBackOnError(t *testing.T) {
	store := openTestMongo(t)
	ctx := context.Background()
	m := seedMarketplace(t, store, 2)
	boom := errors.New("injected failure")

	err := store.WithinTx(ctx, func(tx HireTx) error {
		if err := tx.AssignGig(ctx, m.gig.ID); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	gig, err := store.GetGig(ctx, m.gig.ID)
	require.NoError(t, err)
	require.Equal(t, models.GigOpen, gig.Status)
}

func TestMongoRepo_DuplicateEmail(t *testing.T) {
	store := openTestMongo(t)
	ctx := context.Background()

	u := newUser("dup")
	require.NoError(t, store.CreateUser(ctx, u))

	again := newUser("dup2")
	again.Email = u.Email
	require.ErrorIs(t, store.CreateUser(ctx, again), gigerrors.ErrEmailTaken)
}
