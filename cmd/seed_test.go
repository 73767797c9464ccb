package cmd

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"gigflow/internal/auth"
	"gigflow/internal/config"
	"gigflow/internal/models"
	"gigflow/internal/repository"
	"gigflow/utils"
)

func TestSeedDemo(t *testing.T) {
	t.Parallel()

	stores := map[string]func(t *testing.T) repository.Store{
		"memory": func(*testing.T) repository.Store { return repository.NewMemoryRepo() },
		"sqlite": func(t *testing.T) repository.Store {
			store, err := repository.OpenGorm(config.DriverSQLite, "file:"+utils.GenerateID()+"?mode=memory&cache=shared")
			require.NoError(t, err)
			require.NoError(t, store.Migrate(context.Background()))
			t.Cleanup(func() { _ = store.Close(context.Background()) })
			return store
		},
	}

	for name, open := range stores {
		open := open
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			ctx := context.Background()
			store := open(t)

			// stale data from an earlier run is wiped
			require.NoError(t, store.CreateUser(ctx, models.User{ID: utils.GenerateID(), Name: "Old", Email: "bob@example.com", PasswordHash: "x"}))

			summary, err := seedDemo(ctx, store, bcrypt.MinCost)
			require.NoError(t, err)
			require.Equal(t, seedSummary{Users: 3, Gigs: 3, Bids: 3}, summary)

			client, err := store.GetUserByEmail(ctx, "client@example.com")
			require.NoError(t, err)
			require.Equal(t, "Alice Client", client.Name)
			require.True(t, auth.CheckPassword(client.PasswordHash, demoPassword))

			bob, err := store.GetUserByEmail(ctx, "bob@example.com")
			require.NoError(t, err)
			require.Equal(t, "Bob Freelancer", bob.Name)

			gigs, err := store.ListOpenGigs(ctx, "")
			require.NoError(t, err)
			require.Len(t, gigs, 3)
			require.Equal(t, "Modern Logo Design", gigs[0].Title)
			for _, g := range gigs {
				require.Equal(t, client.ID, g.OwnerID)
				require.Equal(t, models.GigOpen, g.Status)
			}

			logoBids, err := store.GetBidsByGig(ctx, gigs[0].ID)
			require.NoError(t, err)
			require.Len(t, logoBids, 2)
			for _, b := range logoBids {
				require.Equal(t, models.BidPending, b.Status)
			}

			// seeding again starts from scratch
			summary, err = seedDemo(ctx, store, bcrypt.MinCost)
			require.NoError(t, err)
			require.Equal(t, 3, summary.Users)
			gigs, err = store.ListOpenGigs(ctx, "")
			require.NoError(t, err)
			require.Len(t, gigs, 3)
		})
	}
}

func TestOpenStore(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	store, err := openStore(ctx, config.Config{StorageDriver: config.DriverMemory})
	require.NoError(t, err)
	require.IsType(t, &repository.MemoryRepo{}, store)

	_, err = openStore(ctx, config.Config{StorageDriver: "oracle"})
	require.ErrorContains(t, err, "unsupported storage driver")
}

func TestRootCommand_Subcommands(t *testing.T) {
	t.Parallel()

	names := map[string]bool{}
	for _, c := range rootCmd.Commands() {
		names[c.Name()] = true
	}
	for _, want := range []string{"serve", "migrate", "seed"} {
		require.True(t, names[want], "missing %s command", want)
	}
}
