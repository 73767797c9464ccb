package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"gigflow/internal/auth"
	"gigflow/internal/models"
	"gigflow/internal/repository"
	"gigflow/utils"
)

// demoPassword is shared by every seeded account.
const demoPassword = "password123"

type seedUser struct {
	key, name, email string
}

type seedGig struct {
	key, title, description string
	budget                  float64
}

type seedBid struct {
	freelancer, gig, message string
	price                    float64
}

var (
	demoUsers = []seedUser{
		{key: "client", name: "Alice Client", email: "client@example.com"},
		{key: "bob", name: "Bob Freelancer", email: "bob@example.com"},
		{key: "charlie", name: "Charlie Dev", email: "charlie@example.com"},
	}
	demoGigs = []seedGig{
		{key: "logo", title: "Modern Logo Design", description: "We need a clean, modern logo for our tech startup. Think Airbnb meets Stripe. Minimalist, geometric, and scalable.", budget: 500},
		{key: "react", title: "React Dashboard Development", description: "Looking for an expert to build a responsive admin dashboard using React, Tailwind CSS, and Recharts. Integration with existing REST API required.", budget: 1500},
		{key: "seo", title: "SEO Content Writing", description: "Need 5 high-quality blog posts about \"The Future of Remote Work\". Each post should be 1000+ words and SEO optimized.", budget: 300},
	}
	demoBids = []seedBid{
		{freelancer: "bob", gig: "logo", price: 450, message: "I specialize in minimalist logo design. Check my portfolio!"},
		{freelancer: "charlie", gig: "logo", price: 500, message: "Experienced designer here. I can deliver 3 concepts in 24 hours."},
		{freelancer: "charlie", gig: "react", price: 1600, message: "I have built similar dashboards before using the requested stack."},
	}
)

// seedSummary counts what seedDemo created.
type seedSummary struct {
	Users, Gigs, Bids int
}

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Wipe the store and load demo users, gigs and bids",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		ctx := cmd.Context()
		store, err := openStore(ctx, cfg)
		if err != nil {
			return err
		}
		defer store.Close(context.WithoutCancel(ctx))

		if err := store.Migrate(ctx); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}

		summary, err := seedDemo(ctx, store, auth.DefaultCost)
		if err != nil {
			return err
		}
		utils.Info("demo data loaded", map[string]any{
			"users":    summary.Users,
			"gigs":     summary.Gigs,
			"bids":     summary.Bids,
			"password": demoPassword,
		})
		return nil
	},
}

func init() {
	rootCmd.AddCommand(seedCmd)
}

// seedDemo wipes store and inserts the demo marketplace: one client with
// three open gigs and two freelancers with pending bids.
func seedDemo(ctx context.Context, store repository.Store, cost int) (seedSummary, error) {
	if err := store.Wipe(ctx); err != nil {
		return seedSummary{}, fmt.Errorf("seed: wipe: %w", err)
	}

	hash, err := auth.HashPassword(demoPassword, cost)
	if err != nil {
		return seedSummary{}, fmt.Errorf("seed: hash password: %w", err)
	}

	now := time.Now().UTC()
	var summary seedSummary

	users := make(map[string]string, len(demoUsers))
	for _, u := range demoUsers {
		user := models.User{
			ID:           utils.GenerateID(),
			Name:         u.name,
			Email:        u.email,
			PasswordHash: hash,
			CreatedAt:    now,
		}
		if err := store.CreateUser(ctx, user); err != nil {
			return summary, fmt.Errorf("seed: user %s: %w", u.email, err)
		}
		users[u.key] = user.ID
		summary.Users++
	}

	gigs := make(map[string]string, len(demoGigs))
	for i, g := range demoGigs {
		gig := models.Gig{
			ID:          utils.GenerateID(),
			Title:       g.title,
			Description: g.description,
			Budget:      g.budget,
			OwnerID:     users["client"],
			Status:      models.GigOpen,
			// newest first lists them in declaration order
			CreatedAt: now.Add(-time.Duration(i) * time.Minute),
			UpdatedAt: now,
		}
		if err := store.CreateGig(ctx, gig); err != nil {
			return summary, fmt.Errorf("seed: gig %q: %w", g.title, err)
		}
		gigs[g.key] = gig.ID
		summary.Gigs++
	}

	for i, b := range demoBids {
		bid := models.Bid{
			ID:           utils.GenerateID(),
			GigID:        gigs[b.gig],
			FreelancerID: users[b.freelancer],
			Message:      b.message,
			Price:        b.price,
			Status:       models.BidPending,
			CreatedAt:    now.Add(time.Duration(i) * time.Second),
		}
		if err := store.CreateBid(ctx, bid); err != nil {
			return summary, fmt.Errorf("seed: bid by %s on %s: %w", b.freelancer, b.gig, err)
		}
		summary.Bids++
	}

	return summary, nil
}
