// Command seed fills the configured store with demo data.
package main

import (
	"context"
	"flag"
	"log"

	"socialvibe/internal/bootstrap"
	"socialvibe/internal/config"
	"socialvibe/internal/models"
	"socialvibe/internal/observability"
	"socialvibe/internal/repository"
	"socialvibe/internal/seed"
)

func main() {
	numUsers := flag.Int("users", 20, "Number of users to create")
	numPosts := flag.Int("posts", 60, "Number of posts to create")
	numProducts := flag.Int("products", 15, "Number of marketplace listings to create")
	numMessages := flag.Int("messages", 40, "Number of direct messages to create")
	fixture := flag.String("fixture", "", "Apply a YAML fixture file before generating data")
	clean := flag.Bool("clean", false, "Remove existing collections before seeding")
	randSeed := flag.Int64("seed", 0, "Random seed (0 picks one)")
	flag.Parse()

	log.Println("🌱 socialvibe seeder")

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	ctx := observability.WithCorrelationID(context.Background(), models.NewID())
	rt, err := bootstrap.InitRuntime(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to open store: %v", err)
	}
	defer func() { _ = rt.Close(ctx) }()

	if *clean {
		if err := clearAll(ctx, rt); err != nil {
			log.Fatalf("❌ Cleanup failed: %v", err)
		}
		log.Println("🧹 Cleared existing collections")
	}

	s := seed.NewSeeder(seed.Repos{
		Users:    rt.Users,
		Posts:    rt.Posts,
		Products: rt.Products,
		Messages: rt.Messages,
		Reports:  rt.Reports,
	}, *randSeed)

	if *fixture != "" {
		fx, err := seed.LoadFixture(*fixture)
		if err != nil {
			log.Fatalf("❌ %v", err)
		}
		sum, err := s.ApplyFixture(ctx, fx)
		if err != nil {
			log.Fatalf("❌ Fixture seeding failed: %v", err)
		}
		log.Printf("Fixture: %d users, %d posts, %d products\n", sum.Users, sum.Posts, sum.Products)
	}

	sum, err := s.Run(ctx, seed.Options{
		NumUsers:    *numUsers,
		NumPosts:    *numPosts,
		NumProducts: *numProducts,
		NumMessages: *numMessages,
	})
	if err != nil {
		log.Fatalf("❌ Seeding failed: %v", err)
	}

	log.Printf("✅ Created %d users, %d follows, %d posts, %d comments, %d likes, %d products, %d messages\n",
		sum.Users, sum.Follows, sum.Posts, sum.Comments, sum.Likes, sum.Products, sum.Messages)
	log.Printf("All generated accounts use the password %q\n", seed.DefaultPassword)
}

// clearAll removes every shared collection. Per-user saved items are left in
// place; they reference ids that simply stop resolving.
func clearAll(ctx context.Context, rt *bootstrap.Runtime) error {
	for _, name := range []string{
		repository.CollectionUsers,
		repository.CollectionPosts,
		repository.CollectionProducts,
		repository.CollectionMessages,
		repository.CollectionReports,
		repository.CollectionRecentSearches,
	} {
		if err := rt.Store.Remove(ctx, name); err != nil {
			return err
		}
	}
	return rt.Session.Logout(ctx)
}
