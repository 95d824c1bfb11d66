// Package seed fills a store with demo data for development and testing. All
// writes go through the repositories so every invariant they enforce holds
// for seeded data too.
package seed

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"socialvibe/internal/models"
	"socialvibe/internal/observability"
	"socialvibe/internal/repository"

	"github.com/brianvoe/gofakeit/v6"
)

// DefaultPassword is the password of every generated account.
const DefaultPassword = "password123"

// Options configures a generated data set.
type Options struct {
	NumUsers    int
	NumPosts    int
	NumProducts int
	NumMessages int
	// Seed makes generation deterministic. Zero picks a random seed.
	Seed int64
}

// Repos are the repositories the seeder writes through.
type Repos struct {
	Users    repository.UserRepository
	Posts    repository.PostRepository
	Products repository.ProductRepository
	Messages repository.MessageRepository
	Reports  repository.ReportRepository
}

// Summary counts what a run created.
type Summary struct {
	Users    int
	Posts    int
	Follows  int
	Comments int
	Likes    int
	Products int
	Messages int
	Reports  int
}

// Seeder creates demo data.
type Seeder struct {
	repos Repos
	faker *gofakeit.Faker
}

// NewSeeder returns a seeder writing through repos.
func NewSeeder(repos Repos, seed int64) *Seeder {
	return &Seeder{repos: repos, faker: gofakeit.New(seed)}
}

// Run generates users, a follow graph, posts with comments and likes,
// products and messages.
func (s *Seeder) Run(ctx context.Context, opts Options) (Summary, error) {
	var sum Summary
	if opts.Seed != 0 {
		s.faker = gofakeit.New(opts.Seed)
	}

	users, err := s.createUsers(ctx, opts.NumUsers)
	if err != nil {
		return sum, err
	}
	sum.Users = len(users)
	if len(users) == 0 {
		return sum, nil
	}

	if sum.Follows, err = s.createFollows(ctx, users); err != nil {
		return sum, err
	}

	posts := make([]*models.Post, 0, opts.NumPosts)
	for i := 0; i < opts.NumPosts; i++ {
		author := users[s.faker.Number(0, len(users)-1)]
		p, err := s.repos.Posts.Create(ctx, author.Snapshot(), s.postInput(users, author))
		if err != nil {
			return sum, fmt.Errorf("create post: %w", err)
		}
		posts = append(posts, p)
	}
	sum.Posts = len(posts)

	for _, p := range posts {
		for j := s.faker.Number(0, 3); j > 0; j-- {
			u := users[s.faker.Number(0, len(users)-1)]
			if _, err := s.repos.Posts.AddComment(ctx, p.ID, u.Snapshot(), s.faker.Sentence(s.faker.Number(3, 10))); err != nil {
				return sum, fmt.Errorf("create comment: %w", err)
			}
			sum.Comments++
		}
		for j := s.faker.Number(0, min(5, len(users))); j > 0; j-- {
			u := users[s.faker.Number(0, len(users)-1)]
			if _, err := s.repos.Posts.Like(ctx, p.ID, u.ID); err != nil {
				return sum, fmt.Errorf("create like: %w", err)
			}
			sum.Likes++
		}
	}

	for i := 0; i < opts.NumProducts; i++ {
		seller := users[s.faker.Number(0, len(users)-1)]
		if _, err := s.repos.Products.Create(ctx, seller.ID, s.productInput()); err != nil {
			return sum, fmt.Errorf("create product: %w", err)
		}
		sum.Products++
	}

	if len(users) > 1 {
		for i := 0; i < opts.NumMessages; i++ {
			from := users[s.faker.Number(0, len(users)-1)]
			to := users[s.faker.Number(0, len(users)-1)]
			if from.ID == to.ID {
				continue
			}
			if _, err := s.repos.Messages.Send(ctx, from.ID, to.ID, s.faker.Sentence(s.faker.Number(2, 12)), "", models.MediaNone); err != nil {
				return sum, fmt.Errorf("create message: %w", err)
			}
			sum.Messages++
		}
	}

	if len(posts) > 0 && s.repos.Reports != nil {
		p := posts[s.faker.Number(0, len(posts)-1)]
		reporter := users[s.faker.Number(0, len(users)-1)]
		if _, err := s.repos.Reports.Create(ctx, p.ID, reporter.ID, "Spam or misleading"); err != nil {
			return sum, fmt.Errorf("create report: %w", err)
		}
		sum.Reports++
	}

	observability.Logger.InfoContext(ctx, "seed complete",
		slog.Int("users", sum.Users),
		slog.Int("posts", sum.Posts),
		slog.Int("products", sum.Products),
		slog.Int("messages", sum.Messages),
	)
	return sum, nil
}

func (s *Seeder) createUsers(ctx context.Context, n int) ([]*models.User, error) {
	users := make([]*models.User, 0, n)
	for len(users) < n {
		username := strings.ToLower(s.faker.Username())
		email := fmt.Sprintf("%s@%s", username, s.faker.DomainName())
		u, err := s.repos.Users.Create(ctx, username, email, DefaultPassword)
		if models.HasCode(err, models.CodeDuplicateUser) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("create user: %w", err)
		}

		bio := s.faker.Sentence(s.faker.Number(4, 12))
		avatar := fmt.Sprintf("https://i.pravatar.cc/150?u=%s", u.ID)
		if u, err = s.repos.Users.UpdateProfile(ctx, u.ID, repository.ProfileUpdate{Bio: &bio, Avatar: &avatar}); err != nil {
			return nil, fmt.Errorf("update profile: %w", err)
		}
		users = append(users, u)
	}
	return users, nil
}

func (s *Seeder) createFollows(ctx context.Context, users []*models.User) (int, error) {
	count := 0
	for _, u := range users {
		for j := s.faker.Number(0, min(5, len(users)-1)); j > 0; j-- {
			target := users[s.faker.Number(0, len(users)-1)]
			if target.ID == u.ID {
				continue
			}
			if err := s.repos.Users.Follow(ctx, u.ID, target.ID); err != nil {
				return count, fmt.Errorf("create follow: %w", err)
			}
			count++
		}
	}
	return count, nil
}

func (s *Seeder) postInput(users []*models.User, author *models.User) repository.CreatePostInput {
	in := repository.CreatePostInput{Caption: s.faker.Sentence(s.faker.Number(3, 15))}

	switch s.faker.Number(0, 3) {
	case 0:
		in.MediaType = models.MediaImage
		for i := s.faker.Number(1, models.MaxPostImages); i > 0; i-- {
			in.MediaURLs = append(in.MediaURLs, fmt.Sprintf("https://picsum.photos/seed/%s/800/800", s.faker.UUID()))
		}
	case 1:
		in.MediaType = models.MediaVideo
		in.MediaURLs = []string{fmt.Sprintf("https://videos.example.com/%s.mp4", s.faker.UUID())}
	}

	if s.faker.Number(0, 4) == 0 {
		tagged := users[s.faker.Number(0, len(users)-1)]
		if tagged.ID != author.ID {
			in.TaggedUsers = []models.TaggedUser{{ID: tagged.ID, Username: tagged.Username}}
		}
	}
	return in
}

var productCategories = []string{"Electronics", "Fashion", "Home", "Sports", "Books", "Toys", "Vehicles", "Other"}

func (s *Seeder) productInput() repository.ProductInput {
	in := repository.ProductInput{
		Title:       fmt.Sprintf("%s %s", s.faker.Adjective(), s.faker.Noun()),
		Description: s.faker.Paragraph(1, 3, 8, " "),
		Price:       fmt.Sprintf("%d", s.faker.Number(5, 900)),
		Location:    s.faker.City(),
		Category:    productCategories[s.faker.Number(0, len(productCategories)-1)],
	}
	for i := s.faker.Number(0, 3); i > 0; i-- {
		in.ImageURLs = append(in.ImageURLs, fmt.Sprintf("https://picsum.photos/seed/%s/600/600", s.faker.UUID()))
	}
	return in
}
