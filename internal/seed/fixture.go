package seed

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"socialvibe/internal/models"
	"socialvibe/internal/repository"

	"gopkg.in/yaml.v3"
)

// Fixture is a hand-written data set, usually loaded from YAML.
type Fixture struct {
	Users    []FixtureUser    `yaml:"users"`
	Follows  []FixtureFollow  `yaml:"follows"`
	Posts    []FixturePost    `yaml:"posts"`
	Products []FixtureProduct `yaml:"products"`
}

// FixtureUser is an account. Password defaults to DefaultPassword.
type FixtureUser struct {
	Username string      `yaml:"username"`
	Email    string      `yaml:"email"`
	Password string      `yaml:"password"`
	Role     models.Role `yaml:"role"`
	Bio      string      `yaml:"bio"`
	Avatar   string      `yaml:"avatar"`
	Banned   bool        `yaml:"banned"`
}

// FixtureFollow is a follow edge between two fixture usernames.
type FixtureFollow struct {
	From string `yaml:"from"`
	To   string `yaml:"to"`
}

// FixturePost is a post by a fixture username.
type FixturePost struct {
	Author    string           `yaml:"author"`
	Caption   string           `yaml:"caption"`
	MediaURLs []string         `yaml:"media"`
	MediaType models.MediaType `yaml:"mediaType"`
	LikedBy   []string         `yaml:"likedBy"`
	Comments  []FixtureComment `yaml:"comments"`
}

// FixtureComment is a comment by a fixture username.
type FixtureComment struct {
	Author string `yaml:"author"`
	Text   string `yaml:"text"`
}

// FixtureProduct is a listing by a fixture username.
type FixtureProduct struct {
	Seller      string   `yaml:"seller"`
	Title       string   `yaml:"title"`
	Description string   `yaml:"description"`
	Price       string   `yaml:"price"`
	Location    string   `yaml:"location"`
	Category    string   `yaml:"category"`
	Images      []string `yaml:"images"`
}

// LoadFixture reads a YAML fixture file.
func LoadFixture(path string) (*Fixture, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read fixture: %w", err)
	}
	return ParseFixture(data)
}

// ParseFixture decodes a YAML fixture, rejecting unknown fields.
func ParseFixture(data []byte) (*Fixture, error) {
	var fx Fixture
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&fx); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("parse fixture: %w", err)
	}
	return &fx, nil
}

// ApplyFixture writes fx through the repositories. Usernames referenced by
// follows, posts and products must be declared under users.
func (s *Seeder) ApplyFixture(ctx context.Context, fx *Fixture) (Summary, error) {
	var sum Summary
	byName := make(map[string]*models.User, len(fx.Users))

	lookup := func(name string) (*models.User, error) {
		u, ok := byName[name]
		if !ok {
			return nil, fmt.Errorf("fixture references unknown user %q", name)
		}
		return u, nil
	}

	for _, fu := range fx.Users {
		password := fu.Password
		if password == "" {
			password = DefaultPassword
		}
		u, err := s.repos.Users.Create(ctx, fu.Username, fu.Email, password)
		if err != nil {
			return sum, fmt.Errorf("create user %q: %w", fu.Username, err)
		}

		update := repository.ProfileUpdate{}
		if fu.Bio != "" {
			update.Bio = &fu.Bio
		}
		if fu.Avatar != "" {
			update.Avatar = &fu.Avatar
		}
		if update.Bio != nil || update.Avatar != nil {
			if u, err = s.repos.Users.UpdateProfile(ctx, u.ID, update); err != nil {
				return sum, err
			}
		}
		if fu.Role != "" && fu.Role != models.RoleUser {
			if u, err = s.repos.Users.SetRole(ctx, u.ID, fu.Role); err != nil {
				return sum, err
			}
		}
		if fu.Banned {
			if u, err = s.repos.Users.SetBanned(ctx, u.ID, true); err != nil {
				return sum, err
			}
		}
		byName[fu.Username] = u
		sum.Users++
	}

	for _, f := range fx.Follows {
		from, err := lookup(f.From)
		if err != nil {
			return sum, err
		}
		to, err := lookup(f.To)
		if err != nil {
			return sum, err
		}
		if err := s.repos.Users.Follow(ctx, from.ID, to.ID); err != nil {
			return sum, err
		}
		sum.Follows++
	}

	for _, fp := range fx.Posts {
		author, err := lookup(fp.Author)
		if err != nil {
			return sum, err
		}
		p, err := s.repos.Posts.Create(ctx, author.Snapshot(), repository.CreatePostInput{
			Caption:   fp.Caption,
			MediaURLs: fp.MediaURLs,
			MediaType: fp.MediaType,
		})
		if err != nil {
			return sum, fmt.Errorf("create post by %q: %w", fp.Author, err)
		}
		sum.Posts++

		for _, name := range fp.LikedBy {
			u, err := lookup(name)
			if err != nil {
				return sum, err
			}
			if _, err := s.repos.Posts.Like(ctx, p.ID, u.ID); err != nil {
				return sum, err
			}
			sum.Likes++
		}
		for _, c := range fp.Comments {
			u, err := lookup(c.Author)
			if err != nil {
				return sum, err
			}
			if _, err := s.repos.Posts.AddComment(ctx, p.ID, u.Snapshot(), c.Text); err != nil {
				return sum, err
			}
			sum.Comments++
		}
	}

	for _, fp := range fx.Products {
		seller, err := lookup(fp.Seller)
		if err != nil {
			return sum, err
		}
		if _, err := s.repos.Products.Create(ctx, seller.ID, repository.ProductInput{
			Title:       fp.Title,
			Description: fp.Description,
			Price:       fp.Price,
			Location:    fp.Location,
			Category:    fp.Category,
			ImageURLs:   fp.Images,
		}); err != nil {
			return sum, fmt.Errorf("create product %q: %w", fp.Title, err)
		}
		sum.Products++
	}
	return sum, nil
}
