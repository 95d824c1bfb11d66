package repository

import (
	"context"
	"log/slog"
	"slices"
	"strings"
	"sync"

	"socialvibe/internal/models"
	"socialvibe/internal/observability"
	"socialvibe/internal/recordstore"
	"socialvibe/internal/validation"

	"golang.org/x/crypto/bcrypt"
	"golang.org/x/text/cases"
)

// DefaultSearchLimit caps user search results when no limit is given.
const DefaultSearchLimit = 10

// ProfileUpdate holds the profile fields to change. Nil fields are left alone.
type ProfileUpdate struct {
	Username *string
	Email    *string
	Avatar   *string
	Bio      *string
	Website  *string
}

// UserChangeListener is called after a write changed a user's public fields.
type UserChangeListener func(ctx context.Context, user models.User)

// UserRepository defines persistence operations for users and the follow graph.
type UserRepository interface {
	FindByCredentials(ctx context.Context, email, password string) (*models.User, error)
	Create(ctx context.Context, username, email, password string) (*models.User, error)
	Follow(ctx context.Context, followerID, targetID string) error
	Unfollow(ctx context.Context, followerID, targetID string) error
	UpdateProfile(ctx context.Context, userID string, update ProfileUpdate) (*models.User, error)
	ChangePassword(ctx context.Context, userID, current, next string) error
	SetBanned(ctx context.Context, userID string, banned bool) (*models.User, error)
	SetRole(ctx context.Context, userID string, role models.Role) (*models.User, error)
	Delete(ctx context.Context, userID string) error
	IncrementPostsCount(ctx context.Context, userID string, delta int) error
	RecountPosts(ctx context.Context, userID string, count int) error

	GetByID(ctx context.Context, userID string) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	List(ctx context.Context) ([]models.User, error)
	Search(ctx context.Context, term string, limit int) ([]models.User, error)
	Followers(ctx context.Context, userID string) ([]models.User, error)
	Following(ctx context.Context, userID string) ([]models.User, error)

	OnChange(listener UserChangeListener)
}

type userRepository struct {
	users *recordstore.Collection[models.User]
	opts  options
	log   *observability.RepoLogger

	mu        sync.RWMutex
	listeners []UserChangeListener

	// dummyHash keeps unknown-email logins as slow as wrong-password ones.
	dummyHash []byte
}

// NewUserRepository returns a UserRepository over the users collection.
func NewUserRepository(store *recordstore.Store, opts ...Option) UserRepository {
	o := buildOptions(opts)
	dummy, _ := bcrypt.GenerateFromPassword([]byte("socialvibe-dummy"), o.bcryptCost)
	return &userRepository{
		users:     recordstore.NewCollection[models.User](store, CollectionUsers),
		opts:      o,
		log:       observability.NewRepoLogger(CollectionUsers),
		dummyHash: dummy,
	}
}

func (r *userRepository) OnChange(listener UserChangeListener) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.listeners = append(r.listeners, listener)
}

func (r *userRepository) notify(ctx context.Context, users ...models.User) {
	r.mu.RLock()
	listeners := slices.Clone(r.listeners)
	r.mu.RUnlock()

	for _, u := range users {
		for _, l := range listeners {
			l(ctx, u)
		}
	}
}

func indexOfUser(users []models.User, id string) int {
	return slices.IndexFunc(users, func(u models.User) bool { return u.ID == id })
}

func (r *userRepository) FindByCredentials(ctx context.Context, email, password string) (*models.User, error) {
	users, _, err := r.users.Load(ctx)
	if err != nil {
		return nil, err
	}

	i := slices.IndexFunc(users, func(u models.User) bool { return u.Email == email })
	if i < 0 {
		_ = bcrypt.CompareHashAndPassword(r.dummyHash, []byte(password))
		return nil, models.ErrInvalidCredentials
	}
	user := users[i]
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, models.ErrInvalidCredentials
	}
	if user.Banned {
		return nil, models.ErrAccountBanned
	}
	return &user, nil
}

func (r *userRepository) Create(ctx context.Context, username, email, password string) (created *models.User, err error) {
	ctx, end := traceRepo(ctx, "UserRepository", "Create")
	defer end(&err)

	if err := validation.Struct(validation.Registration{Username: username, Email: email, Password: password}); err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), r.opts.bcryptCost)
	if err != nil {
		return nil, models.NewInternalError(err)
	}

	user := models.User{
		ID:           models.NewID(),
		Username:     username,
		Email:        email,
		PasswordHash: string(hash),
		Avatar:       r.opts.defaultAvatar,
		Role:         models.RoleUser,
		Followers:    []string{},
		Following:    []string{},
		CreatedAt:    r.opts.now(),
	}

	err = r.users.Mutate(ctx, func(users []models.User) ([]models.User, error) {
		if slices.ContainsFunc(users, func(u models.User) bool {
			return u.Username == username || u.Email == email
		}) {
			return nil, models.ErrDuplicateUser
		}
		return append(users, user), nil
	})
	if err != nil {
		return nil, err
	}

	r.log.LogMutation(ctx, "create", slog.String("user_id", user.ID))
	return &user, nil
}

func (r *userRepository) Follow(ctx context.Context, followerID, targetID string) (err error) {
	ctx, end := traceRepo(ctx, "UserRepository", "Follow")
	defer end(&err)
	return r.setEdge(ctx, followerID, targetID, true)
}

func (r *userRepository) Unfollow(ctx context.Context, followerID, targetID string) (err error) {
	ctx, end := traceRepo(ctx, "UserRepository", "Unfollow")
	defer end(&err)
	return r.setEdge(ctx, followerID, targetID, false)
}

// setEdge writes both sides of a follow edge in one collection write.
func (r *userRepository) setEdge(ctx context.Context, followerID, targetID string, follow bool) error {
	if followerID == targetID {
		return models.NewValidationError("You cannot follow yourself")
	}

	var follower, target models.User
	err := r.users.Mutate(ctx, func(users []models.User) ([]models.User, error) {
		fi := indexOfUser(users, followerID)
		if fi < 0 {
			return nil, models.NewNotFoundError("User", followerID)
		}
		ti := indexOfUser(users, targetID)
		if ti < 0 {
			return nil, models.NewNotFoundError("User", targetID)
		}

		if follow {
			users[fi].Following = models.AddID(users[fi].Following, targetID)
			users[ti].Followers = models.AddID(users[ti].Followers, followerID)
		} else {
			users[fi].Following = models.RemoveID(users[fi].Following, targetID)
			users[ti].Followers = models.RemoveID(users[ti].Followers, followerID)
		}
		follower, target = users[fi], users[ti]
		return users, nil
	})
	if err != nil {
		return err
	}

	op := "follow"
	if !follow {
		op = "unfollow"
	}
	r.log.LogMutation(ctx, op, slog.String("follower_id", followerID), slog.String("target_id", targetID))
	r.notify(ctx, follower, target)
	return nil
}

func (r *userRepository) UpdateProfile(ctx context.Context, userID string, update ProfileUpdate) (updated *models.User, err error) {
	ctx, end := traceRepo(ctx, "UserRepository", "UpdateProfile")
	defer end(&err)

	if err := validation.Struct(validation.Profile{
		Username: update.Username,
		Email:    update.Email,
		Bio:      update.Bio,
		Website:  update.Website,
	}); err != nil {
		return nil, err
	}

	var user models.User
	err = r.users.Mutate(ctx, func(users []models.User) ([]models.User, error) {
		i := indexOfUser(users, userID)
		if i < 0 {
			return nil, models.NewNotFoundError("User", userID)
		}
		taken := slices.ContainsFunc(users, func(u models.User) bool {
			if u.ID == userID {
				return false
			}
			return (update.Username != nil && u.Username == *update.Username) ||
				(update.Email != nil && u.Email == *update.Email)
		})
		if taken {
			return nil, models.ErrDuplicateUser
		}

		u := &users[i]
		if update.Username != nil {
			u.Username = *update.Username
		}
		if update.Email != nil {
			u.Email = *update.Email
		}
		if update.Avatar != nil {
			u.Avatar = *update.Avatar
		}
		if update.Bio != nil {
			u.Bio = *update.Bio
		}
		if update.Website != nil {
			u.Website = *update.Website
		}
		now := r.opts.now()
		u.UpdatedAt = &now
		user = *u
		return users, nil
	})
	if err != nil {
		return nil, err
	}

	r.log.LogMutation(ctx, "update_profile", slog.String("user_id", userID))
	r.notify(ctx, user)
	return &user, nil
}

// ChangePassword does not notify listeners; the session never holds the hash.
func (r *userRepository) ChangePassword(ctx context.Context, userID, current, next string) error {
	if next == "" {
		return models.NewValidationError("Password is required")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(next), r.opts.bcryptCost)
	if err != nil {
		return models.NewInternalError(err)
	}

	err = r.users.Mutate(ctx, func(users []models.User) ([]models.User, error) {
		i := indexOfUser(users, userID)
		if i < 0 {
			return nil, models.NewNotFoundError("User", userID)
		}
		if bcrypt.CompareHashAndPassword([]byte(users[i].PasswordHash), []byte(current)) != nil {
			return nil, models.ErrIncorrectPassword
		}
		now := r.opts.now()
		users[i].PasswordHash = string(hash)
		users[i].UpdatedAt = &now
		return users, nil
	})
	if err != nil {
		return err
	}
	r.log.LogMutation(ctx, "change_password", slog.String("user_id", userID))
	return nil
}

// update applies fn to one user and notifies listeners.
func (r *userRepository) update(ctx context.Context, op, userID string, fn func(*models.User)) (*models.User, error) {
	var user models.User
	err := r.users.Mutate(ctx, func(users []models.User) ([]models.User, error) {
		i := indexOfUser(users, userID)
		if i < 0 {
			return nil, models.NewNotFoundError("User", userID)
		}
		fn(&users[i])
		user = users[i]
		return users, nil
	})
	if err != nil {
		return nil, err
	}
	r.log.LogMutation(ctx, op, slog.String("user_id", userID))
	r.notify(ctx, user)
	return &user, nil
}

func (r *userRepository) SetBanned(ctx context.Context, userID string, banned bool) (*models.User, error) {
	return r.update(ctx, "set_banned", userID, func(u *models.User) { u.Banned = banned })
}

func (r *userRepository) SetRole(ctx context.Context, userID string, role models.Role) (*models.User, error) {
	if role != models.RoleUser && role != models.RoleAdmin {
		return nil, models.NewValidationError("Role must be one of: user, admin")
	}
	return r.update(ctx, "set_role", userID, func(u *models.User) { u.Role = role })
}

func (r *userRepository) IncrementPostsCount(ctx context.Context, userID string, delta int) error {
	_, err := r.update(ctx, "increment_posts_count", userID, func(u *models.User) {
		u.PostsCount = max(u.PostsCount+delta, 0)
	})
	return err
}

func (r *userRepository) RecountPosts(ctx context.Context, userID string, count int) error {
	_, err := r.update(ctx, "recount_posts", userID, func(u *models.User) {
		u.PostsCount = max(count, 0)
	})
	return err
}

// Delete removes only the user record. Posts are removed by the caller; follow
// edges held by other users are left in place.
func (r *userRepository) Delete(ctx context.Context, userID string) error {
	err := r.users.Mutate(ctx, func(users []models.User) ([]models.User, error) {
		i := indexOfUser(users, userID)
		if i < 0 {
			return nil, models.NewNotFoundError("User", userID)
		}
		return slices.Delete(users, i, i+1), nil
	})
	if err != nil {
		return err
	}
	r.log.LogMutation(ctx, "delete", slog.String("user_id", userID))
	return nil
}

func (r *userRepository) GetByID(ctx context.Context, userID string) (*models.User, error) {
	users, _, err := r.users.Load(ctx)
	if err != nil {
		return nil, err
	}
	i := indexOfUser(users, userID)
	if i < 0 {
		return nil, models.NewNotFoundError("User", userID)
	}
	return &users[i], nil
}

func (r *userRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	users, _, err := r.users.Load(ctx)
	if err != nil {
		return nil, err
	}
	i := slices.IndexFunc(users, func(u models.User) bool { return u.Username == username })
	if i < 0 {
		return nil, models.NewNotFoundError("User", username)
	}
	return &users[i], nil
}

func (r *userRepository) List(ctx context.Context) ([]models.User, error) {
	users, _, err := r.users.Load(ctx)
	return users, err
}

// Search matches term against usernames case-insensitively.
func (r *userRepository) Search(ctx context.Context, term string, limit int) ([]models.User, error) {
	term = strings.TrimSpace(term)
	if term == "" {
		return []models.User{}, nil
	}
	if limit <= 0 {
		limit = DefaultSearchLimit
	}

	users, _, err := r.users.Load(ctx)
	if err != nil {
		return nil, err
	}

	fold := cases.Fold()
	needle := fold.String(term)
	out := make([]models.User, 0, min(limit, len(users)))
	for _, u := range users {
		if strings.Contains(fold.String(u.Username), needle) {
			out = append(out, u)
			if len(out) == limit {
				break
			}
		}
	}
	return out, nil
}

func (r *userRepository) Followers(ctx context.Context, userID string) ([]models.User, error) {
	return r.related(ctx, userID, func(u *models.User) []string { return u.Followers })
}

func (r *userRepository) Following(ctx context.Context, userID string) ([]models.User, error) {
	return r.related(ctx, userID, func(u *models.User) []string { return u.Following })
}

// related resolves an id list of userID to users, skipping ids of deleted users.
func (r *userRepository) related(ctx context.Context, userID string, ids func(*models.User) []string) ([]models.User, error) {
	users, _, err := r.users.Load(ctx)
	if err != nil {
		return nil, err
	}
	i := indexOfUser(users, userID)
	if i < 0 {
		return nil, models.NewNotFoundError("User", userID)
	}

	byID := make(map[string]models.User, len(users))
	for _, u := range users {
		byID[u.ID] = u
	}
	list := ids(&users[i])
	out := make([]models.User, 0, len(list))
	for _, id := range list {
		if u, ok := byID[id]; ok {
			out = append(out, u)
		}
	}
	return out, nil
}
