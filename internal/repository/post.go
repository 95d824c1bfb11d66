package repository

import (
	"cmp"
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"socialvibe/internal/models"
	"socialvibe/internal/observability"
	"socialvibe/internal/recordstore"

	"golang.org/x/text/cases"
)

// ExploreSort selects the ordering of the explore listing.
type ExploreSort string

const (
	// SortTrending orders by likes plus comments.
	SortTrending ExploreSort = "trending"
	// SortRecent orders by creation time.
	SortRecent ExploreSort = "recent"
	// SortPopular orders by likes.
	SortPopular ExploreSort = "popular"
)

// ExploreQuery filters and orders the explore listing. An empty Term matches
// every post; an empty Sort means trending.
type ExploreQuery struct {
	Sort ExploreSort
	Term string
}

// CreatePostInput is the content of a new post.
type CreatePostInput struct {
	Caption     string
	MediaURLs   []string
	MediaType   models.MediaType
	TaggedUsers []models.TaggedUser
}

// PostRepository defines persistence operations for posts and their comments.
type PostRepository interface {
	Create(ctx context.Context, author models.AuthorSnapshot, in CreatePostInput) (*models.Post, error)
	Like(ctx context.Context, postID, userID string) (*models.Post, error)
	Unlike(ctx context.Context, postID, userID string) (*models.Post, error)
	AddComment(ctx context.Context, postID string, author models.AuthorSnapshot, text string) (*models.Comment, error)
	LikeComment(ctx context.Context, postID, commentID, userID string, like bool) (*models.Comment, error)
	Delete(ctx context.Context, postID string) error
	DeleteByAuthor(ctx context.Context, userID string) (int, error)

	GetByID(ctx context.Context, postID string) (*models.Post, error)
	List(ctx context.Context) ([]models.Post, error)
	ListForFeed(ctx context.Context, viewerID string) ([]models.Post, error)
	ListForExplore(ctx context.Context, q ExploreQuery) ([]models.Post, error)
	ListByAuthor(ctx context.Context, userID string) ([]models.Post, error)
	CountByAuthor(ctx context.Context, userID string) (int, error)
	Likers(ctx context.Context, postID string) ([]models.User, error)
}

type postRepository struct {
	posts *recordstore.Collection[models.Post]
	users UserRepository
	opts  options
	log   *observability.RepoLogger
}

// NewPostRepository returns a PostRepository over the posts collection. users
// maintains the author's post counter and resolves likers and the feed graph.
func NewPostRepository(store *recordstore.Store, users UserRepository, opts ...Option) PostRepository {
	return &postRepository{
		posts: recordstore.NewCollection[models.Post](store, CollectionPosts),
		users: users,
		opts:  buildOptions(opts),
		log:   observability.NewRepoLogger(CollectionPosts),
	}
}

func indexOfPost(posts []models.Post, id string) int {
	return slices.IndexFunc(posts, func(p models.Post) bool { return p.ID == id })
}

func validatePostInput(in *CreatePostInput) error {
	if strings.TrimSpace(in.Caption) == "" && len(in.MediaURLs) == 0 {
		return models.ErrEmptyPost
	}
	if len(in.MediaURLs) > 0 && in.MediaType == models.MediaNone {
		in.MediaType = models.MediaImage
	}
	switch in.MediaType {
	case models.MediaNone:
	case models.MediaImage:
		if len(in.MediaURLs) > models.MaxPostImages {
			return models.NewValidationError(fmt.Sprintf("You can upload up to %d images", models.MaxPostImages))
		}
	case models.MediaVideo:
		if len(in.MediaURLs) > models.MaxPostVideos {
			return models.NewValidationError(fmt.Sprintf("You can upload up to %d video", models.MaxPostVideos))
		}
	default:
		return models.NewValidationError(fmt.Sprintf("Unsupported media type %q", in.MediaType))
	}
	return nil
}

// Create prepends the post and bumps the author's counter. A failed counter
// update is logged rather than returned; RecountPosts repairs it.
func (r *postRepository) Create(ctx context.Context, author models.AuthorSnapshot, in CreatePostInput) (created *models.Post, err error) {
	ctx, end := traceRepo(ctx, "PostRepository", "Create")
	defer end(&err)

	if err := validatePostInput(&in); err != nil {
		return nil, err
	}

	post := models.Post{
		ID:          models.NewID(),
		Author:      author,
		Caption:     in.Caption,
		MediaURLs:   cloneOrEmpty(in.MediaURLs),
		MediaType:   in.MediaType,
		Likes:       []string{},
		Comments:    []models.Comment{},
		TaggedUsers: slices.Clone(in.TaggedUsers),
		CreatedAt:   r.opts.now(),
	}
	if post.TaggedUsers == nil {
		post.TaggedUsers = []models.TaggedUser{}
	}

	err = r.posts.Mutate(ctx, func(posts []models.Post) ([]models.Post, error) {
		return append([]models.Post{post}, posts...), nil
	})
	if err != nil {
		return nil, err
	}
	r.log.LogMutation(ctx, "create", slog.String("post_id", post.ID), slog.String("author_id", author.ID))

	if err := r.users.IncrementPostsCount(ctx, author.ID, 1); err != nil {
		r.log.LogError(ctx, err, "increment_posts_count")
	}
	return &post, nil
}

func cloneOrEmpty(ids []string) []string {
	if ids == nil {
		return []string{}
	}
	return slices.Clone(ids)
}

// updatePost applies fn to one post in a single collection write.
func (r *postRepository) updatePost(ctx context.Context, op, postID string, fn func(*models.Post) error) (*models.Post, error) {
	var post models.Post
	err := r.posts.Mutate(ctx, func(posts []models.Post) ([]models.Post, error) {
		i := indexOfPost(posts, postID)
		if i < 0 {
			return nil, models.NewNotFoundError("Post", postID)
		}
		if err := fn(&posts[i]); err != nil {
			return nil, err
		}
		post = posts[i]
		return posts, nil
	})
	if err != nil {
		return nil, err
	}
	r.log.LogMutation(ctx, op, slog.String("post_id", postID))
	return &post, nil
}

func (r *postRepository) Like(ctx context.Context, postID, userID string) (*models.Post, error) {
	return r.updatePost(ctx, "like", postID, func(p *models.Post) error {
		p.Likes = models.AddID(p.Likes, userID)
		return nil
	})
}

func (r *postRepository) Unlike(ctx context.Context, postID, userID string) (*models.Post, error) {
	return r.updatePost(ctx, "unlike", postID, func(p *models.Post) error {
		p.Likes = models.RemoveID(p.Likes, userID)
		return nil
	})
}

func (r *postRepository) AddComment(ctx context.Context, postID string, author models.AuthorSnapshot, text string) (*models.Comment, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, models.ErrEmptyComment
	}

	comment := models.Comment{
		ID:        models.NewID(),
		Author:    author,
		Text:      text,
		CreatedAt: r.opts.now(),
		Likes:     []string{},
	}
	_, err := r.updatePost(ctx, "add_comment", postID, func(p *models.Post) error {
		p.Comments = append(p.Comments, comment)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &comment, nil
}

func (r *postRepository) LikeComment(ctx context.Context, postID, commentID, userID string, like bool) (*models.Comment, error) {
	var comment models.Comment
	_, err := r.updatePost(ctx, "like_comment", postID, func(p *models.Post) error {
		i := slices.IndexFunc(p.Comments, func(c models.Comment) bool { return c.ID == commentID })
		if i < 0 {
			return models.NewNotFoundError("Comment", commentID)
		}
		if like {
			p.Comments[i].Likes = models.AddID(p.Comments[i].Likes, userID)
		} else {
			p.Comments[i].Likes = models.RemoveID(p.Comments[i].Likes, userID)
		}
		comment = p.Comments[i]
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &comment, nil
}

// Delete removes the post. The author's counter is not decremented.
func (r *postRepository) Delete(ctx context.Context, postID string) error {
	err := r.posts.Mutate(ctx, func(posts []models.Post) ([]models.Post, error) {
		i := indexOfPost(posts, postID)
		if i < 0 {
			return nil, models.NewNotFoundError("Post", postID)
		}
		return slices.Delete(posts, i, i+1), nil
	})
	if err != nil {
		return err
	}
	r.log.LogMutation(ctx, "delete", slog.String("post_id", postID))
	return nil
}

// DeleteByAuthor removes every post authored by userID and returns how many
// were removed. Comments and likes by userID on other posts remain.
func (r *postRepository) DeleteByAuthor(ctx context.Context, userID string) (int, error) {
	removed := 0
	err := r.posts.Mutate(ctx, func(posts []models.Post) ([]models.Post, error) {
		before := len(posts)
		posts = slices.DeleteFunc(posts, func(p models.Post) bool { return p.Author.ID == userID })
		removed = before - len(posts)
		return posts, nil
	})
	if err != nil {
		return 0, err
	}
	r.log.LogMutation(ctx, "delete_by_author", slog.String("author_id", userID), slog.Int("removed", removed))
	return removed, nil
}

func (r *postRepository) GetByID(ctx context.Context, postID string) (*models.Post, error) {
	posts, _, err := r.posts.Load(ctx)
	if err != nil {
		return nil, err
	}
	i := indexOfPost(posts, postID)
	if i < 0 {
		return nil, models.NewNotFoundError("Post", postID)
	}
	return &posts[i], nil
}

func (r *postRepository) List(ctx context.Context) ([]models.Post, error) {
	posts, _, err := r.posts.Load(ctx)
	return posts, err
}

func newestFirst(a, b models.Post) int {
	return b.CreatedAt.Compare(a.CreatedAt)
}

// ListForFeed returns posts by the viewer and the users they follow, newest first.
func (r *postRepository) ListForFeed(ctx context.Context, viewerID string) ([]models.Post, error) {
	viewer, err := r.users.GetByID(ctx, viewerID)
	if err != nil {
		return nil, err
	}
	posts, _, err := r.posts.Load(ctx)
	if err != nil {
		return nil, err
	}

	feed := slices.DeleteFunc(posts, func(p models.Post) bool {
		return p.Author.ID != viewerID && !viewer.IsFollowing(p.Author.ID)
	})
	slices.SortStableFunc(feed, newestFirst)
	return feed, nil
}

// ListForExplore filters by caption or author username and sorts stably, so
// ties keep their stored order.
func (r *postRepository) ListForExplore(ctx context.Context, q ExploreQuery) ([]models.Post, error) {
	posts, _, err := r.posts.Load(ctx)
	if err != nil {
		return nil, err
	}

	if term := strings.TrimSpace(q.Term); term != "" {
		fold := cases.Fold()
		needle := fold.String(term)
		posts = slices.DeleteFunc(posts, func(p models.Post) bool {
			return !strings.Contains(fold.String(p.Caption), needle) &&
				!strings.Contains(fold.String(p.Author.Username), needle)
		})
	}

	switch q.Sort {
	case SortRecent:
		slices.SortStableFunc(posts, newestFirst)
	case SortPopular:
		slices.SortStableFunc(posts, func(a, b models.Post) int {
			return cmp.Compare(len(b.Likes), len(a.Likes))
		})
	case SortTrending, "":
		slices.SortStableFunc(posts, func(a, b models.Post) int {
			return cmp.Compare(b.Engagement(), a.Engagement())
		})
	default:
		return nil, models.NewValidationError(fmt.Sprintf("Unknown sort %q", q.Sort))
	}
	return posts, nil
}

func (r *postRepository) ListByAuthor(ctx context.Context, userID string) ([]models.Post, error) {
	posts, _, err := r.posts.Load(ctx)
	if err != nil {
		return nil, err
	}
	posts = slices.DeleteFunc(posts, func(p models.Post) bool { return p.Author.ID != userID })
	slices.SortStableFunc(posts, newestFirst)
	return posts, nil
}

func (r *postRepository) CountByAuthor(ctx context.Context, userID string) (int, error) {
	posts, err := r.ListByAuthor(ctx, userID)
	return len(posts), err
}

// Likers resolves the post's likes to users, skipping deleted accounts.
func (r *postRepository) Likers(ctx context.Context, postID string) ([]models.User, error) {
	post, err := r.GetByID(ctx, postID)
	if err != nil {
		return nil, err
	}
	users, err := r.users.List(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]models.User, 0, len(post.Likes))
	for _, id := range post.Likes {
		if i := indexOfUser(users, id); i >= 0 {
			out = append(out, users[i])
		}
	}
	return out, nil
}
