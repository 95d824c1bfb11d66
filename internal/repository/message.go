package repository

import (
	"context"
	"log/slog"
	"slices"
	"strings"

	"socialvibe/internal/models"
	"socialvibe/internal/observability"
	"socialvibe/internal/recordstore"

	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// MessageRepository defines persistence operations for direct messages.
type MessageRepository interface {
	Send(ctx context.Context, from, to, text, mediaURL string, mediaType models.MediaType) (*models.Message, error)
	Conversation(ctx context.Context, a, b string) ([]models.Message, error)
	Partners(ctx context.Context, userID string) ([]string, error)
	LastMessages(ctx context.Context, userID string) ([]models.Message, error)
}

type messageRepository struct {
	messages *recordstore.Collection[models.Message]
	opts     options
	log      *observability.RepoLogger
}

// NewMessageRepository returns a MessageRepository over the messages collection.
func NewMessageRepository(store *recordstore.Store, opts ...Option) MessageRepository {
	return &messageRepository{
		messages: recordstore.NewCollection[models.Message](store, CollectionMessages),
		opts:     buildOptions(opts),
		log:      observability.NewRepoLogger(CollectionMessages),
	}
}

func (r *messageRepository) Send(ctx context.Context, from, to, text, mediaURL string, mediaType models.MediaType) (*models.Message, error) {
	text = strings.TrimSpace(text)
	if text == "" && mediaURL == "" {
		return nil, models.ErrEmptyMessage
	}
	if from == to {
		return nil, models.NewValidationError("You cannot message yourself")
	}
	if mediaURL != "" && mediaType == models.MediaNone {
		mediaType = models.MediaImage
	}
	if mediaURL == "" {
		mediaType = models.MediaNone
	}

	msg := models.Message{
		ID:        models.NewID(),
		From:      from,
		To:        to,
		Text:      text,
		MediaURL:  mediaURL,
		MediaType: mediaType,
		CreatedAt: r.opts.now(),
	}
	err := r.messages.Mutate(ctx, func(messages []models.Message) ([]models.Message, error) {
		return append(messages, msg), nil
	})
	if err != nil {
		return nil, err
	}
	r.log.LogMutation(ctx, "send", slog.String("message_id", msg.ID), slog.String("from", from), slog.String("to", to))
	return &msg, nil
}

// Conversation returns the messages between a and b, oldest first.
func (r *messageRepository) Conversation(ctx context.Context, a, b string) ([]models.Message, error) {
	messages, _, err := r.messages.Load(ctx)
	if err != nil {
		return nil, err
	}
	messages = slices.DeleteFunc(messages, func(m models.Message) bool { return !m.Between(a, b) })
	slices.SortStableFunc(messages, func(x, y models.Message) int {
		return x.CreatedAt.Compare(y.CreatedAt)
	})
	return messages, nil
}

// partners maps each conversation partner of userID to the latest message
// exchanged, keeping partners in the order they first appeared.
func (r *messageRepository) partners(ctx context.Context, userID string) (*orderedmap.OrderedMap[string, models.Message], error) {
	messages, _, err := r.messages.Load(ctx)
	if err != nil {
		return nil, err
	}

	out := orderedmap.New[string, models.Message]()
	for _, m := range messages {
		if !m.Involves(userID) {
			continue
		}
		partner := m.To
		if m.To == userID {
			partner = m.From
		}
		if prev, ok := out.Get(partner); !ok || !m.CreatedAt.Before(prev.CreatedAt) {
			out.Set(partner, m)
		}
	}
	return out, nil
}

// Partners returns the distinct ids userID has exchanged messages with, in
// first-seen order.
func (r *messageRepository) Partners(ctx context.Context, userID string) ([]string, error) {
	m, err := r.partners(ctx, userID)
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, m.Len())
	for pair := m.Oldest(); pair != nil; pair = pair.Next() {
		ids = append(ids, pair.Key)
	}
	return ids, nil
}

// LastMessages returns the latest message of each conversation, newest first.
func (r *messageRepository) LastMessages(ctx context.Context, userID string) ([]models.Message, error) {
	m, err := r.partners(ctx, userID)
	if err != nil {
		return nil, err
	}
	out := make([]models.Message, 0, m.Len())
	for pair := m.Oldest(); pair != nil; pair = pair.Next() {
		out = append(out, pair.Value)
	}
	slices.SortStableFunc(out, func(x, y models.Message) int {
		return y.CreatedAt.Compare(x.CreatedAt)
	})
	return out, nil
}
