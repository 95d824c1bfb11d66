package repository

import (
	"context"
	"fmt"
	"testing"

	"socialvibe/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProductRepository(t *testing.T) {
	t.Parallel()
	r := newTestRepos(t)
	ctx := context.Background()
	alice := mustCreateUser(t, r.users, "alice")
	bob := mustCreateUser(t, r.users, "bob")

	bike, err := r.products.Create(ctx, alice.ID, ProductInput{Title: "Road bike", Description: "Barely used", Price: "300", Category: "Sports"})
	require.NoError(t, err)
	lamp, err := r.products.Create(ctx, bob.ID, ProductInput{Title: "Lamp", Description: "Warm light"})
	require.NoError(t, err)

	_, err = r.products.Create(ctx, alice.ID, ProductInput{Title: "", Description: "x"})
	assert.ErrorIs(t, err, models.ErrValidation)
	_, err = r.products.Create(ctx, alice.ID, ProductInput{Title: "x", Description: "x", ImageURLs: make([]string, 6)})
	assert.ErrorIs(t, err, models.ErrValidation)

	_, err = r.products.Update(ctx, bike.ID, bob.ID, ProductInput{Title: "Mine now", Description: "x"})
	assert.ErrorIs(t, err, models.ErrUnauthorized)

	edited, err := r.products.Update(ctx, bike.ID, alice.ID, ProductInput{Title: "Road bike", Description: "Like new", Price: "280", Category: "Sports"})
	require.NoError(t, err)
	assert.Equal(t, bike.CreatedAt, edited.CreatedAt)
	assert.True(t, edited.UpdatedAt.After(bike.UpdatedAt))

	require.NoError(t, r.users.Delete(ctx, bob.ID))

	listings, err := r.products.List(ctx, "")
	require.NoError(t, err)
	require.Len(t, listings, 2)
	assert.Equal(t, lamp.ID, listings[0].ID)
	assert.Equal(t, models.UnknownSeller, listings[0].Seller)
	assert.Equal(t, "alice", listings[1].Seller.Username)

	listings, err = r.products.List(ctx, "sports")
	require.NoError(t, err)
	require.Len(t, listings, 1)
	assert.Equal(t, bike.ID, listings[0].ID)

	require.NoError(t, r.products.Delete(ctx, lamp.ID))
	assert.ErrorIs(t, r.products.Delete(ctx, lamp.ID), models.ErrNotFound)
}

func TestMessageRepository(t *testing.T) {
	t.Parallel()
	r := newTestRepos(t)
	ctx := context.Background()

	_, err := r.messages.Send(ctx, "a", "b", "   ", "", models.MediaNone)
	assert.ErrorIs(t, err, models.ErrEmptyMessage)

	m1, err := r.messages.Send(ctx, "a", "b", " hi ", "", models.MediaNone)
	require.NoError(t, err)
	assert.Equal(t, "hi", m1.Text)
	_, err = r.messages.Send(ctx, "c", "a", "yo", "", models.MediaNone)
	require.NoError(t, err)
	m3, err := r.messages.Send(ctx, "b", "a", "", "data:image/png;base64,AAAA", models.MediaNone)
	require.NoError(t, err)
	assert.Equal(t, models.MediaImage, m3.MediaType)

	conv, err := r.messages.Conversation(ctx, "b", "a")
	require.NoError(t, err)
	require.Len(t, conv, 2)
	assert.Equal(t, m1.ID, conv[0].ID)
	assert.Equal(t, m3.ID, conv[1].ID)

	partners, err := r.messages.Partners(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, []string{"b", "c"}, partners)

	last, err := r.messages.LastMessages(ctx, "a")
	require.NoError(t, err)
	require.Len(t, last, 2)
	assert.Equal(t, m3.ID, last[0].ID)
}

func TestReportRepository(t *testing.T) {
	t.Parallel()
	r := newTestRepos(t)
	ctx := context.Background()

	_, err := r.reports.Create(ctx, "p1", "u1", " ")
	assert.ErrorIs(t, err, models.ErrValidation)

	rep, err := r.reports.Create(ctx, "p1", "u1", "spam")
	require.NoError(t, err)

	all, err := r.reports.List(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, rep.ID, all[0].ID)
}

func TestSavedItemsRepository(t *testing.T) {
	t.Parallel()
	r := newTestRepos(t)
	ctx := context.Background()

	empty, err := r.saved.Get(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, models.SavedItems{Posts: []string{}, Products: []string{}}, empty)

	saved, err := r.saved.TogglePost(ctx, "u1", "p1")
	require.NoError(t, err)
	assert.True(t, saved)
	saved, err = r.saved.ToggleProduct(ctx, "u1", "x1")
	require.NoError(t, err)
	assert.True(t, saved)

	got, err := r.saved.Get(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, []string{"p1"}, got.Posts)
	assert.Equal(t, []string{"x1"}, got.Products)

	saved, err = r.saved.TogglePost(ctx, "u1", "p1")
	require.NoError(t, err)
	assert.False(t, saved)

	// Other users are unaffected.
	other, err := r.saved.Get(ctx, "u2")
	require.NoError(t, err)
	assert.Empty(t, other.Products)

	data, _, err := r.store.ReadRaw(ctx, SavedItemsName("u1"))
	require.NoError(t, err)
	assert.JSONEq(t, `{"posts":[],"products":["x1"]}`, string(data))
}

func TestRecentSearchRepository(t *testing.T) {
	t.Parallel()
	r := newTestRepos(t)
	ctx := context.Background()

	for i := 1; i <= 6; i++ {
		require.NoError(t, r.recent.Add(ctx, models.RecentSearch{ID: fmt.Sprint(i), Username: fmt.Sprint("user", i)}))
	}
	require.NoError(t, r.recent.Add(ctx, models.RecentSearch{ID: "4", Username: "user4"}))

	list, err := r.recent.List(ctx)
	require.NoError(t, err)
	ids := make([]string, 0, len(list))
	for _, s := range list {
		ids = append(ids, s.ID)
	}
	assert.Equal(t, []string{"4", "6", "5", "3", "2"}, ids)

	require.NoError(t, r.recent.Clear(ctx))
	list, err = r.recent.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, list)
}
