package services

import (
	"context"
	"fmt"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"gatherly/internal/domain"
)

func newFavoriteServiceForTest(eventRepo domain.EventRepository, favRepo domain.FavoriteRepository) domain.FavoriteService {
	return NewFavoriteService(&fakeAtomic{}, eventRepo, favRepo, slog.New(slog.DiscardHandler), 5*time.Second)
}

type fakeFavoriteRepository struct {
	favs map[string]*domain.Favorite // keyed eventID:userID

	createErr error
	nextID    int
}

func (m *fakeFavoriteRepository) Create(ctx context.Context, fav *domain.Favorite) error {
	if m.createErr != nil {
		return m.createErr
	}
	if m.favs == nil {
		m.favs = map[string]*domain.Favorite{}
	}
	key := regKey(fav.EventID, fav.UserID)
	if _, ok := m.favs[key]; ok {
		return domain.ErrAlreadyFavorited
	}
	m.nextID++
	fav.ID = fmt.Sprintf("fav-%d", m.nextID)
	m.favs[key] = fav
	return nil
}

func (m *fakeFavoriteRepository) GetByEventAndUser(ctx context.Context, eventID, userID string) (*domain.Favorite, error) {
	fav, ok := m.favs[regKey(eventID, userID)]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return fav, nil
}

func (m *fakeFavoriteRepository) Delete(ctx context.Context, eventID, userID string) error {
	key := regKey(eventID, userID)
	if _, ok := m.favs[key]; !ok {
		return domain.ErrNotFound
	}
	delete(m.favs, key)
	return nil
}

func (m *fakeFavoriteRepository) ListByUserID(ctx context.Context, userID string) ([]*domain.Favorite, error) {
	var out []*domain.Favorite
	for _, fav := range m.favs {
		if fav.UserID == userID {
			out = append(out, fav)
		}
	}
	return out, nil
}

func (m *fakeFavoriteRepository) CountByEventID(ctx context.Context, eventID string) (int, error) {
	n := 0
	for _, fav := range m.favs {
		if fav.EventID == eventID {
			n++
		}
	}
	return n, nil
}

func TestFavoriteService_Toggle(t *testing.T) {
	ctx := context.Background()

	t.Run("toggle on then off restores the original state", func(t *testing.T) {
		eventRepo := &fakeEventRepository{events: map[string]*domain.Event{
			"e1": publishedEvent("e1", "owner-1", nil, 0),
		}}
		favRepo := &fakeFavoriteRepository{}
		svc := newFavoriteServiceForTest(eventRepo, favRepo)

		favorited, err := svc.Toggle(ctx, "e1", "u1")
		require.NoError(t, err)
		require.True(t, favorited)
		require.Equal(t, 1, eventRepo.events["e1"].FavoritesCount)

		favorited, err = svc.Toggle(ctx, "e1", "u1")
		require.NoError(t, err)
		require.False(t, favorited)
		require.Equal(t, 0, eventRepo.events["e1"].FavoritesCount)
		_, err = favRepo.GetByEventAndUser(ctx, "e1", "u1")
		require.ErrorIs(t, err, domain.ErrNotFound)

		// And back on again; no residue from the earlier round trip.
		favorited, err = svc.Toggle(ctx, "e1", "u1")
		require.NoError(t, err)
		require.True(t, favorited)
		require.Equal(t, 1, eventRepo.events["e1"].FavoritesCount)
	})

	t.Run("favorites from different users accumulate", func(t *testing.T) {
		eventRepo := &fakeEventRepository{events: map[string]*domain.Event{
			"e1": publishedEvent("e1", "owner-1", nil, 0),
		}}
		svc := newFavoriteServiceForTest(eventRepo, &fakeFavoriteRepository{})

		for _, user := range []string{"u1", "u2", "u3"} {
			favorited, err := svc.Toggle(ctx, "e1", user)
			require.NoError(t, err)
			require.True(t, favorited)
		}
		require.Equal(t, 3, eventRepo.events["e1"].FavoritesCount)

		favorited, err := svc.Toggle(ctx, "e1", "u2")
		require.NoError(t, err)
		require.False(t, favorited)
		require.Equal(t, 2, eventRepo.events["e1"].FavoritesCount)
	})

	t.Run("missing event fails", func(t *testing.T) {
		svc := newFavoriteServiceForTest(&fakeEventRepository{}, &fakeFavoriteRepository{})

		_, err := svc.Toggle(ctx, "e-missing", "u1")
		require.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("counter untouched when the row write fails", func(t *testing.T) {
		eventRepo := &fakeEventRepository{events: map[string]*domain.Event{
			"e1": publishedEvent("e1", "owner-1", nil, 0),
		}}
		favRepo := &fakeFavoriteRepository{createErr: fmt.Errorf("insert failed")}
		svc := newFavoriteServiceForTest(eventRepo, favRepo)

		_, err := svc.Toggle(ctx, "e1", "u1")
		require.Error(t, err)
		require.Equal(t, 0, eventRepo.events["e1"].FavoritesCount)
	})

	t.Run("counter underflow clamps and the toggle still succeeds", func(t *testing.T) {
		// Favorite row present but the counter already reads zero; removing
		// the favorite must not fail, and the counter stays clamped at zero.
		eventRepo := &fakeEventRepository{events: map[string]*domain.Event{
			"e1": publishedEvent("e1", "owner-1", nil, 0),
		}}
		favRepo := &fakeFavoriteRepository{}
		require.NoError(t, favRepo.Create(ctx, domain.NewFavorite("e1", "u1", time.Now())))
		svc := newFavoriteServiceForTest(eventRepo, favRepo)

		favorited, err := svc.Toggle(ctx, "e1", "u1")
		require.NoError(t, err)
		require.False(t, favorited)
		require.Equal(t, 0, eventRepo.events["e1"].FavoritesCount)
		_, err = favRepo.GetByEventAndUser(ctx, "e1", "u1")
		require.ErrorIs(t, err, domain.ErrNotFound)
	})
}

func TestFavoriteService_ListMyFavorites(t *testing.T) {
	ctx := context.Background()

	eventRepo := &fakeEventRepository{events: map[string]*domain.Event{
		"e1": publishedEvent("e1", "owner-1", nil, 0),
	}}
	favRepo := &fakeFavoriteRepository{}
	require.NoError(t, favRepo.Create(ctx, domain.NewFavorite("e1", "u1", time.Now())))
	// Favorite on a deleted event is skipped.
	require.NoError(t, favRepo.Create(ctx, domain.NewFavorite("e-gone", "u1", time.Now())))
	require.NoError(t, favRepo.Create(ctx, domain.NewFavorite("e1", "u2", time.Now())))
	svc := newFavoriteServiceForTest(eventRepo, favRepo)

	items, err := svc.ListMyFavorites(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, items, 1)
	require.Equal(t, "e1", items[0].Favorite.EventID)
	require.Equal(t, "Go Meetup", items[0].Event.Name)
}
