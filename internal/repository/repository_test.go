package repository

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/google/uuid"

	"github.com/Clark-Hu/photo-ratings/internal/domain"
	"github.com/Clark-Hu/photo-ratings/internal/testdb"
)

type testEnv struct {
	ctx        context.Context
	repository *Repository
}

func newTestEnv(t testing.TB) *testEnv {
	t.Helper()
	pool := testdb.NewPool(t, "photos_test", 40000)
	return &testEnv{
		ctx:        context.Background(),
		repository: NewWithPool(pool),
	}
}

func mustCreatePhoto(t testing.TB, env *testEnv, title string) domain.Photo {
	t.Helper()
	photo, err := env.repository.Photos.Create(env.ctx, title, "")
	if err != nil {
		t.Fatalf("create photo %q: %v", title, err)
	}
	return photo
}

func TestPhotosRepository_CreateGet(t *testing.T) {
	env := newTestEnv(t)

	created := mustCreatePhoto(t, env, "Sunset")
	if _, err := uuid.Parse(created.ID); err != nil {
		t.Fatalf("photo id %q is not a uuid: %v", created.ID, err)
	}

	got, err := env.repository.Photos.Get(env.ctx, created.ID)
	if err != nil {
		t.Fatalf("get photo: %v", err)
	}
	if got.Title != "Sunset" || got.ID != created.ID || got.OwnerID != "" {
		t.Fatalf("unexpected photo: %+v", got)
	}

	owned, err := env.repository.Photos.Create(env.ctx, "Pier", "alice")
	if err != nil {
		t.Fatalf("create owned photo: %v", err)
	}
	got, err = env.repository.Photos.Get(env.ctx, owned.ID)
	if err != nil {
		t.Fatalf("get owned photo: %v", err)
	}
	if got.OwnerID != "alice" {
		t.Fatalf("owner = %q, want alice", got.OwnerID)
	}

	if _, err := env.repository.Photos.Get(env.ctx, uuid.NewString()); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for unknown id, got %v", err)
	}
	if _, err := env.repository.Photos.Get(env.ctx, "42"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for malformed id, got %v", err)
	}
}

func TestRatingsRepository_UpsertAndSummary(t *testing.T) {
	env := newTestEnv(t)
	photo := mustCreatePhoto(t, env, "Harbor")

	summary, err := env.repository.Ratings.Summary(env.ctx, photo.ID)
	if err != nil {
		t.Fatalf("summary: %v", err)
	}
	if summary.Count != 0 || summary.Average != 0 {
		t.Fatalf("empty summary = %+v, want zero", summary)
	}

	rating, inserted, err := env.repository.Ratings.Upsert(env.ctx, RatingUpsertParams{PhotoID: photo.ID, RaterID: "alice", Value: 4})
	if err != nil {
		t.Fatalf("upsert: %v", err)
	}
	if !inserted {
		t.Fatalf("first upsert should insert")
	}
	if rating.Value != 4 || rating.PhotoID != photo.ID {
		t.Fatalf("unexpected rating: %+v", rating)
	}

	_, inserted, err = env.repository.Ratings.Upsert(env.ctx, RatingUpsertParams{PhotoID: photo.ID, RaterID: "alice", Value: 2})
	if err != nil {
		t.Fatalf("re-rate: %v", err)
	}
	if inserted {
		t.Fatalf("second upsert by the same rater should update")
	}

	if _, _, err := env.repository.Ratings.Upsert(env.ctx, RatingUpsertParams{PhotoID: photo.ID, RaterID: "bob", Value: 5}); err != nil {
		t.Fatalf("upsert bob: %v", err)
	}

	summary, err = env.repository.Ratings.Summary(env.ctx, photo.ID)
	if err != nil {
		t.Fatalf("summary: %v", err)
	}
	if summary.Count != 2 || summary.Average != 3.5 {
		t.Fatalf("summary = %+v, want avg 3.5 count 2", summary)
	}

	got, err := env.repository.Ratings.Get(env.ctx, photo.ID, "alice")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Value != 2 {
		t.Fatalf("alice rating = %d, want 2", got.Value)
	}
}

func TestRatingsRepository_StoresValuesBeyondSmallint(t *testing.T) {
	env := newTestEnv(t)
	photo := mustCreatePhoto(t, env, "Wide Scale")

	rating, _, err := env.repository.Ratings.Upsert(env.ctx, RatingUpsertParams{PhotoID: photo.ID, RaterID: "alice", Value: 40000})
	if err != nil {
		t.Fatalf("upsert: %v", err)
	}
	if rating.Value != 40000 {
		t.Fatalf("value = %d, want 40000", rating.Value)
	}
}

func TestRatingsRepository_UnknownPhoto(t *testing.T) {
	env := newTestEnv(t)

	_, _, err := env.repository.Ratings.Upsert(env.ctx, RatingUpsertParams{PhotoID: uuid.NewString(), RaterID: "alice", Value: 3})
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	if _, err := env.repository.Ratings.Get(env.ctx, uuid.NewString(), "alice"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestRatingsRepository_Delete(t *testing.T) {
	env := newTestEnv(t)
	photo := mustCreatePhoto(t, env, "Forest")

	if _, _, err := env.repository.Ratings.Upsert(env.ctx, RatingUpsertParams{PhotoID: photo.ID, RaterID: "alice", Value: 3}); err != nil {
		t.Fatalf("upsert: %v", err)
	}

	deleted, err := env.repository.Ratings.Delete(env.ctx, photo.ID, "alice")
	if err != nil || !deleted {
		t.Fatalf("delete = %v, %v; want true, nil", deleted, err)
	}

	deleted, err = env.repository.Ratings.Delete(env.ctx, photo.ID, "alice")
	if err != nil || deleted {
		t.Fatalf("second delete = %v, %v; want false, nil", deleted, err)
	}

	summary, err := env.repository.Ratings.Summary(env.ctx, photo.ID)
	if err != nil {
		t.Fatalf("summary: %v", err)
	}
	if summary.Count != 0 {
		t.Fatalf("count after delete = %d, want 0", summary.Count)
	}
}

func TestRatingsRepository_ConcurrentRaters(t *testing.T) {
	env := newTestEnv(t)
	photo := mustCreatePhoto(t, env, "Crowd")

	const raters = 20
	var wg sync.WaitGroup
	errCh := make(chan error, raters)
	for i := 0; i < raters; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, _, err := env.repository.Ratings.Upsert(env.ctx, RatingUpsertParams{
				PhotoID: photo.ID,
				RaterID: uuid.NewString(),
				Value:   i%5 + 1,
			})
			errCh <- err
		}(i)
	}
	wg.Wait()
	close(errCh)
	for err := range errCh {
		if err != nil {
			t.Fatalf("concurrent upsert: %v", err)
		}
	}

	summary, err := env.repository.Ratings.Summary(env.ctx, photo.ID)
	if err != nil {
		t.Fatalf("summary: %v", err)
	}
	if summary.Count != raters || summary.Average != 3 {
		t.Fatalf("summary = %+v, want avg 3 count %d", summary, raters)
	}
}
