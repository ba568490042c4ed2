package memory

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/quill-api/internal/domain"
	"github.com/phrazzld/quill-api/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newPost(t *testing.T, owner uuid.UUID, title string) *domain.Post {
	t.Helper()
	post, err := domain.NewPost(owner, title, "content of "+title)
	require.NoError(t, err)
	return post
}

func TestRepository_CreateAssignsGeneratedFields(t *testing.T) {
	s := New(nil)
	ctx := context.Background()
	owner := uuid.New()

	created, err := s.Posts().Create(ctx, newPost(t, owner, "first"))
	require.NoError(t, err)
	assert.False(t, created.CreatedAt.IsZero())
	assert.Nil(t, created.UpdatedAt)

	// Returned values are copies.
	created.Title = "mutated"
	fetched, err := s.Posts().GetByID(ctx, created.ID, nil)
	require.NoError(t, err)
	assert.Equal(t, "first", fetched.Title)
}

func TestRepository_PaginationKeepsInsertionOrder(t *testing.T) {
	s := New(nil)
	ctx := context.Background()
	owner := uuid.New()
	other := uuid.New()

	for i := 0; i < 5; i++ {
		_, err := s.Posts().Create(ctx, newPost(t, owner, fmt.Sprintf("post-%d", i)))
		require.NoError(t, err)
		_, err = s.Posts().Create(ctx, newPost(t, other, fmt.Sprintf("other-%d", i)))
		require.NoError(t, err)
	}

	page, err := s.Posts().GetMultiPaginated(ctx, 1, 2, store.Eq("client_id", owner))
	require.NoError(t, err)
	require.Len(t, page, 2)
	assert.Equal(t, "post-1", page[0].Title)
	assert.Equal(t, "post-2", page[1].Title)
	assert.True(t, page[0].CreatedAt.Before(page[1].CreatedAt))

	empty, err := s.Posts().GetMultiPaginated(ctx, 0, 10, store.Eq("client_id", uuid.New()))
	require.NoError(t, err)
	assert.NotNil(t, empty)
	assert.Empty(t, empty)

	past, err := s.Posts().GetMultiPaginated(ctx, 50, 10, store.Eq("client_id", owner))
	require.NoError(t, err)
	assert.Empty(t, past)
}

func TestRepository_PaginationWithLargeLimits(t *testing.T) {
	s := New(nil)
	ctx := context.Background()
	owner := uuid.New()

	for i := 0; i < 2; i++ {
		_, err := s.Posts().Create(ctx, newPost(t, owner, fmt.Sprintf("post-%d", i)))
		require.NoError(t, err)
	}

	tests := []struct {
		name   string
		offset int
		limit  int
		want   []string
	}{
		{"max limit from start", 0, math.MaxInt, []string{"post-0", "post-1"}},
		{"max limit with offset", 1, math.MaxInt, []string{"post-1"}},
		{"max limit past the end", 2, math.MaxInt, nil},
		{"max offset", math.MaxInt, 10, nil},
		{"limit larger than rows", 0, 100, []string{"post-0", "post-1"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			page, err := s.Posts().GetMultiPaginated(ctx, tt.offset, tt.limit, nil)
			require.NoError(t, err)

			titles := make([]string, 0, len(page))
			for _, p := range page {
				titles = append(titles, p.Title)
			}
			if tt.want == nil {
				assert.Empty(t, titles)
				return
			}
			assert.Equal(t, tt.want, titles)
		})
	}
}

func TestRepository_ScopedAccessHidesOtherOwners(t *testing.T) {
	s := New(nil)
	ctx := context.Background()
	alice := uuid.New()
	bob := uuid.New()

	post, err := s.Posts().Create(ctx, newPost(t, alice, "mine"))
	require.NoError(t, err)

	bobScope := store.Eq("client_id", bob)

	_, err = s.Posts().GetByID(ctx, post.ID, bobScope)
	assert.ErrorIs(t, err, store.ErrPostNotFound)

	_, err = s.Posts().Update(ctx, post.ID, store.Changes{"title": "stolen"}, bobScope)
	assert.ErrorIs(t, err, store.ErrPostNotFound)

	err = s.Posts().Delete(ctx, post.ID, bobScope)
	assert.ErrorIs(t, err, store.ErrPostNotFound)

	_, err = s.Posts().GetByID(ctx, uuid.New(), bobScope)
	assert.ErrorIs(t, err, store.ErrPostNotFound, "missing and foreign posts must be indistinguishable")

	still, err := s.Posts().GetByID(ctx, post.ID, store.Eq("client_id", alice))
	require.NoError(t, err)
	assert.Equal(t, "mine", still.Title)
}

func TestRepository_UpdateStampsUpdatedAt(t *testing.T) {
	s := New(nil)
	ctx := context.Background()
	owner := uuid.New()

	post, err := s.Posts().Create(ctx, newPost(t, owner, "before"))
	require.NoError(t, err)

	updated, err := s.Posts().Update(ctx, post.ID, store.Changes{"title": "after"}, store.Eq("client_id", owner))
	require.NoError(t, err)
	assert.Equal(t, "after", updated.Title)
	assert.Equal(t, post.Content, updated.Content)
	require.NotNil(t, updated.UpdatedAt)
	assert.Equal(t, post.CreatedAt, updated.CreatedAt)

	_, err = s.Posts().Update(ctx, post.ID, store.Changes{"client_id": uuid.New()}, nil)
	assert.ErrorIs(t, err, store.ErrInvalidFilter)
}

func TestRepository_UpdatedAtNeverPrecedesCreatedAt(t *testing.T) {
	s := New(nil)
	frozen := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return frozen }
	ctx := context.Background()
	owner := uuid.New()

	post, err := s.Posts().Create(ctx, newPost(t, owner, "first"))
	require.NoError(t, err)

	// The clock steps backwards between the insert and the updates.
	s.now = func() time.Time { return frozen.Add(-time.Hour) }

	first, err := s.Posts().Update(ctx, post.ID, store.Changes{"title": "second"}, nil)
	require.NoError(t, err)
	require.NotNil(t, first.UpdatedAt)
	assert.True(t, first.UpdatedAt.After(post.CreatedAt))

	second, err := s.Posts().Update(ctx, post.ID, store.Changes{"title": "third"}, nil)
	require.NoError(t, err)
	require.NotNil(t, second.UpdatedAt)
	assert.True(t, second.UpdatedAt.After(*first.UpdatedAt))
}

func TestRepository_UniqueToken(t *testing.T) {
	s := New(nil)
	ctx := context.Background()

	first, err := domain.NewClient("A", "enc-1")
	require.NoError(t, err)
	second, err := domain.NewClient("B", "enc-1")
	require.NoError(t, err)
	third, err := domain.NewClient("C", "enc-3")
	require.NoError(t, err)

	_, err = s.Clients().Create(ctx, first)
	require.NoError(t, err)

	_, err = s.Clients().Create(ctx, second)
	assert.ErrorIs(t, err, store.ErrConflict)
	assert.ErrorIs(t, err, store.ErrTokenExists)

	_, err = s.Clients().Create(ctx, third)
	require.NoError(t, err)
	_, err = s.Clients().Update(ctx, third.ID, store.Changes{"token": "enc-1"}, nil)
	assert.ErrorIs(t, err, store.ErrConflict)

	// Updating a row to its own value is not a conflict.
	_, err = s.Clients().Update(ctx, first.ID, store.Changes{"token": "enc-1", "name": "A2"}, nil)
	require.NoError(t, err)
}

func TestRepository_GetByFilterOneOrNone(t *testing.T) {
	s := New(nil)
	ctx := context.Background()
	owner := uuid.New()

	_, err := s.Posts().GetByFilterOneOrNone(ctx, store.Eq("title", "dup"))
	assert.ErrorIs(t, err, store.ErrNotFound)

	_, err = s.Posts().Create(ctx, newPost(t, owner, "dup"))
	require.NoError(t, err)
	one, err := s.Posts().GetByFilterOneOrNone(ctx, store.Eq("title", "dup"))
	require.NoError(t, err)
	assert.Equal(t, "dup", one.Title)

	_, err = s.Posts().Create(ctx, newPost(t, owner, "dup"))
	require.NoError(t, err)
	_, err = s.Posts().GetByFilterOneOrNone(ctx, store.Eq("title", "dup"))
	assert.ErrorIs(t, err, store.ErrNotFound, "more than one match is not success")
}

func TestRepository_FilterTree(t *testing.T) {
	s := New(nil)
	ctx := context.Background()
	owner := uuid.New()

	for _, title := range []string{"a", "b", "c"} {
		_, err := s.Posts().Create(ctx, newPost(t, owner, title))
		require.NoError(t, err)
	}

	matches, err := s.Posts().GetByFilter(ctx,
		store.NewScope(store.Eq("client_id", owner)).Narrow(store.Or(store.Eq("title", "a"), store.Eq("title", "c"))).Filter())
	require.NoError(t, err)
	assert.Len(t, matches, 2)

	none, err := s.Posts().GetByFilter(ctx, store.Or())
	require.NoError(t, err)
	assert.Empty(t, none)

	_, err = s.Posts().GetByFilter(ctx, store.Eq("nope", 1))
	assert.ErrorIs(t, err, store.ErrInvalidFilter)
}

func TestRepository_CreateAllIsAtomic(t *testing.T) {
	s := New(nil)
	ctx := context.Background()

	a, _ := domain.NewClient("A", "same")
	b, _ := domain.NewClient("B", "other")
	c, _ := domain.NewClient("C", "same")

	_, err := s.Clients().CreateAll(ctx, []*domain.Client{a, b, c})
	assert.ErrorIs(t, err, store.ErrConflict)

	all, err := s.Clients().GetByFilter(ctx, nil)
	require.NoError(t, err)
	assert.Empty(t, all, "a failed batch must not leave partial rows")
}

func TestStore_RunInTransactionRollsBack(t *testing.T) {
	s := New(nil)
	ctx := context.Background()
	owner := uuid.New()
	boom := errors.New("boom")

	err := s.RunInTransaction(ctx, func(ctx context.Context, tx *sql.Tx) error {
		assert.Nil(t, tx)
		if _, err := s.Posts().WithTx(tx).Create(ctx, newPost(t, owner, "lost")); err != nil {
			return err
		}
		return boom
	})
	assert.ErrorIs(t, err, boom)

	posts, err := s.Posts().GetByFilter(ctx, nil)
	require.NoError(t, err)
	assert.Empty(t, posts)

	assert.Panics(t, func() {
		_ = s.RunInTransaction(ctx, func(ctx context.Context, _ *sql.Tx) error {
			_, _ = s.Posts().Create(ctx, newPost(t, owner, "lost too"))
			panic("test panic")
		})
	})
	posts, err = s.Posts().GetByFilter(ctx, nil)
	require.NoError(t, err)
	assert.Empty(t, posts)

	require.NoError(t, s.RunInTransaction(ctx, func(ctx context.Context, tx *sql.Tx) error {
		_, err := s.Posts().WithTx(tx).Create(ctx, newPost(t, owner, "kept"))
		return err
	}))
	posts, err = s.Posts().GetByFilter(ctx, nil)
	require.NoError(t, err)
	assert.Len(t, posts, 1)
}

func TestStatsRepository_AveragePostCountPerClient(t *testing.T) {
	s := New(nil)
	ctx := context.Background()
	busy := uuid.New()
	quiet := uuid.New()

	for i := 0; i < 3; i++ {
		_, err := s.Posts().Create(ctx, newPost(t, busy, fmt.Sprintf("p%d", i)))
		require.NoError(t, err)
	}
	_, err := s.Posts().Create(ctx, newPost(t, quiet, "only"))
	require.NoError(t, err)

	avg, err := s.Posts().AveragePostCountPerClient(ctx, busy)
	require.NoError(t, err)
	assert.Equal(t, 3.0, avg)

	avg, err = s.Posts().AveragePostCountPerClient(ctx, uuid.New())
	require.NoError(t, err)
	assert.Equal(t, 0.0, avg)
}

func TestAssign(t *testing.T) {
	var s string
	require.NoError(t, assign(&s, "x"))
	assert.Equal(t, "x", s)

	var ts *time.Time
	now := time.Now()
	require.NoError(t, assign(&ts, now))
	require.NotNil(t, ts)
	require.NoError(t, assign(&ts, nil))
	assert.Nil(t, ts)

	err := assign(&s, 42)
	assert.ErrorIs(t, err, store.ErrStorage)
}
