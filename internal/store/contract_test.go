package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dusk-indust/userdesk/internal/user"
)

// runContract exercises the Store semantics every backend must share.
func runContract(t *testing.T, newStore func(t *testing.T) Store) {
	t.Run("EmptyTermReturnsAllInOrder", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()
		records := fixtures()
		require.NoError(t, s.Initialize(ctx, records))

		got, err := s.Filtered(ctx, "")
		require.NoError(t, err)
		assert.Equal(t, records, got)
	})

	t.Run("FilterIsCaseInsensitiveSubsequence", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()
		records := fixtures()
		require.NoError(t, s.Initialize(ctx, records))

		got, err := s.Filtered(ctx, "BRET")
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, 1, got[0].ID)

		// "an" hits Leanne by name, Antonette and Samantha by username.
		got, err = s.Filtered(ctx, "an")
		require.NoError(t, err)
		assert.Equal(t, []int{1, 2, 3}, ids(got))

		got, err = s.Filtered(ctx, "wisokyburghh")
		require.NoError(t, err)
		assert.Equal(t, []int{2}, ids(got), "city match")

		got, err = s.Filtered(ctx, "nathan@yesenia.net")
		require.NoError(t, err)
		assert.Equal(t, []int{3}, ids(got), "email match")

		got, err = s.Filtered(ctx, "Romaguera")
		require.NoError(t, err)
		assert.Empty(t, got, "company name is not searched")

		all, err := All(ctx, s)
		require.NoError(t, err)
		assert.Equal(t, records, all, "filtering must not mutate the collection")
	})

	t.Run("AddAppends", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()
		require.NoError(t, s.Initialize(ctx, fixtures()))

		r := user.Record{ID: 11, Name: "New Person", Username: "newp", Email: "new@p.io", Address: user.Address{City: "Oslo"}}
		require.NoError(t, s.Add(ctx, r))

		all, err := All(ctx, s)
		require.NoError(t, err)
		require.Len(t, all, 4)
		assert.Equal(t, r, all[len(all)-1])
	})

	t.Run("AddDoesNotCheckUniqueness", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()
		require.NoError(t, s.Initialize(ctx, fixtures()))
		require.NoError(t, s.Add(ctx, user.Record{ID: 1, Name: "Twin"}))

		n, err := s.Len(ctx)
		require.NoError(t, err)
		assert.Equal(t, 4, n)

		removed, err := s.Remove(ctx, 1)
		require.NoError(t, err)
		assert.Equal(t, 2, removed, "remove drops every record with the id")
	})

	t.Run("ReplaceKeepsPosition", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()
		require.NoError(t, s.Initialize(ctx, fixtures()))

		updated := user.Record{
			ID:       2,
			Name:     "Ervin Howell Jr",
			Username: "ervin2",
			Email:    "ervin@new.io",
			Address:  user.Address{Street: "Main", City: "Lisbon"},
			Phone:    "555",
			Website:  "ervin.dev",
			Company:  user.Company{Name: "Howell & Co"},
		}
		ok, err := s.Replace(ctx, updated)
		require.NoError(t, err)
		assert.True(t, ok)

		all, err := All(ctx, s)
		require.NoError(t, err)
		assert.Equal(t, []int{1, 2, 3}, ids(all))
		assert.Equal(t, updated, all[1])
	})

	t.Run("ReplaceUnknownIsNoop", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()
		records := fixtures()
		require.NoError(t, s.Initialize(ctx, records))

		ok, err := s.Replace(ctx, user.Record{ID: 99, Name: "Ghost"})
		require.NoError(t, err)
		assert.False(t, ok)

		all, err := All(ctx, s)
		require.NoError(t, err)
		assert.Equal(t, records, all)
	})

	t.Run("RemoveOnlyRecordLeavesEmpty", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()
		require.NoError(t, s.Initialize(ctx, fixtures()[:1]))

		removed, err := s.Remove(ctx, 1)
		require.NoError(t, err)
		assert.Equal(t, 1, removed)

		for _, term := range []string{"", "bret", "x"} {
			got, err := s.Filtered(ctx, term)
			require.NoError(t, err)
			assert.Empty(t, got)
		}

		removed, err = s.Remove(ctx, 1)
		require.NoError(t, err)
		assert.Zero(t, removed, "second remove is a no-op")
	})

	t.Run("GetAndNextID", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()

		next, err := s.NextID(ctx)
		require.NoError(t, err)
		assert.Equal(t, 1, next)

		require.NoError(t, s.Initialize(ctx, fixtures()))
		got, err := s.Get(ctx, 3)
		require.NoError(t, err)
		assert.Equal(t, "Clementine Bauch", got.Name)

		_, err = s.Get(ctx, 42)
		assert.ErrorIs(t, err, ErrNotFound)

		next, err = s.NextID(ctx)
		require.NoError(t, err)
		assert.Equal(t, 4, next)

		_, err = s.Remove(ctx, 3)
		require.NoError(t, err)
		next, err = s.NextID(ctx)
		require.NoError(t, err)
		assert.Equal(t, 4, next, "removed ids are never reused")
	})

	t.Run("InitializeReplacesWholesale", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()
		require.NoError(t, s.Initialize(ctx, fixtures()))
		require.NoError(t, s.Initialize(ctx, fixtures()[2:]))

		all, err := All(ctx, s)
		require.NoError(t, err)
		assert.Equal(t, []int{3}, ids(all))
	})
}

func fixtures() []user.Record {
	return []user.Record{
		{
			ID: 1, Name: "Leanne Graham", Username: "Bret", Email: "Sincere@april.biz",
			Address: user.Address{Street: "Kulas Light", City: "Gwenborough"},
			Phone:   "1-770-736-8031 x56442", Website: "hildegard.org",
			Company: user.Company{Name: "Romaguera-Crona"},
		},
		{
			ID: 2, Name: "Ervin Howell", Username: "Antonette", Email: "Shanna@melissa.tv",
			Address: user.Address{Street: "Victor Plains", City: "Wisokyburghh"},
			Phone:   "010-692-6593 x09125", Website: "anastasia.net",
			Company: user.Company{Name: "Deckow-Crist"},
		},
		{
			ID: 3, Name: "Clementine Bauch", Username: "Samantha", Email: "Nathan@yesenia.net",
			Address: user.Address{Street: "Douglas Extension", City: "McKenziehaven"},
			Phone:   "1-463-123-4447", Website: "ramiro.info",
			Company: user.Company{Name: "Romaguera-Jacobson"},
		},
	}
}

func ids(records []user.Record) []int {
	out := make([]int, len(records))
	for i, r := range records {
		out[i] = r.ID
	}
	return out
}
