package repository

import (
	"context"
	"testing"
	"time"

	"onboarding_portal/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return now }

	session := &model.Session{
		ID:        "s1",
		Token:     "tok",
		User:      &model.User{ID: "u1", Role: model.RoleMentor},
		CreatedAt: now,
		ExpiresAt: now.Add(time.Hour),
	}
	require.NoError(t, store.SaveSession(ctx, session))

	t.Run("Returns a copy", func(t *testing.T) {
		got, err := store.GetSession(ctx, "s1")
		require.NoError(t, err)
		assert.Equal(t, "tok", got.Token)

		got.Clear()
		again, err := store.GetSession(ctx, "s1")
		require.NoError(t, err)
		assert.True(t, again.Authenticated())
		assert.Equal(t, model.RoleMentor, again.Role())
	})

	t.Run("Unknown id", func(t *testing.T) {
		_, err := store.GetSession(ctx, "nope")
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("Expired session is dropped", func(t *testing.T) {
		require.NoError(t, store.SaveSession(ctx, &model.Session{ID: "old", Token: "x", ExpiresAt: now.Add(-time.Minute)}))
		_, err := store.GetSession(ctx, "old")
		assert.ErrorIs(t, err, ErrNotFound)
		assert.NotContains(t, store.Cache, "old")
	})

	t.Run("Sweep", func(t *testing.T) {
		require.NoError(t, store.SaveSession(ctx, &model.Session{ID: "old2", Token: "x", ExpiresAt: now.Add(-time.Minute)}))
		ids, err := store.DeleteExpired(ctx, now)
		require.NoError(t, err)
		assert.Equal(t, []string{"old2"}, ids)
		assert.Contains(t, store.Cache, "s1")
	})

	t.Run("Delete", func(t *testing.T) {
		require.NoError(t, store.DeleteSession(ctx, "s1"))
		_, err := store.GetSession(ctx, "s1")
		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func TestRepository_Queries(t *testing.T) {
	repo := NewWithDB(nil, "")
	assert.Equal(t, `"portal_sessions"`, repo.table)

	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	query, args, err := repo.selectQuery("s1", now)
	require.NoError(t, err)
	assert.Equal(t,
		`SELECT id, token, user_data, created_at, expires_at FROM "portal_sessions" WHERE id = $1 AND (expires_at IS NULL OR expires_at > $2)`,
		query)
	assert.Equal(t, []interface{}{"s1", now}, args)

	query, args, err = repo.upsertQuery(&model.Session{
		ID:        "s1",
		Token:     "tok",
		User:      &model.User{ID: "u1", Role: model.RoleHR},
		CreatedAt: now,
	})
	require.NoError(t, err)
	assert.Contains(t, query, `INSERT INTO "portal_sessions"`)
	assert.Contains(t, query, "ON CONFLICT (id) DO UPDATE")
	assert.Len(t, args, 5)

	query, args, err = repo.sweepQuery(now)
	require.NoError(t, err)
	assert.Equal(t, `DELETE FROM "portal_sessions" WHERE expires_at <= $1 RETURNING id`, query)
	assert.Equal(t, []interface{}{now}, args)
}

func TestSessionRow_RoundTrip(t *testing.T) {
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	mentor := "m1"
	in := &model.Session{
		ID:        "s1",
		Token:     "tok",
		User:      &model.User{ID: "u1", FullName: "Ann", Role: model.RoleEmployee, MentorID: &mentor},
		CreatedAt: now,
	}

	row, err := toRow(in)
	require.NoError(t, err)
	assert.False(t, row.ExpiresAt.Valid)

	out, err := row.toModel()
	require.NoError(t, err)
	assert.Equal(t, in, out)

	anon, err := sessionRow{ID: "s2", UserData: []byte("null")}.toModel()
	require.NoError(t, err)
	assert.Nil(t, anon.User)
}
