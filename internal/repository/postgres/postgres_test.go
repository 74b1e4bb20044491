package postgres

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/rs/xid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sakif/techmind/internal/apperror"
	"github.com/sakif/techmind/internal/model"
)

// newTestStore connects to TEST_DATABASE_URL and skips when it is unset.
// Every test uses fresh github ids and user ids, so runs don't collide.
func newTestStore(t *testing.T) *Store {
	t.Helper()
	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set; skipping postgres tests")
	}
	s, err := New(dsn)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func uniqueGitHubID() int64 {
	return time.Now().UnixNano()
}

func TestUpsert_InsertThenUpdate(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	ghID := uniqueGitHubID()

	first := &model.User{GitHubID: ghID, Username: "alice", Email: "a@example.com"}
	require.NoError(t, s.Upsert(ctx, first))
	require.NotEmpty(t, first.ID)

	second := &model.User{GitHubID: ghID, Username: "alice2", AccessToken: "sealed"}
	require.NoError(t, s.Upsert(ctx, second))

	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, "alice2", second.Username)
	assert.Equal(t, "", second.Email)
	assert.Equal(t, "sealed", second.AccessToken)
	assert.True(t, second.CreatedAt.Equal(first.CreatedAt))

	got, err := s.GetUserByID(ctx, first.ID)
	require.NoError(t, err)
	assert.Equal(t, ghID, got.GitHubID)

	_, err = s.GetUserByID(ctx, xid.New().String())
	assert.ErrorIs(t, err, apperror.ErrNotFound)
}

func TestIncrementAndListStreaks(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	u := &model.User{GitHubID: uniqueGitHubID(), Username: "bob"}
	require.NoError(t, s.Upsert(ctx, u))

	a1, err := s.IncrementStreak(ctx, u.ID, "kubernetes")
	require.NoError(t, err)
	assert.Equal(t, 1, a1.Count)

	a2, err := s.IncrementStreak(ctx, u.ID, "kubernetes")
	require.NoError(t, err)
	assert.Equal(t, 2, a2.Count)
	assert.Equal(t, a1.ID, a2.ID)

	_, err = s.IncrementStreak(ctx, u.ID, "docker")
	require.NoError(t, err)

	list, err := s.ListStreaks(ctx, u.ID)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "docker", list[0].Term)
	assert.Equal(t, "kubernetes", list[1].Term)

	empty, err := s.ListStreaks(ctx, xid.New().String())
	require.NoError(t, err)
	assert.NotNil(t, empty)
	assert.Empty(t, empty)
}

func TestSaveExplanation(t *testing.T) {
	s := newTestStore(t)
	rec := &model.ExplanationRecord{Term: "go", Responses: `[{"provider":"TechMind","explanation":"Gophers everywhere."}]`}
	require.NoError(t, s.SaveExplanation(context.Background(), rec))
	assert.NotEmpty(t, rec.ID)
	assert.NoError(t, s.Ping(context.Background()))
}
