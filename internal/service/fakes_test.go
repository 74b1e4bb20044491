package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/sakif/techmind/internal/apperror"
	"github.com/sakif/techmind/internal/model"
	"github.com/sakif/techmind/internal/prompt"
)

// =========================================================================
// FAKES
// Hand-written in-memory fakes: no mock framework, and the behaviour each
// test relies on is visible right here.
// =========================================================================

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// fakeProvider records the prompts it receives and answers with reply/err.
type fakeProvider struct {
	mu      sync.Mutex
	reply   string
	err     error
	prompts []prompt.Prompt
}

func (f *fakeProvider) Name() string { return "fake/model" }

func (f *fakeProvider) Complete(_ context.Context, p prompt.Prompt) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.prompts = append(f.prompts, p)
	if f.err != nil {
		return "", f.err
	}
	return f.reply, nil
}

func (f *fakeProvider) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.prompts)
}

// fakeRecords is an in-memory ExplanationRepository.
type fakeRecords struct {
	saved []model.ExplanationRecord
	err   error
}

func (f *fakeRecords) SaveExplanation(_ context.Context, rec *model.ExplanationRecord) error {
	if f.err != nil {
		return f.err
	}
	rec.ID = fmt.Sprintf("rec-%d", len(f.saved)+1)
	rec.CreatedAt = time.Now()
	f.saved = append(f.saved, *rec)
	return nil
}

// fakeStreakRepo is an in-memory StreakRepository keyed by user+term.
type fakeStreakRepo struct {
	rows    map[string]*model.Streak
	tick    time.Time
	err     error
	listErr error
}

func newFakeStreakRepo() *fakeStreakRepo {
	return &fakeStreakRepo{
		rows: make(map[string]*model.Streak),
		tick: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

func (f *fakeStreakRepo) IncrementStreak(_ context.Context, userID, term string) (*model.Streak, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.tick = f.tick.Add(time.Second)
	key := userID + "\x00" + term
	s, ok := f.rows[key]
	if !ok {
		s = &model.Streak{ID: fmt.Sprintf("streak-%d", len(f.rows)+1), UserID: userID, Term: term}
		f.rows[key] = s
	}
	s.Count++
	s.UpdatedAt = f.tick
	out := *s
	return &out, nil
}

func (f *fakeStreakRepo) ListStreaks(_ context.Context, userID string) ([]model.Streak, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	var out []model.Streak
	for _, s := range f.rows {
		if s.UserID == userID {
			out = append(out, *s)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UpdatedAt.After(out[j].UpdatedAt) })
	return out, nil
}

// fakeUserRepo is an in-memory UserRepository.
type fakeUserRepo struct {
	users     map[string]*model.User // keyed by internal ID
	byGHID    map[int64]*model.User  // keyed by GitHub ID
	nextID    int
	upsertErr error
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{
		users:  make(map[string]*model.User),
		byGHID: make(map[int64]*model.User),
		nextID: 1,
	}
}

func (f *fakeUserRepo) Upsert(_ context.Context, user *model.User) error {
	if f.upsertErr != nil {
		return f.upsertErr
	}
	now := time.Now()
	if existing, ok := f.byGHID[user.GitHubID]; ok {
		existing.Username = user.Username
		existing.Email = user.Email
		existing.AvatarURL = user.AvatarURL
		existing.AccessToken = user.AccessToken
		existing.UpdatedAt = now
		*user = *existing
		return nil
	}

	user.ID = fmt.Sprintf("user-%d", f.nextID)
	f.nextID++
	user.CreatedAt = now
	user.UpdatedAt = now
	stored := *user
	f.users[user.ID] = &stored
	f.byGHID[user.GitHubID] = &stored
	return nil
}

func (f *fakeUserRepo) GetUserByID(_ context.Context, id string) (*model.User, error) {
	u, ok := f.users[id]
	if !ok {
		return nil, apperror.NotFound("user", id)
	}
	out := *u
	return &out, nil
}

func (f *fakeUserRepo) GetUserByGitHubID(_ context.Context, githubID int64) (*model.User, error) {
	u, ok := f.byGHID[githubID]
	if !ok {
		return nil, apperror.NotFound("user", fmt.Sprint(githubID))
	}
	out := *u
	return &out, nil
}

var errDB = errors.New("database is on fire")
