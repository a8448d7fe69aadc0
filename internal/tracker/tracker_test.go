package tracker

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/codepet/codepet/internal/catalog"
	"github.com/codepet/codepet/internal/progression"
	"github.com/codepet/codepet/internal/store"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (f *fakeClock) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.now
}

func (f *fakeClock) Advance(d time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.now = f.now.Add(d)
}

func setup(t *testing.T) (*Tracker, *store.Store, *fakeClock, int64) {
	t.Helper()
	st, err := store.Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString()))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	u := &store.User{Name: "alice", Email: "alice@example.com"}
	require.NoError(t, st.Users.Create(context.Background(), u))

	clock := &fakeClock{now: time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)}
	tr := New(st, catalog.Default(), WithClock(clock.Now), WithLocation(time.UTC))
	return tr, st, clock, u.ID
}

func TestAttachCharacter(t *testing.T) {
	tr, _, _, userID := setup(t)
	ctx := context.Background()

	c, err := tr.AttachCharacter(ctx, userID, "go", "fox")
	require.NoError(t, err)
	assert.Equal(t, 1, c.Level)
	assert.Equal(t, 0, c.Experience)
	assert.Equal(t, 100, c.ExperienceToNextLevel)
	assert.Equal(t, progression.EmotionNeutral, c.Emotion(tr.Now()))

	_, err = tr.AttachCharacter(ctx, userID, "go", "cat")
	assert.ErrorIs(t, err, ErrDuplicateSkill)

	_, err = tr.AttachCharacter(ctx, userID, "cobol", "cat")
	assert.ErrorIs(t, err, ErrUnknownStack)

	_, err = tr.AttachCharacter(ctx, userID, "rust", "dragon")
	assert.ErrorIs(t, err, ErrUnknownAnimal)

	_, err = tr.AttachCharacter(ctx, 9999, "rust", "cat")
	assert.ErrorIs(t, err, store.ErrNotFound)

	all, err := tr.Characters(ctx, userID)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestLogStudy(t *testing.T) {
	tr, _, _, userID := setup(t)
	ctx := context.Background()
	c, err := tr.AttachCharacter(ctx, userID, "go", "cat")
	require.NoError(t, err)

	p, err := tr.LogStudy(ctx, c.ID, 25, "goroutines")
	require.NoError(t, err)

	assert.Equal(t, 3, p.Character.Level)
	assert.Equal(t, 0, p.Character.Experience)
	assert.Equal(t, 225, p.Character.ExperienceToNextLevel)
	assert.Equal(t, 250, p.ExperienceGained)
	assert.Equal(t, 2, p.LevelsGained())
	assert.Equal(t, 25, p.Character.TotalStudyMinutes)
	assert.Equal(t, 1, p.Character.Streak)
	assert.Equal(t, progression.EmotionExcited, p.Character.Emotion(tr.Now()))

	stored, err := tr.Character(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, p.Character.Level, stored.Level)
	assert.Equal(t, p.Character.Experience, stored.Experience)

	sessions, err := tr.Sessions(ctx, c.ID, 10)
	require.NoError(t, err)
	require.Len(t, sessions, 1)
	assert.Equal(t, 25, sessions[0].DurationMinutes)
	assert.Equal(t, 250, sessions[0].ExperienceGained)
	assert.Equal(t, "goroutines", sessions[0].Notes)
}

func TestLogStudy_InvalidMinutes(t *testing.T) {
	tr, _, _, userID := setup(t)
	ctx := context.Background()
	c, err := tr.AttachCharacter(ctx, userID, "go", "cat")
	require.NoError(t, err)

	for _, m := range []int{0, -10} {
		_, err := tr.LogStudy(ctx, c.ID, m, "")
		assert.ErrorIs(t, err, progression.ErrInvalidArgument, "minutes %d", m)
	}

	_, err = tr.LogStudy(ctx, "missing", 10, "")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestLogStudy_Streak(t *testing.T) {
	tr, _, clock, userID := setup(t)
	ctx := context.Background()
	c, err := tr.AttachCharacter(ctx, userID, "go", "cat")
	require.NoError(t, err)

	steps := []struct {
		advance     time.Duration
		wantStreak  int
		wantLongest int
	}{
		{0, 1, 1},
		{2 * time.Hour, 1, 1}, // same day
		{24 * time.Hour, 2, 2},
		{24 * time.Hour, 3, 3},
		{72 * time.Hour, 1, 3}, // gap resets
		{24 * time.Hour, 2, 3},
	}
	for i, s := range steps {
		clock.Advance(s.advance)
		p, err := tr.LogStudy(ctx, c.ID, 5, "")
		require.NoError(t, err, "step %d", i)
		assert.Equal(t, s.wantStreak, p.Character.Streak, "step %d streak", i)
		assert.Equal(t, s.wantLongest, p.Character.LongestStreak, "step %d longest", i)
	}
}

func TestLogStudy_AwardsBadgesOnce(t *testing.T) {
	tr, _, _, userID := setup(t)
	ctx := context.Background()
	c, err := tr.AttachCharacter(ctx, userID, "go", "cat")
	require.NoError(t, err)

	p, err := tr.LogStudy(ctx, c.ID, 600, "")
	require.NoError(t, err)
	assert.Equal(t, []string{"study-600"}, p.NewBadges)
	assert.Equal(t, 9, p.Character.Level)

	p, err = tr.LogStudy(ctx, c.ID, 1, "")
	require.NoError(t, err)
	assert.Empty(t, p.NewBadges)

	stored, err := tr.Character(ctx, c.ID)
	require.NoError(t, err)
	assert.Contains(t, stored.EarnedBadges, "study-600")
}

func TestLogStudy_ConcurrentUpdatesAreNotLost(t *testing.T) {
	tr, _, _, userID := setup(t)
	ctx := context.Background()
	c, err := tr.AttachCharacter(ctx, userID, "go", "cat")
	require.NoError(t, err)

	const workers = 20
	var wg sync.WaitGroup
	errs := make(chan error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := tr.LogStudy(ctx, c.ID, 5, ""); err != nil {
				errs <- err
			}
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Fatalf("concurrent log: %v", err)
	}

	got, err := tr.Character(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, workers*5, got.TotalStudyMinutes)
	assert.Equal(t, progression.TotalExperience(got.Level, got.Experience), workers*5*10)

	sessions, err := tr.Sessions(ctx, c.ID, 0)
	require.NoError(t, err)
	assert.Len(t, sessions, workers)
}

func TestCreditQuizReward(t *testing.T) {
	tr, _, _, userID := setup(t)
	ctx := context.Background()
	c, err := tr.AttachCharacter(ctx, userID, "go", "cat")
	require.NoError(t, err)

	p, err := tr.CreditQuizReward(ctx, c.ID, 42, 120)
	require.NoError(t, err)
	assert.Equal(t, 2, p.Character.Level)
	assert.Equal(t, 20, p.Character.Experience)
	assert.Equal(t, 120, p.ExperienceGained)
	assert.True(t, p.Character.HasSolved(42))

	p, err = tr.CreditQuizReward(ctx, c.ID, 42, 120)
	require.NoError(t, err)
	assert.Equal(t, 0, p.ExperienceGained)
	assert.Equal(t, 20, p.Character.Experience)
	assert.Len(t, p.Character.SolvedProblems, 1)

	_, err = tr.CreditQuizReward(ctx, c.ID, 43, -1)
	assert.ErrorIs(t, err, progression.ErrInvalidArgument)
}

func TestCreditQuizReward_ProblemBadge(t *testing.T) {
	tr, _, _, userID := setup(t)
	ctx := context.Background()
	c, err := tr.AttachCharacter(ctx, userID, "go", "cat")
	require.NoError(t, err)

	var last *Progress
	for i := int64(1); i <= 10; i++ {
		last, err = tr.CreditQuizReward(ctx, c.ID, i, 10)
		require.NoError(t, err)
	}
	assert.Equal(t, []string{"problems-10"}, last.NewBadges)
}

func TestDecayStreaks(t *testing.T) {
	tr, _, clock, userID := setup(t)
	ctx := context.Background()
	stale, err := tr.AttachCharacter(ctx, userID, "go", "cat")
	require.NoError(t, err)
	fresh, err := tr.AttachCharacter(ctx, userID, "rust", "dog")
	require.NoError(t, err)

	_, err = tr.LogStudy(ctx, stale.ID, 5, "")
	require.NoError(t, err)
	clock.Advance(48 * time.Hour)
	_, err = tr.LogStudy(ctx, fresh.ID, 5, "")
	require.NoError(t, err)

	n, err := tr.DecayStreaks(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	got, err := tr.Character(ctx, stale.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, got.Streak)
	assert.Equal(t, 1, got.LongestStreak)

	got, err = tr.Character(ctx, fresh.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, got.Streak)

	n, err = tr.DecayStreaks(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestStreaks(t *testing.T) {
	loc := time.FixedZone("KST", 9*3600)
	last := time.Date(2025, 3, 10, 14, 0, 0, 0, time.UTC) // 23:00 KST on the 10th
	c := progression.Character{Streak: 4, LongestStreak: 4, LastStudyDate: &last}

	// 02:00 KST on the 11th is the next calendar day in KST.
	next := time.Date(2025, 3, 10, 17, 0, 0, 0, time.UTC)
	cur, longest := streaks(c, nil, next, next, loc)
	assert.Equal(t, 5, cur)
	assert.Equal(t, 5, longest)
	cur, _ = streaks(c, nil, next, next, time.UTC)
	assert.Equal(t, 4, cur)
	cur, _ = streaks(progression.Character{}, nil, next, next, loc)
	assert.Equal(t, 1, cur)

	// Backfilling an old day does not revive a streak that has lapsed.
	now := time.Date(2025, 3, 20, 9, 0, 0, 0, time.UTC)
	cur, longest = streaks(c, nil, last.AddDate(0, 0, -10), now, time.UTC)
	assert.Equal(t, 0, cur)
	assert.Equal(t, 4, longest)
}

func TestLogStudyAt_OutOfOrderDaysJoinTheStreak(t *testing.T) {
	tr, _, clock, userID := setup(t)
	ctx := context.Background()
	c, err := tr.AttachCharacter(ctx, userID, "go", "cat")
	require.NoError(t, err)
	clock.Advance(3*24*time.Hour + 12*time.Hour) // 2025-03-13 21:00

	day := func(d int) time.Time { return time.Date(2025, 3, d, 20, 0, 0, 0, time.UTC) }
	for _, s := range []struct {
		day         int
		wantStreak  int
		wantLongest int
	}{
		{10, 0, 1}, // already lapsed by the 13th
		{12, 1, 1},
		{11, 3, 3},
		{13, 4, 4},
	} {
		p, err := tr.LogStudyAt(ctx, c.ID, 5, "", day(s.day))
		require.NoError(t, err, "day %d", s.day)
		assert.Equal(t, s.wantStreak, p.Character.Streak, "day %d streak", s.day)
		assert.Equal(t, s.wantLongest, p.Character.LongestStreak, "day %d longest", s.day)
	}

	got, err := tr.Character(ctx, c.ID)
	require.NoError(t, err)
	require.NotNil(t, got.LastStudyDate)
	assert.True(t, got.LastStudyDate.Equal(day(13)), "last study date = %s", got.LastStudyDate)
}

func TestLogStudyAt_RejectsFuture(t *testing.T) {
	tr, _, clock, userID := setup(t)
	ctx := context.Background()
	c, err := tr.AttachCharacter(ctx, userID, "go", "cat")
	require.NoError(t, err)

	_, err = tr.LogStudyAt(ctx, c.ID, 5, "", clock.Now().Add(time.Hour))
	assert.ErrorIs(t, err, progression.ErrInvalidArgument)

	got, err := tr.Character(ctx, c.ID)
	require.NoError(t, err)
	assert.Nil(t, got.LastStudyDate)
	assert.Zero(t, got.TotalStudyMinutes)
}
