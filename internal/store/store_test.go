package store

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"slices"
	"testing"
	"time"

	"github.com/codepet/codepet/internal/progression"
	"github.com/google/uuid"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString()))
	if err != nil {
		t.Fatalf("open test store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func createUser(t *testing.T, s *Store, name string) *User {
	t.Helper()
	u := &User{Name: name, Email: name + "@example.com", PasswordHash: "x"}
	if err := s.Users.Create(context.Background(), u); err != nil {
		t.Fatalf("create user: %v", err)
	}
	return u
}

func createCharacter(t *testing.T, s *Store, userID int64, stack string) progression.Character {
	t.Helper()
	c := progression.NewCharacter(uuid.NewString(), userID, stack, "cat", time.Now())
	if err := s.Characters.Create(context.Background(), c); err != nil {
		t.Fatalf("create character: %v", err)
	}
	return c
}

func TestOpenClose(t *testing.T) {
	s := openTestStore(t)
	if s.DB() == nil {
		t.Fatal("expected non-nil db")
	}
}

func TestOpenFileDatabase(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "codepet.db")
	if err := EnsureDir(path); err != nil {
		t.Fatalf("ensure dir: %v", err)
	}
	s, err := Open(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer s.Close()

	var mode string
	if err := s.DB().QueryRow("PRAGMA journal_mode").Scan(&mode); err != nil {
		t.Fatalf("PRAGMA journal_mode: %v", err)
	}
	if mode != "wal" {
		t.Errorf("journal_mode = %q, want wal", mode)
	}
}

func TestPragmasApplied(t *testing.T) {
	s := openTestStore(t)
	db := s.DB()

	tests := []struct {
		pragma string
		want   string
	}{
		{"foreign_keys", "1"},
		{"synchronous", "1"}, // NORMAL = 1
		{"busy_timeout", "5000"},
	}

	for _, tt := range tests {
		var got string
		err := db.QueryRow("PRAGMA " + tt.pragma).Scan(&got)
		if err != nil {
			t.Errorf("PRAGMA %s: %v", tt.pragma, err)
			continue
		}
		if got != tt.want {
			t.Errorf("PRAGMA %s = %q, want %q", tt.pragma, got, tt.want)
		}
	}
}

func TestAutoMigrationCreatesTables(t *testing.T) {
	s := openTestStore(t)
	for _, name := range []string{
		"users", "characters", "character_badges", "study_sessions", "questions",
		"solved_questions", "wrong_answers", "settings", "llm_requests", "global_sequence",
	} {
		var got string
		err := s.DB().QueryRow(
			"SELECT name FROM sqlite_master WHERE type='table' AND name=?", name,
		).Scan(&got)
		if err != nil {
			t.Errorf("table %s: %v", name, err)
		}
	}
}

func TestSequenceCounter(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	var seqs []int64
	for i := 0; i < 5; i++ {
		seq, err := s.seq.Next(ctx, s.DB())
		if err != nil {
			t.Fatalf("next %d: %v", i, err)
		}
		seqs = append(seqs, seq)
	}

	for i, seq := range seqs {
		expected := int64(i + 1)
		if seq != expected {
			t.Errorf("seq[%d] = %d, want %d", i, seq, expected)
		}
	}
}

func TestUserRepo(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	u := createUser(t, s, "alice")
	if u.ID == 0 {
		t.Fatal("expected user id to be set")
	}

	dup := &User{Name: "alice2", Email: "alice@example.com"}
	if err := s.Users.Create(ctx, dup); !errors.Is(err, ErrConflict) {
		t.Errorf("duplicate email: err = %v, want ErrConflict", err)
	}

	if err := s.Users.SetToken(ctx, u.ID, "tok-1"); err != nil {
		t.Fatalf("set token: %v", err)
	}
	got, err := s.Users.ByToken(ctx, "tok-1")
	if err != nil {
		t.Fatalf("by token: %v", err)
	}
	if got.ID != u.ID || got.Email != u.Email {
		t.Errorf("by token = %+v, want user %d", got, u.ID)
	}

	if err := s.Users.SetToken(ctx, u.ID, ""); err != nil {
		t.Fatalf("clear token: %v", err)
	}
	if _, err := s.Users.ByToken(ctx, "tok-1"); !errors.Is(err, ErrNotFound) {
		t.Errorf("cleared token: err = %v, want ErrNotFound", err)
	}
	if _, err := s.Users.ByID(ctx, 9999); !errors.Is(err, ErrNotFound) {
		t.Errorf("missing user: err = %v, want ErrNotFound", err)
	}

	createUser(t, s, "bob")
	all, err := s.Users.List(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(all) != 2 {
		t.Errorf("list len = %d, want 2", len(all))
	}
}

func TestCharacterRoundTrip(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	u := createUser(t, s, "alice")
	c := createCharacter(t, s, u.ID, "go")

	last := time.Date(2025, 5, 4, 10, 30, 0, 0, time.UTC)
	c.Level = 3
	c.Experience = 40
	c.LastStudyDate = &last
	c.TotalStudyMinutes = 620
	c.Streak = 2
	c.LongestStreak = 5
	c.EarnedBadges = []string{"study-600"}
	c.SolvedProblems = []int64{7, 3}
	if err := s.Characters.Save(ctx, c); err != nil {
		t.Fatalf("save: %v", err)
	}

	got, err := s.Characters.Get(ctx, c.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Level != 3 || got.Experience != 40 || got.ExperienceToNextLevel != 225 {
		t.Errorf("level/exp/next = %d/%d/%d, want 3/40/225", got.Level, got.Experience, got.ExperienceToNextLevel)
	}
	if got.LastStudyDate == nil || !got.LastStudyDate.Equal(last) {
		t.Errorf("last study date = %v, want %v", got.LastStudyDate, last)
	}
	if got.TotalStudyMinutes != 620 || got.Streak != 2 || got.LongestStreak != 5 {
		t.Errorf("minutes/streak/longest = %d/%d/%d", got.TotalStudyMinutes, got.Streak, got.LongestStreak)
	}
	if !slices.Equal(got.EarnedBadges, []string{"study-600"}) {
		t.Errorf("badges = %v", got.EarnedBadges)
	}
	if !slices.Equal(got.SolvedProblems, []int64{7, 3}) {
		t.Errorf("solved = %v", got.SolvedProblems)
	}

	byStack, err := s.Characters.ByUserAndStack(ctx, u.ID, "go")
	if err != nil {
		t.Fatalf("by user and stack: %v", err)
	}
	if byStack.ID != c.ID {
		t.Errorf("by user and stack id = %s, want %s", byStack.ID, c.ID)
	}
}

func TestCharacterBadgesOnlyGrow(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	u := createUser(t, s, "alice")
	c := createCharacter(t, s, u.ID, "go")

	c.EarnedBadges = []string{"streak-7", "level-10"}
	if err := s.Characters.Save(ctx, c); err != nil {
		t.Fatalf("save: %v", err)
	}

	// A stale copy without badges must not erase stored ones.
	c.EarnedBadges = nil
	if err := s.Characters.Save(ctx, c); err != nil {
		t.Fatalf("save stale: %v", err)
	}

	c.EarnedBadges = []string{"streak-7", "level-10", "study-600"}
	if err := s.Characters.Save(ctx, c); err != nil {
		t.Fatalf("save more: %v", err)
	}

	got, err := s.Characters.Get(ctx, c.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	want := []string{"streak-7", "level-10", "study-600"}
	if !slices.Equal(got.EarnedBadges, want) {
		t.Errorf("badges = %v, want %v", got.EarnedBadges, want)
	}
}

func TestCharacterDuplicateStack(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	u := createUser(t, s, "alice")
	createCharacter(t, s, u.ID, "go")

	dup := progression.NewCharacter(uuid.NewString(), u.ID, "go", "dog", time.Now())
	if err := s.Characters.Create(ctx, dup); !errors.Is(err, ErrConflict) {
		t.Errorf("duplicate stack: err = %v, want ErrConflict", err)
	}
}

func TestCharacterListAndDelete(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	alice := createUser(t, s, "alice")
	bob := createUser(t, s, "bob")
	a1 := createCharacter(t, s, alice.ID, "go")
	createCharacter(t, s, alice.ID, "rust")
	createCharacter(t, s, bob.ID, "go")

	mine, err := s.Characters.ListByUser(ctx, alice.ID)
	if err != nil {
		t.Fatalf("list by user: %v", err)
	}
	if len(mine) != 2 {
		t.Errorf("alice has %d characters, want 2", len(mine))
	}
	all, err := s.Characters.ListAll(ctx)
	if err != nil {
		t.Fatalf("list all: %v", err)
	}
	if len(all) != 3 {
		t.Errorf("total characters = %d, want 3", len(all))
	}

	if err := s.Characters.Delete(ctx, a1.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := s.Characters.Get(ctx, a1.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("deleted character: err = %v, want ErrNotFound", err)
	}
}

func TestSessionRepo(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	u := createUser(t, s, "alice")
	c := createCharacter(t, s, u.ID, "go")

	base := time.Date(2025, 1, 1, 9, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		err := s.Sessions.Append(ctx, &StudySession{
			CharacterID:      c.ID,
			StudiedAt:        base.Add(time.Duration(i) * 24 * time.Hour),
			DurationMinutes:  10 * (i + 1),
			ExperienceGained: 100 * (i + 1),
		})
		if err != nil {
			t.Fatalf("append %d: %v", i, err)
		}
	}

	got, err := s.Sessions.ListByCharacter(ctx, c.ID, QueryOpts{})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("len = %d, want 3", len(got))
	}
	if got[0].DurationMinutes != 30 || got[2].DurationMinutes != 10 {
		t.Errorf("expected newest first, got %d..%d", got[0].DurationMinutes, got[2].DurationMinutes)
	}

	limited, err := s.Sessions.ListByCharacter(ctx, c.ID, QueryOpts{Limit: 1})
	if err != nil {
		t.Fatalf("list limited: %v", err)
	}
	if len(limited) != 1 {
		t.Errorf("limited len = %d, want 1", len(limited))
	}
}

func TestQuestionRepo(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	q := &Question{
		TechStackID: "go",
		Title:       "Zero value of a map",
		Content:     "What is the zero value of map[string]int?",
		Difficulty:  "EASY",
		Options:     []string{"nil", "empty map", "0", "panic"},
		Answer:      1,
		RewardExp:   10,
		Source:      SourceSeed,
	}
	if err := s.Questions.Create(ctx, q); err != nil {
		t.Fatalf("create: %v", err)
	}
	if q.ID == 0 {
		t.Fatal("expected question id")
	}

	q.Difficulty = "MEDIUM"
	q.RewardExp = 20
	if err := s.Questions.Update(ctx, q); err != nil {
		t.Fatalf("update: %v", err)
	}
	got, err := s.Questions.Get(ctx, q.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Difficulty != "MEDIUM" || got.RewardExp != 20 || !slices.Equal(got.Options, q.Options) {
		t.Errorf("got %+v", got)
	}

	other := &Question{TechStackID: "rust", Title: "Borrow", Difficulty: "HARD",
		Options: []string{"a", "b", "c", "d"}, Answer: 2, RewardExp: 30, Source: SourceSeed}
	if err := s.Questions.Create(ctx, other); err != nil {
		t.Fatalf("create other: %v", err)
	}

	list, err := s.Questions.List(ctx, QuestionFilter{TechStackID: "go", Difficulty: "MEDIUM"})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 1 || list[0].ID != q.ID {
		t.Errorf("filtered list = %+v", list)
	}

	titles, err := s.Questions.Titles(ctx, "rust")
	if err != nil {
		t.Fatalf("titles: %v", err)
	}
	if !slices.Equal(titles, []string{"Borrow"}) {
		t.Errorf("titles = %v", titles)
	}

	if err := s.Questions.Delete(ctx, q.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := s.Questions.Get(ctx, q.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("deleted: err = %v, want ErrNotFound", err)
	}
}

func TestSolvedRepo(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	u := createUser(t, s, "alice")
	goChar := createCharacter(t, s, u.ID, "go")
	rustChar := createCharacter(t, s, u.ID, "rust")

	goChar.SolvedProblems = []int64{1, 2}
	rustChar.SolvedProblems = []int64{9}
	for _, c := range []progression.Character{goChar, rustChar} {
		if err := s.Characters.Save(ctx, c); err != nil {
			t.Fatalf("save: %v", err)
		}
	}

	solved, err := s.Solved.IsSolved(ctx, u.ID, 2)
	if err != nil || !solved {
		t.Errorf("IsSolved(2) = %v, %v", solved, err)
	}
	ids, err := s.Solved.IDs(ctx, u.ID, "go")
	if err != nil {
		t.Fatalf("ids: %v", err)
	}
	if len(ids) != 2 || !ids[1] || !ids[2] {
		t.Errorf("go ids = %v", ids)
	}
	n, err := s.Solved.CountByUser(ctx, u.ID)
	if err != nil || n != 3 {
		t.Errorf("CountByUser = %d, %v; want 3", n, err)
	}
}

func TestWrongAnswerRepo(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	u := createUser(t, s, "alice")

	w := WrongAnswer{
		UserID: u.ID, TechStackID: "go", QuestionID: 5, Title: "Q5",
		Difficulty: "EASY", Options: []string{"a", "b", "c", "d"},
		MyAnswer: 2, CorrectAnswer: 1, RewardExp: 10,
	}
	if err := s.WrongAnswers.Upsert(ctx, w); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	w.MyAnswer = 3
	if err := s.WrongAnswers.Upsert(ctx, w); err != nil {
		t.Fatalf("upsert again: %v", err)
	}
	w2 := w
	w2.QuestionID = 6
	w2.TechStackID = "rust"
	if err := s.WrongAnswers.Upsert(ctx, w2); err != nil {
		t.Fatalf("upsert other: %v", err)
	}

	goNotes, err := s.WrongAnswers.List(ctx, u.ID, "go")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(goNotes) != 1 || goNotes[0].MyAnswer != 3 {
		t.Errorf("go notes = %+v", goNotes)
	}

	removed, err := s.WrongAnswers.Remove(ctx, u.ID, 5)
	if err != nil || !removed {
		t.Errorf("remove = %v, %v", removed, err)
	}
	removed, err = s.WrongAnswers.Remove(ctx, u.ID, 5)
	if err != nil || removed {
		t.Errorf("second remove = %v, %v", removed, err)
	}

	n, err := s.WrongAnswers.Clear(ctx, u.ID, "")
	if err != nil || n != 1 {
		t.Errorf("clear = %d, %v; want 1", n, err)
	}
}

func TestSettingsRepo(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	if _, ok, err := s.Settings.Get(ctx, SettingCurrentUser); err != nil || ok {
		t.Fatalf("get unset = %v, %v", ok, err)
	}
	if err := s.Settings.Set(ctx, SettingCurrentUser, "1"); err != nil {
		t.Fatalf("set: %v", err)
	}
	if err := s.Settings.Set(ctx, SettingCurrentUser, "2"); err != nil {
		t.Fatalf("overwrite: %v", err)
	}
	v, ok, err := s.Settings.Get(ctx, SettingCurrentUser)
	if err != nil || !ok || v != "2" {
		t.Errorf("get = %q, %v, %v", v, ok, err)
	}
	if err := s.Settings.Delete(ctx, SettingCurrentUser, SettingToken); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, ok, _ := s.Settings.Get(ctx, SettingCurrentUser); ok {
		t.Error("expected key to be deleted")
	}
}

func TestLLMRequestRepo(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	for i, purpose := range []string{"question-gen", "question-gen"} {
		err := s.LLMRequests.Append(ctx, LLMRequest{
			Provider: "mock", Model: "mock-v1", Purpose: purpose,
			InputTokens: 10 * (i + 1), Success: i == 0,
		})
		if err != nil {
			t.Fatalf("append: %v", err)
		}
	}

	list, err := s.LLMRequests.List(ctx, QueryOpts{Limit: 10})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("len = %d, want 2", len(list))
	}
	if list[0].InputTokens != 20 || list[0].Success {
		t.Errorf("newest = %+v", list[0])
	}

	got, err := s.LLMRequests.Get(ctx, list[1].ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if !got.Success || got.Model != "mock-v1" {
		t.Errorf("get = %+v", got)
	}
}

func TestInTxRollback(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	boom := errors.New("boom")
	err := s.InTx(ctx, func(tx *Repos) error {
		if err := tx.Settings.Set(ctx, "k", "v"); err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("InTx err = %v, want boom", err)
	}
	if _, ok, _ := s.Settings.Get(ctx, "k"); ok {
		t.Error("expected rollback to discard the write")
	}
}

func TestReset(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	u := createUser(t, s, "alice")
	createCharacter(t, s, u.ID, "go")

	if err := s.Reset(ctx); err != nil {
		t.Fatalf("reset: %v", err)
	}
	users, err := s.Users.List(ctx)
	if err != nil {
		t.Fatalf("list users: %v", err)
	}
	if len(users) != 0 {
		t.Errorf("users after reset = %d, want 0", len(users))
	}
}
