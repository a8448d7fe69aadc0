package cmd

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/codepet/codepet/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// isolate points config, data and the database at a temp dir.
func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(dir, "config"))
	t.Setenv("XDG_DATA_HOME", filepath.Join(dir, "data"))
	for _, k := range []string{"GEMINI_API_KEY", "OPENAI_API_KEY", "ANTHROPIC_API_KEY", "OPENROUTER_API_KEY"} {
		t.Setenv(k, "")
	}
	t.Cleanup(func() { rootCmd.PersistentFlags().Set("remote", "") })
	return filepath.Join(dir, "codepet.db")
}

func run(t *testing.T, db string, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetIn(strings.NewReader(""))
	rootCmd.SetArgs(append(args, "--db", db))
	err := rootCmd.ExecuteContext(context.Background())
	return out.String(), err
}

func mustRun(t *testing.T, db string, args ...string) string {
	t.Helper()
	out, err := run(t, db, args...)
	require.NoError(t, err, out)
	return out
}

func signup(t *testing.T, db string) {
	t.Helper()
	mustRun(t, db, "signup", "--name", "ana", "--email", "ana@example.com", "--password", "password1")
}

func questionID(t *testing.T, db, title string) int64 {
	t.Helper()
	st, err := store.Open(db)
	require.NoError(t, err)
	defer st.Close()
	qs, err := st.Questions.List(context.Background(), store.QuestionFilter{TechStackID: "go"})
	require.NoError(t, err)
	for _, q := range qs {
		if q.Title == title {
			return q.ID
		}
	}
	t.Fatalf("question %q not seeded", title)
	return 0
}

func TestVersion(t *testing.T) {
	db := isolate(t)
	assert.Equal(t, "codepet (devel)\n", mustRun(t, db, "version"))
}

func TestWhoamiSignedOut(t *testing.T) {
	db := isolate(t)
	assert.Contains(t, mustRun(t, db, "whoami"), "Not signed in")
}

func TestStudyFlow(t *testing.T) {
	db := isolate(t)
	signup(t, db)
	assert.Contains(t, mustRun(t, db, "whoami"), "ana <ana@example.com>")

	out := mustRun(t, db, "character", "attach", "--stack", "go", "--animal", "cat")
	assert.Contains(t, out, "hatched for Go")

	out = mustRun(t, db, "study", "log", "go", "--minutes", "60", "--notes", "channels")
	assert.Contains(t, out, "+600 EXP")
	assert.Contains(t, out, "LEVEL UP! Lv 1 → Lv 4")

	out = mustRun(t, db, "character", "show", "go")
	assert.Contains(t, out, "Level:       4")
	assert.Contains(t, out, "Experience:  125 / 337")

	out = mustRun(t, db, "character", "list")
	assert.Contains(t, out, "go")
	assert.Contains(t, out, "125/337")

	out = mustRun(t, db, "stats")
	assert.Contains(t, out, "Lifetime EXP:    600")
	assert.Contains(t, out, "Study time:      60 min")

	out = mustRun(t, db, "ranking")
	assert.Contains(t, out, "ana")
	assert.Contains(t, out, "▸")
}

func TestLapsedStreakResetsOnStartup(t *testing.T) {
	db := isolate(t)
	signup(t, db)
	mustRun(t, db, "character", "attach", "--stack", "go", "--animal", "cat")

	st, err := store.Open(db)
	require.NoError(t, err)
	all, err := st.Characters.ListAll(context.Background())
	require.NoError(t, err)
	require.Len(t, all, 1)
	c := all[0]
	last := time.Now().AddDate(0, 0, -10)
	c.LastStudyDate = &last
	c.Streak, c.LongestStreak = 5, 5
	require.NoError(t, st.Characters.Save(context.Background(), c))
	require.NoError(t, st.Close())

	out := mustRun(t, db, "character", "show", "go")
	assert.Contains(t, out, "Streak:      0 day(s), longest 5")
	assert.Contains(t, mustRun(t, db, "stats"), "Best streak:     0 day(s)")
}

func TestBadgesListsTypes(t *testing.T) {
	db := isolate(t)
	signup(t, db)
	out := mustRun(t, db, "badges")
	assert.Contains(t, out, "0 / ")
	assert.Contains(t, out, "Study Time")
	assert.Contains(t, out, "Bronze Learner")
}

func TestStudyRejectsUnknownPet(t *testing.T) {
	db := isolate(t)
	signup(t, db)
	_, err := run(t, db, "study", "log", "rust", "--minutes", "10")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no character")
}

func TestAttachTwiceFails(t *testing.T) {
	db := isolate(t)
	signup(t, db)
	mustRun(t, db, "character", "attach", "--stack", "go", "--animal", "cat")
	_, err := run(t, db, "character", "attach", "--stack", "go", "--animal", "dog")
	require.Error(t, err)
}

func TestQuizAndNotebook(t *testing.T) {
	db := isolate(t)
	signup(t, db)
	mustRun(t, db, "character", "attach", "--stack", "go", "--animal", "cat")

	out := mustRun(t, db, "quiz", "list", "go")
	assert.Contains(t, out, "Zero value of a map")

	id := strconv.FormatInt(questionID(t, db, "Zero value of a map"), 10)
	assert.Contains(t, mustRun(t, db, "quiz", "show", id), "1) ")

	out = mustRun(t, db, "quiz", "answer", id, "2")
	assert.Contains(t, out, "The answer was 1")

	out = mustRun(t, db, "notes", "list")
	assert.Contains(t, out, "Zero value of a map")
	assert.Contains(t, out, "1 entry")

	out = mustRun(t, db, "quiz", "answer", id, "1")
	assert.Contains(t, out, "Correct!")
	assert.Contains(t, out, "+10 EXP")

	assert.Contains(t, mustRun(t, db, "notes", "list"), "Your notebook is empty.")

	out = mustRun(t, db, "quiz", "answer", id, "1")
	assert.Contains(t, out, "Already solved")
}

func TestNotesClear(t *testing.T) {
	db := isolate(t)
	signup(t, db)
	mustRun(t, db, "character", "attach", "--stack", "go", "--animal", "cat")
	id := strconv.FormatInt(questionID(t, db, "Deferred call order"), 10)
	mustRun(t, db, "quiz", "answer", id, "1")

	assert.Contains(t, mustRun(t, db, "notes", "clear", "go"), "Removed 1 entry.")
	assert.Contains(t, mustRun(t, db, "notes", "clear"), "Removed 0 entries.")
}

func TestLocalOnlyCommandsRejectRemote(t *testing.T) {
	db := isolate(t)
	_, err := run(t, db, "reset", "--yes", "--remote", "http://127.0.0.1:1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "local database only")
}

func TestQuizAddAndExport(t *testing.T) {
	db := isolate(t)
	out := mustRun(t, db, "quiz", "add",
		"--stack", "go", "--title", "Zero value of a slice", "--content", "What is it?",
		"--difficulty", "medium",
		"--option", "nil", "--option", "[]", "--option", "0", "--option", "panic",
		"--answer", "1")
	assert.Contains(t, out, "MEDIUM, 20 EXP")

	path := filepath.Join(t.TempDir(), "questions.xlsx")
	out = mustRun(t, db, "export", path, "--questions", "--stack", "go")
	assert.Contains(t, out, "Exported")
	_, err := os.Stat(path)
	require.NoError(t, err)
}

func TestQuizGenerateNeedsProvider(t *testing.T) {
	db := isolate(t)
	_, err := run(t, db, "quiz", "generate", "--stack", "go")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no LLM provider configured")
}

func TestLLMListEmpty(t *testing.T) {
	db := isolate(t)
	assert.Contains(t, mustRun(t, db, "llm", "list"), "No LLM requests recorded.")
}

func TestResetDeletesUsers(t *testing.T) {
	db := isolate(t)
	signup(t, db)
	assert.Contains(t, mustRun(t, db, "reset", "--yes"), "All learner data deleted.")
	assert.Contains(t, mustRun(t, db, "whoami"), "Not signed in")
}
