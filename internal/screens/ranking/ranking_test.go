package ranking

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/codepet/codepet/internal/api"
	"github.com/codepet/codepet/internal/backend/backendtest"
	"github.com/codepet/codepet/internal/ranking"
)

func TestShowsBoard(t *testing.T) {
	b, id := backendtest.WithPet(t)
	_, err := b.LogStudy(context.Background(), id, 30, "")
	require.NoError(t, err)

	s := New(b)
	s.Update(s.Init()())
	require.NoError(t, s.err)
	require.NotNil(t, s.board.Me)

	view := s.View(100, 30)
	require.True(t, strings.Contains(view, "ana"))
	require.True(t, strings.Contains(view, "🥇"))
}

func TestOwnRowBelowCutoff(t *testing.T) {
	var r api.RankingResult
	for i := 1; i <= maxRows+2; i++ {
		r.Entries = append(r.Entries, ranking.Entry{Rank: i, UserID: int64(i), Name: "user"})
	}
	me := r.Entries[maxRows+1]
	me.Name = "me"
	r.Me = &me

	out := renderBoard(r)
	require.Contains(t, out, "⋮")
	require.Contains(t, out, "me")
}

func TestTruncate(t *testing.T) {
	require.Equal(t, "short", truncate("short", 14))
	require.Equal(t, "abcd…", truncate("abcdefgh", 5))
}
