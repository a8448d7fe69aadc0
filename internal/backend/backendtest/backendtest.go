// Package backendtest builds an in-memory local backend for tests of
// code that sits on top of backend.Backend.
package backendtest

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/codepet/codepet/internal/account"
	"github.com/codepet/codepet/internal/backend"
	"github.com/codepet/codepet/internal/catalog"
	"github.com/codepet/codepet/internal/quiz"
	"github.com/codepet/codepet/internal/ranking"
	"github.com/codepet/codepet/internal/store"
	"github.com/codepet/codepet/internal/tracker"
)

// Now is the fixed clock every backend built here runs on.
var Now = time.Date(2025, 5, 1, 12, 0, 0, 0, time.UTC)

// NewLocal returns a local backend over a fresh in-memory store with the
// seed questions loaded. Nobody is signed in.
func NewLocal(t testing.TB) *backend.Local {
	t.Helper()
	st, err := store.Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString()))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	tr := tracker.New(st, catalog.Default(),
		tracker.WithClock(func() time.Time { return Now }),
		tracker.WithLocation(time.UTC))
	qz := quiz.NewService(st, tr)
	_, err = qz.Seed(context.Background())
	require.NoError(t, err)

	return backend.NewLocal(st, tr, qz, ranking.NewService(st),
		account.NewService(st, account.WithHashCost(bcrypt.MinCost)))
}

// SignedIn is NewLocal with a user "ana" signed in.
func SignedIn(t testing.TB) *backend.Local {
	t.Helper()
	b := NewLocal(t)
	_, err := b.Signup(context.Background(), "ana", "ana@example.com", "password1")
	require.NoError(t, err)
	return b
}

// WithPet is SignedIn with a cat attached to the go stack.
func WithPet(t testing.TB) (*backend.Local, string) {
	t.Helper()
	b := SignedIn(t)
	c, err := b.AttachCharacter(context.Background(), "go", "cat")
	require.NoError(t, err)
	return b, c.ID
}
