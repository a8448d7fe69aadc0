package cmd

import (
	"fmt"
	"net/http"
	"time"

	"github.com/codepet/codepet/internal/account"
	"github.com/codepet/codepet/internal/backend"
	"github.com/codepet/codepet/internal/catalog"
	"github.com/codepet/codepet/internal/logger"
	"github.com/codepet/codepet/internal/quiz"
	"github.com/codepet/codepet/internal/ranking"
	"github.com/codepet/codepet/internal/remote"
	"github.com/codepet/codepet/internal/store"
	"github.com/codepet/codepet/internal/tracker"
	"github.com/spf13/cobra"
)

// env holds the services one command invocation works with.
type env struct {
	store    *store.Store
	catalog  *catalog.Catalog
	tracker  *tracker.Tracker
	quiz     *quiz.Service
	ranking  *ranking.Service
	accounts *account.Service
	loc      *time.Location
}

// openEnv opens the local store and builds the services on top of it.
// Built-in questions are seeded into stacks that have none, and streaks
// that lapsed since the last run are reset.
func openEnv(cmd *cobra.Command) (*env, error) {
	cat, err := loadCatalog()
	if err != nil {
		return nil, err
	}
	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}

	dbPath, err := resolveDBPath(cmd)
	if err != nil {
		return nil, fmt.Errorf("resolve DB path: %w", err)
	}
	st, err := store.Open(dbPath)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}

	tr := tracker.New(st, cat, tracker.WithLocation(loc), tracker.WithLogger(logger.Component("tracker")))
	e := &env{
		store:    st,
		catalog:  cat,
		tracker:  tr,
		quiz:     quiz.NewService(st, tr),
		ranking:  ranking.NewService(st),
		accounts: account.NewService(st),
		loc:      loc,
	}
	if n, err := e.quiz.Seed(cmd.Context()); err != nil {
		st.Close()
		return nil, fmt.Errorf("seed questions: %w", err)
	} else if n > 0 {
		logger.Info().Int("count", n).Msg("seeded starter questions")
	}
	if _, err := tr.DecayStreaks(cmd.Context()); err != nil {
		st.Close()
		return nil, err
	}
	return e, nil
}

func (e *env) Close() error {
	return e.store.Close()
}

// backend returns the Remote backend when a server URL is configured and
// the Local one otherwise.
func (e *env) backend(cmd *cobra.Command) (backend.Backend, error) {
	url := remoteURL(cmd)
	if url == "" {
		return backend.NewLocal(e.store, e.tracker, e.quiz, e.ranking, e.accounts), nil
	}
	client, err := remote.New(url,
		remote.WithRateLimit(cfg.Remote.RateLimit, cfg.Remote.Burst),
		remote.WithHTTPClient(&http.Client{Timeout: cfg.Remote.Timeout}),
	)
	if err != nil {
		return nil, err
	}
	return backend.NewRemote(cmd.Context(), client, e.accounts, e.catalog)
}

// requireLocal rejects commands that only make sense on the local store.
func requireLocal(cmd *cobra.Command) error {
	if remoteURL(cmd) != "" {
		return fmt.Errorf("%s works on the local database only; drop --remote", cmd.CommandPath())
	}
	return nil
}

func loadCatalog() (*catalog.Catalog, error) {
	if cfg.Catalog.Path == "" {
		return catalog.Default(), nil
	}
	cat, err := catalog.Load(cfg.Catalog.Path)
	if err != nil {
		return nil, fmt.Errorf("load catalog: %w", err)
	}
	return cat, nil
}

// withBackend opens the environment, resolves the backend and runs fn.
func withBackend(cmd *cobra.Command, fn func(b backend.Backend) error) error {
	e, err := openEnv(cmd)
	if err != nil {
		return err
	}
	defer e.Close()
	b, err := e.backend(cmd)
	if err != nil {
		return err
	}
	return fn(b)
}
