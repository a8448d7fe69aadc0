package ranking

import (
	"context"

	"github.com/codepet/codepet/internal/progression"
	"github.com/codepet/codepet/internal/store"
)

// Service loads ranking inputs from the store.
type Service struct {
	store *store.Store
}

// NewService creates a Service.
func NewService(st *store.Store) *Service {
	return &Service{store: st}
}

// Board returns the full leaderboard.
func (s *Service) Board(ctx context.Context) ([]Entry, error) {
	users, err := s.store.Users.List(ctx)
	if err != nil {
		return nil, err
	}
	chars, err := s.store.Characters.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	return Build(users, chars), nil
}

// Stats returns one user's statistics.
func (s *Service) Stats(ctx context.Context, userID int64) (Stats, error) {
	u, chars, solved, err := s.load(ctx, userID)
	if err != nil {
		return Stats{}, err
	}
	return UserStats(*u, chars, solved), nil
}

// Profile returns one user's profile.
func (s *Service) Profile(ctx context.Context, userID int64) (Profile, error) {
	u, chars, solved, err := s.load(ctx, userID)
	if err != nil {
		return Profile{}, err
	}
	board, err := s.Board(ctx)
	if err != nil {
		return Profile{}, err
	}
	return BuildProfile(*u, chars, solved, board), nil
}

func (s *Service) load(ctx context.Context, userID int64) (*store.User, []progression.Character, int, error) {
	u, err := s.store.Users.ByID(ctx, userID)
	if err != nil {
		return nil, nil, 0, err
	}
	chars, err := s.store.Characters.ListByUser(ctx, userID)
	if err != nil {
		return nil, nil, 0, err
	}
	solved, err := s.store.Solved.CountByUser(ctx, userID)
	if err != nil {
		return nil, nil, 0, err
	}
	return u, chars, solved, nil
}
