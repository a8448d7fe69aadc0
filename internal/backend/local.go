package backend

import (
	"context"
	"errors"
	"fmt"

	"github.com/codepet/codepet/internal/account"
	"github.com/codepet/codepet/internal/api"
	"github.com/codepet/codepet/internal/catalog"
	"github.com/codepet/codepet/internal/progression"
	"github.com/codepet/codepet/internal/quiz"
	"github.com/codepet/codepet/internal/ranking"
	"github.com/codepet/codepet/internal/store"
	"github.com/codepet/codepet/internal/tracker"
)

// ErrNotOwner is returned when a character belongs to someone else.
var ErrNotOwner = errors.New("character belongs to another user")

// Local runs every call in-process.
type Local struct {
	store    *store.Store
	tracker  *tracker.Tracker
	quiz     *quiz.Service
	ranking  *ranking.Service
	accounts *account.Service
	catalog  *catalog.Catalog
}

var _ Backend = (*Local)(nil)

func NewLocal(st *store.Store, tr *tracker.Tracker, qz *quiz.Service, rk *ranking.Service, acc *account.Service) *Local {
	return &Local{store: st, tracker: tr, quiz: qz, ranking: rk, accounts: acc, catalog: tr.Catalog()}
}

func (l *Local) user(ctx context.Context) (*store.User, error) {
	return l.accounts.Current(ctx)
}

func (l *Local) Signup(ctx context.Context, name, email, password string) (api.AuthResult, error) {
	u, err := l.accounts.Signup(ctx, name, email, password)
	if err != nil {
		return api.AuthResult{}, err
	}
	return l.signIn(ctx, u)
}

func (l *Local) Login(ctx context.Context, email, password string) (api.AuthResult, error) {
	u, err := l.accounts.Login(ctx, email, password)
	if err != nil {
		return api.AuthResult{}, err
	}
	return l.signIn(ctx, u)
}

func (l *Local) signIn(ctx context.Context, u *store.User) (api.AuthResult, error) {
	if err := l.accounts.SetCurrent(ctx, u); err != nil {
		return api.AuthResult{}, fmt.Errorf("remember sign-in: %w", err)
	}
	return api.AuthResult{UserID: u.ID, Name: u.Name, Email: u.Email, Token: u.Token}, nil
}

func (l *Local) Logout(ctx context.Context) error {
	return l.accounts.Logout(ctx)
}

func (l *Local) Me(ctx context.Context) (api.User, error) {
	u, err := l.user(ctx)
	if err != nil {
		return api.User{}, err
	}
	return api.FromUser(u), nil
}

func (l *Local) TechStacks(context.Context) ([]catalog.TechStack, error) {
	return l.catalog.TechStacks, nil
}

func (l *Local) Animals(context.Context) ([]api.Animal, error) {
	out := make([]api.Animal, 0, len(l.catalog.Animals))
	for _, a := range l.catalog.Animals {
		out = append(out, api.Animal{ID: a.ID, Name: a.Name, Emoji: a.Emoji(1)})
	}
	return out, nil
}

func (l *Local) Badges(context.Context) ([]progression.Badge, error) {
	return l.catalog.BadgesByTier(), nil
}

func (l *Local) Characters(ctx context.Context) ([]api.Character, error) {
	u, err := l.user(ctx)
	if err != nil {
		return nil, err
	}
	chars, err := l.tracker.Characters(ctx, u.ID)
	if err != nil {
		return nil, err
	}
	return l.render(chars), nil
}

func (l *Local) render(chars []progression.Character) []api.Character {
	now := l.tracker.Now()
	out := make([]api.Character, 0, len(chars))
	for _, c := range chars {
		out = append(out, api.FromCharacter(l.catalog, c, now))
	}
	return out
}

func (l *Local) AttachCharacter(ctx context.Context, stackID, animal string) (api.Character, error) {
	u, err := l.user(ctx)
	if err != nil {
		return api.Character{}, err
	}
	c, err := l.tracker.AttachCharacter(ctx, u.ID, stackID, animal)
	if err != nil {
		return api.Character{}, err
	}
	return api.FromCharacter(l.catalog, c, l.tracker.Now()), nil
}

func (l *Local) LogStudy(ctx context.Context, characterID string, minutes int, notes string) (api.ProgressResult, error) {
	u, err := l.user(ctx)
	if err != nil {
		return api.ProgressResult{}, err
	}
	c, err := l.tracker.Character(ctx, characterID)
	if err != nil {
		return api.ProgressResult{}, err
	}
	if c.UserID != u.ID {
		return api.ProgressResult{}, ErrNotOwner
	}
	p, err := l.tracker.LogStudy(ctx, characterID, minutes, notes)
	if err != nil {
		return api.ProgressResult{}, err
	}
	return api.FromProgress(l.catalog, p, l.tracker.Now()), nil
}

func (l *Local) Questions(ctx context.Context, stackID string, f QuestionFilter) (api.QuestionList, error) {
	var userID int64
	if u, err := l.user(ctx); err == nil {
		userID = u.ID
	} else if !errors.Is(err, account.ErrNotSignedIn) {
		return api.QuestionList{}, err
	}
	diff, err := quiz.ParseDifficulty(f.Difficulty)
	if err != nil {
		return api.QuestionList{}, fmt.Errorf("%w: %v", progression.ErrInvalidArgument, err)
	}
	solved, err := quiz.ParseSolvedFilter(f.Solved)
	if err != nil {
		return api.QuestionList{}, fmt.Errorf("%w: %v", progression.ErrInvalidArgument, err)
	}
	listing, err := l.quiz.List(ctx, userID, stackID, quiz.Filter{Difficulty: diff, Solved: solved})
	if err != nil {
		return api.QuestionList{}, err
	}
	return api.FromListing(listing), nil
}

func (l *Local) Question(ctx context.Context, id int64) (api.Question, error) {
	q, err := l.quiz.Get(ctx, id)
	if err != nil {
		return api.Question{}, err
	}
	return api.FromQuestion(q), nil
}

func (l *Local) Submit(ctx context.Context, id int64, answer int) (api.SubmitResult, error) {
	u, err := l.user(ctx)
	if err != nil {
		return api.SubmitResult{}, err
	}
	res, err := l.quiz.Submit(ctx, u.ID, id, answer)
	if err != nil {
		return api.SubmitResult{}, err
	}
	return api.FromResult(l.catalog, res, l.tracker.Now()), nil
}

func (l *Local) WrongAnswers(ctx context.Context, stackID string) ([]api.WrongAnswer, error) {
	u, err := l.user(ctx)
	if err != nil {
		return nil, err
	}
	list, err := l.quiz.WrongAnswers(ctx, u.ID, stackID)
	if err != nil {
		return nil, err
	}
	out := make([]api.WrongAnswer, 0, len(list))
	for _, w := range list {
		out = append(out, api.FromWrongAnswer(w))
	}
	return out, nil
}

func (l *Local) RemoveWrongAnswer(ctx context.Context, questionID int64) error {
	u, err := l.user(ctx)
	if err != nil {
		return err
	}
	removed, err := l.quiz.RemoveWrongAnswer(ctx, u.ID, questionID)
	if err != nil {
		return err
	}
	if !removed {
		return fmt.Errorf("question %d: %w", questionID, store.ErrNotFound)
	}
	return nil
}

func (l *Local) ClearWrongAnswers(ctx context.Context, stackID string) (int64, error) {
	u, err := l.user(ctx)
	if err != nil {
		return 0, err
	}
	return l.quiz.ClearWrongAnswers(ctx, u.ID, stackID)
}

func (l *Local) Ranking(ctx context.Context) (api.RankingResult, error) {
	board, err := l.ranking.Board(ctx)
	if err != nil {
		return api.RankingResult{}, err
	}
	res := api.RankingResult{Entries: board}
	if u, err := l.user(ctx); err == nil {
		if me, ok := ranking.Position(board, u.ID); ok {
			res.Me = &me
		}
	}
	return res, nil
}

func (l *Local) Stats(ctx context.Context) (ranking.Stats, error) {
	u, err := l.user(ctx)
	if err != nil {
		return ranking.Stats{}, err
	}
	return l.ranking.Stats(ctx, u.ID)
}

func (l *Local) Profile(ctx context.Context) (api.UserProfile, error) {
	u, err := l.user(ctx)
	if err != nil {
		return api.UserProfile{}, err
	}
	prof, err := l.ranking.Profile(ctx, u.ID)
	if err != nil {
		return api.UserProfile{}, err
	}
	chars, err := l.tracker.Characters(ctx, u.ID)
	if err != nil {
		return api.UserProfile{}, err
	}
	return api.UserProfile{User: api.FromUser(u), Profile: prof, Characters: l.render(chars)}, nil
}
