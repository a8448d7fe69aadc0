package backend

import (
	"context"
	"errors"
	"fmt"

	"github.com/codepet/codepet/internal/account"
	"github.com/codepet/codepet/internal/api"
	"github.com/codepet/codepet/internal/catalog"
	"github.com/codepet/codepet/internal/progression"
	"github.com/codepet/codepet/internal/ranking"
	"github.com/codepet/codepet/internal/remote"
)

// Remote forwards calls to an API server. The sign-in is remembered in
// the local settings table so it survives restarts.
type Remote struct {
	client   *remote.Client
	accounts *account.Service
	catalog  *catalog.Catalog
}

var _ Backend = (*Remote)(nil)

// NewRemote restores a remembered sign-in, if any. cat supplies the badge
// definitions, which the API does not serve.
func NewRemote(ctx context.Context, client *remote.Client, accounts *account.Service, cat *catalog.Catalog) (*Remote, error) {
	r := &Remote{client: client, accounts: accounts, catalog: cat}
	s, err := accounts.Remote(ctx)
	switch {
	case err == nil:
		client.SetToken(s.Token)
	case !errors.Is(err, account.ErrNotSignedIn):
		return nil, err
	}
	return r, nil
}

func (r *Remote) session(ctx context.Context) (account.RemoteSession, error) {
	s, err := r.accounts.Remote(ctx)
	if err != nil {
		return account.RemoteSession{}, err
	}
	if s.Token == "" {
		return account.RemoteSession{}, account.ErrNotSignedIn
	}
	return s, nil
}

func (r *Remote) remember(ctx context.Context, res api.AuthResult) (api.AuthResult, error) {
	if err := r.accounts.SetRemote(ctx, account.RemoteSession{UserID: res.UserID, Token: res.Token}); err != nil {
		return api.AuthResult{}, fmt.Errorf("remember sign-in: %w", err)
	}
	return res, nil
}

func (r *Remote) Signup(ctx context.Context, name, email, password string) (api.AuthResult, error) {
	res, err := r.client.Signup(ctx, api.SignupRequest{Name: name, Email: email, Password: password})
	if err != nil {
		return api.AuthResult{}, err
	}
	return r.remember(ctx, res)
}

func (r *Remote) Login(ctx context.Context, email, password string) (api.AuthResult, error) {
	res, err := r.client.Login(ctx, api.LoginRequest{Email: email, Password: password})
	if err != nil {
		return api.AuthResult{}, err
	}
	return r.remember(ctx, res)
}

func (r *Remote) Logout(ctx context.Context) error {
	r.client.SetToken("")
	return r.accounts.ClearRemote(ctx)
}

func (r *Remote) Me(ctx context.Context) (api.User, error) {
	p, err := r.Profile(ctx)
	return p.User, err
}

func (r *Remote) TechStacks(ctx context.Context) ([]catalog.TechStack, error) {
	return r.client.TechStacks(ctx)
}

func (r *Remote) Animals(ctx context.Context) ([]api.Animal, error) {
	return r.client.Animals(ctx)
}

func (r *Remote) Badges(context.Context) ([]progression.Badge, error) {
	return r.catalog.BadgesByTier(), nil
}

func (r *Remote) Characters(ctx context.Context) ([]api.Character, error) {
	s, err := r.session(ctx)
	if err != nil {
		return nil, err
	}
	return r.client.Characters(ctx, s.UserID)
}

func (r *Remote) AttachCharacter(ctx context.Context, stackID, animal string) (api.Character, error) {
	s, err := r.session(ctx)
	if err != nil {
		return api.Character{}, err
	}
	return r.client.AttachCharacter(ctx, api.SaveSkillRequest{UserID: s.UserID, SkillID: stackID, CharacterID: animal})
}

func (r *Remote) LogStudy(ctx context.Context, characterID string, minutes int, notes string) (api.ProgressResult, error) {
	return r.client.RecordStudy(ctx, characterID, api.StudyRecordRequest{StudyTime: minutes, Notes: notes})
}

func (r *Remote) Questions(ctx context.Context, stackID string, f QuestionFilter) (api.QuestionList, error) {
	q := remote.QuestionQuery{Difficulty: f.Difficulty, Solved: f.Solved}
	if s, err := r.session(ctx); err == nil {
		q.UserID = s.UserID
	}
	return r.client.Questions(ctx, stackID, q)
}

func (r *Remote) Question(ctx context.Context, id int64) (api.Question, error) {
	return r.client.Question(ctx, id)
}

func (r *Remote) Submit(ctx context.Context, id int64, answer int) (api.SubmitResult, error) {
	s, err := r.session(ctx)
	if err != nil {
		return api.SubmitResult{}, err
	}
	return r.client.Submit(ctx, id, api.SubmitRequest{UserID: s.UserID, Answer: answer})
}

func (r *Remote) WrongAnswers(ctx context.Context, stackID string) ([]api.WrongAnswer, error) {
	s, err := r.session(ctx)
	if err != nil {
		return nil, err
	}
	return r.client.WrongAnswers(ctx, s.UserID, stackID)
}

func (r *Remote) RemoveWrongAnswer(ctx context.Context, questionID int64) error {
	s, err := r.session(ctx)
	if err != nil {
		return err
	}
	return r.client.RemoveWrongAnswer(ctx, s.UserID, questionID)
}

func (r *Remote) ClearWrongAnswers(ctx context.Context, stackID string) (int64, error) {
	s, err := r.session(ctx)
	if err != nil {
		return 0, err
	}
	return r.client.ClearWrongAnswers(ctx, s.UserID, stackID)
}

func (r *Remote) Ranking(ctx context.Context) (api.RankingResult, error) {
	var userID int64
	if s, err := r.session(ctx); err == nil {
		userID = s.UserID
	}
	return r.client.Ranking(ctx, userID)
}

func (r *Remote) Stats(ctx context.Context) (ranking.Stats, error) {
	s, err := r.session(ctx)
	if err != nil {
		return ranking.Stats{}, err
	}
	return r.client.Stats(ctx, s.UserID)
}

func (r *Remote) Profile(ctx context.Context) (api.UserProfile, error) {
	s, err := r.session(ctx)
	if err != nil {
		return api.UserProfile{}, err
	}
	return r.client.Profile(ctx, s.UserID)
}
