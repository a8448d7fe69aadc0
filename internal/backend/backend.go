// Package backend is what the CLI and the TUI talk to. Local runs the
// services against the SQLite store; Remote calls a codepet API server.
// Both return the api view types so callers render them the same way.
package backend

import (
	"context"

	"github.com/codepet/codepet/internal/api"
	"github.com/codepet/codepet/internal/catalog"
	"github.com/codepet/codepet/internal/progression"
	"github.com/codepet/codepet/internal/ranking"
)

// QuestionFilter narrows Questions. Empty fields match everything.
type QuestionFilter struct {
	Difficulty string
	Solved     string
}

// Backend acts on behalf of the signed-in user. Calls that need a user
// return account.ErrNotSignedIn when nobody is signed in.
type Backend interface {
	Signup(ctx context.Context, name, email, password string) (api.AuthResult, error)
	Login(ctx context.Context, email, password string) (api.AuthResult, error)
	Logout(ctx context.Context) error
	Me(ctx context.Context) (api.User, error)

	TechStacks(ctx context.Context) ([]catalog.TechStack, error)
	Animals(ctx context.Context) ([]api.Animal, error)
	Badges(ctx context.Context) ([]progression.Badge, error)

	Characters(ctx context.Context) ([]api.Character, error)
	AttachCharacter(ctx context.Context, stackID, animal string) (api.Character, error)
	LogStudy(ctx context.Context, characterID string, minutes int, notes string) (api.ProgressResult, error)

	Questions(ctx context.Context, stackID string, f QuestionFilter) (api.QuestionList, error)
	Question(ctx context.Context, id int64) (api.Question, error)
	Submit(ctx context.Context, id int64, answer int) (api.SubmitResult, error)

	WrongAnswers(ctx context.Context, stackID string) ([]api.WrongAnswer, error)
	RemoveWrongAnswer(ctx context.Context, questionID int64) error
	ClearWrongAnswers(ctx context.Context, stackID string) (int64, error)

	Ranking(ctx context.Context) (api.RankingResult, error)
	Stats(ctx context.Context) (ranking.Stats, error)
	Profile(ctx context.Context) (api.UserProfile, error)
}
