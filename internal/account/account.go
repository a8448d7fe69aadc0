// Package account registers users, checks passwords and remembers who is
// signed in on this machine.
package account

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strconv"
	"strings"

	"github.com/codepet/codepet/internal/logger"
	"github.com/codepet/codepet/internal/store"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrEmailTaken         = errors.New("email is already registered")
	ErrInvalidCredentials = errors.New("email or password is incorrect")
	ErrNotSignedIn        = errors.New("not signed in")
	ErrInvalidInput       = errors.New("invalid account details")
)

// MinPasswordLength is the shortest accepted password.
const MinPasswordLength = 6

// Service manages accounts in the local store.
type Service struct {
	store *store.Store
	cost  int
	log   zerolog.Logger
}

// Option configures a Service.
type Option func(*Service)

// WithHashCost sets the bcrypt cost. Tests use bcrypt.MinCost.
func WithHashCost(cost int) Option {
	return func(s *Service) { s.cost = cost }
}

// NewService creates a Service.
func NewService(st *store.Store, opts ...Option) *Service {
	s := &Service{store: st, cost: bcrypt.DefaultCost, log: logger.Component("account")}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Signup registers a user and issues a token.
func (s *Service) Signup(ctx context.Context, name, email, password string) (*store.User, error) {
	name = strings.TrimSpace(name)
	email = strings.ToLower(strings.TrimSpace(email))
	if name == "" {
		return nil, fmt.Errorf("%w: name is empty", ErrInvalidInput)
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, fmt.Errorf("%w: email %q", ErrInvalidInput, email)
	}
	if len(password) < MinPasswordLength {
		return nil, fmt.Errorf("%w: password needs at least %d characters", ErrInvalidInput, MinPasswordLength)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	u := &store.User{Name: name, Email: email, PasswordHash: string(hash), Token: uuid.NewString()}
	if err := s.store.Users.Create(ctx, u); err != nil {
		if errors.Is(err, store.ErrConflict) {
			return nil, ErrEmailTaken
		}
		return nil, err
	}
	s.log.Info().Int64("user", u.ID).Msg("user signed up")
	return u, nil
}

// Login checks the password and rotates the user's token.
func (s *Service) Login(ctx context.Context, email, password string) (*store.User, error) {
	u, err := s.store.Users.ByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}
	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) != nil {
		return nil, ErrInvalidCredentials
	}
	u.Token = uuid.NewString()
	if err := s.store.Users.SetToken(ctx, u.ID, u.Token); err != nil {
		return nil, err
	}
	return u, nil
}

// Authenticate resolves a bearer token.
func (s *Service) Authenticate(ctx context.Context, token string) (*store.User, error) {
	u, err := s.store.Users.ByToken(ctx, token)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrNotSignedIn
	}
	return u, err
}

// SetCurrent remembers u as the signed-in user on this machine.
func (s *Service) SetCurrent(ctx context.Context, u *store.User) error {
	return s.store.InTx(ctx, func(tx *store.Repos) error {
		if err := tx.Settings.Set(ctx, store.SettingCurrentUser, strconv.FormatInt(u.ID, 10)); err != nil {
			return err
		}
		return tx.Settings.Set(ctx, store.SettingToken, u.Token)
	})
}

// Current returns the signed-in user.
func (s *Service) Current(ctx context.Context) (*store.User, error) {
	v, ok, err := s.store.Settings.Get(ctx, store.SettingCurrentUser)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrNotSignedIn
	}
	id, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("stored user id %q: %w", v, err)
	}
	u, err := s.store.Users.ByID(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrNotSignedIn
	}
	return u, err
}

// Logout forgets the signed-in user and revokes the token.
func (s *Service) Logout(ctx context.Context) error {
	u, err := s.Current(ctx)
	if err != nil && !errors.Is(err, ErrNotSignedIn) {
		return err
	}
	return s.store.InTx(ctx, func(tx *store.Repos) error {
		if u != nil {
			if err := tx.Users.SetToken(ctx, u.ID, ""); err != nil {
				return err
			}
		}
		return tx.Settings.Delete(ctx, store.SettingCurrentUser, store.SettingToken)
	})
}

// RemoteSession is a sign-in against a remote server.
type RemoteSession struct {
	UserID int64
	Token  string
}

// SetRemote remembers a remote sign-in.
func (s *Service) SetRemote(ctx context.Context, rs RemoteSession) error {
	return s.store.InTx(ctx, func(tx *store.Repos) error {
		if err := tx.Settings.Set(ctx, store.SettingRemoteUser, strconv.FormatInt(rs.UserID, 10)); err != nil {
			return err
		}
		return tx.Settings.Set(ctx, store.SettingRemoteToken, rs.Token)
	})
}

// Remote returns the remembered remote sign-in.
func (s *Service) Remote(ctx context.Context) (RemoteSession, error) {
	v, ok, err := s.store.Settings.Get(ctx, store.SettingRemoteUser)
	if err != nil {
		return RemoteSession{}, err
	}
	if !ok {
		return RemoteSession{}, ErrNotSignedIn
	}
	id, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return RemoteSession{}, fmt.Errorf("stored remote user id %q: %w", v, err)
	}
	token, _, err := s.store.Settings.Get(ctx, store.SettingRemoteToken)
	if err != nil {
		return RemoteSession{}, err
	}
	return RemoteSession{UserID: id, Token: token}, nil
}

// ClearRemote forgets the remote sign-in. The local one is kept.
func (s *Service) ClearRemote(ctx context.Context) error {
	return s.store.Settings.Delete(ctx, store.SettingRemoteUser, store.SettingRemoteToken)
}
