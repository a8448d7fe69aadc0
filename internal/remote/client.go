// Package remote is a typed client for the HTTP API served by
// internal/server and by the hosted backend.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/codepet/codepet/internal/api"
	"github.com/codepet/codepet/internal/catalog"
	"github.com/codepet/codepet/internal/logger"
	"github.com/codepet/codepet/internal/ranking"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
)

// APIError is a non-success response.
type APIError struct {
	Status  int
	Code    string
	Message string
}

func (e *APIError) Error() string {
	if e.Code == "" {
		return fmt.Sprintf("remote: HTTP %d: %s", e.Status, e.Message)
	}
	return fmt.Sprintf("remote: %s: %s", e.Code, e.Message)
}

// HasCode reports whether err is an APIError carrying code.
func HasCode(err error, code string) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Code == code
}

// Client talks to one API base URL.
type Client struct {
	base    *url.URL
	http    *http.Client
	token   string
	limiter *rate.Limiter
	log     zerolog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithToken sets the bearer token sent with every request.
func WithToken(token string) Option {
	return func(c *Client) { c.token = token }
}

// WithRateLimit throttles outgoing requests.
func WithRateLimit(perSecond float64, burst int) Option {
	return func(c *Client) { c.limiter = rate.NewLimiter(rate.Limit(perSecond), burst) }
}

// New creates a Client for baseURL.
func New(baseURL string, opts ...Option) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("remote: parse base url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("remote: base url %q must be http or https", baseURL)
	}
	c := &Client{
		base:    u,
		http:    &http.Client{Timeout: 15 * time.Second},
		limiter: rate.NewLimiter(rate.Limit(5), 10),
		log:     logger.Component("remote"),
	}
	for _, o := range opts {
		o(c)
	}
	return c, nil
}

// SetToken replaces the bearer token, e.g. after Login.
func (c *Client) SetToken(token string) {
	c.token = token
}

// BaseURL returns the API root.
func (c *Client) BaseURL() string {
	return c.base.String()
}

func call[T any](ctx context.Context, c *Client, method, path string, query url.Values, body any) (T, error) {
	var zero T
	if err := c.limiter.Wait(ctx); err != nil {
		return zero, err
	}

	u := *c.base
	u.Path = c.base.Path + path
	u.RawQuery = query.Encode()

	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return zero, fmt.Errorf("remote: encode request: %w", err)
		}
		rd = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, u.String(), rd)
	if err != nil {
		return zero, err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return zero, fmt.Errorf("remote: %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()
	c.log.Debug().Str("method", method).Str("path", path).Int("status", resp.StatusCode).
		Dur("elapsed", time.Since(start)).Msg("request")

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return zero, fmt.Errorf("remote: read response: %w", err)
	}
	var env api.Envelope[T]
	if err := json.Unmarshal(raw, &env); err != nil {
		if resp.StatusCode >= 300 {
			return zero, &APIError{Status: resp.StatusCode, Message: strings.TrimSpace(string(raw))}
		}
		return zero, fmt.Errorf("remote: decode response: %w", err)
	}
	if !env.IsSuccess || resp.StatusCode >= 300 {
		return zero, &APIError{Status: resp.StatusCode, Code: env.Code, Message: env.Message}
	}
	return env.Result, nil
}

// Health checks the server is up.
func (c *Client) Health(ctx context.Context) error {
	_, err := call[string](ctx, c, http.MethodGet, "/healthz", nil, nil)
	return err
}

// Signup registers an account and keeps its token.
func (c *Client) Signup(ctx context.Context, req api.SignupRequest) (api.AuthResult, error) {
	res, err := call[api.AuthResult](ctx, c, http.MethodPost, "/auth/signup", nil, req)
	if err == nil {
		c.token = res.Token
	}
	return res, err
}

// Login signs in and keeps the new token.
func (c *Client) Login(ctx context.Context, req api.LoginRequest) (api.AuthResult, error) {
	res, err := call[api.AuthResult](ctx, c, http.MethodPost, "/auth/login", nil, req)
	if err == nil {
		c.token = res.Token
	}
	return res, err
}

func (c *Client) TechStacks(ctx context.Context) ([]catalog.TechStack, error) {
	return call[[]catalog.TechStack](ctx, c, http.MethodGet, "/skills", nil, nil)
}

func (c *Client) Animals(ctx context.Context) ([]api.Animal, error) {
	return call[[]api.Animal](ctx, c, http.MethodGet, "/skills/characters", nil, nil)
}

// Characters lists a user's characters.
func (c *Client) Characters(ctx context.Context, userID int64) ([]api.Character, error) {
	return call[[]api.Character](ctx, c, http.MethodGet, "/skills/"+id(userID), nil, nil)
}

// AttachCharacter creates a character for the signed-in user.
func (c *Client) AttachCharacter(ctx context.Context, req api.SaveSkillRequest) (api.Character, error) {
	return call[api.Character](ctx, c, http.MethodPost, "/skills", nil, req)
}

// RecordStudy logs a study session against a character.
func (c *Client) RecordStudy(ctx context.Context, characterID string, req api.StudyRecordRequest) (api.ProgressResult, error) {
	return call[api.ProgressResult](ctx, c, http.MethodPost, "/skills/records/"+url.PathEscape(characterID), nil, req)
}

func (c *Client) Profile(ctx context.Context, userID int64) (api.UserProfile, error) {
	return call[api.UserProfile](ctx, c, http.MethodGet, "/user/"+id(userID), nil, nil)
}

func (c *Client) Stats(ctx context.Context, userID int64) (ranking.Stats, error) {
	return call[ranking.Stats](ctx, c, http.MethodGet, "/user/"+id(userID)+"/stats", nil, nil)
}

// Ranking returns the leaderboard. A non-zero userID also fills Me.
func (c *Client) Ranking(ctx context.Context, userID int64) (api.RankingResult, error) {
	q := url.Values{}
	if userID != 0 {
		q.Set("userId", id(userID))
	}
	return call[api.RankingResult](ctx, c, http.MethodGet, "/ranking", q, nil)
}

// QuestionQuery narrows Questions. Empty fields are not sent.
type QuestionQuery struct {
	UserID     int64
	Difficulty string
	Solved     string
}

func (c *Client) Questions(ctx context.Context, skillID string, qq QuestionQuery) (api.QuestionList, error) {
	q := url.Values{}
	if qq.UserID != 0 {
		q.Set("userId", id(qq.UserID))
	}
	if qq.Difficulty != "" {
		q.Set("difficulty", qq.Difficulty)
	}
	if qq.Solved != "" {
		q.Set("solved", qq.Solved)
	}
	return call[api.QuestionList](ctx, c, http.MethodGet, "/questions/skill/"+url.PathEscape(skillID), q, nil)
}

func (c *Client) Question(ctx context.Context, questionID int64) (api.Question, error) {
	return call[api.Question](ctx, c, http.MethodGet, "/questions/"+id(questionID), nil, nil)
}

// Submit answers a question with a 1-based option index.
func (c *Client) Submit(ctx context.Context, questionID int64, req api.SubmitRequest) (api.SubmitResult, error) {
	return call[api.SubmitResult](ctx, c, http.MethodPost, "/questions/"+id(questionID), nil, req)
}

// WrongAnswers lists the notebook, optionally for one skill.
func (c *Client) WrongAnswers(ctx context.Context, userID int64, skillID string) ([]api.WrongAnswer, error) {
	return call[[]api.WrongAnswer](ctx, c, http.MethodGet, notebookPath(userID), skillQuery(skillID), nil)
}

func (c *Client) RemoveWrongAnswer(ctx context.Context, userID, questionID int64) error {
	_, err := call[api.ClearResult](ctx, c, http.MethodDelete, notebookPath(userID)+"/"+id(questionID), nil, nil)
	return err
}

// ClearWrongAnswers empties the notebook, optionally for one skill.
func (c *Client) ClearWrongAnswers(ctx context.Context, userID int64, skillID string) (int64, error) {
	res, err := call[api.ClearResult](ctx, c, http.MethodDelete, notebookPath(userID), skillQuery(skillID), nil)
	return res.Removed, err
}

func notebookPath(userID int64) string {
	return "/users/" + id(userID) + "/wrong-answers"
}

func skillQuery(skillID string) url.Values {
	q := url.Values{}
	if skillID != "" {
		q.Set("skillId", skillID)
	}
	return q
}

func id(n int64) string {
	return strconv.FormatInt(n, 10)
}
