package server

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/codepet/codepet/internal/account"
	"github.com/codepet/codepet/internal/api"
	"github.com/codepet/codepet/internal/catalog"
	"github.com/codepet/codepet/internal/quiz"
	"github.com/codepet/codepet/internal/ranking"
	"github.com/codepet/codepet/internal/store"
	"github.com/codepet/codepet/internal/tracker"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

var testNow = time.Date(2025, 5, 1, 12, 0, 0, 0, time.UTC)

func newTestServer(t *testing.T, cfg Config) *Server {
	t.Helper()
	st, err := store.Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString()))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	tr := tracker.New(st, catalog.Default(),
		tracker.WithClock(func() time.Time { return testNow }),
		tracker.WithLocation(time.UTC))
	qz := quiz.NewService(st, tr)
	_, err = qz.Seed(context.Background())
	require.NoError(t, err)

	return New(cfg, Deps{
		Store:    st,
		Tracker:  tr,
		Quiz:     qz,
		Ranking:  ranking.NewService(st),
		Accounts: account.NewService(st, account.WithHashCost(bcrypt.MinCost)),
	})
}

type client struct {
	t   *testing.T
	srv *httptest.Server
}

func newClient(t *testing.T, s *Server) *client {
	srv := httptest.NewServer(s.Handler())
	t.Cleanup(srv.Close)
	return &client{t: t, srv: srv}
}

func (c *client) do(method, path, token string, body any, out any) (int, api.Envelope[json.RawMessage]) {
	c.t.Helper()
	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(c.t, err)
		rd = bytes.NewReader(b)
	}
	req, err := http.NewRequest(method, c.srv.URL+path, rd)
	require.NoError(c.t, err)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := c.srv.Client().Do(req)
	require.NoError(c.t, err)
	defer resp.Body.Close()

	var env api.Envelope[json.RawMessage]
	require.NoError(c.t, json.NewDecoder(resp.Body).Decode(&env))
	if out != nil && env.IsSuccess {
		require.NoError(c.t, json.Unmarshal(env.Result, out))
	}
	return resp.StatusCode, env
}

func (c *client) signup(name, email string) api.AuthResult {
	c.t.Helper()
	var auth api.AuthResult
	status, env := c.do(http.MethodPost, "/auth/signup", "", api.SignupRequest{Name: name, Email: email, Password: "secret1"}, &auth)
	require.Equal(c.t, http.StatusCreated, status, env.Message)
	return auth
}

func TestStudyFlow(t *testing.T) {
	c := newClient(t, newTestServer(t, DefaultConfig()))
	auth := c.signup("Dana", "dana@example.com")
	require.NotEmpty(t, auth.Token)

	var animals []api.Animal
	status, _ := c.do(http.MethodGet, "/skills/characters", "", nil, &animals)
	require.Equal(t, http.StatusOK, status)
	require.NotEmpty(t, animals)

	save := api.SaveSkillRequest{UserID: auth.UserID, SkillID: "go", CharacterID: "cat"}
	status, env := c.do(http.MethodPost, "/skills", "", save, nil)
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, api.CodeUnauthorized, env.Code)

	var ch api.Character
	status, env = c.do(http.MethodPost, "/skills", auth.Token, save, &ch)
	require.Equal(t, http.StatusCreated, status, env.Message)
	assert.Equal(t, 1, ch.Level)
	assert.Equal(t, 100, ch.ExperienceToNextLevel)
	assert.Equal(t, "neutral", ch.Emotion)

	status, env = c.do(http.MethodPost, "/skills", auth.Token, save, nil)
	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, api.CodeDuplicateSkill, env.Code)

	var prog api.ProgressResult
	status, env = c.do(http.MethodPost, "/skills/records/"+ch.ID, auth.Token, api.StudyRecordRequest{StudyTime: 60}, &prog)
	require.Equal(t, http.StatusOK, status, env.Message)
	assert.Equal(t, 600, prog.ExperienceGained)
	assert.Equal(t, 4, prog.Character.Level)
	assert.Equal(t, 125, prog.Character.Experience)
	assert.Equal(t, 3, prog.LevelsGained)
	assert.Equal(t, "excited", prog.Character.Emotion)

	status, env = c.do(http.MethodPost, "/skills/records/"+ch.ID, auth.Token, api.StudyRecordRequest{StudyTime: -5}, nil)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, api.CodeBadRequest, env.Code)

	var chars []api.Character
	status, _ = c.do(http.MethodGet, fmt.Sprintf("/skills/%d", auth.UserID), "", nil, &chars)
	require.Equal(t, http.StatusOK, status)
	require.Len(t, chars, 1)
	assert.Equal(t, 60, chars[0].TotalStudyTime)

	var board api.RankingResult
	status, _ = c.do(http.MethodGet, fmt.Sprintf("/ranking?userId=%d", auth.UserID), "", nil, &board)
	require.Equal(t, http.StatusOK, status)
	require.NotNil(t, board.Me)
	assert.Equal(t, 1, board.Me.Rank)

	var profile api.UserProfile
	status, _ = c.do(http.MethodGet, fmt.Sprintf("/user/%d", auth.UserID), "", nil, &profile)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "dana@example.com", profile.User.Email)
	assert.Len(t, profile.Characters, 1)
}

func TestStudyRejectsFutureTime(t *testing.T) {
	c := newClient(t, newTestServer(t, DefaultConfig()))
	auth := c.signup("Dana", "dana@example.com")
	var ch api.Character
	status, env := c.do(http.MethodPost, "/skills", auth.Token, api.SaveSkillRequest{UserID: auth.UserID, SkillID: "go", CharacterID: "cat"}, &ch)
	require.Equal(t, http.StatusCreated, status, env.Message)

	tomorrow := testNow.Add(24 * time.Hour)
	status, env = c.do(http.MethodPost, "/skills/records/"+ch.ID, auth.Token,
		api.StudyRecordRequest{StudyTime: 30, StudiedAt: &tomorrow}, nil)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, api.CodeBadRequest, env.Code)

	yesterday := testNow.Add(-24 * time.Hour)
	var prog api.ProgressResult
	status, env = c.do(http.MethodPost, "/skills/records/"+ch.ID, auth.Token,
		api.StudyRecordRequest{StudyTime: 30, StudiedAt: &yesterday}, &prog)
	require.Equal(t, http.StatusOK, status, env.Message)
	assert.Equal(t, 1, prog.Character.Streak)
}

func TestStartJobsResetsLapsedStreaks(t *testing.T) {
	s := newTestServer(t, DefaultConfig())
	s.deps.Location = time.FixedZone("KST", 9*3600)
	ctx := context.Background()

	u := &store.User{Name: "Dana", Email: "dana@example.com"}
	require.NoError(t, s.deps.Store.Users.Create(ctx, u))
	ch, err := s.deps.Tracker.AttachCharacter(ctx, u.ID, "go", "cat")
	require.NoError(t, err)
	last := testNow.AddDate(0, 0, -10)
	ch.LastStudyDate = &last
	ch.Streak = 4
	require.NoError(t, s.deps.Store.Characters.Save(ctx, ch))

	sched, err := s.startJobs()
	require.NoError(t, err)
	defer sched.Stop()
	assert.Equal(t, "KST", sched.Location().String())

	got, err := s.deps.Tracker.Character(ctx, ch.ID)
	require.NoError(t, err)
	assert.Zero(t, got.Streak)
}

func TestOtherUsersCharacter(t *testing.T) {
	c := newClient(t, newTestServer(t, DefaultConfig()))
	owner := c.signup("Owner", "owner@example.com")
	intruder := c.signup("Intruder", "intruder@example.com")

	var ch api.Character
	status, _ := c.do(http.MethodPost, "/skills", owner.Token,
		api.SaveSkillRequest{UserID: owner.UserID, SkillID: "go", CharacterID: "cat"}, &ch)
	require.Equal(t, http.StatusCreated, status)

	status, env := c.do(http.MethodPost, "/skills/records/"+ch.ID, intruder.Token, api.StudyRecordRequest{StudyTime: 30}, nil)
	assert.Equal(t, http.StatusForbidden, status)
	assert.Equal(t, api.CodeForbidden, env.Code)

	status, env = c.do(http.MethodPost, "/skills/records/"+ch.ID, "not-a-token", api.StudyRecordRequest{StudyTime: 30}, nil)
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, api.CodeUnauthorized, env.Code)
}

func TestQuizAndNotebook(t *testing.T) {
	c := newClient(t, newTestServer(t, DefaultConfig()))
	auth := c.signup("Dana", "dana@example.com")

	var list api.QuestionList
	path := fmt.Sprintf("/questions/skill/go?userId=%d", auth.UserID)
	status, _ := c.do(http.MethodGet, path, "", nil, &list)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, 4, list.Total)

	var target api.QuestionSummary
	for _, q := range list.Questions {
		if q.Title == "Zero value of a map" {
			target = q
		}
	}
	require.NotZero(t, target.ID)

	var q api.Question
	status, _ = c.do(http.MethodGet, fmt.Sprintf("/questions/%d", target.ID), "", nil, &q)
	require.Equal(t, http.StatusOK, status)
	assert.Len(t, q.Options, 4)

	submitPath := fmt.Sprintf("/questions/%d", target.ID)
	status, env := c.do(http.MethodPost, submitPath, auth.Token, api.SubmitRequest{UserID: auth.UserID, Answer: 1}, nil)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, api.CodeNoCharacter, env.Code)

	status, _ = c.do(http.MethodPost, "/skills", auth.Token,
		api.SaveSkillRequest{UserID: auth.UserID, SkillID: "go", CharacterID: "fox"}, nil)
	require.Equal(t, http.StatusCreated, status)

	var res api.SubmitResult
	status, _ = c.do(http.MethodPost, submitPath, auth.Token, api.SubmitRequest{UserID: auth.UserID, Answer: 2}, &res)
	require.Equal(t, http.StatusOK, status)
	assert.False(t, res.Correct)
	assert.Equal(t, 1, res.CorrectAnswer)

	notebook := fmt.Sprintf("/users/%d/wrong-answers", auth.UserID)
	var wrong []api.WrongAnswer
	status, _ = c.do(http.MethodGet, notebook, auth.Token, nil, &wrong)
	require.Equal(t, http.StatusOK, status)
	require.Len(t, wrong, 1)
	assert.Equal(t, 2, wrong[0].MyAnswer)

	status, _ = c.do(http.MethodGet, notebook, "", nil, nil)
	assert.Equal(t, http.StatusUnauthorized, status)

	res = api.SubmitResult{}
	status, _ = c.do(http.MethodPost, submitPath, auth.Token, api.SubmitRequest{UserID: auth.UserID, Answer: 1}, &res)
	require.Equal(t, http.StatusOK, status)
	assert.True(t, res.Correct)
	assert.True(t, res.FirstSolve)
	require.NotNil(t, res.Progress)
	assert.Equal(t, target.RewardExp, res.Progress.ExperienceGained)

	wrong = nil
	status, _ = c.do(http.MethodGet, notebook, auth.Token, nil, &wrong)
	require.Equal(t, http.StatusOK, status)
	assert.Empty(t, wrong)

	status, env = c.do(http.MethodDelete, fmt.Sprintf("%s/%d", notebook, target.ID), auth.Token, nil, nil)
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, api.CodeNotFound, env.Code)

	var cleared api.ClearResult
	status, _ = c.do(http.MethodDelete, notebook+"?skillId=go", auth.Token, nil, &cleared)
	require.Equal(t, http.StatusOK, status)
	assert.Zero(t, cleared.Removed)

	status, env = c.do(http.MethodGet, "/questions/skill/go?difficulty=IMPOSSIBLE", "", nil, nil)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, api.CodeBadRequest, env.Code)

	status, env = c.do(http.MethodGet, "/questions/skill/cobol", "", nil, nil)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, api.CodeUnknownSkill, env.Code)
}

func TestAuthErrors(t *testing.T) {
	c := newClient(t, newTestServer(t, DefaultConfig()))
	c.signup("Dana", "dana@example.com")

	status, env := c.do(http.MethodPost, "/auth/signup", "", api.SignupRequest{Name: "D", Email: "dana@example.com", Password: "secret1"}, nil)
	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, api.CodeEmailTaken, env.Code)

	status, env = c.do(http.MethodPost, "/auth/login", "", api.LoginRequest{Email: "dana@example.com", Password: "wrong"}, nil)
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, api.CodeInvalidCredentials, env.Code)

	var auth api.AuthResult
	status, _ = c.do(http.MethodPost, "/auth/login", "", api.LoginRequest{Email: "dana@example.com", Password: "secret1"}, &auth)
	assert.Equal(t, http.StatusOK, status)
	assert.NotEmpty(t, auth.Token)

	status, env = c.do(http.MethodGet, "/user/999", "", nil, nil)
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, api.CodeNotFound, env.Code)

	status, env = c.do(http.MethodGet, "/no/such/path", "", nil, nil)
	assert.Equal(t, http.StatusNotFound, status)
	assert.False(t, env.IsSuccess)
}

func TestRateLimit(t *testing.T) {
	cfg := DefaultConfig()
	cfg.RateLimit = 1
	cfg.RateBurst = 1
	c := newClient(t, newTestServer(t, cfg))

	status, _ := c.do(http.MethodGet, "/skills", "", nil, nil)
	assert.Equal(t, http.StatusOK, status)
	status, env := c.do(http.MethodGet, "/skills", "", nil, nil)
	assert.Equal(t, http.StatusTooManyRequests, status)
	assert.Equal(t, api.CodeRateLimited, env.Code)
}

func TestLimiterCleanup(t *testing.T) {
	l := newClientLimiter(5, 5)
	now := testNow
	l.now = func() time.Time { return now }

	assert.True(t, l.allow("10.0.0.1"))
	now = now.Add(2 * time.Minute)
	assert.True(t, l.allow("10.0.0.2"))
	now = now.Add(2 * time.Minute)

	l.cleanup(3 * time.Minute)
	assert.Equal(t, 1, l.size())
}

func TestMetricsAndHealth(t *testing.T) {
	s := newTestServer(t, DefaultConfig())
	c := newClient(t, s)
	c.do(http.MethodGet, "/skills", "", nil, nil)

	resp, err := c.srv.Client().Get(c.srv.URL + "/healthz")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err = c.srv.Client().Get(c.srv.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `http_requests_total{method="GET",route="/skills",status="200"} 1`)
	assert.Contains(t, string(body), "codepet_study_minutes_total")
}

func TestServeShutsDownOnCancel(t *testing.T) {
	s := newTestServer(t, DefaultConfig())
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Serve(ctx, ln) }()

	require.Eventually(t, func() bool {
		resp, err := http.Get("http://" + ln.Addr().String() + "/healthz")
		if err != nil {
			return false
		}
		resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 2*time.Second, 20*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}
}

func TestBearerToken(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	_, ok := bearerToken(r)
	assert.False(t, ok)

	r.Header.Set("Authorization", "bearer  abc ")
	token, ok := bearerToken(r)
	assert.True(t, ok)
	assert.Equal(t, "abc", strings.TrimSpace(token))
}
