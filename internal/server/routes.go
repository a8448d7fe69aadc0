package server

import (
	"net/http"

	"github.com/codepet/codepet/internal/api"
	"github.com/codepet/codepet/internal/catalog"
	"github.com/codepet/codepet/internal/progression"
	"github.com/codepet/codepet/internal/quiz"
	"github.com/codepet/codepet/internal/ranking"
	"github.com/codepet/codepet/internal/tracker"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func (s *Server) routes() *mux.Router {
	r := mux.NewRouter()
	r.Handle("/metrics", promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{})).Methods(http.MethodGet)
	r.HandleFunc("/healthz", s.handleHealth).Methods(http.MethodGet)

	v := r.PathPrefix("/").Subrouter()
	v.Use(s.observe, s.rateLimit, s.authenticate)

	v.HandleFunc("/auth/signup", s.handleSignup).Methods(http.MethodPost)
	v.HandleFunc("/auth/login", s.handleLogin).Methods(http.MethodPost)

	v.HandleFunc("/skills", s.handleListSkills).Methods(http.MethodGet)
	v.HandleFunc("/skills", s.handleSaveSkill).Methods(http.MethodPost)
	v.HandleFunc("/skills/characters", s.handleListAnimals).Methods(http.MethodGet)
	v.HandleFunc("/skills/records/{characterId}", s.handleRecordStudy).Methods(http.MethodPost)
	v.HandleFunc("/skills/{userId:[0-9]+}", s.handleUserSkills).Methods(http.MethodGet)

	v.HandleFunc("/user/{userId:[0-9]+}", s.handleUserProfile).Methods(http.MethodGet)
	v.HandleFunc("/user/{userId:[0-9]+}/stats", s.handleUserStats).Methods(http.MethodGet)
	v.HandleFunc("/ranking", s.handleRanking).Methods(http.MethodGet)

	v.HandleFunc("/questions/skill/{skillId}", s.handleListQuestions).Methods(http.MethodGet)
	v.HandleFunc("/questions/{id:[0-9]+}", s.handleGetQuestion).Methods(http.MethodGet)
	v.HandleFunc("/questions/{id:[0-9]+}", s.handleSubmit).Methods(http.MethodPost)

	v.HandleFunc("/users/{userId:[0-9]+}/wrong-answers", s.handleWrongAnswers).Methods(http.MethodGet)
	v.HandleFunc("/users/{userId:[0-9]+}/wrong-answers", s.handleClearWrongAnswers).Methods(http.MethodDelete)
	v.HandleFunc("/users/{userId:[0-9]+}/wrong-answers/{questionId:[0-9]+}", s.handleRemoveWrongAnswer).Methods(http.MethodDelete)

	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusNotFound, api.Fail(api.CodeNotFound, "no such endpoint"))
	})
	r.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusMethodNotAllowed, api.Fail(api.CodeBadRequest, "method not allowed"))
	})
	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if err := s.deps.Store.DB().PingContext(r.Context()); err != nil {
		writeJSON(w, http.StatusServiceUnavailable, api.Fail(api.CodeInternal, "database unavailable"))
		return
	}
	ok(w, http.StatusOK, "ok")
}

func (s *Server) handleSignup(w http.ResponseWriter, r *http.Request) {
	var req api.SignupRequest
	if err := decode(w, r, &req); err != nil {
		s.fail(w, r, err)
		return
	}
	u, err := s.deps.Accounts.Signup(r.Context(), req.Name, req.Email, req.Password)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	ok(w, http.StatusCreated, api.AuthResult{UserID: u.ID, Name: u.Name, Email: u.Email, Token: u.Token})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req api.LoginRequest
	if err := decode(w, r, &req); err != nil {
		s.fail(w, r, err)
		return
	}
	u, err := s.deps.Accounts.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	ok(w, http.StatusOK, api.AuthResult{UserID: u.ID, Name: u.Name, Email: u.Email, Token: u.Token})
}

func (s *Server) handleListSkills(w http.ResponseWriter, _ *http.Request) {
	stacks := s.catalog.TechStacks
	if stacks == nil {
		stacks = []catalog.TechStack{}
	}
	ok(w, http.StatusOK, stacks)
}

func (s *Server) handleListAnimals(w http.ResponseWriter, _ *http.Request) {
	out := make([]api.Animal, 0, len(s.catalog.Animals))
	for _, a := range s.catalog.Animals {
		out = append(out, api.Animal{ID: a.ID, Name: a.Name, Emoji: a.Emoji(1)})
	}
	ok(w, http.StatusOK, out)
}

func (s *Server) handleUserSkills(w http.ResponseWriter, r *http.Request) {
	userID, err := pathID(r, "userId")
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if _, err := s.deps.Store.Users.ByID(r.Context(), userID); err != nil {
		s.fail(w, r, err)
		return
	}
	chars, err := s.deps.Tracker.Characters(r.Context(), userID)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	ok(w, http.StatusOK, s.renderCharacters(chars))
}

func (s *Server) renderCharacters(chars []progression.Character) []api.Character {
	now := s.deps.Tracker.Now()
	out := make([]api.Character, 0, len(chars))
	for _, c := range chars {
		out = append(out, api.FromCharacter(s.catalog, c, now))
	}
	return out
}

func (s *Server) handleSaveSkill(w http.ResponseWriter, r *http.Request) {
	var req api.SaveSkillRequest
	if err := decode(w, r, &req); err != nil {
		s.fail(w, r, err)
		return
	}
	if err := requireSelf(r, req.UserID); err != nil {
		s.fail(w, r, err)
		return
	}
	c, err := s.deps.Tracker.AttachCharacter(r.Context(), req.UserID, req.SkillID, req.CharacterID)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	ok(w, http.StatusCreated, api.FromCharacter(s.catalog, c, s.deps.Tracker.Now()))
}

func (s *Server) handleRecordStudy(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["characterId"]
	c, err := s.deps.Tracker.Character(r.Context(), id)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if err := requireSelf(r, c.UserID); err != nil {
		s.fail(w, r, err)
		return
	}
	var req api.StudyRecordRequest
	if err := decode(w, r, &req); err != nil {
		s.fail(w, r, err)
		return
	}

	var p *tracker.Progress
	if req.StudiedAt != nil {
		p, err = s.deps.Tracker.LogStudyAt(r.Context(), id, req.StudyTime, req.Notes, *req.StudiedAt)
	} else {
		p, err = s.deps.Tracker.LogStudy(r.Context(), id, req.StudyTime, req.Notes)
	}
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.metrics.studyMinutes.Add(float64(req.StudyTime))
	s.metrics.levelUps.Add(float64(p.LevelsGained()))
	ok(w, http.StatusOK, api.FromProgress(s.catalog, p, s.deps.Tracker.Now()))
}

func (s *Server) handleUserProfile(w http.ResponseWriter, r *http.Request) {
	userID, err := pathID(r, "userId")
	if err != nil {
		s.fail(w, r, err)
		return
	}
	u, err := s.deps.Store.Users.ByID(r.Context(), userID)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	prof, err := s.deps.Ranking.Profile(r.Context(), userID)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	chars, err := s.deps.Tracker.Characters(r.Context(), userID)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	ok(w, http.StatusOK, api.UserProfile{
		User:       api.FromUser(u),
		Profile:    prof,
		Characters: s.renderCharacters(chars),
	})
}

func (s *Server) handleUserStats(w http.ResponseWriter, r *http.Request) {
	userID, err := pathID(r, "userId")
	if err != nil {
		s.fail(w, r, err)
		return
	}
	stats, err := s.deps.Ranking.Stats(r.Context(), userID)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	ok(w, http.StatusOK, stats)
}

func (s *Server) handleRanking(w http.ResponseWriter, r *http.Request) {
	board, err := s.deps.Ranking.Board(r.Context())
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if board == nil {
		board = []ranking.Entry{}
	}
	res := api.RankingResult{Entries: board}
	if raw := r.URL.Query().Get("userId"); raw != "" {
		userID, err := parseID("userId", raw)
		if err != nil {
			s.fail(w, r, err)
			return
		}
		if me, found := ranking.Position(board, userID); found {
			res.Me = &me
		}
	}
	ok(w, http.StatusOK, res)
}

func (s *Server) handleListQuestions(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	var userID int64
	if raw := q.Get("userId"); raw != "" {
		id, err := parseID("userId", raw)
		if err != nil {
			s.fail(w, r, err)
			return
		}
		userID = id
	}
	diff, err := quiz.ParseDifficulty(q.Get("difficulty"))
	if err != nil {
		s.fail(w, r, invalid(err))
		return
	}
	solved, err := quiz.ParseSolvedFilter(q.Get("solved"))
	if err != nil {
		s.fail(w, r, invalid(err))
		return
	}
	l, err := s.deps.Quiz.List(r.Context(), userID, mux.Vars(r)["skillId"], quiz.Filter{Difficulty: diff, Solved: solved})
	if err != nil {
		s.fail(w, r, err)
		return
	}
	ok(w, http.StatusOK, api.FromListing(l))
}

func (s *Server) handleGetQuestion(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		s.fail(w, r, err)
		return
	}
	q, err := s.deps.Quiz.Get(r.Context(), id)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	ok(w, http.StatusOK, api.FromQuestion(q))
}

func (s *Server) handleSubmit(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		s.fail(w, r, err)
		return
	}
	var req api.SubmitRequest
	if err := decode(w, r, &req); err != nil {
		s.fail(w, r, err)
		return
	}
	if err := requireSelf(r, req.UserID); err != nil {
		s.fail(w, r, err)
		return
	}
	res, err := s.deps.Quiz.Submit(r.Context(), req.UserID, id, req.Answer)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	result := "wrong"
	if res.Correct {
		result = "correct"
	}
	s.metrics.submissions.WithLabelValues(result).Inc()
	if res.Progress != nil {
		s.metrics.levelUps.Add(float64(res.Progress.LevelsGained()))
	}
	ok(w, http.StatusOK, api.FromResult(s.catalog, res, s.deps.Tracker.Now()))
}

// notebookOwner parses userId and checks the caller owns that notebook.
func (s *Server) notebookOwner(r *http.Request) (int64, error) {
	userID, err := pathID(r, "userId")
	if err != nil {
		return 0, err
	}
	return userID, requireSelf(r, userID)
}

func (s *Server) handleWrongAnswers(w http.ResponseWriter, r *http.Request) {
	userID, err := s.notebookOwner(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	list, err := s.deps.Quiz.WrongAnswers(r.Context(), userID, r.URL.Query().Get("skillId"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	out := make([]api.WrongAnswer, 0, len(list))
	for _, wa := range list {
		out = append(out, api.FromWrongAnswer(wa))
	}
	ok(w, http.StatusOK, out)
}

func (s *Server) handleClearWrongAnswers(w http.ResponseWriter, r *http.Request) {
	userID, err := s.notebookOwner(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	n, err := s.deps.Quiz.ClearWrongAnswers(r.Context(), userID, r.URL.Query().Get("skillId"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	ok(w, http.StatusOK, api.ClearResult{Removed: n})
}

func (s *Server) handleRemoveWrongAnswer(w http.ResponseWriter, r *http.Request) {
	userID, err := s.notebookOwner(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	questionID, err := pathID(r, "questionId")
	if err != nil {
		s.fail(w, r, err)
		return
	}
	removed, err := s.deps.Quiz.RemoveWrongAnswer(r.Context(), userID, questionID)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if !removed {
		writeJSON(w, http.StatusNotFound, api.Fail(api.CodeNotFound, "question is not in the notebook"))
		return
	}
	ok(w, http.StatusOK, api.ClearResult{Removed: 1})
}
