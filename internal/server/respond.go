package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/codepet/codepet/internal/account"
	"github.com/codepet/codepet/internal/api"
	"github.com/codepet/codepet/internal/progression"
	"github.com/codepet/codepet/internal/quiz"
	"github.com/codepet/codepet/internal/store"
	"github.com/codepet/codepet/internal/tracker"
	"github.com/gorilla/mux"
)

var errForbidden = errors.New("not allowed to act for this user")

const maxBodyBytes = 1 << 20

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func ok[T any](w http.ResponseWriter, status int, result T) {
	writeJSON(w, status, api.OK(result))
}

// classify maps a service error to an HTTP status and response code.
func classify(err error) (int, string) {
	switch {
	case errors.Is(err, account.ErrEmailTaken):
		return http.StatusConflict, api.CodeEmailTaken
	case errors.Is(err, account.ErrInvalidCredentials):
		return http.StatusUnauthorized, api.CodeInvalidCredentials
	case errors.Is(err, account.ErrNotSignedIn):
		return http.StatusUnauthorized, api.CodeUnauthorized
	case errors.Is(err, errForbidden):
		return http.StatusForbidden, api.CodeForbidden
	case errors.Is(err, tracker.ErrDuplicateSkill):
		return http.StatusConflict, api.CodeDuplicateSkill
	case errors.Is(err, tracker.ErrUnknownStack), errors.Is(err, tracker.ErrUnknownAnimal):
		return http.StatusBadRequest, api.CodeUnknownSkill
	case errors.Is(err, quiz.ErrNoCharacter):
		return http.StatusBadRequest, api.CodeNoCharacter
	case errors.Is(err, tracker.ErrNotFound), errors.Is(err, quiz.ErrNotFound), errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound, api.CodeNotFound
	case errors.Is(err, store.ErrConflict):
		return http.StatusConflict, api.CodeConflict
	case errors.Is(err, progression.ErrInvalidArgument),
		errors.Is(err, quiz.ErrInvalidQuestion),
		errors.Is(err, account.ErrInvalidInput):
		return http.StatusBadRequest, api.CodeBadRequest
	}
	return http.StatusInternalServerError, api.CodeInternal
}

func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	status, code := classify(err)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		s.log.Error().Err(err).Str("method", r.Method).Str("path", r.URL.Path).Msg("request failed")
		msg = "internal error"
	}
	writeJSON(w, status, api.Fail(code, msg))
}

func decode(w http.ResponseWriter, r *http.Request, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(dst); err != nil {
		return fmt.Errorf("%w: malformed request body: %v", progression.ErrInvalidArgument, err)
	}
	return nil
}

func pathID(r *http.Request, name string) (int64, error) {
	return parseID(name, mux.Vars(r)[name])
}

func parseID(name, raw string) (int64, error) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: %s must be a positive integer, got %q", progression.ErrInvalidArgument, name, raw)
	}
	return id, nil
}

// requireSelf checks the request is authenticated as userID.
func requireSelf(r *http.Request, userID int64) error {
	u, ok := userFrom(r.Context())
	if !ok {
		return account.ErrNotSignedIn
	}
	if u.ID != userID {
		return errForbidden
	}
	return nil
}

func invalid(err error) error {
	return fmt.Errorf("%w: %v", progression.ErrInvalidArgument, err)
}
