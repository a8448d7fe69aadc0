// Package quiz serves multiple-choice questions per tech stack, grades
// answers, credits first-time solves and keeps the wrong-answer notebook.
package quiz

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/codepet/codepet/internal/catalog"
	"github.com/codepet/codepet/internal/logger"
	"github.com/codepet/codepet/internal/progression"
	"github.com/codepet/codepet/internal/store"
	"github.com/codepet/codepet/internal/tracker"
	"github.com/rs/zerolog"
)

var (
	// ErrNoCharacter is returned when the user has no character for the
	// question's tech stack.
	ErrNoCharacter = errors.New("no character for this tech stack")

	// ErrNotFound is returned for a missing question.
	ErrNotFound = errors.New("question not found")

	// ErrInvalidQuestion wraps every question validation failure.
	ErrInvalidQuestion = errors.New("invalid question")
)

// Service implements the quiz operations.
type Service struct {
	store   *store.Store
	tracker *tracker.Tracker
	catalog *catalog.Catalog
	log     zerolog.Logger
}

// NewService creates a quiz Service.
func NewService(st *store.Store, tr *tracker.Tracker) *Service {
	return &Service{
		store:   st,
		tracker: tr,
		catalog: tr.Catalog(),
		log:     logger.Component("quiz"),
	}
}

// List returns the stack's questions with the user's solved flags.
func (s *Service) List(ctx context.Context, userID int64, stackID string, f Filter) (*Listing, error) {
	if _, ok := s.catalog.TechStack(stackID); !ok {
		return nil, fmt.Errorf("%w: %q", tracker.ErrUnknownStack, stackID)
	}
	questions, err := s.store.Questions.List(ctx, store.QuestionFilter{TechStackID: stackID})
	if err != nil {
		return nil, err
	}
	solved, err := s.store.Solved.IDs(ctx, userID, stackID)
	if err != nil {
		return nil, err
	}

	out := &Listing{Total: len(questions)}
	for _, q := range questions {
		isSolved := solved[q.ID]
		if isSolved {
			out.SolvedCount++
		}
		if f.Difficulty != "" && Difficulty(q.Difficulty) != f.Difficulty {
			continue
		}
		if (f.Solved == SolvedOnly && !isSolved) || (f.Solved == SolvedExcluded && isSolved) {
			continue
		}
		out.Questions = append(out.Questions, Summary{
			ID:         q.ID,
			Title:      q.Title,
			Difficulty: Difficulty(q.Difficulty),
			RewardExp:  q.RewardExp,
			Solved:     isSolved,
		})
	}
	return out, nil
}

// Get returns one question.
func (s *Service) Get(ctx context.Context, id int64) (*store.Question, error) {
	q, err := s.store.Questions.Get(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return nil, fmt.Errorf("%w: %d", ErrNotFound, id)
	}
	return q, err
}

// Submit grades a 1-based answer. A correct answer credits the reward the
// first time and clears any notebook entry; a wrong one is recorded in the
// notebook.
func (s *Service) Submit(ctx context.Context, userID, questionID int64, answer int) (*Result, error) {
	if answer < 1 || answer > OptionCount {
		return nil, fmt.Errorf("%w: answer %d is outside 1..%d", progression.ErrInvalidArgument, answer, OptionCount)
	}
	q, err := s.Get(ctx, questionID)
	if err != nil {
		return nil, err
	}
	c, err := s.tracker.CharacterFor(ctx, userID, q.TechStackID)
	if errors.Is(err, tracker.ErrNotFound) {
		return nil, fmt.Errorf("%w: %s", ErrNoCharacter, s.catalog.TechStackName(q.TechStackID))
	}
	if err != nil {
		return nil, err
	}

	res := &Result{Question: q, Answer: answer, Correct: answer == q.Answer}
	if !res.Correct {
		err := s.store.WrongAnswers.Upsert(ctx, store.WrongAnswer{
			UserID:        userID,
			TechStackID:   q.TechStackID,
			QuestionID:    q.ID,
			Title:         q.Title,
			Content:       q.Content,
			Difficulty:    q.Difficulty,
			Options:       q.Options,
			MyAnswer:      answer,
			CorrectAnswer: q.Answer,
			RewardExp:     q.RewardExp,
		})
		if err != nil {
			return nil, fmt.Errorf("record wrong answer: %w", err)
		}
		s.log.Debug().Int64("user", userID).Int64("question", q.ID).Int("answer", answer).Msg("wrong answer recorded")
		return res, nil
	}

	p, err := s.tracker.CreditQuizReward(ctx, c.ID, q.ID, q.RewardExp)
	if err != nil {
		return nil, err
	}
	res.Progress = p
	res.FirstSolve = p.ExperienceGained > 0
	if _, err := s.store.WrongAnswers.Remove(ctx, userID, q.ID); err != nil {
		return nil, fmt.Errorf("clear wrong answer: %w", err)
	}
	return res, nil
}

// Create validates and stores a new question.
func (s *Service) Create(ctx context.Context, q *store.Question) error {
	if err := s.Validate(q); err != nil {
		return err
	}
	return s.store.Questions.Create(ctx, q)
}

// Update validates and overwrites an existing question.
func (s *Service) Update(ctx context.Context, q *store.Question) error {
	if err := s.Validate(q); err != nil {
		return err
	}
	err := s.store.Questions.Update(ctx, q)
	if errors.Is(err, store.ErrNotFound) {
		return fmt.Errorf("%w: %d", ErrNotFound, q.ID)
	}
	return err
}

// Delete removes a question.
func (s *Service) Delete(ctx context.Context, id int64) error {
	err := s.store.Questions.Delete(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return fmt.Errorf("%w: %d", ErrNotFound, id)
	}
	return err
}

// Validate normalizes the difficulty, fills a default reward and checks
// the question's structure.
func (s *Service) Validate(q *store.Question) error {
	var errs []error

	if _, ok := s.catalog.TechStack(q.TechStackID); !ok {
		errs = append(errs, fmt.Errorf("unknown tech stack %q", q.TechStackID))
	}
	if strings.TrimSpace(q.Title) == "" {
		errs = append(errs, errors.New("title is empty"))
	}
	d, err := ParseDifficulty(q.Difficulty)
	switch {
	case err != nil:
		errs = append(errs, err)
	case d == "":
		errs = append(errs, errors.New("difficulty is empty"))
	default:
		q.Difficulty = string(d)
		if q.RewardExp == 0 {
			q.RewardExp = d.DefaultReward()
		}
	}
	if len(q.Options) != OptionCount {
		errs = append(errs, fmt.Errorf("need %d options, got %d", OptionCount, len(q.Options)))
	}
	for i, o := range q.Options {
		if strings.TrimSpace(o) == "" {
			errs = append(errs, fmt.Errorf("option %d is empty", i+1))
		}
	}
	if q.Answer < 1 || q.Answer > OptionCount {
		errs = append(errs, fmt.Errorf("answer %d is outside 1..%d", q.Answer, OptionCount))
	}
	if q.RewardExp < 0 {
		errs = append(errs, fmt.Errorf("reward %d is negative", q.RewardExp))
	}
	if q.Source == "" {
		q.Source = store.SourceSeed
	}
	if !q.Source.Valid() {
		errs = append(errs, fmt.Errorf("unknown source %q", q.Source))
	}

	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidQuestion, err)
	}
	return nil
}

// WrongAnswers lists the user's notebook, optionally for one stack.
func (s *Service) WrongAnswers(ctx context.Context, userID int64, stackID string) ([]store.WrongAnswer, error) {
	return s.store.WrongAnswers.List(ctx, userID, stackID)
}

// RemoveWrongAnswer deletes one notebook entry.
func (s *Service) RemoveWrongAnswer(ctx context.Context, userID, questionID int64) (bool, error) {
	return s.store.WrongAnswers.Remove(ctx, userID, questionID)
}

// ClearWrongAnswers empties the notebook, optionally for one stack.
func (s *Service) ClearWrongAnswers(ctx context.Context, userID int64, stackID string) (int64, error) {
	return s.store.WrongAnswers.Clear(ctx, userID, stackID)
}

// Titles lists the titles already in the stack's bank.
func (s *Service) Titles(ctx context.Context, stackID string) ([]string, error) {
	return s.store.Questions.Titles(ctx, stackID)
}
