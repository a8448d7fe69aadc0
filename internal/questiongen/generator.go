package questiongen

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/codepet/codepet/internal/catalog"
	"github.com/codepet/codepet/internal/llm"
	"github.com/codepet/codepet/internal/logger"
	"github.com/codepet/codepet/internal/quiz"
	"github.com/codepet/codepet/internal/store"
	"github.com/rs/zerolog"
)

// Config tunes generation.
type Config struct {
	// Validators run in order; the first failure rejects the draft.
	Validators []Validator

	MaxTokens      int
	Temperature    float64
	MaxPriorTitles int
	MaxMistakes    int

	// MaxAttempts bounds generations per stored question when drafts are
	// rejected with a retryable error.
	MaxAttempts int
}

// DefaultConfig returns the standard validator chain.
func DefaultConfig() Config {
	return Config{
		Validators:     []Validator{StructuralValidator{}, DuplicateValidator{}},
		MaxTokens:      800,
		Temperature:    0.7,
		MaxPriorTitles: 30,
		MaxMistakes:    5,
		MaxAttempts:    3,
	}
}

// Bank is the question store the generator reads from and fills.
// *quiz.Service satisfies it.
type Bank interface {
	Titles(ctx context.Context, stackID string) ([]string, error)
	WrongAnswers(ctx context.Context, userID int64, stackID string) ([]store.WrongAnswer, error)
	Create(ctx context.Context, q *store.Question) error
}

// Generator drafts questions with an LLM provider.
type Generator struct {
	provider llm.Provider
	cfg      Config
	log      zerolog.Logger
}

// New creates a Generator.
func New(p llm.Provider, cfg Config) *Generator {
	if cfg.MaxAttempts < 1 {
		cfg.MaxAttempts = 1
	}
	return &Generator{provider: p, cfg: cfg, log: logger.Component("questiongen")}
}

// Generate drafts and validates one question. It does not store it.
func (g *Generator) Generate(ctx context.Context, in Input) (*store.Question, error) {
	ctx = llm.WithPurpose(ctx, "question-gen")

	req := llm.UserPrompt(systemPrompt, buildPrompt(in, g.cfg))
	req.Schema = QuestionSchema
	req.MaxTokens = g.cfg.MaxTokens
	req.Temperature = g.cfg.Temperature

	resp, err := g.provider.Generate(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("generate question: %w", err)
	}
	var d draft
	if err := json.Unmarshal(resp.Content, &d); err != nil {
		return nil, fmt.Errorf("decode generated question: %w", err)
	}
	for _, v := range g.cfg.Validators {
		if verr := v.Validate(&d, in); verr != nil {
			return nil, verr
		}
	}

	return &store.Question{
		TechStackID: in.Stack.ID,
		Title:       d.Title,
		Content:     d.Content,
		Difficulty:  string(in.Difficulty),
		Options:     d.Options,
		Answer:      d.Answer,
		RewardExp:   in.Difficulty.DefaultReward(),
		Explanation: d.Explanation,
		Source:      store.SourceGenerated,
	}, nil
}

// FillRequest asks Fill for Count new questions.
type FillRequest struct {
	UserID     int64
	Stack      catalog.TechStack
	Difficulty quiz.Difficulty
	Topic      string
	Count      int
}

// Fill generates and stores up to req.Count questions. Rejected drafts are
// retried up to MaxAttempts times each. It returns what was stored, along
// with the error that stopped it early, if any.
func (g *Generator) Fill(ctx context.Context, bank Bank, req FillRequest) ([]store.Question, error) {
	if req.Count < 1 {
		return nil, nil
	}
	titles, err := bank.Titles(ctx, req.Stack.ID)
	if err != nil {
		return nil, err
	}
	wrong, err := bank.WrongAnswers(ctx, req.UserID, req.Stack.ID)
	if err != nil {
		return nil, err
	}
	in := Input{
		Stack:       req.Stack,
		Difficulty:  req.Difficulty,
		Topic:       req.Topic,
		PriorTitles: titles,
	}
	for _, w := range wrong {
		in.Mistakes = append(in.Mistakes, w.Title)
	}

	var out []store.Question
	for len(out) < req.Count {
		q, err := g.generateWithRetry(ctx, in)
		if err != nil {
			return out, err
		}
		if err := bank.Create(ctx, q); err != nil {
			return out, fmt.Errorf("store generated question: %w", err)
		}
		out = append(out, *q)
		in.PriorTitles = append(in.PriorTitles, q.Title)
		g.log.Info().Str("stack", req.Stack.ID).Int64("question", q.ID).Str("title", q.Title).Msg("question generated")
	}
	return out, nil
}

func (g *Generator) generateWithRetry(ctx context.Context, in Input) (*store.Question, error) {
	var lastErr error
	for attempt := 1; attempt <= g.cfg.MaxAttempts; attempt++ {
		q, err := g.Generate(ctx, in)
		if err == nil {
			return q, nil
		}
		lastErr = err
		var verr *ValidationError
		if !errors.As(err, &verr) || !verr.Retryable {
			return nil, err
		}
		g.log.Debug().Int("attempt", attempt).Str("validator", verr.Validator).Msg(verr.Message)
	}
	return nil, fmt.Errorf("no valid question after %d attempts: %w", g.cfg.MaxAttempts, lastErr)
}
