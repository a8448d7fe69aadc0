package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	entsql "entgo.io/ent/dialect/sql"
)

// Question is a stored multiple-choice quiz question. Answer is the
// 1-based index of the correct option.
type Question struct {
	ID          int64
	TechStackID string
	Title       string
	Content     string
	Difficulty  string
	Options     []string
	Answer      int
	RewardExp   int
	Explanation string
	Source      QuestionSource
	CreatedAt   time.Time
}

// QuestionSource records where a question came from.
type QuestionSource string

const (
	SourceSeed      QuestionSource = "seed"
	SourceImport    QuestionSource = "import"
	SourceGenerated QuestionSource = "generated"
	// SourceManual is a question typed in with quiz add.
	SourceManual QuestionSource = "manual"
)

// Valid reports whether s is one of the known sources.
func (s QuestionSource) Valid() bool {
	switch s {
	case SourceSeed, SourceImport, SourceGenerated, SourceManual:
		return true
	}
	return false
}

// QuestionFilter narrows ListQuestions. Zero fields match everything.
type QuestionFilter struct {
	TechStackID string
	Difficulty  string
	IDs         []int64
}

// QuestionRepo persists quiz questions.
type QuestionRepo struct {
	q querier
}

var questionColumns = []string{
	"id", "tech_stack_id", "title", "content", "difficulty", "options",
	"answer", "reward_exp", "explanation", "source", "created_at",
}

// Create inserts q and sets its ID.
func (r *QuestionRepo) Create(ctx context.Context, q *Question) error {
	if q.CreatedAt.IsZero() {
		q.CreatedAt = time.Now()
	}
	opts, err := json.Marshal(q.Options)
	if err != nil {
		return fmt.Errorf("encode options: %w", err)
	}
	ins := builder.Insert("questions").
		Columns(questionColumns[1:]...).
		Values(q.TechStackID, q.Title, q.Content, q.Difficulty, string(opts),
			q.Answer, q.RewardExp, q.Explanation, string(q.Source), q.CreatedAt.UTC())
	res, err := exec(ctx, r.q, ins)
	if err != nil {
		return fmt.Errorf("insert question: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("question id: %w", err)
	}
	q.ID = id
	return nil
}

// Update overwrites every editable field of q.
func (r *QuestionRepo) Update(ctx context.Context, q *Question) error {
	opts, err := json.Marshal(q.Options)
	if err != nil {
		return fmt.Errorf("encode options: %w", err)
	}
	upd := builder.Update("questions").
		Set("tech_stack_id", q.TechStackID).
		Set("title", q.Title).
		Set("content", q.Content).
		Set("difficulty", q.Difficulty).
		Set("options", string(opts)).
		Set("answer", q.Answer).
		Set("reward_exp", q.RewardExp).
		Set("explanation", q.Explanation).
		Where(entsql.EQ("id", q.ID))
	res, err := exec(ctx, r.q, upd)
	if err != nil {
		return fmt.Errorf("update question: %w", err)
	}
	return requireAffected(res, fmt.Sprintf("question %d", q.ID))
}

// Delete removes the question with id.
func (r *QuestionRepo) Delete(ctx context.Context, id int64) error {
	res, err := exec(ctx, r.q, builder.Delete("questions").Where(entsql.EQ("id", id)))
	if err != nil {
		return fmt.Errorf("delete question: %w", err)
	}
	return requireAffected(res, fmt.Sprintf("question %d", id))
}

// Get returns the question with id.
func (r *QuestionRepo) Get(ctx context.Context, id int64) (*Question, error) {
	sel := builder.Select(questionColumns...).From(builder.Table("questions")).Where(entsql.EQ("id", id))
	q, err := scanQuestion(queryRow(ctx, r.q, sel))
	if err != nil {
		return nil, notFound(err, fmt.Sprintf("question %d", id))
	}
	return q, nil
}

// List returns the questions matching f, ordered by id.
func (r *QuestionRepo) List(ctx context.Context, f QuestionFilter) ([]Question, error) {
	sel := builder.Select(questionColumns...).From(builder.Table("questions")).OrderBy("id")
	if f.TechStackID != "" {
		sel.Where(entsql.EQ("tech_stack_id", f.TechStackID))
	}
	if f.Difficulty != "" {
		sel.Where(entsql.EQ("difficulty", f.Difficulty))
	}
	if len(f.IDs) > 0 {
		ids := make([]any, len(f.IDs))
		for i, id := range f.IDs {
			ids[i] = id
		}
		sel.Where(entsql.In("id", ids...))
	}

	rows, err := query(ctx, r.q, sel)
	if err != nil {
		return nil, fmt.Errorf("list questions: %w", err)
	}
	defer rows.Close()

	var out []Question
	for rows.Next() {
		q, err := scanQuestion(rows)
		if err != nil {
			return nil, fmt.Errorf("scan question: %w", err)
		}
		out = append(out, *q)
	}
	return out, rows.Err()
}

// Titles returns the titles of every question in a tech stack.
func (r *QuestionRepo) Titles(ctx context.Context, stackID string) ([]string, error) {
	sel := builder.Select("title").From(builder.Table("questions")).
		Where(entsql.EQ("tech_stack_id", stackID)).
		OrderBy("id")
	rows, err := query(ctx, r.q, sel)
	if err != nil {
		return nil, fmt.Errorf("list titles: %w", err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var t string
		if err := rows.Scan(&t); err != nil {
			return nil, fmt.Errorf("scan title: %w", err)
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// Count returns how many questions a tech stack has.
func (r *QuestionRepo) Count(ctx context.Context, stackID string) (int, error) {
	return count(ctx, r.q, "questions", entsql.EQ("tech_stack_id", stackID))
}

func scanQuestion(s scanner) (*Question, error) {
	var (
		q    Question
		opts string
	)
	if err := s.Scan(&q.ID, &q.TechStackID, &q.Title, &q.Content, &q.Difficulty, &opts,
		&q.Answer, &q.RewardExp, &q.Explanation, &q.Source, &q.CreatedAt); err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(opts), &q.Options); err != nil {
		return nil, fmt.Errorf("decode options: %w", err)
	}
	return &q, nil
}
