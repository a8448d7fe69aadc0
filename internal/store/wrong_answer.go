package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	entsql "entgo.io/ent/dialect/sql"
)

// WrongAnswer is a notebook entry for a question the user got wrong. It
// snapshots the question so the note survives later edits.
type WrongAnswer struct {
	UserID        int64
	TechStackID   string
	QuestionID    int64
	Title         string
	Content       string
	Difficulty    string
	Options       []string
	MyAnswer      int
	CorrectAnswer int
	RewardExp     int
	RecordedAt    time.Time
}

// WrongAnswerRepo persists the wrong-answer notebook.
type WrongAnswerRepo struct {
	q querier
}

var wrongAnswerColumns = []string{
	"user_id", "tech_stack_id", "question_id", "title", "content", "difficulty",
	"options", "my_answer", "correct_answer", "reward_exp", "recorded_at",
}

// Upsert records w, replacing any earlier note for the same question.
func (r *WrongAnswerRepo) Upsert(ctx context.Context, w WrongAnswer) error {
	if w.RecordedAt.IsZero() {
		w.RecordedAt = time.Now()
	}
	opts, err := json.Marshal(w.Options)
	if err != nil {
		return fmt.Errorf("encode options: %w", err)
	}
	ins := builder.Insert("wrong_answers").
		Columns(wrongAnswerColumns...).
		Values(w.UserID, w.TechStackID, w.QuestionID, w.Title, w.Content, w.Difficulty,
			string(opts), w.MyAnswer, w.CorrectAnswer, w.RewardExp, w.RecordedAt.UTC()).
		OnConflict(entsql.ConflictColumns("user_id", "question_id"), entsql.ResolveWithNewValues())
	if _, err := exec(ctx, r.q, ins); err != nil {
		return fmt.Errorf("upsert wrong answer: %w", err)
	}
	return nil
}

// List returns the user's notes, newest first. An empty stackID lists all
// stacks.
func (r *WrongAnswerRepo) List(ctx context.Context, userID int64, stackID string) ([]WrongAnswer, error) {
	sel := builder.Select(wrongAnswerColumns...).From(builder.Table("wrong_answers")).
		Where(entsql.EQ("user_id", userID)).
		OrderBy(entsql.Desc("recorded_at"), entsql.Desc("id"))
	if stackID != "" {
		sel.Where(entsql.EQ("tech_stack_id", stackID))
	}
	rows, err := query(ctx, r.q, sel)
	if err != nil {
		return nil, fmt.Errorf("list wrong answers: %w", err)
	}
	defer rows.Close()

	var out []WrongAnswer
	for rows.Next() {
		var (
			w    WrongAnswer
			opts string
		)
		if err := rows.Scan(&w.UserID, &w.TechStackID, &w.QuestionID, &w.Title, &w.Content,
			&w.Difficulty, &opts, &w.MyAnswer, &w.CorrectAnswer, &w.RewardExp, &w.RecordedAt); err != nil {
			return nil, fmt.Errorf("scan wrong answer: %w", err)
		}
		if err := json.Unmarshal([]byte(opts), &w.Options); err != nil {
			return nil, fmt.Errorf("decode options: %w", err)
		}
		out = append(out, w)
	}
	return out, rows.Err()
}

// Remove deletes the note for one question and reports whether one existed.
func (r *WrongAnswerRepo) Remove(ctx context.Context, userID, questionID int64) (bool, error) {
	del := builder.Delete("wrong_answers").
		Where(entsql.And(entsql.EQ("user_id", userID), entsql.EQ("question_id", questionID)))
	res, err := exec(ctx, r.q, del)
	if err != nil {
		return false, fmt.Errorf("remove wrong answer: %w", err)
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

// Clear deletes the user's notes, optionally only for one stack, and
// returns how many were removed.
func (r *WrongAnswerRepo) Clear(ctx context.Context, userID int64, stackID string) (int64, error) {
	where := entsql.EQ("user_id", userID)
	if stackID != "" {
		where = entsql.And(where, entsql.EQ("tech_stack_id", stackID))
	}
	res, err := exec(ctx, r.q, builder.Delete("wrong_answers").Where(where))
	if err != nil {
		return 0, fmt.Errorf("clear wrong answers: %w", err)
	}
	return res.RowsAffected()
}
