package store

import (
	"context"
	"fmt"

	entsql "entgo.io/ent/dialect/sql"
)

// SolvedRepo answers read queries over solved-question flags. Flags are
// written through CharacterRepo.Save as part of a character's solved set.
type SolvedRepo struct {
	q querier
}

// IsSolved reports whether the user has solved the question.
func (r *SolvedRepo) IsSolved(ctx context.Context, userID, questionID int64) (bool, error) {
	n, err := count(ctx, r.q, "solved_questions",
		entsql.And(entsql.EQ("user_id", userID), entsql.EQ("question_id", questionID)))
	return n > 0, err
}

// IDs returns the set of question ids the user solved, optionally limited
// to one tech stack.
func (r *SolvedRepo) IDs(ctx context.Context, userID int64, stackID string) (map[int64]bool, error) {
	sel := builder.Select("question_id").From(builder.Table("solved_questions")).
		Where(entsql.EQ("user_id", userID))
	if stackID != "" {
		sel.Where(entsql.EQ("tech_stack_id", stackID))
	}
	rows, err := query(ctx, r.q, sel)
	if err != nil {
		return nil, fmt.Errorf("list solved: %w", err)
	}
	defer rows.Close()

	out := make(map[int64]bool)
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan solved: %w", err)
		}
		out[id] = true
	}
	return out, rows.Err()
}

// CountByUser returns how many questions the user solved across stacks.
func (r *SolvedRepo) CountByUser(ctx context.Context, userID int64) (int, error) {
	return count(ctx, r.q, "solved_questions", entsql.EQ("user_id", userID))
}
