package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	entsql "entgo.io/ent/dialect/sql"
	"github.com/codepet/codepet/internal/progression"
)

// CharacterRepo persists characters with their earned badges and solved
// problems.
type CharacterRepo struct {
	q   querier
	seq *sequenceCounter
}

var characterColumns = []string{
	"id", "user_id", "tech_stack_id", "animal", "level", "experience",
	"last_study_date", "total_study_minutes", "streak", "longest_streak", "created_at",
}

// Create inserts a new character. A second character for the same
// (user, tech stack) pair returns ErrConflict.
func (r *CharacterRepo) Create(ctx context.Context, c progression.Character) error {
	now := time.Now().UTC()
	if c.CreatedAt.IsZero() {
		c.CreatedAt = now
	}
	ins := builder.Insert("characters").
		Columns(append(characterColumns, "updated_at")...).
		Values(c.ID, c.UserID, c.TechStackID, c.Animal, c.Level, c.Experience,
			nullTime(c.LastStudyDate), c.TotalStudyMinutes, c.Streak, c.LongestStreak,
			c.CreatedAt.UTC(), now)
	if _, err := exec(ctx, r.q, ins); err != nil {
		return fmt.Errorf("insert character: %w", err)
	}
	return r.saveRelations(ctx, c)
}

// Save writes the character's mutable fields and appends any badges or
// solved problems not yet stored. Stored badges are never removed.
func (r *CharacterRepo) Save(ctx context.Context, c progression.Character) error {
	upd := builder.Update("characters").
		Set("level", c.Level).
		Set("experience", c.Experience).
		Set("last_study_date", nullTime(c.LastStudyDate)).
		Set("total_study_minutes", c.TotalStudyMinutes).
		Set("streak", c.Streak).
		Set("longest_streak", c.LongestStreak).
		Set("updated_at", time.Now().UTC()).
		Where(entsql.EQ("id", c.ID))
	res, err := exec(ctx, r.q, upd)
	if err != nil {
		return fmt.Errorf("update character: %w", err)
	}
	if err := requireAffected(res, "character "+c.ID); err != nil {
		return err
	}
	return r.saveRelations(ctx, c)
}

func (r *CharacterRepo) saveRelations(ctx context.Context, c progression.Character) error {
	badges, err := r.badgeIDs(ctx, c.ID)
	if err != nil {
		return err
	}
	have := make(map[string]bool, len(badges))
	for _, id := range badges {
		have[id] = true
	}
	now := time.Now().UTC()
	for _, id := range c.EarnedBadges {
		if have[id] {
			continue
		}
		seq, err := r.seq.Next(ctx, r.q)
		if err != nil {
			return err
		}
		ins := builder.Insert("character_badges").
			Columns("character_id", "badge_id", "sequence", "awarded_at").
			Values(c.ID, id, seq, now)
		if _, err := exec(ctx, r.q, ins); err != nil {
			return fmt.Errorf("insert badge %s: %w", id, err)
		}
		have[id] = true
	}

	for _, qid := range c.SolvedProblems {
		ins := builder.Insert("solved_questions").
			Columns("user_id", "character_id", "tech_stack_id", "question_id", "solved_at").
			Values(c.UserID, c.ID, c.TechStackID, qid, now).
			OnConflict(entsql.ConflictColumns("character_id", "question_id"), entsql.DoNothing())
		if _, err := exec(ctx, r.q, ins); err != nil {
			return fmt.Errorf("insert solved question %d: %w", qid, err)
		}
	}
	return nil
}

// Get returns the character with id, normalized so ExperienceToNextLevel
// matches its level.
func (r *CharacterRepo) Get(ctx context.Context, id string) (progression.Character, error) {
	return r.one(ctx, entsql.EQ("id", id), "character "+id)
}

// ByUserAndStack returns the user's character for a tech stack.
func (r *CharacterRepo) ByUserAndStack(ctx context.Context, userID int64, stackID string) (progression.Character, error) {
	return r.one(ctx,
		entsql.And(entsql.EQ("user_id", userID), entsql.EQ("tech_stack_id", stackID)),
		fmt.Sprintf("character for user %d stack %s", userID, stackID))
}

// ListByUser returns the user's characters in creation order.
func (r *CharacterRepo) ListByUser(ctx context.Context, userID int64) ([]progression.Character, error) {
	return r.list(ctx, entsql.EQ("user_id", userID))
}

// ListAll returns every character in creation order.
func (r *CharacterRepo) ListAll(ctx context.Context) ([]progression.Character, error) {
	return r.list(ctx, nil)
}

// Delete removes a character with its badges, sessions and solved flags.
func (r *CharacterRepo) Delete(ctx context.Context, id string) error {
	res, err := exec(ctx, r.q, builder.Delete("characters").Where(entsql.EQ("id", id)))
	if err != nil {
		return fmt.Errorf("delete character: %w", err)
	}
	return requireAffected(res, "character "+id)
}

func (r *CharacterRepo) one(ctx context.Context, where *entsql.Predicate, what string) (progression.Character, error) {
	sel := builder.Select(characterColumns...).From(builder.Table("characters")).Where(where)
	c, err := scanCharacter(queryRow(ctx, r.q, sel))
	if err != nil {
		return progression.Character{}, notFound(err, what)
	}
	if err := r.loadRelations(ctx, &c); err != nil {
		return progression.Character{}, err
	}
	return c.Normalize()
}

func (r *CharacterRepo) list(ctx context.Context, where *entsql.Predicate) ([]progression.Character, error) {
	sel := builder.Select(characterColumns...).From(builder.Table("characters")).
		OrderBy("created_at", "id")
	if where != nil {
		sel.Where(where)
	}
	rows, err := query(ctx, r.q, sel)
	if err != nil {
		return nil, fmt.Errorf("list characters: %w", err)
	}
	var out []progression.Character
	for rows.Next() {
		c, err := scanCharacter(rows)
		if err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan character: %w", err)
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, err
	}
	// Close before issuing the relation queries: the pool has one connection.
	rows.Close()

	for i := range out {
		if err := r.loadRelations(ctx, &out[i]); err != nil {
			return nil, err
		}
		if out[i], err = out[i].Normalize(); err != nil {
			return nil, fmt.Errorf("character %s: %w", out[i].ID, err)
		}
	}
	return out, nil
}

func (r *CharacterRepo) loadRelations(ctx context.Context, c *progression.Character) error {
	badges, err := r.badgeIDs(ctx, c.ID)
	if err != nil {
		return err
	}
	c.EarnedBadges = badges

	sel := builder.Select("question_id").From(builder.Table("solved_questions")).
		Where(entsql.EQ("character_id", c.ID)).
		OrderBy("id")
	rows, err := query(ctx, r.q, sel)
	if err != nil {
		return fmt.Errorf("load solved questions: %w", err)
	}
	defer rows.Close()
	c.SolvedProblems = nil
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return fmt.Errorf("scan solved question: %w", err)
		}
		c.SolvedProblems = append(c.SolvedProblems, id)
	}
	return rows.Err()
}

func (r *CharacterRepo) badgeIDs(ctx context.Context, characterID string) ([]string, error) {
	sel := builder.Select("badge_id").From(builder.Table("character_badges")).
		Where(entsql.EQ("character_id", characterID)).
		OrderBy("sequence")
	rows, err := query(ctx, r.q, sel)
	if err != nil {
		return nil, fmt.Errorf("load badges: %w", err)
	}
	defer rows.Close()
	var out []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan badge: %w", err)
		}
		out = append(out, id)
	}
	return out, rows.Err()
}

func scanCharacter(s scanner) (progression.Character, error) {
	var (
		c    progression.Character
		last sql.NullTime
	)
	err := s.Scan(&c.ID, &c.UserID, &c.TechStackID, &c.Animal, &c.Level, &c.Experience,
		&last, &c.TotalStudyMinutes, &c.Streak, &c.LongestStreak, &c.CreatedAt)
	if err != nil {
		return c, err
	}
	if last.Valid {
		t := last.Time
		c.LastStudyDate = &t
	}
	return c, nil
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: t.UTC(), Valid: true}
}
