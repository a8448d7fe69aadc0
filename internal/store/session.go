package store

import (
	"context"
	"fmt"
	"time"

	entsql "entgo.io/ent/dialect/sql"
	"github.com/google/uuid"
)

// StudySession is one logged block of study time.
type StudySession struct {
	ID               string
	CharacterID      string
	Sequence         int64
	StudiedAt        time.Time
	DurationMinutes  int
	Notes            string
	ExperienceGained int
}

// QueryOpts configures list queries with filtering and pagination.
type QueryOpts struct {
	Limit int       // max results (0 = unlimited)
	From  time.Time // timestamp >= From
	To    time.Time // timestamp <= To
}

func (o QueryOpts) apply(sel *entsql.Selector, column string) {
	if !o.From.IsZero() {
		sel.Where(entsql.GTE(column, o.From.UTC()))
	}
	if !o.To.IsZero() {
		sel.Where(entsql.LTE(column, o.To.UTC()))
	}
	if o.Limit > 0 {
		sel.Limit(o.Limit)
	}
}

// SessionRepo appends and lists study sessions.
type SessionRepo struct {
	q   querier
	seq *sequenceCounter
}

// Append stores s, assigning its ID and sequence.
func (r *SessionRepo) Append(ctx context.Context, s *StudySession) error {
	seq, err := r.seq.Next(ctx, r.q)
	if err != nil {
		return err
	}
	s.ID = uuid.NewString()
	s.Sequence = seq
	ins := builder.Insert("study_sessions").
		Columns("id", "character_id", "sequence", "studied_at", "duration_minutes", "notes", "experience_gained").
		Values(s.ID, s.CharacterID, s.Sequence, s.StudiedAt.UTC(), s.DurationMinutes, s.Notes, s.ExperienceGained)
	if _, err := exec(ctx, r.q, ins); err != nil {
		return fmt.Errorf("insert study session: %w", err)
	}
	return nil
}

// ListByCharacter returns the character's sessions, newest first.
func (r *SessionRepo) ListByCharacter(ctx context.Context, characterID string, opts QueryOpts) ([]StudySession, error) {
	sel := builder.Select("id", "character_id", "sequence", "studied_at", "duration_minutes", "notes", "experience_gained").
		From(builder.Table("study_sessions")).
		Where(entsql.EQ("character_id", characterID)).
		OrderBy(entsql.Desc("sequence"))
	opts.apply(sel, "studied_at")

	rows, err := query(ctx, r.q, sel)
	if err != nil {
		return nil, fmt.Errorf("list study sessions: %w", err)
	}
	defer rows.Close()

	var out []StudySession
	for rows.Next() {
		var s StudySession
		if err := rows.Scan(&s.ID, &s.CharacterID, &s.Sequence, &s.StudiedAt,
			&s.DurationMinutes, &s.Notes, &s.ExperienceGained); err != nil {
			return nil, fmt.Errorf("scan study session: %w", err)
		}
		out = append(out, s)
	}
	return out, rows.Err()
}
