// Package tracker applies study sessions and quiz rewards to characters.
//
// Every change is a read-modify-write of one character: load, run the
// progression engine, persist. The tracker serializes those cycles per
// character and runs each inside one store transaction, so concurrent
// updates to the same character never lose each other.
package tracker

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/codepet/codepet/internal/catalog"
	"github.com/codepet/codepet/internal/logger"
	"github.com/codepet/codepet/internal/progression"
	"github.com/codepet/codepet/internal/store"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

var (
	// ErrDuplicateSkill is returned when a user already has a character for
	// the tech stack.
	ErrDuplicateSkill = errors.New("character already exists for this tech stack")

	// ErrUnknownStack is returned for a tech stack id missing from the catalog.
	ErrUnknownStack = errors.New("unknown tech stack")

	// ErrUnknownAnimal is returned for an animal id missing from the catalog.
	ErrUnknownAnimal = errors.New("unknown animal")

	// ErrNotFound is returned when the character does not exist.
	ErrNotFound = errors.New("character not found")
)

// Progress describes the outcome of one experience award.
type Progress struct {
	Character        progression.Character
	LevelBefore      int
	ExperienceGained int
	NewBadges        []string
}

// LevelsGained returns how many levels the award crossed.
func (p *Progress) LevelsGained() int {
	return p.Character.Level - p.LevelBefore
}

// Tracker owns character mutations.
type Tracker struct {
	store   *store.Store
	catalog *catalog.Catalog
	log     zerolog.Logger
	now     func() time.Time
	loc     *time.Location

	locks sync.Map // character id -> *sync.Mutex
}

// Option configures a Tracker.
type Option func(*Tracker)

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(t *Tracker) { t.now = now }
}

// WithLocation sets the time zone that defines calendar days for streaks.
func WithLocation(loc *time.Location) Option {
	return func(t *Tracker) { t.loc = loc }
}

// WithLogger overrides the component logger.
func WithLogger(l zerolog.Logger) Option {
	return func(t *Tracker) { t.log = l }
}

// New creates a Tracker over st using the badge rules in cat.
func New(st *store.Store, cat *catalog.Catalog, opts ...Option) *Tracker {
	t := &Tracker{
		store:   st,
		catalog: cat,
		log:     logger.Component("tracker"),
		now:     time.Now,
		loc:     time.Local,
	}
	for _, o := range opts {
		o(t)
	}
	return t
}

// Catalog returns the catalog the tracker evaluates badges against.
func (t *Tracker) Catalog() *catalog.Catalog {
	return t.catalog
}

// Now returns the tracker's current time.
func (t *Tracker) Now() time.Time {
	return t.now()
}

// AttachCharacter creates a level 1 character for a user and tech stack.
func (t *Tracker) AttachCharacter(ctx context.Context, userID int64, stackID, animal string) (progression.Character, error) {
	if _, ok := t.catalog.TechStack(stackID); !ok {
		return progression.Character{}, fmt.Errorf("%w: %q", ErrUnknownStack, stackID)
	}
	if _, ok := t.catalog.Animal(animal); !ok {
		return progression.Character{}, fmt.Errorf("%w: %q", ErrUnknownAnimal, animal)
	}

	c := progression.NewCharacter(uuid.NewString(), userID, stackID, animal, t.now())
	err := t.store.InTx(ctx, func(tx *store.Repos) error {
		if _, err := tx.Users.ByID(ctx, userID); err != nil {
			return err
		}
		_, err := tx.Characters.ByUserAndStack(ctx, userID, stackID)
		switch {
		case err == nil:
			return ErrDuplicateSkill
		case !errors.Is(err, store.ErrNotFound):
			return err
		}
		return tx.Characters.Create(ctx, c)
	})
	if errors.Is(err, store.ErrConflict) {
		err = ErrDuplicateSkill
	}
	if err != nil {
		return progression.Character{}, fmt.Errorf("attach %s character: %w", stackID, err)
	}

	t.log.Info().Int64("user", userID).Str("stack", stackID).Str("animal", animal).
		Str("character", c.ID).Msg("character attached")
	return c, nil
}

// Character returns one character.
func (t *Tracker) Character(ctx context.Context, id string) (progression.Character, error) {
	c, err := t.store.Characters.Get(ctx, id)
	return c, mapNotFound(err)
}

// CharacterFor returns the user's character for a tech stack.
func (t *Tracker) CharacterFor(ctx context.Context, userID int64, stackID string) (progression.Character, error) {
	c, err := t.store.Characters.ByUserAndStack(ctx, userID, stackID)
	return c, mapNotFound(err)
}

// Characters returns the user's characters.
func (t *Tracker) Characters(ctx context.Context, userID int64) ([]progression.Character, error) {
	return t.store.Characters.ListByUser(ctx, userID)
}

// Sessions returns the character's most recent study sessions.
func (t *Tracker) Sessions(ctx context.Context, characterID string, limit int) ([]store.StudySession, error) {
	return t.store.Sessions.ListByCharacter(ctx, characterID, store.QueryOpts{Limit: limit})
}

// LogStudy records minutes of study at the current time.
func (t *Tracker) LogStudy(ctx context.Context, characterID string, minutes int, notes string) (*Progress, error) {
	return t.LogStudyAt(ctx, characterID, minutes, notes, t.now())
}

// LogStudyAt records minutes of study at a given time: it recomputes the
// streak, adds the minutes, applies minutes*10 experience, awards badges
// and appends a session record. at may be in the past but not the future.
func (t *Tracker) LogStudyAt(ctx context.Context, characterID string, minutes int, notes string, at time.Time) (*Progress, error) {
	if minutes <= 0 {
		return nil, fmt.Errorf("%w: study minutes must be positive, got %d", progression.ErrInvalidArgument, minutes)
	}
	now := t.now()
	if at.After(now) {
		return nil, fmt.Errorf("%w: study time %s is in the future", progression.ErrInvalidArgument, at.Format(time.RFC3339))
	}
	gained, err := progression.StudyExperience(minutes)
	if err != nil {
		return nil, err
	}

	p, err := t.update(ctx, characterID, func(tx *store.Repos, c progression.Character) (progression.Character, int, error) {
		sessions, err := tx.Sessions.ListByCharacter(ctx, c.ID, store.QueryOpts{})
		if err != nil {
			return c, 0, err
		}
		c.Streak, c.LongestStreak = streaks(c, sessions, at, now, t.loc)
		c.TotalStudyMinutes += minutes
		if c.LastStudyDate == nil || at.After(*c.LastStudyDate) {
			at := at
			c.LastStudyDate = &at
		}
		return c, gained, nil
	}, func(tx *store.Repos, p *Progress) error {
		return tx.Sessions.Append(ctx, &store.StudySession{
			CharacterID:      characterID,
			StudiedAt:        at,
			DurationMinutes:  minutes,
			Notes:            notes,
			ExperienceGained: gained,
		})
	})
	if err != nil {
		return nil, fmt.Errorf("log study: %w", err)
	}

	t.log.Info().Str("character", characterID).Int("minutes", minutes).
		Int("level", p.Character.Level).Int("levels_gained", p.LevelsGained()).
		Strs("badges", p.NewBadges).Msg("study logged")
	return p, nil
}

// CreditQuizReward marks a problem solved and awards its experience. A
// problem already in the character's solved set awards nothing, so
// crediting is idempotent.
func (t *Tracker) CreditQuizReward(ctx context.Context, characterID string, questionID int64, reward int) (*Progress, error) {
	if reward < 0 {
		return nil, fmt.Errorf("%w: reward %d is negative", progression.ErrInvalidArgument, reward)
	}

	p, err := t.update(ctx, characterID, func(tx *store.Repos, c progression.Character) (progression.Character, int, error) {
		if c.HasSolved(questionID) {
			return c, 0, nil
		}
		c.SolvedProblems = append(c.SolvedProblems, questionID)
		return c, reward, nil
	}, nil)
	if err != nil {
		return nil, fmt.Errorf("credit quiz reward: %w", err)
	}

	t.log.Info().Str("character", characterID).Int64("question", questionID).
		Int("exp", p.ExperienceGained).Int("level", p.Character.Level).
		Strs("badges", p.NewBadges).Msg("quiz reward credited")
	return p, nil
}

// DecayStreaks resets the streak of every character that has not studied
// since before yesterday and returns how many were reset.
func (t *Tracker) DecayStreaks(ctx context.Context) (int, error) {
	now := t.now()
	all, err := t.store.Characters.ListAll(ctx)
	if err != nil {
		return 0, fmt.Errorf("decay streaks: %w", err)
	}

	reset := 0
	for _, c := range all {
		if c.Streak == 0 || c.LastStudyDate == nil || dayGap(*c.LastStudyDate, now, t.loc) <= 1 {
			continue
		}
		changed, err := t.resetStreak(ctx, c.ID, now)
		if err != nil {
			return reset, fmt.Errorf("decay streaks: %w", err)
		}
		if changed {
			reset++
		}
	}
	if reset > 0 {
		t.log.Info().Int("characters", reset).Msg("streaks reset")
	}
	return reset, nil
}

func (t *Tracker) resetStreak(ctx context.Context, id string, now time.Time) (bool, error) {
	unlock := t.lock(id)
	defer unlock()

	changed := false
	err := t.store.InTx(ctx, func(tx *store.Repos) error {
		c, err := tx.Characters.Get(ctx, id)
		if err != nil {
			return err
		}
		// Re-check under the lock: a study may have landed meanwhile.
		if c.Streak == 0 || c.LastStudyDate == nil || dayGap(*c.LastStudyDate, now, t.loc) <= 1 {
			return nil
		}
		c.Streak = 0
		changed = true
		return tx.Characters.Save(ctx, c)
	})
	return changed, err
}

type mutateFunc func(tx *store.Repos, c progression.Character) (progression.Character, int, error)

// update runs one serialized read-modify-write cycle: mutate adjusts the
// loaded character and returns the experience to award, then the engine
// applies experience and badges, and after may append related records.
func (t *Tracker) update(ctx context.Context, id string, mutate mutateFunc, after func(*store.Repos, *Progress) error) (*Progress, error) {
	unlock := t.lock(id)
	defer unlock()

	var p *Progress
	err := t.store.InTx(ctx, func(tx *store.Repos) error {
		before, err := tx.Characters.Get(ctx, id)
		if err != nil {
			return mapNotFound(err)
		}

		c, gained, err := mutate(tx, before.Clone())
		if err != nil {
			return err
		}
		c, err = progression.ApplyExperience(c, gained)
		if err != nil {
			return err
		}
		c, earned := progression.AwardBadges(c, t.catalog.Badges)

		if err := tx.Characters.Save(ctx, c); err != nil {
			return err
		}
		p = &Progress{
			Character:        c,
			LevelBefore:      before.Level,
			ExperienceGained: gained,
			NewBadges:        earned,
		}
		if after != nil {
			return after(tx, p)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return p, nil
}

func (t *Tracker) lock(id string) func() {
	m, _ := t.locks.LoadOrStore(id, &sync.Mutex{})
	mu := m.(*sync.Mutex)
	mu.Lock()
	return mu.Unlock
}

func mapNotFound(err error) error {
	if errors.Is(err, store.ErrNotFound) {
		return fmt.Errorf("%w: %v", ErrNotFound, err)
	}
	return err
}
