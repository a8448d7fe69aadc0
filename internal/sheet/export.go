package sheet

import (
	"fmt"

	"github.com/codepet/codepet/internal/catalog"
	"github.com/codepet/codepet/internal/progression"
	"github.com/codepet/codepet/internal/store"
	"github.com/xuri/excelize/v2"
)

const (
	characterSheet = "Characters"
	sessionSheet   = "Sessions"
	questionSheet  = "Questions"
)

var (
	characterColumns = []string{
		"id", "tech stack", "animal", "level", "experience", "to next level",
		"total experience", "study minutes", "streak", "longest streak",
		"last study", "badges", "solved",
	}
	sessionColumns = []string{"character", "tech stack", "date", "minutes", "experience", "notes"}
)

// ExportProgress writes a workbook with a Characters and a Sessions sheet.
func ExportProgress(path string, cat *catalog.Catalog, characters []progression.Character, sessions []store.StudySession) error {
	f := excelize.NewFile()
	defer f.Close()

	stackOf := make(map[string]string, len(characters))
	f.SetSheetName(f.GetSheetName(0), characterSheet)
	w := newWriter(f, characterSheet)
	w.row(toAny(characterColumns)...)
	for _, c := range characters {
		stackOf[c.ID] = cat.TechStackName(c.TechStackID)
		last := ""
		if c.LastStudyDate != nil {
			last = c.LastStudyDate.Format("2006-01-02")
		}
		w.row(c.ID, stackOf[c.ID], c.Animal, c.Level, c.Experience, c.ExperienceToNextLevel,
			c.TotalExperience(), c.TotalStudyMinutes, c.Streak, c.LongestStreak,
			last, len(c.EarnedBadges), len(c.SolvedProblems))
	}
	if w.err != nil {
		return w.err
	}

	if _, err := f.NewSheet(sessionSheet); err != nil {
		return err
	}
	w = newWriter(f, sessionSheet)
	w.row(toAny(sessionColumns)...)
	for _, s := range sessions {
		w.row(s.CharacterID, stackOf[s.CharacterID], s.StudiedAt.Format("2006-01-02 15:04"),
			s.DurationMinutes, s.ExperienceGained, s.Notes)
	}
	if w.err != nil {
		return w.err
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("save workbook: %w", err)
	}
	return nil
}

// ExportQuestions writes questions in the layout ImportQuestions reads.
func ExportQuestions(path string, questions []store.Question) error {
	f := excelize.NewFile()
	defer f.Close()

	f.SetSheetName(f.GetSheetName(0), questionSheet)
	w := newWriter(f, questionSheet)
	w.row(toAny(QuestionColumns)...)
	for _, q := range questions {
		cells := []any{q.TechStackID, q.Title, q.Content, q.Difficulty}
		for i := range 4 {
			opt := ""
			if i < len(q.Options) {
				opt = q.Options[i]
			}
			cells = append(cells, opt)
		}
		cells = append(cells, q.Answer, q.RewardExp, q.Explanation)
		w.row(cells...)
	}
	if w.err != nil {
		return w.err
	}
	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("save workbook: %w", err)
	}
	return nil
}

// writer appends rows to one sheet and keeps the first error.
type writer struct {
	f     *excelize.File
	sheet string
	next  int
	err   error
}

func newWriter(f *excelize.File, sheet string) *writer {
	return &writer{f: f, sheet: sheet, next: 1}
}

func (w *writer) row(cells ...any) {
	if w.err != nil {
		return
	}
	for i, v := range cells {
		name, err := excelize.CoordinatesToCellName(i+1, w.next)
		if err == nil {
			err = w.f.SetCellValue(w.sheet, name, v)
		}
		if err != nil {
			w.err = fmt.Errorf("write %s row %d: %w", w.sheet, w.next, err)
			return
		}
	}
	w.next++
}

func toAny(ss []string) []any {
	out := make([]any, len(ss))
	for i, s := range ss {
		out[i] = s
	}
	return out
}
