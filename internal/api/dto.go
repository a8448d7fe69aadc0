package api

import (
	"time"

	"github.com/codepet/codepet/internal/catalog"
	"github.com/codepet/codepet/internal/progression"
	"github.com/codepet/codepet/internal/quiz"
	"github.com/codepet/codepet/internal/ranking"
	"github.com/codepet/codepet/internal/store"
	"github.com/codepet/codepet/internal/tracker"
)

type SignupRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AuthResult is returned by signup and login.
type AuthResult struct {
	UserID int64  `json:"userId"`
	Name   string `json:"name"`
	Email  string `json:"email"`
	Token  string `json:"token"`
}

// Animal is a character choice with its baby emoji.
type Animal struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Emoji string `json:"emoji"`
}

// SaveSkillRequest attaches a character. CharacterID is the animal id.
type SaveSkillRequest struct {
	UserID      int64  `json:"userId"`
	SkillID     string `json:"skillId"`
	CharacterID string `json:"characterId"`
}

// Character is a character as shown to clients.
type Character struct {
	ID                    string     `json:"id"`
	UserID                int64      `json:"userId"`
	SkillID               string     `json:"skillId"`
	SkillName             string     `json:"skillName"`
	Animal                string     `json:"animal"`
	Emoji                 string     `json:"emoji"`
	Stage                 string     `json:"stage"`
	Level                 int        `json:"level"`
	Experience            int        `json:"experience"`
	ExperienceToNextLevel int        `json:"experienceToNextLevel"`
	TotalExperience       int        `json:"totalExperience"`
	LastStudyDate         *time.Time `json:"lastStudyDate"`
	TotalStudyTime        int        `json:"totalStudyTime"`
	Streak                int        `json:"streak"`
	LongestStreak         int        `json:"longestStreak"`
	Badges                []string   `json:"badges"`
	SolvedProblems        []int64    `json:"solvedProblems"`
	Emotion               string     `json:"emotion"`
	EmotionEmoji          string     `json:"emotionEmoji"`
	Message               string     `json:"message"`
}

// FromCharacter renders c as seen at now.
func FromCharacter(cat *catalog.Catalog, c progression.Character, now time.Time) Character {
	name := cat.TechStackName(c.TechStackID)
	emotion := c.Emotion(now)
	badges := c.EarnedBadges
	if badges == nil {
		badges = []string{}
	}
	solved := c.SolvedProblems
	if solved == nil {
		solved = []int64{}
	}
	return Character{
		ID:                    c.ID,
		UserID:                c.UserID,
		SkillID:               c.TechStackID,
		SkillName:             name,
		Animal:                c.Animal,
		Emoji:                 cat.AnimalEmoji(c.Animal, c.Level),
		Stage:                 string(progression.StageForLevel(c.Level)),
		Level:                 c.Level,
		Experience:            c.Experience,
		ExperienceToNextLevel: c.ExperienceToNextLevel,
		TotalExperience:       c.TotalExperience(),
		LastStudyDate:         c.LastStudyDate,
		TotalStudyTime:        c.TotalStudyMinutes,
		Streak:                c.Streak,
		LongestStreak:         c.LongestStreak,
		Badges:                badges,
		SolvedProblems:        solved,
		Emotion:               string(emotion),
		EmotionEmoji:          emotion.Emoji(),
		Message:               emotion.Message(name),
	}
}

// StudyRecordRequest logs a study session. StudiedAt defaults to now and
// may not be in the future.
type StudyRecordRequest struct {
	StudyTime int        `json:"studyTime"`
	Notes     string     `json:"notes"`
	StudiedAt *time.Time `json:"studiedAt,omitempty"`
}

// ProgressResult reports what a study session or quiz reward changed.
type ProgressResult struct {
	Character        Character           `json:"character"`
	LevelBefore      int                 `json:"levelBefore"`
	LevelsGained     int                 `json:"levelsGained"`
	ExperienceGained int                 `json:"experienceGained"`
	NewBadges        []progression.Badge `json:"newBadges"`
}

// FromProgress renders p.
func FromProgress(cat *catalog.Catalog, p *tracker.Progress, now time.Time) ProgressResult {
	out := ProgressResult{
		Character:        FromCharacter(cat, p.Character, now),
		LevelBefore:      p.LevelBefore,
		LevelsGained:     p.LevelsGained(),
		ExperienceGained: p.ExperienceGained,
		NewBadges:        []progression.Badge{},
	}
	for _, id := range p.NewBadges {
		if b, ok := cat.Badge(id); ok {
			out.NewBadges = append(out.NewBadges, b)
		}
	}
	return out
}

// User is the public part of an account.
type User struct {
	ID        int64     `json:"userId"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"createdAt"`
}

// UserProfile is GET /user/{userId}.
type UserProfile struct {
	User       User            `json:"user"`
	Profile    ranking.Profile `json:"profile"`
	Characters []Character     `json:"characters"`
}

// FromUser drops credentials.
func FromUser(u *store.User) User {
	return User{ID: u.ID, Name: u.Name, Email: u.Email, CreatedAt: u.CreatedAt}
}

// RankingResult is GET /ranking. Me is set when userId is given.
type RankingResult struct {
	Entries []ranking.Entry `json:"entries"`
	Me      *ranking.Entry  `json:"me,omitempty"`
}

// QuestionSummary is a row of a question list.
type QuestionSummary struct {
	ID         int64  `json:"id"`
	Title      string `json:"title"`
	Difficulty string `json:"difficulty"`
	RewardExp  int    `json:"rewardExp"`
	Solved     bool   `json:"solved"`
}

// QuestionList is GET /questions/skill/{skillId}.
type QuestionList struct {
	Questions []QuestionSummary `json:"questions"`
	Total     int               `json:"total"`
	Solved    int               `json:"solved"`
}

// FromListing renders l.
func FromListing(l *quiz.Listing) QuestionList {
	out := QuestionList{Questions: []QuestionSummary{}, Total: l.Total, Solved: l.SolvedCount}
	for _, q := range l.Questions {
		out.Questions = append(out.Questions, QuestionSummary{
			ID:         q.ID,
			Title:      q.Title,
			Difficulty: string(q.Difficulty),
			RewardExp:  q.RewardExp,
			Solved:     q.Solved,
		})
	}
	return out
}

// Question is a question without its answer.
type Question struct {
	ID         int64    `json:"id"`
	SkillID    string   `json:"skillId"`
	Title      string   `json:"title"`
	Content    string   `json:"content"`
	Difficulty string   `json:"difficulty"`
	Options    []string `json:"options"`
	RewardExp  int      `json:"rewardExp"`
}

// FromQuestion hides the answer and explanation.
func FromQuestion(q *store.Question) Question {
	return Question{
		ID:         q.ID,
		SkillID:    q.TechStackID,
		Title:      q.Title,
		Content:    q.Content,
		Difficulty: q.Difficulty,
		Options:    q.Options,
		RewardExp:  q.RewardExp,
	}
}

// SubmitRequest answers a question. Answer is 1-based.
type SubmitRequest struct {
	UserID int64 `json:"userId"`
	Answer int   `json:"answer"`
}

// SubmitResult reveals the answer after a submission.
type SubmitResult struct {
	Correct       bool            `json:"correct"`
	FirstSolve    bool            `json:"firstSolve"`
	CorrectAnswer int             `json:"correctAnswer"`
	Explanation   string          `json:"explanation"`
	Progress      *ProgressResult `json:"progress,omitempty"`
}

// FromResult renders r.
func FromResult(cat *catalog.Catalog, r *quiz.Result, now time.Time) SubmitResult {
	out := SubmitResult{
		Correct:       r.Correct,
		FirstSolve:    r.FirstSolve,
		CorrectAnswer: r.Question.Answer,
		Explanation:   r.Question.Explanation,
	}
	if r.Progress != nil {
		p := FromProgress(cat, r.Progress, now)
		out.Progress = &p
	}
	return out
}

// WrongAnswer is a notebook entry.
type WrongAnswer struct {
	QuestionID    int64     `json:"questionId"`
	SkillID       string    `json:"skillId"`
	Title         string    `json:"title"`
	Content       string    `json:"content"`
	Difficulty    string    `json:"difficulty"`
	Options       []string  `json:"options"`
	MyAnswer      int       `json:"myAnswer"`
	CorrectAnswer int       `json:"correctAnswer"`
	RewardExp     int       `json:"rewardExp"`
	RecordedAt    time.Time `json:"recordedAt"`
}

// FromWrongAnswer renders w.
func FromWrongAnswer(w store.WrongAnswer) WrongAnswer {
	return WrongAnswer{
		QuestionID:    w.QuestionID,
		SkillID:       w.TechStackID,
		Title:         w.Title,
		Content:       w.Content,
		Difficulty:    w.Difficulty,
		Options:       w.Options,
		MyAnswer:      w.MyAnswer,
		CorrectAnswer: w.CorrectAnswer,
		RewardExp:     w.RewardExp,
		RecordedAt:    w.RecordedAt,
	}
}

// ClearResult reports how many notebook entries were removed.
type ClearResult struct {
	Removed int64 `json:"removed"`
}
