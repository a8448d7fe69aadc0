// Package questiongen drafts multiple-choice quiz questions with an LLM,
// checks them and stores the ones that pass.
package questiongen

import (
	"fmt"

	"github.com/codepet/codepet/internal/catalog"
	"github.com/codepet/codepet/internal/quiz"
)

// Input is everything the prompt is built from.
type Input struct {
	Stack      catalog.TechStack
	Difficulty quiz.Difficulty

	// Topic optionally narrows the question, e.g. "goroutines".
	Topic string

	// PriorTitles are titles already in the bank for this stack.
	PriorTitles []string

	// Mistakes are titles from the learner's wrong-answer notebook.
	Mistakes []string
}

// draft is the model output before validation.
type draft struct {
	Title       string   `json:"title"`
	Content     string   `json:"content"`
	Difficulty  string   `json:"difficulty"`
	Options     []string `json:"options"`
	Answer      int      `json:"answer"`
	Explanation string   `json:"explanation"`
}

// ValidationError says why a draft was rejected.
type ValidationError struct {
	Validator string
	Message   string

	// Retryable drafts may pass on a fresh generation.
	Retryable bool
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s check: %s", e.Validator, e.Message)
}
