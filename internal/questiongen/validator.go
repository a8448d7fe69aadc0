package questiongen

import (
	"fmt"
	"strings"

	"github.com/codepet/codepet/internal/quiz"
)

// Validator checks a draft. Implementations must be stateless.
type Validator interface {
	Name() string
	Validate(d *draft, in Input) *ValidationError
}

const (
	maxTitleLen       = 80
	maxContentLen     = 1000
	maxExplanationLen = 600
)

// StructuralValidator checks field presence, lengths and the option set.
type StructuralValidator struct{}

func (StructuralValidator) Name() string { return "structural" }

func (v StructuralValidator) Validate(d *draft, in Input) *ValidationError {
	fail := func(format string, args ...any) *ValidationError {
		return &ValidationError{Validator: v.Name(), Message: fmt.Sprintf(format, args...), Retryable: true}
	}
	switch {
	case strings.TrimSpace(d.Title) == "":
		return fail("title is empty")
	case len(d.Title) > maxTitleLen:
		return fail("title exceeds %d characters", maxTitleLen)
	case strings.TrimSpace(d.Content) == "":
		return fail("content is empty")
	case len(d.Content) > maxContentLen:
		return fail("content exceeds %d characters", maxContentLen)
	case len(d.Explanation) > maxExplanationLen:
		return fail("explanation exceeds %d characters", maxExplanationLen)
	case len(d.Options) != quiz.OptionCount:
		return fail("got %d options, want %d", len(d.Options), quiz.OptionCount)
	case d.Answer < 1 || d.Answer > quiz.OptionCount:
		return fail("answer %d is outside 1..%d", d.Answer, quiz.OptionCount)
	}
	if got, err := quiz.ParseDifficulty(d.Difficulty); err != nil || got != in.Difficulty {
		return fail("difficulty %q, want %s", d.Difficulty, in.Difficulty)
	}

	seen := make(map[string]bool, len(d.Options))
	for i, o := range d.Options {
		key := normalize(o)
		if key == "" {
			return fail("option %d is empty", i+1)
		}
		if seen[key] {
			return fail("option %d repeats an earlier option", i+1)
		}
		seen[key] = true
	}
	return nil
}

// DuplicateValidator rejects titles already in the bank.
type DuplicateValidator struct{}

func (DuplicateValidator) Name() string { return "duplicate" }

func (v DuplicateValidator) Validate(d *draft, in Input) *ValidationError {
	title := normalize(d.Title)
	for _, prior := range in.PriorTitles {
		if normalize(prior) == title {
			return &ValidationError{Validator: v.Name(), Message: fmt.Sprintf("title %q already exists", d.Title), Retryable: true}
		}
	}
	return nil
}

func normalize(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}
