package questiongen

import (
	"fmt"
	"strings"
)

const systemPrompt = `You write multiple-choice quiz questions for developers practising a programming technology.

Rules:
- Write exactly one question about the given technology at the given difficulty.
- EASY checks vocabulary and basic syntax. MEDIUM checks behaviour a working developer must know. HARD checks subtle semantics or edge cases.
- Give exactly 4 options. Exactly one is correct. Wrong options should be plausible mistakes, not jokes.
- answer is the 1-based position of the correct option.
- Keep the title short and specific. Never reuse a title from the "existing questions" list.
- The explanation says why the answer is right in two or three sentences.`

func buildPrompt(in Input, cfg Config) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Technology: %s\n", in.Stack.Name)
	fmt.Fprintf(&b, "Difficulty: %s\n", in.Difficulty)
	if in.Topic != "" {
		fmt.Fprintf(&b, "Topic: %s\n", in.Topic)
	}

	b.WriteString("\nExisting questions:\n")
	b.WriteString(numbered(in.PriorTitles, cfg.MaxPriorTitles))

	b.WriteString("\n\nThe learner recently got these wrong, so nearby concepts are welcome:\n")
	b.WriteString(numbered(in.Mistakes, cfg.MaxMistakes))
	return b.String()
}

// numbered lists the last max items, or "None".
func numbered(items []string, max int) string {
	if len(items) == 0 {
		return "None"
	}
	if max > 0 && len(items) > max {
		items = items[len(items)-max:]
	}
	var b strings.Builder
	for i, it := range items {
		if i > 0 {
			b.WriteByte('\n')
		}
		fmt.Fprintf(&b, "%d. %s", i+1, it)
	}
	return b.String()
}
