package questiongen

import "github.com/codepet/codepet/internal/llm"

// QuestionSchema is the structured output requested from the model.
var QuestionSchema = &llm.Schema{
	Name:        "quiz-question",
	Description: "One multiple-choice programming quiz question",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"title": map[string]any{
				"type":        "string",
				"description": "Short unique title, at most 80 characters",
			},
			"content": map[string]any{
				"type":        "string",
				"description": "The question shown to the learner. Code may be inlined with backticks.",
			},
			"difficulty": map[string]any{
				"type": "string",
				"enum": []any{"EASY", "MEDIUM", "HARD"},
			},
			"options": map[string]any{
				"type":        "array",
				"items":       map[string]any{"type": "string"},
				"description": "Exactly 4 distinct answer options",
			},
			"answer": map[string]any{
				"type":        "integer",
				"description": "1-based index of the single correct option",
			},
			"explanation": map[string]any{
				"type":        "string",
				"description": "Why the correct option is right, in two or three sentences",
			},
		},
		"required":             []any{"title", "content", "difficulty", "options", "answer", "explanation"},
		"additionalProperties": false,
	},
}
