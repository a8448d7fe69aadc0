package quiz

import (
	"context"
	_ "embed"
	"fmt"

	"github.com/codepet/codepet/internal/store"
	"go.yaml.in/yaml/v3"
)

//go:embed seed.yaml
var seedYAML []byte

type seedQuestion struct {
	Stack       string   `yaml:"stack"`
	Title       string   `yaml:"title"`
	Content     string   `yaml:"content"`
	Difficulty  string   `yaml:"difficulty"`
	Options     []string `yaml:"options"`
	Answer      int      `yaml:"answer"`
	Reward      int      `yaml:"reward"`
	Explanation string   `yaml:"explanation"`
}

// Seed stores the built-in starter questions for every stack that has no
// questions yet and returns how many were added.
func (s *Service) Seed(ctx context.Context) (int, error) {
	var seeds []seedQuestion
	if err := yaml.Unmarshal(seedYAML, &seeds); err != nil {
		return 0, fmt.Errorf("decode seed questions: %w", err)
	}

	empty := map[string]bool{}
	added := 0
	for _, sq := range seeds {
		isEmpty, checked := empty[sq.Stack]
		if !checked {
			n, err := s.store.Questions.Count(ctx, sq.Stack)
			if err != nil {
				return added, err
			}
			isEmpty = n == 0
			empty[sq.Stack] = isEmpty
		}
		if !isEmpty {
			continue
		}
		q := &store.Question{
			TechStackID: sq.Stack,
			Title:       sq.Title,
			Content:     sq.Content,
			Difficulty:  sq.Difficulty,
			Options:     sq.Options,
			Answer:      sq.Answer,
			RewardExp:   sq.Reward,
			Explanation: sq.Explanation,
			Source:      store.SourceSeed,
		}
		if err := s.Create(ctx, q); err != nil {
			return added, fmt.Errorf("seed %q: %w", sq.Title, err)
		}
		added++
	}
	if added > 0 {
		s.log.Info().Int("questions", added).Msg("seeded starter questions")
	}
	return added, nil
}
