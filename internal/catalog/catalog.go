// Package catalog holds the static game content: badge definitions, the
// tech stacks a character can be attached to, and the collectible animals.
//
// A Catalog is built once at startup and passed to the services that need
// it. Nothing in this package is a process-wide singleton.
package catalog

import (
	"cmp"
	_ "embed"
	"fmt"
	"os"
	"slices"

	"github.com/codepet/codepet/internal/progression"
)

//go:embed catalog.yaml
var defaultYAML []byte

// TechStack is a technology a user can learn.
type TechStack struct {
	ID    string `yaml:"id" json:"id"`
	Name  string `yaml:"name" json:"name"`
	Icon  string `yaml:"icon" json:"icon"`
	Color string `yaml:"color" json:"color"`
}

// Animal is a collectible character species with one emoji per growth stage.
type Animal struct {
	ID     string                             `yaml:"id" json:"id"`
	Name   string                             `yaml:"name" json:"name"`
	Stages map[progression.GrowthStage]string `yaml:"stages" json:"stages"`
}

// Emoji returns the animal's emoji for the growth stage reached at level.
func (a Animal) Emoji(level int) string {
	if e := a.Stages[progression.StageForLevel(level)]; e != "" {
		return e
	}
	return FallbackEmoji
}

// FallbackEmoji is shown for animals missing from the catalog.
const FallbackEmoji = "🐾"

// Catalog is the validated set of game content.
type Catalog struct {
	Badges     []progression.Badge `yaml:"badges" json:"badges"`
	TechStacks []TechStack         `yaml:"tech_stacks" json:"tech_stacks"`
	Animals    []Animal            `yaml:"animals" json:"animals"`
}

// Default returns the built-in catalog.
func Default() *Catalog {
	c, err := Parse(defaultYAML)
	if err != nil {
		panic(fmt.Sprintf("catalog: embedded catalog is invalid: %v", err))
	}
	return c
}

// Load reads and validates a catalog file.
func Load(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}
	c, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("catalog %s: %w", path, err)
	}
	return c, nil
}

// TechStack looks up a tech stack by id.
func (c *Catalog) TechStack(id string) (TechStack, bool) {
	i := slices.IndexFunc(c.TechStacks, func(t TechStack) bool { return t.ID == id })
	if i < 0 {
		return TechStack{}, false
	}
	return c.TechStacks[i], true
}

// TechStackName returns the display name for id, or id itself when unknown.
func (c *Catalog) TechStackName(id string) string {
	if t, ok := c.TechStack(id); ok {
		return t.Name
	}
	return id
}

// Animal looks up an animal by id.
func (c *Catalog) Animal(id string) (Animal, bool) {
	i := slices.IndexFunc(c.Animals, func(a Animal) bool { return a.ID == id })
	if i < 0 {
		return Animal{}, false
	}
	return c.Animals[i], true
}

// AnimalEmoji returns the emoji for an animal at level, falling back to a
// paw print for unknown animals.
func (c *Catalog) AnimalEmoji(id string, level int) string {
	if a, ok := c.Animal(id); ok {
		return a.Emoji(level)
	}
	return FallbackEmoji
}

// Badge looks up a badge by id.
func (c *Catalog) Badge(id string) (progression.Badge, bool) {
	i := slices.IndexFunc(c.Badges, func(b progression.Badge) bool { return b.ID == id })
	if i < 0 {
		return progression.Badge{}, false
	}
	return c.Badges[i], true
}

// BadgesByTier returns the badges sorted by tier, keeping catalog order
// within a tier.
func (c *Catalog) BadgesByTier() []progression.Badge {
	out := slices.Clone(c.Badges)
	slices.SortStableFunc(out, func(a, b progression.Badge) int {
		return cmp.Compare(a.Tier.Rank(), b.Tier.Rank())
	})
	return out
}
