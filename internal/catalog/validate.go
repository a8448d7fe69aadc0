package catalog

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/codepet/codepet/internal/progression"
	"github.com/santhosh-tekuri/jsonschema/v6"
	"go.yaml.in/yaml/v3"
)

//go:embed schema.json
var schemaJSON []byte

var compiledSchema = sync.OnceValues(func() (*jsonschema.Schema, error) {
	doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(schemaJSON))
	if err != nil {
		return nil, fmt.Errorf("parse schema: %w", err)
	}
	c := jsonschema.NewCompiler()
	const url = "schema://catalog.json"
	if err := c.AddResource(url, doc); err != nil {
		return nil, fmt.Errorf("add resource: %w", err)
	}
	return c.Compile(url)
})

// Parse decodes a YAML catalog document, checks it against the catalog
// JSON schema, then checks the cross-entry rules the schema cannot express.
func Parse(data []byte) (*Catalog, error) {
	var doc any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decode yaml: %w", err)
	}

	// Round-trip through JSON so the validator sees JSON-native types.
	raw, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("normalize document: %w", err)
	}
	normalized, err := jsonschema.UnmarshalJSON(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("normalize document: %w", err)
	}

	schema, err := compiledSchema()
	if err != nil {
		return nil, fmt.Errorf("compile schema: %w", err)
	}
	if err := schema.Validate(normalized); err != nil {
		return nil, fmt.Errorf("schema validation failed: %w", err)
	}

	var c Catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("decode catalog: %w", err)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// Validate checks id uniqueness, known badge types and tiers, and animal
// stage coverage. All problems are reported together.
func (c *Catalog) Validate() error {
	var errs []error

	badgeIDs := make(map[string]bool, len(c.Badges))
	for _, b := range c.Badges {
		if badgeIDs[b.ID] {
			errs = append(errs, fmt.Errorf("duplicate badge id %q", b.ID))
		}
		badgeIDs[b.ID] = true
		if !b.Type.Known() {
			errs = append(errs, fmt.Errorf("badge %q: unknown type %q", b.ID, b.Type))
		}
		if b.Tier.Rank() < 0 {
			errs = append(errs, fmt.Errorf("badge %q: unknown tier %q", b.ID, b.Tier))
		}
		if b.Requirement < 0 {
			errs = append(errs, fmt.Errorf("badge %q: negative requirement %d", b.ID, b.Requirement))
		}
	}

	stackIDs := make(map[string]bool, len(c.TechStacks))
	for _, t := range c.TechStacks {
		if stackIDs[t.ID] {
			errs = append(errs, fmt.Errorf("duplicate tech stack id %q", t.ID))
		}
		stackIDs[t.ID] = true
	}

	animalIDs := make(map[string]bool, len(c.Animals))
	for _, a := range c.Animals {
		if animalIDs[a.ID] {
			errs = append(errs, fmt.Errorf("duplicate animal id %q", a.ID))
		}
		animalIDs[a.ID] = true
		for _, s := range progression.AllStages() {
			if a.Stages[s] == "" {
				errs = append(errs, fmt.Errorf("animal %q: missing %s stage", a.ID, s))
			}
		}
	}

	return errors.Join(errs...)
}
