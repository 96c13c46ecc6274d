// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package catalog

import (
	_ "embed"
	"fmt"
	"slices"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/danielhkuo/votematch/models"
)

// Size is the number of categories in the built-in table.
const Size = 10

//go:embed categories.yaml
var categoriesYAML []byte

type Category struct {
	ID             int      `yaml:"id" json:"id"`
	Name           string   `yaml:"name" json:"name"`
	Questions      []string `yaml:"questions" json:"questions"`
	VoterQuestions []string `yaml:"voter_questions" json:"voter_questions"`
}

func (c Category) clone() Category {
	c.Questions = slices.Clone(c.Questions)
	c.VoterQuestions = slices.Clone(c.VoterQuestions)
	return c
}

// Catalog is an immutable category table. Safe for concurrent use.
type Catalog struct {
	categories []Category
	byName     map[string]int
	byID       map[int]int
}

var loadDefault = sync.OnceValue(func() *Catalog {
	c, err := Parse(categoriesYAML)
	if err != nil {
		panic(fmt.Sprintf("catalog: embedded categories.yaml is invalid: %v", err))
	}
	return c
})

// Default returns the built-in catalog, parsed on first use.
func Default() *Catalog {
	return loadDefault()
}

// Parse builds a catalog from a YAML list of categories.
func Parse(data []byte) (*Catalog, error) {
	var entries []Category
	if err := yaml.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("failed to parse categories: %w", err)
	}
	if len(entries) == 0 {
		return nil, fmt.Errorf("catalog is empty")
	}

	c := &Catalog{
		categories: make([]Category, 0, len(entries)),
		byName:     make(map[string]int, len(entries)),
		byID:       make(map[int]int, len(entries)),
	}
	for _, e := range entries {
		if e.ID <= 0 {
			return nil, fmt.Errorf("category %q: id must be positive", e.Name)
		}
		if e.Name == "" {
			return nil, fmt.Errorf("category %d: name is required", e.ID)
		}
		if len(e.Questions) != models.VectorLen {
			return nil, fmt.Errorf("category %q: want %d questions, got %d", e.Name, models.VectorLen, len(e.Questions))
		}
		if len(e.VoterQuestions) != models.VectorLen {
			return nil, fmt.Errorf("category %q: want %d voter questions, got %d", e.Name, models.VectorLen, len(e.VoterQuestions))
		}
		key := normalize(e.Name)
		if _, dup := c.byName[key]; dup {
			return nil, fmt.Errorf("duplicate category name %q", e.Name)
		}
		if _, dup := c.byID[e.ID]; dup {
			return nil, fmt.Errorf("duplicate category id %d", e.ID)
		}
		c.byName[key] = len(c.categories)
		c.byID[e.ID] = len(c.categories)
		c.categories = append(c.categories, e.clone())
	}

	slices.SortFunc(c.categories, func(a, b Category) int { return a.ID - b.ID })
	for i, cat := range c.categories {
		c.byName[normalize(cat.Name)] = i
		c.byID[cat.ID] = i
	}
	return c, nil
}

// Lookup resolves a category by name, ignoring case.
func (c *Catalog) Lookup(name string) (Category, error) {
	i, ok := c.byName[normalize(name)]
	if !ok {
		return Category{}, fmt.Errorf("%w: %q", models.ErrCategoryNotFound, name)
	}
	return c.categories[i].clone(), nil
}

// CategoryID resolves a category name to its numeric id.
func (c *Catalog) CategoryID(name string) (int, error) {
	i, ok := c.byName[normalize(name)]
	if !ok {
		return 0, fmt.Errorf("%w: %q", models.ErrCategoryNotFound, name)
	}
	return c.categories[i].ID, nil
}

// ByID returns the category with the given id.
func (c *Catalog) ByID(id int) (Category, error) {
	i, ok := c.byID[id]
	if !ok {
		return Category{}, fmt.Errorf("%w: id %d", models.ErrCategoryNotFound, id)
	}
	return c.categories[i].clone(), nil
}

// All returns every category ordered by id.
func (c *Catalog) All() []Category {
	out := make([]Category, len(c.categories))
	for i, cat := range c.categories {
		out[i] = cat.clone()
	}
	return out
}

func (c *Catalog) Len() int {
	return len(c.categories)
}

func normalize(name string) string {
	return strings.ToLower(name)
}
