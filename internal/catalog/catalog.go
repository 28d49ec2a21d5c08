// Package catalog loads the static content profile (ingredients, the demo
// ingredient and recipes) and derives the starter collections from it.
// A Profile is read once at startup and never mutated afterwards.
package catalog

import (
	"bytes"
	_ "embed"
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/kingrea/wasteless/internal/timefmt"
)

//go:embed default_profile.yaml
var defaultProfileYAML []byte

// Ingredient is one catalog ingredient record.
type Ingredient struct {
	ID              int     `yaml:"id"`
	Name            string  `yaml:"name"`
	Category        string  `yaml:"category"`
	CaloriesPerUnit float64 `yaml:"calories_per_unit"`
	ExpirationDate  string  `yaml:"expiration_date"`
}

// Recipe is one catalog recipe record. Ingredients are matched against the
// inventory by name.
type Recipe struct {
	ID               int      `yaml:"id"`
	Name             string   `yaml:"name"`
	Description      string   `yaml:"description"`
	Calories         int      `yaml:"calories"`
	PrepTimeMinutes  int      `yaml:"prep_time_minutes"`
	CookTimeMinutes  int      `yaml:"cook_time_minutes"`
	TotalTimeMinutes int      `yaml:"total_time_minutes"`
	Ingredients      []string `yaml:"ingredients"`
	Instructions     []string `yaml:"instructions"`
}

// Profile models the staged content document.
type Profile struct {
	Ingredients    []Ingredient `yaml:"ingredients"`
	DemoIngredient Ingredient   `yaml:"demo_ingredient"`
	Recipes        []Recipe     `yaml:"recipes"`
}

// Default parses the profile embedded in the binary.
func Default() (*Profile, error) {
	return Load(bytes.NewReader(defaultProfileYAML))
}

// MustDefault is Default for callers that cannot recover from a broken
// embedded document (tests and package-level seeds).
func MustDefault() *Profile {
	p, err := Default()
	if err != nil {
		panic(err)
	}
	return p
}

// LoadFile reads a profile from disk.
func LoadFile(path string) (*Profile, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("catalog: open %s: %w", path, err)
	}
	defer f.Close()
	p, err := Load(f)
	if err != nil {
		return nil, fmt.Errorf("catalog: %s: %w", path, err)
	}
	return p, nil
}

// Load decodes and validates a profile document.
func Load(r io.Reader) (*Profile, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("catalog: read profile: %w", err)
	}
	var p Profile
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("catalog: parse profile: %w", err)
	}
	p.normalize()
	if err := p.Validate(); err != nil {
		return nil, fmt.Errorf("catalog: %w", err)
	}
	return &p, nil
}

func (p *Profile) normalize() {
	for i := range p.Ingredients {
		p.Ingredients[i].normalize()
	}
	p.DemoIngredient.normalize()
	for i := range p.Recipes {
		r := &p.Recipes[i]
		r.Name = strings.TrimSpace(r.Name)
		r.Description = strings.TrimSpace(r.Description)
		for j := range r.Ingredients {
			r.Ingredients[j] = strings.TrimSpace(r.Ingredients[j])
		}
		if r.TotalTimeMinutes == 0 {
			r.TotalTimeMinutes = r.PrepTimeMinutes + r.CookTimeMinutes
		}
	}
}

func (in *Ingredient) normalize() {
	in.Name = strings.TrimSpace(in.Name)
	in.Category = strings.TrimSpace(in.Category)
	in.ExpirationDate = strings.TrimSpace(in.ExpirationDate)
}

// Validate enforces the shape the rest of the application relies on.
func (p *Profile) Validate() error {
	if len(p.Ingredients) == 0 {
		return fmt.Errorf("at least one ingredient is required")
	}
	seen := map[int]struct{}{}
	for i, in := range p.Ingredients {
		if err := in.validate(); err != nil {
			return fmt.Errorf("ingredients[%d]: %w", i, err)
		}
		if _, dup := seen[in.ID]; dup {
			return fmt.Errorf("ingredients[%d]: duplicate id %d", i, in.ID)
		}
		seen[in.ID] = struct{}{}
	}
	if err := p.DemoIngredient.validate(); err != nil {
		return fmt.Errorf("demo_ingredient: %w", err)
	}
	recipeIDs := map[int]struct{}{}
	for i, r := range p.Recipes {
		if r.Name == "" {
			return fmt.Errorf("recipes[%d]: name is required", i)
		}
		if _, dup := recipeIDs[r.ID]; dup {
			return fmt.Errorf("recipes[%d]: duplicate id %d", i, r.ID)
		}
		recipeIDs[r.ID] = struct{}{}
	}
	return nil
}

func (in Ingredient) validate() error {
	if in.ID <= 0 {
		return fmt.Errorf("id must be positive")
	}
	if in.Name == "" {
		return fmt.Errorf("name is required")
	}
	if _, err := timefmt.ParseISO(in.ExpirationDate); err != nil {
		return fmt.Errorf("%s: expiration_date: %w", in.Name, err)
	}
	return nil
}

// IngredientByName finds an ingredient by exact name.
func (p *Profile) IngredientByName(name string) (Ingredient, bool) {
	for _, in := range p.Ingredients {
		if in.Name == name {
			return in, true
		}
	}
	return Ingredient{}, false
}
