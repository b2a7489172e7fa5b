package badges

import (
	"embed"
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/yungbote/cbl-backend/internal/domain/cbl"
	"github.com/yungbote/cbl-backend/internal/domain/gamification"
)

const catalogEnv = "BADGE_CATALOG_YAML"

//go:embed catalog.yaml
var catalogFS embed.FS

type yamlCatalog struct {
	Catalog string                    `yaml:"catalog"`
	Version int                       `yaml:"version"`
	Badges  []gamification.Definition `yaml:"badges"`
	Nudges  []Nudge                   `yaml:"nudges"`
}

// Nudge is an inspiration card shown during a phase.
type Nudge struct {
	ID     string    `yaml:"id" json:"id"`
	Phase  cbl.Phase `yaml:"phase" json:"phase"`
	Title  string    `yaml:"title" json:"title"`
	Prompt string    `yaml:"prompt" json:"prompt"`
}

// Catalog is the immutable badge registry. Build it once with Load and share the pointer.
type Catalog struct {
	defs      []gamification.Definition
	byID      map[string]int
	byTrigger map[Trigger][]int
	nudges    []Nudge
	totalXP   int
}

// Load reads the catalog from BADGE_CATALOG_YAML when set, otherwise the embedded copy.
func Load() (*Catalog, error) {
	data, err := readCatalog()
	if err != nil {
		return nil, err
	}
	return Parse(data)
}

// Embedded parses the catalog compiled into the binary.
func Embedded() (*Catalog, error) {
	data, err := catalogFS.ReadFile("catalog.yaml")
	if err != nil {
		return nil, err
	}
	return Parse(data)
}

func readCatalog() ([]byte, error) {
	if path := strings.TrimSpace(os.Getenv(catalogEnv)); path != "" {
		return os.ReadFile(path)
	}
	return catalogFS.ReadFile("catalog.yaml")
}

func Parse(data []byte) (*Catalog, error) {
	var doc yamlCatalog
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse badge catalog: %w", err)
	}
	if err := validateCatalog(&doc); err != nil {
		return nil, err
	}
	c := &Catalog{
		defs:      make([]gamification.Definition, 0, len(doc.Badges)),
		byID:      make(map[string]int, len(doc.Badges)),
		byTrigger: map[Trigger][]int{},
		nudges:    doc.Nudges,
	}
	for _, def := range doc.Badges {
		def.ID = strings.TrimSpace(def.ID)
		t, _ := ParseTrigger(def.Trigger)
		def.Trigger = t.String()
		idx := len(c.defs)
		c.defs = append(c.defs, def)
		c.byID[def.ID] = idx
		c.byTrigger[t] = append(c.byTrigger[t], idx)
		c.totalXP += def.XP
	}
	return c, nil
}

func validateCatalog(doc *yamlCatalog) error {
	if doc == nil {
		return errors.New("missing catalog")
	}
	if len(doc.Badges) == 0 {
		return errors.New("badge catalog: no badges defined")
	}
	seen := map[string]bool{}
	for i, def := range doc.Badges {
		id := strings.TrimSpace(def.ID)
		if id == "" {
			return fmt.Errorf("badge catalog: badge %d has no id", i)
		}
		if seen[id] {
			return fmt.Errorf("badge catalog: duplicate badge id: %s", id)
		}
		seen[id] = true
		if strings.TrimSpace(def.Title) == "" {
			return fmt.Errorf("badge catalog: %s has no title", id)
		}
		if def.XP < 0 {
			return fmt.Errorf("badge catalog: %s has negative xp", id)
		}
		if !def.Category.Valid() {
			return fmt.Errorf("badge catalog: %s has unknown category %q", id, def.Category)
		}
		if !def.Rarity.Valid() {
			return fmt.Errorf("badge catalog: %s has unknown rarity %q", id, def.Rarity)
		}
		t, ok := ParseTrigger(def.Trigger)
		if !ok {
			return fmt.Errorf("badge catalog: %s has unknown trigger %q", id, def.Trigger)
		}
		if def.Threshold < 0 || (def.Threshold > 0 && !t.IsCount()) {
			return fmt.Errorf("badge catalog: %s has invalid threshold %d for %s", id, def.Threshold, t)
		}
	}
	nudgeIDs := map[string]bool{}
	for i, n := range doc.Nudges {
		if strings.TrimSpace(n.ID) == "" || nudgeIDs[n.ID] {
			return fmt.Errorf("badge catalog: nudge %d has a missing or duplicate id", i)
		}
		nudgeIDs[n.ID] = true
		if !n.Phase.Valid() {
			return fmt.Errorf("badge catalog: nudge %s has unknown phase %q", n.ID, n.Phase)
		}
	}
	return nil
}

func (c *Catalog) Lookup(id string) (gamification.Definition, bool) {
	if c == nil {
		return gamification.Definition{}, false
	}
	idx, ok := c.byID[strings.TrimSpace(id)]
	if !ok {
		return gamification.Definition{}, false
	}
	return c.defs[idx], true
}

// All returns the definitions in catalog order.
func (c *Catalog) All() []gamification.Definition {
	if c == nil {
		return nil
	}
	out := make([]gamification.Definition, len(c.defs))
	copy(out, c.defs)
	return out
}

// Filter narrows the catalog; zero fields match everything.
type Filter struct {
	Category gamification.Category
	Rarity   gamification.Rarity
}

func (c *Catalog) Filter(f Filter) []gamification.Definition {
	if c == nil {
		return nil
	}
	out := []gamification.Definition{}
	for _, def := range c.defs {
		if f.Category != "" && def.Category != f.Category {
			continue
		}
		if f.Rarity != "" && def.Rarity != f.Rarity {
			continue
		}
		out = append(out, def)
	}
	return out
}

// RulesFor returns the definitions a trigger can grant.
func (c *Catalog) RulesFor(t Trigger) []gamification.Definition {
	if c == nil {
		return nil
	}
	idxs := c.byTrigger[t]
	out := make([]gamification.Definition, 0, len(idxs))
	for _, idx := range idxs {
		out = append(out, c.defs[idx])
	}
	return out
}

func (c *Catalog) Size() int {
	if c == nil {
		return 0
	}
	return len(c.defs)
}

// TotalXP is the XP obtainable by earning every badge.
func (c *Catalog) TotalXP() int {
	if c == nil {
		return 0
	}
	return c.totalXP
}
