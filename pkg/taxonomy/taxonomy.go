// Package taxonomy holds the versioned reference data shared by the complaint
// classifier and the location resolver: complaint categories with weighted
// keywords, and the service center directory.
package taxonomy

import (
	"fmt"
	"sort"
	"strings"

	"github.com/anshu200710/ai-agent-sub000/pkg/speech"
	"github.com/spf13/viper"
)

// Catalog is loaded once at startup and read-only afterwards.
type Catalog struct {
	Version          string          `mapstructure:"version"`
	GeneralCategory  string          `mapstructure:"general_category"`
	OtherSubCategory string          `mapstructure:"other_sub_category"`
	Categories       []Category      `mapstructure:"categories"`
	Centers          []ServiceCenter `mapstructure:"service_centers"`
}

type Category struct {
	Name          string        `mapstructure:"name"`
	Priority      int           `mapstructure:"priority"`
	Keywords      []string      `mapstructure:"keywords"`
	SubCategories []SubCategory `mapstructure:"sub_categories"`
}

type SubCategory struct {
	Name     string   `mapstructure:"name"`
	Keywords []string `mapstructure:"keywords"`
}

type ServiceCenter struct {
	Name     string   `mapstructure:"name"`
	Aliases  []string `mapstructure:"aliases"`
	Branch   string   `mapstructure:"branch"`
	Outlet   string   `mapstructure:"outlet"`
	CityCode string   `mapstructure:"city_code"`
	Lat      float64  `mapstructure:"lat"`
	Lng      float64  `mapstructure:"lng"`
	Address  string   `mapstructure:"address"`
}

// Load reads a catalog file (YAML, JSON or TOML). An empty path yields the
// built-in catalog.
func Load(path string) (*Catalog, error) {
	if strings.TrimSpace(path) == "" {
		return Default(), nil
	}
	v := viper.New()
	v.SetConfigFile(path)
	v.SetDefault("general_category", "General")
	v.SetDefault("other_sub_category", "Other")
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}
	var c Catalog
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("unmarshal catalog: %w", err)
	}
	if err := c.Prepare(); err != nil {
		return nil, err
	}
	return &c, nil
}

// Prepare validates the catalog, normalizes every keyword and name the same
// way transcripts are normalized, and orders categories by priority.
func (c *Catalog) Prepare() error {
	if len(c.Categories) == 0 {
		return fmt.Errorf("catalog %q: no categories", c.Version)
	}
	if c.GeneralCategory == "" {
		c.GeneralCategory = "General"
	}
	if c.OtherSubCategory == "" {
		c.OtherSubCategory = "Other"
	}
	seen := make(map[string]bool, len(c.Categories))
	for i := range c.Categories {
		cat := &c.Categories[i]
		if cat.Name == "" {
			return fmt.Errorf("catalog %q: category %d has no name", c.Version, i)
		}
		if seen[cat.Name] {
			return fmt.Errorf("catalog %q: duplicate category %q", c.Version, cat.Name)
		}
		seen[cat.Name] = true
		cat.Keywords = normalizeAll(cat.Keywords)
		for j := range cat.SubCategories {
			cat.SubCategories[j].Keywords = normalizeAll(cat.SubCategories[j].Keywords)
		}
	}
	sort.SliceStable(c.Categories, func(i, j int) bool {
		return c.Categories[i].Priority > c.Categories[j].Priority
	})
	for i := range c.Centers {
		sc := &c.Centers[i]
		if sc.Name == "" {
			return fmt.Errorf("catalog %q: service center %d has no name", c.Version, i)
		}
		sc.Aliases = normalizeAll(sc.Aliases)
	}
	return nil
}

// Category returns the named category.
func (c *Catalog) Category(name string) (Category, bool) {
	for _, cat := range c.Categories {
		if cat.Name == name {
			return cat, true
		}
	}
	return Category{}, false
}

// MatchNames lists the normalized names a center answers to: its canonical
// name first, then aliases.
func (sc ServiceCenter) MatchNames() []string {
	names := make([]string, 0, 1+len(sc.Aliases))
	if n := speech.NormalizeTranscript(sc.Name); n != "" {
		names = append(names, n)
	}
	return append(names, sc.Aliases...)
}

func normalizeAll(in []string) []string {
	out := make([]string, 0, len(in))
	seen := make(map[string]bool, len(in))
	for _, s := range in {
		n := speech.NormalizeTranscript(s)
		if n == "" || seen[n] {
			continue
		}
		seen[n] = true
		out = append(out, n)
	}
	return out
}
