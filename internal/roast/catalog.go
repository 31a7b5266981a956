package roast

import (
	_ "embed"
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

//go:embed catalog.yaml
var catalogYAML []byte

// Catalog holds the option layers a Composer draws from. Voices, angles and
// formats must be non-empty with no blank entries. Blank wildcards are allowed
// and mean "no wildcard".
type Catalog struct {
	Voices        []string `yaml:"voices"`
	Angles        []string `yaml:"angles"`
	Formats       []string `yaml:"formats"`
	Wildcards     []string `yaml:"wildcards"`
	HandicapGuide []string `yaml:"handicap_guide"`
}

// ParseCatalog decodes and validates a YAML catalog.
func ParseCatalog(data []byte) (Catalog, error) {
	var c Catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return Catalog{}, fmt.Errorf("roast: decode catalog: %w", err)
	}
	for i, w := range c.Wildcards {
		c.Wildcards[i] = strings.TrimSpace(w)
	}
	if err := c.validate(); err != nil {
		return Catalog{}, err
	}
	return c, nil
}

func (c Catalog) validate() error {
	var errs []error
	check := func(name string, entries []string) {
		if len(entries) == 0 {
			errs = append(errs, fmt.Errorf("roast: catalog has no %s", name))
			return
		}
		for i, e := range entries {
			if strings.TrimSpace(e) == "" {
				errs = append(errs, fmt.Errorf("roast: catalog %s[%d] is blank", name, i))
			}
		}
	}
	check("voices", c.Voices)
	check("angles", c.Angles)
	check("formats", c.Formats)
	return errors.Join(errs...)
}

func (c Catalog) clone() Catalog {
	return Catalog{
		Voices:        slices.Clone(c.Voices),
		Angles:        slices.Clone(c.Angles),
		Formats:       slices.Clone(c.Formats),
		Wildcards:     slices.Clone(c.Wildcards),
		HandicapGuide: slices.Clone(c.HandicapGuide),
	}
}

var defaultCatalog = sync.OnceValue(func() Catalog {
	c, err := ParseCatalog(catalogYAML)
	if err != nil {
		panic(err)
	}
	return c
})

// DefaultCatalog returns a copy of the built-in catalog.
func DefaultCatalog() Catalog { return defaultCatalog().clone() }
