package roast

import (
	"fmt"
	"math/rand/v2"
	"strings"
)

// Intensity is the caller-selected roast severity.
type Intensity string

const (
	Light  Intensity = "light"
	Savage Intensity = "savage"
)

// ParseIntensity maps a request value to an Intensity. Anything other than
// "savage" (case-insensitive) is Light.
func ParseIntensity(s string) Intensity {
	if strings.EqualFold(strings.TrimSpace(s), string(Savage)) {
		return Savage
	}
	return Light
}

// Temperature is the sampling temperature passed to the generator.
func (i Intensity) Temperature() float64 {
	if i == Savage {
		return 1.0
	}
	return 0.9
}

// Picker returns a uniform index in [0, n). *rand.Rand from math/rand/v2
// satisfies it.
type Picker interface {
	IntN(n int) int
}

// globalPicker uses the package-level math/rand/v2 source, which is safe for
// concurrent use.
type globalPicker struct{}

func (globalPicker) IntN(n int) int { return rand.IntN(n) }

// Selection records the options drawn for one prompt.
type Selection struct {
	Voice     string
	Angle     string
	Format    string
	Wildcard  string
	Intensity Intensity
}

// Prompt is a fully assembled generator request.
type Prompt struct {
	System      string
	User        string
	Temperature float64
	Selection   Selection
}

// Composer assembles prompts from a catalog. It is safe for concurrent use
// when its Picker is.
type Composer struct {
	catalog Catalog
	picker  Picker
}

// NewComposer returns a Composer over the built-in catalog. A nil picker uses
// the global random source. A *rand.Rand is not safe for concurrent use, so
// seeded pickers belong in tests.
func NewComposer(picker Picker) *Composer {
	return NewComposerWithCatalog(DefaultCatalog(), picker)
}

// NewComposerWithCatalog is NewComposer with a caller-supplied catalog, which
// should come from ParseCatalog.
func NewComposerWithCatalog(c Catalog, picker Picker) *Composer {
	if picker == nil {
		picker = globalPicker{}
	}
	return &Composer{catalog: c.clone(), picker: picker}
}

// Select draws one entry from each layer, in the order voice, angle, format,
// wildcard. Draws are independent and with replacement.
func (c *Composer) Select(intensity Intensity) Selection {
	return Selection{
		Voice:     c.pick(c.catalog.Voices),
		Angle:     c.pick(c.catalog.Angles),
		Format:    c.pick(c.catalog.Formats),
		Wildcard:  c.pick(c.catalog.Wildcards),
		Intensity: intensity,
	}
}

func (c *Composer) pick(options []string) string {
	if len(options) == 0 {
		return ""
	}
	return options[c.picker.IntN(len(options))]
}

// Compose draws a Selection and builds the prompt around context.
func (c *Composer) Compose(context string, intensity Intensity) Prompt {
	sel := c.Select(intensity)
	return Prompt{
		System:      c.system(sel),
		User:        c.user(context, sel),
		Temperature: intensity.Temperature(),
		Selection:   sel,
	}
}

func (c *Composer) system(sel Selection) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "You are %s, roasting a golfer using their real handicap data.\n", sel.Voice)
	if sel.Intensity == Savage {
		sb.WriteString("Be ruthless. Profanity is allowed. Hit below the belt and mock their delusions, their wasted money and their wasted time.\n")
	} else {
		sb.WriteString("Keep it playful and clean. No profanity. Tease hard but leave them laughing.\n")
	}
	sb.WriteString("2-3 sentences MAX. No warmup, no filler. Every sentence should sting.\n")
	sb.WriteString("Use only the stats you are given. Never invent numbers.")
	return sb.String()
}

func (c *Composer) user(context string, sel Selection) string {
	var sb strings.Builder
	sb.WriteString("Roast this golfer.\n\n")
	if context = strings.TrimSpace(context); context != "" {
		sb.WriteString(context)
		sb.WriteString("\n\n")
	}
	fmt.Fprintf(&sb, "FOCUS: %s\n", sel.Angle)
	fmt.Fprintf(&sb, "DELIVERY STYLE: %s\n", sel.Format)
	if sel.Wildcard != "" {
		fmt.Fprintf(&sb, "INCLUDE: %s\n", sel.Wildcard)
	}
	if len(c.catalog.HandicapGuide) > 0 {
		sb.WriteString("\nCalibrate to the handicap:\n")
		for _, line := range c.catalog.HandicapGuide {
			fmt.Fprintf(&sb, "- %s\n", line)
		}
	}
	return strings.TrimRight(sb.String(), "\n")
}
