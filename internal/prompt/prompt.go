// Package prompt holds the persona catalog used to build the system message.
//
// Profiles are embedded as YAML, parsed once and never mutated afterwards.
package prompt

import (
	_ "embed"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/syntrava/assistant-gateway/internal/domain"
)

//go:embed profiles.yaml
var profilesYAML []byte

// Profile is the immutable configuration attached to a Mode.
type Profile struct {
	Mode           domain.Mode `yaml:"mode"`
	SentenceBudget int         `yaml:"sentence_budget"`
	SystemPrompt   string      `yaml:"system_prompt"`
}

type catalogYAML struct {
	Default  domain.Mode `yaml:"default"`
	Profiles []Profile   `yaml:"profiles"`
}

// Catalog maps every Mode to exactly one Profile.
type Catalog struct {
	profiles map[domain.Mode]Profile
	fallback domain.Mode
}

// Load parses the embedded catalog.
func Load() (*Catalog, error) {
	return Parse(profilesYAML)
}

// Parse builds a Catalog from YAML. Every known Mode must be present exactly
// once with a non-empty prompt and a positive sentence budget.
func Parse(data []byte) (*Catalog, error) {
	var raw catalogYAML
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("op=prompt.Parse: %w", err)
	}
	c := &Catalog{profiles: make(map[domain.Mode]Profile, len(raw.Profiles)), fallback: raw.Default}
	for _, p := range raw.Profiles {
		p.SystemPrompt = strings.TrimSpace(p.SystemPrompt)
		if _, dup := c.profiles[p.Mode]; dup {
			return nil, fmt.Errorf("op=prompt.Parse: duplicate mode %q", p.Mode)
		}
		if p.SystemPrompt == "" {
			return nil, fmt.Errorf("op=prompt.Parse: empty prompt for mode %q", p.Mode)
		}
		if p.SentenceBudget <= 0 {
			return nil, fmt.Errorf("op=prompt.Parse: sentence_budget must be positive for mode %q", p.Mode)
		}
		c.profiles[p.Mode] = p
	}
	for _, m := range domain.Modes {
		if _, ok := c.profiles[m]; !ok {
			return nil, fmt.Errorf("op=prompt.Parse: missing mode %q", m)
		}
	}
	if c.fallback == "" {
		c.fallback = domain.DefaultMode
	}
	if _, ok := c.profiles[c.fallback]; !ok {
		return nil, fmt.Errorf("op=prompt.Parse: default mode %q has no profile", c.fallback)
	}
	return c, nil
}

// Select returns the profile for mode. Unknown, empty or malformed input
// resolves to the default profile; the result is always one of the catalog entries.
func (c *Catalog) Select(mode string) Profile {
	m := domain.ParseMode(mode)
	if p, ok := c.profiles[m]; ok {
		return p
	}
	return c.profiles[c.fallback]
}

// Modes returns the catalog modes in their canonical order.
func (c *Catalog) Modes() []domain.Mode {
	out := make([]domain.Mode, 0, len(c.profiles))
	for _, m := range domain.Modes {
		if _, ok := c.profiles[m]; ok {
			out = append(out, m)
		}
	}
	return out
}
