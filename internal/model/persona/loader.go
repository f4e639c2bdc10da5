package persona

import (
	"fmt"
	"strings"

	"github.com/BurntSushi/toml"
)

type personaFile struct {
	Personas []Persona `toml:"persona"`
}

// LoadFile reads personas from a TOML file of [[persona]] tables.
// Entries are merged over Seed(): a matching id replaces the built-in persona,
// new ids are appended. Empty greeting/fallback fields inherit the defaults.
func LoadFile(path string) ([]Persona, error) {
	var file personaFile
	if _, err := toml.DecodeFile(path, &file); err != nil {
		return nil, fmt.Errorf("decode persona file %s: %w", path, err)
	}
	return Merge(Seed(), file.Personas)
}

// Merge overlays extra personas onto base, keeping base order.
// A persona without a prompt must carry a title, tone or traits so a
// system message can be built from them.
func Merge(base, extra []Persona) ([]Persona, error) {
	merged := append([]Persona(nil), base...)
	index := make(map[string]int, len(merged))
	for i, p := range merged {
		index[p.ID] = i
	}

	for _, p := range extra {
		p.ID = strings.TrimSpace(p.ID)
		if p.ID == "" {
			return nil, fmt.Errorf("persona %q: id is required", p.Name)
		}
		if !p.describable() {
			return nil, fmt.Errorf("persona %s: prompt or title/tone/traits is required", p.ID)
		}
		applyDefaults(&p)

		if i, ok := index[p.ID]; ok {
			merged[i] = p
			continue
		}
		index[p.ID] = len(merged)
		merged = append(merged, p)
	}
	return merged, nil
}

func applyDefaults(p *Persona) {
	if p.Name == "" {
		p.Name = p.ID
	}
	if p.Greeting == "" {
		p.Greeting = DefaultGreeting
	}
	if p.Fallback == "" {
		p.Fallback = DefaultFallback
	}
	if p.Placeholder == "" {
		p.Placeholder = "Message " + p.Name + "..."
	}
}

func (p Persona) describable() bool {
	if strings.TrimSpace(p.Prompt) != "" {
		return true
	}
	return strings.TrimSpace(p.Title) != "" || strings.TrimSpace(p.Tone) != "" || len(p.Traits) > 0
}
