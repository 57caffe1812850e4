package filter

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/tailscale/hujson"
)

// Mode says whether a structured value includes or excludes games.
type Mode string

const (
	Whitelist Mode = "whitelist"
	Blacklist Mode = "blacklist"
)

// ValueFilter is the structured filter for one multi-valued field.
type ValueFilter struct {
	Entries map[string]Mode `json:"entries,omitempty"`
	// AndToggle requires every whitelisted value instead of any one.
	AndToggle bool `json:"and,omitempty"`
}

// Lists splits the entries into sorted whitelist and blacklist values.
func (v ValueFilter) Lists() (white, black []string) {
	for value, mode := range v.Entries {
		switch mode {
		case Whitelist:
			white = append(white, value)
		case Blacklist:
			black = append(black, value)
		}
	}
	sort.Strings(white)
	sort.Strings(black)
	return white, black
}

// State is the structured filter state kept beside the text query.
type State struct {
	Values map[string]ValueFilter `json:"values,omitempty"`

	Broken    *bool `json:"broken,omitempty"`
	Extreme   *bool `json:"extreme,omitempty"`
	Installed *bool `json:"installed,omitempty"`
	Legacy    *bool `json:"legacy,omitempty"`

	IncludeChildren bool `json:"includeChildren,omitempty"`

	// Playlist, when non-nil, replaces all other filtering with membership
	// in the list and orders by list position.
	Playlist []string `json:"playlist,omitempty"`
}

// Set records a whitelist or blacklist entry for field.
func (s *State) Set(field, value string, mode Mode) {
	if s.Values == nil {
		s.Values = make(map[string]ValueFilter)
	}
	vf := s.Values[field]
	if vf.Entries == nil {
		vf.Entries = make(map[string]Mode)
	}
	vf.Entries[value] = mode
	s.Values[field] = vf
}

// SetAnd toggles AND semantics for field.
func (s *State) SetAnd(field string, and bool) {
	if s.Values == nil {
		s.Values = make(map[string]ValueFilter)
	}
	vf := s.Values[field]
	vf.AndToggle = and
	s.Values[field] = vf
}

// Bool returns a pointer to b, for tri-state fields.
func Bool(b bool) *bool {
	return &b
}

// ParseState reads a State from JSON. Comments and trailing commas are
// accepted.
func ParseState(data []byte) (State, error) {
	std, err := hujson.Standardize(data)
	if err != nil {
		return State{}, fmt.Errorf("filter state: %w", err)
	}
	var s State
	if err := json.Unmarshal(std, &s); err != nil {
		return State{}, fmt.Errorf("filter state: %w", err)
	}
	for field, vf := range s.Values {
		for value, mode := range vf.Entries {
			if mode != Whitelist && mode != Blacklist {
				return State{}, fmt.Errorf("filter state: %s[%q]: unknown mode %q", field, value, mode)
			}
		}
	}
	return s, nil
}
