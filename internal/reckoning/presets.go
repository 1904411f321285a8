package reckoning

import (
	"embed"
	"errors"
	"fmt"
	"path"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed presets/*.yaml
var presetFS embed.FS

// ErrUnknownPreset is returned by LoadPreset for names not in PresetNames.
var ErrUnknownPreset = errors.New("unknown preset calendar")

// PresetNames lists the bundled calendars in sorted order.
func PresetNames() []string {
	entries, err := presetFS.ReadDir("presets")
	if err != nil {
		return nil
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, strings.TrimSuffix(e.Name(), path.Ext(e.Name())))
	}
	sort.Strings(names)
	return names
}

// LoadPreset returns a fresh copy of a bundled calendar. Callers own the
// result and may modify it.
func LoadPreset(name string) (*Calendar, error) {
	data, err := presetFS.ReadFile("presets/" + name + ".yaml")
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrUnknownPreset, name)
	}
	cal, err := ParseYAML(data)
	if err != nil {
		return nil, fmt.Errorf("preset %s: %w", name, err)
	}
	return cal, nil
}

// ParseYAML decodes a calendar in the native YAML layout (JSON is valid
// YAML, so native JSON documents decode too) and validates it.
func ParseYAML(data []byte) (*Calendar, error) {
	var cal Calendar
	if err := yaml.Unmarshal(data, &cal); err != nil {
		return nil, fmt.Errorf("decode calendar: %w", err)
	}
	if err := cal.Validate(); err != nil {
		return nil, err
	}
	return &cal, nil
}
