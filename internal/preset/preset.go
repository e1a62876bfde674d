// Package preset loads named dice expressions from YAML files so tables can
// keep their house rolls ("greatsword", "fireball") by name.
package preset

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/cory-johannsen/diceodds/internal/dice"
)

// Preset is a named dice expression.
type Preset struct {
	Name        string
	Expression  string
	Description string
}

// yamlPresetFile is the top-level YAML structure for preset files.
type yamlPresetFile struct {
	Presets []yamlPreset `yaml:"presets"`
}

// yamlPreset is the YAML representation of a single preset.
type yamlPreset struct {
	Name        string `yaml:"name"`
	Expression  string `yaml:"expression"`
	Description string `yaml:"description"`
}

// Library holds loaded presets keyed by name.
type Library struct {
	presets map[string]Preset
}

// NewLibrary returns an empty Library.
func NewLibrary() *Library {
	return &Library{presets: make(map[string]Preset)}
}

// Get returns the preset with the given name.
func (l *Library) Get(name string) (Preset, bool) {
	p, ok := l.presets[name]
	return p, ok
}

// Names returns all preset names in sorted order.
func (l *Library) Names() []string {
	names := make([]string, 0, len(l.presets))
	for name := range l.presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Len returns the number of loaded presets.
func (l *Library) Len() int {
	return len(l.presets)
}

// add validates and registers a preset.
func (l *Library) add(p yamlPreset) error {
	if p.Name == "" {
		return fmt.Errorf("preset with expression %q has no name", p.Expression)
	}
	if _, exists := l.presets[p.Name]; exists {
		return fmt.Errorf("duplicate preset name %q", p.Name)
	}
	// Fail at load time rather than at the table.
	if _, err := dice.Parse(p.Expression); err != nil {
		return fmt.Errorf("preset %q: %w", p.Name, err)
	}
	l.presets[p.Name] = Preset{
		Name:        p.Name,
		Expression:  p.Expression,
		Description: p.Description,
	}
	return nil
}

// LoadBytes parses preset YAML bytes into the library.
//
// Precondition: data must be valid YAML conforming to the preset schema.
// Postcondition: every loaded preset's expression parses; on error the
// library is left with the presets added before the failure.
func (l *Library) LoadBytes(data []byte) error {
	var file yamlPresetFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return fmt.Errorf("parsing preset YAML: %w", err)
	}
	for _, p := range file.Presets {
		if err := l.add(p); err != nil {
			return err
		}
	}
	return nil
}

// LoadFile reads and loads a single preset YAML file.
func (l *Library) LoadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading preset file %s: %w", path, err)
	}
	if err := l.LoadBytes(data); err != nil {
		return fmt.Errorf("loading preset file %s: %w", path, err)
	}
	return nil
}

// LoadDir loads every .yaml/.yml file in dir into a new Library.
//
// Precondition: dir must be a readable directory.
// Postcondition: returns a Library with all presets validated, or the first
// error encountered.
func LoadDir(dir string) (*Library, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading preset directory %s: %w", dir, err)
	}

	lib := NewLibrary()
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		ext := strings.ToLower(filepath.Ext(entry.Name()))
		if ext != ".yaml" && ext != ".yml" {
			continue
		}
		if err := lib.LoadFile(filepath.Join(dir, entry.Name())); err != nil {
			return nil, err
		}
	}
	return lib, nil
}
