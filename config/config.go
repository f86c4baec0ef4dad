// Package config loads and validates the options of an obfuscation run.
package config

import (
	"errors"
	"fmt"
	"os"
	"slices"

	"gopkg.in/yaml.v3"

	"github.com/veilkit/obfuscator/naming"
)

// Config selects which categories of identifiers a run obfuscates.
type Config struct {
	// ObfuscateHierarchyLabels renames every node below the subject root.
	ObfuscateHierarchyLabels bool `yaml:"obfuscate_hierarchy_labels"`

	// ExposedParameters controls the exposed parameter list and menus.
	ExposedParameters ExposedParameters `yaml:"exposed_parameters"`

	// Meshes controls mesh cloning.
	Meshes Meshes `yaml:"meshes"`

	// Materials controls material cloning.
	Materials Materials `yaml:"materials"`

	// ObfuscateAudio clones audio clips.
	ObfuscateAudio bool `yaml:"obfuscate_audio"`

	// PreserveSpecialLeafNames keeps the preserved top-level nodes (the face
	// mesh node) and their shape keys intact.
	PreserveSpecialLeafNames bool `yaml:"preserve_special_leaf_names"`
}

// ExposedParameters controls the exposed control surface.
type ExposedParameters struct {
	Enabled bool `yaml:"enabled"`

	// ObfuscateIndividualParameters renames the selected parameters across
	// every behavior graph, menu and physics module.
	ObfuscateIndividualParameters bool `yaml:"obfuscate_individual_parameters"`

	// SelectedParameterNames are the parameters to rename.
	SelectedParameterNames []string `yaml:"selected_parameter_names,omitempty"`
}

// Meshes controls mesh cloning.
type Meshes struct {
	Enabled            bool `yaml:"enabled"`
	ObfuscateShapeKeys bool `yaml:"obfuscate_shape_keys"`
}

// Materials controls material cloning.
type Materials struct {
	Enabled           bool `yaml:"enabled"`
	ObfuscateTextures bool `yaml:"obfuscate_textures"`
}

// Default returns a configuration with every category enabled and no
// parameter selected.
func Default() *Config {
	return &Config{
		ObfuscateHierarchyLabels: true,
		ExposedParameters: ExposedParameters{
			Enabled:                       true,
			ObfuscateIndividualParameters: true,
		},
		Meshes:         Meshes{Enabled: true, ObfuscateShapeKeys: true},
		Materials:      Materials{Enabled: true, ObfuscateTextures: true},
		ObfuscateAudio: true,
	}
}

// Load reads a YAML configuration file. Keys missing from the file keep
// their Default values.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}
	return Parse(data)
}

// Parse decodes a YAML configuration document over Default and validates it.
func Parse(data []byte) (*Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// UnmarshalYAML decodes over Default so that partial documents, such as a
// marker embedded in a scene file, keep the default switches.
func (c *Config) UnmarshalYAML(value *yaml.Node) error {
	type plain Config
	p := plain(*Default())
	if err := value.Decode(&p); err != nil {
		return err
	}
	*c = Config(p)
	return nil
}

// Save writes c as YAML to path.
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config file %s: %w", path, err)
	}
	return nil
}

// Validate checks the parameter selection for empty or repeated names.
func (c *Config) Validate() error {
	var errs []error
	seen := make(map[string]struct{}, len(c.ExposedParameters.SelectedParameterNames))
	for i, name := range c.ExposedParameters.SelectedParameterNames {
		if name == "" {
			errs = append(errs, fmt.Errorf("selected_parameter_names[%d]: empty name", i))
			continue
		}
		if _, dup := seen[name]; dup {
			errs = append(errs, fmt.Errorf("selected_parameter_names[%d]: duplicate name %q", i, name))
		}
		seen[name] = struct{}{}
	}
	if len(errs) > 0 {
		return fmt.Errorf("invalid config: %w", errors.Join(errs...))
	}
	return nil
}

// Clone returns a deep copy of c.
func (c *Config) Clone() *Config {
	out := *c
	out.ExposedParameters.SelectedParameterNames = slices.Clone(c.ExposedParameters.SelectedParameterNames)
	return &out
}

// ParametersEnabled reports whether selected parameters are renamed.
func (c *Config) ParametersEnabled() bool {
	return c.ExposedParameters.Enabled && c.ExposedParameters.ObfuscateIndividualParameters
}

// ShapeKeysEnabled reports whether mesh shape keys are renamed.
func (c *Config) ShapeKeysEnabled() bool {
	return c.Meshes.Enabled && c.Meshes.ObfuscateShapeKeys
}

// TexturesEnabled reports whether textures are cloned.
func (c *Config) TexturesEnabled() bool {
	return c.Materials.Enabled && c.Materials.ObfuscateTextures
}

// SelectAll selects every non-reserved name of available.
func (c *Config) SelectAll(available []string) {
	selected := make([]string, 0, len(available))
	for _, name := range available {
		if name == "" || naming.IsReserved(name) || slices.Contains(selected, name) {
			continue
		}
		selected = append(selected, name)
	}
	c.ExposedParameters.SelectedParameterNames = selected
}

// SanitizeSelection drops selected names that are reserved or no longer
// present in available, and returns the dropped names.
func (c *Config) SanitizeSelection(available []string) []string {
	present := make(map[string]struct{}, len(available))
	for _, name := range available {
		present[name] = struct{}{}
	}

	var kept, dropped []string
	for _, name := range c.ExposedParameters.SelectedParameterNames {
		if _, ok := present[name]; ok && !naming.IsReserved(name) {
			kept = append(kept, name)
			continue
		}
		dropped = append(dropped, name)
	}
	c.ExposedParameters.SelectedParameterNames = kept
	return dropped
}
