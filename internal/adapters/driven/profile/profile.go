// Package profile loads output field maps from YAML files.
//
// A file names the output columns of a record, in order:
//
//	name: quality-register
//	fields:
//	  - canonical: name
//	    output: Document Number
//	  - version
//	  - summary
//
// A bare string maps a canonical key to itself.
package profile

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/custodia-labs/docmeta/internal/core/domain"
)

// OutputProfile is a named field map.
type OutputProfile struct {
	Name        string
	Description string
	FieldMap    domain.FieldMap
}

type fileFormat struct {
	Name        string  `yaml:"name"`
	Description string  `yaml:"description"`
	Fields      []field `yaml:"fields"`
}

type field domain.FieldMapping

// UnmarshalYAML accepts a scalar or a canonical/output mapping.
func (f *field) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.ScalarNode {
		f.Canonical = node.Value
		f.Output = node.Value
		return nil
	}

	var m domain.FieldMapping
	if err := node.Decode(&m); err != nil {
		return err
	}
	if m.Output == "" {
		m.Output = m.Canonical
	}
	*f = field(m)
	return nil
}

// Parse decodes a profile. name is used when the document has none.
func Parse(data []byte, name string) (*OutputProfile, error) {
	var ff fileFormat
	dec := yaml.NewDecoder(strings.NewReader(string(data)))
	dec.KnownFields(true)
	if err := dec.Decode(&ff); err != nil {
		return nil, fmt.Errorf("%w: decode profile: %w", domain.ErrInvalidInput, err)
	}

	p := &OutputProfile{
		Name:        ff.Name,
		Description: ff.Description,
		FieldMap:    make(domain.FieldMap, 0, len(ff.Fields)),
	}
	if p.Name == "" {
		p.Name = name
	}
	for _, f := range ff.Fields {
		p.FieldMap = append(p.FieldMap, domain.FieldMapping(f))
	}
	if len(p.FieldMap) == 0 {
		return nil, fmt.Errorf("%w: profile %q has no fields", domain.ErrInvalidInput, p.Name)
	}
	if err := p.FieldMap.Validate(); err != nil {
		return nil, fmt.Errorf("profile %q: %w", p.Name, err)
	}
	return p, nil
}

// Load reads a profile file. The name defaults to the file base name.
func Load(path string) (*OutputProfile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("profile %s: %w", path, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("read profile: %w", err)
	}
	base := filepath.Base(path)
	return Parse(data, strings.TrimSuffix(base, filepath.Ext(base)))
}

// LoadDir reads every .yaml and .yml file in dir, keyed by profile name.
// A missing directory yields no profiles.
func LoadDir(dir string) (map[string]*OutputProfile, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return map[string]*OutputProfile{}, nil
		}
		return nil, fmt.Errorf("read profile directory: %w", err)
	}

	profiles := make(map[string]*OutputProfile)
	for _, e := range entries {
		ext := filepath.Ext(e.Name())
		if e.IsDir() || (ext != ".yaml" && ext != ".yml") {
			continue
		}
		p, err := Load(filepath.Join(dir, e.Name()))
		if err != nil {
			return nil, err
		}
		if _, dup := profiles[p.Name]; dup {
			return nil, fmt.Errorf("profile %q: %w", p.Name, domain.ErrAlreadyExists)
		}
		profiles[p.Name] = p
	}
	return profiles, nil
}

// Marshal encodes a field map in the file format, bare strings for
// identity mappings.
func Marshal(name, description string, fm domain.FieldMap) ([]byte, error) {
	doc := struct {
		Name        string `yaml:"name"`
		Description string `yaml:"description,omitempty"`
		Fields      []any  `yaml:"fields"`
	}{Name: name, Description: description}

	for _, m := range fm {
		if m.Canonical == m.Output {
			doc.Fields = append(doc.Fields, m.Canonical)
			continue
		}
		doc.Fields = append(doc.Fields, m)
	}
	return yaml.Marshal(doc)
}

// Names returns the sorted keys of profiles.
func Names(profiles map[string]*OutputProfile) []string {
	names := make([]string, 0, len(profiles))
	for n := range profiles {
		names = append(names, n)
	}
	slices.Sort(names)
	return names
}
