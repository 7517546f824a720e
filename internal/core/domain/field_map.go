package domain

// FieldMapping maps one canonical record key to an output name.
type FieldMapping struct {
	Canonical string `toml:"canonical" yaml:"canonical" json:"canonical"`
	Output    string `toml:"output" yaml:"output" json:"output"`
}

// FieldMap is an ordered projection from canonical keys to output names.
// It is plain data so that it can be declared in TOML or YAML.
type FieldMap []FieldMapping

// IdentityFieldMap maps each of keys to itself.
func IdentityFieldMap(keys ...string) FieldMap {
	fm := make(FieldMap, 0, len(keys))
	for _, k := range keys {
		fm = append(fm, FieldMapping{Canonical: k, Output: k})
	}
	return fm
}

// OutputNames returns the output names in declaration order.
func (fm FieldMap) OutputNames() []string {
	names := make([]string, 0, len(fm))
	for _, m := range fm {
		names = append(names, m.Output)
	}
	return names
}

// Validate checks that no mapping is blank and output names are unique.
func (fm FieldMap) Validate() error {
	seen := make(map[string]bool, len(fm))
	for _, m := range fm {
		if m.Canonical == "" || m.Output == "" {
			return ErrInvalidInput
		}
		if seen[m.Output] {
			return ErrAlreadyExists
		}
		seen[m.Output] = true
	}
	return nil
}
