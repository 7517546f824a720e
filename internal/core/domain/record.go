package domain

import (
	"encoding/json"
	"fmt"
	"maps"
	"slices"
	"sort"
	"strings"
)

// Canonical field names.
const (
	FieldName           = "name"
	FieldVersion        = "version"
	FieldStatus         = "status"
	FieldGlobalDocInd   = "global_doc_ind"
	FieldDocumentType   = "document_type"
	FieldLanguage       = "language"
	FieldTitle          = "title"
	FieldPurpose        = "purpose"
	FieldScope          = "scope"
	FieldTargetAudience = "target_audience"
	FieldAbbreviations  = "abbreviations"

	FieldGoverningStandards  = "governing_quality_module_or_global_standard"
	FieldGoverningDocuments  = "governing_documents"
	FieldRelatedDocuments    = "related_documents"
	FieldReferencedDocuments = "referenced_documents"
	FieldExternalReferences  = "external_references"

	FieldQualitySystem   = "quality_system"
	FieldProcess         = "process"
	FieldScopes          = "scopes"
	FieldEntities        = "entities"
	FieldOwnerDepartment = "owner_department"
)

// FieldKind is the value shape of a canonical field.
type FieldKind int

// Field kinds.
const (
	// KindString fields hold a single string, empty when unknown.
	KindString FieldKind = iota

	// KindList fields hold a deduplicated list of strings, never nil.
	KindList
)

// String returns the kind name.
func (k FieldKind) String() string {
	if k == KindList {
		return "list"
	}
	return "string"
}

// FieldSpec describes one canonical field.
type FieldSpec struct {
	Name string
	Kind FieldKind

	// Reference marks list fields whose values are document references.
	Reference bool
}

// CanonicalFields enumerates the known fields of a Record in canonical order.
var CanonicalFields = []FieldSpec{
	{Name: FieldName, Kind: KindString},
	{Name: FieldVersion, Kind: KindString},
	{Name: FieldStatus, Kind: KindString},
	{Name: FieldGlobalDocInd, Kind: KindString},
	{Name: FieldDocumentType, Kind: KindString},
	{Name: FieldLanguage, Kind: KindString},
	{Name: FieldTitle, Kind: KindString},
	{Name: FieldPurpose, Kind: KindString},
	{Name: FieldScope, Kind: KindString},
	{Name: FieldTargetAudience, Kind: KindString},
	{Name: FieldAbbreviations, Kind: KindString},
	{Name: FieldGoverningStandards, Kind: KindList, Reference: true},
	{Name: FieldGoverningDocuments, Kind: KindList, Reference: true},
	{Name: FieldRelatedDocuments, Kind: KindList, Reference: true},
	{Name: FieldReferencedDocuments, Kind: KindList, Reference: true},
	{Name: FieldExternalReferences, Kind: KindList, Reference: true},
	{Name: FieldQualitySystem, Kind: KindString},
	{Name: FieldProcess, Kind: KindString},
	{Name: FieldScopes, Kind: KindString},
	{Name: FieldEntities, Kind: KindString},
	{Name: FieldOwnerDepartment, Kind: KindString},
}

// LookupField returns the spec of a canonical field.
func LookupField(name string) (FieldSpec, bool) {
	for _, f := range CanonicalFields {
		if f.Name == name {
			return f, true
		}
	}
	return FieldSpec{}, false
}

// IsCanonical reports whether name is a known field.
func IsCanonical(name string) bool {
	_, ok := LookupField(name)
	return ok
}

// ReferenceFields returns the names of the reference-bearing list fields.
func ReferenceFields() []string {
	var names []string
	for _, f := range CanonicalFields {
		if f.Reference {
			names = append(names, f.Name)
		}
	}
	return names
}

// Record is the canonical metadata record.
//
// Known fields are typed; anything else lands in Extensions. The record
// tracks which fields were assigned so that projection can tell an unset
// field apart from one that was set to an empty value.
type Record struct {
	Name           string
	Version        string
	Status         string
	GlobalDocInd   string
	DocumentType   string
	Language       string
	Title          string
	Purpose        string
	Scope          string
	TargetAudience string
	Abbreviations  string

	GoverningStandards  []string
	GoverningDocuments  []string
	RelatedDocuments    []string
	ReferencedDocuments []string
	ExternalReferences  []string

	QualitySystem   string
	Process         string
	Scopes          string
	Entities        string
	OwnerDepartment string

	// Extensions carries fields outside the canonical set.
	Extensions map[string]any

	assigned map[string]bool
}

// NewRecord returns an empty record with no fields assigned.
func NewRecord() *Record {
	return &Record{
		Extensions: make(map[string]any),
		assigned:   make(map[string]bool),
	}
}

// RecordFromMap builds a record by assigning every key of m.
func RecordFromMap(m map[string]any) (*Record, error) {
	r := NewRecord()
	if err := r.Merge(m); err != nil {
		return nil, err
	}
	return r, nil
}

func (r *Record) stringField(name string) *string {
	switch name {
	case FieldName:
		return &r.Name
	case FieldVersion:
		return &r.Version
	case FieldStatus:
		return &r.Status
	case FieldGlobalDocInd:
		return &r.GlobalDocInd
	case FieldDocumentType:
		return &r.DocumentType
	case FieldLanguage:
		return &r.Language
	case FieldTitle:
		return &r.Title
	case FieldPurpose:
		return &r.Purpose
	case FieldScope:
		return &r.Scope
	case FieldTargetAudience:
		return &r.TargetAudience
	case FieldAbbreviations:
		return &r.Abbreviations
	case FieldQualitySystem:
		return &r.QualitySystem
	case FieldProcess:
		return &r.Process
	case FieldScopes:
		return &r.Scopes
	case FieldEntities:
		return &r.Entities
	case FieldOwnerDepartment:
		return &r.OwnerDepartment
	}
	return nil
}

func (r *Record) listField(name string) *[]string {
	switch name {
	case FieldGoverningStandards:
		return &r.GoverningStandards
	case FieldGoverningDocuments:
		return &r.GoverningDocuments
	case FieldRelatedDocuments:
		return &r.RelatedDocuments
	case FieldReferencedDocuments:
		return &r.ReferencedDocuments
	case FieldExternalReferences:
		return &r.ExternalReferences
	}
	return nil
}

func (r *Record) markAssigned(name string) {
	if r.assigned == nil {
		r.assigned = make(map[string]bool)
	}
	r.assigned[name] = true
}

// Set assigns a field, coercing value to the field's kind.
// A nil value becomes the kind's empty value. Unknown keys are stored
// in Extensions unchanged.
func (r *Record) Set(name string, value any) error {
	spec, ok := LookupField(name)
	if !ok {
		if r.Extensions == nil {
			r.Extensions = make(map[string]any)
		}
		r.Extensions[name] = value
		r.markAssigned(name)
		return nil
	}

	switch spec.Kind {
	case KindList:
		list, err := CoerceList(value)
		if err != nil {
			return fmt.Errorf("field %s: %w", name, err)
		}
		*r.listField(name) = UniqueStrings(list)
	default:
		s, err := CoerceString(value)
		if err != nil {
			return fmt.Errorf("field %s: %w", name, err)
		}
		*r.stringField(name) = s
	}
	r.markAssigned(name)
	return nil
}

// SetString assigns a string field. It is a convenience over Set.
func (r *Record) SetString(name, value string) error {
	return r.Set(name, value)
}

// SetList assigns a list field. It is a convenience over Set.
func (r *Record) SetList(name string, values []string) error {
	return r.Set(name, values)
}

// Get returns the value of a field and whether it was assigned.
// Lists are returned as copies.
func (r *Record) Get(name string) (any, bool) {
	if !r.IsSet(name) {
		return nil, false
	}
	if p := r.stringField(name); p != nil {
		return *p, true
	}
	if p := r.listField(name); p != nil {
		return slices.Clone(*p), true
	}
	v, ok := r.Extensions[name]
	return v, ok
}

// List returns a list field's values, or nil when the field is unknown or unset.
func (r *Record) List(name string) []string {
	p := r.listField(name)
	if p == nil || !r.IsSet(name) {
		return nil
	}
	return slices.Clone(*p)
}

// IsSet reports whether the field was assigned.
func (r *Record) IsSet(name string) bool {
	return r.assigned[name]
}

// Keys returns the assigned keys: canonical fields in canonical order, then
// extension keys sorted.
func (r *Record) Keys() []string {
	keys := make([]string, 0, len(r.assigned))
	for _, f := range CanonicalFields {
		if r.assigned[f.Name] {
			keys = append(keys, f.Name)
		}
	}
	ext := make([]string, 0, len(r.Extensions))
	for k := range r.Extensions {
		if r.assigned[k] {
			ext = append(ext, k)
		}
	}
	sort.Strings(ext)
	return append(keys, ext...)
}

// Merge assigns every key of m, last writer wins.
func (r *Record) Merge(m map[string]any) error {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if err := r.Set(k, m[k]); err != nil {
			return err
		}
	}
	return nil
}

// Clone returns a deep copy of the record.
func (r *Record) Clone() *Record {
	c := *r
	c.GoverningStandards = slices.Clone(r.GoverningStandards)
	c.GoverningDocuments = slices.Clone(r.GoverningDocuments)
	c.RelatedDocuments = slices.Clone(r.RelatedDocuments)
	c.ReferencedDocuments = slices.Clone(r.ReferencedDocuments)
	c.ExternalReferences = slices.Clone(r.ExternalReferences)
	c.Extensions = maps.Clone(r.Extensions)
	if c.Extensions == nil {
		c.Extensions = make(map[string]any)
	}
	c.assigned = maps.Clone(r.assigned)
	if c.assigned == nil {
		c.assigned = make(map[string]bool)
	}
	return &c
}

// ToMap returns the assigned fields as a plain map.
func (r *Record) ToMap() map[string]any {
	out := make(map[string]any, len(r.assigned))
	for _, k := range r.Keys() {
		v, _ := r.Get(k)
		out[k] = v
	}
	return out
}

// MarshalJSON encodes the assigned fields.
func (r *Record) MarshalJSON() ([]byte, error) {
	return json.Marshal(r.ToMap())
}

// UnmarshalJSON decodes a JSON object into the record.
func (r *Record) UnmarshalJSON(data []byte) error {
	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil {
		return err
	}
	*r = *NewRecord()
	return r.Merge(m)
}

// CoerceString converts a decoded JSON value to a string field value.
func CoerceString(value any) (string, error) {
	switch v := value.(type) {
	case nil:
		return "", nil
	case string:
		return v, nil
	case fmt.Stringer:
		return v.String(), nil
	case bool, int, int32, int64, float32, float64, json.Number:
		return fmt.Sprint(v), nil
	case []string:
		return strings.Join(v, ", "), nil
	case []any:
		parts := make([]string, 0, len(v))
		for _, item := range v {
			s, err := CoerceString(item)
			if err != nil {
				return "", err
			}
			if s != "" {
				parts = append(parts, s)
			}
		}
		return strings.Join(parts, ", "), nil
	default:
		return "", fmt.Errorf("%w: cannot use %T as string", ErrInvalidInput, value)
	}
}

// CoerceList converts a decoded JSON value to a list field value.
// The result is never nil.
func CoerceList(value any) ([]string, error) {
	switch v := value.(type) {
	case nil:
		return []string{}, nil
	case string:
		if strings.TrimSpace(v) == "" {
			return []string{}, nil
		}
		return []string{v}, nil
	case []string:
		return slices.Clone(v), nil
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			if item == nil {
				continue
			}
			s, err := CoerceString(item)
			if err != nil {
				return nil, err
			}
			out = append(out, s)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("%w: cannot use %T as list", ErrInvalidInput, value)
	}
}

// UniqueStrings removes duplicates keeping first occurrences in order.
// The result is never nil.
func UniqueStrings(in []string) []string {
	out := make([]string, 0, len(in))
	seen := make(map[string]struct{}, len(in))
	for _, s := range in {
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}
