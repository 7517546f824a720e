package domain

// InjectedMetadata is the static metadata a profile stamps onto every
// record after the extraction output has been merged.
type InjectedMetadata struct {
	// Total holds values shared by the whole document set.
	// Only global_doc_ind is read from it.
	Total map[string]string

	// Fixed holds the profile's descriptive defaults.
	// Only the keys listed in FixedMetadataFields are read from it.
	Fixed map[string]string
}

// FixedMetadataFields are the keys injected from InjectedMetadata.Fixed.
var FixedMetadataFields = []string{
	FieldTitle,
	FieldQualitySystem,
	FieldProcess,
	FieldScopes,
	FieldEntities,
	FieldOwnerDepartment,
}

// Fields returns the key/value pairs to inject. Keys absent from the
// source maps are not returned.
func (m InjectedMetadata) Fields() map[string]string {
	out := make(map[string]string, len(FixedMetadataFields)+1)
	if v, ok := m.Total[FieldGlobalDocInd]; ok {
		out[FieldGlobalDocInd] = v
	}
	for _, key := range FixedMetadataFields {
		if v, ok := m.Fixed[key]; ok {
			out[key] = v
		}
	}
	return out
}
