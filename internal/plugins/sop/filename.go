package sop

import (
	"path/filepath"
	"regexp"
	"strings"

	"github.com/custodia-labs/docmeta/internal/core/domain"
	"github.com/custodia-labs/docmeta/internal/core/ports/driven"
)

// Ensure FilenameParser implements the interface.
var _ driven.FilenameParser = (*FilenameParser)(nil)

var languagePattern = regexp.MustCompile(`^[A-Za-z]{2,3}$`)

// FilenameParser reads <CODE>_<version>_<status>_<lang>, for example
// "QMS-0001234_2.0_Effective_en.json". Missing trailing parts are omitted
// from the result so they do not override extracted values.
type FilenameParser struct{}

// NewFilenameParser creates a parser.
func NewFilenameParser() *FilenameParser {
	return &FilenameParser{}
}

// Parse returns the fields found in filename.
func (p *FilenameParser) Parse(filename string) map[string]string {
	base := strings.TrimSuffix(filepath.Base(filename), filepath.Ext(filename))
	out := map[string]string{
		domain.FieldDocumentType: DocumentType,
	}

	parts := strings.Split(base, "_")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}

	if parts[0] == "" {
		out[domain.FieldName] = "unknown"
		return out
	}
	out[domain.FieldName] = parts[0]

	if len(parts) > 1 && parts[1] != "" {
		out[domain.FieldVersion] = strings.TrimPrefix(strings.TrimPrefix(parts[1], "v"), "V")
	}
	if len(parts) > 2 && parts[2] != "" {
		out[domain.FieldStatus] = parts[2]
	}
	if len(parts) > 3 && languagePattern.MatchString(parts[3]) {
		out[domain.FieldLanguage] = strings.ToLower(parts[3])
	}
	return out
}
