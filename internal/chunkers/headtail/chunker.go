// Package headtail provides the head+tail chunker that bounds the text sent
// to the model while keeping both the opening and the closing of a document.
package headtail

import (
	"fmt"
	"unicode/utf8"

	"github.com/custodia-labs/docmeta/internal/core/domain"
	"github.com/custodia-labs/docmeta/internal/core/ports/driven"
)

// Ensure Chunker implements the interface.
var _ driven.Chunker = (*Chunker)(nil)

// DefaultMaxLength is the default maximum number of characters sent to the model.
const DefaultMaxLength = domain.DefaultMaxLength

// DefaultHeadLength is the default number of characters kept from each end.
const DefaultHeadLength = domain.DefaultHeadLength

// Chunker reduces oversized text to its first and last HeadLength characters.
// It always returns exactly one chunk. Lengths count runes, so multi-byte
// text is never split inside a character.
type Chunker struct {
	maxLength  int
	headLength int
}

// Option configures the chunker.
type Option func(*Chunker)

// WithMaxLength sets the length above which text is reduced.
func WithMaxLength(n int) Option {
	return func(c *Chunker) {
		if n > 0 {
			c.maxLength = n
		}
	}
}

// WithHeadLength sets the number of characters kept from each end.
func WithHeadLength(n int) Option {
	return func(c *Chunker) {
		if n > 0 {
			c.headLength = n
		}
	}
}

// New creates a chunker. It fails when twice the head length exceeds the
// maximum length.
func New(opts ...Option) (*Chunker, error) {
	c := &Chunker{
		maxLength:  DefaultMaxLength,
		headLength: DefaultHeadLength,
	}
	for _, opt := range opts {
		opt(c)
	}

	if 2*c.headLength > c.maxLength {
		return nil, fmt.Errorf("%w: head length %d is more than half of max length %d",
			domain.ErrInvalidInput, c.headLength, c.maxLength)
	}
	return c, nil
}

// FromConfig creates a chunker from chunking settings. Zero values keep the defaults.
func FromConfig(cfg domain.ChunkingConfig) (*Chunker, error) {
	return New(WithMaxLength(cfg.MaxLength), WithHeadLength(cfg.HeadLength))
}

// MaxLength returns the configured maximum length.
func (c *Chunker) MaxLength() int { return c.maxLength }

// HeadLength returns the configured head length.
func (c *Chunker) HeadLength() int { return c.headLength }

// Chunk returns text unchanged when it fits, otherwise the concatenation of
// its first and last HeadLength characters.
func (c *Chunker) Chunk(text string) []string {
	if utf8.RuneCountInString(text) <= c.maxLength {
		return []string{text}
	}

	runes := []rune(text)
	head := runes[:c.headLength]
	tail := runes[len(runes)-c.headLength:]
	return []string{string(head) + string(tail)}
}
