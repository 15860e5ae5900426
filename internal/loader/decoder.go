package loader

import (
	"io"
	"path/filepath"
	"strings"

	"github.com/telhawk-systems/telhawk-triage/internal/models"
)

// Decoder turns a document into raw records.
type Decoder interface {
	Decode(r io.Reader) ([]models.RawRecord, error)
	Supports(ext string) bool
	Format() string
}

// Registry holds ordered decoders and finds a match for a file.
type Registry struct {
	items []Decoder
}

// NewRegistry constructs a registry with provided decoders.
func NewRegistry(items ...Decoder) *Registry {
	return &Registry{items: items}
}

// DefaultRegistry knows JSON (including NDJSON) and CSV documents.
func DefaultRegistry() *Registry {
	return NewRegistry(JSONDecoder{UnwrapKey: "result"}, CSVDecoder{})
}

// Find returns the first decoder that supports the file extension of path.
func (r *Registry) Find(path string) Decoder {
	if r == nil {
		return nil
	}
	ext := strings.ToLower(filepath.Ext(path))
	for _, d := range r.items {
		if d.Supports(ext) {
			return d
		}
	}
	return nil
}
