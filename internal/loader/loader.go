// Package loader reads log documents from disk and hands raw records to the pipeline.
package loader

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/telhawk-systems/telhawk-triage/internal/models"
)

var (
	// ErrSourceNotFound is returned when a required source file does not exist.
	ErrSourceNotFound = errors.New("source not found")
	// ErrUnsupportedFormat is returned when no decoder handles a file extension.
	ErrUnsupportedFormat = errors.New("unsupported format")
	// ErrMalformedDocument is returned when a document cannot be decoded into records.
	ErrMalformedDocument = errors.New("malformed document")
)

// SourceSpec describes one log file to load.
type SourceSpec struct {
	Name     string
	Path     string
	Required bool
}

// Source is either Present with records or Absent with a reason.
type Source struct {
	name    string
	path    string
	format  string
	records []models.RawRecord
	present bool
	reason  string
}

// Present wraps records loaded for a source.
func Present(name string, records []models.RawRecord) Source {
	if records == nil {
		records = []models.RawRecord{}
	}
	return Source{name: name, records: records, present: true}
}

// Absent marks a source that was not available.
func Absent(name, reason string) Source {
	return Source{name: name, reason: reason}
}

func (s Source) Name() string { return s.name }
func (s Source) Path() string { return s.path }
func (s Source) Format() string { return s.format }
func (s Source) Present() bool { return s.present }
func (s Source) Reason() string { return s.reason }
func (s Source) Records() []models.RawRecord { return s.records }

// Loader resolves SourceSpecs into Sources.
type Loader struct {
	decoders *Registry
}

// New creates a loader. A nil registry uses DefaultRegistry.
func New(decoders *Registry) *Loader {
	if decoders == nil {
		decoders = DefaultRegistry()
	}
	return &Loader{decoders: decoders}
}

// Load reads spec.Path. Missing files and unknown formats fail for required sources
// and yield Absent for optional ones; malformed documents always fail.
func (l *Loader) Load(ctx context.Context, spec SourceSpec) (Source, error) {
	if err := ctx.Err(); err != nil {
		return Source{}, err
	}

	if spec.Path == "" {
		if spec.Required {
			return Source{}, fmt.Errorf("%s: %w: no path configured", spec.Name, ErrSourceNotFound)
		}
		return Absent(spec.Name, "no path configured"), nil
	}

	info, err := os.Stat(spec.Path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			if spec.Required {
				return Source{}, fmt.Errorf("%s: %w: %s", spec.Name, ErrSourceNotFound, spec.Path)
			}
			return Absent(spec.Name, fmt.Sprintf("file %s not found", spec.Path)), nil
		}
		return Source{}, fmt.Errorf("%s: stat %s: %w", spec.Name, spec.Path, err)
	}
	if info.IsDir() {
		return Source{}, fmt.Errorf("%s: %s is a directory", spec.Name, spec.Path)
	}

	dec := l.decoders.Find(spec.Path)
	if dec == nil {
		if spec.Required {
			return Source{}, fmt.Errorf("%s: %w: %s", spec.Name, ErrUnsupportedFormat, spec.Path)
		}
		return Absent(spec.Name, fmt.Sprintf("unsupported format: %s", spec.Path)), nil
	}

	f, err := os.Open(spec.Path)
	if err != nil {
		return Source{}, fmt.Errorf("%s: open %s: %w", spec.Name, spec.Path, err)
	}
	defer f.Close()

	records, err := dec.Decode(f)
	if err != nil {
		return Source{}, fmt.Errorf("%s: decode %s: %w", spec.Name, spec.Path, err)
	}

	src := Present(spec.Name, records)
	src.path = spec.Path
	src.format = dec.Format()
	return src, nil
}
