// Package emit turns assembled endpoint groups into artifacts: a Go source
// file registering every endpoint on a chi router, and an optional
// manifest describing the resolved model.
package emit

import (
	"context"
	"errors"
	"fmt"
	"go/token"

	"github.com/broady/routegen/diagnostic"
	"github.com/broady/routegen/model"
	"github.com/broady/routegen/sink"
)

// Options configures an Emitter.
type Options struct {
	// Package is the package clause of the generated source.
	Package string

	// Output is the name of the generated source file.
	Output string

	// Manifest, if set, is the name of the manifest file. A .yaml or .yml
	// extension selects YAML; anything else is JSON.
	Manifest string
}

// Result lists what an Emit call wrote.
type Result struct {
	Files []OutputFile
}

// OutputFile describes one written file.
type OutputFile struct {
	Path string
	Size int64
}

// Emitter writes generated files to a sink.
type Emitter struct {
	opts Options
}

// New returns an Emitter. Package and Output must be set.
func New(opts Options) (*Emitter, error) {
	if !token.IsIdentifier(opts.Package) {
		return nil, fmt.Errorf("invalid package name %q", opts.Package)
	}
	if opts.Output == "" {
		return nil, errors.New("output file name is required")
	}
	return &Emitter{opts: opts}, nil
}

// Emit renders groups (sorted by identity) and writes them to s. The
// manifest also records diags.
func (e *Emitter) Emit(ctx context.Context, groups []*model.EndpointGroup, diags []diagnostic.Diagnostic, s sink.Sink) (*Result, error) {
	src, err := e.Source(groups)
	if err != nil {
		return nil, err
	}

	result := &Result{}
	write := func(name string, content []byte) error {
		if err := s.WriteFile(ctx, name, content); err != nil {
			return fmt.Errorf("write %s: %w", name, err)
		}
		result.Files = append(result.Files, OutputFile{Path: name, Size: int64(len(content))})
		return nil
	}

	if err := write(e.opts.Output, src); err != nil {
		return nil, err
	}
	if e.opts.Manifest != "" {
		manifest, err := Encode(e.opts.Manifest, NewManifest(groups, diags))
		if err != nil {
			return nil, err
		}
		if err := write(e.opts.Manifest, manifest); err != nil {
			return nil, err
		}
	}
	return result, nil
}
