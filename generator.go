package routegen

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/broady/routegen/emit"
	"github.com/broady/routegen/internal/scan"
	"github.com/broady/routegen/sink"
)

// Generator provides a fluent API for scanning packages and generating
// registration code. Create one with FromPackages.
//
// Example:
//
//	routegen.FromPackages("./api/...").
//	    Package("routes").
//	    Manifest("routes.json").
//	    ToDir(ctx, "./api/routes")
type Generator struct {
	patterns []string
	dir      string
	cfg      Config
}

// FromPackages creates a Generator for the packages matching patterns,
// using go command pattern syntax.
func FromPackages(patterns ...string) *Generator {
	return &Generator{patterns: patterns}
}

// Dir sets the directory patterns are resolved in.
func (g *Generator) Dir(dir string) *Generator {
	g.dir = dir
	return g
}

// WithLogger sets the logger for debug output and diagnostics.
func (g *Generator) WithLogger(logger *slog.Logger) *Generator {
	g.cfg.Logger = logger
	return g
}

// Workers bounds concurrent group assembly.
func (g *Generator) Workers(n int) *Generator {
	g.cfg.Workers = n
	return g
}

// Package sets the package name of the generated file.
func (g *Generator) Package(name string) *Generator {
	g.cfg.Package = name
	return g
}

// Output sets the generated file name.
func (g *Generator) Output(name string) *Generator {
	g.cfg.Output = name
	return g
}

// Manifest enables the manifest file.
func (g *Generator) Manifest(name string) *Generator {
	g.cfg.Manifest = name
	return g
}

// Strict sets whether route conflicts fail the run with a *ConflictError.
// It overrides a //route:config Strict directive either way.
func (g *Generator) Strict(strict bool) *Generator {
	g.cfg.Strict = &strict
	return g
}

// Check scans and compiles without writing anything. In strict mode a
// non-empty diagnostic list is returned as a *ConflictError along with the
// result.
func (g *Generator) Check(ctx context.Context) (*Result, error) {
	result, err := g.compile(ctx)
	if err != nil {
		return nil, err
	}
	if result.Config.strict() && len(result.Diagnostics) > 0 {
		return result, &ConflictError{Diagnostics: result.Diagnostics}
	}
	return result, nil
}

// Generate compiles and writes the generated files to s. Nothing is written
// when Check fails.
func (g *Generator) Generate(ctx context.Context, s sink.Sink) (*Result, error) {
	result, err := g.Check(ctx)
	if err != nil {
		return result, err
	}

	e, err := emit.New(emit.Options{
		Package:  result.Config.Package,
		Output:   result.Config.Output,
		Manifest: result.Config.Manifest,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	out, err := e.Emit(ctx, result.Groups, result.Diagnostics, s)
	if err != nil {
		return nil, fmt.Errorf("emit: %w", err)
	}
	result.Files = out.Files
	for _, f := range out.Files {
		result.Config.Logger.Debug("wrote file", slog.String("path", f.Path), slog.Int64("size", f.Size))
	}
	return result, nil
}

// ToDir is Generate with a sink writing below dir.
func (g *Generator) ToDir(ctx context.Context, dir string) (*Result, error) {
	return g.Generate(ctx, sink.NewDir(dir))
}

func (g *Generator) compile(ctx context.Context) (*Result, error) {
	patterns := g.patterns
	if len(patterns) == 0 {
		patterns = []string{"."}
	}
	scanned, err := scan.Load(ctx, g.dir, patterns...)
	if err != nil {
		return nil, fmt.Errorf("scan: %w", err)
	}

	fromDirectives, err := DecodeDirectives(scanned.Config)
	if err != nil {
		return nil, err
	}
	cfg := overlay(fromDirectives, g.cfg)

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger.Debug("scanned packages",
		slog.Any("packages", scanned.Packages),
		slog.Int("candidates", len(scanned.Decls)))

	return Compile(ctx, scanned.Decls, cfg)
}
