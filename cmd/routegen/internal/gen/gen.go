package gen

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/broady/routegen/cmd/routegen/internal/scanflags"
)

type Cmd struct {
	scanflags.Flags `embed:""`

	Out      string `help:"Output directory for generated files." short:"o" default:"."`
	Package  string `help:"Package name of the generated file (default: routes, or //route:config)."`
	Output   string `help:"Generated file name (default: routes_gen.go)."`
	Manifest string `help:"Also write a manifest (.json, .yaml or .yml)."`
}

func (c *Cmd) Run(ctx context.Context) error {
	outDir, err := filepath.Abs(c.Out)
	if err != nil {
		return fmt.Errorf("resolve output path: %w", err)
	}

	g := c.Generator()
	if c.Package != "" {
		g = g.Package(c.Package)
	}
	if c.Output != "" {
		g = g.Output(c.Output)
	}
	if c.Manifest != "" {
		g = g.Manifest(c.Manifest)
	}

	result, err := g.ToDir(ctx, outDir)
	if err != nil {
		return err
	}

	out := c.Writer()
	for _, f := range result.Files {
		fmt.Fprintf(out, "✓ Wrote %s (%d bytes)\n", filepath.Join(outDir, filepath.FromSlash(f.Path)), f.Size)
	}
	fmt.Fprintf(out, "✓ %d groups, %d endpoints\n", len(result.Groups), result.Endpoints())
	if n := len(result.Diagnostics); n > 0 {
		fmt.Fprintf(out, "⚠ %d route conflicts (see log)\n", n)
	}
	return nil
}
