// Package scanflags holds the flags shared by the gen and check commands.
package scanflags

import (
	"io"
	"log/slog"
	"os"

	"github.com/broady/routegen"
)

type Flags struct {
	Patterns []string `arg:"" optional:"" help:"Packages to scan, in go command pattern syntax." default:"."`
	Dir      string   `help:"Directory to resolve patterns in." type:"existingdir" short:"C"`
	Workers  int      `help:"Groups assembled concurrently (0: GOMAXPROCS)." default:"0"`
	Strict   bool     `help:"Fail when route conflicts are found." xor:"strict"`
	NoStrict bool     `help:"Report route conflicts without failing, even with //route:config Strict=true." xor:"strict"`
	Verbose  bool     `help:"Log debug output." short:"v"`

	Stdout io.Writer `kong:"-"`
	Stderr io.Writer `kong:"-"`
}

// Writer returns the writer for command output.
func (f *Flags) Writer() io.Writer {
	if f.Stdout == nil {
		return os.Stdout
	}
	return f.Stdout
}

// Logger returns a text logger on stderr, at debug level with -v.
func (f *Flags) Logger() *slog.Logger {
	w := f.Stderr
	if w == nil {
		w = os.Stderr
	}
	level := slog.LevelInfo
	if f.Verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// Generator returns a generator configured from the flags.
func (f *Flags) Generator() *routegen.Generator {
	g := routegen.FromPackages(f.Patterns...).
		Dir(f.Dir).
		Workers(f.Workers).
		WithLogger(f.Logger())
	switch {
	case f.Strict:
		g = g.Strict(true)
	case f.NoStrict:
		g = g.Strict(false)
	}
	return g
}
