package routegen

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/broady/routegen/annotation"
	"github.com/broady/routegen/assemble"
	"github.com/broady/routegen/diagnostic"
	"github.com/broady/routegen/emit"
	"github.com/broady/routegen/model"
	"github.com/broady/routegen/naming"
)

// Result is the outcome of a run.
type Result struct {
	// Groups are sorted by identity; endpoints keep declaration order.
	Groups []*model.EndpointGroup

	// Diagnostics are advisory; conflicting endpoints stay in Groups.
	Diagnostics []diagnostic.Diagnostic

	// Files lists what was written. It is empty unless files were generated.
	Files []emit.OutputFile

	// Config is the effective configuration after defaults and directives.
	Config Config
}

// Endpoints counts the endpoints of every group.
func (r *Result) Endpoints() int {
	n := 0
	for _, g := range r.Groups {
		n += len(g.Endpoints)
	}
	return n
}

// Compile assembles decls into endpoint groups and checks every group for
// route conflicts, which are logged at warn level. Each call uses a fresh
// naming cache.
func Compile(ctx context.Context, decls []annotation.TypeDecl, cfg Config) (*Result, error) {
	cfg = applyConfigDefaults(cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	a := assemble.New(
		assemble.WithNaming(naming.New(naming.NewCache())),
		assemble.WithLogger(cfg.Logger),
		assemble.WithWorkers(cfg.Workers),
	)
	groups, err := a.AssembleAll(ctx, decls)
	if err != nil {
		return nil, fmt.Errorf("assemble: %w", err)
	}

	result := &Result{
		Groups:      groups,
		Diagnostics: diagnostic.Check(groups, diagnostic.LogHandler(cfg.Logger)),
		Config:      cfg,
	}
	cfg.Logger.Debug("compiled routes",
		slog.Int("candidates", len(decls)),
		slog.Int("groups", len(result.Groups)),
		slog.Int("endpoints", result.Endpoints()),
		slog.Int("diagnostics", len(result.Diagnostics)))
	return result, nil
}
