// Package assemble builds endpoint groups from scanned type declarations.
//
// For each candidate type the assembler folds the group-level facts of the
// type and its ancestors (most-derived value wins per field), resolves the
// route prefix, and turns every qualifying public member into an endpoint.
// Candidates without a route prefix, members without a verb, and groups
// without endpoints are dropped silently.
package assemble

import (
	"context"
	"log/slog"
	"runtime"
	"slices"

	"github.com/samber/lo"
	"golang.org/x/sync/errgroup"

	"github.com/broady/routegen/annotation"
	"github.com/broady/routegen/extract"
	"github.com/broady/routegen/merge"
	"github.com/broady/routegen/model"
	"github.com/broady/routegen/naming"
	"github.com/broady/routegen/route"
)

// DefaultTemplate is used when a group marker does not supply a template.
const DefaultTemplate = "/api/" + route.GroupToken

// Assembler turns type declarations into endpoint groups. It holds no
// per-group state and is safe for concurrent use.
type Assembler struct {
	names    *naming.Engine
	resolver *route.Resolver
	logger   *slog.Logger
	workers  int
}

// Option configures an Assembler.
type Option func(*Assembler)

// WithNaming shares a naming engine (and its cache) with the assembler.
func WithNaming(names *naming.Engine) Option {
	return func(a *Assembler) {
		a.names = names
	}
}

// WithLogger sets the logger used for debug output about dropped candidates.
func WithLogger(logger *slog.Logger) Option {
	return func(a *Assembler) {
		a.logger = logger
	}
}

// WithWorkers bounds the number of groups assembled concurrently by
// AssembleAll. Values below one mean GOMAXPROCS.
func WithWorkers(n int) Option {
	return func(a *Assembler) {
		a.workers = n
	}
}

// New returns an Assembler.
func New(opts ...Option) *Assembler {
	a := &Assembler{}
	for _, opt := range opts {
		opt(a)
	}
	if a.names == nil {
		a.names = naming.New(nil)
	}
	if a.logger == nil {
		a.logger = slog.Default()
	}
	if a.workers < 1 {
		a.workers = runtime.GOMAXPROCS(0)
	}
	a.resolver = route.NewResolver(a.names)
	return a
}

// AssembleAll assembles every declaration on a bounded worker pool. The
// result is sorted by identity regardless of completion order. If ctx is
// cancelled, work stops between groups and ctx's error is returned.
func (a *Assembler) AssembleAll(ctx context.Context, decls []annotation.TypeDecl) ([]*model.EndpointGroup, error) {
	results := make([]*model.EndpointGroup, len(decls))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(a.workers)
	for i := range decls {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			if group, ok := a.Assemble(decls[i]); ok {
				results[i] = group
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	groups := lo.Compact(results)
	slices.SortStableFunc(groups, func(x, y *model.EndpointGroup) int {
		return x.Identity.Compare(y.Identity)
	})
	return groups, nil
}

// Assemble builds the group for decl. ok is false when the candidate has no
// resolvable route prefix or no qualifying members.
func (a *Assembler) Assemble(decl annotation.TypeDecl) (group *model.EndpointGroup, ok bool) {
	id := model.Identity{Namespace: decl.Namespace, Name: decl.Name}
	facts := fold(decl)
	if !facts.marked {
		a.logger.Debug("skipping type without group marker", slog.String("type", id.String()))
		return nil, false
	}

	template := facts.template
	if template == "" {
		template = DefaultTemplate
	}
	head, tail := route.Split(template)
	prefix := a.resolver.Resolve(head, route.Scope{Group: decl.Name, Area: facts.area})
	if prefix == "" && tail != "" {
		prefix = "/"
	}
	if prefix == "" {
		a.logger.Debug("skipping type with empty route prefix",
			slog.String("type", id.String()),
			slog.String("template", template))
		return nil, false
	}

	group = &model.EndpointGroup{
		Identity:      id,
		RoutePrefix:   prefix,
		DisplayName:   facts.name,
		Filter:        facts.filter,
		Area:          facts.area,
		Authorization: facts.authorization,
		Visibility:    facts.visibility,
		Dispatch:      dispatch(decl.Static),
	}

	for _, m := range decl.Members {
		if !m.Public {
			continue
		}
		endpoint, ok := a.endpoint(group, tail, m)
		if !ok {
			a.logger.Debug("skipping member without verb",
				slog.String("type", id.String()),
				slog.String("member", m.Name))
			continue
		}
		group.Endpoints = append(group.Endpoints, endpoint)
	}

	if len(group.Endpoints) == 0 {
		a.logger.Debug("skipping type without endpoints", slog.String("type", id.String()))
		return nil, false
	}
	return group, true
}

// endpoint builds the descriptor for one member. actionTail is the part of
// the group template holding the action token, if any.
func (a *Assembler) endpoint(group *model.EndpointGroup, actionTail string, m annotation.Member) (model.EndpointDescriptor, bool) {
	facts := extract.Member(m.Annotations)
	scope := route.Scope{Group: group.Identity.Name, Area: group.Area, Member: m.Name}

	var (
		verb     model.Verb
		template string
		filter   string
	)
	switch {
	case facts.Verb != nil:
		verb = facts.Verb.Verb
		filter = facts.Verb.Filter
		// An explicit marker turns off inference for the path: its literal
		// is used as-is, and no literal means the group root.
		if facts.Verb.HasTemplate {
			template = a.resolver.Resolve(facts.Verb.Template, scope)
		}
	default:
		inferred, segment, ok := a.names.InferVerb(m.Name)
		if !ok {
			return model.EndpointDescriptor{}, false
		}
		verb = inferred
		if actionTail != "" {
			template = a.resolver.Resolve(actionTail, scope)
		} else {
			template = route.Normalize(segment)
		}
	}

	return model.EndpointDescriptor{
		Name:          m.Name,
		Verb:          verb,
		Template:      template,
		Filter:        filter,
		Authorization: merge.Authorization(group.Authorization, facts.Authorization),
		Visibility:    merge.Visibility(group.Visibility, facts.Visibility),
		Responses:     facts.Responses,
		Parameters:    extract.Bindings(m.Parameters),
		Returns:       m.Returns,
		Dispatch:      dispatch(m.Static),
	}, true
}

func dispatch(static bool) model.Dispatch {
	if static {
		return model.DispatchStatic
	}
	return model.DispatchInstance
}
