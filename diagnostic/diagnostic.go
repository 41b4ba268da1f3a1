// Package diagnostic reports advisory findings about assembled groups.
//
// Diagnostics never change the model: conflicting endpoints are reported
// and still handed to emission.
package diagnostic

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/samber/lo"

	"github.com/broady/routegen/model"
)

// Kind categorizes a diagnostic.
type Kind string

const (
	// KindRouteConflict is reported when several members of one group
	// register the same verb and template.
	KindRouteConflict Kind = "route_conflict"
)

// Diagnostic is one non-fatal finding.
type Diagnostic struct {
	Kind  Kind
	Group model.Identity

	Verb model.Verb

	// Template is the conflicting template relative to the group prefix.
	Template string

	// Path is the full conflicting path, prefix included.
	Path string

	// Members lists every contributing member name in declaration order.
	Members []string
}

func (d Diagnostic) String() string {
	return fmt.Sprintf("%s: %s %s %s is registered by %s",
		d.Kind, d.Group, d.Verb, d.Path, strings.Join(d.Members, ", "))
}

// LogValue implements slog.LogValuer.
func (d Diagnostic) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("kind", string(d.Kind)),
		slog.String("group", d.Group.String()),
		slog.String("verb", string(d.Verb)),
		slog.String("path", d.Path),
		slog.Any("members", d.Members),
	)
}

// Handler receives diagnostics as they are found.
type Handler interface {
	OnDiagnostic(Diagnostic)
}

// HandlerFunc adapts a function to Handler.
type HandlerFunc func(Diagnostic)

func (f HandlerFunc) OnDiagnostic(d Diagnostic) {
	f(d)
}

// LogHandler returns a Handler that logs each diagnostic at warn level.
func LogHandler(logger *slog.Logger) Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return HandlerFunc(func(d Diagnostic) {
		logger.Warn("route conflict", slog.Any("diagnostic", d))
	})
}

type routeKey struct {
	verb     model.Verb
	template string
}

// Conflicts reports every (verb, template) pair claimed by more than one
// member of group, in the order the pairs first appear.
func Conflicts(group *model.EndpointGroup) []Diagnostic {
	keyOf := func(e model.EndpointDescriptor) routeKey {
		return routeKey{verb: e.Verb, template: e.Template}
	}
	byKey := lo.GroupBy(group.Endpoints, keyOf)

	var out []Diagnostic
	for _, key := range lo.Uniq(lo.Map(group.Endpoints, func(e model.EndpointDescriptor, _ int) routeKey {
		return keyOf(e)
	})) {
		members := lo.Uniq(lo.Map(byKey[key], func(e model.EndpointDescriptor, _ int) string {
			return e.Name
		}))
		if len(members) < 2 {
			continue
		}
		out = append(out, Diagnostic{
			Kind:     KindRouteConflict,
			Group:    group.Identity,
			Verb:     key.verb,
			Template: key.template,
			Path:     group.Path(byKey[key][0]),
			Members:  members,
		})
	}
	return out
}

// Check runs Conflicts over groups in order, passing each diagnostic to h
// when h is non-nil, and returns them all.
func Check(groups []*model.EndpointGroup, h Handler) []Diagnostic {
	var all []Diagnostic
	for _, g := range groups {
		for _, d := range Conflicts(g) {
			if h != nil {
				h.OnDiagnostic(d)
			}
			all = append(all, d)
		}
	}
	return all
}
