// Package route resolves route templates.
//
// Templates may contain three placeholder tokens, each expected to occupy a
// whole path segment:
//
//	[area]        the group's area designation, lower-cased
//	[controller]  the group's short name (see naming.Engine.GroupShortName)
//	[action]      the member's action name (see naming.Engine.ActionName)
//
// A template referencing [area] on a group without an area loses the whole
// segment. Every resolved template is normalized.
package route

import (
	"strings"

	"github.com/broady/routegen/naming"
)

// Placeholder tokens.
const (
	AreaToken   = "[area]"
	GroupToken  = "[controller]"
	ActionToken = "[action]"
)

const separator = '/'

// Scope identifies what a template is being resolved for.
type Scope struct {
	// Group is the declared type name.
	Group string

	// Area is the group's area designation; empty when it has none.
	Area string

	// Member is the member name used for the action token.
	Member string
}

// Resolver substitutes placeholder tokens. It is safe for concurrent use.
type Resolver struct {
	names *naming.Engine
}

// NewResolver returns a resolver using names for group and action names.
func NewResolver(names *naming.Engine) *Resolver {
	if names == nil {
		names = naming.New(nil)
	}
	return &Resolver{names: names}
}

// Resolve substitutes every token in template for scope and normalizes the
// result. Resolving the same inputs always yields the same output.
func (r *Resolver) Resolve(template string, scope Scope) string {
	if template == "" {
		return ""
	}
	out := template
	if strings.Contains(out, AreaToken) {
		if scope.Area != "" {
			out = strings.ReplaceAll(out, AreaToken, strings.ToLower(scope.Area))
		} else {
			out = excise(out, AreaToken)
		}
	}
	if strings.Contains(out, GroupToken) {
		out = strings.ReplaceAll(out, GroupToken, r.names.GroupShortName(scope.Group))
	}
	if strings.Contains(out, ActionToken) {
		out = strings.ReplaceAll(out, ActionToken, r.names.ActionName(scope.Member))
	}
	return Normalize(out)
}

// HasAction reports whether template contains the action token.
func HasAction(template string) bool {
	return strings.Contains(template, ActionToken)
}

// Split cuts a group template in front of the first segment holding the
// action token. head is shared by every member; tail is resolved per
// member. Templates without the token are returned whole as head.
func Split(template string) (head, tail string) {
	i := strings.Index(template, ActionToken)
	if i < 0 {
		return template, ""
	}
	start := strings.LastIndexByte(template[:i], separator)
	if start < 0 {
		start = 0
	}
	return template[:start], template[start:]
}

// Normalize collapses runs of separators, ensures a single leading
// separator and drops a trailing one unless the path is the root. The empty
// path stays empty. Normalize is idempotent.
func Normalize(path string) string {
	if path == "" {
		return ""
	}
	var b strings.Builder
	b.Grow(len(path) + 1)
	if path[0] != separator {
		b.WriteByte(separator)
	}
	lastSep := false
	for i := 0; i < len(path); i++ {
		c := path[i]
		if c == separator {
			if lastSep {
				continue
			}
			lastSep = true
		} else {
			lastSep = false
		}
		b.WriteByte(c)
	}
	out := b.String()
	if len(out) > 1 && out[len(out)-1] == separator {
		out = out[:len(out)-1]
	}
	return out
}

// excise removes every path segment containing token together with exactly
// one adjacent separator, preferring the one that follows the segment.
func excise(path, token string) string {
	for {
		i := strings.Index(path, token)
		if i < 0 {
			return path
		}
		start := i
		for start > 0 && path[start-1] != separator {
			start--
		}
		end := i + len(token)
		for end < len(path) && path[end] != separator {
			end++
		}
		switch {
		case end < len(path):
			end++
		case start > 0:
			start--
		}
		path = path[:start] + path[end:]
	}
}
