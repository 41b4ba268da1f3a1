// Package naming implements the naming conventions used to infer HTTP verbs
// and path segments from member and type names.
//
// All conversions are pure. An Engine memoizes them in an injected Cache so
// that repeated lookups within a compilation pass are free.
package naming

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/broady/routegen/model"
)

// PrefixSet is an ordered list of member name prefixes associated with a verb.
type PrefixSet struct {
	id       string
	verb     model.Verb
	prefixes []string
}

// Verb returns the verb the set infers.
func (s PrefixSet) Verb() model.Verb { return s.verb }

// Prefixes returns the prefixes in match order.
func (s PrefixSet) Prefixes() []string { return s.prefixes }

// primary is checked first, in priority order.
var primary = []PrefixSet{
	{id: "Get", verb: model.VerbGet, prefixes: []string{"Get"}},
	{id: "Post", verb: model.VerbPost, prefixes: []string{"Post"}},
	{id: "Put", verb: model.VerbPut, prefixes: []string{"Put"}},
	{id: "Delete", verb: model.VerbDelete, prefixes: []string{"Delete"}},
	{id: "Patch", verb: model.VerbPatch, prefixes: []string{"Patch"}},
	{id: "Head", verb: model.VerbHead, prefixes: []string{"Head"}},
	{id: "Options", verb: model.VerbOptions, prefixes: []string{"Options"}},
}

// synonyms are checked only when no primary prefix matches.
var synonyms = []PrefixSet{
	{id: "Create,Add", verb: model.VerbPost, prefixes: []string{"Create", "Add"}},
	{id: "Update", verb: model.VerbPut, prefixes: []string{"Update"}},
	{id: "Remove", verb: model.VerbDelete, prefixes: []string{"Remove"}},
}

// groupSuffixes are stripped from type names, first match only.
var groupSuffixes = []string{"Service", "Controller", "Endpoint", "Endpoints"}

const (
	asyncSuffix = "-async"
	groupKey    = "#group"
	actionKey   = "#action"
)

// Engine applies naming conventions, memoizing results in its cache.
type Engine struct {
	cache *Cache
}

// New returns an Engine backed by cache. A nil cache gets a fresh one.
func New(cache *Cache) *Engine {
	if cache == nil {
		cache = NewCache()
	}
	return &Engine{cache: cache}
}

// Cache returns the engine's memo store.
func (e *Engine) Cache() *Cache {
	return e.cache
}

// InferVerb derives a verb and relative path segment from a member name.
// Primary verb prefixes are tried first, then synonyms. ok is false when
// no prefix matches; such members are not endpoints.
func (e *Engine) InferVerb(member string) (verb model.Verb, segment string, ok bool) {
	set, ok := match(member)
	if !ok {
		return "", "", false
	}
	return set.verb, e.Segment(member, set), true
}

// Segment strips the first matching prefix of set from member and converts
// the rest to kebab-case, dropping a trailing "-async". A member that does
// not start with any prefix of the set is converted whole.
func (e *Engine) Segment(member string, set PrefixSet) string {
	return e.cache.GetOrCompute(Key{Name: member, Prefix: set.id}, func() string {
		return segment(member, set.prefixes)
	})
}

// ActionName resolves the action token for member: every verb and synonym
// prefix is tried in inference order, and when none matches the whole name
// is converted.
func (e *Engine) ActionName(member string) string {
	return e.cache.GetOrCompute(Key{Name: member, Prefix: actionKey}, func() string {
		if set, ok := match(member); ok {
			return segment(member, set.prefixes)
		}
		return trimAsync(Kebab(member))
	})
}

// GroupShortName strips a well-known suffix (Service, Controller, Endpoint,
// Endpoints; case-insensitive, first match only) from a type name and
// converts the remainder to kebab-case.
func (e *Engine) GroupShortName(typeName string) string {
	return e.cache.GetOrCompute(Key{Name: typeName, Prefix: groupKey}, func() string {
		return Kebab(stripGroupSuffix(typeName))
	})
}

// VerbPrefixes returns the prefix set used to derive segments for verb.
// Verbs with synonyms include them after the primary prefix.
func VerbPrefixes(verb model.Verb) PrefixSet {
	set := PrefixSet{id: string(verb), verb: verb}
	for _, p := range primary {
		if p.verb == verb {
			set.prefixes = append(set.prefixes, p.prefixes...)
		}
	}
	for _, s := range synonyms {
		if s.verb == verb {
			set.prefixes = append(set.prefixes, s.prefixes...)
		}
	}
	return set
}

// Kebab converts a camel-case name to kebab-case: the first character is
// lower-cased and every later upper-case character becomes '-' followed by
// its lower-case form.
func Kebab(s string) string {
	if s == "" {
		return ""
	}
	first, size := utf8.DecodeRuneInString(s)
	var b strings.Builder
	b.Grow(len(s) + len(s)/3)
	b.WriteRune(unicode.ToLower(first))
	for _, r := range s[size:] {
		if unicode.IsUpper(r) {
			b.WriteByte('-')
			b.WriteRune(unicode.ToLower(r))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func match(member string) (PrefixSet, bool) {
	for _, set := range primary {
		if hasAnyPrefix(member, set.prefixes) {
			return set, true
		}
	}
	for _, set := range synonyms {
		if hasAnyPrefix(member, set.prefixes) {
			return set, true
		}
	}
	return PrefixSet{}, false
}

func hasAnyPrefix(s string, prefixes []string) bool {
	for _, p := range prefixes {
		if strings.HasPrefix(s, p) {
			return true
		}
	}
	return false
}

func segment(member string, prefixes []string) string {
	residual := member
	for _, p := range prefixes {
		if strings.HasPrefix(member, p) {
			residual = member[len(p):]
			break
		}
	}
	if residual == "" {
		return ""
	}
	return trimAsync(Kebab(residual))
}

func trimAsync(s string) string {
	return strings.TrimSuffix(s, asyncSuffix)
}

func stripGroupSuffix(name string) string {
	for _, suffix := range groupSuffixes {
		if len(name) >= len(suffix) && strings.EqualFold(name[len(name)-len(suffix):], suffix) {
			return name[:len(name)-len(suffix)]
		}
	}
	return name
}
