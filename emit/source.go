package emit

import (
	"bytes"
	"fmt"
	"go/format"
	"path"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/stoewer/go-strcase"

	"github.com/broady/routegen/model"
)

const header = `// Code generated by routegen. DO NOT EDIT.

package %s

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// Authorization is the access requirement of an endpoint.
type Authorization struct {
	Policy                string
	Roles                 string
	AuthenticationSchemes string
	AllowAnonymous        bool
}

// Response is one declared response of an endpoint.
type Response struct {
	StatusCode  int
	Type        string
	ContentType string
}

// Endpoint describes one generated route.
type Endpoint struct {
	Group         string
	Name          string
	Method        string
	Pattern       string
	Area          string
	GroupFilter   string
	Filter        string
	Authorization *Authorization
	IgnoreAPI     bool
	APIGroup      string
	Responses     []Response
	Static        bool
}

// Wrapper decorates a handler with what its endpoint declares, such as
// authorization or filters.
type Wrapper func(Endpoint, http.Handler) http.Handler
`

const footer = `
func handle(r chi.Router, wrap Wrapper, e Endpoint, h http.Handler) {
	if h == nil {
		return
	}
	if wrap != nil {
		h = wrap(e, h)
	}
	r.Method(e.Method, e.Pattern, h)
}
`

// Source renders the registration code for groups. Groups are emitted in
// the order given; endpoints keep their declaration order.
func (e *Emitter) Source(groups []*model.EndpointGroup) ([]byte, error) {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, header, e.opts.Package)

	names := identifiers(groups)

	buf.WriteString("\n// Endpoints lists every generated route in registration order.\nvar Endpoints = []Endpoint{\n")
	first := make([]int, len(groups))
	n := 0
	for i, g := range groups {
		first[i] = n
		for _, ep := range g.Endpoints {
			writeEndpoint(&buf, g, ep)
			n++
		}
	}
	buf.WriteString("}\n")

	for i, g := range groups {
		writeGroup(&buf, names[i], g, first[i])
	}

	buf.WriteString("\n// Handlers holds the handlers of every group.\ntype Handlers struct {\n")
	for _, name := range names {
		fmt.Fprintf(&buf, "\t%s %sHandlers\n", name, name)
	}
	buf.WriteString("\n\t// Wrap, if set, decorates every handler before it is registered.\n\tWrap Wrapper\n}\n")

	buf.WriteString("\n// MapRoutes registers every group.\nfunc MapRoutes(r chi.Router, h Handlers) {\n")
	for _, name := range names {
		fmt.Fprintf(&buf, "\tMap%s(r, h.%s, h.Wrap)\n", name, name)
	}
	buf.WriteString("}\n")
	buf.WriteString(footer)

	out, err := format.Source(buf.Bytes())
	if err != nil {
		return nil, fmt.Errorf("format generated source: %w", err)
	}
	return out, nil
}

func writeGroup(buf *bytes.Buffer, name string, g *model.EndpointGroup, first int) {
	fmt.Fprintf(buf, "\n// %sHandlers holds the handlers of %s.\ntype %sHandlers struct {\n", name, g.Identity, name)
	for _, ep := range g.Endpoints {
		fmt.Fprintf(buf, "\t%s http.Handler\n", ep.Name)
	}
	buf.WriteString("}\n")

	fmt.Fprintf(buf, "\n// Map%s registers the routes of %s under %s.\n", name, g.Identity, g.RoutePrefix)
	fmt.Fprintf(buf, "func Map%s(r chi.Router, h %sHandlers, wrap Wrapper) {\n", name, name)
	for i, ep := range g.Endpoints {
		fmt.Fprintf(buf, "\thandle(r, wrap, Endpoints[%d], h.%s)\n", first+i, ep.Name)
	}
	buf.WriteString("}\n")
}

func writeEndpoint(buf *bytes.Buffer, g *model.EndpointGroup, ep model.EndpointDescriptor) {
	buf.WriteString("\t{\n")
	field := func(name, value string) {
		fmt.Fprintf(buf, "\t\t%s: %s,\n", name, value)
	}
	str := func(name, value string) {
		if value != "" {
			field(name, strconv.Quote(value))
		}
	}

	str("Group", g.Identity.String())
	str("Name", ep.Name)
	str("Method", string(ep.Verb))
	str("Pattern", g.Path(ep))
	str("Area", g.Area)
	str("GroupFilter", g.Filter)
	str("Filter", ep.Filter)
	if a := ep.Authorization; a != nil {
		field("Authorization", authorization(a))
	}
	if ep.Visibility.Ignored() {
		field("IgnoreAPI", "true")
	}
	if ep.Visibility != nil {
		str("APIGroup", ep.Visibility.GroupName)
	}
	if len(ep.Responses) > 0 {
		parts := make([]string, 0, len(ep.Responses))
		for _, r := range ep.Responses {
			parts = append(parts, response(r))
		}
		field("Responses", "[]Response{"+strings.Join(parts, ", ")+"}")
	}
	if ep.Dispatch == model.DispatchStatic {
		field("Static", "true")
	}
	buf.WriteString("\t},\n")
}

func authorization(a *model.Authorization) string {
	var fields []string
	add := func(name, v string) {
		if v != "" {
			fields = append(fields, name+": "+strconv.Quote(v))
		}
	}
	add("Policy", a.Policy)
	add("Roles", a.Roles)
	add("AuthenticationSchemes", a.AuthenticationSchemes)
	if a.AllowAnonymous {
		fields = append(fields, "AllowAnonymous: true")
	}
	return "&Authorization{" + strings.Join(fields, ", ") + "}"
}

func response(r model.Response) string {
	s := "{StatusCode: " + strconv.Itoa(r.StatusCode)
	if r.Type != "" {
		s += ", Type: " + strconv.Quote(r.Type)
	}
	if r.ContentType != "" {
		s += ", ContentType: " + strconv.Quote(r.ContentType)
	}
	return s + "}"
}

// reserved lists group names that would collide with fixed declarations:
// the Wrap field of Handlers, and MapRoutes.
var reserved = []string{"Wrap", "Routes"}

// identifiers picks an exported Go name per group. Type names are used as
// they are; names shared by several packages get the package name in front.
// A name still taken, or reserved, gets a numeric suffix.
func identifiers(groups []*model.EndpointGroup) []string {
	count := make(map[string]int)
	for _, g := range groups {
		count[exported(g.Identity.Name)]++
	}

	names := make([]string, len(groups))
	taken := make(map[string]bool, len(groups)+len(reserved))
	for _, name := range reserved {
		taken[name] = true
	}
	for i, g := range groups {
		name := exported(g.Identity.Name)
		if count[name] > 1 {
			name = strcase.UpperCamelCase(path.Base(g.Identity.Namespace)) + name
		}
		for base, n := name, 2; taken[name]; n++ {
			name = base + strconv.Itoa(n)
		}
		taken[name] = true
		names[i] = name
	}
	return names
}

func exported(name string) string {
	r, size := utf8.DecodeRuneInString(name)
	return string(unicode.ToUpper(r)) + name[size:]
}
