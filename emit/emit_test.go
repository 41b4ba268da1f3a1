package emit

import (
	"context"
	"encoding/json"
	"go/ast"
	"go/parser"
	"go/token"
	"regexp"
	"strings"
	"testing"

	"github.com/goccy/go-yaml"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/broady/routegen/diagnostic"
	"github.com/broady/routegen/model"
	"github.com/broady/routegen/sink"
)

func testGroups() []*model.EndpointGroup {
	return []*model.EndpointGroup{
		{
			Identity:      model.Identity{Namespace: "example.com/shop/api", Name: "WidgetController"},
			RoutePrefix:   "/api/widget",
			Filter:        "Audit",
			Authorization: &model.Authorization{Policy: "Staff"},
			Endpoints: []model.EndpointDescriptor{
				{
					Name:          "GetAll",
					Verb:          model.VerbGet,
					Authorization: &model.Authorization{Policy: "Staff", AllowAnonymous: true},
					Responses:     []model.Response{{StatusCode: 200, Type: "[]Widget"}},
				},
				{
					Name:          "GetOne",
					Verb:          model.VerbGet,
					Template:      "/{id}",
					Authorization: &model.Authorization{Policy: "Staff"},
					Visibility:    &model.Visibility{Ignore: model.Ptr(true), GroupName: "internal"},
					Parameters:    []model.ParameterBinding{{Name: "id", Type: "string", Source: model.SourceRoute}},
					Returns:       "(Widget, error)",
				},
			},
		},
		{
			Identity:    model.Identity{Namespace: "example.com/shop/health", Name: "healthEndpoints"},
			RoutePrefix: "/",
			Dispatch:    model.DispatchStatic,
			Endpoints: []model.EndpointDescriptor{
				{Name: "Check", Verb: model.VerbHead, Template: "/health", Dispatch: model.DispatchStatic},
			},
		},
	}
}

func mustEmitter(t *testing.T, opts Options) *Emitter {
	t.Helper()
	e, err := New(opts)
	require.NoError(t, err)
	return e
}

func TestNewValidates(t *testing.T) {
	_, err := New(Options{Package: "func", Output: "x.go"})
	assert.ErrorContains(t, err, "invalid package name")
	_, err = New(Options{Package: "routes"})
	assert.ErrorContains(t, err, "output file name")
}

func TestSource(t *testing.T) {
	e := mustEmitter(t, Options{Package: "routes", Output: "routes_gen.go"})
	src, err := e.Source(testGroups())
	require.NoError(t, err)

	_, err = parser.ParseFile(token.NewFileSet(), "routes_gen.go", src, parser.ParseComments)
	require.NoError(t, err, "generated source must parse:\n%s", src)

	out := string(src)
	assert.True(t, strings.HasPrefix(out, "// Code generated by routegen. DO NOT EDIT.\n\npackage routes\n"))
	assert.Contains(t, out, `"github.com/go-chi/chi/v5"`)

	for _, want := range []string{
		"type WidgetControllerHandlers struct {",
		"func MapWidgetController(r chi.Router, h WidgetControllerHandlers, wrap Wrapper) {",
		"handle(r, wrap, Endpoints[0], h.GetAll)",
		"handle(r, wrap, Endpoints[1], h.GetOne)",
		"type HealthEndpointsHandlers struct {",
		"handle(r, wrap, Endpoints[2], h.Check)",
		"MapWidgetController(r, h.WidgetController, h.Wrap)",
		"MapHealthEndpoints(r, h.HealthEndpoints, h.Wrap)",
		`&Authorization{Policy: "Staff", AllowAnonymous: true}`,
		`[]Response{{StatusCode: 200, Type: "[]Widget"}}`,
	} {
		assert.Contains(t, out, want)
	}

	for _, re := range []string{
		`Pattern:\s+"/api/widget",`,
		`Pattern:\s+"/api/widget/\{id\}",`,
		`Pattern:\s+"/health",`,
		`Method:\s+"HEAD",`,
		`GroupFilter:\s+"Audit",`,
		`IgnoreAPI:\s+true,`,
		`APIGroup:\s+"internal",`,
		`Static:\s+true,`,
		`Group:\s+"example.com/shop/health.healthEndpoints",`,
	} {
		assert.Regexp(t, regexp.MustCompile(re), out)
	}
}

func TestSourceEmpty(t *testing.T) {
	e := mustEmitter(t, Options{Package: "routes", Output: "routes_gen.go"})
	src, err := e.Source(nil)
	require.NoError(t, err)
	_, err = parser.ParseFile(token.NewFileSet(), "routes_gen.go", src, 0)
	require.NoError(t, err)
	assert.Contains(t, string(src), "func MapRoutes(r chi.Router, h Handlers) {\n}")
}

func TestIdentifiers(t *testing.T) {
	groups := []*model.EndpointGroup{
		{Identity: model.Identity{Namespace: "example.com/admin", Name: "UserService"}},
		{Identity: model.Identity{Namespace: "example.com/public-api", Name: "UserService"}},
		{Identity: model.Identity{Namespace: "example.com/x", Name: "orders"}},
		{Identity: model.Identity{Namespace: "example.com/y", Name: "AdminUserService"}},
	}
	assert.Equal(t, []string{
		"AdminUserService",
		"PublicApiUserService",
		"Orders",
		"AdminUserService2",
	}, identifiers(groups))
}

func TestSourceReservedGroupNames(t *testing.T) {
	groups := []*model.EndpointGroup{
		{
			Identity:    model.Identity{Namespace: "example.com/shop", Name: "Wrap"},
			RoutePrefix: "/api/wrap",
			Endpoints:   []model.EndpointDescriptor{{Name: "GetAll", Verb: model.VerbGet}},
		},
		{
			Identity:    model.Identity{Namespace: "example.com/shop", Name: "Routes"},
			RoutePrefix: "/api/routes",
			Endpoints:   []model.EndpointDescriptor{{Name: "GetAll", Verb: model.VerbGet}},
		},
	}
	assert.Equal(t, []string{"Wrap2", "Routes2"}, identifiers(groups))

	e := mustEmitter(t, Options{Package: "routes", Output: "routes_gen.go"})
	src, err := e.Source(groups)
	require.NoError(t, err)
	f, err := parser.ParseFile(token.NewFileSet(), "routes_gen.go", src, 0)
	require.NoError(t, err)

	decls := make(map[string]int)
	var handlerFields []string
	for _, d := range f.Decls {
		switch d := d.(type) {
		case *ast.FuncDecl:
			decls[d.Name.Name]++
		case *ast.GenDecl:
			for _, spec := range d.Specs {
				switch spec := spec.(type) {
				case *ast.TypeSpec:
					decls[spec.Name.Name]++
					if st, ok := spec.Type.(*ast.StructType); ok && spec.Name.Name == "Handlers" {
						for _, field := range st.Fields.List {
							for _, n := range field.Names {
								handlerFields = append(handlerFields, n.Name)
							}
						}
					}
				case *ast.ValueSpec:
					for _, n := range spec.Names {
						decls[n.Name]++
					}
				}
			}
		}
	}
	for name, n := range decls {
		assert.Equal(t, 1, n, "%s declared more than once", name)
	}
	assert.Equal(t, []string{"Wrap2", "Routes2", "Wrap"}, handlerFields)
	assert.Contains(t, string(src), "MapRoutes2(r, h.Routes2, h.Wrap)")
}

func TestEmit(t *testing.T) {
	groups := testGroups()
	groups[0].Endpoints = append(groups[0].Endpoints, model.EndpointDescriptor{Name: "GetEverything", Verb: model.VerbGet})
	diags := diagnostic.Check(groups, nil)
	require.Len(t, diags, 1)

	mem := sink.NewMemory()
	e := mustEmitter(t, Options{Package: "routes", Output: "routes_gen.go", Manifest: "routes.json"})
	result, err := e.Emit(context.Background(), groups, diags, mem)
	require.NoError(t, err)

	assert.Equal(t, []string{"routes.json", "routes_gen.go"}, mem.Names())
	require.Len(t, result.Files, 2)
	assert.Equal(t, "routes_gen.go", result.Files[0].Path)
	assert.Equal(t, int64(len(mem.Get("routes_gen.go"))), result.Files[0].Size)

	var m Manifest
	require.NoError(t, json.Unmarshal(mem.Get("routes.json"), &m))
	require.Len(t, m.Groups, 2)
	widget := m.Groups[0]
	assert.Equal(t, "example.com/shop/api.WidgetController", widget.Type)
	assert.Equal(t, "instance", widget.Dispatch)
	require.Len(t, widget.Endpoints, 3, "conflicting endpoints are still emitted")
	assert.Equal(t, "/api/widget/{id}", widget.Endpoints[1].Path)
	assert.Equal(t, []ManifestParameter{{Name: "id", Type: "string", Source: "route"}}, widget.Endpoints[1].Parameters)
	assert.Equal(t, "static", m.Groups[1].Dispatch)

	require.Len(t, m.Diagnostics, 1)
	assert.Equal(t, ManifestDiagnostic{
		Kind:    "route_conflict",
		Group:   "example.com/shop/api.WidgetController",
		Method:  "GET",
		Path:    "/api/widget",
		Members: []string{"GetAll", "GetEverything"},
	}, m.Diagnostics[0])
}

func TestEmitYAMLManifest(t *testing.T) {
	mem := sink.NewMemory()
	e := mustEmitter(t, Options{Package: "routes", Output: "gen/routes_gen.go", Manifest: "gen/routes.yaml"})
	_, err := e.Emit(context.Background(), testGroups(), nil, mem)
	require.NoError(t, err)

	var m Manifest
	require.NoError(t, yaml.Unmarshal(mem.Get("gen/routes.yaml"), &m))
	require.Len(t, m.Groups, 2)
	assert.Equal(t, "/api/widget", m.Groups[0].Prefix)
	assert.Equal(t, "Staff", m.Groups[0].Authorization.Policy)
	assert.Empty(t, m.Diagnostics)
}

func TestEmitNoManifest(t *testing.T) {
	mem := sink.NewMemory()
	e := mustEmitter(t, Options{Package: "routes", Output: "routes_gen.go"})
	result, err := e.Emit(context.Background(), testGroups(), nil, mem)
	require.NoError(t, err)
	assert.Len(t, result.Files, 1)
	assert.Equal(t, []string{"routes_gen.go"}, mem.Names())
}

func TestEmitSinkError(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	e := mustEmitter(t, Options{Package: "routes", Output: "routes_gen.go"})
	_, err := e.Emit(ctx, testGroups(), nil, sink.NewMemory())
	require.ErrorIs(t, err, context.Canceled)
	assert.Contains(t, err.Error(), "write routes_gen.go")
}
