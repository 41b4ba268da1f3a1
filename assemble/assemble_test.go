package assemble

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/broady/routegen/annotation"
	"github.com/broady/routegen/model"
)

var (
	str = annotation.StringValue
	num = annotation.IntValue
	ref = annotation.TypeRefValue
)

func marker(kind annotation.Kind, args ...annotation.Value) annotation.Annotation {
	return annotation.New(kind, args...)
}

func member(name string, anns ...annotation.Annotation) annotation.Member {
	return annotation.Member{Name: name, Public: true, Annotations: anns, Returns: "error"}
}

func TestAssembleConventions(t *testing.T) {
	decl := annotation.TypeDecl{
		Namespace:   "example.com/api",
		Name:        "ProductController",
		Annotations: []annotation.Annotation{marker(annotation.KindGroup, str("/api/[controller]"))},
		Members: []annotation.Member{
			member("GetList"),
			member("PostBatchImport"),
			member("CreateProduct"),
			member("UpdateProductAsync"),
			member("SendReport"),
			member("GetByID", marker(annotation.KindGet, str("{id:int}"))),
			member("Search", marker(annotation.KindGet)),
			{Name: "GetSecret", Public: false},
		},
	}

	group, ok := New().Assemble(decl)
	require.True(t, ok)
	assert.Equal(t, "/api/product", group.RoutePrefix)
	assert.Equal(t, model.DispatchInstance, group.Dispatch)

	type route struct {
		name     string
		verb     model.Verb
		template string
	}
	var got []route
	for _, e := range group.Endpoints {
		got = append(got, route{e.Name, e.Verb, e.Template})
	}
	want := []route{
		{"GetList", model.VerbGet, "/list"},
		{"PostBatchImport", model.VerbPost, "/batch-import"},
		{"CreateProduct", model.VerbPost, "/product"},
		{"UpdateProductAsync", model.VerbPut, "/product"},
		{"GetByID", model.VerbGet, "/{id:int}"},
		{"Search", model.VerbGet, ""},
	}
	if diff := cmp.Diff(want, got, cmp.AllowUnexported(route{})); diff != "" {
		t.Errorf("endpoints mismatch (-want +got):\n%s", diff)
	}
}

func TestAssembleDefaultTemplate(t *testing.T) {
	decl := annotation.TypeDecl{
		Name:        "NotificationEndpoints",
		Annotations: []annotation.Annotation{marker(annotation.KindGroup)},
		Members:     []annotation.Member{member("GetNotifications", marker(annotation.KindGet))},
	}
	group, ok := New().Assemble(decl)
	require.True(t, ok)
	assert.Equal(t, "/api/notification", group.RoutePrefix)
}

func TestAssembleArea(t *testing.T) {
	decl := annotation.TypeDecl{
		Name: "UserEndpoints",
		Annotations: []annotation.Annotation{
			marker(annotation.KindArea, str("Admin")),
			marker(annotation.KindGroup, str("/api/[area]/[controller]")),
		},
		Members: []annotation.Member{member("GetUsers", marker(annotation.KindGet))},
		Static:  true,
	}
	group, ok := New().Assemble(decl)
	require.True(t, ok)
	assert.Equal(t, "/api/admin/user", group.RoutePrefix)
	assert.Equal(t, model.DispatchStatic, group.Dispatch)

	decl.Annotations = decl.Annotations[1:]
	decl.Name = "CategoryEndpoint"
	group, ok = New().Assemble(decl)
	require.True(t, ok)
	assert.Equal(t, "/api/category", group.RoutePrefix)
}

func TestAssembleActionTemplate(t *testing.T) {
	decl := annotation.TypeDecl{
		Name:        "ReportService",
		Annotations: []annotation.Annotation{marker(annotation.KindGroup, str("/api/[controller]/[action]"))},
		Members: []annotation.Member{
			member("GetDailySummary"),
			member("Export", marker(annotation.KindPost)),
			member("Archive", marker(annotation.KindPost, str("archive/{id}"))),
			member("Rebuild", marker(annotation.KindPost, str("[action]/now"))),
		},
	}
	group, ok := New().Assemble(decl)
	require.True(t, ok)
	assert.Equal(t, "/api/report", group.RoutePrefix)

	templates := map[string]string{}
	for _, e := range group.Endpoints {
		templates[e.Name] = e.Template
	}
	assert.Equal(t, map[string]string{
		"GetDailySummary": "/daily-summary",
		"Export":          "",
		"Archive":         "/archive/{id}",
		"Rebuild":         "/rebuild/now",
	}, templates)
}

func TestAssembleInheritancePerField(t *testing.T) {
	decl := annotation.TypeDecl{
		Name: "InheritedController",
		Annotations: []annotation.Annotation{
			annotation.New(annotation.KindGroup).With("FilterType", ref("filters.Derived")),
		},
		Chain: []annotation.Ancestor{
			{
				Name: "BaseController",
				Annotations: []annotation.Annotation{
					annotation.New(annotation.KindGroup, str("/api/base")).
						With("FilterType", ref("filters.Base")).
						With("Name", str("Base")),
					marker(annotation.KindAuthorize, str("BasePolicy")),
				},
			},
		},
		Members: []annotation.Member{member("GetInherited", marker(annotation.KindGet, str("inherited")))},
	}

	group, ok := New().Assemble(decl)
	require.True(t, ok)
	assert.Equal(t, "/api/base", group.RoutePrefix)
	assert.Equal(t, "filters.Derived", group.Filter)
	assert.Equal(t, "Base", group.DisplayName)
	assert.Equal(t, &model.Authorization{Policy: "BasePolicy"}, group.Authorization)
	assert.Equal(t, "/inherited", group.Endpoints[0].Template)
}

func TestAssembleInheritanceDoesNotMutateAncestors(t *testing.T) {
	base := []annotation.Annotation{marker(annotation.KindAuthorize).With("Roles", str("admin"))}
	decl := annotation.TypeDecl{
		Name: "Derived",
		Annotations: []annotation.Annotation{
			marker(annotation.KindGroup, str("/d")),
			marker(annotation.KindAuthorize, str("P")),
		},
		Chain:   []annotation.Ancestor{{Name: "Base", Annotations: base}},
		Members: []annotation.Member{member("Get")},
	}
	group, ok := New().Assemble(decl)
	require.True(t, ok)
	assert.Equal(t, &model.Authorization{Policy: "P", Roles: "admin"}, group.Authorization)
}

func TestAssembleMergesMemberMetadata(t *testing.T) {
	decl := annotation.TypeDecl{
		Name: "AccountService",
		Annotations: []annotation.Annotation{
			marker(annotation.KindGroup, str("/api/[controller]")),
			marker(annotation.KindAuthorize, str("A")),
			annotation.New(annotation.KindVisibility).With("GroupName", str("accounts")),
		},
		Members: []annotation.Member{
			member("GetPublic", marker(annotation.KindAllowAnonymous)),
			member("GetPrivate"),
			member("GetHidden", annotation.New(annotation.KindVisibility).With("IgnoreApi", annotation.BoolValue(true))),
			member("GetTyped",
				marker(annotation.KindProduces, num(200), ref("api.Account")),
				marker(annotation.KindProduces, num(404))),
		},
	}

	group, ok := New().Assemble(decl)
	require.True(t, ok)
	require.Len(t, group.Endpoints, 4)

	pub, priv, hidden, typed := group.Endpoints[0], group.Endpoints[1], group.Endpoints[2], group.Endpoints[3]
	assert.Equal(t, &model.Authorization{Policy: "A", AllowAnonymous: true}, pub.Authorization)
	assert.Same(t, group.Authorization, priv.Authorization)
	assert.True(t, hidden.Visibility.Ignored())
	assert.Equal(t, "accounts", hidden.Visibility.GroupName)
	assert.Equal(t, []model.Response{{StatusCode: 200, Type: "api.Account"}, {StatusCode: 404}}, typed.Responses)
}

func TestAssembleBindings(t *testing.T) {
	decl := annotation.TypeDecl{
		Name:        "OrderController",
		Annotations: []annotation.Annotation{marker(annotation.KindGroup, str("/orders"))},
		Members: []annotation.Member{{
			Name:   "CreateOrder",
			Public: true,
			Static: true,
			Parameters: []annotation.Parameter{
				{Name: "ctx", Type: "context.Context"},
				{Name: "req", Type: "*api.Order", Annotations: []annotation.Annotation{marker(annotation.KindFromBody)}},
			},
			Returns: "(*api.Order, error)",
		}},
	}
	group, ok := New().Assemble(decl)
	require.True(t, ok)
	e := group.Endpoints[0]
	assert.Equal(t, model.DispatchStatic, e.Dispatch)
	assert.Equal(t, "(*api.Order, error)", e.Returns)
	assert.Equal(t, []model.ParameterBinding{
		{Name: "ctx", Type: "context.Context", Source: model.SourceAuto},
		{Name: "req", Type: "*api.Order", Source: model.SourceBody},
	}, e.Parameters)
}

func TestAssembleDiscards(t *testing.T) {
	tests := []struct {
		name string
		decl annotation.TypeDecl
	}{
		{
			name: "no group marker",
			decl: annotation.TypeDecl{Name: "Plain", Members: []annotation.Member{member("GetX")}},
		},
		{
			name: "no qualifying members",
			decl: annotation.TypeDecl{
				Name:        "Helper",
				Annotations: []annotation.Annotation{marker(annotation.KindGroup, str("/h"))},
				Members:     []annotation.Member{member("Compute"), {Name: "GetX"}},
			},
		},
		{
			name: "prefix resolves to nothing",
			decl: annotation.TypeDecl{
				Name:        "Nowhere",
				Annotations: []annotation.Annotation{marker(annotation.KindGroup, str("[area]"))},
				Members:     []annotation.Member{member("GetX")},
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			group, ok := New().Assemble(tt.decl)
			assert.False(t, ok)
			assert.Nil(t, group)
		})
	}
}

func TestAssembleAllSortsByIdentity(t *testing.T) {
	var decls []annotation.TypeDecl
	for _, name := range []string{"Zeta", "Alpha", "Skipped", "Mid"} {
		d := annotation.TypeDecl{Namespace: "example.com/api", Name: name, Members: []annotation.Member{member("GetAll")}}
		if name != "Skipped" {
			d.Annotations = []annotation.Annotation{marker(annotation.KindGroup, str("/"+name))}
		}
		decls = append(decls, d)
	}
	decls = append(decls, annotation.TypeDecl{
		Namespace:   "example.com/admin",
		Name:        "Zeta",
		Annotations: []annotation.Annotation{marker(annotation.KindGroup, str("/admin"))},
		Members:     []annotation.Member{member("GetAll")},
	})

	groups, err := New(WithWorkers(3)).AssembleAll(context.Background(), decls)
	require.NoError(t, err)

	var ids []string
	for _, g := range groups {
		ids = append(ids, g.Identity.String())
	}
	assert.Equal(t, []string{
		"example.com/admin.Zeta",
		"example.com/api.Alpha",
		"example.com/api.Mid",
		"example.com/api.Zeta",
	}, ids)
}

func TestAssembleAllDeterministic(t *testing.T) {
	var decls []annotation.TypeDecl
	for i := range 50 {
		decls = append(decls, annotation.TypeDecl{
			Name:        fmt.Sprintf("Item%02dService", i),
			Annotations: []annotation.Annotation{marker(annotation.KindGroup, str("/api/[controller]/[action]"))},
			Members:     []annotation.Member{member("GetDetailsAsync"), member("CreateEntry")},
		})
	}

	a := New(WithWorkers(8))
	first, err := a.AssembleAll(context.Background(), decls)
	require.NoError(t, err)
	second, err := a.AssembleAll(context.Background(), decls)
	require.NoError(t, err)
	if diff := cmp.Diff(first, second); diff != "" {
		t.Errorf("AssembleAll not deterministic (-first +second):\n%s", diff)
	}
	assert.Equal(t, "/api/item00", first[0].RoutePrefix)
	assert.Equal(t, "/details", first[0].Endpoints[0].Template)
}

func TestAssembleAllCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	decls := []annotation.TypeDecl{{
		Name:        "X",
		Annotations: []annotation.Annotation{marker(annotation.KindGroup, str("/x"))},
		Members:     []annotation.Member{member("GetAll")},
	}}
	_, err := New().AssembleAll(ctx, decls)
	assert.ErrorIs(t, err, context.Canceled)
}
