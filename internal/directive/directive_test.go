package directive

import (
	"go/ast"
	"go/parser"
	"go/token"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name    string
		text    string
		want    Directive
		notDir  bool
		wantErr string
	}{
		{
			name:   "plain comment",
			text:   "// GetAll returns everything.",
			notDir: true,
		},
		{
			name:   "other tool",
			text:   "//go:generate routegen gen .",
			notDir: true,
		},
		{
			name: "bare name",
			text: "//route:anonymous",
			want: Directive{Name: "anonymous"},
		},
		{
			name: "quoted template",
			text: `//route:group "/api/[controller]"`,
			want: Directive{Name: "group", Args: []Arg{
				{Kind: ArgString, Text: "/api/[controller]"},
			}},
		},
		{
			name: "backquoted with spaces",
			text: "//route:authorize `admin only`",
			want: Directive{Name: "authorize", Args: []Arg{
				{Kind: ArgString, Text: "admin only"},
			}},
		},
		{
			name: "escaped quote",
			text: `//route:produces 200 ContentType="text/\"plain\""`,
			want: Directive{Name: "produces", Args: []Arg{
				{Kind: ArgInt, Text: "200"},
				{Key: "ContentType", Kind: ArgString, Text: `text/"plain"`},
			}},
		},
		{
			name: "mixed kinds",
			text: `//route:produces 404  ProblemDetails ContentType="application/problem+json"`,
			want: Directive{Name: "produces", Args: []Arg{
				{Kind: ArgInt, Text: "404"},
				{Kind: ArgIdent, Text: "ProblemDetails"},
				{Key: "ContentType", Kind: ArgString, Text: "application/problem+json"},
			}},
		},
		{
			name: "named bool and string",
			text: `//route:api IgnoreApi=true GroupName="internal"`,
			want: Directive{Name: "api", Args: []Arg{
				{Key: "IgnoreApi", Kind: ArgBool, Text: "true"},
				{Key: "GroupName", Kind: ArgString, Text: "internal"},
			}},
		},
		{
			name: "named ident",
			text: "//route:get FilterType=auditFilter",
			want: Directive{Name: "get", Args: []Arg{
				{Key: "FilterType", Kind: ArgIdent, Text: "auditFilter"},
			}},
		},
		{
			name: "qualified ident",
			text: "//route:produces 200 models.User",
			want: Directive{Name: "produces", Args: []Arg{
				{Kind: ArgInt, Text: "200"},
				{Kind: ArgIdent, Text: "models.User"},
			}},
		},
		{
			name: "equals inside quoted string is not a key",
			text: `//route:get "/search?q=x"`,
			want: Directive{Name: "get", Args: []Arg{
				{Kind: ArgString, Text: "/search?q=x"},
			}},
		},
		{
			name:    "unterminated",
			text:    `//route:get "/items`,
			wantErr: "unterminated string",
		},
		{
			name:    "missing name",
			text:    "//route:",
			wantErr: "missing directive name",
		},
		{
			name:    "junk after string",
			text:    `//route:get "/a"b`,
			wantErr: "after string",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok, err := Parse(tt.text)
			if tt.notDir {
				assert.False(t, ok)
				return
			}
			require.True(t, ok)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			if diff := cmp.Diff(tt.want, got, cmpopts.EquateEmpty()); diff != "" {
				t.Errorf("Parse(%q) mismatch (-want +got):\n%s", tt.text, diff)
			}
		})
	}
}

func TestDirectiveArgs(t *testing.T) {
	d, _, err := Parse(`//route:authorize "Admins" Roles="a,b" Roles="c" 7 false`)
	require.NoError(t, err)

	pos := d.Positional()
	require.Len(t, pos, 3)
	assert.Equal(t, "Admins", pos[0].Text)
	assert.Equal(t, 7, pos[1].Int())
	assert.False(t, pos[2].Bool())
	assert.Equal(t, ArgBool, pos[2].Kind)

	named := d.Named()
	assert.Equal(t, map[string]Arg{"Roles": {Key: "Roles", Kind: ArgString, Text: "c"}}, named)
	assert.Equal(t, "//route:authorize", d.String())

	bare, _, err := Parse("//route:anonymous")
	require.NoError(t, err)
	assert.Nil(t, bare.Named())
}

func TestFromComments(t *testing.T) {
	src := `package p

// UserService manages users.
//
//route:group "/api/users"
//route:authorize Policy="Admins"
type UserService struct{}

//route:get "/{id"
func (UserService) Broken() {}
`
	fset := token.NewFileSet()
	f, err := parser.ParseFile(fset, "p.go", src, parser.ParseComments)
	require.NoError(t, err)

	var docs []*ast.CommentGroup
	ast.Inspect(f, func(n ast.Node) bool {
		switch n := n.(type) {
		case *ast.GenDecl:
			docs = append(docs, n.Doc)
		case *ast.FuncDecl:
			docs = append(docs, n.Doc)
		}
		return true
	})
	require.Len(t, docs, 2)

	ds, err := FromComments(fset, docs[0])
	require.NoError(t, err)
	require.Len(t, ds, 2)
	assert.Equal(t, "group", ds[0].Name)
	assert.Equal(t, 5, ds[0].Pos.Line)
	assert.Equal(t, "authorize", ds[1].Name)
	assert.Equal(t, 6, ds[1].Pos.Line)

	// "/{id" is a complete string; the template itself is not validated here.
	ds, err = FromComments(fset, docs[1])
	require.NoError(t, err)
	require.Len(t, ds, 1)
	assert.Equal(t, "/{id", ds[0].Args[0].Text)

	none, err := FromComments(fset, nil)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestFromCommentsError(t *testing.T) {
	src := "package p\n\n//route:get \"/a\n//route:post\nfunc F() {}\n"
	fset := token.NewFileSet()
	f, err := parser.ParseFile(fset, "p.go", src, parser.ParseComments)
	require.NoError(t, err)

	fn := f.Decls[0].(*ast.FuncDecl)
	_, err = FromComments(fset, fn.Doc)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "p.go:3:1")
	assert.Contains(t, err.Error(), "unterminated string")
}
