// Package scan loads Go packages and reports the route directives attached
// to their type and method declarations.
//
// It is the boundary between the Go toolchain and the rest of routegen:
// everything it returns is expressed in terms of package annotation, with
// bare directive tokens already resolved against the declaring package.
package scan

import (
	"context"
	"errors"
	"fmt"
	"go/ast"
	"go/constant"
	"go/token"
	"go/types"
	"net/url"
	"path/filepath"
	"strings"

	"golang.org/x/tools/go/packages"

	"github.com/broady/routegen/annotation"
	"github.com/broady/routegen/internal/directive"
)

// ErrNoPackages is returned when the patterns match no packages.
var ErrNoPackages = errors.New("no packages found")

const loadMode = packages.NeedName | packages.NeedFiles | packages.NeedSyntax |
	packages.NeedTypes | packages.NeedTypesInfo | packages.NeedModule

const (
	configDirective = "config"
	fromDirective   = "from"
)

// Result is everything found in the loaded packages.
type Result struct {
	// Packages are the import paths that were scanned, in load order.
	Packages []string

	// Module is the path of the main module, if known.
	Module string

	// Dir is the directory of the first package.
	Dir string

	// Decls are the candidate types: those carrying a directive themselves
	// or through an embedded ancestor. Order follows packages, files and
	// declarations.
	Decls []annotation.TypeDecl

	// Config collects the Key=value arguments of every //route:config
	// directive, in source order.
	Config url.Values
}

// Load scans the packages matching patterns, relative to dir (the current
// directory if empty).
func Load(ctx context.Context, dir string, patterns ...string) (*Result, error) {
	cfg := &packages.Config{
		Context: ctx,
		Mode:    loadMode,
		Dir:     dir,
	}

	pkgs, err := packages.Load(cfg, patterns...)
	if err != nil {
		return nil, fmt.Errorf("load packages: %w", err)
	}
	if len(pkgs) == 0 {
		return nil, fmt.Errorf("%w matching %q", ErrNoPackages, patterns)
	}
	for _, pkg := range pkgs {
		if len(pkg.Errors) > 0 {
			return nil, fmt.Errorf("package %s: %v", pkg.PkgPath, pkg.Errors[0])
		}
	}

	s := &scanner{
		types:   make(map[string]*typeInfo),
		methods: make(map[string][]method),
		config:  make(url.Values),
	}
	result := &Result{}
	for _, pkg := range pkgs {
		if err := s.index(pkg); err != nil {
			return nil, err
		}
		result.Packages = append(result.Packages, pkg.PkgPath)
		if result.Module == "" && pkg.Module != nil {
			result.Module = pkg.Module.Path
		}
		if result.Dir == "" && len(pkg.GoFiles) > 0 {
			result.Dir = filepath.Dir(pkg.GoFiles[0])
		}
	}

	for _, key := range s.order {
		if decl, ok := s.decl(s.types[key]); ok {
			result.Decls = append(result.Decls, decl)
		}
	}
	result.Config = s.config
	return result, nil
}

type typeInfo struct {
	pkg         *packages.Package
	obj         *types.TypeName
	annotations []annotation.Annotation
}

type method struct {
	pkg         *packages.Package
	fn          *ast.FuncDecl
	pointer     bool
	annotations []annotation.Annotation
	from        map[string][]annotation.Annotation
}

type scanner struct {
	types   map[string]*typeInfo
	order   []string
	methods map[string][]method
	config  url.Values
}

func typeKey(obj *types.TypeName) string {
	if obj.Pkg() == nil {
		return obj.Name()
	}
	return obj.Pkg().Path() + "." + obj.Name()
}

// index records the annotated types, methods and config directives of pkg.
func (s *scanner) index(pkg *packages.Package) error {
	for _, f := range pkg.Syntax {
		for _, cg := range f.Comments {
			if err := s.collectConfig(pkg.Fset, cg); err != nil {
				return err
			}
		}

		for _, decl := range f.Decls {
			switch decl := decl.(type) {
			case *ast.GenDecl:
				if decl.Tok != token.TYPE {
					continue
				}
				for _, spec := range decl.Specs {
					ts := spec.(*ast.TypeSpec)
					doc := ts.Doc
					if doc == nil && len(decl.Specs) == 1 {
						doc = decl.Doc
					}
					if err := s.addType(pkg, ts, doc); err != nil {
						return err
					}
				}
			case *ast.FuncDecl:
				// Directives are checked on every function, whether or not
				// its receiver ends up a candidate.
				anns, from, err := s.annotations(pkg, decl.Doc, decl.Pos())
				if err != nil {
					return err
				}
				if decl.Recv == nil || len(decl.Recv.List) == 0 {
					continue
				}
				name, pointer := receiver(decl.Recv.List[0].Type)
				if name == "" {
					continue
				}
				key := pkg.PkgPath + "." + name
				s.methods[key] = append(s.methods[key], method{
					pkg:         pkg,
					fn:          decl,
					pointer:     pointer,
					annotations: anns,
					from:        from,
				})
			}
		}
	}
	return nil
}

func (s *scanner) addType(pkg *packages.Package, ts *ast.TypeSpec, doc *ast.CommentGroup) error {
	obj, ok := pkg.TypesInfo.Defs[ts.Name].(*types.TypeName)
	if !ok || obj.IsAlias() {
		return nil
	}
	anns, _, err := s.annotations(pkg, doc, ts.Pos())
	if err != nil {
		return err
	}
	key := typeKey(obj)
	s.types[key] = &typeInfo{pkg: pkg, obj: obj, annotations: anns}
	s.order = append(s.order, key)
	return nil
}

func (s *scanner) collectConfig(fset *token.FileSet, cg *ast.CommentGroup) error {
	ds, err := directive.FromComments(fset, cg)
	if err != nil {
		return err
	}
	for _, d := range ds {
		if d.Name != configDirective {
			continue
		}
		for _, arg := range d.Args {
			if arg.Key == "" {
				return fmt.Errorf("%s: %s argument %q must be Key=value", d.Pos, d, arg.Text)
			}
			s.config.Add(arg.Key, arg.Text)
		}
	}
	return nil
}

// decl builds the TypeDecl for t. ok is false when neither t nor any of
// its ancestors carries a directive.
func (s *scanner) decl(t *typeInfo) (annotation.TypeDecl, bool) {
	named, ok := t.obj.Type().(*types.Named)
	if !ok {
		return annotation.TypeDecl{}, false
	}
	chain := s.chain(named)
	marked := len(t.annotations) > 0
	for _, a := range chain {
		marked = marked || len(a.Annotations) > 0
	}
	if !marked {
		return annotation.TypeDecl{}, false
	}

	st, isStruct := named.Underlying().(*types.Struct)
	static := isStruct && st.NumFields() == 0

	decl := annotation.TypeDecl{
		Namespace:   t.pkg.PkgPath,
		Name:        t.obj.Name(),
		Annotations: t.annotations,
		Chain:       chain,
		Static:      static,
	}
	for _, m := range s.methods[typeKey(t.obj)] {
		decl.Members = append(decl.Members, s.member(m, static))
	}
	return decl, true
}

// chain lists the embedded named types of t depth-first, following
// pointers and skipping types already visited.
func (s *scanner) chain(t *types.Named) []annotation.Ancestor {
	var out []annotation.Ancestor
	seen := map[string]bool{typeKey(t.Obj()): true}

	var walk func(*types.Named)
	walk = func(t *types.Named) {
		st, ok := t.Underlying().(*types.Struct)
		if !ok {
			return
		}
		for i := range st.NumFields() {
			field := st.Field(i)
			if !field.Embedded() {
				continue
			}
			ft := types.Unalias(field.Type())
			if ptr, ok := ft.(*types.Pointer); ok {
				ft = types.Unalias(ptr.Elem())
			}
			embedded, ok := ft.(*types.Named)
			if !ok {
				continue
			}
			key := typeKey(embedded.Obj())
			if seen[key] {
				continue
			}
			seen[key] = true

			ancestor := annotation.Ancestor{Name: embedded.Obj().Name()}
			if pkg := embedded.Obj().Pkg(); pkg != nil {
				ancestor.Namespace = pkg.Path()
			}
			if info, ok := s.types[key]; ok {
				ancestor.Annotations = info.annotations
			}
			out = append(out, ancestor)
			walk(embedded)
		}
	}
	walk(t)
	return out
}

func (s *scanner) member(m method, static bool) annotation.Member {
	fn := m.fn
	member := annotation.Member{
		Name:        fn.Name.Name,
		Public:      fn.Name.IsExported(),
		Static:      static && !m.pointer,
		Annotations: m.annotations,
	}

	obj, ok := m.pkg.TypesInfo.Defs[fn.Name].(*types.Func)
	if !ok {
		return member
	}
	sig := obj.Signature()
	qual := types.RelativeTo(m.pkg.Types)
	for v := range sig.Params().Variables() {
		member.Parameters = append(member.Parameters, annotation.Parameter{
			Name:        v.Name(),
			Type:        types.TypeString(v.Type(), qual),
			Annotations: m.from[v.Name()],
		})
	}
	member.Returns = results(sig.Results(), qual)
	return member
}

func results(tuple *types.Tuple, qual types.Qualifier) string {
	switch tuple.Len() {
	case 0:
		return ""
	case 1:
		return types.TypeString(tuple.At(0).Type(), qual)
	}
	parts := make([]string, 0, tuple.Len())
	for v := range tuple.Variables() {
		parts = append(parts, types.TypeString(v.Type(), qual))
	}
	return "(" + strings.Join(parts, ", ") + ")"
}

// annotations converts the directives in doc. Parameter markers
// ("//route:from <source> <param>") are returned separately, keyed by
// parameter name. pos locates the declaration for resolving bare tokens.
func (s *scanner) annotations(pkg *packages.Package, doc *ast.CommentGroup, pos token.Pos) ([]annotation.Annotation, map[string][]annotation.Annotation, error) {
	ds, err := directive.FromComments(pkg.Fset, doc)
	if err != nil {
		return nil, nil, err
	}

	var (
		anns []annotation.Annotation
		from map[string][]annotation.Annotation
	)
	for _, d := range ds {
		switch d.Name {
		case configDirective:
			continue
		case fromDirective:
			args := d.Positional()
			if len(args) != 2 {
				return nil, nil, fmt.Errorf("%s: %s wants <source> <param>", d.Pos, d)
			}
			kind := annotation.ParseSource(args[0].Text)
			if kind == annotation.KindUnknown {
				return nil, nil, fmt.Errorf("%s: unknown binding source %q", d.Pos, args[0].Text)
			}
			if from == nil {
				from = make(map[string][]annotation.Annotation)
			}
			from[args[1].Text] = append(from[args[1].Text], annotation.New(kind))
			continue
		}

		a := annotation.Annotation{Kind: annotation.ParseKind(d.Name)}
		for _, arg := range d.Args {
			v := resolve(pkg, pos, arg)
			if arg.Key == "" {
				a.Positional = append(a.Positional, v)
				continue
			}
			if a.Named == nil {
				a.Named = make(map[string]annotation.Value)
			}
			a.Named[arg.Key] = v
		}
		anns = append(anns, a)
	}
	return anns, from, nil
}

// resolve turns a directive argument into a Value. Bare tokens are
// evaluated in the scope of pos: type expressions become type references
// and constants become literals; anything else stays a string.
func resolve(pkg *packages.Package, pos token.Pos, arg directive.Arg) annotation.Value {
	switch arg.Kind {
	case directive.ArgString:
		return annotation.StringValue(arg.Text)
	case directive.ArgInt:
		return annotation.IntValue(arg.Int())
	case directive.ArgBool:
		return annotation.BoolValue(arg.Bool())
	}
	if arg.Text == "" {
		return annotation.Value{}
	}

	tv, err := types.Eval(pkg.Fset, pkg.Types, pos, arg.Text)
	if err != nil {
		return annotation.StringValue(arg.Text)
	}
	if tv.IsType() {
		return annotation.TypeRefValue(types.TypeString(tv.Type, types.RelativeTo(pkg.Types))).Bare(arg.Text)
	}
	if tv.Value != nil {
		switch tv.Value.Kind() {
		case constant.String:
			return annotation.StringValue(constant.StringVal(tv.Value))
		case constant.Bool:
			return annotation.BoolValue(constant.BoolVal(tv.Value)).Bare(arg.Text)
		case constant.Int:
			if n, ok := constant.Int64Val(tv.Value); ok {
				return annotation.IntValue(int(n)).Bare(arg.Text)
			}
		}
	}
	return annotation.StringValue(arg.Text)
}

// receiver returns the base type name of a method receiver expression.
func receiver(expr ast.Expr) (name string, pointer bool) {
	if star, ok := expr.(*ast.StarExpr); ok {
		expr, pointer = star.X, true
	}
	switch x := expr.(type) {
	case *ast.IndexExpr:
		expr = x.X
	case *ast.IndexListExpr:
		expr = x.X
	}
	if ident, ok := expr.(*ast.Ident); ok {
		return ident.Name, pointer
	}
	return "", pointer
}
