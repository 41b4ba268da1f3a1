package annotation

// Annotation is one marker occurrence with its arguments.
type Annotation struct {
	Kind       Kind
	Positional []Value
	Named      map[string]Value
}

// New builds an annotation from positional arguments.
func New(kind Kind, positional ...Value) Annotation {
	return Annotation{Kind: kind, Positional: positional}
}

// With returns a copy of a with a named argument set.
func (a Annotation) With(name string, v Value) Annotation {
	named := make(map[string]Value, len(a.Named)+1)
	for k, existing := range a.Named {
		named[k] = existing
	}
	named[name] = v
	a.Named = named
	return a
}

// Arg returns the i-th positional argument, or an Absent value.
func (a Annotation) Arg(i int) Value {
	if i < 0 || i >= len(a.Positional) {
		return Value{}
	}
	return a.Positional[i]
}

// NamedArg returns a named argument, or an Absent value.
func (a Annotation) NamedArg(name string) Value {
	return a.Named[name]
}

// TypeDecl is a declared type as reported by the scanner.
type TypeDecl struct {
	Namespace   string
	Name        string
	Annotations []Annotation

	// Chain lists ancestor types from most- to least-derived, excluding
	// the declared type itself.
	Chain []Ancestor

	// Members are in source declaration order.
	Members []Member

	// Static is set for stateless types whose handlers need no instance.
	Static bool
}

// Ancestor is one entry of a type's inheritance chain.
type Ancestor struct {
	Namespace   string
	Name        string
	Annotations []Annotation
}

// Member is a method declared on a type.
type Member struct {
	Name        string
	Public      bool
	Static      bool
	Annotations []Annotation
	Parameters  []Parameter
	Returns     string
}

// Parameter is one member parameter with the markers bound to it.
type Parameter struct {
	Name        string
	Type        string
	Annotations []Annotation
}
