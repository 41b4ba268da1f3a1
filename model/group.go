package model

import "strings"

// Identity names a declared type: its package path and declared name.
type Identity struct {
	Namespace string
	Name      string
}

// String returns "namespace.Name", or just Name when there is no namespace.
func (id Identity) String() string {
	if id.Namespace == "" {
		return id.Name
	}
	return id.Namespace + "." + id.Name
}

// Compare orders identities by namespace, then name.
func (id Identity) Compare(other Identity) int {
	if c := strings.Compare(id.Namespace, other.Namespace); c != 0 {
		return c
	}
	return strings.Compare(id.Name, other.Name)
}

// Dispatch records whether handlers are invoked on a zero value or on an
// injected instance.
type Dispatch int

const (
	DispatchInstance Dispatch = iota // methods on a constructed value
	DispatchStatic                   // methods on a stateless type
)

func (d Dispatch) String() string {
	switch d {
	case DispatchStatic:
		return "static"
	default:
		return "instance"
	}
}

// EndpointGroup is a declared type recognized as an endpoint collection.
type EndpointGroup struct {
	// Identity is the declaring package and type name.
	Identity Identity

	// RoutePrefix is the normalized prefix shared by every endpoint.
	// It is never empty in an assembled group.
	RoutePrefix string

	// DisplayName is the optional explicit name from the group marker.
	DisplayName string

	// Filter is an optional filter type reference applied to the whole group.
	Filter string

	// Area is the area designation, if any, used during template resolution.
	Area string

	// Authorization is the group-level requirement; nil when absent.
	Authorization *Authorization

	// Visibility is the group-level API description setting; nil when absent.
	Visibility *Visibility

	// Endpoints are in source declaration order and never empty.
	Endpoints []EndpointDescriptor

	Dispatch Dispatch
}

// EndpointDescriptor is one registrable route derived from a group member.
type EndpointDescriptor struct {
	// Name is the member (method) name.
	Name string

	Verb Verb

	// Template is the resolved route relative to the group prefix.
	// Empty means the group root.
	Template string

	// Filter is an optional member-level filter type reference.
	Filter string

	// Authorization is the effective requirement after merging with the group.
	Authorization *Authorization

	// Visibility is the effective setting after merging with the group.
	Visibility *Visibility

	Responses  []Response
	Parameters []ParameterBinding

	// Returns is an opaque reference to the member's result type.
	Returns string

	Dispatch Dispatch
}

// Path joins the group prefix with an endpoint template.
func (g *EndpointGroup) Path(e EndpointDescriptor) string {
	switch {
	case e.Template == "":
		return g.RoutePrefix
	case g.RoutePrefix == "/":
		return e.Template
	default:
		return g.RoutePrefix + e.Template
	}
}
