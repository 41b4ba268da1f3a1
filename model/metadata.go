package model

// Authorization describes an authorization requirement or its waiver.
// A non-nil value with every field zero means "authorization required".
type Authorization struct {
	Policy                string `json:"policy,omitempty" yaml:"policy,omitempty"`
	Roles                 string `json:"roles,omitempty" yaml:"roles,omitempty"`
	AuthenticationSchemes string `json:"authenticationSchemes,omitempty" yaml:"authenticationSchemes,omitempty"`
	AllowAnonymous        bool   `json:"allowAnonymous,omitempty" yaml:"allowAnonymous,omitempty"`
}

// Visibility controls API description output. It is only present when a
// marker explicitly supplied at least one field.
type Visibility struct {
	Ignore    *bool  `json:"ignore,omitempty" yaml:"ignore,omitempty"`
	GroupName string `json:"groupName,omitempty" yaml:"groupName,omitempty"`
}

// Ignored reports whether the endpoint is excluded from API descriptions.
func (v *Visibility) Ignored() bool {
	return v != nil && v.Ignore != nil && *v.Ignore
}

// Response declares one possible response of an endpoint.
type Response struct {
	StatusCode  int    `json:"statusCode" yaml:"statusCode"`
	Type        string `json:"type,omitempty" yaml:"type,omitempty"`
	ContentType string `json:"contentType,omitempty" yaml:"contentType,omitempty"`
}

// BindingSource says where a handler parameter is bound from.
type BindingSource int

const (
	// SourceAuto leaves inference to the emission stage.
	SourceAuto BindingSource = iota
	SourceService
	SourceRoute
	SourceQuery
	SourceBody
	SourceHeader
	SourceForm
)

func (s BindingSource) String() string {
	switch s {
	case SourceService:
		return "service"
	case SourceRoute:
		return "route"
	case SourceQuery:
		return "query"
	case SourceBody:
		return "body"
	case SourceHeader:
		return "header"
	case SourceForm:
		return "form"
	default:
		return "auto"
	}
}

// ParameterBinding is one handler parameter and its binding source.
type ParameterBinding struct {
	Name   string        `json:"name" yaml:"name"`
	Type   string        `json:"type" yaml:"type"`
	Source BindingSource `json:"source" yaml:"source"`
}

// Ptr returns a pointer to v.
func Ptr[T any](v T) *T {
	return &v
}

// MarshalText encodes the source by name.
func (s BindingSource) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}
