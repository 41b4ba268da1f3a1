package annotation

import "github.com/broady/routegen/model"

// Kind identifies a recognized marker.
type Kind int

const (
	KindUnknown Kind = iota
	KindGroup
	KindArea
	KindAuthorize
	KindAllowAnonymous
	KindVisibility
	KindProduces
	KindGet
	KindPost
	KindPut
	KindDelete
	KindPatch
	KindHead
	KindOptions
	KindFromServices
	KindFromRoute
	KindFromQuery
	KindFromBody
	KindFromHeader
	KindFromForm
)

var kindNames = map[string]Kind{
	"group":     KindGroup,
	"area":      KindArea,
	"authorize": KindAuthorize,
	"anonymous": KindAllowAnonymous,
	"api":       KindVisibility,
	"produces":  KindProduces,
	"get":       KindGet,
	"post":      KindPost,
	"put":       KindPut,
	"delete":    KindDelete,
	"patch":     KindPatch,
	"head":      KindHead,
	"options":   KindOptions,
}

var sourceNames = map[string]Kind{
	"services": KindFromServices,
	"route":    KindFromRoute,
	"query":    KindFromQuery,
	"body":     KindFromBody,
	"header":   KindFromHeader,
	"form":     KindFromForm,
}

// ParseKind maps a directive name to its marker kind. Unrecognized names
// yield KindUnknown.
func ParseKind(name string) Kind {
	return kindNames[name]
}

// ParseSource maps a binding source name (as used by "//route:from") to its
// parameter marker kind.
func ParseSource(name string) Kind {
	return sourceNames[name]
}

var kindStrings = [...]string{
	KindUnknown:        "unknown",
	KindGroup:          "group",
	KindArea:           "area",
	KindAuthorize:      "authorize",
	KindAllowAnonymous: "anonymous",
	KindVisibility:     "api",
	KindProduces:       "produces",
	KindGet:            "get",
	KindPost:           "post",
	KindPut:            "put",
	KindDelete:         "delete",
	KindPatch:          "patch",
	KindHead:           "head",
	KindOptions:        "options",
	KindFromServices:   "from services",
	KindFromRoute:      "from route",
	KindFromQuery:      "from query",
	KindFromBody:       "from body",
	KindFromHeader:     "from header",
	KindFromForm:       "from form",
}

func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindStrings) {
		return "unknown"
	}
	return kindStrings[k]
}

// Verb returns the HTTP verb for a verb marker kind.
func (k Kind) Verb() (model.Verb, bool) {
	switch k {
	case KindGet:
		return model.VerbGet, true
	case KindPost:
		return model.VerbPost, true
	case KindPut:
		return model.VerbPut, true
	case KindDelete:
		return model.VerbDelete, true
	case KindPatch:
		return model.VerbPatch, true
	case KindHead:
		return model.VerbHead, true
	case KindOptions:
		return model.VerbOptions, true
	default:
		return "", false
	}
}

// Source returns the binding source for a parameter marker kind.
func (k Kind) Source() (model.BindingSource, bool) {
	switch k {
	case KindFromServices:
		return model.SourceService, true
	case KindFromRoute:
		return model.SourceRoute, true
	case KindFromQuery:
		return model.SourceQuery, true
	case KindFromBody:
		return model.SourceBody, true
	case KindFromHeader:
		return model.SourceHeader, true
	case KindFromForm:
		return model.SourceForm, true
	default:
		return model.SourceAuto, false
	}
}
