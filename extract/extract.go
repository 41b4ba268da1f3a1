// Package extract turns marker annotations into typed metadata records.
//
// Extraction never fails: an argument of the wrong literal kind is treated
// as absent. When several markers of one kind decorate a declaration they
// are applied in declaration order and later markers overwrite the fields
// earlier ones set.
package extract

import (
	"github.com/broady/routegen/annotation"
	"github.com/broady/routegen/model"
)

// Named argument keys.
const (
	argName                  = "Name"
	argFilterType            = "FilterType"
	argPolicy                = "Policy"
	argRoles                 = "Roles"
	argAuthenticationSchemes = "AuthenticationSchemes"
	argIgnoreAPI             = "IgnoreApi"
	argGroupName             = "GroupName"
	argContentType           = "ContentType"
)

const defaultStatusCode = 200

// GroupMarker holds the facts of a group marker. Empty strings are unset.
type GroupMarker struct {
	Template string
	Name     string
	Filter   string
}

// VerbMarker holds the facts of an explicit verb marker.
type VerbMarker struct {
	Verb model.Verb

	// Template is the explicit literal route, valid when HasTemplate is set.
	Template    string
	HasTemplate bool

	Filter string
}

// TypeFacts is everything a single type declaration says about its group.
type TypeFacts struct {
	// Group is nil when the type carries no group marker.
	Group         *GroupMarker
	Area          string
	Authorization *model.Authorization
	Visibility    *model.Visibility
}

// MemberFacts is everything a member declaration says about its endpoint.
type MemberFacts struct {
	// Verb is nil when the member has no explicit verb marker.
	Verb          *VerbMarker
	Authorization *model.Authorization
	Visibility    *model.Visibility
	Responses     []model.Response
}

// Group reads a group marker.
func Group(a annotation.Annotation) GroupMarker {
	var g GroupMarker
	if s, ok := a.Arg(0).AsString(); ok {
		g.Template = s
	}
	if s, ok := a.NamedArg(argName).AsString(); ok {
		g.Name = s
	}
	if ref, ok := a.NamedArg(argFilterType).AsTypeRef(); ok {
		g.Filter = ref
	}
	return g
}

// Area reads an area designation, or "" when it has no usable argument.
func Area(a annotation.Annotation) string {
	s, _ := a.Arg(0).AsString()
	return s
}

// Authorization reads an authorization marker. The result is never nil:
// a marker without usable arguments still means "authorization required".
func Authorization(a annotation.Annotation) *model.Authorization {
	auth := &model.Authorization{}
	applyAuthorization(auth, a)
	return auth
}

func applyAuthorization(auth *model.Authorization, a annotation.Annotation) {
	if s, ok := a.Arg(0).AsString(); ok {
		auth.Policy = s
	}
	if s, ok := a.NamedArg(argPolicy).AsString(); ok {
		auth.Policy = s
	}
	if s, ok := a.NamedArg(argRoles).AsString(); ok {
		auth.Roles = s
	}
	if s, ok := a.NamedArg(argAuthenticationSchemes).AsString(); ok {
		auth.AuthenticationSchemes = s
	}
}

// AllowAnonymous returns the record produced by an allow-anonymous marker.
func AllowAnonymous() *model.Authorization {
	return &model.Authorization{AllowAnonymous: true}
}

// Visibility reads a visibility marker. It returns nil, not an empty
// record, when neither IgnoreApi nor GroupName was supplied.
func Visibility(a annotation.Annotation) *model.Visibility {
	var v *model.Visibility
	applyVisibility(&v, a)
	return v
}

func applyVisibility(dst **model.Visibility, a annotation.Annotation) {
	ignore, hasIgnore := a.NamedArg(argIgnoreAPI).AsBool()
	group, hasGroup := a.NamedArg(argGroupName).AsString()
	if !hasIgnore && !hasGroup {
		return
	}
	if *dst == nil {
		*dst = &model.Visibility{}
	}
	if hasIgnore {
		(*dst).Ignore = model.Ptr(ignore)
	}
	if hasGroup {
		(*dst).GroupName = group
	}
}

// Response reads one response-type marker.
func Response(a annotation.Annotation) model.Response {
	r := model.Response{StatusCode: defaultStatusCode}
	if code, ok := a.Arg(0).AsInt(); ok {
		r.StatusCode = code
	}
	if ref, ok := a.Arg(1).AsTypeRef(); ok {
		r.Type = ref
	}
	if ct, ok := a.NamedArg(argContentType).AsString(); ok {
		r.ContentType = ct
	}
	return r
}

// Verb reads an explicit verb marker. ok is false if a is not a verb marker.
func Verb(a annotation.Annotation) (VerbMarker, bool) {
	var m VerbMarker
	if !applyVerb(&m, a) {
		return VerbMarker{}, false
	}
	return m, true
}

func applyVerb(m *VerbMarker, a annotation.Annotation) bool {
	verb, ok := a.Kind.Verb()
	if !ok {
		return false
	}
	m.Verb = verb
	if s, ok := a.Arg(0).AsString(); ok {
		m.Template = s
		m.HasTemplate = true
	}
	if ref, ok := a.NamedArg(argFilterType).AsTypeRef(); ok {
		m.Filter = ref
	}
	return true
}

// Type extracts the group-level facts declared directly on one type.
func Type(annotations []annotation.Annotation) TypeFacts {
	var f TypeFacts
	for _, a := range annotations {
		switch a.Kind {
		case annotation.KindGroup:
			g := Group(a)
			if f.Group == nil {
				f.Group = &g
				continue
			}
			overwrite(&f.Group.Template, g.Template)
			overwrite(&f.Group.Name, g.Name)
			overwrite(&f.Group.Filter, g.Filter)
		case annotation.KindArea:
			overwrite(&f.Area, Area(a))
		case annotation.KindAuthorize:
			if f.Authorization == nil {
				f.Authorization = &model.Authorization{}
			}
			applyAuthorization(f.Authorization, a)
		case annotation.KindAllowAnonymous:
			if f.Authorization == nil {
				f.Authorization = &model.Authorization{}
			}
			f.Authorization.AllowAnonymous = true
		case annotation.KindVisibility:
			applyVisibility(&f.Visibility, a)
		case annotation.KindProduces,
			annotation.KindGet, annotation.KindPost, annotation.KindPut, annotation.KindDelete,
			annotation.KindPatch, annotation.KindHead, annotation.KindOptions,
			annotation.KindFromServices, annotation.KindFromRoute, annotation.KindFromQuery,
			annotation.KindFromBody, annotation.KindFromHeader, annotation.KindFromForm,
			annotation.KindUnknown:
			// Member-level or unrecognized markers mean nothing on a type.
		}
	}
	return f
}

// Member extracts the endpoint-level facts declared on one member.
func Member(annotations []annotation.Annotation) MemberFacts {
	var f MemberFacts
	for _, a := range annotations {
		switch a.Kind {
		case annotation.KindGet, annotation.KindPost, annotation.KindPut, annotation.KindDelete,
			annotation.KindPatch, annotation.KindHead, annotation.KindOptions:
			if f.Verb == nil {
				f.Verb = &VerbMarker{}
			}
			applyVerb(f.Verb, a)
		case annotation.KindAuthorize:
			if f.Authorization == nil {
				f.Authorization = &model.Authorization{}
			}
			applyAuthorization(f.Authorization, a)
		case annotation.KindAllowAnonymous:
			if f.Authorization == nil {
				f.Authorization = &model.Authorization{}
			}
			f.Authorization.AllowAnonymous = true
		case annotation.KindVisibility:
			applyVisibility(&f.Visibility, a)
		case annotation.KindProduces:
			f.Responses = append(f.Responses, Response(a))
		case annotation.KindGroup, annotation.KindArea,
			annotation.KindFromServices, annotation.KindFromRoute, annotation.KindFromQuery,
			annotation.KindFromBody, annotation.KindFromHeader, annotation.KindFromForm,
			annotation.KindUnknown:
		}
	}
	return f
}

// Bindings derives the binding of every parameter. A parameter without a
// source marker binds as model.SourceAuto.
func Bindings(params []annotation.Parameter) []model.ParameterBinding {
	if len(params) == 0 {
		return nil
	}
	out := make([]model.ParameterBinding, 0, len(params))
	for _, p := range params {
		b := model.ParameterBinding{Name: p.Name, Type: p.Type, Source: model.SourceAuto}
		for _, a := range p.Annotations {
			if src, ok := a.Kind.Source(); ok {
				b.Source = src
			}
		}
		out = append(out, b)
	}
	return out
}

func overwrite(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
