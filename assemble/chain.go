package assemble

import (
	"github.com/broady/routegen/annotation"
	"github.com/broady/routegen/extract"
	"github.com/broady/routegen/model"
)

// groupFacts is the result of folding a type's ancestor chain.
type groupFacts struct {
	marked        bool
	template      string
	name          string
	filter        string
	area          string
	authorization *model.Authorization
	visibility    *model.Visibility
}

// fold walks decl and its ancestors from most- to least-derived. Each field
// keeps the first value found; later (base) levels only fill gaps.
func fold(decl annotation.TypeDecl) groupFacts {
	levels := make([][]annotation.Annotation, 0, len(decl.Chain)+1)
	levels = append(levels, decl.Annotations)
	for _, anc := range decl.Chain {
		levels = append(levels, anc.Annotations)
	}

	var f groupFacts
	for _, anns := range levels {
		level := extract.Type(anns)
		if level.Group != nil {
			f.marked = true
			fill(&f.template, level.Group.Template)
			fill(&f.name, level.Group.Name)
			fill(&f.filter, level.Group.Filter)
		}
		fill(&f.area, level.Area)
		f.authorization = fillAuthorization(f.authorization, level.Authorization)
		f.visibility = fillVisibility(f.visibility, level.Visibility)
	}
	return f
}

func fill(dst *string, v string) {
	if *dst == "" {
		*dst = v
	}
}

func fillAuthorization(acc, base *model.Authorization) *model.Authorization {
	if base == nil {
		return acc
	}
	if acc == nil {
		cp := *base
		return &cp
	}
	fill(&acc.Policy, base.Policy)
	fill(&acc.Roles, base.Roles)
	fill(&acc.AuthenticationSchemes, base.AuthenticationSchemes)
	// false is indistinguishable from unset, so a base waiver still applies.
	acc.AllowAnonymous = acc.AllowAnonymous || base.AllowAnonymous
	return acc
}

func fillVisibility(acc, base *model.Visibility) *model.Visibility {
	if base == nil {
		return acc
	}
	if acc == nil {
		cp := *base
		return &cp
	}
	if acc.Ignore == nil {
		acc.Ignore = base.Ignore
	}
	fill(&acc.GroupName, base.GroupName)
	return acc
}
