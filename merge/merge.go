// Package merge combines group-level and member-level metadata.
//
// Every field follows override-with-fallback: the member value wins when it
// is set, otherwise the group value is kept. AllowAnonymous is the one
// exception and is OR-ed across levels. If only one level has a record it is
// returned unchanged; if neither has one the result is nil.
package merge

import "github.com/broady/routegen/model"

// Authorization merges authorization requirements.
func Authorization(group, member *model.Authorization) *model.Authorization {
	return records(group, member, func(g, m *model.Authorization) *model.Authorization {
		return &model.Authorization{
			Policy:                String(g.Policy, m.Policy),
			Roles:                 String(g.Roles, m.Roles),
			AuthenticationSchemes: String(g.AuthenticationSchemes, m.AuthenticationSchemes),
			AllowAnonymous:        g.AllowAnonymous || m.AllowAnonymous,
		}
	})
}

// Visibility merges API description settings.
func Visibility(group, member *model.Visibility) *model.Visibility {
	return records(group, member, func(g, m *model.Visibility) *model.Visibility {
		ignore := g.Ignore
		if m.Ignore != nil {
			ignore = m.Ignore
		}
		return &model.Visibility{
			Ignore:    ignore,
			GroupName: String(g.GroupName, m.GroupName),
		}
	})
}

// String returns member unless it is empty.
func String(group, member string) string {
	if member != "" {
		return member
	}
	return group
}

func records[T any](group, member *T, combine func(g, m *T) *T) *T {
	switch {
	case member == nil:
		return group
	case group == nil:
		return member
	default:
		return combine(group, member)
	}
}
