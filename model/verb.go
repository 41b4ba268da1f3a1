package model

// Verb is an HTTP method an endpoint is registered for.
type Verb string

const (
	VerbGet     Verb = "GET"
	VerbPost    Verb = "POST"
	VerbPut     Verb = "PUT"
	VerbDelete  Verb = "DELETE"
	VerbPatch   Verb = "PATCH"
	VerbHead    Verb = "HEAD"
	VerbOptions Verb = "OPTIONS"
)

// Verbs lists every supported verb in inference priority order.
var Verbs = []Verb{VerbGet, VerbPost, VerbPut, VerbDelete, VerbPatch, VerbHead, VerbOptions}

// Valid reports whether v is one of the supported verbs.
func (v Verb) Valid() bool {
	for _, known := range Verbs {
		if v == known {
			return true
		}
	}
	return false
}

// Title returns the verb in the casing used by method name prefixes ("Get").
func (v Verb) Title() string {
	if len(v) == 0 {
		return ""
	}
	s := string(v)
	out := []byte{s[0]}
	for i := 1; i < len(s); i++ {
		c := s[i]
		if c >= 'A' && c <= 'Z' {
			c += 'a' - 'A'
		}
		out = append(out, c)
	}
	return string(out)
}
