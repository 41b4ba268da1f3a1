// Package directive tokenizes routegen directives in Go comments.
//
// Directives are line comments in the form:
//
//	//route:<name> [arg ...] [Key=arg ...]
//
// An argument is a double-quoted or back-quoted string, an integer, true or
// false, or a bare token such as a type or constant name. Bare tokens are
// left for the scanner to resolve against the package scope.
package directive

import (
	"fmt"
	"go/ast"
	"go/token"
	"strconv"
	"strings"
	"unicode"
)

// Prefix starts every directive comment.
const Prefix = "//route:"

// ArgKind classifies an argument token.
type ArgKind int

const (
	ArgIdent  ArgKind = iota // bare token, resolved later
	ArgString                // quoted literal
	ArgInt                   // decimal integer
	ArgBool                  // true or false
)

func (k ArgKind) String() string {
	switch k {
	case ArgString:
		return "string"
	case ArgInt:
		return "int"
	case ArgBool:
		return "bool"
	default:
		return "ident"
	}
}

// Arg is one directive argument.
type Arg struct {
	// Key is set for named arguments (Key=value).
	Key  string
	Kind ArgKind

	// Text is the unquoted string, or the raw token for other kinds.
	Text string
}

// Int returns the integer value of an ArgInt.
func (a Arg) Int() int {
	n, _ := strconv.Atoi(a.Text)
	return n
}

// Bool returns the value of an ArgBool.
func (a Arg) Bool() bool {
	return a.Text == "true"
}

// Directive is one parsed //route: comment.
type Directive struct {
	Name string
	Args []Arg
	Pos  token.Position
}

// Positional returns the arguments without a key, in order.
func (d Directive) Positional() []Arg {
	var out []Arg
	for _, a := range d.Args {
		if a.Key == "" {
			out = append(out, a)
		}
	}
	return out
}

// Named returns the keyed arguments; a repeated key keeps its last value.
func (d Directive) Named() map[string]Arg {
	var out map[string]Arg
	for _, a := range d.Args {
		if a.Key == "" {
			continue
		}
		if out == nil {
			out = make(map[string]Arg)
		}
		out[a.Key] = a
	}
	return out
}

func (d Directive) String() string {
	return Prefix + d.Name
}

// Parse parses a single comment. It reports false when text is not a
// directive.
func Parse(text string) (Directive, bool, error) {
	rest, ok := strings.CutPrefix(text, Prefix)
	if !ok {
		return Directive{}, false, nil
	}
	toks, err := split(rest)
	if err != nil {
		return Directive{}, true, fmt.Errorf("%s: %w", strings.TrimSpace(text), err)
	}
	if len(toks) == 0 || toks[0].quoted {
		return Directive{}, true, fmt.Errorf("%s: missing directive name", strings.TrimSpace(text))
	}

	d := Directive{Name: toks[0].text}
	for _, tok := range toks[1:] {
		d.Args = append(d.Args, tok.arg())
	}
	return d, true, nil
}

// FromComments returns the directives in a comment group in source order.
// A nil group has none.
func FromComments(fset *token.FileSet, cg *ast.CommentGroup) ([]Directive, error) {
	if cg == nil {
		return nil, nil
	}
	var out []Directive
	for _, c := range cg.List {
		d, ok, err := Parse(c.Text)
		if !ok {
			continue
		}
		pos := fset.Position(c.Pos())
		if err != nil {
			return nil, fmt.Errorf("%s: %w", pos, err)
		}
		d.Pos = pos
		out = append(out, d)
	}
	return out, nil
}

type field struct {
	key    string
	text   string
	quoted bool
}

func (t field) arg() Arg {
	a := Arg{Key: t.key, Text: t.text}
	switch {
	case t.quoted:
		a.Kind = ArgString
	case t.text == "true" || t.text == "false":
		a.Kind = ArgBool
	case isInt(t.text):
		a.Kind = ArgInt
	default:
		a.Kind = ArgIdent
	}
	return a
}

func isInt(s string) bool {
	if s == "" {
		return false
	}
	if _, err := strconv.Atoi(s); err != nil {
		return false
	}
	return true
}

// split breaks a directive body into whitespace separated tokens, keeping
// quoted strings intact and recognizing a Key= prefix on each token.
func split(s string) ([]field, error) {
	var toks []field
	i := 0
	for {
		for i < len(s) && unicode.IsSpace(rune(s[i])) {
			i++
		}
		if i >= len(s) {
			return toks, nil
		}

		var tok field
		if key, ok := keyAt(s[i:]); ok {
			tok.key = key
			i += len(key) + 1
		}

		if i < len(s) && (s[i] == '"' || s[i] == '`') {
			end, err := closingQuote(s, i)
			if err != nil {
				return nil, err
			}
			text, err := strconv.Unquote(s[i : end+1])
			if err != nil {
				return nil, fmt.Errorf("bad string %s: %w", s[i:end+1], err)
			}
			tok.text, tok.quoted = text, true
			i = end + 1
			if i < len(s) && !unicode.IsSpace(rune(s[i])) {
				return nil, fmt.Errorf("unexpected %q after string", s[i])
			}
		} else {
			start := i
			for i < len(s) && !unicode.IsSpace(rune(s[i])) {
				i++
			}
			tok.text = s[start:i]
		}
		toks = append(toks, tok)
	}
}

// keyAt reports an identifier immediately followed by '=' at the start of s.
func keyAt(s string) (string, bool) {
	for j, r := range s {
		if r == '=' {
			return s[:j], j > 0
		}
		if !(r == '_' || unicode.IsLetter(r) || (j > 0 && unicode.IsDigit(r))) {
			return "", false
		}
	}
	return "", false
}

func closingQuote(s string, start int) (int, error) {
	q := s[start]
	for j := start + 1; j < len(s); j++ {
		switch {
		case q == '"' && s[j] == '\\':
			j++
		case s[j] == q:
			return j, nil
		}
	}
	return 0, fmt.Errorf("unterminated string %s", s[start:])
}
