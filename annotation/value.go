// Package annotation defines the contract between the declaration scanner
// and the metadata extractor: loosely typed marker arguments, the closed set
// of recognized marker kinds, and the declarations they are attached to.
package annotation

import (
	"fmt"
	"strconv"
)

// ValueKind tags the literal carried by a Value.
type ValueKind int

const (
	Absent ValueKind = iota
	String
	Int
	Bool
	TypeRef
)

func (k ValueKind) String() string {
	switch k {
	case String:
		return "string"
	case Int:
		return "int"
	case Bool:
		return "bool"
	case TypeRef:
		return "typeref"
	default:
		return "absent"
	}
}

// Value is a marker argument: exactly one of a string, an integer, a
// boolean or a type reference, or nothing at all. The zero Value is Absent.
type Value struct {
	kind ValueKind
	str  string // String and TypeRef
	num  int
	flag bool
	bare string // source token of a resolved identifier
}

// StringValue returns a String value.
func StringValue(s string) Value { return Value{kind: String, str: s} }

// IntValue returns an Int value.
func IntValue(n int) Value { return Value{kind: Int, num: n} }

// BoolValue returns a Bool value.
func BoolValue(b bool) Value { return Value{kind: Bool, flag: b} }

// TypeRefValue returns a reference to a named type, in display form.
func TypeRefValue(name string) Value { return Value{kind: TypeRef, str: name} }

// Bare records that v was resolved from the bare source token text. A bare
// token still reads as a string, so an identifier that happens to name a
// type or constant can fill a string-valued argument.
func (v Value) Bare(text string) Value {
	if v.kind != String && v.kind != Absent {
		v.bare = text
	}
	return v
}

// Kind returns the tag of v.
func (v Value) Kind() ValueKind { return v.kind }

// IsAbsent reports whether v carries nothing.
func (v Value) IsAbsent() bool { return v.kind == Absent }

// AsString returns the string literal, if v is one, or the source text of
// a bare token.
func (v Value) AsString() (string, bool) {
	switch {
	case v.kind == String:
		return v.str, true
	case v.bare != "":
		return v.bare, true
	}
	return "", false
}

// AsInt returns the integer literal, if v is one.
func (v Value) AsInt() (int, bool) {
	if v.kind != Int {
		return 0, false
	}
	return v.num, true
}

// AsBool returns the boolean literal, if v is one.
func (v Value) AsBool() (bool, bool) {
	if v.kind != Bool {
		return false, false
	}
	return v.flag, true
}

// AsTypeRef returns the referenced type name, if v is a type reference.
func (v Value) AsTypeRef() (string, bool) {
	if v.kind != TypeRef {
		return "", false
	}
	return v.str, true
}

func (v Value) String() string {
	switch v.kind {
	case String:
		return strconv.Quote(v.str)
	case Int:
		return strconv.Itoa(v.num)
	case Bool:
		return strconv.FormatBool(v.flag)
	case TypeRef:
		return v.str
	default:
		return "<absent>"
	}
}

// GoString implements fmt.GoStringer for readable test failures.
func (v Value) GoString() string {
	return fmt.Sprintf("%s(%s)", v.kind, v)
}
