// Package evaluator implements the pilang value model and the engine that
// runs commands against it: a pure expression evaluator, lazy containers,
// copy-on-write scopes, and the navigation state machine behind `>>`, `<<`
// and undo.
package evaluator

import (
	"strconv"

	perrors "github.com/SuperCuber/pilang/pkg/pilang/errors"
)

// ObjectType represents the type of a value
type ObjectType string

const (
	NULL_OBJ     = "NULL"
	BOOLEAN_OBJ  = "BOOLEAN"
	INTEGER_OBJ  = "INTEGER"
	FLOAT_OBJ    = "FLOAT"
	STRING_OBJ   = "STRING"
	FUNCTION_OBJ = "FUNCTION"
	LIST_OBJ     = "LIST"
	DICT_OBJ     = "DICT"
)

// Object represents all values in the language
type Object interface {
	Type() ObjectType
	Inspect() string
}

// Null represents the null value
type Null struct{}

func (n *Null) Type() ObjectType { return NULL_OBJ }
func (n *Null) Inspect() string  { return "null" }

// Boolean represents boolean values
type Boolean struct {
	Value bool
}

func (b *Boolean) Type() ObjectType { return BOOLEAN_OBJ }
func (b *Boolean) Inspect() string  { return strconv.FormatBool(b.Value) }

// Integer represents whole numbers. Integers are unsigned: negating one
// produces a Float, as does all other arithmetic.
type Integer struct {
	Value uint64
}

func (i *Integer) Type() ObjectType { return INTEGER_OBJ }
func (i *Integer) Inspect() string  { return strconv.FormatUint(i.Value, 10) }

// Float represents floating-point numbers
type Float struct {
	Value float64
}

func (f *Float) Type() ObjectType { return FLOAT_OBJ }
func (f *Float) Inspect() string  { return strconv.FormatFloat(f.Value, 'f', -1, 64) }

// String represents string values. Inspect renders the quoted form; use
// Value for the raw text.
type String struct {
	Value string
}

func (s *String) Type() ObjectType { return STRING_OBJ }
func (s *String) Inspect() string  { return strconv.Quote(s.Value) }

// BuiltinFunc is the Go implementation behind a builtin function. The
// scope is passed through for builtins that need the logger or locale.
type BuiltinFunc func(scope *Scope, args []Object) (Object, *perrors.PiError)

// Builtin represents a function implemented in Go. Arities lists the
// accepted argument counts; a call one argument short of an accepted
// count has the current value injected as its first argument.
type Builtin struct {
	Name    string
	Arities []int
	Fn      BuiltinFunc
}

func (b *Builtin) Type() ObjectType { return FUNCTION_OBJ }
func (b *Builtin) Inspect() string  { return "<builtin function " + b.Name + ">" }

// Global constants
var (
	NULL  = &Null{}
	TRUE  = &Boolean{Value: true}
	FALSE = &Boolean{Value: false}
)

func nativeBoolToBooleanObject(value bool) *Boolean {
	if value {
		return TRUE
	}
	return FALSE
}

// TypeName returns the user-facing name of a value's type, as used in
// error messages and by the type builtin.
func TypeName(obj Object) string {
	switch obj.(type) {
	case *Null:
		return "null"
	case *Boolean:
		return "boolean"
	case *Integer:
		return "integer"
	case *Float:
		return "float"
	case *String:
		return "string"
	case *Builtin:
		return "function"
	case *List:
		return "list"
	case *Dict:
		return "dict"
	}
	return "unknown"
}

// Equals reports deep equality over the realized parts of two values.
// Pending remainders are never pulled and never compared. Integers and
// floats are distinct types and never compare equal to each other.
func Equals(a, b Object) bool {
	switch av := a.(type) {
	case *Null:
		_, ok := b.(*Null)
		return ok
	case *Boolean:
		bv, ok := b.(*Boolean)
		return ok && av.Value == bv.Value
	case *Integer:
		bv, ok := b.(*Integer)
		return ok && av.Value == bv.Value
	case *Float:
		bv, ok := b.(*Float)
		return ok && av.Value == bv.Value
	case *String:
		bv, ok := b.(*String)
		return ok && av.Value == bv.Value
	case *Builtin:
		bv, ok := b.(*Builtin)
		return ok && av.Name == bv.Name
	case *List:
		bv, ok := b.(*List)
		if !ok || len(av.Elements) != len(bv.Elements) {
			return false
		}
		for i, el := range av.Elements {
			if !Equals(el, bv.Elements[i]) {
				return false
			}
		}
		return true
	case *Dict:
		bv, ok := b.(*Dict)
		if !ok || len(av.KeyOrder) != len(bv.KeyOrder) {
			return false
		}
		// Key order does not matter, only the pairs themselves
		for _, k := range av.KeyOrder {
			other, found := bv.Entries[k]
			if !found || !Equals(av.Entries[k], other) {
				return false
			}
		}
		return true
	}
	return false
}
