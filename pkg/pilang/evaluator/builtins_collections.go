package evaluator

import (
	"unicode/utf8"

	perrors "github.com/SuperCuber/pilang/pkg/pilang/errors"
)

// builtinLen counts the elements of a container or the characters of a
// string. Containers are fully realized first.
func builtinLen(scope *Scope, args []Object) (Object, *perrors.PiError) {
	switch v := args[0].(type) {
	case *String:
		return &Integer{Value: uint64(utf8.RuneCountInString(v.Value))}, nil
	case *List:
		if err := v.RealizeAll(); err != nil {
			return nil, err
		}
		return &Integer{Value: uint64(len(v.Elements))}, nil
	case *Dict:
		if err := v.RealizeAll(); err != nil {
			return nil, err
		}
		return &Integer{Value: uint64(len(v.KeyOrder))}, nil
	}
	return nil, perrors.New("TYPE-0002", map[string]any{"Expected": "[string, list, dict]"})
}

// builtinKeys streams a dict's keys in order. Pulling a key realizes the
// dict just far enough, and that realization is shared with the dict itself.
func builtinKeys(scope *Scope, args []Object) (Object, *perrors.PiError) {
	dict, ok := args[0].(*Dict)
	if !ok {
		return nil, perrors.New("TYPE-0001", map[string]any{"Expected": "dict"})
	}

	index := 0
	return &List{Pending: StreamFunc(func() (Object, bool, *perrors.PiError) {
		pair, ok, err := dict.PairAt(index)
		if err != nil || !ok {
			return nil, false, err
		}
		index++
		return &String{Value: pair.Key}, true, nil
	})}, nil
}

// builtinValues streams a dict's values in key order, sharing the dict's
// realization the same way keys does.
func builtinValues(scope *Scope, args []Object) (Object, *perrors.PiError) {
	dict, ok := args[0].(*Dict)
	if !ok {
		return nil, perrors.New("TYPE-0001", map[string]any{"Expected": "dict"})
	}

	index := 0
	return &List{Pending: StreamFunc(func() (Object, bool, *perrors.PiError) {
		pair, ok, err := dict.PairAt(index)
		if err != nil || !ok {
			return nil, false, err
		}
		index++
		return pair.Value, true, nil
	})}, nil
}

// builtinFirst returns a list's first element or a dict's first pair as
// a [key, value] list. Empty containers give null.
func builtinFirst(scope *Scope, args []Object) (Object, *perrors.PiError) {
	switch v := args[0].(type) {
	case *List:
		el, ok, err := v.First()
		if err != nil {
			return nil, err
		}
		if !ok {
			return NULL, nil
		}
		return el, nil
	case *Dict:
		pair, ok, err := v.First()
		if err != nil {
			return nil, err
		}
		if !ok {
			return NULL, nil
		}
		return &List{Elements: []Object{&String{Value: pair.Key}, pair.Value}}, nil
	}
	return nil, perrors.New("TYPE-0002", map[string]any{"Expected": "[list, dict]"})
}

// builtinRange produces a lazy list of integers: range(n) counts from 0
// to n-1, range(start, end) from start to end-1. An empty range is fine.
func builtinRange(scope *Scope, args []Object) (Object, *perrors.PiError) {
	bounds := make([]uint64, 0, 2)
	for _, arg := range args {
		n, ok := arg.(*Integer)
		if !ok {
			return nil, perrors.New("TYPE-0001", map[string]any{"Expected": "integer"})
		}
		bounds = append(bounds, n.Value)
	}

	var start, end uint64
	if len(bounds) == 1 {
		end = bounds[0]
	} else {
		start, end = bounds[0], bounds[1]
	}

	next := start
	return &List{Pending: StreamFunc(func() (Object, bool, *perrors.PiError) {
		if next >= end {
			return nil, false, nil
		}
		value := next
		next++
		return &Integer{Value: value}, true, nil
	})}, nil
}

// builtinStr renders a value as a string. Strings pass through as
// themselves; containers are fully realized first.
func builtinStr(scope *Scope, args []Object) (Object, *perrors.PiError) {
	if s, ok := args[0].(*String); ok {
		return s, nil
	}
	if err := RealizeDeep(args[0]); err != nil {
		return nil, err
	}
	return &String{Value: args[0].Inspect()}, nil
}

// builtinType names a value's type
func builtinType(scope *Scope, args []Object) (Object, *perrors.PiError) {
	return &String{Value: TypeName(args[0])}, nil
}

// builtinLog writes a value through the session logger and hands the
// value back, so it can sit in the middle of a pipeline unchanged
func builtinLog(scope *Scope, args []Object) (Object, *perrors.PiError) {
	if scope.Logger != nil {
		scope.Logger.LogLine(args[0].Inspect())
	}
	return args[0], nil
}
