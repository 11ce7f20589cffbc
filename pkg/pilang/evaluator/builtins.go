package evaluator

import (
	"math"

	perrors "github.com/SuperCuber/pilang/pkg/pilang/errors"
)

// builtins maps function names to their implementations. NewScope binds
// every entry, so the functions visible in a session are exactly the
// keys of this map.
var builtins = map[string]*Builtin{
	"json":     {Name: "json", Arities: []int{1}, Fn: builtinJSON},
	"get":      {Name: "get", Arities: []int{2}, Fn: builtinGet},
	"assoc":    {Name: "assoc", Arities: []int{3}, Fn: builtinAssoc},
	"len":      {Name: "len", Arities: []int{1}, Fn: builtinLen},
	"keys":     {Name: "keys", Arities: []int{1}, Fn: builtinKeys},
	"values":   {Name: "values", Arities: []int{1}, Fn: builtinValues},
	"first":    {Name: "first", Arities: []int{1}, Fn: builtinFirst},
	"range":    {Name: "range", Arities: []int{1, 2}, Fn: builtinRange},
	"str":      {Name: "str", Arities: []int{1}, Fn: builtinStr},
	"type":     {Name: "type", Arities: []int{1}, Fn: builtinType},
	"log":      {Name: "log", Arities: []int{1}, Fn: builtinLog},
	"yaml":     {Name: "yaml", Arities: []int{1}, Fn: builtinYAML},
	"csv":      {Name: "csv", Arities: []int{1, 2}, Fn: builtinCSV},
	"markdown": {Name: "markdown", Arities: []int{1}, Fn: builtinMarkdown},
	"pdftext":  {Name: "pdftext", Arities: []int{1}, Fn: builtinPDFText},
	"file":     {Name: "file", Arities: []int{1}, Fn: builtinFile},
	"lines":    {Name: "lines", Arities: []int{1}, Fn: builtinLines},
	"fetch":    {Name: "fetch", Arities: []int{1}, Fn: builtinFetch},
	"sftp":     {Name: "sftp", Arities: []int{1}, Fn: builtinSFTP},
	"sql":      {Name: "sql", Arities: []int{2}, Fn: builtinSQL},
	"date":     {Name: "date", Arities: []int{1}, Fn: builtinDate},
	"datefmt":  {Name: "datefmt", Arities: []int{2, 3}, Fn: builtinDateFmt},
	"numfmt":   {Name: "numfmt", Arities: []int{1, 2}, Fn: builtinNumFmt},
}

// builtinGet looks an element up by key or index. String keys index
// dicts, pulling pending pairs one at a time and stopping at the first
// match; integer keys index lists, realizing just enough to reach the
// index. A missing dict key is null, a missing list index is an error.
func builtinGet(scope *Scope, args []Object) (Object, *perrors.PiError) {
	container := args[0]

	switch key := args[1].(type) {
	case *String:
		dict, ok := container.(*Dict)
		if !ok {
			return nil, perrors.New("TYPE-0001", map[string]any{"Expected": "dict"})
		}
		value, found, err := dict.LookFor(key.Value)
		if err != nil {
			return nil, err
		}
		if !found {
			return NULL, nil
		}
		return value, nil

	case *Integer:
		list, ok := container.(*List)
		if !ok {
			return nil, perrors.New("TYPE-0001", map[string]any{"Expected": "list"})
		}
		index, err := intIndex(key)
		if err != nil {
			return nil, err
		}
		return list.Get(index)
	}

	return nil, perrors.New("TYPE-0002", map[string]any{"Expected": "[string, integer]"})
}

// builtinAssoc returns a copy of a container with one entry replaced or
// added. The container is fully realized first but never modified: a
// replaced dict key keeps its position, a new key goes at the end, and
// list indexes must already exist.
func builtinAssoc(scope *Scope, args []Object) (Object, *perrors.PiError) {
	container, value := args[0], args[2]

	switch key := args[1].(type) {
	case *String:
		dict, ok := container.(*Dict)
		if !ok {
			return nil, perrors.New("TYPE-0001", map[string]any{"Expected": "dict"})
		}
		if err := dict.RealizeAll(); err != nil {
			return nil, err
		}
		result := NewDict()
		for _, k := range dict.KeyOrder {
			result.Set(k, dict.Entries[k])
		}
		result.Set(key.Value, value)
		return result, nil

	case *Integer:
		list, ok := container.(*List)
		if !ok {
			return nil, perrors.New("TYPE-0001", map[string]any{"Expected": "list"})
		}
		if err := list.RealizeAll(); err != nil {
			return nil, err
		}
		index, err := intIndex(key)
		if err != nil {
			return nil, err
		}
		if index >= len(list.Elements) {
			return nil, perrors.New("IDX-0001", map[string]any{"Index": index})
		}
		elements := make([]Object, len(list.Elements))
		copy(elements, list.Elements)
		elements[index] = value
		return &List{Elements: elements}, nil
	}

	return nil, perrors.New("TYPE-0002", map[string]any{"Expected": "[string, integer]"})
}

// intIndex narrows an index argument. An index past MaxInt cannot exist
// in any list, so it is out of bounds without realizing anything.
func intIndex(v *Integer) (int, *perrors.PiError) {
	if v.Value > uint64(math.MaxInt) {
		return 0, perrors.New("IDX-0001", map[string]any{"Index": v.Value})
	}
	return int(v.Value), nil
}

// stringArg unwraps a string argument
func stringArg(arg Object) (string, *perrors.PiError) {
	s, ok := arg.(*String)
	if !ok {
		return "", perrors.New("TYPE-0001", map[string]any{"Expected": "string"})
	}
	return s.Value, nil
}
