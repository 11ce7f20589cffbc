package evaluator

import (
	"strconv"
	"strings"

	perrors "github.com/SuperCuber/pilang/pkg/pilang/errors"
)

// Stream produces list elements one at a time. Next returns the next
// element, false when the stream is exhausted, or an error. A stream
// that returned an error stays usable so the failed pull can be retried.
type Stream interface {
	Next() (Object, bool, *perrors.PiError)
}

// StreamFunc adapts a function to the Stream interface
type StreamFunc func() (Object, bool, *perrors.PiError)

func (f StreamFunc) Next() (Object, bool, *perrors.PiError) { return f() }

// Pair is one key/value entry of a Dict
type Pair struct {
	Key   string
	Value Object
}

// PairStream produces dict entries one at a time
type PairStream interface {
	Next() (Pair, bool, *perrors.PiError)
}

// PairStreamFunc adapts a function to the PairStream interface
type PairStreamFunc func() (Pair, bool, *perrors.PiError)

func (f PairStreamFunc) Next() (Pair, bool, *perrors.PiError) { return f() }

// List is a lazily realized sequence. Elements holds the realized prefix;
// Pending is the not-yet-pulled remainder, nil once the sequence is fully
// realized. Lists are shared by pointer, so realizing through one
// reference is visible through every other.
type List struct {
	Elements []Object
	Pending  Stream
}

func (l *List) Type() ObjectType { return LIST_OBJ }

func (l *List) Inspect() string {
	parts := make([]string, 0, len(l.Elements)+1)
	for _, el := range l.Elements {
		parts = append(parts, el.Inspect())
	}
	if l.Pending != nil {
		parts = append(parts, "...")
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

// RealizeN pulls from Pending until at least n elements are realized or
// the stream ends. The stream is dropped on exhaustion but kept after an
// error, so a failed pull can be retried.
func (l *List) RealizeN(n int) *perrors.PiError {
	for l.Pending != nil && len(l.Elements) < n {
		el, ok, err := l.Pending.Next()
		if err != nil {
			return err
		}
		if !ok {
			l.Pending = nil
			return nil
		}
		l.Elements = append(l.Elements, el)
	}
	return nil
}

// RealizeAll drains the pending stream completely
func (l *List) RealizeAll() *perrors.PiError {
	for l.Pending != nil {
		el, ok, err := l.Pending.Next()
		if err != nil {
			return err
		}
		if !ok {
			l.Pending = nil
			return nil
		}
		l.Elements = append(l.Elements, el)
	}
	return nil
}

// Get returns the element at index, realizing just enough of the list to
// reach it. Out of bounds is only reported once the stream is exhausted.
func (l *List) Get(index int) (Object, *perrors.PiError) {
	if err := l.RealizeN(index + 1); err != nil {
		return nil, err
	}
	if index >= 0 && index < len(l.Elements) {
		return l.Elements[index], nil
	}
	return nil, perrors.New("IDX-0001", map[string]any{"Index": index})
}

// ElementAt returns the element at index, or false past the end. Used for
// iteration, where running off the end is not an error.
func (l *List) ElementAt(index int) (Object, bool, *perrors.PiError) {
	if err := l.RealizeN(index + 1); err != nil {
		return nil, false, err
	}
	if index < len(l.Elements) {
		return l.Elements[index], true, nil
	}
	return nil, false, nil
}

// First returns the first element, or false when the list is empty
func (l *List) First() (Object, bool, *perrors.PiError) {
	return l.ElementAt(0)
}

// Dict is a lazily realized ordered map. Entries holds the realized
// pairs, KeyOrder their insertion order. Like List, a Dict is shared by
// pointer. A key realized twice keeps its original position but takes
// the newer value.
type Dict struct {
	Entries  map[string]Object
	KeyOrder []string
	Pending  PairStream
}

// NewDict creates an empty, fully realized dict
func NewDict() *Dict {
	return &Dict{Entries: make(map[string]Object)}
}

func (d *Dict) Type() ObjectType { return DICT_OBJ }

func (d *Dict) Inspect() string {
	parts := make([]string, 0, len(d.KeyOrder)+1)
	for _, k := range d.KeyOrder {
		parts = append(parts, strconv.Quote(k)+": "+d.Entries[k].Inspect())
	}
	if d.Pending != nil {
		parts = append(parts, "...")
	}
	return "{" + strings.Join(parts, ", ") + "}"
}

// Set inserts or replaces a pair. A replaced key keeps its position.
func (d *Dict) Set(key string, value Object) {
	if d.Entries == nil {
		d.Entries = make(map[string]Object)
	}
	if _, exists := d.Entries[key]; !exists {
		d.KeyOrder = append(d.KeyOrder, key)
	}
	d.Entries[key] = value
}

// RealizeN pulls from Pending until at least n pairs are realized or the
// stream ends. Same stream lifecycle as List.RealizeN.
func (d *Dict) RealizeN(n int) *perrors.PiError {
	for d.Pending != nil && len(d.KeyOrder) < n {
		pair, ok, err := d.Pending.Next()
		if err != nil {
			return err
		}
		if !ok {
			d.Pending = nil
			return nil
		}
		d.Set(pair.Key, pair.Value)
	}
	return nil
}

// RealizeAll drains the pending stream completely
func (d *Dict) RealizeAll() *perrors.PiError {
	for d.Pending != nil {
		pair, ok, err := d.Pending.Next()
		if err != nil {
			return err
		}
		if !ok {
			d.Pending = nil
			return nil
		}
		d.Set(pair.Key, pair.Value)
	}
	return nil
}

// LookFor finds the value for a key, pulling one pending pair at a time
// and stopping as soon as the key turns up. Returns false only once the
// key is absent from the realized pairs and the stream is exhausted.
func (d *Dict) LookFor(key string) (Object, bool, *perrors.PiError) {
	if v, ok := d.Entries[key]; ok {
		return v, true, nil
	}
	for d.Pending != nil {
		pair, ok, err := d.Pending.Next()
		if err != nil {
			return nil, false, err
		}
		if !ok {
			d.Pending = nil
			break
		}
		d.Set(pair.Key, pair.Value)
		if pair.Key == key {
			return pair.Value, true, nil
		}
	}
	return nil, false, nil
}

// PairAt returns the pair at index, or false past the end
func (d *Dict) PairAt(index int) (Pair, bool, *perrors.PiError) {
	if err := d.RealizeN(index + 1); err != nil {
		return Pair{}, false, err
	}
	if index < len(d.KeyOrder) {
		k := d.KeyOrder[index]
		return Pair{Key: k, Value: d.Entries[k]}, true, nil
	}
	return Pair{}, false, nil
}

// First returns the first pair, or false when the dict is empty
func (d *Dict) First() (Pair, bool, *perrors.PiError) {
	return d.PairAt(0)
}

// sampleSize is how many elements Sample realizes per container
const sampleSize = 3

// Sample realizes a small prefix of a container in place, recursing into
// every already-realized child. Scalars are left alone. The REPL samples
// the current value before display so lazy results show their first few
// elements without being drained.
func Sample(obj Object) *perrors.PiError {
	return RealizeUpTo(obj, sampleSize)
}

// RealizeUpTo realizes a container and its realized children in place,
// pulling at most n elements per container
func RealizeUpTo(obj Object, n int) *perrors.PiError {
	switch v := obj.(type) {
	case *List:
		if err := v.RealizeN(n); err != nil {
			return err
		}
		for _, el := range v.Elements {
			if err := RealizeUpTo(el, n); err != nil {
				return err
			}
		}
	case *Dict:
		if err := v.RealizeN(n); err != nil {
			return err
		}
		for _, k := range v.KeyOrder {
			if err := RealizeUpTo(v.Entries[k], n); err != nil {
				return err
			}
		}
	}
	return nil
}

// HasPending reports whether a value or any of its realized children
// still has an unexhausted stream
func HasPending(obj Object) bool {
	switch v := obj.(type) {
	case *List:
		if v.Pending != nil {
			return true
		}
		for _, el := range v.Elements {
			if HasPending(el) {
				return true
			}
		}
	case *Dict:
		if v.Pending != nil {
			return true
		}
		for _, k := range v.KeyOrder {
			if HasPending(v.Entries[k]) {
				return true
			}
		}
	}
	return false
}

// RealizeDeep realizes a value and every one of its children completely
func RealizeDeep(obj Object) *perrors.PiError {
	switch v := obj.(type) {
	case *List:
		if err := v.RealizeAll(); err != nil {
			return err
		}
		for _, el := range v.Elements {
			if err := RealizeDeep(el); err != nil {
				return err
			}
		}
	case *Dict:
		if err := v.RealizeAll(); err != nil {
			return err
		}
		for _, k := range v.KeyOrder {
			if err := RealizeDeep(v.Entries[k]); err != nil {
				return err
			}
		}
	}
	return nil
}
