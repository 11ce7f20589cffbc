package evaluator

import (
	"testing"

	perrors "github.com/SuperCuber/pilang/pkg/pilang/errors"
)

// countingStream yields the integers 0..limit-1 and records every pull.
type countingStream struct {
	next  int
	limit int
	pulls int
}

func (s *countingStream) Next() (Object, bool, *perrors.PiError) {
	s.pulls++
	if s.next >= s.limit {
		return nil, false, nil
	}
	v := s.next
	s.next++
	return &Integer{Value: uint64(v)}, true, nil
}

// flakyStream fails once, then yields a single value, then ends.
type flakyStream struct {
	stage int
}

func (s *flakyStream) Next() (Object, bool, *perrors.PiError) {
	s.stage++
	switch s.stage {
	case 1:
		return nil, false, perrors.NewSimple(perrors.ClassIO, "stream hiccup")
	case 2:
		return &Integer{Value: 7}, true, nil
	}
	return nil, false, nil
}

// pairSource yields a fixed sequence of pairs and records every pull.
type pairSource struct {
	pairs []Pair
	next  int
	pulls int
}

func (s *pairSource) Next() (Pair, bool, *perrors.PiError) {
	s.pulls++
	if s.next >= len(s.pairs) {
		return Pair{}, false, nil
	}
	p := s.pairs[s.next]
	s.next++
	return p, true, nil
}

// TestListRealizeMinimalPull checks that realizing k elements pulls the
// stream exactly k times and leaves the rest pending.
func TestListRealizeMinimalPull(t *testing.T) {
	src := &countingStream{limit: 10}
	list := &List{Pending: src}

	if err := list.RealizeN(3); err != nil {
		t.Fatalf("RealizeN failed: %s", err.Message)
	}
	if len(list.Elements) != 3 {
		t.Errorf("Expected 3 realized elements, got %d", len(list.Elements))
	}
	if src.pulls != 3 {
		t.Errorf("Expected 3 pulls, got %d", src.pulls)
	}
	if list.Pending == nil {
		t.Errorf("Pending stream dropped before exhaustion")
	}
}

// TestListRealizeIdempotent checks that re-realizing an already realized
// prefix does not touch the stream again.
func TestListRealizeIdempotent(t *testing.T) {
	src := &countingStream{limit: 10}
	list := &List{Pending: src}

	if err := list.RealizeN(2); err != nil {
		t.Fatalf("RealizeN failed: %s", err.Message)
	}
	if err := list.RealizeN(2); err != nil {
		t.Fatalf("second RealizeN failed: %s", err.Message)
	}
	if src.pulls != 2 {
		t.Errorf("Expected 2 pulls after repeat realization, got %d", src.pulls)
	}
}

// TestListExhaustionClearsPending checks that draining the stream clears
// Pending permanently.
func TestListExhaustionClearsPending(t *testing.T) {
	list := &List{Pending: &countingStream{limit: 2}}

	if err := list.RealizeN(5); err != nil {
		t.Fatalf("RealizeN failed: %s", err.Message)
	}
	if len(list.Elements) != 2 {
		t.Errorf("Expected 2 elements, got %d", len(list.Elements))
	}
	if list.Pending != nil {
		t.Errorf("Pending should be nil after exhaustion")
	}
	if list.Inspect() != "[0, 1]" {
		t.Errorf("Expected [0, 1], got %s", list.Inspect())
	}
}

// TestListErrorKeepsPending checks that a stream error leaves the pending
// stream in place so the pull can be retried.
func TestListErrorKeepsPending(t *testing.T) {
	list := &List{Pending: &flakyStream{}}

	err := list.RealizeN(1)
	if err == nil {
		t.Fatalf("Expected an error from the first pull")
	}
	if list.Pending == nil {
		t.Fatalf("Pending cleared by a failed pull")
	}

	if err := list.RealizeN(1); err != nil {
		t.Fatalf("Retry failed: %s", err.Message)
	}
	if len(list.Elements) != 1 {
		t.Fatalf("Expected 1 element after retry, got %d", len(list.Elements))
	}
	if n := list.Elements[0].(*Integer).Value; n != 7 {
		t.Errorf("Expected 7, got %d", n)
	}

	if err := list.RealizeAll(); err != nil {
		t.Fatalf("RealizeAll failed: %s", err.Message)
	}
	if list.Pending != nil {
		t.Errorf("Pending should be nil after draining")
	}
}

// TestListGetOutOfBounds checks that indexing past the end only errors
// after the stream has proven itself too short.
func TestListGetOutOfBounds(t *testing.T) {
	list := &List{Pending: &countingStream{limit: 2}}

	el, err := list.Get(1)
	if err != nil {
		t.Fatalf("Get(1) failed: %s", err.Message)
	}
	if n := el.(*Integer).Value; n != 1 {
		t.Errorf("Expected 1, got %d", n)
	}

	_, err = list.Get(5)
	if err == nil {
		t.Fatalf("Expected out of bounds error")
	}
	if err.Code != "IDX-0001" {
		t.Errorf("Expected IDX-0001, got %s", err.Code)
	}
	if err.Message != "Index out of bounds: 5" {
		t.Errorf("Unexpected message %q", err.Message)
	}
}

// TestDictLookForShortCircuit checks that a key lookup stops pulling as
// soon as the key turns up, leaving the rest pending.
func TestDictLookForShortCircuit(t *testing.T) {
	src := &pairSource{pairs: []Pair{
		{Key: "a", Value: &Integer{Value: 1}},
		{Key: "b", Value: &Integer{Value: 2}},
		{Key: "c", Value: &Integer{Value: 3}},
	}}
	dict := &Dict{Pending: src}

	val, found, err := dict.LookFor("a")
	if err != nil {
		t.Fatalf("LookFor failed: %s", err.Message)
	}
	if !found {
		t.Fatalf("Expected to find key a")
	}
	if n := val.(*Integer).Value; n != 1 {
		t.Errorf("Expected 1, got %d", n)
	}
	if src.pulls != 1 {
		t.Errorf("Expected 1 pull, got %d", src.pulls)
	}
	if dict.Pending == nil {
		t.Errorf("Pending dropped before exhaustion")
	}
}

// TestDictLookForMiss checks that a missing key drains the dict and
// reports not found without an error.
func TestDictLookForMiss(t *testing.T) {
	dict := &Dict{Pending: &pairSource{pairs: []Pair{
		{Key: "a", Value: &Integer{Value: 1}},
		{Key: "b", Value: &Integer{Value: 2}},
	}}}

	_, found, err := dict.LookFor("zzz")
	if err != nil {
		t.Fatalf("LookFor failed: %s", err.Message)
	}
	if found {
		t.Fatalf("Found a key that does not exist")
	}
	if dict.Pending != nil {
		t.Errorf("Pending should be nil after a full scan")
	}
	if len(dict.KeyOrder) != 2 {
		t.Errorf("Expected 2 realized pairs, got %d", len(dict.KeyOrder))
	}
}

// TestDictDuplicateKeysKeepPosition checks that a key repeated by the
// stream replaces the value but stays at its first position.
func TestDictDuplicateKeysKeepPosition(t *testing.T) {
	dict := &Dict{Pending: &pairSource{pairs: []Pair{
		{Key: "a", Value: &Integer{Value: 1}},
		{Key: "b", Value: &Integer{Value: 2}},
		{Key: "a", Value: &Integer{Value: 9}},
	}}}

	if err := dict.RealizeAll(); err != nil {
		t.Fatalf("RealizeAll failed: %s", err.Message)
	}
	if len(dict.KeyOrder) != 2 {
		t.Fatalf("Expected 2 keys, got %d", len(dict.KeyOrder))
	}
	if dict.KeyOrder[0] != "a" || dict.KeyOrder[1] != "b" {
		t.Errorf("Unexpected key order %v", dict.KeyOrder)
	}
	if n := dict.Entries["a"].(*Integer).Value; n != 9 {
		t.Errorf("Expected a to be 9, got %d", n)
	}
}

// TestSampleRealizesPrefixDeep checks that sampling realizes a small
// prefix at every level that is already reachable.
func TestSampleRealizesPrefixDeep(t *testing.T) {
	inner := &List{Pending: &countingStream{limit: 10}}
	outer := &List{
		Elements: []Object{inner},
		Pending:  &countingStream{limit: 10},
	}

	if err := Sample(outer); err != nil {
		t.Fatalf("Sample failed: %s", err.Message)
	}
	if len(outer.Elements) != 3 {
		t.Errorf("Expected 3 outer elements, got %d", len(outer.Elements))
	}
	if len(inner.Elements) != 3 {
		t.Errorf("Expected 3 inner elements, got %d", len(inner.Elements))
	}
	if inner.Pending == nil || outer.Pending == nil {
		t.Errorf("Sampling should not drain either level")
	}
}

// TestRealizeDeepDrainsEverything checks that deep realization leaves no
// pending stream anywhere in the value.
func TestRealizeDeepDrainsEverything(t *testing.T) {
	inner := &Dict{Pending: &pairSource{pairs: []Pair{
		{Key: "x", Value: &List{Pending: &countingStream{limit: 4}}},
	}}}
	outer := &List{Elements: []Object{inner}, Pending: &countingStream{limit: 2}}

	if err := RealizeDeep(outer); err != nil {
		t.Fatalf("RealizeDeep failed: %s", err.Message)
	}
	if outer.Pending != nil || inner.Pending != nil {
		t.Fatalf("RealizeDeep left a pending stream")
	}
	x := inner.Entries["x"].(*List)
	if x.Pending != nil || len(x.Elements) != 4 {
		t.Errorf("Nested list not drained: %s", x.Inspect())
	}
}

// TestHasPending checks pending detection through nested realized children.
func TestHasPending(t *testing.T) {
	if HasPending(&Integer{Value: 1}) {
		t.Errorf("Scalar should not report pending")
	}
	if HasPending(&List{Elements: []Object{&Integer{Value: 1}}}) {
		t.Errorf("Fully realized list should not report pending")
	}

	inner := &List{Pending: &countingStream{limit: 4}}
	outer := &Dict{
		Entries:  map[string]Object{"x": inner},
		KeyOrder: []string{"x"},
	}
	if !HasPending(outer) {
		t.Errorf("Dict with a pending child should report pending")
	}

	if err := RealizeDeep(outer); err != nil {
		t.Fatalf("RealizeDeep failed: %s", err.Message)
	}
	if HasPending(outer) {
		t.Errorf("Drained value should not report pending")
	}
}

// TestEquals covers equality across types, including realized containers.
func TestEquals(t *testing.T) {
	tests := []struct {
		a, b     Object
		expected bool
	}{
		{&Integer{Value: 3}, &Integer{Value: 3}, true},
		{&Integer{Value: 3}, &Integer{Value: 4}, false},
		{&Integer{Value: 3}, &Float{Value: 3}, false},
		{&Float{Value: 1.5}, &Float{Value: 1.5}, true},
		{&String{Value: "hi"}, &String{Value: "hi"}, true},
		{NULL, NULL, true},
		{TRUE, FALSE, false},
		{
			&List{Elements: []Object{&Integer{Value: 1}, &Integer{Value: 2}}},
			&List{Elements: []Object{&Integer{Value: 1}, &Integer{Value: 2}}},
			true,
		},
		{
			&List{Elements: []Object{&Integer{Value: 1}}},
			&List{Elements: []Object{&Integer{Value: 2}}},
			false,
		},
	}

	for _, tt := range tests {
		if got := Equals(tt.a, tt.b); got != tt.expected {
			t.Errorf("Equals(%s, %s) = %v, want %v", tt.a.Inspect(), tt.b.Inspect(), got, tt.expected)
		}
	}
}

// TestEqualsDictOrderIndependent checks that dicts compare by content,
// not key order.
func TestEqualsDictOrderIndependent(t *testing.T) {
	d1 := NewDict()
	d1.Set("a", &Integer{Value: 1})
	d1.Set("b", &Integer{Value: 2})

	d2 := NewDict()
	d2.Set("b", &Integer{Value: 2})
	d2.Set("a", &Integer{Value: 1})

	if !Equals(d1, d2) {
		t.Errorf("Dicts with the same pairs should be equal regardless of order")
	}

	d2.Set("b", &Integer{Value: 3})
	if Equals(d1, d2) {
		t.Errorf("Dicts with different values should not be equal")
	}
}
