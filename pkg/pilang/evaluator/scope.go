package evaluator

import "sort"

// Scope maps names to values. Binding copies the map, so every holder of
// a scope keeps seeing exactly the bindings it had when it took its
// reference. Values themselves are shared; realizing a lazy container
// through one scope is visible through all of them.
type Scope struct {
	vars   map[string]Object
	order  []string
	Logger Logger
	Locale string

	// SQLAliases maps short connection names to full DSNs, loaded from the
	// host configuration. The sql builtin consults it before dialing.
	SQLAliases map[string]string
}

// NewScope creates a scope preloaded with the builtin functions
func NewScope() *Scope {
	s := &Scope{
		vars:   make(map[string]Object, len(builtins)),
		order:  make([]string, 0, len(builtins)),
		Logger: DefaultLogger,
		Locale: "en_US",
	}
	for name := range builtins {
		s.order = append(s.order, name)
	}
	sort.Strings(s.order)
	for _, name := range s.order {
		s.vars[name] = builtins[name]
	}
	return s
}

// Get looks up a name in the scope
func (s *Scope) Get(name string) (Object, bool) {
	obj, ok := s.vars[name]
	return obj, ok
}

// Bind returns a new scope with name bound to value, leaving the
// receiver untouched. A rebound name keeps its position; a new one is
// appended.
func (s *Scope) Bind(name string, value Object) *Scope {
	vars := make(map[string]Object, len(s.vars)+1)
	for k, v := range s.vars {
		vars[k] = v
	}
	order := make([]string, len(s.order), len(s.order)+1)
	copy(order, s.order)
	if _, exists := s.vars[name]; !exists {
		order = append(order, name)
	}
	vars[name] = value
	return &Scope{vars: vars, order: order, Logger: s.Logger, Locale: s.Locale, SQLAliases: s.SQLAliases}
}

// Names returns every bound name in binding order. Builtins are seeded
// alphabetically, so user bindings follow them in the order they were
// bound.
func (s *Scope) Names() []string {
	names := make([]string, len(s.order))
	copy(names, s.order)
	return names
}
