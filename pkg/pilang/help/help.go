// Package help provides topic-based documentation for the :help directive.
// Topics are builtin names, directive names, or the keywords builtins,
// directives and navigation; results render as text or JSON.
package help

import (
	"fmt"
	"sort"
	"strings"

	"github.com/SuperCuber/pilang/pkg/pilang/evaluator"
)

// TopicResult represents the help output for a topic
type TopicResult struct {
	Kind        string                  `json:"kind"`
	Name        string                  `json:"name"`
	Description string                  `json:"description,omitempty"`
	Builtins    []evaluator.BuiltinInfo `json:"builtins,omitempty"`
	Directives  []DirectiveInfo         `json:"directives,omitempty"`
	Params      []string                `json:"params,omitempty"`
	Arity       string                  `json:"arity,omitempty"`
	Category    string                  `json:"category,omitempty"`
	Args        string                  `json:"args,omitempty"`
}

// DirectiveInfo describes one shell directive for help output
type DirectiveInfo struct {
	Name        string `json:"name"`
	Args        string `json:"args,omitempty"`
	Description string `json:"description"`
}

// Directives lists every shell directive in display order. The REPL uses
// this for dispatch documentation and completion as well.
var Directives = []DirectiveInfo{
	{Name: ":undo", Description: "Discard the most recent command"},
	{Name: ":status", Description: "Show the chain of open containers"},
	{Name: ":scope", Description: "List the variables bound in the current frame"},
	{Name: ":all", Args: "[n]", Description: "Realize up to n elements per container (default 1000)"},
	{Name: ":pp", Description: "Pretty-print a sample of the current value"},
	{Name: ":save", Args: "<path>", Description: "Write the current value to a file as JSON"},
	{Name: ":reload", Description: "Restart the session from the original input"},
	{Name: ":help", Args: "[topic]", Description: "Show help for a topic, builtin or directive"},
	{Name: ":quit", Description: "Leave the shell (also :exit, quit, exit)"},
}

const navigationGuide = `Navigation steps into a container, works on one element, then steps
back out, applying the recorded steps to every element.

  >>            descend: open a list on its first element, or open a
                dict with the entry's key and value bound to k and v
  >> key: val   descend into a dict binding the names yourself
  <<            ascend: replay the commands recorded inside the frame
                against every element, collecting a lazy list
  << ke: ve     ascend into a dict: for each element the two
                expressions produce its key and its value

Ascends are lazy. Elements are only replayed as the result is
realized, so descending into a million-row query costs nothing until
you look at the rows.`

// DescribeTopic returns help information for the given topic. Topics can
// be the keywords builtins, directives or navigation, a builtin name
// (json, sql), or a directive name (:save, save).
func DescribeTopic(topic string) (*TopicResult, error) {
	topic = strings.TrimSpace(topic)
	if topic == "" {
		return nil, fmt.Errorf("no topic specified (try: builtins, directives, navigation, or a name like json)")
	}

	switch topic {
	case "builtins":
		return describeBuiltins(), nil
	case "directives":
		return describeDirectives(), nil
	case "navigation", ">>", "<<":
		return describeNavigation(), nil
	}

	if result := describeBuiltinByName(topic); result != nil {
		return result, nil
	}

	if result := describeDirectiveByName(topic); result != nil {
		return result, nil
	}

	return nil, unknownTopicError(topic)
}

// describeBuiltins returns a list of all builtins grouped by category
func describeBuiltins() *TopicResult {
	builtins := make([]evaluator.BuiltinInfo, 0, len(evaluator.BuiltinMetadata))
	for _, info := range evaluator.BuiltinMetadata {
		builtins = append(builtins, info)
	}

	// Sort by category, then by name
	sort.Slice(builtins, func(i, j int) bool {
		if builtins[i].Category != builtins[j].Category {
			return builtins[i].Category < builtins[j].Category
		}
		return builtins[i].Name < builtins[j].Name
	})

	return &TopicResult{
		Kind:     "builtin-list",
		Name:     "builtins",
		Builtins: builtins,
	}
}

// describeDirectives returns the directive list in display order
func describeDirectives() *TopicResult {
	return &TopicResult{
		Kind:       "directive-list",
		Name:       "directives",
		Directives: Directives,
	}
}

// describeNavigation returns the descend/ascend guide
func describeNavigation() *TopicResult {
	return &TopicResult{
		Kind:        "guide",
		Name:        "navigation",
		Description: navigationGuide,
	}
}

// describeBuiltinByName returns help for a specific builtin, or nil if not found
func describeBuiltinByName(name string) *TopicResult {
	info, ok := evaluator.BuiltinMetadata[name]
	if !ok {
		return nil
	}

	return &TopicResult{
		Kind:        "builtin",
		Name:        info.Name,
		Description: info.Description,
		Params:      info.Params,
		Arity:       info.Arity,
		Category:    info.Category,
	}
}

// describeDirectiveByName returns help for a directive, with or without
// its leading colon, or nil if not found
func describeDirectiveByName(name string) *TopicResult {
	want := ":" + strings.TrimPrefix(name, ":")
	for _, d := range Directives {
		if d.Name == want {
			return &TopicResult{
				Kind:        "directive",
				Name:        d.Name,
				Description: d.Description,
				Args:        d.Args,
			}
		}
	}
	return nil
}

// unknownTopicError generates a helpful error for unknown topics
func unknownTopicError(topic string) error {
	suggestions := findSuggestions(topic)

	if len(suggestions) > 0 {
		return fmt.Errorf("unknown topic: %s\nDid you mean: %s?", topic, strings.Join(suggestions, ", "))
	}

	return fmt.Errorf("unknown topic: %s\nTry: builtins, directives, navigation, json, sql", topic)
}

// findSuggestions finds topics similar to the given unknown topic
func findSuggestions(topic string) []string {
	topic = strings.ToLower(strings.TrimPrefix(topic, ":"))
	var suggestions []string

	// Check builtin names, in sorted order so suggestions are stable
	names := make([]string, 0, len(evaluator.BuiltinMetadata))
	for name := range evaluator.BuiltinMetadata {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if strings.Contains(name, topic) || strings.Contains(topic, name) {
			suggestions = append(suggestions, name)
		}
	}

	// Check directive names
	for _, d := range Directives {
		name := strings.TrimPrefix(d.Name, ":")
		if strings.Contains(name, topic) || strings.Contains(topic, name) {
			suggestions = append(suggestions, d.Name)
		}
	}

	// Limit to 3 suggestions
	if len(suggestions) > 3 {
		suggestions = suggestions[:3]
	}

	return suggestions
}
