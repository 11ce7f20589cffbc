package help

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/SuperCuber/pilang/pkg/pilang/evaluator"
)

// FormatText formats a TopicResult for terminal output with the given width
func FormatText(result *TopicResult, width int) string {
	if width <= 0 {
		width = 80
	}

	var sb strings.Builder

	switch result.Kind {
	case "builtin":
		formatBuiltinText(&sb, result)
	case "builtin-list":
		formatBuiltinListText(&sb, result)
	case "directive":
		formatDirectiveText(&sb, result)
	case "directive-list":
		formatDirectiveListText(&sb, result)
	case "guide":
		formatGuideText(&sb, result)
	default:
		sb.WriteString(fmt.Sprintf("Unknown result kind: %s\n", result.Kind))
	}

	return sb.String()
}

// FormatJSON formats a TopicResult as JSON
func FormatJSON(result *TopicResult) ([]byte, error) {
	return json.MarshalIndent(result, "", "  ")
}

// formatBuiltinText formats a single builtin's help output
func formatBuiltinText(sb *strings.Builder, result *TopicResult) {
	// Signature
	fmt.Fprintf(sb, "%s(%s)\n", result.Name, strings.Join(result.Params, ", "))
	sb.WriteString("\n")

	// Description
	fmt.Fprintf(sb, "%s\n", result.Description)
	sb.WriteString("\n")

	fmt.Fprintf(sb, "Arity: %s\n", result.Arity)
	fmt.Fprintf(sb, "Category: %s\n", result.Category)
}

// formatBuiltinListText formats the builtins list output
func formatBuiltinListText(sb *strings.Builder, result *TopicResult) {
	sb.WriteString("Builtin Functions\n")
	sb.WriteString("=================\n\n")

	// Group by category
	byCategory := make(map[string][]evaluator.BuiltinInfo)
	for _, b := range result.Builtins {
		byCategory[b.Category] = append(byCategory[b.Category], b)
	}

	// Sort categories
	categories := make([]string, 0, len(byCategory))
	for cat := range byCategory {
		categories = append(categories, cat)
	}
	sort.Strings(categories)

	// Category display names
	categoryNames := map[string]string{
		"parsing":       "Parsing",
		"file":          "File/Data Loading",
		"network":       "Network",
		"database":      "Database",
		"time":          "Date & Time",
		"format":        "Formatting",
		"collection":    "Collections",
		"conversion":    "Type Conversion",
		"introspection": "Introspection",
		"output":        "Output",
	}

	for _, cat := range categories {
		builtins := byCategory[cat]

		displayName := categoryNames[cat]
		if displayName == "" {
			displayName = strings.ToUpper(cat[:1]) + cat[1:]
		}
		fmt.Fprintf(sb, "%s:\n", displayName)

		// Find max name length for alignment
		maxLen := 0
		for _, b := range builtins {
			display := fmt.Sprintf("%s(%s)", b.Name, strings.Join(b.Params, ", "))
			if len(display) > maxLen {
				maxLen = len(display)
			}
		}

		// Sort builtins in category by name
		sort.Slice(builtins, func(i, j int) bool {
			return builtins[i].Name < builtins[j].Name
		})

		for _, b := range builtins {
			display := fmt.Sprintf("%s(%s)", b.Name, strings.Join(b.Params, ", "))
			padding := strings.Repeat(" ", maxLen-len(display)+2)
			fmt.Fprintf(sb, "  %s%s%s\n", display, padding, b.Description)
		}
		sb.WriteString("\n")
	}
}

// formatDirectiveText formats a single directive's help output
func formatDirectiveText(sb *strings.Builder, result *TopicResult) {
	if result.Args != "" {
		fmt.Fprintf(sb, "%s %s\n", result.Name, result.Args)
	} else {
		fmt.Fprintf(sb, "%s\n", result.Name)
	}
	sb.WriteString("\n")
	fmt.Fprintf(sb, "%s\n", result.Description)
}

// formatDirectiveListText formats the directive list output, keeping the
// display order of the Directives table
func formatDirectiveListText(sb *strings.Builder, result *TopicResult) {
	sb.WriteString("Directives\n")
	sb.WriteString("==========\n\n")

	// Find max name length for alignment
	maxLen := 0
	for _, d := range result.Directives {
		display := d.Name
		if d.Args != "" {
			display += " " + d.Args
		}
		if len(display) > maxLen {
			maxLen = len(display)
		}
	}

	for _, d := range result.Directives {
		display := d.Name
		if d.Args != "" {
			display += " " + d.Args
		}
		padding := strings.Repeat(" ", maxLen-len(display)+2)
		fmt.Fprintf(sb, "  %s%s%s\n", display, padding, d.Description)
	}
}

// formatGuideText formats a prose guide topic
func formatGuideText(sb *strings.Builder, result *TopicResult) {
	title := strings.ToUpper(result.Name[:1]) + result.Name[1:]
	fmt.Fprintf(sb, "%s\n", title)
	sb.WriteString(strings.Repeat("=", len(title)))
	sb.WriteString("\n\n")
	fmt.Fprintf(sb, "%s\n", result.Description)
}
