package evaluator

import (
	"strconv"
	"strings"
)

// PrettyInspect renders a value as an indented multi-line string. Only the
// realized part of lazy containers is shown, with ... marking a pending
// tail, so pretty printing never forces realization.
func PrettyInspect(obj Object) string {
	var b strings.Builder
	prettyWrite(&b, obj, 0)
	return b.String()
}

func prettyWrite(b *strings.Builder, obj Object, depth int) {
	switch v := obj.(type) {
	case *List:
		if len(v.Elements) == 0 && v.Pending == nil {
			b.WriteString("[]")
			return
		}
		b.WriteString("[")
		for i, el := range v.Elements {
			if i > 0 {
				b.WriteString(",")
			}
			b.WriteString("\n")
			b.WriteString(strings.Repeat("  ", depth+1))
			prettyWrite(b, el, depth+1)
		}
		if v.Pending != nil {
			if len(v.Elements) > 0 {
				b.WriteString(",")
			}
			b.WriteString("\n")
			b.WriteString(strings.Repeat("  ", depth+1))
			b.WriteString("...")
		}
		b.WriteString("\n")
		b.WriteString(strings.Repeat("  ", depth))
		b.WriteString("]")
	case *Dict:
		if len(v.KeyOrder) == 0 && v.Pending == nil {
			b.WriteString("{}")
			return
		}
		b.WriteString("{")
		for i, k := range v.KeyOrder {
			if i > 0 {
				b.WriteString(",")
			}
			b.WriteString("\n")
			b.WriteString(strings.Repeat("  ", depth+1))
			b.WriteString(strconv.Quote(k))
			b.WriteString(": ")
			prettyWrite(b, v.Entries[k], depth+1)
		}
		if v.Pending != nil {
			if len(v.KeyOrder) > 0 {
				b.WriteString(",")
			}
			b.WriteString("\n")
			b.WriteString(strings.Repeat("  ", depth+1))
			b.WriteString("...")
		}
		b.WriteString("\n")
		b.WriteString(strings.Repeat("  ", depth))
		b.WriteString("}")
	default:
		b.WriteString(obj.Inspect())
	}
}
