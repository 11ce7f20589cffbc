package evaluator

import (
	"bytes"
	"encoding/csv"
	"io"
	"strconv"
	"strings"

	"github.com/ledongthuc/pdf"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"gopkg.in/yaml.v3"

	perrors "github.com/SuperCuber/pilang/pkg/pilang/errors"
)

// builtinYAML parses a YAML string into values
func builtinYAML(scope *Scope, args []Object) (Object, *perrors.PiError) {
	text, err := stringArg(args[0])
	if err != nil {
		return nil, err
	}

	// Unmarshal into a yaml.Node rather than a map so mapping keys keep
	// their document order
	var root yaml.Node
	if yamlErr := yaml.Unmarshal([]byte(text), &root); yamlErr != nil {
		return nil, perrors.New("PARSE-0002", map[string]any{"Detail": yamlErr.Error()})
	}
	return yamlNodeToObject(&root), nil
}

func yamlNodeToObject(node *yaml.Node) Object {
	switch node.Kind {
	case yaml.DocumentNode:
		if len(node.Content) == 0 {
			return NULL
		}
		return yamlNodeToObject(node.Content[0])

	case yaml.SequenceNode:
		elements := make([]Object, 0, len(node.Content))
		for _, child := range node.Content {
			elements = append(elements, yamlNodeToObject(child))
		}
		return &List{Elements: elements}

	case yaml.MappingNode:
		dict := NewDict()
		for i := 0; i+1 < len(node.Content); i += 2 {
			dict.Set(node.Content[i].Value, yamlNodeToObject(node.Content[i+1]))
		}
		return dict

	case yaml.ScalarNode:
		return yamlScalarToObject(node)

	case yaml.AliasNode:
		return yamlNodeToObject(node.Alias)
	}
	return NULL
}

func yamlScalarToObject(node *yaml.Node) Object {
	switch node.Tag {
	case "!!null":
		return NULL
	case "!!bool":
		var v bool
		if err := node.Decode(&v); err == nil {
			return nativeBoolToBooleanObject(v)
		}
	case "!!int":
		var v uint64
		if err := node.Decode(&v); err == nil {
			return &Integer{Value: v}
		}
		// negative integers do not fit the unsigned model
		var f float64
		if err := node.Decode(&f); err == nil {
			return &Float{Value: f}
		}
	case "!!float":
		var v float64
		if err := node.Decode(&v); err == nil {
			return &Float{Value: v}
		}
	}
	return &String{Value: node.Value}
}

// builtinCSV parses CSV text into a lazy list of rows. By default the
// first row is a header and every following row becomes a dict keyed by
// it; csv(text, false) streams the raw rows as lists instead. Cell values
// are typed the way they read: integer, float, boolean, then string.
// The header row is read up front so a malformed header fails immediately.
func builtinCSV(scope *Scope, args []Object) (Object, *perrors.PiError) {
	text, err := stringArg(args[0])
	if err != nil {
		return nil, err
	}

	hasHeader := true
	if len(args) == 2 {
		flag, ok := args[1].(*Boolean)
		if !ok {
			return nil, perrors.New("TYPE-0001", map[string]any{"Expected": "boolean"})
		}
		hasHeader = flag.Value
	}

	reader := csv.NewReader(strings.NewReader(text))

	var headers []string
	if hasHeader {
		row, readErr := reader.Read()
		if readErr == io.EOF {
			return &List{}, nil
		}
		if readErr != nil {
			return nil, perrors.New("PARSE-0003", map[string]any{"Detail": readErr.Error()})
		}
		headers = row
	}

	return &List{Pending: StreamFunc(func() (Object, bool, *perrors.PiError) {
		row, readErr := reader.Read()
		if readErr == io.EOF {
			return nil, false, nil
		}
		if readErr != nil {
			return nil, false, perrors.New("PARSE-0003", map[string]any{"Detail": readErr.Error()})
		}

		if headers != nil {
			record := NewDict()
			for i, value := range row {
				if i < len(headers) {
					record.Set(headers[i], csvValueToObject(value))
				}
			}
			return record, true, nil
		}

		cells := make([]Object, 0, len(row))
		for _, value := range row {
			cells = append(cells, csvValueToObject(value))
		}
		return &List{Elements: cells}, true, nil
	})}, nil
}

// csvValueToObject converts a CSV cell to the most specific type it
// reads as. Tries integer first, then float, then boolean.
func csvValueToObject(value string) Object {
	if n, err := strconv.ParseUint(value, 10, 64); err == nil {
		return &Integer{Value: n}
	}
	if f, err := strconv.ParseFloat(value, 64); err == nil {
		return &Float{Value: f}
	}
	switch strings.ToLower(value) {
	case "true":
		return TRUE
	case "false":
		return FALSE
	}
	return &String{Value: value}
}

// builtinMarkdown renders Markdown to an HTML string
func builtinMarkdown(scope *Scope, args []Object) (Object, *perrors.PiError) {
	text, err := stringArg(args[0])
	if err != nil {
		return nil, err
	}

	md := goldmark.New(goldmark.WithExtensions(extension.GFM))
	var out bytes.Buffer
	if mdErr := md.Convert([]byte(text), &out); mdErr != nil {
		return nil, perrors.NewSimple(perrors.ClassParse, "could not render Markdown: "+mdErr.Error())
	}
	return &String{Value: out.String()}, nil
}

// builtinPDFText extracts the plain text of a PDF file. Only text-based
// PDFs yield anything useful; scanned pages come back empty.
func builtinPDFText(scope *Scope, args []Object) (Object, *perrors.PiError) {
	path, err := stringArg(args[0])
	if err != nil {
		return nil, err
	}

	f, reader, pdfErr := pdf.Open(path)
	if pdfErr != nil {
		return nil, perrors.New("IO-0001", map[string]any{"Path": path, "Detail": pdfErr.Error()})
	}
	defer f.Close()

	plainText, pdfErr := reader.GetPlainText()
	if pdfErr != nil {
		return nil, perrors.New("IO-0001", map[string]any{"Path": path, "Detail": pdfErr.Error()})
	}

	var buf bytes.Buffer
	if _, readErr := buf.ReadFrom(plainText); readErr != nil {
		return nil, perrors.New("IO-0001", map[string]any{"Path": path, "Detail": readErr.Error()})
	}
	return &String{Value: buf.String()}, nil
}
