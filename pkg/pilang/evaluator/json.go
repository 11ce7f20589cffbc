package evaluator

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	perrors "github.com/SuperCuber/pilang/pkg/pilang/errors"
)

// builtinJSON parses a JSON string into values
func builtinJSON(scope *Scope, args []Object) (Object, *perrors.PiError) {
	text, err := stringArg(args[0])
	if err != nil {
		return nil, err
	}
	return ParseJSON(text)
}

// ParseJSON decodes JSON text into values, keeping object keys in
// document order. The stock unmarshaller loses the order, so this walks
// the decoder's token stream instead.
func ParseJSON(text string) (Object, *perrors.PiError) {
	dec := json.NewDecoder(strings.NewReader(text))
	dec.UseNumber()

	value, err := decodeJSONValue(dec)
	if err != nil {
		return nil, perrors.New("PARSE-0001", map[string]any{"Detail": err.Error()})
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, perrors.New("PARSE-0001", map[string]any{"Detail": "unexpected trailing data"})
	}
	return value, nil
}

func decodeJSONValue(dec *json.Decoder) (Object, error) {
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	return decodeJSONToken(dec, tok)
}

func decodeJSONToken(dec *json.Decoder, tok json.Token) (Object, error) {
	switch tok := tok.(type) {
	case nil:
		return NULL, nil
	case bool:
		return nativeBoolToBooleanObject(tok), nil
	case json.Number:
		return jsonNumberObject(tok), nil
	case string:
		return &String{Value: tok}, nil
	case json.Delim:
		switch tok {
		case '[':
			list := &List{Elements: []Object{}}
			for dec.More() {
				el, err := decodeJSONValue(dec)
				if err != nil {
					return nil, err
				}
				list.Elements = append(list.Elements, el)
			}
			if _, err := dec.Token(); err != nil {
				return nil, err
			}
			return list, nil
		case '{':
			dict := NewDict()
			for dec.More() {
				keyTok, err := dec.Token()
				if err != nil {
					return nil, err
				}
				key, ok := keyTok.(string)
				if !ok {
					return nil, fmt.Errorf("unexpected object key %v", keyTok)
				}
				value, err := decodeJSONValue(dec)
				if err != nil {
					return nil, err
				}
				dict.Set(key, value)
			}
			if _, err := dec.Token(); err != nil {
				return nil, err
			}
			return dict, nil
		}
	}
	return nil, fmt.Errorf("unexpected token %v", tok)
}

// jsonNumberObject maps JSON numbers into the numeric model: whole
// non-negative numbers become integers, everything else a float.
func jsonNumberObject(num json.Number) Object {
	if n, err := strconv.ParseUint(num.String(), 10, 64); err == nil {
		return &Integer{Value: n}
	}
	f, _ := num.Float64()
	return &Float{Value: f}
}

// ToJSON serializes a value as compact JSON, keeping dict key order.
// Only the realized part of a container is written; realize first if the
// whole value is wanted. Functions have no JSON form and are rejected;
// non-finite floats become null.
func ToJSON(obj Object) (string, *perrors.PiError) {
	var buf bytes.Buffer
	if err := writeJSON(&buf, obj); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func writeJSON(buf *bytes.Buffer, obj Object) *perrors.PiError {
	switch v := obj.(type) {
	case *Null:
		buf.WriteString("null")
	case *Boolean:
		buf.WriteString(strconv.FormatBool(v.Value))
	case *Integer:
		buf.WriteString(strconv.FormatUint(v.Value, 10))
	case *Float:
		if math.IsInf(v.Value, 0) || math.IsNaN(v.Value) {
			buf.WriteString("null")
			return nil
		}
		buf.WriteString(strconv.FormatFloat(v.Value, 'g', -1, 64))
	case *String:
		writeJSONString(buf, v.Value)
	case *List:
		buf.WriteByte('[')
		for i, el := range v.Elements {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := writeJSON(buf, el); err != nil {
				return err
			}
		}
		buf.WriteByte(']')
	case *Dict:
		buf.WriteByte('{')
		for i, k := range v.KeyOrder {
			if i > 0 {
				buf.WriteByte(',')
			}
			writeJSONString(buf, k)
			buf.WriteByte(':')
			if err := writeJSON(buf, v.Entries[k]); err != nil {
				return err
			}
		}
		buf.WriteByte('}')
	default:
		return perrors.NewSimple(perrors.ClassType, "cannot serialize a "+TypeName(obj)+" as JSON")
	}
	return nil
}

func writeJSONString(buf *bytes.Buffer, s string) {
	encoded, err := json.Marshal(s)
	if err != nil {
		buf.WriteString(strconv.Quote(s))
		return
	}
	buf.Write(encoded)
}
