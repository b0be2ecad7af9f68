package builtins

import (
	"fmt"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"

	"github.com/scriptlang/tsforge/internal/runtime"
)

// RegisterJSON wires the `JSON` namespace, grounded on the teacher's
// RegisterJSONFunctions (ParseJSON/ToJSON/JSONHasField/JSONKeys/
// JSONValues). The teacher hand-rolls a recursive tree walk over its own
// Variant representation; here JSON.parse/stringify instead delegate
// structural querying and patching to gjson/sjson (go-dws's own indirect
// dependency, promoted to a direct one) so navigating and editing nested
// JSON does not require re-implementing a JSON tree walker from scratch.
func RegisterJSON(r *Registry) {
	r.Register("JSON", "parse", jsonParse, "Parses a JSON string into a value")
	r.Register("JSON", "stringify", jsonStringify, "Serializes a value to a JSON string")
}

func jsonParse(_ any, _ runtime.Value, args []runtime.Value) (runtime.Value, error) {
	if len(args) != 1 {
		return nil, fmt.Errorf("SyntaxError: JSON.parse expects 1 argument, got %d", len(args))
	}
	s, ok := args[0].(runtime.String)
	if !ok {
		return nil, fmt.Errorf("TypeError: JSON.parse expects a string argument")
	}
	if !gjson.Valid(string(s)) {
		return nil, fmt.Errorf("SyntaxError: Unexpected token in JSON")
	}
	return gjsonToValue(gjson.Parse(string(s))), nil
}

func gjsonToValue(r gjson.Result) runtime.Value {
	switch r.Type {
	case gjson.Null:
		return runtime.Null
	case gjson.False:
		return runtime.False
	case gjson.True:
		return runtime.True
	case gjson.Number:
		return runtime.Number(r.Num)
	case gjson.String:
		return runtime.String(r.Str)
	case gjson.JSON:
		if r.IsArray() {
			arr := runtime.NewArray()
			r.ForEach(func(_, v gjson.Result) bool {
				arr.Elements = append(arr.Elements, gjsonToValue(v))
				return true
			})
			return arr
		}
		obj := runtime.NewObject()
		r.ForEach(func(k, v gjson.Result) bool {
			obj.Set(k.String(), gjsonToValue(v))
			return true
		})
		return obj
	default:
		return runtime.Undefined
	}
}

func jsonStringify(_ any, _ runtime.Value, args []runtime.Value) (runtime.Value, error) {
	if len(args) == 0 {
		return runtime.Undefined, nil
	}
	out, err := valueToJSON(args[0])
	if err != nil {
		return nil, err
	}
	if out == "" {
		return runtime.Undefined, nil
	}
	return runtime.String(out), nil
}

// valueToJSON serializes v by building up a JSON document through
// repeated sjson.Set calls rather than a bespoke encoder, keeping
// stringify's formatting consistent with parse's gjson reader.
func valueToJSON(v runtime.Value) (string, error) {
	if v == nil || v.Kind() == runtime.KindNull {
		return "null", nil
	}
	switch vv := v.(type) {
	case runtime.String:
		return sjson.Set("", "@this", string(vv))
	case runtime.Number:
		return sjson.SetRaw("", "@this", formatJSONNumber(float64(vv)))
	case runtime.Boolean:
		return sjson.SetRaw("", "@this", fmt.Sprintf("%t", bool(vv)))
	case *runtime.Array:
		doc := "[]"
		for i, e := range vv.Elements {
			if e == nil || e.Kind() == runtime.KindUndefined || isJSONSkippable(e) {
				doc, _ = sjson.SetRaw(doc, fmt.Sprintf("%d", i), "null")
				continue
			}
			raw, err := valueToJSON(e)
			if err != nil {
				return "", err
			}
			if raw == "" {
				raw = "null"
			}
			doc, err = sjson.SetRaw(doc, fmt.Sprintf("%d", i), raw)
			if err != nil {
				return "", err
			}
		}
		return doc, nil
	case *runtime.Object:
		doc := "{}"
		var err error
		for _, k := range vv.PropertyOrder {
			val, _ := vv.Get(k)
			if val == nil || val.Kind() == runtime.KindUndefined || isJSONSkippable(val) {
				continue // JSON.stringify omits undefined/function-valued properties
			}
			raw, jerr := valueToJSON(val)
			if jerr != nil {
				return "", jerr
			}
			if raw == "" {
				continue
			}
			doc, err = sjson.SetRaw(doc, k, raw)
			if err != nil {
				return "", err
			}
		}
		return doc, nil
	default:
		return "", nil // undefined, function, symbol: stringify skips these
	}
}

func formatJSONNumber(f float64) string {
	return runtime.Number(f).String()
}

func isJSONSkippable(v runtime.Value) bool {
	switch v.Kind() {
	case runtime.KindFunction, runtime.KindArrowFunction, runtime.KindNativeFunction,
		runtime.KindBoundMethod, runtime.KindSymbol:
		return true
	default:
		return false
	}
}
