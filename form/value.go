package form

import (
	"fmt"
	"strconv"
)

// Value is one answer value. Exactly one concrete variant exists per stored
// shape: scalar text, number, boolean, multi-select list, grid cell
// selections, stored file reference. Consumers dispatch on the variant tag,
// never on reflection over decoded JSON.
type Value interface {
	isValue()

	// Empty reports whether the value counts as absent for validation and
	// progress. Empty strings and empty lists are absent.
	Empty() bool
}

// Text is a scalar string answer.
type Text string

// Number is a scalar numeric answer.
type Number float64

// Bool is a scalar boolean answer.
type Bool bool

// List is a multi-select answer, ordered as selected.
type List []string

// GridValue maps a grid row label to the selected column label. Unset rows
// have no entry.
type GridValue map[string]string

// FileRef is the relative path of a stored file, or a pending-upload
// placeholder for anonymous sessions.
type FileRef string

func (Text) isValue()      {}
func (Number) isValue()    {}
func (Bool) isValue()      {}
func (List) isValue()      {}
func (GridValue) isValue() {}
func (FileRef) isValue()   {}

func (v Text) Empty() bool      { return v == "" }
func (v Number) Empty() bool    { return false }
func (v Bool) Empty() bool      { return false }
func (v List) Empty() bool      { return len(v) == 0 }
func (v GridValue) Empty() bool { return len(v) == 0 }
func (v FileRef) Empty() bool   { return v == "" }

// Wire returns the JSON-facing representation of v: the thing that goes
// inside the payload's answer_value.value.
func Wire(v Value) any {
	switch v := v.(type) {
	case Text:
		return string(v)
	case Number:
		return float64(v)
	case Bool:
		return bool(v)
	case List:
		return []string(v)
	case GridValue:
		return map[string]string(v)
	case FileRef:
		return string(v)
	default:
		return nil
	}
}

// DecodeValue interprets a decoded JSON value as the variant the question
// type mandates. A nil raw decodes to nil (no answer).
func DecodeValue(code Code, raw any) (Value, error) {
	if raw == nil {
		return nil, nil
	}

	switch {
	case code == TypeFileUpload:
		s, ok := raw.(string)
		if !ok {
			return nil, fmt.Errorf("form: %s answer must be a path string, got %T", code, raw)
		}
		return FileRef(s), nil

	case code == TypeGrid:
		switch m := raw.(type) {
		case map[string]string:
			return GridValue(m), nil
		case map[string]any:
			g := make(GridValue, len(m))
			for k, v := range m {
				s, ok := v.(string)
				if !ok {
					return nil, fmt.Errorf("form: grid cell %q must be a string, got %T", k, v)
				}
				g[k] = s
			}
			return g, nil
		default:
			return nil, fmt.Errorf("form: %s answer must be an object, got %T", code, raw)
		}

	case code.Multi():
		switch l := raw.(type) {
		case []string:
			return List(l), nil
		case []any:
			out := make(List, 0, len(l))
			for _, e := range l {
				s, ok := e.(string)
				if !ok {
					return nil, fmt.Errorf("form: %s answer entries must be strings, got %T", code, e)
				}
				out = append(out, s)
			}
			return out, nil
		default:
			return nil, fmt.Errorf("form: %s answer must be a list, got %T", code, raw)
		}

	case code == TypeNumber || code == TypeLinearScale || code == TypeRating:
		switch n := raw.(type) {
		case float64:
			return Number(n), nil
		case int:
			return Number(n), nil
		case string:
			if n == "" {
				return nil, nil
			}
			f, err := strconv.ParseFloat(n, 64)
			if err != nil {
				return nil, fmt.Errorf("form: %s answer %q is not numeric", code, n)
			}
			return Number(f), nil
		default:
			return nil, fmt.Errorf("form: %s answer must be numeric, got %T", code, raw)
		}

	default:
		switch s := raw.(type) {
		case string:
			return Text(s), nil
		case bool:
			return Bool(s), nil
		case float64:
			return Number(s), nil
		default:
			return nil, fmt.Errorf("form: %s answer must be a scalar, got %T", code, raw)
		}
	}
}
