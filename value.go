package goflat

// Record is the in-memory value of a struct schema. Keys are field names; a
// missing key and a nil value both mean null.
type Record map[string]any

// Union is the in-memory value of a union schema: the selected variant tag
// and the variant's record.
type Union struct {
	Tag    string
	Record Record
}

// AsRecord accepts the struct value shapes the encoders understand.
func AsRecord(v any) (Record, bool) {
	switch t := v.(type) {
	case Record:
		return t, true
	case map[string]any:
		return Record(t), true
	case *Record:
		if t == nil {
			return nil, false
		}
		return *t, true
	}
	return nil, false
}

// AsUnion accepts the union value shapes the encoders understand.
func AsUnion(v any) (Union, bool) {
	switch t := v.(type) {
	case Union:
		return t, true
	case *Union:
		if t == nil {
			return Union{}, false
		}
		return *t, true
	}
	return Union{}, false
}

// AsList accepts []any and []Record (the common decoded list shapes).
func AsList(v any) ([]any, bool) {
	switch t := v.(type) {
	case []any:
		return t, true
	case []Record:
		out := make([]any, len(t))
		for i := range t {
			out[i] = t[i]
		}
		return out, true
	case []Union:
		out := make([]any, len(t))
		for i := range t {
			out[i] = t[i]
		}
		return out, true
	}
	return nil, false
}
