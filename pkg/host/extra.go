package host

import (
	"bytes"
	"encoding/json"
	"reflect"
	"sort"
	"strings"
	"sync"
)

// Extra holds the members of a JSON object that its Go type does not model.
// Types that carry an Extra write those members back unchanged, so loading
// and saving a document never drops host data such as blend modes,
// gradient stops or layout properties.
type Extra map[string]json.RawMessage

// Clone returns a deep copy of e. A nil Extra stays nil.
func (e Extra) Clone() Extra {
	if e == nil {
		return nil
	}
	out := make(Extra, len(e))
	for k, v := range e {
		out[k] = append(json.RawMessage(nil), v...)
	}
	return out
}

// DecodeObject decodes data into v, a pointer to a struct, and returns the
// object members no field of v claims. Field names match case-insensitively,
// as they do in encoding/json.
func DecodeObject(data []byte, v any) (Extra, error) {
	if err := json.Unmarshal(data, v); err != nil {
		return nil, err
	}
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, err
	}

	known := fieldKeys(reflect.TypeOf(v).Elem())
	for k := range raw {
		if known[strings.ToLower(k)] {
			delete(raw, k)
		}
	}
	if len(raw) == 0 {
		return nil, nil
	}
	return Extra(raw), nil
}

// EncodeObject encodes v, a struct, followed by the members of extra in key
// order. Members that collide with a field of v are skipped.
func EncodeObject(v any, extra Extra) ([]byte, error) {
	data, err := json.Marshal(v)
	if err != nil || len(extra) == 0 {
		return data, err
	}

	known := fieldKeys(reflect.TypeOf(v))
	keys := make([]string, 0, len(extra))
	for k := range extra {
		if !known[strings.ToLower(k)] {
			keys = append(keys, k)
		}
	}
	if len(keys) == 0 {
		return data, nil
	}
	sort.Strings(keys)

	var buf bytes.Buffer
	buf.Write(data[:len(data)-1])
	first := len(data) == 2 // "{}"
	for _, k := range keys {
		if !first {
			buf.WriteByte(',')
		}
		first = false
		name, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		buf.Write(name)
		buf.WriteByte(':')
		buf.Write(extra[k])
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

var fieldKeyCache sync.Map // reflect.Type -> map[string]bool

// fieldKeys returns the lower-cased JSON member names of struct type t.
func fieldKeys(t reflect.Type) map[string]bool {
	if cached, ok := fieldKeyCache.Load(t); ok {
		return cached.(map[string]bool)
	}

	keys := make(map[string]bool, t.NumField())
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if !f.IsExported() {
			continue
		}
		tag := f.Tag.Get("json")
		if tag == "-" {
			continue
		}
		name, _, _ := strings.Cut(tag, ",")
		if name == "" {
			name = f.Name
		}
		keys[strings.ToLower(name)] = true
	}

	fieldKeyCache.Store(t, keys)
	return keys
}
