package models

import (
	"encoding/json"
	"reflect"
	"strings"
	"sync"
)

// Extra holds top-level keys a record does not declare, verbatim.
type Extra map[string]json.RawMessage

var knownKeysCache sync.Map // reflect.Type -> []string

// decodeWithExtra decodes data into v (a pointer to a struct whose custom
// unmarshaler has been stripped) and returns the undeclared keys.
func decodeWithExtra(data []byte, v any) (Extra, error) {
	if err := json.Unmarshal(data, v); err != nil {
		return nil, err
	}
	var all map[string]json.RawMessage
	if err := json.Unmarshal(data, &all); err != nil {
		return nil, err
	}
	known := knownKeys(reflect.TypeOf(v).Elem())
	for key := range all {
		if isKnownKey(known, key) {
			delete(all, key)
		}
	}
	if len(all) == 0 {
		return nil, nil
	}
	return Extra(all), nil
}

// encodeWithExtra merges extra into the encoding of v. Declared fields win.
func encodeWithExtra(v any, extra Extra) ([]byte, error) {
	known, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	if len(extra) == 0 {
		return known, nil
	}
	merged := make(map[string]json.RawMessage, len(extra))
	if err := json.Unmarshal(known, &merged); err != nil {
		return nil, err
	}
	for key, raw := range extra {
		if _, ok := merged[key]; !ok {
			merged[key] = raw
		}
	}
	return json.Marshal(merged)
}

// isKnownKey matches key the way encoding/json matches object keys to fields.
func isKnownKey(known []string, key string) bool {
	for _, name := range known {
		if strings.EqualFold(name, key) {
			return true
		}
	}
	return false
}

func knownKeys(t reflect.Type) []string {
	if cached, ok := knownKeysCache.Load(t); ok {
		return cached.([]string)
	}
	var keys []string
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		if !field.IsExported() {
			continue
		}
		tag := field.Tag.Get("json")
		if tag == "-" {
			continue
		}
		name, _, _ := strings.Cut(tag, ",")
		if name == "" {
			name = field.Name
		}
		keys = append(keys, name)
	}
	knownKeysCache.Store(t, keys)
	return keys
}
