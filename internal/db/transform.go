package db

import (
	"encoding/json"
	"fmt"
	"reflect"
	"sort"
	"strings"
	"time"
)

type transformKind int

const (
	transformServerTimestamp transformKind = iota + 1
	transformArrayUnion
)

// FieldTransform is a write-time sentinel resolved by the store.
type FieldTransform struct {
	kind   transformKind
	values []any
}

// ServerTimestamp is replaced with the store's clock when the write is applied.
var ServerTimestamp = &FieldTransform{kind: transformServerTimestamp}

// ArrayUnion appends the values to an array field, skipping ones already present.
func ArrayUnion(values ...any) *FieldTransform {
	return &FieldTransform{kind: transformArrayUnion, values: values}
}

// applyWrite merges partial into a copy of current. A nil current starts from
// an empty document.
func applyWrite(current, partial map[string]any, now time.Time) (map[string]any, error) {
	result, err := normalizeMap(current)
	if err != nil {
		return nil, err
	}
	if result == nil {
		result = map[string]any{}
	}

	keys := make([]string, 0, len(partial))
	for k := range partial {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, key := range keys {
		path := strings.Split(key, ".")
		for _, segment := range path {
			if segment == "" {
				return nil, fmt.Errorf("invalid field path %q", key)
			}
		}
		value, err := resolveValue(getPath(result, path), partial[key], now)
		if err != nil {
			return nil, fmt.Errorf("field %s: %w", key, err)
		}
		if err := setPath(result, path, value); err != nil {
			return nil, fmt.Errorf("field %s: %w", key, err)
		}
	}
	return result, nil
}

func resolveValue(existing, value any, now time.Time) (any, error) {
	t, ok := value.(*FieldTransform)
	if !ok {
		return normalizeValue(value)
	}
	switch t.kind {
	case transformServerTimestamp:
		return normalizeValue(now.UTC())
	case transformArrayUnion:
		var arr []any
		if existing != nil {
			existingArr, ok := existing.([]any)
			if !ok {
				return nil, fmt.Errorf("array union on non-array value")
			}
			arr = append(arr, existingArr...)
		}
		for _, v := range t.values {
			nv, err := normalizeValue(v)
			if err != nil {
				return nil, err
			}
			if !containsValue(arr, nv) {
				arr = append(arr, nv)
			}
		}
		if arr == nil {
			arr = []any{}
		}
		return arr, nil
	default:
		return nil, fmt.Errorf("unknown field transform")
	}
}

// normalizeValue converts v into the generic form produced by decoding JSON.
func normalizeValue(v any) (any, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal value: %w", err)
	}
	var out any
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("failed to unmarshal value: %w", err)
	}
	return out, nil
}

func normalizeMap(m map[string]any) (map[string]any, error) {
	if m == nil {
		return nil, nil
	}
	raw, err := json.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal document: %w", err)
	}
	var out map[string]any
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("failed to unmarshal document: %w", err)
	}
	return out, nil
}

func getPath(m map[string]any, path []string) any {
	var cur any = m
	for _, segment := range path {
		obj, ok := cur.(map[string]any)
		if !ok {
			return nil
		}
		cur = obj[segment]
	}
	return cur
}

func setPath(m map[string]any, path []string, value any) error {
	obj := m
	for _, segment := range path[:len(path)-1] {
		next, exists := obj[segment]
		if !exists || next == nil {
			child := map[string]any{}
			obj[segment] = child
			obj = child
			continue
		}
		child, ok := next.(map[string]any)
		if !ok {
			return fmt.Errorf("%s is not an object", segment)
		}
		obj = child
	}
	obj[path[len(path)-1]] = value
	return nil
}

func containsValue(arr []any, v any) bool {
	for _, item := range arr {
		if reflect.DeepEqual(item, v) {
			return true
		}
	}
	return false
}

// matches reports whether data satisfies every predicate.
func matches(data map[string]any, where []Predicate) (bool, error) {
	for _, p := range where {
		want, err := normalizeValue(p.Value)
		if err != nil {
			return false, err
		}
		got := getPath(data, strings.Split(p.Field, "."))
		if !reflect.DeepEqual(got, want) {
			return false, nil
		}
	}
	return true, nil
}

// orderAndLimit sorts docs by opts.OrderBy and truncates to opts.Limit.
// Timestamp strings compare chronologically.
func orderAndLimit(docs []Document, opts QueryOptions) []Document {
	if opts.OrderBy != "" {
		path := strings.Split(opts.OrderBy, ".")
		sort.SliceStable(docs, func(i, j int) bool {
			c := compareValues(getPath(docs[i].Data, path), getPath(docs[j].Data, path))
			if opts.Desc {
				return c > 0
			}
			return c < 0
		})
	}
	if opts.Limit > 0 && len(docs) > opts.Limit {
		docs = docs[:opts.Limit]
	}
	return docs
}

func compareValues(a, b any) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return -1
	case b == nil:
		return 1
	}
	switch av := a.(type) {
	case string:
		bv, ok := b.(string)
		if !ok {
			return 0
		}
		at, aErr := time.Parse(time.RFC3339Nano, av)
		bt, bErr := time.Parse(time.RFC3339Nano, bv)
		if aErr == nil && bErr == nil {
			return at.Compare(bt)
		}
		return strings.Compare(av, bv)
	case float64:
		bv, ok := b.(float64)
		if !ok {
			return 0
		}
		switch {
		case av < bv:
			return -1
		case av > bv:
			return 1
		}
		return 0
	case bool:
		bv, ok := b.(bool)
		if !ok || av == bv {
			return 0
		}
		if !av {
			return -1
		}
		return 1
	default:
		return 0
	}
}
