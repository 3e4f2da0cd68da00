// Copyright (c) 2025, Wesley Brown
// All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package merge implements the value-level merge rules used to combine
// client defaults with per-call overrides.
//
// The rules mirror what callers expect from a deep merge of decoded JSON:
//   - a map[string]any on the right merges key by key with a map on the left
//   - a slice on the right replaces the left value with a shallow copy
//   - anything else on the right (including nil) overwrites the left value
//
// Inputs are never mutated. Results never alias maps or slices of the inputs.
package merge

import (
	"reflect"
	"strings"
)

// Deep merges src over dst and returns the result.
func Deep(dst, src any) any {
	srcMap, ok := src.(map[string]any)
	if !ok {
		return Clone(src)
	}

	dstMap, _ := dst.(map[string]any)
	out := make(map[string]any, len(dstMap)+len(srcMap))
	for k, v := range dstMap {
		out[k] = Clone(v)
	}
	for k, v := range srcMap {
		out[k] = Deep(out[k], v)
	}
	return out
}

// Clone copies maps recursively and slices shallowly. Scalars and other
// values are returned unchanged.
func Clone(v any) any {
	switch t := v.(type) {
	case nil:
		return nil
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, val := range t {
			out[k] = Clone(val)
		}
		return out
	case []any:
		if t == nil {
			return t
		}
		out := make([]any, len(t))
		copy(out, t)
		return out
	}

	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Slice && !rv.IsNil() && rv.Type().Elem().Kind() != reflect.Uint8 {
		out := reflect.MakeSlice(rv.Type(), rv.Len(), rv.Len())
		reflect.Copy(out, rv)
		return out.Interface()
	}
	return v
}

// IsSlice reports whether v is a non-byte slice or array value.
func IsSlice(v any) bool {
	if v == nil {
		return false
	}
	switch reflect.TypeOf(v).Kind() {
	case reflect.Slice:
		return reflect.TypeOf(v).Elem().Kind() != reflect.Uint8
	case reflect.Array:
		return true
	}
	return false
}

// Elements returns the elements of a slice or array value. It returns nil
// for anything else.
func Elements(v any) []any {
	if !IsSlice(v) {
		return nil
	}
	rv := reflect.ValueOf(v)
	out := make([]any, rv.Len())
	for i := range out {
		out[i] = rv.Index(i).Interface()
	}
	return out
}

// Headers merges src over dst. Keys are matched case-insensitively: a key
// in src replaces any key in dst that differs only by case.
func Headers(dst, src map[string]string) map[string]string {
	if dst == nil && src == nil {
		return nil
	}
	out := make(map[string]string, len(dst)+len(src))
	for k, v := range dst {
		out[k] = v
	}
	for k, v := range src {
		for existing := range out {
			if existing != k && strings.EqualFold(existing, k) {
				delete(out, existing)
			}
		}
		out[k] = v
	}
	return out
}
