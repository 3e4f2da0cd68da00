// Copyright (c) 2025, Wesley Brown
// All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package urlbuild composes a base URL, a path, and ordered query
// parameters into a single request target.
package urlbuild

import (
	"encoding/json"
	"fmt"
	"reflect"
	"strconv"
	"strings"

	"github.com/wesleyorama2/relay/internal/merge"
)

// ParseParams encodes params as a query string without the leading '?'.
//
// nil values are omitted, slices expand to one key=value pair per element,
// structured values (maps, structs) are JSON-encoded, and scalars are
// stringified. Keys and values are percent-encoded component-wise.
func ParseParams(params Params) string {
	var parts []string
	for _, param := range params {
		if param.Value == nil {
			continue
		}
		key := Escape(param.Key)
		if merge.IsSlice(param.Value) {
			for _, elem := range merge.Elements(param.Value) {
				if elem == nil {
					continue
				}
				parts = append(parts, key+"="+Escape(stringify(elem)))
			}
			continue
		}
		parts = append(parts, key+"="+Escape(stringify(param.Value)))
	}
	return strings.Join(parts, "&")
}

// BuildFullURL joins baseURL and path with exactly one slash and appends the
// encoded params. An absolute path (one carrying its own scheme) ignores
// baseURL.
func BuildFullURL(baseURL, path string, params Params) string {
	var full string
	if IsAbsolute(path) {
		full = path
	} else {
		trimmed := strings.TrimLeft(path, "/")
		if baseURL != "" {
			full = strings.TrimRight(baseURL, "/") + "/" + trimmed
		} else {
			full = trimmed
		}
	}

	if qs := ParseParams(params); qs != "" {
		if strings.Contains(full, "?") {
			full += "&" + qs
		} else {
			full += "?" + qs
		}
	}
	return full
}

// IsAbsolute reports whether u starts with a scheme ("http://") or is
// protocol-relative ("//host").
func IsAbsolute(u string) bool {
	if strings.HasPrefix(u, "//") {
		return true
	}
	i := strings.Index(u, "://")
	if i <= 0 {
		return false
	}
	for j, c := range u[:i] {
		isAlpha := (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
		if j == 0 && !isAlpha {
			return false
		}
		if !isAlpha && !(c >= '0' && c <= '9') && c != '+' && c != '-' && c != '.' {
			return false
		}
	}
	return true
}

// Escape percent-encodes s, leaving only A-Z a-z 0-9 and -_.!~*'() intact.
// Spaces become %20.
func Escape(s string) string {
	const hex = "0123456789ABCDEF"
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		if unreserved(c) {
			b.WriteByte(c)
			continue
		}
		b.WriteByte('%')
		b.WriteByte(hex[c>>4])
		b.WriteByte(hex[c&15])
	}
	return b.String()
}

func unreserved(c byte) bool {
	switch {
	case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9':
		return true
	}
	return strings.IndexByte("-_.!~*'()", c) >= 0
}

func stringify(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case bool:
		return strconv.FormatBool(t)
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(t), 'f', -1, 32)
	case []byte:
		return string(t)
	case fmt.Stringer:
		return t.String()
	}

	switch reflect.Indirect(reflect.ValueOf(v)).Kind() {
	case reflect.Map, reflect.Struct:
		data, err := json.Marshal(v)
		if err == nil {
			return string(data)
		}
	}
	return fmt.Sprint(v)
}
