// Copyright (c) 2025, Wesley Brown
// All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package urlbuild

import (
	"bytes"
	"encoding/json"
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/wesleyorama2/relay/internal/merge"
)

// Param is a single query parameter. Value may be nil, a scalar, a slice,
// or a structured value such as map[string]any.
type Param struct {
	Key   string
	Value any
}

// Params is an insertion-ordered set of query parameters. Keys are unique;
// setting an existing key replaces its value in place.
type Params []Param

// Pairs builds Params from alternating keys and values.
// It panics on an odd argument count or a non-string key.
func Pairs(kv ...any) Params {
	if len(kv)%2 != 0 {
		panic("urlbuild: Pairs requires an even number of arguments")
	}
	var p Params
	for i := 0; i < len(kv); i += 2 {
		key, ok := kv[i].(string)
		if !ok {
			panic(fmt.Sprintf("urlbuild: Pairs key %v is not a string", kv[i]))
		}
		p.Set(key, kv[i+1])
	}
	return p
}

func (p Params) index(key string) int {
	for i, param := range p {
		if param.Key == key {
			return i
		}
	}
	return -1
}

// Get returns the value stored under key.
func (p Params) Get(key string) (any, bool) {
	if i := p.index(key); i >= 0 {
		return p[i].Value, true
	}
	return nil, false
}

// Set stores value under key, keeping the key's original position if present.
func (p *Params) Set(key string, value any) {
	if i := p.index(key); i >= 0 {
		(*p)[i].Value = value
		return
	}
	*p = append(*p, Param{Key: key, Value: value})
}

// Del removes key.
func (p *Params) Del(key string) {
	if i := p.index(key); i >= 0 {
		*p = append((*p)[:i:i], (*p)[i+1:]...)
	}
}

// Len returns the number of parameters.
func (p Params) Len() int { return len(p) }

// Keys returns the keys in insertion order.
func (p Params) Keys() []string {
	keys := make([]string, len(p))
	for i, param := range p {
		keys[i] = param.Key
	}
	return keys
}

// Clone returns a deep copy of p.
func (p Params) Clone() Params {
	if p == nil {
		return nil
	}
	out := make(Params, len(p))
	for i, param := range p {
		out[i] = Param{Key: param.Key, Value: merge.Clone(param.Value)}
	}
	return out
}

// Merge returns p with o merged over it. Keys already in p keep their
// position; new keys are appended in o's order.
func (p Params) Merge(o Params) Params {
	out := p.Clone()
	for _, param := range o {
		current, _ := out.Get(param.Key)
		out.Set(param.Key, merge.Deep(current, param.Value))
	}
	return out
}

// MarshalJSON encodes p as a JSON object in insertion order.
func (p Params) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, param := range p {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(param.Key)
		if err != nil {
			return nil, err
		}
		val, err := json.Marshal(param.Value)
		if err != nil {
			return nil, fmt.Errorf("param %q: %w", param.Key, err)
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON decodes a JSON object preserving key order.
func (p *Params) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if tok == nil {
		*p = nil
		return nil
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("params must be a JSON object")
	}

	var out Params
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		key := tok.(string)
		var value any
		if err := dec.Decode(&value); err != nil {
			return fmt.Errorf("param %q: %w", key, err)
		}
		out.Set(key, value)
	}
	if _, err := dec.Token(); err != nil {
		return err
	}
	*p = out
	return nil
}

// UnmarshalYAML decodes a YAML mapping preserving key order.
func (p *Params) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("params must be a mapping, got line %d", node.Line)
	}

	var out Params
	for i := 0; i+1 < len(node.Content); i += 2 {
		var value any
		if err := node.Content[i+1].Decode(&value); err != nil {
			return fmt.Errorf("param %q: %w", node.Content[i].Value, err)
		}
		out.Set(node.Content[i].Value, value)
	}
	*p = out
	return nil
}
