// Copyright (c) 2025, Wesley Brown
// All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package schema

import (
	"context"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	relay "github.com/wesleyorama2/relay/http"
)

const userSchema = `{
	"type": "object",
	"required": ["id", "name"],
	"properties": {
		"id": { "type": "integer" },
		"name": { "type": "string" }
	}
}`

func TestValidator(t *testing.T) {
	v := MustCompile(userSchema)

	tests := []struct {
		name      string
		json      string
		wantValid bool
		contains  string
	}{
		{"valid", `{"id": 1, "name": "Ada"}`, true, ""},
		{"missing property", `{"id": 1}`, false, "missing properties"},
		{"wrong type", `{"id": "one", "name": "Ada"}`, false, "/id"},
		{"not json", `<html>`, false, "invalid JSON"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.Validate([]byte(tt.json))
			if tt.wantValid {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.IsType(t, ValidationErrors{}, err)
			assert.Contains(t, err.Error(), tt.contains)
		})
	}
}

func TestCompile_InvalidSchema(t *testing.T) {
	_, err := Compile([]byte(`{"$ref": "#/definitions/missing"}`))
	assert.ErrorContains(t, err, "invalid schema")

	assert.Panics(t, func() { MustCompile("{") })
}

func TestValidationErrors_Error(t *testing.T) {
	var empty ValidationErrors
	assert.Equal(t, "", empty.Error())

	ve := ValidationErrors{assert.AnError, assert.AnError}
	assert.Equal(t, assert.AnError.Error()+"; "+assert.AnError.Error(), ve.Error())
	assert.Equal(t, CodeSchemaMismatch, ve.Code())
}

func TestPlugin(t *testing.T) {
	body := `{"id": 1, "name": "Ada"}`
	client := relay.Create(nil, relay.WithTransport(relay.TransportFunc(
		func(context.Context, *relay.TransportRequest) (*relay.TransportResponse, error) {
			return &relay.TransportResponse{Status: 200, Body: io.NopCloser(strings.NewReader(body))}, nil
		})))
	client.Use(Plugin(MustCompile(userSchema)))

	resp, err := client.Get(context.Background(), "https://api.test/users/1", nil)
	require.NoError(t, err)
	assert.Equal(t, "Ada", resp.Data.(map[string]any)["name"])

	body = `{"id": 1}`
	_, err = client.Get(context.Background(), "https://api.test/users/1", nil)
	require.Error(t, err)

	e, ok := relay.AsError(err)
	require.True(t, ok)
	assert.Equal(t, relay.KindInterceptor, e.Kind)
	assert.Equal(t, CodeSchemaMismatch, e.Code)
	var ve ValidationErrors
	assert.ErrorAs(t, err, &ve)
}
