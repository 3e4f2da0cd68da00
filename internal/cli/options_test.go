package cli

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	relay "github.com/wesleyorama2/relay/http"
)

func TestParseQuery(t *testing.T) {
	params, err := parseQuery([]string{"a=1", "b=x=y", "a=2", "a=3", "empty="})
	require.NoError(t, err)

	assert.Equal(t, []string{"a", "b", "empty"}, params.Keys())
	a, _ := params.Get("a")
	assert.Equal(t, []any{"1", "2", "3"}, a)
	b, _ := params.Get("b")
	assert.Equal(t, "x=y", b)

	_, err = parseQuery([]string{"novalue"})
	assert.Error(t, err)
	_, err = parseQuery([]string{"=v"})
	assert.Error(t, err)

	params, err = parseQuery(nil)
	require.NoError(t, err)
	assert.Nil(t, params)
}

func TestParseHeader(t *testing.T) {
	key, value, ok := parseHeader("Authorization:  Bearer a:b ")
	assert.True(t, ok)
	assert.Equal(t, "Authorization", key)
	assert.Equal(t, "Bearer a:b", value)

	_, _, ok = parseHeader("no-colon")
	assert.False(t, ok)
	_, _, ok = parseHeader(": value")
	assert.False(t, ok)
}

func TestParseExtract(t *testing.T) {
	paths, err := parseExtract([]string{"id=$.user.id", "name=user.name"})
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"id": "$.user.id", "name": "user.name"}, paths)

	paths, err = parseExtract(nil)
	require.NoError(t, err)
	assert.Nil(t, paths)

	_, err = parseExtract([]string{"id"})
	assert.Error(t, err)
}

func TestApplyFlags(t *testing.T) {
	o := &options{
		headers:  []string{"X-A: 1", "x-a: 2"},
		query:    []string{"q=go"},
		timeout:  -1,
		jsonData: `{"a":1}`,
	}
	call := &relay.RequestConfig{Params: relay.Pairs("page", 2)}
	require.NoError(t, o.applyFlags(call))

	assert.Equal(t, map[string]string{"x-a": "2"}, call.Headers)
	assert.Equal(t, []string{"page", "q"}, call.Params.Keys())
	assert.Equal(t, int64(-1), int64(call.Timeout))
	assert.Equal(t, json.RawMessage(`{"a":1}`), call.Body)

	bad := &options{jsonData: "{"}
	assert.ErrorContains(t, bad.applyFlags(&relay.RequestConfig{}), "not valid JSON")

	badHeader := &options{headers: []string{"broken"}}
	assert.ErrorContains(t, badHeader.applyFlags(&relay.RequestConfig{}), "invalid header")
}
