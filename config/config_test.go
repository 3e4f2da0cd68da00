package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleYAML = `
baseUrl: https://api.test
timeout: 5s
headers:
  Accept: application/json
  X-Tenant: "{{tenant}}"
params:
  z: 1
  a: [1, 2]
environments:
  staging:
    baseUrl: https://{{host}}
    headers:
      accept: text/plain
    variables:
      host: staging.api.test
      tenant: acme
      id: "42"
requests:
  getUser:
    url: /users/{{id}}
    method: get
    params:
      expand: profile
      tenant: "{{tenant}}"
    timeout: "off"
  createUser:
    url: /users
    method: POST
    body:
      name: "{{tenant}}-user"
      tags: ["{{id}}", x]
    schema: user
schemas:
  user:
    type: object
    required: [id]
signing:
  secretEnv: RELAY_TEST_SECRET
rateLimit:
  rps: 5
  burst: 2
`

func TestParse_YAML(t *testing.T) {
	file, err := Parse([]byte(sampleYAML), "relay.yaml")
	require.NoError(t, err)

	assert.Equal(t, "https://api.test", file.BaseURL)
	assert.Equal(t, []string{"z", "a"}, file.Params.Keys())
	assert.Equal(t, []string{"createUser", "getUser"}, file.RequestNames())
	assert.Equal(t, 5.0, file.RateLimit.RPS)
	assert.Equal(t, 2, file.RateLimit.Burst)
	assert.Empty(t, Validate(file))
}

func TestParse_JSON(t *testing.T) {
	data := `{"baseUrl":"https://j.test","params":{"b":1,"a":2},"requests":{"ping":{"url":"/ping"}}}`
	file, err := Parse([]byte(data), "relay.json")
	require.NoError(t, err)

	assert.Equal(t, "https://j.test", file.BaseURL)
	assert.Equal(t, []string{"b", "a"}, file.Params.Keys())
	assert.Equal(t, "/ping", file.Requests["ping"].URL)
}

func TestParse_Invalid(t *testing.T) {
	_, err := Parse([]byte("{"), "bad.json")
	assert.ErrorContains(t, err, "failed to parse JSON config")

	_, err = Parse([]byte("a: [\n"), "bad.yaml")
	assert.ErrorContains(t, err, "failed to parse YAML config")
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "relay.yml")
	require.NoError(t, os.WriteFile(path, []byte(sampleYAML), 0o644))

	file, err := Load(path)
	require.NoError(t, err)
	assert.Len(t, file.Requests, 2)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorContains(t, err, "failed to read config file")
}

func TestParseDurationString(t *testing.T) {
	tests := []struct {
		in      string
		want    time.Duration
		wantErr bool
	}{
		{"", 0, false},
		{"500ms", 500 * time.Millisecond, false},
		{"1h30m", 90 * time.Minute, false},
		{"30", 30 * time.Second, false},
		{"off", -1, false},
		{"None", -1, false},
		{"soon", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseDurationString(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFile_Defaults(t *testing.T) {
	file, err := Parse([]byte(sampleYAML), "relay.yaml")
	require.NoError(t, err)

	base, err := file.Defaults("")
	require.NoError(t, err)
	assert.Equal(t, "https://api.test", base.BaseURL)
	assert.Equal(t, 5*time.Second, base.Timeout)
	assert.Equal(t, "{{tenant}}", base.Header("X-Tenant"))

	staging, err := file.Defaults("staging")
	require.NoError(t, err)
	assert.Equal(t, "https://staging.api.test", staging.BaseURL)
	assert.Equal(t, "text/plain", staging.Header("Accept"))
	assert.Equal(t, "acme", staging.Header("X-Tenant"))
	assert.Len(t, staging.Headers, 2)

	_, err = file.Defaults("prod")
	assert.ErrorContains(t, err, "environment not found: prod")
}

func TestFile_Request(t *testing.T) {
	file, err := Parse([]byte(sampleYAML), "relay.yaml")
	require.NoError(t, err)

	get, err := file.Request("getUser", "staging")
	require.NoError(t, err)
	assert.Equal(t, "/users/42", get.URL)
	assert.Equal(t, "GET", get.Method)
	assert.Equal(t, time.Duration(-1), get.Timeout)
	tenant, _ := get.Params.Get("tenant")
	assert.Equal(t, "acme", tenant)
	assert.Equal(t, []string{"expand", "tenant"}, get.Params.Keys())

	create, err := file.Request("createUser", "staging")
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"name": "acme-user", "tags": []any{"42", "x"}}, create.Body)

	raw, err := file.Request("createUser", "")
	require.NoError(t, err)
	assert.Equal(t, "{{tenant}}-user", raw.Body.(map[string]any)["name"])

	_, err = file.Request("nope", "")
	assert.ErrorContains(t, err, "request not found: nope")
}

func TestFile_Schema(t *testing.T) {
	file, err := Parse([]byte(sampleYAML), "relay.yaml")
	require.NoError(t, err)

	data, err := file.Schema("user")
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"object","required":["id"]}`, string(data))

	_, err = file.Schema("order")
	assert.Error(t, err)
}

func TestSigning_Key(t *testing.T) {
	t.Setenv("RELAY_TEST_SECRET", "from-env")

	assert.Equal(t, "inline", (&Signing{Secret: "inline", SecretEnv: "RELAY_TEST_SECRET"}).Key())
	assert.Equal(t, "from-env", (&Signing{SecretEnv: "RELAY_TEST_SECRET"}).Key())
	assert.Equal(t, "", (*Signing)(nil).Key())
}

func TestResolveVariables(t *testing.T) {
	vars := map[string]string{"a": "1", "b": "2"}
	assert.Equal(t, "1-2-{{c}}", ResolveVariables("{{a}}-{{b}}-{{c}}", vars))
	assert.Equal(t, "plain", ResolveVariables("plain", vars))
	assert.Equal(t, "{{a}}", ResolveVariables("{{a}}", nil))
}
