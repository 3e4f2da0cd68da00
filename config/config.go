package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/wesleyorama2/relay/internal/core"
	"github.com/wesleyorama2/relay/internal/urlbuild"
)

// File represents the top-level configuration file structure.
type File struct {
	// BaseURL is prepended to relative request URLs
	BaseURL string `json:"baseUrl,omitempty" yaml:"baseUrl,omitempty"`

	// Timeout is the default per-request timeout ("5s", "500ms" or "30")
	Timeout string `json:"timeout,omitempty" yaml:"timeout,omitempty"`

	// Headers are sent with every request
	Headers map[string]string `json:"headers,omitempty" yaml:"headers,omitempty"`

	// Params are appended to every request's query string
	Params urlbuild.Params `json:"params,omitempty" yaml:"params,omitempty"`

	// Environments override the defaults per target
	Environments map[string]Environment `json:"environments,omitempty" yaml:"environments,omitempty"`

	// Requests defines named request templates
	Requests map[string]Request `json:"requests,omitempty" yaml:"requests,omitempty"`

	// Schemas defines JSON schemas for response validation
	Schemas map[string]any `json:"schemas,omitempty" yaml:"schemas,omitempty"`

	Signing   *Signing   `json:"signing,omitempty" yaml:"signing,omitempty"`
	RateLimit *RateLimit `json:"rateLimit,omitempty" yaml:"rateLimit,omitempty"`
}

// Environment represents an environment with base URL, headers and variables.
type Environment struct {
	BaseURL string            `json:"baseUrl,omitempty" yaml:"baseUrl,omitempty"`
	Headers map[string]string `json:"headers,omitempty" yaml:"headers,omitempty"`
	Vars    map[string]string `json:"variables,omitempty" yaml:"variables,omitempty"`
}

// Request represents a request template. String fields may contain
// {{variables}}.
type Request struct {
	URL     string            `json:"url" yaml:"url"`
	Method  string            `json:"method,omitempty" yaml:"method,omitempty"`
	Headers map[string]string `json:"headers,omitempty" yaml:"headers,omitempty"`
	Params  urlbuild.Params   `json:"params,omitempty" yaml:"params,omitempty"`
	Body    any               `json:"body,omitempty" yaml:"body,omitempty"`
	Timeout string            `json:"timeout,omitempty" yaml:"timeout,omitempty"`

	// Extract maps names to JSON paths read from the response
	Extract map[string]string `json:"extract,omitempty" yaml:"extract,omitempty"`

	// Schema names an entry of File.Schemas the response must satisfy
	Schema string `json:"schema,omitempty" yaml:"schema,omitempty"`
}

// Signing configures the request signer plugin.
type Signing struct {
	// Secret is the HMAC key; SecretEnv names an environment variable holding it
	Secret    string `json:"secret,omitempty" yaml:"secret,omitempty"`
	SecretEnv string `json:"secretEnv,omitempty" yaml:"secretEnv,omitempty"`

	// Header defaults to X-Signature
	Header string `json:"header,omitempty" yaml:"header,omitempty"`
}

// Key returns the signing secret, reading SecretEnv when Secret is empty.
func (s *Signing) Key() string {
	if s == nil {
		return ""
	}
	if s.Secret != "" {
		return s.Secret
	}
	if s.SecretEnv != "" {
		return os.Getenv(s.SecretEnv)
	}
	return ""
}

// RateLimit configures the client-side throttle plugin.
type RateLimit struct {
	RPS   float64 `json:"rps" yaml:"rps"`
	Burst int     `json:"burst,omitempty" yaml:"burst,omitempty"`
}

// Load loads a configuration file.
//
// The file format is determined by extension:
//   - .yaml, .yml -> YAML
//   - .json -> JSON
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	return Parse(data, path)
}

// Parse parses configuration data. The format comes from the extension of
// path and defaults to YAML.
func Parse(data []byte, path string) (*File, error) {
	var file File

	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".json":
		if err := json.Unmarshal(data, &file); err != nil {
			return nil, fmt.Errorf("failed to parse JSON config: %w", err)
		}
	case ".yaml", ".yml", "":
		if err := yaml.Unmarshal(data, &file); err != nil {
			return nil, fmt.Errorf("failed to parse YAML config: %w", err)
		}
	default:
		if err := yaml.Unmarshal(data, &file); err != nil {
			return nil, fmt.Errorf("failed to parse config (unknown format %s): %w", ext, err)
		}
	}

	return &file, nil
}

// ParseDurationString parses a duration string.
//
// Supported formats:
//   - Standard Go duration: "30s", "2m", "1h30m", "500ms"
//   - Seconds as integer: "30" (treated as 30 seconds)
//   - "off" or "none": timer disabled (a negative duration)
func ParseDurationString(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil
	}
	switch strings.ToLower(s) {
	case "off", "none":
		return -1, nil
	}

	d, err := time.ParseDuration(s)
	if err == nil {
		return d, nil
	}

	var seconds int
	if _, err := fmt.Sscanf(s, "%d", &seconds); err == nil {
		return time.Duration(seconds) * time.Second, nil
	}

	return 0, fmt.Errorf("invalid duration format: %s", s)
}

// Defaults returns the client defaults, with env's overrides applied when
// env is not empty.
func (f *File) Defaults(env string) (*core.RequestConfig, error) {
	timeout, err := ParseDurationString(f.Timeout)
	if err != nil {
		return nil, fmt.Errorf("timeout: %w", err)
	}

	cfg := &core.RequestConfig{
		BaseURL: f.BaseURL,
		Headers: f.Headers,
		Params:  f.Params,
		Timeout: timeout,
	}
	if env == "" {
		return cfg.Clone(), nil
	}

	e, ok := f.Environments[env]
	if !ok {
		return nil, fmt.Errorf("environment not found: %s", env)
	}
	overlay := &core.RequestConfig{
		BaseURL: ResolveVariables(e.BaseURL, e.Vars),
		Headers: resolveHeaders(e.Headers, e.Vars),
	}
	cfg.Headers = resolveHeaders(cfg.Headers, e.Vars)
	return core.Merge(cfg, overlay), nil
}

// Request returns the named template as a per-call config, with variables
// from env resolved.
func (f *File) Request(name, env string) (*core.RequestConfig, error) {
	req, ok := f.Requests[name]
	if !ok {
		return nil, fmt.Errorf("request not found: %s", name)
	}

	var vars map[string]string
	if env != "" {
		e, ok := f.Environments[env]
		if !ok {
			return nil, fmt.Errorf("environment not found: %s", env)
		}
		vars = e.Vars
	}

	timeout, err := ParseDurationString(req.Timeout)
	if err != nil {
		return nil, fmt.Errorf("request %s: timeout: %w", name, err)
	}

	return &core.RequestConfig{
		URL:     ResolveVariables(req.URL, vars),
		Method:  strings.ToUpper(req.Method),
		Headers: resolveHeaders(req.Headers, vars),
		Params:  resolveParams(req.Params, vars),
		Body:    resolveValue(req.Body, vars),
		Timeout: timeout,
	}, nil
}

// Schema returns the named schema encoded as JSON.
func (f *File) Schema(name string) ([]byte, error) {
	schema, ok := f.Schemas[name]
	if !ok {
		return nil, fmt.Errorf("schema not found: %s", name)
	}
	data, err := json.Marshal(schema)
	if err != nil {
		return nil, fmt.Errorf("schema %s: %w", name, err)
	}
	return data, nil
}

// RequestNames returns the request template names in sorted order.
func (f *File) RequestNames() []string {
	names := make([]string, 0, len(f.Requests))
	for name := range f.Requests {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ResolveVariables replaces {{name}} placeholders with values from vars.
// Unresolved variables are left as-is.
func ResolveVariables(input string, vars map[string]string) string {
	if len(vars) == 0 || !strings.Contains(input, "{{") {
		return input
	}
	result := input
	for key, value := range vars {
		result = strings.ReplaceAll(result, "{{"+key+"}}", value)
	}
	return result
}

func resolveHeaders(headers, vars map[string]string) map[string]string {
	if headers == nil {
		return nil
	}
	out := make(map[string]string, len(headers))
	for k, v := range headers {
		out[k] = ResolveVariables(v, vars)
	}
	return out
}

func resolveParams(params urlbuild.Params, vars map[string]string) urlbuild.Params {
	if params == nil {
		return nil
	}
	out := make(urlbuild.Params, len(params))
	for i, p := range params {
		out[i] = urlbuild.Param{Key: p.Key, Value: resolveValue(p.Value, vars)}
	}
	return out
}

// resolveValue walks decoded YAML/JSON values and resolves every string.
func resolveValue(v any, vars map[string]string) any {
	switch val := v.(type) {
	case string:
		return ResolveVariables(val, vars)
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, item := range val {
			out[k] = resolveValue(item, vars)
		}
		return out
	case []any:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = resolveValue(item, vars)
		}
		return out
	default:
		return v
	}
}
