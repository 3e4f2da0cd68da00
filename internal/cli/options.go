package cli

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/wesleyorama2/relay/config"
	relay "github.com/wesleyorama2/relay/http"
	"github.com/wesleyorama2/relay/internal/output"
)

type options struct {
	file     *config.File
	defaults *relay.RequestConfig

	format  output.OutputFormat
	verbose bool
	noColor bool
	debug   bool

	headers     []string
	query       []string
	timeout     time.Duration
	data        string
	jsonData    string
	extract     []string
	schemaFile  string
	requestID   bool
	rate        float64
	repeat      int
	concurrency int
	insecure    bool
}

func addRequestFlags(cmd *cobra.Command) {
	flags := cmd.Flags()
	flags.StringArrayP("header", "H", []string{}, "HTTP headers to include (can be used multiple times)")
	flags.StringArrayP("query", "q", []string{}, "Query parameter key=value (can be used multiple times)")
	flags.DurationP("timeout", "t", 0, "Request timeout (0 keeps the configured default, negative disables)")
	flags.StringArray("extract", []string{}, "Extract name=path from the response body (can be used multiple times)")
	flags.String("schema", "", "Validate the response body against a JSON Schema file")
	flags.Bool("request-id", false, "Add an X-Request-ID header")
	flags.Float64("rate", 0, "Limit requests per second")
	flags.Int("repeat", 1, "Send the request this many times and print a latency summary")
	flags.Int("concurrency", 1, "Concurrent workers for --repeat")
	flags.BoolP("insecure", "k", false, "Skip TLS certificate verification")
}

func readOptions(cmd *cobra.Command) (*options, error) {
	flags := cmd.Flags()
	o := &options{}

	formatName, _ := flags.GetString("output")
	format, err := output.ParseFormat(formatName)
	if err != nil {
		return nil, err
	}
	o.format = format
	o.verbose, _ = flags.GetBool("verbose")
	o.noColor, _ = flags.GetBool("no-color")
	o.debug, _ = flags.GetBool("debug")
	if !output.ShouldColor(cmd.OutOrStdout(), o.noColor) {
		o.noColor = true
	}

	o.headers, _ = flags.GetStringArray("header")
	o.query, _ = flags.GetStringArray("query")
	o.timeout, _ = flags.GetDuration("timeout")
	o.extract, _ = flags.GetStringArray("extract")
	o.schemaFile, _ = flags.GetString("schema")
	o.requestID, _ = flags.GetBool("request-id")
	o.rate, _ = flags.GetFloat64("rate")
	o.repeat, _ = flags.GetInt("repeat")
	o.concurrency, _ = flags.GetInt("concurrency")
	o.insecure, _ = flags.GetBool("insecure")
	if flags.Lookup("data") != nil {
		o.data, _ = flags.GetString("data")
		o.jsonData, _ = flags.GetString("json")
	}

	if o.repeat < 1 {
		return nil, fmt.Errorf("--repeat must be at least 1")
	}
	if o.concurrency < 1 {
		return nil, fmt.Errorf("--concurrency must be at least 1")
	}

	configPath, _ := flags.GetString("config")
	env, _ := flags.GetString("env")
	if configPath == "" {
		if env != "" {
			return nil, fmt.Errorf("--env requires --config")
		}
		o.defaults = &relay.RequestConfig{}
		return o, nil
	}

	file, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	if errs := config.Validate(file); len(errs) > 0 {
		var sb strings.Builder
		sb.WriteString("configuration validation errors:")
		for _, e := range errs {
			sb.WriteString("\n  - ")
			sb.WriteString(e.Error())
		}
		return nil, fmt.Errorf("%s", sb.String())
	}
	defaults, err := file.Defaults(env)
	if err != nil {
		return nil, err
	}
	o.file = file
	o.defaults = defaults
	return o, nil
}

// callConfig builds the per-call config from the command line.
func (o *options) callConfig(method, rawURL string) (*relay.RequestConfig, error) {
	baseURL, path := parseURL(rawURL)
	call := &relay.RequestConfig{
		BaseURL: baseURL,
		URL:     path,
		Method:  method,
	}
	if err := o.applyFlags(call); err != nil {
		return nil, err
	}
	return call, nil
}

// applyFlags layers headers, query, timeout and body flags onto call.
func (o *options) applyFlags(call *relay.RequestConfig) error {
	for _, header := range o.headers {
		key, value, ok := parseHeader(header)
		if !ok {
			return fmt.Errorf("invalid header %q (want Name: value)", header)
		}
		call.SetHeader(key, value)
	}

	params, err := parseQuery(o.query)
	if err != nil {
		return err
	}
	if params != nil {
		call.Params = call.Params.Merge(params)
	}

	if o.timeout != 0 {
		call.Timeout = o.timeout
	}

	switch {
	case o.data != "":
		call.Body = o.data
	case o.jsonData != "":
		if !json.Valid([]byte(o.jsonData)) {
			return fmt.Errorf("--json is not valid JSON")
		}
		call.Body = json.RawMessage(o.jsonData)
	}
	return nil
}

func parseHeader(header string) (string, string, bool) {
	parts := strings.SplitN(header, ":", 2)
	if len(parts) != 2 || strings.TrimSpace(parts[0]) == "" {
		return "", "", false
	}
	return strings.TrimSpace(parts[0]), strings.TrimSpace(parts[1]), true
}

// parseQuery turns key=value pairs into Params. Repeated keys collect into
// a list, which the URL builder expands back into repeated pairs.
func parseQuery(pairs []string) (relay.Params, error) {
	var params relay.Params
	for _, pair := range pairs {
		key, value, ok := strings.Cut(pair, "=")
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid query parameter %q (want key=value)", pair)
		}
		switch existing, _ := params.Get(key); v := existing.(type) {
		case nil:
			params.Set(key, value)
		case []any:
			params.Set(key, append(v, value))
		default:
			params.Set(key, []any{v, value})
		}
	}
	return params, nil
}

func parseExtract(args []string) (map[string]string, error) {
	if len(args) == 0 {
		return nil, nil
	}
	paths := make(map[string]string, len(args))
	for _, arg := range args {
		name, path, ok := strings.Cut(arg, "=")
		if !ok || name == "" || path == "" {
			return nil, fmt.Errorf("invalid extract %q (want name=path)", arg)
		}
		paths[name] = path
	}
	return paths, nil
}
