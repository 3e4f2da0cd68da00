package output

import (
	"encoding/json"
	"fmt"
	"time"

	"gopkg.in/yaml.v3"

	relay "github.com/wesleyorama2/relay/http"
	"github.com/wesleyorama2/relay/plugins/metrics"
)

// OutputFormat represents the available output formats
type OutputFormat string

const (
	// FormatText is the default human-readable text format
	FormatText OutputFormat = "text"
	// FormatJSON outputs in JSON format
	FormatJSON OutputFormat = "json"
	// FormatYAML outputs in YAML format
	FormatYAML OutputFormat = "yaml"
)

// ParseFormat validates a --output value.
func ParseFormat(s string) (OutputFormat, error) {
	switch f := OutputFormat(s); f {
	case "":
		return FormatText, nil
	case FormatText, FormatJSON, FormatYAML:
		return f, nil
	}
	return "", fmt.Errorf("unknown output format %q (want text, json or yaml)", s)
}

// FormatProvider is an interface for different output formatters
type FormatProvider interface {
	FormatRequest(cfg *relay.RequestConfig) string
	FormatResponse(resp *relay.Response) string
	FormatError(err error) string
	FormatExtracted(values map[string]string) string
	FormatSummary(s metrics.Summary) string
}

// RequestData represents the structured data of a request
type RequestData struct {
	Method    string            `json:"method" yaml:"method"`
	URL       string            `json:"url" yaml:"url"`
	Headers   map[string]string `json:"headers,omitempty" yaml:"headers,omitempty"`
	Body      any               `json:"body,omitempty" yaml:"body,omitempty"`
	TimeoutMs int64             `json:"timeoutMs,omitempty" yaml:"timeoutMs,omitempty"`
	Timestamp string            `json:"timestamp" yaml:"timestamp"`
}

// TimingData represents detailed timing information for a request
type TimingData struct {
	DNSLookup       int64 `json:"dnsLookupMs,omitempty" yaml:"dnsLookupMs,omitempty"`
	TCPConnection   int64 `json:"tcpConnectionMs,omitempty" yaml:"tcpConnectionMs,omitempty"`
	TLSHandshake    int64 `json:"tlsHandshakeMs,omitempty" yaml:"tlsHandshakeMs,omitempty"`
	TimeToFirstByte int64 `json:"timeToFirstByteMs,omitempty" yaml:"timeToFirstByteMs,omitempty"`
	ContentTransfer int64 `json:"contentTransferMs,omitempty" yaml:"contentTransferMs,omitempty"`
	Total           int64 `json:"totalMs" yaml:"totalMs"`
}

// ResponseData represents the structured data of a response
type ResponseData struct {
	Status     int               `json:"status" yaml:"status"`
	StatusText string            `json:"statusText,omitempty" yaml:"statusText,omitempty"`
	Headers    map[string]string `json:"headers,omitempty" yaml:"headers,omitempty"`
	Data       any               `json:"data,omitempty" yaml:"data,omitempty"`
	Timing     TimingData        `json:"timing" yaml:"timing"`
	Timestamp  string            `json:"timestamp" yaml:"timestamp"`
}

// ErrorData represents the structured data of a failed call
type ErrorData struct {
	Kind      string        `json:"kind" yaml:"kind"`
	Code      string        `json:"code,omitempty" yaml:"code,omitempty"`
	Message   string        `json:"message" yaml:"message"`
	TimeoutMs int64         `json:"timeoutMs,omitempty" yaml:"timeoutMs,omitempty"`
	Response  *ResponseData `json:"response,omitempty" yaml:"response,omitempty"`
}

// SummaryData represents the aggregate of a repeated run
type SummaryData struct {
	Total         int64            `json:"total" yaml:"total"`
	Succeeded     int64            `json:"succeeded" yaml:"succeeded"`
	Failed        int64            `json:"failed" yaml:"failed"`
	SuccessRate   float64          `json:"successRate" yaml:"successRate"`
	Throughput    float64          `json:"throughputPerSec" yaml:"throughputPerSec"`
	LatencyMs     map[string]int64 `json:"latencyMs" yaml:"latencyMs"`
	FailureByKind map[string]int64 `json:"failuresByKind,omitempty" yaml:"failuresByKind,omitempty"`
}

func summaryData(s metrics.Summary) SummaryData {
	l := s.Latency
	return SummaryData{
		Total:       s.Total,
		Succeeded:   s.Succeeded,
		Failed:      s.Failed,
		SuccessRate: s.SuccessRate(),
		Throughput:  s.Throughput(),
		LatencyMs: map[string]int64{
			"min": l.Min.Milliseconds(),
			"p50": l.P50.Milliseconds(),
			"p90": l.P90.Milliseconds(),
			"p95": l.P95.Milliseconds(),
			"p99": l.P99.Milliseconds(),
			"max": l.Max.Milliseconds(),
		},
		FailureByKind: s.ByKind,
	}
}

func requestData(cfg *relay.RequestConfig) RequestData {
	data := RequestData{
		Method:    methodOf(cfg),
		URL:       relay.BuildURL(cfg),
		Headers:   cfg.Headers,
		Body:      cfg.Body,
		Timestamp: time.Now().Format(time.RFC3339),
	}
	if b, ok := cfg.Body.([]byte); ok {
		data.Body = string(b)
	}
	if cfg.Timeout > 0 {
		data.TimeoutMs = cfg.Timeout.Milliseconds()
	}
	return data
}

func responseData(resp *relay.Response, verbose bool) *ResponseData {
	t := resp.Timing
	data := &ResponseData{
		Status:     resp.Status,
		StatusText: resp.StatusText,
		Data:       resp.Data,
		Timing: TimingData{
			DNSLookup:       t.DNSLookupTime.Milliseconds(),
			TCPConnection:   t.TCPConnectTime.Milliseconds(),
			TLSHandshake:    t.TLSHandshakeTime.Milliseconds(),
			TimeToFirstByte: t.TimeToFirstByte.Milliseconds(),
			ContentTransfer: t.ContentTransferTime.Milliseconds(),
			Total:           t.TotalTime.Milliseconds(),
		},
		Timestamp: time.Now().Format(time.RFC3339),
	}
	if verbose {
		data.Headers = resp.Headers
	}
	return data
}

func errorData(err error, verbose bool) ErrorData {
	e, ok := relay.AsError(err)
	if !ok {
		return ErrorData{Kind: "unknown", Message: err.Error()}
	}
	data := ErrorData{
		Kind:      string(e.Kind),
		Code:      e.Code,
		Message:   e.Message,
		TimeoutMs: e.Timeout.Milliseconds(),
	}
	if e.Response != nil {
		data.Response = responseData(e.Response, verbose)
	}
	return data
}

// JSONFormatter formats output as JSON
type JSONFormatter struct {
	Verbose bool
	Pretty  bool
}

func (f *JSONFormatter) marshal(v any, what string) string {
	var output []byte
	var err error
	if f.Pretty {
		output, err = json.MarshalIndent(v, "", "  ")
	} else {
		output, err = json.Marshal(v)
	}
	if err != nil {
		return fmt.Sprintf(`{"error":"Failed to marshal %s: %s"}`, what, err)
	}
	return string(output) + "\n"
}

// FormatRequest formats a request as JSON
func (f *JSONFormatter) FormatRequest(cfg *relay.RequestConfig) string {
	return f.marshal(requestData(cfg), "request")
}

// FormatResponse formats a response as JSON
func (f *JSONFormatter) FormatResponse(resp *relay.Response) string {
	return f.marshal(responseData(resp, f.Verbose), "response")
}

// FormatError formats a failure as JSON
func (f *JSONFormatter) FormatError(err error) string {
	return f.marshal(map[string]any{"error": errorData(err, f.Verbose)}, "error")
}

// FormatExtracted formats extracted values as JSON
func (f *JSONFormatter) FormatExtracted(values map[string]string) string {
	if len(values) == 0 {
		return ""
	}
	return f.marshal(map[string]any{"extracted": values}, "extracted values")
}

// FormatSummary formats a repeated run as JSON
func (f *JSONFormatter) FormatSummary(s metrics.Summary) string {
	return f.marshal(map[string]any{"summary": summaryData(s)}, "summary")
}

// YAMLFormatter formats output as YAML
type YAMLFormatter struct {
	Verbose bool
}

func (f *YAMLFormatter) marshal(v any, what string) string {
	output, err := yaml.Marshal(v)
	if err != nil {
		return fmt.Sprintf("error: Failed to marshal %s: %s\n", what, err)
	}
	return "---\n" + string(output)
}

// FormatRequest formats a request as YAML
func (f *YAMLFormatter) FormatRequest(cfg *relay.RequestConfig) string {
	return f.marshal(requestData(cfg), "request")
}

// FormatResponse formats a response as YAML
func (f *YAMLFormatter) FormatResponse(resp *relay.Response) string {
	return f.marshal(responseData(resp, f.Verbose), "response")
}

// FormatError formats a failure as YAML
func (f *YAMLFormatter) FormatError(err error) string {
	return f.marshal(map[string]any{"error": errorData(err, f.Verbose)}, "error")
}

// FormatExtracted formats extracted values as YAML
func (f *YAMLFormatter) FormatExtracted(values map[string]string) string {
	if len(values) == 0 {
		return ""
	}
	return f.marshal(map[string]any{"extracted": values}, "extracted values")
}

// FormatSummary formats a repeated run as YAML
func (f *YAMLFormatter) FormatSummary(s metrics.Summary) string {
	return f.marshal(map[string]any{"summary": summaryData(s)}, "summary")
}

// GetFormatter returns the appropriate formatter for the given format
func GetFormatter(format OutputFormat, verbose bool, noColor bool) FormatProvider {
	switch format {
	case FormatJSON:
		return &JSONFormatter{Verbose: verbose, Pretty: !noColor}
	case FormatYAML:
		return &YAMLFormatter{Verbose: verbose}
	default:
		return NewFormatter(verbose, noColor)
	}
}
