package output

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	relay "github.com/wesleyorama2/relay/http"
	"github.com/wesleyorama2/relay/plugins/metrics"
)

// Formatter renders requests, responses and errors as human-readable text
type Formatter struct {
	Verbose bool
	NoColor bool

	scheme *ColorScheme
}

// NewFormatter creates a new formatter with the given options
func NewFormatter(verbose, noColor bool) *Formatter {
	scheme := DefaultColorScheme()
	if noColor {
		scheme = NoColorScheme()
	}
	return &Formatter{
		Verbose: verbose,
		NoColor: noColor,
		scheme:  scheme,
	}
}

// FormatRequest formats the effective request for display
func (f *Formatter) FormatRequest(cfg *relay.RequestConfig) string {
	var buf strings.Builder

	fmt.Fprintf(&buf, "▶ REQUEST: %s %s\n",
		f.scheme.Method.Sprint(methodOf(cfg)),
		f.scheme.URL.Sprint(relay.BuildURL(cfg)))

	if f.Verbose || len(cfg.Headers) > 0 {
		buf.WriteString("  Headers:\n")
		f.writeHeaders(&buf, cfg.Headers)
	}

	if cfg.Body != nil {
		buf.WriteString("  Body: ")
		buf.WriteString(formatJSONString(bodyString(cfg.Body)))
		buf.WriteString("\n")
	}

	return buf.String()
}

// FormatResponse formats a response for display
func (f *Formatter) FormatResponse(resp *relay.Response) string {
	var buf strings.Builder

	fmt.Fprintf(&buf, "◀ RESPONSE: %s (%dms)\n",
		f.scheme.Status(resp.Status).Sprint(statusLine(resp.Status, resp.StatusText)),
		resp.Timing.TotalTime.Milliseconds())

	if f.Verbose {
		t := resp.Timing
		buf.WriteString("  Timing:\n")
		fmt.Fprintf(&buf, "    DNS Lookup:         %dms\n", t.DNSLookupTime.Milliseconds())
		fmt.Fprintf(&buf, "    TCP Connection:     %dms\n", t.TCPConnectTime.Milliseconds())
		fmt.Fprintf(&buf, "    TLS Handshake:      %dms\n", t.TLSHandshakeTime.Milliseconds())
		fmt.Fprintf(&buf, "    Time to First Byte: %dms\n", t.TimeToFirstByte.Milliseconds())
		fmt.Fprintf(&buf, "    Content Transfer:   %dms\n", t.ContentTransferTime.Milliseconds())
		fmt.Fprintf(&buf, "    Total:              %dms\n", t.TotalTime.Milliseconds())

		buf.WriteString("  Headers:\n")
		f.writeHeaders(&buf, resp.Headers)
	}

	if len(resp.Raw) > 0 {
		buf.WriteString("  Body:\n")
		buf.WriteString(formatJSONString(string(resp.Raw)))
		buf.WriteString("\n")
	}

	return buf.String()
}

// FormatError formats a failed call. Protocol errors include the response.
func (f *Formatter) FormatError(err error) string {
	var buf strings.Builder

	e, ok := relay.AsError(err)
	if !ok {
		fmt.Fprintf(&buf, "%s %s\n", ErrorIcon(f.NoColor), f.scheme.Error.Sprint(err.Error()))
		return buf.String()
	}

	label := string(e.Kind)
	if e.Code != "" {
		label += " " + e.Code
	}
	fmt.Fprintf(&buf, "%s %s: %s\n", ErrorIcon(f.NoColor), f.scheme.Highlight.Sprint(label), f.scheme.Error.Sprint(e.Message))

	if e.Response != nil {
		buf.WriteString(f.FormatResponse(e.Response))
	}
	return buf.String()
}

// FormatExtracted formats values extracted from a response body
func (f *Formatter) FormatExtracted(values map[string]string) string {
	if len(values) == 0 {
		return ""
	}

	var buf strings.Builder
	buf.WriteString("  Extracted:\n")
	for _, name := range sortedKeys(values) {
		fmt.Fprintf(&buf, "    %s = %s\n", f.scheme.HeaderKey.Sprint(name), values[name])
	}
	return buf.String()
}

// FormatSummary formats the aggregate of a repeated run
func (f *Formatter) FormatSummary(s metrics.Summary) string {
	var buf strings.Builder
	l := s.Latency

	fmt.Fprintf(&buf, "%s\n", f.scheme.Highlight.Sprint("Summary"))
	fmt.Fprintf(&buf, "  Requests:   %d (%s %d, %s %d)\n", s.Total,
		SuccessIcon(f.NoColor), s.Succeeded, ErrorIcon(f.NoColor), s.Failed)
	fmt.Fprintf(&buf, "  Success:    %.1f%%\n", s.SuccessRate()*100)
	fmt.Fprintf(&buf, "  Throughput: %.2f req/s\n", s.Throughput())
	fmt.Fprintf(&buf, "  Latency:    min %v  p50 %v  p90 %v  p95 %v  p99 %v  max %v\n",
		l.Min, l.P50, l.P90, l.P95, l.P99, l.Max)

	if len(s.ByKind) > 0 {
		kinds := make([]string, 0, len(s.ByKind))
		for k := range s.ByKind {
			kinds = append(kinds, k)
		}
		sort.Strings(kinds)
		buf.WriteString("  Failures:\n")
		for _, k := range kinds {
			fmt.Fprintf(&buf, "    %s: %d\n", k, s.ByKind[k])
		}
	}
	return buf.String()
}

func (f *Formatter) writeHeaders(buf *strings.Builder, headers map[string]string) {
	for _, key := range sortedKeys(headers) {
		fmt.Fprintf(buf, "    %s: %s\n", f.scheme.HeaderKey.Sprint(key), headers[key])
	}
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func statusLine(code int, text string) string {
	if text == "" {
		return fmt.Sprintf("%d", code)
	}
	return fmt.Sprintf("%d %s", code, text)
}

func methodOf(cfg *relay.RequestConfig) string {
	if cfg.Method == "" {
		return "GET"
	}
	return strings.ToUpper(cfg.Method)
}

func bodyString(body any) string {
	switch b := body.(type) {
	case string:
		return b
	case []byte:
		return string(b)
	}
	data, err := json.Marshal(body)
	if err != nil {
		return fmt.Sprintf("%v", body)
	}
	return string(data)
}

// formatJSONString attempts to pretty-print a JSON string
func formatJSONString(s string) string {
	var prettyJSON bytes.Buffer
	err := json.Indent(&prettyJSON, []byte(s), "  ", "  ")
	if err != nil {
		return s
	}
	return prettyJSON.String()
}
