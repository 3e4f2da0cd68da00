// Copyright (c) 2025, Wesley Brown
// All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package core

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/tidwall/gjson"

	"github.com/wesleyorama2/relay/internal/jsonpath"
)

// TimingInfo stores per-phase timing for one exchange. Transports that
// cannot observe a phase leave it zero.
type TimingInfo struct {
	// StartTime is when the transport call started
	StartTime time.Time

	// DNSLookupTime is the time spent resolving the host
	DNSLookupTime time.Duration

	// TCPConnectTime is the time spent establishing the connection
	TCPConnectTime time.Duration

	// TLSHandshakeTime is the time spent in the TLS handshake
	TLSHandshakeTime time.Duration

	// TimeToFirstByte is measured from the end of the last connection phase
	TimeToFirstByte time.Duration

	// ContentTransferTime is the time spent reading the body
	ContentTransferTime time.Duration

	// TotalTime is the total transport time
	TotalTime time.Duration
}

// Response is the normalized result of a successful exchange.
type Response struct {
	// Status is the numeric HTTP status code
	Status int

	// StatusText is the reason phrase, e.g. "OK"
	StatusText string

	// Headers has lower-cased keys; repeated values are joined with ", "
	Headers map[string]string

	// Data is the decoded JSON body, or the raw text when it is not JSON
	Data any

	// Raw is the undecoded body
	Raw []byte

	// Config is the effective config that produced this response
	Config *RequestConfig

	// Timing holds transport timing when the transport reports it
	Timing TimingInfo
}

// Header returns the value of key, matched case-insensitively.
func (r *Response) Header(key string) string {
	return lookupFold(r.Headers, key)
}

// Text returns the raw body as a string.
func (r *Response) Text() string {
	return string(r.Raw)
}

// DecodeJSON unmarshals the raw body into v.
func (r *Response) DecodeJSON(v any) error {
	return json.Unmarshal(r.Raw, v)
}

// Path resolves a JSONPath expression ($.items[0].id) against the body.
func (r *Response) Path(expr string) (gjson.Result, error) {
	return jsonpath.Lookup(r.Raw, expr)
}

// IsSuccess returns true if the status code is in the 2xx range.
func (r *Response) IsSuccess() bool {
	return r.Status >= 200 && r.Status < 300
}

// IsRedirect returns true if the status code is in the 3xx range.
func (r *Response) IsRedirect() bool {
	return r.Status >= 300 && r.Status < 400
}

// IsClientError returns true if the status code is in the 4xx range.
func (r *Response) IsClientError() bool {
	return r.Status >= 400 && r.Status < 500
}

// IsServerError returns true if the status code is in the 5xx range.
func (r *Response) IsServerError() bool {
	return r.Status >= 500 && r.Status < 600
}

func lookupFold(m map[string]string, key string) string {
	if v, ok := m[key]; ok {
		return v
	}
	for k, v := range m {
		if strings.EqualFold(k, key) {
			return v
		}
	}
	return ""
}
