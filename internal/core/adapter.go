// Copyright (c) 2025, Wesley Brown
// All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package core

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
)

// Adapter bridges a RequestConfig and a Transport: it encodes the body,
// invokes the transport, decodes the response and classifies its status.
type Adapter struct {
	transport Transport
}

// NewAdapter creates an Adapter over t.
func NewAdapter(t Transport) *Adapter {
	return &Adapter{transport: t}
}

// Dispatch sends cfg to url. A non-2xx status returns a KindProtocol *Error
// carrying the partial response. Transport failures, including context
// cancellation, are returned unchanged.
func (a *Adapter) Dispatch(ctx context.Context, url string, cfg *RequestConfig) (*Response, error) {
	body, isJSON, err := encodeBody(cfg.Body)
	if err != nil {
		return nil, &codedError{code: CodeBadRequest, err: fmt.Errorf("encode request body: %w", err)}
	}

	headers := make(map[string]string, len(cfg.Headers)+1)
	for key, value := range cfg.Headers {
		headers[key] = value
	}
	if isJSON && lookupFold(headers, "Content-Type") == "" {
		headers["Content-Type"] = "application/json"
	}

	method := strings.ToUpper(cfg.Method)
	if method == "" {
		method = "GET"
	}

	tresp, err := a.transport.Send(ctx, &TransportRequest{
		URL:     url,
		Method:  method,
		Headers: headers,
		Body:    body,
	})
	if err != nil {
		return nil, err
	}
	if tresp == nil {
		return nil, fmt.Errorf("transport returned no response")
	}

	var raw []byte
	if tresp.Body != nil {
		raw, err = io.ReadAll(tresp.Body)
		tresp.Body.Close()
		if err != nil {
			return nil, fmt.Errorf("read response body: %w", err)
		}
	}

	resp := &Response{
		Status:     tresp.Status,
		StatusText: tresp.StatusText,
		Headers:    NormalizeHeaders(tresp.Headers),
		Data:       DecodeBody(raw),
		Raw:        raw,
		Config:     cfg,
		Timing:     tresp.Timing,
	}
	if !resp.IsSuccess() {
		return nil, newProtocolError(cfg, resp)
	}
	return resp, nil
}

// NormalizeHeaders lower-cases keys and joins repeated values with ", ".
func NormalizeHeaders(h map[string][]string) map[string]string {
	out := make(map[string]string, len(h))
	for key, values := range h {
		lower := strings.ToLower(key)
		joined := strings.Join(values, ", ")
		if existing, ok := out[lower]; ok && existing != "" {
			joined = existing + ", " + joined
		}
		out[lower] = joined
	}
	return out
}

// DecodeBody parses raw as JSON and falls back to the raw text when it is
// not valid JSON. An empty body decodes to "".
func DecodeBody(raw []byte) any {
	if len(raw) == 0 {
		return ""
	}
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return string(raw)
	}
	return v
}

func encodeBody(body any) ([]byte, bool, error) {
	switch b := body.(type) {
	case nil:
		return nil, false, nil
	case []byte:
		return b, false, nil
	case string:
		return []byte(b), false, nil
	case json.RawMessage:
		return b, true, nil
	}
	data, err := json.Marshal(body)
	if err != nil {
		return nil, false, err
	}
	return data, true, nil
}
