// Copyright (c) 2025, Wesley Brown
// All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package logging writes client traffic to a zerolog logger.
package logging

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog"

	relay "github.com/wesleyorama2/relay/http"
)

// Logger logs requests, responses and call outcomes.
type Logger struct {
	log  zerolog.Logger
	curl bool
}

// Option configures a Logger.
type Option func(*Logger)

// WithCurl adds an equivalent curl command to each request entry.
func WithCurl() Option {
	return func(l *Logger) {
		l.curl = true
	}
}

// New creates a Logger writing to log.
func New(log zerolog.Logger, opts ...Option) *Logger {
	l := &Logger{log: log}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Plugin logs each request before dispatch and each successful response
// at debug level.
func (l *Logger) Plugin() relay.Plugin {
	return relay.Plugin{
		Request: func(_ context.Context, cfg *relay.RequestConfig) (*relay.RequestConfig, error) {
			event := l.log.Debug().
				Str("method", methodOf(cfg)).
				Str("url", relay.BuildURL(cfg))
			if l.curl {
				event = event.Str("curl", Curl(cfg))
			}
			event.Msg("request")
			return cfg, nil
		},
		Response: func(_ context.Context, resp *relay.Response) (*relay.Response, error) {
			l.log.Debug().
				Int("status", resp.Status).
				Int("bytes", len(resp.Raw)).
				Dur("ttfb", resp.Timing.TimeToFirstByte).
				Msg("response")
			return resp, nil
		},
	}
}

// Hook logs the outcome of every call: info on success, warn on failure.
func (l *Logger) Hook() relay.AfterHook {
	return func(cfg *relay.RequestConfig, resp *relay.Response, err error, dur time.Duration) {
		if err != nil {
			event := l.log.Warn().Err(err).Str("method", methodOf(cfg)).Str("url", relay.BuildURL(cfg)).Dur("duration", dur)
			if e, ok := relay.AsError(err); ok {
				event = event.Str("kind", string(e.Kind))
				if e.Code != "" {
					event = event.Str("code", e.Code)
				}
				if status := e.Status(); status != 0 {
					event = event.Int("status", status)
				}
			}
			event.Msg("request failed")
			return
		}
		l.log.Info().
			Str("method", methodOf(cfg)).
			Str("url", relay.BuildURL(cfg)).
			Int("status", resp.Status).
			Dur("duration", dur).
			Msg("request completed")
	}
}

// Curl renders cfg as a curl command line.
func Curl(cfg *relay.RequestConfig) string {
	var sb strings.Builder
	sb.WriteString("curl -X ")
	sb.WriteString(methodOf(cfg))

	keys := make([]string, 0, len(cfg.Headers))
	for k := range cfg.Headers {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(&sb, " -H %s", shellQuote(k+": "+cfg.Headers[k]))
	}

	if body := curlBody(cfg.Body); body != "" {
		fmt.Fprintf(&sb, " -d %s", shellQuote(body))
	}

	sb.WriteString(" ")
	sb.WriteString(shellQuote(relay.BuildURL(cfg)))
	return sb.String()
}

func curlBody(body any) string {
	switch b := body.(type) {
	case nil:
		return ""
	case string:
		return b
	case []byte:
		return string(b)
	}
	data, err := json.Marshal(body)
	if err != nil {
		return ""
	}
	return string(data)
}

func shellQuote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}

func methodOf(cfg *relay.RequestConfig) string {
	if cfg == nil || cfg.Method == "" {
		return "GET"
	}
	return strings.ToUpper(cfg.Method)
}
