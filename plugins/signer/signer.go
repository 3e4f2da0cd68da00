// Copyright (c) 2025, Wesley Brown
// All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package signer attaches a signature of the request body to every
// outgoing request.
package signer

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"

	relay "github.com/wesleyorama2/relay/http"
)

// DefaultHeader carries the signature unless WithHeader says otherwise.
const DefaultHeader = "X-Signature"

// Signer signs a message. Implementations may call out to a wallet, KMS or
// other key holder, so SignMessage takes a context.
type Signer interface {
	SignMessage(ctx context.Context, message []byte) (string, error)
}

// SignerFunc adapts a function to Signer.
type SignerFunc func(ctx context.Context, message []byte) (string, error)

// SignMessage calls f.
func (f SignerFunc) SignMessage(ctx context.Context, message []byte) (string, error) {
	return f(ctx, message)
}

// HMAC signs with HMAC-SHA256 and returns the hex digest.
type HMAC struct {
	key []byte
}

// NewHMAC creates an HMAC signer. The key is copied.
func NewHMAC(key []byte) *HMAC {
	return &HMAC{key: append([]byte(nil), key...)}
}

// SignMessage implements Signer.
func (h *HMAC) SignMessage(_ context.Context, message []byte) (string, error) {
	mac := hmac.New(sha256.New, h.key)
	mac.Write(message)
	return hex.EncodeToString(mac.Sum(nil)), nil
}

type options struct {
	header string
}

// Option configures the plugin.
type Option func(*options)

// WithHeader sets the header the signature is written to.
func WithHeader(name string) Option {
	return func(o *options) {
		if name != "" {
			o.header = name
		}
	}
}

// Plugin returns a request interceptor that signs the payload and stores
// the signature in a header. The payload is the body's JSON encoding, or
// "{}" when there is no body; string and []byte bodies are signed as sent.
func Plugin(s Signer, opts ...Option) relay.Plugin {
	o := options{header: DefaultHeader}
	for _, opt := range opts {
		opt(&o)
	}

	return relay.Plugin{
		Request: func(ctx context.Context, cfg *relay.RequestConfig) (*relay.RequestConfig, error) {
			payload, err := Payload(cfg.Body)
			if err != nil {
				return nil, err
			}
			sig, err := s.SignMessage(ctx, payload)
			if err != nil {
				return nil, fmt.Errorf("sign request: %w", err)
			}
			cfg.SetHeader(o.header, sig)
			return cfg, nil
		},
	}
}

// Payload returns the bytes a body is signed over.
func Payload(body any) ([]byte, error) {
	switch b := body.(type) {
	case nil:
		return []byte("{}"), nil
	case []byte:
		return b, nil
	case string:
		return []byte(b), nil
	case json.RawMessage:
		return b, nil
	}
	data, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("encode body for signing: %w", err)
	}
	return data, nil
}
