// Copyright (c) 2025, Wesley Brown
// All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package core

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestHTTPTransport_Send(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != "POST" {
			t.Errorf("Expected method POST, got %s", r.Method)
		}
		if r.URL.Path != "/test" {
			t.Errorf("Expected path /test, got %s", r.URL.Path)
		}
		if r.Header.Get("X-Test-Header") != "test-value" {
			t.Errorf("Expected header X-Test-Header: test-value, got %s", r.Header.Get("X-Test-Header"))
		}
		body, _ := io.ReadAll(r.Body)
		if string(body) != `{"a":1}` {
			t.Errorf("Expected body {\"a\":1}, got %s", body)
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"message":"success"}`))
	}))
	defer server.Close()

	resp, err := NewHTTPTransport().Send(context.Background(), &TransportRequest{
		URL:     server.URL + "/test",
		Method:  "POST",
		Headers: map[string]string{"X-Test-Header": "test-value"},
		Body:    []byte(`{"a":1}`),
	})
	if err != nil {
		t.Fatalf("Error executing request: %v", err)
	}

	if resp.Status != http.StatusCreated {
		t.Errorf("Expected status code %d, got %d", http.StatusCreated, resp.Status)
	}
	if resp.StatusText != "Created" {
		t.Errorf("Expected status text Created, got %q", resp.StatusText)
	}
	if got := http.Header(resp.Headers).Get("Content-Type"); got != "application/json" {
		t.Errorf("Expected Content-Type: application/json, got %s", got)
	}

	body, _ := io.ReadAll(resp.Body)
	if string(body) != `{"message":"success"}` {
		t.Errorf("Expected body %s, got %s", `{"message":"success"}`, body)
	}
	if resp.Timing.TotalTime <= 0 {
		t.Errorf("Expected positive total time, got %v", resp.Timing.TotalTime)
	}
	if resp.Timing.StartTime.IsZero() {
		t.Error("Expected start time to be recorded")
	}
}

func TestHTTPTransport_DoesNotFollowRedirects(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/final" {
			t.Error("Redirect should not be followed")
		}
		http.Redirect(w, r, "/final", http.StatusFound)
	}))
	defer server.Close()

	resp, err := NewHTTPTransport().Send(context.Background(), &TransportRequest{URL: server.URL + "/start", Method: "GET"})
	if err != nil {
		t.Fatalf("Error executing request: %v", err)
	}
	if resp.Status != http.StatusFound {
		t.Errorf("Expected status %d, got %d", http.StatusFound, resp.Status)
	}
}

func TestHTTPTransport_ContextCancellation(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer server.Close()
	defer close(release)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := NewHTTPTransport().Send(ctx, &TransportRequest{URL: server.URL, Method: "GET"})
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Expected deadline exceeded, got %v", err)
	}
}

func TestHTTPTransport_WithHTTPClient(t *testing.T) {
	called := false
	client := &http.Client{Transport: roundTripFunc(func(r *http.Request) (*http.Response, error) {
		called = true
		return &http.Response{
			StatusCode: 418,
			Status:     "418 I'm a teapot",
			Header:     http.Header{},
			Body:       io.NopCloser(http.NoBody),
			Request:    r,
		}, nil
	})}

	resp, err := NewHTTPTransport(WithHTTPClient(client)).Send(context.Background(), &TransportRequest{URL: "http://teapot.test", Method: "GET"})
	if err != nil {
		t.Fatalf("Error executing request: %v", err)
	}
	if !called {
		t.Error("Expected custom client to be used")
	}
	if resp.StatusText != "I'm a teapot" {
		t.Errorf("Expected status text I'm a teapot, got %q", resp.StatusText)
	}
}

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(r *http.Request) (*http.Response, error) { return f(r) }
