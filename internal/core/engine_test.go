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
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wesleyorama2/relay/internal/timeout"
	"github.com/wesleyorama2/relay/internal/urlbuild"
)

func respond(status int, body string) Transport {
	return TransportFunc(func(context.Context, *TransportRequest) (*TransportResponse, error) {
		return &TransportResponse{Status: status, Body: io.NopCloser(strings.NewReader(body))}, nil
	})
}

// hang never completes on its own; it returns only when ctx is done or
// never, depending on honorCtx.
func hang(honorCtx bool) Transport {
	return TransportFunc(func(ctx context.Context, _ *TransportRequest) (*TransportResponse, error) {
		if honorCtx {
			<-ctx.Done()
			return nil, ctx.Err()
		}
		select {}
	})
}

func captureControllers(t *testing.T) *[]*timeout.Controller {
	t.Helper()
	var mu sync.Mutex
	var created []*timeout.Controller
	orig := newController
	newController = func(ctx context.Context, d time.Duration) *timeout.Controller {
		c := orig(ctx, d)
		mu.Lock()
		created = append(created, c)
		mu.Unlock()
		return c
	}
	t.Cleanup(func() { newController = orig })
	return &created
}

func TestEngine_MergesDefaults(t *testing.T) {
	var sent *TransportRequest
	engine := NewEngine(
		&RequestConfig{BaseURL: "https://api.test", Headers: map[string]string{"a": "1"}},
		WithTransport(TransportFunc(func(_ context.Context, req *TransportRequest) (*TransportResponse, error) {
			sent = req
			return &TransportResponse{Status: 200, Body: io.NopCloser(strings.NewReader("{}"))}, nil
		})),
	)

	resp, err := engine.Request(context.Background(), &RequestConfig{URL: "/hello", Headers: map[string]string{"b": "2"}})
	require.NoError(t, err)

	assert.Equal(t, "https://api.test", resp.Config.BaseURL)
	assert.Equal(t, "1", resp.Config.Headers["a"])
	assert.Equal(t, "2", resp.Config.Headers["b"])
	assert.Equal(t, "https://api.test/hello", sent.URL)
}

func TestEngine_InterceptorOrder(t *testing.T) {
	engine := NewEngine(nil, WithTransport(respond(200, "{}")))
	var order []string
	m := engine.Interceptors()
	m.UseRequest(func(_ context.Context, c *RequestConfig) (*RequestConfig, error) {
		order = append(order, "r1")
		return c, nil
	})
	m.UseRequest(func(_ context.Context, c *RequestConfig) (*RequestConfig, error) {
		order = append(order, "r2")
		return c, nil
	})
	m.UseResponse(func(_ context.Context, r *Response) (*Response, error) {
		order = append(order, "s1")
		return r, nil
	})
	m.UseResponse(func(_ context.Context, r *Response) (*Response, error) {
		order = append(order, "s2")
		return r, nil
	})

	_, err := engine.Request(context.Background(), &RequestConfig{URL: "https://example.com"})
	require.NoError(t, err)
	assert.Equal(t, []string{"r1", "r2", "s1", "s2"}, order)
}

func TestEngine_InterceptorsChainOutputs(t *testing.T) {
	var sent *TransportRequest
	engine := NewEngine(nil, WithTransport(TransportFunc(func(_ context.Context, req *TransportRequest) (*TransportResponse, error) {
		sent = req
		return &TransportResponse{Status: 200, Body: io.NopCloser(strings.NewReader(`{"n":1}`))}, nil
	})))
	engine.Interceptors().UseRequest(func(_ context.Context, c *RequestConfig) (*RequestConfig, error) {
		c.SetHeader("X-Step", "one")
		return c, nil
	})
	engine.Interceptors().UseRequest(func(_ context.Context, c *RequestConfig) (*RequestConfig, error) {
		c.SetHeader("X-Step", c.Header("X-Step")+"-two")
		c.Params = urlbuild.Pairs("q", "v")
		return c, nil
	})
	engine.Interceptors().UseResponse(func(_ context.Context, r *Response) (*Response, error) {
		return &Response{Status: r.Status, Data: "replaced", Config: r.Config}, nil
	})

	call := &RequestConfig{URL: "https://example.com/x"}
	resp, err := engine.Request(context.Background(), call)
	require.NoError(t, err)

	assert.Equal(t, "one-two", sent.Headers["X-Step"])
	assert.Equal(t, "https://example.com/x?q=v", sent.URL)
	assert.Equal(t, "replaced", resp.Data)
	assert.Nil(t, call.Headers, "caller config must not be mutated")
}

func TestEngine_RemovalExcludesInterceptor(t *testing.T) {
	engine := NewEngine(nil, WithTransport(respond(200, "{}")))
	var order []string
	remove := engine.Interceptors().UseRequest(func(_ context.Context, c *RequestConfig) (*RequestConfig, error) {
		order = append(order, "r1")
		return c, nil
	})
	engine.Interceptors().UseRequest(func(_ context.Context, c *RequestConfig) (*RequestConfig, error) {
		order = append(order, "r2")
		return c, nil
	})

	remove()
	remove()
	_, err := engine.Request(context.Background(), &RequestConfig{URL: "https://example.com"})
	require.NoError(t, err)
	assert.Equal(t, []string{"r2"}, order)
}

func TestEngine_RemovalMidFlightDoesNotAffectRunningCall(t *testing.T) {
	engine := NewEngine(nil, WithTransport(respond(200, "{}")))
	entered := make(chan struct{})
	proceed := make(chan struct{})

	var mu sync.Mutex
	var order []string
	record := func(tag string) {
		mu.Lock()
		order = append(order, tag)
		mu.Unlock()
	}

	engine.Interceptors().UseRequest(func(_ context.Context, c *RequestConfig) (*RequestConfig, error) {
		if c.Header("X-Block") != "" {
			close(entered)
			<-proceed
		}
		record("r1")
		return c, nil
	})
	removeR2 := engine.Interceptors().UseRequest(func(_ context.Context, c *RequestConfig) (*RequestConfig, error) {
		record("r2")
		return c, nil
	})

	errs := make(chan error, 1)
	go func() {
		_, err := engine.Request(context.Background(), &RequestConfig{
			URL:     "https://example.com",
			Headers: map[string]string{"X-Block": "1"},
		})
		errs <- err
	}()

	<-entered
	removeR2()
	close(proceed)
	require.NoError(t, <-errs)

	_, err := engine.Request(context.Background(), &RequestConfig{URL: "https://example.com"})
	require.NoError(t, err)

	assert.Equal(t, []string{"r1", "r2", "r1"}, order)
}

func TestEngine_DecodesBody(t *testing.T) {
	engine := NewEngine(nil, WithTransport(respond(200, `{"hello":"world"}`)))
	resp, err := engine.Request(context.Background(), &RequestConfig{URL: "https://example.com"})
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"hello": "world"}, resp.Data)

	engine = NewEngine(nil, WithTransport(respond(200, "<html>")))
	resp, err = engine.Request(context.Background(), &RequestConfig{URL: "https://example.com"})
	require.NoError(t, err)
	assert.Equal(t, "<html>", resp.Data)
}

func TestEngine_TimeoutAgainstHangingTransport(t *testing.T) {
	tests := []struct {
		name     string
		honorCtx bool
	}{
		{"transport honors context", true},
		{"transport ignores context", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			controllers := captureControllers(t)
			engine := NewEngine(nil, WithTransport(hang(tt.honorCtx)))

			start := time.Now()
			_, err := engine.Request(context.Background(), &RequestConfig{URL: "https://example.com", Timeout: 10 * time.Millisecond})
			elapsed := time.Since(start)

			e, ok := AsError(err)
			require.True(t, ok, "expected *Error, got %v", err)
			assert.Equal(t, KindTimeout, e.Kind)
			assert.Equal(t, CodeTimeout, e.Code)
			assert.Equal(t, "timeout of 10ms exceeded", e.Message)
			assert.Equal(t, 10*time.Millisecond, e.Timeout)
			assert.Equal(t, "https://example.com", e.Config.URL)
			assert.Less(t, elapsed, 500*time.Millisecond)

			require.Len(t, *controllers, 1)
			assert.Equal(t, timeout.Released, (*controllers)[0].State())
			assert.True(t, (*controllers)[0].Fired())
		})
	}
}

func TestEngine_ControllerReleasedOnSuccessAndFailure(t *testing.T) {
	controllers := captureControllers(t)

	engine := NewEngine(nil, WithTransport(respond(200, "{}")))
	_, err := engine.Request(context.Background(), &RequestConfig{URL: "https://x", Timeout: time.Hour})
	require.NoError(t, err)

	engine = NewEngine(nil, WithTransport(respond(500, "fail")))
	_, err = engine.Request(context.Background(), &RequestConfig{URL: "https://x", Timeout: time.Hour})
	require.Error(t, err)

	require.Len(t, *controllers, 2)
	for _, c := range *controllers {
		assert.Equal(t, timeout.Released, c.State())
		assert.False(t, c.Fired())
	}
}

func TestEngine_NegativeTimeoutDisablesDefault(t *testing.T) {
	controllers := captureControllers(t)
	engine := NewEngine(&RequestConfig{Timeout: time.Millisecond}, WithTransport(TransportFunc(
		func(ctx context.Context, _ *TransportRequest) (*TransportResponse, error) {
			time.Sleep(20 * time.Millisecond)
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			return &TransportResponse{Status: 200, Body: io.NopCloser(strings.NewReader("{}"))}, nil
		})))

	_, err := engine.Request(context.Background(), &RequestConfig{URL: "https://x", Timeout: -1})
	require.NoError(t, err)
	require.Len(t, *controllers, 1)
	assert.False(t, (*controllers)[0].Fired())
}

func TestEngine_ProtocolError(t *testing.T) {
	engine := NewEngine(nil, WithTransport(respond(500, "fail")))
	_, err := engine.Request(context.Background(), &RequestConfig{URL: "https://example.com"})

	e, ok := AsError(err)
	require.True(t, ok)
	assert.Equal(t, KindProtocol, e.Kind)
	require.NotNil(t, e.Response)
	assert.Equal(t, 500, e.Response.Status)
	assert.Equal(t, "fail", e.Response.Data)
	assert.ErrorIs(t, err, ErrProtocol)
}

func TestEngine_NetworkError(t *testing.T) {
	engine := NewEngine(nil, WithTransport(TransportFunc(func(context.Context, *TransportRequest) (*TransportResponse, error) {
		return nil, errors.New("dial tcp: connection refused")
	})))
	_, err := engine.Request(context.Background(), &RequestConfig{URL: "https://example.com"})

	e, ok := AsError(err)
	require.True(t, ok)
	assert.Equal(t, KindNetwork, e.Kind)
	assert.Equal(t, "dial tcp: connection refused", e.Message)
	assert.Equal(t, CodeNetwork, e.Code)
}

func TestEngine_CallerCancellation(t *testing.T) {
	engine := NewEngine(nil, WithTransport(hang(true)))
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()

	_, err := engine.Request(ctx, &RequestConfig{URL: "https://example.com", Timeout: time.Hour})

	e, ok := AsError(err)
	require.True(t, ok)
	assert.Equal(t, KindNetwork, e.Kind)
	assert.Equal(t, CodeCanceled, e.Code)
	assert.NotErrorIs(t, err, ErrTimeout)
}

type signError struct{}

func (signError) Error() string { return "signature rejected" }

func TestEngine_InterceptorFailureSurfacesUnchanged(t *testing.T) {
	called := false
	engine := NewEngine(nil, WithTransport(TransportFunc(func(context.Context, *TransportRequest) (*TransportResponse, error) {
		called = true
		return nil, nil
	})))
	engine.Interceptors().UseRequest(func(context.Context, *RequestConfig) (*RequestConfig, error) {
		return nil, signError{}
	})
	skipped := true
	engine.Interceptors().UseRequest(func(_ context.Context, c *RequestConfig) (*RequestConfig, error) {
		skipped = false
		return c, nil
	})

	_, err := engine.Request(context.Background(), &RequestConfig{URL: "https://example.com"})

	assert.Equal(t, "signature rejected", err.Error())
	assert.ErrorIs(t, err, signError{})
	assert.ErrorIs(t, err, ErrInterceptor)
	assert.True(t, IsError(err))
	assert.False(t, called)
	assert.True(t, skipped)
}

func TestEngine_ResponseInterceptorFailure(t *testing.T) {
	engine := NewEngine(nil, WithTransport(respond(200, "{}")))
	engine.Interceptors().UseResponse(func(context.Context, *Response) (*Response, error) {
		return nil, ErrTimeout
	})
	engine.Interceptors().UseResponse(func(context.Context, *Response) (*Response, error) {
		return nil, nil
	})

	_, err := engine.Request(context.Background(), &RequestConfig{URL: "https://example.com"})
	assert.Same(t, ErrTimeout, err)
}

func TestEngine_NilInterceptorResult(t *testing.T) {
	engine := NewEngine(nil, WithTransport(respond(200, "{}")))
	engine.Interceptors().UseRequest(func(context.Context, *RequestConfig) (*RequestConfig, error) {
		return nil, nil
	})

	_, err := engine.Request(context.Background(), &RequestConfig{URL: "https://example.com"})
	e, ok := AsError(err)
	require.True(t, ok)
	assert.Equal(t, KindInterceptor, e.Kind)
}

func TestEngine_AfterHooks(t *testing.T) {
	var outcomes []error
	var urls []string
	hook := func(cfg *RequestConfig, resp *Response, err error, dur time.Duration) {
		outcomes = append(outcomes, err)
		urls = append(urls, cfg.URL)
		assert.GreaterOrEqual(t, dur, time.Duration(0))
	}

	engine := NewEngine(nil, WithTransport(respond(200, "{}")), WithAfterHook(hook), WithAfterHook(nil))
	_, err := engine.Request(context.Background(), &RequestConfig{URL: "https://a"})
	require.NoError(t, err)

	engine = NewEngine(nil, WithTransport(respond(404, "")), WithAfterHook(hook))
	_, err = engine.Request(context.Background(), &RequestConfig{URL: "https://b"})
	require.Error(t, err)

	require.Len(t, outcomes, 2)
	assert.NoError(t, outcomes[0])
	assert.ErrorIs(t, outcomes[1], ErrProtocol)
	assert.Equal(t, []string{"https://a", "https://b"}, urls)
}

func TestEngine_ConcurrentCalls(t *testing.T) {
	engine := NewEngine(&RequestConfig{BaseURL: "https://api.test"}, WithTransport(TransportFunc(
		func(_ context.Context, req *TransportRequest) (*TransportResponse, error) {
			return &TransportResponse{Status: 200, Body: io.NopCloser(strings.NewReader(`"` + req.URL + `"`))}, nil
		})))

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			remove := engine.Interceptors().UseRequest(func(_ context.Context, c *RequestConfig) (*RequestConfig, error) {
				return c, nil
			})
			defer remove()

			path := "/item/" + strings.Repeat("x", i)
			resp, err := engine.Request(context.Background(), &RequestConfig{URL: path})
			if assert.NoError(t, err) {
				assert.Equal(t, "https://api.test"+path, resp.Data)
			}
		}(i)
	}
	wg.Wait()
}

func TestEngine_DefaultTransportAgainstServer(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Reply", r.URL.Query().Get("q"))
		w.Write([]byte(`{"ok":true}`))
	}))
	defer server.Close()

	engine := NewEngine(&RequestConfig{BaseURL: server.URL + "/"})
	resp, err := engine.Request(context.Background(), &RequestConfig{URL: "/ping", Params: urlbuild.Pairs("q", "hi")})
	require.NoError(t, err)

	assert.Equal(t, 200, resp.Status)
	assert.Equal(t, "OK", resp.StatusText)
	assert.Equal(t, "hi", resp.Headers["x-reply"])
	assert.Equal(t, map[string]any{"ok": true}, resp.Data)
}

func TestEngine_DefaultsAreCopied(t *testing.T) {
	defaults := &RequestConfig{Headers: map[string]string{"a": "1"}}
	engine := NewEngine(defaults)
	defaults.Headers["a"] = "changed"

	assert.Equal(t, "1", engine.Defaults().Headers["a"])
}
