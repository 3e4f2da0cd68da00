// Package http is the public client surface: an Instance built from default
// configuration, verb helpers, and ordered request/response interceptors.
//
// Every call merges the instance defaults with the per-call config, runs the
// request interceptors in registration order, sends the request with a
// per-call timeout, then runs the response interceptors.
//
// Basic Usage:
//
//	client := http.Create(&http.RequestConfig{
//	    BaseURL: "https://api.example.com",
//	    Timeout: 5 * time.Second,
//	    Headers: map[string]string{"Authorization": "Bearer token"},
//	})
//
//	resp, err := client.Get(ctx, "/users", &http.RequestConfig{
//	    Params: http.Pairs("limit", 10, "tag", []any{"a", "b"}),
//	})
//	if err != nil {
//	    if e, ok := http.AsError(err); ok && errors.Is(e, http.ErrTimeout) {
//	        log.Printf("gave up after %v", e.Timeout)
//	    }
//	    log.Fatal(err)
//	}
//	fmt.Println(resp.Status, resp.Data)
//
// Interceptors:
//
//	remove := client.Interceptors.Request.Use(func(ctx context.Context, cfg *http.RequestConfig) (*http.RequestConfig, error) {
//	    cfg.SetHeader("X-Trace", "abc")
//	    return cfg, nil
//	})
//	defer remove()
//
// Errors:
//
// Every failure is an *Error. Its Kind tells timeouts, non-2xx responses,
// transport failures and interceptor failures apart; the sentinels ErrTimeout,
// ErrProtocol, ErrNetwork and ErrInterceptor work with errors.Is.
//
// Thread Safety:
//
// Instance is safe for concurrent use. Interceptors may be added or removed
// while calls are in flight; a call keeps the chain it started with.
package http
