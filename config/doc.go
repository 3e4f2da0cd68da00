// Package config loads client defaults and named request templates from
// YAML or JSON files.
//
// A configuration file defines:
//   - Client defaults: base URL, headers, query params and timeout
//   - Environments: per-target overrides with {{variable}} values
//   - Requests: named request templates
//   - Schemas: JSON schemas that responses can be validated against
//   - Signing and rate limit settings for the matching plugins
//
// Basic Usage:
//
//	file, err := config.Load("relay.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	defaults, err := file.Defaults("staging")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	client := http.Create(defaults)
//
//	req, err := file.Request("getUser", "staging")
//	resp, err := client.Request(ctx, req)
//
// Params keep their document order, so a file's query string is reproduced
// exactly.
//
// Configuration Validation:
//
//	errs := config.Validate(file)
//	for _, err := range errs {
//	    log.Printf("Validation error: %s", err)
//	}
package config
