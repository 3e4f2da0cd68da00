package config

import (
	"fmt"
	"sort"
	"strings"

	"github.com/tidwall/gjson"
)

// ValidationError represents a configuration validation error.
type ValidationError struct {
	// Path is the path to the invalid field
	Path string

	// Message describes the validation error
	Message string
}

// Error returns the error message.
func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Path, e.Message)
}

var validMethods = map[string]bool{
	"GET": true, "POST": true, "PUT": true, "DELETE": true,
	"PATCH": true, "HEAD": true, "OPTIONS": true,
}

// Validate validates the file and returns every problem found, sorted by
// path. An empty slice means the file is valid.
func Validate(file *File) []ValidationError {
	var errors []ValidationError

	if _, err := ParseDurationString(file.Timeout); err != nil {
		errors = append(errors, ValidationError{Path: "timeout", Message: err.Error()})
	}

	for name, env := range file.Environments {
		if env.BaseURL == "" && file.BaseURL == "" {
			errors = append(errors, ValidationError{
				Path:    fmt.Sprintf("environments.%s.baseUrl", name),
				Message: "baseUrl is required",
			})
		}
	}

	for name, req := range file.Requests {
		if req.URL == "" {
			errors = append(errors, ValidationError{
				Path:    fmt.Sprintf("requests.%s.url", name),
				Message: "url is required",
			})
		}

		if req.Method != "" && !validMethods[strings.ToUpper(req.Method)] {
			errors = append(errors, ValidationError{
				Path:    fmt.Sprintf("requests.%s.method", name),
				Message: fmt.Sprintf("invalid method: %s", req.Method),
			})
		}

		if _, err := ParseDurationString(req.Timeout); err != nil {
			errors = append(errors, ValidationError{
				Path:    fmt.Sprintf("requests.%s.timeout", name),
				Message: err.Error(),
			})
		}

		for varName, path := range req.Extract {
			if path == "" {
				errors = append(errors, ValidationError{
					Path:    fmt.Sprintf("requests.%s.extract.%s", name, varName),
					Message: "extract path cannot be empty",
				})
			}
		}

		if req.Schema != "" {
			if _, ok := file.Schemas[req.Schema]; !ok {
				errors = append(errors, ValidationError{
					Path:    fmt.Sprintf("requests.%s.schema", name),
					Message: fmt.Sprintf("schema not found: %s", req.Schema),
				})
			}
		}
	}

	for name := range file.Schemas {
		data, err := file.Schema(name)
		if err != nil || !gjson.ValidBytes(data) {
			errors = append(errors, ValidationError{
				Path:    fmt.Sprintf("schemas.%s", name),
				Message: "schema is not valid JSON",
			})
		}
	}

	if file.Signing != nil && file.Signing.Secret == "" && file.Signing.SecretEnv == "" {
		errors = append(errors, ValidationError{
			Path:    "signing",
			Message: "secret or secretEnv is required",
		})
	}

	if file.RateLimit != nil {
		if file.RateLimit.RPS <= 0 {
			errors = append(errors, ValidationError{Path: "rateLimit.rps", Message: "rps must be positive"})
		}
		if file.RateLimit.Burst < 0 {
			errors = append(errors, ValidationError{Path: "rateLimit.burst", Message: "burst cannot be negative"})
		}
	}

	sort.Slice(errors, func(i, j int) bool { return errors[i].Path < errors[j].Path })
	return errors
}
