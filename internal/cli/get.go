package cli

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/spf13/cobra"
)

// newVerbCmd builds the command for one HTTP method. Body verbs accept
// --data and --json.
func newVerbCmd(method string, withBody bool) *cobra.Command {
	lower := strings.ToLower(method)
	cmd := &cobra.Command{
		Use:   lower + " URL",
		Short: fmt.Sprintf("Make a %s request to the specified URL", method),
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := readOptions(cmd)
			if err != nil {
				return err
			}
			call, err := opts.callConfig(method, args[0])
			if err != nil {
				return err
			}
			return execute(cmd, opts, call, "")
		},
	}
	addRequestFlags(cmd)
	if withBody {
		cmd.Flags().StringP("data", "d", "", "Data to send in the request body")
		cmd.Flags().StringP("json", "j", "", "JSON data to send in the request body")
	}
	return cmd
}

// parseURL splits a URL into base URL and path. Paths starting with "/"
// are returned as-is so a configured base URL applies.
func parseURL(fullURL string) (string, string) {
	if strings.HasPrefix(fullURL, "/") {
		return "", fullURL
	}

	// Add scheme if missing
	if !strings.HasPrefix(fullURL, "http://") && !strings.HasPrefix(fullURL, "https://") {
		fullURL = "http://" + fullURL
	}

	parsedURL, err := url.Parse(fullURL)
	if err != nil {
		return fullURL, "/"
	}

	baseURL := fmt.Sprintf("%s://%s", parsedURL.Scheme, parsedURL.Host)
	if parsedURL.User != nil {
		baseURL = fmt.Sprintf("%s://%s@%s", parsedURL.Scheme, parsedURL.User.String(), parsedURL.Host)
	}

	path := parsedURL.EscapedPath()
	if path == "" {
		path = "/"
	}
	if parsedURL.RawQuery != "" {
		path = path + "?" + parsedURL.RawQuery
	}

	return baseURL, path
}
