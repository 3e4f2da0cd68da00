package cli

import (
	"io"
	"os"

	"github.com/spf13/cobra"
)

var version = "0.1.0"

// NewRootCmd builds the relay command tree writing to out and errOut.
func NewRootCmd(out, errOut io.Writer) *cobra.Command {
	root := &cobra.Command{
		Use:     "relay",
		Short:   "A terminal HTTP client with interceptors and per-request timeouts",
		Version: version,
		Long: `Relay sends HTTP requests through an ordered interceptor pipeline
with per-request timeouts and typed errors. Defaults, named requests,
signing and rate limits can be loaded from a YAML or JSON config file.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}
	root.SetOut(out)
	root.SetErr(errOut)

	flags := root.PersistentFlags()
	flags.StringP("config", "c", "", "Config file with client defaults (YAML or JSON)")
	flags.StringP("env", "e", "", "Environment from the config file")
	flags.StringP("output", "o", "text", "Output format: text, json or yaml")
	flags.BoolP("verbose", "v", false, "Enable verbose output")
	flags.Bool("no-color", false, "Disable colored output")
	flags.Bool("debug", false, "Log client activity to stderr")

	for _, method := range []string{"GET", "DELETE"} {
		root.AddCommand(newVerbCmd(method, false))
	}
	for _, method := range []string{"POST", "PUT", "PATCH"} {
		root.AddCommand(newVerbCmd(method, true))
	}
	root.AddCommand(newRunCmd())

	return root
}

// Execute runs the CLI with os.Args.
func Execute() error {
	root := NewRootCmd(os.Stdout, os.Stderr)
	err := root.Execute()
	if err != nil && !isReported(err) {
		root.PrintErrln("Error:", err)
	}
	return err
}
