package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func newRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run NAME",
		Short: "Send a named request from the config file",
		Long: `Send a request template defined under "requests" in the config file.
Flags such as --header and --query are applied on top of the template.
Run without NAME to list the available requests.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := readOptions(cmd)
			if err != nil {
				return err
			}
			if opts.file == nil {
				return fmt.Errorf("run requires --config")
			}

			if len(args) == 0 {
				names := opts.file.RequestNames()
				if len(names) == 0 {
					return fmt.Errorf("no requests defined in config")
				}
				fmt.Fprintln(cmd.OutOrStdout(), strings.Join(names, "\n"))
				return nil
			}

			name := args[0]
			env, _ := cmd.Flags().GetString("env")
			call, err := opts.file.Request(name, env)
			if err != nil {
				return err
			}
			if err := opts.applyFlags(call); err != nil {
				return err
			}

			tmpl := opts.file.Requests[name]
			if len(opts.extract) == 0 {
				for varName, path := range tmpl.Extract {
					opts.extract = append(opts.extract, varName+"="+path)
				}
			}
			return execute(cmd, opts, call, tmpl.Schema)
		},
	}
	addRequestFlags(cmd)
	cmd.Flags().StringP("data", "d", "", "Data to send in the request body")
	cmd.Flags().StringP("json", "j", "", "JSON data to send in the request body")
	return cmd
}
