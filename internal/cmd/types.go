package cmd

import (
	"github.com/spf13/cobra"
)

func newTypesCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "types",
		Short: "List the insurance types a quote can be requested for",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := openApp(cmd, opts)
			if err != nil {
				return err
			}
			defer a.Close()

			_, api, err := a.current(cmd.Context())
			if err != nil {
				return err
			}
			types, err := api.ListInsuranceTypes(cmd.Context())
			if err != nil {
				return err
			}
			return renderInsuranceTypes(cmd.OutOrStdout(), types)
		},
	}
}
