package cmd

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"insurance-portal/internal/dashboard"
	"insurance-portal/internal/models"
)

func newClaimsCommand(opts *rootOptions) *cobra.Command {
	var (
		list   listOptions
		search string
	)
	cmd := &cobra.Command{
		Use:   "claims",
		Short: "List claims for the signed-in agent or customer",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := openApp(cmd, opts)
			if err != nil {
				return err
			}
			defer a.Close()

			s, api, err := a.current(cmd.Context())
			if err != nil {
				return err
			}
			schema := dashboard.ClaimSchema(a.cfg.Language())
			sort, err := sortState(schema, &list)
			if err != nil {
				return err
			}

			var rows []models.Claim
			switch s.User.Role {
			case models.RoleAgent:
				tab, err := tabIndex(schema, list.tab, 0)
				if err != nil {
					return err
				}
				d := dashboard.NewAgentDashboard(api, s.User, a.cfg.Language(), slog.Default())
				defer d.Unmount()
				if err := d.Mount(cmd.Context()); err != nil {
					return err
				}
				if err := d.SelectClaimTab(tab); err != nil {
					return err
				}
				if err := d.SetClaimSort(sort); err != nil {
					return err
				}
				d.SearchClaims(search)
				rows = d.ClaimRows()
			case models.RoleCustomer:
				d := dashboard.NewCustomerDashboard(api, s.User, a.cfg.Language(), slog.Default())
				defer d.Unmount()
				if err := d.Mount(cmd.Context()); err != nil {
					return err
				}
				rows = d.Claims(sort)
			default:
				return fmt.Errorf("claims are not available for role %q", s.User.Role)
			}
			return renderClaims(cmd.OutOrStdout(), rows)
		},
	}
	list.bind(cmd, "tab to show: Pending, Approved or its index (agents)")
	cmd.Flags().StringVarP(&search, "search", "q", "", "agents: keep claims containing this text")
	return cmd
}
