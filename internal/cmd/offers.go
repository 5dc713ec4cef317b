package cmd

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"
	"golang.org/x/text/language"

	"insurance-portal/internal/client"
	"insurance-portal/internal/dashboard"
	"insurance-portal/internal/models"
	"insurance-portal/internal/session"
	"insurance-portal/internal/table"
)

func newOffersCommand(opts *rootOptions) *cobra.Command {
	var (
		list    listOptions
		pending bool
	)
	cmd := &cobra.Command{
		Use:   "offers",
		Short: "List offers for the signed-in user",
		Long: `List offers the way the signed-in user's dashboard shows them.

Agents see their department's offers on the pending or approved tab.
Customers see their own offers. Admins see every offer, optionally
narrowed to one tab.`,
		Args: cobra.NoArgs,
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
			schema := dashboard.OfferSchema(a.cfg.Language())
			sort, err := sortState(schema, &list)
			if err != nil {
				return err
			}

			var rows []models.Offer
			switch s.User.Role {
			case models.RoleAgent:
				if pending {
					rows, err = pendingOffers(cmd, api, s, schema, sort)
				} else {
					rows, err = agentOffers(cmd, api, s, a.cfg.Language(), schema, &list, sort)
				}
			case models.RoleCustomer:
				d := dashboard.NewCustomerDashboard(api, s.User, a.cfg.Language(), slog.Default())
				defer d.Unmount()
				if err = d.Mount(cmd.Context()); err == nil {
					rows = d.Offers(sort)
				}
			case models.RoleAdmin:
				tab, tabErr := tabIndex(schema, list.tab, -1)
				if tabErr != nil {
					return tabErr
				}
				rows, err = dashboard.NewAdminDashboard(api, a.cfg.Language()).Offers(cmd.Context(), tab, sort)
			default:
				return fmt.Errorf("offers are not available for role %q", s.User.Role)
			}
			if err != nil {
				return err
			}
			return renderOffers(cmd.OutOrStdout(), rows)
		},
	}
	list.bind(cmd, "tab to show: pending, approved or its index (agents and admins)")
	cmd.Flags().BoolVar(&pending, "pending", false, "agents: ask the API for pending offers only")
	return cmd
}

func agentOffers(cmd *cobra.Command, api *client.PortalClient, s *session.Session, lang language.Tag, schema *table.Schema[models.Offer], list *listOptions, sort table.SortState) ([]models.Offer, error) {
	tab, err := tabIndex(schema, list.tab, 0)
	if err != nil {
		return nil, err
	}
	d := dashboard.NewAgentDashboard(api, s.User, lang, slog.Default())
	defer d.Unmount()
	if err := d.Mount(cmd.Context()); err != nil {
		return nil, err
	}
	if err := d.SelectOfferTab(tab); err != nil {
		return nil, err
	}
	if err := d.SetOfferSort(sort); err != nil {
		return nil, err
	}
	return d.OfferRows(), nil
}

// pendingOffers uses the API's own pending filter instead of the dashboard tab
func pendingOffers(cmd *cobra.Command, api *client.PortalClient, s *session.Session, schema *table.Schema[models.Offer], sort table.SortState) ([]models.Offer, error) {
	agent, err := api.GetAgentByUserID(cmd.Context(), s.User.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to load agent: %w", err)
	}
	offers, err := api.GetPendingOffersByAgentDepartment(cmd.Context(), agent.AgentID)
	if err != nil {
		return nil, err
	}
	return schema.Sort(offers, sort), nil
}
