package cmd

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"insurance-portal/internal/dashboard"
	"insurance-portal/internal/models"
	"insurance-portal/internal/pricing"
)

func newPriceCommand(opts *rootOptions) *cobra.Command {
	var (
		base     string
		coverage int
		discount string
		offerID  int64
	)
	cmd := &cobra.Command{
		Use:   "price",
		Short: "Preview an offer's final price",
		Long: `Preview the final price the quote dialog shows:
final = base * (1 + coverage uplift / 100) * (1 - discount / 100), never below zero.

Either give --base and --coverage, or --offer to take them from one of the
signed-in agent's offers. The API recomputes the real price on save.`,
		Example: `  portal price --base 1000 --coverage 25 --discount 10
  portal price --offer 42 --discount 5`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			rate, err := decimal.NewFromString(discount)
			if err != nil {
				return fmt.Errorf("invalid discount %q", discount)
			}

			var preview pricing.Preview
			if offerID != 0 {
				preview, err = offerPreview(cmd, opts, offerID, rate)
				if err != nil {
					return err
				}
			} else {
				if base == "" {
					return errors.New("either --base or --offer is required")
				}
				basePrice, err := decimal.NewFromString(base)
				if err != nil {
					return fmt.Errorf("invalid base price %q", base)
				}
				tier, err := models.ParseCoverageTier(coverage)
				if err != nil {
					return err
				}
				preview = pricing.NewPreview(basePrice, tier, rate)
			}
			return renderPreview(cmd.OutOrStdout(), preview)
		},
	}
	cmd.Flags().StringVar(&base, "base", "", "base price")
	cmd.Flags().IntVar(&coverage, "coverage", 0, "coverage uplift percent (0, 25 or 40)")
	cmd.Flags().StringVar(&discount, "discount", "0", "discount percent")
	cmd.Flags().Int64Var(&offerID, "offer", 0, "agents: preview one of the department's offers")
	cmd.MarkFlagsMutuallyExclusive("offer", "base")
	cmd.MarkFlagsMutuallyExclusive("offer", "coverage")
	return cmd
}

func offerPreview(cmd *cobra.Command, opts *rootOptions, offerID int64, rate decimal.Decimal) (pricing.Preview, error) {
	a, err := openApp(cmd, opts)
	if err != nil {
		return pricing.Preview{}, err
	}
	defer a.Close()

	s, api, err := a.current(cmd.Context())
	if err != nil {
		return pricing.Preview{}, err
	}
	if s.User.Role != models.RoleAgent {
		return pricing.Preview{}, fmt.Errorf("--offer is only available to agents")
	}
	d := dashboard.NewAgentDashboard(api, s.User, a.cfg.Language(), slog.Default())
	defer d.Unmount()
	if err := d.Mount(cmd.Context()); err != nil {
		return pricing.Preview{}, err
	}
	return d.QuotePreview(offerID, rate)
}
