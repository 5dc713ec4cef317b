package cmd

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/shopspring/decimal"

	"insurance-portal/internal/models"
	"insurance-portal/internal/pricing"
)

const dateLayout = "2006-01-02"

func newTable(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
}

func money(d decimal.Decimal) string {
	return d.StringFixed(2)
}

func optionalMoney(d decimal.NullDecimal) string {
	if !d.Valid {
		return "-"
	}
	return money(d.Decimal)
}

func date(d models.Date) string {
	if d.IsZero() {
		return "-"
	}
	return d.Format(dateLayout)
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func renderOffers(w io.Writer, offers []models.Offer) error {
	if len(offers) == 0 {
		_, err := fmt.Fprintln(w, "No offers")
		return err
	}
	tw := newTable(w)
	fmt.Fprintln(tw, "ID\tCUSTOMER\tTYPE\tBASE\tDISCOUNT\tFINAL\tCOVERAGE\tSTATUS\tACCEPTED\tCREATED")
	for _, o := range offers {
		accepted := "no"
		if o.IsCustomerApproved {
			accepted = "yes"
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			o.OfferID,
			orDash(o.CustomerName()),
			orDash(o.InsuranceTypeName()),
			money(o.BasePrice),
			optionalMoney(o.DiscountRate),
			money(o.FinalPrice),
			o.CoverageAmount.Label(),
			orDash(o.Status.String()),
			accepted,
			date(o.CreatedAt),
		)
	}
	return tw.Flush()
}

func renderClaims(w io.Writer, claims []models.Claim) error {
	if len(claims) == 0 {
		_, err := fmt.Fprintln(w, "No claims")
		return err
	}
	tw := newTable(w)
	fmt.Fprintln(tw, "ID\tPOLICY\tTYPE\tCREATED BY\tSTATUS\tINCIDENT\tAPPROVED\tCREATED")
	for _, c := range claims {
		createdBy := "-"
		if c.CreatedBy != nil && c.CreatedBy.Name != "" {
			createdBy = c.CreatedBy.Name
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			c.ClaimID,
			orDash(c.PolicyNumber),
			orDash(c.Type),
			createdBy,
			orDash(c.Status.String()),
			date(c.IncidentDate),
			optionalMoney(c.ApprovedAmount),
			date(c.CreatedAt),
		)
	}
	return tw.Flush()
}

func renderInsuranceTypes(w io.Writer, types []models.InsuranceType) error {
	tw := newTable(w)
	fmt.Fprintln(tw, "ID\tNAME\tDESCRIPTION")
	for _, t := range types {
		fmt.Fprintf(tw, "%d\t%s\t%s\n", t.InsuranceTypeID, t.Name, orDash(t.Description))
	}
	return tw.Flush()
}

func renderPreview(w io.Writer, p pricing.Preview) error {
	tw := newTable(w)
	fmt.Fprintf(tw, "Base price\t%s\n", money(p.BasePrice))
	fmt.Fprintf(tw, "Coverage\t%s (+%d%%)\n", p.CoverageLabel, p.CoverageAmount.UpliftPercent())
	fmt.Fprintf(tw, "With coverage\t%s\n", money(p.PriceWithCoverage))
	fmt.Fprintf(tw, "Discount\t%s%%\n", p.DiscountRate.String())
	fmt.Fprintf(tw, "Final price\t%s\n", money(p.FinalPrice))
	return tw.Flush()
}
