package dashboard

import (
	"strconv"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"

	"insurance-portal/internal/models"
	"insurance-portal/internal/table"
)

// Tab indexes shared by the offer and claim tables
const (
	TabPending  = 0
	TabApproved = 1
)

// DefaultLanguage is the collation used when none is configured
var DefaultLanguage = language.Turkish

func present(d decimal.Decimal) (decimal.Decimal, bool) { return d, true }

func nullable(d decimal.NullDecimal) (decimal.Decimal, bool) { return d.Decimal, d.Valid }

func intKey(n int64) (decimal.Decimal, bool) { return decimal.NewFromInt(n), true }

func when(d models.Date) (time.Time, bool) { return d.Time, !d.IsZero() }

func nonEmpty(s string) (string, bool) { return s, s != "" }

func contactField(c *models.Contact, pick func(models.Contact) string) (string, bool) {
	if c == nil {
		return "", false
	}
	return nonEmpty(pick(*c))
}

// OfferSchema describes the agent's offers table
func OfferSchema(lang language.Tag) *table.Schema[models.Offer] {
	return &table.Schema[models.Offer]{
		Columns: []table.Column[models.Offer]{
			table.NumberColumn("offerId", func(o models.Offer) (decimal.Decimal, bool) { return intKey(o.OfferID) }),
			table.StringColumn("description", func(o models.Offer) (string, bool) { return nonEmpty(o.Description) }),
			table.StringColumn("customerName", func(o models.Offer) (string, bool) { return nonEmpty(o.CustomerName()) }),
			table.StringColumn("customerEmail", func(o models.Offer) (string, bool) { return nonEmpty(o.CustomerEmail()) }),
			table.StringColumn("insuranceType", func(o models.Offer) (string, bool) { return nonEmpty(o.InsuranceTypeName()) }),
			table.NumberColumn("basePrice", func(o models.Offer) (decimal.Decimal, bool) { return present(o.BasePrice) }),
			table.NumberColumn("discountRate", func(o models.Offer) (decimal.Decimal, bool) { return nullable(o.DiscountRate) }),
			table.NumberColumn("finalPrice", func(o models.Offer) (decimal.Decimal, bool) { return present(o.FinalPrice) }),
			table.NumberColumn("coverageAmount", func(o models.Offer) (decimal.Decimal, bool) {
				return decimal.NewFromInt(int64(o.CoverageAmount)), true
			}),
			table.DateColumn("requestedStartDate", func(o models.Offer) (time.Time, bool) { return when(o.RequestedStartDate) }),
			table.StringColumn("status", func(o models.Offer) (string, bool) { return nonEmpty(o.Status.String()) }),
			table.BoolColumn("isCustomerApproved", func(o models.Offer) bool { return o.IsCustomerApproved }),
			table.DateColumn("createdAt", func(o models.Offer) (time.Time, bool) { return when(o.CreatedAt) }),
		},
		Tabs: []table.Tab[models.Offer]{
			{Name: "pending", Match: func(o models.Offer) bool { return o.Status == models.OfferPending }},
			{Name: "approved", Match: func(o models.Offer) bool { return o.Status == models.OfferApproved }},
		},
		DefaultSort: table.SortState{Key: "createdAt", Direction: table.Desc},
		Language:    lang,
	}
}

// ClaimSchema describes the agent's claims table, the only table with free-text search
func ClaimSchema(lang language.Tag) *table.Schema[models.Claim] {
	name := func(c models.Contact) string { return c.Name }
	email := func(c models.Contact) string { return c.Email }
	phone := func(c models.Contact) string { return c.Phone }

	return &table.Schema[models.Claim]{
		Columns: []table.Column[models.Claim]{
			table.NumberColumn("claimId", func(c models.Claim) (decimal.Decimal, bool) { return intKey(c.ClaimID) }),
			table.StringColumn("policyNumber", func(c models.Claim) (string, bool) { return nonEmpty(c.PolicyNumber) }),
			table.StringColumn("createdByName", func(c models.Claim) (string, bool) { return contactField(c.CreatedBy, name) }),
			table.StringColumn("createdByEmail", func(c models.Claim) (string, bool) { return contactField(c.CreatedBy, email) }),
			table.StringColumn("type", func(c models.Claim) (string, bool) { return nonEmpty(c.Type) }),
			table.StringColumn("description", func(c models.Claim) (string, bool) { return nonEmpty(c.Description) }),
			table.DateColumn("incidentDate", func(c models.Claim) (time.Time, bool) { return when(c.IncidentDate) }),
			table.StringColumn("status", func(c models.Claim) (string, bool) { return nonEmpty(c.Status.String()) }),
			table.NumberColumn("approvedAmount", func(c models.Claim) (decimal.Decimal, bool) { return nullable(c.ApprovedAmount) }),
			table.StringColumn("notes", func(c models.Claim) (string, bool) {
				if c.Notes == nil {
					return "", false
				}
				return *c.Notes, true
			}),
			table.StringColumn("processedByName", func(c models.Claim) (string, bool) { return contactField(c.ProcessedBy, name) }),
			table.StringColumn("processedByEmail", func(c models.Claim) (string, bool) { return contactField(c.ProcessedBy, email) }),
			table.StringColumn("processedByPhone", func(c models.Claim) (string, bool) { return contactField(c.ProcessedBy, phone) }),
			table.DateColumn("createdAt", func(c models.Claim) (time.Time, bool) { return when(c.CreatedAt) }),
		},
		Tabs: []table.Tab[models.Claim]{
			{Name: "Pending", Match: func(c models.Claim) bool { return c.Status == models.ClaimPending }},
			{Name: "Approved", Match: func(c models.Claim) bool { return c.Status == models.ClaimApproved }},
		},
		SearchFields: []table.SearchField[models.Claim]{
			func(c models.Claim) (string, bool) { return strconv.FormatInt(c.ClaimID, 10), true },
			func(c models.Claim) (string, bool) { return nonEmpty(c.PolicyNumber) },
			func(c models.Claim) (string, bool) { return contactField(c.CreatedBy, name) },
			func(c models.Claim) (string, bool) { return contactField(c.CreatedBy, email) },
			func(c models.Claim) (string, bool) { return nonEmpty(c.Type) },
			func(c models.Claim) (string, bool) { return nonEmpty(c.Description) },
		},
		DefaultSort: table.SortState{Key: "createdAt", Direction: table.Desc},
		Language:    lang,
	}
}

// AgentSchema describes the admin's agent listing
func AgentSchema(lang language.Tag) *table.Schema[models.Agent] {
	department := func(a models.Agent) (string, bool) {
		if a.Department == nil {
			return "", false
		}
		return nonEmpty(a.Department.Name)
	}
	return &table.Schema[models.Agent]{
		Columns: []table.Column[models.Agent]{
			table.NumberColumn("agentId", func(a models.Agent) (decimal.Decimal, bool) { return intKey(a.AgentID) }),
			table.StringColumn("name", func(a models.Agent) (string, bool) { return nonEmpty(a.Name) }),
			table.StringColumn("email", func(a models.Agent) (string, bool) { return nonEmpty(a.Email) }),
			table.StringColumn("phone", func(a models.Agent) (string, bool) { return nonEmpty(a.Phone) }),
			table.StringColumn("department", department),
		},
		SearchFields: []table.SearchField[models.Agent]{
			func(a models.Agent) (string, bool) { return nonEmpty(a.Name) },
			func(a models.Agent) (string, bool) { return nonEmpty(a.Email) },
			department,
		},
		DefaultSort: table.SortState{Key: "name", Direction: table.Asc},
		Language:    lang,
	}
}

// CustomerSchema describes the admin's customer listing
func CustomerSchema(lang language.Tag) *table.Schema[models.Customer] {
	return &table.Schema[models.Customer]{
		Columns: []table.Column[models.Customer]{
			table.NumberColumn("customerId", func(c models.Customer) (decimal.Decimal, bool) { return intKey(c.CustomerID) }),
			table.StringColumn("name", func(c models.Customer) (string, bool) { return nonEmpty(c.Name) }),
			table.StringColumn("email", func(c models.Customer) (string, bool) { return nonEmpty(c.Email) }),
			table.StringColumn("phone", func(c models.Customer) (string, bool) { return nonEmpty(c.Phone) }),
			table.StringColumn("tcNumber", func(c models.Customer) (string, bool) { return nonEmpty(c.TCNumber) }),
		},
		SearchFields: []table.SearchField[models.Customer]{
			func(c models.Customer) (string, bool) { return nonEmpty(c.Name) },
			func(c models.Customer) (string, bool) { return nonEmpty(c.Email) },
			func(c models.Customer) (string, bool) { return nonEmpty(c.TCNumber) },
		},
		DefaultSort: table.SortState{Key: "name", Direction: table.Asc},
		Language:    lang,
	}
}
