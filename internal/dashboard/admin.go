package dashboard

import (
	"context"
	"fmt"

	"golang.org/x/text/language"

	"insurance-portal/internal/models"
	"insurance-portal/internal/table"
)

// AdminAPI is the slice of the portal client the admin views use
type AdminAPI interface {
	ListAgents(ctx context.Context) ([]models.Agent, error)
	ListCustomers(ctx context.Context) ([]models.Customer, error)
	ListOffers(ctx context.Context) ([]models.Offer, error)
}

// AdminDashboard serves the admin listings. It keeps no state between requests.
type AdminDashboard struct {
	api            AdminAPI
	agentSchema    *table.Schema[models.Agent]
	customerSchema *table.Schema[models.Customer]
	offerSchema    *table.Schema[models.Offer]
}

func NewAdminDashboard(api AdminAPI, lang language.Tag) *AdminDashboard {
	return &AdminDashboard{
		api:            api,
		agentSchema:    AgentSchema(lang),
		customerSchema: CustomerSchema(lang),
		offerSchema:    OfferSchema(lang),
	}
}

func (d *AdminDashboard) Agents(ctx context.Context, query string, sort table.SortState) ([]models.Agent, error) {
	agents, err := d.api.ListAgents(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list agents: %w", err)
	}
	return listing(d.agentSchema, agents, query, sort)
}

func (d *AdminDashboard) Customers(ctx context.Context, query string, sort table.SortState) ([]models.Customer, error) {
	customers, err := d.api.ListCustomers(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list customers: %w", err)
	}
	return listing(d.customerSchema, customers, query, sort)
}

// Offers lists every offer across departments. A negative tab lists all statuses.
func (d *AdminDashboard) Offers(ctx context.Context, tab int, sort table.SortState) ([]models.Offer, error) {
	if sort.Key == "" {
		sort = d.offerSchema.DefaultSort
	}
	if _, ok := d.offerSchema.Column(sort.Key); !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownColumn, sort.Key)
	}
	if tab >= len(d.offerSchema.Tabs) {
		return nil, fmt.Errorf("%w: %d", ErrUnknownTab, tab)
	}
	offers, err := d.api.ListOffers(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list offers: %w", err)
	}
	if tab >= 0 {
		offers = d.offerSchema.Filter(offers, tab)
	}
	return d.offerSchema.Sort(offers, sort), nil
}

func listing[T any](schema *table.Schema[T], rows []T, query string, sort table.SortState) ([]T, error) {
	if sort.Key == "" {
		sort = schema.DefaultSort
	}
	if _, ok := schema.Column(sort.Key); !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownColumn, sort.Key)
	}
	return schema.Sort(schema.Search(rows, query), sort), nil
}
