package dashboard

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/language"

	"insurance-portal/internal/models"
	"insurance-portal/internal/table"
)

func TestAdminDashboard_Agents(t *testing.T) {
	api := &fakeAPI{agents: []models.Agent{
		{AgentID: 1, Name: "Zeynep", Email: "zeynep@broker.test", Department: &models.InsuranceType{Name: "Sağlık"}},
		{AgentID: 2, Name: "Çağla", Email: "cagla@broker.test"},
		{AgentID: 3, Name: "Burak", Email: "burak@broker.test", Department: &models.InsuranceType{Name: "Kasko"}},
	}}
	d := NewAdminDashboard(api, language.Turkish)

	agents, err := d.Agents(context.Background(), "", table.SortState{})
	require.NoError(t, err)
	names := []string{}
	for _, a := range agents {
		names = append(names, a.Name)
	}
	// Turkish collation puts Ç after C and before Z
	assert.Equal(t, []string{"Burak", "Çağla", "Zeynep"}, names)

	agents, err = d.Agents(context.Background(), "kasko", table.SortState{})
	require.NoError(t, err)
	require.Len(t, agents, 1)
	assert.Equal(t, int64(3), agents[0].AgentID)

	_, err = d.Agents(context.Background(), "", table.SortState{Key: "salary"})
	assert.ErrorIs(t, err, ErrUnknownColumn)
}

func TestAdminDashboard_Offers(t *testing.T) {
	d := NewAdminDashboard(&fakeAPI{offers: sampleOffers()}, language.Turkish)

	all, err := d.Offers(context.Background(), -1, table.SortState{})
	require.NoError(t, err)
	assert.Equal(t, []int64{2, 1}, offerIDs(all))

	pending, err := d.Offers(context.Background(), TabPending, table.SortState{Key: "offerId", Direction: table.Asc})
	require.NoError(t, err)
	assert.Equal(t, []int64{1}, offerIDs(pending))

	_, err = d.Offers(context.Background(), 5, table.SortState{})
	assert.ErrorIs(t, err, ErrUnknownTab)
}

func TestAdminDashboard_Customers(t *testing.T) {
	d := NewAdminDashboard(&fakeAPI{customers: []models.Customer{
		{CustomerID: 1, Name: "Ali", TCNumber: "10000000146"},
		{CustomerID: 2, Name: "Veli", TCNumber: "12345678950"},
	}}, language.Turkish)

	customers, err := d.Customers(context.Background(), "1234", table.SortState{})
	require.NoError(t, err)
	require.Len(t, customers, 1)
	assert.Equal(t, "Veli", customers[0].Name)
}
