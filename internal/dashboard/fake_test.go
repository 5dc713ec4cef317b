package dashboard

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"insurance-portal/internal/client"
	"insurance-portal/internal/models"
)

// fakeAPI is an in-memory stand-in for the portal client
type fakeAPI struct {
	mu sync.Mutex

	agent     *models.Agent
	customer  *models.Customer
	offers    []models.Offer
	claims    []models.Claim
	agents    []models.Agent
	customers []models.Customer

	updateErr error
	deleteErr error
	// gate, when set, blocks UpdateOffer and the offer fetch until closed
	gate chan struct{}

	waiting      int
	updates      []models.UpdateOfferRequest
	deletes      []int64
	approvals    []int64
	offerFetches int
}

func (f *fakeAPI) wait(ctx context.Context) error {
	f.mu.Lock()
	gate := f.gate
	if gate != nil {
		f.waiting++
	}
	f.mu.Unlock()
	if gate == nil {
		return nil
	}
	select {
	case <-gate:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (f *fakeAPI) GetAgentByUserID(_ context.Context, _ int64) (*models.Agent, error) {
	if f.agent == nil {
		return nil, client.ErrNotFound
	}
	return f.agent, nil
}

func (f *fakeAPI) GetCustomerByUserID(_ context.Context, _ int64) (*models.Customer, error) {
	if f.customer == nil {
		return nil, client.ErrNotFound
	}
	return f.customer, nil
}

func (f *fakeAPI) GetOffersByAgentDepartment(ctx context.Context, _ int64) ([]models.Offer, error) {
	if err := f.wait(ctx); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.offerFetches++
	return slices.Clone(f.offers), nil
}

func (f *fakeAPI) GetClaimsByAgentDepartment(_ context.Context, _ int64) ([]models.Claim, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return slices.Clone(f.claims), nil
}

func (f *fakeAPI) GetOffersByCustomer(ctx context.Context, id int64) ([]models.Offer, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Offer
	for _, o := range f.offers {
		if o.Customer != nil && o.Customer.CustomerID == id {
			out = append(out, o)
		}
	}
	return out, nil
}

func (f *fakeAPI) GetClaimsByCustomer(_ context.Context, _ int64) ([]models.Claim, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return slices.Clone(f.claims), nil
}

func (f *fakeAPI) UpdateOffer(ctx context.Context, offerID int64, req models.UpdateOfferRequest) (*models.Offer, error) {
	if err := f.wait(ctx); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.updates = append(f.updates, req)
	if f.updateErr != nil {
		return nil, f.updateErr
	}
	for i := range f.offers {
		if f.offers[i].OfferID == offerID {
			f.offers[i].BasePrice = req.BasePrice
			f.offers[i].DiscountRate = decimal.NewNullDecimal(req.DiscountRate)
			f.offers[i].Status = req.Status
			o := f.offers[i]
			return &o, nil
		}
	}
	return nil, client.ErrNotFound
}

func (f *fakeAPI) DeleteOffer(_ context.Context, offerID int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deletes = append(f.deletes, offerID)
	if f.deleteErr != nil {
		return f.deleteErr
	}
	f.offers = slices.DeleteFunc(f.offers, func(o models.Offer) bool { return o.OfferID == offerID })
	return nil
}

func (f *fakeAPI) ApproveOffer(_ context.Context, offerID int64) (*models.Offer, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.approvals = append(f.approvals, offerID)
	for i := range f.offers {
		if f.offers[i].OfferID == offerID {
			f.offers[i].IsCustomerApproved = true
			o := f.offers[i]
			return &o, nil
		}
	}
	return nil, client.ErrNotFound
}

func (f *fakeAPI) CreateOffer(_ context.Context, req models.QuoteRequest) (*models.Offer, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	o := models.Offer{
		OfferID:        int64(100 + len(f.offers)),
		Customer:       &models.Customer{CustomerID: req.CustomerID},
		CoverageAmount: req.CoverageAmount,
		Status:         models.OfferPending,
		CreatedAt:      models.NewDate(time.Now()),
	}
	f.offers = append(f.offers, o)
	return &o, nil
}

func (f *fakeAPI) CreateClaim(_ context.Context, req models.ClaimRequest) (*models.Claim, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	c := models.Claim{ClaimID: int64(900 + len(f.claims)), PolicyNumber: req.PolicyNumber, Status: models.ClaimPending}
	f.claims = append(f.claims, c)
	return &c, nil
}

func (f *fakeAPI) ListAgents(_ context.Context) ([]models.Agent, error) {
	return slices.Clone(f.agents), nil
}

func (f *fakeAPI) ListCustomers(_ context.Context) ([]models.Customer, error) {
	return slices.Clone(f.customers), nil
}

func (f *fakeAPI) ListOffers(_ context.Context) ([]models.Offer, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return slices.Clone(f.offers), nil
}

func (f *fakeAPI) blocked() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.waiting
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func at(s string) models.Date {
	d, err := models.ParseDate(s)
	if err != nil {
		panic(err)
	}
	return d
}

func sampleOffers() []models.Offer {
	return []models.Offer{
		{
			OfferID:        1,
			Status:         models.OfferPending,
			BasePrice:      dec("800"),
			DiscountRate:   decimal.NewNullDecimal(decimal.Zero),
			CoverageAmount: models.CoverageBasic,
			CreatedAt:      at("2024-03-01T10:00:00Z"),
			Customer:       &models.Customer{CustomerID: 7, Name: "Ayşe Yılmaz"},
			InsuranceType:  &models.InsuranceType{Name: "Kasko"},
			FinalPrice:     dec("800"),
		},
		{
			OfferID:        2,
			Status:         models.OfferApproved,
			BasePrice:      dec("1200"),
			DiscountRate:   decimal.NewNullDecimal(dec("10")),
			CoverageAmount: models.CoverageMedium,
			CreatedAt:      at("2024-03-02T10:00:00Z"),
			Customer:       &models.Customer{CustomerID: 7, Name: "Ayşe Yılmaz"},
			FinalPrice:     dec("1350"),
		},
	}
}

func sampleClaims() []models.Claim {
	return []models.Claim{
		{ClaimID: 1234, PolicyNumber: "POL-1", Status: models.ClaimPending, Type: "Theft", CreatedAt: at("2024-01-01")},
		{ClaimID: 5678, PolicyNumber: "POL-2", Status: models.ClaimPending, Type: "Fire", CreatedAt: at("2024-01-02")},
		{ClaimID: 91234, PolicyNumber: "POL-3", Status: models.ClaimApproved, Type: "Flood", CreatedAt: at("2024-01-03")},
	}
}

func offerIDs(offers []models.Offer) []int64 {
	out := make([]int64, 0, len(offers))
	for _, o := range offers {
		out = append(out, o.OfferID)
	}
	return out
}

func claimIDs(claims []models.Claim) []int64 {
	out := make([]int64, 0, len(claims))
	for _, c := range claims {
		out = append(out, c.ClaimID)
	}
	return out
}
