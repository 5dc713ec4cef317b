package dashboard

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"

	"golang.org/x/sync/errgroup"
	"golang.org/x/text/language"

	"insurance-portal/internal/client"
	"insurance-portal/internal/models"
	"insurance-portal/internal/table"
)

// CustomerAPI is the slice of the portal client the customer dashboard uses
type CustomerAPI interface {
	GetCustomerByUserID(ctx context.Context, userID int64) (*models.Customer, error)
	GetOffersByCustomer(ctx context.Context, customerID int64) ([]models.Offer, error)
	GetClaimsByCustomer(ctx context.Context, customerID int64) ([]models.Claim, error)
	ApproveOffer(ctx context.Context, offerID int64) (*models.Offer, error)
	CreateOffer(ctx context.Context, req models.QuoteRequest) (*models.Offer, error)
	CreateClaim(ctx context.Context, req models.ClaimRequest) (*models.Claim, error)
}

// CustomerDashboard lists a customer's own offers and claims
type CustomerDashboard struct {
	api         CustomerAPI
	user        models.User
	logger      *slog.Logger
	offerSchema *table.Schema[models.Offer]
	claimSchema *table.Schema[models.Claim]

	mu       sync.RWMutex
	life     lifecycle
	customer *models.Customer
	offers   []models.Offer
	claims   []models.Claim
}

func NewCustomerDashboard(api CustomerAPI, user models.User, lang language.Tag, logger *slog.Logger) *CustomerDashboard {
	if logger == nil {
		logger = slog.Default()
	}
	return &CustomerDashboard{
		api:         api,
		user:        user,
		logger:      logger.With("dashboard", "customer", "user_id", user.UserID),
		offerSchema: OfferSchema(lang),
		claimSchema: ClaimSchema(lang),
	}
}

// Mount resolves the customer record and loads the customer's data
func (d *CustomerDashboard) Mount(ctx context.Context) error {
	customer, err := d.api.GetCustomerByUserID(ctx, d.user.UserID)
	if errors.Is(err, client.ErrNotFound) || (err == nil && customer == nil) {
		d.logger.Warn("User has no customer record")
		return ErrNoCustomerRecord
	}
	if err != nil {
		return fmt.Errorf("failed to load customer: %w", err)
	}

	d.mu.Lock()
	if d.life.unmounted {
		d.mu.Unlock()
		return ErrUnmounted
	}
	d.customer = customer
	d.mu.Unlock()
	return d.Refresh(ctx)
}

// Refresh re-fetches offers and claims, dropping superseded responses
func (d *CustomerDashboard) Refresh(ctx context.Context) error {
	d.mu.Lock()
	if d.customer == nil && !d.life.unmounted {
		d.mu.Unlock()
		return ErrNotMounted
	}
	gen, err := d.life.next()
	if err != nil {
		d.mu.Unlock()
		return err
	}
	customerID := d.customer.CustomerID
	d.mu.Unlock()

	var offers []models.Offer
	var claims []models.Claim
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		offers, err = d.api.GetOffersByCustomer(gctx, customerID)
		return err
	})
	g.Go(func() error {
		var err error
		claims, err = d.api.GetClaimsByCustomer(gctx, customerID)
		return err
	})
	if err := g.Wait(); err != nil {
		return fmt.Errorf("failed to load dashboard: %w", err)
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.life.current(gen) {
		d.logger.Debug("Discarding stale dashboard response", "generation", gen)
		return nil
	}
	d.offers = offers
	d.claims = claims
	return nil
}

func (d *CustomerDashboard) Unmount() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.life.unmount()
}

func (d *CustomerDashboard) Customer() *models.Customer {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.customer
}

// Offers returns every offer of the customer, newest first unless sort says otherwise
func (d *CustomerDashboard) Offers(sort table.SortState) []models.Offer {
	if sort.Key == "" {
		sort = d.offerSchema.DefaultSort
	}
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.offerSchema.Sort(d.offers, sort)
}

func (d *CustomerDashboard) Claims(sort table.SortState) []models.Claim {
	if sort.Key == "" {
		sort = d.claimSchema.DefaultSort
	}
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.claimSchema.Sort(d.claims, sort)
}

// Offer returns one of the customer's own offers
func (d *CustomerDashboard) Offer(offerID int64) (models.Offer, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	i := slices.IndexFunc(d.offers, func(o models.Offer) bool { return o.OfferID == offerID })
	if i < 0 {
		return models.Offer{}, fmt.Errorf("%w: %d", ErrOfferNotFound, offerID)
	}
	return d.offers[i], nil
}

// ApproveOffer accepts an offer the agent has approved, turning it into a policy
func (d *CustomerDashboard) ApproveOffer(ctx context.Context, offerID int64) error {
	offer, err := d.Offer(offerID)
	if err != nil {
		return err
	}
	if offer.Status != models.OfferApproved || offer.IsCustomerApproved {
		return ErrOfferNotApprovable
	}
	if _, err := d.api.ApproveOffer(ctx, offerID); err != nil {
		return fmt.Errorf("failed to approve offer: %w", err)
	}
	d.logger.Info("Offer approved by customer", "offer_id", offerID)
	return d.Refresh(ctx)
}

// SubmitQuote files a quote request for the mounted customer
func (d *CustomerDashboard) SubmitQuote(ctx context.Context, req models.QuoteRequest) (*models.Offer, error) {
	customer := d.Customer()
	if customer == nil {
		return nil, ErrNotMounted
	}
	req.CustomerID = customer.CustomerID
	offer, err := d.api.CreateOffer(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("failed to submit quote: %w", err)
	}
	d.logger.Info("Quote submitted", "offer_id", offer.OfferID, "insurance_type_id", req.InsuranceTypeID)
	return offer, d.Refresh(ctx)
}

// SubmitClaim opens a claim against one of the customer's policies
func (d *CustomerDashboard) SubmitClaim(ctx context.Context, req models.ClaimRequest) (*models.Claim, error) {
	if d.Customer() == nil {
		return nil, ErrNotMounted
	}
	claim, err := d.api.CreateClaim(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("failed to submit claim: %w", err)
	}
	d.logger.Info("Claim submitted", "claim_id", claim.ClaimID, "policy_number", req.PolicyNumber)
	return claim, d.Refresh(ctx)
}
