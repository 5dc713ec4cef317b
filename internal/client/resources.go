package client

import (
	"context"
	"fmt"
	"net/http"

	"insurance-portal/internal/models"
)

func (c *PortalClient) GetAgentByUserID(ctx context.Context, userID int64) (*models.Agent, error) {
	var agent models.Agent
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/api/agents/user/%d", userID), nil, &agent); err != nil {
		return nil, fmt.Errorf("failed to get agent for user %d: %w", userID, err)
	}
	return &agent, nil
}

func (c *PortalClient) GetCustomerByUserID(ctx context.Context, userID int64) (*models.Customer, error) {
	var customer models.Customer
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/api/customers/user/%d", userID), nil, &customer); err != nil {
		return nil, fmt.Errorf("failed to get customer for user %d: %w", userID, err)
	}
	return &customer, nil
}

// GetOffersByAgentDepartment lists every offer of the agent's department
func (c *PortalClient) GetOffersByAgentDepartment(ctx context.Context, agentID int64) ([]models.Offer, error) {
	var offers []models.Offer
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/api/offers/agent/%d/department", agentID), nil, &offers); err != nil {
		return nil, fmt.Errorf("failed to get department offers: %w", err)
	}
	return offers, nil
}

// GetPendingOffersByAgentDepartment lists only the department's pending offers
func (c *PortalClient) GetPendingOffersByAgentDepartment(ctx context.Context, agentID int64) ([]models.Offer, error) {
	var offers []models.Offer
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/api/offers/agent/%d/department/pending", agentID), nil, &offers); err != nil {
		return nil, fmt.Errorf("failed to get pending department offers: %w", err)
	}
	return offers, nil
}

func (c *PortalClient) GetClaimsByAgentDepartment(ctx context.Context, agentID int64) ([]models.Claim, error) {
	var claims []models.Claim
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/api/claims/agent/%d/department", agentID), nil, &claims); err != nil {
		return nil, fmt.Errorf("failed to get department claims: %w", err)
	}
	return claims, nil
}

// UpdateOffer sends an agent's edit; the API recomputes and returns the final price
func (c *PortalClient) UpdateOffer(ctx context.Context, offerID int64, req models.UpdateOfferRequest) (*models.Offer, error) {
	var offer models.Offer
	if err := c.do(ctx, http.MethodPut, fmt.Sprintf("/api/offers/%d", offerID), req, &offer); err != nil {
		return nil, fmt.Errorf("failed to update offer %d: %w", offerID, err)
	}
	return &offer, nil
}

func (c *PortalClient) DeleteOffer(ctx context.Context, offerID int64) error {
	if err := c.do(ctx, http.MethodDelete, fmt.Sprintf("/api/offers/%d", offerID), nil, nil); err != nil {
		return fmt.Errorf("failed to delete offer %d: %w", offerID, err)
	}
	return nil
}

// CreateOffer submits a quote request; the API answers with the pending offer
func (c *PortalClient) CreateOffer(ctx context.Context, req models.QuoteRequest) (*models.Offer, error) {
	var offer models.Offer
	if err := c.do(ctx, http.MethodPost, "/api/offers", req, &offer); err != nil {
		return nil, fmt.Errorf("failed to create offer: %w", err)
	}
	return &offer, nil
}

func (c *PortalClient) GetOffersByCustomer(ctx context.Context, customerID int64) ([]models.Offer, error) {
	var offers []models.Offer
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/api/offers/customer/%d", customerID), nil, &offers); err != nil {
		return nil, fmt.Errorf("failed to get customer offers: %w", err)
	}
	return offers, nil
}

// ApproveOffer records the customer's acceptance of an approved offer
func (c *PortalClient) ApproveOffer(ctx context.Context, offerID int64) (*models.Offer, error) {
	var offer models.Offer
	if err := c.do(ctx, http.MethodPost, fmt.Sprintf("/api/offers/%d/approve", offerID), nil, &offer); err != nil {
		return nil, fmt.Errorf("failed to approve offer %d: %w", offerID, err)
	}
	return &offer, nil
}

func (c *PortalClient) GetClaimsByCustomer(ctx context.Context, customerID int64) ([]models.Claim, error) {
	var claims []models.Claim
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/api/claims/customer/%d", customerID), nil, &claims); err != nil {
		return nil, fmt.Errorf("failed to get customer claims: %w", err)
	}
	return claims, nil
}

func (c *PortalClient) CreateClaim(ctx context.Context, req models.ClaimRequest) (*models.Claim, error) {
	var claim models.Claim
	if err := c.do(ctx, http.MethodPost, "/api/claims", req, &claim); err != nil {
		return nil, fmt.Errorf("failed to create claim: %w", err)
	}
	return &claim, nil
}

func (c *PortalClient) ListAgents(ctx context.Context) ([]models.Agent, error) {
	var agents []models.Agent
	if err := c.do(ctx, http.MethodGet, "/api/agents", nil, &agents); err != nil {
		return nil, fmt.Errorf("failed to list agents: %w", err)
	}
	return agents, nil
}

func (c *PortalClient) ListCustomers(ctx context.Context) ([]models.Customer, error) {
	var customers []models.Customer
	if err := c.do(ctx, http.MethodGet, "/api/customers", nil, &customers); err != nil {
		return nil, fmt.Errorf("failed to list customers: %w", err)
	}
	return customers, nil
}

func (c *PortalClient) ListOffers(ctx context.Context) ([]models.Offer, error) {
	var offers []models.Offer
	if err := c.do(ctx, http.MethodGet, "/api/offers", nil, &offers); err != nil {
		return nil, fmt.Errorf("failed to list offers: %w", err)
	}
	return offers, nil
}

func (c *PortalClient) ListInsuranceTypes(ctx context.Context) ([]models.InsuranceType, error) {
	var types []models.InsuranceType
	if err := c.do(ctx, http.MethodGet, "/api/insurance-types", nil, &types); err != nil {
		return nil, fmt.Errorf("failed to list insurance types: %w", err)
	}
	return types, nil
}
