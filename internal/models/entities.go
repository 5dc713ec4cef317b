package models

import (
	"strings"

	"github.com/shopspring/decimal"
)

// User is the authenticated portal account
type User struct {
	UserID    int64  `json:"userId"`
	Email     string `json:"email"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Role      Role   `json:"role"`
}

// FullName joins first and last name
func (u User) FullName() string {
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}

// InsuranceType is a product line; an agent's department is an insurance type
type InsuranceType struct {
	InsuranceTypeID int64  `json:"insuranceTypeId"`
	Name            string `json:"name"`
	Description     string `json:"description,omitempty"`
}

// Contact is a named person reference embedded in offers and claims
type Contact struct {
	Name  string `json:"name,omitempty"`
	Email string `json:"email,omitempty"`
	Phone string `json:"phone,omitempty"`
}

// Customer is a policy holder
type Customer struct {
	CustomerID int64  `json:"customerId"`
	UserID     int64  `json:"userId,omitempty"`
	Name       string `json:"name"`
	Email      string `json:"email"`
	Phone      string `json:"phone,omitempty"`
	TCNumber   string `json:"tcNumber,omitempty"`
	Address    string `json:"address,omitempty"`
}

// Agent is a broker assigned to one department
type Agent struct {
	AgentID    int64          `json:"agentId"`
	UserID     int64          `json:"userId,omitempty"`
	Name       string         `json:"name"`
	Email      string         `json:"email"`
	Phone      string         `json:"phone,omitempty"`
	Department *InsuranceType `json:"department,omitempty"`
}

// Offer is a priced insurance proposal
type Offer struct {
	OfferID                int64               `json:"offerId"`
	Description            string              `json:"description"`
	Customer               *Customer           `json:"customer,omitempty"`
	InsuranceType          *InsuranceType      `json:"insuranceType,omitempty"`
	BasePrice              decimal.Decimal     `json:"basePrice"`
	DiscountRate           decimal.NullDecimal `json:"discountRate"`
	FinalPrice             decimal.Decimal     `json:"finalPrice"`
	CoverageAmount         CoverageTier        `json:"coverageAmount"`
	RequestedStartDate     Date                `json:"requestedStartDate"`
	ValidUntil             Date                `json:"validUntil"`
	Status                 OfferStatus         `json:"status"`
	IsCustomerApproved     bool                `json:"isCustomerApproved"`
	CreatedAt              Date                `json:"createdAt"`
	CustomerAdditionalInfo AdditionalInfo      `json:"customerAdditionalInfo"`
	PolicyPdfURL           string              `json:"policyPdfUrl,omitempty"`
}

// CustomerName returns the customer's name or "" when the reference is missing
func (o Offer) CustomerName() string {
	if o.Customer == nil {
		return ""
	}
	return o.Customer.Name
}

func (o Offer) CustomerEmail() string {
	if o.Customer == nil {
		return ""
	}
	return o.Customer.Email
}

func (o Offer) InsuranceTypeName() string {
	if o.InsuranceType == nil {
		return ""
	}
	return o.InsuranceType.Name
}

// Editable reports whether an agent may still change the offer
func (o Offer) Editable() bool {
	return !o.IsCustomerApproved
}

// Claim is a customer-submitted incident report against a policy
type Claim struct {
	ClaimID        int64               `json:"claimId"`
	PolicyNumber   string              `json:"policyNumber"`
	CreatedBy      *Contact            `json:"createdBy,omitempty"`
	Type           string              `json:"type"`
	Description    string              `json:"description"`
	IncidentDate   Date                `json:"incidentDate"`
	Status         ClaimStatus         `json:"status"`
	ApprovedAmount decimal.NullDecimal `json:"approvedAmount"`
	Notes          *string             `json:"notes"`
	ProcessedBy    *Contact            `json:"processedBy,omitempty"`
	CreatedAt      Date                `json:"createdAt"`
}

// Processed reports whether the claim has left the Pending state
func (c Claim) Processed() bool {
	return c.Status != ClaimPending
}

// UpdateOfferRequest is the body of PUT /api/offers/{id}
type UpdateOfferRequest struct {
	BasePrice    decimal.Decimal `json:"basePrice"`
	DiscountRate decimal.Decimal `json:"discountRate"`
	Status       OfferStatus     `json:"status,omitempty"`
	FinalPrice   decimal.Decimal `json:"finalPrice"`
}
