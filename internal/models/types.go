package models

import "time"

// ErrorResponse represents the standard error response format
type ErrorResponse struct {
	Code    string        `json:"code"`
	Message string        `json:"message"`
	Details []ErrorDetail `json:"details,omitempty"`
}

type ErrorDetail struct {
	Field string `json:"field"`
	Issue string `json:"issue"`
}

// HealthResponse represents a health check response
type HealthResponse struct {
	Status    string    `json:"status"`
	Service   string    `json:"service,omitempty"`
	Version   string    `json:"version,omitempty"`
	Timestamp time.Time `json:"timestamp,omitempty"`
}

// LoginRequest is the body of POST /api/auth/login
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// RegisterRequest is the body of POST /api/auth/register
type RegisterRequest struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	TCNumber  string `json:"tcNumber"`
	Phone     string `json:"phone"`
	Password  string `json:"password"`
}

// AuthResponse is returned by the login and register endpoints
type AuthResponse struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}

// QuoteRequest is submitted by the quote wizard to create a pending offer
type QuoteRequest struct {
	CustomerID             int64          `json:"customerId"`
	InsuranceTypeID        int64          `json:"insuranceTypeId"`
	CoverageAmount         CoverageTier   `json:"coverageAmount"`
	RequestedStartDate     Date           `json:"requestedStartDate"`
	Description            string         `json:"description,omitempty"`
	CustomerAdditionalInfo AdditionalInfo `json:"customerAdditionalInfo"`
}

// ClaimRequest is submitted by a customer to open a claim against a policy
type ClaimRequest struct {
	PolicyNumber string `json:"policyNumber"`
	Type         string `json:"type"`
	Description  string `json:"description"`
	IncidentDate Date   `json:"incidentDate"`
}
