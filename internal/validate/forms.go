package validate

import (
	"fmt"

	"insurance-portal/internal/models"
)

type LoginForm struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

func (f LoginForm) Request() models.LoginRequest {
	return models.LoginRequest{Email: f.Email, Password: f.Password}
}

type RegisterForm struct {
	FirstName       string `json:"firstName" validate:"required,max=50"`
	LastName        string `json:"lastName" validate:"required,max=50"`
	Email           string `json:"email" validate:"required,email"`
	TCNumber        string `json:"tcNumber" validate:"required,tckn"`
	Phone           string `json:"phone" validate:"required,trphone"`
	Password        string `json:"password" validate:"required,min=6"`
	ConfirmPassword string `json:"confirmPassword" validate:"required,eqfield=Password"`
}

func (f RegisterForm) Request() models.RegisterRequest {
	return models.RegisterRequest{
		FirstName: f.FirstName,
		LastName:  f.LastName,
		Email:     f.Email,
		TCNumber:  f.TCNumber,
		Phone:     f.Phone,
		Password:  f.Password,
	}
}

// Quote wizard steps, in order
const (
	QuoteStepPersonal = iota + 1
	QuoteStepCoverage
	QuoteStepDetails
)

type QuotePersonal struct {
	FullName string `json:"fullName" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Phone    string `json:"phone" validate:"required,trphone"`
	TCNumber string `json:"tcNumber" validate:"required,tckn"`
}

type QuoteCoverage struct {
	InsuranceTypeID int64 `json:"insuranceTypeId" validate:"gt=0"`
	CoverageAmount  int   `json:"coverageAmount" validate:"oneof=0 25 40"`
}

type QuoteDetails struct {
	RequestedStartDate models.Date    `json:"requestedStartDate" validate:"required,notpast"`
	Description        string         `json:"description" validate:"max=2000"`
	Answers            map[string]any `json:"answers"`
}

// QuoteForm is the whole quote wizard
type QuoteForm struct {
	Personal QuotePersonal `json:"personal"`
	Coverage QuoteCoverage `json:"coverage"`
	Details  QuoteDetails  `json:"details"`
}

// QuoteStep validates one step of the wizard; later steps are not looked at
func (val *Validator) QuoteStep(step int, form QuoteForm) error {
	switch step {
	case QuoteStepPersonal:
		return val.Struct(form.Personal)
	case QuoteStepCoverage:
		return val.Struct(form.Coverage)
	case QuoteStepDetails:
		return val.Struct(form.Details)
	}
	return &Error{Details: []models.ErrorDetail{{Field: "step", Issue: fmt.Sprintf("unknown quote step %d", step)}}}
}

// Quote validates every step, stopping at the first failing one
func (val *Validator) Quote(form QuoteForm) error {
	for step := QuoteStepPersonal; step <= QuoteStepDetails; step++ {
		if err := val.QuoteStep(step, form); err != nil {
			return err
		}
	}
	return nil
}

// Request builds the API request for customerID
func (f QuoteForm) Request(customerID int64) models.QuoteRequest {
	return models.QuoteRequest{
		CustomerID:             customerID,
		InsuranceTypeID:        f.Coverage.InsuranceTypeID,
		CoverageAmount:         models.CoverageTier(f.Coverage.CoverageAmount),
		RequestedStartDate:     f.Details.RequestedStartDate,
		Description:            f.Details.Description,
		CustomerAdditionalInfo: models.AdditionalInfo{Fields: f.Details.Answers},
	}
}

type ClaimForm struct {
	PolicyNumber string      `json:"policyNumber" validate:"required"`
	Type         string      `json:"type" validate:"required"`
	Description  string      `json:"description" validate:"required,max=2000"`
	IncidentDate models.Date `json:"incidentDate" validate:"required"`
}

func (f ClaimForm) Request() models.ClaimRequest {
	return models.ClaimRequest{
		PolicyNumber: f.PolicyNumber,
		Type:         f.Type,
		Description:  f.Description,
		IncidentDate: f.IncidentDate,
	}
}
