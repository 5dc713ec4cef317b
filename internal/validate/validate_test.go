package validate

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"insurance-portal/internal/models"
)

func fieldsOf(t *testing.T, err error) map[string]string {
	t.Helper()
	var verr *Error
	require.True(t, errors.As(err, &verr), "expected *validate.Error, got %v", err)
	out := map[string]string{}
	for _, d := range verr.Details {
		out[d.Field] = d.Issue
	}
	return out
}

func TestValidTCNumber(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"10000000146", true},
		{"12345678950", true},
		{"12345678951", false},
		{"02345678950", false},
		{"1234567895", false},
		{"1234567895a", false},
		{"", false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, ValidTCNumber(tt.in))
		})
	}
}

func TestValidPhone(t *testing.T) {
	assert.True(t, ValidPhone("5321234567"))
	assert.True(t, ValidPhone("05321234567"))
	assert.True(t, ValidPhone("+90 532 123 45 67"))
	assert.True(t, ValidPhone("(0532) 123-4567"))
	assert.False(t, ValidPhone("532123456"))
	assert.False(t, ValidPhone("+1 532 123 45 67"))
	assert.False(t, ValidPhone("0032123456"))
}

func TestLoginForm(t *testing.T) {
	v := New()
	require.NoError(t, v.Struct(LoginForm{Email: "a@b.test", Password: "secret"}))

	fields := fieldsOf(t, v.Struct(LoginForm{Email: "nope", Password: "123"}))
	assert.Equal(t, "must be a valid email address", fields["email"])
	assert.Equal(t, "must be at least 6 characters", fields["password"])
}

func TestRegisterForm(t *testing.T) {
	v := New()
	valid := RegisterForm{
		FirstName:       "Elif",
		LastName:        "Demir",
		Email:           "elif@example.test",
		TCNumber:        "10000000146",
		Phone:           "05321234567",
		Password:        "secret1",
		ConfirmPassword: "secret1",
	}
	require.NoError(t, v.Struct(valid))

	bad := valid
	bad.TCNumber = "10000000147"
	bad.Phone = "123"
	bad.ConfirmPassword = "secret2"
	bad.FirstName = ""
	fields := fieldsOf(t, v.Struct(bad))
	assert.Equal(t, "must be a valid TC identity number", fields["tcNumber"])
	assert.Equal(t, "must be a valid phone number", fields["phone"])
	assert.Equal(t, "does not match", fields["confirmPassword"])
	assert.Equal(t, "is required", fields["firstName"])
}

func TestQuoteSteps(t *testing.T) {
	v := New()
	v.now = func() time.Time { return time.Date(2026, 5, 10, 15, 0, 0, 0, time.UTC) }

	form := QuoteForm{
		Personal: QuotePersonal{FullName: "Elif Demir", Email: "elif@example.test", Phone: "5321234567", TCNumber: "12345678950"},
		Coverage: QuoteCoverage{InsuranceTypeID: 2, CoverageAmount: int(models.CoverageMedium)},
		Details:  QuoteDetails{RequestedStartDate: models.NewDate(time.Date(2026, 5, 10, 0, 0, 0, 0, time.UTC))},
	}
	require.NoError(t, v.Quote(form))

	t.Run("coverage", func(t *testing.T) {
		bad := form
		bad.Coverage = QuoteCoverage{InsuranceTypeID: 0, CoverageAmount: 30}
		fields := fieldsOf(t, v.QuoteStep(QuoteStepCoverage, bad))
		assert.Equal(t, "must be selected", fields["insuranceTypeId"])
		assert.Equal(t, "must be one of 0, 25, 40", fields["coverageAmount"])
		// an earlier step does not look at later fields
		assert.NoError(t, v.QuoteStep(QuoteStepPersonal, bad))
	})

	t.Run("start date in the past", func(t *testing.T) {
		bad := form
		bad.Details.RequestedStartDate = models.NewDate(time.Date(2026, 5, 9, 0, 0, 0, 0, time.UTC))
		fields := fieldsOf(t, v.QuoteStep(QuoteStepDetails, bad))
		assert.Equal(t, "must not be in the past", fields["requestedStartDate"])
	})

	t.Run("missing start date", func(t *testing.T) {
		bad := form
		bad.Details.RequestedStartDate = models.Date{}
		fields := fieldsOf(t, v.Quote(bad))
		assert.Contains(t, fields, "requestedStartDate")
	})

	t.Run("unknown step", func(t *testing.T) {
		fields := fieldsOf(t, v.QuoteStep(9, form))
		assert.Contains(t, fields, "step")
	})
}

func TestQuoteForm_Request(t *testing.T) {
	form := QuoteForm{
		Coverage: QuoteCoverage{InsuranceTypeID: 3, CoverageAmount: int(models.CoveragePremium)},
		Details:  QuoteDetails{Answers: map[string]any{"plate": "34 ABC 12"}},
	}
	req := form.Request(7)
	assert.Equal(t, int64(7), req.CustomerID)
	assert.Equal(t, models.CoveragePremium, req.CoverageAmount)
	assert.Equal(t, "34 ABC 12", req.CustomerAdditionalInfo.Fields["plate"])
}

func TestErrorMessage(t *testing.T) {
	err := &Error{Details: []models.ErrorDetail{{Field: "email", Issue: "is required"}, {Field: "password", Issue: "is required"}}}
	assert.Equal(t, "validation failed: email is required; password is required", err.Error())
}
