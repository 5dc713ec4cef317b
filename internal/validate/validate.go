// Package validate checks portal forms before anything is sent to the API.
package validate

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"insurance-portal/internal/models"
)

// Error lists every field problem of a form
type Error struct {
	Details []models.ErrorDetail
}

func (e *Error) Error() string {
	parts := make([]string, 0, len(e.Details))
	for _, d := range e.Details {
		parts = append(parts, d.Field+" "+d.Issue)
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

var phonePattern = regexp.MustCompile(`^(\+90|0)?[1-9]\d{9}$`)

// Validator wraps a configured validator.Validate
type Validator struct {
	v   *validator.Validate
	now func() time.Time
}

// New builds a validator with the portal's custom rules registered
func New() *Validator {
	val := &Validator{v: validator.New(validator.WithRequiredStructEnabled()), now: time.Now}

	val.v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" || name == "" {
			return f.Name
		}
		return name
	})
	val.v.RegisterCustomTypeFunc(func(v reflect.Value) any {
		if d, ok := v.Interface().(models.Date); ok {
			return d.Time
		}
		return nil
	}, models.Date{})

	must(val.v.RegisterValidation("tckn", func(fl validator.FieldLevel) bool {
		return ValidTCNumber(fl.Field().String())
	}))
	must(val.v.RegisterValidation("trphone", func(fl validator.FieldLevel) bool {
		return ValidPhone(fl.Field().String())
	}))
	must(val.v.RegisterValidation("notpast", func(fl validator.FieldLevel) bool {
		t, ok := fl.Field().Interface().(time.Time)
		if !ok || t.IsZero() {
			return false
		}
		today := val.now().UTC().Truncate(24 * time.Hour)
		return !t.UTC().Truncate(24 * time.Hour).Before(today)
	}))
	return val
}

func must(err error) {
	if err != nil {
		panic(err)
	}
}

// Struct validates form and converts failures into an *Error
func (val *Validator) Struct(form any) error {
	err := val.v.Struct(form)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return fmt.Errorf("failed to validate form: %w", err)
	}
	out := &Error{Details: make([]models.ErrorDetail, 0, len(fieldErrs))}
	for _, fe := range fieldErrs {
		out.Details = append(out.Details, models.ErrorDetail{Field: fe.Field(), Issue: issue(fe)})
	}
	return out
}

func issue(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "min":
		return fmt.Sprintf("must be at least %s characters", fe.Param())
	case "max":
		return fmt.Sprintf("must be at most %s characters", fe.Param())
	case "eqfield":
		return "does not match"
	case "tckn":
		return "must be a valid TC identity number"
	case "trphone":
		return "must be a valid phone number"
	case "gt":
		return "must be selected"
	case "oneof":
		return "must be one of " + strings.ReplaceAll(fe.Param(), " ", ", ")
	case "notpast":
		return "must not be in the past"
	}
	return "is invalid"
}

// ValidTCNumber checks a Turkish identity number: 11 digits, no leading zero,
// and the two trailing check digits.
func ValidTCNumber(s string) bool {
	if len(s) != 11 || s[0] == '0' {
		return false
	}
	var d [11]int
	for i, r := range s {
		if r < '0' || r > '9' {
			return false
		}
		d[i] = int(r - '0')
	}
	odd := d[0] + d[2] + d[4] + d[6] + d[8]
	even := d[1] + d[3] + d[5] + d[7]
	if ((odd*7-even)%10+10)%10 != d[9] {
		return false
	}
	sum := 0
	for _, n := range d[:10] {
		sum += n
	}
	return sum%10 == d[10]
}

// ValidPhone accepts a ten digit number with an optional +90 or 0 prefix.
// Spaces, dashes and parentheses are ignored.
func ValidPhone(s string) bool {
	cleaned := strings.Map(func(r rune) rune {
		switch r {
		case ' ', '-', '(', ')':
			return -1
		}
		return r
	}, s)
	return phonePattern.MatchString(cleaned)
}
