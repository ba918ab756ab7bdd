package domain

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	shared "github.com/anandgupta07/coach-sub000/internal/shared/domain"
)

// Details are the buyer contact fields collected before payment.
type Details struct {
	Name          string `json:"name" validate:"required,max=120"`
	ContactNumber string `json:"contactNumber" validate:"required,len=10,number"`
	Email         string `json:"email" validate:"required,email,max=254"`
	Goal          string `json:"goal" validate:"required,max=120"`
	Notes         string `json:"notes,omitempty" validate:"max=1000"`
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Normalize trims surrounding whitespace from every field.
func (d Details) Normalize() Details {
	return Details{
		Name:          strings.TrimSpace(d.Name),
		ContactNumber: strings.TrimSpace(d.ContactNumber),
		Email:         strings.TrimSpace(d.Email),
		Goal:          strings.TrimSpace(d.Goal),
		Notes:         strings.TrimSpace(d.Notes),
	}
}

// Validate returns a ValidationError with one entry per invalid field, in field order.
func (d Details) Validate() error {
	err := validate.Struct(d)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}

	fields := make([]shared.FieldError, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, shared.FieldError{Field: fe.Field(), Message: fieldMessage(fe)})
	}
	return shared.ValidationError(fields)
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "len", "number":
		// Only the contact number carries these tags.
		return "must be a 10-digit number"
	case "max":
		return "must be at most " + fe.Param() + " characters"
	default:
		return "is invalid"
	}
}
