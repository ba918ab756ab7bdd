package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	shared "github.com/anandgupta07/coach-sub000/internal/shared/domain"
)

func TestDetails_Validate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Details)
		fields []string
	}{
		{"valid", func(*Details) {}, nil},
		{"notes are optional", func(d *Details) { d.Notes = "" }, nil},
		{"empty form", func(d *Details) { *d = Details{} }, []string{"name", "contactNumber", "email", "goal"}},
		{"contact too short", func(d *Details) { d.ContactNumber = "987654321" }, []string{"contactNumber"}},
		{"contact too long", func(d *Details) { d.ContactNumber = "98765432100" }, []string{"contactNumber"}},
		{"contact with separators", func(d *Details) { d.ContactNumber = "98765-4321" }, []string{"contactNumber"}},
		{"contact with sign", func(d *Details) { d.ContactNumber = "+987654321" }, []string{"contactNumber"}},
		{"contact with inner space", func(d *Details) { d.ContactNumber = "98765 4321" }, []string{"contactNumber"}},
		{"email without domain", func(d *Details) { d.Email = "asha@" }, []string{"email"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := validDetails()
			d.Notes = "Knee injury in 2024"
			tt.mutate(&d)

			err := d.Validate()
			if tt.fields == nil {
				assert.NoError(t, err)
				return
			}

			var de *shared.Error
			require.ErrorAs(t, err, &de)
			var got []string
			for _, f := range de.Fields {
				got = append(got, f.Field)
			}
			assert.Equal(t, tt.fields, got)
		})
	}
}

func TestDetails_Normalize(t *testing.T) {
	d := Details{Name: "  Asha ", ContactNumber: " 9876543210 ", Email: "asha@example.com\n", Goal: " Strength "}.Normalize()
	assert.Equal(t, "Asha", d.Name)
	assert.Equal(t, "9876543210", d.ContactNumber)
	assert.NoError(t, d.Validate())
}

func TestState_Transitions(t *testing.T) {
	assert.True(t, StateCart.CanAdvanceTo(StateDetails))
	assert.False(t, StateCart.CanAdvanceTo(StatePayment))
	assert.True(t, StatePayment.CanGoBackTo(StateDetails))
	assert.False(t, StateSuccess.CanGoBackTo(StatePayment))
	assert.False(t, State("shipping").IsValid())
}
