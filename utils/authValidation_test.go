package utils

import (
	"MediCitas/models"
	"strings"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fields(t *testing.T, err error) map[string]string {
	t.Helper()
	var verr *models.ValidationError
	require.True(t, errors.As(err, &verr), "expected a validation error, got %v", err)
	return verr.Fields
}

func TestValidateIdentity(t *testing.T) {
	assert.NoError(t, ValidateIdentity("ana", "ana@example.com", "Ana"))

	got := fields(t, ValidateIdentity("a", "ana", ""))
	assert.Contains(t, got, "login")
	assert.Contains(t, got, "email")
	assert.Contains(t, got, "nombre")
}

func TestValidatePassword(t *testing.T) {
	assert.NoError(t, ValidatePassword("Secreta#2025"))

	tests := map[string]string{
		"blank":      "",
		"short":      "Ab1#",
		"no upper":   "secreta#2025",
		"no digit":   "Secreta#abcd",
		"no special": "Secreta2025",
	}
	for name, password := range tests {
		t.Run(name, func(t *testing.T) {
			assert.Contains(t, fields(t, ValidatePassword(password)), "password")
		})
	}
}

func TestValidateBooking(t *testing.T) {
	when := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	assert.NoError(t, ValidateBooking(when, "", ""))
	assert.NoError(t, ValidateBooking(when, "ana@example.com", "control"))

	got := fields(t, ValidateBooking(time.Time{}, "ana", strings.Repeat("x", 501)))
	assert.Contains(t, got, "fecha_hora")
	assert.Contains(t, got, "correo_contacto")
	assert.Contains(t, got, "motivo")

	assert.Contains(t, fields(t, ValidateReschedule(time.Time{})), "fecha_hora")
}

func TestValidateInvoiceAndPerform(t *testing.T) {
	assert.NoError(t, ValidateInvoice(50000))
	assert.Contains(t, fields(t, ValidateInvoice(0)), "valor_pagar")
	assert.Contains(t, fields(t, ValidateInvoice(-3)), "valor_pagar")

	assert.NoError(t, ValidatePerform("gripe", ""))
	assert.Contains(t, fields(t, ValidatePerform("", "reposo")), "diagnostico")
}

func TestAsValidationError(t *testing.T) {
	assert.NoError(t, AsValidationError(nil))

	got := fields(t, AsValidationError(errors.New("boom")))
	assert.Equal(t, "boom", got["input"])
}
