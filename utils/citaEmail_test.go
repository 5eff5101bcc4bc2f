package utils

import (
	"MediCitas/models"
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMailer_BuildCitaMessage(t *testing.T) {
	m := NewMailer(SMTPConfig{Host: "localhost", Port: 2525, User: "citas@medicitas.test"})
	cita := models.Cita{
		ID:             1,
		FechaHora:      time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC),
		CorreoContacto: "ana@example.com",
		Motivo:         "control <anual>",
		PacienteNombre: "Ana",
		MedicoNombre:   "Dr. Ruiz",
		ClinicaNombre:  "San Rafael",
	}

	msg, err := m.BuildCitaMessage(cita, "Confirmación de cita")
	require.NoError(t, err)
	assert.Equal(t, []string{"ana@example.com"}, msg.GetHeader("To"))
	assert.Equal(t, []string{"citas@medicitas.test"}, msg.GetHeader("From"))

	var out bytes.Buffer
	_, err = msg.WriteTo(&out)
	require.NoError(t, err)
	assert.Contains(t, out.String(), "San Rafael")
	assert.Contains(t, out.String(), "01/03/2025 10:00")
}

func TestMailer_SkipsCitaWithoutContact(t *testing.T) {
	m := NewMailer(SMTPConfig{Host: "localhost", Port: 1})
	assert.NoError(t, m.NotifyCita(context.Background(), models.Cita{ID: 1}, "Confirmación de cita"))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := m.NotifyCita(ctx, models.Cita{ID: 1, CorreoContacto: "ana@example.com"}, "Confirmación de cita")
	assert.ErrorIs(t, err, context.Canceled)
}
