package utils

import (
	"MediCitas/models"
	"bytes"
	"context"
	"fmt"
	"html/template"

	"gopkg.in/gomail.v2"
)

// SMTPConfig holds the outgoing mail server settings.
type SMTPConfig struct {
	Host string
	Port int
	User string
	Pass string
}

// Mailer sends cita confirmations over SMTP.
type Mailer struct {
	cfg    SMTPConfig
	dialer *gomail.Dialer
}

func NewMailer(cfg SMTPConfig) *Mailer {
	return &Mailer{cfg: cfg, dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.User, cfg.Pass)}
}

var citaTemplate = template.Must(template.New("cita").Parse(`
<!DOCTYPE html>
<html>
<head>
	<title>{{.Titulo}}</title>
	<style>
		body { font-family: Arial, sans-serif; background-color: #f4f4f4; }
		.container { background-color: #ffffff; margin: 20px auto; padding: 20px; border-radius: 8px; max-width: 600px; }
		.dato { font-weight: bold; color: #007bff; }
	</style>
</head>
<body>
	<div class="container">
		<h1>{{.Titulo}}</h1>
		<p>Paciente: <span class="dato">{{.Cita.PacienteNombre}}</span></p>
		<p>Médico: <span class="dato">{{.Cita.MedicoNombre}}</span></p>
		<p>Clínica: <span class="dato">{{.Cita.ClinicaNombre}}</span></p>
		<p>Fecha: <span class="dato">{{.Fecha}}</span></p>
		{{if .Cita.Motivo}}<p>Motivo: {{.Cita.Motivo}}</p>{{end}}
	</div>
</body>
</html>
`))

// BuildCitaMessage renders the confirmation for cita. subject names the event.
func (m *Mailer) BuildCitaMessage(cita models.Cita, subject string) (*gomail.Message, error) {
	var body bytes.Buffer
	err := citaTemplate.Execute(&body, struct {
		Titulo string
		Fecha  string
		Cita   models.Cita
	}{
		Titulo: subject,
		Fecha:  cita.FechaHora.Format("02/01/2006 15:04"),
		Cita:   cita,
	})
	if err != nil {
		return nil, err
	}

	msg := gomail.NewMessage()
	msg.SetHeader("From", m.cfg.User)
	msg.SetHeader("To", cita.CorreoContacto)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/plain", fmt.Sprintf("%s: %s con %s en %s, %s",
		subject, cita.PacienteNombre, cita.MedicoNombre, cita.ClinicaNombre,
		cita.FechaHora.Format("02/01/2006 15:04")))
	msg.AddAlternative("text/html", body.String())
	return msg, nil
}

// NotifyCita mails the contact address of cita. Citas without one are skipped.
func (m *Mailer) NotifyCita(ctx context.Context, cita models.Cita, subject string) error {
	if cita.CorreoContacto == "" {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	msg, err := m.BuildCitaMessage(cita, subject)
	if err != nil {
		return err
	}
	return m.dialer.DialAndSend(msg)
}
