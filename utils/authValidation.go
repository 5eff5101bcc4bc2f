package utils

import (
	"MediCitas/models"
	"errors"
	"regexp"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
)

var (
	ErrPasswordTooShort   = errors.New("password must be at least 8 characters long")
	ErrPasswordNotComplex = errors.New("password must include at least one uppercase letter, one lowercase letter, one digit, and one special character")
)

var (
	lowercaseRegex = regexp.MustCompile(`[a-z]`)
	uppercaseRegex = regexp.MustCompile(`[A-Z]`)
	digitRegex     = regexp.MustCompile(`\d`)
	specialRegex   = regexp.MustCompile(`[@$!%*?&#._-]`)
)

// ValidateIdentity checks the fields every registration carries.
func ValidateIdentity(login, email, nombre string) error {
	return AsValidationError(validation.Errors{
		"login":  validation.Validate(login, validation.Required, validation.Length(3, 50)),
		"email":  validation.Validate(email, validation.Required, is.Email),
		"nombre": validation.Validate(nombre, validation.Required, validation.Length(1, 120)),
	}.Filter())
}

// ValidatePassword checks a plaintext credential before it is hashed.
func ValidatePassword(password string) error {
	return AsValidationError(validation.Errors{
		"password": validation.Validate(password,
			validation.Required.Error("password cannot be blank"),
			validation.By(validatePassword)),
	}.Filter())
}

func validatePassword(value interface{}) error {
	password, _ := value.(string)
	if len(password) < 8 {
		return ErrPasswordTooShort
	}
	if !lowercaseRegex.MatchString(password) ||
		!uppercaseRegex.MatchString(password) ||
		!digitRegex.MatchString(password) ||
		!specialRegex.MatchString(password) {
		return ErrPasswordNotComplex
	}
	return nil
}

// ValidateBooking checks the input of a new cita.
func ValidateBooking(fechaHora time.Time, correoContacto, motivo string) error {
	return AsValidationError(validation.Errors{
		"fecha_hora":      validateFechaHora(fechaHora),
		"correo_contacto": validation.Validate(correoContacto, is.Email),
		"motivo":          validation.Validate(motivo, validation.Length(0, 500)),
	}.Filter())
}

// ValidateReschedule checks the new instant of a cita.
func ValidateReschedule(fechaHora time.Time) error {
	return AsValidationError(validation.Errors{
		"fecha_hora": validateFechaHora(fechaHora),
	}.Filter())
}

// ValidateInvoice requires a positive amount.
func ValidateInvoice(valor float64) error {
	return AsValidationError(validation.Errors{
		"valor_pagar": validation.Validate(valor, validation.Required, validation.Min(0.01)),
	}.Filter())
}

// ValidatePerform requires a diagnosis.
func ValidatePerform(diagnostico, receta string) error {
	return AsValidationError(validation.Errors{
		"diagnostico": validation.Validate(diagnostico, validation.Required, validation.Length(1, 4000)),
		"receta":      validation.Validate(receta, validation.Length(0, 4000)),
	}.Filter())
}

func validateFechaHora(fechaHora time.Time) error {
	if fechaHora.IsZero() {
		return errors.New("cannot be blank")
	}
	return nil
}

// AsValidationError converts ozzo errors into a *models.ValidationError.
func AsValidationError(err error) error {
	if err == nil {
		return nil
	}
	var errs validation.Errors
	if !errors.As(err, &errs) {
		return &models.ValidationError{Fields: map[string]string{"input": err.Error()}}
	}
	fields := make(map[string]string, len(errs))
	for field, fieldErr := range errs {
		fields[field] = fieldErr.Error()
	}
	return &models.ValidationError{Fields: fields}
}
