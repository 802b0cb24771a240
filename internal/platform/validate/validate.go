// Package validate centraliza la validación de formularios (campos requeridos,
// celular y DNI peruanos) y produce mensajes en español para la UI.
package validate

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

var (
	dniRe      = regexp.MustCompile(`^\d{8}$`)
	phoneRe    = regexp.MustCompile(`^9\d{8}$`)
	nonDigitRe = regexp.MustCompile(`\D`)

	once sync.Once
	v    *validator.Validate
)

// ValidationError describe el primer campo inválido.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func instance() *validator.Validate {
	once.Do(func() {
		v = validator.New(validator.WithRequiredStructEnabled())

		// Usar el nombre JSON del campo en los mensajes.
		v.RegisterTagNameFunc(func(f reflect.StructField) string {
			name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
			if name == "-" || name == "" {
				return f.Name
			}
			return name
		})

		_ = v.RegisterValidation("dni", func(fl validator.FieldLevel) bool {
			return IsDNI(fl.Field().String())
		})
		_ = v.RegisterValidation("phone_pe", func(fl validator.FieldLevel) bool {
			return IsPhone(fl.Field().String())
		})
	})
	return v
}

// Struct valida un struct con tags `validate`. Devuelve *ValidationError o nil.
func Struct(s any) error {
	err := instance().Struct(s)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		return &ValidationError{Field: fe.Field(), Message: message(fe)}
	}
	return &ValidationError{Field: "body", Message: err.Error()}
}

// Var valida un valor suelto con un tag, p.ej. Var("phone", s, "phone_pe").
func Var(field string, value any, tag string) error {
	err := instance().Var(value, tag)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		return &ValidationError{Field: field, Message: message(verrs[0])}
	}
	return &ValidationError{Field: field, Message: err.Error()}
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "es obligatorio"
	case "dni":
		return "el DNI debe tener 8 dígitos"
	case "phone_pe":
		return "el celular debe tener 9 dígitos y empezar con 9"
	case "email":
		return "no es un correo válido"
	case "url", "http_url":
		return "no es una URL válida"
	case "oneof":
		return "debe ser uno de: " + strings.ReplaceAll(fe.Param(), " ", ", ")
	case "max":
		if fe.Kind() == reflect.Slice {
			return "admite como máximo " + fe.Param() + " elementos"
		}
		return "no puede superar " + fe.Param() + " caracteres"
	case "min":
		return "debe tener al menos " + fe.Param() + " caracteres"
	case "gte":
		return "debe ser mayor o igual a " + fe.Param()
	case "lte":
		return "debe ser menor o igual a " + fe.Param()
	case "latitude":
		return "latitud inválida"
	case "longitude":
		return "longitud inválida"
	default:
		return "valor inválido"
	}
}

// NormalizePhone deja solo dígitos y quita el prefijo de país 51.
func NormalizePhone(s string) string {
	digits := nonDigitRe.ReplaceAllString(s, "")
	if len(digits) == 11 && strings.HasPrefix(digits, "51") {
		digits = digits[2:]
	}
	return digits
}

// IsPhone valida un celular peruano (acepta +51, espacios y guiones).
func IsPhone(s string) bool {
	return phoneRe.MatchString(NormalizePhone(s))
}

// IsDNI valida un DNI peruano de 8 dígitos.
func IsDNI(s string) bool {
	return dniRe.MatchString(strings.TrimSpace(s))
}
