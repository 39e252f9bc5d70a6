// Package validation checks form input against declarative schemas.
//
// A Schema is an ordered list of Fields. Validate returns the normalized
// values (trimmed strings, canonical numbers and booleans) together with
// one FieldError per rejected field, in schema order. Input keys that are
// not in the schema are dropped.
package validation

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"

	perrors "github.com/worksdev/portal/internal/errors"

	"github.com/shopspring/decimal"
)

// Kind is the type a field value must parse as.
type Kind int

const (
	String Kind = iota
	Number
	Bool
)

// Messages overrides the default text for each rule. Empty entries use
// the defaults.
type Messages struct {
	Required string
	Type     string
	MinLen   string
	MaxLen   string
	Min      string
	Max      string
	Pattern  string
}

// Field describes one form field.
type Field struct {
	Name     string
	Kind     Kind
	Required bool
	Trim     bool
	// Default is used when the value is empty and the field is optional.
	Default string

	// MinLen and MaxLen bound string length in characters. Zero means
	// unbounded.
	MinLen int
	MaxLen int

	// Min and Max bound numeric values.
	Min decimal.NullDecimal
	Max decimal.NullDecimal

	Pattern *regexp.Regexp
	// Check runs after Pattern for rules a regular expression cannot express.
	Check func(string) bool

	Messages Messages
}

// Schema is an ordered set of fields.
type Schema struct {
	Name   string
	Fields []Field
}

// FieldError is a rejected field and the reason.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Errors lists every rejected field. It matches ErrInvalidInput with
// errors.Is.
type Errors []FieldError

func (e Errors) Error() string {
	parts := make([]string, len(e))
	for i, fe := range e {
		parts[i] = fe.Field + ": " + fe.Message
	}
	return strings.Join(parts, "; ")
}

func (e Errors) Is(target error) bool {
	return target == perrors.ErrInvalidInput
}

// Err returns e as an error, or nil when there are no field errors.
func (e Errors) Err() error {
	if len(e) == 0 {
		return nil
	}
	return e
}

// For returns the message for field, if it was rejected.
func (e Errors) For(field string) (string, bool) {
	for _, fe := range e {
		if fe.Field == field {
			return fe.Message, true
		}
	}
	return "", false
}

// Validate checks input against schema.
func Validate(schema Schema, input map[string]string) (map[string]string, Errors) {
	normalized := make(map[string]string, len(schema.Fields))
	var errs Errors

	for _, field := range schema.Fields {
		value, msg := validateField(field, input[field.Name])
		if msg != "" {
			errs = append(errs, FieldError{Field: field.Name, Message: msg})
			continue
		}
		if value != "" {
			normalized[field.Name] = value
		}
	}

	return normalized, errs
}

func validateField(field Field, value string) (string, string) {
	if field.Trim {
		value = strings.TrimSpace(value)
	}

	if value == "" {
		if field.Required {
			return "", orDefault(field.Messages.Required, "Este campo es obligatorio")
		}
		value = field.Default
		if value == "" {
			return "", ""
		}
	}

	switch field.Kind {
	case Number:
		return validateNumber(field, value)
	case Bool:
		b, err := strconv.ParseBool(value)
		if err != nil {
			return "", orDefault(field.Messages.Type, "Debe ser verdadero o falso")
		}
		return strconv.FormatBool(b), ""
	default:
		return validateString(field, value)
	}
}

func validateString(field Field, value string) (string, string) {
	n := utf8.RuneCountInString(value)

	if field.MinLen > 0 && n < field.MinLen {
		return "", orDefault(field.Messages.MinLen,
			fmt.Sprintf("Debe tener al menos %d caracteres", field.MinLen))
	}
	if field.MaxLen > 0 && n > field.MaxLen {
		return "", orDefault(field.Messages.MaxLen,
			fmt.Sprintf("No puede tener más de %d caracteres", field.MaxLen))
	}
	if field.Pattern != nil && !field.Pattern.MatchString(value) {
		return "", orDefault(field.Messages.Pattern, "Formato inválido")
	}
	if field.Check != nil && !field.Check(value) {
		return "", orDefault(field.Messages.Pattern, "Formato inválido")
	}
	return value, ""
}

func validateNumber(field Field, value string) (string, string) {
	d, err := decimal.NewFromString(value)
	if err != nil {
		return "", orDefault(field.Messages.Type, "Debe ser un número")
	}

	if field.Min.Valid && d.LessThan(field.Min.Decimal) {
		return "", orDefault(field.Messages.Min,
			fmt.Sprintf("Debe ser mayor o igual a %s", field.Min.Decimal))
	}
	if field.Max.Valid && d.GreaterThan(field.Max.Decimal) {
		return "", orDefault(field.Messages.Max,
			fmt.Sprintf("No puede ser mayor a %s", field.Max.Decimal))
	}
	if field.Check != nil && !field.Check(d.String()) {
		return "", orDefault(field.Messages.Pattern, "Formato inválido")
	}
	return d.String(), ""
}

func orDefault(msg, fallback string) string {
	if msg != "" {
		return msg
	}
	return fallback
}

// Bound is a convenience for Field.Min and Field.Max.
func Bound(v int64) decimal.NullDecimal {
	return decimal.NewNullDecimal(decimal.NewFromInt(v))
}
