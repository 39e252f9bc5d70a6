package validation

import (
	"strconv"
	"unicode"

	"github.com/worksdev/portal/internal/utils"
)

// SecretSchema validates a new shared secret.
var SecretSchema = Schema{
	Name: "secret",
	Fields: []Field{
		{
			Name: "label", Kind: String, Required: true, Trim: true, MinLen: 4, MaxLen: 60,
			Messages: Messages{
				MinLen: "La etiqueta debe tener al menos 4 caracteres.",
				MaxLen: "La etiqueta no puede tener más de 60 caracteres",
			},
		},
		{
			Name: "content", Kind: String, Required: true, Trim: true, MinLen: 4, MaxLen: 400,
			Messages: Messages{
				MinLen: "El contenido debe tener al menos 4 caracteres",
				MaxLen: "El contenido no puede tener más de 400 caracteres",
			},
		},
	},
}

// ComplementSchema validates the contract complement (legal signer data).
var ComplementSchema = Schema{
	Name: "complement",
	Fields: []Field{
		{
			Name: "legal_name", Kind: String, Required: true, Trim: true, MinLen: 4, MaxLen: 120,
			Messages: Messages{
				MinLen: "La razón social debe tener al menos 4 caracteres.",
				MaxLen: "La razón social no puede tener más de 120 caracteres",
			},
		},
		{
			Name: "rfc", Kind: String, Required: true, Trim: true, MinLen: 12, MaxLen: 13,
			Messages: Messages{
				MinLen: "El RFC debe tener al menos 12 caracteres",
				MaxLen: "El RFC no puede tener más de 13 caracteres",
			},
		},
		{
			Name: "fullname", Kind: String, Required: true, Trim: true, MinLen: 4, MaxLen: 120,
			Messages: Messages{
				MinLen: "El nombre debe tener al menos 4 caracteres",
				MaxLen: "El nombre no puede tener más de 120 caracteres",
			},
		},
		{
			Name: "address", Kind: String, Required: true, Trim: true, MinLen: 10, MaxLen: 240,
			Messages: Messages{
				MinLen: "La dirección debe tener al menos 10 caracteres",
				MaxLen: "La dirección no puede tener más de 240 caracteres",
			},
		},
		{
			Name: "role", Kind: String, Required: true, Trim: true, MinLen: 4, MaxLen: 60,
			Messages: Messages{
				MinLen: "El rol debe tener al menos 4 caracteres",
				MaxLen: "El rol no puede tener más de 60 caracteres",
			},
		},
	},
}

// ComplementFields lists the complement fields in submission order.
var ComplementFields = []string{"legal_name", "rfc", "fullname", "address", "role"}

// DiscountSchema validates an order discount.
var DiscountSchema = Schema{
	Name: "discount",
	Fields: []Field{
		{
			Name: "description", Kind: String, Required: true, MinLen: 12, MaxLen: 240,
			Messages: Messages{
				MinLen: "El contenido debe tener al menos 12 caracteres.",
				MaxLen: "El contenido no puede tener más de 240 caracteres",
			},
		},
		{
			Name: "percentage", Kind: Number, Required: true, Trim: true,
			Min: Bound(1), Max: Bound(100),
			Messages: Messages{
				Type: "El porcentaje debe ser un número",
				Min:  "El porcentaje debe ser mayor o igual a 1",
				Max:  "El porcentaje no puede ser mayor a 100",
			},
		},
		{Name: "disposable", Kind: Bool, Trim: true, Default: "false"},
	},
}

// StatusSchema validates an order status change.
var StatusSchema = Schema{
	Name: "status",
	Fields: []Field{
		{
			Name: "status", Kind: Number, Required: true, Trim: true,
			Min: Bound(1), Max: Bound(10), Check: isWholeNumber,
			Messages: Messages{
				Required: "Debes seleccionar un estado válido",
				Type:     "Debes seleccionar un estado válido",
				Min:      "Debes seleccionar un estado válido",
				Max:      "Debes seleccionar un estado válido",
				Pattern:  "Debes seleccionar un estado válido",
			},
		},
	},
}

func isWholeNumber(s string) bool {
	_, err := strconv.Atoi(s)
	return err == nil
}

// ChatMessageSchema validates an outgoing chat message.
var ChatMessageSchema = Schema{
	Name: "chat_message",
	Fields: []Field{
		{
			Name: "content", Kind: String, Required: true, Trim: true, MinLen: 1, MaxLen: 240,
			Messages: Messages{
				Required: "El mensaje no puede estar vacío",
				MaxLen:   "Mensaje muy largo (máximo 240 caracteres)",
			},
		},
	},
}

// LoginSchema validates the login credentials.
var LoginSchema = Schema{
	Name: "login",
	Fields: []Field{
		{
			Name: "email", Kind: String, Required: true, Trim: true, Check: utils.IsValidEmail,
			Messages: Messages{
				Required: "Debes ingresar un correo electrónico válido.",
				Pattern:  "Debes ingresar un correo electrónico válido.",
			},
		},
		{
			Name: "password", Kind: String, Required: true, MinLen: 12, Check: IsStrongPassword,
			Messages: Messages{
				MinLen:  "La contraseña debe tener al menos 12 caracteres.",
				Pattern: "La contraseña debe incluir una letra mayúscula, una letra minúscula y un número o símbolo.",
			},
		},
	},
}

// VerificationCodeSchema validates the emailed login code.
var VerificationCodeSchema = Schema{
	Name: "verification_code",
	Fields: []Field{
		{
			Name: "code", Kind: String, Required: true, Trim: true, MaxLen: 6,
			Messages: Messages{
				Required: "Código de verificación. Debe ser válido.",
				MaxLen:   "Código de verificación. Debe ser válido.",
			},
		},
	},
}

// IsStrongPassword requires at least 8 characters including an upper-case
// letter, a lower-case letter and a digit or symbol. The first character
// may not be a period or a line break.
func IsStrongPassword(s string) bool {
	if len([]rune(s)) < 8 {
		return false
	}
	if s[0] == '.' || s[0] == '\n' {
		return false
	}

	var upper, lower, digitOrSymbol bool
	for _, r := range s {
		switch {
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsLower(r):
			lower = true
		case unicode.IsDigit(r):
			digitOrSymbol = true
		case r != '_' && !unicode.IsLetter(r):
			digitOrSymbol = true
		}
	}
	return upper && lower && digitOrSymbol
}
