package validation

import (
	"errors"
	"strings"
	"testing"

	perrors "github.com/worksdev/portal/internal/errors"
)

func TestValidateSecret(t *testing.T) {
	tests := []struct {
		name      string
		input     map[string]string
		wantErrs  []string
		wantLabel string
	}{
		{
			name:      "valid and trimmed",
			input:     map[string]string{"label": "  AWS root  ", "content": "hunter2!"},
			wantLabel: "AWS root",
		},
		{
			name:     "label too short after trim",
			input:    map[string]string{"label": "  ab  ", "content": "hunter2!"},
			wantErrs: []string{"label"},
		},
		{
			name:     "both missing",
			input:    map[string]string{},
			wantErrs: []string{"label", "content"},
		},
		{
			name:     "content too long",
			input:    map[string]string{"label": "Token", "content": strings.Repeat("x", 401)},
			wantErrs: []string{"content"},
		},
		{
			name:      "multibyte counts characters",
			input:     map[string]string{"label": "ñañá", "content": strings.Repeat("é", 400)},
			wantLabel: "ñañá",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			values, errs := Validate(SecretSchema, tt.input)

			if len(errs) != len(tt.wantErrs) {
				t.Fatalf("errors = %v, want fields %v", errs, tt.wantErrs)
			}
			for i, field := range tt.wantErrs {
				if errs[i].Field != field {
					t.Errorf("error %d field = %s, want %s", i, errs[i].Field, field)
				}
			}
			if tt.wantLabel != "" && values["label"] != tt.wantLabel {
				t.Errorf("label = %q, want %q", values["label"], tt.wantLabel)
			}
		})
	}
}

func TestValidateMessages(t *testing.T) {
	_, errs := Validate(ComplementSchema, map[string]string{
		"legal_name": "ACME S.A. de C.V.",
		"rfc":        "ABC",
		"fullname":   "Juan Pérez",
		"address":    "Calle 1",
		"role":       "Director general",
	})

	msg, ok := errs.For("rfc")
	if !ok || msg != "El RFC debe tener al menos 12 caracteres" {
		t.Errorf("rfc message = %q, %v", msg, ok)
	}
	msg, ok = errs.For("address")
	if !ok || msg != "La dirección debe tener al menos 10 caracteres" {
		t.Errorf("address message = %q, %v", msg, ok)
	}
	if _, ok := errs.For("role"); ok {
		t.Error("role should be valid")
	}
}

func TestValidateDiscount(t *testing.T) {
	tests := []struct {
		name           string
		percentage     string
		disposable     string
		wantErr        string
		wantPercentage string
		wantDisposable string
	}{
		{"integer", "15", "", "", "15", "false"},
		{"decimal", " 12.50 ", "true", "", "12.5", "true"},
		{"below range", "0", "", "El porcentaje debe ser mayor o igual a 1", "", ""},
		{"above range", "100.01", "", "El porcentaje no puede ser mayor a 100", "", ""},
		{"not a number", "diez", "", "El porcentaje debe ser un número", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			values, errs := Validate(DiscountSchema, map[string]string{
				"description": "Descuento por volumen anual",
				"percentage":  tt.percentage,
				"disposable":  tt.disposable,
			})

			if tt.wantErr != "" {
				msg, _ := errs.For("percentage")
				if msg != tt.wantErr {
					t.Errorf("percentage error = %q, want %q", msg, tt.wantErr)
				}
				return
			}
			if len(errs) != 0 {
				t.Fatalf("unexpected errors: %v", errs)
			}
			if values["percentage"] != tt.wantPercentage {
				t.Errorf("percentage = %q, want %q", values["percentage"], tt.wantPercentage)
			}
			if values["disposable"] != tt.wantDisposable {
				t.Errorf("disposable = %q, want %q", values["disposable"], tt.wantDisposable)
			}
		})
	}
}

func TestValidateStatus(t *testing.T) {
	tests := []struct {
		input string
		want  string
		ok    bool
	}{
		{"3", "3", true},
		{" 10 ", "10", true},
		{"0", "", false},
		{"11", "", false},
		{"2.5", "", false},
		{"", "", false},
		{"archivado", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			values, errs := Validate(StatusSchema, map[string]string{"status": tt.input})
			if tt.ok != (len(errs) == 0) {
				t.Fatalf("Validate(%q) errors = %v, want ok=%t", tt.input, errs, tt.ok)
			}
			if !tt.ok {
				if msg, _ := errs.For("status"); msg != "Debes seleccionar un estado válido" {
					t.Errorf("message = %q", msg)
				}
				return
			}
			if values["status"] != tt.want {
				t.Errorf("status = %q, want %q", values["status"], tt.want)
			}
		})
	}
}

func TestValidateLogin(t *testing.T) {
	tests := []struct {
		name     string
		email    string
		password string
		wantErrs []string
	}{
		{"valid", "ana@example.com", "Sup3rSecreta!", nil},
		{"bad email", "ana@", "Sup3rSecreta!", []string{"email"}},
		{"short password", "ana@example.com", "Ab1", []string{"password"}},
		{"no upper case", "ana@example.com", "sup3rsecreta!", []string{"password"}},
		{"no digit or symbol", "ana@example.com", "SuperSecretaLarga", []string{"password"}},
		{"leading period", "ana@example.com", ".Sup3rSecreta", []string{"password"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, errs := Validate(LoginSchema, map[string]string{"email": tt.email, "password": tt.password})
			if len(errs) != len(tt.wantErrs) {
				t.Fatalf("errors = %v, want fields %v", errs, tt.wantErrs)
			}
			for i, field := range tt.wantErrs {
				if errs[i].Field != field {
					t.Errorf("error %d field = %s, want %s", i, errs[i].Field, field)
				}
			}
		})
	}
}

func TestValidateChatMessage(t *testing.T) {
	if _, errs := Validate(ChatMessageSchema, map[string]string{"content": "   "}); len(errs) != 1 {
		t.Errorf("blank message should be rejected, got %v", errs)
	}

	_, errs := Validate(ChatMessageSchema, map[string]string{"content": strings.Repeat("a", 241)})
	if msg, _ := errs.For("content"); msg != "Mensaje muy largo (máximo 240 caracteres)" {
		t.Errorf("message = %q", msg)
	}

	values, errs := Validate(ChatMessageSchema, map[string]string{"content": " hola "})
	if len(errs) != 0 || values["content"] != "hola" {
		t.Errorf("Validate() = %v, %v", values, errs)
	}
}

func TestValidateVerificationCode(t *testing.T) {
	if _, errs := Validate(VerificationCodeSchema, map[string]string{"code": "123456"}); len(errs) != 0 {
		t.Errorf("unexpected errors: %v", errs)
	}
	if _, errs := Validate(VerificationCodeSchema, map[string]string{"code": "1234567"}); len(errs) != 1 {
		t.Error("seven-character code should be rejected")
	}
	if _, errs := Validate(VerificationCodeSchema, map[string]string{}); len(errs) != 1 {
		t.Error("missing code should be rejected")
	}
}

func TestErrorsAsError(t *testing.T) {
	var none Errors
	if none.Err() != nil {
		t.Error("empty Errors should convert to nil")
	}

	_, errs := Validate(SecretSchema, map[string]string{})
	err := errs.Err()
	if !errors.Is(err, perrors.ErrInvalidInput) {
		t.Error("Errors should match ErrInvalidInput")
	}

	var target Errors
	if !errors.As(err, &target) || len(target) != 2 {
		t.Errorf("errors.As() = %v", target)
	}
	if !strings.Contains(err.Error(), "label: ") {
		t.Errorf("Error() = %q", err.Error())
	}
}

func TestUnknownKeysDropped(t *testing.T) {
	values, errs := Validate(SecretSchema, map[string]string{
		"label": "Database", "content": "postgres://", "receiver_id": "7",
	})
	if len(errs) != 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}
	if _, ok := values["receiver_id"]; ok {
		t.Error("keys outside the schema should be dropped")
	}
}
