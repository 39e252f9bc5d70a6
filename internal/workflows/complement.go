package workflows

import (
	"context"
	"fmt"

	"github.com/worksdev/portal/internal/api"
	"github.com/worksdev/portal/internal/app"
	"github.com/worksdev/portal/internal/audit"
	"github.com/worksdev/portal/internal/secrets"
	"github.com/worksdev/portal/internal/validation"
)

// SaveComplementOptions holds the legal signer data of the contract.
type SaveComplementOptions struct {
	LegalName string
	RFC       string
	Fullname  string
	Address   string
	Role      string
}

func (o SaveComplementOptions) values() map[string]string {
	return map[string]string{
		"legal_name": o.LegalName,
		"rfc":        o.RFC,
		"fullname":   o.Fullname,
		"address":    o.Address,
		"role":       o.Role,
	}
}

// SaveComplement encrypts every complement field for the admin key and
// stores it. Nothing is sent if any field fails to encrypt.
func SaveComplement(ctx context.Context, a *app.App, opts SaveComplementOptions) error {
	values, verrs := validation.Validate(validation.ComplementSchema, opts.values())
	if err := verrs.Err(); err != nil {
		return err
	}

	if err := a.RequireLogin(); err != nil {
		return err
	}

	adminKey, err := a.API.AdminKey(ctx)
	if err != nil {
		return fmt.Errorf("failed to fetch admin key: %w", err)
	}
	recipient, err := secrets.ImportPublicKey(adminKey)
	if err != nil {
		return err
	}

	encrypted := make(map[string]secrets.EncryptedPayload, len(validation.ComplementFields))
	for _, field := range validation.ComplementFields {
		payload, err := secrets.SafeEncrypt(values[field], recipient)
		if err != nil {
			return fmt.Errorf("failed to encrypt %s: %w", field, err)
		}
		encrypted[field] = *payload
	}

	complement := api.Complement{
		LegalName: encrypted["legal_name"],
		RFC:       encrypted["rfc"],
		Fullname:  encrypted["fullname"],
		Address:   encrypted["address"],
		Role:      encrypted["role"],
	}
	if err := a.API.SaveComplement(ctx, complement); err != nil {
		return fmt.Errorf("failed to store complement: %w", err)
	}

	audit.Log(auditEntry(a, audit.OpSaveComplement))
	return nil
}

// DropComplement removes the stored contract complement.
func DropComplement(ctx context.Context, a *app.App) error {
	if err := a.RequireLogin(); err != nil {
		return err
	}
	if err := a.API.DeleteComplement(ctx); err != nil {
		return fmt.Errorf("failed to delete complement: %w", err)
	}

	audit.Log(auditEntry(a, audit.OpDropComplement))
	return nil
}
