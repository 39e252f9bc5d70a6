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

// EncryptTextOptions configures an offline encryption.
type EncryptTextOptions struct {
	// PublicKey is the recipient key (base64 SPKI or PEM).
	PublicKey string

	Plaintext string
}

// EncryptText encrypts plaintext for a public key without contacting the API.
func EncryptText(ctx context.Context, opts EncryptTextOptions) (*secrets.EncryptedPayload, error) {
	recipient, err := secrets.ImportPublicKey(opts.PublicKey)
	if err != nil {
		return nil, err
	}
	return secrets.SafeEncrypt(opts.Plaintext, recipient)
}

// DecryptText decrypts a JSON encrypted payload with this device's key.
func DecryptText(ctx context.Context, a *app.App, data []byte) (string, error) {
	payload, err := secrets.ParsePayload(data)
	if err != nil {
		return "", err
	}
	privateKey, err := a.Keyring.LoadPrivateKey()
	if err != nil {
		return "", err
	}
	return secrets.SafeDecrypt(payload, privateKey)
}

// AddSecretOptions configures the add secret workflow.
type AddSecretOptions struct {
	Label   string
	Content string

	// ReceiverID addresses the secret to another user. Empty stores it for
	// the admin.
	ReceiverID string

	// RecipientKey overrides the key the content is encrypted for. Empty
	// fetches the admin key.
	RecipientKey string
}

// AddSecretResult contains the outcome of storing a secret.
type AddSecretResult struct {
	ID        int64
	Label     string
	UpdatedAt string
}

// AddSecret validates, encrypts and stores a secret. Plaintext never
// leaves the process.
func AddSecret(ctx context.Context, a *app.App, opts AddSecretOptions) (*AddSecretResult, error) {
	values, verrs := validation.Validate(validation.SecretSchema, map[string]string{
		"label":   opts.Label,
		"content": opts.Content,
	})
	if err := verrs.Err(); err != nil {
		return nil, err
	}

	if err := a.RequireLogin(); err != nil {
		return nil, err
	}

	key := opts.RecipientKey
	if key == "" {
		adminKey, err := a.API.AdminKey(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to fetch admin key: %w", err)
		}
		key = adminKey
	}

	recipient, err := secrets.ImportPublicKey(key)
	if err != nil {
		return nil, err
	}

	payload, err := secrets.SafeEncrypt(values["content"], recipient)
	if err != nil {
		return nil, err
	}

	created, err := a.API.CreateSecret(ctx, api.NewSecret{
		Label:            values["label"],
		EncryptedPayload: *payload,
		ReceiverID:       opts.ReceiverID,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to store secret: %w", err)
	}

	entry := auditEntry(a, audit.OpAddSecret)
	entry.SecretID = created.ID
	entry.SecretLabel = values["label"]
	entry.ReceiverID = opts.ReceiverID
	audit.Log(entry)

	return &AddSecretResult{ID: created.ID, Label: values["label"], UpdatedAt: created.UpdatedAt}, nil
}

// ListSecrets returns the secrets addressed to the caller, still encrypted.
func ListSecrets(ctx context.Context, a *app.App) ([]api.Secret, error) {
	if err := a.RequireLogin(); err != nil {
		return nil, err
	}
	return a.API.Secrets(ctx)
}

// RevealSecretsOptions configures the reveal workflow.
type RevealSecretsOptions struct {
	// ID reveals a single secret. Zero reveals all of them.
	ID int64
}

// RevealedSecret is one decrypted secret. When decryption failed Err is
// set, Code carries its error code and Plaintext is empty.
type RevealedSecret struct {
	ID        int64
	Label     string
	UpdatedAt string
	Plaintext string
	Code      secrets.Code
	Err       error
}

// RevealSecretsResult contains the outcome of a reveal.
type RevealSecretsResult struct {
	Secrets []RevealedSecret

	// Failed is the number of secrets that could not be decrypted.
	Failed int
}

// RevealSecrets fetches the caller's secrets and decrypts them with this
// device's private key. A secret that fails to decrypt does not stop the
// others.
//
// Returns ErrDeviceNotRegistered when no private key is stored.
func RevealSecrets(ctx context.Context, a *app.App, opts RevealSecretsOptions) (*RevealSecretsResult, error) {
	if err := a.RequireLogin(); err != nil {
		return nil, err
	}

	privateKey, err := a.Keyring.LoadPrivateKey()
	if err != nil {
		return nil, err
	}

	list, err := a.API.Secrets(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch secrets: %w", err)
	}

	result := &RevealSecretsResult{}
	for _, s := range list {
		if opts.ID != 0 && s.ID != opts.ID {
			continue
		}

		revealed := RevealedSecret{ID: s.ID, Label: s.Label, UpdatedAt: s.UpdatedAt}
		plaintext, err := secrets.SafeDecrypt(s.Payload(), privateKey)
		if err != nil {
			revealed.Err = err
			revealed.Code = secrets.CodeOf(err)
			result.Failed++
			a.Logger.Debugf("secret %d: %v", s.ID, err)
		} else {
			revealed.Plaintext = plaintext
		}
		result.Secrets = append(result.Secrets, revealed)
	}

	entry := auditEntry(a, audit.OpRevealSecrets)
	entry.SecretsCount = len(result.Secrets)
	entry.FailedCount = result.Failed
	audit.Log(entry)

	return result, nil
}

// RemoveSecret deletes a secret by id.
func RemoveSecret(ctx context.Context, a *app.App, id int64) error {
	if err := a.RequireLogin(); err != nil {
		return err
	}
	if err := a.API.DeleteSecret(ctx, id); err != nil {
		return fmt.Errorf("failed to delete secret %d: %w", id, err)
	}

	entry := auditEntry(a, audit.OpRemoveSecret)
	entry.SecretID = id
	audit.Log(entry)

	return nil
}
