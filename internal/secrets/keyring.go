package secrets

import (
	"fmt"

	"github.com/worksdev/portal/internal/devicestore"
	perrors "github.com/worksdev/portal/internal/errors"
)

// Keyring keeps this device's private key in the device store.
type Keyring struct {
	store devicestore.Store
}

// NewKeyring returns a Keyring backed by store.
func NewKeyring(store devicestore.Store) *Keyring {
	return &Keyring{store: store}
}

// InitializeUserKeys generates a key pair, stores the private half and
// returns the public half as base64 SPKI. An existing key is overwritten.
func (k *Keyring) InitializeUserKeys() (string, error) {
	kp, err := GenerateKeyPair()
	if err != nil {
		return "", err
	}

	publicKey, privateKey, err := kp.Export()
	if err != nil {
		return "", err
	}

	if err := k.store.Set(devicestore.KeyPrivateKey, privateKey); err != nil {
		return "", fmt.Errorf("failed to store private key: %w", err)
	}
	return publicKey, nil
}

// GetStoredPrivateKey returns the stored base64 PKCS8 key, if any.
func (k *Keyring) GetStoredPrivateKey() (string, bool, error) {
	value, ok, err := k.store.Get(devicestore.KeyPrivateKey)
	if err != nil {
		return "", false, fmt.Errorf("failed to read private key: %w", err)
	}
	if !ok || value == "" {
		return "", false, nil
	}
	return value, true, nil
}

// HasStoredPrivateKey reports whether this device holds a private key.
func (k *Keyring) HasStoredPrivateKey() (bool, error) {
	_, ok, err := k.GetStoredPrivateKey()
	return ok, err
}

// ClearStoredPrivateKey deletes the private key. Ciphertext addressed to
// it can no longer be read on this device.
func (k *Keyring) ClearStoredPrivateKey() error {
	if err := k.store.Remove(devicestore.KeyPrivateKey); err != nil {
		return fmt.Errorf("failed to remove private key: %w", err)
	}
	return nil
}

// LoadPrivateKey imports the stored key.
func (k *Keyring) LoadPrivateKey() (*PrivateKey, error) {
	encoded, ok, err := k.GetStoredPrivateKey()
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, perrors.ErrDeviceNotRegistered
	}
	return ImportPrivateKey(encoded)
}

// PublicKey derives the base64 SPKI public key from the stored private key.
func (k *Keyring) PublicKey() (string, error) {
	priv, err := k.LoadPrivateKey()
	if err != nil {
		return "", err
	}
	return ExportPublicKey(&priv.key.PublicKey)
}
