package secrets

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/base64"
	"encoding/pem"
	"errors"
	"io"
	"strings"
)

const (
	// KeyBits is the RSA modulus size of generated key pairs.
	KeyBits = 2048
	// AESKeySize is the length of the per-message AES-256 key.
	AESKeySize = 32
	// IVSize is the AES-GCM nonce length.
	IVSize = 12
)

// randReader is swapped in tests to simulate entropy failures.
var randReader io.Reader = rand.Reader

// KeyPair is a freshly generated RSA-OAEP key pair.
type KeyPair struct {
	PublicKey  *rsa.PublicKey
	PrivateKey *rsa.PrivateKey
}

// PublicKey is an imported RSA key usable only for encryption.
type PublicKey struct {
	key *rsa.PublicKey
}

// PrivateKey is an imported RSA key usable only for decryption.
type PrivateKey struct {
	key *rsa.PrivateKey
}

// NewPublicKey wraps an RSA public key for use with Encrypt.
func NewPublicKey(pub *rsa.PublicKey) *PublicKey {
	return &PublicKey{key: pub}
}

// NewPrivateKey wraps an RSA private key for use with Decrypt.
func NewPrivateKey(priv *rsa.PrivateKey) *PrivateKey {
	return &PrivateKey{key: priv}
}

// RSA returns the underlying key.
func (k *PublicKey) RSA() *rsa.PublicKey { return k.key }

// RSA returns the underlying key.
func (k *PrivateKey) RSA() *rsa.PrivateKey { return k.key }

// Public returns the encryption half of the key.
func (k *PrivateKey) Public() *PublicKey {
	return &PublicKey{key: &k.key.PublicKey}
}

// GenerateKeyPair creates a new 2048-bit RSA key pair with exponent 65537.
func GenerateKeyPair() (*KeyPair, error) {
	priv, err := rsa.GenerateKey(randReader, KeyBits)
	if err != nil {
		return nil, newError(CodeCryptoUnavailable, "failed to generate RSA key pair", err)
	}
	return &KeyPair{PublicKey: &priv.PublicKey, PrivateKey: priv}, nil
}

// Export returns the public key as base64 SPKI and the private key as
// base64 PKCS8.
func (kp *KeyPair) Export() (publicKey, privateKey string, err error) {
	publicKey, err = ExportPublicKey(kp.PublicKey)
	if err != nil {
		return "", "", err
	}
	privateKey, err = ExportPrivateKey(kp.PrivateKey)
	if err != nil {
		return "", "", err
	}
	return publicKey, privateKey, nil
}

// ExportPublicKey encodes pub as base64 SPKI (PKIX DER).
func ExportPublicKey(pub *rsa.PublicKey) (string, error) {
	if pub == nil || pub.N == nil {
		return "", newError(CodeUnknown, "no public key to export", nil)
	}
	der, err := x509.MarshalPKIXPublicKey(pub)
	if err != nil {
		return "", newError(CodeUnknown, "failed to export public key", err)
	}
	return base64.StdEncoding.EncodeToString(der), nil
}

// ExportPrivateKey encodes priv as base64 PKCS8 DER.
func ExportPrivateKey(priv *rsa.PrivateKey) (string, error) {
	if priv == nil || priv.N == nil {
		return "", newError(CodeUnknown, "no private key to export", nil)
	}
	der, err := x509.MarshalPKCS8PrivateKey(priv)
	if err != nil {
		return "", newError(CodeUnknown, "failed to export private key", err)
	}
	return base64.StdEncoding.EncodeToString(der), nil
}

// ImportPublicKey parses a base64 SPKI public key. PEM armor is also
// accepted.
func ImportPublicKey(encoded string) (*PublicKey, error) {
	der, err := decodeKeyData(encoded, "PUBLIC KEY")
	if err != nil {
		return nil, newError(CodeInvalidKeyFormat, "failed to decode public key", err)
	}

	parsed, err := x509.ParsePKIXPublicKey(der)
	if err != nil {
		return nil, newError(CodeInvalidKeyFormat, "failed to parse public key", err)
	}

	rsaKey, ok := parsed.(*rsa.PublicKey)
	if !ok {
		return nil, newError(CodeInvalidKeyFormat, "public key is not an RSA key", nil)
	}
	return &PublicKey{key: rsaKey}, nil
}

// ImportPrivateKey parses a base64 PKCS8 private key. PEM armor is also
// accepted.
func ImportPrivateKey(encoded string) (*PrivateKey, error) {
	der, err := decodeKeyData(encoded, "PRIVATE KEY")
	if err != nil {
		return nil, newError(CodeInvalidKeyFormat, "failed to decode private key", err)
	}

	parsed, err := x509.ParsePKCS8PrivateKey(der)
	if err != nil {
		return nil, newError(CodeInvalidKeyFormat, "failed to parse private key", err)
	}

	rsaKey, ok := parsed.(*rsa.PrivateKey)
	if !ok {
		return nil, newError(CodeInvalidKeyFormat, "private key is not an RSA key", nil)
	}
	return &PrivateKey{key: rsaKey}, nil
}

// EncodePublicKeyPEM wraps a base64 SPKI key in PEM armor for display.
func EncodePublicKeyPEM(encoded string) (string, error) {
	der, err := decodeKeyData(encoded, "PUBLIC KEY")
	if err != nil {
		return "", newError(CodeInvalidKeyFormat, "failed to decode public key", err)
	}
	return string(pem.EncodeToMemory(&pem.Block{Type: "PUBLIC KEY", Bytes: der})), nil
}

func decodeKeyData(encoded, blockType string) ([]byte, error) {
	encoded = strings.TrimSpace(encoded)
	if encoded == "" {
		return nil, errors.New("empty key")
	}

	if strings.HasPrefix(encoded, "-----BEGIN") {
		block, _ := pem.Decode([]byte(encoded))
		if block == nil {
			return nil, errors.New("invalid PEM block")
		}
		if block.Type != blockType {
			return nil, errors.New("unexpected PEM block type " + block.Type)
		}
		return block.Bytes, nil
	}

	return base64.StdEncoding.DecodeString(encoded)
}
