package secrets

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rsa"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"strings"
)

// minOAEPKeySize is the smallest modulus, in bytes, that can wrap an
// AES-256 key with SHA-256 OAEP padding.
const minOAEPKeySize = AESKeySize + 2*sha256.Size + 2

// Encrypt seals plaintext for the holder of recipient's private key.
// Every call uses a fresh AES key and IV.
func Encrypt(plaintext string, recipient *PublicKey) (*EncryptedPayload, error) {
	if plaintext == "" {
		return nil, newError(CodeInvalidContent, "content must be a non-empty string", nil)
	}
	if recipient == nil || recipient.key == nil || recipient.key.N == nil {
		return nil, newError(CodeInvalidPublicKey, "recipient public key is required", nil)
	}
	if recipient.key.Size() < minOAEPKeySize {
		return nil, newError(CodeKeyUsage, "public key is too small to wrap an AES-256 key", nil)
	}

	aesKey := make([]byte, AESKeySize)
	if _, err := io.ReadFull(randReader, aesKey); err != nil {
		return nil, newError(CodeCryptoError, "failed to generate AES key", err)
	}
	iv := make([]byte, IVSize)
	if _, err := io.ReadFull(randReader, iv); err != nil {
		return nil, newError(CodeCryptoError, "failed to generate IV", err)
	}

	gcm, err := newGCM(aesKey)
	if err != nil {
		return nil, newError(CodeAlgorithmNotSupported, "AES-GCM is not available", err)
	}
	content := gcm.Seal(nil, iv, []byte(plaintext), nil)

	wrapped, err := rsa.EncryptOAEP(sha256.New(), randReader, recipient.key, aesKey, nil)
	if err != nil {
		if errors.Is(err, rsa.ErrMessageTooLong) {
			return nil, newError(CodeKeyUsage, "public key cannot wrap the AES key", err)
		}
		return nil, newError(CodeEncryptFailed, "failed to wrap AES key", err)
	}

	return &EncryptedPayload{
		Key:     base64.StdEncoding.EncodeToString(wrapped),
		Content: base64.StdEncoding.EncodeToString(content),
		IV:      base64.StdEncoding.EncodeToString(iv),
	}, nil
}

// Decrypt opens a payload produced by Encrypt (or by the browser portal).
// Any tampering or a wrong key fails with DECRYPT_FAILED.
func Decrypt(payload *EncryptedPayload, recipient *PrivateKey) (string, error) {
	if !IsValidEncryptedPayload(payload) {
		return "", newError(CodeInvalidFormat, "payload must contain key, content and iv", nil)
	}
	if recipient == nil || recipient.key == nil {
		return "", newError(CodeDecryptFailed, "private key is required", nil)
	}

	wrapped, err := base64.StdEncoding.DecodeString(payload.Key)
	if err != nil {
		return "", newError(CodeDecryptFailed, "failed to decode wrapped key", err)
	}
	content, err := base64.StdEncoding.DecodeString(payload.Content)
	if err != nil {
		return "", newError(CodeDecryptFailed, "failed to decode content", err)
	}
	iv, err := base64.StdEncoding.DecodeString(payload.IV)
	if err != nil {
		return "", newError(CodeDecryptFailed, "failed to decode iv", err)
	}
	if len(iv) != IVSize {
		return "", newError(CodeDecryptFailed, fmt.Sprintf("iv must be %d bytes, got %d", IVSize, len(iv)), nil)
	}

	aesKey, err := rsa.DecryptOAEP(sha256.New(), nil, recipient.key, wrapped, nil)
	if err != nil {
		return "", newError(CodeDecryptFailed, "failed to unwrap AES key", err)
	}

	gcm, err := newGCM(aesKey)
	if err != nil {
		return "", newError(CodeDecryptFailed, "unwrapped key is not a valid AES key", err)
	}
	plaintext, err := gcm.Open(nil, iv, content, nil)
	if err != nil {
		return "", newError(CodeDecryptFailed, "failed to authenticate content", err)
	}

	return strings.ToValidUTF8(string(plaintext), "\uFFFD"), nil
}

// SafeEncrypt is Encrypt with every failure, including panics, reported as
// a *CryptoError. Unclassified failures become ENCRYPT_FAILED.
func SafeEncrypt(plaintext string, recipient *PublicKey) (payload *EncryptedPayload, err error) {
	defer func() {
		if r := recover(); r != nil {
			payload = nil
			err = newError(CodeEncryptFailed, "encryption panicked", fmt.Errorf("%v", r))
		}
	}()

	payload, err = Encrypt(plaintext, recipient)
	if err != nil {
		return nil, classify(err, CodeEncryptFailed, "encryption failed")
	}
	return payload, nil
}

// SafeDecrypt is Decrypt with every failure, including panics, reported as
// a *CryptoError. Shape errors stay INVALID_FORMAT; everything else becomes
// DECRYPT_FAILED.
func SafeDecrypt(payload *EncryptedPayload, recipient *PrivateKey) (plaintext string, err error) {
	if !IsValidEncryptedPayload(payload) {
		return "", newError(CodeInvalidFormat, "payload must contain key, content and iv", nil)
	}

	defer func() {
		if r := recover(); r != nil {
			plaintext = ""
			err = newError(CodeDecryptFailed, "decryption panicked", fmt.Errorf("%v", r))
		}
	}()

	plaintext, err = Decrypt(payload, recipient)
	if err != nil {
		var cerr *CryptoError
		if errors.As(err, &cerr) && cerr.Code == CodeDecryptFailed {
			return "", cerr
		}
		return "", newError(CodeDecryptFailed, "decryption failed", err)
	}
	return plaintext, nil
}

func classify(err error, fallback Code, message string) *CryptoError {
	var cerr *CryptoError
	if errors.As(err, &cerr) {
		return cerr
	}
	return newError(fallback, message, err)
}

func newGCM(key []byte) (cipher.AEAD, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	return cipher.NewGCM(block)
}
