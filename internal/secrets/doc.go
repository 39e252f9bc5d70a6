// Package secrets provides the hybrid encryption used to share credentials
// and contract signer data through the portal API.
//
// # Encryption Architecture
//
// Payloads are encrypted with a hybrid scheme:
//
//  1. A fresh random AES-256 key and 12-byte IV are generated per call
//  2. The UTF-8 plaintext is sealed with AES-GCM (no additional data)
//  3. The raw AES key is wrapped with the recipient's RSA-OAEP public key
//
// The result is an EncryptedPayload of three base64 strings (key, content,
// iv). This is the exact shape the API stores and the browser portal
// produces with the Web Cryptography API, so both sides must stay
// bit-compatible: SPKI public keys, PKCS8 private keys, SHA-256 for OAEP
// and MGF1, empty OAEP label, GCM tag appended to the ciphertext.
//
// # Key Management
//
// RSA key pairs are 2048-bit with exponent 65537. The public key is uploaded
// to the API so counterparties can encrypt for this user. The private key is
// stored only in the device store under "privateKey" and is never
// transmitted. Clearing it makes existing ciphertext permanently unreadable
// on this device.
//
// # Errors
//
// Every failure is returned as *CryptoError with a Code. Callers translate
// codes for display with Message and match them with errors.Is against the
// Err* values:
//
//	if errors.Is(err, secrets.ErrDecryptFailed) {
//	    fmt.Println(secrets.Message(secrets.CodeOf(err)))
//	}
//
// Nothing in this package retries; cryptographic failures are not transient.
package secrets
