package secrets

import "errors"

// Code is a machine-readable cryptographic failure category.
type Code string

const (
	CodeInvalidMessage        Code = "INVALID_MESSAGE"
	CodeInvalidContent        Code = "INVALID_CONTENT"
	CodeInvalidPublicKey      Code = "INVALID_PUBLIC_KEY"
	CodeKeyUsage              Code = "KEY_USAGE_ERROR"
	CodeAlgorithmNotSupported Code = "ALGORITHM_NOT_SUPPORTED"
	CodeEncryptFailed         Code = "ENCRYPT_FAILED"
	CodeDecryptFailed         Code = "DECRYPT_FAILED"
	CodeInvalidFormat         Code = "INVALID_FORMAT"
	CodeInvalidKeyFormat      Code = "INVALID_KEY_FORMAT"
	CodeCryptoUnavailable     Code = "CRYPTO_UNAVAILABLE"
	CodeCryptoError           Code = "CRYPTO_ERROR"
	CodeUnknown               Code = "UNKNOWN_ERROR"
)

// CryptoError is the only error type returned by this package.
type CryptoError struct {
	Code    Code
	Message string
	Err     error
}

func (e *CryptoError) Error() string {
	msg := e.Message
	if msg == "" {
		msg = string(e.Code)
	}
	if e.Err != nil {
		return msg + ": " + e.Err.Error()
	}
	return msg
}

func (e *CryptoError) Unwrap() error {
	return e.Err
}

// Is matches another *CryptoError with the same code, so the Err* values
// below work with errors.Is.
func (e *CryptoError) Is(target error) bool {
	t, ok := target.(*CryptoError)
	return ok && t.Code == e.Code
}

func newError(code Code, message string, cause error) *CryptoError {
	return &CryptoError{Code: code, Message: message, Err: cause}
}

// Sentinels for errors.Is, one per code.
var (
	ErrInvalidMessage        = &CryptoError{Code: CodeInvalidMessage}
	ErrInvalidContent        = &CryptoError{Code: CodeInvalidContent}
	ErrInvalidPublicKey      = &CryptoError{Code: CodeInvalidPublicKey}
	ErrKeyUsage              = &CryptoError{Code: CodeKeyUsage}
	ErrAlgorithmNotSupported = &CryptoError{Code: CodeAlgorithmNotSupported}
	ErrEncryptFailed         = &CryptoError{Code: CodeEncryptFailed}
	ErrDecryptFailed         = &CryptoError{Code: CodeDecryptFailed}
	ErrInvalidFormat         = &CryptoError{Code: CodeInvalidFormat}
	ErrInvalidKeyFormat      = &CryptoError{Code: CodeInvalidKeyFormat}
	ErrCryptoUnavailable     = &CryptoError{Code: CodeCryptoUnavailable}
	ErrCryptoError           = &CryptoError{Code: CodeCryptoError}
	ErrUnknown               = &CryptoError{Code: CodeUnknown}
)

// CodeOf returns the code carried by err, or CodeUnknown.
func CodeOf(err error) Code {
	var cerr *CryptoError
	if errors.As(err, &cerr) {
		return cerr.Code
	}
	return CodeUnknown
}

// Messages maps codes to the user-facing text shown by the portal.
var Messages = map[Code]string{
	CodeInvalidMessage:        "El mensaje no puede estar vacío",
	CodeInvalidContent:        "El contenido no puede estar vacío",
	CodeInvalidPublicKey:      "Clave pública del destinatario inválida",
	CodeKeyUsage:              "La clave no puede ser usada para encriptar",
	CodeAlgorithmNotSupported: "Algoritmo de cifrado no soportado",
	CodeEncryptFailed:         "Error al encriptar el mensaje",
	CodeDecryptFailed:         "No se pudo descifrar la información",
	CodeInvalidFormat:         "Formato de datos cifrados inválido",
	CodeInvalidKeyFormat:      "Formato de clave inválido",
	CodeCryptoUnavailable:     "El proveedor criptográfico no está disponible",
	CodeCryptoError:           "Error en la operación criptográfica",
}

// DefaultMessage is shown for codes missing from Messages.
const DefaultMessage = "Error al procesar la información cifrada"

// Message returns the user-facing text for code.
func Message(code Code) string {
	if msg, ok := Messages[code]; ok {
		return msg
	}
	return DefaultMessage
}
