package secrets

import (
	"encoding/json"
)

// EncryptedPayload is the wire form of an encrypted value. All fields are
// standard base64 with padding.
type EncryptedPayload struct {
	Key     string `json:"key"`
	Content string `json:"content"`
	IV      string `json:"iv"`
}

// IsValidEncryptedPayload reports whether v has the payload shape: a
// non-nil EncryptedPayload, a decoded JSON object whose key, content and iv
// are all strings, or raw JSON of such an object. Only the shape is checked;
// empty or malformed fields fail later, at decryption.
func IsValidEncryptedPayload(v any) bool {
	switch p := v.(type) {
	case *EncryptedPayload:
		return p != nil
	case EncryptedPayload:
		return true
	case map[string]string:
		_, k := p["key"]
		_, c := p["content"]
		_, i := p["iv"]
		return k && c && i
	case map[string]any:
		for _, field := range []string{"key", "content", "iv"} {
			if _, ok := p[field].(string); !ok {
				return false
			}
		}
		return true
	case json.RawMessage:
		return isValidPayloadJSON(p)
	case []byte:
		return isValidPayloadJSON(p)
	case string:
		return isValidPayloadJSON([]byte(p))
	default:
		return false
	}
}

func isValidPayloadJSON(data []byte) bool {
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return false
	}
	return IsValidEncryptedPayload(raw)
}

// ParsePayload decodes a JSON payload, failing with INVALID_FORMAT when the
// shape is wrong.
func ParsePayload(data []byte) (*EncryptedPayload, error) {
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, newError(CodeInvalidFormat, "payload is not a JSON object", err)
	}
	if !IsValidEncryptedPayload(raw) {
		return nil, newError(CodeInvalidFormat, "payload must contain string key, content and iv", nil)
	}
	return &EncryptedPayload{
		Key:     raw["key"].(string),
		Content: raw["content"].(string),
		IV:      raw["iv"].(string),
	}, nil
}

// JSON encodes the payload with its wire field names.
func (p *EncryptedPayload) JSON() ([]byte, error) {
	return json.Marshal(p)
}
