package keys

import (
	"encoding/json"
	"fmt"
	"strings"

	"seahorse/internal/crypto"
	"seahorse/internal/domain"
)

// maxKeyNesting bounds how many JSON objects may wrap a public key.
const maxKeyNesting = 3

// parsePublicKey accepts a bare base64 key, a JSON string holding one, or a
// JSON object whose "key" or "publicKey" field holds one, nested up to
// maxKeyNesting levels.
func parsePublicKey(encoded string) (domain.X25519Public, error) {
	s := strings.TrimSpace(encoded)
	objects := 0
	for s != "" && (s[0] == '"' || s[0] == '{') {
		if s[0] == '{' {
			if objects == maxKeyNesting {
				return domain.X25519Public{}, fmt.Errorf("%w: public key nested too deeply", domain.ErrInvalidKeyFormat)
			}
			objects++
		}
		next, err := unwrapJSONKey(s)
		if err != nil {
			return domain.X25519Public{}, fmt.Errorf("%w: %v", domain.ErrInvalidKeyFormat, err)
		}
		s = strings.TrimSpace(next)
	}
	if s == "" {
		return domain.X25519Public{}, fmt.Errorf("%w: empty public key", domain.ErrInvalidKeyFormat)
	}

	raw, err := crypto.FromB64(s)
	if err != nil {
		return domain.X25519Public{}, fmt.Errorf("%w: %v", domain.ErrInvalidKeyFormat, err)
	}
	var pub domain.X25519Public
	if len(raw) != len(pub) {
		return domain.X25519Public{}, fmt.Errorf("%w: public key is %d bytes, want %d", domain.ErrInvalidKeyFormat, len(raw), len(pub))
	}
	copy(pub[:], raw)
	if pub.IsZero() {
		return domain.X25519Public{}, fmt.Errorf("%w: all-zero public key", domain.ErrInvalidKeyFormat)
	}
	return pub, nil
}

// unwrapJSONKey peels one layer of JSON around a key.
func unwrapJSONKey(s string) (string, error) {
	if s[0] == '"' {
		var str string
		if err := json.Unmarshal([]byte(s), &str); err != nil {
			return "", err
		}
		return str, nil
	}

	var obj map[string]json.RawMessage
	if err := json.Unmarshal([]byte(s), &obj); err != nil {
		return "", err
	}
	for _, field := range []string{"key", "publicKey"} {
		if v, ok := obj[field]; ok {
			return string(v), nil
		}
	}
	return "", fmt.Errorf("object has no key or publicKey field")
}
