package phone

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"strings"

	"plaza/api/internal/apperr"
)

// Hasher derives opaque, deterministic identifiers from phone numbers so that
// matching can happen without raw numbers ever being stored.
type Hasher struct {
	secret []byte
}

func NewHasher(secret string) (*Hasher, error) {
	if secret == "" {
		return nil, apperr.Configuration("phone hash secret is not set")
	}
	return &Hasher{secret: []byte(secret)}, nil
}

// Normalize reduces a raw phone string to an E.164-like form. The rules are a
// North-American heuristic: 10 digits get a "+1" prefix, 11 digits starting
// with "1" get a leading "+", and already-"+"-prefixed input keeps its digits.
// Other lengths pass through as a bare "+"-prefixed digit string.
func Normalize(raw string) string {
	hadPlus := strings.HasPrefix(strings.TrimSpace(raw), "+")

	var digits strings.Builder
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			digits.WriteRune(r)
		}
	}
	d := digits.String()

	switch {
	case hadPlus:
		return "+" + d
	case len(d) == 10:
		return "+1" + d
	case len(d) == 11 && d[0] == '1':
		return "+" + d
	default:
		return "+" + d
	}
}

// Hash returns the hex HMAC-SHA256 of the normalized number under the server
// secret. Equal numbers always hash equal, which is what makes contact
// matching possible.
func (h *Hasher) Hash(raw string) string {
	mac := hmac.New(sha256.New, h.secret)
	mac.Write([]byte(Normalize(raw)))
	return hex.EncodeToString(mac.Sum(nil))
}
