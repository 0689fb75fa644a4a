package totp

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha1"
	"encoding/base32"
	"fmt"
	"net/url"
	"strings"
	"time"
)

// Period is the TOTP time step in seconds (RFC 6238).
const Period = 30

// Digits is the code length accepted by Verify.
const Digits = 6

var b32 = base32.StdEncoding.WithPadding(base32.NoPadding)

// State is the per-user enrollment state derived from the stored
// (secret, enabled) pair. Enabled without a secret is not representable:
// the store clears both fields together.
type State int

const (
	Disabled State = iota // no secret stored
	Pending               // secret stored, never verified
	Enabled               // secret stored and verified at least once
)

func (s State) String() string {
	switch s {
	case Pending:
		return "pending"
	case Enabled:
		return "enabled"
	default:
		return "disabled"
	}
}

// StateOf maps the stored column pair onto the enrollment state machine.
func StateOf(secret string, enabled bool) State {
	switch {
	case secret == "":
		return Disabled
	case !enabled:
		return Pending
	default:
		return Enabled
	}
}

// GenerateSecret returns 20 random bytes encoded as unpadded base32
// (RFC 3548), the form authenticator apps expect. Each call produces a
// fresh secret; a repeated enrollment overwrites the previous one.
func GenerateSecret() (string, error) {
	raw := make([]byte, 20)
	if _, err := rand.Read(raw); err != nil {
		return "", err
	}
	return b32.EncodeToString(raw), nil
}

// KeyURI builds the otpauth:// enrollment URI for QR rendering.
// Rendering the QR image itself is the caller's concern.
func KeyURI(issuer, account, secret string) string {
	label := url.PathEscape(fmt.Sprintf("%s:%s", issuer, account))
	q := url.Values{}
	q.Set("secret", secret)
	q.Set("issuer", issuer)
	q.Set("algorithm", "SHA1")
	q.Set("digits", fmt.Sprintf("%d", Digits))
	q.Set("period", fmt.Sprintf("%d", Period))
	return fmt.Sprintf("otpauth://totp/%s?%s", label, q.Encode())
}

// Verify checks a 6-digit code against the base32 secret at time t,
// accepting the current step and windowSteps adjacent steps on each side
// to absorb clock skew. Malformed input (wrong length, bad secret) is
// simply false, never an error.
func Verify(secret, code string, t time.Time, windowSteps int) bool {
	code = strings.TrimSpace(code)
	if len(code) != Digits {
		return false
	}
	raw, err := b32.DecodeString(strings.ToUpper(strings.TrimSpace(secret)))
	if err != nil || len(raw) == 0 {
		return false
	}
	step := t.Unix() / Period
	for c := step - int64(windowSteps); c <= step+int64(windowSteps); c++ {
		if hmac.Equal([]byte(hotp(raw, c)), []byte(code)) {
			return true
		}
	}
	return false
}

// CodeAt computes the code for an arbitrary step offset from t.
// Used by tests and by nothing else; never expose this over HTTP.
func CodeAt(secret string, t time.Time, stepOffset int64) (string, error) {
	raw, err := b32.DecodeString(strings.ToUpper(strings.TrimSpace(secret)))
	if err != nil {
		return "", err
	}
	return hotp(raw, t.Unix()/Period+stepOffset), nil
}

// hotp implements RFC 4226 with HMAC-SHA1 and dynamic truncation.
func hotp(key []byte, counter int64) string {
	var msg [8]byte
	for i := 7; i >= 0; i-- {
		msg[i] = byte(counter & 0xff)
		counter >>= 8
	}
	m := hmac.New(sha1.New, key)
	_, _ = m.Write(msg[:])
	sum := m.Sum(nil)
	offset := int(sum[len(sum)-1] & 0x0f)
	bin := (int(sum[offset])&0x7f)<<24 | int(sum[offset+1])<<16 | int(sum[offset+2])<<8 | int(sum[offset+3])
	return fmt.Sprintf("%06d", bin%1000000)
}
