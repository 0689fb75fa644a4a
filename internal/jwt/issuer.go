package jwt

import (
	"errors"
	"time"

	jwtv5 "github.com/golang-jwt/jwt/v5"
)

// ErrInvalidToken is the single error surfaced for any verification
// failure: bad signature, malformed token, wrong purpose, or expiry.
// Callers map it to 401 without leaking which check failed.
var ErrInvalidToken = errors.New("invalid token")

// Purpose tags a token so it is only ever accepted by the endpoint it
// was minted for. Both session and challenge tokens are structurally
// JWTs; the discriminant is this claim, not the shape.
type Purpose string

const (
	PurposeSession Purpose = "session"
	PurposeTOTP    Purpose = "totp"
	PurposeExport  Purpose = "export"
)

// Claims is the signed payload shared by the three token kinds.
// Timezone and Role travel only in session tokens.
type Claims struct {
	UserID   string  `json:"uid"`
	Username string  `json:"username"`
	Timezone string  `json:"timezone,omitempty"`
	Role     string  `json:"role,omitempty"`
	Purpose  Purpose `json:"purpose"`
	jwtv5.RegisteredClaims
}

// Identity is the slice of a user the issuer embeds in tokens.
type Identity struct {
	ID       string
	Username string
	Timezone string
	Role     string
}

// Config is built once at process start from the application config and
// injected; handlers never read signing material from ambient state.
type Config struct {
	Secret       []byte
	Issuer       string
	SessionTTL   time.Duration
	ChallengeTTL time.Duration
	ExportTTL    time.Duration
	Cookie       CookieConfig
}

type Issuer struct {
	cfg Config
}

func NewIssuer(cfg Config) (*Issuer, error) {
	if len(cfg.Secret) == 0 {
		return nil, errors.New("jwt: empty signing secret")
	}
	if cfg.SessionTTL <= 0 {
		cfg.SessionTTL = 12 * time.Hour
	}
	if cfg.ChallengeTTL <= 0 {
		cfg.ChallengeTTL = 5 * time.Minute
	}
	if cfg.ExportTTL <= 0 {
		cfg.ExportTTL = 5 * time.Minute
	}
	return &Issuer{cfg: cfg}, nil
}

// IssueSession mints the long-lived bearer credential granted after full
// authentication. Delivery (cookie vs Authorization header) is up to the
// caller; see SessionCookie.
func (i *Issuer) IssueSession(id Identity) (string, time.Time, error) {
	return i.sign(Claims{
		UserID:   id.ID,
		Username: id.Username,
		Timezone: id.Timezone,
		Role:     id.Role,
		Purpose:  PurposeSession,
	}, i.cfg.SessionTTL)
}

// IssueChallenge mints the short-lived "password verified, TOTP pending"
// token. It carries no timezone/role and never sets a cookie.
func (i *Issuer) IssueChallenge(id Identity) (string, time.Time, error) {
	return i.sign(Claims{
		UserID:   id.ID,
		Username: id.Username,
		Purpose:  PurposeTOTP,
	}, i.cfg.ChallengeTTL)
}

// IssueExport mints a short-lived token for direct-link downloads where
// no cookie is present.
func (i *Issuer) IssueExport(id Identity) (string, time.Time, error) {
	return i.sign(Claims{
		UserID:   id.ID,
		Username: id.Username,
		Purpose:  PurposeExport,
	}, i.cfg.ExportTTL)
}

func (i *Issuer) sign(c Claims, ttl time.Duration) (string, time.Time, error) {
	now := time.Now().UTC()
	exp := now.Add(ttl)
	c.RegisteredClaims = jwtv5.RegisteredClaims{
		Issuer:    i.cfg.Issuer,
		Subject:   c.UserID,
		IssuedAt:  jwtv5.NewNumericDate(now),
		ExpiresAt: jwtv5.NewNumericDate(exp),
	}
	tk := jwtv5.NewWithClaims(jwtv5.SigningMethodHS256, c)
	signed, err := tk.SignedString(i.cfg.Secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, exp, nil
}

// ParseSession verifies signature and expiry and requires purpose
// "session". There is no revocation list: a valid token stays valid
// until it expires.
func (i *Issuer) ParseSession(raw string) (*Claims, error) {
	return i.parse(raw, PurposeSession)
}

// ParseChallenge accepts only purpose "totp" tokens. A session token
// presented here fails exactly like an expired challenge.
func (i *Issuer) ParseChallenge(raw string) (*Claims, error) {
	return i.parse(raw, PurposeTOTP)
}

func (i *Issuer) ParseExport(raw string) (*Claims, error) {
	return i.parse(raw, PurposeExport)
}

func (i *Issuer) parse(raw string, want Purpose) (*Claims, error) {
	var claims Claims
	tok, err := jwtv5.ParseWithClaims(raw, &claims, func(t *jwtv5.Token) (any, error) {
		return i.cfg.Secret, nil
	},
		jwtv5.WithValidMethods([]string{"HS256"}),
		jwtv5.WithIssuer(i.cfg.Issuer),
		jwtv5.WithExpirationRequired(),
	)
	if err != nil || !tok.Valid {
		return nil, ErrInvalidToken
	}
	if claims.Purpose != want {
		return nil, ErrInvalidToken
	}
	return &claims, nil
}
