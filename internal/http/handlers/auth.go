package handlers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/hknclub/budgethq/internal/app"
	httpx "github.com/hknclub/budgethq/internal/http"
	"github.com/hknclub/budgethq/internal/http/middlewares"
	"github.com/hknclub/budgethq/internal/jwt"
	"github.com/hknclub/budgethq/internal/metrics"
	"github.com/hknclub/budgethq/internal/observability/logger"
	"github.com/hknclub/budgethq/internal/security/password"
	"github.com/hknclub/budgethq/internal/security/totp"
	"github.com/hknclub/budgethq/internal/store/core"
	"github.com/hknclub/budgethq/internal/util/timeutil"
)

const (
	minUsernameLen = 3
	minPasswordLen = 8
)

// dummyHash keeps the lookup-miss path doing the same bcrypt work as a
// real mismatch, so response timing does not reveal whether a username
// exists.
const dummyHash = "$2a$10$N9qo8uLOickgx2ZMRZoMyeIjZAgcfl7p92ldGxad68LJZdL17lhWy"

// Auth implements the login state machine and the TOTP enrollment
// endpoints.
type Auth struct {
	c *app.Container
}

func NewAuth(c *app.Container) *Auth { return &Auth{c: c} }

// Register mounts the auth routes. Credential endpoints sit behind the
// auth rate limiter; everything after the session boundary requires a
// valid session token.
func (h *Auth) Register(r chi.Router) {
	r.Group(func(g chi.Router) {
		if h.c.AuthLimiter != nil {
			g.Use(middlewares.RateLimit(h.c.AuthLimiter))
		}
		g.Post("/register", h.register)
		g.Post("/login", h.login)
		g.Post("/login/totp", h.loginTOTP)
	})

	r.Group(func(g chi.Router) {
		g.Use(middlewares.RequireSession(h.c.Issuer, h.c.Repo))
		g.Post("/totp/setup", h.totpSetup)
		g.Post("/totp/verify", h.totpVerify)
		g.Post("/totp/disable", h.totpDisable)
		g.Get("/me", h.me)
		g.Post("/logout", h.logout)
		g.Get("/export-token", h.exportToken)
	})
}

type registerRequest struct {
	Username    string `json:"username"`
	Password    string `json:"password"`
	DisplayName string `json:"displayName"`
	Timezone    string `json:"timezone"`
}

func (h *Auth) register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if !httpx.ReadJSON(w, r, &req) {
		return
	}
	req.Username = strings.TrimSpace(req.Username)
	if len(req.Username) < minUsernameLen {
		httpx.WriteError(w, httpx.ErrValidation.WithMessage("Username must be at least 3 characters"))
		return
	}
	if len(req.Password) < minPasswordLen {
		httpx.WriteError(w, httpx.ErrValidation.WithMessage("Password must be at least 8 characters"))
		return
	}
	tz := req.Timezone
	if !timeutil.ValidTimezone(tz) {
		tz = "UTC"
	}
	display := strings.TrimSpace(req.DisplayName)
	if display == "" {
		display = req.Username
	}

	hash, err := password.Hash(req.Password)
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	u := &core.User{
		ID:           uuid.NewString(),
		Username:     req.Username,
		PasswordHash: hash,
		DisplayName:  display,
		Timezone:     tz,
		Role:         core.RoleMember,
	}
	if err := h.c.Repo.CreateUser(r.Context(), u); err != nil {
		if errors.Is(err, core.ErrConflict) {
			httpx.WriteError(w, httpx.ErrConflict.WithMessage("Username already taken"))
			return
		}
		httpx.WriteError(w, err)
		return
	}
	logger.Named("auth").Info("user registered", logger.UserID(u.ID), logger.Username(u.Username))
	h.writeSession(w, u, http.StatusCreated)
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (h *Auth) login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !httpx.ReadJSON(w, r, &req) {
		return
	}
	if req.Username == "" || req.Password == "" {
		httpx.WriteError(w, httpx.ErrValidation.WithMessage("Username and password are required"))
		return
	}

	u, err := h.c.Repo.GetUserByUsername(r.Context(), req.Username)
	if errors.Is(err, core.ErrNotFound) {
		password.Verify(req.Password, dummyHash)
		metrics.LoginAttempt("invalid_credentials")
		httpx.WriteError(w, httpx.ErrInvalidCredentials)
		return
	}
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	if !password.Verify(req.Password, u.PasswordHash) {
		metrics.LoginAttempt("invalid_credentials")
		httpx.WriteError(w, httpx.ErrInvalidCredentials)
		return
	}

	if u.TOTPEnabled {
		token, _, err := h.c.Issuer.IssueChallenge(jwt.Identity{ID: u.ID, Username: u.Username})
		if err != nil {
			httpx.WriteError(w, err)
			return
		}
		metrics.LoginAttempt("totp_pending")
		httpx.WriteJSON(w, http.StatusOK, map[string]any{
			"requiresTotp":   true,
			"challengeToken": token,
		})
		return
	}

	metrics.LoginAttempt("success")
	h.writeSession(w, u, http.StatusOK)
}

type loginTOTPRequest struct {
	ChallengeToken string `json:"challengeToken"`
	Code           string `json:"code"`
}

func (h *Auth) loginTOTP(w http.ResponseWriter, r *http.Request) {
	var req loginTOTPRequest
	if !httpx.ReadJSON(w, r, &req) {
		return
	}
	claims, err := h.c.Issuer.ParseChallenge(req.ChallengeToken)
	if err != nil {
		httpx.WriteError(w, httpx.ErrChallengeExpired)
		return
	}
	u, err := h.c.Repo.GetUserByID(r.Context(), claims.UserID)
	if err != nil || !u.TOTPEnabled || u.TOTPSecret == "" {
		// account gone or 2FA turned off since the challenge was minted
		httpx.WriteError(w, httpx.ErrChallengeExpired)
		return
	}
	if !totp.Verify(u.TOTPSecret, req.Code, time.Now(), h.c.Cfg.TOTP.Window) {
		metrics.TOTPCheck(false)
		httpx.WriteError(w, httpx.ErrInvalidCode)
		return
	}
	metrics.TOTPCheck(true)
	metrics.LoginAttempt("success")
	h.writeSession(w, u, http.StatusOK)
}

// writeSession mints the session token, sets the cookie and renders the
// {user, session} body shared by register, login and login/totp.
func (h *Auth) writeSession(w http.ResponseWriter, u *core.User, status int) {
	token, exp, err := h.c.Issuer.IssueSession(jwt.Identity{
		ID:       u.ID,
		Username: u.Username,
		Timezone: u.Timezone,
		Role:     u.Role,
	})
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	http.SetCookie(w, h.c.Issuer.SessionCookie(token, exp))
	httpx.WriteJSON(w, status, map[string]any{
		"user":    viewUser(u),
		"session": sessionView{Token: token, ExpiresAt: exp},
	})
}

func (h *Auth) me(w http.ResponseWriter, r *http.Request) {
	claims := middlewares.ClaimsFrom(r.Context())
	u, err := h.c.Repo.GetUserByID(r.Context(), claims.UserID)
	if err != nil {
		httpx.WriteError(w, httpx.ErrUnauthenticated)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, map[string]any{"user": viewUser(u)})
}

func (h *Auth) logout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, h.c.Issuer.DeletionCookie())
	httpx.WriteJSON(w, http.StatusOK, map[string]any{"message": "Logged out"})
}

func (h *Auth) exportToken(w http.ResponseWriter, r *http.Request) {
	claims := middlewares.ClaimsFrom(r.Context())
	token, _, err := h.c.Issuer.IssueExport(jwt.Identity{ID: claims.UserID, Username: claims.Username})
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, map[string]any{"token": token})
}
