package handlers

import (
	"encoding/base64"
	"net/http"
	"time"

	qrcode "github.com/skip2/go-qrcode"

	httpx "github.com/hknclub/budgethq/internal/http"
	"github.com/hknclub/budgethq/internal/http/middlewares"
	"github.com/hknclub/budgethq/internal/metrics"
	"github.com/hknclub/budgethq/internal/observability/logger"
	"github.com/hknclub/budgethq/internal/security/totp"
)

// totpSetup starts (or restarts) enrollment. Calling it again while
// pending replaces the secret; codes for the old secret stop verifying.
func (h *Auth) totpSetup(w http.ResponseWriter, r *http.Request) {
	claims := middlewares.ClaimsFrom(r.Context())
	u, err := h.c.Repo.GetUserByID(r.Context(), claims.UserID)
	if err != nil {
		httpx.WriteError(w, httpx.ErrUnauthenticated)
		return
	}
	if totp.StateOf(u.TOTPSecret, u.TOTPEnabled) == totp.Enabled {
		httpx.WriteError(w, httpx.ErrAlreadyEnabled)
		return
	}

	secret, err := totp.GenerateSecret()
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	uri := totp.KeyURI(h.c.Cfg.TOTP.Issuer, u.Username, secret)
	png, err := qrcode.Encode(uri, qrcode.Medium, 256)
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	if err := h.c.Repo.SetPendingTOTPSecret(r.Context(), u.ID, secret); err != nil {
		httpx.WriteError(w, err)
		return
	}
	logger.Named("auth").Info("totp enrollment started", logger.UserID(u.ID))

	httpx.WriteJSON(w, http.StatusOK, map[string]any{
		"secret":     secret,
		"otpauthUrl": uri,
		"qrDataUrl":  "data:image/png;base64," + base64.StdEncoding.EncodeToString(png),
	})
}

type totpCodeRequest struct {
	Code string `json:"code"`
}

// totpVerify completes enrollment: first successful check against the
// stored pending secret flips the user to enabled.
func (h *Auth) totpVerify(w http.ResponseWriter, r *http.Request) {
	var req totpCodeRequest
	if !httpx.ReadJSON(w, r, &req) {
		return
	}
	claims := middlewares.ClaimsFrom(r.Context())
	u, err := h.c.Repo.GetUserByID(r.Context(), claims.UserID)
	if err != nil {
		httpx.WriteError(w, httpx.ErrUnauthenticated)
		return
	}
	switch totp.StateOf(u.TOTPSecret, u.TOTPEnabled) {
	case totp.Enabled:
		httpx.WriteError(w, httpx.ErrAlreadyEnabled)
		return
	case totp.Disabled:
		httpx.WriteError(w, httpx.ErrSetupRequired)
		return
	}
	if !totp.Verify(u.TOTPSecret, req.Code, time.Now(), h.c.Cfg.TOTP.Window) {
		metrics.TOTPCheck(false)
		httpx.WriteError(w, httpx.ErrInvalidCodeBadRequest)
		return
	}
	metrics.TOTPCheck(true)
	if err := h.c.Repo.EnableTOTP(r.Context(), u.ID, time.Now().UTC()); err != nil {
		httpx.WriteError(w, err)
		return
	}
	logger.Named("auth").Info("totp enabled", logger.UserID(u.ID))

	u.TOTPEnabled = true
	httpx.WriteJSON(w, http.StatusOK, map[string]any{"user": viewUser(u)})
}

// totpDisable requires a live code. Session possession alone must never
// be enough to strip the second factor.
func (h *Auth) totpDisable(w http.ResponseWriter, r *http.Request) {
	var req totpCodeRequest
	if !httpx.ReadJSON(w, r, &req) {
		return
	}
	claims := middlewares.ClaimsFrom(r.Context())
	u, err := h.c.Repo.GetUserByID(r.Context(), claims.UserID)
	if err != nil {
		httpx.WriteError(w, httpx.ErrUnauthenticated)
		return
	}
	if totp.StateOf(u.TOTPSecret, u.TOTPEnabled) != totp.Enabled {
		httpx.WriteError(w, httpx.ErrNotEnabled)
		return
	}
	if !totp.Verify(u.TOTPSecret, req.Code, time.Now(), h.c.Cfg.TOTP.Window) {
		metrics.TOTPCheck(false)
		httpx.WriteError(w, httpx.ErrInvalidCodeBadRequest)
		return
	}
	metrics.TOTPCheck(true)
	if err := h.c.Repo.DisableTOTP(r.Context(), u.ID); err != nil {
		httpx.WriteError(w, err)
		return
	}
	logger.Named("auth").Info("totp disabled", logger.UserID(u.ID))

	u.TOTPEnabled = false
	u.TOTPSecret = ""
	httpx.WriteJSON(w, http.StatusOK, map[string]any{"user": viewUser(u)})
}
