package transport

import (
	"errors"
	"net/http"
	"time"

	"epdq-gateway/internal/auth"
	"epdq-gateway/internal/gateway"
	"epdq-gateway/internal/logger"
	"epdq-gateway/internal/signature"

	"github.com/julienschmidt/httprouter"
	"go.uber.org/zap"
)

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// gatewayConfigPayload is the operator-facing form of a configuration. Mode
// is output only.
type gatewayConfigPayload struct {
	RedirectURL      string `json:"redirect_url"`
	PSPID            string `json:"pspid"`
	SHAInPassphrase  string `json:"sha_in_passphrase"`
	SHAOutPassphrase string `json:"sha_out_passphrase"`
	AcceptURL        string `json:"accept_url"`
	DeclineURL       string `json:"decline_url"`
	ExceptionURL     string `json:"exception_url"`
	CancelURL        string `json:"cancel_url"`
	BackURL          string `json:"back_url"`
	HomeURL          string `json:"home_url"`
	Locale           string `json:"locale"`
	LogoURL          string `json:"logo_url"`
	HashAlgorithm    string `json:"hash_algorithm"`
	Mode             string `json:"mode,omitempty"`
}

type gatewayConfigResponse struct {
	GatewayID    string               `json:"gateway_id"`
	DisplayLabel string               `json:"display_label"`
	Config       gatewayConfigPayload `json:"config"`
	Locales      []string             `json:"locales"`
	CardTypes    []string             `json:"card_types"`
	UpdatedAt    time.Time            `json:"updated_at"`
}

func (s *Server) login(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var body loginRequest
	if err := decodeJSON(w, r, &body); err != nil {
		writeError(w, "invalid request body", http.StatusBadRequest)
		return
	}

	token, err := s.tokens.Login(r.Context(), body.Email, body.Password)
	if err != nil {
		logger.FromCtx(r.Context()).Warn("operator login failed", zap.Error(err))
		if errors.Is(err, auth.ErrInvalidCredentials) {
			writeError(w, "invalid email or password", http.StatusUnauthorized)
			return
		}
		writeError(w, "internal server error", http.StatusInternalServerError)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     auth.AccessTokenCookie,
		Value:    token,
		Path:     "/admin",
		HttpOnly: true,
		Secure:   r.TLS != nil,
		SameSite: http.SameSiteStrictMode,
	})
	writeJSON(w, http.StatusOK, map[string]string{"token": token})
}

func (s *Server) getGateway(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	cfg, err := s.gateways.Get(r.Context(), ps.ByName("gateway_id"))
	if err != nil {
		if errors.Is(err, gateway.ErrConfigurationNotFound) {
			writeError(w, "gateway configuration not found", http.StatusNotFound)
			return
		}
		logger.FromCtx(r.Context()).Error("failed to load gateway configuration", zap.Error(err))
		writeError(w, "internal server error", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, configResponse(cfg))
}

// putGateway saves a configuration. A blank or still-redacted passphrase
// keeps the stored one.
func (s *Server) putGateway(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	ctx := r.Context()
	gatewayID := ps.ByName("gateway_id")
	log := logger.ForGateway(ctx, gatewayID)

	var body gatewayConfigPayload
	if err := decodeJSON(w, r, &body); err != nil {
		writeError(w, "invalid request body", http.StatusBadRequest)
		return
	}

	cfg := gateway.Configuration{
		GatewayID:        gatewayID,
		RedirectURL:      body.RedirectURL,
		PSPID:            body.PSPID,
		SHAInPassphrase:  body.SHAInPassphrase,
		SHAOutPassphrase: body.SHAOutPassphrase,
		AcceptURL:        body.AcceptURL,
		DeclineURL:       body.DeclineURL,
		ExceptionURL:     body.ExceptionURL,
		CancelURL:        body.CancelURL,
		BackURL:          body.BackURL,
		HomeURL:          body.HomeURL,
		Locale:           body.Locale,
		LogoURL:          body.LogoURL,
		HashAlgorithm:    signature.Algorithm(body.HashAlgorithm),
	}

	if keepStored(cfg.SHAInPassphrase) || keepStored(cfg.SHAOutPassphrase) {
		existing, err := s.gateways.Get(ctx, gatewayID)
		switch {
		case err == nil:
			if keepStored(cfg.SHAInPassphrase) {
				cfg.SHAInPassphrase = existing.SHAInPassphrase
			}
			if keepStored(cfg.SHAOutPassphrase) {
				cfg.SHAOutPassphrase = existing.SHAOutPassphrase
			}
		case errors.Is(err, gateway.ErrConfigurationNotFound):
			// Nothing to keep; the placeholder must not be stored as a secret.
			cfg.SHAInPassphrase = dropRedacted(cfg.SHAInPassphrase)
			cfg.SHAOutPassphrase = dropRedacted(cfg.SHAOutPassphrase)
		default:
			log.Error("failed to load gateway configuration", zap.Error(err))
			writeError(w, "internal server error", http.StatusInternalServerError)
			return
		}
	}

	saved, err := s.gateways.Save(ctx, cfg)
	if err != nil {
		if errors.Is(err, gateway.ErrConfiguration) {
			writeError(w, err.Error(), http.StatusUnprocessableEntity)
			return
		}
		writeError(w, "internal server error", http.StatusInternalServerError)
		return
	}

	log.Info("gateway configuration updated by operator")
	writeJSON(w, http.StatusOK, configResponse(saved))
}

func keepStored(passphrase string) bool {
	return passphrase == "" || passphrase == gateway.RedactedSecret
}

func dropRedacted(passphrase string) string {
	if passphrase == gateway.RedactedSecret {
		return ""
	}
	return passphrase
}

func configResponse(cfg gateway.Configuration) gatewayConfigResponse {
	red := cfg.Redacted()
	return gatewayConfigResponse{
		GatewayID:    cfg.GatewayID,
		DisplayLabel: gateway.DisplayLabel,
		Config: gatewayConfigPayload{
			RedirectURL:      red.RedirectURL,
			PSPID:            red.PSPID,
			SHAInPassphrase:  red.SHAInPassphrase,
			SHAOutPassphrase: red.SHAOutPassphrase,
			AcceptURL:        red.AcceptURL,
			DeclineURL:       red.DeclineURL,
			ExceptionURL:     red.ExceptionURL,
			CancelURL:        red.CancelURL,
			BackURL:          red.BackURL,
			HomeURL:          red.HomeURL,
			Locale:           red.Language(),
			LogoURL:          red.LogoURL,
			HashAlgorithm:    string(red.HashAlgorithm),
			Mode:             string(red.Mode),
		},
		Locales:   gateway.LocaleCodes(),
		CardTypes: gateway.CardTypes,
		UpdatedAt: cfg.UpdatedAt,
	}
}
