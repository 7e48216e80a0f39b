package httpapi

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"quickfirstaid/internal/models"
	"quickfirstaid/internal/service"
	"quickfirstaid/internal/session"

	"go.uber.org/zap"
)

const eventsKeepAlive = 25 * time.Second

type AuthHandler struct {
	authService service.AuthService
	broker      *session.Broker
	logger      *zap.Logger
}

func NewAuthHandler(authService service.AuthService, broker *session.Broker, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		broker:      broker,
		logger:      logger,
	}
}

func (h *AuthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.URL.Path {
	case apiPrefix + "/auth/login":
		if r.Method != http.MethodPost {
			methodNotAllowed(w)
			return
		}
		h.Login(w, r)
	case apiPrefix + "/auth/signup":
		if r.Method != http.MethodPost {
			methodNotAllowed(w)
			return
		}
		h.SignUp(w, r)
	case apiPrefix + "/auth/signout":
		if r.Method != http.MethodPost {
			methodNotAllowed(w)
			return
		}
		h.SignOut(w, r)
	case apiPrefix + "/auth/logout":
		if r.Method != http.MethodPost {
			methodNotAllowed(w)
			return
		}
		h.Logout(w, r)
	case apiPrefix + "/auth/password-reset":
		if r.Method != http.MethodPost {
			methodNotAllowed(w)
			return
		}
		h.ResetPassword(w, r)
	case apiPrefix + "/auth/session":
		if r.Method != http.MethodGet {
			methodNotAllowed(w)
			return
		}
		h.Session(w, r)
	case apiPrefix + "/auth/events":
		if r.Method != http.MethodGet {
			methodNotAllowed(w)
			return
		}
		h.Events(w, r)
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req service.SignInRequest
	if err := readBodyJSON(w, r, maxJSONBody, &req); err != nil {
		writeBodyError(w, err)
		return
	}
	sess, err := h.authService.SignIn(r.Context(), req)
	if err != nil {
		writeError(w, h.logger, "auth.login", err)
		return
	}
	writeJSON(w, http.StatusOK, Ok(sess))
}

func (h *AuthHandler) SignUp(w http.ResponseWriter, r *http.Request) {
	var req service.SignUpRequest
	if err := readBodyJSON(w, r, maxJSONBody, &req); err != nil {
		writeBodyError(w, err)
		return
	}
	sess, err := h.authService.SignUp(r.Context(), req)
	if err != nil {
		writeError(w, h.logger, "auth.signup", err)
		return
	}
	writeJSON(w, http.StatusOK, Ok(sess))
}

func (h *AuthHandler) SignOut(w http.ResponseWriter, r *http.Request) {
	if err := h.authService.SignOut(r.Context()); err != nil {
		writeError(w, h.logger, "auth.signout", err)
		return
	}
	writeJSON(w, http.StatusOK, Ok(map[string]any{"success": true}))
}

// Logout signs out and wipes every record on the device.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if err := h.authService.Logout(r.Context()); err != nil {
		writeError(w, h.logger, "auth.logout", err)
		return
	}
	writeJSON(w, http.StatusOK, Ok(map[string]any{"success": true}))
}

func (h *AuthHandler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email string `json:"email"`
	}
	if err := readBodyJSON(w, r, maxJSONBody, &req); err != nil {
		writeBodyError(w, err)
		return
	}
	if err := h.authService.ResetPassword(r.Context(), req.Email); err != nil {
		writeError(w, h.logger, "auth.password-reset", err)
		return
	}
	writeJSON(w, http.StatusOK, Ok(map[string]any{"success": true}))
}

// Session reports the live session and the remembered email for prefill.
func (h *AuthHandler) Session(w http.ResponseWriter, r *http.Request) {
	lastEmail, err := h.authService.LastEmail(r.Context())
	if err != nil {
		writeError(w, h.logger, "auth.session", err)
		return
	}
	out := map[string]any{
		"signed_in":  false,
		"last_email": lastEmail,
	}
	if sess, ok := h.authService.Current(); ok {
		out["signed_in"] = true
		out["session"] = sess
	}
	writeJSON(w, http.StatusOK, Ok(out))
}

// Events streams session transitions as server-sent events. The first event
// describes the current state.
func (h *AuthHandler) Events(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		writeJSON(w, http.StatusInternalServerError, Fail("streaming unsupported"))
		return
	}

	events, cancel := h.broker.Subscribe(16)
	defer cancel()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)

	initial := models.SessionEvent{Type: models.SessionSignedOut, At: time.Now()}
	if sess, ok := h.broker.Current(); ok {
		initial = models.SessionEvent{Type: models.SessionSignedIn, UserID: sess.UserID, Email: sess.Email, At: time.Now()}
	}
	if err := writeEvent(w, initial); err != nil {
		return
	}
	flusher.Flush()

	ticker := time.NewTicker(eventsKeepAlive)
	defer ticker.Stop()
	for {
		select {
		case <-r.Context().Done():
			return
		case <-ticker.C:
			if _, err := fmt.Fprint(w, ": ping\n\n"); err != nil {
				return
			}
			flusher.Flush()
		case ev, ok := <-events:
			if !ok {
				return
			}
			if err := writeEvent(w, ev); err != nil {
				h.logger.Debug("Session event stream closed", zap.Error(err))
				return
			}
			flusher.Flush()
		}
	}
}

func writeEvent(w http.ResponseWriter, ev models.SessionEvent) error {
	data, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "event: %s\ndata: %s\n\n", ev.Type, data)
	return err
}
