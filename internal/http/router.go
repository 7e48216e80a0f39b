package httpapi

import (
	"net/http"

	"go.uber.org/zap"
)

const apiPrefix = "/api/v1"

// Router wraps http.ServeMux; handlers dispatch on path and method themselves.
type Router struct {
	mux    *http.ServeMux
	logger *zap.Logger
}

func NewRouter(logger *zap.Logger) *Router {
	return &Router{
		mux:    http.NewServeMux(),
		logger: logger,
	}
}

func (r *Router) Handle(pattern string, h http.HandlerFunc) {
	r.mux.HandleFunc(pattern, h)
}

func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	r.mux.ServeHTTP(w, req)
}

func (r *Router) RegisterHealthRoutes() {
	r.Handle("/healthz", func(w http.ResponseWriter, req *http.Request) {
		if req.Method != http.MethodGet {
			methodNotAllowed(w)
			return
		}
		writeJSON(w, http.StatusOK, Ok(map[string]any{"status": "ok"}))
	})
}

func (r *Router) RegisterMedicalIDRoutes(h *MedicalIDHandler) {
	r.Handle(apiPrefix+"/medical-id", h.ServeHTTP)
	r.Handle(apiPrefix+"/medical-id/photo", h.ServeHTTP)
}

func (r *Router) RegisterTriageRoutes(h *TriageHandler) {
	r.Handle(apiPrefix+"/scan-history", h.ServeHTTP)
	r.Handle(apiPrefix+"/scan-history/export", h.ServeHTTP)
	r.Handle(apiPrefix+"/triage/analyze", h.ServeHTTP)
	r.Handle(apiPrefix+"/triage/compare", h.ServeHTTP)
	r.Handle(apiPrefix+"/scanner/medicine", h.ServeHTTP)
}

func (r *Router) RegisterAuthRoutes(h *AuthHandler) {
	r.Handle(apiPrefix+"/auth/login", h.ServeHTTP)
	r.Handle(apiPrefix+"/auth/signup", h.ServeHTTP)
	r.Handle(apiPrefix+"/auth/logout", h.ServeHTTP)
	r.Handle(apiPrefix+"/auth/signout", h.ServeHTTP)
	r.Handle(apiPrefix+"/auth/password-reset", h.ServeHTTP)
	r.Handle(apiPrefix+"/auth/session", h.ServeHTTP)
	r.Handle(apiPrefix+"/auth/events", h.ServeHTTP)
}

func (r *Router) RegisterProfileRoutes(h *ProfileHandler) {
	r.Handle(apiPrefix+"/profile", h.ServeHTTP)
}

func (r *Router) RegisterAssistantRoutes(h *AssistantHandler) {
	r.Handle(apiPrefix+"/assistant/chat", h.ServeHTTP)
	r.Handle(apiPrefix+"/assistant/voice", h.ServeHTTP)
}
