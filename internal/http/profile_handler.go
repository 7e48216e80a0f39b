package httpapi

import (
	"net/http"

	"quickfirstaid/internal/service"

	"go.uber.org/zap"
)

type ProfileHandler struct {
	svc    service.ProfileService
	logger *zap.Logger
}

func NewProfileHandler(svc service.ProfileService, logger *zap.Logger) *ProfileHandler {
	return &ProfileHandler{svc: svc, logger: logger}
}

func (h *ProfileHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != apiPrefix+"/profile" {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	switch r.Method {
	case http.MethodGet:
		h.Get(w, r)
	case http.MethodPut:
		h.Update(w, r)
	default:
		methodNotAllowed(w)
	}
}

func (h *ProfileHandler) Get(w http.ResponseWriter, r *http.Request) {
	p, err := h.svc.Get(r.Context())
	if err != nil {
		writeError(w, h.logger, "profile.get", err)
		return
	}
	writeJSON(w, http.StatusOK, Ok(p))
}

func (h *ProfileHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req service.ProfileUpdate
	if err := readBodyJSON(w, r, maxImageBody, &req); err != nil {
		writeBodyError(w, err)
		return
	}
	p, err := h.svc.Update(r.Context(), req)
	if err != nil {
		writeError(w, h.logger, "profile.update", err)
		return
	}
	writeJSON(w, http.StatusOK, Ok(p))
}
