package httpapi

import (
	"net/http"

	"quickfirstaid/internal/models"
	"quickfirstaid/internal/service"

	"go.uber.org/zap"
)

type MedicalIDHandler struct {
	svc    service.MedicalIDService
	logger *zap.Logger
}

func NewMedicalIDHandler(svc service.MedicalIDService, logger *zap.Logger) *MedicalIDHandler {
	return &MedicalIDHandler{svc: svc, logger: logger}
}

func (h *MedicalIDHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.URL.Path {
	case apiPrefix + "/medical-id":
		switch r.Method {
		case http.MethodGet:
			h.Get(w, r)
		case http.MethodPut:
			h.Save(w, r)
		case http.MethodDelete:
			h.Clear(w, r)
		default:
			methodNotAllowed(w)
		}
	case apiPrefix + "/medical-id/photo":
		if r.Method != http.MethodGet {
			methodNotAllowed(w)
			return
		}
		h.Photo(w, r)
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

func (h *MedicalIDHandler) Get(w http.ResponseWriter, r *http.Request) {
	rec, err := h.svc.Get(r.Context())
	if err != nil {
		writeError(w, h.logger, "medical-id.get", err)
		return
	}
	writeJSON(w, http.StatusOK, Ok(rec))
}

func (h *MedicalIDHandler) Save(w http.ResponseWriter, r *http.Request) {
	var rec models.MedicalIDRecord
	if err := readBodyJSON(w, r, maxImageBody, &rec); err != nil {
		writeBodyError(w, err)
		return
	}
	saved, err := h.svc.Save(r.Context(), rec)
	if err != nil {
		writeError(w, h.logger, "medical-id.save", err)
		return
	}
	writeJSON(w, http.StatusOK, Ok(saved))
}

func (h *MedicalIDHandler) Clear(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Clear(r.Context()); err != nil {
		writeError(w, h.logger, "medical-id.clear", err)
		return
	}
	writeJSON(w, http.StatusOK, Ok(map[string]any{"success": true}))
}

func (h *MedicalIDHandler) Photo(w http.ResponseWriter, r *http.Request) {
	photo, ok, err := h.svc.Photo(r.Context())
	if err != nil {
		writeError(w, h.logger, "medical-id.photo", err)
		return
	}
	if !ok {
		writeJSON(w, http.StatusNotFound, Fail("no photo"))
		return
	}
	writeJSON(w, http.StatusOK, Ok(map[string]any{"photo": photo}))
}
