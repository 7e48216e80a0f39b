package httpapi

import (
	"fmt"
	"net/http"
	"time"

	"quickfirstaid/internal/service"

	"go.uber.org/zap"
)

// TriageHandler serves quick triage, wound comparison, the medicine scanner
// and the scan history.
type TriageHandler struct {
	triage  service.TriageService
	scanner service.ScannerService
	logger  *zap.Logger
}

func NewTriageHandler(triage service.TriageService, scanner service.ScannerService, logger *zap.Logger) *TriageHandler {
	return &TriageHandler{triage: triage, scanner: scanner, logger: logger}
}

func (h *TriageHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.URL.Path {
	case apiPrefix + "/scan-history":
		if r.Method != http.MethodGet {
			methodNotAllowed(w)
			return
		}
		h.History(w, r)
	case apiPrefix + "/scan-history/export":
		if r.Method != http.MethodGet {
			methodNotAllowed(w)
			return
		}
		h.ExportHistory(w, r)
	case apiPrefix + "/triage/analyze":
		if r.Method != http.MethodPost {
			methodNotAllowed(w)
			return
		}
		h.Analyze(w, r)
	case apiPrefix + "/triage/compare":
		if r.Method != http.MethodPost {
			methodNotAllowed(w)
			return
		}
		h.Compare(w, r)
	case apiPrefix + "/scanner/medicine":
		if r.Method != http.MethodPost {
			methodNotAllowed(w)
			return
		}
		h.ScanMedicine(w, r)
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

func (h *TriageHandler) History(w http.ResponseWriter, r *http.Request) {
	history, err := h.triage.History(r.Context())
	if err != nil {
		writeError(w, h.logger, "scan-history.list", err)
		return
	}
	writeJSON(w, http.StatusOK, Ok(map[string]any{
		"items": history,
		"total": len(history),
	}))
}

func (h *TriageHandler) ExportHistory(w http.ResponseWriter, r *http.Request) {
	history, err := h.triage.History(r.Context())
	if err != nil {
		writeError(w, h.logger, "scan-history.export", err)
		return
	}
	data, err := GenerateScanHistoryExport(history)
	if err != nil {
		h.logger.Error("GenerateScanHistoryExport failed", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, Fail("failed to generate export"))
		return
	}

	filename := fmt.Sprintf("scan-history-%s.xlsx", time.Now().Format("20060102"))
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", "attachment; filename="+filename)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

func (h *TriageHandler) Analyze(w http.ResponseWriter, r *http.Request) {
	var req service.AnalyzeRequest
	if err := readBodyJSON(w, r, maxImageBody, &req); err != nil {
		writeBodyError(w, err)
		return
	}
	resp, err := h.triage.Analyze(r.Context(), req)
	if err != nil {
		writeError(w, h.logger, "triage.analyze", err)
		return
	}
	writeJSON(w, http.StatusOK, Ok(resp))
}

func (h *TriageHandler) Compare(w http.ResponseWriter, r *http.Request) {
	var req service.CompareRequest
	if err := readBodyJSON(w, r, 2*maxImageBody, &req); err != nil {
		writeBodyError(w, err)
		return
	}
	resp, err := h.triage.Compare(r.Context(), req)
	if err != nil {
		writeError(w, h.logger, "triage.compare", err)
		return
	}
	writeJSON(w, http.StatusOK, Ok(resp))
}

func (h *TriageHandler) ScanMedicine(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ImageBase64 string `json:"image_base64"`
	}
	if err := readBodyJSON(w, r, maxImageBody, &req); err != nil {
		writeBodyError(w, err)
		return
	}
	resp, err := h.scanner.Scan(r.Context(), req.ImageBase64)
	if err != nil {
		writeError(w, h.logger, "scanner.medicine", err)
		return
	}
	writeJSON(w, http.StatusOK, Ok(resp))
}
