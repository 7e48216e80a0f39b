package httpapi

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"quickfirstaid/internal/client"
	"quickfirstaid/internal/repository"
	"quickfirstaid/internal/service"

	"go.uber.org/zap"
)

const (
	maxJSONBody  = 1 << 20
	maxImageBody = 16 << 20
	maxAudioBody = 25 << 20
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

var errEmptyBody = errors.New("request body required")

// readBodyJSON decodes a required JSON body of at most maxBytes. A larger body
// fails with *http.MaxBytesError instead of being cut short.
func readBodyJSON(w http.ResponseWriter, r *http.Request, maxBytes int64, out any) error {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBytes))
	if err != nil {
		return err
	}
	body = bytes.TrimSpace(body)
	if len(body) == 0 || bytes.Equal(body, []byte("null")) {
		return errEmptyBody
	}
	return json.Unmarshal(body, out)
}

// writeBodyError answers a request whose body could not be read.
func writeBodyError(w http.ResponseWriter, err error) {
	var tooLarge *http.MaxBytesError
	switch {
	case errors.As(err, &tooLarge):
		writeJSON(w, http.StatusRequestEntityTooLarge, Fail("request body too large"))
	case errors.Is(err, errEmptyBody):
		writeJSON(w, http.StatusBadRequest, Fail(errEmptyBody.Error()))
	default:
		writeJSON(w, http.StatusBadRequest, Fail("invalid body"))
	}
}

// writeError maps a service error onto a status code and a user-facing
// message. Collaborator and storage details stay in the log.
func writeError(w http.ResponseWriter, logger *zap.Logger, op string, err error) {
	var ve *service.ValidationError
	switch {
	case errors.As(err, &ve):
		writeJSON(w, http.StatusBadRequest, Fail(ve.Error()))
	case errors.Is(err, service.ErrNotSignedIn):
		writeJSON(w, http.StatusUnauthorized, Fail("please sign in first"))
	case errors.Is(err, service.ErrHistoryEntryNotFound):
		writeJSON(w, http.StatusNotFound, Fail("scan not found"))
	case errors.Is(err, service.ErrEmptyTranscript):
		writeJSON(w, http.StatusUnprocessableEntity, Fail("no speech recognized, please try again"))
	case repository.IsStorageError(err):
		logger.Error("Storage failure", zap.String("op", op), zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, Fail("storage unavailable"))
	case errors.Is(err, client.ErrMalformedResult):
		logger.Warn("Unreadable model answer", zap.String("op", op), zap.Error(err))
		writeJSON(w, http.StatusBadGateway, Fail("could not read the analysis, please try again"))
	case client.IsCollaboratorError(err):
		logger.Warn("Collaborator failure", zap.String("op", op), zap.Error(err))
		writeJSON(w, http.StatusBadGateway, Fail("service unavailable, please try again"))
	default:
		logger.Error("Request failed", zap.String("op", op), zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, Fail("internal error"))
	}
}

func methodNotAllowed(w http.ResponseWriter) {
	w.WriteHeader(http.StatusMethodNotAllowed)
}
