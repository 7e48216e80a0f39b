package httpapi

import (
	"encoding/base64"
	"errors"
	"io"
	"net/http"
	"strings"

	"quickfirstaid/internal/service"

	"go.uber.org/zap"
)

type AssistantHandler struct {
	svc    service.AssistantService
	logger *zap.Logger
}

func NewAssistantHandler(svc service.AssistantService, logger *zap.Logger) *AssistantHandler {
	return &AssistantHandler{svc: svc, logger: logger}
}

func (h *AssistantHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.URL.Path {
	case apiPrefix + "/assistant/chat":
		if r.Method != http.MethodPost {
			methodNotAllowed(w)
			return
		}
		h.Chat(w, r)
	case apiPrefix + "/assistant/voice":
		if r.Method != http.MethodPost {
			methodNotAllowed(w)
			return
		}
		h.Voice(w, r)
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

func (h *AssistantHandler) Chat(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Text string `json:"text"`
	}
	if err := readBodyJSON(w, r, maxJSONBody, &req); err != nil {
		writeBodyError(w, err)
		return
	}
	reply, err := h.svc.Ask(r.Context(), req.Text)
	if err != nil {
		writeError(w, h.logger, "assistant.chat", err)
		return
	}
	writeJSON(w, http.StatusOK, Ok(map[string]any{"reply": reply}))
}

// Voice accepts either a multipart upload (fields "file" and "lang") or JSON
// {"audio_base64": "...", "filename": "...", "lang": "..."}. A lang query
// parameter is used when the body names none.
func (h *AssistantHandler) Voice(w http.ResponseWriter, r *http.Request) {
	upload, err := readAudio(w, r)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeBodyError(w, err)
			return
		}
		writeJSON(w, http.StatusBadRequest, Fail("invalid audio upload"))
		return
	}
	if upload.lang == "" {
		upload.lang = r.URL.Query().Get("lang")
	}
	lang, err := service.ParseVoiceLanguage(upload.lang)
	if err != nil {
		writeError(w, h.logger, "assistant.voice", err)
		return
	}
	resp, err := h.svc.VoiceTurn(r.Context(), upload.audio, upload.filename, lang)
	if err != nil {
		writeError(w, h.logger, "assistant.voice", err)
		return
	}
	writeJSON(w, http.StatusOK, Ok(resp))
}

type audioUpload struct {
	audio    []byte
	filename string
	lang     string
}

func readAudio(w http.ResponseWriter, r *http.Request) (audioUpload, error) {
	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		r.Body = http.MaxBytesReader(w, r.Body, maxAudioBody)
		if err := r.ParseMultipartForm(maxAudioBody); err != nil {
			return audioUpload{}, err
		}
		f, hdr, err := r.FormFile("file")
		if err != nil {
			return audioUpload{}, err
		}
		defer f.Close()
		data, err := io.ReadAll(f)
		return audioUpload{audio: data, filename: hdr.Filename, lang: r.FormValue("lang")}, err
	}

	var req struct {
		AudioBase64 string `json:"audio_base64"`
		Filename    string `json:"filename"`
		Lang        string `json:"lang"`
	}
	if err := readBodyJSON(w, r, maxAudioBody*2, &req); err != nil {
		return audioUpload{}, err
	}
	data, err := base64.StdEncoding.DecodeString(req.AudioBase64)
	return audioUpload{audio: data, filename: req.Filename, lang: req.Lang}, err
}
