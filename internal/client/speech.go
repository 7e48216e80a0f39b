package client

import (
	"bytes"
	"context"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

const speechService = "speech"

type transcriptionResponse struct {
	Text string `json:"text"`
}

type speechRequest struct {
	Model string `json:"model"`
	Input string `json:"input"`
	Voice string `json:"voice"`
}

// SpeechClient does speech-to-text and text-to-speech against an
// OpenAI-compatible audio API.
type SpeechClient struct {
	httpClient *resty.Client
	sttModel   string
	ttsModel   string
	voice      string
	logger     *zap.Logger
}

func NewSpeechClient(baseURL, apiKey, sttModel, ttsModel, voice string, timeout time.Duration, logger *zap.Logger) *SpeechClient {
	hc := newHTTPClient(baseURL, timeout)
	if apiKey != "" {
		hc.SetAuthToken(apiKey)
	}
	return &SpeechClient{
		httpClient: hc,
		sttModel:   sttModel,
		ttsModel:   ttsModel,
		voice:      voice,
		logger:     logger,
	}
}

// Transcribe uploads recorded audio and returns the transcript. language is an
// ISO-639-1 hint for the model; empty lets it detect the language.
func (c *SpeechClient) Transcribe(ctx context.Context, audio []byte, filename, language string) (string, error) {
	if filename == "" {
		filename = "audio.m4a"
	}
	form := map[string]string{"model": c.sttModel}
	if language != "" {
		form["language"] = language
	}
	var result transcriptionResponse
	var apiErr completionError
	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetFileReader("file", filename, bytes.NewReader(audio)).
		SetFormData(form).
		SetResult(&result).
		SetError(&apiErr).
		Post("/audio/transcriptions")
	if cerr := callError(speechService, "transcribe", resp, err, func() string { return apiErr.Error.Message }); cerr != nil {
		c.logger.Warn("Transcription failed", zap.Error(cerr))
		return "", cerr
	}
	return strings.TrimSpace(result.Text), nil
}

// Synthesize returns encoded audio for text.
func (c *SpeechClient) Synthesize(ctx context.Context, text string) ([]byte, error) {
	var apiErr completionError
	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "*/*").
		SetBody(speechRequest{Model: c.ttsModel, Input: text, Voice: c.voice}).
		SetError(&apiErr).
		Post("/audio/speech")
	if cerr := callError(speechService, "synthesize", resp, err, func() string { return apiErr.Error.Message }); cerr != nil {
		c.logger.Warn("Speech synthesis failed", zap.Error(cerr))
		return nil, cerr
	}
	audio := resp.Body()
	if len(audio) == 0 {
		return nil, &Error{Service: speechService, Op: "synthesize", StatusCode: resp.StatusCode(), Message: "empty audio"}
	}
	return audio, nil
}
