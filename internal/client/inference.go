package client

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"quickfirstaid/internal/models"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

// ContentPart is one element of a multi-part chat message.
type ContentPart struct {
	Type     string    `json:"type"`
	Text     string    `json:"text,omitempty"`
	ImageURL *ImageURL `json:"image_url,omitempty"`
}

type ImageURL struct {
	URL string `json:"url"`
}

// TextPart returns a text content part.
func TextPart(text string) ContentPart {
	return ContentPart{Type: "text", Text: text}
}

// JPEGPart wraps base64 JPEG data in a data URL image part.
func JPEGPart(base64Data string) ContentPart {
	return ContentPart{Type: "image_url", ImageURL: &ImageURL{URL: "data:image/jpeg;base64," + base64Data}}
}

// ChatMessage content is either a string or a []ContentPart.
type ChatMessage struct {
	Role    string `json:"role"`
	Content any    `json:"content"`
}

type CompletionRequest struct {
	Model       string        `json:"model"`
	Messages    []ChatMessage `json:"messages"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
	Temperature *float64      `json:"temperature,omitempty"`
}

type completionResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

type completionError struct {
	Error struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error"`
}

// InferenceClient calls an OpenAI-compatible chat completions endpoint.
type InferenceClient struct {
	service    string
	model      string
	httpClient *resty.Client
	logger     *zap.Logger
}

// NewInferenceClient builds a client; service names it in errors and logs.
func NewInferenceClient(service, baseURL, apiKey, model string, timeout time.Duration, logger *zap.Logger) *InferenceClient {
	hc := newHTTPClient(baseURL, timeout).SetHeader("Content-Type", "application/json")
	if apiKey != "" {
		hc.SetAuthToken(apiKey)
	}
	return &InferenceClient{
		service:    service,
		model:      model,
		httpClient: hc,
		logger:     logger,
	}
}

// Model returns the default model used when a request leaves it empty.
func (c *InferenceClient) Model() string { return c.model }

// Complete returns the content of the first choice.
func (c *InferenceClient) Complete(ctx context.Context, req CompletionRequest) (string, error) {
	if req.Model == "" {
		req.Model = c.model
	}
	var result completionResponse
	var apiErr completionError
	start := time.Now()
	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetBody(req).
		SetResult(&result).
		SetError(&apiErr).
		Post("/chat/completions")
	if cerr := callError(c.service, "complete", resp, err, func() string { return apiErr.Error.Message }); cerr != nil {
		c.logger.Warn("Completion failed", zap.String("service", c.service), zap.Error(cerr))
		return "", cerr
	}
	if len(result.Choices) == 0 {
		return "", &Error{Service: c.service, Op: "complete", StatusCode: resp.StatusCode(), Message: "no choices in response"}
	}
	c.logger.Debug("Completion done",
		zap.String("service", c.service),
		zap.String("model", req.Model),
		zap.Duration("elapsed", time.Since(start)),
	)
	return result.Choices[0].Message.Content, nil
}

// ParseAnalysis decodes a model answer that is supposed to be a JSON object.
// Markdown code fences are removed first; text around the outermost braces is
// ignored. Anything else yields a malformed result carrying the raw text.
func ParseAnalysis(content string) models.AnalysisResult {
	cleaned := strings.ReplaceAll(content, "```json", "")
	cleaned = strings.ReplaceAll(cleaned, "```", "")
	cleaned = strings.TrimSpace(cleaned)

	if start, end := strings.Index(cleaned, "{"), strings.LastIndex(cleaned, "}"); start >= 0 && end > start {
		cleaned = cleaned[start : end+1]
	}

	var fields models.ResultBag
	if err := json.Unmarshal([]byte(cleaned), &fields); err != nil {
		return models.Malformed(content, err.Error())
	}
	if fields == nil {
		return models.Malformed(content, "empty object")
	}
	return models.WellFormed(fields)
}
