package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"quickfirstaid/internal/client"
	"quickfirstaid/internal/models"
	"quickfirstaid/internal/repository"

	"go.uber.org/zap"
)

// historyDateLayout matches the short date the app shows in the history list.
const historyDateLayout = "1/2/2006"

// TriageService runs quick-triage photo analysis and keeps the scan history.
type TriageService interface {
	Analyze(ctx context.Context, req AnalyzeRequest) (*AnalyzeResponse, error)
	Compare(ctx context.Context, req CompareRequest) (*CompareResponse, error)
	History(ctx context.Context) ([]models.ScanHistoryEntry, error)
}

type AnalyzeRequest struct {
	ImageBase64 string `json:"image_base64"`
	URI         string `json:"uri"`
}

type AnalyzeResponse struct {
	Result  models.AnalysisResult     `json:"result"`
	Finding models.TriageFinding      `json:"finding"`
	Entry   models.ScanHistoryEntry   `json:"entry"`
	History []models.ScanHistoryEntry `json:"history"`
}

// CompareRequest names the earlier photo either by history entry id or inline.
type CompareRequest struct {
	PreviousID     int64  `json:"previous_id,omitempty"`
	PreviousBase64 string `json:"previous_base64,omitempty"`
	ImageBase64    string `json:"image_base64"`
}

type CompareResponse struct {
	Result  models.AnalysisResult    `json:"result"`
	Finding models.ComparisonFinding `json:"finding"`
}

type triageService struct {
	records *repository.RecordStore
	vision  Completer
	logger  *zap.Logger
	now     func() time.Time

	// appendMu keeps entry ids unique across concurrent analyses.
	appendMu sync.Mutex
}

func NewTriageService(records *repository.RecordStore, vision Completer, logger *zap.Logger) TriageService {
	return &triageService{
		records: records,
		vision:  vision,
		logger:  logger,
		now:     time.Now,
	}
}

// Analyze sends the photo to the vision model and, when the answer decodes,
// records a new history entry. Undecodable answers leave the history alone.
func (s *triageService) Analyze(ctx context.Context, req AnalyzeRequest) (*AnalyzeResponse, error) {
	image := stripDataURL(req.ImageBase64)
	if image == "" {
		return nil, invalid("image_base64", "image is required")
	}

	content, err := s.vision.Complete(ctx, client.CompletionRequest{
		Messages: []client.ChatMessage{{
			Role:    "user",
			Content: []client.ContentPart{client.TextPart(triagePrompt), client.JPEGPart(image)},
		}},
		MaxTokens:   800,
		Temperature: floatPtr(0.1),
	})
	if err != nil {
		return nil, err
	}

	result := client.ParseAnalysis(content)
	if !result.OK() {
		s.logger.Warn("Triage answer could not be decoded", zap.String("reason", result.Reason))
		return &AnalyzeResponse{Result: result}, fmt.Errorf("triage: %w", client.ErrMalformedResult)
	}

	s.appendMu.Lock()
	defer s.appendMu.Unlock()

	current, err := s.records.LoadScanHistory(ctx)
	if err != nil {
		return nil, err
	}
	now := s.now()
	entry := models.ScanHistoryEntry{
		ID:     nextEntryID(now, current),
		Date:   now.Format(historyDateLayout),
		URI:    req.URI,
		Result: result.Fields,
		Base64: image,
	}
	history, err := s.records.AppendScanHistory(ctx, entry)
	if err != nil {
		return nil, err
	}

	s.logger.Info("Triage scan recorded",
		zap.Int64("entry_id", entry.ID),
		zap.String("type", result.Fields.String("type")),
		zap.Int("history_len", len(history)),
	)
	return &AnalyzeResponse{
		Result:  result,
		Finding: result.Triage(),
		Entry:   entry,
		History: history,
	}, nil
}

// Compare asks the vision model how the wound changed between an earlier
// photo and a new one. Nothing is written to the history.
func (s *triageService) Compare(ctx context.Context, req CompareRequest) (*CompareResponse, error) {
	image := stripDataURL(req.ImageBase64)
	if image == "" {
		return nil, invalid("image_base64", "new image is required")
	}

	previous := stripDataURL(req.PreviousBase64)
	if req.PreviousID != 0 {
		entry, err := s.findEntry(ctx, req.PreviousID)
		if err != nil {
			return nil, err
		}
		if entry.Base64 == "" {
			return nil, invalid("previous_id", "scan has no stored image to compare against")
		}
		previous = entry.Base64
	}
	if previous == "" {
		return nil, invalid("previous_id", "an earlier scan is required")
	}

	content, err := s.vision.Complete(ctx, client.CompletionRequest{
		Messages: []client.ChatMessage{{
			Role: "user",
			Content: []client.ContentPart{
				client.TextPart(comparePrompt),
				client.JPEGPart(previous),
				client.JPEGPart(image),
			},
		}},
		MaxTokens:   600,
		Temperature: floatPtr(0.1),
	})
	if err != nil {
		return nil, err
	}

	result := client.ParseAnalysis(content)
	if !result.OK() {
		s.logger.Warn("Comparison answer could not be decoded", zap.String("reason", result.Reason))
		return &CompareResponse{Result: result}, fmt.Errorf("compare: %w", client.ErrMalformedResult)
	}
	return &CompareResponse{Result: result, Finding: result.Comparison()}, nil
}

func (s *triageService) History(ctx context.Context) ([]models.ScanHistoryEntry, error) {
	return s.records.LoadScanHistory(ctx)
}

func (s *triageService) findEntry(ctx context.Context, id int64) (models.ScanHistoryEntry, error) {
	history, err := s.records.LoadScanHistory(ctx)
	if err != nil {
		return models.ScanHistoryEntry{}, err
	}
	for _, e := range history {
		if e.ID == id {
			return e, nil
		}
	}
	return models.ScanHistoryEntry{}, fmt.Errorf("entry %d: %w", id, ErrHistoryEntryNotFound)
}

// nextEntryID is the creation time in milliseconds, bumped past the newest
// entry so two scans within the same millisecond keep distinct ids.
func nextEntryID(now time.Time, history []models.ScanHistoryEntry) int64 {
	id := now.UnixMilli()
	if len(history) > 0 && id <= history[0].ID {
		id = history[0].ID + 1
	}
	return id
}

// stripDataURL accepts either raw base64 or a data URL.
func stripDataURL(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "data:") {
		if i := strings.Index(s, ","); i >= 0 {
			return s[i+1:]
		}
	}
	return s
}

func floatPtr(f float64) *float64 { return &f }

// IsMalformedResult reports whether err came from an undecodable model answer.
func IsMalformedResult(err error) bool {
	return errors.Is(err, client.ErrMalformedResult)
}
