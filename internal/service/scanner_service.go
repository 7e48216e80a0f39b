package service

import (
	"context"
	"fmt"

	"quickfirstaid/internal/client"
	"quickfirstaid/internal/models"

	"go.uber.org/zap"
)

// ScannerService reads medicine packaging.
type ScannerService interface {
	Scan(ctx context.Context, imageBase64 string) (*ScanResponse, error)
}

type ScanResponse struct {
	Result models.AnalysisResult `json:"result"`
	Label  models.MedicineLabel  `json:"label"`
}

type scannerService struct {
	vision Completer
	logger *zap.Logger
}

func NewScannerService(vision Completer, logger *zap.Logger) ScannerService {
	return &scannerService{vision: vision, logger: logger}
}

func (s *scannerService) Scan(ctx context.Context, imageBase64 string) (*ScanResponse, error) {
	image := stripDataURL(imageBase64)
	if image == "" {
		return nil, invalid("image_base64", "image is required")
	}

	content, err := s.vision.Complete(ctx, client.CompletionRequest{
		Messages: []client.ChatMessage{{
			Role:    "user",
			Content: []client.ContentPart{client.TextPart(medicinePrompt), client.JPEGPart(image)},
		}},
		MaxTokens:   500,
		Temperature: floatPtr(0.01),
	})
	if err != nil {
		return nil, err
	}

	result := client.ParseAnalysis(content)
	if !result.OK() {
		s.logger.Warn("Medicine label answer could not be decoded", zap.String("reason", result.Reason))
		return &ScanResponse{Result: result}, fmt.Errorf("medicine scan: %w", client.ErrMalformedResult)
	}

	label := result.Medicine()
	fillUnknown(&label.Name)
	fillUnknown(&label.Usage)
	fillUnknown(&label.Dosage)
	fillUnknown(&label.Warning)
	return &ScanResponse{Result: result, Label: label}, nil
}

func fillUnknown(s *string) {
	if *s == "" {
		*s = "Unknown"
	}
}
