package service

import (
	"context"
	"strings"

	"quickfirstaid/internal/models"
	"quickfirstaid/internal/repository"

	"go.uber.org/zap"
)

// MedicalIDService edits the device's single Medical ID card.
type MedicalIDService interface {
	Get(ctx context.Context) (models.MedicalIDRecord, error)
	Save(ctx context.Context, rec models.MedicalIDRecord) (models.MedicalIDRecord, error)
	Photo(ctx context.Context) (string, bool, error)
	Clear(ctx context.Context) error
}

type medicalIDService struct {
	records *repository.RecordStore
	logger  *zap.Logger
}

func NewMedicalIDService(records *repository.RecordStore, logger *zap.Logger) MedicalIDService {
	return &medicalIDService{records: records, logger: logger}
}

func (s *medicalIDService) Get(ctx context.Context) (models.MedicalIDRecord, error) {
	return s.records.LoadMedicalID(ctx)
}

// Save trims every text field, checks the blood type and overwrites the card.
func (s *medicalIDService) Save(ctx context.Context, rec models.MedicalIDRecord) (models.MedicalIDRecord, error) {
	rec.Name = strings.TrimSpace(rec.Name)
	rec.DOB = strings.TrimSpace(rec.DOB)
	rec.BloodType = models.BloodType(strings.ToUpper(strings.TrimSpace(string(rec.BloodType))))
	rec.Height = strings.TrimSpace(rec.Height)
	rec.Weight = strings.TrimSpace(rec.Weight)
	rec.Allergies = strings.TrimSpace(rec.Allergies)
	rec.Conditions = strings.TrimSpace(rec.Conditions)
	rec.EmergencyContact = strings.TrimSpace(rec.EmergencyContact)
	rec.Photo = strings.TrimSpace(rec.Photo)

	if !rec.BloodType.Valid() {
		return models.MedicalIDRecord{}, invalid("bloodType", "must be one of A+, A-, B+, B-, AB+, AB-, O+, O-")
	}

	if err := s.records.SaveMedicalID(ctx, rec); err != nil {
		return models.MedicalIDRecord{}, err
	}
	s.logger.Info("Medical ID saved", zap.Bool("has_photo", rec.Photo != ""))
	return rec, nil
}

func (s *medicalIDService) Photo(ctx context.Context) (string, bool, error) {
	return s.records.LoadMedicalIDPhoto(ctx)
}

func (s *medicalIDService) Clear(ctx context.Context) error {
	if err := s.records.ClearMedicalID(ctx); err != nil {
		return err
	}
	s.logger.Info("Medical ID cleared")
	return nil
}
