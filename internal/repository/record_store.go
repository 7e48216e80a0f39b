package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"quickfirstaid/internal/models"
	"quickfirstaid/internal/store"

	"go.uber.org/zap"
)

// Slot names. They match the keys the mobile app has always used so existing
// installs keep their data.
const (
	SlotMedicalID      = "medical_id_data"
	SlotMedicalIDPhoto = "medical_id_photo"
	SlotScanHistory    = "scan_history"
	SlotSessionEmail   = "userEmail"
)

// MaxScanHistory bounds the scan history slot.
const MaxScanHistory = 10

// AllSlots lists every slot owned by the record store.
var AllSlots = []string{SlotMedicalID, SlotMedicalIDPhoto, SlotScanHistory, SlotSessionEmail}

// RecordStore is the per-device record store: Medical ID, scan history and the
// session email marker, each in its own independently serialized slot.
type RecordStore struct {
	kv       store.KV
	prefix   string
	deviceID string
	logger   *zap.Logger

	// historyMu serializes AppendScanHistory within this process.
	historyMu sync.Mutex
}

// NewRecordStore scopes slots to <prefix>:<deviceID>:<slot>.
func NewRecordStore(kv store.KV, prefix, deviceID string, logger *zap.Logger) *RecordStore {
	return &RecordStore{
		kv:       kv,
		prefix:   prefix,
		deviceID: deviceID,
		logger:   logger.With(zap.String("device_id", deviceID)),
	}
}

// DeviceID returns the device the store is scoped to.
func (s *RecordStore) DeviceID() string { return s.deviceID }

// Key returns the full KV key of a slot.
func (s *RecordStore) Key(slot string) string {
	return fmt.Sprintf("%s:%s:%s", s.prefix, s.deviceID, slot)
}

// read returns the raw payload and whether it was present.
func (s *RecordStore) read(ctx context.Context, slot string) (string, bool, error) {
	v, err := s.kv.Get(ctx, s.Key(slot))
	if err != nil {
		if errors.Is(err, store.ErrMiss) {
			return "", false, nil
		}
		return "", false, storageErr("read", slot, err)
	}
	return v, true, nil
}

func (s *RecordStore) write(ctx context.Context, slot, value string) error {
	if err := s.kv.Set(ctx, s.Key(slot), value); err != nil {
		return storageErr("write", slot, err)
	}
	return nil
}

func (s *RecordStore) remove(ctx context.Context, slots ...string) error {
	keys := make([]string, len(slots))
	for i, slot := range slots {
		keys[i] = s.Key(slot)
	}
	if err := s.kv.Delete(ctx, keys...); err != nil {
		return storageErr("delete", joinSlots(slots), err)
	}
	return nil
}

func joinSlots(slots []string) string {
	if len(slots) == 1 {
		return slots[0]
	}
	return fmt.Sprintf("%v", slots)
}

// LoadMedicalID returns the stored record, or the empty record when the slot is
// missing or unreadable. Only I/O failures are returned.
func (s *RecordStore) LoadMedicalID(ctx context.Context) (models.MedicalIDRecord, error) {
	raw, ok, err := s.read(ctx, SlotMedicalID)
	if err != nil {
		return models.EmptyMedicalID(), err
	}

	rec := models.EmptyMedicalID()
	if ok {
		if err := json.Unmarshal([]byte(raw), &rec); err != nil {
			s.logger.Warn("Discarding unreadable medical id payload",
				zap.String("slot", SlotMedicalID),
				zap.Int("payload_size", len(raw)),
				zap.Error(err),
			)
			rec = models.EmptyMedicalID()
		}
	}
	rec.Photo = ""

	photo, ok, err := s.read(ctx, SlotMedicalIDPhoto)
	if err != nil {
		return models.EmptyMedicalID(), err
	}
	if ok {
		rec.Photo = photo
	}
	return rec, nil
}

// SaveMedicalID replaces the record. The photo goes to its own slot; a record
// without a photo deletes that slot so no orphaned image is left behind.
func (s *RecordStore) SaveMedicalID(ctx context.Context, rec models.MedicalIDRecord) error {
	photo := rec.Photo
	rec.Photo = ""

	payload, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("encode medical id: %w", err)
	}
	if err := s.write(ctx, SlotMedicalID, string(payload)); err != nil {
		return err
	}

	if photo != "" {
		return s.write(ctx, SlotMedicalIDPhoto, photo)
	}
	return s.remove(ctx, SlotMedicalIDPhoto)
}

// LoadMedicalIDPhoto reads the photo slot on its own.
func (s *RecordStore) LoadMedicalIDPhoto(ctx context.Context) (string, bool, error) {
	return s.read(ctx, SlotMedicalIDPhoto)
}

// ClearMedicalID removes the record and its photo.
func (s *RecordStore) ClearMedicalID(ctx context.Context) error {
	return s.remove(ctx, SlotMedicalID, SlotMedicalIDPhoto)
}

// LoadScanHistory returns the history newest first. A missing or unreadable
// payload yields an empty slice.
func (s *RecordStore) LoadScanHistory(ctx context.Context) ([]models.ScanHistoryEntry, error) {
	raw, ok, err := s.read(ctx, SlotScanHistory)
	if err != nil {
		return nil, err
	}
	if !ok {
		return []models.ScanHistoryEntry{}, nil
	}

	var entries []models.ScanHistoryEntry
	if err := json.Unmarshal([]byte(raw), &entries); err != nil {
		s.logger.Warn("Discarding unreadable scan history payload",
			zap.String("slot", SlotScanHistory),
			zap.Int("payload_size", len(raw)),
			zap.Error(err),
		)
		return []models.ScanHistoryEntry{}, nil
	}
	if entries == nil {
		entries = []models.ScanHistoryEntry{}
	}
	if len(entries) > MaxScanHistory {
		entries = entries[:MaxScanHistory]
	}
	return entries, nil
}

// AppendScanHistory puts entry at the head, keeps the newest MaxScanHistory
// entries, persists them and returns exactly what was written.
func (s *RecordStore) AppendScanHistory(ctx context.Context, entry models.ScanHistoryEntry) ([]models.ScanHistoryEntry, error) {
	s.historyMu.Lock()
	defer s.historyMu.Unlock()

	current, err := s.LoadScanHistory(ctx)
	if err != nil {
		return nil, err
	}

	updated := make([]models.ScanHistoryEntry, 0, MaxScanHistory)
	updated = append(updated, entry)
	updated = append(updated, current...)
	if len(updated) > MaxScanHistory {
		evicted := updated[MaxScanHistory:]
		updated = updated[:MaxScanHistory]
		s.logger.Debug("Evicted scan history entries",
			zap.Int("evicted", len(evicted)),
			zap.Int64("oldest_kept_id", updated[len(updated)-1].ID),
		)
	}

	payload, err := json.Marshal(updated)
	if err != nil {
		return nil, fmt.Errorf("encode scan history: %w", err)
	}
	if err := s.write(ctx, SlotScanHistory, string(payload)); err != nil {
		return nil, err
	}
	return updated, nil
}

// GetSessionMarker returns the last signed-in email, if any. It is a cache for
// prefilling forms, never proof of a live session.
func (s *RecordStore) GetSessionMarker(ctx context.Context) (string, bool, error) {
	v, ok, err := s.read(ctx, SlotSessionEmail)
	if err != nil || !ok || v == "" {
		return "", false, err
	}
	return v, true, nil
}

// SetSessionMarker records the last signed-in email.
func (s *RecordStore) SetSessionMarker(ctx context.Context, email string) error {
	return s.write(ctx, SlotSessionEmail, email)
}

// ClearSession removes only the session marker.
func (s *RecordStore) ClearSession(ctx context.Context) error {
	return s.remove(ctx, SlotSessionEmail)
}

// ClearAll removes every slot owned by the store (full logout cleanup).
func (s *RecordStore) ClearAll(ctx context.Context) error {
	if err := s.remove(ctx, AllSlots...); err != nil {
		return err
	}
	s.logger.Info("Cleared all record slots")
	return nil
}
