package service

import (
	"context"
	"testing"

	"quickfirstaid/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestMedicalIDService_SaveTrimsAndRoundTrips(t *testing.T) {
	ctx := context.Background()
	svc := NewMedicalIDService(newTestRecords(t), zap.NewNop())

	saved, err := svc.Save(ctx, models.MedicalIDRecord{
		Name:         "  Ali ",
		BloodType:    "o+",
		IsOrganDonor: true,
		Photo:        "cGhvdG8=",
	})
	require.NoError(t, err)
	assert.Equal(t, "Ali", saved.Name)
	assert.Equal(t, models.BloodTypeOPos, saved.BloodType)

	got, err := svc.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, saved, got)

	photo, ok, err := svc.Photo(ctx)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "cGhvdG8=", photo)
}

func TestMedicalIDService_RejectsUnknownBloodType(t *testing.T) {
	svc := NewMedicalIDService(newTestRecords(t), zap.NewNop())

	_, err := svc.Save(context.Background(), models.MedicalIDRecord{Name: "Ali", BloodType: "C+"})
	require.Error(t, err)
	assert.True(t, IsValidationError(err))

	got, err := svc.Get(context.Background())
	require.NoError(t, err)
	assert.True(t, got.IsEmpty())
}

func TestMedicalIDService_Clear(t *testing.T) {
	ctx := context.Background()
	svc := NewMedicalIDService(newTestRecords(t), zap.NewNop())

	_, err := svc.Save(ctx, models.MedicalIDRecord{Name: "Ali", Photo: "x"})
	require.NoError(t, err)
	require.NoError(t, svc.Clear(ctx))

	got, err := svc.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, models.EmptyMedicalID(), got)
	_, ok, err := svc.Photo(ctx)
	require.NoError(t, err)
	assert.False(t, ok)
}
