package service

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"agrisense/api/internal/config"
	"agrisense/api/internal/models"
)

func newDiseaseService(store ReportStore) *DiseaseService {
	return NewDiseaseService(store, nil, config.DiseaseConfig{Stream: "disease:reports"}, zerolog.Nop())
}

func TestCreateReport(t *testing.T) {
	store := newFakeReportStore()
	svc := newDiseaseService(store)
	ctx := context.Background()

	t.Run("missing image key rejected", func(t *testing.T) {
		_, err := svc.CreateReport(ctx, "user-1", "")
		assert.ErrorIs(t, err, ErrValidation)
	})

	t.Run("report starts pending", func(t *testing.T) {
		report, err := svc.CreateReport(ctx, "user-1", "users/user-1/disease/abc.jpg")
		require.NoError(t, err)
		assert.Equal(t, models.ReportStatusPending, report.Status)
		assert.NotEmpty(t, report.ID)
	})
}

func TestGetReportScopedToOwner(t *testing.T) {
	store := newFakeReportStore()
	svc := newDiseaseService(store)
	ctx := context.Background()

	report, err := svc.CreateReport(ctx, "user-1", "users/user-1/disease/abc.jpg")
	require.NoError(t, err)

	_, err = svc.GetReport(ctx, report.ID, "user-2")
	assert.ErrorIs(t, err, ErrNotFound)

	got, err := svc.GetReport(ctx, report.ID, "user-1")
	require.NoError(t, err)
	assert.Equal(t, report.ID, got.ID)
}

func TestProcessResolvesReport(t *testing.T) {
	store := newFakeReportStore()
	svc := newDiseaseService(store)
	ctx := context.Background()

	report, err := svc.CreateReport(ctx, "user-1", "users/user-1/disease/abc.jpg")
	require.NoError(t, err)

	require.NoError(t, svc.Process(ctx, report.ID, report.ImageKey))

	got, err := svc.GetReport(ctx, report.ID, "user-1")
	require.NoError(t, err)
	assert.Equal(t, models.ReportStatusDone, got.Status)
	require.NotNil(t, got.Label)
	assert.Contains(t, []string{"blight", "rust", "mildew", "healthy"}, *got.Label)
	require.NotNil(t, got.Confidence)
	assert.GreaterOrEqual(t, *got.Confidence, 0.6)
	assert.LessOrEqual(t, *got.Confidence, 1.0)
	require.NotNil(t, got.ModelVer)
	assert.Equal(t, "disease-stub-0.1", *got.ModelVer)
}

func TestClassifyBounds(t *testing.T) {
	for i := 0; i < 100; i++ {
		result := Classify("any-key")
		assert.Contains(t, []string{"blight", "rust", "mildew", "healthy"}, result.Label)
		assert.GreaterOrEqual(t, result.Confidence, 0.6)
		assert.LessOrEqual(t, result.Confidence, 1.0)
	}
}
