package service

import (
	"context"
	"errors"
	"math/rand"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"agrisense/api/internal/config"
	"agrisense/api/internal/ids"
	"agrisense/api/internal/models"
	"agrisense/api/internal/repository"
)

const diseaseModelVersion = "disease-stub-0.1"

var diseaseLabels = []string{"blight", "rust", "mildew", "healthy"}

type ReportStore interface {
	Create(ctx context.Context, report models.DiseaseReport) error
	GetForUser(ctx context.Context, id string, userID string) (models.DiseaseReport, error)
	SetResult(ctx context.Context, id string, label string, confidence float64, modelVer string) error
	MarkFailed(ctx context.Context, id string) error
}

type DiseaseService struct {
	reports ReportStore
	queue   *redis.Client
	cfg     config.DiseaseConfig
	log     zerolog.Logger
}

func NewDiseaseService(reports ReportStore, queue *redis.Client, cfg config.DiseaseConfig, log zerolog.Logger) *DiseaseService {
	return &DiseaseService{
		reports: reports,
		queue:   queue,
		cfg:     cfg,
		log:     log,
	}
}

// CreateReport persists a PENDING report and hands classification off to the
// stream consumer. A failed enqueue leaves the report pending rather than
// failing the request.
func (s *DiseaseService) CreateReport(ctx context.Context, userID string, imageKey string) (models.DiseaseReport, error) {
	if imageKey == "" {
		return models.DiseaseReport{}, ErrValidation
	}

	report := models.DiseaseReport{
		ID:       ids.New(),
		UserID:   userID,
		ImageKey: imageKey,
		Status:   models.ReportStatusPending,
	}

	if err := s.reports.Create(ctx, report); err != nil {
		return models.DiseaseReport{}, err
	}

	if s.queue != nil {
		err := s.queue.XAdd(ctx, &redis.XAddArgs{
			Stream: s.cfg.Stream,
			Values: map[string]any{
				"reportId": report.ID,
				"imageKey": report.ImageKey,
			},
		}).Err()
		if err != nil {
			s.log.Warn().Err(err).Str("report_id", report.ID).Msg("enqueue classification failed")
		}
	}

	return report, nil
}

func (s *DiseaseService) GetReport(ctx context.Context, id string, userID string) (models.DiseaseReport, error) {
	report, err := s.reports.GetForUser(ctx, id, userID)
	if err != nil {
		if errors.Is(err, repository.ErrReportNotFound) {
			return models.DiseaseReport{}, ErrNotFound
		}
		return models.DiseaseReport{}, err
	}
	return report, nil
}

type Classification struct {
	Label      string
	Confidence float64
	ModelVer   string
}

// Classify is the stand-in for the real model: a pseudo-random label with a
// confidence in [0.6, 1.0).
func Classify(imageKey string) Classification {
	return Classification{
		Label:      diseaseLabels[rand.Intn(len(diseaseLabels))],
		Confidence: float64(int((0.6+rand.Float64()*0.4)*100)) / 100,
		ModelVer:   diseaseModelVersion,
	}
}

// Process resolves one queued report. Called by the stream consumer.
func (s *DiseaseService) Process(ctx context.Context, reportID string, imageKey string) error {
	result := Classify(imageKey)

	if err := s.reports.SetResult(ctx, reportID, result.Label, result.Confidence, result.ModelVer); err != nil {
		if markErr := s.reports.MarkFailed(ctx, reportID); markErr != nil {
			s.log.Error().Err(markErr).Str("report_id", reportID).Msg("mark failed errored")
		}
		return err
	}

	s.log.Info().
		Str("report_id", reportID).
		Str("label", result.Label).
		Float64("confidence", result.Confidence).
		Msg("report classified")
	return nil
}
