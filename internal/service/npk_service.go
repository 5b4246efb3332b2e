package service

import (
	"context"
	"errors"
	"math"

	"github.com/rs/zerolog"

	"agrisense/api/internal/ids"
	"agrisense/api/internal/models"
	"agrisense/api/internal/repository"
)

const npkModelVersion = "npk-stub-0.1"

type ReadingStore interface {
	CreateReading(ctx context.Context, reading models.NpkReading) error
	LatestByUser(ctx context.Context, userID string) (models.NpkReading, error)
	ListByUser(ctx context.Context, userID string, q repository.ReadingWindow) ([]models.NpkReading, int, error)
	CreatePrediction(ctx context.Context, pred models.NpkPrediction) error
}

type NpkService struct {
	readings ReadingStore
	log      zerolog.Logger
}

func NewNpkService(readings ReadingStore, log zerolog.Logger) *NpkService {
	return &NpkService{readings: readings, log: log}
}

type ReadingInput struct {
	C1     float64
	HP1    float64
	K1     float64
	M1     float64
	N1     float64
	P1     float64
	T1     float64
	Source string
}

func (s *NpkService) CreateReading(ctx context.Context, userID string, input ReadingInput) (models.NpkReading, error) {
	source := input.Source
	if source == "" {
		source = models.ReadingSourceManual
	}

	reading := models.NpkReading{
		ID:     ids.New(),
		UserID: userID,
		C1:     input.C1,
		HP1:    input.HP1,
		K1:     input.K1,
		M1:     input.M1,
		N1:     input.N1,
		P1:     input.P1,
		T1:     input.T1,
		Source: source,
	}

	if err := s.readings.CreateReading(ctx, reading); err != nil {
		return models.NpkReading{}, err
	}
	return reading, nil
}

type ReadingPage struct {
	Items    []models.NpkReading
	Total    int
	Page     int
	PageSize int
}

func (s *NpkService) ListReadings(ctx context.Context, userID string, q repository.ReadingWindow) (ReadingPage, error) {
	if q.Page < 1 {
		q.Page = 1
	}
	if q.PageSize < 1 || q.PageSize > 100 {
		q.PageSize = 20
	}

	items, total, err := s.readings.ListByUser(ctx, userID, q)
	if err != nil {
		return ReadingPage{}, err
	}

	return ReadingPage{
		Items:    items,
		Total:    total,
		Page:     q.Page,
		PageSize: q.PageSize,
	}, nil
}

type Recommendation struct {
	RecommendedN float64
	RecommendedP float64
	RecommendedK float64
	ModelVer     string
}

// Predict derives a fertilizer recommendation from one reading. The linear
// formula stands in for a trained model; modelVer tracks which formula
// produced a stored prediction.
func Predict(r models.NpkReading) Recommendation {
	soilFactor := 1 + (r.C1-100)/500 - r.HP1/1000 + (r.M1-20)/400
	tempFactor := 1 + (r.T1-25)/200

	return Recommendation{
		RecommendedN: round2(math.Max(0, r.N1*0.7*soilFactor*tempFactor+10)),
		RecommendedP: round2(math.Max(0, r.P1*0.8*soilFactor+5)),
		RecommendedK: round2(math.Max(0, r.K1*0.85*soilFactor+5)),
		ModelVer:     npkModelVersion,
	}
}

type PredictionResult struct {
	Reading    models.NpkReading
	Prediction models.NpkPrediction
}

func (s *NpkService) PredictFromLatest(ctx context.Context, userID string) (PredictionResult, error) {
	latest, err := s.readings.LatestByUser(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNoReadings) {
			return PredictionResult{}, ErrNotFound
		}
		return PredictionResult{}, err
	}

	rec := Predict(latest)
	pred := models.NpkPrediction{
		ID:           ids.New(),
		ReadingID:    latest.ID,
		RecommendedN: rec.RecommendedN,
		RecommendedP: rec.RecommendedP,
		RecommendedK: rec.RecommendedK,
		ModelVer:     rec.ModelVer,
	}

	if err := s.readings.CreatePrediction(ctx, pred); err != nil {
		return PredictionResult{}, err
	}

	return PredictionResult{Reading: latest, Prediction: pred}, nil
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
