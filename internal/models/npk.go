package models

import "time"

const (
	ReadingSourceManual    = "manual"
	ReadingSourceIngestion = "ingestion"
)

// NpkReading mirrors one sample from the field sensor: nitrogen, phosphorus,
// potassium, conductivity, humidity percentage, moisture and temperature.
type NpkReading struct {
	ID     string
	UserID string
	C1     float64
	HP1    float64
	K1     float64
	M1     float64
	N1     float64
	P1     float64
	T1     float64
	Source string
	ReadAt time.Time
}

type NpkPrediction struct {
	ID           string
	ReadingID    string
	RecommendedN float64
	RecommendedP float64
	RecommendedK float64
	ModelVer     string
	CreatedAt    time.Time
}
