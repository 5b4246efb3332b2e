package models

import "time"

type ReportStatus string

const (
	ReportStatusPending ReportStatus = "PENDING"
	ReportStatusDone    ReportStatus = "DONE"
	ReportStatusFailed  ReportStatus = "FAILED"
)

type DiseaseReport struct {
	ID         string
	UserID     string
	ImageKey   string
	Status     ReportStatus
	Label      *string
	Confidence *float64
	ModelVer   *string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}
