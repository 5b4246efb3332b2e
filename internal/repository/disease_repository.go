package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"agrisense/api/internal/models"
)

var ErrReportNotFound = errors.New("report not found")

type DiseaseRepository struct {
	pool *pgxpool.Pool
}

func NewDiseaseRepository(pool *pgxpool.Pool) *DiseaseRepository {
	return &DiseaseRepository{pool: pool}
}

func (r *DiseaseRepository) Create(ctx context.Context, report models.DiseaseReport) error {
	const query = `
		INSERT INTO disease_reports (id, user_id, image_key, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, NOW(), NOW())
	`

	_, err := r.pool.Exec(ctx, query,
		report.ID,
		report.UserID,
		report.ImageKey,
		report.Status,
	)
	return err
}

// GetForUser scopes the lookup to the owner so one farmer can never read
// another's report.
func (r *DiseaseRepository) GetForUser(ctx context.Context, id string, userID string) (models.DiseaseReport, error) {
	const query = `
		SELECT id, user_id, image_key, status, label, confidence, model_ver, created_at, updated_at
		FROM disease_reports
		WHERE id = $1 AND user_id = $2
	`

	row := r.pool.QueryRow(ctx, query, id, userID)
	var report models.DiseaseReport
	if err := row.Scan(
		&report.ID,
		&report.UserID,
		&report.ImageKey,
		&report.Status,
		&report.Label,
		&report.Confidence,
		&report.ModelVer,
		&report.CreatedAt,
		&report.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.DiseaseReport{}, ErrReportNotFound
		}
		return models.DiseaseReport{}, err
	}
	return report, nil
}

func (r *DiseaseRepository) SetResult(ctx context.Context, id string, label string, confidence float64, modelVer string) error {
	const query = `
		UPDATE disease_reports
		SET status = $2, label = $3, confidence = $4, model_ver = $5, updated_at = NOW()
		WHERE id = $1
	`

	cmd, err := r.pool.Exec(ctx, query, id, models.ReportStatusDone, label, confidence, modelVer)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrReportNotFound
	}
	return nil
}

func (r *DiseaseRepository) MarkFailed(ctx context.Context, id string) error {
	const query = `
		UPDATE disease_reports SET status = $2, updated_at = NOW() WHERE id = $1
	`
	_, err := r.pool.Exec(ctx, query, id, models.ReportStatusFailed)
	return err
}
