package repository

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"agrisense/api/internal/models"
)

var ErrNoReadings = errors.New("no readings")

type NpkRepository struct {
	pool *pgxpool.Pool
}

func NewNpkRepository(pool *pgxpool.Pool) *NpkRepository {
	return &NpkRepository{pool: pool}
}

func (r *NpkRepository) CreateReading(ctx context.Context, reading models.NpkReading) error {
	const query = `
		INSERT INTO npk_readings (id, user_id, c1, hp1, k1, m1, n1, p1, t1, source, read_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, NOW())
	`

	_, err := r.pool.Exec(ctx, query,
		reading.ID,
		reading.UserID,
		reading.C1,
		reading.HP1,
		reading.K1,
		reading.M1,
		reading.N1,
		reading.P1,
		reading.T1,
		reading.Source,
	)
	return err
}

func (r *NpkRepository) LatestByUser(ctx context.Context, userID string) (models.NpkReading, error) {
	const query = `
		SELECT id, user_id, c1, hp1, k1, m1, n1, p1, t1, source, read_at
		FROM npk_readings
		WHERE user_id = $1
		ORDER BY read_at DESC
		LIMIT 1
	`

	reading, err := r.scanReading(r.pool.QueryRow(ctx, query, userID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.NpkReading{}, ErrNoReadings
		}
		return models.NpkReading{}, err
	}
	return reading, nil
}

type ReadingWindow struct {
	From     *time.Time
	To       *time.Time
	Page     int
	PageSize int
}

func (r *NpkRepository) ListByUser(ctx context.Context, userID string, q ReadingWindow) ([]models.NpkReading, int, error) {
	const query = `
		SELECT id, user_id, c1, hp1, k1, m1, n1, p1, t1, source, read_at
		FROM npk_readings
		WHERE user_id = $1
		  AND ($2::timestamptz IS NULL OR read_at >= $2)
		  AND ($3::timestamptz IS NULL OR read_at <= $3)
		ORDER BY read_at DESC
		OFFSET $4 LIMIT $5
	`

	offset := (q.Page - 1) * q.PageSize
	rows, err := r.pool.Query(ctx, query, userID, q.From, q.To, offset, q.PageSize)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var readings []models.NpkReading
	for rows.Next() {
		reading, err := r.scanReading(rows)
		if err != nil {
			return nil, 0, err
		}
		readings = append(readings, reading)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	const countQuery = `
		SELECT COUNT(*) FROM npk_readings
		WHERE user_id = $1
		  AND ($2::timestamptz IS NULL OR read_at >= $2)
		  AND ($3::timestamptz IS NULL OR read_at <= $3)
	`
	var total int
	if err := r.pool.QueryRow(ctx, countQuery, userID, q.From, q.To).Scan(&total); err != nil {
		return nil, 0, err
	}

	return readings, total, nil
}

func (r *NpkRepository) CreatePrediction(ctx context.Context, pred models.NpkPrediction) error {
	const query = `
		INSERT INTO npk_predictions (id, reading_id, recommended_n, recommended_p, recommended_k, model_ver, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, NOW())
	`

	_, err := r.pool.Exec(ctx, query,
		pred.ID,
		pred.ReadingID,
		pred.RecommendedN,
		pred.RecommendedP,
		pred.RecommendedK,
		pred.ModelVer,
	)
	return err
}

func (r *NpkRepository) scanReading(row pgx.Row) (models.NpkReading, error) {
	var reading models.NpkReading
	err := row.Scan(
		&reading.ID,
		&reading.UserID,
		&reading.C1,
		&reading.HP1,
		&reading.K1,
		&reading.M1,
		&reading.N1,
		&reading.P1,
		&reading.T1,
		&reading.Source,
		&reading.ReadAt,
	)
	return reading, err
}
