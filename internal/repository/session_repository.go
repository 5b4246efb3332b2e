package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"agrisense/api/internal/models"
)

var (
	ErrSessionNotFound = errors.New("session not found")
	ErrSessionRevoked  = errors.New("session already revoked")
)

type SessionRepository struct {
	pool *pgxpool.Pool
}

func NewSessionRepository(pool *pgxpool.Pool) *SessionRepository {
	return &SessionRepository{pool: pool}
}

func (r *SessionRepository) Create(ctx context.Context, session models.Session) error {
	const query = `
		INSERT INTO sessions (id, user_id, refresh_jti, user_agent, ip, created_at)
		VALUES ($1, $2, $3, $4, $5, NOW())
	`

	_, err := r.pool.Exec(ctx, query,
		session.ID,
		session.UserID,
		session.RefreshJTI,
		session.UserAgent,
		session.IP,
	)
	return err
}

func (r *SessionRepository) FindByJTI(ctx context.Context, jti string) (models.Session, error) {
	const query = `
		SELECT id, user_id, refresh_jti, user_agent, ip, created_at, revoked_at
		FROM sessions WHERE refresh_jti = $1
	`

	row := r.pool.QueryRow(ctx, query, jti)
	var session models.Session
	if err := row.Scan(
		&session.ID,
		&session.UserID,
		&session.RefreshJTI,
		&session.UserAgent,
		&session.IP,
		&session.CreatedAt,
		&session.RevokedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Session{}, ErrSessionNotFound
		}
		return models.Session{}, err
	}
	return session, nil
}

// Rotate revokes the row identified by oldJTI and inserts the successor in a
// single transaction. The conditional update makes rotation single-use: when
// two requests race on the same jti, exactly one commits and the other gets
// ErrSessionRevoked.
func (r *SessionRepository) Rotate(ctx context.Context, oldJTI string, next models.Session) error {
	return pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		const revoke = `
			UPDATE sessions SET revoked_at = NOW()
			WHERE refresh_jti = $1 AND revoked_at IS NULL
		`
		cmd, err := tx.Exec(ctx, revoke, oldJTI)
		if err != nil {
			return err
		}
		if cmd.RowsAffected() == 0 {
			return ErrSessionRevoked
		}

		const insert = `
			INSERT INTO sessions (id, user_id, refresh_jti, user_agent, ip, created_at)
			VALUES ($1, $2, $3, $4, $5, NOW())
		`
		_, err = tx.Exec(ctx, insert,
			next.ID,
			next.UserID,
			next.RefreshJTI,
			next.UserAgent,
			next.IP,
		)
		return err
	})
}

// Revoke marks the row for jti as revoked if it is still active. Missing or
// already revoked rows are reported via ErrSessionRevoked.
func (r *SessionRepository) Revoke(ctx context.Context, jti string) error {
	const query = `
		UPDATE sessions SET revoked_at = NOW()
		WHERE refresh_jti = $1 AND revoked_at IS NULL
	`
	cmd, err := r.pool.Exec(ctx, query, jti)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrSessionRevoked
	}
	return nil
}
