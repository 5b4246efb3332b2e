package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"agrisense/api/internal/ids"
	"agrisense/api/internal/models"
	"agrisense/api/internal/repository"
	"agrisense/api/internal/security"
)

type UserStore interface {
	Create(ctx context.Context, user models.User) error
	FindByPhone(ctx context.Context, phone string) (models.User, error)
	GetByID(ctx context.Context, id string) (models.User, error)
}

// SessionStore persists refresh lineages. Rotate must be atomic: revoke the
// old jti only if still active and insert the successor in one step, so two
// refreshes racing on the same token cannot both win.
type SessionStore interface {
	Create(ctx context.Context, session models.Session) error
	FindByJTI(ctx context.Context, jti string) (models.Session, error)
	Rotate(ctx context.Context, oldJTI string, next models.Session) error
	Revoke(ctx context.Context, jti string) error
}

type AuthService struct {
	users    UserStore
	sessions SessionStore
	codec    *security.TokenCodec
	log      zerolog.Logger
}

func NewAuthService(users UserStore, sessions SessionStore, codec *security.TokenCodec, log zerolog.Logger) *AuthService {
	return &AuthService{
		users:    users,
		sessions: sessions,
		codec:    codec,
		log:      log,
	}
}

type RegisterInput struct {
	Phone    string
	Password string
	Name     string
}

type LoginInput struct {
	Phone     string
	Password  string
	UserAgent string
	IP        string
}

type AuthResult struct {
	User         models.User
	AccessToken  string
	RefreshToken string
}

func (s *AuthService) Register(ctx context.Context, input RegisterInput) (models.User, error) {
	input.Phone = strings.TrimSpace(input.Phone)
	if input.Phone == "" || input.Password == "" {
		return models.User{}, fmt.Errorf("%w: phone and password required", ErrValidation)
	}

	passwordHash, err := security.HashPassword(input.Password)
	if err != nil {
		return models.User{}, fmt.Errorf("hash password: %w", err)
	}

	user := models.User{
		ID:           ids.New(),
		Phone:        input.Phone,
		PasswordHash: passwordHash,
		Name:         input.Name,
		Role:         models.UserRoleFarmer,
	}

	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicatePhone) {
			return models.User{}, ErrConflict
		}
		return models.User{}, err
	}

	s.log.Info().Str("user_id", user.ID).Msg("user registered")
	return user, nil
}

func (s *AuthService) Login(ctx context.Context, input LoginInput) (AuthResult, error) {
	user, err := s.users.FindByPhone(ctx, strings.TrimSpace(input.Phone))
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			// same error as a bad password, so callers cannot probe for
			// registered phone numbers
			return AuthResult{}, ErrInvalidCredentials
		}
		return AuthResult{}, err
	}

	ok, err := security.VerifyPassword(input.Password, user.PasswordHash)
	if err != nil || !ok {
		return AuthResult{}, ErrInvalidCredentials
	}

	session := models.Session{
		ID:         ids.New(),
		UserID:     user.ID,
		RefreshJTI: uuid.NewString(),
		UserAgent:  input.UserAgent,
		IP:         input.IP,
	}
	if err := s.sessions.Create(ctx, session); err != nil {
		return AuthResult{}, err
	}

	result, err := s.issuePair(user, session.RefreshJTI)
	if err != nil {
		return AuthResult{}, err
	}

	s.log.Info().Str("user_id", user.ID).Str("jti", session.RefreshJTI).Msg("login")
	return result, nil
}

// Refresh exchanges a live refresh token for a new access/refresh pair,
// rotating the session row. A token that fails signature or expiry checks
// yields security.ErrInvalidToken; a well-formed token whose session row is
// missing or revoked (replay of a rotated-away token) yields
// ErrInvalidSession.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string, userAgent string, ip string) (AuthResult, error) {
	claims, err := s.codec.VerifyRefresh(refreshToken)
	if err != nil {
		s.log.Warn().Err(err).Msg("refresh rejected: invalid token")
		return AuthResult{}, err
	}

	session, err := s.sessions.FindByJTI(ctx, claims.ID)
	if err != nil {
		if errors.Is(err, repository.ErrSessionNotFound) {
			s.log.Warn().Str("jti", claims.ID).Msg("refresh rejected: unknown session")
			return AuthResult{}, ErrInvalidSession
		}
		return AuthResult{}, err
	}
	if session.Revoked() {
		s.log.Warn().Str("jti", claims.ID).Msg("refresh rejected: replayed token")
		return AuthResult{}, ErrInvalidSession
	}

	user, err := s.users.GetByID(ctx, session.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return AuthResult{}, ErrInvalidSession
		}
		return AuthResult{}, err
	}

	next := models.Session{
		ID:         ids.New(),
		UserID:     session.UserID,
		RefreshJTI: uuid.NewString(),
		UserAgent:  userAgent,
		IP:         ip,
	}
	if err := s.sessions.Rotate(ctx, claims.ID, next); err != nil {
		if errors.Is(err, repository.ErrSessionRevoked) {
			// lost a double-refresh race; the winner already rotated
			s.log.Warn().Str("jti", claims.ID).Msg("refresh rejected: rotation race lost")
			return AuthResult{}, ErrInvalidSession
		}
		return AuthResult{}, err
	}

	result, err := s.issuePair(user, next.RefreshJTI)
	if err != nil {
		return AuthResult{}, err
	}

	s.log.Info().Str("user_id", user.ID).Str("jti", next.RefreshJTI).Msg("session rotated")
	return result, nil
}

// Logout is best-effort: an unparseable or expired token means the session is
// already unusable, so there is nothing to revoke and no error to surface.
func (s *AuthService) Logout(ctx context.Context, refreshToken string) {
	claims, err := s.codec.VerifyRefresh(refreshToken)
	if err != nil {
		s.log.Debug().Err(err).Msg("logout with invalid token")
		return
	}

	if err := s.sessions.Revoke(ctx, claims.ID); err != nil {
		s.log.Debug().Err(err).Str("jti", claims.ID).Msg("logout revoke no-op")
		return
	}

	s.log.Info().Str("jti", claims.ID).Msg("session revoked")
}

func (s *AuthService) Me(ctx context.Context, userID string) (models.User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return models.User{}, ErrNotFound
		}
		return models.User{}, err
	}
	return user, nil
}

func (s *AuthService) issuePair(user models.User, jti string) (AuthResult, error) {
	access, err := s.codec.IssueAccess(user.ID, string(user.Role))
	if err != nil {
		return AuthResult{}, err
	}
	refresh, err := s.codec.IssueRefresh(user.ID, jti)
	if err != nil {
		return AuthResult{}, err
	}
	return AuthResult{
		User:         user,
		AccessToken:  access,
		RefreshToken: refresh,
	}, nil
}
