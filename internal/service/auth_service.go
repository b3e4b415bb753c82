package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/minsu-dev/board-api/internal/models"
	appErrors "github.com/minsu-dev/board-api/pkg/errors"
)

type authUserRepository interface {
	FindByUsername(ctx context.Context, username string) (*models.User, error)
	UpdateLastLogin(ctx context.Context, id int64, ts time.Time) error
}

// revocationStore is the injected handle to the external token state. One
// implementation per backend; tests substitute an in-memory fake.
type revocationStore interface {
	Blacklist(ctx context.Context, token string, ttl time.Duration) error
	IsBlacklisted(ctx context.Context, token string) (bool, error)
	AddRefresh(ctx context.Context, userID int64, token string) error
	IsValidRefresh(ctx context.Context, userID int64, token string) (bool, error)
	RevokeRefresh(ctx context.Context, userID int64, token string) error
	RevokeAllRefresh(ctx context.Context, userID int64) error
}

// AuthService orchestrates the session lifecycle: login, refresh, logout and
// logout-all, plus the per-request authorization used by the JWT middleware.
type AuthService struct {
	repo      authUserRepository
	store     revocationStore
	signer    *TokenSigner
	audit     *AuditService
	validator *validator.Validate
	logger    *zap.Logger
	metrics   *MetricsService
}

// NewAuthService constructs an AuthService instance.
func NewAuthService(repo authUserRepository, store revocationStore, signer *TokenSigner, audit *AuditService, validate *validator.Validate, logger *zap.Logger, metrics *MetricsService) *AuthService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &AuthService{repo: repo, store: store, signer: signer, audit: audit, validator: validate, logger: logger, metrics: metrics}
}

// Login authenticates a user and returns an access/refresh token pair. The
// refresh token is recorded in the revocation store's per-user set; tokens
// from concurrent logins on other devices stay valid.
func (s *AuthService) Login(ctx context.Context, req models.LoginRequest) (*models.TokenResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid login payload")
	}

	user, err := s.repo.FindByUsername(ctx, req.Username)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			s.metrics.RecordAuthAttempt("login", false)
			return nil, appErrors.Clone(appErrors.ErrInvalidCredentials, "")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch user")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		s.metrics.RecordAuthAttempt("login", false)
		return nil, appErrors.Clone(appErrors.ErrInvalidCredentials, "")
	}

	accessToken, err := s.signer.IssueAccess(user, s.signer.AccessTTL())
	if err != nil {
		return nil, err
	}

	refreshToken, err := s.signer.IssueRefresh(user)
	if err != nil {
		return nil, err
	}

	if err := s.store.AddRefresh(ctx, user.ID, refreshToken); err != nil {
		return nil, s.storeError(err, "failed to persist refresh token")
	}

	if err := s.repo.UpdateLastLogin(ctx, user.ID, time.Now().UTC()); err != nil {
		s.logger.Warn("failed to update last login", zap.Error(err))
	}
	s.recordAudit(user.ID, models.AuditActionLogin, req.IP, req.UserAgent)
	s.metrics.RecordAuthAttempt("login", true)

	return &models.TokenResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		TokenType:    "bearer",
	}, nil
}

// Refresh exchanges a refresh token for a new access token. The refresh token
// is not rotated: the same one is echoed back and stays valid until its own
// expiry or explicit revocation.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*models.TokenResponse, error) {
	claims, err := s.signer.Verify(refreshToken)
	if err != nil {
		s.metrics.RecordAuthAttempt("refresh", false)
		return nil, err
	}

	if claims.TokenType != models.TokenTypeRefresh || claims.Subject == "" || claims.UserID == 0 {
		s.metrics.RecordAuthAttempt("refresh", false)
		return nil, appErrors.Clone(appErrors.ErrInvalidToken, "")
	}

	valid, err := s.store.IsValidRefresh(ctx, claims.UserID, refreshToken)
	if err != nil {
		return nil, s.storeError(err, "failed to check refresh token")
	}
	if !valid {
		s.metrics.RecordAuthAttempt("refresh", false)
		return nil, appErrors.Clone(appErrors.ErrInvalidToken, "")
	}

	user, err := s.repo.FindByUsername(ctx, claims.Subject)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			s.metrics.RecordAuthAttempt("refresh", false)
			return nil, appErrors.Clone(appErrors.ErrInvalidToken, "")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load user")
	}
	if !user.Active {
		s.metrics.RecordAuthAttempt("refresh", false)
		return nil, appErrors.Clone(appErrors.ErrInvalidToken, "")
	}

	accessToken, err := s.signer.IssueAccess(user, s.signer.AccessTTL())
	if err != nil {
		return nil, err
	}

	s.recordAudit(user.ID, models.AuditActionRefresh, "", "")
	s.metrics.RecordAuthAttempt("refresh", true)

	return &models.TokenResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		TokenType:    "bearer",
	}, nil
}

// Logout blacklists the current access token for exactly its remaining
// lifetime, and revokes one refresh token when the caller supplies it.
func (s *AuthService) Logout(ctx context.Context, userID int64, accessToken, refreshToken, ip, userAgent string) error {
	ttl := s.signer.RemainingTTL(accessToken)
	if err := s.store.Blacklist(ctx, accessToken, ttl); err != nil {
		return s.storeError(err, "failed to blacklist access token")
	}

	s.metrics.RecordTokenRevoked()

	if refreshToken != "" {
		if err := s.store.RevokeRefresh(ctx, userID, refreshToken); err != nil {
			return s.storeError(err, "failed to revoke refresh token")
		}
	}

	s.recordAudit(userID, models.AuditActionLogout, ip, userAgent)
	return nil
}

// LogoutAll blacklists the current access token and revokes every refresh
// token issued to the user, logging out all devices. Access tokens issued to
// other sessions stay valid until their natural expiry; the blacklist is
// per-token, not per-user.
func (s *AuthService) LogoutAll(ctx context.Context, userID int64, accessToken, ip, userAgent string) error {
	ttl := s.signer.RemainingTTL(accessToken)
	if err := s.store.Blacklist(ctx, accessToken, ttl); err != nil {
		return s.storeError(err, "failed to blacklist access token")
	}

	s.metrics.RecordTokenRevoked()

	if err := s.store.RevokeAllRefresh(ctx, userID); err != nil {
		return s.storeError(err, "failed to revoke refresh tokens")
	}

	s.recordAudit(userID, models.AuditActionLogoutAll, ip, userAgent)
	return nil
}

// Authorize is the per-request access gate. The blacklist check runs before
// signature verification: a cryptographically valid but revoked token must
// never reach business logic. Store errors deny access (fail-closed).
func (s *AuthService) Authorize(ctx context.Context, accessToken string) (*models.User, error) {
	revoked, err := s.store.IsBlacklisted(ctx, accessToken)
	if err != nil {
		return nil, s.storeError(err, "failed to check blacklist")
	}
	if revoked {
		return nil, appErrors.Clone(appErrors.ErrRevokedToken, "")
	}

	claims, err := s.signer.Verify(accessToken)
	if err != nil {
		return nil, err
	}

	if claims.Subject == "" {
		return nil, appErrors.Clone(appErrors.ErrInvalidToken, "")
	}

	user, err := s.repo.FindByUsername(ctx, claims.Subject)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrUserNotFound, "")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load user")
	}

	return user, nil
}

func (s *AuthService) recordAudit(userID int64, action, ip, userAgent string) {
	s.audit.Record(models.AuditLog{
		UserID:    &userID,
		Action:    action,
		Resource:  "auth",
		IPAddress: ip,
		UserAgent: userAgent,
	})
}

func (s *AuthService) storeError(err error, message string) error {
	s.logger.Error("revocation store failure", zap.Error(err))
	return appErrors.Wrap(err, appErrors.ErrStoreUnavailable.Code, appErrors.ErrStoreUnavailable.Status, message)
}
