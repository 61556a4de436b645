package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/scholaco/tracker/internal/domain"
	"github.com/scholaco/tracker/internal/repository"
	"github.com/scholaco/tracker/pkg/blacklist"
	"github.com/scholaco/tracker/pkg/email"
	"github.com/scholaco/tracker/pkg/jwt"
	"github.com/scholaco/tracker/pkg/password"
)

var (
	ErrInvalidCredentials = fmt.Errorf("%w: invalid credentials", domain.ErrUnauthenticated)
	ErrEmailTaken         = fmt.Errorf("%w: email already registered", domain.ErrValidation)
	ErrSessionRevoked     = fmt.Errorf("%w: session revoked", domain.ErrUnauthenticated)
)

// Mailer is the subset of email.Mailer the services send through. A nil
// Mailer disables outbound email.
type Mailer interface {
	SendWelcome(ctx context.Context, to, name string) (*email.SendResult, error)
	SendDeadlineReminder(ctx context.Context, to, appName, organization string, deadline time.Time, daysLeft int) (*email.SendResult, error)
	SendApplicationSubmitted(ctx context.Context, to, appName string) (*email.SendResult, error)
}

type AuthService struct {
	userRepo       repository.UserRepository
	profileRepo    repository.ProfileRepository
	sessionRepo    repository.SessionRepository
	tokenService   *jwt.TokenService
	tokenBlacklist *blacklist.TokenBlacklist
	mailer         Mailer
	logger         *zap.Logger
	hashParams     password.Params
}

type SignUpRequest struct {
	Email     string `json:"email" validate:"required,email"`
	Password  string `json:"password" validate:"required,min=8"`
	FirstName string `json:"first_name" validate:"required,max=100"`
	LastName  string `json:"last_name" validate:"omitempty,max=100"`
}

// FullName joins the name parts the way the profile stores them.
func (r SignUpRequest) FullName() string {
	return strings.TrimSpace(strings.TrimSpace(r.FirstName) + " " + strings.TrimSpace(r.LastName))
}

type SignInRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type AuthResponse struct {
	Tokens *domain.TokenPair `json:"tokens"`
	User   *domain.User      `json:"user"`
}

func NewAuthService(
	userRepo repository.UserRepository,
	profileRepo repository.ProfileRepository,
	sessionRepo repository.SessionRepository,
	tokenService *jwt.TokenService,
	tokenBlacklist *blacklist.TokenBlacklist,
	mailer Mailer,
	logger *zap.Logger,
) *AuthService {
	return &AuthService{
		userRepo:       userRepo,
		profileRepo:    profileRepo,
		sessionRepo:    sessionRepo,
		tokenService:   tokenService,
		tokenBlacklist: tokenBlacklist,
		mailer:         mailer,
		logger:         logger,
		hashParams:     password.DefaultParams,
	}
}

// SignUp creates the identity, then the profile and welcome email as
// secondary steps. Neither secondary failure undoes the account.
func (s *AuthService) SignUp(ctx context.Context, req SignUpRequest) (*AuthResponse, error) {
	addr := strings.TrimSpace(req.Email)

	existing, err := s.userRepo.GetByEmail(ctx, addr)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}
	if existing != nil {
		return nil, ErrEmailTaken
	}

	hashed, err := password.HashWith(req.Password, s.hashParams)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &domain.User{
		ID:           uuid.New(),
		Email:        addr,
		PasswordHash: hashed,
		FullName:     req.FullName(),
		CreatedAt:    time.Now(),
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}

	profile := &domain.Profile{ID: user.ID, Email: user.Email, FullName: user.FullName}
	if err := s.profileRepo.Create(ctx, profile); err != nil {
		s.logger.Error("profile write failed after sign-up; account left without profile",
			zap.String("user_id", user.ID.String()),
			zap.Error(err))
	}

	tokens, err := s.startSession(ctx, user)
	if err != nil {
		return nil, err
	}

	if s.mailer != nil {
		if _, err := s.mailer.SendWelcome(ctx, user.Email, strings.TrimSpace(req.FirstName)); err != nil {
			s.logger.Warn("welcome email not sent", zap.String("user_id", user.ID.String()), zap.Error(err))
		}
	}

	return &AuthResponse{Tokens: tokens, User: user}, nil
}

func (s *AuthService) SignIn(ctx context.Context, req SignInRequest) (*AuthResponse, error) {
	user, err := s.userRepo.GetByEmail(ctx, strings.TrimSpace(req.Email))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	valid, err := password.Verify(req.Password, user.PasswordHash)
	if err != nil {
		s.logger.Error("stored password hash unreadable", zap.String("user_id", user.ID.String()), zap.Error(err))
		return nil, ErrInvalidCredentials
	}
	if !valid {
		return nil, ErrInvalidCredentials
	}

	tokens, err := s.startSession(ctx, user)
	if err != nil {
		return nil, err
	}

	return &AuthResponse{Tokens: tokens, User: user}, nil
}

// Refresh rotates the refresh token of an existing session.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*domain.TokenPair, error) {
	claims, err := s.tokenService.ValidateToken(refreshToken)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid refresh token", domain.ErrUnauthenticated)
	}
	if claims.TokenType != domain.TokenTypeRefresh {
		return nil, fmt.Errorf("%w: token is not a refresh token", domain.ErrUnauthenticated)
	}

	if err := s.checkSession(ctx, claims.SessionID); err != nil {
		return nil, err
	}

	session, err := s.sessionRepo.GetByToken(ctx, hashToken(refreshToken))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("%w: session not found", domain.ErrUnauthenticated)
		}
		return nil, err
	}

	user, err := s.userRepo.GetByID(ctx, session.UserID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("%w: user no longer exists", domain.ErrUnauthenticated)
		}
		return nil, err
	}

	tokens, err := s.tokenService.GenerateTokenPair(user, session.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to issue tokens: %w", err)
	}

	session.RefreshTokenHash = hashToken(tokens.RefreshToken)
	session.ExpiresAt = time.Now().Add(s.tokenService.RefreshExpiry())
	if err := s.sessionRepo.Update(ctx, session); err != nil {
		return nil, err
	}

	return tokens, nil
}

// SignOut ends the session behind claims. The access token and every other
// token of the session stop validating immediately.
func (s *AuthService) SignOut(ctx context.Context, claims *domain.Claims) error {
	if err := s.sessionRepo.Delete(ctx, claims.SessionID); err != nil && !errors.Is(err, domain.ErrNotFound) {
		return err
	}

	if claims.ExpiresAt != nil {
		if err := s.tokenBlacklist.RevokeToken(ctx, claims.ID, claims.ExpiresAt.Time); err != nil {
			s.logger.Warn("access token not revoked", zap.String("jti", claims.ID), zap.Error(err))
		}
	}

	if err := s.tokenBlacklist.RevokeSession(ctx, claims.SessionID.String(), s.tokenService.RefreshExpiry()); err != nil {
		return fmt.Errorf("%w: failed to revoke session: %v", domain.ErrTransport, err)
	}

	return nil
}

// ValidateAccess parses an access token and rejects revoked ones.
func (s *AuthService) ValidateAccess(ctx context.Context, accessToken string) (*domain.Claims, error) {
	claims, err := s.tokenService.ValidateToken(accessToken)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid or expired token", domain.ErrUnauthenticated)
	}
	if claims.TokenType != domain.TokenTypeAccess {
		return nil, fmt.Errorf("%w: token is not an access token", domain.ErrUnauthenticated)
	}

	revoked, err := s.tokenBlacklist.IsTokenRevoked(ctx, claims.ID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrTransport, err)
	}
	if revoked {
		return nil, fmt.Errorf("%w: token has been revoked", domain.ErrUnauthenticated)
	}

	if err := s.checkSession(ctx, claims.SessionID); err != nil {
		return nil, err
	}

	return claims, nil
}

// CurrentUser resolves a persisted session to its user.
func (s *AuthService) CurrentUser(ctx context.Context, sessionID uuid.UUID) (*domain.User, error) {
	if err := s.checkSession(ctx, sessionID); err != nil {
		return nil, err
	}

	session, err := s.sessionRepo.GetByID(ctx, sessionID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("%w: no active session", domain.ErrUnauthenticated)
		}
		return nil, err
	}

	user, err := s.userRepo.GetByID(ctx, session.UserID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("%w: user no longer exists", domain.ErrUnauthenticated)
		}
		return nil, err
	}

	return user, nil
}

func (s *AuthService) Profile(ctx context.Context, userID uuid.UUID) (*domain.Profile, error) {
	return s.profileRepo.GetByID(ctx, userID)
}

// PurgeExpiredSessions removes sessions past their refresh expiry.
func (s *AuthService) PurgeExpiredSessions(ctx context.Context) {
	n, err := s.sessionRepo.DeleteExpired(ctx)
	if err != nil {
		s.logger.Error("failed to purge expired sessions", zap.Error(err))
		return
	}
	if n > 0 {
		s.logger.Info("purged expired sessions", zap.Int64("count", n))
	}
}

func (s *AuthService) startSession(ctx context.Context, user *domain.User) (*domain.TokenPair, error) {
	sessionID := uuid.New()

	tokens, err := s.tokenService.GenerateTokenPair(user, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to issue tokens: %w", err)
	}

	now := time.Now()
	session := &domain.Session{
		ID:               sessionID,
		UserID:           user.ID,
		RefreshTokenHash: hashToken(tokens.RefreshToken),
		ExpiresAt:        now.Add(s.tokenService.RefreshExpiry()),
		CreatedAt:        now,
	}
	if err := s.sessionRepo.Create(ctx, session); err != nil {
		return nil, err
	}

	return tokens, nil
}

func (s *AuthService) checkSession(ctx context.Context, sessionID uuid.UUID) error {
	revoked, err := s.tokenBlacklist.IsSessionRevoked(ctx, sessionID.String())
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrTransport, err)
	}
	if revoked {
		return ErrSessionRevoked
	}
	return nil
}

// hashToken creates a SHA-256 hash of the token
func hashToken(token string) string {
	hash := sha256.Sum256([]byte(token))
	return hex.EncodeToString(hash[:])
}
