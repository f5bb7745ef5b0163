// Package services contains server-side business logic. This file implements
// AuthService, the orchestrator that composes the password hasher, the token
// codec, the user repository, and the revocation ledger into the account
// flows: register, login, refresh, logout, password reset, and verification.
package services

import (
	"context"
	"fmt"
	"time"

	"github.com/dmitrijs2005/authkeeper/internal/common"
	"github.com/dmitrijs2005/authkeeper/internal/logging"
	"github.com/dmitrijs2005/authkeeper/internal/server/config"
	"github.com/dmitrijs2005/authkeeper/internal/server/email"
	"github.com/dmitrijs2005/authkeeper/internal/server/models"
	"github.com/dmitrijs2005/authkeeper/internal/server/password"
	"github.com/dmitrijs2005/authkeeper/internal/server/repositories/revocations"
	"github.com/dmitrijs2005/authkeeper/internal/server/repositories/users"
	"github.com/dmitrijs2005/authkeeper/internal/server/token"
	"github.com/dmitrijs2005/authkeeper/internal/server/validation"
)

// TokenPair bundles a short-lived access token and a long-lived refresh token.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
}

// AuthResult is returned by flows that both resolve a principal and mint
// credentials for it.
type AuthResult struct {
	User   *models.User
	Tokens TokenPair
}

// ResetRequest describes an issued password reset token. The token itself is
// delivered by email; callers of the transport layer never see it.
type ResetRequest struct {
	Token     string
	ExpiresAt time.Time
}

const (
	reasonLogout        = "logout"
	reasonResetComplete = "password reset completed"

	emailSendTimeout = 10 * time.Second
)

// AuthService implements the account flows. All methods are safe for
// concurrent use.
type AuthService struct {
	users  users.Repository
	ledger revocations.Ledger
	codec  *token.Codec
	hasher *password.Hasher
	mailer email.Sender
	log    logging.Logger

	accessTTL  time.Duration
	refreshTTL time.Duration
	resetTTL   time.Duration
	appBaseURL string
}

// NewAuthService wires the orchestrator from its collaborators and config.
func NewAuthService(
	users users.Repository,
	ledger revocations.Ledger,
	codec *token.Codec,
	hasher *password.Hasher,
	mailer email.Sender,
	log logging.Logger,
	cfg *config.Config,
) *AuthService {
	return &AuthService{
		users:      users,
		ledger:     ledger,
		codec:      codec,
		hasher:     hasher,
		mailer:     mailer,
		log:        log.With("component", "auth"),
		accessTTL:  cfg.AccessTokenTTL,
		refreshTTL: cfg.RefreshTokenTTL,
		resetTTL:   cfg.PasswordResetTTL,
		appBaseURL: cfg.AppBaseURL,
	}
}

// Register creates an account and mints its first token pair. Tokens are
// issued only after the insert succeeded, so a duplicate email never receives
// credentials. A welcome email is sent in the background.
func (s *AuthService) Register(ctx context.Context, emailAddr, pw, firstName, lastName string) (*AuthResult, error) {
	if err := validation.ValidateEmail(emailAddr); err != nil {
		return nil, err
	}
	if err := validation.ValidatePassword(pw); err != nil {
		return nil, err
	}

	hash, err := s.hasher.Hash(pw)
	if err != nil {
		return nil, fmt.Errorf("%w: hashing password: %v", common.ErrInternal, err)
	}

	user := &models.User{
		Email:        validation.NormalizeEmail(emailAddr),
		PasswordHash: hash,
		FirstName:    firstName,
		LastName:     lastName,
		IsActive:     true,
	}
	created, err := s.users.Insert(ctx, user)
	if err != nil {
		return nil, fmt.Errorf("creating user: %w", err)
	}

	pair, err := s.issuePair(created)
	if err != nil {
		return nil, err
	}

	s.sendAsync(created.Email, "Welcome",
		fmt.Sprintf("Hello %s, your account has been created.", created.FirstName))

	s.log.Info(ctx, "user registered", "user_id", created.ID)
	return &AuthResult{User: created, Tokens: pair}, nil
}

// Login verifies credentials and mints a token pair. A wrong password and an
// inactive account both surface as ErrInvalidCredentials; an unknown email is
// ErrNotFound. When the stored digest is below the configured cost, the
// password is transparently rehashed.
func (s *AuthService) Login(ctx context.Context, emailAddr, pw string) (*AuthResult, error) {
	user, err := s.users.FindByEmail(ctx, validation.NormalizeEmail(emailAddr))
	if err != nil {
		return nil, fmt.Errorf("looking up user: %w", err)
	}

	if !s.hasher.Verify(pw, user.PasswordHash) {
		return nil, common.ErrInvalidCredentials
	}
	if !user.IsActive {
		return nil, common.ErrInvalidCredentials
	}

	if s.hasher.NeedsUpgrade(user.PasswordHash) {
		if rehashed, err := s.hasher.Hash(pw); err == nil {
			user.PasswordHash = rehashed
		} else {
			s.log.Warn(ctx, "password rehash failed", "user_id", user.ID, "error", err)
		}
	}

	now := time.Now().UTC()
	user.LastLoginAt = &now
	if updated, err := s.users.Update(ctx, user); err == nil {
		user = updated
	} else {
		// Login still succeeds; only bookkeeping was lost.
		s.log.Warn(ctx, "last-login update failed", "user_id", user.ID, "error", err)
	}

	pair, err := s.issuePair(user)
	if err != nil {
		return nil, err
	}

	s.log.Info(ctx, "user logged in", "user_id", user.ID)
	return &AuthResult{User: user, Tokens: pair}, nil
}

// Refresh exchanges a live refresh token for a new access token. The refresh
// token itself stays valid and is returned unchanged. The revocation check
// runs strictly after codec verification, so the ledger is never consulted
// for forged input.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*TokenPair, error) {
	claims, err := s.codec.Verify(refreshToken, token.KindRefresh)
	if err != nil {
		return nil, err
	}

	user, err := s.users.FindByID(ctx, claims.UserID)
	if err != nil {
		return nil, fmt.Errorf("looking up user: %w", err)
	}
	if !user.IsActive {
		return nil, common.ErrInvalidToken
	}

	if err := s.checkNotRevoked(ctx, claims.ID); err != nil {
		return nil, err
	}

	access, err := s.codec.Issue(token.KindAccess, user.ID, user.Email, s.accessTTL, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: issuing access token: %v", common.ErrInternal, err)
	}
	return &TokenPair{AccessToken: access, RefreshToken: refreshToken}, nil
}

// Logout revokes a token. The token must still verify in full: signature,
// expiry, and the caller's claim about its kind are all checked before the
// ledger is touched. An expired token cannot be logged out; it is already
// dead.
func (s *AuthService) Logout(ctx context.Context, tokenStr string, kind token.Kind) error {
	claims, err := s.codec.Verify(tokenStr, kind)
	if err != nil {
		return err
	}

	entry := &models.RevocationEntry{
		TokenID:   claims.ID,
		UserID:    claims.UserID,
		Kind:      string(claims.Kind),
		Reason:    reasonLogout,
		RevokedAt: time.Now().UTC(),
		ExpiresAt: claims.ExpiresAt.Time.UTC(),
	}
	if err := s.ledger.Revoke(ctx, entry); err != nil {
		return fmt.Errorf("%w: recording revocation: %v", common.ErrStoreUnavailable, err)
	}

	s.log.Info(ctx, "token revoked", "user_id", claims.UserID, "kind", claims.Kind, "reason", reasonLogout)
	return nil
}

// RequestPasswordReset issues a password_reset token for the account and
// emails a reset link in the background.
func (s *AuthService) RequestPasswordReset(ctx context.Context, emailAddr string) (*ResetRequest, error) {
	user, err := s.users.FindByEmail(ctx, validation.NormalizeEmail(emailAddr))
	if err != nil {
		return nil, fmt.Errorf("looking up user: %w", err)
	}
	if !user.IsActive {
		return nil, common.ErrNotFound
	}

	resetToken, err := s.codec.Issue(token.KindPasswordReset, user.ID, user.Email, s.resetTTL, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: issuing reset token: %v", common.ErrInternal, err)
	}
	expiresAt, err := s.codec.ExpiryOf(resetToken)
	if err != nil {
		return nil, fmt.Errorf("%w: reading reset token expiry: %v", common.ErrInternal, err)
	}

	s.sendAsync(user.Email, "Password reset",
		fmt.Sprintf("To reset your password, follow: %s/reset?token=%s", s.appBaseURL, resetToken))

	s.log.Info(ctx, "password reset requested", "user_id", user.ID)
	return &ResetRequest{Token: resetToken, ExpiresAt: expiresAt}, nil
}

// ConfirmPasswordReset validates a reset token, stores the new password, and
// revokes the token so it cannot be replayed. A fresh token pair is returned
// so the caller is logged in immediately.
func (s *AuthService) ConfirmPasswordReset(ctx context.Context, resetToken, newPassword string) (*AuthResult, error) {
	claims, err := s.codec.Verify(resetToken, token.KindPasswordReset)
	if err != nil {
		return nil, err
	}
	if err := s.checkNotRevoked(ctx, claims.ID); err != nil {
		return nil, err
	}
	if err := validation.ValidatePassword(newPassword); err != nil {
		return nil, err
	}

	user, err := s.users.FindByID(ctx, claims.UserID)
	if err != nil {
		return nil, fmt.Errorf("looking up user: %w", err)
	}

	hash, err := s.hasher.Hash(newPassword)
	if err != nil {
		return nil, fmt.Errorf("%w: hashing password: %v", common.ErrInternal, err)
	}
	user.PasswordHash = hash
	user, err = s.users.Update(ctx, user)
	if err != nil {
		return nil, fmt.Errorf("updating password: %w", err)
	}

	entry := &models.RevocationEntry{
		TokenID:   claims.ID,
		UserID:    claims.UserID,
		Kind:      string(claims.Kind),
		Reason:    reasonResetComplete,
		RevokedAt: time.Now().UTC(),
		ExpiresAt: claims.ExpiresAt.Time.UTC(),
	}
	if err := s.ledger.Revoke(ctx, entry); err != nil {
		return nil, fmt.Errorf("%w: recording revocation: %v", common.ErrStoreUnavailable, err)
	}

	pair, err := s.issuePair(user)
	if err != nil {
		return nil, err
	}

	s.log.Info(ctx, "password reset completed", "user_id", user.ID)
	return &AuthResult{User: user, Tokens: pair}, nil
}

// VerifyToken checks an access token end to end: signature, expiry, kind,
// then the revocation ledger. A revoked token is indistinguishable from an
// invalid one.
func (s *AuthService) VerifyToken(ctx context.Context, accessToken string) (*token.Claims, error) {
	claims, err := s.codec.Verify(accessToken, token.KindAccess)
	if err != nil {
		return nil, err
	}
	if err := s.checkNotRevoked(ctx, claims.ID); err != nil {
		return nil, err
	}
	return claims, nil
}

// checkNotRevoked consults the ledger. A store failure denies the token but
// keeps the unavailability visible to the transport layer.
func (s *AuthService) checkNotRevoked(ctx context.Context, tokenID string) error {
	revoked, err := s.ledger.IsRevoked(ctx, tokenID)
	if err != nil {
		return fmt.Errorf("%w: consulting revocation ledger: %v", common.ErrStoreUnavailable, err)
	}
	if revoked {
		return common.ErrInvalidToken
	}
	return nil
}

func (s *AuthService) issuePair(user *models.User) (TokenPair, error) {
	access, err := s.codec.Issue(token.KindAccess, user.ID, user.Email, s.accessTTL, nil)
	if err != nil {
		return TokenPair{}, fmt.Errorf("%w: issuing access token: %v", common.ErrInternal, err)
	}
	refresh, err := s.codec.Issue(token.KindRefresh, user.ID, user.Email, s.refreshTTL, nil)
	if err != nil {
		return TokenPair{}, fmt.Errorf("%w: issuing refresh token: %v", common.ErrInternal, err)
	}
	return TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}

// sendAsync delivers mail in the background. Delivery failures are logged and
// never affect the flow that triggered them.
func (s *AuthService) sendAsync(to, subject, body string) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), emailSendTimeout)
		defer cancel()
		if err := s.mailer.Send(ctx, to, subject, body); err != nil {
			s.log.Warn(ctx, "email delivery failed", "subject", subject, "error", err)
		}
	}()
}
