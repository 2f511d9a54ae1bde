// Package usecase implements the business logic for the auth feature.
package usecase

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/datatypes"

	"stock_watchlist/internal/feature/auth/domain"
	"stock_watchlist/internal/feature/auth/domain/entity"
)

const (
	minPasswordLength = 8

	DefaultOTPTTL             = 15 * time.Minute
	DefaultSessionTTL         = 24 * time.Hour
	DefaultMaxSessionsPerUser = 5

	// dummyHash is compared against when the email is unknown so login timing does not reveal it.
	dummyHash = "$2a$10$N9qo8uLOickgx2ZMRZoMyeIjZAgcfl7p92ldGxad68LJZdL17lhWy"
)

// UserRepository abstracts the persistence layer for user entities.
// Following Go convention: interfaces are defined by the consumer (usecase), not the provider (adapters).
type UserRepository interface {
	// Create persists a new user. It returns ErrEmailAlreadyExists when the email is taken.
	Create(ctx context.Context, user *entity.User) error

	// FindByEmail returns domain.ErrUserNotFound when no user has the email.
	FindByEmail(ctx context.Context, email string) (*entity.User, error)
}

// JWTGenerator defines the bearer token issuance used at login.
type JWTGenerator interface {
	GenerateToken(userID uint, email string) (string, error)
}

// Mailer delivers the signup OTP.
type Mailer interface {
	SendOTP(ctx context.Context, to, name, code string) error
}

// Options tunes expiry and session limits. Zero values fall back to the defaults above.
type Options struct {
	OTPTTL             time.Duration
	SessionTTL         time.Duration
	MaxSessionsPerUser int
}

func (o Options) withDefaults() Options {
	if o.OTPTTL <= 0 {
		o.OTPTTL = DefaultOTPTTL
	}
	if o.SessionTTL <= 0 {
		o.SessionTTL = DefaultSessionTTL
	}
	if o.MaxSessionsPerUser <= 0 {
		o.MaxSessionsPerUser = DefaultMaxSessionsPerUser
	}
	return o
}

// ClientInfo is request metadata recorded on the session.
type ClientInfo struct {
	UserAgent string
	IPAddress string
}

// LoginResult carries both proofs of identity issued at login.
type LoginResult struct {
	Token   string
	Session *entity.Session
	User    *entity.User
}

type authUsecase struct {
	users        UserRepository
	sessions     SessionRepository
	pending      PendingStore
	mailer       Mailer
	jwtGenerator JWTGenerator
	newOTP       OTPGenerator
	opts         Options
	now          func() time.Time
}

// NewAuthUsecase wires the auth usecase. OTP codes come from newOTP.
func NewAuthUsecase(
	users UserRepository,
	sessions SessionRepository,
	pending PendingStore,
	mailer Mailer,
	jwtGenerator JWTGenerator,
	newOTP OTPGenerator,
	opts Options,
) *authUsecase {
	return &authUsecase{
		users:        users,
		sessions:     sessions,
		pending:      pending,
		mailer:       mailer,
		jwtGenerator: jwtGenerator,
		newOTP:       newOTP,
		opts:         opts.withDefaults(),
		now:          time.Now,
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// validatePassword checks the minimum password length.
func validatePassword(password string) error {
	if len(password) < minPasswordLength {
		return fmt.Errorf("%w: must be at least %d characters long", domain.ErrWeakPassword, minPasswordLength)
	}
	return nil
}

// Signup stores a pending signup and emails its OTP. No account exists until VerifyOTP succeeds.
// A repeated signup for the same email replaces the pending record and issues a new code.
func (u *authUsecase) Signup(ctx context.Context, name, email, password string) error {
	email = normalizeEmail(email)
	_, err := u.users.FindByEmail(ctx, email)
	switch {
	case err == nil:
		return domain.ErrEmailAlreadyRegistered
	case !errors.Is(err, domain.ErrUserNotFound):
		return fmt.Errorf("failed to look up user: %w", err)
	}
	if err := validatePassword(password); err != nil {
		return err
	}

	code, err := u.newOTP(email)
	if err != nil {
		return fmt.Errorf("failed to generate otp: %w", err)
	}

	p := &entity.PendingSignup{
		Name:      strings.TrimSpace(name),
		Email:     email,
		Password:  password,
		OTP:       code,
		ExpiresAt: u.now().Add(u.opts.OTPTTL),
	}
	// The record outlives its OTP so a late code is reported as expired rather than unknown.
	if err := u.pending.Set(ctx, p, 2*u.opts.OTPTTL); err != nil {
		return fmt.Errorf("failed to store pending signup: %w", err)
	}

	if err := u.mailer.SendOTP(ctx, email, p.Name, code); err != nil {
		if delErr := u.pending.Delete(ctx, email); delErr != nil {
			slog.Warn("failed to discard pending signup", "email", email, "error", delErr)
		}
		return fmt.Errorf("failed to send otp: %w", err)
	}
	return nil
}

// VerifyOTP turns a pending signup into a verified account.
// Expiry is checked before the code, so an expired record is always discarded.
func (u *authUsecase) VerifyOTP(ctx context.Context, email, code string) (*entity.User, error) {
	email = normalizeEmail(email)

	p, err := u.pending.Get(ctx, email)
	if err != nil {
		if errors.Is(err, ErrPendingNotFound) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to load pending signup: %w", err)
	}

	if p.IsExpiredAt(u.now()) {
		u.discardPending(ctx, email)
		return nil, domain.ErrOTPExpired
	}
	if subtle.ConstantTimeCompare([]byte(p.OTP), []byte(strings.TrimSpace(code))) != 1 {
		return nil, domain.ErrInvalidOTP
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(p.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &entity.User{
		Name:        p.Name,
		Email:       p.Email,
		Password:    string(hashed),
		IsVerified:  true,
		Preferences: datatypes.JSONSlice[string]{},
	}
	if err := u.users.Create(ctx, user); err != nil {
		if errors.Is(err, ErrEmailAlreadyExists) {
			u.discardPending(ctx, email)
			return nil, domain.ErrEmailAlreadyRegistered
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	u.discardPending(ctx, email)
	return user, nil
}

func (u *authUsecase) discardPending(ctx context.Context, email string) {
	if err := u.pending.Delete(ctx, email); err != nil {
		slog.Warn("failed to discard pending signup", "email", email, "error", err)
	}
}

// Login authenticates the user and issues a signed JWT together with a server-side session.
// The bcrypt comparison runs even for unknown emails.
func (u *authUsecase) Login(ctx context.Context, email, password string, client ClientInfo) (*LoginResult, error) {
	email = normalizeEmail(email)
	user, err := u.users.FindByEmail(ctx, email)

	passwordHash := dummyHash
	if err == nil {
		passwordHash = user.Password
	}
	compareErr := bcrypt.CompareHashAndPassword([]byte(passwordHash), []byte(password))

	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}
	if !user.IsVerified {
		return nil, domain.ErrNotVerified
	}
	if compareErr != nil {
		return nil, domain.ErrInvalidCredentials
	}

	token, err := u.jwtGenerator.GenerateToken(user.ID, user.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}

	session, err := u.openSession(ctx, user, client)
	if err != nil {
		return nil, err
	}

	return &LoginResult{Token: token, Session: session, User: user}, nil
}

// openSession creates a session, evicting the oldest ones once the per-user cap is reached.
func (u *authUsecase) openSession(ctx context.Context, user *entity.User, client ClientInfo) (*entity.Session, error) {
	count, err := u.sessions.CountByUserID(ctx, user.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to count sessions: %w", err)
	}
	for ; count >= int64(u.opts.MaxSessionsPerUser); count-- {
		if err := u.sessions.DeleteOldestByUserID(ctx, user.ID); err != nil {
			return nil, fmt.Errorf("failed to evict session: %w", err)
		}
	}

	id, err := newSessionID()
	if err != nil {
		return nil, err
	}
	now := u.now()
	session := &entity.Session{
		ID:        id,
		UserID:    user.ID,
		Email:     user.Email,
		Name:      user.Name,
		UserAgent: client.UserAgent,
		IPAddress: client.IPAddress,
		CreatedAt: now,
		ExpiresAt: now.Add(u.opts.SessionTTL),
	}
	if err := u.sessions.Create(ctx, session); err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}
	return session, nil
}

func newSessionID() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to generate session id: %w", err)
	}
	return hex.EncodeToString(b), nil
}

// Logout revokes the server-side session. Unknown or empty ids are not an error.
// Bearer tokens issued at login stay valid until they expire.
func (u *authUsecase) Logout(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return nil
	}
	if err := u.sessions.Revoke(ctx, sessionID); err != nil && !errors.Is(err, ErrSessionNotFound) {
		return fmt.Errorf("failed to revoke session: %w", err)
	}
	return nil
}

// ValidateSession resolves a session cookie to the identity it was issued for.
func (u *authUsecase) ValidateSession(ctx context.Context, sessionID string) (uint, string, error) {
	s, err := u.sessions.FindByID(ctx, sessionID)
	if err != nil {
		if errors.Is(err, ErrSessionNotFound) {
			return 0, "", domain.ErrUnauthenticated
		}
		return 0, "", err
	}
	if !s.IsValidAt(u.now()) {
		return 0, "", domain.ErrUnauthenticated
	}
	return s.UserID, s.Email, nil
}

// PurgeExpiredSessions deletes sessions past their expiry.
func (u *authUsecase) PurgeExpiredSessions(ctx context.Context) (int64, error) {
	return u.sessions.DeleteExpired(ctx)
}
