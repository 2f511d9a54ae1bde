package usecase

import (
	"context"
	"errors"
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"stock_watchlist/internal/feature/auth/domain"
	"stock_watchlist/internal/feature/auth/domain/entity"
)

// mockUserRepository is a mock implementation of the UserRepository interface.
type mockUserRepository struct {
	CreateFunc      func(user *entity.User) error
	FindByEmailFunc func(email string) (*entity.User, error)
}

func (m *mockUserRepository) Create(_ context.Context, user *entity.User) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(user)
	}
	return nil
}

func (m *mockUserRepository) FindByEmail(_ context.Context, email string) (*entity.User, error) {
	if m.FindByEmailFunc != nil {
		return m.FindByEmailFunc(email)
	}
	// Default: return user not found error
	return nil, domain.ErrUserNotFound
}

// mockJWTGenerator is a mock implementation of JWTGenerator interface.
type mockJWTGenerator struct {
	GenerateTokenFunc func(userID uint, email string) (string, error)
}

func (m *mockJWTGenerator) GenerateToken(userID uint, email string) (string, error) {
	if m.GenerateTokenFunc != nil {
		return m.GenerateTokenFunc(userID, email)
	}
	return "mock-jwt-token", nil
}

type sentMail struct {
	to, name, code string
}

type mockMailer struct {
	err  error
	sent []sentMail
}

func (m *mockMailer) SendOTP(_ context.Context, to, name, code string) error {
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, sentMail{to: to, name: name, code: code})
	return nil
}

// memoryPending is a map-backed PendingStore.
type memoryPending struct {
	records map[string]*entity.PendingSignup
	ttls    map[string]time.Duration
}

func newMemoryPending() *memoryPending {
	return &memoryPending{records: map[string]*entity.PendingSignup{}, ttls: map[string]time.Duration{}}
}

func (m *memoryPending) Get(_ context.Context, email string) (*entity.PendingSignup, error) {
	p, ok := m.records[email]
	if !ok {
		return nil, ErrPendingNotFound
	}
	cp := *p
	return &cp, nil
}

func (m *memoryPending) Set(_ context.Context, p *entity.PendingSignup, ttl time.Duration) error {
	cp := *p
	m.records[p.Email] = &cp
	m.ttls[p.Email] = ttl
	return nil
}

func (m *memoryPending) Delete(_ context.Context, email string) error {
	delete(m.records, email)
	return nil
}

// memorySessions is a map-backed SessionRepository evaluated against a fixed clock.
type memorySessions struct {
	now          func() time.Time
	sessions     map[string]*entity.Session
	revokeErr    error
	deletedOldID []string
}

func newMemorySessions(now func() time.Time) *memorySessions {
	return &memorySessions{now: now, sessions: map[string]*entity.Session{}}
}

func (m *memorySessions) Create(_ context.Context, s *entity.Session) error {
	cp := *s
	m.sessions[s.ID] = &cp
	return nil
}

func (m *memorySessions) FindByID(_ context.Context, id string) (*entity.Session, error) {
	s, ok := m.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return s, nil
}

func (m *memorySessions) FindByUserID(_ context.Context, userID uint) ([]*entity.Session, error) {
	var out []*entity.Session
	for _, s := range m.sessions {
		if s.UserID == userID && s.IsValidAt(m.now()) {
			out = append(out, s)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (m *memorySessions) Revoke(_ context.Context, id string) error {
	if m.revokeErr != nil {
		return m.revokeErr
	}
	s, ok := m.sessions[id]
	if !ok {
		return ErrSessionNotFound
	}
	at := m.now()
	s.RevokedAt = &at
	return nil
}

func (m *memorySessions) RevokeAllByUserID(ctx context.Context, userID uint) error {
	active, _ := m.FindByUserID(ctx, userID)
	for _, s := range active {
		_ = m.Revoke(ctx, s.ID)
	}
	return nil
}

func (m *memorySessions) DeleteExpired(_ context.Context) (int64, error) {
	var n int64
	for id, s := range m.sessions {
		if s.IsExpiredAt(m.now()) {
			delete(m.sessions, id)
			n++
		}
	}
	return n, nil
}

func (m *memorySessions) CountByUserID(ctx context.Context, userID uint) (int64, error) {
	active, _ := m.FindByUserID(ctx, userID)
	return int64(len(active)), nil
}

func (m *memorySessions) DeleteOldestByUserID(ctx context.Context, userID uint) error {
	active, _ := m.FindByUserID(ctx, userID)
	if len(active) == 0 {
		return nil
	}
	m.deletedOldID = append(m.deletedOldID, active[0].ID)
	delete(m.sessions, active[0].ID)
	return nil
}

type fixture struct {
	uc       *authUsecase
	users    *mockUserRepository
	pending  *memoryPending
	sessions *memorySessions
	mailer   *mockMailer
	clock    *time.Time
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	clock := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	f := &fixture{
		users:   &mockUserRepository{},
		pending: newMemoryPending(),
		mailer:  &mockMailer{},
		clock:   &clock,
	}
	now := func() time.Time { return *f.clock }
	f.sessions = newMemorySessions(now)
	f.uc = NewAuthUsecase(f.users, f.sessions, f.pending, f.mailer, &mockJWTGenerator{},
		func(string) (string, error) { return "123456", nil }, Options{})
	f.uc.now = now
	return f
}

func (f *fixture) advance(d time.Duration) {
	*f.clock = f.clock.Add(d)
}

func TestAuthUsecase_Signup(t *testing.T) {
	t.Run("stores pending record and mails the otp", func(t *testing.T) {
		f := newFixture(t)

		err := f.uc.Signup(context.Background(), " Asha ", "Asha@Example.com", "password123")
		require.NoError(t, err)

		p, err := f.pending.Get(context.Background(), "asha@example.com")
		require.NoError(t, err)
		assert.Equal(t, "Asha", p.Name)
		assert.Equal(t, "password123", p.Password)
		assert.Equal(t, "123456", p.OTP)
		assert.Equal(t, f.clock.Add(15*time.Minute), p.ExpiresAt)
		assert.Equal(t, 30*time.Minute, f.pending.ttls["asha@example.com"])

		require.Len(t, f.mailer.sent, 1)
		assert.Equal(t, sentMail{to: "asha@example.com", name: "Asha", code: "123456"}, f.mailer.sent[0])
	})

	t.Run("registered email is rejected", func(t *testing.T) {
		f := newFixture(t)
		f.users.FindByEmailFunc = func(email string) (*entity.User, error) {
			return &entity.User{ID: 1, Email: email, IsVerified: true}, nil
		}

		err := f.uc.Signup(context.Background(), "Asha", "asha@example.com", "password123")
		assert.ErrorIs(t, err, domain.ErrEmailAlreadyRegistered)
		assert.Empty(t, f.pending.records)
		assert.Empty(t, f.mailer.sent)
	})

	t.Run("registered email wins over a short password", func(t *testing.T) {
		f := newFixture(t)
		f.users.FindByEmailFunc = func(email string) (*entity.User, error) {
			return &entity.User{ID: 1, Email: email, IsVerified: true}, nil
		}

		err := f.uc.Signup(context.Background(), "Asha", "asha@example.com", "short")
		assert.ErrorIs(t, err, domain.ErrEmailAlreadyRegistered)
		assert.NotErrorIs(t, err, domain.ErrWeakPassword)
	})

	t.Run("short password is rejected", func(t *testing.T) {
		f := newFixture(t)

		err := f.uc.Signup(context.Background(), "Asha", "asha@example.com", "short")
		assert.ErrorIs(t, err, domain.ErrWeakPassword)
		assert.Empty(t, f.pending.records)
	})

	t.Run("mail failure discards the pending record", func(t *testing.T) {
		f := newFixture(t)
		f.mailer.err = errors.New("smtp down")

		err := f.uc.Signup(context.Background(), "Asha", "asha@example.com", "password123")
		require.Error(t, err)
		assert.Empty(t, f.pending.records)
	})

	t.Run("repository failure propagates", func(t *testing.T) {
		f := newFixture(t)
		dbErr := errors.New("database error")
		f.users.FindByEmailFunc = func(string) (*entity.User, error) { return nil, dbErr }

		err := f.uc.Signup(context.Background(), "Asha", "asha@example.com", "password123")
		assert.ErrorIs(t, err, dbErr)
	})
}

func TestAuthUsecase_VerifyOTP(t *testing.T) {
	ctx := context.Background()

	t.Run("success creates a verified account", func(t *testing.T) {
		f := newFixture(t)
		var created *entity.User
		f.users.CreateFunc = func(u *entity.User) error {
			u.ID = 7
			created = u
			return nil
		}
		require.NoError(t, f.uc.Signup(ctx, "Asha", "asha@example.com", "password123"))
		f.advance(14 * time.Minute)

		user, err := f.uc.VerifyOTP(ctx, "asha@example.com", "123456")
		require.NoError(t, err)
		require.NotNil(t, created)
		assert.Equal(t, uint(7), user.ID)
		assert.True(t, created.IsVerified)
		assert.Equal(t, "Asha", created.Name)
		assert.NotEqual(t, "password123", created.Password, "password must be hashed")
		assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(created.Password), []byte("password123")))
		assert.Empty(t, f.pending.records)
	})

	t.Run("no pending record", func(t *testing.T) {
		f := newFixture(t)

		_, err := f.uc.VerifyOTP(ctx, "nobody@example.com", "123456")
		assert.ErrorIs(t, err, domain.ErrUserNotFound)
	})

	t.Run("wrong code keeps the pending record", func(t *testing.T) {
		f := newFixture(t)
		require.NoError(t, f.uc.Signup(ctx, "Asha", "asha@example.com", "password123"))

		_, err := f.uc.VerifyOTP(ctx, "asha@example.com", "654321")
		assert.ErrorIs(t, err, domain.ErrInvalidOTP)
		assert.Len(t, f.pending.records, 1)
	})

	t.Run("expired code is rejected and discarded even when correct", func(t *testing.T) {
		f := newFixture(t)
		f.users.CreateFunc = func(*entity.User) error {
			t.Fatal("account must not be created after expiry")
			return nil
		}
		require.NoError(t, f.uc.Signup(ctx, "Asha", "asha@example.com", "password123"))
		f.advance(15*time.Minute + time.Second)

		_, err := f.uc.VerifyOTP(ctx, "asha@example.com", "123456")
		assert.ErrorIs(t, err, domain.ErrOTPExpired)
		assert.Empty(t, f.pending.records)

		_, err = f.uc.VerifyOTP(ctx, "asha@example.com", "123456")
		assert.ErrorIs(t, err, domain.ErrUserNotFound)
	})

	t.Run("email registered meanwhile", func(t *testing.T) {
		f := newFixture(t)
		f.users.CreateFunc = func(*entity.User) error { return ErrEmailAlreadyExists }
		require.NoError(t, f.uc.Signup(ctx, "Asha", "asha@example.com", "password123"))

		_, err := f.uc.VerifyOTP(ctx, "asha@example.com", "123456")
		assert.ErrorIs(t, err, domain.ErrEmailAlreadyRegistered)
		assert.Empty(t, f.pending.records)
	})
}

func TestAuthUsecase_Login(t *testing.T) {
	ctx := context.Background()
	hashed, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	require.NoError(t, err)

	verified := &entity.User{ID: 1, Name: "Asha", Email: "asha@example.com", Password: string(hashed), IsVerified: true}
	unverified := &entity.User{ID: 2, Name: "Ravi", Email: "ravi@example.com", Password: string(hashed)}

	findUser := func(email string) (*entity.User, error) {
		switch email {
		case verified.Email:
			return verified, nil
		case unverified.Email:
			return unverified, nil
		}
		return nil, domain.ErrUserNotFound
	}

	tests := []struct {
		name     string
		email    string
		password string
		wantErr  error
	}{
		{"unknown email", "nobody@example.com", "password123", domain.ErrUserNotFound},
		{"unverified email", "ravi@example.com", "password123", domain.ErrNotVerified},
		{"wrong password", "asha@example.com", "wrong-password", domain.ErrInvalidCredentials},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			f.users.FindByEmailFunc = findUser

			res, err := f.uc.Login(ctx, tt.email, tt.password, ClientInfo{})
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Nil(t, res)
			assert.Empty(t, f.sessions.sessions)
		})
	}

	t.Run("success issues token and session", func(t *testing.T) {
		f := newFixture(t)
		f.users.FindByEmailFunc = findUser

		res, err := f.uc.Login(ctx, "ASHA@example.com", "password123", ClientInfo{UserAgent: "test-agent", IPAddress: "127.0.0.1"})
		require.NoError(t, err)
		assert.Equal(t, "mock-jwt-token", res.Token)
		assert.Equal(t, verified, res.User)
		require.NotNil(t, res.Session)
		assert.Len(t, res.Session.ID, 64)
		assert.Equal(t, uint(1), res.Session.UserID)
		assert.Equal(t, "asha@example.com", res.Session.Email)
		assert.Equal(t, "Asha", res.Session.Name)
		assert.Equal(t, "test-agent", res.Session.UserAgent)
		assert.Equal(t, f.clock.Add(DefaultSessionTTL), res.Session.ExpiresAt)
	})

	t.Run("token failure", func(t *testing.T) {
		f := newFixture(t)
		f.users.FindByEmailFunc = findUser
		f.uc.jwtGenerator = &mockJWTGenerator{GenerateTokenFunc: func(uint, string) (string, error) {
			return "", errors.New("signing failed")
		}}

		_, err := f.uc.Login(ctx, "asha@example.com", "password123", ClientInfo{})
		assert.Error(t, err)
		assert.Empty(t, f.sessions.sessions)
	})

	t.Run("oldest session is evicted at the cap", func(t *testing.T) {
		f := newFixture(t)
		f.users.FindByEmailFunc = findUser

		var first string
		for i := 0; i < DefaultMaxSessionsPerUser; i++ {
			res, err := f.uc.Login(ctx, "asha@example.com", "password123", ClientInfo{})
			require.NoError(t, err)
			if i == 0 {
				first = res.Session.ID
			}
			f.advance(time.Minute)
		}
		assert.Empty(t, f.sessions.deletedOldID)

		_, err := f.uc.Login(ctx, "asha@example.com", "password123", ClientInfo{})
		require.NoError(t, err)
		assert.Equal(t, []string{first}, f.sessions.deletedOldID)

		count, err := f.sessions.CountByUserID(ctx, 1)
		require.NoError(t, err)
		assert.Equal(t, int64(DefaultMaxSessionsPerUser), count)
	})
}

func TestAuthUsecase_LogoutAndValidateSession(t *testing.T) {
	ctx := context.Background()
	hashed, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	require.NoError(t, err)

	f := newFixture(t)
	f.users.FindByEmailFunc = func(email string) (*entity.User, error) {
		return &entity.User{ID: 3, Email: email, Password: string(hashed), IsVerified: true}, nil
	}

	res, err := f.uc.Login(ctx, "asha@example.com", "password123", ClientInfo{})
	require.NoError(t, err)

	userID, email, err := f.uc.ValidateSession(ctx, res.Session.ID)
	require.NoError(t, err)
	assert.Equal(t, uint(3), userID)
	assert.Equal(t, "asha@example.com", email)

	_, _, err = f.uc.ValidateSession(ctx, "unknown")
	assert.ErrorIs(t, err, domain.ErrUnauthenticated)

	require.NoError(t, f.uc.Logout(ctx, res.Session.ID))
	_, _, err = f.uc.ValidateSession(ctx, res.Session.ID)
	assert.ErrorIs(t, err, domain.ErrUnauthenticated, "revoked session must not authenticate")

	assert.NoError(t, f.uc.Logout(ctx, ""))
	assert.NoError(t, f.uc.Logout(ctx, "unknown"))

	f.sessions.revokeErr = errors.New("db down")
	assert.Error(t, f.uc.Logout(ctx, res.Session.ID))
}

func TestAuthUsecase_SessionExpiry(t *testing.T) {
	ctx := context.Background()
	hashed, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	require.NoError(t, err)

	f := newFixture(t)
	f.users.FindByEmailFunc = func(email string) (*entity.User, error) {
		return &entity.User{ID: 4, Email: email, Password: string(hashed), IsVerified: true}, nil
	}
	res, err := f.uc.Login(ctx, "asha@example.com", "password123", ClientInfo{})
	require.NoError(t, err)

	f.advance(DefaultSessionTTL + time.Second)
	_, _, err = f.uc.ValidateSession(ctx, res.Session.ID)
	assert.ErrorIs(t, err, domain.ErrUnauthenticated)

	n, err := f.uc.PurgeExpiredSessions(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}

func TestNewHOTPGenerator(t *testing.T) {
	gen := NewHOTPGenerator("")

	first, err := gen("asha@example.com")
	require.NoError(t, err)
	assert.Len(t, first, 6)
	assert.Regexp(t, `^[0-9]{6}$`, first)

	second, err := gen("asha@example.com")
	require.NoError(t, err)
	assert.Len(t, second, 6)
}
