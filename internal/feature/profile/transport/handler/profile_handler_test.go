package handler

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"gorm.io/datatypes"

	authdomain "stock_watchlist/internal/feature/auth/domain"
	authentity "stock_watchlist/internal/feature/auth/domain/entity"
	"stock_watchlist/internal/feature/profile/domain"
	jwtmw "stock_watchlist/internal/platform/jwt"
)

type mockProfileUsecase struct {
	GetFunc               func(ctx context.Context, userID uint) (*authentity.User, error)
	UpdateNameFunc        func(ctx context.Context, userID uint, name string) (*authentity.User, error)
	UpdatePreferencesFunc func(ctx context.Context, userID uint, categories []string) (*authentity.User, error)
}

func (m *mockProfileUsecase) Get(ctx context.Context, userID uint) (*authentity.User, error) {
	return m.GetFunc(ctx, userID)
}

func (m *mockProfileUsecase) UpdateName(ctx context.Context, userID uint, name string) (*authentity.User, error) {
	return m.UpdateNameFunc(ctx, userID, name)
}

func (m *mockProfileUsecase) UpdatePreferences(ctx context.Context, userID uint, categories []string) (*authentity.User, error) {
	return m.UpdatePreferencesFunc(ctx, userID, categories)
}

var (
	created = time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	prefsAt = time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)
)

func testUser() *authentity.User {
	return &authentity.User{
		ID:                   7,
		Name:                 "Asha",
		Email:                "asha@example.com",
		IsVerified:           true,
		Preferences:          datatypes.JSONSlice[string]{"tech"},
		PreferencesUpdatedAt: &prefsAt,
		CreatedAt:            created,
	}
}

// newRouter mounts the handler behind a stub that authenticates as user 7 unless anonymous.
func newRouter(h *ProfileHandler, anonymous bool) *gin.Engine {
	r := gin.New()
	r.Use(func(c *gin.Context) {
		if !anonymous {
			c.Set(jwtmw.ContextAuth, jwtmw.AuthResult{UserID: 7, Email: "asha@example.com", Method: jwtmw.MethodSession})
		}
		c.Next()
	})
	r.GET("/user/profile", h.Get)
	r.PUT("/user/profile", h.UpdateProfile)
	r.PUT("/user/preferences", h.UpdatePreferences)
	return r
}

func serve(r *gin.Engine, method, url, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, url, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestProfileHandler_Get(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name           string
		anonymous      bool
		get            func(ctx context.Context, userID uint) (*authentity.User, error)
		expectedStatus int
		expectedBody   string
	}{
		{
			name: "success",
			get: func(_ context.Context, userID uint) (*authentity.User, error) {
				if userID != 7 {
					return nil, errors.New("unexpected user")
				}
				return testUser(), nil
			},
			expectedStatus: http.StatusOK,
			expectedBody: `{"id":7,"name":"Asha","email":"asha@example.com","is_verified":true,
				"created_at":"2024-01-02T03:04:05Z",
				"preferences":{"stock_categories":["tech"],"updated_at":"2024-02-01T00:00:00Z"}}`,
		},
		{
			name:           "not authenticated",
			anonymous:      true,
			expectedStatus: http.StatusUnauthorized,
			expectedBody:   `{"error":"Not authenticated"}`,
		},
		{
			name:           "user deleted",
			get:            func(context.Context, uint) (*authentity.User, error) { return nil, authdomain.ErrUserNotFound },
			expectedStatus: http.StatusNotFound,
			expectedBody:   `{"error":"User not found"}`,
		},
		{
			name:           "database failure",
			get:            func(context.Context, uint) (*authentity.User, error) { return nil, errors.New("db down") },
			expectedStatus: http.StatusInternalServerError,
			expectedBody:   `{"error":"Internal server error"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewProfileHandler(&mockProfileUsecase{GetFunc: tt.get})
			w := serve(newRouter(h, tt.anonymous), http.MethodGet, "/user/profile", "")
			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.JSONEq(t, tt.expectedBody, w.Body.String())
		})
	}
}

func TestProfileHandler_UpdateProfile(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name           string
		body           string
		update         func(ctx context.Context, userID uint, name string) (*authentity.User, error)
		expectedStatus int
		expectedName   string
		expectedBody   string
	}{
		{
			name: "renamed",
			body: `{"name":"Asha Rao"}`,
			update: func(_ context.Context, _ uint, name string) (*authentity.User, error) {
				u := testUser()
				u.Name = name
				return u, nil
			},
			expectedStatus: http.StatusOK,
			expectedName:   "Asha Rao",
		},
		{
			name:           "missing name",
			body:           `{}`,
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `{"error":"invalid request"}`,
		},
		{
			name:           "blank after trimming",
			body:           `{"name":"   "}`,
			update:         func(context.Context, uint, string) (*authentity.User, error) { return nil, domain.ErrInvalidName },
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `{"error":"Name must be between 1 and 100 characters"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewProfileHandler(&mockProfileUsecase{UpdateNameFunc: tt.update})
			w := serve(newRouter(h, false), http.MethodPut, "/user/profile", tt.body)
			assert.Equal(t, tt.expectedStatus, w.Code)
			if tt.expectedBody != "" {
				assert.JSONEq(t, tt.expectedBody, w.Body.String())
			}
			if tt.expectedName != "" {
				assert.Contains(t, w.Body.String(), `"name":"`+tt.expectedName+`"`)
			}
		})
	}
}

func TestProfileHandler_UpdatePreferences(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name           string
		body           string
		update         func(ctx context.Context, userID uint, categories []string) (*authentity.User, error)
		expectedStatus int
		expectedBody   string
	}{
		{
			name: "saved",
			body: `{"stock_categories":["tech","energy"]}`,
			update: func(_ context.Context, _ uint, categories []string) (*authentity.User, error) {
				u := testUser()
				u.Preferences = datatypes.JSONSlice[string](categories)
				return u, nil
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `{"stock_categories":["tech","energy"],"updated_at":"2024-02-01T00:00:00Z"}`,
		},
		{
			name:           "missing field",
			body:           `{}`,
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `{"error":"invalid request"}`,
		},
		{
			name:           "unknown category",
			body:           `{"stock_categories":["crypto"]}`,
			update:         func(context.Context, uint, []string) (*authentity.User, error) { return nil, domain.ErrInvalidCategory },
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `{"error":"Unknown stock category"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewProfileHandler(&mockProfileUsecase{UpdatePreferencesFunc: tt.update})
			w := serve(newRouter(h, false), http.MethodPut, "/user/preferences", tt.body)
			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.JSONEq(t, tt.expectedBody, w.Body.String())
		})
	}
}
