package auth

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/northmart/shop-backend/models"
)

type stubResolver struct {
	users map[string]*models.User
}

func (s *stubResolver) ResolveToken(token string) (*models.User, error) {
	if u, ok := s.users[token]; ok {
		return u, nil
	}
	return nil, errors.New("unknown token")
}

func TestMiddleware(t *testing.T) {
	resolver := &stubResolver{users: map[string]*models.User{
		"good-token": {ID: 1, Email: "user@example.com", Role: models.RoleUser},
	}}

	var seenUser *models.User
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seenUser, _ = UserFrom(r.Context())
		w.WriteHeader(http.StatusOK)
	})
	handler := Middleware(resolver, next)

	testCases := []struct {
		name               string
		authorization      string
		expectedStatusCode int
		expectUser         bool
	}{
		{name: "valid token", authorization: "Bearer good-token", expectedStatusCode: http.StatusOK, expectUser: true},
		{name: "unknown token", authorization: "Bearer bad-token", expectedStatusCode: http.StatusUnauthorized},
		{name: "missing header", authorization: "", expectedStatusCode: http.StatusUnauthorized},
		{name: "wrong scheme", authorization: "Basic abc", expectedStatusCode: http.StatusUnauthorized},
		{name: "empty bearer", authorization: "Bearer ", expectedStatusCode: http.StatusUnauthorized},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			seenUser = nil
			req := httptest.NewRequest("GET", "/orders", nil)
			if tc.authorization != "" {
				req.Header.Set("Authorization", tc.authorization)
			}
			rec := httptest.NewRecorder()

			handler.ServeHTTP(rec, req)

			assert.Equal(t, tc.expectedStatusCode, rec.Code)
			if tc.expectUser {
				assert.NotNil(t, seenUser)
				assert.Equal(t, uint(1), seenUser.ID)
			} else {
				assert.Nil(t, seenUser)
			}
		})
	}
}

func TestRequireAdmin(t *testing.T) {
	t.Run("admin passes", func(t *testing.T) {
		req := httptest.NewRequest("DELETE", "/products/1", nil)
		req = req.WithContext(WithUser(req.Context(), &models.User{ID: 1, Role: models.RoleAdmin}))
		rec := httptest.NewRecorder()

		user, ok := RequireAdmin(rec, req)

		assert.True(t, ok)
		assert.Equal(t, uint(1), user.ID)
	})

	t.Run("plain user is forbidden", func(t *testing.T) {
		req := httptest.NewRequest("DELETE", "/products/1", nil)
		req = req.WithContext(WithUser(req.Context(), &models.User{ID: 2, Role: models.RoleUser}))
		rec := httptest.NewRecorder()

		_, ok := RequireAdmin(rec, req)

		assert.False(t, ok)
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("missing principal is unauthorized", func(t *testing.T) {
		req := httptest.NewRequest("DELETE", "/products/1", nil)
		rec := httptest.NewRecorder()

		_, ok := RequireAdmin(rec, req)

		assert.False(t, ok)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}
