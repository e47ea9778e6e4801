package handlers_test

import (
	"floorkeeper/internal/models"
	"floorkeeper/internal/testutil"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogin(t *testing.T) {
	tc := testutil.NewTestContext(t)
	tc.CreateTestUser("mesero1", "password123", models.RoleWaiter)

	tests := []struct {
		name       string
		body       string
		wantStatus int
		wantCode   string
		wantField  string
	}{
		{
			name:       "Valid Credentials",
			body:       `{"username":"mesero1","password":"password123"}`,
			wantStatus: http.StatusOK,
		},
		{
			name:       "Wrong Password",
			body:       `{"username":"mesero1","password":"nope-nope"}`,
			wantStatus: http.StatusUnauthorized,
			wantCode:   "UNAUTHORIZED",
		},
		{
			name:       "Unknown User",
			body:       `{"username":"ghost","password":"password123"}`,
			wantStatus: http.StatusUnauthorized,
			wantCode:   "UNAUTHORIZED",
		},
		{
			name:       "Missing Password",
			body:       `{"username":"mesero1"}`,
			wantStatus: http.StatusBadRequest,
			wantCode:   "VALIDATION_ERROR",
			wantField:  "password",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := tc.Do(http.MethodPost, "/api/v1/auth/login", tt.body, "")
			require.Equal(t, tt.wantStatus, w.Code, w.Body.String())

			if tt.wantCode != "" {
				env := decode(t, w)
				assert.False(t, env.Success)
				assert.Equal(t, tt.wantCode, env.Code)
				assert.Equal(t, tt.wantField, env.Field)
				return
			}

			var resp models.LoginResponse
			decodeData(t, w, &resp)
			assert.NotEmpty(t, resp.AccessToken)
			assert.Equal(t, models.RoleWaiter, resp.Role)

			// The issued token authenticates
			me := tc.Do(http.MethodGet, "/api/v1/auth/me", "", resp.AccessToken)
			require.Equal(t, http.StatusOK, me.Code)
			var user models.User
			decodeData(t, me, &user)
			assert.Equal(t, "mesero1", user.Username)
		})
	}
}

func TestCreateUser(t *testing.T) {
	tc := testutil.NewTestContext(t)
	admin := tc.TokenFor(models.RoleAdmin)
	waiter := tc.TokenFor(models.RoleWaiter)

	tests := []struct {
		name       string
		token      string
		body       string
		wantStatus int
		wantField  string
	}{
		{
			name:       "Admin Creates Cashier",
			token:      admin,
			body:       `{"username":"caja1","password":"password123","role":"cajero"}`,
			wantStatus: http.StatusCreated,
		},
		{
			name:       "Duplicate Username",
			token:      admin,
			body:       `{"username":"caja1","password":"password123","role":"cajero"}`,
			wantStatus: http.StatusConflict,
			wantField:  "username",
		},
		{
			name:       "Short Password",
			token:      admin,
			body:       `{"username":"caja2","password":"short","role":"cajero"}`,
			wantStatus: http.StatusBadRequest,
			wantField:  "password",
		},
		{
			name:       "Unknown Role",
			token:      admin,
			body:       `{"username":"caja3","password":"password123","role":"gerente"}`,
			wantStatus: http.StatusBadRequest,
			wantField:  "role",
		},
		{
			name:       "Waiter Forbidden",
			token:      waiter,
			body:       `{"username":"caja4","password":"password123","role":"cajero"}`,
			wantStatus: http.StatusForbidden,
		},
		{
			name:       "Anonymous",
			body:       `{"username":"caja5","password":"password123","role":"cajero"}`,
			wantStatus: http.StatusUnauthorized,
		},
	}

	// Cases run in order; the duplicate relies on the first
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := tc.Do(http.MethodPost, "/api/v1/auth/users", tt.body, tt.token)
			require.Equal(t, tt.wantStatus, w.Code, w.Body.String())

			if tt.wantStatus == http.StatusCreated {
				var user models.User
				decodeData(t, w, &user)
				assert.Equal(t, models.RoleCashier, user.Role)
				assert.NotContains(t, w.Body.String(), "password123")
				return
			}
			if tt.wantField != "" {
				assert.Equal(t, tt.wantField, decode(t, w).Field)
			}
		})
	}
}
