package handlers

import (
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"motohub-api-server/internal/auth"
	"motohub-api-server/internal/database"
	"motohub-api-server/internal/models"
)

func newAuthRouter(users *mockUserStore, tokens *auth.Service) (*gin.Engine, *fakeRecorder) {
	rec := &fakeRecorder{}
	h := &AuthHandler{Users: users, Auth: tokens, Recorder: rec, UsernameDomain: "motohub.local", Logger: nullLogger}

	r := gin.New()
	r.POST("/auth/register", h.Register)
	r.POST("/auth/login", h.Login)
	return r, rec
}

func TestAuthHandler_Register(t *testing.T) {
	t.Run("username becomes a login email", func(t *testing.T) {
		users := &mockUserStore{}
		tokens := newTokens()
		r, rec := newAuthRouter(users, tokens)

		users.On("Create", mock.Anything, mock.MatchedBy(func(u *models.User) bool {
			return u.Email == "john_doe@motohub.local" && u.Username == "john_doe" &&
				u.Role == models.RoleUser && u.DisplayName == "john_doe" && u.PasswordHash != ""
		})).Return(nil)

		w := doJSON(r, http.MethodPost, "/auth/register", gin.H{"username": "john_doe", "password": "secret1"})
		require.Equal(t, http.StatusCreated, w.Code)

		resp := decode[AuthResponse](w)
		claims, err := tokens.ParseToken(resp.Token)
		require.NoError(t, err)
		assert.Equal(t, resp.User.ID, claims.UserID)
		assert.Equal(t, models.RoleUser, claims.Role)
		assert.Len(t, rec.entries, 1)
		users.AssertExpectations(t)
	})

	t.Run("duplicate account", func(t *testing.T) {
		users := &mockUserStore{}
		r, _ := newAuthRouter(users, newTokens())
		users.On("Create", mock.Anything, mock.Anything).Return(database.ErrDuplicate)

		w := doJSON(r, http.MethodPost, "/auth/register", gin.H{"email": "a@b.co", "password": "secret1"})
		assert.Equal(t, http.StatusConflict, w.Code)
	})

	t.Run("email in the username domain is reserved", func(t *testing.T) {
		users := &mockUserStore{}
		r, _ := newAuthRouter(users, newTokens())

		w := doJSON(r, http.MethodPost, "/auth/register", gin.H{"email": "John_Doe@motohub.local", "password": "secret1"})
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "reserved")

		w = doJSON(r, http.MethodPost, "/auth/register", gin.H{"username": "jane", "email": "john_doe@motohub.local", "password": "secret1"})
		assert.Equal(t, http.StatusBadRequest, w.Code)
		users.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("weak password", func(t *testing.T) {
		users := &mockUserStore{}
		r, _ := newAuthRouter(users, newTokens())

		w := doJSON(r, http.MethodPost, "/auth/register", gin.H{"email": "a@b.co", "password": "123"})
		assert.Equal(t, http.StatusBadRequest, w.Code)
		users.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})
}

func TestAuthHandler_Login(t *testing.T) {
	tokens := newTokens()
	hash, err := tokens.HashPassword("secret1")
	require.NoError(t, err)
	mechanic := &models.User{ID: "m1", Email: "mech42@motohub.local", PasswordHash: hash, Role: models.RoleMechanic}

	t.Run("bare username is rewritten", func(t *testing.T) {
		users := &mockUserStore{}
		r, rec := newAuthRouter(users, tokens)
		users.On("FindByEmail", mock.Anything, "mech42@motohub.local").Return(mechanic, nil)
		users.On("UpdateLastLogin", mock.Anything, "m1", mock.Anything).Return(nil)

		w := doJSON(r, http.MethodPost, "/auth/login", gin.H{"identifier": "Mech42", "password": "secret1"})
		require.Equal(t, http.StatusOK, w.Code)

		resp := decode[AuthResponse](w)
		assert.NotEmpty(t, resp.Token)
		assert.NotNil(t, resp.User.LastLogin)
		require.Len(t, rec.entries, 1)
		assert.Equal(t, models.ActivityLogin, rec.entries[0].Type)
		users.AssertExpectations(t)
	})

	t.Run("falls back to username lookup", func(t *testing.T) {
		users := &mockUserStore{}
		r, _ := newAuthRouter(users, tokens)
		users.On("FindByEmail", mock.Anything, "mech42@motohub.local").Return(nil, database.ErrNotFound)
		users.On("FindByUsername", mock.Anything, "mech42").Return(mechanic, nil)
		users.On("UpdateLastLogin", mock.Anything, "m1", mock.Anything).Return(nil)

		w := doJSON(r, http.MethodPost, "/auth/login", gin.H{"identifier": "mech42", "password": "secret1"})
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("wrong password", func(t *testing.T) {
		users := &mockUserStore{}
		r, _ := newAuthRouter(users, tokens)
		users.On("FindByEmail", mock.Anything, "mech42@motohub.local").Return(mechanic, nil)

		w := doJSON(r, http.MethodPost, "/auth/login", gin.H{"identifier": "mech42@motohub.local", "password": "nope00"})
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		users.AssertNotCalled(t, "UpdateLastLogin", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("unknown email", func(t *testing.T) {
		users := &mockUserStore{}
		r, _ := newAuthRouter(users, tokens)
		users.On("FindByEmail", mock.Anything, "ghost@motohub.local").Return(nil, database.ErrNotFound)

		w := doJSON(r, http.MethodPost, "/auth/login", gin.H{"identifier": "ghost@motohub.local", "password": "secret1"})
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.JSONEq(t, `{"error":"Invalid credentials"}`, w.Body.String())
	})
}
