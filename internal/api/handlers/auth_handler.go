// server/internal/api/handlers/auth_handler.go
package handlers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/samber/lo"
	log "github.com/sirupsen/logrus"

	"motohub-api-server/internal/auth"
	"motohub-api-server/internal/database"
	"motohub-api-server/internal/models"
)

const providerPassword = "password"

type AuthHandler struct {
	Users    UserStore
	Auth     TokenService
	Recorder Recorder
	// UsernameDomain turns bare usernames into login emails.
	UsernameDomain string
	Logger         *log.Logger
}

type RegisterRequest struct {
	Username    string `json:"username"`
	Email       string `json:"email"`
	Password    string `json:"password" binding:"required"`
	DisplayName string `json:"displayName"`
}

type LoginRequest struct {
	Identifier string `json:"identifier" binding:"required"`
	Password   string `json:"password" binding:"required"`
}

type AuthResponse struct {
	Token string       `json:"token"`
	User  *models.User `json:"user"`
}

// Register creates a customer account from either a username or an email.
func (h *AuthHandler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	user, err := newUser(h.Auth, h.UsernameDomain, req, models.RoleUser)
	if err != nil {
		respondError(c, h.Logger, err, "Failed to register user")
		return
	}

	if err := h.Users.Create(c.Request.Context(), user); err != nil {
		if errors.Is(err, database.ErrDuplicate) {
			c.JSON(http.StatusConflict, gin.H{"error": "An account with this email or username already exists"})
			return
		}
		respondError(c, h.Logger, err, "Failed to register user")
		return
	}

	token, err := h.Auth.GenerateToken(user)
	if err != nil {
		respondError(c, h.Logger, err, "Failed to issue token")
		return
	}

	h.Recorder.Record(c.Request.Context(), user.Identity(), activityEntry(models.ActivitySignup, "Registered "+user.Email, "users", user.ID))
	c.JSON(http.StatusCreated, AuthResponse{Token: token, User: user})
}

// newUser validates the credentials and builds the user document.
func newUser(tokens TokenService, domain string, req RegisterRequest, role models.Role) (*models.User, error) {
	username := strings.TrimSpace(req.Username)
	email := strings.ToLower(strings.TrimSpace(req.Email))

	if username != "" {
		if err := auth.ValidateUsername(username); err != nil {
			return nil, err
		}
	}
	switch {
	case email != "":
		if err := auth.ValidateEmail(email); err != nil {
			return nil, err
		}
		if err := auth.CheckReservedEmail(email, username, domain); err != nil {
			return nil, err
		}
	case username != "":
		email = strings.ToLower(auth.NormalizeLogin(username, domain))
	default:
		return nil, auth.ErrInvalidEmail
	}
	if err := auth.ValidatePassword(req.Password); err != nil {
		return nil, err
	}

	hash, err := tokens.HashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	return &models.User{
		ID:           uuid.NewString(),
		Email:        email,
		Username:     username,
		DisplayName:  lo.CoalesceOrEmpty(strings.TrimSpace(req.DisplayName), username, email),
		PasswordHash: hash,
		Role:         role,
		Provider:     providerPassword,
		CreatedAt:    now,
		UpdatedAt:    now,
	}, nil
}

// Login accepts an email or a bare username.
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	ctx := c.Request.Context()
	email := strings.ToLower(auth.NormalizeLogin(req.Identifier, h.UsernameDomain))

	user, err := h.Users.FindByEmail(ctx, email)
	if errors.Is(err, database.ErrNotFound) && !strings.Contains(req.Identifier, "@") {
		// Accounts registered with both an email and a username.
		user, err = h.Users.FindByUsername(ctx, strings.TrimSpace(req.Identifier))
	}
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
			return
		}
		respondError(c, h.Logger, err, "Failed to log in")
		return
	}
	if !h.Auth.CheckPassword(req.Password, user.PasswordHash) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
		return
	}

	token, err := h.Auth.GenerateToken(user)
	if err != nil {
		respondError(c, h.Logger, err, "Failed to issue token")
		return
	}

	now := time.Now().UTC()
	if err := h.Users.UpdateLastLogin(ctx, user.ID, now); err != nil {
		h.Logger.WithError(err).WithField("user", user.ID).Warn("failed to update last login")
	}
	user.LastLogin = &now

	h.Recorder.Record(ctx, user.Identity(), activityEntry(models.ActivityLogin, "Logged in", "users", user.ID))
	c.JSON(http.StatusOK, AuthResponse{Token: token, User: user})
}
