// server/internal/api/handlers/user_handler.go
package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"

	"motohub-api-server/internal/activity"
	"motohub-api-server/internal/auth"
	"motohub-api-server/internal/models"
)

const resourceUsers = "users"

// UserHandler serves the caller's own profile and the admin user management routes.
type UserHandler struct {
	Users          UserStore
	Auth           TokenService
	Recorder       Recorder
	UsernameDomain string
	Logger         *log.Logger
}

type UpdateProfileRequest struct {
	DisplayName string `json:"displayName" binding:"required"`
}

type ChangePasswordRequest struct {
	CurrentPassword string `json:"currentPassword" binding:"required"`
	NewPassword     string `json:"newPassword" binding:"required"`
}

type CreateUserRequest struct {
	RegisterRequest
	Role models.Role `json:"role" binding:"required"`
}

type UpdateRoleRequest struct {
	Role models.Role `json:"role" binding:"required"`
}

func (h *UserHandler) GetMe(c *gin.Context) {
	user, err := h.Users.FindByID(c.Request.Context(), currentUser(c).ID)
	if err != nil {
		respondError(c, h.Logger, err, "Failed to load profile")
		return
	}
	c.JSON(http.StatusOK, user)
}

func (h *UserHandler) UpdateMe(c *gin.Context) {
	var req UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	ctx := c.Request.Context()
	user, err := h.Users.FindByID(ctx, currentUser(c).ID)
	if err != nil {
		respondError(c, h.Logger, err, "Failed to load profile")
		return
	}
	before := *user

	user.DisplayName = strings.TrimSpace(req.DisplayName)
	if err := h.Users.Update(ctx, user); err != nil {
		respondError(c, h.Logger, err, "Failed to update profile")
		return
	}

	h.Recorder.Record(ctx, user.Identity(), activity.Entry{
		Type:         models.ActivityUpdate,
		Action:       "Updated profile",
		ResourceType: resourceUsers,
		ResourceID:   user.ID,
		Before:       &before,
		After:        user,
	})
	c.JSON(http.StatusOK, user)
}

func (h *UserHandler) ChangePassword(c *gin.Context) {
	var req ChangePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	if err := auth.ValidatePassword(req.NewPassword); err != nil {
		badRequest(c, err)
		return
	}

	ctx := c.Request.Context()
	user, err := h.Users.FindByID(ctx, currentUser(c).ID)
	if err != nil {
		respondError(c, h.Logger, err, "Failed to load profile")
		return
	}
	if !h.Auth.CheckPassword(req.CurrentPassword, user.PasswordHash) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Current password is incorrect"})
		return
	}

	hash, err := h.Auth.HashPassword(req.NewPassword)
	if err != nil {
		respondError(c, h.Logger, err, "Failed to change password")
		return
	}
	user.PasswordHash = hash
	if err := h.Users.Update(ctx, user); err != nil {
		respondError(c, h.Logger, err, "Failed to change password")
		return
	}

	h.Recorder.Record(ctx, user.Identity(), activityEntry(models.ActivityUpdate, "Changed password", resourceUsers, user.ID))
	c.Status(http.StatusNoContent)
}

// ListUsers lists all users, optionally filtered by ?role=.
func (h *UserHandler) ListUsers(c *gin.Context) {
	role := models.Role(c.Query("role"))
	if role != "" && !models.IsValidRole(role) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown role"})
		return
	}

	users, err := h.Users.List(c.Request.Context(), role)
	if err != nil {
		respondError(c, h.Logger, err, "Failed to list users")
		return
	}
	c.JSON(http.StatusOK, users)
}

func (h *UserHandler) GetUser(c *gin.Context) {
	user, err := h.Users.FindByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, h.Logger, err, "Failed to load user")
		return
	}
	c.JSON(http.StatusOK, user)
}

// CreateUser lets an admin create accounts of any role, typically mechanics.
func (h *UserHandler) CreateUser(c *gin.Context) {
	var req CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	if !models.IsValidRole(req.Role) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown role"})
		return
	}

	user, err := newUser(h.Auth, h.UsernameDomain, req.RegisterRequest, req.Role)
	if err != nil {
		respondError(c, h.Logger, err, "Failed to create user")
		return
	}

	ctx := c.Request.Context()
	if err := h.Users.Create(ctx, user); err != nil {
		respondError(c, h.Logger, err, "Failed to create user")
		return
	}

	h.Recorder.Record(ctx, currentUser(c), activity.Entry{
		Type:         models.ActivityCreate,
		Action:       "Created " + string(user.Role) + " " + user.Email,
		ResourceType: resourceUsers,
		ResourceID:   user.ID,
		After:        user,
	})
	c.JSON(http.StatusCreated, user)
}

func (h *UserHandler) UpdateRole(c *gin.Context) {
	var req UpdateRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	if !models.IsValidRole(req.Role) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown role"})
		return
	}

	id := c.Param("id")
	actor := currentUser(c)
	if id == actor.ID && req.Role != models.RoleAdmin {
		c.JSON(http.StatusBadRequest, gin.H{"error": "You cannot remove your own admin role"})
		return
	}

	ctx := c.Request.Context()
	user, err := h.Users.FindByID(ctx, id)
	if err != nil {
		respondError(c, h.Logger, err, "Failed to load user")
		return
	}
	before := *user

	if err := h.Users.UpdateRole(ctx, id, req.Role); err != nil {
		respondError(c, h.Logger, err, "Failed to update role")
		return
	}
	user.Role = req.Role

	h.Recorder.Record(ctx, actor, activity.Entry{
		Type:         models.ActivityUpdate,
		Action:       "Changed role of " + user.Email + " to " + string(req.Role),
		ResourceType: resourceUsers,
		ResourceID:   id,
		Before:       &before,
		After:        user,
	})
	c.JSON(http.StatusOK, user)
}

func (h *UserHandler) DeleteUser(c *gin.Context) {
	id := c.Param("id")
	actor := currentUser(c)
	if id == actor.ID {
		c.JSON(http.StatusBadRequest, gin.H{"error": "You cannot delete your own account"})
		return
	}

	ctx := c.Request.Context()
	user, err := h.Users.FindByID(ctx, id)
	if err != nil {
		respondError(c, h.Logger, err, "Failed to load user")
		return
	}
	if err := h.Users.Delete(ctx, id); err != nil {
		respondError(c, h.Logger, err, "Failed to delete user")
		return
	}

	h.Recorder.Record(ctx, actor, activity.Entry{
		Type:         models.ActivityDelete,
		Action:       "Deleted user " + user.Email,
		ResourceType: resourceUsers,
		ResourceID:   id,
		Before:       user,
	})
	c.Status(http.StatusNoContent)
}
