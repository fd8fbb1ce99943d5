package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/aitracker-project/aitracker-server/internal/api/middleware"
	"github.com/aitracker-project/aitracker-server/internal/auth"
	"github.com/aitracker-project/aitracker-server/internal/database/queries"
	"github.com/aitracker-project/aitracker-server/internal/models"
	"github.com/aitracker-project/aitracker-server/internal/services"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// MinPasswordLength is the admin panel's lower bound for new passwords.
const MinPasswordLength = 4

// UserHandler handles the admin panel's user management flows.
type UserHandler struct {
	userQueries    *queries.UserQueries
	confirms       *services.ConfirmGuard
	bootstrapAdmin string
}

func NewUserHandler(uq *queries.UserQueries, confirms *services.ConfirmGuard, bootstrapAdmin string) *UserHandler {
	return &UserHandler{
		userQueries:    uq,
		confirms:       confirms,
		bootstrapAdmin: bootstrapAdmin,
	}
}

// ListUsers returns all users, newest first. Password hashes never leave
// the persistence layer.
func (h *UserHandler) ListUsers(c *gin.Context) {
	users, err := h.userQueries.GetAllUsers()
	if err != nil {
		log.Error().Err(err).Msg("failed to list users")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list users"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"users": users})
}

// CreateUser creates a user after validating the form. A duplicate
// username surfaces as a conflict message, not a crash.
func (h *UserHandler) CreateUser(c *gin.Context) {
	var req models.CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "username and password are required"})
		return
	}

	username := strings.TrimSpace(req.Username)
	if username == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "username and password are required"})
		return
	}
	if msg, ok := validateNewPassword(req.Password, req.ConfirmPassword); !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": msg})
		return
	}

	hashed, err := auth.HashPassword(req.Password)
	if err != nil {
		log.Error().Err(err).Msg("failed to hash password")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create user"})
		return
	}

	user, err := h.userQueries.CreateUser(username, hashed, req.IsAdmin)
	if errors.Is(err, queries.ErrUsernameTaken) {
		c.JSON(http.StatusConflict, gin.H{"error": "username already exists"})
		return
	}
	if err != nil {
		log.Error().Err(err).Msg("failed to create user")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create user"})
		return
	}

	log.Info().Str("username", user.Username).Bool("is_admin", user.IsAdmin).Msg("user created")

	user.Password = ""
	c.JSON(http.StatusCreated, gin.H{"user": user})
}

// ChangePassword sets a new password for another user. The acting admin's
// own account is never an eligible target, regardless of the submitted id;
// self-service password change is a separate concern.
func (h *UserHandler) ChangePassword(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user id"})
		return
	}

	session := middleware.SessionFromContext(c)
	if id == session.UserID {
		c.JSON(http.StatusForbidden, gin.H{"error": "cannot change your own password here"})
		return
	}

	var req models.ChangePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "password is required"})
		return
	}
	if msg, ok := validateNewPassword(req.Password, req.ConfirmPassword); !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": msg})
		return
	}

	hashed, err := auth.HashPassword(req.Password)
	if err != nil {
		log.Error().Err(err).Msg("failed to hash password")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to change password"})
		return
	}

	matched, err := h.userQueries.UpdateUserPassword(id, hashed)
	if err != nil {
		log.Error().Err(err).Str("user_id", id.String()).Msg("failed to change password")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to change password"})
		return
	}
	if !matched {
		c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
		return
	}

	log.Info().Str("user_id", id.String()).Str("changed_by", session.Username).Msg("password changed")
	c.JSON(http.StatusOK, gin.H{"message": "password changed successfully"})
}

// DeleteUser deletes a user via the two-step confirmation flow. The acting
// admin's own account and the bootstrap admin are never deletable; both
// rules are enforced here so crafted requests cannot bypass the UI.
func (h *UserHandler) DeleteUser(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user id"})
		return
	}

	session := middleware.SessionFromContext(c)
	if id == session.UserID {
		c.JSON(http.StatusForbidden, gin.H{"error": "cannot delete your own account"})
		return
	}

	target, err := h.userQueries.GetUserByID(id)
	if errors.Is(err, queries.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
		return
	}
	if err != nil {
		log.Error().Err(err).Str("user_id", id.String()).Msg("failed to look up user")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete user"})
		return
	}
	if target.Username == h.bootstrapAdmin && target.IsAdmin {
		c.JSON(http.StatusForbidden, gin.H{"error": "the main admin account cannot be deleted"})
		return
	}

	var req models.ConfirmActionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "action is required"})
		return
	}

	switch req.Action {
	case "request":
		h.confirms.Request(session.SessionID, services.ActionDeleteUser, id)
		c.JSON(http.StatusAccepted, gin.H{"status": "pending_confirm", "message": "confirm to delete this user, this cannot be undone"})

	case "confirm":
		if !h.confirms.Confirm(session.SessionID, services.ActionDeleteUser, id) {
			c.JSON(http.StatusConflict, gin.H{"error": "no delete confirmation pending for this user"})
			return
		}
		matched, err := h.userQueries.DeleteUser(id)
		if err != nil {
			log.Error().Err(err).Str("user_id", id.String()).Msg("failed to delete user")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete user"})
			return
		}
		if !matched {
			c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
			return
		}
		log.Info().Str("user_id", id.String()).Str("deleted_by", session.Username).Msg("user deleted")
		c.JSON(http.StatusOK, gin.H{"message": "user deleted successfully"})

	case "cancel":
		h.confirms.Cancel(session.SessionID, services.ActionDeleteUser, id)
		c.JSON(http.StatusOK, gin.H{"status": "cancelled"})

	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "action must be request, confirm or cancel"})
	}
}

func validateNewPassword(password, confirm string) (string, bool) {
	if password == "" {
		return "password is required", false
	}
	if len(password) < MinPasswordLength {
		return "password must be at least 4 characters", false
	}
	if password != confirm {
		return "passwords do not match", false
	}
	return "", true
}
