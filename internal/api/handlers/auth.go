package handlers

import (
	"errors"
	"net/http"

	"github.com/aitracker-project/aitracker-server/internal/api/middleware"
	"github.com/aitracker-project/aitracker-server/internal/auth"
	"github.com/aitracker-project/aitracker-server/internal/database/queries"
	"github.com/aitracker-project/aitracker-server/internal/models"
	"github.com/aitracker-project/aitracker-server/internal/services"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

// AuthHandler handles login, logout and session verification.
type AuthHandler struct {
	userQueries *queries.UserQueries
	confirms    *services.ConfirmGuard
}

func NewAuthHandler(uq *queries.UserQueries, confirms *services.ConfirmGuard) *AuthHandler {
	return &AuthHandler{
		userQueries: uq,
		confirms:    confirms,
	}
}

// LoginRequest represents a login request
type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// LoginResponse represents a login response
type LoginResponse struct {
	Token string       `json:"token"`
	User  *models.User `json:"user"`
}

// Login verifies credentials and establishes the session. An unknown
// username and a wrong password are indistinguishable to the caller.
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "please enter both username and password"})
		return
	}

	user, err := h.userQueries.GetUserByUsername(req.Username)
	if err != nil {
		if !errors.Is(err, queries.ErrNotFound) {
			log.Error().Err(err).Msg("login lookup failed")
		}
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid username or password"})
		return
	}

	if !auth.VerifyPassword(req.Password, user.Password) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid username or password"})
		return
	}

	tokenString, _, err := middleware.GenerateSessionToken(user)
	if err != nil {
		log.Error().Err(err).Msg("failed to sign session token")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create session"})
		return
	}

	log.Info().Str("username", user.Username).Bool("is_admin", user.IsAdmin).Msg("user logged in")

	user.Password = ""
	c.SetCookie(middleware.SessionCookie, tokenString, int(middleware.SessionTTL.Seconds()), "/", "", false, true)
	c.JSON(http.StatusOK, LoginResponse{
		Token: tokenString,
		User:  user,
	})
}

// Logout clears the session cookie and discards the session's pending
// delete confirmations, returning the client to the anonymous state.
func (h *AuthHandler) Logout(c *gin.Context) {
	session := middleware.SessionFromContext(c)
	h.confirms.ClearSession(session.SessionID)

	log.Info().Str("username", session.Username).Msg("user logged out")

	c.SetCookie(middleware.SessionCookie, "", -1, "/", "", false, true)
	c.JSON(http.StatusOK, gin.H{"message": "logged out successfully"})
}

// Verify reports the session's identity and admin flag.
func (h *AuthHandler) Verify(c *gin.Context) {
	session := middleware.SessionFromContext(c)
	c.JSON(http.StatusOK, gin.H{
		"valid":    true,
		"user_id":  session.UserID,
		"username": session.Username,
		"is_admin": session.IsAdmin,
	})
}
