package middleware

import (
	"net/http"
	"strings"
	"time"

	"github.com/aitracker-project/aitracker-server/internal/models"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// SessionCookie is the cookie carrying the session token. The token is also
// accepted as an Authorization bearer header.
const SessionCookie = "aitracker_session"

// JWTSecret and SessionTTL are set by the server at initialization.
var (
	JWTSecret  string
	SessionTTL = 24 * time.Hour
)

// UserClaims is the per-client session state carried in the signed token:
// who is logged in and whether they are an admin. SessionID distinguishes
// concurrent sessions of the same user.
type UserClaims struct {
	UserID    uuid.UUID `json:"user_id"`
	Username  string    `json:"username"`
	IsAdmin   bool      `json:"is_admin"`
	SessionID uuid.UUID `json:"session_id"`
	jwt.RegisteredClaims
}

// GenerateSessionToken creates a signed session token for a freshly
// authenticated user. The admin flag mirrors exactly the stored user row.
func GenerateSessionToken(user *models.User) (string, *UserClaims, error) {
	claims := &UserClaims{
		UserID:    user.ID,
		Username:  user.Username,
		IsAdmin:   user.IsAdmin,
		SessionID: uuid.New(),
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(SessionTTL)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(JWTSecret))
	if err != nil {
		return "", nil, err
	}
	return signed, claims, nil
}

// SessionFromContext returns the claims stored by RequireAuth.
func SessionFromContext(c *gin.Context) *UserClaims {
	return c.MustGet("session").(*UserClaims)
}

// extractToken pulls the session token from the cookie or the
// Authorization header.
func extractToken(c *gin.Context) string {
	if cookie, err := c.Cookie(SessionCookie); err == nil && cookie != "" {
		return cookie
	}
	authHeader := c.GetHeader("Authorization")
	return strings.TrimPrefix(authHeader, "Bearer ")
}

// ParseSessionToken validates a session token and returns its claims.
func ParseSessionToken(tokenString string) (*UserClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &UserClaims{}, func(token *jwt.Token) (interface{}, error) {
		return []byte(JWTSecret), nil
	})
	if err != nil {
		return nil, err
	}
	claims, ok := token.Claims.(*UserClaims)
	if !ok || !token.Valid {
		return nil, jwt.ErrTokenInvalidClaims
	}
	return claims, nil
}

func authenticate(c *gin.Context) (*UserClaims, bool) {
	tokenString := extractToken(c)
	if tokenString == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "please log in to access this page"})
		c.Abort()
		return nil, false
	}

	claims, err := ParseSessionToken(tokenString)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "please log in to access this page"})
		c.Abort()
		return nil, false
	}

	c.Set("session", claims)
	c.Set("user_id", claims.UserID)
	return claims, true
}

// RequireAuth blocks anonymous requests with a warning. No redirects.
func RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := authenticate(c); ok {
			c.Next()
		}
	}
}

// RequireAdmin applies RequireAuth semantics first, then additionally
// blocks sessions without the admin flag.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := authenticate(c)
		if !ok {
			return
		}
		if !claims.IsAdmin {
			c.JSON(http.StatusForbidden, gin.H{"error": "you do not have permission to access this page"})
			c.Abort()
			return
		}
		c.Next()
	}
}
