package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/aitracker-project/aitracker-server/internal/api/middleware"
	"github.com/aitracker-project/aitracker-server/internal/database"
	"github.com/aitracker-project/aitracker-server/internal/database/queries"
	"github.com/aitracker-project/aitracker-server/internal/services"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

type testServer struct {
	router       *gin.Engine
	userQueries  *queries.UserQueries
	entryQueries *queries.EntryQueries
}

// newTestServer wires the full route table against a throwaway SQLite
// database, mirroring the server's production wiring.
func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)
	middleware.JWTSecret = "test-secret"

	db, err := database.Connect(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	require.NoError(t, db.EnsureSchema())
	t.Cleanup(func() { db.Close() })

	userQueries := queries.NewUserQueries(db.DB)
	entryQueries := queries.NewEntryQueries(db.DB)
	require.NoError(t, userQueries.EnsureDefaultAdmin("admin", "admin"))

	confirms := services.NewConfirmGuard()
	authHandler := NewAuthHandler(userQueries, confirms)
	entryHandler := NewEntryHandler(entryQueries, confirms)
	userHandler := NewUserHandler(userQueries, confirms, "admin")
	statsHandler := NewStatsHandler(entryQueries, userQueries)

	router := gin.New()
	api := router.Group("/api/v1")
	api.POST("/auth/login", authHandler.Login)

	authed := api.Group("/")
	authed.Use(middleware.RequireAuth())
	authed.POST("/auth/logout", authHandler.Logout)
	authed.GET("/auth/verify", authHandler.Verify)
	authed.GET("/entries", entryHandler.ListEntries)
	authed.POST("/entries", entryHandler.CreateEntry)
	authed.GET("/entries/:id", entryHandler.GetEntry)
	authed.PUT("/entries/:id", entryHandler.UpdateEntry)
	authed.POST("/entries/:id/delete", entryHandler.DeleteEntry)
	authed.GET("/stats/summary", statsHandler.GetSummary)

	admin := api.Group("/admin")
	admin.Use(middleware.RequireAdmin())
	admin.GET("/users", userHandler.ListUsers)
	admin.POST("/users", userHandler.CreateUser)
	admin.PUT("/users/:id/password", userHandler.ChangePassword)
	admin.POST("/users/:id/delete", userHandler.DeleteUser)

	return &testServer{
		router:       router,
		userQueries:  userQueries,
		entryQueries: entryQueries,
	}
}

// do performs a request with an optional bearer token and JSON body.
func (s *testServer) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

// login authenticates and returns the session token.
func (s *testServer) login(t *testing.T, username, password string) string {
	t.Helper()
	w := s.do(t, http.MethodPost, "/api/v1/auth/login", "", gin.H{
		"username": username,
		"password": password,
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp LoginResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.Token)
	return resp.Token
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return out
}
