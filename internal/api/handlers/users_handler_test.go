package handlers

import (
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// createUser provisions a user through the admin API and returns its id.
func createUser(t *testing.T, s *testServer, adminToken, username, password string, isAdmin bool) string {
	t.Helper()
	w := s.do(t, http.MethodPost, "/api/v1/admin/users", adminToken, gin.H{
		"username":         username,
		"password":         password,
		"confirm_password": password,
		"is_admin":         isAdmin,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	return decode(t, w)["user"].(map[string]any)["id"].(string)
}

func TestAdminRoutesRejectNonAdmins(t *testing.T) {
	s := newTestServer(t)
	admin := s.login(t, "admin", "admin")
	createUser(t, s, admin, "bob", "password", false)

	bob := s.login(t, "bob", "password")
	for _, tc := range []struct {
		method string
		path   string
	}{
		{http.MethodGet, "/api/v1/admin/users"},
		{http.MethodPost, "/api/v1/admin/users"},
	} {
		w := s.do(t, tc.method, tc.path, bob, gin.H{})
		assert.Equal(t, http.StatusForbidden, w.Code, tc.path)
	}

	// non-admins still reach the regular authenticated routes
	w := s.do(t, http.MethodGet, "/api/v1/entries", bob, nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestCreateUserValidation(t *testing.T) {
	s := newTestServer(t)
	admin := s.login(t, "admin", "admin")

	cases := []struct {
		name string
		body gin.H
		want int
	}{
		{"missing password", gin.H{"username": "x"}, http.StatusBadRequest},
		{"blank username", gin.H{"username": "  ", "password": "password", "confirm_password": "password"}, http.StatusBadRequest},
		{"short password", gin.H{"username": "x", "password": "abc", "confirm_password": "abc"}, http.StatusBadRequest},
		{"mismatched confirmation", gin.H{"username": "x", "password": "abcd", "confirm_password": "abce"}, http.StatusBadRequest},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := s.do(t, http.MethodPost, "/api/v1/admin/users", admin, tc.body)
			assert.Equal(t, tc.want, w.Code)
		})
	}

	createUser(t, s, admin, "dave", "password", false)
	w := s.do(t, http.MethodPost, "/api/v1/admin/users", admin, gin.H{
		"username":         "dave",
		"password":         "password",
		"confirm_password": "password",
	})
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestListUsersNeverExposesPasswords(t *testing.T) {
	s := newTestServer(t)
	admin := s.login(t, "admin", "admin")
	createUser(t, s, admin, "bob", "password", false)

	w := s.do(t, http.MethodGet, "/api/v1/admin/users", admin, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.NotContains(t, w.Body.String(), "password\":")

	users := decode(t, w)["users"].([]any)
	require.Len(t, users, 2)
	for _, u := range users {
		_, leaked := u.(map[string]any)["password"]
		assert.False(t, leaked)
	}
}

func TestChangePasswordFlow(t *testing.T) {
	s := newTestServer(t)
	admin := s.login(t, "admin", "admin")
	bobID := createUser(t, s, admin, "bob", "oldpass", false)

	w := s.do(t, http.MethodPut, "/api/v1/admin/users/"+bobID+"/password", admin, gin.H{
		"password":         "abc",
		"confirm_password": "abc",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(t, http.MethodPut, "/api/v1/admin/users/"+bobID+"/password", admin, gin.H{
		"password":         "newpass",
		"confirm_password": "other",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(t, http.MethodPut, "/api/v1/admin/users/"+bobID+"/password", admin, gin.H{
		"password":         "newpass",
		"confirm_password": "newpass",
	})
	require.Equal(t, http.StatusOK, w.Code)

	// old password no longer works, new one does
	wLogin := s.do(t, http.MethodPost, "/api/v1/auth/login", "", gin.H{"username": "bob", "password": "oldpass"})
	assert.Equal(t, http.StatusUnauthorized, wLogin.Code)
	s.login(t, "bob", "newpass")
}

func TestAdminCannotChangeOwnPasswordHere(t *testing.T) {
	s := newTestServer(t)
	admin := s.login(t, "admin", "admin")

	adminUser, err := s.userQueries.GetUserByUsername("admin")
	require.NoError(t, err)

	w := s.do(t, http.MethodPut, "/api/v1/admin/users/"+adminUser.ID.String()+"/password", admin, gin.H{
		"password":         "newpass",
		"confirm_password": "newpass",
	})
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestDeleteUserProtections(t *testing.T) {
	s := newTestServer(t)
	admin := s.login(t, "admin", "admin")
	createUser(t, s, admin, "second", "password", true)

	adminUser, err := s.userQueries.GetUserByUsername("admin")
	require.NoError(t, err)

	// self-deletion is never offered, even by direct request
	w := s.do(t, http.MethodPost, "/api/v1/admin/users/"+adminUser.ID.String()+"/delete", admin, gin.H{"action": "request"})
	assert.Equal(t, http.StatusForbidden, w.Code)

	// the bootstrap admin is protected from everyone else too
	second := s.login(t, "second", "password")
	w = s.do(t, http.MethodPost, "/api/v1/admin/users/"+adminUser.ID.String()+"/delete", second, gin.H{"action": "request"})
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestDeleteUserTwoStepFlow(t *testing.T) {
	s := newTestServer(t)
	admin := s.login(t, "admin", "admin")
	bobID := createUser(t, s, admin, "bob", "password", false)

	w := s.do(t, http.MethodPost, "/api/v1/admin/users/"+bobID+"/delete", admin, gin.H{"action": "confirm"})
	assert.Equal(t, http.StatusConflict, w.Code)

	w = s.do(t, http.MethodPost, "/api/v1/admin/users/"+bobID+"/delete", admin, gin.H{"action": "request"})
	require.Equal(t, http.StatusAccepted, w.Code)

	w = s.do(t, http.MethodPost, "/api/v1/admin/users/"+bobID+"/delete", admin, gin.H{"action": "confirm"})
	require.Equal(t, http.StatusOK, w.Code)

	wLogin := s.do(t, http.MethodPost, "/api/v1/auth/login", "", gin.H{"username": "bob", "password": "password"})
	assert.Equal(t, http.StatusUnauthorized, wLogin.Code)
}
