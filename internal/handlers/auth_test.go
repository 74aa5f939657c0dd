package handlers_test

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/munhub-dev/munhub/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type authPayload struct {
	Token string `json:"token"`
	User  struct {
		ID    uint   `json:"id"`
		Email string `json:"email"`
		Role  string `json:"role"`
	} `json:"user"`
}

func TestRegisterAndLogin(t *testing.T) {
	app := newTestApp(t)

	register := map[string]string{
		"firstName":   "Jane",
		"lastName":    "Doe",
		"email":       "Jane@Example.com",
		"password":    "password123",
		"institution": "Test University",
	}

	w, env := app.request(t, http.MethodPost, "/api/auth/register", "", register)
	require.Equal(t, http.StatusCreated, w.Code, env.Message)
	assert.True(t, env.Success)

	var created authPayload
	require.NoError(t, json.Unmarshal(env.Data, &created))
	assert.NotEmpty(t, created.Token)
	assert.Equal(t, "jane@example.com", created.User.Email)
	assert.Equal(t, string(types.RoleDelegate), created.User.Role)

	t.Run("duplicate email conflicts", func(t *testing.T) {
		w, _ := app.request(t, http.MethodPost, "/api/auth/register", "", register)
		assert.Equal(t, http.StatusConflict, w.Code)
	})

	t.Run("login with the new credentials", func(t *testing.T) {
		w, env := app.request(t, http.MethodPost, "/api/auth/login", "", map[string]string{
			"email":    "jane@example.com",
			"password": "password123",
		})
		require.Equal(t, http.StatusOK, w.Code)

		var logged authPayload
		require.NoError(t, json.Unmarshal(env.Data, &logged))
		assert.NotEmpty(t, logged.Token)
	})

	t.Run("wrong password is rejected", func(t *testing.T) {
		w, env := app.request(t, http.MethodPost, "/api/auth/login", "", map[string]string{
			"email":    "jane@example.com",
			"password": "not-the-password",
		})
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.False(t, env.Success)
	})

	t.Run("me returns the profile", func(t *testing.T) {
		w, env := app.request(t, http.MethodGet, "/api/auth/me", created.Token, nil)
		require.Equal(t, http.StatusOK, w.Code)

		var data struct {
			User struct {
				Email string `json:"email"`
			} `json:"user"`
		}
		require.NoError(t, json.Unmarshal(env.Data, &data))
		assert.Equal(t, "jane@example.com", data.User.Email)
	})
}

func TestRegisterValidation(t *testing.T) {
	app := newTestApp(t)

	w, env := app.request(t, http.MethodPost, "/api/auth/register", "", map[string]string{
		"firstName": "Jane",
		"email":     "not-an-email",
		"password":  "short",
	})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.False(t, env.Success)
	assert.Contains(t, env.Errors, "email")
	assert.Contains(t, env.Errors, "password")
}

func TestMeRequiresToken(t *testing.T) {
	app := newTestApp(t)

	w, _ := app.request(t, http.MethodGet, "/api/auth/me", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestDeactivatedUserCannotLogin(t *testing.T) {
	app := newTestApp(t)

	user, token := app.createUser(t, "gone@example.com", types.RoleDelegate)
	require.NoError(t, app.conn.Model(&user).Update("active", false).Error)

	t.Run("login rejected", func(t *testing.T) {
		w, _ := app.request(t, http.MethodPost, "/api/auth/login", "", map[string]string{
			"email":    "gone@example.com",
			"password": "password123",
		})
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("existing token rejected", func(t *testing.T) {
		w, _ := app.request(t, http.MethodGet, "/api/auth/me", token, nil)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}

func TestChangePassword(t *testing.T) {
	app := newTestApp(t)

	_, token := app.createUser(t, "rotate@example.com", types.RoleDelegate)

	t.Run("wrong current password", func(t *testing.T) {
		w, env := app.request(t, http.MethodPost, "/api/auth/change-password", token, map[string]string{
			"currentPassword": "wrong",
			"newPassword":     "newpassword123",
		})
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, env.Errors, "currentPassword")
	})

	t.Run("rotates and old password stops working", func(t *testing.T) {
		w, _ := app.request(t, http.MethodPost, "/api/auth/change-password", token, map[string]string{
			"currentPassword": "password123",
			"newPassword":     "newpassword123",
		})
		require.Equal(t, http.StatusOK, w.Code)

		w, _ = app.request(t, http.MethodPost, "/api/auth/login", "", map[string]string{
			"email":    "rotate@example.com",
			"password": "password123",
		})
		assert.Equal(t, http.StatusUnauthorized, w.Code)

		w, _ = app.request(t, http.MethodPost, "/api/auth/login", "", map[string]string{
			"email":    "rotate@example.com",
			"password": "newpassword123",
		})
		assert.Equal(t, http.StatusOK, w.Code)
	})
}
