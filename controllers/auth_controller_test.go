package controllers_test

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegister(t *testing.T) {
	r := newServer(t)

	w := doJSON(r, http.MethodPost, "/api/register", map[string]any{
		"name":                  "John Doe",
		"email":                 "john@example.com",
		"password":              "password123",
		"password_confirmation": "password123",
	}, "")
	require.Equal(t, http.StatusCreated, w.Code, "body: %s", w.Body.String())

	body := decode(t, w)
	assert.Equal(t, "User registered successfully!", body["message"])
	assert.NotContains(t, body, "error")

	data := body["data"].(map[string]any)
	assert.Equal(t, "Bearer", data["token_type"])
	assert.NotEmpty(t, data["access_token"])

	user := data["user"].(map[string]any)
	assert.Equal(t, "John Doe", user["name"])
	assert.Equal(t, "john@example.com", user["email"])
	assert.NotContains(t, user, "password")
	assert.NotContains(t, user, "password_hash")
}

func TestRegisterValidation(t *testing.T) {
	r := newServer(t)

	w := doJSON(r, http.MethodPost, "/api/register", map[string]any{}, "")
	require.Equal(t, http.StatusUnprocessableEntity, w.Code)

	body := decode(t, w)
	assert.Equal(t, true, body["error"])
	errs := body["errors"].(map[string]any)
	assert.Contains(t, errs, "name")
	assert.Contains(t, errs, "email")
	assert.Contains(t, errs, "password")
	assert.Contains(t, errs, "password_confirmation")
}

func TestRegisterPasswordMismatch(t *testing.T) {
	r := newServer(t)

	w := doJSON(r, http.MethodPost, "/api/register", map[string]any{
		"name":                  "John Doe",
		"email":                 "john@example.com",
		"password":              "password123",
		"password_confirmation": "different456",
	}, "")
	require.Equal(t, http.StatusUnprocessableEntity, w.Code)

	errs := decode(t, w)["errors"].(map[string]any)
	assert.Equal(t, "The password confirmation does not match.", errs["password_confirmation"])
}

func TestRegisterDuplicateEmail(t *testing.T) {
	r := newServer(t)
	register(t, r, "taken@example.com")

	w := doJSON(r, http.MethodPost, "/api/register", map[string]any{
		"name":                  "Second",
		"email":                 "taken@example.com",
		"password":              "password123",
		"password_confirmation": "password123",
	}, "")
	require.Equal(t, http.StatusUnprocessableEntity, w.Code)

	errs := decode(t, w)["errors"].(map[string]any)
	assert.Equal(t, "The email has already been taken.", errs["email"])
}

func TestLogin(t *testing.T) {
	r := newServer(t)
	register(t, r, "login@example.com")

	w := doJSON(r, http.MethodPost, "/api/login", map[string]any{
		"email":    "login@example.com",
		"password": "password123",
	}, "")
	require.Equal(t, http.StatusOK, w.Code, "body: %s", w.Body.String())

	body := decode(t, w)
	assert.Equal(t, "Login successful", body["message"])
	data := body["data"].(map[string]any)
	assert.NotEmpty(t, data["access_token"])
	assert.Equal(t, "Bearer", data["token_type"])
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	r := newServer(t)
	register(t, r, "secure@example.com")

	cases := []map[string]any{
		{"email": "secure@example.com", "password": "wrong-password"},
		{"email": "unknown@example.com", "password": "password123"},
	}
	for _, payload := range cases {
		w := doJSON(r, http.MethodPost, "/api/login", payload, "")
		require.Equal(t, http.StatusUnauthorized, w.Code)

		body := decode(t, w)
		assert.Equal(t, true, body["error"])
		assert.Equal(t, "Invalid credentials", body["message"])
	}
}

func TestLogoutRevokesToken(t *testing.T) {
	r := newServer(t)
	token, _ := register(t, r, "bye@example.com")

	w := doJSON(r, http.MethodPost, "/api/logout", nil, token)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Logout successful", decode(t, w)["message"])

	w = doJSON(r, http.MethodGet, "/api/user", nil, token)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestCurrentUser(t *testing.T) {
	r := newServer(t)
	token, id := register(t, r, "me@example.com")

	w := doJSON(r, http.MethodGet, "/api/user", nil, token)
	require.Equal(t, http.StatusOK, w.Code)

	body := decode(t, w)
	assert.Equal(t, "User retrieved successfully", body["message"])
	data := body["data"].(map[string]any)
	assert.Equal(t, id, data["id"])
	assert.Equal(t, "me@example.com", data["email"])
}

func TestShowUser(t *testing.T) {
	r := newServer(t)
	token, id := register(t, r, "seen@example.com")

	w := doJSON(r, http.MethodGet, fmt.Sprintf("/api/user/%d", int(id)), nil, token)
	require.Equal(t, http.StatusOK, w.Code)
	data := decode(t, w)["data"].(map[string]any)
	assert.Equal(t, "seen@example.com", data["email"])

	w = doJSON(r, http.MethodGet, "/api/user/9999", nil, token)
	require.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "User not found", decode(t, w)["message"])
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	r := newServer(t)

	for _, path := range []string{"/api/user", "/api/posts"} {
		w := doJSON(r, http.MethodGet, path, nil, "")
		require.Equal(t, http.StatusUnauthorized, w.Code, "path %s", path)
		assert.Equal(t, "Unauthorized access", decode(t, w)["message"])
	}

	w := doJSON(r, http.MethodGet, "/api/user", nil, "not-a-valid-jwt")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestUnknownRoute(t *testing.T) {
	r := newServer(t)

	w := doJSON(r, http.MethodGet, "/api/nope", nil, "")
	require.Equal(t, http.StatusNotFound, w.Code)

	body := decode(t, w)
	assert.Equal(t, true, body["error"])
	assert.Equal(t, "api route not found", body["message"])
}
