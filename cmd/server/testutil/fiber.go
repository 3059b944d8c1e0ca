// Package testutil builds Fiber apps, tokens and requests for handler tests.
package testutil

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"auction-house/cmd/server/handlers/httperr"
	"auction-house/internal/config"
	"auction-house/internal/logger"
	"auction-house/internal/services/auth"
	util "auction-house/internal/utils"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
)

// TestJWTSecret signs tokens in handler tests.
const TestJWTSecret = "test-jwt-secret-with-at-least-32-characters"

// TestConfig returns the configuration handler tests share.
func TestConfig() config.Config {
	return config.Config{
		LogLevel:         "debug",
		LogFormat:        "text",
		JWTSecret:        TestJWTSecret,
		JWTAlgorithm:     "HS256",
		JWTExpiryMinutes: 60,
		WSMaxSessionSec:  5,
		WSOutboxBuffer:   8,
	}
}

// CreateTestApp creates a basic Fiber app for testing with common configuration
func CreateTestApp(t *testing.T) *fiber.App {
	t.Helper()
	_, err := logger.Init(TestConfig())
	require.NoError(t, err)

	return fiber.New(fiber.Config{
		ErrorHandler: httperr.Handler,
	})
}

// CreateTestValidator creates the production validator
func CreateTestValidator(t *testing.T) *validator.Validate {
	t.Helper()
	v, err := util.NewValidator()
	require.NoError(t, err)
	return v
}

// CreateTestJWT creates a JWT token with the claims login issues
func CreateTestJWT(userID string, email string, secret []byte, expiry time.Duration) (string, error) {
	now := time.Now().UTC()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		auth.ClaimUserID: userID,
		auth.ClaimEmail:  email,
		"exp":            now.Add(expiry).Unix(),
		"iat":            now.Unix(),
	})

	return token.SignedString(secret)
}

// MustJWT is CreateTestJWT with TestJWTSecret and a one hour expiry.
func MustJWT(t *testing.T, userID, email string) string {
	t.Helper()
	token, err := CreateTestJWT(userID, email, []byte(TestJWTSecret), time.Hour)
	require.NoError(t, err)
	return token
}

// CreateJSONRequest creates an HTTP request with JSON body
func CreateJSONRequest(method, url string, body any) *http.Request {
	var reqBody []byte
	switch b := body.(type) {
	case nil:
	case string:
		reqBody = []byte(b)
	default:
		reqBody, _ = json.Marshal(body)
	}

	req := httptest.NewRequest(method, url, bytes.NewReader(reqBody))
	req.Header.Set("Content-Type", "application/json")
	return req
}

// CreateAuthenticatedRequest creates an HTTP request with Authorization header
func CreateAuthenticatedRequest(method, url string, body any, token string) *http.Request {
	req := CreateJSONRequest(method, url, body)
	req.Header.Set("Authorization", "Bearer "+token)
	return req
}

// CreateWebSocketRequest creates an HTTP request with WebSocket upgrade headers
func CreateWebSocketRequest(url string, token *string) *http.Request {
	requestURL := url
	if token != nil {
		requestURL += "?token=" + *token
	}

	req := httptest.NewRequest("GET", requestURL, nil)
	req.Header.Set("Connection", "Upgrade")
	req.Header.Set("Upgrade", "websocket")
	req.Header.Set("Sec-WebSocket-Version", "13")
	req.Header.Set("Sec-WebSocket-Key", "dGhlIHNhbXBsZSBub25jZQ==")
	return req
}

// DecodeJSON reads resp.Body into a generic map.
func DecodeJSON(t *testing.T, resp *http.Response) map[string]any {
	t.Helper()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	var out map[string]any
	require.NoError(t, json.Unmarshal(body, &out), "body: %s", body)
	return out
}
