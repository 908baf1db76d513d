package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"kominn/internal/config"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
)

func TestAuthRequired(t *testing.T) {
	app := fiber.New()
	secret := "test-secret-key-12345678901234567890123456789012"
	InitMiddleware(&config.Config{JWTSecret: secret})

	app.Get("/test", AuthRequired, func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusOK).JSON(fiber.Map{
			"actorID":    c.Locals("actorID"),
			"actorLogin": c.Locals("actorLogin"),
		})
	})

	generateToken := func(actorID int, login string, exp time.Duration) string {
		claims := jwt.MapClaims{
			"sub":   strconv.Itoa(actorID),
			"login": login,
			"exp":   time.Now().Add(exp).Unix(),
		}
		token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
		s, _ := token.SignedString([]byte(secret))
		return s
	}

	tests := []struct {
		name           string
		authHeader     string
		expectedStatus int
		expectedActor  int
		expectedLogin  string
	}{
		{
			name:           "Happy Path",
			authHeader:     "Bearer " + generateToken(123, "i:0#.f|membership|kari@example.org", time.Hour),
			expectedStatus: http.StatusOK,
			expectedActor:  123,
			expectedLogin:  "i:0#.f|membership|kari@example.org",
		},
		{
			name:           "Missing Header",
			authHeader:     "",
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:           "Invalid Format",
			authHeader:     "Basic dXNlcjpwYXNz",
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:           "Malformed Token",
			authHeader:     "Bearer malformed.token.here",
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:           "Expired Token",
			authHeader:     "Bearer " + generateToken(123, "kari@example.org", -time.Hour),
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:           "Missing Login Claim",
			authHeader:     "Bearer " + generateToken(123, "", time.Hour),
			expectedStatus: http.StatusUnauthorized,
		},
	}

	for _, tt := range tests {
		tt := tt // capture range variable
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/test", nil)
			if tt.authHeader != "" {
				req.Header.Set("Authorization", tt.authHeader)
			}

			resp, err := app.Test(req)
			defer func() { _ = resp.Body.Close() }()
			assert.NoError(t, err)
			assert.Equal(t, tt.expectedStatus, resp.StatusCode)

			if tt.expectedStatus == http.StatusOK {
				var body map[string]interface{}
				if err := json.NewDecoder(resp.Body).Decode(&body); err == nil {
					assert.Equal(t, float64(tt.expectedActor), body["actorID"])
					assert.Equal(t, tt.expectedLogin, body["actorLogin"])
				}
			}
		})
	}
}
