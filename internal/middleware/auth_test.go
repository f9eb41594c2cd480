package middleware

import (
	"encoding/json"
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/soltixdb/diskhealth/internal/config"
	"github.com/soltixdb/diskhealth/internal/logging"
	"github.com/soltixdb/diskhealth/internal/models"
)

var validKey = strings.Repeat("k", MinAPIKeyLength)

func newAuthApp(cfg config.AuthConfig) *fiber.App {
	logger := logging.NewWithWriter(io.Discard, zerolog.Disabled)
	app := fiber.New()
	app.Use(APIKeyAuth(logger, cfg))
	app.Get("/v1/severities", func(c *fiber.Ctx) error {
		return c.SendString("ok")
	})
	return app
}

func TestValidateAPIKey(t *testing.T) {
	assert.True(t, ValidateAPIKey(validKey))
	assert.True(t, ValidateAPIKey(validKey+"extra"))
	assert.False(t, ValidateAPIKey(validKey[1:]))
	assert.False(t, ValidateAPIKey(""))
	assert.False(t, ValidateAPIKey(strings.Repeat(" ", MinAPIKeyLength)))
}

func TestAPIKeyAuth(t *testing.T) {
	app := newAuthApp(config.AuthConfig{Enabled: true, APIKeys: []string{validKey, "short"}})

	tests := []struct {
		name       string
		headers    map[string]string
		wantStatus int
	}{
		{name: "x_api_key", headers: map[string]string{"X-API-Key": validKey}, wantStatus: fiber.StatusOK},
		{name: "bearer", headers: map[string]string{"Authorization": "Bearer " + validKey}, wantStatus: fiber.StatusOK},
		{name: "plain_authorization", headers: map[string]string{"Authorization": validKey}, wantStatus: fiber.StatusOK},
		{name: "missing", wantStatus: fiber.StatusUnauthorized},
		{name: "wrong", headers: map[string]string{"X-API-Key": strings.Repeat("x", MinAPIKeyLength)}, wantStatus: fiber.StatusUnauthorized},
		{name: "short_key_ignored", headers: map[string]string{"X-API-Key": "short"}, wantStatus: fiber.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/v1/severities", nil)
			for k, v := range tt.headers {
				req.Header.Set(k, v)
			}

			resp, err := app.Test(req)
			require.NoError(t, err)
			assert.Equal(t, tt.wantStatus, resp.StatusCode)

			if tt.wantStatus == fiber.StatusUnauthorized {
				var body models.ErrorResponse
				require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
				assert.Equal(t, "UNAUTHORIZED", body.Error.Code)
				assert.Equal(t, "/v1/severities", body.Error.Path)
			}
		})
	}
}

func TestAPIKeyAuth_Disabled(t *testing.T) {
	app := newAuthApp(config.AuthConfig{Enabled: false})

	resp, err := app.Test(httptest.NewRequest("GET", "/v1/severities", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}

func TestMaskAPIKey(t *testing.T) {
	assert.Equal(t, "****", maskAPIKey("abc"))
	assert.Equal(t, "abcd****", maskAPIKey("abcdefgh"))
}
