package handlers

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/soltixdb/diskhealth/internal/logging"
	"github.com/soltixdb/diskhealth/internal/metadata"
)

// newTestApp registers every handler the way the router does, without auth.
func newTestApp(store metadata.ControlStore) *fiber.App {
	h := New(logging.NewWithWriter(io.Discard, zerolog.Disabled), store, "test")

	app := fiber.New()
	app.Get("/health", h.Health)
	app.Get("/v1/severities", h.Severities)
	app.Post("/v1/pdisks/reconcile", h.ReconcilePDisk)
	app.Post("/v1/pdisks/slots", h.Slots)
	app.Post("/v1/pdisks/info", h.PDiskInfo)
	app.Post("/v1/vdisks/reconcile", h.ReconcileVDisk)
	app.Post("/v1/nodes", h.Nodes)
	app.Post("/v1/groups", h.Groups)
	app.Put("/v1/control/pdisks", h.PutControlPDisk)
	app.Get("/v1/control/pdisks", h.ListControlPDisks)
	app.Get("/v1/control/pdisks/:id", h.GetControlPDisk)
	app.Put("/v1/control/vdisks", h.PutControlVDisk)
	app.Get("/v1/control/vdisks", h.ListControlVDisks)
	app.Get("/v1/control/vdisks/:id", h.GetControlVDisk)
	app.Use(h.NotFound)
	return app
}

// doJSON sends body as JSON and decodes the response into out when out is
// not nil. It returns the status code.
func doJSON(t *testing.T, app *fiber.App, method, path, body string, out interface{}) int {
	t.Helper()

	var reader io.Reader
	if body != "" {
		reader = bytes.NewBufferString(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	if out != nil {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp.StatusCode
}
