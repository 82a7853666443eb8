package bans

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestApp(t *testing.T, svc *Service) *fiber.App {
	t.Helper()
	app := fiber.New()
	NewHandler(svc).RegisterRoutes(app)
	return app
}

func decodeBody(t *testing.T, body io.Reader) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.NewDecoder(body).Decode(&out))
	return out
}

func TestHandleCurrentBans(t *testing.T) {
	svc := newTestService(t, staticSource(sampleBanFile))
	app := newTestApp(t, svc)

	req := httptest.NewRequest(fiber.MethodPost, "/bans/sync?force=true", nil)
	res, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, res.StatusCode)

	req = httptest.NewRequest(fiber.MethodGet, "/bans/current", nil)
	res, err = app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, res.StatusCode)

	body := decodeBody(t, res.Body)
	assert.Equal(t, float64(1), body["count"])
}

func TestHandleSync_Throttled(t *testing.T) {
	svc := newTestService(t, staticSource(sampleBanFile))
	app := newTestApp(t, svc)

	res, err := app.Test(httptest.NewRequest(fiber.MethodPost, "/bans/sync", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, res.StatusCode)

	res, err = app.Test(httptest.NewRequest(fiber.MethodPost, "/bans/sync", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusTooManyRequests, res.StatusCode)

	res, err = app.Test(httptest.NewRequest(fiber.MethodPost, "/bans/sync?force=true", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, res.StatusCode)
}

func TestHandleOfflineBan_Lifecycle(t *testing.T) {
	svc := newTestService(t, staticSource(sampleBanFile))
	app := newTestApp(t, svc)

	payload := `{"id":"STEAM_0:0:11101","duration_seconds":86400,"player_name":"alice","reason":"staged"}`
	req := httptest.NewRequest(fiber.MethodPost, "/bans/offline", bytes.NewBufferString(payload))
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	res, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusCreated, res.StatusCode)

	// Staging again without force conflicts.
	req = httptest.NewRequest(fiber.MethodPost, "/bans/offline", bytes.NewBufferString(payload))
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	res, err = app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusConflict, res.StatusCode)

	req = httptest.NewRequest(fiber.MethodPost, "/bans/offline?force=true", bytes.NewBufferString(payload))
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	res, err = app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusCreated, res.StatusCode)

	res, err = app.Test(httptest.NewRequest(fiber.MethodGet, "/bans/offline", nil), -1)
	require.NoError(t, err)
	body := decodeBody(t, res.Body)
	assert.Equal(t, float64(1), body["count"])

	res, err = app.Test(httptest.NewRequest(fiber.MethodDelete, "/bans/offline/STEAM_0:0:11101", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, res.StatusCode)

	res, err = app.Test(httptest.NewRequest(fiber.MethodDelete, "/bans/offline/STEAM_0:0:11101", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNotFound, res.StatusCode)
}

func TestHandleBanLine_NotFound(t *testing.T) {
	svc := newTestService(t, staticSource(sampleBanFile))
	app := newTestApp(t, svc)

	res, err := app.Test(httptest.NewRequest(fiber.MethodGet, "/bans/76561197960287930/banline", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNotFound, res.StatusCode)
}

func TestHandleSearch_RequiresQuery(t *testing.T) {
	svc := newTestService(t, staticSource(sampleBanFile))
	app := newTestApp(t, svc)

	res, err := app.Test(httptest.NewRequest(fiber.MethodGet, "/bans/search", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, res.StatusCode)
}

func TestHandleMentions(t *testing.T) {
	svc := newTestService(t, staticSource(sampleBanFile))
	app := newTestApp(t, svc)

	payload := `[{"player_id":"76561197960287930","mentioned_at":"2024-03-01T12:00:00Z","channel_id":"chan-1","message_id":"1000"}]`
	req := httptest.NewRequest(fiber.MethodPost, "/mentions/", bytes.NewBufferString(payload))
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	res, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, res.StatusCode)
	assert.Equal(t, float64(1), decodeBody(t, res.Body)["recorded"])

	res, err = app.Test(httptest.NewRequest(fiber.MethodGet, "/mentions/76561197960287930", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, res.StatusCode)
	assert.Equal(t, float64(1), decodeBody(t, res.Body)["count"])
}

func TestHandleHistoryRange_Validation(t *testing.T) {
	svc := newTestService(t, staticSource(sampleBanFile))
	app := newTestApp(t, svc)

	res, err := app.Test(httptest.NewRequest(fiber.MethodGet, "/bans/history?from=bogus&to=2024-03-01T00:00:00Z", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, res.StatusCode)
}
