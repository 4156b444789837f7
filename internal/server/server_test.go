package server

import (
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/benbeisheim/makemove-fixtures/internal/config"
	"github.com/benbeisheim/makemove-fixtures/internal/jsonrpc"
)

func post(t *testing.T, app *fiber.App, body string) *jsonrpc.Response {
	t.Helper()
	req := httptest.NewRequest(fiber.MethodPost, RPCPath, strings.NewReader(body))
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	parsed, err := jsonrpc.ParseResponse(raw)
	require.NoError(t, err)
	return parsed
}

func TestMakeMoveRoute(t *testing.T) {
	app := New(config.Default(), zerolog.Nop())
	resp := post(t, app, `{"method":"MakeMove","params":{"boardState":[{"type":"K","loc":"e1"},{"type":"P","loc":"e2"},{"type":"k","loc":"e8"}],"move":"e4","playerState":"w"},"id":1,"jsonrpc":"2.0"}`)

	require.Nil(t, resp.Error)
	require.NotNil(t, resp.Result)
	assert.Equal(t, "b", *resp.Result.PlayerState)
	assert.Equal(t, "", *resp.Result.GameState)
	assert.Len(t, *resp.Result.BoardState, 3)
}

func TestMakeMoveRouteErrors(t *testing.T) {
	app := New(config.Default(), zerolog.Nop())
	resp := post(t, app, `{"method":"MakeMove","params":{"boardState":[{"type":"K","loc":"e1"},{"type":"k","loc":"e8"}],"move":"z9","playerState":"w"},"id":7,"jsonrpc":"2.0"}`)
	require.NotNil(t, resp.Error)
	assert.Equal(t, -32020, resp.Error.Code)
	assert.Equal(t, 7, *resp.ID)
	assert.Nil(t, resp.Result)
}

func TestRPCRequiresJSON(t *testing.T) {
	app := New(config.Default(), zerolog.Nop())
	req := httptest.NewRequest(fiber.MethodPost, RPCPath, strings.NewReader("{}"))
	req.Header.Set(fiber.HeaderContentType, fiber.MIMETextPlain)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnsupportedMediaType, resp.StatusCode)
}

func TestFeedRequiresUpgrade(t *testing.T) {
	app := New(config.Default(), zerolog.Nop())
	resp, err := app.Test(httptest.NewRequest(fiber.MethodGet, FeedPath, nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUpgradeRequired, resp.StatusCode)
}

func TestCORSPreflight(t *testing.T) {
	app := New(config.Default(), zerolog.Nop())
	req := httptest.NewRequest(fiber.MethodOptions, RPCPath, nil)
	req.Header.Set(fiber.HeaderOrigin, "http://localhost:5173")
	req.Header.Set(fiber.HeaderAccessControlRequestMethod, fiber.MethodPost)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:5173", resp.Header.Get(fiber.HeaderAccessControlAllowOrigin))
}
