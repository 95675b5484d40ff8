package cmd

import (
	"bytes"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/gaze-network/stamp-indexer/internal/config"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTTPServerBodyLimit(t *testing.T) {
	assert.Equal(t, defaultBodyLimit, newHTTPServer(config.Config{}).Config().BodyLimit)
	assert.Equal(t, 1024, newHTTPServer(config.Config{HTTPServer: config.HTTPServerConfig{BodyLimit: 1024}}).Config().BodyLimit)

	app := newHTTPServer(config.Config{})
	app.Post("/echo-length", func(c *fiber.Ctx) error {
		return c.SendString(strconv.Itoa(len(c.Body())))
	})

	// above fiber's 4 MiB default
	for _, size := range []int{4*1024*1024 + 512*1024, defaultBodyLimit} {
		req := httptest.NewRequest(http.MethodPost, "/echo-length", bytes.NewReader(bytes.Repeat([]byte("a"), size)))
		resp, err := app.Test(req, -1)
		require.NoError(t, err)
		body, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, strconv.Itoa(size), string(body))
	}
}

func TestHTTPServerHealth(t *testing.T) {
	app := newHTTPServer(config.Config{})

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/health", nil), -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `"status":"ok"`)
}
