package handlers_test

import (
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/jainjy/servo-sub017/internal/http/handlers"
	applog "github.com/jainjy/servo-sub017/internal/log"
)

func TestErrorHandlerFriendlyMessage(t *testing.T) {
	app := fiber.New(fiber.Config{
		Views:        handlers.NewViews("../../web/templates", false),
		ErrorHandler: handlers.ErrorHandler,
	})
	app.Use(requestid.New())
	app.Get("/err", func(c *fiber.Ctx) error {
		return fiber.NewError(fiber.StatusInternalServerError, "db timeout: secret trace")
	})

	for _, accept := range []string{"text/html", "application/json"} {
		req := httptest.NewRequest("GET", "/err", nil)
		req.Header.Set("Accept", accept)
		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusInternalServerError, resp.StatusCode)
		body, _ := io.ReadAll(resp.Body)
		s := string(body)
		assert.Contains(t, s, "Une erreur est survenue", accept)
		assert.NotContains(t, s, "secret", accept)
	}
}

func TestUnknownRouteRendersNotFound(t *testing.T) {
	s := newServer(t)
	resp, err := s.app.Test(httptest.NewRequest("GET", "/nowhere", nil))
	require.NoError(t, err)
	assert.Equal(t, 404, resp.StatusCode)
}

func TestGeocodeProxy(t *testing.T) {
	s := newServer(t)

	resp, body := s.do(t, "GET", "/api/v1/geocode/search?q=Saint-Gilles", nil)
	require.Equal(t, 200, resp.StatusCode)
	assert.Contains(t, string(body), `"display_name":"Saint-Gilles-les-Bains"`)
	assert.Contains(t, string(body), `"lat":-21`)

	resp, body = s.do(t, "GET", "/api/v1/geocode/reverse?lat=-21.0&lon=55.3", nil)
	require.Equal(t, 200, resp.StatusCode)
	assert.Contains(t, string(body), `"city":"Saint-Paul"`)

	resp, _ = s.do(t, "GET", "/api/v1/geocode/reverse?lat=120&lon=55.3", nil)
	assert.Equal(t, 400, resp.StatusCode)
	resp, _ = s.do(t, "GET", "/api/v1/geocode/search", nil)
	assert.Equal(t, 400, resp.StatusCode)
}

func TestAddressSuggestionSettles(t *testing.T) {
	s := newServer(t)

	resp, _ := s.do(t, "GET", "/api/v1/geocode/suggestion", nil)
	assert.Equal(t, 204, resp.StatusCode)

	for _, text := range []string{"Sai", "Saint-Gi", "Saint-Gilles"} {
		resp, _ = s.do(t, "POST", "/api/v1/geocode/input", map[string]string{"text": text})
		require.Equal(t, 202, resp.StatusCode)
	}
	assert.Eventually(t, func() bool {
		resp, body := s.do(t, "GET", "/api/v1/geocode/suggestion", nil)
		return resp.StatusCode == 200 &&
			strings.Contains(string(body), `"query":"Saint-Gilles"`) &&
			strings.Contains(string(body), `"display_name":"Saint-Gilles-les-Bains"`)
	}, time.Second, 10*time.Millisecond)

	resp, _ = s.doAs(t, otherSID, "GET", "/api/v1/geocode/suggestion", nil)
	assert.Equal(t, 204, resp.StatusCode, "suggestions are per session")

	resp, _ = s.do(t, "POST", "/api/v1/geocode/input", map[string]string{"text": "<script>"})
	assert.Equal(t, 400, resp.StatusCode)
}

func TestHealthAndMetrics(t *testing.T) {
	s := newServer(t)
	resp, _ := s.do(t, "GET", "/healthz", nil)
	assert.Equal(t, 200, resp.StatusCode)

	s.do(t, "GET", "/api/v1/catalog/immobilier", nil)
	resp, body := s.do(t, "GET", "/metrics", nil)
	require.Equal(t, 200, resp.StatusCode)
	assert.True(t, strings.Contains(string(body), "servo_catalog_filter_requests_total"))
}

func TestAuditAndSecurityLogs(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	applog.Set(zap.New(core))
	t.Cleanup(func() { applog.Set(nil) })

	s := newServer(t)
	s.do(t, "PUT", "/api/v1/identity", map[string]any{"token": "tok", "email": "a@b.re"})
	s.do(t, "GET", "/api/v1/catalog/boutique-naturel?q=%3Cscript%3E", nil)

	signin := logs.FilterMessage("identity.signin").All()
	require.Len(t, signin, 1)
	fields := signin[0].ContextMap()
	assert.Equal(t, "PUT", fields["method"])
	assert.NotEmpty(t, fields["req_id"])
	assert.NotContains(t, fields, "token")

	sec := logs.FilterMessage("validation.fail").All()
	require.NotEmpty(t, sec)
	assert.Equal(t, zap.WarnLevel, sec[0].Level)
}
