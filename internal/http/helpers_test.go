package handlers_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/stretchr/testify/require"

	"github.com/jainjy/servo-sub017/internal/apiclient"
	"github.com/jainjy/servo-sub017/internal/config"
	"github.com/jainjy/servo-sub017/internal/forms"
	"github.com/jainjy/servo-sub017/internal/http/handlers"
	"github.com/jainjy/servo-sub017/internal/identity"
	"github.com/jainjy/servo-sub017/internal/repos"
)

const testForms = `
forms:
  - name: demande-visite
    endpoint: /demandes/visite
    collections: [immobilier]
    item_key: propertyId
    fields: [nomComplet, email, telephone, date, message]
    required: [nomComplet, date]
    text_fields: [message]
    static:
      type: visite
`

// backend records what the REST API receives.
type backend struct {
	mu       sync.Mutex
	posts    []map[string]any
	auth     []string
	reject   string
	profiles int
}

func (b *backend) handler(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	defer b.mu.Unlock()
	w.Header().Set("Content-Type", "application/json")
	switch {
	case r.Method == http.MethodGet && r.URL.Path == "/users/me":
		b.profiles++
		_, _ = w.Write([]byte(`{"success":true,"data":{"email":"jean@dupont.re","firstName":"Jean","lastName":"Dupont","phone":"0692000000"}}`))
	case r.Method == http.MethodPost && r.URL.Path == "/demandes/visite":
		var body map[string]any
		_ = json.NewDecoder(r.Body).Decode(&body)
		b.posts = append(b.posts, body)
		b.auth = append(b.auth, r.Header.Get("Authorization"))
		if b.reject != "" {
			_, _ = w.Write([]byte(`{"success":false,"message":"` + b.reject + `"}`))
			return
		}
		_, _ = w.Write([]byte(`{"success":true,"data":{"id":"d-1"}}`))
	default:
		http.NotFound(w, r)
	}
}

func (b *backend) postCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.posts)
}

type testServer struct {
	app     *fiber.App
	backend *backend
	ids     *identity.MemoryBackend
}

func newServer(t *testing.T) *testServer {
	t.Helper()
	be := &backend{}
	rest := httptest.NewServer(http.HandlerFunc(be.handler))
	t.Cleanup(rest.Close)
	geoSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/search":
			_, _ = w.Write([]byte(`[{"lat":"-21.0","lon":"55.3","display_name":"Saint-Gilles-les-Bains"}]`))
		case "/reverse":
			_, _ = w.Write([]byte(`{"display_name":"Saint-Gilles","address":{"city":"Saint-Paul"}}`))
		}
	}))
	t.Cleanup(geoSrv.Close)

	db, err := repos.OpenDB(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	reg, err := forms.Parse([]byte(testForms), 30*time.Millisecond)
	require.NoError(t, err)

	cfg := config.Config{
		API:      config.APIConfig{BaseURL: rest.URL, Timeout: 2 * time.Second, ProfilePath: "/users/me", CatalogPath: "/catalog"},
		Geocoder: config.GeoConfig{URL: geoSrv.URL, UserAgent: "servo-test", Debounce: 20 * time.Millisecond},
	}
	api := apiclient.New(apiclient.Options{
		BaseURL: rest.URL, ProfilePath: "/users/me", CatalogPath: "/catalog", Timeout: 2 * time.Second,
	})
	ids := identity.NewMemoryBackend()

	app := fiber.New(fiber.Config{
		Views:        handlers.NewViews("../../web/templates", false),
		ErrorHandler: handlers.ErrorHandler,
	})
	app.Use(requestid.New())
	handlers.Routes(app, handlers.NewDeps(db, cfg, api, ids, reg, nil))
	return &testServer{app: app, backend: be, ids: ids}
}

const sid = "6f1c2f8e-3c1d-4a4b-9a57-0f1d9a0c1b11"

func (s *testServer) do(t *testing.T, method, path string, body any) (*http.Response, []byte) {
	t.Helper()
	return s.doAs(t, sid, method, path, body)
}

func (s *testServer) doAs(t *testing.T, session, method, path string, body any) (*http.Response, []byte) {
	t.Helper()
	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		rd = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, rd)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	req.AddCookie(&http.Cookie{Name: "sid", Value: session})
	resp, err := s.app.Test(req, 5000)
	require.NoError(t, err)
	out, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, out
}
