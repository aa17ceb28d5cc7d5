package handlers_test

import (
	"encoding/json"
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type listing struct {
	Items []struct {
		ID string `json:"id"`
	} `json:"items"`
	Count      int      `json:"count"`
	Categories []string `json:"categories"`
}

func browse(t *testing.T, s *testServer, path string) (int, listing) {
	t.Helper()
	resp, body := s.do(t, "GET", path, nil)
	var l listing
	if resp.StatusCode == 200 {
		require.NoError(t, json.Unmarshal(body, &l))
	}
	return resp.StatusCode, l
}

func itemIDs(l listing) []string {
	out := []string{}
	for _, it := range l.Items {
		out = append(out, it.ID)
	}
	return out
}

func TestCatalogListFilters(t *testing.T) {
	s := newServer(t)

	cases := []struct {
		name string
		path string
		want []string
	}{
		{"all", "/api/v1/catalog/boutique-naturel", []string{"1", "2", "3", "4"}},
		{"category", "/api/v1/catalog/boutique-naturel?category=Soins%20Bien-%C3%AAtre", []string{"3", "4"}},
		{"search is case insensitive", "/api/v1/catalog/boutique-naturel?q=ROLLER", []string{"3"}},
		{"accented search", "/api/v1/catalog/bien-etre?q=s%C3%A9ance", []string{"svc-2"}},
		{"rating floor", "/api/v1/catalog/bien-etre?rating=4.5", []string{"svc-1", "svc-2"}},
		{"repeated keys OR", "/api/v1/catalog/bien-etre?duration=1h&duration=1h30", []string{"svc-1", "svc-3"}},
		{"dimensions AND", "/api/v1/catalog/bien-etre?rating=4.5&price=-50", []string{"svc-2"}},
		{"unknown keys ignored", "/api/v1/catalog/bien-etre?color=red", []string{"svc-1", "svc-2", "svc-3"}},
		{"no match", "/api/v1/catalog/boutique-naturel?q=zzz", []string{}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			code, l := browse(t, s, tc.path)
			require.Equal(t, 200, code)
			assert.Equal(t, tc.want, itemIDs(l))
			assert.Equal(t, len(tc.want), l.Count)
		})
	}
}

func TestCatalogCategoriesIgnoreActiveFilter(t *testing.T) {
	s := newServer(t)
	_, l := browse(t, s, "/api/v1/catalog/boutique-naturel?q=tisane")
	assert.Equal(t, []string{"Aromathérapie", "Tisanes", "Soins Bien-être"}, l.Categories)
}

func TestCatalogRejectsBadInput(t *testing.T) {
	s := newServer(t)

	code, _ := browse(t, s, "/api/v1/catalog/nope")
	assert.Equal(t, 404, code)

	code, _ = browse(t, s, "/api/v1/catalog/boutique-naturel?q=%3Cscript%3E")
	assert.Equal(t, 400, code)

	code, _ = browse(t, s, "/api/v1/catalog/bien-etre?location=%3Cb%3E")
	assert.Equal(t, 400, code)
}

func TestCollections(t *testing.T) {
	s := newServer(t)
	resp, body := s.do(t, "GET", "/api/v1/collections", nil)
	require.Equal(t, 200, resp.StatusCode)
	assert.Contains(t, string(body), `"name":"immobilier"`)
}

func TestCatalogPageRendersVisibleItems(t *testing.T) {
	s := newServer(t)
	req := httptest.NewRequest("GET", "/catalog/immobilier?q=villa", nil)
	resp, err := s.app.Test(req)
	require.NoError(t, err)
	require.Equal(t, 200, resp.StatusCode)
	body, _ := io.ReadAll(resp.Body)
	html := string(body)
	assert.Contains(t, html, "Villa T4 avec piscine")
	assert.NotContains(t, html, "Appartement T2")
	assert.Contains(t, html, `data-form="demande-visite"`)
	assert.Contains(t, html, "450000.00")
	assert.True(t, strings.Contains(resp.Header.Get("Set-Cookie"), "sid="), "session cookie issued")
}

func TestCatalogPageUnknownCollection(t *testing.T) {
	s := newServer(t)
	resp, err := s.app.Test(httptest.NewRequest("GET", "/catalog/nope", nil))
	require.NoError(t, err)
	assert.Equal(t, 404, resp.StatusCode)
	body, _ := io.ReadAll(resp.Body)
	assert.Contains(t, string(body), "Collection introuvable")
}
