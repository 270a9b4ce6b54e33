package catalog

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"libracatalog/internal/httpx"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const duneDocument = `{
	"title": "Dune",
	"authors": ["Frank Herbert"],
	"isbn": "9780441172719",
	"publication_date": "1965-08-01",
	"genres": ["science FICTION"],
	"format": "Paperback",
	"current_status": "available",
	"condition": "good",
	"location_in_library": {"category": "Science fiction", "shelf": 2}
}`

func newTestRouter(t *testing.T) (http.Handler, *service) {
	t.Helper()
	svc, _, _ := newTestService(t)
	r := chi.NewRouter()
	NewHandler(svc).Routes(r)
	return r, svc
}

func do(t *testing.T, h http.Handler, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func addDune(t *testing.T, h http.Handler) string {
	t.Helper()
	rec := do(t, h, http.MethodPost, "/books", duneDocument)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	return rec.Header().Get("Location")
}

func TestHandlerAddAndGetBook(t *testing.T) {
	h, _ := newTestRouter(t)
	location := addDune(t, h)
	require.True(t, strings.HasPrefix(location, "/books/"))

	rec := do(t, h, http.MethodGet, location, "")
	require.Equal(t, http.StatusOK, rec.Code)

	var doc map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &doc))
	assert.Equal(t, "Dune", doc["title"])
	assert.Equal(t, []any{"Science fiction"}, doc["genres"])
	assert.Equal(t, float64(1), doc["version"])

	etag := rec.Header().Get("ETag")
	require.NotEmpty(t, etag)
	req := httptest.NewRequest(http.MethodGet, location, nil)
	req.Header.Set("If-None-Match", etag)
	cached := httptest.NewRecorder()
	h.ServeHTTP(cached, req)
	assert.Equal(t, http.StatusNotModified, cached.Code)
	assert.Empty(t, cached.Body.String())
}

func TestHandlerAddBookRejectsBadInput(t *testing.T) {
	h, _ := newTestRouter(t)

	tests := []struct {
		name string
		body string
		code string
	}{
		{"malformed", `{"title":`, ""},
		{"illegal state", `{"title":"x","format":"E-book","current_status":"checked_out","condition":"new"}`, "invalid_status_for_format"},
		{"unknown genre", `{"title":"x","format":"Paperback","current_status":"available","condition":"new","genres":["Cookbooks"]}`, "invalid_category"},
		{"zero shelf", `{"title":"x","format":"Paperback","current_status":"available","condition":"new","location_in_library":{"category":"Horror","shelf":0}}`, "invalid_shelf_number"},
		{"negative checkouts", `{"title":"x","format":"Paperback","current_status":"available","condition":"new","number_of_times_checked_out":-7}`, "invalid_checkout_count"},
		{"overflowing length", `{"title":"x","format":"Audiobook","current_status":"available","condition":"new","audiobook_length_seconds":20000000000}`, "invalid_audiobook_length"},
		{"wrong type", `{"title":5}`, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, h, http.MethodPost, "/books", tt.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())

			var resp httpx.ErrorResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
			assert.NotEmpty(t, resp.Error)
			assert.Equal(t, tt.code, resp.Code)
		})
	}
}

func TestHandlerMutations(t *testing.T) {
	h, _ := newTestRouter(t)
	location := addDune(t, h)

	rec := do(t, h, http.MethodPost, location+"/checkouts", "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Body.String(), `"current_status":"checked_out"`)
	assert.Contains(t, rec.Body.String(), `"number_of_times_checked_out":1`)

	rec = do(t, h, http.MethodPut, location+"/status", `{"status":"in_repair"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = do(t, h, http.MethodPut, location+"/status", `{"status":"lost"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, h, http.MethodPut, location+"/condition", `{"condition":"poor"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Body.String(), `"condition":"poor"`)

	rec = do(t, h, http.MethodPut, location+"/location", `{"category":"travel","shelf":5}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Body.String(), `"location_in_library":{"category":"Travel","shelf":5}`)

	rec = do(t, h, http.MethodPut, location+"/location", `{"category":"Travel","shelf":-5}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, h, http.MethodPut, location+"/location", `null`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.NotContains(t, rec.Body.String(), "location_in_library")

	rec = do(t, h, http.MethodPut, location+"/ratings/ada", `{"stars":4}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Body.String(), `"user_ratings":{"ada":4}`)

	rec = do(t, h, http.MethodPut, location+"/ratings/ada", `{"stars":0}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, h, http.MethodPost, location+"/rebuild", "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Body.String(), `"version":7`)

	rec = do(t, h, http.MethodGet, location+"/audiobook-length", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"length":"N/A"}`, rec.Body.String())
}

func TestHandlerBookLookupErrors(t *testing.T) {
	h, _ := newTestRouter(t)

	rec := do(t, h, http.MethodGet, "/books/not-a-uuid", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, h, http.MethodGet, "/books/6f1c1c5e-8d1a-4f5b-9a55-2c3d4e5f6a7b", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(t, h, http.MethodPost, "/books/6f1c1c5e-8d1a-4f5b-9a55-2c3d4e5f6a7b/checkouts", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHandlerRegistries(t *testing.T) {
	h, _ := newTestRouter(t)

	rec := do(t, h, http.MethodGet, "/categories", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var labels []string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &labels))
	assert.Len(t, labels, 95)

	rec = do(t, h, http.MethodGet, "/categories/resolve?label=SPACE+opera", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `"Space opera"`, rec.Body.String())

	rec = do(t, h, http.MethodGet, "/categories/resolve?label=Cookbooks", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(t, h, http.MethodGet, "/digital-formats?kind=audiobook", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var formats []digitalFormatResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &formats))
	assert.Len(t, formats, 10)
	for _, f := range formats {
		assert.Equal(t, MediaAudiobook, f.Kind)
	}

	rec = do(t, h, http.MethodGet, "/digital-formats?kind=vinyl", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, h, http.MethodGet, "/digital-formats/resolve?label=epub", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"label":"EPUB","kind":"ebook"}`, rec.Body.String())
}
