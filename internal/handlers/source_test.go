package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonesrussell/content-discovery/internal/models"
	"github.com/jonesrussell/content-discovery/internal/repository"
	"github.com/jonesrussell/content-discovery/internal/testhelpers"
)

type fakeStore struct {
	sources    map[string]*models.Source
	createErr  error
	updateErr  error
	deleteErr  error
	listErr    error
	lastFilter repository.ListFilter
}

func newFakeStore(sources ...*models.Source) *fakeStore {
	store := &fakeStore{sources: make(map[string]*models.Source)}
	for _, s := range sources {
		store.sources[s.ID] = s
	}
	return store
}

func (f *fakeStore) Create(_ context.Context, source *models.Source) error {
	if f.createErr != nil {
		return f.createErr
	}
	source.ID = "generated-id"
	f.sources[source.ID] = source
	return nil
}

func (f *fakeStore) GetByID(_ context.Context, id string) (*models.Source, error) {
	source, ok := f.sources[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return source, nil
}

func (f *fakeStore) ListPaginated(_ context.Context, filter repository.ListFilter) ([]models.Source, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	f.lastFilter = filter
	sources := make([]models.Source, 0, len(f.sources))
	for _, s := range f.sources {
		sources = append(sources, *s)
	}
	return sources, nil
}

func (f *fakeStore) Count(_ context.Context, _ repository.ListFilter) (int, error) {
	return len(f.sources), nil
}

func (f *fakeStore) Update(_ context.Context, source *models.Source) error {
	if f.updateErr != nil {
		return f.updateErr
	}
	if _, ok := f.sources[source.ID]; !ok {
		return repository.ErrNotFound
	}
	f.sources[source.ID] = source
	return nil
}

func (f *fakeStore) Delete(_ context.Context, id string) error {
	if f.deleteErr != nil {
		return f.deleteErr
	}
	if _, ok := f.sources[id]; !ok {
		return repository.ErrNotFound
	}
	delete(f.sources, id)
	return nil
}

func (f *fakeStore) UpsertSourcesTx(_ context.Context, sources []*models.Source) (int, int, error) {
	created := 0
	updated := 0
	for _, s := range sources {
		if _, ok := f.sources[s.ID]; ok {
			updated++
		} else {
			created++
		}
	}
	return created, updated, nil
}

func newSourceRouter(store *fakeStore) *gin.Engine {
	gin.SetMode(gin.TestMode)
	handler := NewSourceHandler(store, nil, testhelpers.NewTestLogger())

	router := gin.New()
	router.POST("/sources", handler.Create)
	router.GET("/sources", handler.List)
	router.GET("/sources/:id", handler.GetByID)
	router.PUT("/sources/:id", handler.Update)
	router.DELETE("/sources/:id", handler.Delete)
	return router
}

func performJSONRequest(router *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			panic(err)
		}
	}

	recorder := httptest.NewRecorder()
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(recorder, req)
	return recorder
}

func TestCreateSource(t *testing.T) {
	store := newFakeStore()
	router := newSourceRouter(store)

	recorder := performJSONRequest(router, http.MethodPost, "/sources", models.Source{
		Name:           "Example",
		URL:            "https://example.com",
		Active:         true,
		CheckFrequency: models.FrequencyDaily,
	})

	assert.Equal(t, http.StatusCreated, recorder.Code)

	var created models.Source
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &created))
	assert.Equal(t, "generated-id", created.ID)
	assert.Equal(t, "Example", created.Name)
}

func TestCreateSource_InvalidBody(t *testing.T) {
	router := newSourceRouter(newFakeStore())

	recorder := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/sources", bytes.NewBufferString("{not json"))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(recorder, req)

	assert.Equal(t, http.StatusBadRequest, recorder.Code)
	assert.Contains(t, recorder.Body.String(), "Invalid request body")
}

func TestCreateSource_ValidationFailure(t *testing.T) {
	router := newSourceRouter(newFakeStore())

	recorder := performJSONRequest(router, http.MethodPost, "/sources", models.Source{
		URL:            "https://example.com",
		CheckFrequency: models.FrequencyDaily,
	})

	assert.Equal(t, http.StatusBadRequest, recorder.Code)
}

func TestGetSourceByID(t *testing.T) {
	store := newFakeStore(&models.Source{ID: "abc-123", Name: "Example", URL: "https://example.com"})
	router := newSourceRouter(store)

	recorder := performJSONRequest(router, http.MethodGet, "/sources/abc-123", nil)

	assert.Equal(t, http.StatusOK, recorder.Code)
	assert.Contains(t, recorder.Body.String(), "Example")
}

func TestGetSourceByID_NotFound(t *testing.T) {
	router := newSourceRouter(newFakeStore())

	recorder := performJSONRequest(router, http.MethodGet, "/sources/missing", nil)

	assert.Equal(t, http.StatusNotFound, recorder.Code)
	assert.Contains(t, recorder.Body.String(), "Source not found")
}

func TestListSources(t *testing.T) {
	store := newFakeStore(
		&models.Source{ID: "s1", Name: "One", URL: "https://one.example"},
		&models.Source{ID: "s2", Name: "Two", URL: "https://two.example"},
	)
	router := newSourceRouter(store)

	recorder := performJSONRequest(router, http.MethodGet, "/sources?limit=500&search=feed&active=true", nil)

	assert.Equal(t, http.StatusOK, recorder.Code)

	var body struct {
		Count int `json:"count"`
		Total int `json:"total"`
		Limit int `json:"limit"`
	}
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &body))
	assert.Equal(t, 2, body.Count)
	assert.Equal(t, 2, body.Total)
	assert.Equal(t, maxPageLimit, body.Limit, "limit is capped")

	assert.Equal(t, "feed", store.lastFilter.Search)
	require.NotNil(t, store.lastFilter.Active)
	assert.True(t, *store.lastFilter.Active)
}

func TestUpdateSource_NotFound(t *testing.T) {
	router := newSourceRouter(newFakeStore())

	recorder := performJSONRequest(router, http.MethodPut, "/sources/missing", models.Source{
		Name:           "Example",
		URL:            "https://example.com",
		CheckFrequency: models.FrequencyDaily,
	})

	assert.Equal(t, http.StatusNotFound, recorder.Code)
}

func TestDeleteSource(t *testing.T) {
	store := newFakeStore(&models.Source{ID: "abc-123", Name: "Example", URL: "https://example.com"})
	router := newSourceRouter(store)

	recorder := performJSONRequest(router, http.MethodDelete, "/sources/abc-123", nil)

	assert.Equal(t, http.StatusNoContent, recorder.Code)
	assert.Empty(t, store.sources)
}

func TestDeleteSource_NotFound(t *testing.T) {
	router := newSourceRouter(newFakeStore())

	recorder := performJSONRequest(router, http.MethodDelete, "/sources/missing", nil)

	assert.Equal(t, http.StatusNotFound, recorder.Code)
}
