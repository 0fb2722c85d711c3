package checker

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonesrussell/content-discovery/internal/config"
	"github.com/jonesrussell/content-discovery/internal/models"
	"github.com/jonesrussell/content-discovery/internal/queue"
	"github.com/jonesrussell/content-discovery/internal/repository"
	"github.com/jonesrussell/content-discovery/internal/testhelpers"
)

type fakeSourceStore struct {
	source     *models.Source
	getErr     error
	markErr    error
	markedID   string
	markStatus string
}

func (f *fakeSourceStore) GetByID(_ context.Context, id string) (*models.Source, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	if f.source == nil || f.source.ID != id {
		return nil, repository.ErrNotFound
	}
	return f.source, nil
}

func (f *fakeSourceStore) MarkChecked(_ context.Context, id, status string, _ time.Time) error {
	if f.markErr != nil {
		return f.markErr
	}
	f.markedID = id
	f.markStatus = status
	return nil
}

func newTestChecker(store *fakeSourceStore) *Checker {
	return New(store, nil, nil, testhelpers.NewTestLogger(), config.CheckerConfig{
		Timeout:   5 * time.Second,
		UserAgent: "test-agent",
	})
}

func checkTask(t *testing.T, sourceID string) *asynq.Task {
	t.Helper()
	task, err := queue.NewCheckTask(sourceID)
	require.NoError(t, err)
	return task
}

func TestProcessTask(t *testing.T) {
	var gotUserAgent string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUserAgent = r.Header.Get("User-Agent")
		w.Write([]byte(`<html><head><title>Example</title></head><body><a href="/a">a</a></body></html>`))
	}))
	defer server.Close()

	store := &fakeSourceStore{
		source: &models.Source{ID: "s1", Name: "Example", URL: server.URL, Active: true},
	}
	chk := newTestChecker(store)

	err := chk.ProcessTask(context.Background(), checkTask(t, "s1"))

	require.NoError(t, err)
	assert.Equal(t, "s1", store.markedID)
	assert.Equal(t, models.CheckStatusOK, store.markStatus)
	assert.Equal(t, "test-agent", gotUserAgent)
}

func TestProcessTask_FetchFailureMarksFailedAndRetries(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	store := &fakeSourceStore{
		source: &models.Source{ID: "s1", Name: "Example", URL: server.URL, Active: true},
	}
	chk := newTestChecker(store)

	err := chk.ProcessTask(context.Background(), checkTask(t, "s1"))

	// The failure is recorded on the source and returned so the queue retries.
	require.Error(t, err)
	assert.NotErrorIs(t, err, asynq.SkipRetry)
	assert.Equal(t, models.CheckStatusFailed, store.markStatus)
}

func TestProcessTask_MalformedPayloadSkipsRetry(t *testing.T) {
	chk := newTestChecker(&fakeSourceStore{})

	err := chk.ProcessTask(context.Background(), asynq.NewTask(queue.TypeSourceCheck, []byte("{broken")))

	require.Error(t, err)
	assert.ErrorIs(t, err, asynq.SkipRetry)
}

func TestProcessTask_SourceGoneIsSkipped(t *testing.T) {
	store := &fakeSourceStore{}
	chk := newTestChecker(store)

	err := chk.ProcessTask(context.Background(), checkTask(t, "deleted"))

	assert.NoError(t, err)
	assert.Empty(t, store.markedID)
}

func TestProcessTask_InactiveSourceIsSkipped(t *testing.T) {
	store := &fakeSourceStore{
		source: &models.Source{ID: "s1", URL: "https://example.com", Active: false},
	}
	chk := newTestChecker(store)

	err := chk.ProcessTask(context.Background(), checkTask(t, "s1"))

	assert.NoError(t, err)
	assert.Empty(t, store.markedID)
}

func TestProcessTask_StoreFailurePropagates(t *testing.T) {
	store := &fakeSourceStore{getErr: errors.New("connection refused")}
	chk := newTestChecker(store)

	err := chk.ProcessTask(context.Background(), checkTask(t, "s1"))

	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection refused")
}

func TestExtractMetadata(t *testing.T) {
	html := `
<html>
<head>
	<title>Plain Title</title>
	<meta property="og:title" content="OG Title">
	<meta name="description" content="plain description">
</head>
<body>
	<a href="/one">one</a>
	<a href="https://example.com/two">two</a>
	<a href="#anchor">skipped</a>
	<a href="">skipped</a>
</body>
</html>`

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	require.NoError(t, err)

	result := extractMetadata(doc)

	assert.Equal(t, "OG Title", result.Title, "OpenGraph title wins over the title tag")
	assert.Equal(t, "plain description", result.Description)
	assert.Equal(t, 2, result.LinkCount, "anchors and empty hrefs are not counted")
}

func TestExtractMetadata_Fallbacks(t *testing.T) {
	html := `<html><head><title>  Fallback Title  </title></head><body></body></html>`

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	require.NoError(t, err)

	result := extractMetadata(doc)

	assert.Equal(t, "Fallback Title", result.Title)
	assert.Empty(t, result.Description)
	assert.Zero(t, result.LinkCount)
}
