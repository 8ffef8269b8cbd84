package upstream

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSource(t *testing.T, handler http.HandlerFunc) *Source {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	return New(Config{
		ID:             "test-source",
		Name:           "Test Source",
		BaseURL:        srv.URL,
		PageSize:       2,
		Timeout:        time.Second,
		MaxAttempts:    3,
		InitialBackoff: time.Millisecond,
		MaxBackoff:     5 * time.Millisecond,
	}, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestFetchScholarships_NormalizesAliases(t *testing.T) {
	src := newTestSource(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = fmt.Fprint(w, `{
			"data": [
				{"id": 42, "title": "DAAD Grant", "host_country": "germany", "host_university": "TU Berlin",
				 "source_link": "https://src.example/42", "deadline": "2025-01-31", "post_at": "2024-12-01 09:30:00"},
				{"id": "abc", "slug": "Chevening Awards", "title": "Chevening", "country": "UK", "university": "LSE",
				 "link": "https://src.example/abc", "official_link": "https://chevening.example", "posted_at": "2024-11-02T10:00:00Z"}
			],
			"meta": {"current_page": 1, "last_page": 1}
		}`)
	})

	batch, err := src.FetchScholarships(context.Background(), 5)
	require.NoError(t, err)
	require.Len(t, batch.Scholarships, 2)
	assert.Zero(t, batch.Invalid)

	first := batch.Scholarships[0]
	assert.Equal(t, "42", first.ID)
	assert.Equal(t, "test-source", first.SourceID)
	assert.Equal(t, "germany", first.Country)
	assert.Equal(t, "TU Berlin", first.University)
	assert.Equal(t, "https://src.example/42", first.SourceLink)
	require.NotNil(t, first.Deadline)
	assert.Equal(t, "2025-01-31", first.Deadline.Format("2006-01-02"))
	require.NotNil(t, first.PostedAt)
	assert.Equal(t, 9, first.PostedAt.Hour())

	second := batch.Scholarships[1]
	assert.Equal(t, "abc", second.ID)
	assert.Equal(t, "chevening-awards", second.Slug)
	assert.Equal(t, "https://src.example/abc", second.SourceLink)
	assert.Equal(t, "https://chevening.example", second.OfficialLink)
	assert.Nil(t, second.Deadline)
}

func TestFetchScholarships_KeepsRecordsWithBadDates(t *testing.T) {
	src := newTestSource(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = fmt.Fprint(w, `{"data": [{"id": 1, "title": "A", "deadline": "next spring", "created_at": "2024-01-01"}], "meta": {"last_page": 1}}`)
	})

	batch, err := src.FetchScholarships(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, batch.Scholarships, 1)
	assert.Nil(t, batch.Scholarships[0].Deadline)
	assert.NotNil(t, batch.Scholarships[0].CreatedAt)
}

func TestFetchScholarships_DropsInvalidAndBlanksBadLinks(t *testing.T) {
	src := newTestSource(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = fmt.Fprint(w, `{"data": [
			{"id": 1, "title": ""},
			{"title": "no id"},
			{"id": 3, "title": "C", "official_link": "not a url", "link": "https://ok.example"}
		], "meta": {"last_page": 1}}`)
	})

	batch, err := src.FetchScholarships(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, 2, batch.Invalid)
	require.Len(t, batch.Scholarships, 1)
	assert.Empty(t, batch.Scholarships[0].OfficialLink)
	assert.Equal(t, "https://ok.example", batch.Scholarships[0].SourceLink)
}

func TestFetchScholarships_Pagination(t *testing.T) {
	var calls atomic.Int32
	src := newTestSource(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		page := r.URL.Query().Get("page")
		assert.Equal(t, "2", r.URL.Query().Get("per_page"))
		_ = json.NewEncoder(w).Encode(map[string]any{
			"data": []map[string]any{{"id": "p" + page, "title": "Page " + page}},
			"meta": map[string]any{"last_page": 3},
		})
	})

	batch, err := src.FetchScholarships(context.Background(), 2)
	require.NoError(t, err)
	assert.Len(t, batch.Scholarships, 2)
	assert.Equal(t, int32(2), calls.Load())
	assert.Equal(t, "p1", batch.Scholarships[0].ID)
	assert.Equal(t, "p2", batch.Scholarships[1].ID)
}

func TestFetchScholarships_RetriesThenFails(t *testing.T) {
	var calls atomic.Int32
	src := newTestSource(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadGateway)
	})

	batch, err := src.FetchScholarships(context.Background(), 1)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "after 3 attempts")
	assert.Equal(t, int32(3), calls.Load())
	assert.Empty(t, batch.Scholarships)
}

func TestFetchScholarships_RecoversAfterTransientError(t *testing.T) {
	var calls atomic.Int32
	src := newTestSource(t, func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = fmt.Fprint(w, `{"data": [{"id": 1, "title": "A"}], "meta": {"last_page": 1}}`)
	})

	batch, err := src.FetchScholarships(context.Background(), 1)
	require.NoError(t, err)
	assert.Len(t, batch.Scholarships, 1)
}

func TestCalculateBackoff(t *testing.T) {
	s := &Source{initialBackoff: time.Second, maxBackoff: 5 * time.Second}

	assert.Equal(t, time.Second, s.calculateBackoff(1))
	assert.Equal(t, 2*time.Second, s.calculateBackoff(2))
	assert.Equal(t, 4*time.Second, s.calculateBackoff(3))
	assert.Equal(t, 5*time.Second, s.calculateBackoff(4))
}

func TestParseDate(t *testing.T) {
	loc := time.FixedZone("UTC+3", 3*60*60)

	got, ok := parseDate("2024-03-01", loc)
	require.True(t, ok)
	assert.Equal(t, loc, got.Location())

	got, ok = parseDate("", loc)
	assert.True(t, ok)
	assert.Nil(t, got)

	got, ok = parseDate("31/12/2024", loc)
	assert.False(t, ok)
	assert.Nil(t, got)
}
