package registry

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pankas/pkg/platform/sentinel"
)

const (
	testCompanyID = "515782233"
	testResource  = "res-companies"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestClient(baseURL string, opts ...Option) *Client {
	return NewClient(Config{
		BaseURL:           baseURL,
		CompaniesResource: testResource,
		LicensesResource:  "res-licenses",
		Timeout:           2 * time.Second,
		MaxRetries:        2,
	}, testLogger(), opts...)
}

func TestCompaniesFetch(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		assert.Equal(t, testResource, r.URL.Query().Get("resource_id"))
		assert.Equal(t, testCompanyID, r.URL.Query().Get("q"))
		w.Write([]byte(`{"success":true,"result":{"records":[{"שם חברה":"בדיקה","דוח שנתי אחרון":2024}]}}`))
	}))
	defer srv.Close()

	client := newTestClient(srv.URL)
	rows, err := client.Companies(context.Background(), testCompanyID)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "בדיקה", rows[0]["שם חברה"])
	assert.Equal(t, int32(1), hits.Load())
}

func TestFetchZeroRowsIsSuccess(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`{"success":true,"result":{"records":[]}}`))
	}))
	defer srv.Close()

	rows, err := newTestClient(srv.URL).Companies(context.Background(), testCompanyID)
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestFetchRetriesServerErrors(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if hits.Add(1) == 1 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.Write([]byte(`{"success":true,"result":{"records":[{"a":"b"}]}}`))
	}))
	defer srv.Close()

	rows, err := newTestClient(srv.URL).Companies(context.Background(), testCompanyID)
	require.NoError(t, err)
	assert.Len(t, rows, 1)
	assert.Equal(t, int32(2), hits.Load())
}

func TestFetchClientErrorIsPermanent(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	_, err := newTestClient(srv.URL).Companies(context.Background(), testCompanyID)
	require.Error(t, err)
	assert.ErrorIs(t, err, sentinel.ErrUnavailable)
	assert.Equal(t, int32(1), hits.Load(), "4xx must not be retried")
}

func TestFetchMalformedBodyIsPermanent(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		hits.Add(1)
		w.Write([]byte(`not json`))
	}))
	defer srv.Close()

	_, err := newTestClient(srv.URL).Companies(context.Background(), testCompanyID)
	require.Error(t, err)
	assert.Equal(t, int32(1), hits.Load())
}

func TestRowCache(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		hits.Add(1)
		w.Write([]byte(`{"success":true,"result":{"records":[{"a":"b"}]}}`))
	}))
	defer srv.Close()

	client := newTestClient(srv.URL, WithRowCache(NewInMemoryRowCache(time.Minute)))
	ctx := context.Background()

	_, err := client.Companies(ctx, testCompanyID)
	require.NoError(t, err)
	_, err = client.Companies(ctx, testCompanyID)
	require.NoError(t, err)
	assert.Equal(t, int32(1), hits.Load(), "second call must be served from cache")

	// A different registry source misses the shared cache.
	_, err = client.Licenses(ctx, testCompanyID)
	require.NoError(t, err)
	assert.Equal(t, int32(2), hits.Load())
}

func TestRowCacheBypass(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		hits.Add(1)
		w.Write([]byte(`{"success":true,"result":{"records":[{"a":"b"}]}}`))
	}))
	defer srv.Close()

	client := newTestClient(srv.URL, WithRowCache(NewInMemoryRowCache(time.Minute)))

	_, err := client.Companies(context.Background(), testCompanyID)
	require.NoError(t, err)

	_, err = client.Companies(BypassCache(context.Background()), testCompanyID)
	require.NoError(t, err)
	assert.Equal(t, int32(2), hits.Load(), "bypass must go to the upstream")

	// The bypass run refreshed the cache for later plain callers.
	_, err = client.Companies(context.Background(), testCompanyID)
	require.NoError(t, err)
	assert.Equal(t, int32(2), hits.Load())
}

func TestInMemoryRowCacheExpiry(t *testing.T) {
	cache := NewInMemoryRowCache(time.Nanosecond)
	ctx := context.Background()

	require.NoError(t, cache.Save(ctx, sourceCompanies, testCompanyID, []RawRecord{{"a": "b"}}))
	time.Sleep(time.Millisecond)

	_, err := cache.Find(ctx, sourceCompanies, testCompanyID)
	assert.ErrorIs(t, err, sentinel.ErrNotFound)
}
