package handler

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pankas/internal/contractor/registry"
	"pankas/internal/contractor/service"
	"pankas/internal/contractor/store"
)

const testCompanyID = "515782233"

type stubSource struct {
	companyRows []registry.RawRecord
	licenseRows []registry.RawRecord
	err         error
}

func (s *stubSource) Companies(context.Context, string) ([]registry.RawRecord, error) {
	return s.companyRows, s.err
}

func (s *stubSource) Licenses(context.Context, string) ([]registry.RawRecord, error) {
	return s.licenseRows, s.err
}

func newRouter(t *testing.T, source registry.Source) chi.Router {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	svc := service.New(store.NewInMemory(), source, nil, nil, logger)
	router := chi.NewRouter()
	New(svc, logger).Register(router)
	return router
}

func TestReconcileEndpoint(t *testing.T) {
	source := &stubSource{
		companyRows: []registry.RawRecord{{
			"שם חברה":    "בנייני הארץ בע״מ",
			"סטטוס חברה": "פעילה",
			"מפרה":       "",
		}},
		licenseRows: []registry.RawRecord{{
			"MISPAR_KABLAN": float64(34567),
			"KVUTZA":        "ג",
			"SIVUG":         "100",
		}},
	}
	router := newRouter(t, source)

	req := httptest.NewRequest(http.MethodPost, "/contractors/"+testCompanyID+"/reconcile", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var result service.Result
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.Equal(t, "created", string(result.Outcome))
	require.NotNil(t, result.Record)
	assert.Equal(t, testCompanyID, result.Record.CompanyID.String())
	assert.Len(t, result.Record.Licenses, 1)
}

func TestReconcileEndpointInvalidIdentifier(t *testing.T) {
	router := newRouter(t, &stubSource{})

	req := httptest.NewRequest(http.MethodPost, "/contractors/515782231/reconcile", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)

	var resp errorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "invalid_identifier", resp.Code)
}

func TestReconcileEndpointRegistriesDown(t *testing.T) {
	router := newRouter(t, &stubSource{err: errors.New("upstream down")})

	req := httptest.NewRequest(http.MethodPost, "/contractors/"+testCompanyID+"/reconcile", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadGateway, rec.Code)

	var resp errorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "lookup_failed", resp.Code)
}

func TestGetEndpoint(t *testing.T) {
	router := newRouter(t, &stubSource{})

	t.Run("missing record", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/contractors/"+testCompanyID, nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("after reconcile", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/contractors/"+testCompanyID+"/reconcile", nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code)

		req = httptest.NewRequest(http.MethodGet, "/contractors/"+testCompanyID, nil)
		rec = httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code)
	})
}
