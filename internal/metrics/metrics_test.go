// AngelaMos | 2026
// metrics_test.go

package metrics

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMiddleware_LabelsByRoutePattern(t *testing.T) {
	r := chi.NewRouter()
	r.Use(Middleware)
	r.Get("/items/{id}", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})

	before := testutil.ToFloat64(
		RequestTotal.WithLabelValues(http.MethodGet, "/items/{id}", "418"),
	)

	for _, id := range []string{"1", "2", "3"} {
		req := httptest.NewRequest(http.MethodGet, "/items/"+id, nil)
		r.ServeHTTP(httptest.NewRecorder(), req)
	}

	after := testutil.ToFloat64(
		RequestTotal.WithLabelValues(http.MethodGet, "/items/{id}", "418"),
	)
	assert.Equal(t, before+3, after)
}

func TestRecordMutation(t *testing.T) {
	ok := CatalogMutations.WithLabelValues("delete", "success")
	failed := CatalogMutations.WithLabelValues("delete", "error")
	okBefore := testutil.ToFloat64(ok)
	failedBefore := testutil.ToFloat64(failed)

	RecordMutation("delete", nil)
	RecordMutation("delete", errors.New("boom"))
	RecordMutation("delete", errors.New("boom"))

	assert.Equal(t, okBefore+1, testutil.ToFloat64(ok))
	assert.Equal(t, failedBefore+2, testutil.ToFloat64(failed))
}

func TestHandler_ExposesRegistry(t *testing.T) {
	RecordAuth("login", "success")

	rec := httptest.NewRecorder()
	Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "catalog_auth_attempts_total")
}
