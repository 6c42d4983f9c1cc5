package server

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/hongminglow/bank-be/internal/auth"
	"github.com/hongminglow/bank-be/internal/config"
	"github.com/hongminglow/bank-be/internal/metrics"
	"github.com/hongminglow/bank-be/internal/middleware"
	"github.com/hongminglow/bank-be/internal/service"
	"github.com/hongminglow/bank-be/internal/storage/memory"
)

func newTestServer() *Server {
	store := memory.New()
	return New(config.Config{Host: "127.0.0.1", Port: "0", CORSOrigins: []string{"*"}}, Deps{
		Users:      service.NewUserService(store, auth.NewBcryptHasher(bcrypt.MinCost)),
		Bills:      service.NewBillService(store),
		Currencies: service.NewCurrencyService(store),
		Tokens:     auth.NewTokenManager("secret", "bank-test", time.Hour),
		Metrics:    metrics.New(),
	})
}

func get(h http.Handler, path string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func TestServer_Routes(t *testing.T) {
	srv := newTestServer()
	h := srv.Handler()

	rec := get(h, "/health")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.NotEmpty(t, rec.Header().Get(middleware.RequestIDHeader))

	srv.MarkReady()
	assert.Equal(t, http.StatusOK, get(h, "/health").Code)
	assert.Equal(t, http.StatusOK, get(h, "/api/currencies").Code)
	assert.Equal(t, http.StatusUnauthorized, get(h, "/api/bills").Code)
	assert.Equal(t, http.StatusUnauthorized, get(h, "/api/users/me").Code)
	assert.Equal(t, http.StatusNotFound, get(h, "/api/unknown").Code)

	rec = get(h, "/metrics")
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.True(t, strings.Contains(body, "bank_http_requests_total"), "metrics output lacks request counter")
}
