package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubRateStore struct {
	counts map[string]int64
	err    error
}

func newStubRateStore() *stubRateStore {
	return &stubRateStore{counts: map[string]int64{}}
}

func (s *stubRateStore) IncrWithTTL(_ context.Context, key string, _ time.Duration) (int64, error) {
	if s.err != nil {
		return 0, s.err
	}
	s.counts[key]++
	return s.counts[key], nil
}

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func postLogin(t *testing.T, handler http.Handler, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/login", strings.NewReader(body))
	req.RemoteAddr = "203.0.113.7:51234"
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func TestAuthRateLimitBlocksIPOverLimit(t *testing.T) {
	store := newStubRateStore()
	policy := NewAuthRateLimitPolicy("login", time.Minute, 2, 0)
	handler := AuthRateLimit(policy, store, nil)(okHandler())

	assert.Equal(t, http.StatusOK, postLogin(t, handler, `{}`).Code)
	assert.Equal(t, http.StatusOK, postLogin(t, handler, `{}`).Code)
	assert.Equal(t, http.StatusTooManyRequests, postLogin(t, handler, `{}`).Code)
}

func TestAuthRateLimitBlocksEmailOverLimit(t *testing.T) {
	store := newStubRateStore()
	policy := NewAuthRateLimitPolicy("login", time.Minute, 0, 1)
	handler := AuthRateLimit(policy, store, nil)(okHandler())

	body := `{"email":"Dana@Example.edu"}`
	assert.Equal(t, http.StatusOK, postLogin(t, handler, body).Code)
	// Same mailbox with different casing shares the counter.
	assert.Equal(t, http.StatusTooManyRequests, postLogin(t, handler, `{"email":"dana@example.edu"}`).Code)
}

func TestAuthRateLimitEmailCountersAreIndependent(t *testing.T) {
	store := newStubRateStore()
	policy := NewAuthRateLimitPolicy("login", time.Minute, 0, 1)
	handler := AuthRateLimit(policy, store, nil)(okHandler())

	assert.Equal(t, http.StatusOK, postLogin(t, handler, `{"email":"a@example.edu"}`).Code)
	assert.Equal(t, http.StatusOK, postLogin(t, handler, `{"email":"b@example.edu"}`).Code)
}

func TestAuthRateLimitPreservesRequestBody(t *testing.T) {
	store := newStubRateStore()
	policy := NewAuthRateLimitPolicy("login", time.Minute, 0, 5)

	var seen string
	handler := AuthRateLimit(policy, store, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		buf := make([]byte, 1024)
		n, _ := r.Body.Read(buf)
		seen = string(buf[:n])
		w.WriteHeader(http.StatusOK)
	}))

	body := `{"email":"dana@example.edu","password":"secret"}`
	rec := postLogin(t, handler, body)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, body, seen)
}

func TestAuthRateLimitDisabledPolicyPassesThrough(t *testing.T) {
	store := newStubRateStore()
	policy := NewAuthRateLimitPolicy("login", 0, 10, 10)
	handler := AuthRateLimit(policy, store, nil)(okHandler())

	for i := 0; i < 25; i++ {
		require.Equal(t, http.StatusOK, postLogin(t, handler, `{}`).Code)
	}
	assert.Empty(t, store.counts)
}
