package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/pravino/tapcore/internal/usecase"
)

type fakeIdempotencyStore struct {
	exists bool
	cached []byte

	checkTTL  time.Duration
	updateTTL time.Duration
	stored    []byte
}

func (s *fakeIdempotencyStore) CheckAndSet(ctx context.Context, key string, response []byte, ttl time.Duration) (bool, []byte, error) {
	s.checkTTL = ttl
	return s.exists, s.cached, nil
}

func (s *fakeIdempotencyStore) Update(ctx context.Context, key string, response []byte, ttl time.Duration) error {
	s.updateTTL = ttl
	s.stored = response
	return nil
}

func TestIdempotencyMiddleware(t *testing.T) {
	t.Run("first request caches the response for the shared TTL", func(t *testing.T) {
		store := &fakeIdempotencyStore{}
		handler := NewIdempotencyMiddleware(store).Wrap(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"ok":true}`))
		}))

		r := httptest.NewRequest(http.MethodPost, "/api/v1/payments", strings.NewReader("{}"))
		r.Header.Set(IdempotencyKeyHeader, "key-1")
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, r)

		if store.checkTTL != usecase.IdempotencyKeyTTL {
			t.Errorf("check ttl = %s, want %s", store.checkTTL, usecase.IdempotencyKeyTTL)
		}
		if store.updateTTL != usecase.IdempotencyKeyTTL {
			t.Errorf("update ttl = %s, want %s", store.updateTTL, usecase.IdempotencyKeyTTL)
		}
		if string(store.stored) != `{"ok":true}` {
			t.Errorf("stored = %q, want the handler response", store.stored)
		}
	})

	t.Run("replay serves the cached response without calling the handler", func(t *testing.T) {
		store := &fakeIdempotencyStore{exists: true, cached: []byte(`{"ok":true}`)}
		var called bool
		handler := NewIdempotencyMiddleware(store).Wrap(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			called = true
		}))

		r := httptest.NewRequest(http.MethodPost, "/api/v1/payments", strings.NewReader("{}"))
		r.Header.Set(IdempotencyKeyHeader, "key-1")
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, r)

		if called {
			t.Error("handler ran on a replay")
		}
		if w.Header().Get("X-Idempotency-Replay") != "true" {
			t.Error("missing replay marker header")
		}
		if w.Body.String() != `{"ok":true}` {
			t.Errorf("body = %q, want the cached response", w.Body.String())
		}
	})

	t.Run("requests without a key pass through untouched", func(t *testing.T) {
		store := &fakeIdempotencyStore{}
		var called bool
		handler := NewIdempotencyMiddleware(store).Wrap(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			called = true
		}))

		r := httptest.NewRequest(http.MethodPost, "/api/v1/payments", strings.NewReader("{}"))
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, r)

		if !called {
			t.Error("handler not reached")
		}
		if store.checkTTL != 0 {
			t.Error("store consulted without a key")
		}
	})
}
