package middleware

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
)

type fakeStore struct {
	mu   sync.Mutex
	data map[string]string
}

func newFakeStore() *fakeStore {
	return &fakeStore{data: make(map[string]string)}
}

func (f *fakeStore) Get(_ context.Context, key string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if v, ok := f.data[key]; ok {
		return v, nil
	}
	return "", redis.Nil
}

func (f *fakeStore) Set(_ context.Context, key string, value any, _ time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	str, _ := value.(string)
	f.data[key] = str
	return nil
}

func (f *fakeStore) SetNX(_ context.Context, key string, value any, _ time.Duration) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.data[key]; ok {
		return false, nil
	}
	str, _ := value.(string)
	f.data[key] = str
	return true, nil
}

func (f *fakeStore) Del(_ context.Context, keys ...string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, key := range keys {
		delete(f.data, key)
	}
	return nil
}

func (f *fakeStore) IdempotencyKey(scope, id string) string {
	return fmt.Sprintf("fake:%s:%s", scope, id)
}

type countingHandler struct {
	calls  int
	status int
}

func (c *countingHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	c.calls++
	body, _ := io.ReadAll(r.Body)
	w.Header().Set("Content-Type", "application/json")
	status := c.status
	if status == 0 {
		status = http.StatusCreated
	}
	w.WriteHeader(status)
	_, _ = fmt.Fprintf(w, `{"call":%d,"echo":%q}`, c.calls, string(body))
}

func post(handler http.Handler, path, key, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	if key != "" {
		req.Header.Set("Idempotency-Key", key)
	}
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	return resp
}

func TestIdempotencyReplaysStoredResponse(t *testing.T) {
	store := newFakeStore()
	next := &countingHandler{}
	handler := Idempotency(store, time.Hour, nil)(next)

	first := post(handler, "/api/v1/order/createOrder", "abc", `{"area":"north"}`)
	second := post(handler, "/api/v1/order/createOrder", "abc", `{"area":"north"}`)

	if next.calls != 1 {
		t.Fatalf("expected handler to run once, ran %d times", next.calls)
	}
	if second.Code != http.StatusCreated {
		t.Fatalf("expected replayed 201 got %d", second.Code)
	}
	if first.Body.String() != second.Body.String() {
		t.Fatalf("replayed body differs: %s vs %s", first.Body.String(), second.Body.String())
	}
	if second.Header().Get("Idempotent-Replay") != "true" {
		t.Fatalf("expected replay marker header")
	}
	if second.Header().Get("Content-Type") != "application/json" {
		t.Fatalf("expected stored content type")
	}
}

func TestIdempotencyRejectsDifferentBody(t *testing.T) {
	store := newFakeStore()
	next := &countingHandler{}
	handler := Idempotency(store, time.Hour, nil)(next)

	post(handler, "/api/v1/partner/addPartner", "abc", `{"name":"A"}`)
	resp := post(handler, "/api/v1/partner/addPartner", "abc", `{"name":"B"}`)

	if resp.Code != http.StatusConflict {
		t.Fatalf("expected 409 got %d", resp.Code)
	}
	if !strings.Contains(resp.Body.String(), "IDEMPOTENCY_KEY_REUSED") {
		t.Fatalf("expected idempotency code in body, got %s", resp.Body.String())
	}
	if next.calls != 1 {
		t.Fatalf("handler should not run for a reused key")
	}
}

func TestIdempotencyPassesThroughWithoutKeyOrStore(t *testing.T) {
	next := &countingHandler{}
	handler := Idempotency(newFakeStore(), time.Hour, nil)(next)
	post(handler, "/api/v1/order/createOrder", "", `{}`)
	post(handler, "/api/v1/order/createOrder", "", `{}`)
	if next.calls != 2 {
		t.Fatalf("expected 2 calls without a key, got %d", next.calls)
	}

	next = &countingHandler{}
	handler = Idempotency(nil, time.Hour, nil)(next)
	post(handler, "/api/v1/order/createOrder", "abc", `{}`)
	post(handler, "/api/v1/order/createOrder", "abc", `{}`)
	if next.calls != 2 {
		t.Fatalf("expected 2 calls without a store, got %d", next.calls)
	}
}

func TestIdempotencyIgnoresUncoveredRoutes(t *testing.T) {
	next := &countingHandler{}
	handler := Idempotency(newFakeStore(), time.Hour, nil)(next)
	post(handler, "/api/v1/order/updateOrder/1", "abc", `{}`)
	post(handler, "/api/v1/order/updateOrder/1", "abc", `{}`)
	if next.calls != 2 {
		t.Fatalf("expected uncovered route to run twice, got %d", next.calls)
	}
}

func TestIdempotencyDoesNotStoreServerErrors(t *testing.T) {
	store := newFakeStore()
	next := &countingHandler{status: http.StatusInternalServerError}
	handler := Idempotency(store, time.Hour, nil)(next)

	post(handler, "/api/v1/order/createOrder", "abc", `{}`)
	post(handler, "/api/v1/order/createOrder", "abc", `{}`)
	if next.calls != 2 {
		t.Fatalf("expected retry after 500, got %d calls", next.calls)
	}
	if len(store.data) != 0 {
		t.Fatalf("expected nothing stored, got %v", store.data)
	}
}

type blockingHandler struct {
	entered chan struct{}
	release chan struct{}
	mu      sync.Mutex
	calls   int
}

func (b *blockingHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	b.calls++
	b.mu.Unlock()
	b.entered <- struct{}{}
	<-b.release
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	_, _ = io.WriteString(w, `{"message":"Order created successfully."}`)
}

func TestIdempotencyRejectsConcurrentRepeat(t *testing.T) {
	store := newFakeStore()
	next := &blockingHandler{entered: make(chan struct{}, 1), release: make(chan struct{})}
	handler := Idempotency(store, time.Hour, nil)(next)

	firstDone := make(chan *httptest.ResponseRecorder, 1)
	go func() {
		firstDone <- post(handler, "/api/v1/order/createOrder", "k1", `{"area":"north"}`)
	}()
	<-next.entered

	repeat := post(handler, "/api/v1/order/createOrder", "k1", `{"area":"north"}`)
	if repeat.Code != http.StatusConflict {
		t.Fatalf("expected 409 while first request runs, got %d", repeat.Code)
	}
	if !strings.Contains(repeat.Body.String(), "IDEMPOTENCY_KEY_REUSED") {
		t.Fatalf("expected idempotency code in body, got %s", repeat.Body.String())
	}

	close(next.release)
	first := <-firstDone
	if first.Code != http.StatusCreated {
		t.Fatalf("expected first request 201 got %d", first.Code)
	}

	replay := post(handler, "/api/v1/order/createOrder", "k1", `{"area":"north"}`)
	if replay.Code != http.StatusCreated || replay.Header().Get("Idempotent-Replay") != "true" {
		t.Fatalf("expected replay after completion, got %d", replay.Code)
	}
	if next.calls != 1 {
		t.Fatalf("expected one handler execution, got %d", next.calls)
	}
}

func TestIdempotencyReleasesKeyAfterPanic(t *testing.T) {
	store := newFakeStore()
	handler := Idempotency(store, time.Hour, nil)(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))

	func() {
		defer func() { _ = recover() }()
		post(handler, "/api/v1/order/createOrder", "k1", `{}`)
	}()

	if len(store.data) != 0 {
		t.Fatalf("expected marker released, got %v", store.data)
	}
}
