// Cinevault - Personal Media Tracking Storage
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinevault

package kvstore

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/goccy/go-json"
	gobreaker "github.com/sony/gobreaker/v2"
)

// fakeUpstash is an in-process REST key-value server for proxy tests.
type fakeUpstash struct {
	mu    sync.Mutex
	data  map[string]string
	ttls  map[string]string
	token string
	hits  atomic.Int64

	// failNext makes the next N requests answer 503.
	failNext atomic.Int64
}

func newFakeUpstash(t *testing.T) (*fakeUpstash, *httptest.Server) {
	t.Helper()
	f := &fakeUpstash{data: map[string]string{}, ttls: map[string]string{}, token: "secret"}
	srv := httptest.NewServer(f)
	t.Cleanup(srv.Close)
	return f, srv
}

func (f *fakeUpstash) reply(w http.ResponseWriter, status int, body map[string]interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func (f *fakeUpstash) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.hits.Add(1)
	if f.failNext.Load() > 0 {
		f.failNext.Add(-1)
		w.WriteHeader(http.StatusServiceUnavailable)
		return
	}
	if r.Header.Get("Authorization") != "Bearer "+f.token {
		f.reply(w, http.StatusUnauthorized, map[string]interface{}{"error": "Unauthorized"})
		return
	}
	var args []string
	if err := json.NewDecoder(r.Body).Decode(&args); err != nil || len(args) == 0 {
		f.reply(w, http.StatusBadRequest, map[string]interface{}{"error": "ERR bad request"})
		return
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	switch strings.ToUpper(args[0]) {
	case "PING":
		f.reply(w, http.StatusOK, map[string]interface{}{"result": "PONG"})
	case "GET":
		if v, ok := f.data[args[1]]; ok {
			f.reply(w, http.StatusOK, map[string]interface{}{"result": v})
			return
		}
		f.reply(w, http.StatusOK, map[string]interface{}{"result": nil})
	case "GETDEL":
		v, ok := f.data[args[1]]
		delete(f.data, args[1])
		if ok {
			f.reply(w, http.StatusOK, map[string]interface{}{"result": v})
			return
		}
		f.reply(w, http.StatusOK, map[string]interface{}{"result": nil})
	case "SET":
		f.data[args[1]] = args[2]
		if len(args) == 5 && args[3] == "EX" {
			f.ttls[args[1]] = args[4]
		}
		f.reply(w, http.StatusOK, map[string]interface{}{"result": "OK"})
	case "DEL":
		n := 0
		for _, k := range args[1:] {
			if _, ok := f.data[k]; ok {
				delete(f.data, k)
				n++
			}
		}
		f.reply(w, http.StatusOK, map[string]interface{}{"result": n})
	case "SCAN":
		prefix := unescapeGlob(strings.TrimSuffix(args[3], "*"))
		keys := []string{}
		for k := range f.data {
			if strings.HasPrefix(k, prefix) {
				keys = append(keys, k)
			}
		}
		sort.Strings(keys)
		// Numeric cursor exercises the non-string decoding path.
		f.reply(w, http.StatusOK, map[string]interface{}{"result": []interface{}{0, keys}})
	case "FLUSHDB":
		f.data = map[string]string{}
		f.reply(w, http.StatusOK, map[string]interface{}{"result": "OK"})
	default:
		f.reply(w, http.StatusBadRequest, map[string]interface{}{"error": "ERR unknown command '" + args[0] + "'"})
	}
}

func unescapeGlob(s string) string {
	var b strings.Builder
	escaped := false
	for _, c := range s {
		if c == '\\' && !escaped {
			escaped = true
			continue
		}
		escaped = false
		b.WriteRune(c)
	}
	return b.String()
}

func newTestProxy(t *testing.T, url, token string) *Proxy {
	t.Helper()
	p, err := NewProxy(ProxyConfig{URL: url, Token: token, MaxElapsed: time.Second})
	if err != nil {
		t.Fatalf("NewProxy: %v", err)
	}
	t.Cleanup(func() { _ = p.Close() })
	return p
}

func TestProxy_BackendContract(t *testing.T) {
	_, srv := newFakeUpstash(t)
	testBackendContract(t, newTestProxy(t, srv.URL, "secret"))
}

func TestProxy_StoreContract(t *testing.T) {
	testStoreContract(t, func(t *testing.T) *Store {
		_, srv := newFakeUpstash(t)
		return New(newTestProxy(t, srv.URL, "secret"), fastStoreOptions()...)
	})
}

func TestProxy_SetWithTTL(t *testing.T) {
	f, srv := newFakeUpstash(t)
	p := newTestProxy(t, srv.URL, "secret")

	if err := p.Set(context.Background(), "reset_token:x", []byte("bob"), 900*time.Second); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if f.ttls["reset_token:x"] != "900" {
		t.Fatalf("EX = %q, want 900", f.ttls["reset_token:x"])
	}
}

func TestProxy_RetriesTransientFailures(t *testing.T) {
	f, srv := newFakeUpstash(t)
	p := newTestProxy(t, srv.URL, "secret")
	f.failNext.Store(2)

	if err := p.Ping(context.Background()); err != nil {
		t.Fatalf("Ping should succeed after retries: %v", err)
	}
	if got := f.hits.Load(); got != 3 {
		t.Fatalf("hits = %d, want 3", got)
	}
}

func TestProxy_CommandErrorNotRetried(t *testing.T) {
	f, srv := newFakeUpstash(t)
	p := newTestProxy(t, srv.URL, "wrong-token")

	_, _, err := p.Get(context.Background(), "k")
	var cmdErr *ProxyCommandError
	if !errors.As(err, &cmdErr) {
		t.Fatalf("err = %v, want ProxyCommandError", err)
	}
	if cmdErr.Message != "Unauthorized" {
		t.Errorf("message = %q", cmdErr.Message)
	}
	if got := f.hits.Load(); got != 1 {
		t.Fatalf("hits = %d, want 1", got)
	}
}

func TestProxy_CircuitBreakerOpens(t *testing.T) {
	var hits atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	p, err := NewProxy(ProxyConfig{URL: srv.URL, MaxElapsed: 50 * time.Millisecond})
	if err != nil {
		t.Fatal(err)
	}

	var lastErr error
	for i := 0; i < 20; i++ {
		if lastErr = p.Ping(context.Background()); errors.Is(lastErr, gobreaker.ErrOpenState) {
			break
		}
	}
	if !errors.Is(lastErr, gobreaker.ErrOpenState) {
		t.Fatalf("breaker never opened, last err = %v", lastErr)
	}

	before := hits.Load()
	_ = p.Ping(context.Background())
	if hits.Load() != before {
		t.Fatal("open breaker must not reach the server")
	}
}

func TestProxy_ContextCancelled(t *testing.T) {
	_, srv := newFakeUpstash(t)
	p := newTestProxy(t, srv.URL, "secret")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := p.Ping(ctx); err == nil {
		t.Fatal("expected error for cancelled context")
	}
}

func TestNewProxy_RequiresURL(t *testing.T) {
	if _, err := NewProxy(ProxyConfig{}); err == nil {
		t.Fatal("expected error")
	}
}

func TestScanCursor(t *testing.T) {
	tests := []struct {
		raw     string
		want    string
		wantErr bool
	}{
		{`"0"`, "0", false},
		{`"1234"`, "1234", false},
		{`17`, "17", false},
		{`[1]`, "", true},
	}
	for _, tt := range tests {
		got, err := scanCursor(json.RawMessage(tt.raw))
		if (err != nil) != tt.wantErr || got != tt.want {
			t.Errorf("scanCursor(%s) = %q, %v", tt.raw, got, err)
		}
	}
}
