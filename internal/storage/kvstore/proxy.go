// Cinevault - Personal Media Tracking Storage
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinevault

package kvstore

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/goccy/go-json"
	gobreaker "github.com/sony/gobreaker/v2"
	"golang.org/x/time/rate"

	"github.com/tomtom215/cinevault/internal/logging"
	"github.com/tomtom215/cinevault/internal/metrics"
)

// ProxyConfig configures the REST key-value proxy backend.
type ProxyConfig struct {
	// URL is the REST endpoint, e.g. https://example.upstash.io.
	URL string

	// Token is sent as a bearer token.
	Token string

	// Timeout bounds a single HTTP round trip. Default: 5s.
	Timeout time.Duration

	// MaxElapsed bounds all retries of one command. Default: 3s.
	MaxElapsed time.Duration

	// RequestsPerSecond throttles outgoing requests. Zero disables throttling.
	RequestsPerSecond float64
	Burst             int

	// HTTPClient overrides the default client (tests).
	HTTPClient *http.Client
}

// ProxyCommandError is an error reply from the proxy for a well-formed
// request. It is not retried and does not trip the circuit breaker.
type ProxyCommandError struct {
	Command string
	Message string
}

func (e *ProxyCommandError) Error() string {
	return fmt.Sprintf("proxy %s: %s", e.Command, e.Message)
}

type proxyReply struct {
	Result json.RawMessage `json:"result"`
	Error  string          `json:"error,omitempty"`
}

// Proxy is a Backend speaking the Upstash-compatible REST protocol: each
// command is POSTed as a JSON array and answered with {"result": ...}.
type Proxy struct {
	url     string
	token   string
	client  *http.Client
	limiter *rate.Limiter
	cb      *gobreaker.CircuitBreaker[*proxyReply]
	maxWait time.Duration
}

// NewProxy creates a Proxy backend.
func NewProxy(cfg ProxyConfig) (*Proxy, error) {
	if cfg.URL == "" {
		return nil, errors.New("proxy url is required")
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 5 * time.Second
	}
	if cfg.MaxElapsed <= 0 {
		cfg.MaxElapsed = 3 * time.Second
	}
	client := cfg.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: cfg.Timeout}
	}

	limiter := rate.NewLimiter(rate.Inf, 0)
	if cfg.RequestsPerSecond > 0 {
		burst := cfg.Burst
		if burst <= 0 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), burst)
	}

	return &Proxy{
		url:     strings.TrimRight(cfg.URL, "/"),
		token:   cfg.Token,
		client:  client,
		limiter: limiter,
		cb:      newProxyBreaker("kv-proxy"),
		maxWait: cfg.MaxElapsed,
	}, nil
}

func newProxyBreaker(name string) *gobreaker.CircuitBreaker[*proxyReply] {
	metrics.SetCircuitBreakerState(name, 0)

	return gobreaker.NewCircuitBreaker[*proxyReply](gobreaker.Settings{
		Name:        name,
		MaxRequests: 3,                // probes allowed while half-open
		Interval:    time.Minute,      // closed-state count reset
		Timeout:     30 * time.Second, // open -> half-open

		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < 10 {
				return counts.ConsecutiveFailures >= 5
			}
			ratio := float64(counts.TotalFailures) / float64(counts.Requests)
			return ratio >= 0.6
		},

		IsSuccessful: func(err error) bool {
			var cmdErr *ProxyCommandError
			return err == nil || errors.As(err, &cmdErr) || errors.Is(err, context.Canceled)
		},

		OnStateChange: func(name string, from, to gobreaker.State) {
			logging.Warn().
				Str("breaker", name).
				Str("from", from.String()).
				Str("to", to.String()).
				Msg("circuit breaker state transition")
			metrics.SetCircuitBreakerState(name, breakerStateValue(to))
			metrics.RecordCircuitBreakerTransition(name, from.String(), to.String())
		},
	})
}

func breakerStateValue(s gobreaker.State) int {
	switch s {
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return 0
	}
}

// do sends one command with throttling, retry and circuit breaking.
func (p *Proxy) do(ctx context.Context, args ...string) (*proxyReply, error) {
	command := args[0]
	body, err := json.Marshal(args)
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w", command, err)
	}

	var reply *proxyReply
	op := func() error {
		if err := p.limiter.Wait(ctx); err != nil {
			return backoff.Permanent(err)
		}
		r, err := p.cb.Execute(func() (*proxyReply, error) {
			return p.roundTrip(ctx, command, body)
		})
		if err != nil {
			var cmdErr *ProxyCommandError
			if errors.As(err, &cmdErr) ||
				errors.Is(err, gobreaker.ErrOpenState) ||
				errors.Is(err, gobreaker.ErrTooManyRequests) ||
				ctx.Err() != nil {
				return backoff.Permanent(err)
			}
			return err
		}
		reply = r
		return nil
	}

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = 100 * time.Millisecond
	bo.MaxElapsedTime = p.maxWait
	notify := func(err error, wait time.Duration) {
		metrics.RecordProxyRetry()
		logging.Debug().Err(err).Str("command", command).Dur("wait", wait).Msg("retrying proxy command")
	}
	if err := backoff.RetryNotify(op, backoff.WithContext(bo, ctx), notify); err != nil {
		return nil, err
	}
	return reply, nil
}

func (p *Proxy) roundTrip(ctx context.Context, command string, body []byte) (*proxyReply, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.url, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	if p.token != "" {
		req.Header.Set("Authorization", "Bearer "+p.token)
	}

	res, err := p.client.Do(req)
	if err != nil {
		metrics.RecordProxyRequest(command, 0)
		return nil, err
	}
	defer res.Body.Close()
	metrics.RecordProxyRequest(command, res.StatusCode)

	data, err := io.ReadAll(io.LimitReader(res.Body, 32<<20))
	if err != nil {
		return nil, err
	}

	var reply proxyReply
	decodeErr := json.Unmarshal(data, &reply)

	switch {
	case res.StatusCode >= 500 || res.StatusCode == http.StatusTooManyRequests:
		return nil, fmt.Errorf("proxy %s: http %d", command, res.StatusCode)
	case res.StatusCode >= 400:
		msg := reply.Error
		if msg == "" {
			msg = "http " + strconv.Itoa(res.StatusCode)
		}
		return nil, &ProxyCommandError{Command: command, Message: msg}
	case decodeErr != nil:
		return nil, fmt.Errorf("proxy %s: decode reply: %w", command, decodeErr)
	case reply.Error != "":
		return nil, &ProxyCommandError{Command: command, Message: reply.Error}
	}
	return &reply, nil
}

// resultString decodes a bulk string reply. A null reply reports ok=false.
func resultString(reply *proxyReply) (string, bool, error) {
	if len(reply.Result) == 0 || string(reply.Result) == "null" {
		return "", false, nil
	}
	var s string
	if err := json.Unmarshal(reply.Result, &s); err != nil {
		return "", false, fmt.Errorf("decode result: %w", err)
	}
	return s, true, nil
}

// Name implements Backend.
func (p *Proxy) Name() string {
	return "proxy"
}

// Get implements Backend.
func (p *Proxy) Get(ctx context.Context, key string) (value []byte, ok bool, err error) {
	defer observe("proxy", "get", time.Now(), &err)
	reply, err := p.do(ctx, "GET", key)
	if err != nil {
		return nil, false, err
	}
	s, ok, err := resultString(reply)
	if err != nil || !ok {
		return nil, false, err
	}
	return []byte(s), true, nil
}

// Set implements Backend.
func (p *Proxy) Set(ctx context.Context, key string, value []byte, ttl time.Duration) (err error) {
	defer observe("proxy", "set", time.Now(), &err)
	args := []string{"SET", key, string(value)}
	if ttl > 0 {
		secs := int64(ttl / time.Second)
		if secs < 1 {
			secs = 1
		}
		args = append(args, "EX", strconv.FormatInt(secs, 10))
	}
	_, err = p.do(ctx, args...)
	return err
}

// Delete implements Backend.
func (p *Proxy) Delete(ctx context.Context, keys ...string) (err error) {
	defer observe("proxy", "del", time.Now(), &err)
	for start := 0; start < len(keys); start += redisDeleteBatch {
		end := start + redisDeleteBatch
		if end > len(keys) {
			end = len(keys)
		}
		if _, err = p.do(ctx, append([]string{"DEL"}, keys[start:end]...)...); err != nil {
			return err
		}
	}
	return nil
}

// Keys implements Backend.
func (p *Proxy) Keys(ctx context.Context, prefix string) (keys []string, err error) {
	defer observe("proxy", "scan", time.Now(), &err)
	pattern := globEscape(prefix) + "*"
	cursor := "0"
	for {
		reply, err := p.do(ctx, "SCAN", cursor, "MATCH", pattern, "COUNT", strconv.Itoa(redisScanCount))
		if err != nil {
			return nil, err
		}
		var page []json.RawMessage
		if err := json.Unmarshal(reply.Result, &page); err != nil || len(page) != 2 {
			return nil, fmt.Errorf("proxy SCAN: unexpected reply %s", reply.Result)
		}
		var batch []string
		if err := json.Unmarshal(page[1], &batch); err != nil {
			return nil, fmt.Errorf("proxy SCAN: decode keys: %w", err)
		}
		keys = append(keys, batch...)

		if cursor, err = scanCursor(page[0]); err != nil {
			return nil, err
		}
		if cursor == "0" {
			return keys, nil
		}
	}
}

// scanCursor accepts the cursor as either a JSON string or number.
func scanCursor(raw json.RawMessage) (string, error) {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s, nil
	}
	var n int64
	if err := json.Unmarshal(raw, &n); err != nil {
		return "", fmt.Errorf("proxy SCAN: decode cursor: %w", err)
	}
	return strconv.FormatInt(n, 10), nil
}

// Take implements Taker with GETDEL.
func (p *Proxy) Take(ctx context.Context, key string) (value []byte, ok bool, err error) {
	defer observe("proxy", "getdel", time.Now(), &err)
	reply, err := p.do(ctx, "GETDEL", key)
	if err != nil {
		return nil, false, err
	}
	s, ok, err := resultString(reply)
	if err != nil || !ok {
		return nil, false, err
	}
	return []byte(s), true, nil
}

// Flush implements Flusher.
func (p *Proxy) Flush(ctx context.Context) error {
	_, err := p.do(ctx, "FLUSHDB")
	return err
}

// Ping implements Pinger.
func (p *Proxy) Ping(ctx context.Context) error {
	_, err := p.do(ctx, "PING")
	return err
}

// Close implements Backend.
func (p *Proxy) Close() error {
	p.client.CloseIdleConnections()
	return nil
}
