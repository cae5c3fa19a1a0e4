// Cinevault - Personal Media Tracking Storage
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinevault

package services

import (
	"context"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/rs/zerolog"

	"github.com/tomtom215/cinevault/internal/logging"
	"github.com/tomtom215/cinevault/internal/metrics"
)

// ValueLogCollector is satisfied by *kvstore.Badger.
type ValueLogCollector interface {
	RunValueLogGC(discardRatio float64) (rewritten bool, err error)
}

// ExpirySweeper is satisfied by kvstore stores on lazily expiring backends.
type ExpirySweeper interface {
	Sweep(ctx context.Context) (int, error)
}

// maxGCPasses bounds the rewrite loop of one GC tick.
const maxGCPasses = 16

// BadgerGCService periodically reclaims badger value log space.
type BadgerGCService struct {
	gc           ValueLogCollector
	interval     time.Duration
	discardRatio float64
	clock        clock.Clock
	logger       zerolog.Logger
}

// NewBadgerGCService creates the service. Use WithServiceClock in tests.
func NewBadgerGCService(gc ValueLogCollector, interval time.Duration, discardRatio float64, opts ...ServiceOption) *BadgerGCService {
	s := &BadgerGCService{
		gc:           gc,
		interval:     interval,
		discardRatio: discardRatio,
		clock:        clock.New(),
		logger:       logging.WithComponent("badger-gc"),
	}
	for _, opt := range opts {
		opt(&s.clock)
	}
	return s
}

// Serve implements suture.Service.
func (s *BadgerGCService) Serve(ctx context.Context) error {
	return tick(ctx, s.clock, s.interval, s.collect)
}

// collect rewrites value log files until badger reports nothing to do.
func (s *BadgerGCService) collect(_ context.Context) {
	for pass := 0; pass < maxGCPasses; pass++ {
		rewritten, err := s.gc.RunValueLogGC(s.discardRatio)
		if err != nil {
			metrics.RecordBadgerGC("error")
			s.logger.Warn().Err(err).Msg("value log gc failed")
			return
		}
		if !rewritten {
			if pass == 0 {
				metrics.RecordBadgerGC("nothing")
			}
			return
		}
		metrics.RecordBadgerGC("rewritten")
		s.logger.Debug().Int("pass", pass+1).Msg("value log file rewritten")
	}
}

// String implements fmt.Stringer.
func (s *BadgerGCService) String() string {
	return "badger-gc"
}

// ExpirySweepService periodically removes expired entries from backends that
// only expire on read.
type ExpirySweepService struct {
	sweeper  ExpirySweeper
	backend  string
	interval time.Duration
	clock    clock.Clock
	logger   zerolog.Logger
}

// NewExpirySweepService creates the service; backend labels metrics and logs.
func NewExpirySweepService(sweeper ExpirySweeper, backend string, interval time.Duration, opts ...ServiceOption) *ExpirySweepService {
	s := &ExpirySweepService{
		sweeper:  sweeper,
		backend:  backend,
		interval: interval,
		clock:    clock.New(),
		logger:   logging.WithBackend("expiry-sweep", backend),
	}
	for _, opt := range opts {
		opt(&s.clock)
	}
	return s
}

// Serve implements suture.Service.
func (s *ExpirySweepService) Serve(ctx context.Context) error {
	return tick(ctx, s.clock, s.interval, s.sweep)
}

func (s *ExpirySweepService) sweep(ctx context.Context) {
	n, err := s.sweeper.Sweep(ctx)
	if err != nil {
		if ctx.Err() == nil {
			s.logger.Warn().Err(err).Msg("expiry sweep failed")
		}
		return
	}
	metrics.RecordExpiredSwept(s.backend, n)
	if n > 0 {
		s.logger.Debug().Int("removed", n).Msg("expired entries swept")
	}
}

// String implements fmt.Stringer.
func (s *ExpirySweepService) String() string {
	return "expiry-sweep"
}

// ServiceOption configures a maintenance service.
type ServiceOption func(*clock.Clock)

// WithServiceClock drives the service ticker from c.
func WithServiceClock(c clock.Clock) ServiceOption {
	return func(dst *clock.Clock) {
		*dst = c
	}
}

// tick runs fn every interval until ctx is canceled.
func tick(ctx context.Context, c clock.Clock, interval time.Duration, fn func(context.Context)) error {
	ticker := c.Ticker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			fn(ctx)
		}
	}
}
