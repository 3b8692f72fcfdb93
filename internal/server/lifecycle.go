// Package server runs the simulator's long-lived components under one
// lifecycle: start in order, stop in reverse on a signal, on a service
// error, or when any service finishes on its own.
package server

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"go.uber.org/zap"
)

// DefaultGrace bounds how long Run waits for stopped services to return.
const DefaultGrace = 5 * time.Second

// Service is a long-running component.
type Service interface {
	// Start runs the service. It blocks until the service finishes, is
	// stopped or fails.
	Start() error
	// Stop asks a running Start to return.
	Stop()
}

// FuncService adapts a start/stop function pair into the Service interface.
type FuncService struct {
	StartFn func() error
	StopFn  func()
}

// Start calls StartFn.
func (f *FuncService) Start() error { return f.StartFn() }

// Stop calls StopFn.
func (f *FuncService) Stop() { f.StopFn() }

// Lifecycle owns a set of named services.
type Lifecycle struct {
	// Grace bounds the wait for stopped services; zero uses DefaultGrace.
	Grace time.Duration

	logger   *zap.Logger
	mu       sync.Mutex
	services []*running
}

// running tracks one service through Run.
type running struct {
	name    string
	service Service
	done    chan struct{}
	err     error
	since   time.Time
}

// NewLifecycle creates an empty Lifecycle.
//
// Precondition: logger must be non-nil.
func NewLifecycle(logger *zap.Logger) *Lifecycle {
	return &Lifecycle{logger: logger}
}

// Add registers svc under name. Services start in the order they are added.
//
// Precondition: name must be non-empty; svc must be non-nil; Run has not
// been called.
func (l *Lifecycle) Add(name string, svc Service) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.services = append(l.services, &running{name: name, service: svc})
}

// Run starts every service and blocks until SIGINT or SIGTERM, until ctx is
// cancelled or until the first service returns. It then stops the services
// in reverse order and waits up to Grace for each Start to return.
//
// Postcondition: Returns the failures of every service that returned an
// error, joined, or nil.
func (l *Lifecycle) Run(ctx context.Context) error {
	start := time.Now()
	l.mu.Lock()
	services := l.services
	l.mu.Unlock()

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	first := make(chan *running, len(services))
	for _, r := range services {
		r.done = make(chan struct{})
		r.since = time.Now()
		l.logger.Info("starting service", zap.String("service", r.name))
		go func() {
			defer close(r.done)
			r.err = r.service.Start()
			first <- r
		}()
	}
	l.logger.Info("all services started",
		zap.Int("count", len(services)),
		zap.Duration("startup", time.Since(start)),
	)

	select {
	case <-ctx.Done():
		l.logger.Info("shutting down", zap.NamedError("cause", context.Cause(ctx)))
	case r := <-first:
		if r.err != nil {
			l.logger.Error("service failed, shutting down", zap.String("service", r.name), zap.Error(r.err))
		} else {
			l.logger.Info("service finished, shutting down", zap.String("service", r.name))
		}
	}

	err := l.shutdown(services)
	l.logger.Info("shutdown complete", zap.Duration("total_uptime", time.Since(start)))
	return err
}

func (l *Lifecycle) shutdown(services []*running) error {
	grace := l.Grace
	if grace <= 0 {
		grace = DefaultGrace
	}
	var errs []error
	for i := len(services) - 1; i >= 0; i-- {
		r := services[i]
		r.service.Stop()
		select {
		case <-r.done:
			l.logger.Info("service stopped",
				zap.String("service", r.name),
				zap.Duration("uptime", time.Since(r.since)),
			)
			if r.err != nil {
				errs = append(errs, fmt.Errorf("service %s: %w", r.name, r.err))
			}
		case <-time.After(grace):
			l.logger.Warn("service did not stop in time", zap.String("service", r.name), zap.Duration("grace", grace))
		}
	}
	return errors.Join(errs...)
}
