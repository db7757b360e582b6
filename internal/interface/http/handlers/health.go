package handlers

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"
)

// ══════════════════════════════════════════════════════════════════════════════
// HEALTH CHECK INTERFACES
// ══════════════════════════════════════════════════════════════════════════════

// HealthChecker defines the interface for health checking.
type HealthChecker interface {
	// Check performs a health check and returns the status.
	Check(ctx context.Context) HealthStatus
}

// HealthCheckFunc is a function that performs a single health check.
// It returns an error if the check fails.
type HealthCheckFunc func(ctx context.Context) error

// ReportFunc is a health check that also describes what it saw.
// The detail becomes the check message when err is nil.
type ReportFunc func(ctx context.Context) (detail string, err error)

// HealthStatus represents the overall health status of the service.
type HealthStatus struct {
	// Healthy indicates if the service is healthy overall.
	Healthy bool `json:"healthy"`

	// Ready indicates if the service is ready to accept requests.
	Ready bool `json:"ready"`

	// Message provides additional context about the health status.
	Message string `json:"message,omitempty"`

	// Checks contains individual health check results.
	Checks map[string]CheckResult `json:"checks,omitempty"`

	// Uptime is how long the service has been running.
	Uptime string `json:"uptime,omitempty"`

	// Timestamp is when the check was performed.
	Timestamp time.Time `json:"timestamp"`

	// Version is the service version.
	Version string `json:"version,omitempty"`
}

// CheckResult represents the result of a single health check.
type CheckResult struct {
	// Healthy indicates if this specific check passed.
	Healthy bool `json:"healthy"`

	// Message provides details about the check result.
	Message string `json:"message,omitempty"`

	// Duration is how long the check took.
	Duration string `json:"duration,omitempty"`

	// LastChecked is when this check was last performed.
	LastChecked time.Time `json:"last_checked,omitempty"`
}

// ══════════════════════════════════════════════════════════════════════════════
// COMPOSITE HEALTH CHECKER
// ══════════════════════════════════════════════════════════════════════════════

// CompositeHealthChecker aggregates multiple health checks.
type CompositeHealthChecker struct {
	mu        sync.RWMutex
	checks    map[string]ReportFunc
	startTime time.Time
	version   string
	timeout   time.Duration
}

// NewCompositeHealthChecker creates a new composite health checker.
func NewCompositeHealthChecker(version string) *CompositeHealthChecker {
	return &CompositeHealthChecker{
		checks:    make(map[string]ReportFunc),
		startTime: time.Now(),
		version:   version,
		timeout:   5 * time.Second,
	}
}

// SetTimeout sets the timeout for individual health checks.
// Non-positive values are ignored.
func (c *CompositeHealthChecker) SetTimeout(timeout time.Duration) {
	if timeout <= 0 {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.timeout = timeout
}

// AddCheck adds a named health check function.
func (c *CompositeHealthChecker) AddCheck(name string, check HealthCheckFunc) {
	c.AddReport(name, func(ctx context.Context) (string, error) {
		return "OK", check(ctx)
	})
}

// AddReport adds a named check whose detail is shown when it passes.
func (c *CompositeHealthChecker) AddReport(name string, report ReportFunc) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.checks[name] = report
}

// Check performs all health checks and returns the aggregated status.
func (c *CompositeHealthChecker) Check(ctx context.Context) HealthStatus {
	c.mu.RLock()
	checks := make(map[string]ReportFunc, len(c.checks))
	for name, check := range c.checks {
		checks[name] = check
	}
	timeout := c.timeout
	c.mu.RUnlock()

	status := HealthStatus{
		Healthy:   true,
		Ready:     true,
		Checks:    make(map[string]CheckResult),
		Uptime:    time.Since(c.startTime).Round(time.Second).String(),
		Timestamp: time.Now().UTC(),
		Version:   c.version,
	}

	// If no checks are registered, just return healthy
	if len(checks) == 0 {
		status.Message = "No health checks registered"
		return status
	}

	var (
		wg  sync.WaitGroup
		mu  sync.Mutex
		bad []string
	)
	for name, check := range checks {
		wg.Add(1)
		go func(name string, check ReportFunc) {
			defer wg.Done()
			result := run(ctx, check, timeout)

			mu.Lock()
			defer mu.Unlock()
			status.Checks[name] = result
			if !result.Healthy {
				bad = append(bad, name)
			}
		}(name, check)
	}
	wg.Wait()

	if len(bad) == 0 {
		status.Message = "All checks passed"
		return status
	}

	sort.Strings(bad)
	status.Healthy = false
	status.Ready = false
	status.Message = "Some checks failed: " + strings.Join(bad, ", ")

	return status
}

// run executes one check under the per-check timeout.
func run(ctx context.Context, check ReportFunc, timeout time.Duration) CheckResult {
	checkCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	start := time.Now()
	detail, err := check(checkCtx)

	result := CheckResult{
		Healthy:     err == nil,
		Message:     detail,
		Duration:    time.Since(start).Round(time.Millisecond).String(),
		LastChecked: time.Now().UTC(),
	}
	if err != nil {
		result.Message = err.Error()
	}
	return result
}

// ══════════════════════════════════════════════════════════════════════════════
// PREDEFINED HEALTH CHECKS
// ══════════════════════════════════════════════════════════════════════════════

// Pinger is implemented by the Redis cache.
type Pinger interface {
	Ping(ctx context.Context) error
}

// NewPingCheck creates a connectivity health check.
func NewPingCheck(p Pinger) HealthCheckFunc {
	return func(ctx context.Context) error {
		return p.Ping(ctx)
	}
}

// NewSuccessRateCheck fails when rate() drops below min.
// Used for the event handlers that keep the walkthrough cache fresh.
func NewSuccessRateCheck(rate func() float64, min float64) HealthCheckFunc {
	return func(ctx context.Context) error {
		if r := rate(); r < min {
			return fmt.Errorf("success rate %.2f below %.2f", r, min)
		}
		return nil
	}
}
