package health

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/zsiec/timeframe/internal/logger"
)

// Status represents the health status of a component.
type Status string

const (
	StatusOK       Status = "ok"
	StatusDegraded Status = "degraded"
	StatusDown     Status = "down"
)

const checkTimeout = 5 * time.Second

// Check is the result of one checker run.
type Check struct {
	Name        string    `json:"name"`
	Status      Status    `json:"status"`
	Message     string    `json:"message,omitempty"`
	LastChecked time.Time `json:"last_checked"`
	DurationMS  float64   `json:"duration_ms"`
}

// Checker is implemented by every dependency the service reports on.
type Checker interface {
	Name() string
	Check(ctx context.Context) error
}

// Manager runs the registered checkers and keeps their latest results.
type Manager struct {
	mu       sync.RWMutex
	checkers []Checker
	results  map[string]*Check
	logger   logger.Logger
}

func NewManager(log logger.Logger) *Manager {
	if log == nil {
		log = logger.NewNullLogger()
	}
	return &Manager{
		results: make(map[string]*Check),
		logger:  log,
	}
}

func (m *Manager) Register(checker Checker) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.checkers = append(m.checkers, checker)
	m.logger.WithField("checker", checker.Name()).Debug("Registered health checker")
}

// RunChecks runs every checker concurrently, each under its own timeout.
func (m *Manager) RunChecks(ctx context.Context) map[string]*Check {
	m.mu.RLock()
	checkers := append([]Checker(nil), m.checkers...)
	m.mu.RUnlock()

	var wg sync.WaitGroup
	resultsCh := make(chan *Check, len(checkers))

	for _, checker := range checkers {
		wg.Add(1)
		go func(c Checker) {
			defer wg.Done()
			resultsCh <- m.run(ctx, c)
		}(checker)
	}

	wg.Wait()
	close(resultsCh)

	results := make(map[string]*Check, len(checkers))
	m.mu.Lock()
	for check := range resultsCh {
		results[check.Name] = check
		m.results[check.Name] = check
	}
	m.mu.Unlock()

	return results
}

func (m *Manager) run(ctx context.Context, c Checker) *Check {
	checkCtx, cancel := context.WithTimeout(ctx, checkTimeout)
	defer cancel()

	start := time.Now()
	err := c.Check(checkCtx)
	elapsed := time.Since(start)

	check := &Check{
		Name:        c.Name(),
		Status:      StatusOK,
		LastChecked: time.Now(),
		DurationMS:  float64(elapsed.Microseconds()) / 1000,
	}

	log := m.logger.WithFields(map[string]interface{}{
		"checker":  c.Name(),
		"duration": elapsed,
	})
	if err != nil {
		check.Status = StatusDown
		check.Message = err.Error()
		if errors.Is(err, context.DeadlineExceeded) {
			check.Message = "Health check timed out"
		}
		log.WithError(err).Error("Health check failed")
	} else {
		log.Debug("Health check passed")
	}
	return check
}

// GetResults returns copies of the latest results.
func (m *Manager) GetResults() map[string]*Check {
	m.mu.RLock()
	defer m.mu.RUnlock()

	results := make(map[string]*Check, len(m.results))
	for k, v := range m.results {
		c := *v
		results[k] = &c
	}
	return results
}

// GetOverallStatus is down if any check is down, degraded if any is
// degraded, and down before the first run.
func (m *Manager) GetOverallStatus() Status {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if len(m.results) == 0 {
		return StatusDown
	}

	overall := StatusOK
	for _, check := range m.results {
		switch check.Status {
		case StatusDown:
			return StatusDown
		case StatusDegraded:
			overall = StatusDegraded
		}
	}
	return overall
}

// Names lists the registered checkers in sorted order.
func (m *Manager) Names() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	names := make([]string, 0, len(m.checkers))
	for _, c := range m.checkers {
		names = append(names, c.Name())
	}
	sort.Strings(names)
	return names
}

// StartPeriodicChecks runs the checks now and then every interval until ctx
// is done.
func (m *Manager) StartPeriodicChecks(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	m.RunChecks(ctx)

	for {
		select {
		case <-ticker.C:
			m.RunChecks(ctx)
		case <-ctx.Done():
			m.logger.Info("Stopping periodic health checks")
			return
		}
	}
}
