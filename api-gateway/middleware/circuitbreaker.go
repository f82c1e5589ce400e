package middleware

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/tair/freshsave/pkg/logger"
)

// CircuitState represents the state of a circuit breaker
type CircuitState string

const (
	StateClosed   CircuitState = "closed"
	StateOpen     CircuitState = "open"
	StateHalfOpen CircuitState = "half-open"
)

// ErrCircuitOpen is returned by Call while the circuit rejects requests.
var ErrCircuitOpen = errors.New("circuit breaker is open")

// halfOpenSuccesses closes a half-open circuit.
const halfOpenSuccesses = 3

// CircuitBreaker opens after maxFailures consecutive failures and probes the
// backend again once timeout has passed.
type CircuitBreaker struct {
	name            string
	maxFailures     int
	timeout         time.Duration
	state           CircuitState
	failures        int
	lastFailureTime time.Time
	lastStateChange time.Time
	successCount    int
	now             func() time.Time
	mu              sync.Mutex
}

// NewCircuitBreaker creates a new circuit breaker
func NewCircuitBreaker(name string, maxFailures int, timeout time.Duration) *CircuitBreaker {
	return &CircuitBreaker{
		name:            name,
		maxFailures:     maxFailures,
		timeout:         timeout,
		state:           StateClosed,
		lastStateChange: time.Now(),
		now:             time.Now,
	}
}

// allow reports whether a request may pass, moving open to half-open once
// the timeout has elapsed.
func (cb *CircuitBreaker) allow() bool {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	if cb.state == StateOpen && cb.now().Sub(cb.lastStateChange) > cb.timeout {
		cb.setState(StateHalfOpen)
		cb.successCount = 0
	}
	return cb.state != StateOpen
}

// Call executes the function with circuit breaker protection
func (cb *CircuitBreaker) Call(fn func() error) error {
	if !cb.allow() {
		return fmt.Errorf("%w for %s", ErrCircuitOpen, cb.name)
	}

	err := fn()

	cb.mu.Lock()
	defer cb.mu.Unlock()
	if err != nil {
		cb.onFailure()
	} else {
		cb.onSuccess()
	}
	return err
}

func (cb *CircuitBreaker) setState(state CircuitState) {
	if cb.state == state {
		return
	}
	cb.state = state
	cb.lastStateChange = cb.now()

	event := logger.Logger.Info()
	if state == StateOpen {
		event = logger.Logger.Error()
	}
	event.
		Str("circuit", cb.name).
		Str("state", string(state)).
		Int("failures", cb.failures).
		Msg("Circuit breaker state changed")
}

func (cb *CircuitBreaker) onFailure() {
	cb.failures++
	cb.lastFailureTime = cb.now()

	if cb.state == StateHalfOpen || cb.failures >= cb.maxFailures {
		cb.setState(StateOpen)
	}
}

func (cb *CircuitBreaker) onSuccess() {
	switch cb.state {
	case StateHalfOpen:
		cb.successCount++
		if cb.successCount >= halfOpenSuccesses {
			cb.failures = 0
			cb.successCount = 0
			cb.setState(StateClosed)
		}
	case StateClosed:
		cb.failures = 0
	}
}

// GetState returns the current state
func (cb *CircuitBreaker) GetState() CircuitState {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	return cb.state
}

// GetStats returns circuit breaker statistics
func (cb *CircuitBreaker) GetStats() map[string]interface{} {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	return map[string]interface{}{
		"name":              cb.name,
		"state":             cb.state,
		"failures":          cb.failures,
		"max_failures":      cb.maxFailures,
		"last_failure_time": cb.lastFailureTime,
		"last_state_change": cb.lastStateChange,
	}
}

// CircuitBreakerManager manages multiple circuit breakers
type CircuitBreakerManager struct {
	breakers    map[string]*CircuitBreaker
	maxFailures int
	timeout     time.Duration
	mu          sync.Mutex
}

// NewCircuitBreakerManager creates breakers that open after maxFailures and
// retry after timeout.
func NewCircuitBreakerManager(maxFailures int, timeout time.Duration) *CircuitBreakerManager {
	if maxFailures <= 0 {
		maxFailures = 5
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &CircuitBreakerManager{
		breakers:    make(map[string]*CircuitBreaker),
		maxFailures: maxFailures,
		timeout:     timeout,
	}
}

// GetOrCreate gets or creates a circuit breaker for a service
func (m *CircuitBreakerManager) GetOrCreate(serviceName string) *CircuitBreaker {
	m.mu.Lock()
	defer m.mu.Unlock()

	if cb, exists := m.breakers[serviceName]; exists {
		return cb
	}

	cb := NewCircuitBreaker(serviceName, m.maxFailures, m.timeout)
	m.breakers[serviceName] = cb
	return cb
}

// GetAllStats returns stats for all circuit breakers
func (m *CircuitBreakerManager) GetAllStats() map[string]interface{} {
	m.mu.Lock()
	breakers := make(map[string]*CircuitBreaker, len(m.breakers))
	for name, cb := range m.breakers {
		breakers[name] = cb
	}
	m.mu.Unlock()

	stats := make(map[string]interface{}, len(breakers))
	for name, cb := range breakers {
		stats[name] = cb.GetStats()
	}
	return stats
}

// CircuitBreakerMiddleware guards each backend service with its own breaker.
// serviceFor maps a request path to a service name; "" bypasses the breaker.
func CircuitBreakerMiddleware(manager *CircuitBreakerManager, serviceFor func(path string) string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		serviceName := serviceFor(c.Path())
		if serviceName == "" {
			return c.Next()
		}

		cb := manager.GetOrCreate(serviceName)

		var responseErr error
		err := cb.Call(func() error {
			responseErr = c.Next()
			if status := c.Response().StatusCode(); status >= 500 {
				return fmt.Errorf("downstream service error: %d", status)
			}
			return nil
		})

		if errors.Is(err, ErrCircuitOpen) {
			logger.Logger.Warn().
				Str("service", serviceName).
				Str("path", c.Path()).
				Msg("Circuit breaker is open - request blocked")

			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
				"success": false,
				"error":   "Service temporarily unavailable",
				"service": serviceName,
			})
		}

		return responseErr
	}
}
