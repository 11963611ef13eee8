package domain

import (
	"sync"
	"sync/atomic"

	"github.com/shopspring/decimal"
)

// Session is the process-wide execution state shared between the
// controller and the executor. The single-flight flag uses an atomic
// compare-and-set so a concurrent second caller fails fast instead of
// queuing; the counters are guarded by a mutex and updated only by the
// executor while it holds the flag.
type Session struct {
	executing atomic.Bool

	mu               sync.RWMutex
	totalExecutions  int64
	successCount     int64
	failureCount     int64
	cumulativeProfit decimal.Decimal
}

// NewSession creates a reset Session.
func NewSession() *Session {
	return &Session{cumulativeProfit: decimal.Zero}
}

// TryAcquire attempts to take the single-flight guard. Returns false if
// an execution is already in flight.
func (s *Session) TryAcquire() bool {
	return s.executing.CompareAndSwap(false, true)
}

// Release clears the single-flight guard. Safe to call from a deferred
// path; releasing an unheld guard is a no-op.
func (s *Session) Release() {
	s.executing.Store(false)
}

// IsExecuting reports whether an execution is in flight.
func (s *Session) IsExecuting() bool {
	return s.executing.Load()
}

// RecordResult folds an execution result into the session counters.
func (s *Session) RecordResult(result *ExecutionResult) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.totalExecutions++
	if result.Success {
		s.successCount++
		s.cumulativeProfit = s.cumulativeProfit.Add(result.ActualProfitAmount)
	} else {
		s.failureCount++
	}
}

// SessionStats is a point-in-time copy of the session counters.
type SessionStats struct {
	TotalExecutions  int64
	SuccessCount     int64
	FailureCount     int64
	CumulativeProfit decimal.Decimal
	IsExecuting      bool
}

// Stats returns a consistent snapshot of the counters.
func (s *Session) Stats() SessionStats {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return SessionStats{
		TotalExecutions:  s.totalExecutions,
		SuccessCount:     s.successCount,
		FailureCount:     s.failureCount,
		CumulativeProfit: s.cumulativeProfit,
		IsExecuting:      s.executing.Load(),
	}
}
