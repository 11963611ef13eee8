package domain

import (
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func TestSession_SingleFlight(t *testing.T) {
	s := NewSession()

	if !s.TryAcquire() {
		t.Fatal("first TryAcquire() = false, want true")
	}
	if s.TryAcquire() {
		t.Error("second TryAcquire() while held = true, want false")
	}
	if !s.IsExecuting() {
		t.Error("IsExecuting() = false while held, want true")
	}

	s.Release()
	if s.IsExecuting() {
		t.Error("IsExecuting() = true after Release, want false")
	}
	if !s.TryAcquire() {
		t.Error("TryAcquire() after Release = false, want true")
	}
}

func TestSession_ConcurrentAcquire(t *testing.T) {
	s := NewSession()

	const goroutines = 50
	var wg sync.WaitGroup
	wins := make(chan int, goroutines)

	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			if s.TryAcquire() {
				wins <- id
			}
		}(i)
	}
	wg.Wait()
	close(wins)

	var count int
	for range wins {
		count++
	}
	if count != 1 {
		t.Errorf("%d goroutines acquired the guard, want exactly 1", count)
	}
}

func TestSession_RecordResult(t *testing.T) {
	s := NewSession()
	opp := &Opportunity{TradeAmountIn: decimal.NewFromInt(100)}

	s.RecordResult(NewSuccessResult(opp, ModeDryRun, decimal.RequireFromString("4.98"), "", "", time.Now()))
	s.RecordResult(NewSuccessResult(opp, ModeDryRun, decimal.RequireFromString("2.02"), "", "", time.Now()))
	s.RecordResult(NewFailureResult(opp, ModeDryRun, ReasonConfirmationTimeout, "tx1", time.Now()))

	stats := s.Stats()
	if stats.TotalExecutions != 3 {
		t.Errorf("TotalExecutions = %d, want 3", stats.TotalExecutions)
	}
	if stats.SuccessCount != 2 {
		t.Errorf("SuccessCount = %d, want 2", stats.SuccessCount)
	}
	if stats.FailureCount != 1 {
		t.Errorf("FailureCount = %d, want 1", stats.FailureCount)
	}
	if want := decimal.RequireFromString("7"); !stats.CumulativeProfit.Equal(want) {
		t.Errorf("CumulativeProfit = %s, want %s", stats.CumulativeProfit, want)
	}
}

func TestNewSuccessResult_ProfitPercent(t *testing.T) {
	opp := &Opportunity{TradeAmountIn: decimal.NewFromInt(100)}
	result := NewSuccessResult(opp, ModeLive, decimal.RequireFromString("4.98"), "buyTx", "sellTx", time.Now())

	if want := decimal.RequireFromString("4.98"); !result.ActualProfitPercent.Equal(want) {
		t.Errorf("ActualProfitPercent = %s, want %s", result.ActualProfitPercent, want)
	}
	if !result.Success {
		t.Error("Success = false, want true")
	}
}
