package session

import (
	"testing"
	"time"
)

// fakeClock lets tests move signal time without sleeping.
func fakeClock(s *Signals) *time.Time {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return now }
	return &now
}

func TestInteractionDecaysAfterFiveSeconds(t *testing.T) {
	s := NewSignals()
	now := fakeClock(s)

	s.RecordInteraction()
	if !s.RecentInteraction() {
		t.Fatal("expected interaction to be recent right after recording")
	}

	*now = now.Add(4 * time.Second)
	if !s.RecentInteraction() {
		t.Fatal("expected interaction to still be recent at 4s")
	}

	*now = now.Add(2 * time.Second)
	if s.RecentInteraction() {
		t.Fatal("expected interaction to have decayed after 5s")
	}
}

func TestInteractionWindowRenewsOnActivity(t *testing.T) {
	s := NewSignals()
	now := fakeClock(s)

	s.RecordInteraction()
	*now = now.Add(4 * time.Second)
	s.RecordInteraction()
	*now = now.Add(4 * time.Second)

	if !s.RecentInteraction() {
		t.Fatal("expected renewed interaction window to still be open")
	}
}

func TestNavigationDecaysAfterTwoSeconds(t *testing.T) {
	s := NewSignals()
	now := fakeClock(s)

	s.RecordNavigation()
	if !s.RecentNavigation() {
		t.Fatal("expected navigation to be recent right after recording")
	}

	*now = now.Add(3 * time.Second)
	if s.RecentNavigation() {
		t.Fatal("expected navigation to have decayed after 2s")
	}
}

func TestVisibilityIsUpdatedSynchronously(t *testing.T) {
	s := NewSignals()

	if got := s.Visibility(); got != VisibilityVisible {
		t.Fatalf("expected initial visibility visible, got %s", got)
	}

	s.SetVisibility(VisibilityHidden)
	if got := s.Visibility(); got != VisibilityHidden {
		t.Fatalf("expected visibility hidden, got %s", got)
	}
}

func TestPaymentFlowHardCeiling(t *testing.T) {
	s := NewSignals()
	now := fakeClock(s)

	s.SetPaymentFlow(true)
	if !s.PaymentFlowActive() {
		t.Fatal("expected payment flow active after set")
	}

	// Just inside the ceiling.
	*now = now.Add(10 * time.Minute)
	if !s.PaymentFlowActive() {
		t.Fatal("expected payment flow still active at exactly 10 minutes")
	}

	// One second past the ceiling the stuck flag must clear itself.
	*now = now.Add(time.Second)
	if s.PaymentFlowActive() {
		t.Fatal("expected payment flow auto-cleared after the 10 minute ceiling")
	}
	if _, ok := s.PaymentFlowStartedAt(); ok {
		t.Fatal("expected no started_at after auto-clear")
	}
}

func TestPaymentFlowExplicitClear(t *testing.T) {
	s := NewSignals()
	fakeClock(s)

	s.SetPaymentFlow(true)
	s.SetPaymentFlow(false)

	if s.PaymentFlowActive() {
		t.Fatal("expected payment flow inactive after explicit clear")
	}
}

func TestPaymentFlowStartedAt(t *testing.T) {
	s := NewSignals()
	now := fakeClock(s)

	s.SetPaymentFlow(true)
	startedAt, ok := s.PaymentFlowStartedAt()
	if !ok {
		t.Fatal("expected a started_at while the flow is active")
	}
	if !startedAt.Equal(*now) {
		t.Fatalf("expected started_at %v, got %v", *now, startedAt)
	}
}

func TestDisposedSignalsIgnoreMutations(t *testing.T) {
	s := NewSignals()
	fakeClock(s)

	s.Dispose()
	s.RecordInteraction()
	s.RecordNavigation()
	s.SetPaymentFlow(true)

	if s.RecentInteraction() || s.RecentNavigation() || s.PaymentFlowActive() {
		t.Fatal("expected disposed signals to ignore all mutations")
	}
}
