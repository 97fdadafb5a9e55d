package session

import (
	"sync"
	"time"
)

// Decay windows for the raw browser signals. Interaction and navigation are
// time-bounded booleans: they stay true for a short window after the last
// matching event. The payment flag has a hard ceiling so a checkout that never
// clears it cannot block sign-out forever.
const (
	interactionDecay   = 5 * time.Second
	navigationDecay    = 2 * time.Second
	paymentFlowCeiling = 10 * time.Minute
)

type Visibility string

const (
	VisibilityVisible Visibility = "visible"
	VisibilityHidden  Visibility = "hidden"
)

// Signals holds the ephemeral signal state of one page instance. It is
// created at page load, mutated only through its methods, and discarded on
// teardown. It is never persisted and never shared between page instances;
// two tabs own two independent Signals.
type Signals struct {
	mu  sync.Mutex
	now func() time.Time

	interactionUntil time.Time
	navigationUntil  time.Time
	visibility       Visibility
	paymentActive    bool
	paymentStartedAt time.Time
	disposed         bool
}

func NewSignals() *Signals {
	return &Signals{
		now:        time.Now,
		visibility: VisibilityVisible,
	}
}

// RecordInteraction renews the interaction window. Fired on click, keydown,
// pointer movement and scroll.
func (s *Signals) RecordInteraction() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.disposed {
		return
	}
	s.interactionUntil = s.now().Add(interactionDecay)
}

// RecordNavigation renews the internal-navigation window. Fired by the
// routing collaborator before it commits a route change.
func (s *Signals) RecordNavigation() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.disposed {
		return
	}
	s.navigationUntil = s.now().Add(navigationDecay)
}

// SetVisibility records the page visibility, updated synchronously on
// show/hide.
func (s *Signals) SetVisibility(v Visibility) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.disposed {
		return
	}
	s.visibility = v
}

// SetPaymentFlow sets or clears the payment-flow flag. Only the checkout
// collaborator calls this; the decision engine reads it and never mutates it.
func (s *Signals) SetPaymentFlow(active bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.disposed {
		return
	}
	s.paymentActive = active
	if active {
		s.paymentStartedAt = s.now()
	} else {
		s.paymentStartedAt = time.Time{}
	}
}

// RecentInteraction reports whether the interaction window is still open.
func (s *Signals) RecentInteraction() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.now().Before(s.interactionUntil)
}

// RecentNavigation reports whether the navigation window is still open.
func (s *Signals) RecentNavigation() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.now().Before(s.navigationUntil)
}

// Visibility returns the current page visibility.
func (s *Signals) Visibility() Visibility {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.visibility
}

// PaymentFlowActive reports whether a payment flow is in progress. A flag
// older than the hard ceiling is cleared here even without an explicit clear
// call.
func (s *Signals) PaymentFlowActive() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.paymentActive && s.now().Sub(s.paymentStartedAt) > paymentFlowCeiling {
		s.paymentActive = false
		s.paymentStartedAt = time.Time{}
	}
	return s.paymentActive
}

// PaymentFlowStartedAt returns when the current payment flow began, if one is
// active.
func (s *Signals) PaymentFlowStartedAt() (time.Time, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.paymentActive {
		return time.Time{}, false
	}
	return s.paymentStartedAt, true
}

// Dispose clears all state. Further mutations are ignored.
func (s *Signals) Dispose() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.disposed = true
	s.interactionUntil = time.Time{}
	s.navigationUntil = time.Time{}
	s.paymentActive = false
	s.paymentStartedAt = time.Time{}
}
