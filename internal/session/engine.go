package session

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/huurnet/huurnet-BE/internal/metrics"
)

// logoutDebounce is how long the page must stay hidden, without any guard
// condition, before the engine signs the session out.
const logoutDebounce = 2 * time.Minute

type State string

const (
	StateVisible       State = "visible"
	StateHiddenPending State = "hidden_pending"
	StateLoggedOut     State = "logged_out"
)

// Authenticator is the authentication collaborator. SignOut must be
// idempotent; the engine calls it at most once per confirmed transition and
// never again until a new session begins.
type Authenticator interface {
	SignOut(ctx context.Context, userID string, tokenID string, trigger string) error
}

// Engine decides whether the user has actually left the application, from the
// ambiguous low-level signals the page forwards: hide can mean a tab switch,
// an internal navigation, a refresh or a real close. It holds at most one
// pending debounce timer; a new hide cycle cancels the previous timer before
// arming its own, and Stop cancels whatever is pending so a logout can never
// fire after teardown.
type Engine struct {
	mu sync.Mutex

	signals   *Signals
	auth      Authenticator
	sessionID string
	userID    string
	tokenID   string

	debounce time.Duration
	state    State
	timer    *time.Timer
	stopped  bool
}

func NewEngine(signals *Signals, auth Authenticator, sessionID, userID, tokenID string) *Engine {
	return &Engine{
		signals:   signals,
		auth:      auth,
		sessionID: sessionID,
		userID:    userID,
		tokenID:   tokenID,
		debounce:  logoutDebounce,
		state:     StateVisible,
	}
}

// State returns the current engine state.
func (e *Engine) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

// HandleVisibilityChange feeds a visibility transition into the state
// machine. Hiding the page arms the logout debounce, measured from this
// moment, unless a payment flow is active, in which case nothing happens at
// all. Becoming visible again before the window elapses cancels the cycle.
func (e *Engine) HandleVisibilityChange(v Visibility) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.stopped || e.state == StateLoggedOut {
		return
	}

	switch v {
	case VisibilityHidden:
		if e.state != StateVisible {
			return
		}
		// An active payment flow blocks the transition entirely.
		if e.signals.PaymentFlowActive() {
			log.Debug().Str("session_id", e.sessionID).Msg("page hidden during payment flow, not arming logout")
			return
		}
		e.cancelTimerLocked()
		e.state = StateHiddenPending
		e.timer = time.AfterFunc(e.debounce, e.fire)
		log.Info().Str("session_id", e.sessionID).Dur("debounce", e.debounce).Msg("page hidden, logout debounce armed")

	case VisibilityVisible:
		if e.state != StateHiddenPending {
			return
		}
		e.cancelTimerLocked()
		e.state = StateVisible
		log.Info().Str("session_id", e.sessionID).Msg("page visible again, logout debounce cancelled")
	}
}

// HandlePaymentFlowChange reacts to the payment flag. A flow starting while a
// hide cycle is pending cancels the cycle immediately.
func (e *Engine) HandlePaymentFlowChange(active bool) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.stopped || e.state != StateHiddenPending || !active {
		return
	}
	e.cancelTimerLocked()
	e.state = StateVisible
	log.Info().Str("session_id", e.sessionID).Msg("payment flow started, logout debounce cancelled")
}

// fire runs when the debounce window elapses. Every guard is re-evaluated at
// this instant, not only at debounce start: the payment flag, an interaction
// or a navigation may have changed mid-window. Finding a guard newly true is
// a logged no-op, not an error.
func (e *Engine) fire() {
	e.mu.Lock()

	if e.stopped || e.state != StateHiddenPending {
		e.mu.Unlock()
		return
	}
	e.timer = nil

	if e.signals.PaymentFlowActive() ||
		e.signals.RecentInteraction() ||
		e.signals.RecentNavigation() ||
		e.signals.Visibility() == VisibilityVisible {
		e.state = StateVisible
		e.mu.Unlock()

		metrics.GuardRacesAverted.Inc()
		log.Info().Str("session_id", e.sessionID).Msg("logout aborted, guard condition became active during debounce")
		return
	}

	e.state = StateLoggedOut
	e.mu.Unlock()

	e.signOut("hidden_debounce")
}

// HandleUnload is the separate path for a genuine page close: no debounce,
// best effort, synchronous. Telling a close apart from a refresh from this
// signal alone is inherently unreliable; the guards bound the damage. A real
// close within the 5s interaction window keeps the session alive until the
// token expires (false negative), and a refresh after the page sat hidden and
// idle signs the user out on reload (false positive). Both are accepted.
func (e *Engine) HandleUnload() {
	e.mu.Lock()

	if e.stopped || e.state == StateLoggedOut {
		e.mu.Unlock()
		return
	}

	if e.signals.PaymentFlowActive() ||
		e.signals.RecentInteraction() ||
		e.signals.RecentNavigation() {
		e.mu.Unlock()
		log.Debug().Str("session_id", e.sessionID).Msg("unload during activity, treated as refresh or navigation")
		return
	}

	e.cancelTimerLocked()
	e.state = StateLoggedOut
	e.mu.Unlock()

	e.signOut("unload")
}

// Stop tears the engine down. Any pending debounce timer is cancelled so no
// logout can fire after the page is gone. Safe to call more than once.
func (e *Engine) Stop() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.stopped = true
	e.cancelTimerLocked()
}

func (e *Engine) cancelTimerLocked() {
	if e.timer != nil {
		e.timer.Stop()
		e.timer = nil
	}
}

func (e *Engine) signOut(trigger string) {
	metrics.SessionSignouts.WithLabelValues(trigger).Inc()
	log.Info().Str("session_id", e.sessionID).Str("user_id", e.userID).
		Str("trigger", trigger).Msg("session confirmed abandoned, signing out")

	if err := e.auth.SignOut(context.Background(), e.userID, e.tokenID, trigger); err != nil {
		log.Error().Err(err).Str("session_id", e.sessionID).Msg("failed to sign out session")
	}
}
