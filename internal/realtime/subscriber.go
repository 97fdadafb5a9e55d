package realtime

import (
	"math/rand"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/huurnet/huurnet-BE/internal/event"
	"github.com/huurnet/huurnet-BE/internal/metrics"
)

const (
	backoffBase = 500 * time.Millisecond
	backoffCap  = 30 * time.Second
)

// Subscriber opens live per-recipient notification feeds over the event hub.
type Subscriber struct {
	sender event.EventSender
}

func NewSubscriber(sender event.EventSender) *Subscriber {
	return &Subscriber{sender: sender}
}

// Subscribe opens exactly one live feed for the recipient. The caller owns the
// returned Subscription and must Close it on teardown (logout, disposal), or
// the live registration leaks.
func (s *Subscriber) Subscribe(recipientID string) *Subscription {
	sub := &Subscription{
		topic:  event.RecipientTopic(recipientID),
		sender: s.sender,
		out:    make(chan event.Event, 16),
		done:   make(chan struct{}),
	}
	go sub.run()
	return sub
}

// Subscription is one live feed of insert/update/delete events for a single
// recipient. If the underlying channel drops, the subscription re-attaches
// with exponential backoff and jitter; drops are logged as transient channel
// failures and are never fatal.
type Subscription struct {
	topic     string
	sender    event.EventSender
	out       chan event.Event
	done      chan struct{}
	closeOnce sync.Once
}

// Events returns the feed. The channel is closed after Close.
func (sub *Subscription) Events() <-chan event.Event {
	return sub.out
}

// Close tears the subscription down. Safe to call more than once.
func (sub *Subscription) Close() {
	sub.closeOnce.Do(func() {
		close(sub.done)
	})
}

func (sub *Subscription) run() {
	defer close(sub.out)

	attempt := 0
	for {
		inner := make(chan event.Event, 16)
		sub.sender.Register(sub.topic, inner)

		delivered := sub.pump(inner)
		if sub.closed() {
			sub.sender.Unregister(sub.topic, inner)
			return
		}

		// Channel dropped out from under us.
		metrics.ChannelFailures.Inc()
		if delivered {
			attempt = 0
		}
		wait := backoffDelay(attempt)
		attempt++
		log.Warn().Str("topic", sub.topic).Dur("retry_in", wait).
			Msg("transient channel failure, re-attaching subscription")

		select {
		case <-time.After(wait):
		case <-sub.done:
			return
		}
	}
}

// pump forwards events from the hub channel until it is closed or the
// subscription ends. It reports whether at least one event came through,
// which resets the backoff counter.
func (sub *Subscription) pump(inner chan event.Event) bool {
	delivered := false
	for {
		select {
		case ev, ok := <-inner:
			if !ok {
				return delivered
			}
			delivered = true
			select {
			case sub.out <- ev:
			case <-sub.done:
				return delivered
			}
		case <-sub.done:
			return delivered
		}
	}
}

func (sub *Subscription) closed() bool {
	select {
	case <-sub.done:
		return true
	default:
		return false
	}
}

// backoffDelay returns base*2^attempt with ±50% jitter, capped.
func backoffDelay(attempt int) time.Duration {
	d := backoffBase << uint(attempt)
	if d > backoffCap || d <= 0 {
		d = backoffCap
	}
	jitter := time.Duration(rand.Int63n(int64(d)))
	return d/2 + jitter/2
}
