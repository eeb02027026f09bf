package push

import (
	"context"
	"log/slog"
	"sync/atomic"

	"github.com/afrodite-backend/corectl/internal/model"
)

// Sender performs one send attempt against a single provider. Implemented
// by internal/push/apns, internal/push/fcm, internal/push/webpush.
type Sender interface {
	Provider() Provider
	Send(ctx context.Context, token DeviceToken, key []byte, n Notification) Attempt
}

// wakeQueueSize bounds each provider's backlog of accounts awaiting a
// send pass. Overflow drops the wake and logs; the dropped account's flags
// stay set in the cache, so the next wake re-drains them (spec.md §4.E
// "Backpressure").
const wakeQueueSize = 256

// providerWorker runs one adapter's consume loop against its own bounded
// channel, draining pending flags and running the shared retry state
// machine per notification (spec.md §4.E).
type providerWorker struct {
	sender  Sender
	state   StateProvider
	wake    chan model.AccountIdInternal
	dormant atomic.Bool
	logger  *slog.Logger
}

func newProviderWorker(sender Sender, state StateProvider, logger *slog.Logger) *providerWorker {
	if logger == nil {
		logger = slog.Default()
	}
	return &providerWorker{
		sender: sender,
		state:  state,
		wake:   make(chan model.AccountIdInternal, wakeQueueSize),
		logger: logger,
	}
}

// Wake enqueues accountID for a send pass. Non-blocking: a full queue drops
// the wake and logs, matching spec.md §4.E's backpressure rule.
func (w *providerWorker) Wake(accountID model.AccountIdInternal) {
	if w.dormant.Load() {
		return
	}
	select {
	case w.wake <- accountID:
	default:
		w.logger.Warn("push: wake queue full, dropping", "provider", w.sender.Provider(), "account", accountID)
	}
}

// Run drains the wake channel until ctx is cancelled.
func (w *providerWorker) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case accountID := <-w.wake:
			if w.dormant.Load() {
				continue
			}
			w.sendPending(ctx, accountID)
		}
	}
}

func (w *providerWorker) sendPending(ctx context.Context, accountID model.AccountIdInternal) {
	provider := w.sender.Provider()

	token, ok := w.state.DeviceToken(accountID, provider)
	if !ok {
		return
	}

	var key []byte
	if provider == ProviderAPNs {
		k, ok := w.state.APNsEncryptionKey(accountID)
		if !ok {
			w.logger.Warn("push: no APNs encryption key on file, skipping", "account", accountID)
			return
		}
		key = k
	}

	flags := w.state.DrainPendingFlags(accountID)
	if flags.Empty() {
		return
	}

	for _, flag := range flags.SetFlags() {
		n := w.state.BuildNotification(accountID, flag)

		result := Run(ctx, w.logger, string(provider), func(ctx context.Context) Attempt {
			return w.sender.Send(ctx, token, key, n)
		})

		switch result {
		case ResultRemoveToken:
			if err := w.state.RemoveDeviceToken(accountID, provider); err != nil {
				w.logger.Error("push: remove device token failed", "account", accountID, "error", err)
			}
			return
		case ResultDisableProvider:
			w.dormant.Store(true)
			return
		case ResultCancelled:
			return
		case ResultGaveUp, ResultSuccess:
			// continue to the next flag
		}
	}
}

// Manager owns the three provider workers and fans a single Wake call out
// to every registered adapter; each worker then checks whether the account
// has a device token for its provider before sending.
type Manager struct {
	workers map[Provider]*providerWorker
}

// NewManager wires one worker per non-nil sender.
func NewManager(state StateProvider, logger *slog.Logger, senders ...Sender) *Manager {
	m := &Manager{workers: make(map[Provider]*providerWorker, len(senders))}
	for _, s := range senders {
		if s == nil {
			continue
		}
		m.workers[s.Provider()] = newProviderWorker(s, state, logger)
	}
	return m
}

// Run starts every provider worker; it returns once ctx is cancelled and
// all workers have stopped.
func (m *Manager) Run(ctx context.Context) {
	done := make(chan struct{}, len(m.workers))
	for _, w := range m.workers {
		w := w
		go func() {
			w.Run(ctx)
			done <- struct{}{}
		}()
	}
	for range m.workers {
		<-done
	}
}

// Wake notifies every registered adapter that accountID has pending work.
// Adapters with no device token for the account, or that are dormant,
// no-op cheaply.
func (m *Manager) Wake(accountID model.AccountIdInternal) {
	for _, w := range m.workers {
		w.Wake(accountID)
	}
}
