// Package push implements the provider-agnostic retry state machine shared
// by the three notification adapters (APNs, FCM, Web Push) and the
// per-account send procedure that drains pending flags from the cache
// (spec.md §4.E). Grounded on original_source/crates/server_common/src/
// push_notifications/apns.rs's ApnsSendingLogic (Action/UnusualAction
// enums driving a retry loop around one HTTP call), generalized into one
// shared machine all three adapters parameterize.
package push

import (
	"context"
	"log/slog"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// Outcome classifies what happened on one send attempt, driving the retry
// table in spec.md §4.E.
type Outcome int

const (
	OutcomeSuccess Outcome = iota
	// OutcomeUnregistered is "Unregistered / endpoint-gone": remove the
	// device token from cache and store, then stop.
	OutcomeUnregistered
	// OutcomePermanentConfigError ("bad credentials, unsupported payload"):
	// disable the provider for the rest of the process lifetime, then stop.
	OutcomePermanentConfigError
	// OutcomeThrottled: sleep for the provider-recommended wait, then retry.
	OutcomeThrottled
	// OutcomeTransientServer: exponential backoff with jitter starting at
	// the provider-recommended wait, then retry.
	OutcomeTransientServer
	// OutcomeNetworkError: sleep 1s, retry exactly once, then give up for
	// this notification only.
	OutcomeNetworkError
	// OutcomeUnknown: wait 60s, then retry (last resort).
	OutcomeUnknown
)

// Attempt is one send attempt's result: the Outcome plus the provider's
// recommended wait for Throttled/TransientServer outcomes (zero if the
// provider gave no guidance).
type Attempt struct {
	Outcome        Outcome
	RecommendedWait time.Duration
}

// SendFunc performs one send attempt.
type SendFunc func(ctx context.Context) Attempt

// Result is the terminal disposition of a Run call.
type Result int

const (
	ResultSuccess Result = iota
	ResultRemoveToken
	ResultDisableProvider
	ResultGaveUp // network error retried once and still failed
	ResultCancelled
)

// Run drives send through the retry table until a terminal Result is
// reached or ctx is cancelled. There is no cap on TransientServer retries
// (spec.md describes it as an open-ended exponential backoff); Throttled
// and Unknown likewise retry until success, a terminal outcome, or
// cancellation.
func Run(ctx context.Context, logger *slog.Logger, provider string, send SendFunc) Result {
	if logger == nil {
		logger = slog.Default()
	}

	var bo *backoff.ExponentialBackOff
	networkRetryUsed := false

	for {
		if ctx.Err() != nil {
			return ResultCancelled
		}

		attempt := send(ctx)
		switch attempt.Outcome {
		case OutcomeSuccess:
			return ResultSuccess

		case OutcomeUnregistered:
			return ResultRemoveToken

		case OutcomePermanentConfigError:
			logger.Error("push: permanent config error, disabling provider", "provider", provider)
			return ResultDisableProvider

		case OutcomeThrottled:
			wait := attempt.RecommendedWait
			if wait <= 0 {
				wait = time.Second
			}
			logger.Warn("push: throttled, retrying", "provider", provider, "wait", wait)
			if !sleepOrCancel(ctx, wait) {
				return ResultCancelled
			}

		case OutcomeTransientServer:
			if bo == nil {
				bo = backoff.NewExponentialBackOff()
				bo.InitialInterval = attempt.RecommendedWait
				if bo.InitialInterval <= 0 {
					bo.InitialInterval = backoff.DefaultInitialInterval
				}
				if bo.MaxInterval < bo.InitialInterval {
					bo.MaxInterval = bo.InitialInterval
				}
				bo.MaxElapsedTime = 0 // never stops on its own; spec keeps retrying
				bo.Reset()            // apply InitialInterval to the first NextBackOff
			}
			wait := bo.NextBackOff()
			logger.Warn("push: transient server error, backing off", "provider", provider, "wait", wait)
			if !sleepOrCancel(ctx, wait) {
				return ResultCancelled
			}

		case OutcomeNetworkError:
			if networkRetryUsed {
				logger.Warn("push: network error after retry, giving up on notification", "provider", provider)
				return ResultGaveUp
			}
			networkRetryUsed = true
			if !sleepOrCancel(ctx, time.Second) {
				return ResultCancelled
			}

		case OutcomeUnknown:
			logger.Warn("push: unknown send failure, waiting to retry", "provider", provider)
			if !sleepOrCancel(ctx, 60*time.Second) {
				return ResultCancelled
			}
		}
	}
}

func sleepOrCancel(ctx context.Context, d time.Duration) bool {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return true
	case <-ctx.Done():
		return false
	}
}
