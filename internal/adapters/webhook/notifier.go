// Package webhook delivers booking events to an external collaborator over
// HTTP. The collaborator owns what happens next (emails, payment capture);
// this adapter only guarantees a reasonable delivery attempt.
package webhook

import (
	"bytes"
	"context"
	crand "crypto/rand"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"quickstay/internal/adapters/observability"
	"quickstay/internal/domain"
)

type Notifier struct {
	endpoint string
	hc       *http.Client
	key      string
	rl       *rate.Limiter
}

// New builds a notifier posting to endpoint. rps bounds outbound pressure on
// the collaborator; key is sent as X-API-Key when non-empty.
func New(endpoint, key string, rps int) (*Notifier, error) {
	if endpoint == "" {
		return nil, fmt.Errorf("webhook endpoint is required")
	}
	if rps <= 0 {
		rps = 5
	}
	return &Notifier{
		endpoint: endpoint,
		hc:       &http.Client{Timeout: 20 * time.Second},
		key:      key,
		rl:       rate.NewLimiter(rate.Limit(rps), rps),
	}, nil
}

func (n *Notifier) BookingCreated(ctx context.Context, ev domain.BookingCreatedEvent) error {
	body, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	return n.post(ctx, body)
}

// post delivers with client-side rate limiting and retries on 429 and
// transient 5xx, honoring Retry-After when provided. Non-retryable statuses
// fail immediately; the event is then dropped by the caller after logging.
func (n *Notifier) post(ctx context.Context, body []byte) error {
	if err := n.rl.Wait(ctx); err != nil {
		return err
	}

	var lastErr error
	for i := 0; i < 4; i++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.endpoint, bytes.NewReader(body))
		if err != nil {
			return err
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("User-Agent", "quickstay/1.0")
		if n.key != "" {
			req.Header.Set("X-API-Key", n.key)
		}

		start := time.Now()
		resp, err := n.hc.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			lastErr = err
			if i < 3 && sleepCtx(ctx, backoff(i)) {
				continue
			}
			return lastErr
		}
		observability.ObserveExternal("webhook", "booking-created", resp.StatusCode, time.Since(start))

		switch resp.StatusCode {
		case http.StatusOK, http.StatusCreated, http.StatusAccepted, http.StatusNoContent:
			io.Copy(io.Discard, resp.Body)
			resp.Body.Close()
			return nil

		case http.StatusTooManyRequests, http.StatusInternalServerError,
			http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
			wait := retryAfter(resp)
			resp.Body.Close()
			if wait == 0 {
				wait = backoff(i)
			}
			lastErr = fmt.Errorf("webhook remote %d", resp.StatusCode)
			if i < 3 && sleepCtx(ctx, wait) {
				continue
			}
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return lastErr

		default:
			b, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
			resp.Body.Close()
			return fmt.Errorf("webhook bad status %d: %s", resp.StatusCode, strings.TrimSpace(string(b)))
		}
	}

	return lastErr
}

// sleepCtx waits for d or returns early if ctx is done.
func sleepCtx(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return true
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}

// retryAfter parses Retry-After (seconds or HTTP-date). Returns 0 if absent/invalid.
func retryAfter(resp *http.Response) time.Duration {
	h := resp.Header.Get("Retry-After")
	if h == "" {
		return 0
	}
	if secs, err := strconv.Atoi(strings.TrimSpace(h)); err == nil && secs >= 0 {
		return time.Duration(secs) * time.Second
	}
	if t, err := http.ParseTime(h); err == nil {
		if d := time.Until(t); d > 0 {
			return d
		}
	}
	return 0
}

// backoff returns an exponential delay (200ms, 400ms, 800ms...) with up to
// +50% jitter to avoid thundering herds.
func backoff(i int) time.Duration {
	base := time.Duration(1<<i) * 200 * time.Millisecond
	var b [1]byte
	if _, err := crand.Read(b[:]); err != nil {
		return base
	}
	f := float64(b[0]) / 255.0
	j := time.Duration(0.5 * f * float64(base))
	return base + j
}
