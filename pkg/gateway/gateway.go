// Package gateway is the authenticated front door for every remote API call.
//
// It attaches the stored bearer token to outgoing requests and transparently
// recovers from credential expiry: the first 401 triggers one refresh-token
// exchange, and the original request is replayed exactly once with the new
// access token. Concurrent 401s share a single in-flight refresh instead of
// racing independent exchange calls against the server.
//
// Callers never see any of this — they get either the final response or an
// error. When recovery is impossible (no refresh token, or the exchange
// itself fails) the stored credentials are cleared and ErrLoginRequired is
// returned; the CLI surfaces that as "run `sofreh login`" exactly once.
//
// Usage:
//
//	resp, err := gateway.Send(httpx.Get(gateway.URL("/cart/")).WithContext(ctx))
package gateway

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/shashiranjanraj/sofreh/app/models"
	"github.com/shashiranjanraj/sofreh/config"
	"github.com/shashiranjanraj/sofreh/pkg/credentials"
	"github.com/shashiranjanraj/sofreh/pkg/event"
	"github.com/shashiranjanraj/sofreh/pkg/httpx"
	"github.com/shashiranjanraj/sofreh/pkg/logger"
	"github.com/shashiranjanraj/sofreh/pkg/metrics"
)

// ErrLoginRequired is returned when the session cannot be recovered.
// Stored credentials have already been cleared by the time callers see it.
var ErrLoginRequired = errors.New("gateway: session expired, login required")

// refreshPath identifies the one endpoint the gateway must never try to
// recover: a 401 from the refresh exchange is terminal.
const refreshPath = "/token/refresh/"

// URL joins a remote API path onto the configured base URL.
func URL(path string) string {
	return config.APIBaseURL() + "/" + strings.TrimLeft(path, "/")
}

// Send executes req with the stored access token attached. One 401 on a
// non-refresh request triggers a single token refresh and a single replay;
// whatever the replay returns is what the caller gets, 401 included.
func Send(req *httpx.Request) (*httpx.Response, error) {
	if access := credentials.Access(); access != "" {
		req.Bearer(access)
	}

	resp, err := req.Send()
	if err != nil {
		metrics.GatewayRequests.WithLabelValues(req.Method(), "error").Inc()
		return nil, err
	}
	metrics.GatewayRequests.WithLabelValues(req.Method(), fmt.Sprint(resp.StatusCode)).Inc()

	if resp.StatusCode != 401 || strings.Contains(req.URL(), refreshPath) {
		return resp, nil
	}

	logger.Debug("gateway: access token rejected, refreshing", "url", req.URL())

	if err := refreshTokens(); err != nil {
		// Terminal: drop the session so the next call starts anonymous.
		if cerr := credentials.Clear(); cerr != nil {
			logger.Warn("gateway: clearing credentials failed", "error", cerr)
		}
		event.Fire("auth.logout", nil)
		return nil, fmt.Errorf("%w: %v", ErrLoginRequired, err)
	}

	// Replay once with the fresh token. A second 401 propagates as-is.
	replay, err := req.Bearer(credentials.Access()).Send()
	if err != nil {
		metrics.GatewayRequests.WithLabelValues(req.Method(), "error").Inc()
		return nil, err
	}
	metrics.GatewayRequests.WithLabelValues(req.Method(), fmt.Sprint(replay.StatusCode)).Inc()
	return replay, nil
}

// ─── Shared refresh ───────────────────────────────────────────────────────────

// refreshState serialises token refreshes: the first expired request performs
// the exchange, every concurrent one waits on the same attempt and shares its
// outcome.
type refreshState struct {
	done chan struct{}
	err  error
}

var (
	refreshMu sync.Mutex
	inflight  *refreshState
)

func refreshTokens() error {
	refreshMu.Lock()
	if inflight != nil {
		waiting := inflight
		refreshMu.Unlock()
		<-waiting.done
		return waiting.err
	}
	attempt := &refreshState{done: make(chan struct{})}
	inflight = attempt
	refreshMu.Unlock()

	attempt.err = exchangeRefreshToken()

	refreshMu.Lock()
	inflight = nil
	refreshMu.Unlock()
	close(attempt.done)

	return attempt.err
}

// exchangeRefreshToken performs the actual POST /token/refresh/ call and
// persists the rotated pair.
func exchangeRefreshToken() error {
	refresh := credentials.Refresh()
	if refresh == "" {
		metrics.TokenRefreshes.WithLabelValues("no_token").Inc()
		return errors.New("no refresh token stored")
	}

	resp, err := httpx.Post(URL(refreshPath)).
		Body(map[string]string{"refresh": refresh}).
		Timeout(15 * time.Second).
		Send()
	if err != nil {
		metrics.TokenRefreshes.WithLabelValues("error").Inc()
		return fmt.Errorf("refresh call: %w", err)
	}
	if !resp.OK() {
		metrics.TokenRefreshes.WithLabelValues("rejected").Inc()
		return fmt.Errorf("refresh rejected with status %d", resp.StatusCode)
	}

	var pair models.TokenPair
	if err := resp.JSON(&pair); err != nil {
		metrics.TokenRefreshes.WithLabelValues("error").Inc()
		return fmt.Errorf("refresh response: %w", err)
	}
	if pair.Access == "" {
		metrics.TokenRefreshes.WithLabelValues("error").Inc()
		return errors.New("refresh response carried no access token")
	}
	// The server may or may not rotate the refresh token.
	if pair.Refresh == "" {
		pair.Refresh = refresh
	}

	if err := credentials.Set(pair.Access, pair.Refresh); err != nil {
		metrics.TokenRefreshes.WithLabelValues("error").Inc()
		return err
	}

	metrics.TokenRefreshes.WithLabelValues("success").Inc()
	logger.Debug("gateway: token pair refreshed")
	return nil
}
