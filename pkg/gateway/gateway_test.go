package gateway_test

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shashiranjanraj/sofreh/pkg/credentials"
	"github.com/shashiranjanraj/sofreh/pkg/gateway"
	"github.com/shashiranjanraj/sofreh/pkg/httpx"
	"github.com/shashiranjanraj/sofreh/pkg/testkit"
)

func TestSend_AttachesBearer(t *testing.T) {
	testkit.TempDataDir(t)
	testkit.SeedCredentials(t, "access-1", "refresh-1")

	tr := testkit.Install(t,
		testkit.Stub{Method: "GET", Path: "/me/", Body: `{"id":1,"username":"ali","role":"customer"}`},
	)

	resp, err := gateway.Send(httpx.Get(gateway.URL("/me/")))
	require.NoError(t, err)
	assert.True(t, resp.OK())

	calls := tr.Calls()
	require.Len(t, calls, 1)
	assert.Equal(t, "access-1", calls[0].Bearer)
}

func TestSend_AnonymousHasNoBearer(t *testing.T) {
	testkit.TempDataDir(t)

	tr := testkit.Install(t,
		testkit.Stub{Method: "GET", Path: "/foods/", Body: `[]`},
	)

	_, err := gateway.Send(httpx.Get(gateway.URL("/foods/")))
	require.NoError(t, err)

	calls := tr.Calls()
	require.Len(t, calls, 1)
	assert.Empty(t, calls[0].Bearer)
}

func TestSend_RefreshAndReplayOn401(t *testing.T) {
	testkit.TempDataDir(t)
	testkit.SeedCredentials(t, "stale-access", "refresh-1")

	tr := testkit.Install(t,
		testkit.Stub{Method: "GET", Path: "/cart/", Status: 401, Body: `{"detail":"token expired"}`},
		testkit.Stub{Method: "POST", Path: "/token/refresh/", Body: `{"access":"fresh-access","refresh":"refresh-2"}`},
		testkit.Stub{Method: "GET", Path: "/cart/", Body: `{"items":[]}`},
	)

	resp, err := gateway.Send(httpx.Get(gateway.URL("/cart/")))
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)
	tr.AssertAllConsumed(t)

	calls := tr.Calls()
	require.Len(t, calls, 3)
	assert.Equal(t, "stale-access", calls[0].Bearer)
	assert.Contains(t, calls[1].Body, `"refresh":"refresh-1"`)
	assert.Equal(t, "fresh-access", calls[2].Bearer, "replay must carry the new token")

	// The rotated pair was persisted.
	assert.Equal(t, "fresh-access", credentials.Access())
	assert.Equal(t, "refresh-2", credentials.Refresh())
}

func TestSend_RefreshKeepsOldTokenWhenNotRotated(t *testing.T) {
	testkit.TempDataDir(t)
	testkit.SeedCredentials(t, "stale-access", "refresh-1")

	testkit.Install(t,
		testkit.Stub{Method: "GET", Path: "/me/", Status: 401},
		testkit.Stub{Method: "POST", Path: "/token/refresh/", Body: `{"access":"fresh-access"}`},
		testkit.Stub{Method: "GET", Path: "/me/", Body: `{"id":1}`},
	)

	_, err := gateway.Send(httpx.Get(gateway.URL("/me/")))
	require.NoError(t, err)
	assert.Equal(t, "refresh-1", credentials.Refresh())
}

func TestSend_RefreshFailureClearsSession(t *testing.T) {
	testkit.TempDataDir(t)
	testkit.SeedCredentials(t, "stale-access", "dead-refresh")

	tr := testkit.Install(t,
		testkit.Stub{Method: "GET", Path: "/cart/", Status: 401},
		testkit.Stub{Method: "POST", Path: "/token/refresh/", Status: 401, Body: `{"detail":"refresh expired"}`},
	)

	_, err := gateway.Send(httpx.Get(gateway.URL("/cart/")))
	require.Error(t, err)
	assert.True(t, errors.Is(err, gateway.ErrLoginRequired))

	// Credentials are gone: the next operation starts anonymous.
	assert.True(t, credentials.Pair().Empty())

	// The original request was never replayed.
	assert.Equal(t, 1, tr.CallCount("GET", "/cart/"))
}

func TestSend_NoRefreshTokenMeansLoginRequired(t *testing.T) {
	testkit.TempDataDir(t)
	testkit.SeedCredentials(t, "stale-access", "")

	tr := testkit.Install(t,
		testkit.Stub{Method: "GET", Path: "/cart/", Status: 401},
	)

	_, err := gateway.Send(httpx.Get(gateway.URL("/cart/")))
	assert.True(t, errors.Is(err, gateway.ErrLoginRequired))
	assert.Equal(t, 0, tr.CallCount("POST", "/token/refresh/"))
}

func TestSend_SecondUnauthorizedPropagates(t *testing.T) {
	testkit.TempDataDir(t)
	testkit.SeedCredentials(t, "stale-access", "refresh-1")

	tr := testkit.Install(t,
		testkit.Stub{Method: "GET", Path: "/me/", Status: 401},
		testkit.Stub{Method: "POST", Path: "/token/refresh/", Body: `{"access":"fresh-access","refresh":"refresh-2"}`},
		testkit.Stub{Method: "GET", Path: "/me/", Status: 401, Body: `{"detail":"still no"}`},
	)

	resp, err := gateway.Send(httpx.Get(gateway.URL("/me/")))
	require.NoError(t, err)
	assert.Equal(t, 401, resp.StatusCode, "second 401 must reach the caller as-is")
	assert.Equal(t, 1, tr.CallCount("POST", "/token/refresh/"), "no refresh loop")
}

func TestSend_NonAuthFailuresPropagateUntouched(t *testing.T) {
	testkit.TempDataDir(t)
	testkit.SeedCredentials(t, "access-1", "refresh-1")

	tr := testkit.Install(t,
		testkit.Stub{Method: "POST", Path: "/orders/", Status: 500, Body: `{"detail":"boom"}`},
	)

	resp, err := gateway.Send(httpx.Post(gateway.URL("/orders/")).Body(map[string]int{"restaurant": 1}))
	require.NoError(t, err)
	assert.Equal(t, 500, resp.StatusCode)
	assert.Equal(t, 0, tr.CallCount("POST", "/token/refresh/"))
	assert.Equal(t, 1, tr.CallCount("POST", "/orders/"), "5xx is never retried")
}

// roundTripFunc adapts a function to http.RoundTripper for the tests that
// need behaviour no static stub can script.
type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(r *http.Request) (*http.Response, error) { return f(r) }

func jsonResponse(req *http.Request, status int, body string) *http.Response {
	h := make(http.Header)
	h.Set("Content-Type", "application/json")
	return &http.Response{
		StatusCode: status,
		Header:     h,
		Body:       io.NopCloser(strings.NewReader(body)),
		Request:    req,
	}
}

// TestSend_ConcurrentExpiryShareOneRefresh drives N parallel requests into a
// 401 and verifies the refresh exchange runs exactly once. The refresh
// handler blocks until every initial 401 has been served, so all N requests
// are provably waiting on the same attempt.
func TestSend_ConcurrentExpiryShareOneRefresh(t *testing.T) {
	testkit.TempDataDir(t)
	testkit.SeedCredentials(t, "stale-access", "refresh-1")

	const n = 8
	var (
		refreshCalls atomic.Int64
		initial401s  sync.WaitGroup
	)
	initial401s.Add(n)

	httpx.DefaultClient.Transport = roundTripFunc(func(req *http.Request) (*http.Response, error) {
		switch {
		case strings.HasSuffix(req.URL.Path, "/token/refresh/"):
			initial401s.Wait()
			refreshCalls.Add(1)
			return jsonResponse(req, 200, `{"access":"fresh-access","refresh":"refresh-2"}`), nil
		case req.Header.Get("Authorization") == "Bearer fresh-access":
			return jsonResponse(req, 200, `{"id":1}`), nil
		default:
			initial401s.Done()
			return jsonResponse(req, 401, `{"detail":"expired"}`), nil
		}
	})
	t.Cleanup(httpx.ResetTransport)

	var wg sync.WaitGroup
	errs := make([]error, n)
	codes := make([]int, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			resp, err := gateway.Send(httpx.Get(gateway.URL(fmt.Sprintf("/me/?i=%d", i))))
			if err != nil {
				errs[i] = err
				return
			}
			codes[i] = resp.StatusCode
		}(i)
	}
	wg.Wait()

	for i := 0; i < n; i++ {
		require.NoError(t, errs[i])
		assert.Equal(t, 200, codes[i])
	}
	assert.Equal(t, int64(1), refreshCalls.Load(), "concurrent 401s must share one refresh")
}
