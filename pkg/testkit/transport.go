// Package testkit provides a scripted HTTP transport and environment helpers
// for testing code that talks to the remote restaurant API.
//
// A test installs a Transport with the responses it expects the code under
// test to consume, runs the code, then asserts every stub was used:
//
//	tr := testkit.Install(t,
//	    testkit.Stub{Method: "GET", Path: "/cart/", Status: 200, Body: `{"items":[]}`},
//	)
//	// ... exercise the client ...
//	tr.AssertAllConsumed(t)
package testkit

import (
	"io"
	"net/http"
	"strings"
	"sync"
	"testing"

	"github.com/shashiranjanraj/sofreh/pkg/httpx"
)

// ─── Stubs ────────────────────────────────────────────────────────────────────

// Stub describes one scripted response for an expected outgoing request.
type Stub struct {
	Method string // "" matches any method
	Path   string // matched against the request URL path; "" matches any
	Status int    // defaults to 200
	Body   string // response body, usually JSON

	// Repeat allows the stub to serve more than one matching request.
	// Zero means exactly one.
	Repeat int
}

func (s Stub) matches(req *http.Request) bool {
	if s.Method != "" && !strings.EqualFold(s.Method, req.Method) {
		return false
	}
	if s.Path != "" && !strings.HasSuffix(req.URL.Path, s.Path) {
		return false
	}
	return true
}

// Call records one request the transport served.
type Call struct {
	Method string
	Path   string
	Bearer string // Authorization header without the "Bearer " prefix
	Body   string
}

// ─── Transport ────────────────────────────────────────────────────────────────

// Transport implements http.RoundTripper.  It matches outgoing requests
// against its stubs in order and returns synthetic responses instead of
// making real network calls.  Unmatched requests get a 404.
type Transport struct {
	mu    sync.Mutex
	stubs []*stubEntry
	calls []Call
}

type stubEntry struct {
	stub Stub
	used int
}

// Install builds a Transport from stubs, installs it on the shared httpx
// client, and registers cleanup to restore the real transport.
func Install(t *testing.T, stubs ...Stub) *Transport {
	t.Helper()
	tr := New(stubs...)
	httpx.DefaultClient.Transport = tr
	t.Cleanup(httpx.ResetTransport)
	return tr
}

// New builds a Transport without touching the shared client.
func New(stubs ...Stub) *Transport {
	tr := &Transport{}
	for _, s := range stubs {
		s := s
		tr.stubs = append(tr.stubs, &stubEntry{stub: s})
	}
	return tr
}

// Append adds more stubs after construction.
func (tr *Transport) Append(stubs ...Stub) {
	tr.mu.Lock()
	defer tr.mu.Unlock()
	for _, s := range stubs {
		s := s
		tr.stubs = append(tr.stubs, &stubEntry{stub: s})
	}
}

// RoundTrip intercepts the outgoing request and returns a synthetic response.
func (tr *Transport) RoundTrip(req *http.Request) (*http.Response, error) {
	tr.mu.Lock()
	defer tr.mu.Unlock()

	tr.calls = append(tr.calls, recordCall(req))

	for _, e := range tr.stubs {
		if e.used > e.stub.Repeat {
			continue
		}
		if !e.stub.matches(req) {
			continue
		}
		e.used++
		return synthResponse(req, e.stub), nil
	}

	return &http.Response{
		StatusCode: http.StatusNotFound,
		Status:     "404 Not Found",
		Header:     make(http.Header),
		Body:       io.NopCloser(strings.NewReader(`{"detail":"no stub configured"}`)),
		Request:    req,
	}, nil
}

// Calls returns a copy of every request served so far, in order.
func (tr *Transport) Calls() []Call {
	tr.mu.Lock()
	defer tr.mu.Unlock()
	out := make([]Call, len(tr.calls))
	copy(out, tr.calls)
	return out
}

// CallCount returns how many served requests matched method and path suffix.
// Empty method matches any.
func (tr *Transport) CallCount(method, path string) int {
	n := 0
	for _, c := range tr.Calls() {
		if method != "" && !strings.EqualFold(method, c.Method) {
			continue
		}
		if path != "" && !strings.HasSuffix(c.Path, path) {
			continue
		}
		n++
	}
	return n
}

// AssertAllConsumed fails the test if any stub was never matched.
func (tr *Transport) AssertAllConsumed(t *testing.T) {
	t.Helper()
	tr.mu.Lock()
	defer tr.mu.Unlock()
	for _, e := range tr.stubs {
		if e.used == 0 {
			t.Errorf("testkit: stub %s %s was never called", e.stub.Method, e.stub.Path)
		}
	}
}

// ─── Helpers ──────────────────────────────────────────────────────────────────

func recordCall(req *http.Request) Call {
	c := Call{
		Method: req.Method,
		Path:   req.URL.Path,
		Bearer: strings.TrimPrefix(req.Header.Get("Authorization"), "Bearer "),
	}
	if req.Body != nil {
		b, _ := io.ReadAll(req.Body)
		c.Body = string(b)
	}
	return c
}

func synthResponse(req *http.Request, s Stub) *http.Response {
	code := s.Status
	if code == 0 {
		code = http.StatusOK
	}
	header := make(http.Header)
	header.Set("Content-Type", "application/json")
	return &http.Response{
		StatusCode: code,
		Status:     http.StatusText(code),
		Header:     header,
		Body:       io.NopCloser(strings.NewReader(s.Body)),
		Request:    req,
	}
}
