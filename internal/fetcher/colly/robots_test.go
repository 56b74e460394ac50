package collyfetcher

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func fastRobotsTransport(base http.RoundTripper) *robotsTransport {
	rt := newRobotsTransport(base, zap.NewNop())
	rt.backoff = []time.Duration{time.Millisecond, time.Millisecond, time.Millisecond}
	return rt
}

func TestRobotsRetryReturnsAllowAllOnTimeout(t *testing.T) {
	t.Parallel()

	base := &stubRoundTripper{
		results: []roundTripResult{
			{err: context.DeadlineExceeded},
			{err: context.DeadlineExceeded},
			{err: context.DeadlineExceeded},
			{err: context.DeadlineExceeded},
		},
	}
	transport := fastRobotsTransport(base)

	req := httptest.NewRequest(http.MethodGet, "https://www.tnpsc.gov.in/robots.txt", nil)
	resp, err := transport.RoundTrip(req)
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.Equal(t, "User-agent: *\nAllow: /", string(body))
	require.Equal(t, 4, base.calls)
}

func TestRobotsRetryStopsAfterSuccess(t *testing.T) {
	t.Parallel()

	base := &stubRoundTripper{
		results: []roundTripResult{
			{err: context.DeadlineExceeded},
			{resp: httptest.NewRecorder().Result()},
		},
	}
	transport := fastRobotsTransport(base)

	req := httptest.NewRequest(http.MethodGet, "https://www.tnpsc.gov.in/robots.txt", nil)
	resp, err := transport.RoundTrip(req)
	require.NoError(t, err)
	require.NoError(t, resp.Body.Close())
	require.Equal(t, 2, base.calls)
}

func TestRobotsTransportPassesPagesThrough(t *testing.T) {
	t.Parallel()

	base := &stubRoundTripper{results: []roundTripResult{{err: errors.New("connection refused")}}}
	transport := fastRobotsTransport(base)

	req := httptest.NewRequest(http.MethodGet, "https://www.tnpsc.gov.in/english/notifications.html", nil)
	_, err := transport.RoundTrip(req)
	require.ErrorContains(t, err, "connection refused")
	require.Equal(t, 1, base.calls)

	robots := httptest.NewRequest(http.MethodGet, "https://www.tnpsc.gov.in/robots.txt", nil)
	_, err = transport.RoundTrip(robots)
	require.ErrorContains(t, err, "non-transient")
}

type roundTripResult struct {
	resp *http.Response
	err  error
}

type stubRoundTripper struct {
	results []roundTripResult
	calls   int
}

func (s *stubRoundTripper) RoundTrip(_ *http.Request) (*http.Response, error) {
	defer func() { s.calls++ }()
	if len(s.results) == 0 {
		return nil, context.DeadlineExceeded
	}
	idx := s.calls
	if idx >= len(s.results) {
		idx = len(s.results) - 1
	}
	res := s.results[idx]
	return res.resp, res.err
}
