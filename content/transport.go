package content

import (
	"net/http"
	"time"

	"github.com/rs/zerolog"
)

// loggingTransport logs every outbound request made to the content host.
type loggingTransport struct {
	inner http.RoundTripper
	log   zerolog.Logger
}

func (t *loggingTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	start := time.Now()
	resp, err := t.inner.RoundTrip(req)
	elapsed := time.Since(start)
	if err != nil {
		t.log.Error().
			Err(err).
			Str("method", req.Method).
			Str("url", req.URL.String()).
			Dur("duration", elapsed).
			Msg("content request failed")
		return nil, err
	}
	t.log.Debug().
		Str("method", req.Method).
		Str("url", req.URL.String()).
		Int("status", resp.StatusCode).
		Dur("duration", elapsed).
		Msg("content request")
	return resp, nil
}

func newHTTPClient(timeout time.Duration, log zerolog.Logger) *http.Client {
	return &http.Client{
		Timeout:   timeout,
		Transport: &loggingTransport{inner: http.DefaultTransport, log: log},
	}
}
