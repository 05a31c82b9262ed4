// Package geo resolves the timezone of the machine from its public IP address.
package geo

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	rh "github.com/hashicorp/go-retryablehttp"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// DefaultURL answers with the bare timezone name of the caller's IP address.
const DefaultURL = "http://ip-api.com/line?fields=timezone"

// maxResponseSize bounds the lookup response, a timezone name is a few dozen bytes.
const maxResponseSize = 1024

// ErrEmptyTimezone identifies a lookup that succeeded without naming a timezone.
var ErrEmptyTimezone = errors.New("lookup returned no timezone")

// StatusError is returned when the lookup service answers with a status other than 200.
type StatusError struct {
	StatusCode int
}

func (e StatusError) Error() string {
	return fmt.Sprintf("unexpected status %d %s", e.StatusCode, http.StatusText(e.StatusCode))
}

// Locator looks up the timezone with a single GET request, retried only when retries are configured.
type Locator struct {
	client *rh.Client
	url    string
}

// NewLocator creates a Locator querying url. The request is retried up to retries times on connection errors and
// server errors and every attempt is bounded by timeout.
func NewLocator(url string, retries int, timeout time.Duration) *Locator {
	client := rh.NewClient()
	client.RetryMax = retries
	client.Logger = NewLeveledLogrus(logrus.StandardLogger())
	// Hand the last response back instead of a generic "giving up" error so the status can be reported
	client.ErrorHandler = rh.PassthroughErrorHandler
	client.HTTPClient.Timeout = timeout
	client.HTTPClient.Transport = otelhttp.NewTransport(client.HTTPClient.Transport)

	return &Locator{client: client, url: url}
}

// Timezone returns the timezone name (e.g. Europe/Berlin) of the caller's public IP address.
func (l *Locator) Timezone(ctx context.Context) (string, error) {
	req, err := rh.NewRequestWithContext(ctx, http.MethodGet, l.url, nil)
	if err != nil {
		return "", fmt.Errorf("geo: invalid lookup request: %w", err)
	}

	logrus.WithField("url", l.url).Debug("Looking up timezone")
	resp, err := l.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("geo: timezone lookup failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("geo: timezone lookup failed: %w", StatusError{resp.StatusCode})
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return "", fmt.Errorf("geo: failed to read timezone: %w", err)
	}

	zone := strings.TrimSpace(string(body))
	if zone == "" {
		return "", fmt.Errorf("geo: %w", ErrEmptyTimezone)
	}

	return zone, nil
}
