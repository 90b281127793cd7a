package transport

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/alexisbeaulieu97/xyzplot/internal/codec"
	"github.com/alexisbeaulieu97/xyzplot/internal/logger"
	xyzerrors "github.com/alexisbeaulieu97/xyzplot/pkg/errors"
)

// QueuePath is the host route that accepts graph submissions.
const QueuePath = "/prompt"

const (
	defaultTimeout = 20 * time.Second
	defaultRetries = 3
	defaultBackoff = 100 * time.Millisecond
)

// Options configures an HTTPClient.
type Options struct {
	// Host and Port locate the execution host on the loopback interface.
	Host    string
	Port    int
	Timeout time.Duration
	// Retries bounds how many times a request is re-sent after a transport failure;
	// negative selects the default of 3. HTTP status codes are never retried.
	Retries int
	Backoff time.Duration
	Logger  *logger.Logger
	// Client overrides the pooled client, mainly for tests.
	Client *http.Client
}

// HTTPClient is a pooled, retrying Submitter for the host's queue endpoint.
type HTTPClient struct {
	endpoint string
	client   *http.Client
	retries  int
	backoff  time.Duration
	log      *logger.Logger
}

var _ Submitter = (*HTTPClient)(nil)

// BaseURL builds the loopback base URL, bracketing IPv6 literals.
func BaseURL(host string, port int) string {
	return "http://" + net.JoinHostPort(strings.Trim(host, "[]"), strconv.Itoa(port))
}

// NewHTTPClient creates a client with its own connection pool. Proxies are never used:
// the host is always reached directly.
func NewHTTPClient(opts Options) *HTTPClient {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	retries := opts.Retries
	if retries < 0 {
		retries = defaultRetries
	}
	wait := opts.Backoff
	if wait <= 0 {
		wait = defaultBackoff
	}

	client := opts.Client
	if client == nil {
		client = &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				Proxy:               nil,
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		}
	}

	return &HTTPClient{
		endpoint: BaseURL(opts.Host, opts.Port) + QueuePath,
		client:   client,
		retries:  retries,
		backoff:  wait,
		log:      opts.Logger.Component("transport"),
	}
}

// Endpoint returns the queue URL requests are sent to.
func (c *HTTPClient) Endpoint() string {
	return c.endpoint
}

// Submit posts the submission. A non-200 answer fails immediately with a TransportError
// carrying the response body; connection-level failures are retried with exponential
// backoff before failing the same way.
func (c *HTTPClient) Submit(ctx context.Context, submission Submission) error {
	if ctx == nil {
		ctx = context.Background()
	}

	body, err := codec.JSON.Marshal(submission)
	if err != nil {
		return fmt.Errorf("encode submission: %w", err)
	}

	schedule := backoff.NewExponentialBackOff()
	schedule.InitialInterval = c.backoff
	schedule.Multiplier = 2
	schedule.RandomizationFactor = 0
	schedule.MaxElapsedTime = 0
	policy := backoff.WithContext(backoff.WithMaxRetries(schedule, uint64(c.retries)), ctx)

	attempt := func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
		if err != nil {
			return backoff.Permanent(err)
		}
		req.Header.Set("Content-Type", "application/json")

		resp, err := c.client.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return backoff.Permanent(ctx.Err())
			}
			return err
		}
		defer resp.Body.Close()

		payload, _ := io.ReadAll(resp.Body)
		if resp.StatusCode != http.StatusOK {
			return backoff.Permanent(xyzerrors.NewTransportError(resp.StatusCode, string(payload), nil))
		}
		return nil
	}

	notify := func(err error, wait time.Duration) {
		c.log.WithFields(map[string]any{"endpoint": c.endpoint, "retry_in": wait.String()}).Error(err, "submission failed, retrying")
	}

	err = backoff.RetryNotify(attempt, policy, notify)
	if err == nil {
		return nil
	}

	var transportErr *xyzerrors.TransportError
	if errors.As(err, &transportErr) {
		return err
	}
	return xyzerrors.NewTransportError(0, "", err)
}

// Close releases idle pooled connections.
func (c *HTTPClient) Close() {
	c.client.CloseIdleConnections()
}
