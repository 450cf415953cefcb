/*
Package rpcclient implements the JSON-RPC 2.0 transport for NEAR nodes.

Client is safe for concurrent use. Every call is retried on transient
failures (transport errors, HTTP 5xx, retryable server errors) with
exponential backoff; everything else is classified into the typed errors of
the nearrpc package and returned on the first attempt.
*/
package rpcclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"time"

	"github.com/jonboulle/clockwork"
	"go.uber.org/atomic"
	"go.uber.org/zap"

	"github.com/r-near/near-kit-go/pkg/nearrpc"
)

const (
	defaultDialTimeout    = 4 * time.Second
	defaultRequestTimeout = 10 * time.Second
	defaultMaxRetries     = 3
	defaultInitialBackoff = 500 * time.Millisecond
	defaultMaxBackoff     = 30 * time.Second
)

// ErrRetriesExhausted is wrapped into the error returned when all attempts
// at a retryable call have failed.
var ErrRetriesExhausted = errors.New("retries exhausted")

// Client represents the middleman for executing JSON RPC calls to remote
// NEAR RPC nodes. Client is thread-safe and can be used from multiple
// goroutines.
type Client struct {
	cli      *http.Client
	endpoint *url.URL
	opts     Options
	log      *zap.Logger
	clock    clockwork.Clock
	requestF func(ctx context.Context, r *nearrpc.Request) (*nearrpc.Response, error)

	latestReqID *atomic.Uint64
	// getNextRequestID returns an ID to be used for the subsequent request
	// creation. It is defined on Client, so that our testing code can
	// override this method for the sake of more predictable request IDs
	// generation behavior.
	getNextRequestID func() uint64
}

// Options defines options for the RPC client. All values are optional and
// get sensible defaults when zero.
type Options struct {
	DialTimeout    time.Duration
	RequestTimeout time.Duration
	// MaxRetries is the number of additional attempts made after the first
	// one fails with a retryable error.
	MaxRetries int
	// DisableRetries turns the retry loop off entirely, leaving MaxRetries
	// distinguishable from its zero value.
	DisableRetries bool
	InitialBackoff time.Duration
	MaxBackoff     time.Duration
	// Limit total number of connections per host. No limit by default.
	MaxConnsPerHost int
	// Logger receives per-attempt failure records. Nop when unset.
	Logger *zap.Logger
	// Clock drives backoff sleeps; tests substitute a fake one.
	Clock clockwork.Clock
}

// httpError is returned for responses whose body did not parse as JSON-RPC;
// the status code decides retryability.
type httpError struct {
	status int
}

func (e *httpError) Error() string {
	return fmt.Sprintf("HTTP %d/%s", e.status, http.StatusText(e.status))
}

// New returns a new Client ready to use.
func New(endpoint string, opts Options) (*Client, error) {
	cl := new(Client)
	if err := initClient(cl, endpoint, opts); err != nil {
		return nil, err
	}
	return cl, nil
}

func initClient(cl *Client, endpoint string, opts Options) error {
	url, err := url.Parse(endpoint)
	if err != nil {
		return err
	}
	if url.Scheme != "http" && url.Scheme != "https" {
		return fmt.Errorf("unsupported URL scheme %q", url.Scheme)
	}

	if opts.DialTimeout <= 0 {
		opts.DialTimeout = defaultDialTimeout
	}
	if opts.RequestTimeout <= 0 {
		opts.RequestTimeout = defaultRequestTimeout
	}
	if opts.MaxRetries <= 0 {
		opts.MaxRetries = defaultMaxRetries
	}
	if opts.DisableRetries {
		opts.MaxRetries = 0
	}
	if opts.InitialBackoff <= 0 {
		opts.InitialBackoff = defaultInitialBackoff
	}
	if opts.MaxBackoff <= 0 {
		opts.MaxBackoff = defaultMaxBackoff
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Clock == nil {
		opts.Clock = clockwork.NewRealClock()
	}

	cl.cli = &http.Client{
		Transport: &http.Transport{
			DialContext: (&net.Dialer{
				Timeout: opts.DialTimeout,
			}).DialContext,
			MaxConnsPerHost: opts.MaxConnsPerHost,
		},
		Timeout: opts.RequestTimeout,
	}
	cl.endpoint = url
	cl.opts = opts
	cl.log = opts.Logger
	cl.clock = opts.Clock
	cl.latestReqID = atomic.NewUint64(0)
	cl.getNextRequestID = (cl).getRequestID
	cl.requestF = cl.makeHTTPRequest
	return nil
}

func (c *Client) getRequestID() uint64 {
	return c.latestReqID.Inc()
}

// Endpoint returns the URL the client talks to.
func (c *Client) Endpoint() string {
	return c.endpoint.String()
}

// Close closes unused underlying network connections.
func (c *Client) Close() {
	c.cli.CloseIdleConnections()
}

// Clone returns a copy of the client with an independently seeded request
// identifier sequence. The underlying HTTP transport is shared.
func (c *Client) Clone() *Client {
	clone := *c
	clone.latestReqID = atomic.NewUint64(0)
	clone.getNextRequestID = clone.getRequestID
	clone.requestF = clone.makeHTTPRequest
	return &clone
}

// Call performs one JSON-RPC method call, retrying retryable failures with
// exponential backoff, and unmarshals the result into v (skipped when v is
// nil). Errors reported by the node come back classified into the typed
// errors of the nearrpc package.
func (c *Client) Call(ctx context.Context, method string, params any, v any) error {
	if params == nil {
		params = struct{}{}
	}
	var lastErr error
	for attempt := 0; attempt <= c.opts.MaxRetries; attempt++ {
		if attempt > 0 {
			incRetries(method)
			if err := c.sleep(ctx, c.backoff(attempt-1)); err != nil {
				return err
			}
		}
		var err error
		raw, err := c.requestF(ctx, nearrpc.NewRequest(c.getNextRequestID(), method, params))
		if err != nil {
			// Transport-level failure: retry unless the context is done or
			// the server answered with a non-5xx status.
			incRequests(method, "error")
			if ctx.Err() != nil || !transportRetryable(err) {
				return err
			}
		} else if raw.Error != nil {
			incRequests(method, "error")
			err = nearrpc.ClassifyError(raw.Error)
			if ctx.Err() != nil || !nearrpc.IsRetryable(err) {
				return err
			}
		} else {
			incRequests(method, "ok")
			if v == nil || raw.Result == nil {
				return nil
			}
			return json.Unmarshal(raw.Result, v)
		}
		c.log.Debug("retryable RPC failure",
			zap.String("method", method),
			zap.Int("attempt", attempt),
			zap.Error(err))
		lastErr = err
	}
	return fmt.Errorf("%w after %d attempts: %w", ErrRetriesExhausted, c.opts.MaxRetries+1, lastErr)
}

// backoff returns the delay before retry number n (zero-based), doubling
// from InitialBackoff up to MaxBackoff.
func (c *Client) backoff(n int) time.Duration {
	d := c.opts.InitialBackoff
	for i := 0; i < n && d < c.opts.MaxBackoff; i++ {
		d *= 2
	}
	if d > c.opts.MaxBackoff {
		d = c.opts.MaxBackoff
	}
	return d
}

func (c *Client) sleep(ctx context.Context, d time.Duration) error {
	select {
	case <-c.clock.After(d):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// transportRetryable reports whether a pre-envelope failure may be
// repeated: connection and timeout errors qualify, HTTP statuses only when
// they are 5xx.
func transportRetryable(err error) bool {
	var httpErr *httpError
	if errors.As(err, &httpErr) {
		return httpErr.status >= 500
	}
	return true
}

func (c *Client) makeHTTPRequest(ctx context.Context, r *nearrpc.Request) (*nearrpc.Response, error) {
	var (
		buf = new(bytes.Buffer)
		raw = new(nearrpc.Response)
	)

	if err := json.NewEncoder(buf).Encode(r); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint.String(), buf)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := c.cli.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	// The node might send us a proper JSON anyway, so look there first and
	// if it parses, it has more relevant data than the HTTP error code.
	err = json.NewDecoder(resp.Body).Decode(raw)
	if err != nil {
		if resp.StatusCode != http.StatusOK {
			return nil, &httpError{status: resp.StatusCode}
		}
		return nil, fmt.Errorf("JSON decoding: %w", err)
	}
	return raw, nil
}
