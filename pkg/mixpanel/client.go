// Package mixpanel sends track events and engage profile operations to a
// Mixpanel-compatible collector.
package mixpanel

import (
	"context"
	"net/http"
	"strings"
	"sync"

	resty "github.com/go-resty/resty/v2"
	"github.com/hashicorp/go-multierror"
	"github.com/samber/mo"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/brevdev/mixpanel-cli/pkg/command"
	breverrors "github.com/brevdev/mixpanel-cli/pkg/errors"
	"github.com/brevdev/mixpanel-cli/pkg/payload"
)

const defaultBatchConcurrency = 8

// Ack is the collector's answer. Body is kept verbatim and not interpreted.
type Ack struct {
	Command    command.Command
	URL        string
	StatusCode int
	Body       string
}

type Client struct {
	baseURL          string
	token            mo.Option[string]
	batchConcurrency int
	restyClient      *resty.Client
	log              *zap.Logger
}

type Option func(*Client)

func WithLogger(log *zap.Logger) Option {
	return func(c *Client) {
		c.log = log
	}
}

// WithHTTPClient replaces the underlying transport, e.g. for tests.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.restyClient = resty.NewWithClient(hc)
	}
}

func NewClient(cfg Config, opts ...Option) *Client {
	token := mo.None[string]()
	if cfg.Token != "" {
		token = mo.Some(cfg.Token)
	}
	c := &Client{
		baseURL:          strings.TrimSpace(cfg.BaseURL),
		token:            token,
		batchConcurrency: cfg.BatchConcurrency,
		restyClient:      resty.New(),
		log:              zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.batchConcurrency <= 0 {
		c.batchConcurrency = defaultBatchConcurrency
	}

	c.restyClient.SetLogger(c.log.Named("http").Sugar())
	c.restyClient.SetDebug(cfg.DebugHTTP)
	if cfg.Timeout > 0 {
		c.restyClient.SetTimeout(cfg.Timeout)
	}
	return c
}

// HTTPClient exposes the transport so tests can mock it.
func (c *Client) HTTPClient() *http.Client {
	return c.restyClient.GetClient()
}

// Send prepares and performs one request. Pre-flight errors are returned
// before any network activity; network failures and non-2xx answers come
// back as *errors.TransportError. There is no retry.
func (c *Client) Send(ctx context.Context, req RequestConfig) (Ack, error) {
	prepared, err := c.Prepare(req)
	if err != nil {
		return Ack{}, breverrors.WrapAndTrace(err)
	}
	ack, err := c.Do(ctx, prepared)
	if err != nil {
		return Ack{}, breverrors.WrapAndTrace(err)
	}
	return ack, nil
}

func (c *Client) Do(ctx context.Context, p Prepared) (Ack, error) {
	log := c.log.With(zap.String("command", p.Command.String()), zap.String("url", p.URL))

	resp, err := c.restyClient.R().
		SetContext(ctx).
		SetQueryParamsFromValues(p.Query).
		Get(p.URL)
	if err != nil {
		log.Warn("request failed", zap.Error(err))
		return Ack{}, breverrors.WrapAndTrace(&breverrors.TransportError{URL: p.URL, Err: err})
	}
	if !resp.IsSuccess() {
		log.Warn("collector rejected request", zap.Int("status", resp.StatusCode()))
		return Ack{}, breverrors.WrapAndTrace(&breverrors.TransportError{
			URL:        p.URL,
			StatusCode: resp.StatusCode(),
			Err:        breverrors.Errorf("unexpected status %s: %s", resp.Status(), strings.TrimSpace(resp.String())),
		})
	}

	log.Debug("request acknowledged", zap.Int("status", resp.StatusCode()))
	return Ack{
		Command:    p.Command,
		URL:        p.URL,
		StatusCode: resp.StatusCode(),
		Body:       resp.String(),
	}, nil
}

// Track sends one event with the client's default URL and token.
func (c *Client) Track(ctx context.Context, event string, props *payload.Properties) (Ack, error) {
	return c.Send(ctx, RequestConfig{
		Command:    command.Track.String(),
		Event:      event,
		Properties: props,
	})
}

// Engage sends one profile operation with the client's default URL and token.
func (c *Client) Engage(ctx context.Context, cmd command.Command, distinctID string, props *payload.Properties, values ...string) (Ack, error) {
	if !cmd.IsEngage() {
		return Ack{}, breverrors.WrapAndTrace(&breverrors.UnsupportedCommandError{Command: cmd.String()})
	}
	return c.Send(ctx, RequestConfig{
		Command:    cmd.String(),
		DistinctID: distinctID,
		Properties: props,
		Values:     values,
	})
}

// Dispatch is the fire-and-forget form of Send. It returns at once; the
// future resolves with the Ack or rejects with the same error Send would
// return. Cancelling ctx aborts the in-flight request.
func (c *Client) Dispatch(ctx context.Context, req RequestConfig) *mo.Future[Ack] {
	return mo.NewFuture(func(resolve func(Ack), reject func(error)) {
		ack, err := c.Send(ctx, req)
		if err != nil {
			reject(err)
			return
		}
		resolve(ack)
	})
}

// DispatchAll sends every request concurrently. Each request is attempted
// regardless of the others; acks line up with reqs and failed slots are
// zero. The returned error joins every failure.
func (c *Client) DispatchAll(ctx context.Context, reqs []RequestConfig) ([]Ack, error) {
	acks := make([]Ack, len(reqs))

	var mu sync.Mutex
	var allErr *multierror.Error

	g := new(errgroup.Group)
	g.SetLimit(c.batchConcurrency)
	for i, req := range reqs {
		g.Go(func() error {
			ack, err := c.Send(ctx, req)
			if err != nil {
				mu.Lock()
				allErr = multierror.Append(allErr, err)
				mu.Unlock()
				return nil
			}
			acks[i] = ack
			return nil
		})
	}
	_ = g.Wait()

	if err := allErr.ErrorOrNil(); err != nil {
		c.log.Warn("batch finished with failures", zap.Int("failed", len(allErr.Errors)), zap.Int("total", len(reqs)))
		return acks, breverrors.WrapAndTrace(err)
	}
	return acks, nil
}
