package grpc

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/sony/gobreaker/v2"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"

	"github.com/felixgeelhaar/babylon-bindings/pkg/hostapi"
	"github.com/felixgeelhaar/babylon-bindings/pkg/observability"
)

var _ hostapi.Querier = (*Client)(nil)

// ClientConfig configures a Client.
type ClientConfig struct {
	// MaxFailures is the number of consecutive transport failures that
	// open the breaker.
	MaxFailures uint32
	// BreakerTimeout is how long the breaker stays open before probing.
	BreakerTimeout time.Duration
	// CallTimeout bounds each call. Zero means only ctx bounds it.
	CallTimeout time.Duration
	Metrics     observability.Metrics
	Logger      *slog.Logger
}

// DefaultClientConfig returns the breaker settings used when none are given.
func DefaultClientConfig() ClientConfig {
	return ClientConfig{
		MaxFailures:    5,
		BreakerTimeout: 30 * time.Second,
	}
}

// Client is a hostapi.Querier backed by a remote querier service. Transport
// failures and an open breaker surface as an unknown system error.
type Client struct {
	cc      *grpc.ClientConn
	owned   bool
	breaker *gobreaker.CircuitBreaker[*hostapi.SystemResult]
	timeout time.Duration
	metrics observability.Metrics
	logger  *slog.Logger
}

// Dial connects to the querier service at addr. Without transport
// credentials in opts the connection is insecure.
func Dial(addr string, cfg ClientConfig, opts ...grpc.DialOption) (*Client, error) {
	opts = append([]grpc.DialOption{grpc.WithTransportCredentials(insecure.NewCredentials())}, opts...)
	cc, err := grpc.NewClient(addr, opts...)
	if err != nil {
		return nil, fmt.Errorf("querier client: dial %s: %w", addr, err)
	}
	c := NewClient(cc, cfg)
	c.owned = true
	return c, nil
}

// NewClient wraps an existing connection. Close does not close cc.
func NewClient(cc *grpc.ClientConn, cfg ClientConfig) *Client {
	def := DefaultClientConfig()
	if cfg.MaxFailures == 0 {
		cfg.MaxFailures = def.MaxFailures
	}
	if cfg.BreakerTimeout == 0 {
		cfg.BreakerTimeout = def.BreakerTimeout
	}
	if cfg.Metrics == nil {
		cfg.Metrics = observability.NoopMetrics{}
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	c := &Client{
		cc:      cc,
		timeout: cfg.CallTimeout,
		metrics: cfg.Metrics,
		logger:  cfg.Logger,
	}
	c.breaker = gobreaker.NewCircuitBreaker[*hostapi.SystemResult](gobreaker.Settings{
		Name:        cc.Target(),
		MaxRequests: 3,
		Interval:    10 * time.Second,
		Timeout:     cfg.BreakerTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= cfg.MaxFailures
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			c.logger.Info("circuit breaker state changed",
				"target", name,
				"from", from.String(),
				"to", to.String(),
			)
			c.metrics.Gauge(observability.MetricBreakerState, float64(to), observability.T("target", name))
		},
	})
	return c
}

// RawQuery sends request to the remote querier. Transport failures and
// an open breaker come back as SystemError{InvalidResponse} carrying the
// underlying error text.
func (c *Client) RawQuery(ctx context.Context, request []byte) hostapi.SystemResult {
	res, err := c.breaker.Execute(func() (*hostapi.SystemResult, error) {
		return c.invoke(ctx, request)
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			c.logger.Warn("querier unavailable", "state", c.breaker.State().String())
		} else {
			c.logger.Error("remote query failed", "error", err)
		}
		return hostapi.SystemErr(hostapi.NewInvalidResponse(err.Error(), nil))
	}
	return *res
}

func (c *Client) invoke(ctx context.Context, request []byte) (*hostapi.SystemResult, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}
	if id := observability.CorrelationIDFromContext(ctx); id != "" {
		ctx = metadata.AppendToOutgoingContext(ctx, correlationHeader, id)
	}

	resp := new(hostapi.SystemResult)
	if err := c.cc.Invoke(ctx, fullMethod("RawQuery"), &QueryEnvelope{Request: request}, resp, grpc.ForceCodec(JSONCodec{})); err != nil {
		return nil, err
	}
	return resp, nil
}

// State reports the breaker state.
func (c *Client) State() gobreaker.State {
	return c.breaker.State()
}

// Ping sends an empty envelope. Any reply from the host, including the
// invalid-request error it provokes, proves the service is reachable.
func (c *Client) Ping(ctx context.Context) error {
	_, err := c.invoke(ctx, []byte("{}"))
	return err
}

func (c *Client) Close() error {
	if !c.owned {
		return nil
	}
	return c.cc.Close()
}
