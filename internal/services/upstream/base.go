package upstream

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/sony/gobreaker"

	"VolEdge/internal/domain/models"
	xhttp "VolEdge/pkg/http"
	applogger "VolEdge/pkg/logger"
)

type BreakerConfig struct {
	MaxRequests      uint32
	Interval         time.Duration
	Timeout          time.Duration
	FailureThreshold uint32
}

type Config struct {
	BaseURL  string
	APIKey   string
	Timeout  time.Duration
	Attempts int
	Breaker  BreakerConfig
}

// HTTPServiceBase is the shared JSON-over-HTTP foundation for provider clients.
// Every call passes through a circuit breaker; 4xx answers other than 429 do not count as failures.
type HTTPServiceBase struct {
	name    string
	baseURL string
	apiKey  string
	retries int
	client  *xhttp.Client
	cb      *gobreaker.CircuitBreaker
	l       *applogger.Logger
}

func NewHTTPServiceBase(name string, cfg Config, l *applogger.Logger, opts ...xhttp.ClientOption) *HTTPServiceBase {
	if l == nil {
		l = applogger.Nop()
	}
	l = l.With("component", "upstream."+name)

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	threshold := cfg.Breaker.FailureThreshold
	if threshold == 0 {
		threshold = 5
	}

	st := gobreaker.Settings{
		Name:        name,
		MaxRequests: cfg.Breaker.MaxRequests,
		Interval:    cfg.Breaker.Interval,
		Timeout:     cfg.Breaker.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= threshold
		},
		IsSuccessful: func(err error) bool {
			if err == nil {
				return true
			}
			var se *xhttp.StatusError
			return errors.As(err, &se) && !se.Temporary()
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			l.Warn("circuit state change",
				applogger.String("breaker", name),
				applogger.String("from", from.String()),
				applogger.String("to", to.String()),
			)
		},
	}

	return &HTTPServiceBase{
		name:    name,
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:  cfg.APIKey,
		retries: cfg.Attempts,
		client:  xhttp.NewClient(append([]xhttp.ClientOption{xhttp.WithTimeout(timeout)}, opts...)...),
		cb:      gobreaker.NewCircuitBreaker(st),
		l:       l,
	}
}

// Name is the provider name used for budgeting and metrics.
func (b *HTTPServiceBase) Name() string { return b.name }

// State reports the breaker state: closed, half-open or open.
func (b *HTTPServiceBase) State() string { return b.cb.State().String() }

// GetJSON fetches baseURL+path and decodes the JSON answer into dest.
func (b *HTTPServiceBase) GetJSON(ctx context.Context, path string, query url.Values, dest interface{}) error {
	if b.client == nil || b.baseURL == "" {
		return &models.UpstreamError{Provider: b.name, Err: fmt.Errorf("http client not initialized")}
	}
	var headers map[string]string
	if b.apiKey != "" {
		headers = map[string]string{"X-API-Key": b.apiKey}
	}

	_, err := b.cb.Execute(func() (interface{}, error) {
		return nil, b.client.GetJSON(ctx, &xhttp.RequestOptions{
			URL:     b.baseURL + path,
			Headers: headers,
			Query:   query,
		}, dest)
	})
	if err != nil {
		return &models.UpstreamError{Provider: b.name, Err: fmt.Errorf("get %s: %w", path, err)}
	}
	return nil
}

// GetJSONWithRetry retries transient failures with a linear backoff.
func (b *HTTPServiceBase) GetJSONWithRetry(ctx context.Context, path string, query url.Values, dest interface{}) error {
	attempts := b.retries
	if attempts <= 1 {
		return b.GetJSON(ctx, path, query, dest)
	}
	var err error
	for i := 1; i <= attempts; i++ {
		err = b.GetJSON(ctx, path, query, dest)
		if err == nil || !retryable(err) {
			return err
		}
		if i == attempts {
			break
		}
		b.l.Debug("retrying upstream call",
			applogger.String("path", path),
			applogger.Int("attempt", i),
			applogger.Error(err),
		)
		select {
		case <-time.After(time.Duration(i) * 50 * time.Millisecond):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return err
}

// IsNotFound reports a 404 answer from the provider.
func IsNotFound(err error) bool {
	var se *xhttp.StatusError
	return errors.As(err, &se) && se.Code == 404
}

func retryable(err error) bool {
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	var se *xhttp.StatusError
	if errors.As(err, &se) {
		return se.Temporary()
	}
	return true
}
