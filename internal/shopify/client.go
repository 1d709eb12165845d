package shopify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"eleya-storefront/internal/catalog"
	"eleya-storefront/internal/domain"

	"github.com/go-resty/resty/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sony/gobreaker/v2"
	"go.uber.org/zap"
)

const (
	tokenHeader     = "X-Shopify-Storefront-Access-Token"
	checkoutChannel = "online_store"
	breakerName     = "shopify-storefront"
)

// GraphQLError aggregates the errors array of a GraphQL response
type GraphQLError struct {
	Messages []string
}

func (e *GraphQLError) Error() string {
	return "shopify graphql: " + strings.Join(e.Messages, ", ")
}

// CheckoutError aggregates the userErrors returned by cartCreate
type CheckoutError struct {
	Messages []string
}

func (e *CheckoutError) Error() string {
	return "cart creation failed: " + strings.Join(e.Messages, ", ")
}

// Config configures the Storefront API client
type Config struct {
	StoreDomain     string
	APIVersion      string
	StorefrontToken string
	Timeout         time.Duration
	// Endpoint overrides the URL derived from StoreDomain and APIVersion
	Endpoint string

	BreakerMaxRequests  uint32
	BreakerInterval     time.Duration
	BreakerTimeout      time.Duration
	BreakerFailureRatio float64
	BreakerMinRequests  uint32
}

// URL returns the GraphQL endpoint
func (c Config) URL() string {
	if c.Endpoint != "" {
		return c.Endpoint
	}
	return fmt.Sprintf("https://%s/api/%s/graphql.json", c.StoreDomain, c.APIVersion)
}

func (c Config) withDefaults() Config {
	if c.Timeout <= 0 {
		c.Timeout = 10 * time.Second
	}
	if c.BreakerMaxRequests == 0 {
		c.BreakerMaxRequests = 1
	}
	if c.BreakerInterval <= 0 {
		c.BreakerInterval = 60 * time.Second
	}
	if c.BreakerTimeout <= 0 {
		c.BreakerTimeout = 30 * time.Second
	}
	if c.BreakerFailureRatio <= 0 {
		c.BreakerFailureRatio = 0.5
	}
	if c.BreakerMinRequests == 0 {
		c.BreakerMinRequests = 5
	}
	return c
}

var (
	requestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "shopify_requests_total",
			Help: "Total number of Storefront API requests",
		},
		[]string{"operation", "outcome"},
	)

	requestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "shopify_request_duration_seconds",
			Help:    "Storefront API request latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation"},
	)

	breakerState = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "shopify_circuit_breaker_state",
			Help: "Current state of the Storefront API circuit breaker (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)
)

func init() {
	prometheus.MustRegister(requestsTotal, requestDuration, breakerState)
}

func stateToFloat(state gobreaker.State) float64 {
	switch state {
	case gobreaker.StateClosed:
		return 0
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return -1
	}
}

// Client talks to the Shopify Storefront GraphQL API and implements catalog.Client
type Client struct {
	http     *resty.Client
	breaker  *gobreaker.CircuitBreaker[*resty.Response]
	endpoint string
	logger   *zap.Logger
}

var _ catalog.Client = (*Client)(nil)

// NewClient creates a Storefront API client guarded by a circuit breaker
func NewClient(cfg Config, logger *zap.Logger) *Client {
	cfg = cfg.withDefaults()

	httpClient := resty.New().
		SetTimeout(cfg.Timeout).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json").
		SetHeader(tokenHeader, cfg.StorefrontToken)

	settings := gobreaker.Settings{
		Name:        breakerName,
		MaxRequests: cfg.BreakerMaxRequests,
		Interval:    cfg.BreakerInterval,
		Timeout:     cfg.BreakerTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < cfg.BreakerMinRequests {
				return false
			}
			return float64(counts.TotalFailures)/float64(counts.Requests) >= cfg.BreakerFailureRatio
		},
		// a caller giving up is not a platform failure
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, context.Canceled)
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			logger.Warn("Circuit breaker state change",
				zap.String("breaker", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
			breakerState.WithLabelValues(name).Set(stateToFloat(to))
		},
	}
	breakerState.WithLabelValues(breakerName).Set(0)

	return &Client{
		http:     httpClient,
		breaker:  gobreaker.NewCircuitBreaker[*resty.Response](settings),
		endpoint: cfg.URL(),
		logger:   logger,
	}
}

// Products fetches one page of products matching q in platform order
func (c *Client) Products(ctx context.Context, q catalog.ProductQuery) (*catalog.ProductPage, error) {
	vars := map[string]any{"first": q.First}
	if q.Query != "" {
		vars["query"] = q.Query
	}
	if q.SortKey != "" {
		vars["sortKey"] = string(q.SortKey)
		vars["reverse"] = q.Reverse
	}
	if q.After != "" {
		vars["after"] = q.After
	}

	var data productsData
	if err := c.execute(ctx, "products", productsQuery, vars, &data); err != nil {
		return nil, err
	}

	page := &catalog.ProductPage{
		Products: make([]domain.Product, 0, len(data.Products.Edges)),
		PageInfo: data.Products.PageInfo.toDomain(),
	}
	for _, e := range data.Products.Edges {
		page.Products = append(page.Products, e.Node.toDomain())
	}
	return page, nil
}

// ProductByHandle fetches a single product. A missing handle is catalog.ErrNotFound.
func (c *Client) ProductByHandle(ctx context.Context, handle string) (*domain.Product, error) {
	var data productByHandleData
	if err := c.execute(ctx, "product_by_handle", productByHandleQuery, map[string]any{"handle": handle}, &data); err != nil {
		return nil, err
	}
	if data.ProductByHandle == nil {
		return nil, catalog.ErrNotFound
	}
	p := data.ProductByHandle.toDomain()
	return &p, nil
}

// Vendors returns the distinct vendors of the first products, in first-seen order
func (c *Client) Vendors(ctx context.Context) ([]string, error) {
	var data vendorsData
	if err := c.execute(ctx, "vendors", vendorsQuery, map[string]any{"first": vendorScanSize}, &data); err != nil {
		return nil, err
	}

	seen := make(map[string]struct{}, len(data.Products.Edges))
	vendors := make([]string, 0)
	for _, e := range data.Products.Edges {
		v := e.Node.Vendor
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		vendors = append(vendors, v)
	}
	return vendors, nil
}

// CreateCheckout creates a platform cart from lines and returns its checkout URL
func (c *Client) CreateCheckout(ctx context.Context, lines []domain.CheckoutLine) (string, error) {
	vars := map[string]any{
		"input": map[string]any{"lines": lines},
	}

	var data cartCreateData
	if err := c.execute(ctx, "cart_create", cartCreateMutation, vars, &data); err != nil {
		return "", err
	}

	if len(data.CartCreate.UserErrors) > 0 {
		msgs := make([]string, 0, len(data.CartCreate.UserErrors))
		for _, ue := range data.CartCreate.UserErrors {
			msgs = append(msgs, ue.Message)
		}
		return "", &CheckoutError{Messages: msgs}
	}

	if data.CartCreate.Cart == nil || data.CartCreate.Cart.CheckoutURL == "" {
		return "", errors.New("no checkout URL returned from shopify")
	}

	return withChannel(data.CartCreate.Cart.CheckoutURL)
}

func withChannel(raw string) (string, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("invalid checkout URL %q: %w", raw, err)
	}
	q := u.Query()
	q.Set("channel", checkoutChannel)
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// execute posts one GraphQL document and decodes its data into out
func (c *Client) execute(ctx context.Context, op, query string, vars map[string]any, out any) error {
	start := time.Now()
	err := c.roundTrip(ctx, query, vars, out)
	requestDuration.WithLabelValues(op).Observe(time.Since(start).Seconds())
	requestsTotal.WithLabelValues(op, outcome(err)).Inc()

	if err != nil {
		c.logger.Debug("Storefront request failed",
			zap.String("operation", op),
			zap.Duration("duration", time.Since(start)),
			zap.Error(err),
		)
	}
	return err
}

func (c *Client) roundTrip(ctx context.Context, query string, vars map[string]any, out any) error {
	resp, err := c.breaker.Execute(func() (*resty.Response, error) {
		resp, err := c.http.R().
			SetContext(ctx).
			SetBody(graphQLRequest{Query: query, Variables: vars}).
			Post(c.endpoint)
		if err != nil {
			return nil, err
		}
		// 5xx responses count against the breaker
		if resp.StatusCode() >= http.StatusInternalServerError {
			return nil, fmt.Errorf("server error %d", resp.StatusCode())
		}
		return resp, nil
	})
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		return fmt.Errorf("%w: %w", catalog.ErrUnavailable, err)
	}

	switch {
	case resp.StatusCode() == http.StatusPaymentRequired:
		return catalog.ErrPaymentRequired
	case resp.StatusCode() < 200 || resp.StatusCode() >= 300:
		return fmt.Errorf("%w: status %d", catalog.ErrUnavailable, resp.StatusCode())
	}

	var envelope graphQLResponse
	if err := json.Unmarshal(resp.Body(), &envelope); err != nil {
		return fmt.Errorf("%w: decode response: %w", catalog.ErrUnavailable, err)
	}

	if len(envelope.Errors) > 0 {
		msgs := make([]string, 0, len(envelope.Errors))
		for _, e := range envelope.Errors {
			msgs = append(msgs, e.Message)
		}
		return &GraphQLError{Messages: msgs}
	}

	if len(envelope.Data) == 0 || string(envelope.Data) == "null" {
		return fmt.Errorf("%w: empty data", catalog.ErrUnavailable)
	}
	if err := json.Unmarshal(envelope.Data, out); err != nil {
		return fmt.Errorf("%w: decode data: %w", catalog.ErrUnavailable, err)
	}
	return nil
}

func outcome(err error) string {
	var gqlErr *GraphQLError
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, catalog.ErrPaymentRequired):
		return "payment_required"
	case errors.Is(err, catalog.ErrNotFound):
		return "not_found"
	case errors.As(err, &gqlErr):
		return "graphql_error"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "canceled"
	default:
		return "unavailable"
	}
}
