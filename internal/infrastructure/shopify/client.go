package shopify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/outboardpro/catalog/internal/domain"
	"github.com/outboardpro/catalog/internal/observability"
	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"
)

const (
	maxAttempts     = 3
	maxPages        = 200
	defaultPageSize = 50
)

// ClientConfig holds Storefront API client settings
type ClientConfig struct {
	Endpoint          string
	Token             string
	PageSize          int
	Timeout           time.Duration
	RequestsPerSecond float64
}

// Client handles communication with the Storefront GraphQL API
type Client struct {
	httpClient  *http.Client
	endpoint    string
	token       string
	pageSize    int
	rateLimiter *rate.Limiter
	backoff     func(attempt int) time.Duration
	debug       bool
}

// EndpointURL builds the GraphQL endpoint for a shop domain.
// A domain that already carries a scheme is used as the base URL.
func EndpointURL(shopDomain, apiVersion string) string {
	base := strings.TrimRight(shopDomain, "/")
	if !strings.HasPrefix(base, "http://") && !strings.HasPrefix(base, "https://") {
		base = "https://" + base
	}
	return fmt.Sprintf("%s/api/%s/graphql.json", base, apiVersion)
}

// NewClient creates a new Storefront API client
func NewClient(cfg ClientConfig) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	pageSize := cfg.PageSize
	if pageSize <= 0 || pageSize > 250 {
		pageSize = defaultPageSize
	}
	rps := cfg.RequestsPerSecond
	if rps <= 0 {
		rps = 2
	}

	return &Client{
		httpClient:  &http.Client{Timeout: timeout},
		endpoint:    cfg.Endpoint,
		token:       cfg.Token,
		pageSize:    pageSize,
		rateLimiter: rate.NewLimiter(rate.Limit(rps), 4),
		backoff:     exponentialBackoff,
	}
}

// SetDebug enables logging of raw response bodies
func (c *Client) SetDebug(debug bool) {
	c.debug = debug
}

// FetchProduct fetches one product by handle and decodes it
func (c *Client) FetchProduct(ctx context.Context, handle string) (*domain.RawProduct, error) {
	node, err := c.QueryProduct(ctx, handle)
	if err != nil {
		return nil, err
	}
	raw, skipped := DecodeProductNode(node)
	reportSkipped(skipped)
	return &raw, nil
}

// FetchProducts fetches every product page and decodes the nodes
func (c *Client) FetchProducts(ctx context.Context) ([]domain.RawProduct, error) {
	nodes, err := c.QueryProducts(ctx)
	if err != nil {
		return nil, err
	}
	raws := make([]domain.RawProduct, 0, len(nodes))
	for i := range nodes {
		raw, skipped := DecodeProductNode(&nodes[i])
		reportSkipped(skipped)
		raws = append(raws, raw)
	}
	return raws, nil
}

// QueryProduct runs the single-product query
func (c *Client) QueryProduct(ctx context.Context, handle string) (*ProductNode, error) {
	var resp GraphQLResponse[ProductQueryData]
	vars := map[string]any{"handle": handle}
	if err := c.execute(ctx, "product", productQuery, vars, &resp); err != nil {
		return nil, err
	}
	if resp.Data.Product == nil {
		return nil, fmt.Errorf("%w: %s", domain.ErrProductNotFound, handle)
	}
	return resp.Data.Product, nil
}

// QueryProducts runs the list query, following pageInfo cursors
func (c *Client) QueryProducts(ctx context.Context) ([]ProductNode, error) {
	var nodes []ProductNode
	var after *string
	seen := make(map[string]bool)

	for page := 0; page < maxPages; page++ {
		var resp GraphQLResponse[ProductsQueryData]
		vars := map[string]any{"first": c.pageSize, "after": after}
		if err := c.execute(ctx, "products", productsQuery, vars, &resp); err != nil {
			return nil, err
		}

		for _, edge := range resp.Data.Products.Edges {
			nodes = append(nodes, edge.Node)
		}

		info := resp.Data.Products.PageInfo
		if !info.HasNextPage || info.EndCursor == "" || seen[info.EndCursor] {
			return nodes, nil
		}
		seen[info.EndCursor] = true
		cursor := info.EndCursor
		after = &cursor
	}

	log.Warn().Int("pages", maxPages).Msg("[Storefront] page limit reached")
	return nodes, nil
}

// execute posts one GraphQL operation, retrying transport errors, 429 and 5xx
func (c *Client) execute(ctx context.Context, operation, query string, variables map[string]any, out any) error {
	payload, err := json.Marshal(map[string]any{"query": query, "variables": variables})
	if err != nil {
		return fmt.Errorf("failed to encode request: %w", err)
	}

	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if attempt > 1 {
			if err := sleep(ctx, c.backoff(attempt-1)); err != nil {
				return err
			}
		}

		// Wait for rate limiter
		if err := c.rateLimiter.Wait(ctx); err != nil {
			return fmt.Errorf("rate limiter error: %w", err)
		}

		start := time.Now()
		status, body, err := c.doRequest(ctx, payload)
		observability.UpstreamRequestDuration.
			WithLabelValues(operation, strconv.Itoa(status)).
			Observe(time.Since(start).Seconds())

		if err != nil {
			log.Warn().Err(err).Str("operation", operation).Int("attempt", attempt).Msg("[Storefront] request error")
			lastErr = err
			continue
		}

		if c.debug {
			log.Debug().Str("operation", operation).Int("status", status).Str("body", truncate(string(body), 2048)).Msg("[Storefront] response")
		}

		if status == http.StatusTooManyRequests || status >= http.StatusInternalServerError {
			log.Warn().Str("operation", operation).Int("status", status).Int("attempt", attempt).Msg("[Storefront] retryable status")
			lastErr = fmt.Errorf("%w: status %d", domain.ErrUpstreamFailure, status)
			continue
		}
		if status != http.StatusOK {
			return fmt.Errorf("%w: status %d, body: %s", domain.ErrUpstreamFailure, status, truncate(string(body), 256))
		}

		if err := json.Unmarshal(body, out); err != nil {
			return fmt.Errorf("%w: failed to decode response: %v", domain.ErrUpstreamFailure, err)
		}
		if errs := graphQLErrors(out); len(errs) > 0 {
			return fmt.Errorf("%w: %s", domain.ErrUpstreamFailure, errs[0].Message)
		}
		return nil
	}

	log.Error().Err(lastErr).Str("operation", operation).Msg("[Storefront] all retries failed")
	return lastErr
}

// doRequest executes an HTTP POST and returns status and body
func (c *Client) doRequest(ctx context.Context, payload []byte) (int, []byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(payload))
	if err != nil {
		return 0, nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "OutboardCatalog/1.0")
	req.Header.Set("X-Shopify-Storefront-Access-Token", c.token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, nil, fmt.Errorf("%w: %v", domain.ErrUpstreamFailure, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, nil, fmt.Errorf("%w: read body: %v", domain.ErrUpstreamFailure, err)
	}
	return resp.StatusCode, body, nil
}

// graphQLErrors extracts the errors array from either response envelope
func graphQLErrors(out any) []GraphQLError {
	switch resp := out.(type) {
	case *GraphQLResponse[ProductQueryData]:
		return resp.Errors
	case *GraphQLResponse[ProductsQueryData]:
		return resp.Errors
	}
	return nil
}

// exponentialBackoff returns 500ms, 1s, 2s, ... for attempts 1, 2, 3, ...
func exponentialBackoff(attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	return time.Duration(500*(1<<(attempt-1))) * time.Millisecond
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func reportSkipped(skipped []domain.RowError) {
	if len(skipped) == 0 {
		return
	}
	observability.RowsSkipped.WithLabelValues(string(domain.SourceGraphQL)).Add(float64(len(skipped)))
	for _, s := range skipped {
		log.Debug().Str("handle", s.Handle).Int("edge", s.Row).Str("reason", s.Reason).Msg("edge skipped")
	}
}
