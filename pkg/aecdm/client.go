// Package aecdm provides a client for the Autodesk AEC Data Model GraphQL API.
package aecdm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/ekaya-inc/aecdm-mcp/pkg/apperrors"
	"github.com/ekaya-inc/aecdm-mcp/pkg/auth"
	"github.com/ekaya-inc/aecdm-mcp/pkg/config"
	"github.com/ekaya-inc/aecdm-mcp/pkg/logging"
	"github.com/ekaya-inc/aecdm-mcp/pkg/retry"
)

// DefaultTimeout is the maximum time to wait for a single GraphQL response.
const DefaultTimeout = 30 * time.Second

// Client provides access to the AEC Data Model API.
type Client struct {
	httpClient *http.Client
	endpoint   string
	region     string
	token      string
	maxPages   int
	pageSize   int
	retry      *retry.Config
	logger     *zap.Logger
}

// NewClient creates a new AEC Data Model client from configuration.
func NewClient(cfg config.AECDMConfig, retryCfg config.RetryConfig, logger *zap.Logger) *Client {
	timeout := cfg.RequestTimeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	rc := retry.DefaultConfig()
	rc.MaxRetries = retryCfg.MaxRetries
	if retryCfg.InitialDelay > 0 {
		rc.InitialDelay = retryCfg.InitialDelay
	}
	if retryCfg.MaxDelay > 0 {
		rc.MaxDelay = retryCfg.MaxDelay
	}

	return &Client{
		httpClient: &http.Client{
			Timeout: timeout,
		},
		endpoint: cfg.GraphQLURL,
		region:   strings.TrimSpace(cfg.Region),
		token:    strings.TrimSpace(cfg.AccessToken),
		maxPages: max(cfg.MaxPages, 1),
		pageSize: cfg.PageSize,
		retry:    rc,
		logger:   logger.Named("aecdm"),
	}
}

type graphQLRequest struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables,omitempty"`
}

type graphQLError struct {
	Message string `json:"message"`
}

type graphQLResponse struct {
	Data   json.RawMessage `json:"data"`
	Errors []graphQLError  `json:"errors"`
}

// Query posts a GraphQL document and decodes the data field into out.
// Transient transport and 5xx/429 failures are retried. A response with no
// data surfaces the first GraphQL error message.
func (c *Client) Query(ctx context.Context, query string, variables map[string]any, out any) error {
	token, err := c.accessToken(ctx)
	if err != nil {
		return err
	}

	body, err := json.Marshal(graphQLRequest{Query: query, Variables: variables})
	if err != nil {
		return fmt.Errorf("failed to encode query: %w", err)
	}

	data, err := retry.DoIfRetryableWithResult(ctx, c.retry, func() (json.RawMessage, error) {
		return c.post(ctx, token, body)
	})
	if err != nil {
		return err
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("failed to parse response data: %w", err)
	}
	return nil
}

// accessToken prefers a per-request token over the configured one.
func (c *Client) accessToken(ctx context.Context) (string, error) {
	if token, ok := auth.GetToken(ctx); ok {
		return token, nil
	}
	if c.token == "" {
		return "", fmt.Errorf("%w: set APS_ACCESS_TOKEN", apperrors.ErrUnauthorized)
	}
	return c.token, nil
}

func (c *Client) post(ctx context.Context, token string, body []byte) (json.RawMessage, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if c.region != "" {
		req.Header.Set("region", c.region)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, fmt.Errorf("failed to call AEC Data Model API: %s", logging.SanitizeError(err))
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		c.logger.Warn("AEC Data Model API rejected access token",
			zap.Int("status", resp.StatusCode))
		return nil, fmt.Errorf("%w: status %d", apperrors.ErrUnauthorized, resp.StatusCode)
	}

	if resp.StatusCode != http.StatusOK {
		c.logger.Error("AEC Data Model API returned error",
			zap.Int("status", resp.StatusCode),
			zap.String("body", logging.SanitizeBody(respBody)))
		return nil, fmt.Errorf("%w: %w", apperrors.ErrUpstream, &retry.StatusError{
			StatusCode: resp.StatusCode,
			Body:       logging.SanitizeBody(respBody),
		})
	}

	var envelope graphQLResponse
	if err := json.Unmarshal(respBody, &envelope); err != nil {
		return nil, fmt.Errorf("%w: failed to parse response: %w", apperrors.ErrUpstream, err)
	}

	if len(envelope.Data) == 0 || string(envelope.Data) == "null" {
		if len(envelope.Errors) > 0 {
			return nil, fmt.Errorf("%w: %s", apperrors.ErrUpstream, envelope.Errors[0].Message)
		}
		return nil, fmt.Errorf("%w: response contained no data", apperrors.ErrUpstream)
	}

	if len(envelope.Errors) > 0 {
		c.logger.Warn("AEC Data Model API returned partial data",
			zap.Int("error_count", len(envelope.Errors)),
			zap.String("first_error", envelope.Errors[0].Message))
	}

	return envelope.Data, nil
}

// page is the paginated result shape shared by AEC Data Model list queries.
type page[T any] struct {
	Pagination struct {
		Cursor string `json:"cursor"`
	} `json:"pagination"`
	Results []T `json:"results"`
}

// collectPages follows cursors for the list query rooted at field until the
// API stops returning one or the configured page limit is reached.
func collectPages[T any](ctx context.Context, c *Client, query, field string, variables map[string]any) ([]T, error) {
	vars := make(map[string]any, len(variables)+2)
	for k, v := range variables {
		vars[k] = v
	}
	if c.pageSize > 0 {
		vars["limit"] = c.pageSize
	}

	var all []T
	for pageNum := 0; pageNum < c.maxPages; pageNum++ {
		var data map[string]*page[T]
		if err := c.Query(ctx, query, vars, &data); err != nil {
			return nil, err
		}

		p := data[field]
		if p == nil {
			return nil, fmt.Errorf("%w: response missing %q", apperrors.ErrUpstream, field)
		}
		all = append(all, p.Results...)

		if p.Pagination.Cursor == "" {
			return all, nil
		}
		vars["cursor"] = p.Pagination.Cursor
	}

	c.logger.Warn("Stopped paginating at page limit",
		zap.String("field", field),
		zap.Int("max_pages", c.maxPages),
		zap.Int("results", len(all)))
	return all, nil
}
