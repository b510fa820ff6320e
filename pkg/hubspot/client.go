package hubspot

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"hubexport/pkg/config"
	errs "hubexport/pkg/errors"
	"hubexport/pkg/logger"
	"hubexport/pkg/ratelimit"
	"hubexport/pkg/retry"
)

// Client talks to the HubSpot CRM API. All configuration, including
// credentials and headers, is injected at construction; the client holds no
// mutable global state and is stateless per call apart from request pacing.
type Client struct {
	httpClient *http.Client
	baseURL    string
	headers    map[string]string
	retryCfg   config.RetryConfig
	limiter    ratelimit.Limiter
	logger     logger.Logger
}

// NewClient creates a new HubSpot API client from the given configuration
func NewClient(cfg *config.Config, log logger.Logger) *Client {
	if log == nil {
		log = logger.GetLogger()
	}

	var limiter ratelimit.Limiter = ratelimit.Unlimited{}
	if cfg.RateLimit.RequestsPerMinute > 0 {
		limiter = ratelimit.NewTokenBucket(cfg.RateLimit.RequestsPerMinute, time.Minute)
	}

	return &Client{
		httpClient: &http.Client{
			Timeout: cfg.Retry.RequestTimeout,
		},
		baseURL: cfg.HubSpot.BaseURL,
		headers: map[string]string{
			"Authorization": "Bearer " + cfg.HubSpot.AccessToken,
			"Content-Type":  "application/json",
			"User-Agent":    cfg.HubSpot.UserAgent,
		},
		retryCfg: cfg.Retry,
		limiter:  limiter,
		logger:   log,
	}
}

// SetHTTPClient replaces the underlying HTTP client, used by tests to
// install a stub transport.
func (c *Client) SetHTTPClient(hc *http.Client) {
	c.httpClient = hc
}

// doRequest performs a single HTTP attempt with the configured headers
func (c *Client) doRequest(req *http.Request, endpoint string) (*http.Response, error) {
	for key, value := range c.headers {
		req.Header.Set(key, value)
	}

	c.limiter.Wait()

	start := time.Now()
	c.logger.DebugWithFields("sending HTTP request", map[string]interface{}{
		"method": req.Method,
		"url":    req.URL.String(),
	})

	resp, err := c.httpClient.Do(req)
	duration := time.Since(start)
	requestDuration.WithLabelValues(endpoint).Observe(duration.Seconds())

	if err != nil {
		requestsTotal.WithLabelValues(endpoint, "0").Inc()
		c.logger.ErrorWithFields("HTTP request failed", map[string]interface{}{
			"method":   req.Method,
			"url":      req.URL.String(),
			"error":    err.Error(),
			"duration": duration,
		})
		return nil, &errs.Error{
			Type:    errs.ErrorTypeNetwork,
			Message: fmt.Sprintf("network error: %v", err),
			Code:    0,
		}
	}

	requestsTotal.WithLabelValues(endpoint, strconv.Itoa(resp.StatusCode)).Inc()
	c.logger.DebugWithFields("HTTP request completed", map[string]interface{}{
		"method":   req.Method,
		"url":      req.URL.String(),
		"status":   resp.StatusCode,
		"duration": duration,
	})

	return resp, nil
}

// checkResponseStatus checks the HTTP response status and returns appropriate
// errors. The request URL is passed in explicitly; resp.Request is not set by
// every transport and cannot be relied on.
func (c *Client) checkResponseStatus(resp *http.Response, url string) error {
	switch resp.StatusCode {
	case http.StatusOK:
		return nil
	case http.StatusUnauthorized, http.StatusForbidden:
		c.logger.WarnWithFields("authentication error", map[string]interface{}{
			"status": resp.StatusCode,
			"url":    url,
		})
		return &errs.Error{
			Type:    errs.ErrorTypeAuth,
			Message: "authentication required",
			Code:    resp.StatusCode,
		}
	case http.StatusNotFound:
		c.logger.WarnWithFields("resource not found", map[string]interface{}{
			"status": resp.StatusCode,
			"url":    url,
		})
		return &errs.Error{
			Type:    errs.ErrorTypeNotFound,
			Message: "resource not found",
			Code:    resp.StatusCode,
		}
	case http.StatusTooManyRequests:
		c.logger.WarnWithFields("rate limit exceeded", map[string]interface{}{
			"status": resp.StatusCode,
			"url":    url,
		})
		return &errs.Error{
			Type:    errs.ErrorTypeRateLimit,
			Message: "rate limit exceeded",
			Code:    resp.StatusCode,
		}
	default:
		if errs.IsRetryableStatusCode(resp.StatusCode) {
			c.logger.ErrorWithFields("server error", map[string]interface{}{
				"status": resp.StatusCode,
				"url":    url,
			})
			return &errs.Error{
				Type:    errs.ErrorTypeServerError,
				Message: "server error",
				Code:    resp.StatusCode,
			}
		}
		if resp.StatusCode >= 400 {
			c.logger.ErrorWithFields("unexpected API error", map[string]interface{}{
				"status": resp.StatusCode,
				"url":    url,
			})
			return &errs.Error{
				Type:    errs.ErrorTypeUnknown,
				Message: fmt.Sprintf("unexpected status code: %d", resp.StatusCode),
				Code:    resp.StatusCode,
			}
		}
		return nil
	}
}

// getJSON performs a single GET attempt and decodes the JSON response
func (c *Client) getJSON(ctx context.Context, endpoint, url string, target interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return &errs.Error{
			Type:    errs.ErrorTypeUnknown,
			Message: fmt.Sprintf("failed to create request: %v", err),
			Code:    0,
		}
	}

	resp, err := c.doRequest(req, endpoint)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if err := c.checkResponseStatus(resp, url); err != nil {
		return err
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return &errs.Error{
			Type:    errs.ErrorTypeNetwork,
			Message: fmt.Sprintf("failed to read response body: %v", err),
			Code:    resp.StatusCode,
		}
	}

	if err := json.Unmarshal(body, target); err != nil {
		bodyPreview := string(body)
		if len(bodyPreview) > 200 {
			bodyPreview = bodyPreview[:200] + "..."
		}

		c.logger.ErrorWithFields("failed to parse JSON response", map[string]interface{}{
			"url":          url,
			"status":       resp.StatusCode,
			"error":        err.Error(),
			"body_preview": bodyPreview,
		})
		return &errs.Error{
			Type:    errs.ErrorTypeParsing,
			Message: fmt.Sprintf("failed to parse JSON: %v", err),
			Code:    resp.StatusCode,
		}
	}

	return nil
}

// get performs a GET request with the fixed-delay retry policy. Transient
// failures (network, 429, 5xx) are retried up to MaxRetries attempts with
// RetryDelay between them; exhausting the budget yields a TransportError,
// which is fatal to the whole export run.
func (c *Client) get(ctx context.Context, endpoint, url string, target interface{}) error {
	attempts := 0
	op := func() error {
		attempts++
		return c.getJSON(ctx, endpoint, url, target)
	}

	rc := &retry.Config{
		MaxAttempts: c.retryCfg.MaxRetries,
		Backoff:     &retry.ConstantBackoff{Delay: c.retryCfg.RetryDelay},
		RetryIf:     retry.DefaultRetryIf,
		Context:     ctx,
		Logger:      c.logger,
		OnRetry: func(attempt int, err error, delay time.Duration) {
			retriesTotal.WithLabelValues(endpoint).Inc()
		},
	}

	err := retry.Do(op, rc)
	if err == nil {
		return nil
	}

	var apiErr *errs.Error
	if errors.As(err, &apiErr) && errs.IsRetryable(apiErr.Type) && attempts >= c.retryCfg.MaxRetries {
		retryExhaustedTotal.WithLabelValues(endpoint).Inc()
		return &errs.TransportError{Attempts: attempts, Last: apiErr}
	}
	return err
}

// ListProperties fetches the names of all properties defined for the given
// resource type. The result drives both table creation and the property list
// requested on every object page.
func (c *Client) ListProperties(ctx context.Context, resource ResourceType) ([]string, error) {
	c.logger.DebugWithFields("fetching properties", map[string]interface{}{
		"resource": resource.String(),
	})

	var page propertyPage
	if err := c.get(ctx, "properties", PropertiesURL(c.baseURL, resource), &page); err != nil {
		return nil, err
	}

	names := make([]string, 0, len(page.Results))
	for _, p := range page.Results {
		names = append(names, p.Name)
	}

	c.logger.InfoWithFields("fetched properties", map[string]interface{}{
		"resource": resource.String(),
		"count":    len(names),
	})

	return names, nil
}

// FetchObjectPage fetches one page of records for the resource type starting
// after the given cursor. An empty cursor requests the start of the stream;
// an empty result slice signals the end of the stream. The cursor must be
// treated as opaque by callers.
func (c *Client) FetchObjectPage(ctx context.Context, resource ResourceType, properties []string, after string) ([]Object, error) {
	c.logger.DebugWithFields("fetching object page", map[string]interface{}{
		"resource": resource.String(),
		"after":    after,
	})

	var page objectPage
	if err := c.get(ctx, "objects", ObjectsURL(c.baseURL, resource, properties, after), &page); err != nil {
		return nil, err
	}

	return page.Results, nil
}

// ListAssociations fetches all associations from one object to objects of
// the target resource type.
func (c *Client) ListAssociations(ctx context.Context, from ResourceType, objectID string, to ResourceType) ([]Association, error) {
	c.logger.DebugWithFields("fetching associations", map[string]interface{}{
		"from":      from.String(),
		"object_id": objectID,
		"to":        to.String(),
	})

	var page associationPage
	if err := c.get(ctx, "associations", AssociationsURL(c.baseURL, from, objectID, to), &page); err != nil {
		return nil, err
	}

	return page.Results, nil
}
