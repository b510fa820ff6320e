// Package retry provides backoff and retry logic for handling transient
// failures in network operations, particularly for HubSpot API calls.
//
// Features:
//   - Multiple backoff strategies (constant, exponential)
//   - Context support for cancellation
//   - Configurable retry predicates
//   - Integration with the hubspot client error types
//
// Basic usage:
//
//	// Simple retry with defaults
//	err := retry.Do(func() error {
//	    return client.FetchObjectPage(ctx, resource, props, after)
//	}, nil)
//
//	// Custom configuration
//	cfg := &retry.Config{
//	    MaxAttempts: 5,
//	    Backoff:     &retry.ConstantBackoff{Delay: 5 * time.Second},
//	    RetryIf:     retry.DefaultRetryIf,
//	    Context:     ctx,
//	    Logger:      logger.GetLogger(),
//	}
//	err := retry.Do(operation, cfg)
//
// The default predicate retries network errors, rate limit responses and
// server errors. Auth, not-found and parsing errors are never retried.
package retry
