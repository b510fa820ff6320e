// Package hubspot provides a client for the HubSpot CRM v3 API.
//
// This package includes:
//   - A configurable HTTP client with bearer auth, retries and rate limiting
//   - Type-safe models for CRM object, property and association responses
//   - Helper functions for constructing paginated API endpoints
//   - The set of exported resource types and their association partners
//
// Example usage:
//
//	client := hubspot.NewClient(cfg)
//
//	// Fetch one page of companies
//	objects, err := client.FetchObjectPage(ctx, hubspot.ResourceCompanies, props, "")
//	if err != nil {
//	    var transportErr *errors.TransportError
//	    if errors.As(err, &transportErr) {
//	        // Retries exhausted, the run cannot continue
//	    }
//	}
//
//	// Collect association edges for one object
//	assocs, err := client.ListAssociations(ctx, hubspot.ResourceCompanies, "123", hubspot.ResourceContacts)
//
// Transient failures (network errors, 429, 5xx) are retried internally with a
// fixed delay. Auth failures, missing resources and malformed responses fail
// fast without retrying.
package hubspot
