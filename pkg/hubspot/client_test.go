package hubspot

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hubexport/pkg/config"
	errs "hubexport/pkg/errors"
	"hubexport/pkg/logger"
)

// mockRoundTripper allows us to intercept HTTP requests
type mockRoundTripper struct {
	handler func(req *http.Request) (*http.Response, error)
}

func (m *mockRoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	return m.handler(req)
}

func newMockHTTPClient(handler func(req *http.Request) (*http.Response, error)) *http.Client {
	return &http.Client{
		Transport: &mockRoundTripper{handler: handler},
		Timeout:   5 * time.Second,
	}
}

func newResponse(statusCode int, body string) *http.Response {
	return &http.Response{
		StatusCode: statusCode,
		Body:       io.NopCloser(bytes.NewBufferString(body)),
		Header:     make(http.Header),
	}
}

func testConfig() *config.Config {
	cfg := config.DefaultConfig()
	cfg.HubSpot.AccessToken = "pat-test-token"
	cfg.HubSpot.BaseURL = "https://api.test"
	cfg.Retry.RetryDelay = time.Millisecond
	return cfg
}

func newTestClient(t *testing.T, handler func(req *http.Request) (*http.Response, error)) *Client {
	t.Helper()

	client := NewClient(testConfig(), logger.NewTestLogger())
	client.SetHTTPClient(newMockHTTPClient(handler))
	return client
}

func TestNewClient(t *testing.T) {
	client := NewClient(testConfig(), logger.NewTestLogger())

	assert.NotNil(t, client)
	assert.NotNil(t, client.httpClient)
	assert.Equal(t, "https://api.test", client.baseURL)
	assert.Equal(t, "Bearer pat-test-token", client.headers["Authorization"])
}

func TestFetchObjectPage(t *testing.T) {
	var gotURL string
	client := newTestClient(t, func(req *http.Request) (*http.Response, error) {
		gotURL = req.URL.String()
		assert.Equal(t, "Bearer pat-test-token", req.Header.Get("Authorization"))
		return newResponse(http.StatusOK,
			`{"results": [{"id": "1", "properties": {"name": "Acme"}}, {"id": "2", "properties": {}}]}`), nil
	})

	page, err := client.FetchObjectPage(context.Background(), ResourceCompanies, []string{"name"}, "")
	require.NoError(t, err)
	require.Len(t, page, 2)
	assert.Equal(t, "1", page[0].ID)
	assert.Equal(t, "Acme", page[0].Property("name"))
	assert.Contains(t, gotURL, "/crm/v3/objects/companies")
}

func TestFetchObjectPageEmpty(t *testing.T) {
	client := newTestClient(t, func(req *http.Request) (*http.Response, error) {
		return newResponse(http.StatusOK, `{"results": []}`), nil
	})

	page, err := client.FetchObjectPage(context.Background(), ResourceContacts, nil, "cursor")
	require.NoError(t, err)
	assert.Empty(t, page)
}

func TestRetryableFailuresThenSuccess(t *testing.T) {
	attempts := 0
	client := newTestClient(t, func(req *http.Request) (*http.Response, error) {
		attempts++
		if attempts <= 4 {
			return newResponse(http.StatusInternalServerError, ""), nil
		}
		return newResponse(http.StatusOK, `{"results": [{"id": "1", "properties": {}}]}`), nil
	})

	// Four failures fit inside the five attempt budget
	page, err := client.FetchObjectPage(context.Background(), ResourceCompanies, nil, "")
	require.NoError(t, err)
	assert.Len(t, page, 1)
	assert.Equal(t, 5, attempts)
}

func TestRetryExhaustionYieldsTransportError(t *testing.T) {
	attempts := 0
	client := newTestClient(t, func(req *http.Request) (*http.Response, error) {
		attempts++
		return newResponse(http.StatusInternalServerError, ""), nil
	})

	_, err := client.FetchObjectPage(context.Background(), ResourceCompanies, nil, "")
	require.Error(t, err)
	assert.Equal(t, 5, attempts)

	var transportErr *errs.TransportError
	require.True(t, errors.As(err, &transportErr))
	assert.Equal(t, 5, transportErr.Attempts)
}

func TestRateLimitResponsesAreRetried(t *testing.T) {
	attempts := 0
	client := newTestClient(t, func(req *http.Request) (*http.Response, error) {
		attempts++
		if attempts == 1 {
			return newResponse(http.StatusTooManyRequests, ""), nil
		}
		return newResponse(http.StatusOK, `{"results": []}`), nil
	})

	_, err := client.FetchObjectPage(context.Background(), ResourceNotes, nil, "")
	require.NoError(t, err)
	assert.Equal(t, 2, attempts)
}

func TestNetworkErrorsAreRetried(t *testing.T) {
	attempts := 0
	client := newTestClient(t, func(req *http.Request) (*http.Response, error) {
		attempts++
		if attempts == 1 {
			return nil, errors.New("connection refused")
		}
		return newResponse(http.StatusOK, `{"results": []}`), nil
	})

	_, err := client.FetchObjectPage(context.Background(), ResourceTasks, nil, "")
	require.NoError(t, err)
	assert.Equal(t, 2, attempts)
}

func TestAuthErrorFailsFast(t *testing.T) {
	attempts := 0
	client := newTestClient(t, func(req *http.Request) (*http.Response, error) {
		attempts++
		return newResponse(http.StatusUnauthorized, ""), nil
	})

	_, err := client.FetchObjectPage(context.Background(), ResourceCompanies, nil, "")
	require.Error(t, err)
	assert.Equal(t, 1, attempts)

	var apiErr *errs.Error
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, errs.ErrorTypeAuth, apiErr.Type)

	var transportErr *errs.TransportError
	assert.False(t, errors.As(err, &transportErr))
}

func TestNotFoundFailsFast(t *testing.T) {
	attempts := 0
	client := newTestClient(t, func(req *http.Request) (*http.Response, error) {
		attempts++
		return newResponse(http.StatusNotFound, ""), nil
	})

	_, err := client.FetchObjectPage(context.Background(), ResourceCalls, nil, "")
	require.Error(t, err)
	assert.Equal(t, 1, attempts)

	var apiErr *errs.Error
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, errs.ErrorTypeNotFound, apiErr.Type)
}

func TestMalformedJSONFailsFast(t *testing.T) {
	attempts := 0
	client := newTestClient(t, func(req *http.Request) (*http.Response, error) {
		attempts++
		return newResponse(http.StatusOK, `{"results": [`), nil
	})

	_, err := client.FetchObjectPage(context.Background(), ResourceCompanies, nil, "")
	require.Error(t, err)
	assert.Equal(t, 1, attempts)

	var apiErr *errs.Error
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, errs.ErrorTypeParsing, apiErr.Type)
}

func TestErrorStatusClassificationWithBareResponses(t *testing.T) {
	// Responses built by hand carry no Request metadata, like those from
	// stub transports; classification and error logging must not depend
	// on it. Retryable statuses surface the underlying error through the
	// transport exhaustion wrapper.
	tests := []struct {
		status   int
		expected errs.ErrorType
	}{
		{http.StatusUnauthorized, errs.ErrorTypeAuth},
		{http.StatusForbidden, errs.ErrorTypeAuth},
		{http.StatusNotFound, errs.ErrorTypeNotFound},
		{http.StatusBadRequest, errs.ErrorTypeUnknown},
		{http.StatusBadGateway, errs.ErrorTypeServerError},
		{http.StatusServiceUnavailable, errs.ErrorTypeServerError},
		{599, errs.ErrorTypeServerError},
	}

	for _, tt := range tests {
		client := newTestClient(t, func(req *http.Request) (*http.Response, error) {
			return newResponse(tt.status, ""), nil
		})

		_, err := client.FetchObjectPage(context.Background(), ResourceCompanies, nil, "")
		require.Error(t, err, "status %d", tt.status)

		var apiErr *errs.Error
		require.True(t, errors.As(err, &apiErr), "status %d", tt.status)
		assert.Equal(t, tt.expected, apiErr.Type, "status %d", tt.status)
		assert.Equal(t, tt.status, apiErr.Code, "status %d", tt.status)
	}
}

func TestListProperties(t *testing.T) {
	client := newTestClient(t, func(req *http.Request) (*http.Response, error) {
		assert.Contains(t, req.URL.Path, "/crm/v3/properties/contacts")
		return newResponse(http.StatusOK,
			`{"results": [{"name": "email"}, {"name": "firstname"}, {"name": "lastname"}]}`), nil
	})

	names, err := client.ListProperties(context.Background(), ResourceContacts)
	require.NoError(t, err)
	assert.Equal(t, []string{"email", "firstname", "lastname"}, names)
}

func TestListAssociations(t *testing.T) {
	client := newTestClient(t, func(req *http.Request) (*http.Response, error) {
		assert.Contains(t, req.URL.Path, "/crm/v4/objects/notes/42/associations/companies")
		return newResponse(http.StatusOK,
			`{"results": [{"toObjectId": 7}, {"id": "8"}]}`), nil
	})

	assocs, err := client.ListAssociations(context.Background(), ResourceNotes, "42", ResourceCompanies)
	require.NoError(t, err)
	require.Len(t, assocs, 2)
	assert.Equal(t, "7", assocs[0].TargetID())
	assert.Equal(t, "8", assocs[1].TargetID())
}
