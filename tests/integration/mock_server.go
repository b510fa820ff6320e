package integration

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"

	"hubexport/pkg/hubspot"
)

// MockHubSpot is a configurable stand-in for the HubSpot CRM API. It serves
// the properties, paginated objects and associations endpoints from in-memory
// datasets, counts requests per path, and can inject error responses.
type MockHubSpot struct {
	server *httptest.Server

	mu           sync.Mutex
	properties   map[string][]string
	objects      map[string][]hubspot.Object
	associations map[string]map[string]map[string][]string
	errors       map[string]*errorSpec
	requests     map[string]int
}

// errorSpec describes an injected failure. A negative remaining count means
// the failure is persistent until cleared.
type errorSpec struct {
	status    int
	remaining int
}

// NewMockHubSpot starts a mock API server with empty datasets
func NewMockHubSpot() *MockHubSpot {
	m := &MockHubSpot{
		properties:   make(map[string][]string),
		objects:      make(map[string][]hubspot.Object),
		associations: make(map[string]map[string]map[string][]string),
		errors:       make(map[string]*errorSpec),
		requests:     make(map[string]int),
	}
	m.server = httptest.NewServer(http.HandlerFunc(m.handle))
	return m
}

// URL returns the base URL of the mock server
func (m *MockHubSpot) URL() string {
	return m.server.URL
}

// Close shuts down the mock server
func (m *MockHubSpot) Close() {
	m.server.Close()
}

// SetProperties sets the property schema served for a resource
func (m *MockHubSpot) SetProperties(resource string, names []string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.properties[resource] = names
}

// SetObjects sets the full ordered object stream served for a resource
func (m *MockHubSpot) SetObjects(resource string, objects []hubspot.Object) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.objects[resource] = objects
}

// AddAssociation registers one edge from (resource, objectID) to a target
// object of the given type.
func (m *MockHubSpot) AddAssociation(from, objectID, to, targetID string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.associations[from] == nil {
		m.associations[from] = make(map[string]map[string][]string)
	}
	if m.associations[from][objectID] == nil {
		m.associations[from][objectID] = make(map[string][]string)
	}
	m.associations[from][objectID][to] = append(m.associations[from][objectID][to], targetID)
}

// FailPath makes requests whose path starts with prefix return the given
// status. A negative times value keeps failing until ClearFailure is called.
func (m *MockHubSpot) FailPath(prefix string, status, times int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.errors[prefix] = &errorSpec{status: status, remaining: times}
}

// ClearFailure removes an injected failure
func (m *MockHubSpot) ClearFailure(prefix string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.errors, prefix)
}

// Requests returns how many requests hit the given path
func (m *MockHubSpot) Requests(path string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.requests[path]
}

func (m *MockHubSpot) handle(w http.ResponseWriter, r *http.Request) {
	m.mu.Lock()
	m.requests[r.URL.Path]++

	for prefix, spec := range m.errors {
		if strings.HasPrefix(r.URL.Path, prefix) && spec.remaining != 0 {
			if spec.remaining > 0 {
				spec.remaining--
			}
			status := spec.status
			m.mu.Unlock()
			w.WriteHeader(status)
			return
		}
	}
	m.mu.Unlock()

	parts := strings.Split(strings.Trim(r.URL.Path, "/"), "/")
	switch {
	case len(parts) == 4 && parts[1] == "v3" && parts[2] == "properties":
		m.serveProperties(w, parts[3])
	case len(parts) == 4 && parts[1] == "v3" && parts[2] == "objects":
		m.serveObjects(w, parts[3], r.URL.Query().Get("after"))
	case len(parts) == 7 && parts[1] == "v4" && parts[2] == "objects" && parts[5] == "associations":
		m.serveAssociations(w, parts[3], parts[4], parts[6])
	default:
		http.NotFound(w, r)
	}
}

func (m *MockHubSpot) serveProperties(w http.ResponseWriter, resource string) {
	m.mu.Lock()
	names := m.properties[resource]
	m.mu.Unlock()

	type property struct {
		Name string `json:"name"`
	}
	results := make([]property, 0, len(names))
	for _, name := range names {
		results = append(results, property{Name: name})
	}

	writeJSON(w, map[string]interface{}{"results": results})
}

func (m *MockHubSpot) serveObjects(w http.ResponseWriter, resource, after string) {
	m.mu.Lock()
	stream := m.objects[resource]
	m.mu.Unlock()

	start := 0
	if after != "" {
		for i, obj := range stream {
			if obj.ID == after {
				start = i + 1
				break
			}
		}
	}

	end := start + hubspot.PageSize
	if end > len(stream) {
		end = len(stream)
	}

	writeJSON(w, map[string]interface{}{"results": stream[start:end]})
}

func (m *MockHubSpot) serveAssociations(w http.ResponseWriter, resource, objectID, to string) {
	m.mu.Lock()
	targets := m.associations[resource][objectID][to]
	m.mu.Unlock()

	type edge struct {
		ID string `json:"id"`
	}
	results := make([]edge, 0, len(targets))
	for _, target := range targets {
		results = append(results, edge{ID: target})
	}

	writeJSON(w, map[string]interface{}{"results": results})
}

func writeJSON(w http.ResponseWriter, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(payload)
}
