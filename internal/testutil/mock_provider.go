// Package testutil provides testing utilities for the price sniffer.
package testutil

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"time"
)

// MockResponse defines the behavior for a mock provider response.
type MockResponse struct {
	StatusCode int
	Body       string
	Headers    map[string]string
	Delay      time.Duration
}

// MockProvider is a configurable mock shopping-search provider for testing.
type MockProvider struct {
	server  *httptest.Server
	mu      sync.RWMutex
	handler func(w http.ResponseWriter, r *http.Request)

	// Tracking
	requestCount      int
	lastQuery         string
	lastRequestHeader http.Header
}

// NewMockProvider creates a new mock provider server.
// Until configured it answers every search with an empty shopping list.
func NewMockProvider() *MockProvider {
	mock := &MockProvider{}

	mock.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Q string `json:"q"`
		}
		raw, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(raw, &body)

		mock.mu.Lock()
		mock.requestCount++
		mock.lastQuery = body.Q
		mock.lastRequestHeader = r.Header.Clone()
		handler := mock.handler
		mock.mu.Unlock()

		if handler != nil {
			handler(w, r)
			return
		}

		mock.defaultHandler(w, r)
	}))

	return mock
}

// URL returns the mock server URL.
func (m *MockProvider) URL() string {
	return m.server.URL
}

// Close shuts down the mock server.
func (m *MockProvider) Close() {
	m.server.Close()
}

// Reset clears all tracking counters.
func (m *MockProvider) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.requestCount = 0
	m.lastQuery = ""
	m.lastRequestHeader = nil
}

// SetHandler sets a custom handler for every request.
func (m *MockProvider) SetHandler(handler func(w http.ResponseWriter, r *http.Request)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.handler = handler
}

// SetResponse configures a simple canned response.
func (m *MockProvider) SetResponse(resp MockResponse) {
	m.SetHandler(func(w http.ResponseWriter, r *http.Request) {
		if resp.Delay > 0 {
			time.Sleep(resp.Delay)
		}

		for key, value := range resp.Headers {
			w.Header().Set(key, value)
		}

		w.WriteHeader(resp.StatusCode)
		if resp.Body != "" {
			w.Write([]byte(resp.Body))
		}
	})
}

// GetRequestCount returns the number of requests made to the server.
func (m *MockProvider) GetRequestCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.requestCount
}

// LastQuery returns the "q" field of the most recent request.
func (m *MockProvider) LastQuery() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.lastQuery
}

// LastRequestHeader returns the headers of the most recent request.
func (m *MockProvider) LastRequestHeader() http.Header {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.lastRequestHeader
}

// defaultHandler answers with an empty shopping list.
func (m *MockProvider) defaultHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"searchParameters":{"type":"shopping"},"shopping":[]}`))
}

// ShoppingItem is a provider record for building mock responses.
// Empty fields are omitted from the JSON.
type ShoppingItem struct {
	Title     string `json:"title,omitempty"`
	Source    string `json:"source,omitempty"`
	Link      string `json:"link,omitempty"`
	Price     string `json:"price,omitempty"`
	ImageURL  string `json:"imageUrl,omitempty"`
	Thumbnail string `json:"thumbnail,omitempty"`
	Position  int    `json:"position,omitempty"`
}

// NewShoppingResponse creates a 200 OK response carrying items.
func NewShoppingResponse(items ...ShoppingItem) MockResponse {
	if items == nil {
		items = []ShoppingItem{}
	}
	body, _ := json.Marshal(map[string]any{
		"searchParameters": map[string]string{"type": "shopping"},
		"shopping":         items,
		"credits":          2,
	})

	return MockResponse{
		StatusCode: http.StatusOK,
		Body:       string(body),
		Headers: map[string]string{
			"Content-Type": "application/json; charset=utf-8",
		},
	}
}

// NewUnauthorizedResponse creates the provider's answer to a bad API key.
func NewUnauthorizedResponse() MockResponse {
	return MockResponse{
		StatusCode: http.StatusForbidden,
		Body:       `{"message":"Unauthorized.","statusCode":403}`,
		Headers: map[string]string{
			"Content-Type": "application/json; charset=utf-8",
		},
	}
}

// NewServerErrorResponse creates a 500 Internal Server Error response.
func NewServerErrorResponse() MockResponse {
	return MockResponse{
		StatusCode: http.StatusInternalServerError,
		Body:       `{"error": "Internal server error"}`,
		Headers: map[string]string{
			"Content-Type": "application/json; charset=utf-8",
		},
	}
}

// NewMalformedResponse creates a 200 OK response whose body is not JSON.
func NewMalformedResponse() MockResponse {
	return MockResponse{
		StatusCode: http.StatusOK,
		Body:       `<html>upstream proxy error</html>`,
		Headers: map[string]string{
			"Content-Type": "text/html",
		},
	}
}

// IPhoneFixture returns the three iPhone listings used across tests:
// $999, $799.99 and $1,099.00.
func IPhoneFixture() []ShoppingItem {
	return []ShoppingItem{
		{
			Title:    "Apple iPhone 15 128GB Black",
			Source:   "Best Buy",
			Link:     "https://shop.example/bestbuy/iphone-15",
			Price:    "$999.00",
			ImageURL: "https://img.example/bestbuy.jpg",
			Position: 1,
		},
		{
			Title:     "Apple iPhone 15 128GB Blue",
			Source:    "Walmart",
			Link:      "https://shop.example/walmart/iphone-15",
			Price:     "$799.99",
			Thumbnail: "https://img.example/walmart-thumb.jpg",
			Position:  2,
		},
		{
			Title:    "Apple iPhone 15 256GB Pink",
			Source:   "Amazon",
			Link:     "https://shop.example/amazon/iphone-15",
			Price:    "$1,099.00",
			ImageURL: "https://img.example/amazon.jpg",
			Position: 3,
		},
	}
}
