// Package testutil provides testing utilities for the product API.
package testutil

import (
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"time"

	"github.com/Sternrassler/paapi-product-cache/pkg/signer"
)

// MockPAAPIResponse defines the behavior for a mock PA-API operation response.
type MockPAAPIResponse struct {
	StatusCode int
	Body       string
	Headers    map[string]string
	Delay      time.Duration
}

// MockPAAPI is a configurable mock Product Advertising API server for testing.
type MockPAAPI struct {
	server   *httptest.Server
	mu       sync.RWMutex
	handlers map[string]func(w http.ResponseWriter, r *http.Request)
	signing  *signer.SigningContext

	// Tracking
	RequestCount      int
	SignatureFailures int
	LastRequestHeader http.Header
	LastRequestBody   []byte
	operationCounts   map[string]int
}

// NewMockPAAPI creates a new mock PA-API server.
func NewMockPAAPI() *MockPAAPI {
	mock := &MockPAAPI{
		handlers:        make(map[string]func(w http.ResponseWriter, r *http.Request)),
		operationCounts: make(map[string]int),
	}

	mock.server = httptest.NewServer(http.HandlerFunc(mock.serve))

	return mock
}

func (m *MockPAAPI) serve(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	operation := strings.TrimPrefix(r.Header.Get(signer.HeaderAmzTarget), signer.TargetPrefix)

	m.mu.Lock()
	m.RequestCount++
	m.operationCounts[operation]++
	m.LastRequestHeader = r.Header.Clone()
	m.LastRequestBody = body
	signing := m.signing
	m.mu.Unlock()

	if signing != nil {
		if err := VerifySignature(*signing, r, body); err != nil {
			m.mu.Lock()
			m.SignatureFailures++
			m.mu.Unlock()
			writeResponse(w, NewInvalidSignatureResponse(err.Error()))
			return
		}
	}

	m.mu.RLock()
	handler, exists := m.handlers[operation]
	m.mu.RUnlock()

	if exists {
		handler(w, r)
		return
	}

	m.defaultHandler(w, r, operation)
}

// URL returns the mock server URL.
func (m *MockPAAPI) URL() string {
	return m.server.URL
}

// Close shuts down the mock server.
func (m *MockPAAPI) Close() {
	m.server.Close()
}

// Reset clears all tracking counters.
func (m *MockPAAPI) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.RequestCount = 0
	m.SignatureFailures = 0
	m.LastRequestHeader = nil
	m.LastRequestBody = nil
	m.operationCounts = make(map[string]int)
}

// VerifyWith makes the server recompute and check every request signature
// with sc, answering 401 InvalidSignature on mismatch.
func (m *MockPAAPI) VerifyWith(sc signer.SigningContext) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.signing = &sc
}

// SetHandler sets a custom handler for an operation (e.g. "SearchItems").
func (m *MockPAAPI) SetHandler(operation string, handler func(w http.ResponseWriter, r *http.Request)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.handlers[operation] = handler
}

// SetResponse configures a simple response for an operation.
func (m *MockPAAPI) SetResponse(operation string, resp MockPAAPIResponse) {
	m.SetHandler(operation, func(w http.ResponseWriter, r *http.Request) {
		writeResponse(w, resp)
	})
}

// GetRequestCount returns the number of requests made to the server.
func (m *MockPAAPI) GetRequestCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.RequestCount
}

// GetOperationCount returns the number of requests for one operation.
func (m *MockPAAPI) GetOperationCount(operation string) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.operationCounts[operation]
}

// GetSignatureFailures returns the number of requests rejected by VerifyWith.
func (m *MockPAAPI) GetSignatureFailures() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.SignatureFailures
}

// GetLastRequestBody returns the raw body of the most recent request.
func (m *MockPAAPI) GetLastRequestBody() []byte {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]byte(nil), m.LastRequestBody...)
}

// GetLastRequestHeader returns the headers of the most recent request.
func (m *MockPAAPI) GetLastRequestHeader() http.Header {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.LastRequestHeader.Clone()
}

// defaultHandler provides canned PA-API responses.
func (m *MockPAAPI) defaultHandler(w http.ResponseWriter, r *http.Request, operation string) {
	if r.URL.Path != signer.OperationPath(operation) {
		writeResponse(w, MockPAAPIResponse{
			StatusCode: http.StatusNotFound,
			Body:       fmt.Sprintf(`{"Errors":[{"Code":"UnrecognizedClient","Message":"path %s does not match operation %q"}]}`, r.URL.Path, operation),
		})
		return
	}

	switch operation {
	case "SearchItems":
		writeResponse(w, NewHealthyResponse(SampleSearchItemsBody))
	case "GetItems":
		writeResponse(w, NewHealthyResponse(SampleGetItemsBody))
	default:
		writeResponse(w, MockPAAPIResponse{
			StatusCode: http.StatusBadRequest,
			Body:       fmt.Sprintf(`{"Errors":[{"Code":"UnknownOperation","Message":"unknown operation %q"}]}`, operation),
		})
	}
}

func writeResponse(w http.ResponseWriter, resp MockPAAPIResponse) {
	// Add delay if specified
	if resp.Delay > 0 {
		time.Sleep(resp.Delay)
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	for key, value := range resp.Headers {
		w.Header().Set(key, value)
	}

	w.WriteHeader(resp.StatusCode)
	if resp.Body != "" {
		w.Write([]byte(resp.Body))
	}
}

// VerifySignature recomputes the Authorization header of r the way PA-API
// does and reports a mismatch.
func VerifySignature(sc signer.SigningContext, r *http.Request, body []byte) error {
	auth := r.Header.Get(signer.HeaderAuthorization)
	if auth == "" {
		return fmt.Errorf("missing authorization header")
	}

	const marker = "SignedHeaders="
	start := strings.Index(auth, marker)
	if start < 0 {
		return fmt.Errorf("authorization header has no SignedHeaders")
	}
	signed := auth[start+len(marker):]
	if end := strings.Index(signed, ","); end >= 0 {
		signed = signed[:end]
	}

	ts, err := time.Parse(signer.TimeFormat, r.Header.Get(signer.HeaderAmzDate))
	if err != nil {
		return fmt.Errorf("parse x-amz-date: %w", err)
	}

	headers := make(map[string]string)
	for _, name := range strings.Split(signed, ";") {
		if name == signer.HeaderHost {
			headers[name] = r.Host
			continue
		}
		headers[name] = r.Header.Get(name)
	}

	env := &signer.Envelope{
		Method:    r.Method,
		Path:      r.URL.Path,
		Headers:   headers,
		Body:      body,
		Timestamp: ts,
	}
	want, err := signer.Sign(sc, env)
	if err != nil {
		return err
	}
	if want != auth {
		return fmt.Errorf("signature mismatch")
	}
	return nil
}

// NewHealthyResponse creates a standard 200 OK response.
func NewHealthyResponse(data string) MockPAAPIResponse {
	return MockPAAPIResponse{
		StatusCode: http.StatusOK,
		Body:       data,
	}
}

// NewThrottledResponse creates a 429 TooManyRequests response.
func NewThrottledResponse() MockPAAPIResponse {
	return MockPAAPIResponse{
		StatusCode: http.StatusTooManyRequests,
		Body:       `{"__type":"com.amazon.paapi5#TooManyRequestsException","Errors":[{"Code":"TooManyRequests","Message":"The request was denied due to request throttling."}]}`,
	}
}

// NewServerErrorResponse creates a 500 Internal Server Error response.
func NewServerErrorResponse() MockPAAPIResponse {
	return MockPAAPIResponse{
		StatusCode: http.StatusInternalServerError,
		Body:       `{"Errors":[{"Code":"InternalFailure","Message":"The request processing has failed because of an unknown error."}]}`,
	}
}

// NewInvalidSignatureResponse creates a 401 InvalidSignature response.
func NewInvalidSignatureResponse(message string) MockPAAPIResponse {
	return MockPAAPIResponse{
		StatusCode: http.StatusUnauthorized,
		Body:       fmt.Sprintf(`{"__type":"com.amazon.paapi5#InvalidSignatureException","Errors":[{"Code":"InvalidSignature","Message":%q}]}`, message),
	}
}

// NewEmptyItemsResponse creates a 200 GetItems response without items.
func NewEmptyItemsResponse() MockPAAPIResponse {
	return NewHealthyResponse(`{"ItemsResult":{"Items":[]}}`)
}
