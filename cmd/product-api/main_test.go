package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/Sternrassler/paapi-product-cache/internal/config"
	"github.com/Sternrassler/paapi-product-cache/internal/testutil"
	"github.com/Sternrassler/paapi-product-cache/pkg/amazon"
	"github.com/Sternrassler/paapi-product-cache/pkg/cache"
	"github.com/Sternrassler/paapi-product-cache/pkg/catalog"
	"github.com/Sternrassler/paapi-product-cache/pkg/client"
	"github.com/Sternrassler/paapi-product-cache/pkg/signer"
)

func setupTestRedis(t *testing.T) (*redis.Client, func()) {
	if testing.Short() {
		t.Skip("Skipping container test in short mode")
	}

	ctx := context.Background()

	req := testcontainers.ContainerRequest{
		Image:        "redis:7-alpine",
		ExposedPorts: []string{"6379/tcp"},
		WaitingFor:   wait.ForLog("Ready to accept connections"),
	}

	redisC, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		t.Fatalf("Failed to start Redis container: %v", err)
	}

	host, err := redisC.Host(ctx)
	if err != nil {
		t.Fatalf("Failed to get container host: %v", err)
	}

	port, err := redisC.MappedPort(ctx, "6379")
	if err != nil {
		t.Fatalf("Failed to get container port: %v", err)
	}

	redisClient := redis.NewClient(&redis.Options{
		Addr: host + ":" + port.Port(),
	})

	cleanup := func() {
		redisClient.Close()
		redisC.Terminate(ctx)
	}

	return redisClient, cleanup
}

// stubProvider answers from fixed data.
type stubProvider struct {
	source    string
	products  []catalog.ProductRecord
	detail    *catalog.ProductRecord
	detailErr error
}

func (s *stubProvider) Source() string {
	if s.source == "" {
		return amazon.Source
	}
	return s.source
}

func (s *stubProvider) Search(context.Context, string) ([]catalog.ProductRecord, error) {
	return s.products, nil
}

func (s *stubProvider) GetByID(context.Context, string) (*catalog.ProductRecord, error) {
	return s.detail, s.detailErr
}

// newTestRouter builds the router over miniredis and the given provider.
func newTestRouter(t *testing.T, provider catalog.Provider) (http.Handler, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })

	store := cache.NewRedisStore(rdb)
	if err := store.Ping(context.Background()); err != nil {
		t.Fatalf("Ping failed: %v", err)
	}
	svc := catalog.NewService(cache.NewAside(store, cache.DefaultOptions()), catalog.NewRegistry(provider))

	return newRouter(svc, store, zerolog.Nop()), mr
}

func get(t *testing.T, h http.Handler, target string) (*http.Response, string) {
	t.Helper()

	req := httptest.NewRequest(http.MethodGet, target, nil)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	resp := w.Result()
	body, _ := io.ReadAll(resp.Body)
	return resp, string(body)
}

func TestHealthEndpoint(t *testing.T) {
	req := httptest.NewRequest("GET", "/health", nil)
	w := httptest.NewRecorder()

	healthHandler(w, req)

	resp := w.Result()
	body, _ := io.ReadAll(resp.Body)

	if resp.StatusCode != http.StatusOK {
		t.Errorf("Expected status 200, got %d", resp.StatusCode)
	}

	if string(body) != "OK" {
		t.Errorf("Expected body 'OK', got %s", string(body))
	}
}

func TestReadyEndpoint(t *testing.T) {
	redisClient, cleanup := setupTestRedis(t)
	defer cleanup()

	store := cache.NewRedisStore(redisClient)
	svc := catalog.NewService(cache.NewAside(store, cache.DefaultOptions()), catalog.NewRegistry(&stubProvider{}))
	handler := newRouter(svc, store, zerolog.Nop())

	t.Run("ready", func(t *testing.T) {
		resp, body := get(t, handler, "/ready")

		if resp.StatusCode != http.StatusOK {
			t.Errorf("Expected status 200, got %d", resp.StatusCode)
		}

		if body != "OK" {
			t.Errorf("Expected body 'OK', got %s", body)
		}
	})

	t.Run("not_ready_redis_down", func(t *testing.T) {
		// Close Redis to simulate failure
		redisClient.Close()

		resp, _ := get(t, handler, "/ready")

		if resp.StatusCode != http.StatusServiceUnavailable {
			t.Errorf("Expected status 503, got %d", resp.StatusCode)
		}
	})
}

func TestReadyEndpoint_Miniredis(t *testing.T) {
	handler, mr := newTestRouter(t, &stubProvider{})

	if resp, _ := get(t, handler, "/ready"); resp.StatusCode != http.StatusOK {
		t.Errorf("Expected status 200, got %d", resp.StatusCode)
	}

	mr.SetError("LOADING Redis is loading the dataset in memory")
	if resp, _ := get(t, handler, "/ready"); resp.StatusCode != http.StatusServiceUnavailable {
		t.Errorf("Expected status 503, got %d", resp.StatusCode)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	handler, _ := newTestRouter(t, &stubProvider{products: []catalog.ProductRecord{}})

	// Populate the cache metrics.
	get(t, handler, "/products/search?q=lamp")

	resp, body := get(t, handler, "/metrics")

	if resp.StatusCode != http.StatusOK {
		t.Errorf("Expected status 200, got %d", resp.StatusCode)
	}

	// Just verify we get prometheus output format
	if !strings.Contains(body, "# HELP") || !strings.Contains(body, "# TYPE") {
		t.Error("Expected Prometheus format metrics output")
	}

	if !strings.Contains(body, "product_cache_misses_total") {
		t.Error("Expected metrics output to contain product_cache_misses_total")
	}
}

func TestSearchHandler(t *testing.T) {
	record := catalog.ProductRecord{Source: "amazon", ID: "A1", Title: "Lamp", Currency: "USD", Features: []string{}, ASIN: "A1"}
	handler, mr := newTestRouter(t, &stubProvider{products: []catalog.ProductRecord{record}})

	t.Run("missing_query", func(t *testing.T) {
		for _, target := range []string{"/products/search", "/products/search?q=", "/products/search?q=%20%20"} {
			resp, body := get(t, handler, target)
			if resp.StatusCode != http.StatusBadRequest {
				t.Errorf("%s: expected status 400, got %d", target, resp.StatusCode)
			}
			if !strings.Contains(body, `"error"`) {
				t.Errorf("%s: expected error body, got %s", target, body)
			}
		}
	})

	t.Run("results", func(t *testing.T) {
		resp, body := get(t, handler, "/products/search?q=Desk+Lamp")
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("Expected status 200, got %d", resp.StatusCode)
		}
		if ct := resp.Header.Get("Content-Type"); !strings.HasPrefix(ct, "application/json") {
			t.Errorf("Content-Type = %q", ct)
		}

		var result catalog.SearchResult
		if err := json.Unmarshal([]byte(body), &result); err != nil {
			t.Fatalf("Invalid JSON: %v", err)
		}
		if len(result["amazon"]) != 1 || result["amazon"][0].ID != "A1" {
			t.Errorf("Unexpected result: %s", body)
		}
		if !mr.Exists("products:search:desk lamp") {
			t.Error("Expected search result to be cached")
		}
	})
}

func TestProductHandler(t *testing.T) {
	record := &catalog.ProductRecord{Source: "amazon", ID: "B0CHX1W1XY", Title: "Phone", Currency: "USD", Features: []string{}, ASIN: "B0CHX1W1XY"}

	tests := []struct {
		name       string
		provider   *stubProvider
		target     string
		wantStatus int
		wantBody   string
	}{
		{
			name:       "amazon route",
			provider:   &stubProvider{detail: record},
			target:     "/products/amazon/B0CHX1W1XY",
			wantStatus: http.StatusOK,
			wantBody:   `"id":"B0CHX1W1XY"`,
		},
		{
			name:       "generic route",
			provider:   &stubProvider{source: "local", detail: record},
			target:     "/products/local/B0CHX1W1XY",
			wantStatus: http.StatusOK,
			wantBody:   `"title":"Phone"`,
		},
		{
			name:       "not found is null",
			provider:   &stubProvider{},
			target:     "/products/amazon/B0MISSING0",
			wantStatus: http.StatusOK,
			wantBody:   "null",
		},
		{
			name:       "invalid source",
			provider:   &stubProvider{detail: record},
			target:     "/products/ebay/123",
			wantStatus: http.StatusBadRequest,
			wantBody:   "invalid source: ebay",
		},
		{
			name: "upstream failure",
			provider: &stubProvider{detailErr: &client.UpstreamError{
				Operation:  "GetItems",
				StatusCode: http.StatusTooManyRequests,
				ErrorClass: client.ErrorClassThrottled,
				Message:    "slow down",
			}},
			target:     "/products/amazon/B0CHX1W1XY",
			wantStatus: http.StatusBadGateway,
			wantBody:   "throttled",
		},
		{
			name:       "unexpected failure",
			provider:   &stubProvider{detailErr: errors.New("boom")},
			target:     "/products/amazon/B0CHX1W1XY",
			wantStatus: http.StatusInternalServerError,
			wantBody:   "boom",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler, _ := newTestRouter(t, tt.provider)

			resp, body := get(t, handler, tt.target)

			if resp.StatusCode != tt.wantStatus {
				t.Errorf("Expected status %d, got %d (%s)", tt.wantStatus, resp.StatusCode, body)
			}
			if !strings.Contains(body, tt.wantBody) {
				t.Errorf("Expected body to contain %q, got %s", tt.wantBody, body)
			}
		})
	}
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{&catalog.InvalidSourceError{Source: "x"}, http.StatusBadRequest},
		{&client.UpstreamError{ErrorClass: client.ErrorClassServer}, http.StatusBadGateway},
		{&cache.StoreError{Op: "get", Err: errors.New("down")}, http.StatusServiceUnavailable},
		{context.DeadlineExceeded, http.StatusGatewayTimeout},
		{&cache.StoreError{Op: "set", Key: "products:search:iphone", Err: context.DeadlineExceeded}, http.StatusGatewayTimeout},
		{&client.UpstreamError{ErrorClass: client.ErrorClassNetwork, Err: fmt.Errorf("post: %w", context.DeadlineExceeded)}, http.StatusGatewayTimeout},
		{&cache.StoreError{Op: "get", Err: context.Canceled}, statusClientClosedRequest},
		{errors.New("other"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		if got := statusFor(tt.err); got != tt.want {
			t.Errorf("statusFor(%v) = %d, want %d", tt.err, got, tt.want)
		}
	}
}

func TestStoreUnavailable(t *testing.T) {
	handler, mr := newTestRouter(t, &stubProvider{products: []catalog.ProductRecord{}})
	mr.SetError("LOADING Redis is loading the dataset in memory")

	resp, _ := get(t, handler, "/products/search?q=lamp")
	if resp.StatusCode != http.StatusServiceUnavailable {
		t.Errorf("Expected status 503, got %d", resp.StatusCode)
	}
}

func TestBuildService_EndToEnd(t *testing.T) {
	mock := testutil.NewMockPAAPI()
	defer mock.Close()

	t.Setenv("AMAZON_ACCESS_KEY", "AKIDEXAMPLE")
	t.Setenv("AMAZON_SECRET_KEY", "wJalrXUtnFEMI/K7MDENG+bPxRfiCYEXAMPLEKEY")
	t.Setenv("AMAZON_PARTNER_TAG", "tag-20")

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	sc, err := cfg.SigningContext()
	if err != nil {
		t.Fatalf("SigningContext failed: %v", err)
	}
	mock.VerifyWith(sc)

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer rdb.Close()
	store := cache.NewRedisStore(rdb)

	// buildService targets the real host; rebuild the client against the mock.
	if _, err := buildService(cfg, store); err != nil {
		t.Fatalf("buildService failed: %v", err)
	}
	clientCfg := client.DefaultConfig(sc)
	clientCfg.BaseURL = mock.URL()
	paapi, err := client.New(clientCfg)
	if err != nil {
		t.Fatalf("client.New failed: %v", err)
	}
	svc := catalog.NewService(
		cache.NewAside(store, cfg.CacheOptions()),
		catalog.NewRegistry(amazon.NewProvider(paapi, cfg.ProviderConfig())),
	)
	handler := newRouter(svc, store, zerolog.Nop())

	resp, body := get(t, handler, "/products/search?q=iphone+15")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", resp.StatusCode, body)
	}
	if !strings.Contains(body, testutil.SampleASIN) {
		t.Errorf("Expected sample ASIN in body: %s", body)
	}

	// Served from cache.
	get(t, handler, "/products/search?q=IPHONE+15")
	if mock.GetOperationCount("SearchItems") != 1 {
		t.Errorf("SearchItems calls = %d, want 1", mock.GetOperationCount("SearchItems"))
	}
	if mock.GetSignatureFailures() != 0 {
		t.Errorf("Signature failures = %d, want 0", mock.GetSignatureFailures())
	}

	resp, body = get(t, handler, "/products/amazon/"+testutil.SampleASIN)
	if resp.StatusCode != http.StatusOK || !strings.Contains(body, `"isPrime":true`) {
		t.Errorf("Unexpected detail response %d: %s", resp.StatusCode, body)
	}
}

func TestBuildService_RejectsMissingCredentials(t *testing.T) {
	cfg := &config.Config{UpstreamTimeout: time.Second}

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer rdb.Close()

	_, err := buildService(cfg, cache.NewRedisStore(rdb))

	var cfgErr *signer.ConfigurationError
	if !errors.As(err, &cfgErr) {
		t.Errorf("Expected ConfigurationError, got %v", err)
	}
}

// slowProvider blocks search until the request context ends.
type slowProvider struct{ stubProvider }

func (s *slowProvider) Search(ctx context.Context, _ string) ([]catalog.ProductRecord, error) {
	<-ctx.Done()
	return nil, ctx.Err()
}

func TestSearchDeadlineIsGatewayTimeout(t *testing.T) {
	handler, _ := newTestRouter(t, &slowProvider{})

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	req := httptest.NewRequest(http.MethodGet, "/products/search?q=iphone", nil).WithContext(ctx)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	if w.Code != http.StatusGatewayTimeout {
		t.Errorf("Expected status 504, got %d: %s", w.Code, w.Body.String())
	}
}
