package render

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"cvforge/internal/config"
	"cvforge/internal/errors"
	"cvforge/internal/types"
)

func testConfig(baseURL string) *config.Config {
	timeout := 5 * time.Second
	opCfg := config.OperationBackendConfig{
		Timeout: &timeout,
		CircuitBreaker: config.CircuitBreakerConfig{
			Enabled:          true,
			MaxRequests:      3,
			Interval:         60 * time.Second,
			Timeout:          60 * time.Second,
			MinRequests:      3,
			FailureThreshold: 0.6,
		},
	}

	return &config.Config{
		Backend: config.BackendConfig{
			BaseURL: baseURL,
			APIKey:  "test-key",
			Timeout: timeout,
			Preview: opCfg,
			Tailor:  opCfg,
		},
	}
}

func testClient(t *testing.T, baseURL string) *Client {
	t.Helper()
	logger, err := errors.New("error")
	if err != nil {
		t.Fatalf("Failed to create logger: %v", err)
	}
	return NewClient(testConfig(baseURL), logger)
}

func testProfile() types.Profile {
	p := types.NewProfile()
	p.ContactInfo = types.ContactInfo{Name: "Jo", Email: "jo@example.com", Phone: "555-0100"}
	p.Experience[0].Company = "Acme"
	p.Experience[0].Role = "Engineer"
	p.Experience[0].StartDate = "2020-01"
	p.Experience[0].DescriptionPoints = types.RawBullets("Built services\nRan them")
	p.Skills[0].Category = "Languages"
	p.Skills[0].Items = types.RawItems("Go, Rust")
	return p
}

func TestGeneratePreview(t *testing.T) {
	pdfBytes := []byte("%PDF-1.4 test document")

	var received types.Profile
	var gotAPIKey string
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/generate-preview" {
			t.Errorf("Unexpected path: %s", r.URL.Path)
		}
		gotAPIKey = r.Header.Get("X-API-Key")
		if err := json.NewDecoder(r.Body).Decode(&received); err != nil {
			t.Errorf("Failed to decode request: %v", err)
		}
		w.Header().Set("Content-Type", "application/pdf")
		_, _ = w.Write(pdfBytes)
	}))
	defer backend.Close()

	client := testClient(t, backend.URL)

	pdf, err := client.GeneratePreview(context.Background(), testProfile())
	if err != nil {
		t.Fatalf("GeneratePreview failed: %v", err)
	}
	if string(pdf) != string(pdfBytes) {
		t.Errorf("Expected PDF bytes %q, got %q", pdfBytes, pdf)
	}
	if gotAPIKey != "test-key" {
		t.Errorf("Expected API key header, got %q", gotAPIKey)
	}

	// The profile is normalized before it leaves the process
	if !received.Experience[0].DescriptionPoints.IsSplit() {
		t.Error("Expected description points split on the wire")
	}
	if !received.Skills[0].Items.IsTagged() {
		t.Error("Expected skill items split on the wire")
	}
}

func TestGeneratePreviewBackendError(t *testing.T) {
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		_ = json.NewEncoder(w).Encode(map[string]string{"detail": "profile is malformed"})
	}))
	defer backend.Close()

	client := testClient(t, backend.URL)

	_, err := client.GeneratePreview(context.Background(), testProfile())
	if err == nil {
		t.Fatal("Expected error for backend rejection")
	}

	appErr, ok := err.(*errors.AppError)
	if !ok {
		t.Fatalf("Expected AppError, got %T", err)
	}
	if appErr.Code != errors.ErrCodeRenderFailed {
		t.Errorf("Expected code %s, got %s", errors.ErrCodeRenderFailed, appErr.Code)
	}
	if appErr.Message != "profile is malformed" {
		t.Errorf("Backend detail should surface in the message, got %q", appErr.Message)
	}
}

func TestGeneratePreviewEmptyBody(t *testing.T) {
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer backend.Close()

	client := testClient(t, backend.URL)

	_, err := client.GeneratePreview(context.Background(), testProfile())
	if err == nil {
		t.Fatal("Expected error for empty response body")
	}
	appErr, ok := err.(*errors.AppError)
	if !ok {
		t.Fatalf("Expected AppError, got %T", err)
	}
	if appErr.Code != errors.ErrCodeInvalidResponse {
		t.Errorf("Expected code %s, got %s", errors.ErrCodeInvalidResponse, appErr.Code)
	}
}

func TestGeneratePreviewUnreachableBackend(t *testing.T) {
	client := testClient(t, "http://127.0.0.1:1")

	_, err := client.GeneratePreview(context.Background(), testProfile())
	if err == nil {
		t.Fatal("Expected error for unreachable backend")
	}
	appErr, ok := err.(*errors.AppError)
	if !ok {
		t.Fatalf("Expected AppError, got %T", err)
	}
	if appErr.Type != errors.ErrorTypeNetwork {
		t.Errorf("Expected network error, got type %s", appErr.Type)
	}
}

func TestTailor(t *testing.T) {
	pdfBytes := []byte("%PDF-1.4 tailored document")

	var received tailorRequest
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/tailor-cv" {
			t.Errorf("Unexpected path: %s", r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&received); err != nil {
			t.Errorf("Failed to decode request: %v", err)
		}
		_ = json.NewEncoder(w).Encode(tailorResponse{
			PDFBase64:   base64.StdEncoding.EncodeToString(pdfBytes),
			CoverLetter: "Dear hiring manager,",
		})
	}))
	defer backend.Close()

	client := testClient(t, backend.URL)

	result, err := client.Tailor(context.Background(), testProfile(), "We need a Go engineer")
	if err != nil {
		t.Fatalf("Tailor failed: %v", err)
	}
	if string(result.PDF) != string(pdfBytes) {
		t.Errorf("Expected decoded PDF bytes %q, got %q", pdfBytes, result.PDF)
	}
	if result.CoverLetter != "Dear hiring manager," {
		t.Errorf("Expected cover letter verbatim, got %q", result.CoverLetter)
	}

	if received.JobDescription != "We need a Go engineer" {
		t.Errorf("Expected job description on the wire, got %q", received.JobDescription)
	}
	if !received.ProfileData.Experience[0].DescriptionPoints.IsSplit() {
		t.Error("Expected normalized profile on the wire")
	}
}

func TestTailorEmptyJobDescription(t *testing.T) {
	// No backend: the empty job description must fail before any request
	client := testClient(t, "http://127.0.0.1:1")

	tests := []string{"", "   ", "\n\t"}
	for _, jd := range tests {
		_, err := client.Tailor(context.Background(), testProfile(), jd)
		if err == nil {
			t.Errorf("Expected error for job description %q", jd)
			continue
		}
		appErr, ok := err.(*errors.AppError)
		if !ok {
			t.Errorf("Expected AppError, got %T", err)
			continue
		}
		if appErr.Code != errors.ErrCodeEmptyJobDescription {
			t.Errorf("Expected code %s, got %s", errors.ErrCodeEmptyJobDescription, appErr.Code)
		}
	}
}

func TestTailorInvalidPDFData(t *testing.T) {
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(tailorResponse{
			PDFBase64:   "not base64 at all!!!",
			CoverLetter: "letter",
		})
	}))
	defer backend.Close()

	client := testClient(t, backend.URL)

	result, err := client.Tailor(context.Background(), testProfile(), "job description")
	if err == nil {
		t.Fatal("Expected error for invalid PDF data")
	}
	if result != nil {
		t.Error("A failed tailor must not yield a partial result")
	}
}

func TestTailorEmptyPDF(t *testing.T) {
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(tailorResponse{
			PDFBase64:   "",
			CoverLetter: "letter without a document",
		})
	}))
	defer backend.Close()

	client := testClient(t, backend.URL)

	result, err := client.Tailor(context.Background(), testProfile(), "job description")
	if err == nil {
		t.Fatal("Expected error for empty PDF")
	}
	if result != nil {
		t.Error("A failed tailor must not yield a partial result")
	}
}

func TestBreakerOpensAfterRepeatedFailures(t *testing.T) {
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer backend.Close()

	client := testClient(t, backend.URL)

	// MinRequests is 3 with a 0.6 threshold, so three straight failures trip it
	for i := 0; i < 3; i++ {
		if _, err := client.GeneratePreview(context.Background(), testProfile()); err == nil {
			t.Fatal("Expected failure from backend")
		}
	}

	if client.IsHealthy() {
		t.Error("Client should report unhealthy once the preview breaker opens")
	}

	_, err := client.GeneratePreview(context.Background(), testProfile())
	if err == nil {
		t.Fatal("Expected rejection from open breaker")
	}
	appErr, ok := err.(*errors.AppError)
	if !ok {
		t.Fatalf("Expected AppError, got %T", err)
	}
	if appErr.Code != errors.ErrCodeRenderUnavailable {
		t.Errorf("Expected code %s, got %s", errors.ErrCodeRenderUnavailable, appErr.Code)
	}

	// The tailor breaker is independent and still closed
	stats := client.Stats()
	tailorStats, ok := stats["tailor"].(map[string]any)
	if !ok {
		t.Fatal("Expected tailor breaker stats")
	}
	if state := tailorStats["state"]; state != "closed" {
		t.Errorf("Expected tailor breaker closed, got %v", state)
	}
}

func TestClientStats(t *testing.T) {
	client := testClient(t, "http://127.0.0.1:1")

	stats := client.Stats()
	for _, op := range []string{"preview", "tailor"} {
		opStats, ok := stats[op].(map[string]any)
		if !ok {
			t.Fatalf("Expected stats for %s", op)
		}
		if enabled, _ := opStats["enabled"].(bool); !enabled {
			t.Errorf("Expected %s breaker enabled", op)
		}
		if state := opStats["state"]; state != "closed" {
			t.Errorf("Expected %s breaker closed initially, got %v", op, state)
		}
	}

	if !client.IsHealthy() {
		t.Error("Fresh client should be healthy")
	}
}
