package render

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	gobreaker "github.com/sony/gobreaker/v2"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"cvforge/internal/config"
	"cvforge/internal/errors"
	"cvforge/internal/profile"
	"cvforge/internal/types"
)

const (
	previewPath = "/api/generate-preview"
	tailorPath  = "/api/tailor-cv"
)

// tailorRequest is the wire shape of a tailoring request.
type tailorRequest struct {
	ProfileData    types.Profile `json:"profile_data"`
	JobDescription string        `json:"job_description"`
}

// tailorResponse is the wire shape of a tailoring response.
type tailorResponse struct {
	PDFBase64   string `json:"pdf_base64"`
	CoverLetter string `json:"cover_letter"`
}

// backendError is the error body the rendering backend returns.
type backendError struct {
	Detail string `json:"detail"`
}

// Client talks to the rendering backend. Profiles are normalized before
// they leave the process, and every call resolves to a result or an
// AppError; a failed tailor never yields a partial TailorResult.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	logger     *errors.Logger

	previewCfg config.OperationBackendConfig
	tailorCfg  config.OperationBackendConfig
	previewCB  *Breaker[[]byte]
	tailorCB   *Breaker[*types.TailorResult]
}

// NewClient creates a rendering backend client from configuration.
func NewClient(cfg *config.Config, logger *errors.Logger) *Client {
	previewCfg := cfg.GetPreviewConfig()
	tailorCfg := cfg.GetTailorConfig()

	return &Client{
		baseURL: strings.TrimRight(cfg.Backend.BaseURL, "/"),
		apiKey:  cfg.Backend.APIKey,
		httpClient: &http.Client{
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		logger:     logger,
		previewCfg: previewCfg,
		tailorCfg:  tailorCfg,
		previewCB:  NewBreaker[[]byte]("preview", &previewCfg, logger),
		tailorCB:   NewBreaker[*types.TailorResult]("tailor", &tailorCfg, logger),
	}
}

// GeneratePreview renders the profile to a PDF and returns its bytes.
func (c *Client) GeneratePreview(ctx context.Context, p types.Profile) ([]byte, error) {
	payload := profile.Normalize(p)

	start := time.Now()
	pdf, err := c.previewCB.Execute(func() ([]byte, error) {
		callCtx, cancel := context.WithTimeout(ctx, *c.previewCfg.Timeout)
		defer cancel()

		body, status, err := c.post(callCtx, previewPath, payload)
		if err != nil {
			return nil, err
		}
		if status != http.StatusOK {
			return nil, c.statusError(status, body, "preview")
		}
		if len(body) == 0 {
			return nil, errors.NewRenderError(errors.ErrCodeInvalidResponse,
				"rendering backend returned an empty document", nil)
		}
		return body, nil
	})
	if err != nil {
		return nil, c.wrapBreakerError(err, "preview")
	}

	c.logger.Debug("Preview generated",
		"pdf_bytes", len(pdf),
		"duration_ms", time.Since(start).Milliseconds())
	return pdf, nil
}

// Tailor sends the profile and job description for tailoring and
// returns the rendered PDF with its cover letter. An empty job
// description is rejected locally, before any network traffic.
func (c *Client) Tailor(ctx context.Context, p types.Profile, jobDescription string) (*types.TailorResult, error) {
	if strings.TrimSpace(jobDescription) == "" {
		return nil, errors.NewValidationError(errors.ErrCodeEmptyJobDescription,
			"job description must not be empty", nil)
	}

	req := tailorRequest{
		ProfileData:    profile.Normalize(p),
		JobDescription: jobDescription,
	}

	start := time.Now()
	result, err := c.tailorCB.Execute(func() (*types.TailorResult, error) {
		callCtx, cancel := context.WithTimeout(ctx, *c.tailorCfg.Timeout)
		defer cancel()

		body, status, err := c.post(callCtx, tailorPath, req)
		if err != nil {
			return nil, err
		}
		if status != http.StatusOK {
			return nil, c.statusError(status, body, "tailor")
		}

		var resp tailorResponse
		if err := json.Unmarshal(body, &resp); err != nil {
			return nil, errors.NewRenderError(errors.ErrCodeInvalidResponse,
				"failed to decode tailoring response", err)
		}
		pdf, err := base64.StdEncoding.DecodeString(resp.PDFBase64)
		if err != nil {
			return nil, errors.NewRenderError(errors.ErrCodeInvalidResponse,
				"tailoring response carries invalid PDF data", err)
		}
		if len(pdf) == 0 {
			return nil, errors.NewRenderError(errors.ErrCodeInvalidResponse,
				"tailoring response carries an empty document", nil)
		}

		return &types.TailorResult{
			PDF:         pdf,
			CoverLetter: resp.CoverLetter,
		}, nil
	})
	if err != nil {
		return nil, c.wrapBreakerError(err, "tailor")
	}

	c.logger.Debug("Profile tailored",
		"pdf_bytes", len(result.PDF),
		"cover_letter_chars", len(result.CoverLetter),
		"duration_ms", time.Since(start).Milliseconds())
	return result, nil
}

// Stats returns circuit breaker statistics for both operations.
func (c *Client) Stats() map[string]any {
	return map[string]any{
		"preview": c.previewCB.GetStats(),
		"tailor":  c.tailorCB.GetStats(),
	}
}

// IsHealthy reports whether both operation breakers are closed.
func (c *Client) IsHealthy() bool {
	return c.previewCB.IsHealthy() && c.tailorCB.IsHealthy()
}

// post sends a JSON request and returns the raw response body and
// status. Transport-level failures come back as network AppErrors.
func (c *Client) post(ctx context.Context, path string, payload any) ([]byte, int, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, 0, errors.NewInternalError(errors.ErrCodeInvalidFormat,
			"failed to encode request payload", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(data))
	if err != nil {
		return nil, 0, errors.NewInternalError(errors.ErrCodeInvalidRequest,
			"failed to build backend request", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("X-API-Key", c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, 0, errors.NewNetworkError(errors.ErrCodeNetworkTimeout,
			"rendering backend unreachable", err).WithContext("url", c.baseURL+path)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resp.StatusCode, errors.NewNetworkError(errors.ErrCodeNetworkTimeout,
			"failed to read backend response", err)
	}

	return body, resp.StatusCode, nil
}

// statusError maps a non-200 backend response to a render AppError,
// surfacing the backend's own detail message when it sent one.
func (c *Client) statusError(status int, body []byte, operation string) error {
	message := fmt.Sprintf("rendering backend rejected the %s request", operation)
	var be backendError
	if err := json.Unmarshal(body, &be); err == nil && be.Detail != "" {
		message = be.Detail
	}

	return errors.NewRenderError(errors.ErrCodeRenderFailed, message, nil).
		WithContext("status", status).
		WithContext("operation", operation)
}

// wrapBreakerError converts breaker rejections into render AppErrors
// and passes AppErrors through untouched.
func (c *Client) wrapBreakerError(err error, operation string) error {
	if err == gobreaker.ErrOpenState || err == gobreaker.ErrTooManyRequests {
		return errors.NewRenderError(errors.ErrCodeRenderUnavailable,
			"rendering backend temporarily unavailable", err).
			WithContext("operation", operation)
	}
	return err
}
