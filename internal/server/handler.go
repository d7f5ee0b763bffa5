package server

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"cvforge/internal/common"
	"cvforge/internal/identity"
	"cvforge/internal/observability"
	"cvforge/internal/types"

	"go.opentelemetry.io/otel/attribute"
)

// createPreviewHandler wraps the preview handler with observability
func (s *Server) createPreviewHandler(om *observability.ObservabilityManager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		tracer := om.Tracer("cvforge.api")
		ctx, span := tracer.Start(ctx, "api.generate_preview")
		defer span.End()

		// Parse request
		var profile types.Profile
		if err := parseJSONRequest(r, &profile); err != nil {
			span.RecordError(err)
			span.SetAttributes(attribute.String("error.type", "validation"))
			writeErrorResponse(w, "Invalid request body", err.Error(), http.StatusBadRequest)
			return
		}
		profile.EnsureKeys()

		// Required-field validation
		if err := common.EnsureSubmittable(profile); err != nil {
			span.RecordError(err)
			span.SetAttributes(attribute.String("error.type", "validation"))
			writeErrorResponse(w, "Profile is incomplete", err.Error(), http.StatusBadRequest)
			return
		}

		span.SetAttributes(
			attribute.Int("request.experience_entries", len(profile.Experience)),
			attribute.String("request.font_style", profile.FontStyle),
			attribute.String("operation", "preview"),
		)

		// Track backend operation with observability
		metrics := om.GetMetrics()
		var pdf []byte
		err := metrics.TrackBackendOperation(ctx, "preview", func(ctx context.Context) *observability.BackendOperationResult {
			rendered, renderErr := s.Renderer.GeneratePreview(ctx, profile)
			pdf = rendered
			return &observability.BackendOperationResult{
				Error:    renderErr,
				PDFBytes: int64(len(rendered)),
			}
		}, om)

		if err != nil {
			span.RecordError(err)
			span.SetAttributes(attribute.String("error.type", "render"))
			metrics.RecordBusinessMetric(ctx, "preview_generated", false,
				attribute.String("error", err.Error()))
			writeErrorResponse(w, "Failed to generate preview", err.Error(), http.StatusBadGateway)
			return
		}

		metrics.RecordBusinessMetric(ctx, "preview_generated", true,
			attribute.Int("response.pdf_bytes", len(pdf)))

		span.SetAttributes(
			attribute.Bool("success", true),
			attribute.Int("response.pdf_bytes", len(pdf)),
		)

		w.Header().Set("Content-Type", "application/pdf")
		w.Header().Set("Content-Length", strconv.Itoa(len(pdf)))
		if _, err := w.Write(pdf); err != nil {
			span.RecordError(err)
			s.Logger.LogError(err, "Failed to write PDF response")
		}
	}
}

// createTailorHandler wraps the tailor handler with observability
func (s *Server) createTailorHandler(om *observability.ObservabilityManager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		tracer := om.Tracer("cvforge.api")
		ctx, span := tracer.Start(ctx, "api.tailor_cv")
		defer span.End()

		var req TailorCVRequest
		if err := parseJSONRequest(r, &req); err != nil {
			span.RecordError(err)
			span.SetAttributes(attribute.String("error.type", "validation"))
			writeErrorResponse(w, "Invalid request body", err.Error(), http.StatusBadRequest)
			return
		}
		req.ProfileData.EnsureKeys()

		if strings.TrimSpace(req.JobDescription) == "" {
			err := fmt.Errorf("missing job description")
			span.RecordError(err)
			span.SetAttributes(attribute.String("error.type", "validation"))
			writeErrorResponse(w, "Missing job description", "job_description field is required", http.StatusBadRequest)
			return
		}

		if err := common.EnsureSubmittable(req.ProfileData); err != nil {
			span.RecordError(err)
			span.SetAttributes(attribute.String("error.type", "validation"))
			writeErrorResponse(w, "Profile is incomplete", err.Error(), http.StatusBadRequest)
			return
		}

		// Size validation
		if len(req.JobDescription) > int(s.MaxRequestSize/2) {
			err := fmt.Errorf("job description too large: %d chars", len(req.JobDescription))
			span.RecordError(err)
			span.SetAttributes(attribute.String("error.type", "validation"))
			writeErrorResponse(w, "Job description too large", fmt.Sprintf("job_description exceeds recommended size limit of %d characters", s.MaxRequestSize/2), http.StatusBadRequest)
			return
		}

		span.SetAttributes(
			attribute.Int("request.job_length", len(req.JobDescription)),
			attribute.String("operation", "tailor"),
		)

		metrics := om.GetMetrics()
		var result *types.TailorResult
		err := metrics.TrackBackendOperation(ctx, "tailor", func(ctx context.Context) *observability.BackendOperationResult {
			tailored, tailorErr := s.Renderer.Tailor(ctx, req.ProfileData, req.JobDescription)
			result = tailored
			res := &observability.BackendOperationResult{Error: tailorErr}
			if tailored != nil {
				res.PDFBytes = int64(len(tailored.PDF))
			}
			return res
		}, om)

		if err != nil {
			span.RecordError(err)
			span.SetAttributes(attribute.String("error.type", "render"))
			metrics.RecordBusinessMetric(ctx, "profile_tailored", false,
				attribute.String("error", err.Error()))
			writeErrorResponse(w, "Failed to tailor profile", err.Error(), http.StatusBadGateway)
			return
		}

		metrics.RecordBusinessMetric(ctx, "profile_tailored", true,
			attribute.Int("response.pdf_bytes", len(result.PDF)),
			attribute.Int("response.letter_length", len(result.CoverLetter)))

		span.SetAttributes(
			attribute.Bool("success", true),
			attribute.Int("response.pdf_bytes", len(result.PDF)),
		)

		response := TailorCVResponse{
			PDFBase64:   base64.StdEncoding.EncodeToString(result.PDF),
			CoverLetter: result.CoverLetter,
		}

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(response); err != nil {
			span.RecordError(err)
			http.Error(w, "Failed to encode response", http.StatusInternalServerError)
		}
	}
}

// createProfileHandler serves the per-user document endpoints. GET loads
// the stored profile, PUT replaces it. Both require a verified identity.
func (s *Server) createProfileHandler(om *observability.ObservabilityManager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		tracer := om.Tracer("cvforge.api")
		ctx, span := tracer.Start(ctx, "api.profile")
		defer span.End()

		id, ok := s.verifyIdentity(ctx, w, r)
		if !ok {
			span.SetAttributes(attribute.String("error.type", "auth"))
			return
		}
		span.SetAttributes(attribute.String("identity.subject", id.Subject))

		switch r.Method {
		case http.MethodGet:
			s.handleLoadProfile(ctx, w, id, om)
		case http.MethodPut:
			s.handleSaveProfile(ctx, w, r, id, om)
		default:
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
	}
}

// verifyIdentity extracts and verifies the Bearer credential on a request
func (s *Server) verifyIdentity(ctx context.Context, w http.ResponseWriter, r *http.Request) (identity.Identity, bool) {
	if s.Verifier == nil {
		writeErrorResponse(w, "Identity verification unavailable", "no identity verifier is configured", http.StatusServiceUnavailable)
		return identity.Identity{}, false
	}

	authHeader := r.Header.Get("Authorization")
	token, ok := strings.CutPrefix(authHeader, "Bearer ")
	if !ok || token == "" {
		s.Logger.Info("Authentication failed: missing identity token",
			"endpoint", r.URL.Path,
			"client_ip", getClientIP(r))
		writeErrorResponse(w, "Missing identity token", "Authorization Bearer token required", http.StatusUnauthorized)
		return identity.Identity{}, false
	}

	id, err := s.Verifier.Verify(ctx, token)
	if err != nil {
		s.Logger.Info("Authentication failed: invalid identity token",
			"endpoint", r.URL.Path,
			"client_ip", getClientIP(r))
		writeErrorResponse(w, "Invalid identity token", "Unauthorized access", http.StatusUnauthorized)
		return identity.Identity{}, false
	}

	return id, true
}

// handleLoadProfile responds with the stored profile, or 204 when none exists
func (s *Server) handleLoadProfile(ctx context.Context, w http.ResponseWriter, id identity.Identity, om *observability.ObservabilityManager) {
	ctx, cancel := context.WithTimeout(ctx, s.AppConfig.Storage.Timeout)
	defer cancel()

	metrics := om.GetMetrics()

	profile, err := s.Documents.Load(ctx, id)
	if err != nil {
		metrics.RecordBusinessMetric(ctx, "profile_loaded", false)
		writeErrorResponse(w, "Failed to load profile", err.Error(), http.StatusBadGateway)
		return
	}
	if profile == nil {
		metrics.RecordBusinessMetric(ctx, "profile_loaded", true,
			attribute.Bool("found", false))
		w.WriteHeader(http.StatusNoContent)
		return
	}

	metrics.RecordBusinessMetric(ctx, "profile_loaded", true,
		attribute.Bool("found", true))

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(profile); err != nil {
		s.Logger.LogError(err, "Failed to encode profile response")
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
	}
}

// handleSaveProfile stores the submitted profile for the verified identity
func (s *Server) handleSaveProfile(ctx context.Context, w http.ResponseWriter, r *http.Request, id identity.Identity, om *observability.ObservabilityManager) {
	var profile types.Profile
	if err := parseJSONRequest(r, &profile); err != nil {
		writeErrorResponse(w, "Invalid request body", err.Error(), http.StatusBadRequest)
		return
	}
	profile.EnsureKeys()

	ctx, cancel := context.WithTimeout(ctx, s.AppConfig.Storage.Timeout)
	defer cancel()

	metrics := om.GetMetrics()

	if err := s.Documents.Save(ctx, id, profile); err != nil {
		metrics.RecordBusinessMetric(ctx, "profile_saved", false)
		writeErrorResponse(w, "Failed to save profile", err.Error(), http.StatusBadGateway)
		return
	}

	metrics.RecordBusinessMetric(ctx, "profile_saved", true)
	w.WriteHeader(http.StatusNoContent)
}

// createRateLimitMiddleware adds observability to rate limiting
func (s *Server) createRateLimitMiddleware(om *observability.ObservabilityManager) func(http.HandlerFunc) http.HandlerFunc {
	originalMiddleware := s.rateLimitMiddleware()

	return func(next http.HandlerFunc) http.HandlerFunc {
		return originalMiddleware(func(w http.ResponseWriter, r *http.Request) {
			// Wrap the ResponseWriter to detect rate limit responses
			wrapper := &responseWrapper{ResponseWriter: w, statusCode: 200}

			next(wrapper, r)

			// If rate limited, record metric
			if wrapper.statusCode == http.StatusTooManyRequests {
				metrics := om.GetMetrics()
				metrics.RecordBusinessMetric(r.Context(), "rate_limit_hit", true,
					attribute.String("endpoint", r.URL.Path),
					attribute.String("method", r.Method))
			}
		})
	}
}

// responseWrapper wraps http.ResponseWriter to capture status code
type responseWrapper struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWrapper) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}
