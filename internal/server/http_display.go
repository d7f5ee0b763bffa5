package server

import "fmt"

// displayServerInfo shows server configuration information
func (s *Server) displayServerInfo() {
	s.displayEndpoints()
	s.displayAuthInfo()
	s.displayStorageInfo()
	s.displayRequestLimitInfo()
	s.displayRateLimitInfo()
}

// displayEndpoints shows available API endpoints
func (s *Server) displayEndpoints() {
	fmt.Println("Available endpoints:")
	fmt.Println("  GET  /health                - Health check")
	fmt.Println("  GET  /stats                 - Server statistics")
	fmt.Println("  POST /api/generate-preview  - Render profile to PDF (requires API key)")
	fmt.Println("  POST /api/tailor-cv         - Tailor profile to a job description (requires API key)")
	fmt.Println("  GET  /api/profile           - Load stored profile (requires identity token)")
	fmt.Println("  PUT  /api/profile           - Save profile (requires identity token)")
}

// displayAuthInfo shows authentication configuration
func (s *Server) displayAuthInfo() {
	if len(s.APIKeys) > 0 {
		fmt.Printf("API authentication: ENABLED (%d keys configured)\n", len(s.APIKeys))
		fmt.Println("Include 'X-API-Key: <your-key>' header in requests to the render endpoints")
	} else {
		fmt.Println("API authentication: DISABLED (no API keys configured)")
		fmt.Println("WARNING: Render endpoints are publicly accessible!")
	}

	if s.Verifier != nil {
		fmt.Println("Identity verification: ENABLED (Google ID tokens)")
	} else {
		fmt.Println("Identity verification: DISABLED (profile endpoints unavailable)")
	}
}

// displayStorageInfo shows document store configuration
func (s *Server) displayStorageInfo() {
	switch s.AppConfig.Storage.Mode {
	case "mongo":
		fmt.Printf("Document store: MongoDB (%s/%s)\n",
			s.AppConfig.Storage.Database, s.AppConfig.Storage.Collection)
	default:
		fmt.Println("Document store: in-memory (profiles lost on restart)")
	}
}

// displayRequestLimitInfo shows request size limit configuration
func (s *Server) displayRequestLimitInfo() {
	if s.MaxRequestSize > 0 {
		fmt.Printf("Request size limit: %d bytes (%.1f MB)\n", s.MaxRequestSize, float64(s.MaxRequestSize)/(1024*1024))
	} else {
		fmt.Println("Request size limit: DISABLED")
		fmt.Println("WARNING: No request size limits configured!")
	}
}

// displayRateLimitInfo shows rate limiting configuration
func (s *Server) displayRateLimitInfo() {
	if s.RateLimit != nil && s.RateLimit.Enabled {
		fmt.Printf("Rate limiting: ENABLED (%d requests/min, burst: %d)\n",
			s.RateLimit.RequestsPerMin, s.RateLimit.BurstCapacity)
		if s.RateLimit.ByAPIKey {
			fmt.Println("  - Per API key rate limiting enabled")
		}
		if s.RateLimit.ByIP {
			fmt.Println("  - Per IP address rate limiting enabled")
		}
	} else {
		fmt.Println("Rate limiting: DISABLED")
		fmt.Println("WARNING: No rate limiting configured!")
	}
}
