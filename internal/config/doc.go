// Package config provides 12-factor configuration for the client.
//
// Configuration is loaded from environment variables with sensible
// defaults, or from an explicit YAML/TOML file. A .env file may be
// layered underneath the environment by the CLI before Load runs.
//
// Configuration Sections:
//   - Backend: base URL, request and health-probe timeouts, retry cap
//   - Session: idle threshold and sweep interval for expiry
//   - Export: GraphML output directory and compression
//   - Logging: log level and output format
//   - RateLimit: outbound request pacing
//   - Breaker: circuit breaker thresholds for the transport
//
// Example Usage:
//
//	cfg := config.LoadOrDefault()
//	fmt.Printf("Backend at %s\n", cfg.Backend.URL)
//
// Environment Variables:
//   - BACKEND_URL, REQUEST_TIMEOUT, PROBE_TIMEOUT, RETRY_MAX
//   - IDLE_THRESHOLD, SWEEP_INTERVAL
//   - EXPORT_DIR, EXPORT_COMPRESS
//   - LOG_LEVEL, LOG_DEV
//   - RATE_LIMIT_RPS, RATE_LIMIT_BURST
//   - BREAKER_ENABLED, BREAKER_THRESHOLD, BREAKER_COOLDOWN
package config
