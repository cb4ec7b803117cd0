/*
Package monitoring provides Prometheus metrics collection.

# Overview

Tracks client operations (create, chat, delete, status, export), the
mirrored session count, idle expiries, export volume, and HTTP requests
served by the stub backend. Each Metrics instance owns its registry, so
collectors never collide across tests or embedded use.

# Usage

	metrics := monitoring.NewMetrics()

	timer := monitoring.NewTimer(metrics, "chat")
	// ... perform operation ...
	timer.Stop("success")

	// Stub backend wiring
	router.Use(monitoring.Middleware(metrics))
	router.GET("/metrics", gin.WrapH(metrics.Handler()))
*/
package monitoring
