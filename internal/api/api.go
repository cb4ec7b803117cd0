// Package api defines the wire contract of the analysis backend.
//
// The backend speaks JSON over HTTP, except for session creation
// (multipart upload) and GraphML export (XML payload). Error bodies
// carry a single "detail" field regardless of endpoint.
package api

import "net/url"

// Endpoint paths.
const (
	PathCreateSession = "/sessions/create"
	PathChat          = "/chat"
	PathHealth        = "/health"
)

// UploadField is the multipart form field holding the diagram file.
const UploadField = "file"

// SessionPath returns the path addressing one session.
func SessionPath(sessionID string) string {
	return "/sessions/" + url.PathEscape(sessionID)
}

// ExportPath returns the GraphML export path for one session.
func ExportPath(sessionID string) string {
	return SessionPath(sessionID) + "/graphml"
}

// CreateSessionResponse is returned by POST /sessions/create.
type CreateSessionResponse struct {
	SessionID string `json:"session_id"`
	Status    string `json:"status"`
	Message   string `json:"message,omitempty"`
}

// ChatRequest is the body of POST /chat.
type ChatRequest struct {
	SessionID string `json:"session_id"`
	Message   string `json:"message"`
}

// ChatResponse is returned by POST /chat.
type ChatResponse struct {
	Response  string `json:"response"`
	SessionID string `json:"session_id,omitempty"`
	Timestamp string `json:"timestamp,omitempty"`
}

// DeleteSessionResponse is returned by DELETE /sessions/{id}.
type DeleteSessionResponse struct {
	Message string `json:"message"`
}

// HealthResponse is returned by GET /health.
type HealthResponse struct {
	Status          string `json:"status"`
	OpenAIAvailable bool   `json:"openai_available"`
	ActiveSessions  int    `json:"active_sessions"`
}

// ErrorResponse is the error body produced by the backend.
type ErrorResponse struct {
	Detail string `json:"detail"`
}
