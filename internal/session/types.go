package session

import (
	"time"
)

// Role identifies the author of a transcript message.
type Role string

const (
	// RoleUser marks messages typed by the operator.
	RoleUser Role = "user"
	// RoleAssistant marks replies received from the backend.
	RoleAssistant Role = "assistant"
	// RoleError marks locally synthesized failure notes. Error messages
	// exist only in the mirror and are never sent to the backend.
	RoleError Role = "error"
)

// Message is one entry in a session transcript. Messages are immutable
// once appended.
type Message struct {
	ID        string    `json:"id"`
	Role      Role      `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// Session mirrors one backend conversation. The mirror is local
// bookkeeping: the backend holds the authoritative analysis state, the
// mirror holds the transcript and activity timestamps used for expiry.
type Session struct {
	ID           string    `json:"session_id"`
	Filename     string    `json:"filename"`
	Messages     []Message `json:"messages"`
	CreatedAt    time.Time `json:"created_at"`
	LastActivity time.Time `json:"last_activity"`
}

// Clone returns a deep copy that is safe to read after the registry
// lock is released.
func (s *Session) Clone() Session {
	out := *s
	out.Messages = make([]Message, len(s.Messages))
	copy(out.Messages, s.Messages)
	return out
}

// IdleFor reports how long the session has gone without a successful
// exchange.
func (s *Session) IdleFor(now time.Time) time.Duration {
	return now.Sub(s.LastActivity)
}

// HealthStatus reports the backend's condition as observed by a single
// probe.
type HealthStatus struct {
	// Available is true when the backend answered and reported itself
	// healthy.
	Available bool `json:"available"`
	// AIConfigured is true when the backend has a working language
	// model behind it. When false the backend still answers chat
	// requests with canned fallback analysis.
	AIConfigured bool `json:"ai_configured"`
	// ActiveSessions is the backend's own session count, which can
	// differ from the local mirror count.
	ActiveSessions int `json:"active_sessions"`
	// Reachable is false when the probe never got an answer.
	Reachable bool `json:"reachable"`
}

// Degraded is the status reported when a health probe fails. Probes
// never surface errors; an unreachable backend reads as all-clear-false.
func Degraded() HealthStatus {
	return HealthStatus{}
}
