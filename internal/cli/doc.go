// Package cli implements the plantquery command line interface.
//
// Commands:
//   - upload: create an analysis session from a DEXPI diagram
//   - chat: interactive or single-shot questions about a session
//   - status: backend health, AI availability, breaker state
//   - export: download a session's graph as GraphML
//   - sessions: backend activity plus locally mirrored sessions
//   - delete: remove a session remotely and locally
//
// Every command builds its own transport and session client from the
// resolved configuration (flags over file or environment), so flags like
// --backend take effect per invocation. Output goes through lipgloss
// styles that degrade to plain text off-terminal; --json switches to
// machine-readable output on every command that prints structured data.
package cli
