// Package session is the client for the remote P&ID analysis backend.
//
// Sessions live on the backend, which parses the uploaded diagram into
// a component graph and answers questions about it. The client keeps a
// local mirror per session: the conversation transcript plus creation
// and activity timestamps. The mirror is bookkeeping, not truth; the
// backend never sees it.
//
// Components:
//   - Client: the session operations over one shared transport
//   - registry: mutex-guarded mirror store
//   - Sweeper: periodic idle-session expiry
//
// Failure surface:
//   - CreateSession, ProcessMessage, DownloadExport return typed
//     errors and leave the mirror untouched on failure
//   - DeleteSession and APIStatus never fail outward; remote problems
//     are logged and absorbed
//
// Nothing retries automatically. A failed call fails once; the caller
// decides whether to try again.
//
// Example Usage:
//
//	tc := transport.New(transport.Options{BaseURL: "http://localhost:8000"})
//	client := session.New(tc, session.Options{Logger: logger})
//	sid, err := client.CreateSessionFromFile(ctx, "plant.xml")
//	reply, err := client.ProcessMessage(ctx, sid, "How many valves are there?")
package session
