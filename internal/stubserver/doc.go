// Package stubserver is a development stand-in for the remote
// analysis backend.
//
// It speaks the same wire contract the production backend does:
// multipart diagram upload, chat, session delete, health, and GraphML
// export, with {"detail": ...} error bodies. Uploaded XML is parsed
// for DEXPI vocabulary (Equipment, PipingComponent, Pipe, Connection)
// into a component graph; chat answers are deterministic keyword
// replies computed from that graph, standing in for the language
// model. Sessions live in a TTL cache and age out on their own.
//
// The stub exists so the client and CLI can be exercised end to end
// without the production backend or an API key.
package stubserver
