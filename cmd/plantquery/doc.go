// Package main is the entry point for the plantquery CLI.
//
// The CLI talks to a P&ID analysis backend: it uploads DEXPI diagrams,
// chats about the resulting sessions, checks backend health, exports
// plant graphs as GraphML, and deletes sessions. All command behavior
// lives in internal/cli.
package main
