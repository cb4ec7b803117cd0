// Package main runs the stand-in analysis backend.
//
// The stub implements the same wire contract as the real backend:
// multipart session creation, chat, delete, health, and GraphML export,
// plus a prometheus /metrics endpoint. It parses uploaded DEXPI XML
// into a component graph and answers questions deterministically from
// the graph, which makes it suitable for development and demos without
// any AI credentials.
//
// Usage:
//
//	plantquery-stub -addr :8000 -ai-available=false
package main
