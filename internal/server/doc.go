// Package server implements the MCP (Model Context Protocol) server for
// floor plan analysis.
//
// This package provides a JSON-RPC 2.0 server that exposes the detection
// pipeline and the learning engine through the MCP protocol, so
// MCP-compatible clients can analyze floor plan images and feed human
// corrections back into the learning store.
//
// # Protocol
//
// The server communicates over stdio using JSON-RPC 2.0:
//   - Input: JSON-RPC requests on stdin (one per line)
//   - Output: JSON-RPC responses on stdout
//
// Supported MCP methods:
//   - initialize: Protocol handshake
//   - tools/list: Enumerate available tools
//   - tools/call: Execute a tool with arguments
//   - ping: Health check
//
// # Available Tools
//
// Analysis:
//   - floorplan_analyze: Run the full detection pipeline on an image
//
// Correction forwarding:
//   - floorplan_add_walls, floorplan_add_rooms, floorplan_add_doors,
//     floorplan_add_windows, floorplan_add_measurements: record manual
//     edits against a session
//   - floorplan_delete_feature: mark a detection as rejected
//   - floorplan_save_session: persist the session to history
//
// Historical analysis:
//   - floorplan_analyze_patterns: aggregate correction patterns across
//     saved sessions
//
// # Image Caching
//
// The server maintains an in-memory cache of loaded images, keyed by path,
// so re-analysis of the same file skips disk I/O and decoding. The cache
// persists for the lifetime of the server process.
//
// # Error Handling
//
// Tool execution errors are returned as JSON-RPC error responses with:
//   - code: -32000 (tool execution failure) or standard JSON-RPC codes
//   - message: Human-readable error description
//   - data: Additional error details (typically the Go error string)
//
// Saving a session that is not active is not a protocol error; the tool
// responds with saved=false and an empty path.
//
// # Usage
//
// The server is typically started by an MCP client:
//
//	srv := server.New(server.Options{Analyzer: analyzer, Store: store})
//	if err := srv.Run(); err != nil {
//	    log.Fatal(err)
//	}
package server
