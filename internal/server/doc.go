// Package server implements the MCP (Model Context Protocol) server that
// places detected rectangles on tracked surfaces.
//
// A client feeds the server what an AR runtime would: surface lifecycle
// events from plane tracking, the camera pose, touches and camera frames.
// The server finds rectangles in frames, hit-tests their corners against the
// known surfaces and reports each rectangle's world pose and size.
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
// Surface Lifecycle:
//   - surface_add, surface_update, surface_remove, surface_list
//
// Camera and Touch:
//   - camera_set: Pose and intrinsics used for hit testing
//   - touch_begin: Start a new observation generation
//   - touch_end: Release the touch
//
// Frame Operations:
//   - frame_info: Dimensions and format
//   - frame_detect_rectangles: Normalized corners of rectangles in a frame
//   - frame_outline: Preview with outlines drawn
//   - frame_crop: Zoom into a region or quad
//
// Rectangles:
//   - rectangle_reconstruct: Place corners (or a frame's largest rectangle)
//   - rectangle_list, rectangle_remove
//
// Rendering:
//   - overlay_list: Surfaces and rectangles as plain renderable data
//   - overlay_mesh: Triangle mesh for one rectangle
//
// Session:
//   - session_clear
//
// # Concurrency
//
// Requests are handled one at a time in arrival order, so the session is
// only ever touched from the server loop. Detection runs on a background
// goroutine bounded by the configured timeout; its result is tagged with the
// touch generation it started under and is discarded if a newer touch began.
//
// # Error Handling
//
// Tool execution errors are returned as JSON-RPC error responses with:
//   - code: -32000 (tool execution failure) or standard JSON-RPC codes
//   - message: Human-readable error description
//   - data: Additional error details (typically the Go error string)
//
// A rectangle that cannot be placed is not an error. The result carries a
// status and a user-facing message instead.
//
// # Usage
//
//	srv := server.New(cfg)
//	if err := srv.Run(); err != nil {
//	    log.Fatal(err)
//	}
package server
