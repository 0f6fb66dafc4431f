// Package server implements the MCP (Model Context Protocol) server for CT
// slice segmentation.
//
// This package provides a JSON-RPC 2.0 server that exposes the segmentation
// pipelines through the MCP protocol, so MCP-compatible clients can load
// slices, pick seeds from sampled intensities, grow regions and inspect the
// results.
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
// Slice Information:
//   - image_load: Load slice and get metadata and intensity range
//   - image_dimensions: Get width and height
//   - image_sample_values: Intensity and window statistics at points
//   - image_histogram: Intensity histogram with peak bins
//
// Region Growing:
//   - segment_connected_threshold: Fixed intensity interval
//   - segment_confidence_connected: Interval from region statistics
//   - segment_isolated_connected: Largest interval separating two seed sets
//
// Watershed:
//   - segment_watershed: Gradient watershed with basin merging
//
// Region Analysis:
//   - region_measure: Measure a saved mask over its slice
//   - region_overlay: Render a saved mask over its slice
//
// # Parameters
//
// Every parameter a tool call omits falls back to the configuration the
// server was created with (see internal/config). Overrides apply to the one
// call only.
//
// # Image Caching
//
// Slices and masks are cached by path for the lifetime of the server
// process. Saving a result to output_path replaces any cached copy of that
// path.
//
// # Error Handling
//
// Tool execution errors are returned as JSON-RPC error responses with:
//   - code: -32000 (tool execution failure), -32602 (malformed tools/call
//     params) or -32601 (unknown method)
//   - message: Human-readable error description
//   - data: The Go error string
//
// # Usage
//
//	srv := server.NewWithConfig(cfg, version)
//	if err := srv.Run(); err != nil {
//	    log.Fatal(err)
//	}
package server
