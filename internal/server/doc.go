// Package server implements an MCP (Model Context Protocol) server that
// measures droplet contact angles.
//
// # Protocol
//
// The server speaks JSON-RPC 2.0, one message per line:
//   - Input: requests on stdin
//   - Output: responses on stdout (logs go to stderr)
//
// Supported methods are initialize, tools/list, tools/call and ping.
//
// # Tools
//
//   - droplet_contact_angle: left and right contact angles plus drop geometry
//   - droplet_baseline: the fitted substrate line and its samples
//   - droplet_edges: the traced silhouette flanks and apex
//   - droplet_overlay: a PNG of the analysis drawn over the subpixel frame
//   - droplet_batch: angles for many frames with a summary
//
// Every tool takes a path (local file or, with a fetcher, an http(s) URL)
// and an optional "config" object whose non-zero fields override the
// server's pipeline configuration.
//
// # Error Handling
//
// Tool failures are returned as JSON-RPC errors with code -32000 and the Go
// error string as data. Malformed params use -32602, unknown methods -32601.
package server
