// Package server exposes flyer date extraction as an MCP (Model Context
// Protocol) server.
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
//   - flyer_extract_dates: OCR a flyer in six variants and return candidate
//     date components as a single-image report
//   - flyer_ocr_variants: Return the raw OCR text of every variant
//   - flyer_scan_text: Run the date detectors over supplied text, no OCR
//   - flyer_list_images: List the flyers in a directory
//
// # Image Caching
//
// Images are decoded into the server's ImageCache for the duration of one
// tool call and evicted afterwards. Recognized text is cached by the OCR
// engine, not by the server.
//
// # Error Handling
//
// Tool execution errors are returned as JSON-RPC error responses with:
//   - code: -32000 (tool execution failure) or standard JSON-RPC codes
//   - message: Human-readable error description
//   - data: The Go error string
//
// Unparseable request lines get a -32700 response with a null id.
//
// # Usage
//
// The server is started by the "flyerdates serve" command:
//
//	srv := server.New(extractor, version, logger)
//	if err := srv.Serve(ctx, os.Stdin, os.Stdout); err != nil {
//	    return err
//	}
package server
