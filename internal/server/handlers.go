package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/ironsheep/flyer-dates/internal/batch"
	"github.com/ironsheep/flyer-dates/internal/dates"
	"github.com/ironsheep/flyer-dates/internal/extract"
	"github.com/ironsheep/flyer-dates/internal/imaging"
	"github.com/ironsheep/flyer-dates/internal/report"
)

// ToolCallParams represents the parameters for a tools/call MCP request.
type ToolCallParams struct {
	// Name is the tool to invoke (e.g., "flyer_extract_dates").
	Name string `json:"name"`

	// Arguments contains the tool-specific parameters as JSON.
	Arguments json.RawMessage `json:"arguments"`
}

// handleToolsCall processes a tools/call request and executes the specified tool.
//
// The response wraps the tool result in MCP's content format:
//
//	{
//	  "content": [{"type": "text", "text": "<JSON result>"}]
//	}
//
// Tool execution errors return a JSON-RPC error response with code -32000.
func (s *Server) handleToolsCall(ctx context.Context, req *MCPRequest) *MCPResponse {
	var params ToolCallParams
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return s.errorResponse(req.ID, -32602, "Invalid params", err.Error())
	}

	result, err := s.executeTool(ctx, params.Name, params.Arguments)
	if err != nil {
		s.logger.Warn("tool failed", "tool", params.Name, "error", err)
		return s.errorResponse(req.ID, -32000, "Tool execution failed", err.Error())
	}

	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"content": []map[string]interface{}{
				{
					"type": "text",
					"text": mustMarshalJSON(result),
				},
			},
		},
	}
}

// executeTool dispatches tool execution to the appropriate handler function.
func (s *Server) executeTool(ctx context.Context, name string, args json.RawMessage) (interface{}, error) {
	switch name {
	case "flyer_extract_dates":
		return s.handleExtractDates(ctx, args)
	case "flyer_ocr_variants":
		return s.handleOCRVariants(ctx, args)
	case "flyer_scan_text":
		return s.handleScanText(args)
	case "flyer_list_images":
		return s.handleListImages(args)
	default:
		return nil, fmt.Errorf("unknown tool: %s", name)
	}
}

// errorResponse creates a JSON-RPC error response with the given details.
func (s *Server) errorResponse(id interface{}, code int, message, data string) *MCPResponse {
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      id,
		Error: &MCPError{
			Code:    code,
			Message: message,
			Data:    data,
		},
	}
}

// mustMarshalJSON converts a value to pretty-printed JSON string.
// On marshal failure it returns an empty string.
func mustMarshalJSON(v interface{}) string {
	b, _ := json.MarshalIndent(v, "", "  ")
	return string(b)
}

type extractArgs struct {
	Path            string `json:"path"`
	IncludeVariants bool   `json:"include_variants"`
}

// extractPath loads path, runs the extractor and drops the decoded image
// afterwards so long-lived servers do not accumulate flyers.
func (s *Server) extractPath(ctx context.Context, path string) (*extract.Result, *imaging.ImageInfo, error) {
	if path == "" {
		return nil, nil, errors.New("path is required")
	}
	defer s.cache.Evict(path)

	info, err := imaging.LoadImageInfo(s.cache, path)
	if err != nil {
		return nil, nil, err
	}
	img, err := s.cache.Load(path)
	if err != nil {
		return nil, nil, err
	}

	res, err := s.extractor.Extract(ctx, path, img)
	if err != nil {
		return nil, nil, err
	}
	return res, info, nil
}

func (s *Server) handleExtractDates(ctx context.Context, args json.RawMessage) (interface{}, error) {
	var a extractArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	res, info, err := s.extractPath(ctx, a.Path)
	if err != nil {
		return nil, err
	}
	return report.FromResult(res, info, a.IncludeVariants), nil
}

func (s *Server) handleOCRVariants(ctx context.Context, args json.RawMessage) (interface{}, error) {
	var a extractArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	res, _, err := s.extractPath(ctx, a.Path)
	if err != nil {
		return nil, err
	}
	return map[string]interface{}{
		"image":    res.Image,
		"variants": res.Variants,
	}, nil
}

type scanTextArgs struct {
	Text string `json:"text"`
}

func (s *Server) handleScanText(args json.RawMessage) (interface{}, error) {
	var a scanTextArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	return dates.ScanText(a.Text), nil
}

type listImagesArgs struct {
	Dir           string `json:"dir"`
	IncludeHidden bool   `json:"include_hidden"`
}

func (s *Server) handleListImages(args json.RawMessage) (interface{}, error) {
	var a listImagesArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	sources, err := batch.Discover(a.Dir, nil, !a.IncludeHidden)
	if err != nil {
		return nil, err
	}
	images := make([]string, 0, len(sources))
	for _, src := range sources {
		images = append(images, src.Path)
	}
	return map[string]interface{}{
		"dir":    a.Dir,
		"images": images,
		"count":  len(images),
	}, nil
}
