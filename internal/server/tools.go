package server

// Tool represents an MCP tool definition
type Tool struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	InputSchema map[string]interface{} `json:"inputSchema"`
}

// GetToolDefinitions returns all available tools
func GetToolDefinitions() []Tool {
	pathProp := map[string]interface{}{
		"type":        "string",
		"description": "Absolute path to the flyer image file",
	}

	return []Tool{
		{
			Name:        "flyer_extract_dates",
			Description: "Run OCR on a flyer image (original plus five thresholded variants) and return candidate day-of-week, day-of-month, month and year tokens. Candidates are unvalidated and may conflict.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProp,
					"include_variants": map[string]interface{}{
						"type":        "boolean",
						"description": "Include the raw OCR text of every variant. Default false",
						"default":     false,
					},
				},
				"required": []string{"path"},
			},
		},
		{
			Name:        "flyer_ocr_variants",
			Description: "Return the raw OCR text Tesseract produced for each of the six image variants, in corpus order.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProp,
				},
				"required": []string{"path"},
			},
		},
		{
			Name:        "flyer_scan_text",
			Description: "Run the date detectors over already recognized text without OCR. Text is lowercased and split on line feeds.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"text": map[string]interface{}{
						"type":        "string",
						"description": "Text to scan",
					},
				},
				"required": []string{"text"},
			},
		},
		{
			Name:        "flyer_list_images",
			Description: "List the supported image files directly inside a directory, sorted by name.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"dir": map[string]interface{}{
						"type":        "string",
						"description": "Absolute path to the flyer directory",
					},
					"include_hidden": map[string]interface{}{
						"type":        "boolean",
						"description": "Include dot files. Default false",
						"default":     false,
					},
				},
				"required": []string{"dir"},
			},
		},
	}
}

// handleToolsList returns the tool catalogue.
func (s *Server) handleToolsList(req *MCPRequest) *MCPResponse {
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"tools": GetToolDefinitions(),
		},
	}
}
