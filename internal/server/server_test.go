package server

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ironsheep/flyer-dates/internal/dates"
	"github.com/ironsheep/flyer-dates/internal/extract"
)

// fixedExtractor scans a fixed text for every image.
type fixedExtractor struct {
	text string
	err  error
	ids  []string
}

func (f *fixedExtractor) Extract(_ context.Context, id string, img image.Image) (*extract.Result, error) {
	f.ids = append(f.ids, id)
	if f.err != nil {
		return nil, f.err
	}
	if img == nil {
		return nil, errors.New("nil image")
	}
	return &extract.Result{
		Image:      id,
		Components: dates.ScanText(f.text),
		Variants: []extract.VariantText{
			{Name: "original", Title: "Original Image", Text: f.text},
		},
	}, nil
}

func newTestServer(text string) (*Server, *fixedExtractor) {
	fx := &fixedExtractor{text: text}
	return New(fx, "1.2.3", nil), fx
}

// createTestImage writes a small PNG and returns its path.
func createTestImage(t *testing.T, dir, name string) string {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, 20, 10))
	for y := 0; y < 10; y++ {
		for x := 0; x < 20; x++ {
			img.Set(x, y, color.White)
		}
	}

	path := filepath.Join(dir, name)
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("failed to create file: %v", err)
	}
	defer f.Close()

	if err := png.Encode(f, img); err != nil {
		t.Fatalf("failed to encode image: %v", err)
	}
	return path
}

// callTool executes a tools/call request and decodes the text content.
func callTool(t *testing.T, s *Server, name string, args interface{}) (map[string]interface{}, *MCPError) {
	t.Helper()

	rawArgs, err := json.Marshal(args)
	if err != nil {
		t.Fatalf("marshal args: %v", err)
	}
	params, _ := json.Marshal(ToolCallParams{Name: name, Arguments: rawArgs})

	resp := s.handleRequest(context.Background(), &MCPRequest{
		JSONRPC: "2.0",
		ID:      1,
		Method:  "tools/call",
		Params:  params,
	})
	if resp == nil {
		t.Fatal("handleRequest returned nil")
	}
	if resp.Error != nil {
		return nil, resp.Error
	}

	result := resp.Result.(map[string]interface{})
	content := result["content"].([]map[string]interface{})
	var decoded map[string]interface{}
	if err := json.Unmarshal([]byte(content[0]["text"].(string)), &decoded); err != nil {
		t.Fatalf("tool output is not JSON: %v", err)
	}
	return decoded, nil
}

func TestNew(t *testing.T) {
	s, _ := newTestServer("")
	if s.cache == nil {
		t.Fatal("New() did not initialize cache")
	}
	if s.logger == nil {
		t.Fatal("New() did not initialize logger")
	}
	if New(nil, "", nil).version != "dev" {
		t.Error("empty version should default to dev")
	}
}

func TestMCPRequest_Unmarshal(t *testing.T) {
	tests := []struct {
		name       string
		json       string
		wantID     interface{}
		wantMethod string
	}{
		{"string id", `{"jsonrpc":"2.0","id":"test-1","method":"tools/list"}`, "test-1", "tools/list"},
		{"number id", `{"jsonrpc":"2.0","id":42,"method":"ping"}`, float64(42), "ping"},
		{"null id", `{"jsonrpc":"2.0","id":null,"method":"initialize"}`, nil, "initialize"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var req MCPRequest
			if err := json.Unmarshal([]byte(tt.json), &req); err != nil {
				t.Fatalf("Failed to unmarshal: %v", err)
			}
			if req.ID != tt.wantID {
				t.Errorf("ID: got %v (%T), want %v (%T)", req.ID, req.ID, tt.wantID, tt.wantID)
			}
			if req.Method != tt.wantMethod {
				t.Errorf("Method: got %s, want %s", req.Method, tt.wantMethod)
			}
		})
	}
}

func TestHandleRequest_Initialize(t *testing.T) {
	s, _ := newTestServer("")
	resp := s.handleRequest(context.Background(), &MCPRequest{JSONRPC: "2.0", ID: 1, Method: "initialize"})

	if resp == nil || resp.Error != nil {
		t.Fatalf("unexpected response: %+v", resp)
	}
	result := resp.Result.(map[string]interface{})
	if result["protocolVersion"] != "2024-11-05" {
		t.Errorf("protocolVersion: got %v", result["protocolVersion"])
	}
	info := result["serverInfo"].(map[string]interface{})
	if info["name"] != "flyerdates" || info["version"] != "1.2.3" {
		t.Errorf("serverInfo: %v", info)
	}
}

func TestHandleRequest_Ping(t *testing.T) {
	s, _ := newTestServer("")
	resp := s.handleRequest(context.Background(), &MCPRequest{JSONRPC: "2.0", ID: "ping-1", Method: "ping"})
	if resp == nil || resp.Error != nil {
		t.Fatalf("unexpected response: %+v", resp)
	}
	if resp.ID != "ping-1" {
		t.Errorf("ID: got %v, want ping-1", resp.ID)
	}
}

func TestHandleRequest_ToolsList(t *testing.T) {
	s, _ := newTestServer("")
	resp := s.handleRequest(context.Background(), &MCPRequest{JSONRPC: "2.0", ID: 1, Method: "tools/list"})

	result := resp.Result.(map[string]interface{})
	tools, ok := result["tools"].([]Tool)
	if !ok {
		t.Fatal("tools should be a slice of Tool")
	}
	names := map[string]bool{}
	for _, tool := range tools {
		names[tool.Name] = true
		if tool.Description == "" {
			t.Errorf("%s has no description", tool.Name)
		}
		if tool.InputSchema["type"] != "object" {
			t.Errorf("%s schema type: %v", tool.Name, tool.InputSchema["type"])
		}
	}
	for _, want := range []string{"flyer_extract_dates", "flyer_ocr_variants", "flyer_scan_text", "flyer_list_images"} {
		if !names[want] {
			t.Errorf("missing tool %s", want)
		}
	}
}

func TestHandleRequest_NotificationsInitialized(t *testing.T) {
	s, _ := newTestServer("")
	if resp := s.handleRequest(context.Background(), &MCPRequest{JSONRPC: "2.0", Method: "notifications/initialized"}); resp != nil {
		t.Error("notifications/initialized should return nil response")
	}
}

func TestHandleRequest_MethodNotFound(t *testing.T) {
	s, _ := newTestServer("")
	resp := s.handleRequest(context.Background(), &MCPRequest{JSONRPC: "2.0", ID: 1, Method: "nonexistent/method"})
	if resp.Error == nil || resp.Error.Code != -32601 {
		t.Errorf("expected -32601, got %+v", resp.Error)
	}
}

func TestToolsCall_InvalidParams(t *testing.T) {
	s, _ := newTestServer("")
	resp := s.handleRequest(context.Background(), &MCPRequest{
		JSONRPC: "2.0", ID: 1, Method: "tools/call", Params: json.RawMessage(`"nope"`),
	})
	if resp.Error == nil || resp.Error.Code != -32602 {
		t.Errorf("expected -32602, got %+v", resp.Error)
	}
}

func TestToolsCall_UnknownTool(t *testing.T) {
	s, _ := newTestServer("")
	_, mcpErr := callTool(t, s, "image_crop", map[string]interface{}{})
	if mcpErr == nil || mcpErr.Code != -32000 {
		t.Fatalf("expected -32000, got %+v", mcpErr)
	}
	if !strings.Contains(mcpErr.Data.(string), "unknown tool") {
		t.Errorf("Data: %v", mcpErr.Data)
	}
}

func TestToolsCall_ExtractDates(t *testing.T) {
	s, fx := newTestServer("Sale Saturday 07 04 2023")
	path := createTestImage(t, t.TempDir(), "sale.png")

	out, mcpErr := callTool(t, s, "flyer_extract_dates", map[string]interface{}{"path": path})
	if mcpErr != nil {
		t.Fatalf("tool failed: %+v", mcpErr)
	}
	images := out["images"].([]interface{})
	entry := images[0].(map[string]interface{})
	comps := entry["components"].(map[string]interface{})
	if got := comps["month"].([]interface{}); len(got) != 1 || got[0] != "07" {
		t.Errorf("month: %v", got)
	}
	if _, ok := entry["variants"]; ok {
		t.Error("variants should be omitted by default")
	}
	info := entry["info"].(map[string]interface{})
	if info["width"].(float64) != 20 {
		t.Errorf("info: %v", info)
	}
	if len(fx.ids) != 1 || fx.ids[0] != path {
		t.Errorf("extractor ids: %v", fx.ids)
	}
	if s.cache.Len() != 0 {
		t.Error("image should be evicted after extraction")
	}
}

func TestToolsCall_ExtractDatesWithVariants(t *testing.T) {
	s, _ := newTestServer("friday")
	path := createTestImage(t, t.TempDir(), "a.png")

	out, mcpErr := callTool(t, s, "flyer_extract_dates", map[string]interface{}{"path": path, "include_variants": true})
	if mcpErr != nil {
		t.Fatalf("tool failed: %+v", mcpErr)
	}
	entry := out["images"].([]interface{})[0].(map[string]interface{})
	if v, ok := entry["variants"].([]interface{}); !ok || len(v) != 1 {
		t.Errorf("variants: %v", entry["variants"])
	}
}

func TestToolsCall_ExtractDatesErrors(t *testing.T) {
	s, _ := newTestServer("")
	if _, mcpErr := callTool(t, s, "flyer_extract_dates", map[string]interface{}{}); mcpErr == nil {
		t.Error("expected error for missing path")
	}
	if _, mcpErr := callTool(t, s, "flyer_extract_dates", map[string]interface{}{"path": "/nonexistent.png"}); mcpErr == nil {
		t.Error("expected error for missing file")
	}

	s.extractor = &fixedExtractor{err: errors.New("tesseract missing")}
	path := createTestImage(t, t.TempDir(), "b.png")
	_, mcpErr := callTool(t, s, "flyer_extract_dates", map[string]interface{}{"path": path})
	if mcpErr == nil || !strings.Contains(mcpErr.Data.(string), "tesseract missing") {
		t.Errorf("expected extractor error, got %+v", mcpErr)
	}
}

func TestToolsCall_OCRVariants(t *testing.T) {
	s, _ := newTestServer("Hello\n")
	path := createTestImage(t, t.TempDir(), "c.png")

	out, mcpErr := callTool(t, s, "flyer_ocr_variants", map[string]interface{}{"path": path})
	if mcpErr != nil {
		t.Fatalf("tool failed: %+v", mcpErr)
	}
	variants := out["variants"].([]interface{})
	first := variants[0].(map[string]interface{})
	if first["title"] != "Original Image" || first["text"] != "Hello\n" {
		t.Errorf("variant: %v", first)
	}
}

func TestToolsCall_ScanText(t *testing.T) {
	s, fx := newTestServer("")
	out, mcpErr := callTool(t, s, "flyer_scan_text", map[string]interface{}{"text": "Event on 15 March 2024"})
	if mcpErr != nil {
		t.Fatalf("tool failed: %+v", mcpErr)
	}
	if got := out["date"].([]interface{}); len(got) != 1 || got[0] != "15" {
		t.Errorf("date: %v", got)
	}
	if got := out["day"].([]interface{}); len(got) != 0 {
		t.Errorf("day: %v", got)
	}
	if len(fx.ids) != 0 {
		t.Error("scan_text must not run OCR")
	}
}

func TestToolsCall_ListImages(t *testing.T) {
	s, _ := newTestServer("")
	dir := t.TempDir()
	createTestImage(t, dir, "b.png")
	createTestImage(t, dir, "a.png")
	createTestImage(t, dir, ".c.png")

	out, mcpErr := callTool(t, s, "flyer_list_images", map[string]interface{}{"dir": dir})
	if mcpErr != nil {
		t.Fatalf("tool failed: %+v", mcpErr)
	}
	images := out["images"].([]interface{})
	if len(images) != 2 || filepath.Base(images[0].(string)) != "a.png" {
		t.Errorf("images: %v", images)
	}

	out, _ = callTool(t, s, "flyer_list_images", map[string]interface{}{"dir": dir, "include_hidden": true})
	if out["count"].(float64) != 3 {
		t.Errorf("count with hidden: %v", out["count"])
	}
}

func TestServe(t *testing.T) {
	s, _ := newTestServer("")
	input := strings.Join([]string{
		`{"jsonrpc":"2.0","id":1,"method":"initialize"}`,
		`{"jsonrpc":"2.0","method":"notifications/initialized"}`,
		``,
		`not json`,
		`{"jsonrpc":"2.0","id":2,"method":"tools/call","params":{"name":"flyer_scan_text","arguments":{"text":"sun"}}}`,
	}, "\n")

	var out strings.Builder
	if err := s.Serve(context.Background(), strings.NewReader(input), &out); err != nil {
		t.Fatalf("Serve failed: %v", err)
	}

	var responses []MCPResponse
	sc := bufio.NewScanner(strings.NewReader(out.String()))
	for sc.Scan() {
		var r MCPResponse
		if err := json.Unmarshal(sc.Bytes(), &r); err != nil {
			t.Fatalf("bad response line %q: %v", sc.Text(), err)
		}
		responses = append(responses, r)
	}

	if len(responses) != 3 {
		t.Fatalf("responses: got %d, want 3", len(responses))
	}
	if responses[1].Error == nil || responses[1].Error.Code != -32700 {
		t.Errorf("parse error response: %+v", responses[1])
	}
	if responses[2].ID != float64(2) || responses[2].Error != nil {
		t.Errorf("tool response: %+v", responses[2])
	}
}

func TestServe_Cancelled(t *testing.T) {
	s, _ := newTestServer("")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := s.Serve(ctx, strings.NewReader(`{"jsonrpc":"2.0","id":1,"method":"ping"}`+"\n"), &strings.Builder{})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}
