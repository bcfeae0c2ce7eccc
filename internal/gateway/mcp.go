package gateway

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/cyberpunkpath/gateway/internal/cyberpunkpath"
)

type mcpRequest struct {
	Method string                `json:"method"`
	Params *cyberpunkpath.Params `json:"params,omitempty"`
}

type mcpResponse struct {
	Result any       `json:"result,omitempty"`
	Error  *mcpError `json:"error,omitempty"`
}

type mcpError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// MCP handles POST /mcp — a minimal RPC-style descriptor endpoint exposing
// the gateway as a tool: "describe" lists the process_audio tool's schema,
// "process_audio" resolves a Params value to the URL that would serve it.
// process_audio decodes "params" straight into cyberpunkpath.Params, which
// has no JSON tags: names match its field names case-insensitively ("Key",
// "format", "volume", ...), so the schema's "audio_url" and "start_time"
// properties are not read. Its result is {"url": ...}; the schema's output
// fields are not returned.
func (s *Service) MCP(w http.ResponseWriter, r *http.Request) {
	var req mcpRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMCP(w, http.StatusBadRequest, mcpResponse{Error: &mcpError{Code: 400, Message: "invalid request body"}})
		return
	}

	slog.Info("mcp request", "method", req.Method)

	switch req.Method {
	case "describe":
		writeMCP(w, http.StatusOK, describeCapabilities())
	case "process_audio":
		if req.Params == nil {
			writeMCP(w, http.StatusBadRequest, mcpResponse{Error: &mcpError{Code: 400, Message: "missing parameters"}})
			return
		}
		writeMCP(w, http.StatusOK, mcpResponse{
			Result: map[string]string{
				"url": fmt.Sprintf("/%s", cyberpunkpath.ToUnsafeString(*req.Params)),
			},
		})
	default:
		writeMCP(w, http.StatusBadRequest, mcpResponse{Error: &mcpError{Code: 404, Message: "unknown method: " + req.Method}})
	}
}

func writeMCP(w http.ResponseWriter, status int, body mcpResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func describeCapabilities() mcpResponse {
	inputSchema := map[string]any{
		"type": "object",
		"properties": map[string]any{
			"audio_url":  map[string]any{"type": "string", "description": "URL or path to the audio file to process"},
			"format":     map[string]any{"type": "string", "enum": []string{"mp3", "wav", "ogg", "flac", "m4a", "opus"}, "description": "Output format of the processed audio"},
			"volume":     map[string]any{"type": "number", "description": "Volume adjustment multiplier"},
			"speed":      map[string]any{"type": "number", "description": "Playback speed multiplier"},
			"reverse":    map[string]any{"type": "boolean", "description": "Whether to reverse the audio"},
			"start_time": map[string]any{"type": "number", "description": "Start time in seconds"},
			"duration":   map[string]any{"type": "number", "description": "Duration in seconds"},
		},
		"required": []string{"audio_url"},
	}
	outputSchema := map[string]any{
		"type": "object",
		"properties": map[string]any{
			"processed_audio_url": map[string]any{"type": "string", "description": "URL to the processed audio file"},
			"duration":             map[string]any{"type": "number", "description": "Duration of the processed audio in seconds"},
			"format":               map[string]any{"type": "string", "description": "Format of the processed audio"},
		},
	}

	return mcpResponse{
		Result: map[string]any{
			"tools": []map[string]any{
				{
					"name":          "process_audio",
					"description":   "Process audio files with various operations and effects",
					"input_schema":  inputSchema,
					"output_schema": outputSchema,
				},
			},
		},
	}
}
