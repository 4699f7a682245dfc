package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/hiremind/backend/tools"
)

const (
	jsonRPCVersion  = "2.0"
	protocolVersion = "2024-11-05"
	serverName      = "hiremind"
)

// JSON-RPC error codes
const (
	codeParseError     = -32700
	codeInvalidRequest = -32600
	codeMethodNotFound = -32601
	codeInvalidParams  = -32602
)

// Server exposes the job tools to external agents over MCP-style JSON-RPC
type Server struct {
	registry *tools.ToolRegistry
	version  string
	logger   *zap.Logger
}

// NewServer creates a new MCP server reporting version in the handshake
func NewServer(registry *tools.ToolRegistry, version string, logger *zap.Logger) *Server {
	return &Server{
		registry: registry,
		version:  version,
		logger:   logger.Named("mcp"),
	}
}

// Request is a JSON-RPC request
type Request struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      any             `json:"id"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params,omitempty"`
}

// Response is a JSON-RPC response; exactly one of Result and Error is set
type Response struct {
	JSONRPC string `json:"jsonrpc"`
	ID      any    `json:"id"`
	Result  any    `json:"result,omitempty"`
	Error   *Error `json:"error,omitempty"`
}

// Error is a JSON-RPC error object
type Error struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

// InitializeResult answers the initialize handshake
type InitializeResult struct {
	ProtocolVersion string         `json:"protocolVersion"`
	ServerInfo      ServerInfo     `json:"serverInfo"`
	Capabilities    map[string]any `json:"capabilities"`
}

// ServerInfo identifies this server to clients
type ServerInfo struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}

// ToolsListResult is the result of tools/list
type ToolsListResult struct {
	Tools []ToolDefinition `json:"tools"`
}

// ToolDefinition describes one callable tool
type ToolDefinition struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	InputSchema map[string]any `json:"inputSchema"`
}

// ToolCallParams are the params of tools/call
type ToolCallParams struct {
	Name      string          `json:"name"`
	Arguments json.RawMessage `json:"arguments"`
}

// ToolCallResult is the result of tools/call. Tool failures are reported
// in-band with IsError set, not as JSON-RPC errors.
type ToolCallResult struct {
	Content []ContentItem `json:"content"`
	IsError bool          `json:"isError,omitempty"`
}

// ContentItem is a single text block of a tool result
type ContentItem struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// RegisterRoutes registers MCP endpoints on the given router group
func (s *Server) RegisterRoutes(router *gin.RouterGroup) {
	router.POST("/mcp", s.HandleRPC)
	router.POST("/mcp/tools/list", s.HandleToolsList)
	router.POST("/mcp/tools/call", s.HandleToolsCall)
}

// HandleRPC dispatches a JSON-RPC request
func (s *Server) HandleRPC(c *gin.Context) {
	var req Request
	if err := c.ShouldBindJSON(&req); err != nil {
		s.sendError(c, nil, codeParseError, "Parse error", err.Error())
		return
	}
	if req.JSONRPC != jsonRPCVersion || req.Method == "" {
		s.sendError(c, req.ID, codeInvalidRequest, "Invalid request", nil)
		return
	}

	switch req.Method {
	case "initialize":
		s.sendResult(c, req.ID, InitializeResult{
			ProtocolVersion: protocolVersion,
			ServerInfo:      ServerInfo{Name: serverName, Version: s.version},
			Capabilities:    map[string]any{"tools": map[string]any{}},
		})
	case "ping":
		s.sendResult(c, req.ID, map[string]any{})
	case "tools/list":
		s.sendResult(c, req.ID, ToolsListResult{Tools: s.definitions()})
	case "tools/call":
		var params ToolCallParams
		if err := json.Unmarshal(req.Params, &params); err != nil || params.Name == "" {
			s.sendError(c, req.ID, codeInvalidParams, "Invalid params", errText(err))
			return
		}
		s.sendResult(c, req.ID, s.call(c.Request.Context(), params))
	default:
		s.sendError(c, req.ID, codeMethodNotFound, "Method not found", req.Method)
	}
}

// HandleToolsList is the plain REST form of tools/list
func (s *Server) HandleToolsList(c *gin.Context) {
	c.JSON(http.StatusOK, ToolsListResult{Tools: s.definitions()})
}

// HandleToolsCall is the plain REST form of tools/call
func (s *Server) HandleToolsCall(c *gin.Context) {
	var params ToolCallParams
	if err := c.ShouldBindJSON(&params); err != nil || params.Name == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}
	c.JSON(http.StatusOK, s.call(c.Request.Context(), params))
}

func (s *Server) definitions() []ToolDefinition {
	list := s.registry.List()
	out := make([]ToolDefinition, len(list))
	for i, tool := range list {
		out[i] = ToolDefinition{Name: tool.Name(), Description: tool.Description(), InputSchema: tool.InputSchema()}
	}
	return out
}

func (s *Server) call(ctx context.Context, params ToolCallParams) ToolCallResult {
	tool, ok := s.registry.Get(params.Name)
	if !ok {
		return textResult(fmt.Sprintf("tool not found: %s", params.Name), true)
	}

	start := time.Now()
	out, err := tool.Execute(ctx, params.Arguments)
	if err != nil {
		s.logger.Warn("tool failed", zap.String("tool", params.Name), zap.Error(err))
		return textResult(err.Error(), true)
	}

	s.logger.Debug("tool completed", zap.String("tool", params.Name), zap.Duration("elapsed", time.Since(start)))
	return textResult(string(out), false)
}

func textResult(text string, isError bool) ToolCallResult {
	return ToolCallResult{Content: []ContentItem{{Type: "text", Text: text}}, IsError: isError}
}

func errText(err error) any {
	if err == nil {
		return nil
	}
	return err.Error()
}

func (s *Server) sendResult(c *gin.Context, id, result any) {
	c.JSON(http.StatusOK, Response{JSONRPC: jsonRPCVersion, ID: id, Result: result})
}

func (s *Server) sendError(c *gin.Context, id any, code int, message string, data any) {
	c.JSON(http.StatusOK, Response{JSONRPC: jsonRPCVersion, ID: id, Error: &Error{Code: code, Message: message, Data: data}})
}
