package server

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/planwise/floorplan-vision/internal/learning"
)

// ToolCallParams represents the parameters for a tools/call MCP request.
type ToolCallParams struct {
	// Name is the tool to invoke (e.g., "floorplan_analyze").
	Name string `json:"name"`

	// Arguments contains the tool-specific parameters as JSON.
	Arguments json.RawMessage `json:"arguments"`
}

// handleToolsList responds with every tool definition.
func (s *Server) handleToolsList(req *MCPRequest) *MCPResponse {
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"tools": GetToolDefinitions(),
		},
	}
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
func (s *Server) handleToolsCall(req *MCPRequest) *MCPResponse {
	var params ToolCallParams
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return s.errorResponse(req.ID, -32602, "Invalid params", err.Error())
	}

	result, err := s.executeTool(params.Name, params.Arguments)
	if err != nil {
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
func (s *Server) executeTool(name string, args json.RawMessage) (interface{}, error) {
	switch name {
	case "floorplan_analyze":
		return s.handleAnalyze(args)

	case "floorplan_add_walls":
		return s.handleAddWalls(args)
	case "floorplan_add_rooms":
		return s.handleAddRooms(args)
	case "floorplan_add_doors":
		return s.handleAddDoors(args)
	case "floorplan_add_windows":
		return s.handleAddWindows(args)
	case "floorplan_add_measurements":
		return s.handleAddMeasurements(args)
	case "floorplan_delete_feature":
		return s.handleDeleteFeature(args)
	case "floorplan_save_session":
		return s.handleSaveSession(args)

	case "floorplan_analyze_patterns":
		return s.handleAnalyzePatterns(args)

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
// On marshal failure, returns an empty string.
func mustMarshalJSON(v interface{}) string {
	b, _ := json.MarshalIndent(v, "", "  ")
	return string(b)
}

// === Analysis ===

type analyzeArgs struct {
	Path string `json:"path"`
}

func (s *Server) handleAnalyze(args json.RawMessage) (interface{}, error) {
	var a analyzeArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if a.Path == "" {
		return nil, errors.New("path is required")
	}
	img, err := s.cache.Load(a.Path)
	if err != nil {
		return nil, err
	}
	// The session key is derived from the path; repeated analyses of the
	// same file share a hash but get distinct sessions.
	sum := sha256.Sum256([]byte(a.Path))
	return s.analyzer.AnalyzeImage(img, hex.EncodeToString(sum[:])), nil
}

// === Correction forwarding ===

// requireStore guards the learning tools when no store is configured.
func (s *Server) requireStore() error {
	if s.store == nil {
		return errors.New("learning is not enabled on this server")
	}
	return nil
}

type addWallsArgs struct {
	SessionID string                `json:"sessionId"`
	Walls     []learning.WallRecord `json:"walls"`
}

func (s *Server) handleAddWalls(args json.RawMessage) (interface{}, error) {
	if err := s.requireStore(); err != nil {
		return nil, err
	}
	var a addWallsArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if err := s.store.AddWallData(a.SessionID, a.Walls, learning.SourceManual); err != nil {
		return nil, err
	}
	return map[string]interface{}{"added": len(a.Walls)}, nil
}

type addRoomsArgs struct {
	SessionID string                `json:"sessionId"`
	Rooms     []learning.RoomRecord `json:"rooms"`
}

func (s *Server) handleAddRooms(args json.RawMessage) (interface{}, error) {
	if err := s.requireStore(); err != nil {
		return nil, err
	}
	var a addRoomsArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if err := s.store.AddRoomData(a.SessionID, a.Rooms, learning.SourceManual); err != nil {
		return nil, err
	}
	return map[string]interface{}{"added": len(a.Rooms)}, nil
}

type addDoorsArgs struct {
	SessionID string                `json:"sessionId"`
	Doors     []learning.DoorRecord `json:"doors"`
}

func (s *Server) handleAddDoors(args json.RawMessage) (interface{}, error) {
	if err := s.requireStore(); err != nil {
		return nil, err
	}
	var a addDoorsArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if err := s.store.AddDoorData(a.SessionID, a.Doors, learning.SourceManual); err != nil {
		return nil, err
	}
	return map[string]interface{}{"added": len(a.Doors)}, nil
}

type addWindowsArgs struct {
	SessionID string                  `json:"sessionId"`
	Windows   []learning.WindowRecord `json:"windows"`
}

func (s *Server) handleAddWindows(args json.RawMessage) (interface{}, error) {
	if err := s.requireStore(); err != nil {
		return nil, err
	}
	var a addWindowsArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if err := s.store.AddWindowData(a.SessionID, a.Windows, learning.SourceManual); err != nil {
		return nil, err
	}
	return map[string]interface{}{"added": len(a.Windows)}, nil
}

type addMeasurementsArgs struct {
	SessionID    string                       `json:"sessionId"`
	Measurements []learning.MeasurementRecord `json:"measurements"`
}

func (s *Server) handleAddMeasurements(args json.RawMessage) (interface{}, error) {
	if err := s.requireStore(); err != nil {
		return nil, err
	}
	var a addMeasurementsArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if err := s.store.AddMeasurementData(a.SessionID, a.Measurements, learning.SourceManual); err != nil {
		return nil, err
	}
	return map[string]interface{}{"added": len(a.Measurements)}, nil
}

type deleteFeatureArgs struct {
	SessionID string `json:"sessionId"`
	Kind      string `json:"kind"`
	ID        string `json:"id"`
}

func (s *Server) handleDeleteFeature(args json.RawMessage) (interface{}, error) {
	if err := s.requireStore(); err != nil {
		return nil, err
	}
	var a deleteFeatureArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}

	var err error
	switch a.Kind {
	case "wall":
		err = s.store.MarkWallDeleted(a.SessionID, a.ID)
	case "room":
		err = s.store.MarkRoomDeleted(a.SessionID, a.ID)
	case "door":
		err = s.store.MarkDoorDeleted(a.SessionID, a.ID)
	case "window":
		err = s.store.MarkWindowDeleted(a.SessionID, a.ID)
	default:
		return nil, fmt.Errorf("unknown feature kind: %s", a.Kind)
	}
	if err != nil {
		return nil, err
	}
	return map[string]interface{}{"deleted": a.ID}, nil
}

type saveSessionArgs struct {
	SessionID        string `json:"sessionId"`
	ProcessingTimeMs int64  `json:"processingTimeMs"`
}

func (s *Server) handleSaveSession(args json.RawMessage) (interface{}, error) {
	if err := s.requireStore(); err != nil {
		return nil, err
	}
	var a saveSessionArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}

	path, err := s.store.SaveSession(a.SessionID, time.Duration(a.ProcessingTimeMs)*time.Millisecond)
	if errors.Is(err, learning.ErrNoActiveSession) {
		// Saving without an active session is a degraded outcome for the
		// client, not a protocol error.
		return map[string]interface{}{"saved": false, "path": ""}, nil
	}
	if err != nil {
		return nil, err
	}
	return map[string]interface{}{"saved": true, "path": path}, nil
}

// === Historical analysis ===

func (s *Server) handleAnalyzePatterns(json.RawMessage) (interface{}, error) {
	if s.patterns == nil {
		return nil, errors.New("learning is not enabled on this server")
	}
	return s.patterns.AnalyzePatterns()
}
