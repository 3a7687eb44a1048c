package server

// Tool represents an MCP tool definition
type Tool struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	InputSchema map[string]interface{} `json:"inputSchema"`
}

// sessionIDProperty is shared by every learning tool schema.
func sessionIDProperty() map[string]interface{} {
	return map[string]interface{}{
		"type":        "string",
		"description": "Learning session ID returned by floorplan_analyze",
	}
}

// GetToolDefinitions returns all available tools
func GetToolDefinitions() []Tool {
	return []Tool{
		// Analysis
		{
			Name: "floorplan_analyze",
			Description: "Analyze a floor plan image: detect walls, rooms, doors and windows. " +
				"Returns structured geometry in original-image pixel coordinates and, when " +
				"learning is enabled, a session ID for recording corrections.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": map[string]interface{}{
						"type":        "string",
						"description": "Absolute path to the floor plan image file (PNG or JPEG)",
					},
				},
				"required": []string{"path"},
			},
		},

		// Corrections
		{
			Name: "floorplan_add_walls",
			Description: "Record manually drawn or corrected walls against an analysis session. " +
				"The learning engine aggregates these across sessions.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"sessionId": sessionIDProperty(),
					"walls": map[string]interface{}{
						"type":        "array",
						"description": "Wall records: type, start {x,y}, end {x,y}, thickness",
					},
				},
				"required": []string{"sessionId", "walls"},
			},
		},
		{
			Name:        "floorplan_add_rooms",
			Description: "Record manually drawn or labeled rooms against an analysis session.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"sessionId": sessionIDProperty(),
					"rooms": map[string]interface{}{
						"type":        "array",
						"description": "Room records: type, vertices [{x,y}], area",
					},
				},
				"required": []string{"sessionId", "rooms"},
			},
		},
		{
			Name:        "floorplan_add_doors",
			Description: "Record manually placed doors against an analysis session.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"sessionId": sessionIDProperty(),
					"doors": map[string]interface{}{
						"type":        "array",
						"description": "Door records: type, position {x,y}, width",
					},
				},
				"required": []string{"sessionId", "doors"},
			},
		},
		{
			Name:        "floorplan_add_windows",
			Description: "Record manually placed windows against an analysis session.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"sessionId": sessionIDProperty(),
					"windows": map[string]interface{}{
						"type":        "array",
						"description": "Window records: position {x,y}, width, height",
					},
				},
				"required": []string{"sessionId", "windows"},
			},
		},
		{
			Name:        "floorplan_add_measurements",
			Description: "Record user-supplied measurements against an analysis session.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"sessionId": sessionIDProperty(),
					"measurements": map[string]interface{}{
						"type":        "array",
						"description": "Measurement records: label, value, unit",
					},
				},
				"required": []string{"sessionId", "measurements"},
			},
		},
		{
			Name: "floorplan_delete_feature",
			Description: "Mark a detected feature as deleted in a session. The record is kept " +
				"with a deletion flag so the learning engine can learn from rejections.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"sessionId": sessionIDProperty(),
					"kind": map[string]interface{}{
						"type":        "string",
						"enum":        []string{"wall", "room", "door", "window"},
						"description": "Feature kind",
					},
					"id": map[string]interface{}{
						"type":        "string",
						"description": "Feature ID from the analysis result",
					},
				},
				"required": []string{"sessionId", "kind", "id"},
			},
		},
		{
			Name: "floorplan_save_session",
			Description: "Persist a session to history and close it. Returns the storage path. " +
				"Saved sessions feed pattern analysis.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"sessionId": sessionIDProperty(),
					"processingTimeMs": map[string]interface{}{
						"type":        "integer",
						"description": "Optional end-to-end processing time to record, milliseconds",
					},
				},
				"required": []string{"sessionId"},
			},
		},

		// Historical analysis
		{
			Name: "floorplan_analyze_patterns",
			Description: "Aggregate correction patterns across all saved sessions: per-type wall " +
				"deletion rates, common manual wall positions, and room type statistics. " +
				"Returns an insufficient-data result when fewer than three sessions exist.",
			InputSchema: map[string]interface{}{
				"type":       "object",
				"properties": map[string]interface{}{},
			},
		},
	}
}
