package server

// Tool represents an MCP tool definition
type Tool struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	InputSchema map[string]interface{} `json:"inputSchema"`
}

// Shared schema fragments.
var (
	idProp = map[string]interface{}{
		"type":        "string",
		"description": "UUID of the surface (the plane anchor identity)",
	}
	observationIDProp = map[string]interface{}{
		"type":        "string",
		"description": "UUID of the rectangle observation",
	}
	pathProp = map[string]interface{}{
		"type":        "string",
		"description": "Absolute path to the camera frame image",
	}
	pointProp = map[string]interface{}{
		"type":        "object",
		"description": "World position in meters (Y up)",
		"properties": map[string]interface{}{
			"x": map[string]interface{}{"type": "number"},
			"y": map[string]interface{}{"type": "number"},
			"z": map[string]interface{}{"type": "number"},
		},
		"required": []string{"x", "y", "z"},
	}
	normalizedProp = map[string]interface{}{
		"type":        "object",
		"description": "Normalized frame point, 0-1 with origin top-left and Y down",
		"properties": map[string]interface{}{
			"x": map[string]interface{}{"type": "number"},
			"y": map[string]interface{}{"type": "number"},
		},
		"required": []string{"x", "y"},
	}
	quadProp = map[string]interface{}{
		"type":        "object",
		"description": "Four rectangle corners in normalized frame coordinates",
		"properties": map[string]interface{}{
			"top_left":     normalizedProp,
			"top_right":    normalizedProp,
			"bottom_left":  normalizedProp,
			"bottom_right": normalizedProp,
		},
		"required": []string{"top_left", "top_right", "bottom_left", "bottom_right"},
	}
	surfaceSchema = map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"id":     idProp,
			"center": pointProp,
			"extent": map[string]interface{}{
				"type":        "object",
				"description": "Size along the surface's local X and Z axes, in meters",
				"properties": map[string]interface{}{
					"x": map[string]interface{}{"type": "number"},
					"z": map[string]interface{}{"type": "number"},
				},
				"required": []string{"x", "z"},
			},
			"yaw": map[string]interface{}{
				"type":        "number",
				"description": "Rotation about world +Y in radians. Default 0",
				"default":     0,
			},
		},
		"required": []string{"id", "center", "extent"},
	}
	emptySchema = map[string]interface{}{
		"type":       "object",
		"properties": map[string]interface{}{},
	}
)

// GetToolDefinitions returns all available tools
func GetToolDefinitions() []Tool {
	return []Tool{
		// Surface Lifecycle
		{
			Name:        "surface_add",
			Description: "Register a horizontal surface reported by plane tracking. Fails if the id is already known.",
			InputSchema: surfaceSchema,
		},
		{
			Name:        "surface_update",
			Description: "Replace the pose and extent of a known surface.",
			InputSchema: surfaceSchema,
		},
		{
			Name:        "surface_remove",
			Description: "Forget a surface. Rectangles placed on it are removed too.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"id": idProp,
				},
				"required": []string{"id"},
			},
		},
		{
			Name:        "surface_list",
			Description: "List known surfaces in the order they were added.",
			InputSchema: emptySchema,
		},

		// Camera and Touch
		{
			Name:        "camera_set",
			Description: "Update the camera pose and intrinsics used to hit-test frame points. Omitted fields keep their current value.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"position": pointProp,
					"yaw": map[string]interface{}{
						"type":        "number",
						"description": "Rotation about world +Y in radians",
					},
					"pitch": map[string]interface{}{
						"type":        "number",
						"description": "Rotation about the camera X axis in radians; negative looks down",
					},
					"field_of_view": map[string]interface{}{
						"type":        "number",
						"description": "Full horizontal field of view in radians",
					},
					"aspect_ratio": map[string]interface{}{
						"type":        "number",
						"description": "Frame width divided by frame height",
					},
				},
			},
		},
		{
			Name:        "touch_begin",
			Description: "Start a touch. Returns the new observation generation; work started for older generations is discarded.",
			InputSchema: emptySchema,
		},
		{
			Name:        "touch_end",
			Description: "Release the current touch.",
			InputSchema: emptySchema,
		},

		// Frame Operations
		{
			Name:        "frame_info",
			Description: "Load a camera frame and return its dimensions, aspect ratio and format.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProp,
				},
				"required": []string{"path"},
			},
		},
		{
			Name:        "frame_detect_rectangles",
			Description: "Find rectangles in a camera frame. Returns each observation's normalized corners, bounds, area and confidence, largest first.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProp,
					"min_area": map[string]interface{}{
						"type":        "number",
						"description": "Minimum area as a fraction of the frame. Default from configuration",
					},
					"tolerance": map[string]interface{}{
						"type":        "number",
						"description": "Minimum confidence, 0-1. Default from configuration",
					},
					"max_dimension": map[string]interface{}{
						"type":        "integer",
						"description": "Frames are downscaled to this size before detection",
					},
					"edge_threshold": map[string]interface{}{
						"type":        "integer",
						"description": "Edge magnitude threshold, 1-255",
					},
				},
				"required": []string{"path"},
			},
		},
		{
			Name:        "frame_outline",
			Description: "Draw rectangle outlines over a frame and return it as base64-encoded PNG. Without quads, the frame's detected rectangles are drawn.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProp,
					"quads": map[string]interface{}{
						"type":        "array",
						"description": "Rectangles to draw",
						"items":       quadProp,
					},
					"color": map[string]interface{}{
						"type":        "string",
						"description": "Stroke color as hex. Default #ff0000",
					},
					"thickness": map[string]interface{}{
						"type":        "integer",
						"description": "Stroke width in pixels. Default 2",
					},
					"max_dimension": map[string]interface{}{
						"type":        "integer",
						"description": "Downscale the preview to fit this size",
					},
				},
				"required": []string{"path"},
			},
		},
		{
			Name:        "frame_crop",
			Description: "Crop a frame region and return it as base64-encoded PNG. Give either pixel bounds or a quad.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProp,
					"x1":   map[string]interface{}{"type": "integer", "description": "Left edge X coordinate (0-based)"},
					"y1":   map[string]interface{}{"type": "integer", "description": "Top edge Y coordinate (0-based)"},
					"x2":   map[string]interface{}{"type": "integer", "description": "Right edge X coordinate (exclusive)"},
					"y2":   map[string]interface{}{"type": "integer", "description": "Bottom edge Y coordinate (exclusive)"},
					"quad": quadProp,
					"margin": map[string]interface{}{
						"type":        "number",
						"description": "Extra border around a quad as a fraction of its size. Default 0",
					},
					"scale": map[string]interface{}{
						"type":        "number",
						"description": "Optional scale factor (e.g., 2.0 to double size). Default 1.0",
						"default":     1.0,
					},
				},
				"required": []string{"path"},
			},
		},

		// Rectangles
		{
			Name:        "rectangle_reconstruct",
			Description: "Place an observed rectangle on the known surfaces. Give either explicit corners or a frame path to detect from.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"corners": quadProp,
					"path":    pathProp,
					"observation_id": map[string]interface{}{
						"type":        "string",
						"description": "UUID for explicit corners. A fresh one is generated when omitted",
					},
					"generation": map[string]interface{}{
						"type":        "integer",
						"description": "Touch generation the observation belongs to. Default: current",
					},
				},
			},
		},
		{
			Name:        "rectangle_list",
			Description: "List placed rectangles with their pose and size in meters and inches.",
			InputSchema: emptySchema,
		},
		{
			Name:        "rectangle_remove",
			Description: "Remove one placed rectangle.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"observation_id": observationIDProp,
				},
				"required": []string{"observation_id"},
			},
		},

		// Rendering
		{
			Name:        "overlay_list",
			Description: "List renderable entities: every surface with its grid repeat, then every placed rectangle.",
			InputSchema: emptySchema,
		},
		{
			Name:        "overlay_mesh",
			Description: "Build a triangle mesh for a placed rectangle as a thin slab on its surface.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"observation_id": observationIDProp,
					"thickness": map[string]interface{}{
						"type":        "number",
						"description": "Slab thickness in meters. Default from configuration",
					},
				},
				"required": []string{"observation_id"},
			},
		},

		// Session
		{
			Name:        "session_clear",
			Description: "Forget every surface and rectangle and drop cached frames.",
			InputSchema: emptySchema,
		},
	}
}

// handleToolsList returns the list of available tools
func (s *Server) handleToolsList(req *MCPRequest) *MCPResponse {
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"tools": GetToolDefinitions(),
		},
	}
}
