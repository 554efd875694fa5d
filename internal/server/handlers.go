package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"image"

	"github.com/google/uuid"

	"github.com/ironsheep/planar-rect-mcp/internal/detection"
	"github.com/ironsheep/planar-rect-mcp/internal/geometry"
	"github.com/ironsheep/planar-rect-mcp/internal/imaging"
	"github.com/ironsheep/planar-rect-mcp/internal/overlay"
	"github.com/ironsheep/planar-rect-mcp/internal/reconstruct"
	"github.com/ironsheep/planar-rect-mcp/internal/session"
	"github.com/ironsheep/planar-rect-mcp/internal/surface"
)

// ToolCallParams represents the parameters for a tools/call MCP request.
type ToolCallParams struct {
	// Name is the tool to invoke (e.g., "surface_add", "rectangle_reconstruct").
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
// A failed reconstruction is not an error: it is reported in the result's
// status and message.
func (s *Server) handleToolsCall(req *MCPRequest) *MCPResponse {
	var params ToolCallParams
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return s.errorResponse(req.ID, -32602, "Invalid params", err.Error())
	}

	result, err := s.executeTool(params.Name, params.Arguments)
	if err != nil {
		s.debugf("tool %s failed: %v", params.Name, err)
		return s.errorResponse(req.ID, -32000, "Tool execution failed", err.Error())
	}

	return s.toolResponse(req.ID, params.Name, result)
}

// toolResponse wraps a tool result as MCP text content. A result that cannot
// be encoded is reported as a tool failure.
func (s *Server) toolResponse(id interface{}, name string, result interface{}) *MCPResponse {
	text, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		s.debugf("tool %s result not encodable: %v", name, err)
		return s.errorResponse(id, -32000, "Tool execution failed", fmt.Sprintf("failed to encode result: %v", err))
	}

	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      id,
		Result: map[string]interface{}{
			"content": []map[string]interface{}{
				{
					"type": "text",
					"text": string(text),
				},
			},
		},
	}
}

// executeTool dispatches tool execution to the appropriate handler function.
func (s *Server) executeTool(name string, args json.RawMessage) (interface{}, error) {
	if len(args) == 0 {
		args = json.RawMessage("{}")
	}

	switch name {
	// Surface Lifecycle
	case "surface_add":
		return s.handleSurfaceAdd(args)
	case "surface_update":
		return s.handleSurfaceUpdate(args)
	case "surface_remove":
		return s.handleSurfaceRemove(args)
	case "surface_list":
		return s.handleSurfaceList()

	// Camera and Touch
	case "camera_set":
		return s.handleCameraSet(args)
	case "touch_begin":
		return s.handleTouchBegin()
	case "touch_end":
		return s.handleTouchEnd()

	// Frame Operations
	case "frame_info":
		return s.handleFrameInfo(args)
	case "frame_detect_rectangles":
		return s.handleFrameDetectRectangles(args)
	case "frame_outline":
		return s.handleFrameOutline(args)
	case "frame_crop":
		return s.handleFrameCrop(args)

	// Rectangles
	case "rectangle_reconstruct":
		return s.handleRectangleReconstruct(args)
	case "rectangle_list":
		return s.handleRectangleList()
	case "rectangle_remove":
		return s.handleRectangleRemove(args)

	// Rendering
	case "overlay_list":
		return s.handleOverlayList()
	case "overlay_mesh":
		return s.handleOverlayMesh(args)

	// Session
	case "session_clear":
		return s.handleSessionClear()

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

// messageResult is the wire form of a session message.
type messageResult struct {
	Code    string `json:"code"`
	Text    string `json:"text"`
	IsError bool   `json:"is_error"`
}

func messageOf(m session.Message) *messageResult {
	if m == session.NoMessage {
		return nil
	}
	return &messageResult{Code: m.Name(), Text: m.Text(), IsError: m.IsError()}
}

// === Surface Lifecycle Handlers ===

func (s *Server) handleSurfaceAdd(args json.RawMessage) (interface{}, error) {
	var sf surface.Surface
	if err := json.Unmarshal(args, &sf); err != nil {
		return nil, err
	}
	if err := s.session.OnSurfaceAdded(sf); err != nil {
		return nil, err
	}
	s.debugf("surface %s added at y=%.3f", sf.ID, sf.Center.Y)
	return map[string]interface{}{
		"surface": sf,
		"count":   s.session.Surfaces().Len(),
		"message": messageOf(s.session.Hint()),
	}, nil
}

func (s *Server) handleSurfaceUpdate(args json.RawMessage) (interface{}, error) {
	var sf surface.Surface
	if err := json.Unmarshal(args, &sf); err != nil {
		return nil, err
	}
	if err := s.session.OnSurfaceUpdated(sf); err != nil {
		return nil, err
	}
	return map[string]interface{}{
		"surface": sf,
	}, nil
}

type surfaceRemoveArgs struct {
	ID uuid.UUID `json:"id"`
}

func (s *Server) handleSurfaceRemove(args json.RawMessage) (interface{}, error) {
	var a surfaceRemoveArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	removed := s.session.OnSurfaceRemoved(a.ID)
	return map[string]interface{}{
		"removed":    removed,
		"count":      s.session.Surfaces().Len(),
		"rectangles": len(s.session.Rectangles()),
	}, nil
}

func (s *Server) handleSurfaceList() (interface{}, error) {
	surfaces := s.session.Surfaces().List()
	return map[string]interface{}{
		"surfaces": surfaces,
		"count":    len(surfaces),
	}, nil
}

// === Camera and Touch Handlers ===

type cameraSetArgs struct {
	Position    *geometry.Point3 `json:"position"`
	Yaw         *float64         `json:"yaw"`
	Pitch       *float64         `json:"pitch"`
	FieldOfView *float64         `json:"field_of_view"`
	AspectRatio *float64         `json:"aspect_ratio"`
}

func (s *Server) handleCameraSet(args json.RawMessage) (interface{}, error) {
	var a cameraSetArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	cam := s.session.Camera()
	if a.Position != nil {
		cam.Position = *a.Position
	}
	if a.Yaw != nil {
		cam.Yaw = *a.Yaw
	}
	if a.Pitch != nil {
		cam.Pitch = *a.Pitch
	}
	if a.FieldOfView != nil {
		cam.FieldOfView = *a.FieldOfView
	}
	if a.AspectRatio != nil {
		cam.AspectRatio = *a.AspectRatio
	}
	if err := s.session.SetCamera(cam); err != nil {
		return nil, err
	}
	return map[string]interface{}{
		"camera": cam,
	}, nil
}

func (s *Server) handleTouchBegin() (interface{}, error) {
	gen := s.session.BeginTouch()
	return map[string]interface{}{
		"generation": gen,
		"touching":   s.session.Touching(),
		"message":    messageOf(s.session.Hint()),
	}, nil
}

func (s *Server) handleTouchEnd() (interface{}, error) {
	s.session.EndTouch()
	return map[string]interface{}{
		"generation": s.session.Current(),
		"touching":   s.session.Touching(),
		"message":    messageOf(s.session.Hint()),
	}, nil
}

// === Frame Operation Handlers ===

type frameArgs struct {
	Path string `json:"path"`
}

func (s *Server) handleFrameInfo(args json.RawMessage) (interface{}, error) {
	var a frameArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	return imaging.LoadFrameInfo(s.cache, a.Path)
}

type frameDetectArgs struct {
	Path          string  `json:"path"`
	MinArea       float64 `json:"min_area"`
	Tolerance     float64 `json:"tolerance"`
	MaxDimension  int     `json:"max_dimension"`
	EdgeThreshold int     `json:"edge_threshold"`
}

func (a frameDetectArgs) options(base detection.Options) detection.Options {
	if a.MinArea > 0 {
		base.MinArea = a.MinArea
	}
	if a.Tolerance > 0 {
		base.Tolerance = a.Tolerance
	}
	if a.MaxDimension > 0 {
		base.MaxDimension = a.MaxDimension
	}
	if a.EdgeThreshold > 0 && a.EdgeThreshold <= 255 {
		base.EdgeThreshold = uint8(a.EdgeThreshold)
	}
	return base
}

func (s *Server) handleFrameDetectRectangles(args json.RawMessage) (interface{}, error) {
	var a frameDetectArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	worker := session.NewDetectWorker(s.cache, a.options(s.cfg.DetectOptions()))
	res := s.runDetect(worker, s.session.Current(), a.Path)
	if res.Err != nil {
		return nil, res.Err
	}
	return res.Found, nil
}

type frameOutlineArgs struct {
	Path         string          `json:"path"`
	Quads        []geometry.Quad `json:"quads"`
	Color        string          `json:"color"`
	Thickness    int             `json:"thickness"`
	MaxDimension int             `json:"max_dimension"`
}

func (s *Server) handleFrameOutline(args json.RawMessage) (interface{}, error) {
	var a frameOutlineArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}

	quads := a.Quads
	if len(quads) == 0 {
		res := s.runDetect(s.worker, s.session.Current(), a.Path)
		if res.Err != nil {
			return nil, res.Err
		}
		for _, obs := range res.Found.Observations {
			quads = append(quads, obs.Corners)
		}
	}

	img, err := s.cache.Load(a.Path)
	if err != nil {
		return nil, err
	}
	return imaging.Outline(img, quads, imaging.OutlineOptions{
		Color:        a.Color,
		Thickness:    a.Thickness,
		MaxDimension: a.MaxDimension,
	})
}

type frameCropArgs struct {
	Path   string         `json:"path"`
	X1     int            `json:"x1"`
	Y1     int            `json:"y1"`
	X2     int            `json:"x2"`
	Y2     int            `json:"y2"`
	Quad   *geometry.Quad `json:"quad"`
	Margin float64        `json:"margin"`
	Scale  float64        `json:"scale"`
}

func (s *Server) handleFrameCrop(args json.RawMessage) (interface{}, error) {
	var a frameCropArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if a.Scale == 0 {
		a.Scale = 1.0
	}
	img, err := s.cache.Load(a.Path)
	if err != nil {
		return nil, err
	}
	if a.Quad != nil {
		return imaging.CropQuad(img, *a.Quad, a.Margin, a.Scale)
	}
	region := image.Rectangle{Min: image.Pt(a.X1, a.Y1), Max: image.Pt(a.X2, a.Y2)}
	return imaging.Crop(img, region, a.Scale)
}

// runDetect runs detection on the worker bounded by the configured timeout.
func (s *Server) runDetect(w *session.DetectWorker, gen session.Generation, path string) session.DetectResult {
	ctx, cancel := context.WithTimeout(context.Background(), s.cfg.GetDetectTimeout())
	defer cancel()
	res := w.Run(ctx, gen, path)
	if errors.Is(res.Err, context.DeadlineExceeded) {
		res.Err = fmt.Errorf("detection on %s timed out after %s: %w", path, s.cfg.GetDetectTimeout(), res.Err)
	}
	return res
}

// === Rectangle Handlers ===

type rectangleReconstructArgs struct {
	Corners       *geometry.Quad `json:"corners"`
	Path          string         `json:"path"`
	ObservationID *uuid.UUID     `json:"observation_id"`
	Generation    *uint64        `json:"generation"`
}

// rectangleResult is a placed rectangle with its display sizes.
type rectangleResult struct {
	ObservationID uuid.UUID                  `json:"observation_id"`
	Generation    session.Generation         `json:"generation"`
	Rectangle     reconstruct.PlaneRectangle `json:"rectangle"`
	Missing       string                     `json:"missing_corner"`
	CornerAngle   float64                    `json:"corner_angle"`
	WidthInches   float64                    `json:"width_inches"`
	HeightInches  float64                    `json:"height_inches"`
}

func rectangleOf(id uuid.UUID, gen session.Generation, res reconstruct.Result) rectangleResult {
	return rectangleResult{
		ObservationID: id,
		Generation:    gen,
		Rectangle:     res.Rectangle,
		Missing:       res.Missing,
		CornerAngle:   res.CornerAngle,
		WidthInches:   res.Rectangle.WidthInches(),
		HeightInches:  res.Rectangle.HeightInches(),
	}
}

type reconstructResult struct {
	Status     session.Status     `json:"status"`
	Generation session.Generation `json:"generation"`
	Rectangle  *rectangleResult   `json:"rectangle,omitempty"`
	Replaced   *uuid.UUID         `json:"replaced,omitempty"`
	Message    *messageResult     `json:"message,omitempty"`

	// CornerHits counts the surfaces struck by each corner ray when no
	// surface could be found for the given corners.
	CornerHits map[string]int `json:"corner_hits,omitempty"`
}

// cornerHits reports how many surfaces each corner of q hits.
func (s *Server) cornerHits(q geometry.Quad) map[string]int {
	counts := reconstruct.HitCorners(q, s.session.Tester()).Counts()
	out := make(map[string]int, len(counts))
	for i, c := range geometry.Corners() {
		out[c.String()] = counts[i]
	}
	return out
}

func (s *Server) handleRectangleReconstruct(args json.RawMessage) (interface{}, error) {
	var a rectangleReconstructArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if (a.Corners == nil) == (a.Path == "") {
		return nil, fmt.Errorf("exactly one of corners or path is required")
	}

	gen := s.session.Current()
	if a.Generation != nil {
		gen = session.Generation(*a.Generation)
	}

	var out session.Outcome
	if a.Corners != nil {
		obs := detection.Observation{ID: uuid.New(), Corners: *a.Corners, Confidence: 1}
		if a.ObservationID != nil {
			obs.ID = *a.ObservationID
		}
		out = s.session.Reconstruct(gen, obs, s.now())
	} else {
		res := s.runDetect(s.worker, gen, a.Path)
		if res.Err != nil {
			return nil, res.Err
		}
		out = s.session.ReconstructDetected(res.Generation, res.Found, s.now())
	}

	s.debugf("reconstruct gen=%d: %s", out.Generation, out.Status)
	result := reconstructResult{
		Status:     out.Status,
		Generation: out.Generation,
		Replaced:   out.Replaced,
		Message:    messageOf(out.Message),
	}
	if out.Result != nil {
		r := rectangleOf(out.ObservationID, out.Generation, *out.Result)
		result.Rectangle = &r
	}
	if out.Status == session.StatusNoSurface && a.Corners != nil {
		result.CornerHits = s.cornerHits(*a.Corners)
		s.debugf("corner hits: %v", result.CornerHits)
	}
	return result, nil
}

func (s *Server) handleRectangleList() (interface{}, error) {
	placed := s.session.Rectangles()
	rects := make([]rectangleResult, 0, len(placed))
	for _, p := range placed {
		rects = append(rects, rectangleOf(p.ObservationID, p.Generation, p.Result))
	}
	return map[string]interface{}{
		"rectangles": rects,
		"count":      len(rects),
	}, nil
}

type observationArgs struct {
	ObservationID uuid.UUID `json:"observation_id"`
	Thickness     float64   `json:"thickness"`
}

func (s *Server) handleRectangleRemove(args json.RawMessage) (interface{}, error) {
	var a observationArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	return map[string]interface{}{
		"removed": s.session.RemoveRectangle(a.ObservationID),
		"count":   len(s.session.Rectangles()),
	}, nil
}

// === Rendering Handlers ===

func (s *Server) handleOverlayList() (interface{}, error) {
	entities := s.session.Overlay()
	return map[string]interface{}{
		"entities": entities,
		"count":    len(entities),
	}, nil
}

func (s *Server) handleOverlayMesh(args json.RawMessage) (interface{}, error) {
	var a observationArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	placed, ok := s.session.Rectangle(a.ObservationID)
	if !ok {
		return nil, fmt.Errorf("no rectangle placed for observation %s", a.ObservationID)
	}
	thickness := a.Thickness
	if thickness <= 0 {
		thickness = s.cfg.GetMeshThickness()
	}
	mesh, err := overlay.MeshRectangle(placed.Result.Rectangle, thickness)
	if err != nil {
		return nil, err
	}
	return map[string]interface{}{
		"observation_id": a.ObservationID,
		"mesh":           mesh,
		"vertex_count":   mesh.VertexCount(),
		"triangle_count": mesh.TriangleCount(),
	}, nil
}

// === Session Handlers ===

func (s *Server) handleSessionClear() (interface{}, error) {
	s.session.Clear()
	s.cache.Clear()
	return map[string]interface{}{
		"cleared":    true,
		"generation": s.session.Current(),
		"message":    messageOf(s.session.Hint()),
	}, nil
}
