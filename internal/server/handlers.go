package server

import (
	"encoding/json"
	"fmt"
	"image"
	"log"

	"github.com/ironsheep/ctseg/internal/config"
	"github.com/ironsheep/ctseg/internal/grid"
	"github.com/ironsheep/ctseg/internal/imaging"
	"github.com/ironsheep/ctseg/internal/pipeline"
)

// ToolCallParams represents the parameters for a tools/call MCP request.
type ToolCallParams struct {
	// Name is the tool to invoke (e.g., "image_load", "segment_watershed").
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
func (s *Server) handleToolsCall(req *MCPRequest) *MCPResponse {
	var params ToolCallParams
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return s.errorResponse(req.ID, -32602, "Invalid params", err.Error())
	}

	result, err := s.executeTool(params.Name, params.Arguments)
	if err != nil {
		log.Printf("Tool %s failed: %v", params.Name, err)
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
//
// Each tool handler:
//  1. Unmarshals arguments from JSON
//  2. Overlays the arguments on the server configuration
//  3. Loads the slice from cache
//  4. Runs the pipeline or imaging function
//  5. Returns the result or error
func (s *Server) executeTool(name string, args json.RawMessage) (interface{}, error) {
	switch name {
	// Slice Information
	case "image_load":
		return s.handleImageLoad(args)
	case "image_dimensions":
		return s.handleImageDimensions(args)
	case "image_sample_values":
		return s.handleImageSampleValues(args)
	case "image_histogram":
		return s.handleImageHistogram(args)

	// Region Growing
	case "segment_connected_threshold":
		return s.handleSegmentConnectedThreshold(args)
	case "segment_confidence_connected":
		return s.handleSegmentConfidenceConnected(args)
	case "segment_isolated_connected":
		return s.handleSegmentIsolatedConnected(args)

	// Watershed
	case "segment_watershed":
		return s.handleSegmentWatershed(args)

	// Region Analysis
	case "region_measure":
		return s.handleRegionMeasure(args)
	case "region_overlay":
		return s.handleRegionOverlay(args)

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
// Panics are suppressed; on marshal failure, returns an empty string.
func mustMarshalJSON(v interface{}) string {
	b, _ := json.MarshalIndent(v, "", "  ")
	return string(b)
}

// === Shared argument types ===

type pointArg struct {
	X     int    `json:"x"`
	Y     int    `json:"y"`
	Label string `json:"label,omitempty"`
}

func toGridPoints(points []pointArg) []grid.Point {
	out := make([]grid.Point, len(points))
	for i, p := range points {
		out[i] = grid.Point{X: p.X, Y: p.Y}
	}
	return out
}

type regionArg struct {
	X1 int `json:"x1"`
	Y1 int `json:"y1"`
	X2 int `json:"x2"`
	Y2 int `json:"y2"`
}

// segmentArgs holds the arguments every segmentation tool accepts. Smooth
// only affects the region growing tools.
type segmentArgs struct {
	Path         string `json:"path"`
	Connectivity string `json:"connectivity"`
	Smooth       *bool  `json:"smooth"`
	OutputPath   string `json:"output_path"`
}

// configFor returns a copy of the server configuration with the call's
// overrides applied.
func (s *Server) configFor(a segmentArgs) *config.Config {
	cfg := *s.cfg
	if a.Connectivity != "" {
		cfg.Connectivity = a.Connectivity
	}
	if a.Smooth != nil {
		cfg.Smoothing.Enabled = *a.Smooth
	}
	return &cfg
}

// SegmentationResult is returned by the region growing tools.
type SegmentationResult struct {
	// Measurement describes the region over the original slice.
	Measurement *imaging.RegionMeasurement `json:"measurement"`

	// Confidence is set by segment_confidence_connected.
	Confidence *ConfidenceStats `json:"confidence,omitempty"`

	// Isolated is set by segment_isolated_connected.
	Isolated *IsolatedStats `json:"isolated,omitempty"`

	// Image is the mask as base64 PNG.
	Image *imaging.EncodedImage `json:"image"`

	// OutputPath is where the mask was saved, if requested.
	OutputPath string `json:"output_path,omitempty"`
}

// ConfidenceStats are the final statistics of a confidence-connected run.
type ConfidenceStats struct {
	Mean       float64 `json:"mean"`
	StdDev     float64 `json:"std_dev"`
	Lower      float64 `json:"lower"`
	Upper      float64 `json:"upper"`
	Iterations int     `json:"iterations"`
	Converged  bool    `json:"converged"`
}

// IsolatedStats report the threshold found by an isolated-connected run.
type IsolatedStats struct {
	IsolatedValue float64 `json:"isolated_value"`
	Isolated      bool    `json:"isolated"`
	Evaluations   int     `json:"evaluations"`
}

// WatershedResult is returned by segment_watershed.
type WatershedResult struct {
	Basins        int `json:"basins"`
	InitialBasins int `json:"initial_basins"`
	Merges        int `json:"merges"`

	// BasinSizes holds the pixel count of each basin; index 0 is label 1.
	BasinSizes []int `json:"basin_sizes"`

	// Image is the label grid in the Jet colormap as base64 PNG.
	Image      *imaging.EncodedImage `json:"image"`
	OutputPath string                `json:"output_path,omitempty"`
}

// OverlayResult is returned by region_overlay.
type OverlayResult struct {
	Image      *imaging.EncodedImage `json:"image"`
	OutputPath string                `json:"output_path,omitempty"`
}

// encodeAndSave encodes img for the response and saves it when a path is
// given. A saved file replaces any cached copy, so a later region_measure
// sees the new mask.
func (s *Server) encodeAndSave(img image.Image, outputPath string) (*imaging.EncodedImage, error) {
	if outputPath != "" {
		if err := imaging.Save(img, outputPath); err != nil {
			return nil, err
		}
		s.cache.Evict(outputPath)
	}
	return imaging.EncodePNG(img)
}

// regionResult measures the mask over the original slice and renders it.
func (s *Server) regionResult(g *grid.Grid, m *grid.Mask, cfg *config.Config, outputPath string) (*SegmentationResult, error) {
	measurement, err := imaging.MeasureRegion(m, g)
	if err != nil {
		return nil, err
	}
	encoded, err := s.encodeAndSave(imaging.MaskImage(m, uint8(cfg.Output.ReplaceValue)), outputPath)
	if err != nil {
		return nil, err
	}
	return &SegmentationResult{
		Measurement: measurement,
		Image:       encoded,
		OutputPath:  outputPath,
	}, nil
}

// === Slice Information Handlers ===

type imageLoadArgs struct {
	Path string `json:"path"`
}

func (s *Server) handleImageLoad(args json.RawMessage) (interface{}, error) {
	var a imageLoadArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	return imaging.LoadImageInfo(s.cache, a.Path)
}

func (s *Server) handleImageDimensions(args json.RawMessage) (interface{}, error) {
	var a imageLoadArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	return imaging.GetDimensions(s.cache, a.Path)
}

type imageSampleValuesArgs struct {
	Path   string     `json:"path"`
	Points []pointArg `json:"points"`
	Radius *int       `json:"radius"`
}

func (s *Server) handleImageSampleValues(args json.RawMessage) (interface{}, error) {
	var a imageSampleValuesArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	radius := 1
	if a.Radius != nil {
		radius = *a.Radius
	}
	g, err := imaging.LoadGrid(s.cache, a.Path)
	if err != nil {
		return nil, err
	}

	points := make([]imaging.LabeledPoint, len(a.Points))
	for i, p := range a.Points {
		points[i] = imaging.LabeledPoint{X: p.X, Y: p.Y, Label: p.Label}
	}
	return imaging.SampleValues(g, points, radius)
}

type imageHistogramArgs struct {
	Path   string     `json:"path"`
	Bins   int        `json:"bins"`
	Peaks  int        `json:"peaks"`
	Region *regionArg `json:"region,omitempty"`
}

func (s *Server) handleImageHistogram(args json.RawMessage) (interface{}, error) {
	var a imageHistogramArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if a.Bins == 0 {
		a.Bins = 32
	}
	if a.Peaks == 0 {
		a.Peaks = 3
	}
	g, err := imaging.LoadGrid(s.cache, a.Path)
	if err != nil {
		return nil, err
	}

	var region *imaging.Region
	if a.Region != nil {
		region = &imaging.Region{X1: a.Region.X1, Y1: a.Region.Y1, X2: a.Region.X2, Y2: a.Region.Y2}
	}
	return imaging.Histogram(g, a.Bins, a.Peaks, region)
}

// === Region Growing Handlers ===

type segmentConnectedThresholdArgs struct {
	segmentArgs
	Seeds []pointArg `json:"seeds"`
	Lower *float64   `json:"lower"`
	Upper *float64   `json:"upper"`
}

func (s *Server) handleSegmentConnectedThreshold(args json.RawMessage) (interface{}, error) {
	var a segmentConnectedThresholdArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if a.Lower == nil || a.Upper == nil {
		return nil, fmt.Errorf("%w: lower and upper are required", grid.ErrInvalidParameter)
	}
	cfg := s.configFor(a.segmentArgs)
	cfg.Threshold = config.Threshold{Lower: *a.Lower, Upper: *a.Upper}

	g, err := imaging.LoadGrid(s.cache, a.Path)
	if err != nil {
		return nil, err
	}
	res, err := pipeline.Connected(g, cfg, toGridPoints(a.Seeds))
	if err != nil {
		return nil, err
	}
	return s.regionResult(g, res.Mask, cfg, a.OutputPath)
}

type segmentConfidenceConnectedArgs struct {
	segmentArgs
	Seeds      []pointArg `json:"seeds"`
	Radius     *int       `json:"radius"`
	Multiplier *float64   `json:"multiplier"`
	Iterations *int       `json:"iterations"`
}

func (s *Server) handleSegmentConfidenceConnected(args json.RawMessage) (interface{}, error) {
	var a segmentConfidenceConnectedArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	cfg := s.configFor(a.segmentArgs)
	if a.Radius != nil {
		cfg.Confidence.Radius = *a.Radius
	}
	if a.Multiplier != nil {
		cfg.Confidence.Multiplier = *a.Multiplier
	}
	if a.Iterations != nil {
		cfg.Confidence.Iterations = *a.Iterations
	}

	g, err := imaging.LoadGrid(s.cache, a.Path)
	if err != nil {
		return nil, err
	}
	res, err := pipeline.Confidence(g, cfg, toGridPoints(a.Seeds))
	if err != nil {
		return nil, err
	}

	out, err := s.regionResult(g, res.Mask, cfg, a.OutputPath)
	if err != nil {
		return nil, err
	}
	out.Confidence = &ConfidenceStats{
		Mean:       res.Mean,
		StdDev:     res.StdDev,
		Lower:      res.Lower,
		Upper:      res.Upper,
		Iterations: res.Iterations,
		Converged:  res.Converged,
	}
	return out, nil
}

type segmentIsolatedConnectedArgs struct {
	segmentArgs
	Seeds1 []pointArg `json:"seeds1"`
	Seeds2 []pointArg `json:"seeds2"`
	Lower  *float64   `json:"lower"`
}

func (s *Server) handleSegmentIsolatedConnected(args json.RawMessage) (interface{}, error) {
	var a segmentIsolatedConnectedArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if a.Lower == nil {
		return nil, fmt.Errorf("%w: lower is required", grid.ErrInvalidParameter)
	}
	cfg := s.configFor(a.segmentArgs)
	cfg.Isolated.Lower = *a.Lower

	g, err := imaging.LoadGrid(s.cache, a.Path)
	if err != nil {
		return nil, err
	}
	res, err := pipeline.Isolated(g, cfg, toGridPoints(a.Seeds1), toGridPoints(a.Seeds2))
	if err != nil {
		return nil, err
	}

	out, err := s.regionResult(g, res.Mask, cfg, a.OutputPath)
	if err != nil {
		return nil, err
	}
	out.Isolated = &IsolatedStats{
		IsolatedValue: res.IsolatedValue,
		Isolated:      res.Isolated,
		Evaluations:   res.Evaluations,
	}
	return out, nil
}

// === Watershed Handlers ===

type segmentWatershedArgs struct {
	segmentArgs
	Threshold *float64 `json:"threshold"`
	Level     *float64 `json:"level"`
}

func (s *Server) handleSegmentWatershed(args json.RawMessage) (interface{}, error) {
	var a segmentWatershedArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	cfg := s.configFor(a.segmentArgs)
	if a.Threshold != nil {
		cfg.Watershed.Threshold = *a.Threshold
	}
	if a.Level != nil {
		cfg.Watershed.Level = *a.Level
	}

	g, err := imaging.LoadGrid(s.cache, a.Path)
	if err != nil {
		return nil, err
	}
	res, err := pipeline.Watershed(g, cfg)
	if err != nil {
		return nil, err
	}

	encoded, err := s.encodeAndSave(imaging.ColorizeLabels(res.Labels), a.OutputPath)
	if err != nil {
		return nil, err
	}
	return &WatershedResult{
		Basins:        res.Basins,
		InitialBasins: res.InitialBasins,
		Merges:        res.Merges,
		BasinSizes:    res.Labels.Counts()[1:],
		Image:         encoded,
		OutputPath:    a.OutputPath,
	}, nil
}

// === Region Analysis Handlers ===

type regionMaskArgs struct {
	Path     string `json:"path"`
	MaskPath string `json:"mask_path"`
}

// loadSliceAndMask loads a slice and a mask saved for it.
func (s *Server) loadSliceAndMask(a regionMaskArgs) (*grid.Grid, *grid.Mask, error) {
	g, err := imaging.LoadGrid(s.cache, a.Path)
	if err != nil {
		return nil, nil, err
	}
	m, err := imaging.LoadMask(s.cache, a.MaskPath)
	if err != nil {
		return nil, nil, err
	}
	return g, m, nil
}

func (s *Server) handleRegionMeasure(args json.RawMessage) (interface{}, error) {
	var a regionMaskArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	g, m, err := s.loadSliceAndMask(a)
	if err != nil {
		return nil, err
	}
	return imaging.MeasureRegion(m, g)
}

type regionOverlayArgs struct {
	regionMaskArgs
	Color      string   `json:"color"`
	Opacity    *float64 `json:"opacity"`
	OutputPath string   `json:"output_path"`
}

func (s *Server) handleRegionOverlay(args json.RawMessage) (interface{}, error) {
	var a regionOverlayArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	opacity := 0.5
	if a.Opacity != nil {
		opacity = *a.Opacity
	}
	g, m, err := s.loadSliceAndMask(a.regionMaskArgs)
	if err != nil {
		return nil, err
	}

	img, err := imaging.OverlayMask(g, m, a.Color, opacity)
	if err != nil {
		return nil, err
	}
	encoded, err := s.encodeAndSave(img, a.OutputPath)
	if err != nil {
		return nil, err
	}
	return &OverlayResult{Image: encoded, OutputPath: a.OutputPath}, nil
}
