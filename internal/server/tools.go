package server

// Tool represents an MCP tool definition
type Tool struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	InputSchema map[string]interface{} `json:"inputSchema"`
}

func pathProperty() map[string]interface{} {
	return map[string]interface{}{
		"type":        "string",
		"description": "Absolute path to the CT slice image",
	}
}

func pointsProperty(description string) map[string]interface{} {
	return map[string]interface{}{
		"type":        "array",
		"description": description,
		"minItems":    1,
		"items": map[string]interface{}{
			"type": "object",
			"properties": map[string]interface{}{
				"x": map[string]interface{}{"type": "integer", "description": "X coordinate (0-based, from left)"},
				"y": map[string]interface{}{"type": "integer", "description": "Y coordinate (0-based, from top)"},
			},
			"required": []string{"x", "y"},
		},
	}
}

// segmentProperties returns the properties shared by all segmentation tools
// merged with the tool-specific ones.
func segmentProperties(specific map[string]interface{}) map[string]interface{} {
	props := map[string]interface{}{
		"path": pathProperty(),
		"connectivity": map[string]interface{}{
			"type":        "string",
			"enum":        []string{"4", "8"},
			"description": "Pixel connectivity. Default from server configuration (4)",
		},
		"output_path": map[string]interface{}{
			"type":        "string",
			"description": "Optional path to also save the result image (.png, .tif, .jpg, .bmp, .gif)",
		},
	}
	for k, v := range specific {
		props[k] = v
	}
	return props
}

// regionProperties adds the smoothing switch of the region growing tools to
// the shared properties.
func regionProperties(specific map[string]interface{}) map[string]interface{} {
	props := segmentProperties(specific)
	props["smooth"] = map[string]interface{}{
		"type":        "boolean",
		"description": "Apply curvature-flow smoothing before growing the region. Default from server configuration (true)",
	}
	return props
}

// GetToolDefinitions returns all available tools
func GetToolDefinitions() []Tool {
	return []Tool{
		// Slice Information
		{
			Name:        "image_load",
			Description: "Load a CT slice and return its dimensions, format, bit depth and intensity range. The slice is cached for subsequent operations.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty(),
				},
				"required": []string{"path"},
			},
		},
		{
			Name:        "image_dimensions",
			Description: "Get the width and height of a CT slice.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty(),
				},
				"required": []string{"path"},
			},
		},
		{
			Name:        "image_sample_values",
			Description: "Read the intensity at one or more pixels together with the mean and standard deviation of the surrounding window. Use this to choose seeds and thresholds.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path":   pathProperty(),
					"points": pointsProperty("Pixels to sample, each with an optional label"),
					"radius": map[string]interface{}{
						"type":        "integer",
						"description": "Neighborhood radius for the window statistics. Default 1",
						"default":     1,
					},
				},
				"required": []string{"path", "points"},
			},
		},
		{
			Name:        "image_histogram",
			Description: "Compute an intensity histogram of the slice or a rectangular part of it, with the most populated bins.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty(),
					"bins": map[string]interface{}{
						"type":        "integer",
						"description": "Number of equal-width bins. Default 32",
						"default":     32,
					},
					"peaks": map[string]interface{}{
						"type":        "integer",
						"description": "Number of peak bins to report. Default 3",
						"default":     3,
					},
					"region": map[string]interface{}{
						"type":        "object",
						"description": "Optional rectangle to analyze (x2, y2 exclusive)",
						"properties": map[string]interface{}{
							"x1": map[string]interface{}{"type": "integer"},
							"y1": map[string]interface{}{"type": "integer"},
							"x2": map[string]interface{}{"type": "integer"},
							"y2": map[string]interface{}{"type": "integer"},
						},
					},
				},
				"required": []string{"path"},
			},
		},

		// Region Growing
		{
			Name:        "segment_connected_threshold",
			Description: "Grow the region of pixels with intensity in [lower, upper] connected to the seeds. Returns region measurements and the mask as base64 PNG.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": regionProperties(map[string]interface{}{
					"seeds": pointsProperty("Seed pixels inside the organ"),
					"lower": map[string]interface{}{"type": "number", "description": "Lowest accepted intensity"},
					"upper": map[string]interface{}{"type": "number", "description": "Highest accepted intensity"},
				}),
				"required": []string{"path", "seeds", "lower", "upper"},
			},
		},
		{
			Name:        "segment_confidence_connected",
			Description: "Grow a region whose intensity interval is mean ± multiplier × standard deviation of the region itself, re-estimated each iteration. Returns measurements, final statistics and the mask as base64 PNG.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": regionProperties(map[string]interface{}{
					"seeds": pointsProperty("Seed pixels inside the organ"),
					"radius": map[string]interface{}{
						"type":        "integer",
						"description": "Radius of the seed neighborhood for the initial statistics. Default 3",
					},
					"multiplier": map[string]interface{}{
						"type":        "number",
						"description": "Width of the interval in standard deviations. Default 3",
					},
					"iterations": map[string]interface{}{
						"type":        "integer",
						"description": "Maximum number of statistics updates. Default 5",
					},
				}),
				"required": []string{"path", "seeds"},
			},
		},
		{
			Name:        "segment_isolated_connected",
			Description: "Find the largest upper threshold that grows a region from seeds1 without reaching any of seeds2, and return that region. Use to separate the liver from an adjacent organ.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": regionProperties(map[string]interface{}{
					"seeds1": pointsProperty("Seeds inside the organ to segment"),
					"seeds2": pointsProperty("Seeds inside the structure to exclude"),
					"lower":  map[string]interface{}{"type": "number", "description": "Lowest accepted intensity"},
				}),
				"required": []string{"path", "seeds1", "seeds2", "lower"},
			},
		},

		// Watershed
		{
			Name:        "segment_watershed",
			Description: "Partition the slice into catchment basins of its gradient magnitude, computed without smoothing. Returns basin counts and the labels rendered with the Jet colormap as base64 PNG.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": segmentProperties(map[string]interface{}{
					"threshold": map[string]interface{}{
						"type":        "number",
						"description": "Fraction of the maximum gradient below which values are flattened (0-1). Default 0.01",
					},
					"level": map[string]interface{}{
						"type":        "number",
						"description": "Fraction of the gradient range up to which shallow basins are merged (0-1). Default 0.2",
					},
				}),
				"required": []string{"path"},
			},
		},

		// Region Analysis
		{
			Name:        "region_measure",
			Description: "Measure a saved mask over its slice: area, physical area, centroid, bounding box and intensity statistics.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty(),
					"mask_path": map[string]interface{}{
						"type":        "string",
						"description": "Path to a mask image; non-zero pixels belong to the region",
					},
				},
				"required": []string{"path", "mask_path"},
			},
		},
		{
			Name:        "region_overlay",
			Description: "Render the slice with a saved mask blended over it in color, returned as base64 PNG.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty(),
					"mask_path": map[string]interface{}{
						"type":        "string",
						"description": "Path to a mask image; non-zero pixels belong to the region",
					},
					"color": map[string]interface{}{
						"type":        "string",
						"description": "Mask color as #RRGGBB. Default #ff3030",
					},
					"opacity": map[string]interface{}{
						"type":        "number",
						"description": "Blend factor 0-1. Default 0.5",
						"default":     0.5,
					},
					"output_path": map[string]interface{}{
						"type":        "string",
						"description": "Optional path to also save the overlay",
					},
				},
				"required": []string{"path", "mask_path"},
			},
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
