package server

// Tool represents an MCP tool definition
type Tool struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	InputSchema map[string]interface{} `json:"inputSchema"`
}

func integerProp(description string) map[string]interface{} {
	return map[string]interface{}{"type": "integer", "description": description}
}

// configSchema describes the pipeline overrides accepted by every tool.
func configSchema() map[string]interface{} {
	return map[string]interface{}{
		"type":        "object",
		"description": "Optional pipeline overrides. Omitted fields keep the server configuration; an explicit 0 is applied.",
		"properties": map[string]interface{}{
			"offset":          integerProp("Crop margin in source pixels around the illuminated region"),
			"pixels":          integerProp("Subpixel multiplier"),
			"threshold_light": integerProp("Gray level (1-255) marking the illuminated region"),
			"threshold_dark":  integerProp("Gray level (1-255) separating droplet and substrate from background"),
			"bl_fit":          integerProp("Baseline samples per side"),
			"bl_ignore":       integerProp("Columns skipped inside each end of the illuminated span"),
			"bl_offset":       integerProp("Rows above the baseline where the edge trace starts"),
			"tan_ignore":      integerProp("Edge points skipped before the tangent window"),
			"tan_fit":         integerProp("Edge points in the tangent window"),
		},
	}
}

// imageSchema returns the schema shared by the single-image tools, extended
// with extra properties.
func imageSchema(extra map[string]interface{}) map[string]interface{} {
	props := map[string]interface{}{
		"path": map[string]interface{}{
			"type":        "string",
			"description": "Absolute path to the frame, or an http(s) URL",
		},
		"mirror": map[string]interface{}{
			"type":        "boolean",
			"description": "Flip the frame horizontally before analysis",
			"default":     false,
		},
		"blur_radius": map[string]interface{}{
			"type":        "number",
			"description": "Gaussian denoise radius in pixels; 0 disables",
		},
		"config": configSchema(),
	}
	for k, v := range extra {
		props[k] = v
	}
	return map[string]interface{}{
		"type":       "object",
		"properties": props,
		"required":   []string{"path"},
	}
}

// GetToolDefinitions returns all available tools
func GetToolDefinitions() []Tool {
	return []Tool{
		{
			Name:        "droplet_contact_angle",
			Description: "Measure the left and right contact angles (degrees) of a sessile droplet in a backlit frame, with contact points and drop base width and height.",
			InputSchema: imageSchema(nil),
		},
		{
			Name:        "droplet_baseline",
			Description: "Fit the substrate baseline of a frame and return its slope, intercept, illuminated span and the samples it was fitted to. Coordinates are subpixel units of the cropped frame.",
			InputSchema: imageSchema(nil),
		},
		{
			Name:        "droplet_edges",
			Description: "Trace the droplet silhouette and return the left and right edge points and the apex. Coordinates are subpixel units of the cropped frame.",
			InputSchema: imageSchema(nil),
		},
		{
			Name:        "droplet_overlay",
			Description: "Render baseline, edges, tangents and contact points over the subpixel frame and return it as base64-encoded PNG. Optionally zoom into one contact point.",
			InputSchema: imageSchema(map[string]interface{}{
				"inset": map[string]interface{}{
					"type":        "string",
					"enum":        []string{"", "left", "right"},
					"description": "Return a zoomed crop around this contact point instead of the whole overlay",
				},
				"inset_half": map[string]interface{}{
					"type":        "integer",
					"description": "Half size of the inset in subpixel units. Default 25",
					"default":     25,
				},
				"inset_scale": map[string]interface{}{
					"type":        "number",
					"description": "Inset zoom factor. Default 4.0",
					"default":     4.0,
				},
			}),
		},
		{
			Name:        "droplet_batch",
			Description: "Measure contact angles for many frames concurrently. Directories expand to the images they contain. Returns one row per frame in input order plus a summary.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"paths": map[string]interface{}{
						"type":        "array",
						"items":       map[string]interface{}{"type": "string"},
						"description": "Frames, directories or http(s) URLs",
					},
					"workers": integerProp("Frames analyzed at once; default is the server setting"),
					"label_region": map[string]interface{}{
						"type":        "string",
						"description": "Optional x1,y1,x2,y2 region holding a burned-in frame label to OCR",
					},
					"blur_radius": map[string]interface{}{
						"type":        "number",
						"description": "Gaussian denoise radius in pixels; 0 disables",
					},
					"config": configSchema(),
				},
				"required": []string{"paths"},
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
