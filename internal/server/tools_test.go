package server

import (
	"encoding/json"
	"testing"
)

func TestGetToolDefinitions(t *testing.T) {
	tools := GetToolDefinitions()

	expectedTools := []string{
		"droplet_contact_angle",
		"droplet_baseline",
		"droplet_edges",
		"droplet_overlay",
		"droplet_batch",
	}

	toolMap := make(map[string]Tool)
	for _, tool := range tools {
		toolMap[tool.Name] = tool
	}
	if len(toolMap) != len(tools) {
		t.Errorf("duplicate tool names in %d definitions", len(tools))
	}

	for _, name := range expectedTools {
		if _, ok := toolMap[name]; !ok {
			t.Errorf("Expected tool %s not found", name)
		}
	}
}

func TestToolDefinitions_Structure(t *testing.T) {
	for _, tool := range GetToolDefinitions() {
		t.Run(tool.Name, func(t *testing.T) {
			if tool.Description == "" {
				t.Error("Tool description is empty")
			}
			if tool.InputSchema["type"] != "object" {
				t.Errorf("InputSchema type: got %v, want 'object'", tool.InputSchema["type"])
			}
			props, ok := tool.InputSchema["properties"].(map[string]interface{})
			if !ok {
				t.Fatal("InputSchema missing 'properties' field")
			}
			if _, ok := props["config"]; !ok {
				t.Error("every tool should accept config overrides")
			}

			required, ok := tool.InputSchema["required"].([]string)
			if !ok || len(required) == 0 {
				t.Fatal("InputSchema missing 'required' field")
			}
			for _, r := range required {
				if _, ok := props[r]; !ok {
					t.Errorf("required property %q is not defined", r)
				}
			}

			if _, err := json.Marshal(tool); err != nil {
				t.Errorf("tool does not marshal: %v", err)
			}
		})
	}
}

func TestConfigSchema_MatchesConfigFields(t *testing.T) {
	props := configSchema()["properties"].(map[string]interface{})

	var fields map[string]interface{}
	b, _ := json.Marshal(New(Options{}).config)
	if err := json.Unmarshal(b, &fields); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	for name := range fields {
		if _, ok := props[name]; !ok {
			t.Errorf("config field %q missing from schema", name)
		}
	}
	if len(props) != len(fields) {
		t.Errorf("schema has %d properties, config has %d fields", len(props), len(fields))
	}
}

func TestImageSchema_Extra(t *testing.T) {
	schema := imageSchema(map[string]interface{}{"inset": map[string]interface{}{"type": "string"}})
	props := schema["properties"].(map[string]interface{})
	for _, name := range []string{"path", "mirror", "blur_radius", "config", "inset"} {
		if _, ok := props[name]; !ok {
			t.Errorf("property %q missing", name)
		}
	}
}
