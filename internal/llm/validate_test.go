package llm

import (
	"encoding/json"
	"errors"
	"testing"
)

func solutionSchema() *Schema {
	return &Schema{
		Name:        "test-solution",
		Description: "A coding answer",
		Definition: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"explanation": map[string]any{"type": "string"},
				"code":        map[string]any{"type": "string"},
				"confidence":  map[string]any{"type": "integer", "minimum": 0},
				"language":    map[string]any{"type": "string", "enum": []any{"python", "go", "java"}},
				"steps": map[string]any{
					"type":  "array",
					"items": map[string]any{"type": "string"},
				},
			},
			"required": []any{"explanation", "code"},
		},
	}
}

func TestValidateResponse(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		wantErr bool
	}{
		{name: "all fields", raw: `{"explanation":"two pointers","code":"x","confidence":3,"language":"go","steps":["a","b"]}`},
		{name: "required only", raw: `{"explanation":"bfs","code":"y"}`},
		{name: "missing required", raw: `{"explanation":"dfs"}`, wantErr: true},
		{name: "wrong type", raw: `{"explanation":"dp","code":"z","confidence":"high"}`, wantErr: true},
		{name: "bad enum", raw: `{"explanation":"dp","code":"z","language":"cobol"}`, wantErr: true},
		{name: "bad array item", raw: `{"explanation":"dp","code":"z","steps":[1,2]}`, wantErr: true},
		{name: "malformed", raw: `{not json}`, wantErr: true},
		{name: "empty", raw: ``, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateResponse(solutionSchema(), json.RawMessage(tt.raw))
			if (err != nil) != tt.wantErr {
				t.Fatalf("validateResponse() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil {
				var invErr *ErrInvalidResponse
				if !errors.As(err, &invErr) {
					t.Fatalf("expected ErrInvalidResponse, got: %T", err)
				}
			}
		})
	}
}

func TestValidateResponse_NilSchema(t *testing.T) {
	if err := validateResponse(nil, json.RawMessage(`{"anything":"goes"}`)); err != nil {
		t.Fatalf("expected no error with nil schema, got: %v", err)
	}
}

func TestStripCodeFence(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"```json\n{\"a\":1}\n```", `{"a":1}`},
		{"  ```\n{\"a\":1}```  ", `{"a":1}`},
		{`{"a":1}`, `{"a":1}`},
		{"```{\"a\":1}```", "```{\"a\":1}```"},
	}
	for _, tt := range tests {
		if got := string(stripCodeFence(json.RawMessage(tt.in))); got != tt.want {
			t.Errorf("stripCodeFence(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
