package respond

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestJSONKeyedRecords(t *testing.T) {
	type ack struct {
		Recorded bool `json:"recorded"`
	}

	tests := []struct {
		name string
		body any
	}{
		{"struct", ack{Recorded: true}},
		{"struct pointer", &ack{Recorded: true}},
		{"string map", map[string]any{"ok": true}},
		{"raw message object", json.RawMessage(`{"ok":true}`)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			JSON(w, http.StatusAccepted, tt.body)

			if w.Code != http.StatusAccepted {
				t.Errorf("status = %d, want 202", w.Code)
			}
			var decoded map[string]any
			if err := json.Unmarshal(w.Body.Bytes(), &decoded); err != nil {
				t.Errorf("body is not a JSON object: %v", err)
			}
		})
	}
}

func TestJSONRejectsNonKeyedBodies(t *testing.T) {
	tests := []struct {
		name string
		body any
	}{
		{"nil", nil},
		{"string", "bare string"},
		{"int", 42},
		{"bool", true},
		{"slice", []string{"a", "b"}},
		{"array of maps", []map[string]string{{"k": "v"}}},
		{"nil pointer", (*struct{})(nil)},
		// Structs whose custom marshalers emit non-objects must not slip
		// through on their struct kind alone.
		{"struct marshaling to string", time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)},
		{"raw message array", json.RawMessage(`[1,2,3]`)},
		{"raw message scalar with whitespace", json.RawMessage("  \n 42")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			JSON(w, http.StatusOK, tt.body)

			if w.Code != http.StatusInternalServerError {
				t.Errorf("status = %d, want 500 for contract violation", w.Code)
			}

			var decoded map[string]any
			if err := json.Unmarshal(w.Body.Bytes(), &decoded); err != nil {
				t.Fatalf("replacement body is not a JSON object: %v", err)
			}
			if decoded["error"] == nil {
				t.Error("replacement body missing error field")
			}
			// The malformed body must not have been transmitted.
			if len(w.Body.Bytes()) == 0 {
				t.Error("no body written at all")
			}
		})
	}
}

func TestErrorEnvelope(t *testing.T) {
	w := httptest.NewRecorder()
	Error(w, http.StatusBadRequest, "domain is required")

	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}

	var body ErrorBody
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("error body is not a JSON object: %v", err)
	}
	if body.Error != "domain is required" {
		t.Errorf("error = %q", body.Error)
	}
}

func TestContentType(t *testing.T) {
	w := httptest.NewRecorder()
	JSON(w, http.StatusOK, map[string]string{"ok": "yes"})

	if ct := w.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type = %q, want application/json", ct)
	}
}
