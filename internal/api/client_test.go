package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return New(server.URL)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func TestStartSolution_SendsJSONBody(t *testing.T) {
	var gotPath, gotType string
	var gotBody SolutionRequest
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotType = r.Header.Get("Content-Type")
		json.NewDecoder(r.Body).Decode(&gotBody)
		writeJSON(w, http.StatusOK, map[string]any{"status": "success", "message": "submitted"})
	})

	err := c.StartSolution(context.Background(), SolutionGemini, SolutionRequest{
		Question:       "two sum",
		ScreenshotPath: "screenshots/shot1.png",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotPath != "/api/solution-with-gemini" {
		t.Fatalf("expected gemini endpoint, got %q", gotPath)
	}
	if gotType != "application/json" {
		t.Fatalf("expected JSON content type, got %q", gotType)
	}
	if gotBody.Question != "two sum" || gotBody.ScreenshotPath != "screenshots/shot1.png" {
		t.Fatalf("unexpected body: %+v", gotBody)
	}
}

func TestErrorEnvelopeIsAPIError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"status": "error", "message": "rate limited"})
	})

	err := c.StartSolution(context.Background(), SolutionClaude, SolutionRequest{Question: "q", ScreenshotPath: "p"})
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected *APIError, got %T (%v)", err, err)
	}
	if apiErr.Message != "rate limited" {
		t.Fatalf("expected message 'rate limited', got %q", apiErr.Message)
	}
}

func TestHTTPErrorStatusIsAPIError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusBadRequest, map[string]any{"status": "error", "message": "Missing question or screenshot_path"})
	})

	err := c.StartSolution(context.Background(), SolutionClaude, SolutionRequest{})
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected *APIError, got %T", err)
	}
	if apiErr.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", apiErr.StatusCode)
	}
}

func TestTransportErrorWhenUnreachable(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	url := server.URL
	server.Close()

	_, err := New(url).RecordingStatus(context.Background())
	var tErr *TransportError
	if !errors.As(err, &tErr) {
		t.Fatalf("expected *TransportError, got %T (%v)", err, err)
	}
}

func TestDecodeFailureIsTransportError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"is_recording": "maybe"`))
	})

	_, err := c.RecordingStatus(context.Background())
	var tErr *TransportError
	if !errors.As(err, &tErr) {
		t.Fatalf("expected *TransportError, got %T (%v)", err, err)
	}
}

func TestSolutionStatusEscapesKey(t *testing.T) {
	var gotKey string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotKey = r.URL.Query().Get("key")
		writeJSON(w, http.StatusOK, map[string]any{
			"solution":       map[string]any{"explanation": "use a map", "code": "def f(): pass"},
			"react_solution": nil,
		})
	})

	sol, err := c.SolutionStatus(context.Background(), "screenshots/shot 1.png")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotKey != "screenshots/shot 1.png" {
		t.Fatalf("key not round-tripped: %q", gotKey)
	}
	if !sol.Ready() || sol.Solution.Explanation != "use a map" {
		t.Fatalf("unexpected solution: %+v", sol)
	}
}

func TestSolutionStatusPending(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"solution": nil, "react_solution": nil})
	})

	sol, err := c.SolutionStatus(context.Background(), "k")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sol.Ready() {
		t.Fatal("expected pending result")
	}
}

func TestRecordingStart(t *testing.T) {
	var body StartRecordingRequest
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewDecoder(r.Body).Decode(&body)
		writeJSON(w, http.StatusOK, map[string]any{"status": "recording_started"})
	})

	status, err := c.StartRecording(context.Background(), StartRecordingRequest{DeviceName: "BlackHole", RecordSeconds: 5})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if status != "recording_started" {
		t.Fatalf("unexpected status %q", status)
	}
	if body.DeviceName != "BlackHole" || body.RecordSeconds != 5 {
		t.Fatalf("unexpected body %+v", body)
	}
}

func TestScreenshotsArrayResponse(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, []map[string]any{
			{"path": "screenshots/a.png", "timestamp": "2024-01-01 10:00:00", "question_type": "coding"},
		})
	})

	shots, err := c.Screenshots(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(shots) != 1 || shots[0].Filename() != "a.png" {
		t.Fatalf("unexpected screenshots %+v", shots)
	}
}

func TestCheckCompatible(t *testing.T) {
	tests := []struct {
		local, remote string
		wantErr       bool
	}{
		{"1.2.0", "1.9.3", false},
		{"v1.2.0", "2.0.0", true},
		{"(devel)", "2.0.0", false},
		{"1.0.0", "", false},
	}
	for _, tt := range tests {
		err := CheckCompatible(tt.local, tt.remote)
		if (err != nil) != tt.wantErr {
			t.Errorf("CheckCompatible(%q, %q) = %v, wantErr %v", tt.local, tt.remote, err, tt.wantErr)
		}
	}
}

func TestWithTimeoutLeavesSharedClientAlone(t *testing.T) {
	shared := &http.Client{Timeout: time.Minute}
	c := New("http://backend.invalid", WithTimeout(5*time.Second), WithHTTPClient(shared))

	if shared.Timeout != time.Minute {
		t.Fatalf("shared client was modified: %v", shared.Timeout)
	}
	if c.http == shared || c.http.Timeout != 5*time.Second {
		t.Fatalf("expected a copy with the 5s timeout, got %v", c.http.Timeout)
	}

	c = New("http://backend.invalid", WithHTTPClient(nil), WithTimeout(time.Second))
	if c.http == nil || c.http.Timeout != time.Second {
		t.Fatal("nil client should fall back to the default")
	}

	c = New("http://backend.invalid", WithHTTPClient(shared))
	if c.http != shared {
		t.Fatal("client without a timeout option should be used as is")
	}
}
