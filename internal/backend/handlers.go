package backend

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"path"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/abhisek/interviewdeck/internal/model"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]any{"status": "error", "message": message})
}

func writeSuccess(w http.ResponseWriter, message string, extra map[string]any) {
	body := map[string]any{"status": "success"}
	if message != "" {
		body["message"] = message
	}
	for k, v := range extra {
		body[k] = v
	}
	writeJSON(w, http.StatusOK, body)
}

// decodeBody reads an optional JSON body into v. An empty body is fine.
func decodeBody(r *http.Request, v any) error {
	if r.Body == nil {
		return nil
	}
	err := json.NewDecoder(r.Body).Decode(v)
	if errors.Is(err, io.EOF) {
		return nil
	}
	return err
}

// storagePath maps a per-file route parameter back to its storage key.
func (s *Server) storagePath(filename string) string {
	return path.Join(strings.TrimSuffix(s.cfg.ScreenshotDir, "/"), filename)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"status": "success", "version": s.cfg.Version})
}

// Recording

func (s *Server) handleStartRecording(w http.ResponseWriter, r *http.Request) {
	var body struct {
		DeviceName    string `json:"device_name"`
		RecordSeconds int    `json:"record_seconds"`
		Duration      *int   `json:"duration"`
	}
	if err := decodeBody(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if s.recorder == nil {
		writeError(w, http.StatusServiceUnavailable, ErrNoTranscriptFile.Error())
		return
	}
	opts := RecordOptions{DeviceName: body.DeviceName, RecordSeconds: body.RecordSeconds}
	if body.Duration != nil && *body.Duration > 0 {
		opts.Duration = time.Duration(*body.Duration) * time.Second
	}
	already, err := s.recorder.Start(r.Context(), opts)
	if err != nil {
		s.logger.Error("failed to start recording", zap.Error(err))
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if already {
		writeJSON(w, http.StatusOK, map[string]any{"status": "already_recording"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"status": "recording_started"})
}

func (s *Server) handleStopRecording(w http.ResponseWriter, r *http.Request) {
	if s.recorder == nil || !s.recorder.Stop() {
		writeJSON(w, http.StatusOK, map[string]any{"status": "not_recording"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"status": "recording_stopped"})
}

func (s *Server) handleRecordingStatus(w http.ResponseWriter, r *http.Request) {
	on := s.recorder != nil && s.recorder.IsRecording()
	writeJSON(w, http.StatusOK, map[string]any{"is_recording": on})
}

func (s *Server) transcriptions() []model.Transcription {
	if s.recorder == nil {
		return []model.Transcription{}
	}
	return s.recorder.Transcriptions()
}

func (s *Server) handleTranscriptions(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.transcriptions())
}

func (s *Server) handleLatestTranscription(w http.ResponseWriter, r *http.Request) {
	var latest model.Transcription
	if s.recorder != nil {
		latest = s.recorder.Latest()
	}
	writeJSON(w, http.StatusOK, latest)
}

func (s *Server) handleRecentTranscriptions(w http.ResponseWriter, r *http.Request) {
	recent := []model.Transcription{}
	if s.recorder != nil {
		recent = s.recorder.Recent()
	}
	writeJSON(w, http.StatusOK, recent)
}

// Questions

func (s *Server) handleMarkQuestion(w http.ResponseWriter, r *http.Request) {
	var body struct {
		QuestionType string `json:"question_type"`
		Notes        string `json:"notes"`
	}
	if err := decodeBody(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	q := s.session.MarkQuestion(body.QuestionType, body.Notes)
	writeJSON(w, http.StatusOK, map[string]any{"status": "success", "question": q})
}

func (s *Server) handleMarkFollowup(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Notes string `json:"notes"`
	}
	if err := decodeBody(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	f, err := s.session.MarkFollowup(body.Notes)
	if err != nil {
		writeError(w, http.StatusBadRequest, "No active question to add follow-up to")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"status": "success", "followup": f})
}

func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	s.session.Reset()
	if s.recorder != nil {
		s.recorder.Clear()
	}
	s.logger.Info("interview data reset")
	writeSuccess(w, "All interview data and transcriptions have been reset", nil)
}

// Screenshots and extraction

func (s *Server) handleScreenshots(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.session.Screenshots())
}

func (s *Server) handleExtractedQuestions(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.session.ExtractedQuestions())
}

func (s *Server) handleExtractedQuestion(w http.ResponseWriter, r *http.Request) {
	key := s.storagePath(mux.Vars(r)["filename"])
	writeJSON(w, http.StatusOK, map[string]any{
		"screenshot": key,
		"question":   s.session.ExtractedQuestion(key),
	})
}

// Solutions

func (s *Server) handleSolutions(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.session.Index())
}

func (s *Server) handleSolutionStatus(w http.ResponseWriter, r *http.Request) {
	key := r.URL.Query().Get("key")
	if key == "" {
		writeError(w, http.StatusBadRequest, "Missing key")
		return
	}
	writeJSON(w, http.StatusOK, s.session.Solution(key))
}

func (s *Server) handleSolutionForFile(w http.ResponseWriter, r *http.Request) {
	key := s.storagePath(mux.Vars(r)["filename"])
	res := s.session.Solution(key)
	writeJSON(w, http.StatusOK, map[string]any{
		"screenshot":         key,
		"solution":           res.Solution,
		"react_solution":     res.ReactSolution,
		"followup_solutions": s.session.RelatedFollowups(key),
	})
}
