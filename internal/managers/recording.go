package managers

import (
	"context"

	"github.com/abhisek/interviewdeck/internal/api"
	"github.com/abhisek/interviewdeck/internal/events"
	"github.com/abhisek/interviewdeck/internal/state"
)

// Recording controls backend audio capture.
type Recording struct {
	base
	deviceName    string
	recordSeconds int
}

// Start begins recording. "already_recording" counts as success.
func (r *Recording) Start(ctx context.Context) error {
	req := api.StartRecordingRequest{DeviceName: r.deviceName, RecordSeconds: r.recordSeconds}
	status, err := r.client.StartRecording(ctx, req)
	if err != nil {
		r.notify(events.PanelRecording, events.LevelError, "Failed to start recording: %s", describe(err))
		return err
	}
	r.state.Update(state.RecordingIsRecording, true)
	if status == "already_recording" {
		r.notify(events.PanelRecording, events.LevelInfo, "Already recording.")
	} else {
		r.notify(events.PanelRecording, events.LevelInfo, "Recording started.")
	}
	return nil
}

// Stop ends recording.
func (r *Recording) Stop(ctx context.Context) error {
	if _, err := r.client.StopRecording(ctx); err != nil {
		r.notify(events.PanelRecording, events.LevelError, "Failed to stop recording: %s", describe(err))
		return err
	}
	r.state.Update(state.RecordingIsRecording, false)
	r.notify(events.PanelRecording, events.LevelInfo, "Recording stopped.")
	return nil
}

// Toggle starts or stops recording depending on the current state.
func (r *Recording) Toggle(ctx context.Context) error {
	if r.state.Bool(state.RecordingIsRecording) {
		return r.Stop(ctx)
	}
	return r.Start(ctx)
}

// Poll syncs recording.isRecording with the backend.
func (r *Recording) Poll(ctx context.Context) error {
	on, err := r.client.RecordingStatus(ctx)
	if err != nil {
		return err
	}
	r.state.Update(state.RecordingIsRecording, on)
	return nil
}
