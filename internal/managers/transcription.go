package managers

import (
	"context"
	"strings"

	"github.com/abhisek/interviewdeck/internal/model"
	"github.com/abhisek/interviewdeck/internal/state"
)

// Transcription mirrors the backend transcript into state.
type Transcription struct {
	base
}

// Poll fetches the transcript when the latest entry changed. Entries
// without a speaker are attributed alternately, starting from
// recording.currentSpeaker.
func (t *Transcription) Poll(ctx context.Context) error {
	latest, err := t.client.LatestTranscription(ctx)
	if err != nil {
		return err
	}
	history := t.state.Transcriptions()
	if n := len(history); n > 0 && history[n-1].Timestamp == latest.Timestamp && history[n-1].Text == latest.Text {
		return nil
	}
	if len(history) == 0 && latest.Text == "" {
		return nil
	}

	list, err := t.client.Transcriptions(ctx)
	if err != nil {
		return err
	}

	// Re-read after the await; a reset may have happened meanwhile.
	history = t.state.Transcriptions()
	prev := t.state.Int(state.RecordingCount)

	if len(list) <= prev {
		if len(list) < prev {
			// Backend history shrank (reset elsewhere); mirror it.
			t.state.Update(state.RecordingTranscriptions, list)
			t.state.Update(state.RecordingCount, len(list))
		}
		return nil
	}

	for i := range min(len(history), len(list)) {
		if list[i].Speaker == "" {
			list[i].Speaker = history[i].Speaker
		}
	}
	speaker := t.state.Speaker()
	for i := prev; i < len(list); i++ {
		if list[i].Speaker == "" {
			list[i].Speaker = speaker
		}
		speaker = list[i].Speaker.Other()
	}

	t.state.Update(state.RecordingTranscriptions, list)
	t.state.Update(state.RecordingCount, len(list))
	t.state.Update(state.RecordingSpeaker, speaker)
	return nil
}

// Recent returns the text of the last two minutes of transcript, one entry
// per line.
func (t *Transcription) Recent(ctx context.Context) (string, error) {
	list, err := t.client.RecentTranscriptions(ctx)
	if err != nil {
		return "", err
	}
	return joinTranscript(list), nil
}

func joinTranscript(list []model.Transcription) string {
	lines := make([]string, 0, len(list))
	for _, tr := range list {
		if text := strings.TrimSpace(tr.Text); text != "" {
			lines = append(lines, text)
		}
	}
	return strings.Join(lines, "\n")
}
