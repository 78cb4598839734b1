package backend

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/abhisek/interviewdeck/internal/model"
)

// ErrNoTranscriptFile is returned by Start when no transcript file is configured.
var ErrNoTranscriptFile = errors.New("no transcript file configured")

// RecentWindow is how far back Recent looks.
const RecentWindow = 2 * time.Minute

// RecordOptions are the fields of POST /api/recording/start.
type RecordOptions struct {
	DeviceName    string
	RecordSeconds int
	Duration      time.Duration // zero records until Stop
}

// Recorder turns lines appended to a transcript file into transcriptions.
// The file is written by an external speech-to-text process; the Recorder
// only tails it while recording.
type Recorder struct {
	path   string
	now    func() time.Time
	logger *zap.Logger

	mu        sync.Mutex
	recording bool
	entries   []model.Transcription
	offset    int64
	partial   string
	stop      context.CancelFunc
	done      chan struct{}
}

// NewRecorder creates a Recorder tailing path.
func NewRecorder(path string, now func() time.Time, logger *zap.Logger) *Recorder {
	if now == nil {
		now = time.Now
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Recorder{path: path, now: now, logger: logger, entries: []model.Transcription{}}
}

// Start begins tailing. It clears earlier transcriptions; only lines
// written after Start are picked up. already is true when recording was
// already running.
func (r *Recorder) Start(ctx context.Context, opts RecordOptions) (already bool, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.recording {
		return true, nil
	}
	if r.path == "" {
		return false, ErrNoTranscriptFile
	}

	f, err := os.OpenFile(r.path, os.O_CREATE|os.O_RDONLY, 0o644)
	if err != nil {
		return false, fmt.Errorf("open transcript file: %w", err)
	}
	info, err := f.Stat()
	f.Close()
	if err != nil {
		return false, fmt.Errorf("stat transcript file: %w", err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return false, fmt.Errorf("create watcher: %w", err)
	}
	// Watch the directory so a recorder that recreates the file is followed.
	if err := watcher.Add(filepath.Dir(r.path)); err != nil {
		watcher.Close()
		return false, fmt.Errorf("watch %s: %w", filepath.Dir(r.path), err)
	}

	r.entries = []model.Transcription{}
	r.offset = info.Size()
	r.partial = ""
	r.recording = true

	var watchCtx context.Context
	var cancel context.CancelFunc
	if opts.Duration > 0 {
		watchCtx, cancel = context.WithTimeout(context.WithoutCancel(ctx), opts.Duration)
	} else {
		watchCtx, cancel = context.WithCancel(context.WithoutCancel(ctx))
	}
	r.stop = cancel
	r.done = make(chan struct{})
	go r.watch(watchCtx, watcher, r.done)

	r.logger.Info("recording started",
		zap.String("file", r.path),
		zap.String("device", opts.DeviceName),
		zap.Int("record_seconds", opts.RecordSeconds),
		zap.Duration("duration", opts.Duration),
	)
	return false, nil
}

// Stop ends tailing. It reports whether recording was running.
func (r *Recorder) Stop() bool {
	r.mu.Lock()
	if !r.recording {
		r.mu.Unlock()
		return false
	}
	stop, done := r.stop, r.done
	r.mu.Unlock()

	stop()
	<-done
	r.logger.Info("recording stopped")
	return true
}

// IsRecording reports whether the file is being tailed.
func (r *Recorder) IsRecording() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.recording
}

func (r *Recorder) watch(ctx context.Context, watcher *fsnotify.Watcher, done chan struct{}) {
	defer close(done)
	defer watcher.Close()
	defer func() {
		r.mu.Lock()
		r.recording = false
		r.mu.Unlock()
	}()

	target := filepath.Clean(r.path)
	for {
		select {
		case <-ctx.Done():
			// Pick up whatever was written just before stopping.
			r.readNew()
			return

		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != target {
				continue
			}
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) {
				r.readNew()
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			r.logger.Warn("transcript watcher error", zap.Error(err))
		}
	}
}

// readNew appends complete lines written since the last read.
func (r *Recorder) readNew() {
	r.mu.Lock()
	defer r.mu.Unlock()

	f, err := os.Open(r.path)
	if err != nil {
		r.logger.Warn("failed to open transcript file", zap.Error(err))
		return
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return
	}
	if info.Size() < r.offset {
		// Truncated or replaced: start over from the top.
		r.offset = 0
		r.partial = ""
	}
	if _, err := f.Seek(r.offset, io.SeekStart); err != nil {
		return
	}
	data, err := io.ReadAll(f)
	if err != nil {
		r.logger.Warn("failed to read transcript file", zap.Error(err))
		return
	}
	r.offset += int64(len(data))

	text := r.partial + string(data)
	lines := strings.Split(text, "\n")
	r.partial = lines[len(lines)-1]

	ts := r.now().Format(model.TimestampLayout)
	for _, line := range lines[:len(lines)-1] {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		r.entries = append(r.entries, model.Transcription{Text: line, Timestamp: ts})
	}
}

// Transcriptions returns every transcription of the current recording.
func (r *Recorder) Transcriptions() []model.Transcription {
	r.mu.Lock()
	defer r.mu.Unlock()
	return slices.Clone(r.entries)
}

// Latest returns the newest transcription, or the zero value.
func (r *Recorder) Latest() model.Transcription {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.entries) == 0 {
		return model.Transcription{}
	}
	return r.entries[len(r.entries)-1]
}

// Recent returns transcriptions no older than RecentWindow. Entries with an
// unparsable timestamp are skipped.
func (r *Recorder) Recent() []model.Transcription {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := r.now()
	out := []model.Transcription{}
	for _, t := range r.entries {
		at, err := time.ParseInLocation(model.TimestampLayout, t.Timestamp, now.Location())
		if err != nil {
			continue
		}
		if now.Sub(at) <= RecentWindow {
			out = append(out, t)
		}
	}
	return out
}

// Clear drops every transcription without stopping the recording.
func (r *Recorder) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = []model.Transcription{}
}
