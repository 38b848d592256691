package voice

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"github.com/google/uuid"

	"taskline/internal/config"
	"taskline/internal/logging"
)

var commandContext = exec.CommandContext

var (
	// ErrRecordingActive is returned when a capture is started while another
	// one is still running. Only one recording may exist at a time.
	ErrRecordingActive = errors.New("a recording is already in progress")
	// ErrNoRecording is returned by Stop and Abort when nothing is recording.
	ErrNoRecording = errors.New("no recording in progress")
	// ErrPermissionDenied indicates the capture binary could not open the
	// audio device.
	ErrPermissionDenied = errors.New("microphone access denied")
)

// WAV files below this size carry a header and no samples.
const minCaptureBytes = 128

// Recorder captures microphone audio to a temporary WAV file by driving the
// configured capture binary (ffmpeg by default). At most one capture runs at
// a time; starting a second one fails with ErrRecordingActive.
type Recorder struct {
	captureBinary  string
	playbackBinary string
	device         string
	sampleRate     int
	maxSeconds     int
	captureDir     string
	logger         *slog.Logger

	mu     sync.Mutex
	cmd    *exec.Cmd
	stderr *bytes.Buffer
	path   string
}

// NewRecorder builds a recorder from the audio configuration.
func NewRecorder(cfg *config.Config, logger *slog.Logger) *Recorder {
	return &Recorder{
		captureBinary:  cfg.Audio.CaptureBinary,
		playbackBinary: cfg.Audio.PlaybackBinary,
		device:         cfg.Audio.Device,
		sampleRate:     cfg.Audio.SampleRate,
		maxSeconds:     cfg.Audio.MaxSeconds,
		captureDir:     cfg.CaptureDir(),
		logger:         logging.NewComponentLogger(logger, "voice"),
	}
}

// Recording reports whether a capture is currently running.
func (r *Recorder) Recording() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.cmd != nil
}

// Path returns the output file of the active capture, if any.
func (r *Recorder) Path() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.path
}

// Start launches the capture subprocess and returns the WAV path it writes
// to. The subprocess stops on its own once the configured maximum duration
// elapses; Stop ends it earlier.
func (r *Recorder) Start(ctx context.Context) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.cmd != nil {
		return "", ErrRecordingActive
	}

	if err := os.MkdirAll(r.captureDir, 0o755); err != nil {
		return "", fmt.Errorf("ensure capture directory: %w", err)
	}

	path := filepath.Join(r.captureDir, "capture-"+uuid.NewString()+".wav")
	args := []string{
		"-hide_banner", "-loglevel", "error",
		"-f", "alsa", "-i", r.device,
		"-ar", strconv.Itoa(r.sampleRate),
		"-ac", "1",
		"-t", strconv.Itoa(r.maxSeconds),
		"-y", path,
	}

	stderr := &bytes.Buffer{}
	cmd := commandContext(ctx, r.captureBinary, args...)
	cmd.Stderr = stderr

	if err := cmd.Start(); err != nil {
		return "", fmt.Errorf("start %s: %w", r.captureBinary, err)
	}

	r.cmd = cmd
	r.stderr = stderr
	r.path = path

	r.logger.Info("recording started",
		logging.String("path", path),
		logging.String("device", r.device),
		logging.Int("sample_rate", r.sampleRate),
	)
	return path, nil
}

// Stop finishes the active capture and returns the path of the recorded
// file. The capture binary is interrupted so it can flush the WAV header; a
// nonzero exit after interrupt is accepted as long as usable audio landed on
// disk.
func (r *Recorder) Stop() (string, error) {
	r.mu.Lock()
	cmd := r.cmd
	stderr := r.stderr
	path := r.path
	r.cmd = nil
	r.stderr = nil
	r.path = ""
	r.mu.Unlock()

	if cmd == nil {
		return "", ErrNoRecording
	}

	if cmd.Process != nil {
		if err := cmd.Process.Signal(os.Interrupt); err != nil {
			_ = cmd.Process.Kill()
		}
	}
	waitErr := cmd.Wait()

	if err := classifyCapture(waitErr, stderr.String(), path); err != nil {
		_ = os.Remove(path)
		return "", err
	}

	r.logger.Info("recording stopped", logging.String("path", path))
	return path, nil
}

// Abort kills the active capture and deletes its partial output. Aborting
// while idle is a no-op.
func (r *Recorder) Abort() error {
	r.mu.Lock()
	cmd := r.cmd
	path := r.path
	r.cmd = nil
	r.stderr = nil
	r.path = ""
	r.mu.Unlock()

	if cmd == nil {
		return nil
	}

	if cmd.Process != nil {
		_ = cmd.Process.Kill()
	}
	_ = cmd.Wait()
	if path != "" {
		_ = os.Remove(path)
	}

	r.logger.Info("recording aborted")
	return nil
}

// Play replays a capture through the configured playback binary.
func (r *Recorder) Play(ctx context.Context, path string) error {
	if _, err := os.Stat(path); err != nil {
		return fmt.Errorf("capture file: %w", err)
	}

	cmd := commandContext(ctx, r.playbackBinary,
		"-hide_banner", "-loglevel", "error", "-autoexit", "-nodisp", path)
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("play capture with %s: %w", r.playbackBinary, err)
	}
	return nil
}

// classifyCapture decides whether a finished capture produced usable audio.
// The capture binary exits nonzero when interrupted, so the exit status alone
// is not trusted; the output file is.
func classifyCapture(waitErr error, stderr, path string) error {
	lower := strings.ToLower(stderr)
	if strings.Contains(lower, "permission denied") || strings.Contains(lower, "cannot open audio device") {
		return fmt.Errorf("%w: %s", ErrPermissionDenied, strings.TrimSpace(stderr))
	}

	info, statErr := os.Stat(path)
	if statErr == nil && info.Size() >= minCaptureBytes {
		return nil
	}

	if waitErr != nil {
		if msg := strings.TrimSpace(stderr); msg != "" {
			return fmt.Errorf("capture failed: %s: %w", msg, waitErr)
		}
		return fmt.Errorf("capture failed: %w", waitErr)
	}
	return errors.New("capture produced no audio")
}
