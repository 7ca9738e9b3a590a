package speech

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"runtime"
	"strconv"
	"time"

	"go.uber.org/zap"

	"codeberg.org/snonux/babelcast/internal/logging"
)

// recorder is an external program that streams raw PCM to stdout.
type recorder struct {
	name string
	args []string
}

// recorders are tried in order; all emit signed 16-bit little-endian mono.
var recorders = []recorder{
	{"arecord", []string{"-q", "-t", "raw", "-f", "S16_LE", "-r", strconv.Itoa(SampleRate), "-c", "1", "-"}},
	{"rec", []string{"-q", "-t", "raw", "-b", "16", "-e", "signed-integer", "-r", strconv.Itoa(SampleRate), "-c", "1", "-"}},
	{"ffmpeg", []string{"-loglevel", "quiet", "-f", defaultFFmpegInput(), "-i", defaultFFmpegDevice(),
		"-ac", "1", "-ar", strconv.Itoa(SampleRate), "-f", "s16le", "-"}},
}

func defaultFFmpegInput() string {
	switch runtime.GOOS {
	case "darwin":
		return "avfoundation"
	case "windows":
		return "dshow"
	default:
		return "pulse"
	}
}

func defaultFFmpegDevice() string {
	switch runtime.GOOS {
	case "darwin":
		return ":0"
	case "windows":
		return "audio=default"
	default:
		return "default"
	}
}

// CommandCapturer records from the default input device through the first
// available recorder program (arecord, SoX rec, ffmpeg).
type CommandCapturer struct {
	detector DetectorConfig
	log      *zap.Logger
	lookPath func(string) (string, error)
}

// NewCommandCapturer creates a capturer with the default detector settings.
func NewCommandCapturer(log *zap.Logger) *CommandCapturer {
	return &CommandCapturer{
		detector: DefaultDetectorConfig(),
		log:      logging.OrNop(log),
		lookPath: exec.LookPath,
	}
}

func (c *CommandCapturer) findRecorder() (recorder, error) {
	for _, r := range recorders {
		if _, err := c.lookPath(r.name); err == nil {
			return r, nil
		}
	}
	return recorder{}, fmt.Errorf("no audio recorder found. Install alsa-utils (arecord), sox (rec) or ffmpeg")
}

// Capture implements Capturer.
func (c *CommandCapturer) Capture(parent context.Context, timeout time.Duration) ([]byte, error) {
	rec, err := c.findRecorder()
	if err != nil {
		return nil, err
	}

	// a stalled device must not block past the longest possible phrase
	ctx, cancel := context.WithTimeout(parent, timeout+c.detector.PhraseLimit+2*time.Second)
	defer cancel()

	cmd := exec.CommandContext(ctx, rec.name, rec.args...)
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("failed to open %s output: %w", rec.name, err)
	}
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("failed to start %s: %w", rec.name, err)
	}
	c.log.Debug("recording started", zap.String("recorder", rec.name))

	wav, detectErr := detectPhrase(ctx, readerSource{r: stdout}, timeout, c.detector)

	// the recorder runs until killed
	_ = cmd.Process.Kill()
	waitErr := cmd.Wait()

	if detectErr != nil {
		if err := parent.Err(); err != nil {
			return nil, err
		}
		if errors.Is(detectErr, context.DeadlineExceeded) {
			return nil, ErrNoSpeech
		}
		if errors.Is(detectErr, ErrNoSpeech) && waitErr != nil && ctx.Err() == nil && !killed(waitErr) {
			// recorder died on its own before any audio arrived
			return nil, fmt.Errorf("%s failed: %w", rec.name, waitErr)
		}
		return nil, detectErr
	}

	return wav, nil
}

// killed reports whether err is the exit of a process we killed.
func killed(err error) bool {
	var exitErr *exec.ExitError
	if !errors.As(err, &exitErr) {
		return false
	}
	return !exitErr.Exited()
}
