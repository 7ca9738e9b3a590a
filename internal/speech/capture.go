package speech

import (
	"fmt"

	"go.uber.org/zap"
)

// Capture backend names.
const (
	CaptureCommand   = "command"
	CapturePortAudio = "portaudio"
)

// capturers holds the optional backends compiled into this binary.
var capturers = map[string]func(*zap.Logger) (Capturer, error){}

// NewCapturer returns the named capture backend.
func NewCapturer(name string, log *zap.Logger) (Capturer, error) {
	if name == "" || name == CaptureCommand {
		return NewCommandCapturer(log), nil
	}

	factory, ok := capturers[name]
	if !ok {
		if name == CapturePortAudio {
			return nil, fmt.Errorf("capture backend %q not available, rebuild with -tags portaudio", name)
		}
		return nil, fmt.Errorf("unknown capture backend: %s", name)
	}
	return factory(log)
}
