//go:build portaudio

package speech

import (
	"context"
	"encoding/binary"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/gordonklaus/portaudio"
	"go.uber.org/zap"

	"codeberg.org/snonux/babelcast/internal/logging"
)

func init() {
	capturers[CapturePortAudio] = func(log *zap.Logger) (Capturer, error) {
		return NewPortAudioCapturer(log), nil
	}
}

// PortAudioCapturer records from the default input device through PortAudio.
type PortAudioCapturer struct {
	detector DetectorConfig
	log      *zap.Logger
}

// NewPortAudioCapturer creates a capturer with the default detector settings.
func NewPortAudioCapturer(log *zap.Logger) *PortAudioCapturer {
	return &PortAudioCapturer{
		detector: DefaultDetectorConfig(),
		log:      logging.OrNop(log),
	}
}

// Capture implements Capturer.
func (c *PortAudioCapturer) Capture(ctx context.Context, timeout time.Duration) ([]byte, error) {
	if err := portaudio.Initialize(); err != nil {
		return nil, fmt.Errorf("failed to initialize PortAudio: %w", err)
	}
	defer portaudio.Terminate()

	in := make([]int16, FrameSamples)
	stream, err := portaudio.OpenDefaultStream(Channels, 0, SampleRate, FrameSamples, in)
	if err != nil {
		return nil, fmt.Errorf("failed to open input stream: %w", err)
	}
	defer stream.Close()

	if err := stream.Start(); err != nil {
		return nil, fmt.Errorf("failed to start input stream: %w", err)
	}
	defer stream.Stop()

	c.log.Debug("portaudio stream opened", zap.Int("sample_rate", SampleRate))
	src := &streamSource{stream: stream, in: in}
	defer src.close()
	return detectPhrase(ctx, src, timeout, c.detector)
}

// streamSource reads blocking frames from an open PortAudio stream.
type streamSource struct {
	mu     sync.Mutex
	closed bool
	stream *portaudio.Stream
	in     []int16
}

// close waits for an in-flight read so the stream can be stopped safely.
func (s *streamSource) close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
}

func (s *streamSource) ReadFrame() ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, io.EOF
	}
	if err := s.stream.Read(); err != nil {
		return nil, fmt.Errorf("failed to read input stream: %w", err)
	}

	out := make([]byte, len(s.in)*2)
	for i, v := range s.in {
		binary.LittleEndian.PutUint16(out[2*i:], uint16(v))
	}
	return out, nil
}
