package speech

import (
	"bytes"
	"context"
	"encoding/binary"
	"errors"
	"io"
	"math"
	"time"
)

const (
	// FrameSamples is 100ms of audio at SampleRate.
	FrameSamples = 1600
	frameBytes   = FrameSamples * BitsPerSample / 8

	// DefaultEnergyThreshold is the RMS level above which a frame counts as speech.
	DefaultEnergyThreshold = 500
	// DefaultPause ends a phrase after this much trailing silence.
	DefaultPause = 800 * time.Millisecond
	// DefaultPhraseLimit caps the length of one phrase.
	DefaultPhraseLimit = 15 * time.Second

	preRollFrames = 3
)

// DetectorConfig tunes phrase detection.
type DetectorConfig struct {
	Threshold   float64
	Pause       time.Duration
	PhraseLimit time.Duration
}

// DefaultDetectorConfig returns the default thresholds.
func DefaultDetectorConfig() DetectorConfig {
	return DetectorConfig{
		Threshold:   DefaultEnergyThreshold,
		Pause:       DefaultPause,
		PhraseLimit: DefaultPhraseLimit,
	}
}

// frameSource yields consecutive 16-bit mono PCM frames.
type frameSource interface {
	ReadFrame() ([]byte, error)
}

// phraseDetector accumulates frames from the first loud frame until a pause
// or the phrase limit. Time is measured in audio, not wall clock.
type phraseDetector struct {
	cfg     DetectorConfig
	preRoll [][]byte
	phrase  bytes.Buffer
	started bool
	waited  time.Duration
	spoken  time.Duration
	silence time.Duration
}

func newPhraseDetector(cfg DetectorConfig) *phraseDetector {
	return &phraseDetector{cfg: cfg}
}

// feed consumes one frame and reports whether the phrase is complete.
func (d *phraseDetector) feed(frame []byte) bool {
	dur := frameDuration(frame)
	loud := rms(frame) >= d.cfg.Threshold

	if !d.started {
		d.waited += dur
		if !loud {
			d.preRoll = append(d.preRoll, frame)
			if len(d.preRoll) > preRollFrames {
				d.preRoll = d.preRoll[1:]
			}
			return false
		}
		d.started = true
		for _, f := range d.preRoll {
			d.phrase.Write(f)
		}
		d.preRoll = nil
	}

	d.phrase.Write(frame)
	d.spoken += dur
	if loud {
		d.silence = 0
	} else {
		d.silence += dur
	}

	return d.silence >= d.cfg.Pause || d.spoken >= d.cfg.PhraseLimit
}

type frameResult struct {
	frame []byte
	err   error
}

// readFrames pumps src into a channel until a read fails or done is closed.
// A read already in flight when done closes is discarded.
func readFrames(src frameSource, done <-chan struct{}) <-chan frameResult {
	out := make(chan frameResult)
	go func() {
		defer close(out)
		for {
			frame, err := src.ReadFrame()
			select {
			case out <- frameResult{frame: frame, err: err}:
			case <-done:
				return
			}
			if err != nil {
				return
			}
		}
	}()
	return out
}

// detectPhrase reads frames from src until a phrase is complete. It returns
// ErrNoSpeech when no frame was loud within timeout, or when the source ends
// before speech started. The timeout counts both audio received and wall
// clock time, so a source that stalls before delivering speech still gives up.
// The caller must unblock a stalled src once detectPhrase returns.
func detectPhrase(ctx context.Context, src frameSource, timeout time.Duration, cfg DetectorConfig) ([]byte, error) {
	d := newPhraseDetector(cfg)

	done := make(chan struct{})
	defer close(done)
	frames := readFrames(src, done)

	waiting := time.NewTimer(timeout)
	defer waiting.Stop()
	noSpeech := waiting.C

	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		var r frameResult
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-noSpeech:
			return nil, ErrNoSpeech
		case r = <-frames:
		}

		if r.err != nil {
			if !errors.Is(r.err, io.EOF) && !errors.Is(r.err, io.ErrUnexpectedEOF) {
				return nil, r.err
			}
			if !d.started {
				return nil, ErrNoSpeech
			}
			break
		}

		if d.feed(r.frame) {
			break
		}
		if d.started {
			noSpeech = nil
		} else if d.waited >= timeout {
			return nil, ErrNoSpeech
		}
	}

	return WrapPCMAsWAV(d.phrase.Bytes(), SampleRate, Channels, BitsPerSample), nil
}

func frameDuration(frame []byte) time.Duration {
	samples := len(frame) / (BitsPerSample / 8)
	return time.Duration(samples) * time.Second / SampleRate
}

// rms returns the root mean square of little-endian int16 samples.
func rms(frame []byte) float64 {
	n := len(frame) / 2
	if n == 0 {
		return 0
	}
	var sum float64
	for i := 0; i < n; i++ {
		s := float64(int16(binary.LittleEndian.Uint16(frame[2*i:])))
		sum += s * s
	}
	return math.Sqrt(sum / float64(n))
}

// readerSource splits a raw PCM stream into frames.
type readerSource struct {
	r io.Reader
}

func (s readerSource) ReadFrame() ([]byte, error) {
	buf := make([]byte, frameBytes)
	n, err := io.ReadFull(s.r, buf)
	if n > 0 && errors.Is(err, io.ErrUnexpectedEOF) {
		return buf[:n], nil
	}
	if err != nil {
		return nil, err
	}
	return buf, nil
}
