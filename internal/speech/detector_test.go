package speech

import (
	"bytes"
	"context"
	"encoding/binary"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// pcm builds n frames of a constant-amplitude signal.
func pcm(n int, amplitude int16) []byte {
	buf := make([]byte, n*frameBytes)
	for i := 0; i < len(buf)/2; i++ {
		v := amplitude
		if i%2 == 1 {
			v = -amplitude
		}
		binary.LittleEndian.PutUint16(buf[2*i:], uint16(v))
	}
	return buf
}

func TestRMS(t *testing.T) {
	assert.InDelta(t, 0, rms(pcm(1, 0)), 0.001)
	assert.InDelta(t, 1000, rms(pcm(1, 1000)), 0.001)
	assert.Zero(t, rms(nil))
}

func TestDetectPhrase(t *testing.T) {
	cfg := DefaultDetectorConfig()

	tests := []struct {
		name      string
		stream    []byte
		timeout   time.Duration
		wantErr   error
		wantBytes int
	}{
		{
			name:    "phrase ends on pause",
			stream:  concat(pcm(10, 0), pcm(5, 3000), pcm(20, 0)),
			timeout: 5 * time.Second,
			// 3 pre-roll + 5 speech + 8 silent frames (800ms)
			wantBytes: 16 * frameBytes,
		},
		{
			name:    "silence until timeout",
			stream:  pcm(100, 10),
			timeout: 2 * time.Second,
			wantErr: ErrNoSpeech,
		},
		{
			name:    "stream ends before speech",
			stream:  pcm(3, 0),
			timeout: 5 * time.Second,
			wantErr: ErrNoSpeech,
		},
		{
			name:      "phrase limit",
			stream:    pcm(200, 3000),
			timeout:   5 * time.Second,
			wantBytes: 150 * frameBytes,
		},
		{
			name:      "stream ends mid phrase",
			stream:    concat(pcm(4, 3000), pcm(1, 0)[:frameBytes/2]),
			timeout:   5 * time.Second,
			wantBytes: 4*frameBytes + frameBytes/2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			wav, err := detectPhrase(context.Background(), readerSource{r: bytes.NewReader(tt.stream)}, tt.timeout, cfg)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, wavHeaderSize+tt.wantBytes, len(wav))
		})
	}
}

func TestDetectPhrase_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := detectPhrase(ctx, readerSource{r: bytes.NewReader(pcm(10, 3000))}, time.Second, DefaultDetectorConfig())
	assert.ErrorIs(t, err, context.Canceled)
}

// chanSource delivers frames as they are sent and ends when frames is closed.
type chanSource struct {
	frames chan []byte
}

func (s chanSource) ReadFrame() ([]byte, error) {
	frame, ok := <-s.frames
	if !ok {
		return nil, io.EOF
	}
	return frame, nil
}

func TestDetectPhrase_StalledSourceTimesOut(t *testing.T) {
	src := chanSource{frames: make(chan []byte)}
	t.Cleanup(func() { close(src.frames) })

	start := time.Now()
	_, err := detectPhrase(context.Background(), src, 100*time.Millisecond, DefaultDetectorConfig())
	assert.ErrorIs(t, err, ErrNoSpeech)
	assert.Less(t, time.Since(start), 2*time.Second)
}

func TestDetectPhrase_SlowSourceAfterSpeechStarts(t *testing.T) {
	src := chanSource{frames: make(chan []byte)}
	go func() {
		defer close(src.frames)
		for i := 0; i < 3; i++ {
			src.frames <- pcm(1, 3000)
		}
		// longer than the no-speech timeout, but speech already began
		time.Sleep(300 * time.Millisecond)
		for i := 0; i < 8; i++ {
			src.frames <- pcm(1, 0)
		}
	}()

	wav, err := detectPhrase(context.Background(), src, 100*time.Millisecond, DefaultDetectorConfig())
	require.NoError(t, err)
	// 3 speech frames and 8 silent frames (800ms pause)
	assert.Equal(t, wavHeaderSize+11*frameBytes, len(wav))
}

func TestWrapPCMAsWAV(t *testing.T) {
	data := pcm(1, 100)
	wav := WrapPCMAsWAV(data, SampleRate, Channels, BitsPerSample)

	require.Len(t, wav, wavHeaderSize+len(data))
	assert.Equal(t, "RIFF", string(wav[0:4]))
	assert.Equal(t, "WAVE", string(wav[8:12]))
	assert.Equal(t, "data", string(wav[36:40]))
	assert.EqualValues(t, SampleRate, binary.LittleEndian.Uint32(wav[24:28]))
	assert.EqualValues(t, SampleRate*2, binary.LittleEndian.Uint32(wav[28:32]))
	assert.EqualValues(t, len(data), binary.LittleEndian.Uint32(wav[40:44]))
	assert.Equal(t, data, wav[44:])
}

func concat(parts ...[]byte) []byte {
	return bytes.Join(parts, nil)
}
