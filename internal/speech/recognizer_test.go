package speech

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"codeberg.org/snonux/babelcast/internal/status"
)

type stubCapturer struct {
	wav     []byte
	err     error
	timeout time.Duration
}

func (c *stubCapturer) Capture(_ context.Context, timeout time.Duration) ([]byte, error) {
	c.timeout = timeout
	return c.wav, c.err
}

type stubTranscriber struct {
	text   string
	err    error
	calls  int
	locale string
}

func (t *stubTranscriber) Transcribe(_ context.Context, _ []byte, locale string) (string, error) {
	t.calls++
	t.locale = locale
	return t.text, t.err
}

type signalLog struct {
	events []string
}

func (l *signalLog) Begin(s status.Signal) { l.events = append(l.events, "+"+s.String()) }
func (l *signalLog) End(s status.Signal)   { l.events = append(l.events, "-"+s.String()) }

func TestRecognize(t *testing.T) {
	netErr := errors.New("dial tcp: no route to host")

	tests := []struct {
		name        string
		capture     *stubCapturer
		transcriber *stubTranscriber
		want        Outcome
		wantText    string
		wantCalls   int
	}{
		{"recognized", &stubCapturer{wav: []byte("RIFF")}, &stubTranscriber{text: " hello there "}, Recognized, "hello there", 1},
		{"timeout", &stubCapturer{err: ErrNoSpeech}, &stubTranscriber{}, Timeout, "", 0},
		{"blank transcript", &stubCapturer{wav: []byte("RIFF")}, &stubTranscriber{text: "  "}, Unrecognized, "", 1},
		{"unintelligible", &stubCapturer{wav: []byte("RIFF")}, &stubTranscriber{err: ErrUnintelligible}, Unrecognized, "", 1},
		{"network", &stubCapturer{wav: []byte("RIFF")}, &stubTranscriber{err: netErr}, NetworkError, "", 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewRecognizer(tt.capture, tt.transcriber)

			res, err := r.Recognize(context.Background(), "en-IN")
			require.NoError(t, err)
			assert.Equal(t, tt.want, res.Outcome)
			assert.Equal(t, tt.wantText, res.Text)
			assert.Equal(t, tt.wantCalls, tt.transcriber.calls)
			assert.Equal(t, DefaultTimeout, tt.capture.timeout)
			if tt.want == NetworkError {
				assert.ErrorIs(t, res.Err, netErr)
			}
			if tt.wantCalls > 0 {
				assert.Equal(t, "en-IN", tt.transcriber.locale)
			}
		})
	}
}

func TestRecognize_DeviceFailureIsAnError(t *testing.T) {
	noMic := errors.New("no audio recorder found")
	tr := &stubTranscriber{}
	r := NewRecognizer(&stubCapturer{err: noMic}, tr)

	_, err := r.Recognize(context.Background(), "fr-FR")
	assert.ErrorIs(t, err, noMic)
	assert.Zero(t, tr.calls)
}

func TestRecognize_Signals(t *testing.T) {
	log := &signalLog{}
	r := NewRecognizer(&stubCapturer{wav: []byte("RIFF")}, &stubTranscriber{text: "hola"},
		WithReporter(log), WithTimeout(2*time.Second))

	_, err := r.Recognize(context.Background(), "es-ES")
	require.NoError(t, err)
	assert.Equal(t, []string{"+listening", "-listening", "+processing", "-processing"}, log.events)

	log.events = nil
	r = NewRecognizer(&stubCapturer{err: ErrNoSpeech}, &stubTranscriber{}, WithReporter(log))
	_, err = r.Recognize(context.Background(), "es-ES")
	require.NoError(t, err)
	assert.Equal(t, []string{"+listening", "-listening"}, log.events)
}

func TestResult_Message(t *testing.T) {
	assert.Equal(t, "Speech not recognized. Please try again.", Result{Outcome: Unrecognized}.Message())
	assert.Equal(t, "Could not request results. Check your internet connection.", Result{Outcome: NetworkError}.Message())
	assert.Equal(t, "No speech detected. Please try again.", Result{Outcome: Timeout}.Message())
	assert.Equal(t, "hi", Result{Outcome: Recognized, Text: "hi"}.Message())
	assert.True(t, Result{Outcome: Recognized}.OK())
	assert.False(t, Result{}.OK())
}
