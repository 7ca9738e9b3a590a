// Package status carries the transient progress signals ("Listening...",
// "Speaking...") that long blocking steps raise for whatever surface is
// showing them.
package status

// Signal identifies one blocking step of a session run.
type Signal int

const (
	Listening Signal = iota
	Processing
	Translating
	Speaking
)

func (s Signal) String() string {
	switch s {
	case Listening:
		return "listening"
	case Processing:
		return "processing"
	case Translating:
		return "translating"
	case Speaking:
		return "speaking"
	default:
		return "unknown"
	}
}

// Message is the text shown to the user while the step runs.
func (s Signal) Message() string {
	switch s {
	case Listening:
		return "Listening... Speak now."
	case Processing:
		return "Processing audio..."
	case Translating:
		return "Translating..."
	case Speaking:
		return "Speaking the translated text..."
	default:
		return ""
	}
}

// Reporter receives Begin/End pairs for each signal.
type Reporter interface {
	Begin(Signal)
	End(Signal)
}

// Nop discards all signals.
type Nop struct{}

func (Nop) Begin(Signal) {}
func (Nop) End(Signal)   {}

// Or returns r, or Nop when r is nil.
func Or(r Reporter) Reporter {
	if r == nil {
		return Nop{}
	}
	return r
}

// Func adapts a single callback to Reporter. active is false on End.
type Func func(s Signal, active bool)

func (f Func) Begin(s Signal) { f(s, true) }
func (f Func) End(s Signal)   { f(s, false) }
