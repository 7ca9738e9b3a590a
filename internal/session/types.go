package session

import (
	"fmt"
	"strings"

	"codeberg.org/snonux/babelcast/internal/languages"
	"codeberg.org/snonux/babelcast/internal/speech"
)

// Mode selects where the text to translate comes from.
type Mode string

const (
	ModeText  Mode = "text"
	ModeAudio Mode = "audio"
	ModeFile  Mode = "file"
)

// Modes returns the selectable modes in display order.
func Modes() []Mode {
	return []Mode{ModeText, ModeAudio, ModeFile}
}

// Label is the name shown in the UI.
func (m Mode) Label() string {
	switch m {
	case ModeText:
		return "Text"
	case ModeAudio:
		return "Audio"
	case ModeFile:
		return "File"
	default:
		return string(m)
	}
}

// ParseMode accepts a mode name or label, case-insensitively.
func ParseMode(s string) (Mode, error) {
	m := Mode(strings.ToLower(strings.TrimSpace(s)))
	switch m {
	case ModeText, ModeAudio, ModeFile:
		return m, nil
	default:
		return "", fmt.Errorf("unknown input mode: %q", s)
	}
}

// Action is a button press accompanying a request.
type Action int

const (
	ActionNone Action = iota
	// ActionSpeak starts listening in audio mode.
	ActionSpeak
	// ActionRepeat speaks the previous translation again.
	ActionRepeat
)

// State is a step of the interaction state machine.
type State int

const (
	Idle State = iota
	PairSelected
	ModeSelected
	Translating
	Speaking
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case PairSelected:
		return "pair_selected"
	case ModeSelected:
		return "mode_selected"
	case Translating:
		return "translating"
	case Speaking:
		return "speaking"
	default:
		return "unknown"
	}
}

// Upload is a file handed over by the UI.
type Upload struct {
	Name string
	Data []byte
}

// Request is the complete UI state of one interaction.
type Request struct {
	Mode   Mode
	Source string
	Target string

	// Text is the typed input in text mode.
	Text string
	// File is the uploaded document in file mode; nil while waiting.
	File *Upload

	Action Action
	// Translation is the previous result, spoken again on ActionRepeat.
	Translation string

	// Mute skips speech output.
	Mute bool
}

// Result is what the UI renders after a run.
type Result struct {
	Pair           languages.Pair
	ConfigErr      error
	ActionsEnabled bool

	Original    string
	Recognition *speech.Result
	Translation string

	Spoke    bool
	SpeakErr error

	States []State
}

// State returns the state the run ended in.
func (r *Result) State() State {
	if len(r.States) == 0 {
		return Idle
	}
	return r.States[len(r.States)-1]
}

// Waiting reports whether the run stopped for lack of input.
func (r *Result) Waiting() bool {
	return r.State() == ModeSelected
}

func (r *Result) enter(s State) {
	r.States = append(r.States, s)
}
