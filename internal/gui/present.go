package gui

import (
	"strings"

	"codeberg.org/snonux/babelcast/internal/session"
)

// formState is a snapshot of the window inputs taken when a button is pressed.
type formState struct {
	Mode        session.Mode
	Source      string
	Target      string
	Text        string
	Upload      *session.Upload
	Translation string
}

// canRun reports whether action has anything to work on.
func (f formState) canRun(action session.Action) bool {
	if action == session.ActionRepeat {
		return f.Translation != "" && f.Mode != session.ModeAudio
	}

	switch f.Mode {
	case session.ModeText:
		return strings.TrimSpace(f.Text) != ""
	case session.ModeFile:
		return f.Upload != nil
	case session.ModeAudio:
		return true
	default:
		return false
	}
}

func (f formState) request(action session.Action) session.Request {
	req := session.Request{
		Mode:   f.Mode,
		Source: f.Source,
		Target: f.Target,
		Action: action,
	}

	switch f.Mode {
	case session.ModeText:
		req.Text = f.Text
	case session.ModeFile:
		req.File = f.Upload
	}
	if action == session.ActionRepeat {
		req.Translation = f.Translation
	}
	return req
}

// view is what the window shows after a run.
type view struct {
	ShowOriginal    bool
	Original        string
	ShowTranslation bool
	Translation     string
	Status          string
	Err             error // shown in an error dialog
}

func present(req session.Request, res *session.Result, err error) view {
	if res == nil {
		return view{Status: "Error: " + err.Error(), Err: err}
	}
	if res.ConfigErr != nil {
		return view{ShowTranslation: true, Status: res.ConfigErr.Error()}
	}

	v := view{
		// typed text stays as the user wrote it
		ShowOriginal: req.Mode != session.ModeText,
		Original:     res.Original,
	}

	switch {
	case err != nil:
		v.Status = "Error: " + err.Error()
		v.Err = err
		v.ShowTranslation = true
		return v

	case res.Recognition != nil && !res.Recognition.OK():
		v.Status = res.Recognition.Message()
		v.ShowTranslation = true
		return v

	case res.Waiting():
		v.Status = waitingMessage(req.Mode)
		return v
	}

	v.ShowTranslation = true
	v.Translation = res.Translation

	switch {
	case res.SpeakErr != nil:
		v.Status = "Translated, but speech output failed: " + res.SpeakErr.Error()
	case res.Spoke:
		v.Status = "Done"
	default:
		v.Status = "Translated"
	}
	return v
}

func waitingMessage(mode session.Mode) string {
	switch mode {
	case session.ModeFile:
		return "Upload a .txt file to translate"
	case session.ModeAudio:
		return "Press Speak Now and talk"
	default:
		return "Enter some text to translate"
	}
}

// modeForLabel maps a radio label back to its mode.
func modeForLabel(label string) (session.Mode, bool) {
	for _, m := range session.Modes() {
		if m.Label() == label {
			return m, true
		}
	}
	return "", false
}
