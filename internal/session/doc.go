// Package session runs one user interaction end to end: it resolves the
// language pair, obtains the input for the selected mode (typed text,
// recognized speech or an uploaded file), translates it through the model
// cache and speaks the result. The GUI, the CLI and the HTTP API all drive
// the same Session.
package session
