// Package processor wires the translation, speech and synthesis components
// from the resolved configuration and drives them for each entry point:
// a single command-line interaction, the model and pair listings, the HTTP
// API and the GUI.
package processor
