// Package models lists the opus-mt translation models behind the supported
// language pairs and can check that the configured backend serves them.
package models
