package cli

// Flags holds all command-line flag values
type Flags struct {
	// General flags
	CfgFile   string
	LogLevel  string
	LogFormat string

	// Interaction flags
	From    string
	To      string
	Text    string
	File    string
	Listen  bool
	NoSpeak bool

	// Backend overrides
	Backend     string
	TTSProvider string

	// Subcommand flags
	Addr  string
	Check bool
}

// NewFlags creates a new Flags instance with default values
func NewFlags() *Flags {
	return &Flags{
		LogLevel:    "warn",
		LogFormat:   "console",
		From:        "English",
		To:          "Spanish",
		Backend:     "huggingface",
		TTSProvider: "google",
	}
}

// HasInput reports whether an interaction was requested on the command line.
func (f *Flags) HasInput() bool {
	return f.Text != "" || f.File != "" || f.Listen
}
