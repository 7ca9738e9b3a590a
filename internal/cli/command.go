package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"codeberg.org/snonux/babelcast/internal"
	"codeberg.org/snonux/babelcast/internal/server"
)

// CreateRootCommand creates and configures the root cobra command
func CreateRootCommand(flags *Flags) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "babelcast",
		Short: "Interactive speech and text translator",
		Long: `babelcast translates typed text, spoken phrases and .txt files between
English, Spanish, French, German, Italian, Portuguese and Hindi using
opus-mt models, and speaks the translation aloud.

Examples:
  babelcast                                        # Launch interactive GUI (default)
  babelcast --from English --to German --text "Good morning"
  babelcast --from French --to English --file notes.txt
  babelcast --from English --to Hindi --listen     # Speak one phrase into the microphone
  babelcast serve --addr :8080                     # Start the HTTP API`,
		Args:          cobra.NoArgs,
		Version:       internal.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Set up flags
	setupFlags(rootCmd, flags)

	return rootCmd
}

func setupFlags(cmd *cobra.Command, flags *Flags) {
	// Global flags
	cmd.PersistentFlags().StringVar(&flags.CfgFile, "config", "", "config file (default is $HOME/.babelcast.yaml)")
	cmd.PersistentFlags().StringVar(&flags.LogLevel, "log-level", flags.LogLevel, "Log level: debug, info, warn, error")
	cmd.PersistentFlags().StringVar(&flags.LogFormat, "log-format", flags.LogFormat, "Log format: console or json")
	cmd.PersistentFlags().StringVar(&flags.Backend, "backend", flags.Backend, "Translation backend: huggingface, openai, gemini")
	cmd.PersistentFlags().StringVar(&flags.TTSProvider, "tts", flags.TTSProvider, "Speech output provider: google, openai, espeak")

	// Local flags
	cmd.Flags().StringVar(&flags.From, "from", flags.From, "Source language")
	cmd.Flags().StringVar(&flags.To, "to", flags.To, "Target language")
	cmd.Flags().StringVarP(&flags.Text, "text", "t", "", "Text to translate")
	cmd.Flags().StringVarP(&flags.File, "file", "f", "", "Translate the contents of a .txt file")
	cmd.Flags().BoolVarP(&flags.Listen, "listen", "l", false, "Translate one phrase spoken into the microphone")
	cmd.Flags().BoolVar(&flags.NoSpeak, "no-speak", false, "Do not speak the translation aloud")

	// Bind flags to viper
	bindFlagsToViper(cmd)
}

func bindFlagsToViper(cmd *cobra.Command) {
	viper.BindPFlag("log.level", cmd.PersistentFlags().Lookup("log-level"))
	viper.BindPFlag("log.format", cmd.PersistentFlags().Lookup("log-format"))
	viper.BindPFlag("translation.backend", cmd.PersistentFlags().Lookup("backend"))
	viper.BindPFlag("tts.provider", cmd.PersistentFlags().Lookup("tts"))
}

// CreatePairsCommand creates the command printing the supported pairs
func CreatePairsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "pairs",
		Short: "List the supported language pairs and their models",
		Args:  cobra.NoArgs,
	}
}

// CreateModelsCommand creates the command listing the translation models
func CreateModelsCommand(flags *Flags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "models",
		Short: "List the translation models used by the language pairs",
		Args:  cobra.NoArgs,
	}
	cmd.Flags().BoolVar(&flags.Check, "check", false, "Load every model from the configured backend")
	return cmd
}

// CreateServeCommand creates the command starting the HTTP API
func CreateServeCommand(flags *Flags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve translation and speech synthesis over HTTP",
		Args:  cobra.NoArgs,
	}
	cmd.Flags().StringVar(&flags.Addr, "addr", server.DefaultAddr, "Listen address")
	viper.BindPFlag("server.addr", cmd.Flags().Lookup("addr"))
	return cmd
}

// InitConfig initializes viper configuration
func InitConfig(cfgFile string) {
	if cfgFile != "" {
		// Use config file from the flag
		viper.SetConfigFile(cfgFile)
	} else {
		// Find home directory
		home, err := os.UserHomeDir()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error getting home directory: %v\n", err)
			return
		}

		// Search config in home directory with name ".babelcast" (without extension)
		viper.AddConfigPath(home)
		viper.AddConfigPath(".")
		viper.SetConfigType("yaml")
		viper.SetConfigName(".babelcast")
	}

	// Environment variables, e.g. BABELCAST_TTS_PROVIDER for tts.provider
	viper.SetEnvPrefix("BABELCAST")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	// Read config file
	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

func keyFromEnvOrConfig(env, key string) string {
	// First check environment variable
	if v := os.Getenv(env); v != "" {
		return v
	}

	// Then check config file
	return viper.GetString(key)
}

// GetOpenAIKey retrieves the OpenAI API key from environment or config
func GetOpenAIKey() string {
	return keyFromEnvOrConfig("OPENAI_API_KEY", "openai_key")
}

// GetHFToken retrieves the Hugging Face token from environment or config
func GetHFToken() string {
	return keyFromEnvOrConfig("HF_TOKEN", "translation.hf_token")
}

// GetDeepgramKey retrieves the Deepgram API key from environment or config
func GetDeepgramKey() string {
	return keyFromEnvOrConfig("DEEPGRAM_API_KEY", "speech.deepgram_key")
}

// GetGeminiKey retrieves the Gemini API key from environment or config
func GetGeminiKey() string {
	return keyFromEnvOrConfig("GEMINI_API_KEY", "translation.gemini_key")
}
