package cli

import (
	"github.com/spf13/viper"

	"codeberg.org/snonux/babelcast/internal/audio"
	"codeberg.org/snonux/babelcast/internal/server"
	"codeberg.org/snonux/babelcast/internal/speech"
	"codeberg.org/snonux/babelcast/internal/translation"
)

// Config is the resolved configuration of all components
type Config struct {
	Translation *translation.Config
	Speech      *speech.Config
	Audio       *audio.Config
	Server      server.Config

	LogLevel  string
	LogFormat string
}

// LoadConfig merges viper settings (config file, env, bound flags) over the
// component defaults. API keys come from GetOpenAIKey and friends.
func LoadConfig() *Config {
	tr := translation.DefaultConfig()
	setString(&tr.Backend, "translation.backend")
	setString(&tr.HubURL, "translation.hub_url")
	setString(&tr.InferenceURL, "translation.inference_url")
	setString(&tr.OpenAIModel, "translation.openai_model")
	setString(&tr.GeminiModel, "translation.gemini_model")
	tr.HFToken = GetHFToken()
	tr.OpenAIKey = GetOpenAIKey()
	tr.GeminiKey = GetGeminiKey()

	sp := speech.DefaultConfig()
	setString(&sp.Provider, "speech.provider")
	setString(&sp.Capture, "speech.capture")
	setString(&sp.DeepgramURL, "speech.deepgram_url")
	if viper.IsSet("speech.timeout") {
		if d := viper.GetDuration("speech.timeout"); d > 0 {
			sp.Timeout = d
		}
	}
	sp.OpenAIKey = GetOpenAIKey()
	sp.DeepgramKey = GetDeepgramKey()

	au := audio.DefaultProviderConfig()
	setString(&au.Provider, "tts.provider")
	setString(&au.Fallback, "tts.fallback")
	setString(&au.TempDir, "tts.temp_dir")
	setString(&au.OpenAIModel, "tts.openai_model")
	setString(&au.OpenAIVoice, "tts.openai_voice")
	au.OpenAIKey = GetOpenAIKey()

	srv := server.Config{
		Addr:      viper.GetString("server.addr"),
		RateLimit: viper.GetInt("server.rate_limit"),
	}

	cfg := &Config{
		Translation: tr,
		Speech:      sp,
		Audio:       au,
		Server:      srv,
		LogLevel:    "warn",
		LogFormat:   "console",
	}
	setString(&cfg.LogLevel, "log.level")
	setString(&cfg.LogFormat, "log.format")

	return cfg
}

func setString(dst *string, key string) {
	if v := viper.GetString(key); v != "" {
		*dst = v
	}
}
