package commands

import (
	"errors"

	"github.com/spf13/viper"
)

type Config struct {
	Dataset       string       `mapstructure:"dataset"`
	LogDir        string       `mapstructure:"log_dir"`
	Format        string       `mapstructure:"format"`
	Output        string       `mapstructure:"output"`
	Concurrency   int          `mapstructure:"concurrency"`
	PassThreshold float64      `mapstructure:"pass_threshold"`
	CacheDir      string       `mapstructure:"cache_dir"`
	Model         ModelConfig  `mapstructure:"model"`
	Grader        ModelConfig  `mapstructure:"grader"`
	Keys          KeysConfig   `mapstructure:"keys"`
	Ollama        OllamaConfig `mapstructure:"ollama"`
}

type ModelConfig struct {
	Provider     string `mapstructure:"provider"`
	Name         string `mapstructure:"name"`
	MockResponse string `mapstructure:"mock_response"`
}

// KeysConfig holds provider credentials, loaded once at process start.
// Nothing below the command layer reads the environment.
type KeysConfig struct {
	OpenAI    string `mapstructure:"openai"`
	Anthropic string `mapstructure:"anthropic"`
	Gemini    string `mapstructure:"gemini"`
}

type OllamaConfig struct {
	BaseURL string `mapstructure:"base_url"`
}

func LoadConfig(path string) (Config, error) {
	cfg := Config{}
	v := viper.New()
	v.SetConfigType("yaml")
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName(".conflicteval")
		v.AddConfigPath(".")
	}

	v.AutomaticEnv()
	_ = v.BindEnv("keys.openai", "OPENAI_API_KEY")
	_ = v.BindEnv("keys.anthropic", "ANTHROPIC_API_KEY")
	_ = v.BindEnv("keys.gemini", "GEMINI_API_KEY")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return cfg, err
		}
	}

	if err := v.Unmarshal(&cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func (c Config) apiKey(provider string) string {
	switch provider {
	case "openai":
		return c.Keys.OpenAI
	case "anthropic":
		return c.Keys.Anthropic
	case "gemini":
		return c.Keys.Gemini
	}
	return ""
}
