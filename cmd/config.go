package cmd

import (
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

type Config struct {
	Resume      string        `mapstructure:"resume" validate:"required"`
	Location    string        `mapstructure:"location"`
	UserAgent   string        `mapstructure:"user-agent"`
	ExcludeFile string        `mapstructure:"exclude-file"`
	Insights    bool          `mapstructure:"insights"`
	Search      SearchConfig  `mapstructure:"search"`
	Exclude     ExcludeConfig `mapstructure:"exclude"`
	AI          AIConfig      `mapstructure:"ai"`
}

type SearchConfig struct {
	MaxPerTerm int           `mapstructure:"max-per-term" validate:"gte=1,lte=25"`
	Pacing     time.Duration `mapstructure:"pacing" validate:"gte=0"`
	Timeout    time.Duration `mapstructure:"timeout" validate:"gt=0"`
	DetailRate float64       `mapstructure:"detail-rate" validate:"gt=0"`
}

type ExcludeConfig struct {
	Companies []string `mapstructure:"companies"`
}

type AIConfig struct {
	Provider     string       `mapstructure:"provider" validate:"oneof=gemini"`
	Concurrency  int          `mapstructure:"concurrency" validate:"gte=1,lte=16"`
	MinimumScore int          `mapstructure:"minimum-score" validate:"gte=0,lte=100"`
	Gemini       GeminiConfig `mapstructure:"gemini"`
}

type GeminiConfig struct {
	APIKeyFile   string        `mapstructure:"api-key-file"`
	Model        string        `mapstructure:"model" validate:"required"`
	Timeout      time.Duration `mapstructure:"timeout" validate:"gt=0"`
	MaxRetries   int           `mapstructure:"max-retries" validate:"gte=0,lte=5"`
	MaxLogLength int           `mapstructure:"max-log-length" validate:"gte=0"`
}

func setDefaults() {
	viper.SetDefault("search.max-per-term", 6)
	viper.SetDefault("search.pacing", time.Second)
	viper.SetDefault("search.timeout", 10*time.Second)
	viper.SetDefault("search.detail-rate", 2.0)
	viper.SetDefault("ai.provider", "gemini")
	viper.SetDefault("ai.concurrency", 1)
	viper.SetDefault("ai.gemini.model", "gemini-2.5-flash")
	viper.SetDefault("ai.gemini.timeout", 30*time.Second)
	viper.SetDefault("ai.gemini.max-log-length", 200)
}

// bindFlags exposes the command's flags to viper under their own names.
// Commands share keys such as "resume", so binding happens when the command runs.
func bindFlags(cmd *cobra.Command) error {
	return viper.BindPFlags(cmd.Flags())
}

func getConfig() (*Config, error) {
	var config *Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}

	if config == nil {
		return nil, fmt.Errorf("config is empty")
	}

	if err := validator.New().Struct(config); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return config, nil
}
