package config

import (
	"errors"
	"strings"

	"github.com/spf13/viper"
)

// Settings are the process-wide options of the CLI. They are resolved
// from flags, ROCKETSIM_* environment variables, an optional rocketsim.yaml
// and defaults, in that order of precedence.
type Settings struct {
	DataDir   string `mapstructure:"data_dir"`
	LogLevel  string `mapstructure:"log_level"`
	LogFormat string `mapstructure:"log_format"`
}

func NewViper() *viper.Viper {
	v := viper.New()
	v.SetDefault("data_dir", "runs")
	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "logfmt")

	v.SetEnvPrefix("ROCKETSIM")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	v.SetConfigName("rocketsim")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("$HOME/.config/rocketsim")
	return v
}

// LoadSettings reads the config file if one exists and decodes Settings.
func LoadSettings(v *viper.Viper) (Settings, error) {
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return Settings{}, err
		}
	}

	var s Settings
	if err := v.Unmarshal(&s); err != nil {
		return Settings{}, err
	}
	return s, nil
}
