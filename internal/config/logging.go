package config

import (
	"strings"

	"github.com/spf13/viper"
)

// LoggerConfig configures the zap logger
type LoggerConfig struct {
	Level            string   `mapstructure:"level"`
	Encoding         string   `mapstructure:"encoding"`
	OutputPaths      []string `mapstructure:"output_paths"`
	ErrorOutputPaths []string `mapstructure:"error_output_paths"`
}

// LoadLoggerConfig reads SOQL_LOG_LEVEL and SOQL_LOG_ENCODING.
func LoadLoggerConfig() LoggerConfig {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("log.level", "info")
	v.SetDefault("log.encoding", "console")

	return LoggerConfig{
		Level:            v.GetString("log.level"),
		Encoding:         v.GetString("log.encoding"),
		OutputPaths:      []string{"stderr"},
		ErrorOutputPaths: []string{"stderr"},
	}
}
