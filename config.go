package orrery

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/viper"
)

// ConfigEnv is the environment variable naming the directory of conf.toml.
const ConfigEnv = "ORRERY_CONFIG"

// Config is the configuration of the model, read from conf.toml.
type Config struct {
	CatalogPath    string  // Empty for the embedded catalog
	ContentPath    string  // Empty for the embedded content
	Scale          float64 // Display units per km
	TraceSamples   int
	HighlightColor uint32
	Addr           string
	MetricsAddr    string
	LogFile        string
	OutputDir      string
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("catalog.path", "")
	v.SetDefault("content.path", "")
	v.SetDefault("display.scale", DefaultDisplayScale)
	v.SetDefault("display.trace_samples", 360)
	v.SetDefault("display.highlight", DefaultHighlightColor)
	v.SetDefault("server.addr", ":8080")
	v.SetDefault("server.metrics_addr", ":9090")
	v.SetDefault("log.file", "")
	v.SetDefault("general.output_path", ".")
}

// LoadConfig reads conf.toml from dir, or from the directory in ORRERY_CONFIG if dir is empty,
// into v (which may be nil). A missing file is not an error: the defaults apply.
func LoadConfig(v *viper.Viper, dir string) (Config, error) {
	if v == nil {
		v = viper.New()
	}
	setDefaults(v)
	if dir == "" {
		dir = os.Getenv(ConfigEnv)
	}
	if dir != "" {
		v.SetConfigName("conf")
		v.SetConfigType("toml")
		v.AddConfigPath(dir)
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return Config{}, fmt.Errorf("%s/conf.toml: %w", dir, err)
			}
		}
	}
	conf := Config{
		CatalogPath:    v.GetString("catalog.path"),
		ContentPath:    v.GetString("content.path"),
		Scale:          v.GetFloat64("display.scale"),
		TraceSamples:   v.GetInt("display.trace_samples"),
		HighlightColor: v.GetUint32("display.highlight"),
		Addr:           v.GetString("server.addr"),
		MetricsAddr:    v.GetString("server.metrics_addr"),
		LogFile:        v.GetString("log.file"),
		OutputDir:      v.GetString("general.output_path"),
	}
	if !(conf.Scale > 0) {
		return conf, fmt.Errorf("display.scale must be positive, got %f", conf.Scale)
	}
	if conf.TraceSamples < 1 {
		return conf, fmt.Errorf("display.trace_samples must be at least 1, got %d", conf.TraceSamples)
	}
	if conf.HighlightColor > 0xffffff {
		return conf, fmt.Errorf("display.highlight %#x is not a 24 bit color", conf.HighlightColor)
	}
	return conf, nil
}
