// Package config loads the service settings and offline sweep definition files.
package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"

	xyzerrors "github.com/alexisbeaulieu97/xyzplot/pkg/errors"
)

// EnvPrefix prefixes every environment override, e.g. XYZPLOT_HOST_PORT.
const EnvPrefix = "XYZPLOT"

// LocalConfigFile is looked up in the working directory before the user config.
const LocalConfigFile = "xyzplot.yaml"

// Settings holds process-wide configuration.
type Settings struct {
	Host            HostSettings    `mapstructure:"host"`
	Server          ServerSettings  `mapstructure:"server"`
	OutputDir       string          `mapstructure:"output_dir" validate:"required"`
	ArchiveExisting bool            `mapstructure:"archive_existing"`
	Submit          SubmitSettings  `mapstructure:"submit"`
	Image           ImageSettings   `mapstructure:"image"`
	Tracing         TracingSettings `mapstructure:"tracing"`
	Log             LogSettings     `mapstructure:"log"`
}

// HostSettings locate the execution host that accepts graph submissions.
type HostSettings struct {
	Listen string `mapstructure:"listen" validate:"required"`
	Port   int    `mapstructure:"port" validate:"min=1,max=65535"`
}

// ServerSettings configure the HTTP API.
type ServerSettings struct {
	Listen string `mapstructure:"listen" validate:"required,hostname_port"`
}

// SubmitSettings tune the submission transport.
type SubmitSettings struct {
	Timeout time.Duration `mapstructure:"timeout" validate:"gt=0"`
	Retries int           `mapstructure:"retries" validate:"min=0,max=10"`
	Backoff time.Duration `mapstructure:"backoff" validate:"min=0"`
}

type ImageSettings struct {
	JPEGQuality int `mapstructure:"jpeg_quality" validate:"min=1,max=100"`
}

type TracingSettings struct {
	Enabled  bool   `mapstructure:"enabled"`
	Exporter string `mapstructure:"exporter" validate:"oneof=stdout none"`
}

type LogSettings struct {
	Level string `mapstructure:"level" validate:"oneof=trace debug info warn error"`
}

// Defaults returns the settings used when nothing overrides them.
func Defaults() Settings {
	return Settings{
		Host:            HostSettings{Listen: "127.0.0.1", Port: 8188},
		Server:          ServerSettings{Listen: "127.0.0.1:8190"},
		OutputDir:       "./output",
		ArchiveExisting: true,
		Submit:          SubmitSettings{Timeout: 20 * time.Second, Retries: 3, Backoff: 100 * time.Millisecond},
		Image:           ImageSettings{JPEGQuality: 90},
		Tracing:         TracingSettings{Enabled: false, Exporter: "stdout"},
		Log:             LogSettings{Level: "info"},
	}
}

// NewViper returns a viper instance with every default registered and environment
// overrides enabled. Keys without a default are invisible to env lookups, so all keys are
// registered here.
func NewViper() *viper.Viper {
	v := viper.New()
	d := Defaults()
	v.SetDefault("host.listen", d.Host.Listen)
	v.SetDefault("host.port", d.Host.Port)
	v.SetDefault("server.listen", d.Server.Listen)
	v.SetDefault("output_dir", d.OutputDir)
	v.SetDefault("archive_existing", d.ArchiveExisting)
	v.SetDefault("submit.timeout", d.Submit.Timeout)
	v.SetDefault("submit.retries", d.Submit.Retries)
	v.SetDefault("submit.backoff", d.Submit.Backoff)
	v.SetDefault("image.jpeg_quality", d.Image.JPEGQuality)
	v.SetDefault("tracing.enabled", d.Tracing.Enabled)
	v.SetDefault("tracing.exporter", d.Tracing.Exporter)
	v.SetDefault("log.level", d.Log.Level)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// LoadSettings reads the config file into v and returns the validated settings with the
// path of the file used ("" when running on defaults). An explicit path must exist;
// otherwise ./xyzplot.yaml and then ~/.config/xyzplot/config.yaml are tried.
func LoadSettings(v *viper.Viper, explicitPath string) (*Settings, string, error) {
	switch {
	case explicitPath != "":
		v.SetConfigFile(explicitPath)
	case fileExists(LocalConfigFile):
		v.SetConfigFile(LocalConfigFile)
	default:
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".config", "xyzplot"))
		}
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if explicitPath != "" || !errors.As(err, &notFound) {
			path := v.ConfigFileUsed()
			if path == "" {
				path = explicitPath
			}
			return nil, "", xyzerrors.NewParseError(path, extractLine(err), err)
		}
	}

	var s Settings
	if err := v.Unmarshal(&s); err != nil {
		return nil, "", xyzerrors.NewValidationError("config", err.Error(), err)
	}
	if err := ValidateSettings(&s); err != nil {
		return nil, "", err
	}
	return &s, v.ConfigFileUsed(), nil
}

// ValidateSettings checks settings against their struct rules.
func ValidateSettings(s *Settings) error {
	if s == nil {
		return xyzerrors.NewValidationError("settings", "settings are nil", nil)
	}
	return convertValidationError(validatorInstance().Struct(s))
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
