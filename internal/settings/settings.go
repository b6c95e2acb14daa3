// Package settings loads the command-line settings of kiln.
//
// Values are resolved with the following precedence (highest to lowest):
//  1. CLI flags
//  2. Environment variables (KILN_ prefix)
//  3. Defaults
package settings

import (
	"context"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.trai.ch/kiln/internal/core/domain"
	"go.trai.ch/zerr"
)

// EnvPrefix is the prefix of environment variables overriding settings.
const EnvPrefix = "KILN"

// Supported log levels.
const (
	LogLevelDebug = "debug"
	LogLevelInfo  = "info"
	LogLevelWarn  = "warn"
	LogLevelError = "error"
)

// Supported log formats.
const (
	LogFormatText = "text"
	LogFormatJSON = "json"
)

// Setting keys, shared by flags and environment variables.
const (
	KeyLogLevel  = "log-level"
	KeyLogFormat = "log-format"
	KeyDebounce  = "debounce"
	KeyQuiet     = "quiet"
)

// DefaultDebounce is the default quiet period of a path before it is rebuilt in watch mode.
const DefaultDebounce = 50 * time.Millisecond

// Settings are the resolved command-line settings.
type Settings struct {
	LogLevel  string        `mapstructure:"log-level"`
	LogFormat string        `mapstructure:"log-format"`
	Debounce  time.Duration `mapstructure:"debounce"`
	// Quiet lowers logging to errors only.
	Quiet bool `mapstructure:"quiet"`
}

// Default returns the settings used when nothing is configured.
func Default() *Settings {
	return &Settings{
		LogLevel:  LogLevelInfo,
		LogFormat: LogFormatText,
		Debounce:  DefaultDebounce,
	}
}

// Validate checks that all values are supported.
func (s *Settings) Validate() error {
	switch s.LogLevel {
	case LogLevelDebug, LogLevelInfo, LogLevelWarn, LogLevelError:
	default:
		return zerr.With(domain.ErrInvalidSettings, KeyLogLevel, s.LogLevel)
	}

	switch s.LogFormat {
	case LogFormatText, LogFormatJSON:
	default:
		return zerr.With(domain.ErrInvalidSettings, KeyLogFormat, s.LogFormat)
	}

	if s.Debounce < 0 {
		return zerr.With(domain.ErrInvalidSettings, KeyDebounce, s.Debounce.String())
	}

	return nil
}

// EffectiveLogLevel returns the log level to apply, honouring Quiet.
func (s *Settings) EffectiveLogLevel() string {
	if s.Quiet {
		return LogLevelError
	}
	return s.LogLevel
}

// RegisterFlags adds the settings flags to cmd as persistent flags.
func RegisterFlags(cmd *cobra.Command) {
	def := Default()
	pf := cmd.PersistentFlags()
	pf.String(KeyLogLevel, def.LogLevel, "log level (debug, info, warn, error)")
	pf.String(KeyLogFormat, def.LogFormat, "log format (text, json)")
	pf.Duration(KeyDebounce, def.Debounce, "quiet period before a changed file is rebuilt in watch mode (0 disables)")
	pf.BoolP(KeyQuiet, "q", def.Quiet, "only log errors")
}

// Load resolves the settings for cmd from its flags and the environment.
// A fresh viper instance is used on every call.
func Load(cmd *cobra.Command) (*Settings, error) {
	v := viper.New()

	def := Default()
	v.SetDefault(KeyLogLevel, def.LogLevel)
	v.SetDefault(KeyLogFormat, def.LogFormat)
	v.SetDefault(KeyDebounce, def.Debounce)
	v.SetDefault(KeyQuiet, def.Quiet)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if err := bindFlags(v, cmd); err != nil {
		return nil, err
	}

	var s Settings
	if err := v.Unmarshal(&s); err != nil {
		return nil, zerr.Wrap(err, domain.ErrInvalidSettings.Error())
	}

	if err := s.Validate(); err != nil {
		return nil, err
	}

	return &s, nil
}

// bindFlags binds cmd's own flags and the persistent flags of cmd and its parents.
func bindFlags(v *viper.Viper, cmd *cobra.Command) error {
	if cmd == nil {
		return nil
	}

	if err := v.BindPFlags(cmd.Flags()); err != nil {
		return zerr.Wrap(err, "failed to bind flags")
	}

	for c := cmd; c != nil; c = c.Parent() {
		if err := v.BindPFlags(c.PersistentFlags()); err != nil {
			return zerr.Wrap(err, "failed to bind persistent flags")
		}
	}

	return nil
}

type ctxKey struct{}

// NewContext returns a child context carrying s.
func NewContext(ctx context.Context, s *Settings) context.Context {
	return context.WithValue(ctx, ctxKey{}, s)
}

// FromContext extracts the settings from ctx, falling back to Default.
func FromContext(ctx context.Context) *Settings {
	if s, ok := ctx.Value(ctxKey{}).(*Settings); ok {
		return s
	}
	return Default()
}
