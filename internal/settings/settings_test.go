package settings_test

import (
	"context"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/kiln/internal/core/domain"
	"go.trai.ch/kiln/internal/settings"
)

func newTestRootCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "kiln"}
	settings.RegisterFlags(cmd)
	return cmd
}

func TestDefault(t *testing.T) {
	s := settings.Default()
	assert.Equal(t, settings.LogLevelInfo, s.LogLevel)
	assert.Equal(t, settings.LogFormatText, s.LogFormat)
	assert.Equal(t, 50*time.Millisecond, s.Debounce)
	assert.False(t, s.Quiet)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*settings.Settings)
		wantErr bool
	}{
		{name: "defaults", mutate: func(*settings.Settings) {}},
		{name: "debug level", mutate: func(s *settings.Settings) { s.LogLevel = "debug" }},
		{name: "json format", mutate: func(s *settings.Settings) { s.LogFormat = "json" }},
		{name: "zero debounce", mutate: func(s *settings.Settings) { s.Debounce = 0 }},
		{name: "unknown level", mutate: func(s *settings.Settings) { s.LogLevel = "verbose" }, wantErr: true},
		{name: "unknown format", mutate: func(s *settings.Settings) { s.LogFormat = "xml" }, wantErr: true},
		{name: "negative debounce", mutate: func(s *settings.Settings) { s.Debounce = -time.Second }, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := settings.Default()
			tt.mutate(s)
			err := s.Validate()
			if tt.wantErr {
				require.Error(t, err)
				assert.ErrorContains(t, err, domain.ErrInvalidSettings.Error())
				return
			}
			require.NoError(t, err)
		})
	}
}

func TestEffectiveLogLevel(t *testing.T) {
	s := settings.Default()
	s.LogLevel = settings.LogLevelDebug
	assert.Equal(t, settings.LogLevelDebug, s.EffectiveLogLevel())

	s.Quiet = true
	assert.Equal(t, settings.LogLevelError, s.EffectiveLogLevel())
}

func TestLoad_Defaults(t *testing.T) {
	s, err := settings.Load(newTestRootCmd())
	require.NoError(t, err)
	assert.Equal(t, settings.Default(), s)
}

func TestLoad_Flags(t *testing.T) {
	cmd := newTestRootCmd()
	require.NoError(t, cmd.PersistentFlags().Parse([]string{
		"--log-level=debug", "--log-format=json", "--debounce=200ms", "-q",
	}))

	s, err := settings.Load(cmd)
	require.NoError(t, err)
	assert.Equal(t, settings.LogLevelDebug, s.LogLevel)
	assert.Equal(t, settings.LogFormatJSON, s.LogFormat)
	assert.Equal(t, 200*time.Millisecond, s.Debounce)
	assert.True(t, s.Quiet)
}

func TestLoad_Environment(t *testing.T) {
	t.Setenv("KILN_LOG_LEVEL", "warn")
	t.Setenv("KILN_DEBOUNCE", "0s")

	s, err := settings.Load(newTestRootCmd())
	require.NoError(t, err)
	assert.Equal(t, settings.LogLevelWarn, s.LogLevel)
	assert.Equal(t, time.Duration(0), s.Debounce)
}

func TestLoad_FlagOverridesEnvironment(t *testing.T) {
	t.Setenv("KILN_LOG_LEVEL", "warn")

	cmd := newTestRootCmd()
	require.NoError(t, cmd.PersistentFlags().Parse([]string{"--log-level=error"}))

	s, err := settings.Load(cmd)
	require.NoError(t, err)
	assert.Equal(t, settings.LogLevelError, s.LogLevel)
}

func TestLoad_Invalid(t *testing.T) {
	t.Setenv("KILN_LOG_FORMAT", "xml")

	_, err := settings.Load(newTestRootCmd())
	require.Error(t, err)
	assert.ErrorContains(t, err, domain.ErrInvalidSettings.Error())
}

func TestLoad_SubcommandInheritsPersistentFlags(t *testing.T) {
	root := newTestRootCmd()
	child := &cobra.Command{Use: "clean"}
	root.AddCommand(child)
	require.NoError(t, root.PersistentFlags().Parse([]string{"--log-level=debug"}))

	s, err := settings.Load(child)
	require.NoError(t, err)
	assert.Equal(t, settings.LogLevelDebug, s.LogLevel)
}

func TestContext(t *testing.T) {
	assert.Equal(t, settings.Default(), settings.FromContext(context.Background()))

	s := settings.Default()
	s.LogLevel = settings.LogLevelDebug
	ctx := settings.NewContext(context.Background(), s)
	assert.Same(t, s, settings.FromContext(ctx))
}
