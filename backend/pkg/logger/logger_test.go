package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestBuildConfig(t *testing.T) {
	tests := []struct {
		name     string
		env      string
		level    string
		want     zapcore.Level
		encoding string
	}{
		{"development default", "development", "", zapcore.DebugLevel, "console"},
		{"production default", "production", "", zapcore.InfoLevel, "json"},
		{"override", "production", "warn", zapcore.WarnLevel, "json"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := buildConfig(tt.env, tt.level)
			require.NoError(t, err)
			assert.Equal(t, tt.want, cfg.Level.Level())
			assert.Equal(t, tt.encoding, cfg.Encoding)
			assert.Equal(t, "chirp", cfg.InitialFields["service"])
		})
	}

	_, err := buildConfig("development", "chatty")
	assert.Error(t, err)
}

func TestGet_BeforeInit(t *testing.T) {
	prev := Logger
	Logger = nil
	defer func() { Logger = prev }()

	assert.NotNil(t, Get())
	assert.NotNil(t, Named("social"))
}
