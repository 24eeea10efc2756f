package logging_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"

	"github.com/katalvlaran/sparselm/internal/logging"
)

func TestNewLevels(t *testing.T) {
	cases := []struct {
		cfg  logging.Config
		want zapcore.Level
	}{
		{logging.Config{}, zapcore.InfoLevel},
		{logging.Config{Level: "DEBUG", Format: "json"}, zapcore.DebugLevel},
		{logging.Config{Level: "warn", Format: "console"}, zapcore.WarnLevel},
	}
	for _, tc := range cases {
		l, err := logging.New(tc.cfg)
		require.NoError(t, err)
		assert.True(t, l.Core().Enabled(tc.want))
		assert.False(t, l.Core().Enabled(tc.want-1))
	}
}

func TestNewRejectsUnknown(t *testing.T) {
	_, err := logging.New(logging.Config{Level: "loud"})
	assert.Error(t, err)
	_, err = logging.New(logging.Config{Format: "xml"})
	assert.Error(t, err)
}
