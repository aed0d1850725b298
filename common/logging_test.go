package common

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

func TestSetupLoggingLevel(t *testing.T) {
	prev := zerolog.GlobalLevel()
	t.Cleanup(func() { zerolog.SetGlobalLevel(prev) })

	t.Setenv("LOG_LEVEL", "debug")
	SetupLogging()
	require.Equal(t, zerolog.DebugLevel, zerolog.GlobalLevel())

	t.Setenv("LOG_LEVEL", "loud")
	SetupLogging()
	require.Equal(t, zerolog.InfoLevel, zerolog.GlobalLevel())
}
