package logging

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetup(t *testing.T) {
	defer zerolog.SetGlobalLevel(zerolog.InfoLevel)

	_, err := Setup("debug", "json")
	require.NoError(t, err)
	assert.Equal(t, zerolog.DebugLevel, zerolog.GlobalLevel())

	_, err = Setup("loud", "json")
	assert.ErrorIs(t, err, ErrInvalidLevel)

	_, err = Setup("info", "syslog")
	assert.ErrorIs(t, err, ErrInvalidOutput)
}

func TestShortCaller(t *testing.T) {
	assert.Equal(t, "bootstrap/sequencer.go:42", shortCaller(0, "/src/internal/bootstrap/sequencer.go", 42))
}
