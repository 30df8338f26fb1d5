package logging

import (
	"bytes"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

func TestNew_Level(t *testing.T) {
	var buf bytes.Buffer
	log := New("warn", &buf)

	log.Info().Msg("hidden")
	log.Warn().Str("component", "store").Msg("shown")

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "shown")
	assert.Contains(t, out, "component=store")
	assert.Equal(t, zerolog.WarnLevel, log.GetLevel())
}

func TestNew_UnknownLevelFallsBack(t *testing.T) {
	assert.Equal(t, zerolog.InfoLevel, New("chatty", &bytes.Buffer{}).GetLevel())
	assert.Equal(t, zerolog.InfoLevel, New("", &bytes.Buffer{}).GetLevel())
}
