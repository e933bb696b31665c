package logger

import (
	"bytes"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

func TestWithComponent(t *testing.T) {
	var buf bytes.Buffer
	orig := Log
	Log = zerolog.New(&buf)
	defer func() { Log = orig }()

	l := WithComponent("server")
	l.Info().Msg("listo")

	assert.Contains(t, buf.String(), `"component":"server"`)
	assert.Contains(t, buf.String(), "listo")
}
